package redis

import (
	"context"
	"encoding/json"

	"nexus-ai-chat/internal/domain"
	"nexus-ai-chat/internal/domain/model"
	"nexus-ai-chat/internal/domain/ports/repository"
)

// HistoryStore keeps the bounded per-client local history and the theme
// preference. Entries live most-recent-first in a capped list, mirroring the
// client-side behavior this service replaced.
var _ repository.HistoryStore = (*HistoryStore)(nil)

type HistoryStore struct {
	client Client
}

func NewHistoryStore(client Client) *HistoryStore {
	return &HistoryStore{client: client}
}

func historyKey(clientID string) string { return "chat_history:" + clientID }
func themeKey(clientID string) string   { return "theme:" + clientID }

func (s *HistoryStore) Push(ctx context.Context, clientID string, entry *model.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := historyKey(clientID)
	if err := s.client.LPush(ctx, key, data); err != nil {
		return &domain.PersistenceError{Op: "history push", Err: err}
	}
	if err := s.client.LTrim(ctx, key, 0, model.HistoryCap-1); err != nil {
		return &domain.PersistenceError{Op: "history trim", Err: err}
	}
	return nil
}

func (s *HistoryStore) Recent(ctx context.Context, clientID string, n int) ([]model.HistoryEntry, error) {
	if n <= 0 || n > model.HistoryCap {
		n = model.HistoryCap
	}
	raw, err := s.client.LRange(ctx, historyKey(clientID), 0, int64(n-1))
	if err != nil {
		return nil, &domain.PersistenceError{Op: "history range", Err: err}
	}
	out := make([]model.HistoryEntry, 0, len(raw))
	for _, r := range raw {
		var e model.HistoryEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			continue // skip corrupt entries rather than failing the whole list
		}
		out = append(out, e)
	}
	return out, nil
}

func (s *HistoryStore) Theme(ctx context.Context, clientID string) (string, error) {
	v, err := s.client.Get(ctx, themeKey(clientID))
	if err != nil {
		if IsNil(err) {
			return "light", nil
		}
		return "", &domain.PersistenceError{Op: "theme get", Err: err}
	}
	return v, nil
}

func (s *HistoryStore) SetTheme(ctx context.Context, clientID, theme string) error {
	if theme != "light" && theme != "dark" {
		return domain.ErrInvalidArgument
	}
	if err := s.client.Set(ctx, themeKey(clientID), theme, 0); err != nil {
		return &domain.PersistenceError{Op: "theme set", Err: err}
	}
	return nil
}
