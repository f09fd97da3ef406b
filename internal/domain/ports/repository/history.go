package repository

import (
	"context"

	"nexus-ai-chat/internal/domain/model"
)

// HistoryStore is the local durable key-value side of persistence: the
// bounded per-client chat history and the theme preference. It is written on
// every completed exchange regardless of remote persistence outcome.
type HistoryStore interface {
	// Push prepends an entry and evicts beyond model.HistoryCap.
	Push(ctx context.Context, clientID string, entry *model.HistoryEntry) error
	// Recent returns up to n entries, most recent first.
	Recent(ctx context.Context, clientID string, n int) ([]model.HistoryEntry, error)

	Theme(ctx context.Context, clientID string) (string, error)
	SetTheme(ctx context.Context, clientID, theme string) error
}
