package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"nexus-ai-chat/internal/domain"
	"nexus-ai-chat/internal/domain/model"
	"nexus-ai-chat/internal/domain/ports/adapter"
)

// --- inference fake ---

type fakeAI struct {
	mu      sync.Mutex
	result  adapter.CompletionResult
	err     error
	delay   time.Duration
	calls   []string // model ids, in dispatch order
	prompts []string
}

func (f *fakeAI) Complete(ctx context.Context, modelID, prompt string, _ model.GenParams) (adapter.CompletionResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, modelID)
	f.prompts = append(f.prompts, prompt)
	d, res, err := f.delay, f.result, f.err
	f.mu.Unlock()
	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return adapter.CompletionResult{}, ctx.Err()
		}
	}
	return res, err
}

func (f *fakeAI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAI) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// --- session repository fake ---

type memSessionRepo struct {
	mu        sync.Mutex
	sessions  map[string]*model.ChatSession
	ops       []string // call sequence, e.g. "create", "append:user"
	createErr error
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: map[string]*model.ChatSession{}}
}

func (r *memSessionRepo) Create(ctx context.Context, ownerID, title string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return "", r.createErr
	}
	id := uuid.NewString()
	now := time.Now()
	r.sessions[id] = &model.ChatSession{ID: id, OwnerID: ownerID, Title: title, CreatedAt: now, UpdatedAt: now}
	r.ops = append(r.ops, "create")
	return id, nil
}

func (r *memSessionRepo) AppendTurn(ctx context.Context, sessionID string, turn *model.ChatTurn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return domain.ErrNotFound
	}
	s.Turns = append(s.Turns, *turn)
	s.UpdatedAt = time.Now()
	r.ops = append(r.ops, "append:"+turn.Role)
	return nil
}

func (r *memSessionRepo) ListSummaries(ctx context.Context, ownerID string) ([]model.SessionSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.SessionSummary
	for _, s := range r.sessions {
		if s.OwnerID == ownerID {
			out = append(out, model.SessionSummary{ID: s.ID, Title: s.Title, CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt})
		}
	}
	return out, nil
}

func (r *memSessionRepo) Find(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	cp.Turns = append([]model.ChatTurn{}, s.Turns...)
	return &cp, nil
}

func (r *memSessionRepo) Delete(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sessionID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.sessions, sessionID)
	return nil
}

func (r *memSessionRepo) CleanupOldTurns(ctx context.Context, retentionDays int) (int64, error) {
	return 0, nil
}

func (r *memSessionRepo) opLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.ops...)
}

// --- identity repository fake ---

type identityRec struct {
	id   *model.Identity
	hash string
}

type memIdentityRepo struct {
	mu      sync.Mutex
	byEmail map[string]identityRec
}

func newMemIdentityRepo() *memIdentityRepo {
	return &memIdentityRepo{byEmail: map[string]identityRec{}}
}

func (r *memIdentityRepo) Create(ctx context.Context, id *model.Identity, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[id.Email]; ok {
		return domain.ErrEmailTaken
	}
	r.byEmail[id.Email] = identityRec{id: id, hash: passwordHash}
	return nil
}

func (r *memIdentityRepo) FindByEmail(ctx context.Context, email string) (*model.Identity, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byEmail[email]
	if !ok {
		return nil, "", domain.ErrNotFound
	}
	return rec.id, rec.hash, nil
}

func (r *memIdentityRepo) FindByID(ctx context.Context, id string) (*model.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.byEmail {
		if rec.id.ID == id {
			return rec.id, nil
		}
	}
	return nil, domain.ErrNotFound
}

// --- history store fake ---

type memHistory struct {
	mu      sync.Mutex
	entries map[string][]model.HistoryEntry
	themes  map[string]string
}

func newMemHistory() *memHistory {
	return &memHistory{entries: map[string][]model.HistoryEntry{}, themes: map[string]string{}}
}

func (h *memHistory) Push(ctx context.Context, clientID string, entry *model.HistoryEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	l := append([]model.HistoryEntry{*entry}, h.entries[clientID]...)
	if len(l) > model.HistoryCap {
		l = l[:model.HistoryCap]
	}
	h.entries[clientID] = l
	return nil
}

func (h *memHistory) Recent(ctx context.Context, clientID string, n int) ([]model.HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	l := h.entries[clientID]
	if n > 0 && n < len(l) {
		l = l[:n]
	}
	return append([]model.HistoryEntry{}, l...), nil
}

func (h *memHistory) Theme(ctx context.Context, clientID string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok := h.themes[clientID]; ok {
		return t, nil
	}
	return "light", nil
}

func (h *memHistory) SetTheme(ctx context.Context, clientID, theme string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.themes[clientID] = theme
	return nil
}

func (h *memHistory) count(clientID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries[clientID])
}

// --- media store fake ---

type fakeMedia struct {
	mu    sync.Mutex
	saves int
	fail  bool
}

func (m *fakeMedia) Save(ctx context.Context, ownerID, filename string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return "", &domain.PersistenceError{Op: "upload", Err: fmt.Errorf("disk full")}
	}
	m.saves++
	return fmt.Sprintf("http://test/media/%s/%s", ownerID, filename), nil
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
