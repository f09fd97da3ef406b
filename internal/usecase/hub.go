package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"nexus-ai-chat/internal/domain/model"
	"nexus-ai-chat/internal/domain/ports/adapter"
	"nexus-ai-chat/internal/domain/ports/repository"
	"nexus-ai-chat/internal/infra/worker"
	"nexus-ai-chat/internal/reveal"
)

// HubDeps are the process-wide collaborators shared by every client.
type HubDeps struct {
	AI         adapter.InferenceAdapter
	Sessions   repository.SessionRepository
	Identities repository.IdentityRepository
	Media      repository.MediaStore
	History    repository.HistoryStore
	Pool       *worker.Pool
	Reveal     *reveal.Scheduler
	Log        *zerolog.Logger
}

// ClientState pairs one client's auth session with its orchestrator.
type ClientState struct {
	Auth *AuthSession
	Orch *Orchestrator

	lastSeen time.Time
}

// Hub hands out per-client state keyed by the browser's client id. State is
// created lazily on first contact and evicted after a quiet period; evicted
// clients lose only in-memory staging, since transcripts and history live in
// the stores.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*ClientState
	deps    HubDeps
	base    context.Context
}

func NewHub(base context.Context, deps HubDeps) *Hub {
	return &Hub{clients: map[string]*ClientState{}, deps: deps, base: base}
}

// Client returns the state for clientID, creating it on first use.
func (h *Hub) Client(clientID string) *ClientState {
	h.mu.Lock()
	defer h.mu.Unlock()
	if st, ok := h.clients[clientID]; ok {
		st.lastSeen = time.Now()
		return st
	}

	auth := NewAuthSession(h.deps.Identities, h.deps.Sessions, h.deps.Log)
	orch := NewOrchestrator(h.base, clientID, OrchestratorDeps{
		AI:       h.deps.AI,
		Sessions: h.deps.Sessions,
		Media:    h.deps.Media,
		History:  h.deps.History,
		Auth:     auth,
		Pool:     h.deps.Pool,
		Reveal:   h.deps.Reveal,
		Log:      h.deps.Log,
	})
	// a sign-in or sign-out must not leave appends flowing into the
	// previous identity's session
	auth.OnIdentityChange(func(*model.Identity) { orch.DetachRemote() })

	st := &ClientState{Auth: auth, Orch: orch, lastSeen: time.Now()}
	h.clients[clientID] = st
	return st
}

// Sweep drops clients idle for longer than maxIdle and returns how many were
// evicted.
func (h *Hub) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for id, st := range h.clients {
		if st.lastSeen.Before(cutoff) {
			delete(h.clients, id)
			n++
		}
	}
	return n
}

// Len reports how many clients currently hold in-memory state.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
