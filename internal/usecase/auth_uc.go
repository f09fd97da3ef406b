package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"nexus-ai-chat/internal/domain"
	"nexus-ai-chat/internal/domain/model"
	"nexus-ai-chat/internal/domain/ports/repository"
)

type AuthPhase string

const (
	PhaseSignedOut      AuthPhase = "signed_out"
	PhaseAuthenticating AuthPhase = "authenticating"
	PhaseSignedIn       AuthPhase = "signed_in"
)

// AuthSession owns one client's identity state and the cached list of that
// identity's persisted sessions. Identity changes are pushed to listeners
// synchronously, before the call returns, so no reader can observe a stale
// identity afterwards.
type AuthSession struct {
	mu        sync.Mutex
	phase     AuthPhase
	identity  *model.Identity
	summaries []model.SessionSummary

	ids       repository.IdentityRepository
	sessions  repository.SessionRepository
	listeners []func(*model.Identity)
	log       *zerolog.Logger
}

func NewAuthSession(ids repository.IdentityRepository, sessions repository.SessionRepository, logger *zerolog.Logger) *AuthSession {
	l := logger.With().Str("component", "AuthSession").Logger()
	return &AuthSession{
		phase:    PhaseSignedOut,
		ids:      ids,
		sessions: sessions,
		log:      &l,
	}
}

// OnIdentityChange registers a listener invoked synchronously on every
// sign-in, sign-up, sign-out, and restore.
func (a *AuthSession) OnIdentityChange(fn func(*model.Identity)) {
	a.mu.Lock()
	a.listeners = append(a.listeners, fn)
	a.mu.Unlock()
}

func (a *AuthSession) SignUp(ctx context.Context, email, password, displayName string) (*model.Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidArgument
	}
	if len(password) < 6 {
		return nil, domain.ErrInvalidArgument
	}

	a.setPhase(PhaseAuthenticating)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		a.setPhase(PhaseSignedOut)
		return nil, err
	}
	id := &model.Identity{ID: uuid.NewString(), Email: email, DisplayName: strings.TrimSpace(displayName)}
	if err := a.ids.Create(ctx, id, string(hash)); err != nil {
		a.setPhase(PhaseSignedOut)
		return nil, err
	}
	a.adopt(id)
	return id, nil
}

func (a *AuthSession) SignIn(ctx context.Context, email, password string) (*model.Identity, error) {
	a.setPhase(PhaseAuthenticating)
	id, hash, err := a.ids.FindByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		a.setPhase(PhaseSignedOut)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		a.setPhase(PhaseSignedOut)
		return nil, domain.ErrInvalidCredentials
	}
	a.adopt(id)
	return id, nil
}

// Restore re-establishes a signed-in state from a still-valid token after
// the in-memory state was lost (process restart, evicted client).
func (a *AuthSession) Restore(ctx context.Context, userID string) error {
	id, err := a.ids.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	a.adopt(id)
	return nil
}

// SignOut drops the identity and clears the cached session list before
// returning; no stale entry stays visible.
func (a *AuthSession) SignOut() {
	a.mu.Lock()
	a.phase = PhaseSignedOut
	a.identity = nil
	a.summaries = nil
	listeners := append([]func(*model.Identity){}, a.listeners...)
	a.mu.Unlock()
	for _, fn := range listeners {
		fn(nil)
	}
}

func (a *AuthSession) Identity() *model.Identity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.identity
}

func (a *AuthSession) Phase() AuthPhase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// Summaries returns the cached list, most recent first.
func (a *AuthSession) Summaries() []model.SessionSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.SessionSummary, len(a.summaries))
	copy(out, a.summaries)
	return out
}

// RefreshSummaries reloads the cached list from the repository. No-op when
// signed out.
func (a *AuthSession) RefreshSummaries(ctx context.Context) error {
	a.mu.Lock()
	ident := a.identity
	a.mu.Unlock()
	if ident == nil {
		return nil
	}
	list, err := a.sessions.ListSummaries(ctx, ident.ID)
	if err != nil {
		a.log.Warn().Err(err).Msg("session list refresh failed")
		return err
	}
	a.mu.Lock()
	// the identity may have changed while the list was loading
	if a.identity != nil && a.identity.ID == ident.ID {
		a.summaries = list
	}
	a.mu.Unlock()
	return nil
}

// DeleteSession removes one of the identity's persisted sessions and
// refreshes the cached list.
func (a *AuthSession) DeleteSession(ctx context.Context, sessionID string) error {
	a.mu.Lock()
	ident := a.identity
	a.mu.Unlock()
	if ident == nil {
		return domain.ErrNotSignedIn
	}
	s, err := a.sessions.Find(ctx, sessionID)
	if err != nil {
		return err
	}
	if s.OwnerID != ident.ID {
		return domain.ErrNotFound
	}
	if err := a.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	return a.RefreshSummaries(ctx)
}

func (a *AuthSession) setPhase(p AuthPhase) {
	a.mu.Lock()
	a.phase = p
	a.mu.Unlock()
}

// adopt installs the identity, notifies listeners synchronously, and loads
// the session list in the background.
func (a *AuthSession) adopt(id *model.Identity) {
	a.mu.Lock()
	a.phase = PhaseSignedIn
	a.identity = id
	a.summaries = nil
	listeners := append([]func(*model.Identity){}, a.listeners...)
	a.mu.Unlock()
	for _, fn := range listeners {
		fn(id)
	}
	go func() {
		_ = a.RefreshSummaries(context.Background())
	}()
}
