package repository

import (
	"context"

	"nexus-ai-chat/internal/domain/model"
)

// SessionRepository persists account-backed chat sessions and their turns.
// All calls are best effort from the core's point of view: a failure is
// surfaced as an error but never blocks the active exchange.
type SessionRepository interface {
	// Create stores a new session row and returns its assigned id.
	Create(ctx context.Context, ownerID, title string) (string, error)
	AppendTurn(ctx context.Context, sessionID string, turn *model.ChatTurn) error
	// ListSummaries returns the identity's sessions, most recent first.
	ListSummaries(ctx context.Context, ownerID string) ([]model.SessionSummary, error)
	// Find hydrates a session including its full ordered turn sequence.
	Find(ctx context.Context, sessionID string) (*model.ChatSession, error)
	Delete(ctx context.Context, sessionID string) error
	// CleanupOldTurns deletes turns older than the retention, returning the
	// number removed.
	CleanupOldTurns(ctx context.Context, retentionDays int) (int64, error)
}
