package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"nexus-ai-chat/internal/domain"
	"nexus-ai-chat/internal/domain/model"
	"nexus-ai-chat/internal/domain/ports/repository"
	"nexus-ai-chat/internal/infra/redis"
)

// SessionRepo persists chat sessions and their turns. A hydrated session is
// cached best-effort in Redis; cache failures are ignored.
var _ repository.SessionRepository = (*SessionRepo)(nil)

type SessionRepo struct {
	pool  *pgxpool.Pool
	cache *redis.SessionCache
}

func NewSessionRepo(pool *pgxpool.Pool, cache *redis.SessionCache) *SessionRepo {
	return &SessionRepo{pool: pool, cache: cache}
}

func (r *SessionRepo) Create(ctx context.Context, ownerID, title string) (string, error) {
	id := uuid.NewString()
	const q = `
INSERT INTO chat_sessions (id, owner_id, title, created_at, updated_at)
VALUES ($1,$2,$3,NOW(),NOW());`
	if _, err := r.pool.Exec(ctx, q, id, ownerID, title); err != nil {
		return "", &domain.PersistenceError{Op: "create session", Err: err}
	}
	return id, nil
}

func (r *SessionRepo) AppendTurn(ctx context.Context, sessionID string, t *model.ChatTurn) error {
	const q = `
INSERT INTO chat_turns (id, session_id, role, content, model_id, image_url, created_at)
VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),COALESCE($7,NOW()));`
	_, err := r.pool.Exec(ctx, q, t.ID, sessionID, t.Role, t.Content, t.ModelID, t.ImageURL, t.CreatedAt)
	if err != nil {
		return &domain.PersistenceError{Op: "append turn", Err: err}
	}
	const touch = `UPDATE chat_sessions SET updated_at=NOW() WHERE id=$1;`
	if _, err := r.pool.Exec(ctx, touch, sessionID); err != nil {
		return &domain.PersistenceError{Op: "touch session", Err: err}
	}
	if r.cache != nil {
		_ = r.cache.Invalidate(ctx, sessionID)
	}
	return nil
}

func (r *SessionRepo) ListSummaries(ctx context.Context, ownerID string) ([]model.SessionSummary, error) {
	const q = `
SELECT id, title, created_at, updated_at
  FROM chat_sessions
 WHERE owner_id=$1
 ORDER BY created_at DESC;`
	rows, err := r.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list sessions", Err: err}
	}
	defer rows.Close()
	var out []model.SessionSummary
	for rows.Next() {
		var s model.SessionSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SessionRepo) Find(ctx context.Context, sessionID string) (*model.ChatSession, error) {
	if r.cache != nil {
		if s, err := r.cache.Get(ctx, sessionID); err == nil && s != nil {
			return s, nil
		}
	}

	const qs = `SELECT id, owner_id, title, created_at, updated_at FROM chat_sessions WHERE id=$1;`
	var s model.ChatSession
	if err := r.pool.QueryRow(ctx, qs, sessionID).Scan(&s.ID, &s.OwnerID, &s.Title, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.PersistenceError{Op: "find session", Err: err}
	}

	const qt = `
SELECT id, role, content, model_id, COALESCE(image_url,''), created_at
  FROM chat_turns
 WHERE session_id=$1
 ORDER BY created_at ASC;`
	rows, err := r.pool.Query(ctx, qt, sessionID)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "query turns", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		t := model.ChatTurn{SessionID: s.ID}
		var ts time.Time
		if err := rows.Scan(&t.ID, &t.Role, &t.Content, &t.ModelID, &t.ImageURL, &ts); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.CreatedAt = ts
		s.Turns = append(s.Turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}

	if r.cache != nil {
		_ = r.cache.Store(ctx, &s)
	}
	return &s, nil
}

func (r *SessionRepo) Delete(ctx context.Context, sessionID string) error {
	// turns go with the session (ON DELETE CASCADE)
	const q = `DELETE FROM chat_sessions WHERE id=$1;`
	tag, err := r.pool.Exec(ctx, q, sessionID)
	if err != nil {
		return &domain.PersistenceError{Op: "delete session", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	if r.cache != nil {
		_ = r.cache.Invalidate(ctx, sessionID)
	}
	return nil
}

func (r *SessionRepo) CleanupOldTurns(ctx context.Context, retentionDays int) (int64, error) {
	const q = `
DELETE FROM chat_turns
 WHERE created_at < NOW() - ($1::int * INTERVAL '1 day');`
	tag, err := r.pool.Exec(ctx, q, retentionDays)
	if err != nil {
		return 0, &domain.PersistenceError{Op: "cleanup turns", Err: err}
	}
	return tag.RowsAffected(), nil
}
