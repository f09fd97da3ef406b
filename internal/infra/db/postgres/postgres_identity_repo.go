package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"nexus-ai-chat/internal/domain"
	"nexus-ai-chat/internal/domain/model"
	"nexus-ai-chat/internal/domain/ports/repository"
)

var _ repository.IdentityRepository = (*IdentityRepo)(nil)

type IdentityRepo struct {
	pool *pgxpool.Pool
}

func NewIdentityRepo(pool *pgxpool.Pool) *IdentityRepo {
	return &IdentityRepo{pool: pool}
}

func (r *IdentityRepo) Create(ctx context.Context, id *model.Identity, passwordHash string) error {
	const q = `
INSERT INTO identities (id, email, display_name, password_hash, created_at)
VALUES ($1,$2,$3,$4,NOW());`
	_, err := r.pool.Exec(ctx, q, id.ID, strings.ToLower(id.Email), id.DisplayName, passwordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return domain.ErrEmailTaken
		}
		return &domain.PersistenceError{Op: "create identity", Err: err}
	}
	return nil
}

func (r *IdentityRepo) FindByEmail(ctx context.Context, email string) (*model.Identity, string, error) {
	const q = `SELECT id, email, display_name, password_hash, created_at FROM identities WHERE email=$1;`
	var id model.Identity
	var hash string
	err := r.pool.QueryRow(ctx, q, strings.ToLower(email)).Scan(&id.ID, &id.Email, &id.DisplayName, &hash, &id.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, "", domain.ErrNotFound
		}
		return nil, "", &domain.PersistenceError{Op: "find identity", Err: err}
	}
	return &id, hash, nil
}

func (r *IdentityRepo) FindByID(ctx context.Context, userID string) (*model.Identity, error) {
	const q = `SELECT id, email, display_name, created_at FROM identities WHERE id=$1;`
	var id model.Identity
	err := r.pool.QueryRow(ctx, q, userID).Scan(&id.ID, &id.Email, &id.DisplayName, &id.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.PersistenceError{Op: "find identity", Err: err}
	}
	return &id, nil
}
