package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/studyclip/flashcard-server-go/internal/model"
)

type AuthTokenRepository interface {
	Create(ctx context.Context, params model.CreateAuthTokenParams) (*model.AuthToken, error)
	FindActiveByHash(ctx context.Context, tokenHash string) (*model.AuthToken, error)
	DeleteExpired(ctx context.Context) (int64, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) AuthTokenRepository
}

type authTokenRepo struct {
	db sqlxDB
}

func NewAuthTokenRepository(db *sqlx.DB) AuthTokenRepository {
	return &authTokenRepo{db: db}
}

func (r *authTokenRepo) WithTx(tx *sqlx.Tx) AuthTokenRepository {
	return &authTokenRepo{db: tx}
}

func (r *authTokenRepo) Create(ctx context.Context, params model.CreateAuthTokenParams) (*model.AuthToken, error) {
	var token model.AuthToken
	err := r.db.GetContext(ctx, &token, `
		INSERT INTO auth_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING *
	`, params.UserID, params.TokenHash, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *authTokenRepo) FindActiveByHash(ctx context.Context, tokenHash string) (*model.AuthToken, error) {
	var token model.AuthToken
	err := r.db.GetContext(ctx, &token, `
		SELECT * FROM auth_tokens
		WHERE token_hash = $1 AND expires_at > NOW()
	`, tokenHash)
	return HandleNotFound(&token, err)
}

func (r *authTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM auth_tokens WHERE expires_at < NOW()
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
