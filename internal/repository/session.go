package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/studyclip/flashcard-server-go/internal/model"
)

// SessionRepository is the store adapter for flashcard sessions. Every
// mutation filters by (id, owner_id) in the statement itself, so ownership
// is enforced by the store in a single atomic operation; the boolean result
// reports whether a matching owned row existed.
type SessionRepository interface {
	Create(ctx context.Context, params model.CreateSessionParams) (*model.FlashcardSession, error)
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.FlashcardSession, error)
	FindByOwner(ctx context.Context, ownerID string) ([]model.FlashcardSession, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	AppendCards(ctx context.Context, id, ownerID string, cards model.CardList) (bool, error)
	Rename(ctx context.Context, id, ownerID, title string) (bool, error)
	SetFolder(ctx context.Context, id, ownerID, folderID string) (bool, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) SessionRepository
}

type sessionRepo struct {
	db sqlxDB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) WithTx(tx *sqlx.Tx) SessionRepository {
	return &sessionRepo{db: tx}
}

func (r *sessionRepo) Create(ctx context.Context, params model.CreateSessionParams) (*model.FlashcardSession, error) {
	var session model.FlashcardSession
	err := r.db.GetContext(ctx, &session, `
		INSERT INTO flashcard_sessions (owner_id, title, cards, source_text)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.OwnerID, params.Title, params.Cards, params.SourceText)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*model.FlashcardSession, error) {
	var session model.FlashcardSession
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM flashcard_sessions WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) FindByOwner(ctx context.Context, ownerID string) ([]model.FlashcardSession, error) {
	var sessions []model.FlashcardSession
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT * FROM flashcard_sessions
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM flashcard_sessions WHERE owner_id = $1
	`, ownerID)
	return count, err
}

// AppendCards concatenates cards onto the stored JSONB array in a single
// statement, so concurrent appends never lose entries and existing order is
// preserved. updated_at is intentionally left untouched (only renames bump it).
func (r *sessionRepo) AppendCards(ctx context.Context, id, ownerID string, cards model.CardList) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE flashcard_sessions
		SET cards = cards || $3::jsonb
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID, cards)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *sessionRepo) Rename(ctx context.Context, id, ownerID, title string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE flashcard_sessions
		SET title = $3, updated_at = $4
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID, title, time.Now())
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *sessionRepo) SetFolder(ctx context.Context, id, ownerID, folderID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE flashcard_sessions
		SET folder_id = $3
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID, folderID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *sessionRepo) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM flashcard_sessions WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
