package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/studyclip/flashcard-server-go/internal/database"
	apperrors "github.com/studyclip/flashcard-server-go/internal/errors"
	"github.com/studyclip/flashcard-server-go/internal/model"
	"github.com/studyclip/flashcard-server-go/internal/repository"
	"github.com/studyclip/flashcard-server-go/internal/util"
)

// CardGenerator produces new flashcards from transcript text, excluding
// already existing questions.
type CardGenerator interface {
	Generate(ctx context.Context, sourceText string, existingQuestions []string, count int) (model.CardList, error)
}

// SessionService implements the session lifecycle protocol: quota-checked
// creation, ownership-scoped reads and mutations, and generation-backed
// appends.
type SessionService struct {
	db          *database.DB
	sessionRepo repository.SessionRepository
	generator   CardGenerator
	freeLimit   int
	batchSize   int
}

func NewSessionService(
	db *database.DB,
	sessionRepo repository.SessionRepository,
	generator CardGenerator,
	freeLimit int,
	batchSize int,
) *SessionService {
	return &SessionService{
		db:          db,
		sessionRepo: sessionRepo,
		generator:   generator,
		freeLimit:   freeLimit,
		batchSize:   batchSize,
	}
}

// Create inserts a new session for the owner. Free-plan owners are limited to
// freeLimit sessions; the count and the insert run in one transaction so two
// concurrent creates cannot both slip under the limit.
func (s *SessionService) Create(ctx context.Context, ownerID string, plan model.Plan, title string, cards model.CardList, sourceText string) (*model.FlashcardSession, error) {
	if title == "" {
		return nil, apperrors.MissingRequired("title")
	}
	if sourceText == "" {
		return nil, apperrors.MissingRequired("sourceText")
	}
	if cards == nil {
		return nil, apperrors.MissingRequired("cards")
	}

	var created *model.FlashcardSession
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		repo := s.sessionRepo.WithTx(tx)

		if plan == model.PlanFree {
			count, err := repo.CountByOwner(ctx, ownerID)
			if err != nil {
				return apperrors.Database(err)
			}
			if count >= s.freeLimit {
				return apperrors.QuotaExceeded("You have reached the maximum number of study sessions allowed for free accounts")
			}
		}

		session, err := repo.Create(ctx, model.CreateSessionParams{
			OwnerID:    ownerID,
			Title:      title,
			Cards:      cards,
			SourceText: sourceText,
		})
		if err != nil {
			return apperrors.Database(err)
		}
		created = session
		return nil
	})
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, apperrors.Database(err)
	}

	log.Info().
		Str("sessionId", created.ID).
		Str("ownerId", ownerID).
		Int("cards", len(created.Cards)).
		Msg("flashcard session created")

	return created, nil
}

// List returns the owner's sessions as summaries.
func (s *SessionService) List(ctx context.Context, ownerID string) ([]model.SessionSummary, error) {
	sessions, err := s.sessionRepo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	summaries := make([]model.SessionSummary, 0, len(sessions))
	for i := range sessions {
		summaries = append(summaries, sessions[i].Summary())
	}
	return summaries, nil
}

// Get returns a single owned session as a summary, or NotFound.
func (s *SessionService) Get(ctx context.Context, ownerID, sessionID string) (*model.SessionSummary, error) {
	if !util.IsValidUUID(sessionID) {
		return nil, apperrors.NotFound("Flashcard session")
	}

	session, err := s.sessionRepo.FindByIDAndOwner(ctx, sessionID, ownerID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Flashcard session")
	}

	summary := session.Summary()
	return &summary, nil
}

// AppendCards adds cards to the end of an owned session. Order of existing
// cards is preserved; no de-duplication happens here.
func (s *SessionService) AppendCards(ctx context.Context, ownerID, sessionID string, cards model.CardList) error {
	if len(cards) == 0 {
		return apperrors.ValidationError("cards (non-empty array) are required")
	}
	if !util.IsValidUUID(sessionID) {
		return apperrors.NotFound("Flashcard session")
	}

	found, err := s.sessionRepo.AppendCards(ctx, sessionID, ownerID, cards)
	if err != nil {
		return apperrors.Database(err)
	}
	if !found {
		return apperrors.NotFound("Flashcard session")
	}

	log.Info().
		Str("sessionId", sessionID).
		Str("ownerId", ownerID).
		Int("cards", len(cards)).
		Msg("flashcards appended")

	return nil
}

// Delete removes an owned session.
func (s *SessionService) Delete(ctx context.Context, ownerID, sessionID string) error {
	if !util.IsValidUUID(sessionID) {
		return apperrors.NotFound("Flashcard session")
	}

	found, err := s.sessionRepo.Delete(ctx, sessionID, ownerID)
	if err != nil {
		return apperrors.Database(err)
	}
	if !found {
		return apperrors.NotFound("Flashcard session")
	}

	log.Info().
		Str("sessionId", sessionID).
		Str("ownerId", ownerID).
		Msg("flashcard session deleted")

	return nil
}

// Rename sets a new title on an owned session and bumps updated_at.
func (s *SessionService) Rename(ctx context.Context, ownerID, sessionID, title string) error {
	if title == "" {
		return apperrors.MissingRequired("title")
	}
	if !util.IsValidUUID(sessionID) {
		return apperrors.NotFound("Flashcard session")
	}

	found, err := s.sessionRepo.Rename(ctx, sessionID, ownerID, title)
	if err != nil {
		return apperrors.Database(err)
	}
	if !found {
		return apperrors.NotFound("Flashcard session")
	}
	return nil
}

// AssignFolder attaches a folder reference to an owned session. The folder
// itself is not modeled here, so no existence check happens.
func (s *SessionService) AssignFolder(ctx context.Context, ownerID, sessionID, folderID string) error {
	if folderID == "" {
		return apperrors.MissingRequired("folderId")
	}
	if !util.IsValidUUID(folderID) {
		return apperrors.InvalidInput("folderId", "must be a UUID")
	}
	if !util.IsValidUUID(sessionID) {
		return apperrors.NotFound("Flashcard session")
	}

	found, err := s.sessionRepo.SetFolder(ctx, sessionID, ownerID, folderID)
	if err != nil {
		return apperrors.Database(err)
	}
	if !found {
		return apperrors.NotFound("Flashcard session")
	}
	return nil
}

// GenerateMore produces a fresh batch of cards for an owned session, avoiding
// its existing questions, and appends the batch. The batch is returned (not
// the full card list). Paid plans only; free callers are rejected before the
// generation gateway is touched.
func (s *SessionService) GenerateMore(ctx context.Context, ownerID string, plan model.Plan, sessionID string) (model.CardList, error) {
	if plan == model.PlanFree {
		return nil, apperrors.PlanRestricted("This feature is available for paid accounts only")
	}
	if !util.IsValidUUID(sessionID) {
		return nil, apperrors.NotFound("Flashcard session")
	}

	session, err := s.sessionRepo.FindByIDAndOwner(ctx, sessionID, ownerID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Flashcard session")
	}

	existing := make([]string, 0, len(session.Cards))
	for _, card := range session.Cards {
		existing = append(existing, card.Question)
	}

	newCards, err := s.generator.Generate(ctx, session.SourceText, existing, s.batchSize)
	if err != nil {
		return nil, err
	}

	found, err := s.sessionRepo.AppendCards(ctx, sessionID, ownerID, newCards)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if !found {
		return nil, apperrors.NotFound("Flashcard session")
	}

	log.Info().
		Str("sessionId", sessionID).
		Str("ownerId", ownerID).
		Int("cards", len(newCards)).
		Msg("additional flashcards generated")

	return newCards, nil
}

// GenerateFromText builds a first batch of cards for a transcript that has no
// session yet. Nothing is persisted.
func (s *SessionService) GenerateFromText(ctx context.Context, sourceText string) (model.CardList, error) {
	if sourceText == "" {
		return nil, apperrors.MissingRequired("transcript")
	}
	return s.generator.Generate(ctx, sourceText, nil, s.batchSize)
}
