package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/studyclip/flashcard-server-go/internal/errors"
	"github.com/studyclip/flashcard-server-go/internal/middleware"
	"github.com/studyclip/flashcard-server-go/internal/model"
	"github.com/studyclip/flashcard-server-go/internal/service"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{sessionID}", h.Get)
	r.Delete("/{sessionID}", h.Delete)
	r.Post("/{sessionID}/cards", h.AppendCards)
	r.Patch("/{sessionID}/title", h.Rename)
	r.Patch("/{sessionID}/folder", h.AssignFolder)
	r.Post("/{sessionID}/generate", h.GenerateMore)

	return r
}

type createSessionRequest struct {
	Title      string          `json:"title"`
	Cards      *model.CardList `json:"cards"`
	SourceText string          `json:"sourceText"`
}

// POST /sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req createSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var cards model.CardList
	if req.Cards != nil {
		cards = *req.Cards
		if cards == nil {
			cards = model.CardList{}
		}
	}

	session, err := h.sessionService.Create(r.Context(), user.ID, user.Plan, req.Title, cards, req.SourceText)
	if err != nil {
		log.Error().Err(err).Str("ownerId", user.ID).Msg("failed to create flashcard session")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Flashcard session created successfully",
		"session": session,
	})
}

// GET /sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	sessions, err := h.sessionService.List(r.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Str("ownerId", user.ID).Msg("failed to list flashcard sessions")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sessions": sessions})
}

// GET /sessions/{sessionID}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.sessionService.Get(r.Context(), user.ID, sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// DELETE /sessions/{sessionID}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.sessionService.Delete(r.Context(), user.ID, sessionID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Flashcard session deleted successfully",
	})
}

type appendCardsRequest struct {
	Cards model.CardList `json:"cards"`
}

// POST /sessions/{sessionID}/cards
func (h *SessionHandler) AppendCards(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	var req appendCardsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.sessionService.AppendCards(r.Context(), user.ID, sessionID, req.Cards); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Flashcards added successfully to the session",
	})
}

type renameSessionRequest struct {
	Title string `json:"title"`
}

// PATCH /sessions/{sessionID}/title
func (h *SessionHandler) Rename(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	var req renameSessionRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.sessionService.Rename(r.Context(), user.ID, sessionID, req.Title); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Flashcard session name updated successfully",
	})
}

type assignFolderRequest struct {
	FolderID string `json:"folderId"`
}

// PATCH /sessions/{sessionID}/folder
func (h *SessionHandler) AssignFolder(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	var req assignFolderRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.sessionService.AssignFolder(r.Context(), user.ID, sessionID, req.FolderID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Folder assigned successfully",
	})
}

// POST /sessions/{sessionID}/generate
func (h *SessionHandler) GenerateMore(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	sessionID := chi.URLParam(r, "sessionID")

	newCards, err := h.sessionService.GenerateMore(r.Context(), user.ID, user.Plan, sessionID)
	if err != nil {
		if code := apperrors.GetCode(err); code != apperrors.ErrCodeNotFound && code != apperrors.ErrCodePlanRestricted {
			log.Error().Err(err).Str("sessionId", sessionID).Msg("failed to generate additional flashcards")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Additional flashcards generated and added successfully",
		"newCards": newCards,
	})
}

type generateRequest struct {
	Transcript string `json:"transcript"`
}

// POST /generate
func (h *SessionHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	cards, err := h.sessionService.GenerateFromText(r.Context(), req.Transcript)
	if err != nil {
		if apperrors.GetCode(err) != apperrors.ErrCodeMissingRequired {
			log.Error().Err(err).Msg("failed to generate flashcards")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"flashcards": cards})
}
