package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/studyclip/flashcard-server-go/internal/errors"
	"github.com/studyclip/flashcard-server-go/internal/middleware"
	"github.com/studyclip/flashcard-server-go/internal/service"
)

type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

func (h *CheckoutHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/create-session", h.CreateSession)
	r.Post("/cancel-subscription", h.CancelSubscription)

	return r
}

type createCheckoutRequest struct {
	AccountType string `json:"accountType"`
}

// POST /checkout/create-session
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var req createCheckoutRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	url, err := h.checkoutService.CreateCheckoutSession(r.Context(), user.ID, req.AccountType)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeExternal {
			log.Error().Err(err).Str("userId", user.ID).Msg("failed to create checkout session")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"checkoutUrl": url})
}

// POST /checkout/cancel-subscription
func (h *CheckoutHandler) CancelSubscription(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	if err := h.checkoutService.CancelSubscription(r.Context(), user.ID); err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeExternal {
			log.Error().Err(err).Str("userId", user.ID).Msg("failed to cancel subscription")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Subscription cancelled successfully",
	})
}
