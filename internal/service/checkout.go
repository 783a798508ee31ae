package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/studyclip/flashcard-server-go/internal/checkout"
	apperrors "github.com/studyclip/flashcard-server-go/internal/errors"
	"github.com/studyclip/flashcard-server-go/internal/model"
	"github.com/studyclip/flashcard-server-go/internal/repository"
)

// PaymentProvider is the hosted checkout boundary.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, p checkout.SessionParams) (string, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

type CheckoutService struct {
	provider  PaymentProvider
	userRepo  repository.UserRepository
	priceIDs  map[string]string
	clientURL string
}

func NewCheckoutService(
	provider PaymentProvider,
	userRepo repository.UserRepository,
	paidPriceID string,
	clientURL string,
) *CheckoutService {
	return &CheckoutService{
		provider: provider,
		userRepo: userRepo,
		priceIDs: map[string]string{
			"paid": paidPriceID,
		},
		clientURL: clientURL,
	}
}

// CreateCheckoutSession opens a hosted checkout for upgrading to accountType
// and returns the redirect URL.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, userID, accountType string) (string, error) {
	if accountType == "" {
		return "", apperrors.MissingRequired("accountType")
	}

	priceID, ok := s.priceIDs[accountType]
	if !ok || priceID == "" {
		return "", apperrors.InvalidInput("accountType", "no such plan")
	}

	url, err := s.provider.CreateCheckoutSession(ctx, checkout.SessionParams{
		UserID:      userID,
		AccountType: accountType,
		PriceID:     priceID,
		SuccessURL:  s.clientURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:   s.clientURL + "/cancel",
	})
	if err != nil {
		return "", apperrors.External("stripe", err)
	}

	log.Info().
		Str("userId", userID).
		Str("accountType", accountType).
		Msg("checkout session created")

	return url, nil
}

// CancelSubscription cancels the caller's provider subscription and drops the
// account back to the free plan.
func (s *CheckoutService) CancelSubscription(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return apperrors.Database(err)
	}
	if user == nil {
		return apperrors.NotFound("User")
	}
	if user.StripeSubscriptionID == nil || *user.StripeSubscriptionID == "" {
		return apperrors.ValidationError("No active subscription to cancel")
	}

	if err := s.provider.CancelSubscription(ctx, *user.StripeSubscriptionID); err != nil {
		return apperrors.External("stripe", err)
	}

	if err := s.userRepo.SetStripeSubscription(ctx, userID, nil); err != nil {
		return apperrors.Database(err)
	}
	if _, err := s.userRepo.UpdatePlan(ctx, userID, model.PlanFree); err != nil {
		return apperrors.Database(err)
	}

	log.Info().
		Str("userId", userID).
		Msg("subscription cancelled")

	return nil
}
