package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/studyclip/flashcard-server-go/internal/model"
	"github.com/studyclip/flashcard-server-go/internal/repository"
	"github.com/studyclip/flashcard-server-go/internal/util"
)

// Mock auth token repository
type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) Create(ctx context.Context, params model.CreateAuthTokenParams) (*model.AuthToken, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthToken), args.Error(1)
}

func (m *mockTokenRepo) FindActiveByHash(ctx context.Context, tokenHash string) (*model.AuthToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AuthToken), args.Error(1)
}

func (m *mockTokenRepo) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockTokenRepo) WithTx(tx *sqlx.Tx) repository.AuthTokenRepository {
	return m
}

// Mock user repository
type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) UpdatePlan(ctx context.Context, id string, plan model.Plan) (*model.User, error) {
	args := m.Called(ctx, id, plan)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) SetStripeCustomer(ctx context.Context, id, customerID string) error {
	args := m.Called(ctx, id, customerID)
	return args.Error(0)
}

func (m *mockUserRepo) SetStripeSubscription(ctx context.Context, id string, subscriptionID *string) error {
	args := m.Called(ctx, id, subscriptionID)
	return args.Error(0)
}

func (m *mockUserRepo) WithTx(tx *sqlx.Tx) repository.UserRepository {
	return m
}

func runAuth(tokens *mockTokenRepo, users *mockUserRepo, authHeader string) (*httptest.ResponseRecorder, *model.User) {
	var captured *model.User
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetUser(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/sessions", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()

	NewAuthMiddleware(tokens, users).Handler(next).ServeHTTP(rec, req)
	return rec, captured
}

func TestAuthMiddleware(t *testing.T) {
	token := "deadbeefcafe"
	tokenHash := util.HashToken(token)

	t.Run("valid token attaches the user", func(t *testing.T) {
		tokens := new(mockTokenRepo)
		users := new(mockUserRepo)

		tokens.On("FindActiveByHash", mock.Anything, tokenHash).Return(&model.AuthToken{
			ID:     "tok-1",
			UserID: "user-1",
		}, nil)
		users.On("FindByID", mock.Anything, "user-1").Return(&model.User{
			ID:   "user-1",
			Plan: model.PlanPaid,
		}, nil)

		rec, user := runAuth(tokens, users, "Bearer "+token)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotNil(t, user)
		assert.Equal(t, "user-1", user.ID)
		assert.Equal(t, model.PlanPaid, user.Plan)
	})

	t.Run("missing header is a 401", func(t *testing.T) {
		tokens := new(mockTokenRepo)
		users := new(mockUserRepo)

		rec, user := runAuth(tokens, users, "")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, user)
		tokens.AssertNotCalled(t, "FindActiveByHash", mock.Anything, mock.Anything)
	})

	t.Run("non-bearer header is a 401", func(t *testing.T) {
		tokens := new(mockTokenRepo)
		users := new(mockUserRepo)

		rec, user := runAuth(tokens, users, "Basic dXNlcjpwYXNz")

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, user)
	})

	t.Run("unknown or expired token is a 401", func(t *testing.T) {
		tokens := new(mockTokenRepo)
		users := new(mockUserRepo)

		tokens.On("FindActiveByHash", mock.Anything, tokenHash).Return(nil, nil)

		rec, user := runAuth(tokens, users, "Bearer "+token)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, user)
		users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("token without a live user is a 401", func(t *testing.T) {
		tokens := new(mockTokenRepo)
		users := new(mockUserRepo)

		tokens.On("FindActiveByHash", mock.Anything, tokenHash).Return(&model.AuthToken{
			ID:     "tok-1",
			UserID: "user-1",
		}, nil)
		users.On("FindByID", mock.Anything, "user-1").Return(nil, nil)

		rec, user := runAuth(tokens, users, "Bearer "+token)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Nil(t, user)
	})

	t.Run("store failure is a 500", func(t *testing.T) {
		tokens := new(mockTokenRepo)
		users := new(mockUserRepo)

		tokens.On("FindActiveByHash", mock.Anything, tokenHash).Return(nil, errors.New("connection refused"))

		rec, user := runAuth(tokens, users, "Bearer "+token)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Nil(t, user)
	})
}

func TestGetUser(t *testing.T) {
	t.Run("returns nil without a user in context", func(t *testing.T) {
		assert.Nil(t, GetUser(context.Background()))
	})
}
