package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/studyclip/flashcard-server-go/internal/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, params model.CreateUserParams) (*model.User, error)
	UpdatePlan(ctx context.Context, id string, plan model.Plan) (*model.User, error)
	SetStripeCustomer(ctx context.Context, id, customerID string) error
	SetStripeSubscription(ctx context.Context, id string, subscriptionID *string) error
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) UserRepository
}

type userRepo struct {
	db sqlxDB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) WithTx(tx *sqlx.Tx) UserRepository {
	return &userRepo{db: tx}
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE id = $1 AND disabled_at IS NULL
	`, id)
	return HandleNotFound(&user, err)
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		SELECT * FROM users WHERE email = $1 AND disabled_at IS NULL
	`, email)
	return HandleNotFound(&user, err)
}

func (r *userRepo) Create(ctx context.Context, params model.CreateUserParams) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		INSERT INTO users (email, plan)
		VALUES ($1, $2)
		RETURNING *
	`, params.Email, params.Plan)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) UpdatePlan(ctx context.Context, id string, plan model.Plan) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `
		UPDATE users SET
			plan = $2,
			updated_at = $3
		WHERE id = $1
		RETURNING *
	`, id, plan, time.Now())
	return HandleNotFound(&user, err)
}

func (r *userRepo) SetStripeCustomer(ctx context.Context, id, customerID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			stripe_customer_id = $2,
			updated_at = $3
		WHERE id = $1
	`, id, customerID, time.Now())
	return err
}

func (r *userRepo) SetStripeSubscription(ctx context.Context, id string, subscriptionID *string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			stripe_subscription_id = $2,
			updated_at = $3
		WHERE id = $1
	`, id, subscriptionID, time.Now())
	return err
}
