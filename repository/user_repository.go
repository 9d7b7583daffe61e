package repository

import (
	"context"
	"fmt"

	"courtside/database"
	"courtside/models"
	"courtside/service"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const userColumns = `id, email, username, password_hash, external_id, balance, reputation, created_at, updated_at`

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.ExternalID,
		&user.Balance,
		&user.Reputation,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, username))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// Create inserts a new user and fills in generated fields
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, username, password_hash, external_id, balance, reputation)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.ExternalID,
		user.Balance,
		user.Reputation,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", user.Username, err)
	}

	return nil
}

// AddBalance adds to a user's balance atomically
func (r *UserRepository) AddBalance(ctx context.Context, userID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to add balance for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %d", service.ErrNotFound, userID)
	}

	return nil
}

// DeductBalance deducts from a user's balance atomically, failing if the
// conditional update matches no row because funds are insufficient.
func (r *UserRepository) DeductBalance(ctx context.Context, userID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to deduct balance for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		user, err := r.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("%w: user %d", service.ErrNotFound, userID)
		}
		return fmt.Errorf("%w: have %s, need %s", service.ErrInsufficientBalance, user.Balance, amount)
	}

	return nil
}

// AddReputation increments a user's reputation counter
func (r *UserRepository) AddReputation(ctx context.Context, userID int64, points int) error {
	query := `
		UPDATE users
		SET reputation = reputation + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, points, userID)
	if err != nil {
		return fmt.Errorf("failed to add reputation for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: user %d", service.ErrNotFound, userID)
	}

	return nil
}

// GetLeaderboard returns the top users ordered by balance
func (r *UserRepository) GetLeaderboard(ctx context.Context, limit int) ([]*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY balance DESC, reputation DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Username,
			&user.PasswordHash,
			&user.ExternalID,
			&user.Balance,
			&user.Reputation,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}
