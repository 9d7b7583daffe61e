package repository

import (
	"context"
	"fmt"

	"courtside/database"
	"courtside/models"
)

// BalanceHistoryRepository implements the service.BalanceHistoryRepository interface
type BalanceHistoryRepository struct {
	q queryable
}

// NewBalanceHistoryRepository creates a new balance history repository
func NewBalanceHistoryRepository(db *database.DB) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: db.Pool}
}

// newBalanceHistoryRepositoryWithTx creates a new balance history repository with a transaction
func newBalanceHistoryRepositoryWithTx(tx queryable) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: tx}
}

// Record creates a new balance history entry
func (r *BalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	query := `
		INSERT INTO balance_history (
			user_id, balance_before, balance_after, change_amount,
			transaction_type, transaction_metadata, related_bet_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		history.UserID,
		history.BalanceBefore,
		history.BalanceAfter,
		history.ChangeAmount,
		history.TransactionType,
		history.TransactionMetadata,
		history.RelatedBetID,
	).Scan(&history.ID, &history.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	return nil
}

// GetByUser returns balance history for a specific user, newest first
func (r *BalanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	query := `
		SELECT id, user_id, balance_before, balance_after, change_amount,
			transaction_type, transaction_metadata, related_bet_id, created_at
		FROM balance_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history for user %d: %w", userID, err)
	}
	defer rows.Close()

	var entries []*models.BalanceHistory
	for rows.Next() {
		var entry models.BalanceHistory
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.ChangeAmount,
			&entry.TransactionType,
			&entry.TransactionMetadata,
			&entry.RelatedBetID,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance history: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate balance history: %w", err)
	}

	return entries, nil
}
