package service

import (
	"context"
	"fmt"

	"courtside/events"
	"courtside/models"
)

// RecordBalanceChange records a balance history entry and emits the matching
// event. This is the single entry point for all balance changes in the system.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, history *models.BalanceHistory) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	// Flushed to the real bus only after the transaction commits
	uow.EventBus().Publish(events.BalanceChangeEvent{
		UserID:          history.UserID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		ChangeAmount:    history.ChangeAmount,
		TransactionType: history.TransactionType,
	})

	if history.TransactionType == models.TransactionTypeInitial {
		if username, ok := history.TransactionMetadata["username"].(string); ok {
			uow.EventBus().Publish(events.UserCreatedEvent{
				UserID:         history.UserID,
				Username:       username,
				InitialBalance: history.BalanceAfter,
			})
		}
	}

	return nil
}
