package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeInitial         TransactionType = "initial"
	TransactionTypeBetStake        TransactionType = "bet_stake"
	TransactionTypeChallengerStake TransactionType = "challenger_stake"
	TransactionTypeBetPayout       TransactionType = "bet_payout"
	TransactionTypeStakeRefund     TransactionType = "stake_refund"
	TransactionTypeCredit          TransactionType = "credit"
	TransactionTypeTransferIn      TransactionType = "transfer_in"
	TransactionTypeTransferOut     TransactionType = "transfer_out"
)

// BalanceHistory represents a historical balance change
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	UserID              int64           `db:"user_id"`
	BalanceBefore       decimal.Decimal `db:"balance_before"`
	BalanceAfter        decimal.Decimal `db:"balance_after"`
	ChangeAmount        decimal.Decimal `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	RelatedBetID        *int64          `db:"related_bet_id"`
	CreatedAt           time.Time       `db:"created_at"`
}
