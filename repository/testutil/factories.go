package testutil

import (
	"fmt"
	"time"

	"courtside/models"

	"github.com/brianvoe/gofakeit"
	"github.com/shopspring/decimal"
)

// CreateTestUser creates a test user with default values. The suffix keeps
// email and username unique across calls within one test database.
func CreateTestUser(suffix string) *models.User {
	hash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
	return &models.User{
		Email:        fmt.Sprintf("%s-%s@example.com", gofakeit.Username(), suffix),
		Username:     fmt.Sprintf("%s_%s", gofakeit.Username(), suffix),
		PasswordHash: &hash,
		Balance:      decimal.NewFromInt(1000),
		Reputation:   0,
	}
}

// CreateTestUserWithBalance creates a test user with a specific balance
func CreateTestUserWithBalance(suffix string, balance decimal.Decimal) *models.User {
	user := CreateTestUser(suffix)
	user.Balance = balance
	return user
}

// CreateTestBet creates a pending test bet owned by the given user
func CreateTestBet(userID int64) *models.Bet {
	stake := decimal.NewFromInt(100)
	return &models.Bet{
		UserID: userID,
		Type:   models.BetTypeMoneyline,
		Sport:  "basketball",
		Team1:  gofakeit.City() + " " + gofakeit.LastName(),
		Team2:  gofakeit.City() + " " + gofakeit.LastName(),
		Odds:   150,
		Stake:  stake,
		Payout: decimal.NewFromInt(250),
		Status: models.BetStatusPending,
	}
}

// CreateTestBetWithTeams creates a pending test bet with fixed team names
func CreateTestBetWithTeams(userID int64, team1, team2 string) *models.Bet {
	bet := CreateTestBet(userID)
	bet.Team1 = team1
	bet.Team2 = team2
	return bet
}

// CreateTestVotingBet creates a matched bet already in the voting phase
func CreateTestVotingBet(userID, challengerID int64, votingEndsAt time.Time) *models.Bet {
	bet := CreateTestBet(userID)
	now := time.Now()
	bet.ChallengerID = &challengerID
	bet.Status = models.BetStatusVoting
	bet.MatchedAt = &now
	bet.VotingEndsAt = &votingEndsAt
	return bet
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(userID int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   decimal.NewFromInt(1000),
		BalanceAfter:    decimal.NewFromInt(900),
		ChangeAmount:    decimal.NewFromInt(-100),
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}
