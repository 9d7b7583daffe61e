package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetStatus represents the lifecycle state of a bet
type BetStatus string

const (
	BetStatusPending   BetStatus = "pending"
	BetStatusMatched   BetStatus = "matched"
	BetStatusVoting    BetStatus = "voting"
	BetStatusCompleted BetStatus = "completed"
	BetStatusCancelled BetStatus = "cancelled"
)

// BetType represents the kind of wager being offered
type BetType string

const (
	BetTypeMoneyline BetType = "moneyline"
	BetTypeSpread    BetType = "spread"
	BetTypeOverUnder BetType = "over_under"
	BetTypeParlay    BetType = "parlay"
	BetTypeProp      BetType = "prop"
)

// ValidBetType reports whether t is one of the supported bet types.
func ValidBetType(t BetType) bool {
	switch t {
	case BetTypeMoneyline, BetTypeSpread, BetTypeOverUnder, BetTypeParlay, BetTypeProp:
		return true
	}
	return false
}

// Bet represents a peer-to-peer wager between a creator and a challenger
type Bet struct {
	ID           int64            `db:"id"`
	UserID       int64            `db:"user_id"`
	ChallengerID *int64           `db:"challenger_id"`
	Type         BetType          `db:"bet_type"`
	Sport        string           `db:"sport"`
	Team1        string           `db:"team1"`
	Team2        string           `db:"team2"`
	Line         *decimal.Decimal `db:"line"`
	Odds         int              `db:"odds"`
	Stake        decimal.Decimal  `db:"stake"`
	Payout       decimal.Decimal  `db:"payout"`
	Status       BetStatus        `db:"status"`
	WinnerID     *int64           `db:"winner_id"`
	WinningTeam  *string          `db:"winning_team"`
	VotingEndsAt *time.Time       `db:"voting_ends_at"`
	CreatedAt    time.Time        `db:"created_at"`
	MatchedAt    *time.Time       `db:"matched_at"`
	CompletedAt  *time.Time       `db:"completed_at"`
}

// ChallengerStake is the amount the accepting side must put up.
// The creator's stake plus the challenger's stake covers the full payout.
func (b *Bet) ChallengerStake() decimal.Decimal {
	return b.Payout.Sub(b.Stake)
}

// IsParty checks if a user is one of the two sides of the bet
func (b *Bet) IsParty(userID int64) bool {
	if b.UserID == userID {
		return true
	}
	return b.ChallengerID != nil && *b.ChallengerID == userID
}

// HasTeam reports whether team names one of the bet's two teams.
func (b *Bet) HasTeam(team string) bool {
	return team == b.Team1 || team == b.Team2
}

// PartyForTeam returns the user id backing the given team. The creator
// backs team1 and the challenger backs team2.
func (b *Bet) PartyForTeam(team string) int64 {
	if team == b.Team1 {
		return b.UserID
	}
	if b.ChallengerID != nil {
		return *b.ChallengerID
	}
	return 0
}

// CanBeAccepted checks if the bet is open for the given user to accept
func (b *Bet) CanBeAccepted(userID int64) bool {
	return b.Status == BetStatusPending && b.UserID != userID
}

// CanBeCancelled checks if the bet can be cancelled by the given user
func (b *Bet) CanBeCancelled(userID int64) bool {
	return b.Status == BetStatusPending && b.UserID == userID
}

// CanBeJudged checks if the given user may vote on the bet's outcome
func (b *Bet) CanBeJudged(userID int64) bool {
	if b.Status != BetStatusMatched && b.Status != BetStatusVoting {
		return false
	}
	return !b.IsParty(userID)
}

// IsActive checks if the bet is in a non-terminal state
func (b *Bet) IsActive() bool {
	return b.Status == BetStatusPending || b.Status == BetStatusMatched || b.Status == BetStatusVoting
}

// VotingExpired reports whether the voting window has elapsed as of now.
func (b *Bet) VotingExpired(now time.Time) bool {
	return b.Status == BetStatusVoting && b.VotingEndsAt != nil && !now.Before(*b.VotingEndsAt)
}

// BetView is a bet snapshot annotated with caller-relative flags
type BetView struct {
	Bet       *Bet
	CanAccept bool
	CanJudge  bool
	IsMyBet   bool
}

// NewBetView builds the caller-relative view of a bet.
func NewBetView(bet *Bet, callerID int64) *BetView {
	return &BetView{
		Bet:       bet,
		CanAccept: bet.CanBeAccepted(callerID),
		CanJudge:  bet.CanBeJudged(callerID),
		IsMyBet:   bet.IsParty(callerID),
	}
}

// SettlementResult represents the outcome of settling a bet
type SettlementResult struct {
	Bet           *Bet
	WinnerID      int64
	LoserID       int64
	WinningTeam   string
	AmountWon     decimal.Decimal
	CorrectVoters []int64
	VotesForTeam1 int
	VotesForTeam2 int
}
