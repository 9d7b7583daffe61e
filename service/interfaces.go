package service

import (
	"context"
	"time"

	"courtside/events"
	"courtside/models"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by id
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByUsername retrieves a user by username
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// Create inserts a new user and fills in generated fields
	Create(ctx context.Context, user *models.User) error

	// AddBalance adds to a user's balance atomically
	AddBalance(ctx context.Context, userID int64, amount decimal.Decimal) error

	// DeductBalance deducts from a user's balance atomically, failing with
	// ErrInsufficientBalance if the user cannot cover the amount
	DeductBalance(ctx context.Context, userID int64, amount decimal.Decimal) error

	// AddReputation increments a user's reputation counter
	AddReputation(ctx context.Context, userID int64, points int) error

	// GetLeaderboard returns the top users ordered by balance
	GetLeaderboard(ctx context.Context, limit int) ([]*models.User, error)
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	// Create inserts a new bet and fills in generated fields
	Create(ctx context.Context, bet *models.Bet) error

	// GetByID retrieves a bet by its ID
	GetByID(ctx context.Context, id int64) (*models.Bet, error)

	// Claim attaches a challenger to a pending, unclaimed bet. Returns false
	// when the bet was no longer claimable (already matched or not pending).
	Claim(ctx context.Context, betID, challengerID int64, matchedAt time.Time) (bool, error)

	// Update updates a bet's state and related fields
	Update(ctx context.Context, bet *models.Bet) error

	// GetOpen returns pending bets, newest first
	GetOpen(ctx context.Context, limit int) ([]*models.Bet, error)

	// GetByUser returns bets where the user is creator or challenger
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error)

	// GetJudgeable returns matched/voting bets the user is not a party to
	GetJudgeable(ctx context.Context, userID int64, limit int) ([]*models.Bet, error)

	// GetExpiredVoting returns bets in voting whose window closed before now
	GetExpiredVoting(ctx context.Context, now time.Time) ([]*models.Bet, error)
}

// BetVoteRepository defines the interface for judging-vote data access
type BetVoteRepository interface {
	// Upsert records a vote, replacing the voter's earlier choice if any
	Upsert(ctx context.Context, vote *models.BetVote) error

	// DeleteByVoter removes a voter's vote, reporting whether one existed
	DeleteByVoter(ctx context.Context, betID, voterID int64) (bool, error)

	// GetByBet returns all votes for a bet in cast order
	GetByBet(ctx context.Context, betID int64) ([]*models.BetVote, error)

	// GetVoteCounts returns the per-team tally for a bet
	GetVoteCounts(ctx context.Context, betID int64, team1, team2 string) (*models.VoteCount, error)

	// GetVotersForTeam returns the user ids that voted for the given team
	GetVotersForTeam(ctx context.Context, betID int64, team string) ([]int64, error)
}

// BalanceHistoryRepository defines the interface for ledger tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	BetRepository() BetRepository
	BetVoteRepository() BetVoteRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// BetTerms carries the validated terms of a new bet
type BetTerms struct {
	Type  models.BetType
	Sport string
	Team1 string
	Team2 string
	Line  *decimal.Decimal
	Odds  int
	Stake decimal.Decimal
}

// BetQueryView selects which slice of bets a listing returns
type BetQueryView string

const (
	BetViewOpen    BetQueryView = "open"
	BetViewMine    BetQueryView = "mine"
	BetViewToJudge BetQueryView = "to_judge"
)

// JudgeAction is the tagged action of a judging request
type JudgeAction string

const (
	JudgeActionChooseWinner JudgeAction = "choose_winner"
	JudgeActionGameNotOver  JudgeAction = "game_not_over"
)

// VoteOutcome reports what a judging call did
type VoteOutcome struct {
	Status     string // "Vote recorded", "Vote removed" or "Bet completed"
	Bet        *models.Bet
	VoteCount  *models.VoteCount
	Settlement *models.SettlementResult // non-nil when the vote settled the bet
}

// UserService defines the interface for account operations
type UserService interface {
	// Register creates a local-credential account with the starting balance
	Register(ctx context.Context, email, username, password string) (*models.User, error)

	// Authenticate verifies email/password credentials
	Authenticate(ctx context.Context, email, password string) (*models.User, error)

	// GetByID retrieves a user by id
	GetByID(ctx context.Context, userID int64) (*models.User, error)

	// Credit adds tokens to a user's balance
	Credit(ctx context.Context, userID int64, amount decimal.Decimal) (*models.User, error)

	// Transfer moves tokens between two users atomically
	Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) error

	// GetLeaderboard returns the top users by balance
	GetLeaderboard(ctx context.Context, limit int) ([]*models.User, error)
}

// BetService defines the interface for bet lifecycle operations
type BetService interface {
	// CreateBet validates terms and opens a pending bet, debiting the stake
	CreateBet(ctx context.Context, userID int64, terms BetTerms) (*models.Bet, error)

	// AcceptBet matches a pending bet, debiting the challenger stake
	AcceptBet(ctx context.Context, userID, betID int64) (*models.Bet, error)

	// CancelBet cancels the caller's own pending bet and refunds the stake
	CancelBet(ctx context.Context, userID, betID int64) (*models.Bet, error)

	// GetBet retrieves a bet by id
	GetBet(ctx context.Context, betID int64) (*models.Bet, error)

	// ListBets returns caller-relative bet views for the requested slice
	ListBets(ctx context.Context, callerID int64, view BetQueryView) ([]*models.BetView, error)
}

// JudgingService defines the interface for voting and settlement
type JudgingService interface {
	// CastVote records, replaces or removes a judging vote and settles the
	// bet when the voting window has elapsed with a majority
	CastVote(ctx context.Context, voterID, betID int64, action JudgeAction, winner string) (*VoteOutcome, error)

	// SettleExpired settles all bets whose voting window has closed.
	// Returns the number of bets settled.
	SettleExpired(ctx context.Context) (int, error)
}
