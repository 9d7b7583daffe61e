package service

import (
	"context"
	"time"

	"courtside/events"
	"courtside/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) AddBalance(ctx context.Context, userID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, userID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, userID, amount)
	return args.Error(0)
}

func (m *MockUserRepository) AddReputation(ctx context.Context, userID int64, points int) error {
	args := m.Called(ctx, userID, points)
	return args.Error(0)
}

func (m *MockUserRepository) GetLeaderboard(ctx context.Context, limit int) ([]*models.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

// MockBetRepository is a mock implementation of BetRepository
type MockBetRepository struct {
	mock.Mock
}

func (m *MockBetRepository) Create(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *MockBetRepository) Claim(ctx context.Context, betID, challengerID int64, matchedAt time.Time) (bool, error) {
	args := m.Called(ctx, betID, challengerID, matchedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockBetRepository) Update(ctx context.Context, bet *models.Bet) error {
	args := m.Called(ctx, bet)
	return args.Error(0)
}

func (m *MockBetRepository) GetOpen(ctx context.Context, limit int) ([]*models.Bet, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetJudgeable(ctx context.Context, userID int64, limit int) ([]*models.Bet, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockBetRepository) GetExpiredVoting(ctx context.Context, now time.Time) ([]*models.Bet, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

// MockBetVoteRepository is a mock implementation of BetVoteRepository
type MockBetVoteRepository struct {
	mock.Mock
}

func (m *MockBetVoteRepository) Upsert(ctx context.Context, vote *models.BetVote) error {
	args := m.Called(ctx, vote)
	return args.Error(0)
}

func (m *MockBetVoteRepository) DeleteByVoter(ctx context.Context, betID, voterID int64) (bool, error) {
	args := m.Called(ctx, betID, voterID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBetVoteRepository) GetByBet(ctx context.Context, betID int64) ([]*models.BetVote, error) {
	args := m.Called(ctx, betID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BetVote), args.Error(1)
}

func (m *MockBetVoteRepository) GetVoteCounts(ctx context.Context, betID int64, team1, team2 string) (*models.VoteCount, error) {
	args := m.Called(ctx, betID, team1, team2)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.VoteCount), args.Error(1)
}

func (m *MockBetVoteRepository) GetVotersForTeam(ctx context.Context, betID int64, team string) ([]int64, error) {
	args := m.Called(ctx, betID, team)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// NoopEventPublisher discards events, for tests that don't assert on them
type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(event events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories are
// supplied through SetRepositories rather than mock expectations, so the
// getters stay out of the assertion surface.
type MockUnitOfWork struct {
	mock.Mock

	userRepo           UserRepository
	betRepo            BetRepository
	betVoteRepo        BetVoteRepository
	balanceHistoryRepo BalanceHistoryRepository
	eventBus           EventPublisher
}

// SetRepositories wires the repositories the unit of work hands out. Nil
// arguments leave the corresponding getter returning nil.
func (m *MockUnitOfWork) SetRepositories(users UserRepository, bets BetRepository, votes BetVoteRepository, history BalanceHistoryRepository, bus EventPublisher) {
	m.userRepo = users
	m.betRepo = bets
	m.betVoteRepo = votes
	m.balanceHistoryRepo = history
	if bus == nil {
		bus = NoopEventPublisher{}
	}
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.userRepo
}

func (m *MockUnitOfWork) BetRepository() BetRepository {
	return m.betRepo
}

func (m *MockUnitOfWork) BetVoteRepository() BetVoteRepository {
	return m.betVoteRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.balanceHistoryRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
