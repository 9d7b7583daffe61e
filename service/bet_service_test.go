package service

import (
	"context"
	"testing"

	"courtside/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newBetServiceMocks() (*MockUnitOfWork, *MockUnitOfWorkFactory, *MockUserRepository, *MockBetRepository, *MockBalanceHistoryRepository) {
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockBetRepo := new(MockBetRepository)
	mockHistoryRepo := new(MockBalanceHistoryRepository)

	mockUoW.SetRepositories(mockUserRepo, mockBetRepo, nil, mockHistoryRepo, nil)
	return mockUoW, mockFactory, mockUserRepo, mockBetRepo, mockHistoryRepo
}

func validTerms() BetTerms {
	return BetTerms{
		Type:  models.BetTypeMoneyline,
		Sport: "basketball",
		Team1: "Lakers",
		Team2: "Celtics",
		Odds:  150,
		Stake: decimal.NewFromInt(100),
	}
}

func TestBetService_CreateBet_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockBetRepo, mockHistoryRepo := newBetServiceMocks()
	service := NewBetService(mockFactory)

	creator := &models.User{ID: 1, Balance: decimal.NewFromInt(1000)}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(1)).Return(creator, nil)
	mockBetRepo.On("Create", ctx, mock.AnythingOfType("*models.Bet")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Bet).ID = 42
	}).Return(nil)
	mockUserRepo.On("DeductBalance", ctx, int64(1), decimal.NewFromInt(100)).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.AnythingOfType("*models.BalanceHistory")).Return(nil)

	bet, err := service.CreateBet(ctx, 1, validTerms())

	assert.NoError(t, err)
	assert.Equal(t, int64(42), bet.ID)
	assert.Equal(t, models.BetStatusPending, bet.Status)
	assert.True(t, bet.Payout.Equal(decimal.NewFromInt(250)))

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
}

func TestBetService_CreateBet_InvalidTerms(t *testing.T) {
	ctx := context.Background()

	_, mockFactory, _, _, _ := newBetServiceMocks()
	service := NewBetService(mockFactory)

	tests := []struct {
		name   string
		mutate func(*BetTerms)
	}{
		{"unknown bet type", func(t *BetTerms) { t.Type = "roulette" }},
		{"missing sport", func(t *BetTerms) { t.Sport = "" }},
		{"missing team", func(t *BetTerms) { t.Team2 = "" }},
		{"identical teams", func(t *BetTerms) { t.Team2 = t.Team1 }},
		{"zero stake", func(t *BetTerms) { t.Stake = decimal.Zero }},
		{"negative stake", func(t *BetTerms) { t.Stake = decimal.NewFromInt(-5) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := validTerms()
			tt.mutate(&terms)

			_, err := service.CreateBet(ctx, 1, terms)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	// Validation fails before any transaction is opened
	mockFactory.AssertNotCalled(t, "Create")
}

func TestBetService_CreateBet_InsufficientBalance(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory)

	creator := &models.User{ID: 1, Balance: decimal.NewFromInt(50)}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(creator, nil)

	_, err := service.CreateBet(ctx, 1, validTerms())

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	mockBetRepo.AssertNotCalled(t, "Create")
}

func TestBetService_AcceptBet_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockBetRepo, mockHistoryRepo := newBetServiceMocks()
	service := NewBetService(mockFactory)

	pending := &models.Bet{
		ID:     42,
		UserID: 1,
		Team1:  "Lakers",
		Team2:  "Celtics",
		Stake:  decimal.NewFromInt(100),
		Payout: decimal.NewFromInt(250),
		Status: models.BetStatusPending,
	}
	challengerID := int64(2)
	matched := &models.Bet{
		ID:           42,
		UserID:       1,
		ChallengerID: &challengerID,
		Team1:        "Lakers",
		Team2:        "Celtics",
		Stake:        decimal.NewFromInt(100),
		Payout:       decimal.NewFromInt(250),
		Status:       models.BetStatusMatched,
	}
	challenger := &models.User{ID: 2, Balance: decimal.NewFromInt(1000)}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByID", ctx, int64(42)).Return(pending, nil).Once()
	mockUserRepo.On("GetByID", ctx, int64(2)).Return(challenger, nil)
	mockBetRepo.On("Claim", ctx, int64(42), int64(2), mock.AnythingOfType("time.Time")).Return(true, nil)
	mockBetRepo.On("GetByID", ctx, int64(42)).Return(matched, nil).Once()
	mockUserRepo.On("DeductBalance", ctx, int64(2), decimal.NewFromInt(150)).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.AnythingOfType("*models.BalanceHistory")).Return(nil)

	bet, err := service.AcceptBet(ctx, 2, 42)

	assert.NoError(t, err)
	assert.Equal(t, models.BetStatusMatched, bet.Status)
	assert.Equal(t, int64(2), *bet.ChallengerID)

	mockUoW.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
	mockUserRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
}

func TestBetService_AcceptBet_EvenMoneySkipsDebit(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockBetRepo, mockHistoryRepo := newBetServiceMocks()
	service := NewBetService(mockFactory)

	// Zero odds: payout equals stake, the challenger has nothing to put up.
	pending := &models.Bet{
		ID:     42,
		UserID: 1,
		Team1:  "Lakers",
		Team2:  "Celtics",
		Odds:   0,
		Stake:  decimal.NewFromInt(100),
		Payout: decimal.NewFromInt(100),
		Status: models.BetStatusPending,
	}
	challengerID := int64(2)
	matched := &models.Bet{
		ID:           42,
		UserID:       1,
		ChallengerID: &challengerID,
		Team1:        "Lakers",
		Team2:        "Celtics",
		Odds:         0,
		Stake:        decimal.NewFromInt(100),
		Payout:       decimal.NewFromInt(100),
		Status:       models.BetStatusMatched,
	}
	challenger := &models.User{ID: 2, Balance: decimal.Zero}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByID", ctx, int64(42)).Return(pending, nil).Once()
	mockUserRepo.On("GetByID", ctx, int64(2)).Return(challenger, nil)
	mockBetRepo.On("Claim", ctx, int64(42), int64(2), mock.AnythingOfType("time.Time")).Return(true, nil)
	mockBetRepo.On("GetByID", ctx, int64(42)).Return(matched, nil).Once()

	bet, err := service.AcceptBet(ctx, 2, 42)

	assert.NoError(t, err)
	assert.Equal(t, models.BetStatusMatched, bet.Status)
	mockUserRepo.AssertNotCalled(t, "DeductBalance")
	mockHistoryRepo.AssertNotCalled(t, "Record")
	mockUoW.AssertExpectations(t)
}

func TestBetService_AcceptBet_SelfMatch(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory)

	pending := &models.Bet{ID: 42, UserID: 1, Status: models.BetStatusPending}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetByID", ctx, int64(42)).Return(pending, nil)

	_, err := service.AcceptBet(ctx, 1, 42)

	assert.ErrorIs(t, err, ErrSelfMatch)
	mockBetRepo.AssertNotCalled(t, "Claim")
}

func TestBetService_AcceptBet_AlreadyMatched(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory)

	matched := &models.Bet{ID: 42, UserID: 1, Status: models.BetStatusMatched}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetByID", ctx, int64(42)).Return(matched, nil)

	_, err := service.AcceptBet(ctx, 2, 42)

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestBetService_AcceptBet_ClaimConflict(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory)

	pending := &models.Bet{
		ID:     42,
		UserID: 1,
		Stake:  decimal.NewFromInt(100),
		Payout: decimal.NewFromInt(250),
		Status: models.BetStatusPending,
	}
	challenger := &models.User{ID: 2, Balance: decimal.NewFromInt(1000)}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetByID", ctx, int64(42)).Return(pending, nil)
	mockUserRepo.On("GetByID", ctx, int64(2)).Return(challenger, nil)

	// Another challenger won the race
	mockBetRepo.On("Claim", ctx, int64(42), int64(2), mock.AnythingOfType("time.Time")).Return(false, nil)

	_, err := service.AcceptBet(ctx, 2, 42)

	assert.ErrorIs(t, err, ErrConflict)
	mockUserRepo.AssertNotCalled(t, "DeductBalance")
}

func TestBetService_CancelBet_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, mockUserRepo, mockBetRepo, mockHistoryRepo := newBetServiceMocks()
	service := NewBetService(mockFactory)

	pending := &models.Bet{
		ID:     42,
		UserID: 1,
		Stake:  decimal.NewFromInt(100),
		Payout: decimal.NewFromInt(250),
		Status: models.BetStatusPending,
	}
	creator := &models.User{ID: 1, Balance: decimal.NewFromInt(900)}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockBetRepo.On("GetByID", ctx, int64(42)).Return(pending, nil)
	mockUserRepo.On("GetByID", ctx, int64(1)).Return(creator, nil)
	mockBetRepo.On("Update", ctx, pending).Return(nil)
	mockUserRepo.On("AddBalance", ctx, int64(1), decimal.NewFromInt(100)).Return(nil)
	mockHistoryRepo.On("Record", ctx, mock.AnythingOfType("*models.BalanceHistory")).Return(nil)

	bet, err := service.CancelBet(ctx, 1, 42)

	assert.NoError(t, err)
	assert.Equal(t, models.BetStatusCancelled, bet.Status)

	mockUoW.AssertExpectations(t)
	mockBetRepo.AssertExpectations(t)
}

func TestBetService_CancelBet_NotCreator(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory)

	pending := &models.Bet{ID: 42, UserID: 1, Status: models.BetStatusPending}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetByID", ctx, int64(42)).Return(pending, nil)

	_, err := service.CancelBet(ctx, 2, 42)

	assert.ErrorIs(t, err, ErrValidation)
	mockBetRepo.AssertNotCalled(t, "Update")
}

func TestBetService_CancelBet_NotPending(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory)

	matched := &models.Bet{ID: 42, UserID: 1, Status: models.BetStatusMatched}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetByID", ctx, int64(42)).Return(matched, nil)

	_, err := service.CancelBet(ctx, 1, 42)

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestBetService_ListBets_UnknownView(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, _, _ := newBetServiceMocks()
	service := NewBetService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	_, err := service.ListBets(ctx, 1, "everything")

	assert.ErrorIs(t, err, ErrValidation)
}

func TestBetService_ListBets_Open(t *testing.T) {
	ctx := context.Background()

	mockUoW, mockFactory, _, mockBetRepo, _ := newBetServiceMocks()
	service := NewBetService(mockFactory)

	bets := []*models.Bet{
		{ID: 1, UserID: 1, Status: models.BetStatusPending},
		{ID: 2, UserID: 2, Status: models.BetStatusPending},
	}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockBetRepo.On("GetOpen", ctx, 100).Return(bets, nil)

	views, err := service.ListBets(ctx, 1, BetViewOpen)

	assert.NoError(t, err)
	assert.Len(t, views, 2)
	assert.True(t, views[0].IsMyBet)
	assert.False(t, views[0].CanAccept)
	assert.False(t, views[1].IsMyBet)
	assert.True(t, views[1].CanAccept)
}
