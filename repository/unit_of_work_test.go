package repository

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"courtside/events"
	"courtside/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitPersistsAndFlushesEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	var published atomic.Int32
	bus.Subscribe(events.EventTypeBetCreated, func(ctx context.Context, e events.Event) {
		published.Add(1)
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	user := testutil.CreateTestUser("commit")
	require.NoError(t, uow.UserRepository().Create(ctx, user))

	bet := testutil.CreateTestBet(user.ID)
	require.NoError(t, uow.BetRepository().Create(ctx, bet))

	uow.EventBus().Publish(events.BetCreatedEvent{BetID: bet.ID, UserID: user.ID})

	// Nothing leaves the transaction before commit
	assert.Equal(t, int32(0), published.Load())

	require.NoError(t, uow.Commit())

	// The row is visible outside the transaction
	got, err := NewBetRepository(testDB.DB).GetByID(ctx, bet.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	// Handlers run asynchronously after the flush
	assert.Eventually(t, func() bool {
		return published.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestUnitOfWork_RollbackDiscardsWritesAndEvents(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	var published atomic.Int32
	bus.Subscribe(events.EventTypeBetCreated, func(ctx context.Context, e events.Event) {
		published.Add(1)
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	user := testutil.CreateTestUser("rollback")
	require.NoError(t, uow.UserRepository().Create(ctx, user))
	uow.EventBus().Publish(events.BetCreatedEvent{BetID: 1, UserID: user.ID})

	require.NoError(t, uow.Rollback())

	got, err := NewUserRepository(testDB.DB).GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "rolled back rows must not persist")

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), published.Load(), "discarded events must not fire")
}

func TestUnitOfWork_TransactionIsolatesBalanceChanges(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	outsideRepo := NewUserRepository(testDB.DB)
	user := testutil.CreateTestUser("isolated")
	require.NoError(t, outsideRepo.Create(ctx, user))

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.UserRepository().DeductBalance(ctx, user.ID, decimal.NewFromInt(400)))

	// Uncommitted deduction is invisible outside
	got, err := outsideRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(1000)))

	require.NoError(t, uow.Commit())

	got, err = outsideRepo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(600)))
}

func TestUnitOfWork_DoubleBeginFails(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	factory := NewUnitOfWorkFactory(testDB.DB, events.NewBus())

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	assert.Error(t, uow.Begin(ctx))
}
