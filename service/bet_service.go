package service

import (
	"context"
	"fmt"
	"time"

	"courtside/events"
	"courtside/models"

	log "github.com/sirupsen/logrus"
)

const listLimit = 100

type betService struct {
	uowFactory UnitOfWorkFactory
}

// NewBetService creates a new bet service
func NewBetService(uowFactory UnitOfWorkFactory) BetService {
	return &betService{
		uowFactory: uowFactory,
	}
}

// CreateBet validates terms and opens a pending bet, debiting the stake
func (s *betService) CreateBet(ctx context.Context, userID int64, terms BetTerms) (*models.Bet, error) {
	if err := validateTerms(terms); err != nil {
		return nil, err
	}

	payout := CalculatePayout(terms.Stake, terms.Odds)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	creator, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}
	if creator == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if creator.Balance.LessThan(terms.Stake) {
		return nil, fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, creator.Balance, terms.Stake)
	}

	bet := &models.Bet{
		UserID: userID,
		Type:   terms.Type,
		Sport:  terms.Sport,
		Team1:  terms.Team1,
		Team2:  terms.Team2,
		Line:   terms.Line,
		Odds:   terms.Odds,
		Stake:  terms.Stake,
		Payout: payout,
		Status: models.BetStatusPending,
	}

	if err := uow.BetRepository().Create(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	if err := uow.UserRepository().DeductBalance(ctx, userID, terms.Stake); err != nil {
		return nil, fmt.Errorf("failed to debit stake: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   creator.Balance,
		BalanceAfter:    creator.Balance.Sub(terms.Stake),
		ChangeAmount:    terms.Stake.Neg(),
		TransactionType: models.TransactionTypeBetStake,
		TransactionMetadata: map[string]any{
			"sport": terms.Sport,
			"type":  string(terms.Type),
		},
		RelatedBetID: &bet.ID,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.BetCreatedEvent{
		BetID:   bet.ID,
		UserID:  userID,
		BetType: bet.Type,
		Sport:   bet.Sport,
		Stake:   bet.Stake,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"betId":  bet.ID,
		"userId": userID,
		"stake":  bet.Stake,
		"payout": bet.Payout,
	}).Info("Bet created")

	return bet, nil
}

// AcceptBet matches a pending bet, debiting the challenger stake
func (s *betService) AcceptBet(ctx context.Context, userID, betID int64) (*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, fmt.Errorf("%w: bet %d", ErrNotFound, betID)
	}
	if bet.Status != models.BetStatusPending {
		return nil, fmt.Errorf("%w: bet is %s", ErrInvalidState, bet.Status)
	}
	if bet.UserID == userID {
		return nil, ErrSelfMatch
	}

	challengerStake := bet.ChallengerStake()

	challenger, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get challenger: %w", err)
	}
	if challenger == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	if challenger.Balance.LessThan(challengerStake) {
		return nil, fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, challenger.Balance, challengerStake)
	}

	now := time.Now()
	claimed, err := uow.BetRepository().Claim(ctx, betID, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to claim bet: %w", err)
	}
	if !claimed {
		return nil, fmt.Errorf("%w: bet %d was claimed concurrently", ErrConflict, betID)
	}

	// Read back and verify exactly this challenger is attached. Guards
	// against a lost update if two accepts raced past the claim.
	bet, err = uow.BetRepository().GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify claim: %w", err)
	}
	if bet == nil || bet.Status != models.BetStatusMatched || bet.ChallengerID == nil || *bet.ChallengerID != userID {
		return nil, fmt.Errorf("%w: claim verification failed for bet %d", ErrConflict, betID)
	}

	// Even-money bets carry a zero challenger stake: nothing to debit,
	// no ledger row.
	if challengerStake.IsPositive() {
		if err := uow.UserRepository().DeductBalance(ctx, userID, challengerStake); err != nil {
			return nil, fmt.Errorf("failed to debit challenger stake: %w", err)
		}

		history := &models.BalanceHistory{
			UserID:          userID,
			BalanceBefore:   challenger.Balance,
			BalanceAfter:    challenger.Balance.Sub(challengerStake),
			ChangeAmount:    challengerStake.Neg(),
			TransactionType: models.TransactionTypeChallengerStake,
			TransactionMetadata: map[string]any{
				"creator": bet.UserID,
			},
			RelatedBetID: &bet.ID,
		}
		if err := RecordBalanceChange(ctx, uow, history); err != nil {
			return nil, err
		}
	}

	uow.EventBus().Publish(events.BetMatchedEvent{
		BetID:        bet.ID,
		UserID:       bet.UserID,
		ChallengerID: userID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"betId":        bet.ID,
		"challengerId": userID,
		"stake":        challengerStake,
	}).Info("Bet matched")

	return bet, nil
}

// CancelBet cancels the caller's own pending bet and refunds the stake
func (s *betService) CancelBet(ctx context.Context, userID, betID int64) (*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, fmt.Errorf("%w: bet %d", ErrNotFound, betID)
	}
	if bet.Status != models.BetStatusPending {
		return nil, fmt.Errorf("%w: only pending bets can be cancelled", ErrInvalidState)
	}
	if bet.UserID != userID {
		return nil, fmt.Errorf("%w: only the creator can cancel a bet", ErrValidation)
	}

	creator, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get creator: %w", err)
	}

	bet.Status = models.BetStatusCancelled
	if err := uow.BetRepository().Update(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to update bet: %w", err)
	}

	if err := uow.UserRepository().AddBalance(ctx, userID, bet.Stake); err != nil {
		return nil, fmt.Errorf("failed to refund stake: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   creator.Balance,
		BalanceAfter:    creator.Balance.Add(bet.Stake),
		ChangeAmount:    bet.Stake,
		TransactionType: models.TransactionTypeStakeRefund,
		RelatedBetID:    &bet.ID,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.BetCancelledEvent{
		BetID:  bet.ID,
		UserID: userID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return bet, nil
}

// GetBet retrieves a bet by id
func (s *betService) GetBet(ctx context.Context, betID int64) (*models.Bet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, fmt.Errorf("%w: bet %d", ErrNotFound, betID)
	}

	return bet, nil
}

// ListBets returns caller-relative bet views for the requested slice
func (s *betService) ListBets(ctx context.Context, callerID int64, view BetQueryView) ([]*models.BetView, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	var (
		bets []*models.Bet
		err  error
	)
	switch view {
	case BetViewOpen:
		bets, err = uow.BetRepository().GetOpen(ctx, listLimit)
	case BetViewMine:
		bets, err = uow.BetRepository().GetByUser(ctx, callerID, listLimit)
	case BetViewToJudge:
		bets, err = uow.BetRepository().GetJudgeable(ctx, callerID, listLimit)
	default:
		return nil, fmt.Errorf("%w: unknown view %q", ErrValidation, view)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}

	views := make([]*models.BetView, 0, len(bets))
	for _, bet := range bets {
		views = append(views, models.NewBetView(bet, callerID))
	}

	return views, nil
}

func validateTerms(terms BetTerms) error {
	if !models.ValidBetType(terms.Type) {
		return fmt.Errorf("%w: unknown bet type %q", ErrValidation, terms.Type)
	}
	if terms.Sport == "" {
		return fmt.Errorf("%w: sport is required", ErrValidation)
	}
	if terms.Team1 == "" || terms.Team2 == "" {
		return fmt.Errorf("%w: both teams are required", ErrValidation)
	}
	if terms.Team1 == terms.Team2 {
		return fmt.Errorf("%w: teams must differ", ErrValidation)
	}
	if !terms.Stake.IsPositive() {
		return fmt.Errorf("%w: stake must be positive", ErrValidation)
	}
	return nil
}
