package service

import (
	"context"
	"fmt"
	"time"

	"courtside/events"
	"courtside/models"

	log "github.com/sirupsen/logrus"
)

// Outcome messages returned to callers of CastVote.
const (
	OutcomeVoteRecorded = "Vote recorded"
	OutcomeVoteRemoved  = "Vote removed"
	OutcomeBetCompleted = "Bet completed"
)

// JudgingConfig carries the tunables of the voting protocol
type JudgingConfig struct {
	// VotingWindow is the quorum window opened by the first vote
	VotingWindow time.Duration

	// ReputationBonus is awarded to every voter who picked the winner
	ReputationBonus int
}

type judgingService struct {
	uowFactory UnitOfWorkFactory
	cfg        JudgingConfig
}

// NewJudgingService creates a new judging service
func NewJudgingService(uowFactory UnitOfWorkFactory, cfg JudgingConfig) JudgingService {
	return &judgingService{
		uowFactory: uowFactory,
		cfg:        cfg,
	}
}

// CastVote records, replaces or removes a judging vote. The voting window is
// evaluated on every vote-affecting operation: once it has elapsed, the first
// operation that observes a majority settles the bet in the same transaction.
func (s *judgingService) CastVote(ctx context.Context, voterID, betID int64, action JudgeAction, winner string) (*VoteOutcome, error) {
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
	if bet.Status != models.BetStatusMatched && bet.Status != models.BetStatusVoting {
		return nil, fmt.Errorf("%w: bet is %s", ErrInvalidState, bet.Status)
	}
	if bet.IsParty(voterID) {
		return nil, ErrSelfJudge
	}

	outcome := &VoteOutcome{Bet: bet}
	now := time.Now()

	switch action {
	case JudgeActionChooseWinner:
		if !bet.HasTeam(winner) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWinner, winner)
		}

		// The first vote opens the voting window
		if bet.Status == models.BetStatusMatched {
			endsAt := now.Add(s.cfg.VotingWindow)
			bet.Status = models.BetStatusVoting
			bet.VotingEndsAt = &endsAt
			if err := uow.BetRepository().Update(ctx, bet); err != nil {
				return nil, fmt.Errorf("failed to open voting window: %w", err)
			}
		}

		vote := &models.BetVote{
			BetID:   betID,
			VoterID: voterID,
			Team:    winner,
		}
		if err := uow.BetVoteRepository().Upsert(ctx, vote); err != nil {
			return nil, fmt.Errorf("failed to record vote: %w", err)
		}
		outcome.Status = OutcomeVoteRecorded

	case JudgeActionGameNotOver:
		if _, err := uow.BetVoteRepository().DeleteByVoter(ctx, betID, voterID); err != nil {
			return nil, fmt.Errorf("failed to remove vote: %w", err)
		}
		outcome.Status = OutcomeVoteRemoved

	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}

	counts, err := uow.BetVoteRepository().GetVoteCounts(ctx, betID, bet.Team1, bet.Team2)
	if err != nil {
		return nil, fmt.Errorf("failed to get vote counts: %w", err)
	}
	outcome.VoteCount = counts

	// Lazy expiry check: settle once the window has closed and a strict
	// majority exists. A tie leaves the bet in voting.
	if bet.VotingExpired(now) {
		if winningTeam := counts.WinningTeam(bet.Team1, bet.Team2); winningTeam != "" {
			result, err := s.settle(ctx, uow, bet, counts, winningTeam, now)
			if err != nil {
				return nil, err
			}
			outcome.Status = OutcomeBetCompleted
			outcome.Settlement = result
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return outcome, nil
}

// SettleExpired settles all bets whose voting window has closed. Tied bets
// get their window extended by one interval so settlement stays reachable.
func (s *judgingService) SettleExpired(ctx context.Context) (int, error) {
	now := time.Now()

	listUow := s.uowFactory.Create()
	if err := listUow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	expired, err := listUow.BetRepository().GetExpiredVoting(ctx, now)
	listUow.Rollback()
	if err != nil {
		return 0, fmt.Errorf("failed to list expired bets: %w", err)
	}

	settled := 0
	for _, stale := range expired {
		if err := s.settleOne(ctx, stale.ID, now, &settled); err != nil {
			log.WithError(err).WithField("betId", stale.ID).Error("Failed to settle expired bet")
		}
	}

	return settled, nil
}

// settleOne re-reads one expired bet in its own transaction and settles or
// extends it. Each bet gets an independent transaction so one failure does
// not hold up the rest of the sweep.
func (s *judgingService) settleOne(ctx context.Context, betID int64, now time.Time, settled *int) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	bet, err := uow.BetRepository().GetByID(ctx, betID)
	if err != nil {
		return fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil || !bet.VotingExpired(now) {
		// Settled or extended by a concurrent operation
		return nil
	}

	counts, err := uow.BetVoteRepository().GetVoteCounts(ctx, betID, bet.Team1, bet.Team2)
	if err != nil {
		return fmt.Errorf("failed to get vote counts: %w", err)
	}

	winningTeam := counts.WinningTeam(bet.Team1, bet.Team2)
	if winningTeam == "" {
		// Tied or no votes: push the window out one interval
		endsAt := now.Add(s.cfg.VotingWindow)
		bet.VotingEndsAt = &endsAt
		if err := uow.BetRepository().Update(ctx, bet); err != nil {
			return fmt.Errorf("failed to extend voting window: %w", err)
		}
		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		log.WithFields(log.Fields{
			"betId":        bet.ID,
			"team1Votes":   counts.Team1Votes,
			"team2Votes":   counts.Team2Votes,
			"votingEndsAt": endsAt,
		}).Info("Voting window extended without a majority")
		return nil
	}

	if _, err := s.settle(ctx, uow, bet, counts, winningTeam, now); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	*settled++
	return nil
}

// settle pays out the winning party, marks the bet completed and awards
// reputation to the correct voters. Runs inside the caller's transaction.
func (s *judgingService) settle(ctx context.Context, uow UnitOfWork, bet *models.Bet, counts *models.VoteCount, winningTeam string, now time.Time) (*models.SettlementResult, error) {
	winnerID := bet.PartyForTeam(winningTeam)
	if winnerID == 0 {
		return nil, fmt.Errorf("%w: no party backs team %q", ErrInvalidState, winningTeam)
	}
	loserID := bet.UserID
	if loserID == winnerID && bet.ChallengerID != nil {
		loserID = *bet.ChallengerID
	}

	winner, err := uow.UserRepository().GetByID(ctx, winnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get winner: %w", err)
	}
	if winner == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, winnerID)
	}

	if err := uow.UserRepository().AddBalance(ctx, winnerID, bet.Payout); err != nil {
		return nil, fmt.Errorf("failed to credit winner: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          winnerID,
		BalanceBefore:   winner.Balance,
		BalanceAfter:    winner.Balance.Add(bet.Payout),
		ChangeAmount:    bet.Payout,
		TransactionType: models.TransactionTypeBetPayout,
		TransactionMetadata: map[string]any{
			"winning_team": winningTeam,
			"opponent":     loserID,
		},
		RelatedBetID: &bet.ID,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}

	correctVoters, err := uow.BetVoteRepository().GetVotersForTeam(ctx, bet.ID, winningTeam)
	if err != nil {
		return nil, fmt.Errorf("failed to get correct voters: %w", err)
	}
	for _, voterID := range correctVoters {
		if err := uow.UserRepository().AddReputation(ctx, voterID, s.cfg.ReputationBonus); err != nil {
			return nil, fmt.Errorf("failed to award reputation to voter %d: %w", voterID, err)
		}
	}

	bet.Status = models.BetStatusCompleted
	bet.WinnerID = &winnerID
	bet.WinningTeam = &winningTeam
	bet.CompletedAt = &now
	if err := uow.BetRepository().Update(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to update settled bet: %w", err)
	}

	uow.EventBus().Publish(events.BetSettledEvent{
		BetID:       bet.ID,
		WinnerID:    winnerID,
		LoserID:     loserID,
		WinningTeam: winningTeam,
		Payout:      bet.Payout,
	})

	log.WithFields(log.Fields{
		"betId":       bet.ID,
		"winnerId":    winnerID,
		"winningTeam": winningTeam,
		"payout":      bet.Payout,
		"voters":      len(correctVoters),
	}).Info("Bet settled")

	return &models.SettlementResult{
		Bet:           bet,
		WinnerID:      winnerID,
		LoserID:       loserID,
		WinningTeam:   winningTeam,
		AmountWon:     bet.Payout,
		CorrectVoters: correctVoters,
		VotesForTeam1: counts.Team1Votes,
		VotesForTeam2: counts.Team2Votes,
	}, nil
}
