package repository

import (
	"context"
	"fmt"
	"time"

	"courtside/database"
	"courtside/models"

	"github.com/jackc/pgx/v5"
)

const betColumns = `id, user_id, challenger_id, bet_type, sport, team1, team2, line, odds,
	stake, payout, status, winner_id, winning_team, voting_ends_at, created_at, matched_at, completed_at`

// BetRepository implements the service.BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

func scanBet(row pgx.Row) (*models.Bet, error) {
	var bet models.Bet
	err := row.Scan(
		&bet.ID,
		&bet.UserID,
		&bet.ChallengerID,
		&bet.Type,
		&bet.Sport,
		&bet.Team1,
		&bet.Team2,
		&bet.Line,
		&bet.Odds,
		&bet.Stake,
		&bet.Payout,
		&bet.Status,
		&bet.WinnerID,
		&bet.WinningTeam,
		&bet.VotingEndsAt,
		&bet.CreatedAt,
		&bet.MatchedAt,
		&bet.CompletedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

// Create inserts a new bet and fills in generated fields
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (user_id, bet_type, sport, team1, team2, line, odds, stake, payout, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		bet.UserID,
		bet.Type,
		bet.Sport,
		bet.Team1,
		bet.Team2,
		bet.Line,
		bet.Odds,
		bet.Stake,
		bet.Payout,
		bet.Status,
	).Scan(&bet.ID, &bet.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}

	return nil
}

// GetByID retrieves a bet by its ID
func (r *BetRepository) GetByID(ctx context.Context, id int64) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1`

	bet, err := scanBet(r.q.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %d: %w", id, err)
	}
	return bet, nil
}

// Claim attaches a challenger to a pending, unclaimed bet. The conditional
// update is the mutual-exclusion point for concurrent accepts: only one
// caller can flip the row out of pending.
func (r *BetRepository) Claim(ctx context.Context, betID, challengerID int64, matchedAt time.Time) (bool, error) {
	query := `
		UPDATE bets
		SET challenger_id = $2, status = $3, matched_at = $4
		WHERE id = $1 AND status = $5 AND challenger_id IS NULL
	`

	result, err := r.q.Exec(ctx, query, betID, challengerID, models.BetStatusMatched, matchedAt, models.BetStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to claim bet %d: %w", betID, err)
	}

	return result.RowsAffected() > 0, nil
}

// Update updates a bet's mutable state and resolution fields
func (r *BetRepository) Update(ctx context.Context, bet *models.Bet) error {
	query := `
		UPDATE bets
		SET challenger_id = $2,
			status = $3,
			winner_id = $4,
			winning_team = $5,
			voting_ends_at = $6,
			matched_at = $7,
			completed_at = $8
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query,
		bet.ID,
		bet.ChallengerID,
		bet.Status,
		bet.WinnerID,
		bet.WinningTeam,
		bet.VotingEndsAt,
		bet.MatchedAt,
		bet.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update bet %d: %w", bet.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("bet %d not found", bet.ID)
	}

	return nil
}

// GetOpen returns pending bets, newest first
func (r *BetRepository) GetOpen(ctx context.Context, limit int) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	return r.queryBets(ctx, query, models.BetStatusPending, limit)
}

// GetByUser returns bets where the user is creator or challenger
func (r *BetRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE user_id = $1 OR challenger_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	return r.queryBets(ctx, query, userID, limit)
}

// GetJudgeable returns matched/voting bets the user is not a party to
func (r *BetRepository) GetJudgeable(ctx context.Context, userID int64, limit int) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE status IN ($2, $3)
		  AND user_id != $1
		  AND challenger_id != $1
		ORDER BY created_at DESC
		LIMIT $4
	`

	return r.queryBets(ctx, query, userID, models.BetStatusMatched, models.BetStatusVoting, limit)
}

// GetExpiredVoting returns bets in voting whose window closed before now
func (r *BetRepository) GetExpiredVoting(ctx context.Context, now time.Time) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE status = $1 AND voting_ends_at <= $2
		ORDER BY voting_ends_at ASC
	`

	return r.queryBets(ctx, query, models.BetStatusVoting, now)
}

func (r *BetRepository) queryBets(ctx context.Context, query string, args ...any) ([]*models.Bet, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		var bet models.Bet
		err := rows.Scan(
			&bet.ID,
			&bet.UserID,
			&bet.ChallengerID,
			&bet.Type,
			&bet.Sport,
			&bet.Team1,
			&bet.Team2,
			&bet.Line,
			&bet.Odds,
			&bet.Stake,
			&bet.Payout,
			&bet.Status,
			&bet.WinnerID,
			&bet.WinningTeam,
			&bet.VotingEndsAt,
			&bet.CreatedAt,
			&bet.MatchedAt,
			&bet.CompletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, &bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}

	return bets, nil
}
