package repository

import (
	"context"
	"fmt"

	"courtside/database"
	"courtside/models"
)

// BetVoteRepository implements the service.BetVoteRepository interface
type BetVoteRepository struct {
	q queryable
}

// NewBetVoteRepository creates a new bet vote repository
func NewBetVoteRepository(db *database.DB) *BetVoteRepository {
	return &BetVoteRepository{q: db.Pool}
}

// newBetVoteRepositoryWithTx creates a new bet vote repository with a transaction
func newBetVoteRepositoryWithTx(tx queryable) *BetVoteRepository {
	return &BetVoteRepository{q: tx}
}

// Upsert records a vote, replacing the voter's earlier choice if any
func (r *BetVoteRepository) Upsert(ctx context.Context, vote *models.BetVote) error {
	query := `
		INSERT INTO bet_votes (bet_id, voter_id, team)
		VALUES ($1, $2, $3)
		ON CONFLICT (bet_id, voter_id)
		DO UPDATE SET
			team = EXCLUDED.team,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		vote.BetID,
		vote.VoterID,
		vote.Team,
	).Scan(&vote.ID, &vote.CreatedAt, &vote.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert vote: %w", err)
	}

	return nil
}

// DeleteByVoter removes a voter's vote, reporting whether one existed
func (r *BetVoteRepository) DeleteByVoter(ctx context.Context, betID, voterID int64) (bool, error) {
	query := `DELETE FROM bet_votes WHERE bet_id = $1 AND voter_id = $2`

	result, err := r.q.Exec(ctx, query, betID, voterID)
	if err != nil {
		return false, fmt.Errorf("failed to delete vote for bet %d: %w", betID, err)
	}

	return result.RowsAffected() > 0, nil
}

// GetByBet returns all votes for a bet in cast order
func (r *BetVoteRepository) GetByBet(ctx context.Context, betID int64) ([]*models.BetVote, error) {
	query := `
		SELECT id, bet_id, voter_id, team, created_at, updated_at
		FROM bet_votes
		WHERE bet_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.q.Query(ctx, query, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes for bet %d: %w", betID, err)
	}
	defer rows.Close()

	var votes []*models.BetVote
	for rows.Next() {
		var vote models.BetVote
		err := rows.Scan(
			&vote.ID,
			&vote.BetID,
			&vote.VoterID,
			&vote.Team,
			&vote.CreatedAt,
			&vote.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, &vote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}

	return votes, nil
}

// GetVoteCounts returns the per-team tally for a bet
func (r *BetVoteRepository) GetVoteCounts(ctx context.Context, betID int64, team1, team2 string) (*models.VoteCount, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE team = $2) as team1_votes,
			COUNT(*) FILTER (WHERE team = $3) as team2_votes,
			COUNT(*) as total_votes
		FROM bet_votes
		WHERE bet_id = $1
	`

	var counts models.VoteCount
	err := r.q.QueryRow(ctx, query, betID, team1, team2).Scan(
		&counts.Team1Votes,
		&counts.Team2Votes,
		&counts.TotalVotes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get vote counts for bet %d: %w", betID, err)
	}

	return &counts, nil
}

// GetVotersForTeam returns the user ids that voted for the given team
func (r *BetVoteRepository) GetVotersForTeam(ctx context.Context, betID int64, team string) ([]int64, error) {
	query := `
		SELECT voter_id
		FROM bet_votes
		WHERE bet_id = $1 AND team = $2
		ORDER BY created_at ASC
	`

	rows, err := r.q.Query(ctx, query, betID, team)
	if err != nil {
		return nil, fmt.Errorf("failed to get voters for bet %d: %w", betID, err)
	}
	defer rows.Close()

	var voters []int64
	for rows.Next() {
		var voterID int64
		if err := rows.Scan(&voterID); err != nil {
			return nil, fmt.Errorf("failed to scan voter: %w", err)
		}
		voters = append(voters, voterID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate voters: %w", err)
	}

	return voters, nil
}
