package models

import (
	"time"
)

// BetVote represents a judging vote on a matched bet
type BetVote struct {
	ID        int64     `db:"id"`
	BetID     int64     `db:"bet_id"`
	VoterID   int64     `db:"voter_id"`
	Team      string    `db:"team"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// VoteCount represents the vote tally for a bet
type VoteCount struct {
	Team1Votes int
	Team2Votes int
	TotalVotes int
}

// WinningTeam returns the team with strictly more votes.
// Returns "" on a tie or when no votes have been cast.
func (vc *VoteCount) WinningTeam(team1, team2 string) string {
	if vc.Team1Votes > vc.Team2Votes {
		return team1
	}
	if vc.Team2Votes > vc.Team1Votes {
		return team2
	}
	return ""
}

// IsTied reports whether both teams hold the same number of votes.
func (vc *VoteCount) IsTied() bool {
	return vc.TotalVotes > 0 && vc.Team1Votes == vc.Team2Votes
}
