package api

import (
	"time"

	"github.com/shopspring/decimal"

	"courtside/models"
)

type userResponse struct {
	ID         int64           `json:"id"`
	Email      string          `json:"email"`
	Username   string          `json:"username"`
	Balance    decimal.Decimal `json:"balance"`
	Reputation int             `json:"reputation"`
	CreatedAt  time.Time       `json:"created_at"`
}

func newUserResponse(u *models.User) *userResponse {
	return &userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Username:   u.Username,
		Balance:    u.Balance,
		Reputation: u.Reputation,
		CreatedAt:  u.CreatedAt,
	}
}

type leaderboardEntry struct {
	Username   string          `json:"username"`
	Balance    decimal.Decimal `json:"balance"`
	Reputation int             `json:"reputation"`
}

type betResponse struct {
	ID           int64            `json:"id"`
	UserID       int64            `json:"user_id"`
	ChallengerID *int64           `json:"challenger_id,omitempty"`
	BetType      string           `json:"bet_type"`
	Sport        string           `json:"sport"`
	Team1        string           `json:"team1"`
	Team2        string           `json:"team2"`
	Line         *decimal.Decimal `json:"line,omitempty"`
	Odds         int              `json:"odds"`
	Stake        decimal.Decimal  `json:"stake"`
	Payout       decimal.Decimal  `json:"payout"`
	Status       string           `json:"status"`
	WinnerID     *int64           `json:"winner_id,omitempty"`
	WinningTeam  *string          `json:"winning_team,omitempty"`
	VotingEndsAt *time.Time       `json:"voting_ends_at,omitempty"`
	MatchedAt    *time.Time       `json:"matched_at,omitempty"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

func newBetResponse(b *models.Bet) *betResponse {
	return &betResponse{
		ID:           b.ID,
		UserID:       b.UserID,
		ChallengerID: b.ChallengerID,
		BetType:      string(b.Type),
		Sport:        b.Sport,
		Team1:        b.Team1,
		Team2:        b.Team2,
		Line:         b.Line,
		Odds:         b.Odds,
		Stake:        b.Stake,
		Payout:       b.Payout,
		Status:       string(b.Status),
		WinnerID:     b.WinnerID,
		WinningTeam:  b.WinningTeam,
		VotingEndsAt: b.VotingEndsAt,
		MatchedAt:    b.MatchedAt,
		CompletedAt:  b.CompletedAt,
		CreatedAt:    b.CreatedAt,
	}
}

type betViewResponse struct {
	*betResponse
	CanAccept bool `json:"can_accept"`
	CanJudge  bool `json:"can_judge"`
	IsMyBet   bool `json:"is_my_bet"`
}

func newBetViewResponse(v *models.BetView) *betViewResponse {
	return &betViewResponse{
		betResponse: newBetResponse(v.Bet),
		CanAccept:   v.CanAccept,
		CanJudge:    v.CanJudge,
		IsMyBet:     v.IsMyBet,
	}
}

type voteCountResponse struct {
	Team1Votes int `json:"team1_votes"`
	Team2Votes int `json:"team2_votes"`
	TotalVotes int `json:"total_votes"`
}

type judgeResponse struct {
	Outcome    string             `json:"outcome"`
	Bet        *betResponse       `json:"bet"`
	VoteCounts *voteCountResponse `json:"vote_counts,omitempty"`
}
