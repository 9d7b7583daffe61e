package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBet_ChallengerStake(t *testing.T) {
	bet := &Bet{
		Stake:  decimal.NewFromInt(100),
		Payout: decimal.RequireFromString("190.91"),
	}
	assert.True(t, bet.ChallengerStake().Equal(decimal.RequireFromString("90.91")))
}

func TestBet_IsParty(t *testing.T) {
	challengerID := int64(2)
	bet := &Bet{UserID: 1, ChallengerID: &challengerID}

	assert.True(t, bet.IsParty(1))
	assert.True(t, bet.IsParty(2))
	assert.False(t, bet.IsParty(3))

	unmatched := &Bet{UserID: 1}
	assert.True(t, unmatched.IsParty(1))
	assert.False(t, unmatched.IsParty(2))
}

func TestBet_PartyForTeam(t *testing.T) {
	challengerID := int64(2)
	bet := &Bet{
		UserID:       1,
		ChallengerID: &challengerID,
		Team1:        "Lakers",
		Team2:        "Celtics",
	}

	assert.Equal(t, int64(1), bet.PartyForTeam("Lakers"))
	assert.Equal(t, int64(2), bet.PartyForTeam("Celtics"))

	// Unmatched bet has nobody backing team2
	unmatched := &Bet{UserID: 1, Team1: "Lakers", Team2: "Celtics"}
	assert.Equal(t, int64(0), unmatched.PartyForTeam("Celtics"))
}

func TestBet_StatusChecks(t *testing.T) {
	bet := &Bet{UserID: 1, Status: BetStatusPending}

	assert.True(t, bet.CanBeAccepted(2))
	assert.False(t, bet.CanBeAccepted(1), "creator cannot accept their own bet")
	assert.True(t, bet.CanBeCancelled(1))
	assert.False(t, bet.CanBeCancelled(2))
	assert.False(t, bet.CanBeJudged(3), "pending bets are not judgeable")
	assert.True(t, bet.IsActive())

	challengerID := int64(2)
	bet.Status = BetStatusMatched
	bet.ChallengerID = &challengerID
	assert.False(t, bet.CanBeAccepted(3))
	assert.True(t, bet.CanBeJudged(3))
	assert.False(t, bet.CanBeJudged(1), "parties cannot judge")
	assert.False(t, bet.CanBeJudged(2), "parties cannot judge")

	bet.Status = BetStatusCompleted
	assert.False(t, bet.IsActive())
	assert.False(t, bet.CanBeJudged(3))
}

func TestBet_VotingExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	open := &Bet{Status: BetStatusVoting, VotingEndsAt: &future}
	assert.False(t, open.VotingExpired(now))

	closed := &Bet{Status: BetStatusVoting, VotingEndsAt: &past}
	assert.True(t, closed.VotingExpired(now))

	// Expiry is inclusive of the deadline itself
	exact := &Bet{Status: BetStatusVoting, VotingEndsAt: &now}
	assert.True(t, exact.VotingExpired(now))

	// Only voting bets can expire
	matched := &Bet{Status: BetStatusMatched, VotingEndsAt: &past}
	assert.False(t, matched.VotingExpired(now))
}

func TestVoteCount_WinningTeam(t *testing.T) {
	majority := &VoteCount{Team1Votes: 3, Team2Votes: 1, TotalVotes: 4}
	assert.Equal(t, "Lakers", majority.WinningTeam("Lakers", "Celtics"))
	assert.False(t, majority.IsTied())

	tied := &VoteCount{Team1Votes: 2, Team2Votes: 2, TotalVotes: 4}
	assert.Equal(t, "", tied.WinningTeam("Lakers", "Celtics"))
	assert.True(t, tied.IsTied())

	empty := &VoteCount{}
	assert.Equal(t, "", empty.WinningTeam("Lakers", "Celtics"))
	assert.False(t, empty.IsTied())
}

func TestNewBetView(t *testing.T) {
	bet := &Bet{ID: 1, UserID: 1, Status: BetStatusPending}

	mine := NewBetView(bet, 1)
	assert.True(t, mine.IsMyBet)
	assert.False(t, mine.CanAccept)

	theirs := NewBetView(bet, 2)
	assert.False(t, theirs.IsMyBet)
	assert.True(t, theirs.CanAccept)
	assert.False(t, theirs.CanJudge)
}
