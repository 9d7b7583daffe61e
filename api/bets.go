package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"courtside/models"
	"courtside/service"
)

type createBetRequest struct {
	BetType string           `json:"bet_type" validate:"required,oneof=moneyline spread over_under parlay prop"`
	Sport   string           `json:"sport" validate:"required,max=64"`
	Team1   string           `json:"team1" validate:"required,max=128"`
	Team2   string           `json:"team2" validate:"required,max=128"`
	Line    *decimal.Decimal `json:"line,omitempty"`
	Odds    int              `json:"odds"`
	Stake   decimal.Decimal  `json:"stake" validate:"required"`
}

type judgeRequest struct {
	Action string `json:"action" validate:"required,oneof=choose_winner game_not_over"`
	Winner string `json:"winner,omitempty"`
}

func (s *Server) handleCreateBet(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req createBetRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	bet, err := s.bets.CreateBet(r.Context(), userID, service.BetTerms{
		Type:  models.BetType(req.BetType),
		Sport: req.Sport,
		Team1: req.Team1,
		Team2: req.Team2,
		Line:  req.Line,
		Odds:  req.Odds,
		Stake: req.Stake,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newBetResponse(bet))
}

func (s *Server) handleListBets(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	view := service.BetQueryView(r.URL.Query().Get("view"))
	if view == "" {
		view = service.BetViewOpen
	}

	views, err := s.bets.ListBets(r.Context(), userID, view)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]*betViewResponse, 0, len(views))
	for _, v := range views {
		out = append(out, newBetViewResponse(v))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBet(w http.ResponseWriter, r *http.Request) {
	betID, ok := betIDFromPath(w, r)
	if !ok {
		return
	}

	bet, err := s.bets.GetBet(r.Context(), betID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newBetResponse(bet))
}

func (s *Server) handleCancelBet(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	betID, ok := betIDFromPath(w, r)
	if !ok {
		return
	}

	bet, err := s.bets.CancelBet(r.Context(), userID, betID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newBetResponse(bet))
}

func (s *Server) handleAcceptBet(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	betID, ok := betIDFromPath(w, r)
	if !ok {
		return
	}

	bet, err := s.bets.AcceptBet(r.Context(), userID, betID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newBetResponse(bet))
}

func (s *Server) handleJudgeBet(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	betID, ok := betIDFromPath(w, r)
	if !ok {
		return
	}

	var req judgeRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	outcome, err := s.judging.CastVote(r.Context(), userID, betID, service.JudgeAction(req.Action), req.Winner)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := judgeResponse{
		Outcome: outcome.Status,
		Bet:     newBetResponse(outcome.Bet),
	}
	if outcome.VoteCount != nil {
		resp.VoteCounts = &voteCountResponse{
			Team1Votes: outcome.VoteCount.Team1Votes,
			Team2Votes: outcome.VoteCount.Team2Votes,
			TotalVotes: outcome.VoteCount.TotalVotes,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func betIDFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid bet id")
		return 0, false
	}
	return id, true
}
