package api

import (
	"net/http"

	"github.com/shopspring/decimal"
)

type creditRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
}

type transferRequest struct {
	ToUserID int64           `json:"to_user_id" validate:"required"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := s.users.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) handleCreditBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req creditRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	user, err := s.users.Credit(r.Context(), userID, req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req transferRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.users.Transfer(r.Context(), userID, req.ToUserID, req.Amount); err != nil {
		writeServiceError(w, err)
		return
	}

	user, err := s.users.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user))
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.GetLeaderboard(r.Context(), 20)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	entries := make([]leaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, leaderboardEntry{
			Username:   u.Username,
			Balance:    u.Balance,
			Reputation: u.Reputation,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}
