package service

import "errors"

// Lifecycle errors surfaced to callers. All of them roll the enclosing
// transaction back; only ErrConflict is worth retrying.
var (
	ErrValidation          = errors.New("validation failed")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidState        = errors.New("invalid bet state")
	ErrSelfMatch           = errors.New("cannot accept your own bet")
	ErrSelfJudge           = errors.New("participants cannot judge their own bet")
	ErrInvalidWinner       = errors.New("winner must be one of the bet's teams")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("concurrent update detected")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)
