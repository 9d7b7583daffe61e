package service

import (
	"context"
	"fmt"

	"courtside/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type userService struct {
	uowFactory      UnitOfWorkFactory
	startingBalance decimal.Decimal
}

// NewUserService creates a new user service. New accounts start with the
// given token balance.
func NewUserService(uowFactory UnitOfWorkFactory, startingBalance decimal.Decimal) UserService {
	return &userService{
		uowFactory:      uowFactory,
		startingBalance: startingBalance,
	}
}

// Register creates a local-credential account with the starting balance
func (s *userService) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	if email == "" || username == "" {
		return nil, fmt.Errorf("%w: email and username are required", ErrValidation)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if existing, err := uow.UserRepository().GetByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", ErrValidation)
	}
	if existing, err := uow.UserRepository().GetByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	} else if existing != nil {
		return nil, fmt.Errorf("%w: username already taken", ErrValidation)
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: &hashStr,
		Balance:      s.startingBalance,
	}
	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          user.ID,
		BalanceBefore:   decimal.Zero,
		BalanceAfter:    s.startingBalance,
		ChangeAmount:    s.startingBalance,
		TransactionType: models.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"username": username,
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userId":   user.ID,
		"username": username,
	}).Info("User registered")

	return user, nil
}

// Authenticate verifies email/password credentials
func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by id
func (s *userService) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}

	return user, nil
}

// Credit adds tokens to a user's balance
func (s *userService) Credit(ctx context.Context, userID int64, amount decimal.Decimal) (*models.User, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: credit amount must be positive", ErrValidation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}

	if err := uow.UserRepository().AddBalance(ctx, userID, amount); err != nil {
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}

	history := &models.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   user.Balance,
		BalanceAfter:    user.Balance.Add(amount),
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeCredit,
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	user.Balance = user.Balance.Add(amount)
	return user, nil
}

// Transfer moves tokens between two users atomically
func (s *userService) Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: transfer amount must be positive", ErrValidation)
	}
	if fromID == toID {
		return fmt.Errorf("%w: cannot transfer to yourself", ErrValidation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	sender, err := uow.UserRepository().GetByID(ctx, fromID)
	if err != nil {
		return fmt.Errorf("failed to get sender: %w", err)
	}
	if sender == nil {
		return fmt.Errorf("%w: user %d", ErrNotFound, fromID)
	}
	if sender.Balance.LessThan(amount) {
		return fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, sender.Balance, amount)
	}

	recipient, err := uow.UserRepository().GetByID(ctx, toID)
	if err != nil {
		return fmt.Errorf("failed to get recipient: %w", err)
	}
	if recipient == nil {
		return fmt.Errorf("%w: user %d", ErrNotFound, toID)
	}

	if err := uow.UserRepository().DeductBalance(ctx, fromID, amount); err != nil {
		return fmt.Errorf("failed to debit sender: %w", err)
	}
	if err := uow.UserRepository().AddBalance(ctx, toID, amount); err != nil {
		return fmt.Errorf("failed to credit recipient: %w", err)
	}

	outHistory := &models.BalanceHistory{
		UserID:          fromID,
		BalanceBefore:   sender.Balance,
		BalanceAfter:    sender.Balance.Sub(amount),
		ChangeAmount:    amount.Neg(),
		TransactionType: models.TransactionTypeTransferOut,
		TransactionMetadata: map[string]any{
			"recipient": toID,
		},
	}
	if err := RecordBalanceChange(ctx, uow, outHistory); err != nil {
		return err
	}

	inHistory := &models.BalanceHistory{
		UserID:          toID,
		BalanceBefore:   recipient.Balance,
		BalanceAfter:    recipient.Balance.Add(amount),
		ChangeAmount:    amount,
		TransactionType: models.TransactionTypeTransferIn,
		TransactionMetadata: map[string]any{
			"sender": fromID,
		},
	}
	if err := RecordBalanceChange(ctx, uow, inHistory); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetLeaderboard returns the top users by balance
func (s *userService) GetLeaderboard(ctx context.Context, limit int) ([]*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	users, err := uow.UserRepository().GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return users, nil
}
