package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gtask_miniapp/internal/model"
	"gtask_miniapp/internal/repository"

	"github.com/shopspring/decimal"
)

type AccountService struct {
	store LedgerStore
}

func NewAccountService(store LedgerStore) *AccountService {
	return &AccountService{
		store: store,
	}
}

// Register creates the account on first contact, organic or referred. The
// referrer id is stored as given; it is not checked against existing
// accounts. A self-referral is dropped rather than rejected.
func (s *AccountService) Register(ctx context.Context, telegramID int64, username, firstName string, referrerID *int64) (*model.Account, error) {
	if telegramID <= 0 {
		return nil, ErrInvalidRequest
	}
	if referrerID != nil && *referrerID == telegramID {
		referrerID = nil
	}

	acc := &model.Account{
		TelegramID:    telegramID,
		Username:      username,
		FirstName:     firstName,
		Balance:       decimal.Zero,
		TotalEarnings: decimal.Zero,
		ReferrerID:    referrerID,
		CreatedAt:     time.Now().UTC(),
	}

	err := s.store.CreateAccount(ctx, acc)
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return acc, nil
}

func (s *AccountService) GetAccount(ctx context.Context, telegramID int64) (*model.Account, error) {
	acc, err := s.store.GetAccount(ctx, telegramID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, nil
}
