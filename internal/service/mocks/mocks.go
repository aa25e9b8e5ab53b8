package mocks

import (
	"context"

	"gtask_miniapp/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockLedgerStore struct {
	mock.Mock
}

func (m *MockLedgerStore) GetAccount(ctx context.Context, telegramID int64) (*model.Account, error) {
	args := m.Called(ctx, telegramID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockLedgerStore) CreateAccount(ctx context.Context, acc *model.Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockLedgerStore) CreditBalance(ctx context.Context, telegramID int64, amount decimal.Decimal) (*model.Account, error) {
	args := m.Called(ctx, telegramID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockLedgerStore) CreditReferralBonus(ctx context.Context, telegramID int64, amount decimal.Decimal) (*model.Account, error) {
	args := m.Called(ctx, telegramID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockLedgerStore) RecordCompletedTask(ctx context.Context, telegramID int64, taskType string, amount decimal.Decimal) (*model.CompletedTask, error) {
	args := m.Called(ctx, telegramID, taskType, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CompletedTask), args.Error(1)
}

func (m *MockLedgerStore) ListAccountIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type MockCompletionNotifier struct {
	mock.Mock
}

func (m *MockCompletionNotifier) TaskCredited(payee *model.Account, taskType string, amount decimal.Decimal) {
	m.Called(payee, taskType, amount)
}

func (m *MockCompletionNotifier) BonusCredited(referrer *model.Account, bonus decimal.Decimal, payeeID int64) {
	m.Called(referrer, bonus, payeeID)
}

type MockMessageSender struct {
	mock.Mock
}

func (m *MockMessageSender) Send(ctx context.Context, telegramID int64, text string, markup *model.Markup) bool {
	args := m.Called(ctx, telegramID, text, markup)
	return args.Bool(0)
}
