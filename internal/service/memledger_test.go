package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gtask_miniapp/internal/model"
	"gtask_miniapp/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memLedger is an in-memory LedgerStore with the same per-account atomicity
// the real adapter gets from single-statement SQL increments. Used to test
// the engine end to end, including under concurrency.
type memLedger struct {
	mu       sync.Mutex
	accounts map[int64]*model.Account
	tasks    []model.CompletedTask
}

func newMemLedger() *memLedger {
	return &memLedger{accounts: make(map[int64]*model.Account)}
}

func (m *memLedger) seed(telegramID int64, referrerID *int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[telegramID] = &model.Account{
		TelegramID:    telegramID,
		Balance:       decimal.Zero,
		TotalEarnings: decimal.Zero,
		ReferrerID:    referrerID,
		CreatedAt:     time.Now().UTC(),
	}
}

func (m *memLedger) snapshot(telegramID int64) model.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.accounts[telegramID]
}

func (m *memLedger) taskRecords() []model.CompletedTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.CompletedTask, len(m.tasks))
	copy(out, m.tasks)
	return out
}

func (m *memLedger) GetAccount(_ context.Context, telegramID int64) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[telegramID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *acc
	return &cp, nil
}

func (m *memLedger) CreateAccount(_ context.Context, acc *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[acc.TelegramID]; ok {
		return repository.ErrAlreadyExists
	}
	cp := *acc
	m.accounts[acc.TelegramID] = &cp
	return nil
}

func (m *memLedger) CreditBalance(_ context.Context, telegramID int64, amount decimal.Decimal) (*model.Account, error) {
	if !ValidAmount(amount) {
		return nil, repository.ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[telegramID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	acc.Balance = acc.Balance.Add(amount)
	acc.TotalEarnings = acc.TotalEarnings.Add(amount)
	cp := *acc
	return &cp, nil
}

func (m *memLedger) CreditReferralBonus(_ context.Context, telegramID int64, amount decimal.Decimal) (*model.Account, error) {
	if !ValidAmount(amount) {
		return nil, repository.ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[telegramID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	acc.Balance = acc.Balance.Add(amount)
	acc.TotalEarnings = acc.TotalEarnings.Add(amount)
	acc.ReferralCount++
	cp := *acc
	return &cp, nil
}

func (m *memLedger) RecordCompletedTask(_ context.Context, telegramID int64, taskType string, amount decimal.Decimal) (*model.CompletedTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[telegramID]; !ok {
		return nil, repository.ErrNotFound
	}
	record := model.CompletedTask{
		ID:          uuid.New(),
		TelegramID:  telegramID,
		TaskType:    taskType,
		Amount:      amount,
		CompletedAt: time.Now().UTC(),
	}
	m.tasks = append(m.tasks, record)
	m.accounts[telegramID].CompletedTasks++
	return &record, nil
}

func (m *memLedger) ListAccountIDs(_ context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// nopNotifier satisfies CompletionNotifier for tests that only care about
// ledger state.
type nopNotifier struct{}

func (nopNotifier) TaskCredited(*model.Account, string, decimal.Decimal)  {}
func (nopNotifier) BonusCredited(*model.Account, decimal.Decimal, int64) {}
