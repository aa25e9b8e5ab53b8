package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gtask_miniapp/internal/model"
	"gtask_miniapp/internal/repository"
	"gtask_miniapp/pkg/logger"

	"go.uber.org/zap"
)

const defaultCallTimeout = 10 * time.Second

// TaskCompletionService applies completion events to the ledger. It holds no
// state of its own; every call is a fresh transaction against the store.
//
// Only the payee credit can fail the operation. Everything after it (task
// record, referral bonus, notifications) is best effort: a credit that is
// already visible is never reversed because a later step failed.
type TaskCompletionService struct {
	store       LedgerStore
	policy      BonusPolicy
	notifier    CompletionNotifier
	callTimeout time.Duration
}

func NewTaskCompletionService(store LedgerStore, policy BonusPolicy, notifier CompletionNotifier, callTimeout time.Duration) *TaskCompletionService {
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &TaskCompletionService{
		store:       store,
		policy:      policy,
		notifier:    notifier,
		callTimeout: callTimeout,
	}
}

func (s *TaskCompletionService) CompleteTask(ctx context.Context, completion model.TaskCompletion) (*model.CompletionResult, error) {
	log := logger.Logger()

	if !ValidAmount(completion.Amount) {
		return nil, ErrInvalidAmount
	}
	if completion.PayeeID <= 0 {
		return nil, ErrInvalidRequest
	}

	payee, err := s.creditPayee(ctx, completion)
	if err != nil {
		return nil, err
	}

	// The credit is durable from here on; the remaining steps only log.
	recordCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	_, err = s.store.RecordCompletedTask(recordCtx, completion.PayeeID, completion.TaskType, completion.Amount)
	cancel()
	if err != nil {
		log.Error("task record write failed after credit",
			zap.Int64("telegram_id", completion.PayeeID),
			zap.String("task_type", completion.TaskType),
			zap.Error(err))
	}

	result := &model.CompletionResult{NewBalance: payee.Balance}

	referrer := s.creditReferrer(ctx, completion)
	if referrer != nil {
		result.BonusCredited = true
		result.BonusAmount = s.policy.ComputeBonus(completion.Amount)
		result.ReferrerID = referrer.TelegramID
	}

	s.notifier.TaskCredited(payee, completion.TaskType, completion.Amount)
	if referrer != nil {
		s.notifier.BonusCredited(referrer, result.BonusAmount, completion.PayeeID)
	}

	return result, nil
}

// creditPayee is the single authoritative step. A timeout counts as a
// failure even though the store may have applied the credit; surfacing a
// false failure is preferred over silently assuming success.
func (s *TaskCompletionService) creditPayee(ctx context.Context, completion model.TaskCompletion) (*model.Account, error) {
	creditCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	payee, err := s.store.CreditBalance(creditCtx, completion.PayeeID, completion.Amount)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrPayeeNotFound
		case errors.Is(err, repository.ErrInvalidAmount):
			return nil, ErrInvalidAmount
		default:
			return nil, fmt.Errorf("%w: %v", ErrCreditFailed, err)
		}
	}
	return payee, nil
}

// creditReferrer propagates the bonus. Any failure here, including a missing
// referrer, skips the bonus without touching the payee's result.
func (s *TaskCompletionService) creditReferrer(ctx context.Context, completion model.TaskCompletion) *model.Account {
	if completion.ReferrerID == nil {
		return nil
	}
	referrerID := *completion.ReferrerID
	if referrerID == completion.PayeeID {
		// self-referral earns nothing
		return nil
	}

	bonus := s.policy.ComputeBonus(completion.Amount)
	if !bonus.IsPositive() {
		return nil
	}

	bonusCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	referrer, err := s.store.CreditReferralBonus(bonusCtx, referrerID, bonus)
	if err != nil {
		logger.Logger().Warn("referral bonus skipped",
			zap.Int64("referrer_id", referrerID),
			zap.Int64("payee_id", completion.PayeeID),
			zap.String("bonus", bonus.StringFixed(2)),
			zap.Error(err))
		return nil
	}
	return referrer
}
