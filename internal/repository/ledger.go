package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gtask_miniapp/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type account struct {
	TelegramID     int64           `db:"telegram_id"`
	Username       string          `db:"username"`
	FirstName      string          `db:"first_name"`
	Balance        decimal.Decimal `db:"balance"`
	CompletedTasks int             `db:"completed_tasks"`
	ReferralCount  int             `db:"referral_count"`
	TotalEarnings  decimal.Decimal `db:"total_earnings"`
	ReferrerID     *int64          `db:"referrer_id"`
	CreatedAt      time.Time       `db:"created_at"`
}

var accountColumns = []string{
	"telegram_id",
	"username",
	"first_name",
	"balance",
	"completed_tasks",
	"referral_count",
	"total_earnings",
	"referrer_id",
	"created_at",
}

func (a *account) toModel() *model.Account {
	return &model.Account{
		TelegramID:     a.TelegramID,
		Username:       a.Username,
		FirstName:      a.FirstName,
		Balance:        a.Balance,
		CompletedTasks: a.CompletedTasks,
		ReferralCount:  a.ReferralCount,
		TotalEarnings:  a.TotalEarnings,
		ReferrerID:     a.ReferrerID,
		CreatedAt:      a.CreatedAt,
	}
}

// validAmount accepts positive decimals with at most two fractional digits.
func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Exponent() >= -2
}

// CreateAccount inserts a new account. The referrer id, if any, is recorded
// as given without checking that the referrer exists. The primary key is the
// single arbiter of uniqueness, so concurrent creations for the same id
// resolve to exactly one winner and a clean conflict for the rest.
func (r *Repository) CreateAccount(ctx context.Context, acc *model.Account) error {
	query, args, err := squirrel.
		Insert("accounts").
		SetMap(map[string]interface{}{
			"telegram_id":     acc.TelegramID,
			"username":        acc.Username,
			"first_name":      acc.FirstName,
			"balance":         acc.Balance,
			"completed_tasks": acc.CompletedTasks,
			"referral_count":  acc.ReferralCount,
			"total_earnings":  acc.TotalEarnings,
			"referrer_id":     acc.ReferrerID,
			"created_at":      acc.CreatedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build account insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *Repository) GetAccount(ctx context.Context, telegramID int64) (*model.Account, error) {
	query, args, err := squirrel.
		Select(accountColumns...).
		From("accounts").
		Where(squirrel.Eq{"telegram_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var acc account
	err = r.db.GetContext(ctx, &acc, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return acc.toModel(), nil
}

// CreditBalance adds amount to the account's balance and lifetime earnings.
// The increment runs as a single UPDATE so concurrent credits to the same
// account always compose; there is no read-modify-write on the caller side.
func (r *Repository) CreditBalance(ctx context.Context, telegramID int64, amount decimal.Decimal) (*model.Account, error) {
	if !validAmount(amount) {
		return nil, ErrInvalidAmount
	}

	query, args, err := squirrel.
		Update("accounts").
		Set("balance", squirrel.Expr("balance + ?", amount)).
		Set("total_earnings", squirrel.Expr("total_earnings + ?", amount)).
		Where(squirrel.Eq{"telegram_id": telegramID}).
		Suffix("RETURNING " + returningColumns()).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build credit query: %w", err)
	}

	var acc account
	err = r.db.GetContext(ctx, &acc, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}

	return acc.toModel(), nil
}

// CreditReferralBonus is CreditBalance plus a referral-count bump, applied in
// the same atomic statement.
func (r *Repository) CreditReferralBonus(ctx context.Context, telegramID int64, amount decimal.Decimal) (*model.Account, error) {
	if !validAmount(amount) {
		return nil, ErrInvalidAmount
	}

	query, args, err := squirrel.
		Update("accounts").
		Set("balance", squirrel.Expr("balance + ?", amount)).
		Set("total_earnings", squirrel.Expr("total_earnings + ?", amount)).
		Set("referral_count", squirrel.Expr("referral_count + 1")).
		Where(squirrel.Eq{"telegram_id": telegramID}).
		Suffix("RETURNING " + returningColumns()).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build bonus query: %w", err)
	}

	var acc account
	err = r.db.GetContext(ctx, &acc, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to credit referral bonus: %w", err)
	}

	return acc.toModel(), nil
}

// RecordCompletedTask appends to the task log and bumps the account's
// completed-task counter. The log offers no deduplication: submitting the
// same completion twice produces two records.
func (r *Repository) RecordCompletedTask(ctx context.Context, telegramID int64, taskType string, amount decimal.Decimal) (*model.CompletedTask, error) {
	record := &model.CompletedTask{
		ID:          uuid.New(),
		TelegramID:  telegramID,
		TaskType:    taskType,
		Amount:      amount,
		CompletedAt: time.Now().UTC(),
	}

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Insert("completed_tasks").
			SetMap(map[string]interface{}{
				"id":           record.ID,
				"telegram_id":  record.TelegramID,
				"task_type":    record.TaskType,
				"amount":       record.Amount,
				"completed_at": record.CompletedAt,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build task insert query: %w", err)
		}

		_, err = tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to insert task record: %w", err)
		}

		updateQuery, updateArgs, err := squirrel.
			Update("accounts").
			Set("completed_tasks", squirrel.Expr("completed_tasks + 1")).
			Where(squirrel.Eq{"telegram_id": telegramID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build task counter query: %w", err)
		}

		_, err = tx.ExecContext(ctx, updateQuery, updateArgs...)
		if err != nil {
			return fmt.Errorf("failed to bump task counter: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (r *Repository) ListAccountIDs(ctx context.Context) ([]int64, error) {
	query, _, err := squirrel.
		Select("telegram_id").
		From("accounts").
		OrderBy("telegram_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var ids []int64
	err = r.db.SelectContext(ctx, &ids, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list account ids: %w", err)
	}

	return ids, nil
}

func returningColumns() string {
	return strings.Join(accountColumns, ", ")
}
