package repository

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	duplicateKey := &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "accounts_pkey",
	}

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "duplicate primary key",
			err:      duplicateKey,
			expected: true,
		},
		{
			name:     "wrapped duplicate primary key",
			err:      fmt.Errorf("exec insert: %w", duplicateKey),
			expected: true,
		},
		{
			name:     "other postgres error",
			err:      &pgconn.PgError{Code: "23514"},
			expected: false,
		},
		{
			name:     "no rows",
			err:      sql.ErrNoRows,
			expected: false,
		},
		{
			name:     "nil",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isUniqueViolation(tt.err))
		})
	}
}

func TestValidAmountBounds(t *testing.T) {
	assert.True(t, validAmount(decimal.RequireFromString("0.01")))
	assert.True(t, validAmount(decimal.RequireFromString("10.50")))
	assert.False(t, validAmount(decimal.Zero))
	assert.False(t, validAmount(decimal.RequireFromString("-5.00")))
	assert.False(t, validAmount(decimal.RequireFromString("0.001")))
}
