package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountService_Register(t *testing.T) {
	store := newMemLedger()
	svc := NewAccountService(store)

	acc, err := svc.Register(context.Background(), 1001, "alice", "Alice", nil)
	require.NoError(t, err)
	assert.True(t, acc.Balance.IsZero())
	assert.Nil(t, acc.ReferrerID)

	// duplicate registration
	_, err = svc.Register(context.Background(), 1001, "alice", "Alice", nil)
	assert.ErrorIs(t, err, ErrAccountExists)
}

func TestAccountService_RegisterReferred(t *testing.T) {
	store := newMemLedger()
	svc := NewAccountService(store)

	acc, err := svc.Register(context.Background(), 1001, "bob", "Bob", ref(2002))
	require.NoError(t, err)
	require.NotNil(t, acc.ReferrerID)
	// the referrer does not need to exist at creation time
	assert.Equal(t, int64(2002), *acc.ReferrerID)
}

func TestAccountService_RegisterDropsSelfReferral(t *testing.T) {
	store := newMemLedger()
	svc := NewAccountService(store)

	acc, err := svc.Register(context.Background(), 1001, "eve", "Eve", ref(1001))
	require.NoError(t, err)
	assert.Nil(t, acc.ReferrerID)
}

func TestAccountService_ConcurrentRegisterSingleWinner(t *testing.T) {
	const attempts = 8

	store := newMemLedger()
	svc := NewAccountService(store)

	errs := make([]error, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(context.Background(), 1001, "alice", "Alice", nil)
		}(i)
	}
	wg.Wait()

	var created, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, ErrAccountExists):
			conflicts++
		default:
			t.Fatalf("unexpected registration error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)
}

func TestAccountService_GetAccountNotFound(t *testing.T) {
	store := newMemLedger()
	svc := NewAccountService(store)

	_, err := svc.GetAccount(context.Background(), 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
