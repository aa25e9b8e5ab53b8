package service

import (
	"context"
	"testing"

	"gtask_miniapp/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestBroadcaster_Broadcast(t *testing.T) {
	store := &mocks.MockLedgerStore{}
	sender := &mocks.MockMessageSender{}

	store.On("ListAccountIDs", mock.Anything).Return([]int64{1, 2, 3}, nil)
	sender.On("Send", mock.Anything, int64(1), "hello", mock.Anything).Return(true)
	sender.On("Send", mock.Anything, int64(2), "hello", mock.Anything).Return(false)
	sender.On("Send", mock.Anything, int64(3), "hello", mock.Anything).Return(true)

	b := NewBroadcaster(store, sender, 1000)

	sent, failed, err := b.Broadcast(context.Background(), "hello")
	assert.NoError(t, err)
	assert.Equal(t, 2, sent)
	assert.Equal(t, 1, failed)

	store.AssertExpectations(t)
	sender.AssertExpectations(t)
}

func TestBroadcaster_ListFailure(t *testing.T) {
	store := &mocks.MockLedgerStore{}
	sender := &mocks.MockMessageSender{}

	store.On("ListAccountIDs", mock.Anything).Return(nil, assert.AnError)

	b := NewBroadcaster(store, sender, 1000)

	sent, failed, err := b.Broadcast(context.Background(), "hello")
	assert.Error(t, err)
	assert.Zero(t, sent)
	assert.Zero(t, failed)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBroadcaster_CancelledContext(t *testing.T) {
	store := &mocks.MockLedgerStore{}
	sender := &mocks.MockMessageSender{}

	store.On("ListAccountIDs", mock.Anything).Return([]int64{1, 2, 3}, nil)

	b := NewBroadcaster(store, sender, 1000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := b.Broadcast(ctx, "hello")
	assert.Error(t, err)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
