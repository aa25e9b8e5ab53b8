package service

import (
	"context"
	"fmt"

	"gtask_miniapp/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultBroadcastPerSecond = 20

// Broadcaster fans a message out to every account, paced so the chat
// transport is never flooded. Per-user delivery failures are counted and
// logged, not retried.
type Broadcaster struct {
	store   LedgerStore
	sender  MessageSender
	limiter *rate.Limiter
}

func NewBroadcaster(store LedgerStore, sender MessageSender, perSecond float64) *Broadcaster {
	if perSecond <= 0 {
		perSecond = defaultBroadcastPerSecond
	}
	return &Broadcaster{
		store:   store,
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

func (b *Broadcaster) Broadcast(ctx context.Context, text string) (sent int, failed int, err error) {
	ids, err := b.store.ListAccountIDs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list accounts: %w", err)
	}

	log := logger.Logger()
	for _, id := range ids {
		if err := b.limiter.Wait(ctx); err != nil {
			return sent, failed, err
		}
		if b.sender.Send(ctx, id, text, nil) {
			sent++
		} else {
			failed++
			log.Warn("broadcast message not delivered", zap.Int64("telegram_id", id))
		}
	}

	log.Info("broadcast finished",
		zap.Int("sent", sent),
		zap.Int("failed", failed),
		zap.Int("total", len(ids)))

	return sent, failed, nil
}
