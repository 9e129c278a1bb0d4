package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/pawfectcare/notifier/internal/domain"
)

// ChannelLimiters holds one token bucket limiter per delivery channel.
// Each limiter enforces a steady-state rate (e.g. 100 tokens/sec).
// Burst equals the rate so no extra capacity accumulates beyond the
// configured per-second maximum.
type ChannelLimiters struct {
	limiters map[domain.Channel]*rate.Limiter
}

// New creates a ChannelLimiters with ratePerSec tokens per second per channel.
func New(ratePerSec int) *ChannelLimiters {
	r := rate.Limit(ratePerSec)

	return &ChannelLimiters{
		limiters: map[domain.Channel]*rate.Limiter{
			domain.ChannelEmail: rate.NewLimiter(r, ratePerSec),
			domain.ChannelPush:  rate.NewLimiter(r, ratePerSec),
		},
	}
}

// Wait blocks until the channel's limiter grants a token. Called
// immediately before every transport send. Returns a non-nil error
// only if ctx is cancelled while waiting.
func (cl *ChannelLimiters) Wait(ctx context.Context, ch domain.Channel) error {
	return cl.limiters[ch].Wait(ctx)
}
