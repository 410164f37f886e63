package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/oakline/planshare-coord/pkg/coord"
)

// checkRemote runs the accurate sliding-window algorithm against the
// coordination store.
//
// The prune+count+insert sequence executes as one MULTI/EXEC transaction,
// so concurrent checkers for the same identifier can never observe or
// create an intermediate count: the ZCARD each transaction reads is the
// cardinality after its own prune and before its own insert, and
// transactions serialize against each other inside the store.
func (l *Limiter) checkRemote(ctx context.Context, conn coord.Conn, identifier string, cfg Config) (Result, error) {
	key := cfg.key(identifier)
	now := l.now()
	nowMs := now.UnixMilli()
	windowStartMs := nowMs - cfg.Window.Milliseconds()

	// The member must be unique so a post-denial cleanup removes exactly
	// this request's marker, never one from a concurrently admitted
	// request sharing the same millisecond.
	member := fmt.Sprintf("%d-%s", nowMs, uuid.NewString())

	var card *redis.IntCmd
	_, err := conn.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStartMs, 10))
		card = p.ZCard(ctx, key)
		p.ZAdd(ctx, key, redis.Z{Score: float64(nowMs), Member: member})
		p.Expire(ctx, key, cfg.Window)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	count := int(card.Val()) // in-window requests before this one

	if count >= cfg.MaxRequests {
		// Over the limit: this request must not count against the window.
		if err := conn.ZRem(ctx, key, member).Err(); err != nil {
			return Result{}, err
		}

		wait := cfg.Window
		if oldest, err := conn.ZRangeWithScores(ctx, key, 0, 0).Result(); err == nil && len(oldest) > 0 {
			freesAt := int64(oldest[0].Score) + cfg.Window.Milliseconds()
			if d := freesAt - nowMs; d > 0 {
				wait = time.Duration(d) * time.Millisecond
			}
		}
		ra := retryAfter(wait)
		return Result{
			Allowed:    false,
			Remaining:  0,
			Limit:      cfg.MaxRequests,
			ResetTime:  now.Add(ra),
			RetryAfter: ra,
		}, nil
	}

	remaining := cfg.MaxRequests - count - 1
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:   true,
		Remaining: remaining,
		Limit:     cfg.MaxRequests,
		ResetTime: now.Add(cfg.Window),
	}, nil
}
