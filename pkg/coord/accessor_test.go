package coord

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConn satisfies Conn without a server behind it.
type stubConn struct {
	closed atomic.Bool
}

func (s *stubConn) Get(ctx context.Context, key string) *redis.StringCmd { return nil }
func (s *stubConn) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	return nil
}
func (s *stubConn) Del(ctx context.Context, keys ...string) *redis.IntCmd    { return nil }
func (s *stubConn) Exists(ctx context.Context, keys ...string) *redis.IntCmd { return nil }
func (s *stubConn) Keys(ctx context.Context, pattern string) *redis.StringSliceCmd {
	return nil
}
func (s *stubConn) ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	return nil
}
func (s *stubConn) ZRangeWithScores(ctx context.Context, key string, start, stop int64) *redis.ZSliceCmd {
	return nil
}
func (s *stubConn) TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error) {
	return nil, nil
}
func (s *stubConn) Ping(ctx context.Context) *redis.StatusCmd { return nil }
func (s *stubConn) Close() error {
	s.closed.Store(true)
	return nil
}

func TestAccessor_Unconfigured(t *testing.T) {
	a := New(Config{})

	for i := 0; i < 3; i++ {
		conn, ok := a.Acquire(context.Background())
		assert.False(t, ok)
		assert.Nil(t, conn)
	}
}

func TestAccessor_ReusesConnection(t *testing.T) {
	a := New(Config{URL: "redis://localhost:6379"})

	var dials atomic.Int32
	stub := &stubConn{}
	a.dial = func(ctx context.Context, url string) (Conn, error) {
		dials.Add(1)
		return stub, nil
	}

	c1, ok := a.Acquire(context.Background())
	require.True(t, ok)
	c2, ok := a.Acquire(context.Background())
	require.True(t, ok)

	assert.Same(t, c1.(*stubConn), c2.(*stubConn))
	assert.Equal(t, int32(1), dials.Load())
}

func TestAccessor_SingleFlightDial(t *testing.T) {
	a := New(Config{URL: "redis://localhost:6379"})

	var dials atomic.Int32
	release := make(chan struct{})
	a.dial = func(ctx context.Context, url string) (Conn, error) {
		dials.Add(1)
		<-release
		return &stubConn{}, nil
	}

	var wg sync.WaitGroup
	results := make([]bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = a.Acquire(context.Background())
		}(i)
	}

	// Let the goroutines pile up on the in-flight dial, then release it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), dials.Load(), "concurrent callers must share one dial")
	for i, ok := range results {
		assert.True(t, ok, "caller %d should have received the shared connection", i)
	}
}

func TestAccessor_BackoffBetweenDials(t *testing.T) {
	a := New(Config{URL: "redis://localhost:6379", MaxRetries: 10})

	clock := time.Now()
	a.now = func() time.Time { return clock }

	var dials atomic.Int32
	a.dial = func(ctx context.Context, url string) (Conn, error) {
		dials.Add(1)
		return nil, errors.New("connection refused")
	}

	_, ok := a.Acquire(context.Background())
	assert.False(t, ok)
	require.Equal(t, int32(1), dials.Load())

	// Inside the backoff window: no new dial.
	_, ok = a.Acquire(context.Background())
	assert.False(t, ok)
	assert.Equal(t, int32(1), dials.Load())

	// Past the backoff window: retried.
	clock = clock.Add(time.Second)
	_, ok = a.Acquire(context.Background())
	assert.False(t, ok)
	assert.Equal(t, int32(2), dials.Load())
}

func TestAccessor_GivesUpAfterMaxRetries(t *testing.T) {
	a := New(Config{URL: "redis://localhost:6379", MaxRetries: 3})

	clock := time.Now()
	a.now = func() time.Time { return clock }

	var dials atomic.Int32
	a.dial = func(ctx context.Context, url string) (Conn, error) {
		dials.Add(1)
		return nil, errors.New("connection refused")
	}

	for i := 0; i < 10; i++ {
		clock = clock.Add(backoffCap) // always past any backoff window
		_, ok := a.Acquire(context.Background())
		assert.False(t, ok)
	}
	assert.Equal(t, int32(3), dials.Load(), "dialing must stop after MaxRetries failures")
}

func TestAccessor_ReleaseResets(t *testing.T) {
	a := New(Config{URL: "redis://localhost:6379", MaxRetries: 1})

	stub := &stubConn{}
	fail := true
	a.dial = func(ctx context.Context, url string) (Conn, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return stub, nil
	}

	_, ok := a.Acquire(context.Background())
	require.False(t, ok)

	// Exhausted now; Release clears the latch and a fresh dial succeeds.
	a.Release()
	fail = false
	conn, ok := a.Acquire(context.Background())
	require.True(t, ok)
	assert.Same(t, stub, conn.(*stubConn))

	a.Release()
	assert.True(t, stub.closed.Load())
}

func TestDialBackoff(t *testing.T) {
	assert.Equal(t, 100*time.Millisecond, dialBackoff(1))
	assert.Equal(t, 500*time.Millisecond, dialBackoff(5))
	assert.Equal(t, backoffCap, dialBackoff(1000))
}
