package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakline/planshare-coord/pkg/coord"
	"github.com/oakline/planshare-coord/pkg/localstore"
)

// newLocalOnly builds a facade whose accessor has no endpoint configured,
// exercising the local-fallback path end to end.
func newLocalOnly(opts ...Option) *Cache {
	return New(coord.New(coord.Config{}), localstore.New(0), opts...)
}

type planSummary struct {
	Reference string   `json:"reference"`
	Status    string   `json:"status"`
	Fees      []int    `json:"fees"`
	Tags      []string `json:"tags,omitempty"`
}

func TestCache_SetGet_LocalFallback(t *testing.T) {
	ctx := context.Background()
	c := newLocalOnly()

	want := planSummary{
		Reference: "PA/2026/0143",
		Status:    "pending",
		Fees:      []int{258, 96},
		Tags:      []string{"listed-building"},
	}
	require.NoError(t, c.Set(ctx, "app:PA/2026/0143", want, time.Minute))

	var got planSummary
	require.True(t, c.Get(ctx, "app:PA/2026/0143", &got))
	assert.Equal(t, want, got, "serialization round-trip must be lossless")
}

func TestCache_GetMiss(t *testing.T) {
	c := newLocalOnly()

	var got string
	assert.False(t, c.Get(context.Background(), "nope", &got))
	assert.Empty(t, got)
}

func TestCache_Delete(t *testing.T) {
	ctx := context.Background()
	c := newLocalOnly()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	require.True(t, c.Has(ctx, "k"))

	c.Delete(ctx, "k")
	assert.False(t, c.Has(ctx, "k"))
}

func TestCache_GetOrSet(t *testing.T) {
	ctx := context.Background()
	c := newLocalOnly()

	calls := 0
	factory := func() (any, error) {
		calls++
		return planSummary{Reference: "PA/2026/0200", Status: "approved"}, nil
	}

	var got planSummary
	require.NoError(t, c.GetOrSet(ctx, "app:PA/2026/0200", &got, time.Minute, factory))
	assert.Equal(t, "approved", got.Status)
	assert.Equal(t, 1, calls)

	// Second call is served from cache; the factory must not run again.
	var again planSummary
	require.NoError(t, c.GetOrSet(ctx, "app:PA/2026/0200", &again, time.Minute, factory))
	assert.Equal(t, got, again)
	assert.Equal(t, 1, calls)
}

func TestCache_GetOrSet_FactoryError(t *testing.T) {
	ctx := context.Background()
	c := newLocalOnly()

	wantErr := errors.New("planning register unavailable")
	var got planSummary
	err := c.GetOrSet(ctx, "k", &got, time.Minute, func() (any, error) {
		return nil, wantErr
	})
	require.ErrorIs(t, err, wantErr)
	assert.False(t, c.Has(ctx, "k"), "a failed factory must not cache anything")
}

func TestCache_SetEncodeError(t *testing.T) {
	c := newLocalOnly()

	err := c.Set(context.Background(), "k", func() {}, time.Minute)
	assert.Error(t, err, "unencodable values are the caller's own error")
}

func TestCache_SynchronousVariants(t *testing.T) {
	c := newLocalOnly()

	require.NoError(t, c.SetLocal("k", map[string]int{"reviews": 3}, time.Minute))
	assert.True(t, c.HasLocal("k"))

	var got map[string]int
	require.True(t, c.GetLocal("k", &got))
	assert.Equal(t, 3, got["reviews"])

	assert.True(t, c.DeleteLocal("k"))
	assert.False(t, c.HasLocal("k"))
	assert.False(t, c.DeleteLocal("k"))
}

func TestCache_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := localstore.New(0)
	c := New(coord.New(coord.Config{}), store)

	require.NoError(t, c.Set(ctx, "k", "v", 20*time.Millisecond))

	var got string
	require.True(t, c.Get(ctx, "k", &got))

	assert.Eventually(t, func() bool {
		var v string
		return !c.Get(ctx, "k", &v)
	}, time.Second, 10*time.Millisecond, "entry must read as absent after its TTL")
}

func TestCache_DeletePattern_Unavailable(t *testing.T) {
	c := newLocalOnly()

	require.NoError(t, c.Set(context.Background(), "k", "v", time.Minute))
	assert.Equal(t, 0, c.DeletePattern(context.Background(), "k*"),
		"pattern delete is remote-only and reports 0 when unavailable")
	assert.True(t, c.HasLocal("k"), "local store is untouched by pattern deletes")
}

func TestCache_PrefixIsolation(t *testing.T) {
	store := localstore.New(0)
	acc := coord.New(coord.Config{})
	a := New(acc, store, WithPrefix("cache:"))
	b := New(acc, store, WithPrefix("other:"))

	require.NoError(t, a.SetLocal("k", "from-a", time.Minute))

	var got string
	assert.False(t, b.GetLocal("k", &got), "prefixes must not collide on a shared store")
}
