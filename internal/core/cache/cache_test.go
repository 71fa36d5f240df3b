package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

type item struct {
	Name string `json:"name"`
}

func TestGetOrLoadJSON_CachesValue(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))

	var calls int32
	load := func(context.Context) ([]item, error) {
		atomic.AddInt32(&calls, 1)
		return []item{{Name: "a"}}, nil
	}

	got, err := GetOrLoadJSON(c, ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []item{{Name: "a"}}, got)

	got, err = GetOrLoadJSON(c, ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "a", got[0].Name)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.True(t, mr.Exists("k"))

	require.NoError(t, c.Del(ctx, "k"))
	_, err = GetOrLoadJSON(c, ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestGetOrLoadJSON_CorruptEntryReloads(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("k", "{not json"))

	got, err := GetOrLoadJSON(c, context.Background(), "k", time.Minute, func(context.Context) (item, error) {
		return item{Name: "fresh"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.Name)

	v, err := mr.Get("k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"fresh"}`, v)
}

func TestGetOrLoad_LoadError(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("db down")
	_, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestGetOrLoad_TTL(t *testing.T) {
	c, mr := newTestCache(t)
	_, err := c.GetOrLoad(context.Background(), "k", time.Second, func(context.Context) ([]byte, error) {
		return []byte("v"), nil
	})
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)
	assert.False(t, mr.Exists("k"))
}

func TestGetOrLoad_IgnoresCallerCancel(t *testing.T) {
	c, mr := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := c.GetOrLoad(ctx, "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []byte("v"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "v", string(b))
	assert.True(t, mr.Exists("k"))
}
