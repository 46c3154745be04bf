package cache

import (
	"context"
	"testing"
	"time"

	"github.com/azattello/cargo3589-server/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisSettings(t *testing.T, ttl time.Duration) (*RedisSettings, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewRedisClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSettings(client, ttl), mr
}

func TestRedisSettings_RoundTrip(t *testing.T) {
	c, _ := newRedisSettings(t, time.Minute)
	ctx := context.Background()

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "miss before first Set")

	want := &models.GlobalSettings{ID: models.SingletonID, Price: "100", Currency: "USD", GlobalReferralBonusPercentage: 5}
	require.NoError(t, c.Set(ctx, want))

	got, err = c.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "100", got.Price)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, 5.0, got.GlobalReferralBonusPercentage)
}

func TestRedisSettings_Invalidate(t *testing.T) {
	c, mr := newRedisSettings(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &models.GlobalSettings{Price: "1"}))
	require.True(t, mr.Exists(settingsKey))

	require.NoError(t, c.Invalidate(ctx))
	assert.False(t, mr.Exists(settingsKey))
}

func TestRedisSettings_Expires(t *testing.T) {
	c, mr := newRedisSettings(t, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &models.GlobalSettings{Price: "1"}))
	mr.FastForward(31 * time.Second)

	got, err := c.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisSettings_CorruptEntry(t *testing.T) {
	c, mr := newRedisSettings(t, time.Minute)
	require.NoError(t, mr.Set(settingsKey, "{not json"))

	_, err := c.Get(context.Background())
	assert.Error(t, err)
}

func TestRedisSettings_ServerDown(t *testing.T) {
	c, mr := newRedisSettings(t, time.Minute)
	mr.Close()

	_, err := c.Get(context.Background())
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	var c Settings = Nop{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, &models.GlobalSettings{}))
	got, err := c.Get(ctx)
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Invalidate(ctx))
}
