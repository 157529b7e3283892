package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/EasterCompany/dex-welcome-service/config"
	"github.com/EasterCompany/dex-welcome-service/guild"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) (*DB, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	db, err := New(context.Background(), &config.ConnectionConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mr
}

func TestNew_NotConfigured(t *testing.T) {
	db, err := New(context.Background(), &config.ConnectionConfig{})
	assert.NoError(t, err)
	assert.Nil(t, db)
}

func TestDB_SaveLoadRoundTrip(t *testing.T) {
	db, mr := newTestDB(t)
	ctx := context.Background()

	cfg := guild.NewServerConfig(1001)
	cfg.WelcomeChannelID = 5
	cfg.Messages.Set("welcome", "Hi <user>")
	cfg.Messages.Set("next", "more")
	require.NoError(t, cfg.Messages.SetButton("welcome", "Next", "next"))
	cfg.RoleTriggers.Set("77", "next", 2)

	require.NoError(t, db.Save(ctx, cfg))
	assert.True(t, mr.Exists("dex-welcome-service:server:1001:config"))

	got, err := db.Load(ctx, 1001)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDB_LoadMissing(t *testing.T) {
	db, _ := newTestDB(t)

	_, err := db.Load(context.Background(), 404)
	assert.True(t, errors.Is(err, guild.ErrServerNotConfigured), "got %v", err)
}

func TestDB_LoadInvalidDocument(t *testing.T) {
	db, mr := newTestDB(t)
	require.NoError(t, mr.Set("dex-welcome-service:server:9:config", `{"server_id": "nine"}`))

	_, err := db.Load(context.Background(), 9)
	assert.True(t, errors.Is(err, guild.ErrInvalidDocument), "got %v", err)
}

func TestDB_ServerIDs(t *testing.T) {
	db, mr := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Save(ctx, guild.NewServerConfig(1)))
	require.NoError(t, db.Save(ctx, guild.NewServerConfig(2)))
	require.NoError(t, mr.Set("dex-welcome-service:server:abc:config", "{}"))
	require.NoError(t, mr.Set("unrelated", "x"))

	ids, err := db.ServerIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 2}, ids)
}

func TestDB_SaveFailsWhenServerDown(t *testing.T) {
	db, mr := newTestDB(t)
	mr.Close()

	err := db.Save(context.Background(), guild.NewServerConfig(3))
	assert.Error(t, err)
}
