package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/EasterCompany/dex-welcome-service/cache"
	"github.com/EasterCompany/dex-welcome-service/config"
	"github.com/EasterCompany/dex-welcome-service/store"
	"github.com/alicebob/miniredis/v2"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_File(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "servers")

	s, closeStore, err := OpenStore(context.Background(), config.StorageConfig{Backend: config.BackendFile, Dir: dir})

	require.NoError(t, err)
	assert.IsType(t, &store.FileStore{}, s)
	assert.NoError(t, closeStore())
	assert.DirExists(t, dir)
	assert.NoError(t, storageCheck(config.StorageConfig{Dir: dir}, s)(context.Background()))

	require.NoError(t, os.RemoveAll(dir))
	assert.Error(t, storageCheck(config.StorageConfig{Dir: dir}, s)(context.Background()))
}

func TestOpenStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.StorageConfig{Backend: config.BackendRedis, Redis: &config.ConnectionConfig{Addr: mr.Addr()}}

	s, closeStore, err := OpenStore(context.Background(), cfg)

	require.NoError(t, err)
	assert.IsType(t, &cache.DB{}, s)
	assert.NoError(t, storageCheck(cfg, s)(context.Background()))
	assert.NoError(t, closeStore())
}

func TestOpenStore_Errors(t *testing.T) {
	ctx := context.Background()

	_, _, err := OpenStore(ctx, config.StorageConfig{Backend: config.BackendRedis})
	assert.ErrorContains(t, err, "no address configured")

	_, _, err = OpenStore(ctx, config.StorageConfig{Backend: "s3"})
	assert.ErrorContains(t, err, `unknown storage backend "s3"`)
}

func TestNewContainer_RejectsInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "welcome.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"discord": {"command_prefix": "!"}, "storage": {"backend": "file", "dir": "/tmp"}}`), 0644))
	t.Setenv("DISCORD_TOKEN", "")

	_, err := NewContainer(context.Background(), path)

	assert.ErrorContains(t, err, "invalid config")
}

func TestGatewayCheck(t *testing.T) {
	s := &discordgo.Session{}
	check := gatewayCheck(s)

	assert.ErrorContains(t, check(context.Background()), "gateway not connected")

	s.Lock()
	s.DataReady = true
	s.Unlock()
	assert.NoError(t, check(context.Background()))
}
