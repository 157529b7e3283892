package startup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/EasterCompany/dex-welcome-service/guild"
	"github.com/EasterCompany/dex-welcome-service/state"
	"github.com/EasterCompany/dex-welcome-service/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadServerConfigs(t *testing.T) {
	fs, err := store.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	for _, id := range []int64{1, 2, 3} {
		cfg := guild.NewServerConfig(id)
		cfg.Messages.Set("welcome", "hi")
		require.NoError(t, fs.Save(ctx, cfg))
	}
	require.NoError(t, os.WriteFile(filepath.Join(fs.Dir(), "4.json"), []byte(`{"messages": []}`), 0644))

	manager := state.NewManager(fs)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	n, err := LoadServerConfigs(ctx, fs, manager, logger)

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []int64{1, 2, 3}, manager.ServerIDs())
	cfg, ok := manager.Snapshot(2)
	require.True(t, ok)
	assert.Equal(t, 1, cfg.Messages.Len())
}

func TestLoadServerConfigs_SkippedDocumentSurvivesInit(t *testing.T) {
	fs, err := store.New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	doc := []byte(`{"server_id": 4, "welcome_channel_id": "555", "messages": {"welcome": {"content": "hi", "buttons": []}}}`)
	path := filepath.Join(fs.Dir(), "4.json")
	require.NoError(t, os.WriteFile(path, doc, 0644))

	manager := state.NewManager(fs)
	n, err := LoadServerConfigs(ctx, fs, manager, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	_, err = manager.Init(ctx, 4)
	assert.ErrorIs(t, err, state.ErrPersistence)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, doc, after)
}

type brokenStore struct{ *store.FileStore }

func (brokenStore) ServerIDs(context.Context) ([]int64, error) {
	return nil, errors.New("permission denied")
}

func TestLoadServerConfigs_ListFailure(t *testing.T) {
	bs := brokenStore{}
	manager := state.NewManager(bs)

	_, err := LoadServerConfigs(context.Background(), bs, manager, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.ErrorContains(t, err, "permission denied")
}
