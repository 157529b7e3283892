package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/EasterCompany/dex-welcome-service/guild"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	fs, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	cfg := guild.NewServerConfig(555)
	cfg.SendWelcomeOnJoin = true
	cfg.Messages.Set("welcome", "Hi <user>!")
	cfg.Messages.Set("faq", "Read the pins")
	require.NoError(t, cfg.Messages.SetButton("welcome", "FAQ", "faq"))
	require.NoError(t, cfg.Messages.SetButton("faq", "Back", "welcome"))
	cfg.RoleTriggers.Set("1", "faq", 10)

	require.NoError(t, fs.Save(ctx, cfg))
	assert.FileExists(t, filepath.Join(fs.Dir(), "555.json"))

	got, err := fs.Load(ctx, 555)
	require.NoError(t, err)
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(filepath.Join(fs.Dir(), "555.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"content": "Hi <user>!"`)
}

func TestFileStore_SaveOverwrites(t *testing.T) {
	fs, err := New(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	cfg := guild.NewServerConfig(1)
	cfg.Messages.Set("a", "first")
	require.NoError(t, fs.Save(ctx, cfg))

	cfg.Messages.Delete("a")
	cfg.Messages.Set("b", "second")
	require.NoError(t, fs.Save(ctx, cfg))

	got, err := fs.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, got.Messages.Names())

	entries, err := os.ReadDir(fs.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_LoadMissing(t *testing.T) {
	fs, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = fs.Load(context.Background(), 42)
	assert.True(t, errors.Is(err, guild.ErrServerNotConfigured), "got %v", err)
}

func TestFileStore_LoadRejectsMismatchedID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "10.json"), []byte(`{"server_id": 11}`), 0644))
	fs, err := New(dir)
	require.NoError(t, err)

	_, err = fs.Load(context.Background(), 10)
	assert.True(t, errors.Is(err, guild.ErrInvalidDocument), "got %v", err)
}

func TestFileStore_ServerIDs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"1.json", "22.json", "notes.json", "3.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "4.json"), 0755))
	fs, err := New(dir)
	require.NoError(t, err)

	ids, err := fs.ServerIDs(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{1, 22}, ids)
}
