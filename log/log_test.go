package log

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePoster struct {
	mu    sync.Mutex
	posts map[string][]string
}

func (f *fakePoster) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.posts == nil {
		f.posts = map[string][]string{}
	}
	f.posts[channelID] = append(f.posts[channelID], content)
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func TestNew_MirrorsWarningsOnceAttached(t *testing.T) {
	var out bytes.Buffer
	logger, mirror := New(&out, "debug")

	logger.Error("before attach")
	poster := &fakePoster{}
	mirror.Attach(poster, "chan")

	logger.Info("routine", "server_id", int64(7))
	logger.With("correlation_id", "abc").Warn("slow save", "server_id", int64(7))

	require.Len(t, poster.posts["chan"], 1)
	post := poster.posts["chan"][0]
	assert.True(t, strings.HasPrefix(post, "```\n[WARN] slow save"))
	assert.Contains(t, post, "correlation_id=abc")
	assert.Contains(t, post, "server_id=7")

	assert.Contains(t, out.String(), "before attach")
	assert.Contains(t, out.String(), "routine")
}

func TestNew_RespectsLevel(t *testing.T) {
	var out bytes.Buffer
	logger, _ := New(&out, "warn")

	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "shown")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short"))

	long := strings.Repeat("é", 1000)
	got := Truncate(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), maxPostLen+3)
	assert.True(t, strings.HasPrefix(long, strings.TrimSuffix(got, "...")))
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
