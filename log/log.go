package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// maxPostLen keeps mirrored records under Discord's 2000 character limit.
const maxPostLen = 1900

// Poster sends a message to a Discord channel. *discordgo.Session satisfies it.
type Poster interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Mirror forwards log records at or above its level to a Discord channel.
// It stays silent until Attach is called.
type Mirror struct {
	mu        sync.RWMutex
	poster    Poster
	channelID string
	level     slog.Level
}

// Attach starts mirroring to channelID. An empty channel id disables it.
func (m *Mirror) Attach(p Poster, channelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poster = p
	m.channelID = channelID
}

// Post sends msg to the log channel as a code block.
func (m *Mirror) Post(msg string) {
	m.mu.RLock()
	p, channelID := m.poster, m.channelID
	m.mu.RUnlock()
	if p == nil || channelID == "" {
		return
	}
	_, _ = p.ChannelMessageSend(channelID, "```\n"+Truncate(msg)+"\n```")
}

// Truncate shortens msg to fit in a single Discord message.
func Truncate(msg string) string {
	if len(msg) <= maxPostLen {
		return msg
	}
	cut := maxPostLen
	for cut > 0 && !utf8RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut] + "..."
}

func utf8RuneStart(b byte) bool { return b&0xC0 != 0x80 }

// ParseLevel maps a config string to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds the service logger. Records are written as text to w; warnings
// and errors are also posted to the Discord log channel once the returned
// Mirror is attached.
func New(w io.Writer, level string) (*slog.Logger, *Mirror) {
	mirror := &Mirror{level: slog.LevelWarn}
	inner := slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(&discordHandler{inner: inner, mirror: mirror}), mirror
}

// discordHandler writes through inner and mirrors qualifying records.
type discordHandler struct {
	inner  slog.Handler
	mirror *Mirror
	attrs  []slog.Attr
	group  string
}

func (h *discordHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *discordHandler) Handle(ctx context.Context, r slog.Record) error {
	err := h.inner.Handle(ctx, r)
	if r.Level >= h.mirror.level {
		h.mirror.Post(h.format(r))
	}
	return err
}

func (h *discordHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefixed := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	prefixed = append(prefixed, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		prefixed = append(prefixed, a)
	}
	return &discordHandler{inner: h.inner.WithAttrs(attrs), mirror: h.mirror, attrs: prefixed, group: h.group}
}

func (h *discordHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	group := name
	if h.group != "" {
		group = h.group + "." + name
	}
	return &discordHandler{inner: h.inner.WithGroup(name), mirror: h.mirror, attrs: h.attrs, group: group}
}

func (h *discordHandler) format(r slog.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", r.Level, r.Message)
	for _, a := range h.attrs {
		fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		fmt.Fprintf(&b, " %s=%v", key, a.Value)
		return true
	})
	return b.String()
}
