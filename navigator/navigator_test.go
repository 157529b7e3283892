package navigator

import (
	"testing"

	"github.com/EasterCompany/dex-welcome-service/guild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource map[int64]*guild.ServerConfig

func (f fakeSource) Snapshot(serverID int64) (*guild.ServerConfig, bool) {
	cfg, ok := f[serverID]
	return cfg, ok
}

func newSource(t *testing.T) fakeSource {
	t.Helper()
	cfg := guild.NewServerConfig(1)
	cfg.Messages.Set("welcome", "Hi <user>, meet <user>. <USER> stays.")
	cfg.Messages.Set("rules", "Be nice")
	cfg.Messages.Set("loop", "Again?")
	require.NoError(t, cfg.Messages.SetButton("welcome", "Rules", "rules"))
	require.NoError(t, cfg.Messages.SetButton("welcome", "Nowhere", "missing"))
	require.NoError(t, cfg.Messages.SetButton("loop", "Again", "loop"))
	return fakeSource{1: cfg}
}

func TestRender_SubstitutesAddressedUser(t *testing.T) {
	nav := New(newSource(t))

	got, err := nav.Render(1, "welcome", "42")

	require.NoError(t, err)
	assert.Equal(t, "Hi <@42>, meet <@42>. <USER> stays.", got.Content)
	assert.Equal(t, []ButtonDescriptor{
		{Label: "Rules", Target: "rules", Handle: "dexnav:1:0:rules"},
		{Label: "Nowhere", Target: "missing", Handle: "dexnav:1:1:missing"},
	}, got.Buttons)
}

func TestRender_NoUserLeavesPlaceholder(t *testing.T) {
	nav := New(newSource(t))

	got, err := nav.Render(1, "welcome", "")

	require.NoError(t, err)
	assert.Equal(t, "Hi <user>, meet <user>. <USER> stays.", got.Content)
}

func TestRender_Errors(t *testing.T) {
	nav := New(newSource(t))

	_, err := nav.Render(2, "welcome", "")
	assert.ErrorIs(t, err, guild.ErrServerNotConfigured)

	_, err = nav.Render(1, "Welcome", "")
	assert.ErrorIs(t, err, guild.ErrMessageNotFound, "names are case-sensitive")
}

func TestActivate(t *testing.T) {
	nav := New(newSource(t))

	got, err := nav.Activate("dexnav:1:0:rules", "7")
	require.NoError(t, err)
	assert.Equal(t, "Be nice", got.Content)
	assert.Empty(t, got.Buttons)

	_, err = nav.Activate("dexnav:1:1:missing", "7")
	assert.ErrorIs(t, err, guild.ErrMessageNotFound)

	_, err = nav.Activate("dexnav:2:0:rules", "7")
	assert.ErrorIs(t, err, guild.ErrServerNotConfigured)

	_, err = nav.Activate("other:1:0:rules", "7")
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestActivate_SelfLoopIsFollowed(t *testing.T) {
	nav := New(newSource(t))

	handle := "dexnav:1:0:loop"
	for i := 0; i < 5; i++ {
		got, err := nav.Activate(handle, "7")
		require.NoError(t, err)
		require.Len(t, got.Buttons, 1)
		handle = got.Buttons[0].Handle
	}
	assert.Equal(t, "dexnav:1:0:loop", handle)
}

func TestHandleRoundTrip(t *testing.T) {
	tests := []struct {
		handle string
		want   Handle
		err    error
	}{
		{handle: EncodeHandle(5, 3, "faq"), want: Handle{ServerID: 5, Index: 3, Target: "faq"}},
		{handle: EncodeHandle(1234567890123456789, 0, "a:b"), want: Handle{ServerID: 1234567890123456789, Target: "a:b"}},
		{handle: EncodeHandle(5, 1, ""), want: Handle{ServerID: 5, Index: 1}},
		{handle: "dexnav:5:x:faq", err: ErrInvalidHandle},
		{handle: "dexnav:x:1:faq", err: ErrInvalidHandle},
		{handle: "dexnav:1:faq", err: ErrInvalidHandle},
		{handle: "nav:5:1:faq", err: ErrInvalidHandle},
	}
	for _, tt := range tests {
		t.Run(tt.handle, func(t *testing.T) {
			got, err := DecodeHandle(tt.handle)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, IsHandle(tt.handle))
		})
	}
}

func TestRenderedLength(t *testing.T) {
	assert.Equal(t, 5, RenderedLength("héllo"))
	assert.Equal(t, 23, RenderedLength("<user>"))
	assert.Equal(t, 3+2*23, RenderedLength("hi <user><user>"))
	assert.Equal(t, 6, RenderedLength("<USER>"))
}
