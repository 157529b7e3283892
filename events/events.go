// Package events handles Discord gateway events and dispatches them to the
// command handler and the navigator.
package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"unicode/utf8"

	"github.com/EasterCompany/dex-welcome-service/commands"
	"github.com/EasterCompany/dex-welcome-service/guild"
	"github.com/EasterCompany/dex-welcome-service/navigator"
	"github.com/EasterCompany/dex-welcome-service/utils"
	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

// Discord is the part of *discordgo.Session the handlers send through.
type Discord interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

const maxMessageLength = 2000

// Snapshotter exposes published server configurations.
type Snapshotter interface {
	Snapshot(serverID int64) (*guild.ServerConfig, bool)
}

// Handler holds the dependencies shared by every event handler.
type Handler struct {
	discord     Discord
	commands    *commands.Handler
	permissions *commands.PermissionChecker
	navigator   *navigator.Navigator
	registry    Snapshotter
	prefix      string
	logger      *slog.Logger
}

// NewHandler creates the gateway event handler.
func NewHandler(discord Discord, cmds *commands.Handler, permissions *commands.PermissionChecker, nav *navigator.Navigator, registry Snapshotter, prefix string, logger *slog.Logger) *Handler {
	return &Handler{
		discord:     discord,
		commands:    cmds,
		permissions: permissions,
		navigator:   nav,
		registry:    registry,
		prefix:      prefix,
		logger:      logger,
	}
}

// eventLogger tags every record of one event with a fresh correlation id.
func (h *Handler) eventLogger(event string, guildID string) *slog.Logger {
	utils.IncrementEvents(event)
	return h.logger.With("event", event, "guild_id", guildID, "correlation_id", uuid.NewString())
}

// Register attaches the handlers to a session.
func (h *Handler) Register(s *discordgo.Session) {
	s.AddHandler(h.MessageCreate)
	s.AddHandler(h.GuildMemberAdd)
	s.AddHandler(h.GuildMemberUpdate)
	s.AddHandler(h.InteractionCreate)
	s.AddHandler(h.Resumed)
}

// MessageCreate routes administrator commands.
func (h *Handler) MessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	h.handleMessage(context.Background(), m)
}

// GuildMemberAdd sends the welcome message to new members.
func (h *Handler) GuildMemberAdd(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	h.handleMemberAdd(context.Background(), m)
}

// GuildMemberUpdate sends the role trigger message for newly granted roles.
func (h *Handler) GuildMemberUpdate(_ *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	h.handleMemberUpdate(context.Background(), m)
}

// InteractionCreate follows navigator buttons.
func (h *Handler) InteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	h.handleInteraction(context.Background(), i)
}

// Resumed counts gateway reconnects.
func (h *Handler) Resumed(_ *discordgo.Session, _ *discordgo.Resumed) {
	utils.IncrementReconnects()
	h.logger.Info("gateway session resumed")
}

func (h *Handler) handleMessage(ctx context.Context, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}
	if len(m.Content) < len(h.prefix) || m.Content[:len(h.prefix)] != h.prefix {
		return
	}
	serverID, err := strconv.ParseInt(m.GuildID, 10, 64)
	if err != nil {
		return
	}
	logger := h.eventLogger("message_create", m.GuildID)
	if !h.permissions.CanExecuteCommand(m.Author.ID, m.ChannelID) {
		logger.DebugContext(ctx, "ignoring command from non-administrator", "user_id", m.Author.ID)
		return
	}

	reply := h.commands.Dispatch(ctx, commands.Invocation{
		ServerID:  serverID,
		ChannelID: m.ChannelID,
		UserID:    m.Author.ID,
		Content:   m.Content,
	})
	if reply == nil {
		return
	}
	if reply.Render != nil {
		h.deliver(ctx, logger, m.ChannelID, reply.Render)
		return
	}
	// Long listings are split to stay under Discord's message limit.
	for _, chunk := range utils.ChunkString(reply.Text, maxMessageLength) {
		if _, err := h.discord.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			logger.ErrorContext(ctx, "failed to send command reply", "channel_id", m.ChannelID, "error", err)
			return
		}
	}
}

func (h *Handler) handleMemberAdd(ctx context.Context, m *discordgo.GuildMemberAdd) {
	if m.Member == nil || m.User == nil || m.User.Bot {
		return
	}
	logger := h.eventLogger("guild_member_add", m.GuildID).With("user_id", m.User.ID)

	cfg, ok := h.snapshot(m.GuildID)
	if !ok {
		logger.DebugContext(ctx, "no server config, ignoring join")
		return
	}
	if !cfg.SendWelcomeOnJoin || cfg.WelcomeChannelID == guild.Unset {
		return
	}
	h.renderAndDeliver(ctx, logger, cfg.ServerID, guild.WelcomeMessage, m.User.ID, strconv.FormatInt(cfg.WelcomeChannelID, 10))
}

func (h *Handler) handleMemberUpdate(ctx context.Context, m *discordgo.GuildMemberUpdate) {
	if m.Member == nil || m.User == nil || m.User.Bot {
		return
	}
	logger := h.eventLogger("guild_member_update", m.GuildID).With("user_id", m.User.ID)

	if m.BeforeUpdate == nil {
		logger.DebugContext(ctx, "member was not cached, cannot diff roles")
		return
	}
	added := addedRoles(m.BeforeUpdate.Roles, m.Roles)
	if len(added) == 0 {
		return
	}
	cfg, ok := h.snapshot(m.GuildID)
	if !ok {
		logger.DebugContext(ctx, "no server config, ignoring role update")
		return
	}
	name, ok := cfg.RoleTriggers.Resolve(added)
	if !ok {
		return
	}

	channelID := ""
	if cfg.WelcomeChannelID != guild.Unset {
		channelID = strconv.FormatInt(cfg.WelcomeChannelID, 10)
	} else {
		dm, err := h.discord.UserChannelCreate(m.User.ID)
		if err != nil {
			logger.ErrorContext(ctx, "failed to open DM channel", "error", err)
			return
		}
		channelID = dm.ID
	}
	h.renderAndDeliver(ctx, logger, cfg.ServerID, name, m.User.ID, channelID)
}

func (h *Handler) handleInteraction(ctx context.Context, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}
	customID := i.MessageComponentData().CustomID
	if !navigator.IsHandle(customID) {
		return
	}
	logger := h.eventLogger("interaction_create", i.GuildID)

	userID := ""
	switch {
	case i.Member != nil && i.Member.User != nil:
		userID = i.Member.User.ID
	case i.User != nil:
		userID = i.User.ID
	}

	// Presses on messages delivered by DM carry no guild; the handle names
	// the server instead.
	handle, err := navigator.DecodeHandle(customID)
	if err == nil && i.GuildID != "" && i.GuildID != strconv.FormatInt(handle.ServerID, 10) {
		err = fmt.Errorf("%w: issued for server %d", navigator.ErrInvalidHandle, handle.ServerID)
	}
	var rendered *navigator.Rendered
	if err == nil {
		rendered, err = h.navigator.Activate(customID, userID)
	}
	if err == nil && utf8.RuneCountInString(rendered.Content) > navigator.MaxContentRunes {
		err = fmt.Errorf("rendered message %q exceeds Discord's content limit of %d", rendered.Name, navigator.MaxContentRunes)
	}
	if err != nil {
		utils.IncrementRenders(utils.RenderDropped)
		logger.DebugContext(ctx, "dropping button activation", "handle", customID, "error", err)
		h.acknowledge(ctx, logger, i.Interaction)
		return
	}

	resp, dropped := ephemeralResponse(rendered)
	if dropped > 0 {
		logger.WarnContext(ctx, "buttons dropped from message", "message", rendered.Name, "dropped", dropped)
	}
	if err := h.discord.InteractionRespond(i.Interaction, resp); err != nil {
		utils.IncrementRenders(utils.RenderFailed)
		logger.ErrorContext(ctx, "failed to respond to button", "message", rendered.Name, "error", err)
		return
	}
	utils.IncrementRenders(utils.RenderSent)
}

// acknowledge answers an interaction without sending anything, so the
// client does not report a failed interaction.
func (h *Handler) acknowledge(ctx context.Context, logger *slog.Logger, interaction *discordgo.Interaction) {
	err := h.discord.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to acknowledge interaction", "error", err)
	}
}

func (h *Handler) snapshot(guildID string) (*guild.ServerConfig, bool) {
	serverID, err := strconv.ParseInt(guildID, 10, 64)
	if err != nil {
		return nil, false
	}
	return h.registry.Snapshot(serverID)
}

// renderAndDeliver renders a message for a user and sends it. Missing
// messages are dropped quietly.
func (h *Handler) renderAndDeliver(ctx context.Context, logger *slog.Logger, serverID int64, name, userID, channelID string) {
	rendered, err := h.navigator.Render(serverID, name, userID)
	if err != nil {
		utils.IncrementRenders(utils.RenderDropped)
		if !errors.Is(err, guild.ErrMessageNotFound) {
			logger.WarnContext(ctx, "render failed", "message", name, "error", err)
			return
		}
		logger.DebugContext(ctx, "message not found, dropping", "message", name)
		return
	}
	h.deliver(ctx, logger, channelID, rendered)
}

func (h *Handler) deliver(ctx context.Context, logger *slog.Logger, channelID string, rendered *navigator.Rendered) {
	if n := utf8.RuneCountInString(rendered.Content); n > navigator.MaxContentRunes {
		utils.IncrementRenders(utils.RenderFailed)
		logger.ErrorContext(ctx, "rendered message exceeds Discord's content limit", "message", rendered.Name, "length", n, "limit", navigator.MaxContentRunes)
		return
	}
	send, dropped := messageSend(rendered)
	if dropped > 0 {
		logger.WarnContext(ctx, "buttons dropped from message", "message", rendered.Name, "dropped", dropped)
	}
	if _, err := h.discord.ChannelMessageSendComplex(channelID, send); err != nil {
		utils.IncrementRenders(utils.RenderFailed)
		logger.ErrorContext(ctx, "failed to send message", "message", rendered.Name, "channel_id", channelID, "error", err)
		return
	}
	utils.IncrementRenders(utils.RenderSent)
	logger.InfoContext(ctx, "message sent", "message", rendered.Name, "channel_id", channelID)
}
