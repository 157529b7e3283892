package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/EasterCompany/dex-welcome-service/guild"
	"github.com/EasterCompany/dex-welcome-service/navigator"
)

var errButtonNotFound = errors.New("button not found")

func messageNotFound(name string) *Reply {
	return textReply(fmt.Sprintf("Message ID '%s' not found.", name))
}

func (h *Handler) handleSetMessage(ctx context.Context, inv Invocation, args arguments) (*Reply, string) {
	name, content := args.arg(0), args.rest(1)
	if n := navigator.RenderedLength(content); n > navigator.MaxContentRunes {
		return textReply(fmt.Sprintf("Message is too long: it can reach %d characters once `<user>` is replaced, the limit is %d.", n, navigator.MaxContentRunes)), outcomeTooLong
	}
	if _, err := h.registry.Update(ctx, inv.ServerID, func(cfg *guild.ServerConfig) error {
		cfg.Messages.Set(name, content)
		return nil
	}); err != nil {
		return h.failure(ctx, inv, err)
	}
	return textReply(fmt.Sprintf("Message '%s' set to: %s", name, content)), outcomeOK
}

func (h *Handler) handleSetButton(ctx context.Context, inv Invocation, args arguments) (*Reply, string) {
	name, target, label := args.arg(0), args.arg(1), args.rest(2)
	_, err := h.registry.Update(ctx, inv.ServerID, func(cfg *guild.ServerConfig) error {
		return cfg.Messages.SetButton(name, label, target)
	})
	if errors.Is(err, guild.ErrMessageNotFound) {
		return messageNotFound(name), outcomeNotFound
	}
	if err != nil {
		return h.failure(ctx, inv, err)
	}
	return textReply(fmt.Sprintf("Button '%s' added to message '%s' linking to '%s'.", label, name, target)), outcomeOK
}

func (h *Handler) handleDeleteMessage(ctx context.Context, inv Invocation, args arguments) (*Reply, string) {
	name := args.arg(0)
	_, err := h.registry.Update(ctx, inv.ServerID, func(cfg *guild.ServerConfig) error {
		if !cfg.Messages.Delete(name) {
			return guild.ErrMessageNotFound
		}
		return nil
	})
	if errors.Is(err, guild.ErrMessageNotFound) {
		return messageNotFound(name), outcomeNotFound
	}
	if err != nil {
		return h.failure(ctx, inv, err)
	}
	return textReply(fmt.Sprintf("Message ID '%s' deleted.", name)), outcomeOK
}

func (h *Handler) handleDeleteButton(ctx context.Context, inv Invocation, args arguments) (*Reply, string) {
	name, label := args.arg(0), args.rest(1)
	_, err := h.registry.Update(ctx, inv.ServerID, func(cfg *guild.ServerConfig) error {
		if _, ok := cfg.Messages.Get(name); !ok {
			return guild.ErrMessageNotFound
		}
		if !cfg.Messages.DeleteButton(name, label) {
			return errButtonNotFound
		}
		return nil
	})
	switch {
	case errors.Is(err, guild.ErrMessageNotFound):
		return messageNotFound(name), outcomeNotFound
	case errors.Is(err, errButtonNotFound):
		return textReply(fmt.Sprintf("Button '%s' not found in message '%s'.", label, name)), outcomeNotFound
	case err != nil:
		return h.failure(ctx, inv, err)
	}
	return textReply(fmt.Sprintf("Button '%s' deleted from message '%s'.", label, name)), outcomeOK
}

func (h *Handler) handleListMessages(_ context.Context, inv Invocation, _ arguments) (*Reply, string) {
	cfg, ok := h.registry.Snapshot(inv.ServerID)
	if !ok {
		return textReply(replyNotConfigured), outcomeNotConfigured
	}
	summaries := cfg.Messages.List()
	if len(summaries) == 0 {
		return textReply("No messages configured."), outcomeOK
	}

	lines := []string{"Configured messages:"}
	for _, s := range summaries {
		lines = append(lines, fmt.Sprintf("`%s`: %s", s.Name, s.Preview))
		for i, b := range s.Buttons {
			lines = append(lines, fmt.Sprintf("- [%d] %s -> %s", i+1, b.Label, b.Target))
		}
	}
	return textReply(strings.Join(lines, "\n")), outcomeOK
}

// handleSendMessage renders a message into the invoking channel with no
// addressed user, so placeholders are left as written.
func (h *Handler) handleSendMessage(_ context.Context, inv Invocation, args arguments) (*Reply, string) {
	name := args.arg(0)
	rendered, err := h.renderer.Render(inv.ServerID, name, "")
	switch {
	case errors.Is(err, guild.ErrServerNotConfigured):
		return textReply(replyNotConfigured), outcomeNotConfigured
	case errors.Is(err, guild.ErrMessageNotFound):
		return messageNotFound(name), outcomeNotFound
	case err != nil:
		return textReply("Something went wrong."), outcomeError
	}
	return &Reply{Render: rendered}, outcomeOK
}
