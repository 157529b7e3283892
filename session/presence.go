package session

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
)

type statusUpdater interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

// Presence manages the bot's presence on Discord.
type Presence struct {
	session       statusUpdater
	logger        *slog.Logger
	mu            sync.Mutex
	currentStatus string
}

// NewPresence creates a new Presence.
func NewPresence(s statusUpdater, logger *slog.Logger) *Presence {
	return &Presence{session: s, logger: logger}
}

// GetStatus returns the activity last shown.
func (p *Presence) GetStatus() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentStatus
}

// SetServers shows how many servers have a welcome config. Repeating the
// current activity is a no-op.
func (p *Presence) SetServers(n int) {
	message := fmt.Sprintf("new members in %d servers", n)
	if n == 1 {
		message = "new members in 1 server"
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if message == p.currentStatus {
		return
	}
	err := p.session.UpdateStatusComplex(discordgo.UpdateStatusData{
		Status: "online",
		Activities: []*discordgo.Activity{
			{
				Name: message,
				Type: discordgo.ActivityTypeWatching,
			},
		},
	})
	if err != nil {
		p.logger.Warn("failed to set presence", "error", err)
		return
	}
	p.currentStatus = message
}
