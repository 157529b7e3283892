package events

import (
	"github.com/EasterCompany/dex-welcome-service/navigator"
	"github.com/bwmarrin/discordgo"
)

// Discord limits for message components.
const (
	maxButtonsPerRow = 5
	maxRows          = 5
	maxLabelRunes    = 80
	maxCustomIDLen   = 100
)

// buildComponents lays the buttons out in action rows. It returns the number
// of buttons that could not be rendered.
func buildComponents(buttons []navigator.ButtonDescriptor) ([]discordgo.MessageComponent, int) {
	var (
		rows    []discordgo.MessageComponent
		row     []discordgo.MessageComponent
		dropped int
	)
	for _, b := range buttons {
		if len(b.Handle) > maxCustomIDLen || b.Label == "" {
			dropped++
			continue
		}
		if len(row) == maxButtonsPerRow {
			rows = append(rows, discordgo.ActionsRow{Components: row})
			row = nil
		}
		if len(rows) == maxRows {
			dropped++
			continue
		}
		row = append(row, discordgo.Button{
			Label:    truncateLabel(b.Label),
			Style:    discordgo.PrimaryButton,
			CustomID: b.Handle,
		})
	}
	if len(row) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: row})
	}
	return rows, dropped
}

func truncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= maxLabelRunes {
		return label
	}
	return string(runes[:maxLabelRunes])
}

// messageSend builds the outgoing message for a render.
func messageSend(r *navigator.Rendered) (*discordgo.MessageSend, int) {
	components, dropped := buildComponents(r.Buttons)
	return &discordgo.MessageSend{
		Content:    r.Content,
		Components: components,
	}, dropped
}

// ephemeralResponse answers a button press with a render only the presser sees.
func ephemeralResponse(r *navigator.Rendered) (*discordgo.InteractionResponse, int) {
	components, dropped := buildComponents(r.Buttons)
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:    r.Content,
			Components: components,
			Flags:      discordgo.MessageFlagsEphemeral,
		},
	}, dropped
}

// addedRoles returns the roles in after that are not in before, in after's order.
func addedRoles(before, after []string) []string {
	had := make(map[string]struct{}, len(before))
	for _, id := range before {
		had[id] = struct{}{}
	}
	var added []string
	for _, id := range after {
		if _, ok := had[id]; !ok {
			added = append(added, id)
		}
	}
	return added
}
