package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// messageSender abstracts the discordgo.Session method we use, enabling
// test mocks.
type messageSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord posts announcements to a single Discord channel over the REST
// API. No gateway connection is held open.
type Discord struct {
	sess      messageSender
	channelID string
}

// DiscordOpts holds parameters for creating a Discord notifier.
type DiscordOpts struct {
	BotToken  string
	ChannelID string
	// For testing: inject a mock session instead of the real Discord API.
	Session messageSender
}

// NewDiscord creates a Discord notifier.
func NewDiscord(opts DiscordOpts) (*Discord, error) {
	if opts.Session == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("discord: channel id is required")
	}

	d := &Discord{sess: opts.Session, channelID: opts.ChannelID}
	if d.sess == nil {
		dg, err := discordgo.New("Bot " + opts.BotToken)
		if err != nil {
			return nil, fmt.Errorf("discord: create session: %w", err)
		}
		d.sess = dg
	}
	return d, nil
}

func (d *Discord) Name() string { return "discord" }

// Announce posts the message to the configured channel.
func (d *Discord) Announce(ctx context.Context, message string) error {
	_, err := d.sess.ChannelMessageSend(d.channelID, message, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: send to %s: %w", d.channelID, err)
	}
	return nil
}
