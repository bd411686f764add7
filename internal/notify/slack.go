package notify

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"
)

// messagePoster abstracts the Slack API method we use, enabling test
// mocks.
type messagePoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

// Slack posts announcements to a single Slack channel over the Web API.
type Slack struct {
	client    messagePoster
	channelID string
}

// SlackOpts holds parameters for creating a Slack notifier.
type SlackOpts struct {
	BotToken  string // xoxb-... Slack bot token
	ChannelID string
	// For testing: inject a mock client instead of the real Slack API.
	Client messagePoster
}

// NewSlack creates a Slack notifier.
func NewSlack(opts SlackOpts) (*Slack, error) {
	if opts.Client == nil && opts.BotToken == "" {
		return nil, fmt.Errorf("slack: bot token is required")
	}
	if opts.ChannelID == "" {
		return nil, fmt.Errorf("slack: channel id is required")
	}

	s := &Slack{client: opts.Client, channelID: opts.ChannelID}
	if s.client == nil {
		s.client = slackapi.New(opts.BotToken)
	}
	return s, nil
}

func (s *Slack) Name() string { return "slack" }

// Announce posts the message to the configured channel.
func (s *Slack) Announce(ctx context.Context, message string) error {
	_, _, err := s.client.PostMessageContext(ctx, s.channelID,
		slackapi.MsgOptionText(message, false))
	if err != nil {
		return fmt.Errorf("slack: post to %s: %w", s.channelID, err)
	}
	return nil
}
