package notify

import (
	"context"
	"fmt"

	slackgo "github.com/slack-go/slack"
)

// SlackNotifier posts to a fixed Slack channel with a bot token.
type SlackNotifier struct {
	client  *slackgo.Client
	channel string
}

// NewSlackNotifier creates a Slack notifier. channel is a channel ID.
func NewSlackNotifier(botToken, channel string) *SlackNotifier {
	return &SlackNotifier{
		client:  slackgo.New(botToken),
		channel: channel,
	}
}

func (s *SlackNotifier) Name() string { return "slack" }

func (s *SlackNotifier) Send(ctx context.Context, text string) error {
	_, _, err := s.client.PostMessageContext(ctx, s.channel,
		slackgo.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}
