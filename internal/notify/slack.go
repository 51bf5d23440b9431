package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/slack-go/slack"
)

// SlackNotifier sends alerts to Slack via an incoming webhook.
type SlackNotifier struct {
	WebhookURL string
	Client     *http.Client
}

// NewSlackNotifier creates a new SlackNotifier.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		WebhookURL: webhookURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify posts the alert to the configured Slack webhook.
func (s *SlackNotifier) Notify(ctx context.Context, alert Alert) error {
	if s.WebhookURL == "" {
		return fmt.Errorf("slack webhook URL is not configured")
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	msg := &slack.WebhookMessage{
		Text:        alert.Title(),
		Attachments: []slack.Attachment{slackAttachment(alert)},
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, s.WebhookURL, client, msg); err != nil {
		return fmt.Errorf("failed to send slack notification: %w", err)
	}
	return nil
}

type slackPoster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackBotNotifier posts alerts to a channel with a bot token.
type SlackBotNotifier struct {
	client    slackPoster
	channelID string
}

// NewSlackBotNotifier creates a notifier backed by the Slack Web API.
func NewSlackBotNotifier(token, channelID string) *SlackBotNotifier {
	return &SlackBotNotifier{client: slack.New(token), channelID: channelID}
}

func (s *SlackBotNotifier) Notify(ctx context.Context, alert Alert) error {
	_, _, err := s.client.PostMessageContext(ctx, s.channelID,
		slack.MsgOptionText(alert.Title(), false),
		slack.MsgOptionAttachments(slackAttachment(alert)),
	)
	if err != nil {
		return fmt.Errorf("failed to post slack message: %w", err)
	}
	return nil
}

func slackAttachment(alert Alert) slack.Attachment {
	fields := make([]slack.AttachmentField, 0, len(alert.Regressions))
	for _, reg := range alert.Regressions {
		fields = append(fields, slack.AttachmentField{
			Title: reg.Name,
			Value: fmt.Sprintf("+%.1f%% (%s -> %s)", reg.Percent(), reg.Baseline, reg.Current),
		})
	}
	return slack.Attachment{
		Color:    "danger",
		Fallback: alert.Text(),
		Fields:   fields,
	}
}
