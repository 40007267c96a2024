package notification

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"todosync/internal/core/port"
)

const slackTimeout = 10 * time.Second

// SlackNotifier posts plain-text messages to an incoming webhook.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewSlackNotifier(webhookURL string, client *http.Client) *SlackNotifier {
	if client == nil {
		client = &http.Client{Timeout: slackTimeout}
	}

	return &SlackNotifier{webhookURL: webhookURL, client: client}
}

var _ port.Notifier = (*SlackNotifier)(nil)

func (n *SlackNotifier) Notify(ctx context.Context, text string) error {
	if n.webhookURL == "" {
		return errors.New("SLACK_WEBHOOK_URL not set")
	}

	return slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.client, &slack.WebhookMessage{
		Text: text,
	})
}
