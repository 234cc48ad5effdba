package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Slack sends notifications via Slack incoming webhook.
type Slack struct {
	client     *http.Client
	webhookURL string
}

// NewSlack creates a new Slack notifier.
func NewSlack(webhookURL string) *Slack {
	return &Slack{client: newHTTPClient(), webhookURL: webhookURL}
}

func (s *Slack) Name() string { return "slack" }

func (s *Slack) Send(ctx context.Context, n *Notification) error {
	blocks := []map[string]any{
		{
			"type": "header",
			"text": map[string]any{
				"type": "plain_text",
				"text": fmt.Sprintf("🔥 %s", n.Title),
			},
		},
		{
			"type": "section",
			"text": map[string]any{
				"type": "mrkdwn",
				"text": fmt.Sprintf("*Hotness:* %.0f%% | *Category:* %s | *Source:* %s\n%s",
					n.Hotness*100, n.Category, n.Submitter, n.Description),
			},
		},
	}

	footer := []map[string]any{{
		"type": "mrkdwn",
		"text": fmt.Sprintf("<%s|Read the story> · %s", n.URL, n.Date),
	}}
	if len(n.Tags) > 0 {
		footer = append(footer, map[string]any{
			"type": "mrkdwn",
			"text": "#" + strings.Join(n.Tags, " #"),
		})
	}
	blocks = append(blocks, map[string]any{"type": "context", "elements": footer})

	body, err := json.Marshal(map[string]any{"blocks": blocks})
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}
	return postJSON(ctx, s.client, "slack webhook", s.webhookURL, body, nil)
}
