package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Discord sends notifications via Discord webhook.
type Discord struct {
	client     *http.Client
	webhookURL string
	now        func() time.Time
}

// NewDiscord creates a new Discord notifier.
func NewDiscord(webhookURL string) *Discord {
	return &Discord{client: newHTTPClient(), webhookURL: webhookURL, now: time.Now}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Send(ctx context.Context, n *Notification) error {
	embed := map[string]any{
		"title":       fmt.Sprintf("🔥 %s", n.Title),
		"url":         n.URL,
		"description": n.Description,
		"color":       0xFF6600,
		"fields": []map[string]any{
			{"name": "Hotness", "value": fmt.Sprintf("%.0f%%", n.Hotness*100), "inline": true},
			{"name": "Category", "value": n.Category, "inline": true},
			{"name": "Source", "value": n.Submitter, "inline": true},
		},
		"timestamp": d.now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(map[string]any{"embeds": []map[string]any{embed}})
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}
	return postJSON(ctx, d.client, "discord webhook", d.webhookURL, body, nil)
}
