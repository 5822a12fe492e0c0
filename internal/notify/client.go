// Package notify posts badge unlock announcements to a Mattermost or
// Slack compatible incoming webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Ramouth/BiomeQuest-sub000/internal/config"
	prommetrics "github.com/Ramouth/BiomeQuest-sub000/internal/metrics"
	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
	"github.com/Ramouth/BiomeQuest-sub000/pkg/logger"
)

// Client handles webhook notifications.
type Client struct {
	webhookURL string
	channel    string
	username   string
	enabled    bool
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a new webhook client.
func NewClient(cfg *config.NotifyConfig, log *logger.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		username:   cfg.Username,
		enabled:    cfg.Enabled && cfg.WebhookURL != "",
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Message represents an incoming webhook payload.
type Message struct {
	Channel     string       `json:"channel,omitempty"`
	Username    string       `json:"username,omitempty"`
	Text        string       `json:"text,omitempty"`
	IconEmoji   string       `json:"icon_emoji,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a message attachment.
type Attachment struct {
	Fallback string  `json:"fallback,omitempty"`
	Color    string  `json:"color,omitempty"`
	Title    string  `json:"title,omitempty"`
	Text     string  `json:"text,omitempty"`
	Fields   []Field `json:"fields,omitempty"`
}

// Field represents a message field.
type Field struct {
	Short bool   `json:"short"`
	Title string `json:"title"`
	Value string `json:"value"`
}

// Enabled reports whether messages are actually sent.
func (c *Client) Enabled() bool {
	return c.enabled
}

// SendMessage posts msg to the webhook.
func (c *Client) SendMessage(ctx context.Context, msg *Message) error {
	if !c.enabled {
		c.log.Debug().Msg("Notifications are disabled, skipping message")
		return nil
	}

	if msg.Channel == "" {
		msg.Channel = c.channel
	}
	if msg.Username == "" {
		msg.Username = c.username
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	c.log.Debug().
		Str("channel", msg.Channel).
		Msg("Sent webhook message")

	return nil
}

// BadgeMessage builds the announcement for badges a user just unlocked.
func BadgeMessage(username string, totalPoints int, badges []models.Badge) *Message {
	lines := make([]string, 0, len(badges))
	fields := make([]Field, 0, len(badges))
	for _, b := range badges {
		lines = append(lines, fmt.Sprintf("%s **%s**", b.Emoji, b.Name))
		fields = append(fields, Field{
			Short: true,
			Title: fmt.Sprintf("%s %s", b.Emoji, b.Name),
			Value: fmt.Sprintf("%d points", b.PointsRequired),
		})
	}

	return &Message{
		Text: fmt.Sprintf("🏅 **@%s** unlocked %s", username, strings.Join(lines, ", ")),
		Attachments: []Attachment{{
			Fallback: fmt.Sprintf("%s unlocked %d badge(s)", username, len(badges)),
			Color:    "#3FA34D",
			Title:    "New badges",
			Text:     fmt.Sprintf("Total points: %d", totalPoints),
			Fields:   fields,
		}},
	}
}

// BadgesUnlocked announces newly unlocked badges. Delivery failures are
// logged and counted, never returned: a lost announcement must not fail
// the log request that triggered it.
func (c *Client) BadgesUnlocked(ctx context.Context, username string, totalPoints int, badges []models.Badge) {
	if !c.enabled || len(badges) == 0 {
		return
	}

	if err := c.SendMessage(ctx, BadgeMessage(username, totalPoints, badges)); err != nil {
		prommetrics.RecordNotification("failed")
		c.log.Warn().Err(err).Str("username", username).Int("badges", len(badges)).Msg("Failed to send badge notification")
		return
	}
	prommetrics.RecordNotification("sent")
}
