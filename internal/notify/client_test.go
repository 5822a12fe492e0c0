package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramouth/BiomeQuest-sub000/internal/config"
	prommetrics "github.com/Ramouth/BiomeQuest-sub000/internal/metrics"
	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
	"github.com/Ramouth/BiomeQuest-sub000/pkg/logger"
)

func badges() []models.Badge {
	return []models.Badge{
		{Name: "Seedling", Emoji: "🌱", PointsRequired: 5},
		{Name: "Sprout", Emoji: "🌿", PointsRequired: 20},
	}
}

func TestBadgeMessage(t *testing.T) {
	msg := BadgeMessage("alice", 25, badges())

	assert.Contains(t, msg.Text, "@alice")
	assert.Contains(t, msg.Text, "🌱 **Seedling**, 🌿 **Sprout**")
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "Total points: 25", msg.Attachments[0].Text)
	require.Len(t, msg.Attachments[0].Fields, 2)
	assert.Equal(t, "20 points", msg.Attachments[0].Fields[1].Value)
}

func TestSendMessage(t *testing.T) {
	var got Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(&config.NotifyConfig{
		WebhookURL: server.URL,
		Channel:    "plants",
		Username:   "PlantQuest",
		Enabled:    true,
	}, logger.Nop())

	err := client.SendMessage(context.Background(), &Message{Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "plants", got.Channel)
	assert.Equal(t, "PlantQuest", got.Username)
	assert.Equal(t, "hello", got.Text)
}

func TestSendMessage_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(&config.NotifyConfig{WebhookURL: server.URL, Enabled: true}, logger.Nop())

	err := client.SendMessage(context.Background(), &Message{Text: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestBadgesUnlocked_Disabled(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := NewClient(&config.NotifyConfig{WebhookURL: server.URL, Enabled: false}, logger.Nop())
	assert.False(t, client.Enabled())

	client.BadgesUnlocked(context.Background(), "alice", 25, badges())
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestBadgesUnlocked_FailureIsSwallowed(t *testing.T) {
	prommetrics.NotificationsSentTotal.Reset()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(&config.NotifyConfig{WebhookURL: server.URL, Enabled: true}, logger.Nop())
	client.BadgesUnlocked(context.Background(), "alice", 25, badges())

	assert.Equal(t, float64(1), testutil.ToFloat64(prommetrics.NotificationsSentTotal.WithLabelValues("failed")))
}

func TestBadgesUnlocked_NoBadges(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := NewClient(&config.NotifyConfig{WebhookURL: server.URL, Enabled: true}, logger.Nop())
	client.BadgesUnlocked(context.Background(), "alice", 3, nil)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
