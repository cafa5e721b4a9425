package notifications

import (
	"context"
	"testing"

	"github.com/YURESSA/foodgram-st/internal/models"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.PublishUser(context.Background(), 1, "test payload"))
	assert.NoError(t, n.StartPatternSubscriber(context.Background(), func(string, string) {}))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		userID   uint
		expected string
	}{
		{1, "notifications:user:1"},
		{100, "notifications:user:100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, UserChannel(tt.userID))
	}
}

func TestEvents_Encode(t *testing.T) {
	recipe := &models.Recipe{
		ID:          3,
		Name:        "Soup",
		Image:       "/media/recipes/soup.webp",
		CookingTime: 20,
		Author:      models.User{ID: 1, Username: "chef"},
	}

	raw, err := RecipePublishedEvent(recipe).Encode()
	require.NoError(t, err)

	var decoded struct {
		Type    string `json:"type"`
		Payload struct {
			Recipe models.RecipeSummary `json:"recipe"`
			Author struct {
				ID       uint   `json:"id"`
				Username string `json:"username"`
			} `json:"author"`
		} `json:"payload"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, EventRecipePublished, decoded.Type)
	assert.Equal(t, models.RecipeSummary{ID: 3, Name: "Soup", Image: "/media/recipes/soup.webp", CookingTime: 20}, decoded.Payload.Recipe)
	assert.Equal(t, "chef", decoded.Payload.Author.Username)

	raw, err = NewSubscriberEvent(&models.User{ID: 2, Username: "fan"}).Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"new_subscriber","payload":{"id":2,"username":"fan","avatar":""}}`, raw)
}

func TestPublisher_LocalDeliveryWithoutRedis(t *testing.T) {
	hub := NewHub()
	follower, err := hub.Register(20, nil)
	require.NoError(t, err)
	bystander, err := hub.Register(21, nil)
	require.NoError(t, err)

	p := NewPublisher(hub, NewNotifier(nil))
	p.Publish(context.Background(), NewSubscriberEvent(&models.User{ID: 5, Username: "fan"}), 20)

	msg := <-follower.outbox
	assert.Contains(t, string(msg), EventNewSubscriber)
	assert.Empty(t, bystander.outbox)

	var nilPublisher *Publisher
	assert.NotPanics(t, func() { nilPublisher.Publish(context.Background(), Event{Type: "x"}, 1) })

	_ = hub.Shutdown(context.Background())
}
