package notifications

import (
	"github.com/YURESSA/foodgram-st/internal/models"

	"github.com/goccy/go-json"
)

// Realtime event types.
const (
	EventNewSubscriber   = "new_subscriber"
	EventRecipePublished = "recipe_published"
	EventMessagesDropped = "messages_dropped"
)

// Event is the envelope written to websocket clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Encode renders the event as a JSON text frame.
func (e Event) Encode() (string, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// NewSubscriberEvent tells an author that subscriber started following them.
func NewSubscriberEvent(subscriber *models.User) Event {
	return Event{
		Type: EventNewSubscriber,
		Payload: map[string]any{
			"id":       subscriber.ID,
			"username": subscriber.Username,
			"avatar":   subscriber.Avatar,
		},
	}
}

// RecipePublishedEvent tells a follower that an author published a recipe.
func RecipePublishedEvent(recipe *models.Recipe) Event {
	return Event{
		Type: EventRecipePublished,
		Payload: map[string]any{
			"recipe": models.SummaryOf(recipe),
			"author": map[string]any{
				"id":       recipe.Author.ID,
				"username": recipe.Author.Username,
			},
		},
	}
}
