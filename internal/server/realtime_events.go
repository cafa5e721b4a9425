package server

import (
	"context"
	"log/slog"

	"github.com/YURESSA/foodgram-st/internal/middleware"
	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/notifications"
)

// publishNewSubscriber tells authorID that subscriberID now follows them.
func (s *Server) publishNewSubscriber(ctx context.Context, subscriberID, authorID uint) {
	subscriber, err := s.userService.GetUser(ctx, subscriberID, 0)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to load subscriber for realtime event",
			slog.String("event", notifications.EventNewSubscriber), slog.String("error", err.Error()))
		return
	}
	s.events.Publish(ctx, notifications.NewSubscriberEvent(subscriber), authorID)
}

// publishRecipe fans a recipe_published event out to the author's followers.
func (s *Server) publishRecipe(ctx context.Context, recipe *models.Recipe) {
	followers, err := s.subscriptionService.FollowerIDs(ctx, recipe.AuthorID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to load followers for realtime event",
			slog.String("event", notifications.EventRecipePublished), slog.String("error", err.Error()))
		return
	}
	s.events.Publish(ctx, notifications.RecipePublishedEvent(recipe), followers...)
}
