package service

import (
	"context"

	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/observability"
	"github.com/YURESSA/foodgram-st/internal/repository"
)

// SubscriptionService manages who follows whom.
type SubscriptionService struct {
	subRepo    repository.SubscriptionRepository
	userRepo   repository.UserRepository
	recipeRepo repository.RecipeRepository
}

// NewSubscriptionService returns a new SubscriptionService.
func NewSubscriptionService(
	subRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	recipeRepo repository.RecipeRepository,
) *SubscriptionService {
	return &SubscriptionService{subRepo: subRepo, userRepo: userRepo, recipeRepo: recipeRepo}
}

// Follow subscribes subscriberID to authorID and returns the author with a
// preview of at most recipesLimit recipes (all when recipesLimit <= 0).
func (s *SubscriptionService) Follow(ctx context.Context, subscriberID, authorID uint, recipesLimit int) (sub *models.Subscriber, err error) {
	defer func() {
		observability.SubscriptionChanges.WithLabelValues("follow", outcomeOf(err)).Inc()
	}()

	if subscriberID == authorID {
		return nil, models.NewValidationError("You cannot subscribe to yourself")
	}
	author, err := s.userRepo.GetByID(ctx, authorID, 0)
	if err != nil {
		return nil, err
	}

	exists, err := s.subRepo.Exists(ctx, subscriberID, authorID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, models.NewConflictError("You are already subscribed to this user")
	}
	if err := s.subRepo.Create(ctx, subscriberID, authorID); err != nil {
		return nil, err
	}

	author.IsSubscribed = true
	subs, err := s.buildSubscribers(ctx, []models.User{*author}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &subs[0], nil
}

// Unfollow removes the subscription. A missing pair is a validation error,
// an unknown author is not found.
func (s *SubscriptionService) Unfollow(ctx context.Context, subscriberID, authorID uint) (err error) {
	defer func() {
		observability.SubscriptionChanges.WithLabelValues("unfollow", outcomeOf(err)).Inc()
	}()

	if _, err := s.userRepo.GetByID(ctx, authorID, 0); err != nil {
		return err
	}
	removed, err := s.subRepo.Delete(ctx, subscriberID, authorID)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewValidationError("You are not subscribed to this user")
	}
	return nil
}

// ListSubscriptions returns one page of the authors subscriberID follows.
func (s *SubscriptionService) ListSubscriptions(ctx context.Context, subscriberID uint, limit, offset, recipesLimit int) ([]models.Subscriber, int64, error) {
	count, err := s.subRepo.CountAuthors(ctx, subscriberID)
	if err != nil {
		return nil, 0, err
	}
	authors, err := s.subRepo.ListAuthors(ctx, subscriberID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	subs, err := s.buildSubscribers(ctx, authors, recipesLimit)
	if err != nil {
		return nil, 0, err
	}
	return subs, count, nil
}

// FollowerIDs lists the users to notify about authorID's activity.
func (s *SubscriptionService) FollowerIDs(ctx context.Context, authorID uint) ([]uint, error) {
	return s.subRepo.ListFollowerIDs(ctx, authorID)
}

func (s *SubscriptionService) buildSubscribers(ctx context.Context, authors []models.User, recipesLimit int) ([]models.Subscriber, error) {
	ids := make([]uint, len(authors))
	for i := range authors {
		ids[i] = authors[i].ID
	}
	counts, err := s.recipeRepo.CountByAuthors(ctx, ids)
	if err != nil {
		return nil, err
	}

	subs := make([]models.Subscriber, 0, len(authors))
	for i := range authors {
		recipes, err := s.recipeRepo.ListByAuthor(ctx, authors[i].ID, recipesLimit)
		if err != nil {
			return nil, err
		}
		summaries := make([]models.RecipeSummary, 0, len(recipes))
		for _, r := range recipes {
			summaries = append(summaries, models.SummaryOf(r))
		}
		subs = append(subs, models.Subscriber{
			UserProfile:  models.ProfileOf(&authors[i]),
			Recipes:      summaries,
			RecipesCount: counts[authors[i].ID],
		})
	}
	return subs, nil
}
