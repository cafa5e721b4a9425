package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	UserKeyPrefix             = "user:%d"
	IngredientKeyPrefix       = "ingredient:%d"
	IngredientSearchKeyPrefix = "ingredients:search:%s"
	IngredientsPattern        = "ingredient*"
	RevokedTokenKeyPrefix     = "blacklist:%s"
)

const (
	UserTTL       = 5 * time.Minute
	IngredientTTL = time.Hour
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func IngredientKey(id uint) string {
	return fmt.Sprintf(IngredientKeyPrefix, id)
}

// IngredientSearchKey normalizes prefix so "Ap" and "ap" share an entry.
func IngredientSearchKey(prefix string) string {
	return fmt.Sprintf(IngredientSearchKeyPrefix, strings.ToLower(strings.TrimSpace(prefix)))
}

func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenKeyPrefix, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateIngredients drops every cached catalog entry and search result.
func InvalidateIngredients(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, IngredientsPattern, 200).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

// RevokeToken marks jti as revoked until the token would have expired anyway.
func RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return client.Set(ctx, RevokedTokenKey(jti), "1", ttl).Err()
}

// IsTokenRevoked reports whether jti was revoked by logout.
func IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if client == nil || jti == "" {
		return false, nil
	}
	n, err := client.Exists(ctx, RevokedTokenKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
