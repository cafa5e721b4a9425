package server

import (
	"net/http"
	"testing"

	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionEndpoints(t *testing.T) {
	env := newTestEnv(t)
	reader := testutil.CreateUser(t, env.db, "reader")
	chef := testutil.CreateUser(t, env.db, "chef")
	for _, name := range []string{"soup", "stew", "pie"} {
		testutil.CreateRecipe(t, env.db, chef, name)
	}
	token := env.token(reader)
	path := "/api/users/" + itoa(chef.ID) + "/subscribe"

	status, raw := env.do(http.MethodPost, path+"?recipes_limit=2", nil, token)
	require.Equal(t, http.StatusCreated, status, string(raw))
	sub := decode[models.Subscriber](t, raw)
	assert.True(t, sub.IsSubscribed)
	assert.Len(t, sub.Recipes, 2)
	assert.Equal(t, int64(3), sub.RecipesCount)

	status, _ = env.do(http.MethodPost, path, nil, token)
	assert.Equal(t, http.StatusBadRequest, status, "double follow")

	status, _ = env.do(http.MethodPost, "/api/users/"+itoa(reader.ID)+"/subscribe", nil, token)
	assert.Equal(t, http.StatusBadRequest, status, "self follow")

	status, _ = env.do(http.MethodPost, "/api/users/999/subscribe", nil, token)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = env.do(http.MethodGet, "/api/users/subscriptions?recipes_limit=1", nil, token)
	require.Equal(t, http.StatusOK, status)
	page := decode[models.Page[models.Subscriber]](t, raw)
	assert.Equal(t, int64(1), page.Count)
	require.Len(t, page.Results, 1)
	assert.Len(t, page.Results[0].Recipes, 1)

	status, _ = env.do(http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = env.do(http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(http.MethodGet, "/api/users/subscriptions", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)
}
