package server

import (
	"net/http"
	"strings"
	"testing"

	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	register := map[string]string{
		"email":      "vasya@example.com",
		"username":   "vasya",
		"first_name": "Vasya",
		"last_name":  "Pupkin",
		"password":   "Sup3r-Secret!",
	}
	status, raw := env.do(http.MethodPost, "/api/users", register, "")
	require.Equal(t, http.StatusCreated, status, string(raw))
	created := decode[RegisteredUser](t, raw)
	assert.Equal(t, "vasya", created.Username)
	assert.NotContains(t, string(raw), "password")

	status, raw = env.do(http.MethodPost, "/api/users", register, "")
	require.Equal(t, http.StatusBadRequest, status)
	failure := decode[models.ErrorResponse](t, raw)
	assert.Contains(t, failure.Fields, "email")
	assert.Contains(t, failure.Fields, "username")

	status, raw = env.do(http.MethodPost, "/api/auth/token/login",
		LoginRequest{Email: "vasya@example.com", Password: "Sup3r-Secret!"}, "")
	require.Equal(t, http.StatusOK, status, string(raw))
	token := decode[map[string]string](t, raw)["auth_token"]

	status, raw = env.do(http.MethodGet, "/api/users/me", nil, token)
	require.Equal(t, http.StatusOK, status)
	me := decode[models.UserProfile](t, raw)
	assert.Equal(t, created.ID, me.ID)
	assert.False(t, me.IsSubscribed)
}

func TestUserProfiles(t *testing.T) {
	env := newTestEnv(t)
	reader := testutil.CreateUser(t, env.db, "reader")
	chef := testutil.CreateUser(t, env.db, "chef")
	testutil.CreateUser(t, env.db, "third")

	status, _ := env.do(http.MethodGet, "/api/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(http.MethodGet, "/api/users/999", nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(http.MethodPost, "/api/users/"+itoa(chef.ID)+"/subscribe", nil, env.token(reader))
	require.Equal(t, http.StatusCreated, status)

	status, raw := env.do(http.MethodGet, "/api/users/"+itoa(chef.ID), nil, env.token(reader))
	require.Equal(t, http.StatusOK, status)
	assert.True(t, decode[models.UserProfile](t, raw).IsSubscribed)

	status, raw = env.do(http.MethodGet, "/api/users/"+itoa(chef.ID), nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decode[models.UserProfile](t, raw).IsSubscribed)

	status, raw = env.do(http.MethodGet, "/api/users?limit=2", nil, "")
	require.Equal(t, http.StatusOK, status)
	page := decode[models.Page[models.UserProfile]](t, raw)
	assert.Equal(t, int64(3), page.Count)
	assert.Len(t, page.Results, 2)
	require.NotNil(t, page.Next)
	assert.True(t, strings.HasSuffix(*page.Next, "/api/users?limit=2&page=2"), *page.Next)
}

func TestSetPasswordRequiresCurrentPassword(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "vasya")

	status, raw := env.do(http.MethodPost, "/api/users/set_password",
		map[string]string{"new_password": "An0ther-Secret", "current_password": "wrong"}, env.token(user))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decode[models.ErrorResponse](t, raw).Fields, "current_password")
}

func TestAvatarUpload(t *testing.T) {
	env := newTestEnv(t)
	user := testutil.CreateUser(t, env.db, "vasya")
	token := env.token(user)

	status, raw := env.do(http.MethodPut, "/api/users/me/avatar",
		AvatarRequest{Avatar: testutil.PNGDataURI(t, 20, 20)}, token)
	require.Equal(t, http.StatusOK, status, string(raw))
	avatar := decode[AvatarRequest](t, raw).Avatar
	assert.True(t, strings.HasPrefix(avatar, "/media/avatars/"), avatar)

	status, _ = env.do(http.MethodGet, avatar, nil, "")
	assert.Equal(t, http.StatusOK, status, "stored avatar is served from the media route")

	status, _ = env.do(http.MethodPut, "/api/users/me/avatar", AvatarRequest{Avatar: "data:text/plain;base64,aGk="}, token)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(http.MethodDelete, "/api/users/me/avatar", nil, token)
	assert.Equal(t, http.StatusNoContent, status)

	status, raw = env.do(http.MethodGet, "/api/users/me", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[models.UserProfile](t, raw).Avatar)
}
