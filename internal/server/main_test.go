package server

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/YURESSA/foodgram-st/internal/config"
	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/storage"
	"github.com/YURESSA/foodgram-st/internal/testutil"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:                "test",
		Port:               "0",
		JWTSecret:          "test-secret-key-12345678901234567890123456789012",
		JWTIssuer:          "foodgram-api",
		JWTAudience:        "foodgram-client",
		JWTTTLHours:        1,
		MediaURL:           "/media",
		ImageMaxDimension:  64,
		RateLimitMax:       1000,
		LoginRateLimitMax:  100,
		PageSize:           6,
		ShoppingListFormat: config.ShoppingListPlain,
		PublicBaseURL:      "https://foodgram.example.com",
		FrontendURL:        "https://app.foodgram.example.com",
	}
}

// testEnv is a fully wired server over an in-memory database.
type testEnv struct {
	t        *testing.T
	srv      *Server
	app      *fiber.App
	db       *gorm.DB
	mediaDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewSQLiteDB(t)
	dir := t.TempDir()
	srv, err := NewServerWithDeps(testConfig(), db, nil, storage.NewLocalStore(dir, "/media"))
	require.NoError(t, err)

	return &testEnv{t: t, srv: srv, app: srv.App(), db: db, mediaDir: dir}
}

func (e *testEnv) token(user *models.User) string {
	e.t.Helper()
	token, _, err := e.srv.tokens.Issue(user.ID)
	require.NoError(e.t, err)
	return token
}

// do sends a JSON request and returns the status and raw body.
func (e *testEnv) do(method, path string, body any, token string) (int, []byte) {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Token "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer func() { _ = resp.Body.Close() }()

	out, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}

func newRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
