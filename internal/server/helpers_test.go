package server

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/YURESSA/foodgram-st/internal/models"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		expect Pagination
	}{
		{"defaults", "", Pagination{Page: 1, Limit: 6, Offset: 0}},
		{"custom", "?page=3&limit=10", Pagination{Page: 3, Limit: 10, Offset: 20}},
		{"limit capped", "?limit=1000", Pagination{Page: 1, Limit: 100, Offset: 0}},
		{"invalid values fall back", "?page=-2&limit=0", Pagination{Page: 1, Limit: 6, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var got Pagination
			app.Get("/", func(c *fiber.Ctx) error {
				got = parsePagination(c, 6)
				return nil
			})
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestBuildPage(t *testing.T) {
	app := fiber.New()
	app.Get("/api/items", func(c *fiber.Ctx) error {
		p := parsePagination(c, 2)
		return c.JSON(buildPage(c, p, 5, []int{1, 2}))
	})

	fetch := func(target string) models.Page[int] {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		var page models.Page[int]
		require.NoError(t, json.Unmarshal(raw, &page))
		return page
	}

	first := fetch("http://example.com/api/items?author=3")
	assert.Equal(t, int64(5), first.Count)
	require.NotNil(t, first.Next)
	assert.Equal(t, "http://example.com/api/items?author=3&page=2", *first.Next)
	assert.Nil(t, first.Previous)

	second := fetch("http://example.com/api/items?page=2")
	require.NotNil(t, second.Previous)
	assert.Equal(t, "http://example.com/api/items", *second.Previous)
	require.NotNil(t, second.Next)
	assert.Equal(t, "http://example.com/api/items?page=3", *second.Next)

	last := fetch("http://example.com/api/items?page=3")
	assert.Nil(t, last.Next)
}

func TestParseID(t *testing.T) {
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := parseID(c, "id")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	tests := []struct {
		path   string
		status int
	}{
		{"/items/7", http.StatusOK},
		{"/items/abc", http.StatusNotFound},
		{"/items/0", http.StatusNotFound},
		{"/items/-1", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{models.NewValidationError("bad"), http.StatusBadRequest},
		{models.NewConflictError("dup"), http.StatusBadRequest},
		{models.NewNotFoundError("Recipe", 1), http.StatusNotFound},
		{models.NewUnauthorizedError("who"), http.StatusUnauthorized},
		{models.NewForbiddenError("no"), http.StatusForbidden},
		{models.NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusForError(tt.err), tt.err.Error())
	}
}

func TestMapServiceError_HidesInternalDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return mapServiceError(c, errors.New("pq: connection refused"))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(raw), "connection refused")
	assert.Contains(t, string(raw), models.CodeInternal)
}
