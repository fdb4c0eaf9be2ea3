package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"research-api/config"
	"research-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*gin.Engine, *storage.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{DBDriver: config.DriverSQLite, DBPath: filepath.Join(t.TempDir(), "api.db")}
	db, err := storage.OpenDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store := storage.NewStore(db, zap.NewNop())
	require.NoError(t, store.Migrate())
	return newRouter(store, zap.NewNop()), store
}

func do(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestResearchAuthorScenario(t *testing.T) {
	router, _ := newTestServer(t)

	w := do(t, router, http.MethodPost, "/authors", `{"name":"A. Lin","fieldOfStudy":"AI"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = do(t, router, http.MethodPost, "/research", `{"topic":"Graph Nets","year":2021,"pageCount":12}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id":1,"topic":"Graph Nets","year":2021,"pageCount":12}`, w.Body.String())

	w = do(t, router, http.MethodPost, "/research_author", `{"authorId":1,"researchId":1}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id":1,"name":"A. Lin","fieldOfStudy":"AI"}`, w.Body.String())

	w = do(t, router, http.MethodGet, "/research/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"id": 1,
		"topic": "Graph Nets",
		"year": 2021,
		"pageCount": 12,
		"authors": [{"id": 1, "name": "A. Lin", "fieldOfStudy": "AI"}]
	}`, w.Body.String())

	w = do(t, router, http.MethodDelete, "/research/1", "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = do(t, router, http.MethodGet, "/research/1", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"description":"Research paper not found"}`, w.Body.String())

	// der Autor bleibt bestehen
	w = do(t, router, http.MethodGet, "/authors", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"name":"A. Lin","fieldOfStudy":"AI"}]`, w.Body.String())
}

func TestListEndpointsNeverExposeJoinRows(t *testing.T) {
	router, _ := newTestServer(t)

	w := do(t, router, http.MethodGet, "/research", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	do(t, router, http.MethodPost, "/authors", `{"name":"M. Okafor","fieldOfStudy":"Robotics"}`)
	do(t, router, http.MethodPost, "/research", `{"topic":"Legged Locomotion","year":2019}`)
	do(t, router, http.MethodPost, "/research_author", `{"authorId":1,"researchId":1}`)

	w = do(t, router, http.MethodGet, "/research", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "researchauthors")
	assert.NotContains(t, w.Body.String(), "createdAt")
	assert.JSONEq(t, `[{"id":1,"topic":"Legged Locomotion","year":2019,"pageCount":null}]`, w.Body.String())

	w = do(t, router, http.MethodGet, "/authors", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "researchauthors")
}

func TestGetAuthorIncludesResearch(t *testing.T) {
	router, _ := newTestServer(t)
	do(t, router, http.MethodPost, "/authors", `{"fieldOfStudy":"Vision"}`)
	do(t, router, http.MethodPost, "/research", `{"topic":"Robust Vision","year":2018,"pageCount":7}`)
	do(t, router, http.MethodPost, "/research_author", `{"authorId":1,"researchId":1}`)

	w := do(t, router, http.MethodGet, "/authors/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"id": 1,
		"name": null,
		"fieldOfStudy": "Vision",
		"research": [{"id": 1, "topic": "Robust Vision", "year": 2018, "pageCount": 7}]
	}`, w.Body.String())

	w = do(t, router, http.MethodGet, "/authors/2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestResearchAuthorRejectsMissingIDs(t *testing.T) {
	router, store := newTestServer(t)
	do(t, router, http.MethodPost, "/research", `{"year":2020}`)

	w := do(t, router, http.MethodPost, "/research_author", `{"authorId":42,"researchId":1}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[map[string][]string](t, w)
	assert.NotEmpty(t, body["errors"])

	links, err := store.ListResearchAuthors(context.Background())
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestResearchAuthorPayloadValidation(t *testing.T) {
	router, _ := newTestServer(t)
	do(t, router, http.MethodPost, "/authors", `{"fieldOfStudy":"AI"}`)
	do(t, router, http.MethodPost, "/research", `{"year":2020}`)

	cases := map[string]struct {
		body string
		code int
	}{
		"missing research": {`{"authorId":1}`, http.StatusUnprocessableEntity},
		"empty object":     {`{}`, http.StatusUnprocessableEntity},
		"string id":        {`{"authorId":"1","researchId":1}`, http.StatusUnprocessableEntity},
		"negative id":      {`{"authorId":-1,"researchId":1}`, http.StatusUnprocessableEntity},
		"unknown field":    {`{"authorId":1,"researchId":1,"role":"lead"}`, http.StatusUnprocessableEntity},
		"broken json":      {`{"authorId":1,`, http.StatusBadRequest},
		"not json at all":  {`hello`, http.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(t, router, http.MethodPost, "/research_author", tc.body)
			assert.Equal(t, tc.code, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"errors"`)
		})
	}
}

func TestDecoderErrorsDoNotLeakGoTypes(t *testing.T) {
	router, _ := newTestServer(t)

	cases := []struct {
		path, body, want string
	}{
		{"/research_author", `[1,2]`, `{"errors":["invalid request body"]}`},
		{"/research_author", `{"authorId":"1","researchId":1}`, `{"errors":["authorId: invalid value"]}`},
		{"/research_author", `{"authorId":1,"researchId":1,"role":"lead"}`, `{"errors":["invalid request body"]}`},
		{"/research", `{"topic":7,"year":2021}`, `{"errors":["topic: invalid value"]}`},
		{"/authors", `"AI"`, `{"errors":["invalid request body"]}`},
	}
	for _, tc := range cases {
		w := do(t, router, http.MethodPost, tc.path, tc.body)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code, tc.body)
		assert.JSONEq(t, tc.want, w.Body.String(), tc.body)
		assert.NotContains(t, w.Body.String(), "struct")
	}
}

func TestCreateResearchValidatesYear(t *testing.T) {
	router, _ := newTestServer(t)
	for _, body := range []string{
		`{"topic":"x","year":999}`,
		`{"topic":"x","year":10000}`,
		`{"topic":"x","year":"2021"}`,
		`{"topic":"x","year":2021.5}`,
		`{"topic":"x"}`,
	} {
		w := do(t, router, http.MethodPost, "/research", body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, body)
	}

	w := do(t, router, http.MethodGet, "/research", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCreateAuthorValidatesFieldOfStudy(t *testing.T) {
	router, _ := newTestServer(t)
	w := do(t, router, http.MethodPost, "/authors", `{"name":"B. Ruiz","fieldOfStudy":"Biology"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = do(t, router, http.MethodGet, "/authors", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestDeleteAndLookupMissingOrInvalidIDs(t *testing.T) {
	router, _ := newTestServer(t)
	for _, path := range []string{"/research/7", "/research/abc", "/research/0", "/authors/7", "/authors/-1"} {
		w := do(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		w = do(t, router, http.MethodDelete, path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Contains(t, w.Body.String(), "description")
	}
}

func TestDeleteAuthorKeepsResearch(t *testing.T) {
	router, _ := newTestServer(t)
	do(t, router, http.MethodPost, "/authors", `{"name":"R. Haddad","fieldOfStudy":"Cybersecurity"}`)
	do(t, router, http.MethodPost, "/research", `{"topic":"Adversarial Patches","year":2020}`)
	do(t, router, http.MethodPost, "/research_author", `{"authorId":1,"researchId":1}`)

	w := do(t, router, http.MethodDelete, "/authors/1", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodGet, "/research/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, []any{}, body["authors"])
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestServer(t)
	do(t, router, http.MethodPost, "/authors", `{"fieldOfStudy":"AI"}`)

	w := do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `entities_created_total{entity="author"}`)
}

func TestSeedDemoDataIsIdempotent(t *testing.T) {
	router, store := newTestServer(t)
	seedDemoData(store, zap.NewNop())
	seedDemoData(store, zap.NewNop())

	papers, err := store.ListResearch(context.Background())
	require.NoError(t, err)
	assert.Len(t, papers, len(demoPapers))
	links, err := store.ListResearchAuthors(context.Background())
	require.NoError(t, err)
	assert.Len(t, links, len(demoLinks))

	w := do(t, router, http.MethodGet, "/research/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Len(t, body["authors"], 2)
}
