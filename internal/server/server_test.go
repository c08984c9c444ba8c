package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradestats/internal/config"
	"tradestats/internal/exporter"
	"tradestats/internal/frame"
)

func testServer(t *testing.T) (*Server, *config.Config) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.ProcessedDir = t.TempDir()
	cfg.Cache.TTL = time.Hour
	cfg.Server.RateLimit = config.RateLimitConfig{Enabled: false}
	require.NoError(t, cfg.Paths.EnsureOutputDirectories())
	return New(cfg, nil), cfg
}

func exportTable(t *testing.T, cfg *config.Config, tableID string) {
	t.Helper()
	f, err := frame.New(
		frame.NewTextColumn("year_month", []string{"114-07", "114-08"}),
		frame.NewNumberColumn("total", []float64{100, 110}, nil),
	)
	require.NoError(t, err)
	e := exporter.New(&cfg.Paths, "trade_stats.db", nil)
	_, err = e.ExportParquet(f, tableID)
	require.NoError(t, err)
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	s, _ := testServer(t)

	rec := doRequest(t, s, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}

func TestListTables(t *testing.T) {
	s, cfg := testServer(t)
	exportTable(t, cfg, "table02")

	rec := doRequest(t, s, http.MethodGet, "/api/tables")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(16), body["count"])

	exportedByID := map[string]bool{}
	for _, item := range body["data"].([]any) {
		rec := item.(map[string]any)
		exportedByID[rec["table_id"].(string)] = rec["exported"].(bool)
	}
	assert.True(t, exportedByID["table02"])
	assert.False(t, exportedByID["table01"])
}

func TestGetTable(t *testing.T) {
	s, cfg := testServer(t)
	exportTable(t, cfg, "table02")

	rec := doRequest(t, s, http.MethodGet, "/api/tables/table02")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "table02", body["table_id"])
	assert.Equal(t, float64(2), body["count"])

	records := body["data"].([]any)
	require.Len(t, records, 2)
	first := records[0].(map[string]any)
	assert.Equal(t, "114-07", first["year_month"])
	assert.Equal(t, float64(100), first["total"])
}

func TestGetTable_UnknownIdentifier(t *testing.T) {
	s, _ := testServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/tables/table99")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "UNKNOWN_TABLE", decodeBody(t, rec)["code"])
}

func TestGetTable_NotExported(t *testing.T) {
	s, _ := testServer(t)

	rec := doRequest(t, s, http.MethodGet, "/api/tables/table02")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TABLE_NOT_EXPORTED", decodeBody(t, rec)["code"])
}

func TestCacheStatsAndClear(t *testing.T) {
	s, cfg := testServer(t)
	exportTable(t, cfg, "table02")

	// One miss, then one hit.
	require.Equal(t, http.StatusOK, doRequest(t, s, http.MethodGet, "/api/tables/table02").Code)
	require.Equal(t, http.StatusOK, doRequest(t, s, http.MethodGet, "/api/tables/table02").Code)

	rec := doRequest(t, s, http.MethodGet, "/api/cache")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(1), stats["entries"])
	assert.Equal(t, float64(1), stats["hits"])
	assert.Equal(t, float64(1), stats["misses"])

	rec = doRequest(t, s, http.MethodPost, "/api/cache/clear")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/cache")
	stats = decodeBody(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(0), stats["entries"])
}

func TestRateLimit(t *testing.T) {
	s, _ := testServer(t)
	s.cfg.Server.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0, Burst: 1}

	router := s.Router()

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}
