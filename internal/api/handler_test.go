package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/digest"
	"newsdigest/internal/domain"
	"newsdigest/internal/ports"
	"newsdigest/internal/scoring"
	"newsdigest/internal/usecase"
)

type fakeChat struct{}

func (fakeChat) CompleteStructured(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("not used")
}

func (fakeChat) CompleteText(context.Context, string, int) (string, error) {
	return "", fmt.Errorf("not used")
}

type fakeSource struct{}

func (fakeSource) FetchBatch(context.Context) ([]domain.Article, error) { return nil, nil }

type fakeDirectory struct {
	err error
}

func (f *fakeDirectory) ListWithActiveProfiles(context.Context) ([]domain.ClientAlertPair, error) {
	return nil, f.err
}

type fakeStore struct {
	alerts     []domain.Alert
	listErr    error
	listFilter ports.AlertFilter
	readIDs    []string
	readErr    error
}

func (f *fakeStore) Exists(context.Context, string, string) (bool, error) { return false, nil }

func (f *fakeStore) Insert(_ context.Context, alert domain.Alert) (domain.Alert, bool, error) {
	return alert, true, nil
}

func (f *fakeStore) DeleteOlderThan(context.Context, time.Time) (int64, error) { return 0, nil }

func (f *fakeStore) MarkRead(_ context.Context, alertID string) error {
	if f.readErr != nil {
		return f.readErr
	}
	f.readIDs = append(f.readIDs, alertID)
	return nil
}

func (f *fakeStore) List(_ context.Context, filter ports.AlertFilter) ([]domain.Alert, error) {
	f.listFilter = filter
	return f.alerts, f.listErr
}

func newTestRouter(t *testing.T, store *fakeStore, dirErr error) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:    fakeSource{},
		Directory: &fakeDirectory{err: dirErr},
		Store:     store,
		Scorer:    scoring.New(fakeChat{}, nil, scoring.WithRateLimit(0)),
		Assembler: digest.NewAssembler(fakeChat{}, nil),
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := gin.New()
	NewHandler(pipeline, store, logger).RegisterRoutes(r)
	return r
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t, &fakeStore{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestRunPipelineReturnsSummary(t *testing.T) {
	r := newTestRouter(t, &fakeStore{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/news/run", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var summary domain.RunSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 0, summary.ArticlesFetched)
	assert.False(t, summary.DigestGenerated)
}

func TestRunPipelineFailure(t *testing.T) {
	r := newTestRouter(t, &fakeStore{}, fmt.Errorf("db down"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/news/run", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "db down")
}

func TestListAlertsFilters(t *testing.T) {
	store := &fakeStore{alerts: []domain.Alert{
		{ID: "a1", ClientID: "c1", Title: "Rate cut"},
	}}
	r := newTestRouter(t, store, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/api/news/alerts?clientId=c1&priority=high&unread=true&limit=10", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	assert.Equal(t, "c1", store.listFilter.ClientID)
	assert.Equal(t, domain.PriorityHigh, store.listFilter.Priority)
	assert.True(t, store.listFilter.OnlyUnread)
	assert.Equal(t, 10, store.listFilter.Limit)
}

func TestListAlertsPriorityAllIgnored(t *testing.T) {
	store := &fakeStore{}
	r := newTestRouter(t, store, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/news/alerts?priority=all", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.listFilter.Priority)
	assert.Equal(t, 50, store.listFilter.Limit)
}

func TestListAlertsStoreFailure(t *testing.T) {
	r := newTestRouter(t, &fakeStore{listErr: fmt.Errorf("query failed")}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/news/alerts", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestMarkAlertRead(t *testing.T) {
	store := &fakeStore{}
	r := newTestRouter(t, store, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/news/alerts/a1/read", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"a1"}, store.readIDs)
}

func TestMarkAlertReadFailure(t *testing.T) {
	r := newTestRouter(t, &fakeStore{readErr: fmt.Errorf("missing")}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/news/alerts/a1/read", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
