package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remindbot/state"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local)

func newTestServer(t *testing.T, rateLimit int) (*Server, *state.Store) {
	t.Helper()
	store, err := state.Open(filepath.Join(t.TempDir(), "reminders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	s := New(store, nil, Config{Mode: gin.TestMode, RateLimitPerMin: rateLimit}, nil)
	s.now = func() time.Time { return fixedNow }
	return s, store
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, 0)
	rec := do(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestParse(t *testing.T) {
	s, _ := newTestServer(t, 0)

	tests := []struct {
		name       string
		body       parseReq
		wantStatus int
		wantAt     string
		wantMsg    string
		wantKind   string
		wantTokens []string
	}{
		{
			name:       "duration",
			body:       parseReq{Text: "2 hours call mom"},
			wantStatus: http.StatusOK,
			wantAt:     "2024-03-01 12:00:00",
			wantMsg:    "call mom",
		},
		{
			name:       "explicit reference",
			body:       parseReq{Text: "tomorrow noon lunch", Reference: "2024-06-10 08:00:00"},
			wantStatus: http.StatusOK,
			wantAt:     "2024-06-11 12:00:00",
			wantMsg:    "lunch",
		},
		{
			name:       "unreadable",
			body:       parseReq{Text: "hello world"},
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "unreadable",
		},
		{
			name:       "trailing argument",
			body:       parseReq{Text: `2 hours "call mom" now`},
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   "trailing_argument",
			wantTokens: []string{"now"},
		},
		{
			name:       "bad reference",
			body:       parseReq{Text: "noon", Reference: "yesterday"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing text",
			body:       parseReq{},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/v1/parse", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			switch tt.wantStatus {
			case http.StatusOK:
				got := decode[parseResp](t, rec)
				assert.Equal(t, tt.wantAt, got.At)
				assert.Equal(t, tt.wantMsg, got.Message)
			case http.StatusUnprocessableEntity:
				got := decode[errorResp](t, rec)
				assert.Equal(t, tt.wantKind, got.Kind)
				assert.Equal(t, tt.wantTokens, got.Tokens)
				assert.NotEmpty(t, got.Error)
			}
		})
	}
}

func TestReminderLifecycle(t *testing.T) {
	s, store := newTestServer(t, 0)

	rec := do(t, s, http.MethodPost, "/api/v1/reminders", createReq{Text: "2 days buy milk #shopping", User: "alice"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[reminderResp](t, rec)
	assert.Equal(t, "2024-03-03 10:00:00", created.At)
	assert.Equal(t, "buy milk", created.Message)
	assert.Equal(t, []string{"shopping"}, created.Tags)
	assert.Equal(t, "pending", created.Status)

	rec = do(t, s, http.MethodPost, "/api/v1/reminders/"+created.ID+"/subscribers", subscribeReq{User: "bob"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	id := uuid.MustParse(created.ID)
	users, err := store.UsersFor(context.Background(), id)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"alice", "bob"}, users)

	rec = do(t, s, http.MethodGet, "/api/v1/reminders?user=bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Reminders []reminderResp `json:"reminders"`
	}](t, rec)
	require.Len(t, list.Reminders, 1)
	assert.Equal(t, created.ID, list.Reminders[0].ID)

	rec = do(t, s, http.MethodDelete, "/api/v1/reminders/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/v1/reminders/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/v1/reminders/"+created.ID+"/subscribers", subscribeReq{User: "carol"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateReminderRejectsBadInput(t *testing.T) {
	s, _ := newTestServer(t, 0)

	rec := do(t, s, http.MethodPost, "/api/v1/reminders", createReq{Text: "1 day 1 day water", User: "alice"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "duplicate_unit", decode[errorResp](t, rec).Kind)

	rec = do(t, s, http.MethodPost, "/api/v1/reminders", createReq{Text: "noon lunch"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/v1/reminders", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodDelete, "/api/v1/reminders/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	s, _ := newTestServer(t, 10)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, s, http.MethodGet, "/health", nil).Code)
}

func TestRateLimiterPerClient(t *testing.T) {
	rl := newRateLimiter(10)
	assert.True(t, rl.allow("a"))
	assert.False(t, rl.allow("a"))
	assert.True(t, rl.allow("b"))
}
