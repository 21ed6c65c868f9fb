package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hatirlat/internal/auth"
	"hatirlat/internal/config"
	"hatirlat/internal/models"
	"hatirlat/internal/services"
	"hatirlat/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/jmhodges/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testUser     = "alice"
	testPassword = "correct-horse"
	publicURL    = "http://app.test"
)

type testServer struct {
	router *gin.Engine
	store  *store.MemoryStore
	clock  clock.FakeClock
	tokens *auth.TokenIssuer
	token  string
}

func newTestServer(t *testing.T, limit *config.FreeLimitConfig) *testServer {
	t.Helper()
	clk := clock.NewFake()
	clk.Set(time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC))

	s := store.NewMemoryStore(clk.Now)
	ctx := context.Background()
	require.NoError(t, store.SeedAdmin(ctx, s, config.AdminConfig{Username: testUser, Password: testPassword, Email: "alice@example.com"}))
	require.NoError(t, store.SeedDummy(ctx, s, testUser, clk.Now()))

	tokens := auth.NewTokenIssuer(config.JWTConfig{Secret: "test", Expiry: time.Hour, RefreshExpiry: 24 * time.Hour}, clk)
	h := New(Options{Store: s, Tokens: tokens, Clock: clk, Location: time.UTC, PublicURL: publicURL})

	var limiter *auth.FreeLimiter
	if limit != nil {
		limiter = auth.NewFreeLimiter(*limit, nil, clk)
	}

	pair, err := tokens.Issue(testUser)
	require.NoError(t, err)

	return &testServer{
		router: NewRouter(h, limiter, RouterConfig{CORSOrigins: []string{"http://localhost:3000"}}),
		store:  s,
		clock:  clk,
		tokens: tokens,
		token:  pair.Token,
	}
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	return ts.doAs(ts.token, method, path, body)
}

func (ts *testServer) doAs(token, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			if err := json.NewEncoder(&buf).Encode(b); err != nil {
				panic(err)
			}
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func reminderIDs(reminders []models.Reminder) []string {
	out := make([]string, len(reminders))
	for i := range reminders {
		out[i] = reminders[i].ID
	}
	return out
}

func TestHomeAndHealth(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.doAs("", http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.doAs("", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, nil)
	for _, path := range []string{"/reminders", "/groups", "/reminders/stats"} {
		w := ts.doAs("", http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestTokenExchange(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.doAs("", http.MethodPost, "/token", gin.H{"username": testUser, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.doAs("", http.MethodPost, "/token", gin.H{"username": "nobody", "password": "whatever"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.doAs("", http.MethodPost, "/token", gin.H{"username": testUser})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.doAs("", http.MethodPost, "/token", gin.H{"username": testUser, "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[map[string]any](t, w)
	assert.Equal(t, "Bearer", resp["type"])
	assert.NotEmpty(t, resp["token"])
	assert.NotEmpty(t, resp["refreshToken"])
	user := resp["user"].(map[string]any)
	assert.Equal(t, testUser, user["username"])
	assert.NotContains(t, user, "hashedPass")

	// the issued token works on protected routes
	w = ts.doAs(resp["token"].(string), http.MethodGet, "/reminders", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// refresh
	w = ts.doAs("", http.MethodPost, "/token/refresh", gin.H{"refreshToken": resp["refreshToken"]})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode[map[string]any](t, w)["token"])

	// an access token is not a refresh token
	w = ts.doAs("", http.MethodPost, "/token/refresh", gin.H{"refreshToken": resp["token"]})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAccount(t *testing.T) {
	ts := newTestServer(t, nil)

	body := gin.H{"username": "bob", "email": "Bob@Example.com", "password": "longenough"}
	w := ts.doAs("", http.MethodPost, "/accounts", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	acc := decode[models.Account](t, w)
	assert.Equal(t, "bob", acc.Username)
	assert.Equal(t, "bob@example.com", acc.Email)
	assert.False(t, acc.Premium)

	w = ts.doAs("", http.MethodPost, "/accounts", body)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.doAs("", http.MethodPost, "/accounts", gin.H{"username": "carol", "email": "carol@example.com", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.doAs("", http.MethodPost, "/token", gin.H{"username": "bob", "password": "longenough"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListRemindersSortedAndFiltered(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodGet, "/reminders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"rem2", "rem4", "rem1", "rem3"}, reminderIDs(decode[[]models.Reminder](t, w)))

	w = ts.do(http.MethodGet, "/reminders?status=scheduled", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"rem2", "rem1"}, reminderIDs(decode[[]models.Reminder](t, w)))

	w = ts.do(http.MethodGet, "/reminders?type=group&sort=asc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"rem1", "rem4"}, reminderIDs(decode[[]models.Reminder](t, w)))

	w = ts.do(http.MethodGet, "/reminders?channel=email&q=bill", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"rem3"}, reminderIDs(decode[[]models.Reminder](t, w)))

	w = ts.do(http.MethodGet, "/reminders?status=unknown", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemindersAreScopedToOwner(t *testing.T) {
	ts := newTestServer(t, nil)
	pair, err := ts.tokens.Issue("mallory")
	require.NoError(t, err)

	w := ts.doAs(pair.Token, http.MethodGet, "/reminders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]models.Reminder](t, w))

	w = ts.doAs(pair.Token, http.MethodGet, "/reminders/rem1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Reminder not found"}`, w.Body.String())
}

func TestCreateReminder(t *testing.T) {
	ts := newTestServer(t, nil)

	body := gin.H{
		"title":    "Call mom",
		"type":     "personal",
		"message":  "Sunday call",
		"dateTime": "2025-06-03T18:00:00Z",
		"contact":  gin.H{"name": "Mom", "phone": "+905551112233", "email": ""},
		"channels": []string{"sms", "sms", "whatsapp"},
		"repeat":   "weekly",
	}
	w := ts.do(http.MethodPost, "/reminders", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	r := decode[models.Reminder](t, w)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, models.StatusScheduled, r.Status)
	assert.Equal(t, models.ChannelList{models.ChannelSMS, models.ChannelWhatsApp}, r.Channels)

	w = ts.do(http.MethodGet, "/reminders/"+r.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateReminderValidation(t *testing.T) {
	ts := newTestServer(t, nil)
	base := func() gin.H {
		return gin.H{
			"title":    "x",
			"type":     "personal",
			"dateTime": "2025-06-03T18:00:00Z",
			"channels": []string{"email"},
		}
	}

	tests := []struct {
		name   string
		mutate func(gin.H)
		status int
	}{
		{"no channels", func(b gin.H) { b["channels"] = []string{} }, http.StatusBadRequest},
		{"unknown channel", func(b gin.H) { b["channels"] = []string{"pigeon"} }, http.StatusBadRequest},
		{"missing title", func(b gin.H) { delete(b, "title") }, http.StatusBadRequest},
		{"bad type", func(b gin.H) { b["type"] = "team" }, http.StatusBadRequest},
		{"group without id", func(b gin.H) { b["type"] = "group" }, http.StatusBadRequest},
		{"custom without config", func(b gin.H) { b["repeat"] = "custom" }, http.StatusBadRequest},
		{"custom with bad interval", func(b gin.H) {
			b["repeat"] = "custom"
			b["customRepeat"] = gin.H{"interval": 0, "frequency": "week"}
		}, http.StatusBadRequest},
		{"unknown group", func(b gin.H) {
			b["type"] = "group"
			b["group"] = gin.H{"id": "404", "name": "ghost"}
		}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := base()
			tt.mutate(body)
			w := ts.do(http.MethodPost, "/reminders", body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"message"`)
		})
	}

	w := ts.do(http.MethodPost, "/reminders", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateGroupReminderUsesCurrentGroupName(t *testing.T) {
	ts := newTestServer(t, nil)
	w := ts.do(http.MethodPost, "/reminders", gin.H{
		"title":    "Standup",
		"type":     "group",
		"dateTime": "2025-06-03T07:00:00Z",
		"group":    gin.H{"id": "2", "name": "stale"},
		"channels": []string{"email"},
		"repeat":   "custom",
		"customRepeat": gin.H{
			"interval":   1,
			"frequency":  "week",
			"daysOfWeek": []string{"mon", "wed"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	r := decode[models.Reminder](t, w)
	assert.Equal(t, "İş Arkadaşları", r.Group.Name)
	require.NotNil(t, r.CustomRepeat)
	assert.Equal(t, []models.Weekday{"mon", "wed"}, r.CustomRepeat.DaysOfWeek)
}

func TestUpdateReminderKeepsOmittedFields(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPut, "/reminders/rem2", gin.H{"title": "Dentist"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	r := decode[models.Reminder](t, w)
	assert.Equal(t, "Dentist", r.Title)
	assert.Equal(t, models.ChannelList{models.ChannelSMS, models.ChannelEmail}, r.Channels)
	assert.Equal(t, "John Doe", r.Contact.Name)

	w = ts.do(http.MethodPut, "/reminders/rem2", gin.H{"channels": []string{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// switching away from custom drops the custom config
	w = ts.do(http.MethodPut, "/reminders/rem1", gin.H{"repeat": "daily"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[models.Reminder](t, w).CustomRepeat)

	w = ts.do(http.MethodPut, "/reminders/missing", gin.H{"title": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleReminder(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPatch, "/reminders/rem1/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusPaused, decode[models.Reminder](t, w).Status)

	w = ts.do(http.MethodPatch, "/reminders/rem1/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusScheduled, decode[models.Reminder](t, w).Status)

	w = ts.do(http.MethodPatch, "/reminders/rem3/toggle", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestUpdateReminderStatus(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodPut, "/reminders/rem3/status", gin.H{"status": "scheduled"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusScheduled, decode[models.Reminder](t, w).Status)

	w = ts.do(http.MethodPut, "/reminders/rem3/status", gin.H{"status": "done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReminderStats(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodGet, "/reminders/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[services.ReminderStats](t, w)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 0, stats.Overdue)
	assert.Equal(t, 1, stats.Today)
	assert.Equal(t, 2, stats.Groups)
	assert.Equal(t, 1, stats.Paused)

	// three hours later rem1 is due but not yet dispatched
	ts.clock.Add(3 * time.Hour)
	w = ts.do(http.MethodGet, "/reminders/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[services.ReminderStats](t, w).Overdue)
}

func TestDeleteReminder(t *testing.T) {
	ts := newTestServer(t, nil)

	w := ts.do(http.MethodDelete, "/reminders/rem1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(http.MethodDelete, "/reminders/rem1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListDeliveries(t *testing.T) {
	ts := newTestServer(t, nil)
	require.NoError(t, ts.store.RecordDelivery(context.Background(), &models.Delivery{
		ReminderID: "rem3",
		Occurrence: ts.clock.Now().Add(-24 * time.Hour),
		Channel:    models.ChannelEmail,
		Recipient:  "my.email@example.com",
		Status:     models.DeliverySent,
	}))

	w := ts.do(http.MethodGet, "/reminders/rem3/deliveries", nil)
	require.Equal(t, http.StatusOK, w.Code)
	deliveries := decode[[]models.Delivery](t, w)
	require.Len(t, deliveries, 1)
	assert.Equal(t, "my.email@example.com", deliveries[0].Recipient)

	w = ts.do(http.MethodGet, "/reminders/nope/deliveries", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFreeTierLimit(t *testing.T) {
	ts := newTestServer(t, &config.FreeLimitConfig{MaxRequests: 1, PerSeconds: 60})
	body := gin.H{
		"title":    "x",
		"type":     "personal",
		"dateTime": "2025-06-03T18:00:00Z",
		"contact":  gin.H{"email": "x@example.com"},
		"channels": []string{"email"},
	}

	assert.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/reminders", body).Code)
	assert.Equal(t, http.StatusTooManyRequests, ts.do(http.MethodPost, "/reminders", body).Code)

	// reads are not limited
	assert.Equal(t, http.StatusOK, ts.do(http.MethodGet, "/reminders", nil).Code)

	ts.clock.Add(time.Minute)
	assert.Equal(t, http.StatusCreated, ts.do(http.MethodPost, "/reminders", body).Code)
}
