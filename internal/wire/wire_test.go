package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"cinema-reservation/internal/data/entity"
	"cinema-reservation/internal/data/repository"
	"cinema-reservation/internal/inventory"
	"cinema-reservation/internal/usecase"
	"cinema-reservation/pkg/cache"
	"cinema-reservation/pkg/queue"
	"cinema-reservation/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const secret = "wire-test-secret"

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  struct {
		Code string `json:"code"`
	} `json:"errors"`
}

type server struct {
	t      *testing.T
	router http.Handler
	clock  *stepClock
}

func newServer(t *testing.T) *server {
	t.Helper()
	log := zap.NewNop()
	ctx := context.Background()

	clock := &stepClock{now: time.Now().UTC().Truncate(time.Second)}
	repo := repository.NewMemoryRepository(log)
	inv := inventory.New(log)
	service := usecase.NewService(repo, cache.NewNopShowtimeCache(), inv, queue.NewNopPublisher(), clock, log)
	require.NoError(t, service.Showtime.SeedDemo(ctx))

	config := &utils.Config{JWT: utils.JWTConfig{Secret: secret}}
	return &server{t: t, router: Wiring(service, config, log).Router, clock: clock}
}

func (s *server) do(method, path, userID, role string, body any) (int, envelope) {
	s.t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	if userID != "" {
		token, err := utils.IssueToken(secret, userID, role, time.Hour)
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (s *server) book(userID string, seats ...string) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/api/bookings", userID, utils.RoleCustomer, map[string]any{
		"showtime_id": usecase.DemoShowtimeID,
		"seat_ids":    seats,
	})
	require.Equal(s.t, http.StatusCreated, code, env.Message)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &created))
	return created.ID
}

func TestRouter_PublicRoutes(t *testing.T) {
	s := newServer(t)

	code, _ := s.do(http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, code)

	code, env := s.do(http.MethodGet, "/api/showtimes", "", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), usecase.DemoShowtimeID)

	code, env = s.do(http.MethodGet, "/api/showtimes/nope/availability", "", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "SHOWTIME_NOT_FOUND", env.Errors.Code)
}

func TestRouter_BookingFlow(t *testing.T) {
	s := newServer(t)

	code, _ := s.do(http.MethodPost, "/api/bookings", "", "", map[string]any{})
	assert.Equal(t, http.StatusUnauthorized, code)

	id := s.book("alice", "A1", "A2")

	code, env := s.do(http.MethodPost, "/api/bookings", "bob", utils.RoleCustomer, map[string]any{
		"showtime_id": usecase.DemoShowtimeID,
		"seat_ids":    []string{"A2", "A3"},
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "SEAT_UNAVAILABLE", env.Errors.Code)

	code, env = s.do(http.MethodPost, "/api/bookings", "bob", utils.RoleCustomer, map[string]any{
		"showtime_id": usecase.DemoShowtimeID,
		"seat_ids":    []string{"A4", "A6"},
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_SELECTION", env.Errors.Code)

	code, env = s.do(http.MethodGet, "/api/bookings/"+id, "bob", utils.RoleCustomer, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "FORBIDDEN", env.Errors.Code)

	code, env = s.do(http.MethodGet, "/api/bookings/"+id+"/ticket", "alice", utils.RoleCustomer, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "TICKET_NOT_FOUND", env.Errors.Code)

	code, _ = s.do(http.MethodPost, "/api/bookings/"+id+"/confirm-payment", "alice", utils.RoleCustomer, nil)
	assert.Equal(t, http.StatusOK, code)

	code, env = s.do(http.MethodPost, "/api/bookings/"+id+"/confirm-payment", "alice", utils.RoleCustomer, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ALREADY_CONFIRMED", env.Errors.Code)

	code, env = s.do(http.MethodGet, "/api/bookings/"+id+"/ticket", "alice", utils.RoleCustomer, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), "QR_"+id)

	code, env = s.do(http.MethodGet, "/api/bookings?page=1&per_page=5", "alice", utils.RoleCustomer, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"total":1`)

	code, env = s.do(http.MethodDelete, "/api/bookings/"+id, "alice", utils.RoleCustomer, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"refund_fraction":1`)

	code, env = s.do(http.MethodDelete, "/api/bookings/"+id, "alice", utils.RoleCustomer, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_STATE", env.Errors.Code)
}

func TestRouter_ExpiredHoldIsGone(t *testing.T) {
	s := newServer(t)
	id := s.book("alice", "A1")

	s.clock.advance(entity.HoldDuration + time.Minute)

	code, env := s.do(http.MethodPost, "/api/bookings/"+id+"/confirm-payment", "alice", utils.RoleCustomer, nil)
	assert.Equal(t, http.StatusGone, code)
	assert.Equal(t, "BOOKING_EXPIRED", env.Errors.Code)

	code, env = s.do(http.MethodGet, "/api/showtimes/"+usecase.DemoShowtimeID+"/availability", "", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"available":10`)
}

func TestRouter_AdminCreatesShowtime(t *testing.T) {
	s := newServer(t)
	body := map[string]any{
		"movie_id":       "movie-9",
		"screen_id":      "screen-2",
		"starts_at":      s.clock.Now().Add(24 * time.Hour),
		"ends_at":        s.clock.Now().Add(26 * time.Hour),
		"price_per_seat": 40000,
		"rows":           2,
		"columns":        5,
	}

	code, _ := s.do(http.MethodPost, "/api/admin/showtimes", "alice", utils.RoleCustomer, body)
	assert.Equal(t, http.StatusForbidden, code)

	code, env := s.do(http.MethodPost, "/api/admin/showtimes", "root", utils.RoleAdmin, body)
	assert.Equal(t, http.StatusCreated, code)
	assert.Contains(t, string(env.Data), `"capacity":10`)

	delete(body, "rows")
	code, env = s.do(http.MethodPost, "/api/admin/showtimes", "root", utils.RoleAdmin, body)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_REQUEST", env.Errors.Code)
}
