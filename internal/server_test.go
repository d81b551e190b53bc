package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/gymdash/internal/auth"
	"github.com/2beens/gymdash/internal/config"
	"github.com/2beens/gymdash/internal/gymstats/dashboard"
	"github.com/2beens/gymdash/internal/gymstats/records"
	"github.com/2beens/gymdash/internal/telemetry/metrics"
	"github.com/2beens/gymdash/internal/timezone"

	"github.com/coocood/freecache"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const testToken = "test-token"

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction(
			"github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper",
		),
	)
}

func newTestServer(rdb *redis.Client) *Server {
	store := records.NewTestStore()
	metricsManager := metrics.NewTestManager()
	return &Server{
		config: &config.Config{
			LoginRateLimit: 10,
			MetricsPort:    9091,
		},
		versionInfo:  "test-version",
		redisClient:  rdb,
		recordsStore: store,
		dashboardService: dashboard.NewService(dashboard.NewServiceParams{
			Store:          store,
			Cache:          freecache.NewCache(64 * 1024 * 1024),
			SnapshotTTL:    time.Minute,
			MetricsManager: metricsManager,
		}),
		tzResolver:     timezone.NewResolver(time.UTC, nil, nil),
		authService:    auth.NewAuthService(&auth.Admin{Username: "admin"}, auth.DefaultTTL, rdb),
		loginChecker:   auth.NewLoginChecker(auth.DefaultTTL, rdb),
		metricsManager: metricsManager,
	}
}

func newRequest(t *testing.T, method, path string, body io.Reader) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set(auth.TokenHeader, testToken)
	return req
}

func expectLoggedIn(mock redismock.ClientMock) {
	mock.ExpectGet("gymdash-session||" + testToken).SetVal(fmt.Sprintf("%d", time.Now().Unix()))
}

func TestServer_Routes(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()
	router := newTestServer(rdb).routerSetup()

	// root is open
	req := newRequest(t, http.MethodGet, "/", nil)
	req.Header.Del(auth.TokenHeader)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	// unknown user agent
	req = newRequest(t, http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "some-bot")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// dashboard needs a session
	req = newRequest(t, http.MethodGet, "/gymstats/u/u1/dashboard", nil)
	req.Header.Del(auth.TokenHeader)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	mock.ExpectGet("gymdash-session||" + testToken).RedisNil()
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, newRequest(t, http.MethodGet, "/gymstats/u/u1/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	expectLoggedIn(mock)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, newRequest(t, http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServer_Health(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()
	server := newTestServer(rdb)
	router := server.routerSetup()

	mock.ExpectPing().SetVal("PONG")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, newRequest(t, http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)

	mock.ExpectPing().SetErr(fmt.Errorf("connection refused"))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, newRequest(t, http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServer_WriteInvalidatesDashboard(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	defer rdb.Close()
	router := newTestServer(rdb).routerSetup()

	getDashboard := func() dashboard.Response {
		t.Helper()
		expectLoggedIn(mock)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, newRequest(t, http.MethodGet, "/gymstats/u/u1/dashboard?tz=UTC", nil))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var resp dashboard.Response
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		return resp
	}

	assert.Equal(t, 0, getDashboard().Stats.Workouts)

	workout, err := json.Marshal(records.WorkoutRecord{
		ID:       "w1",
		Date:     time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Exercise: "Bench Press",
		Series:   []records.Series{{Weight: 80, Reps: 5}},
	})
	require.NoError(t, err)

	expectLoggedIn(mock)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, newRequest(t, http.MethodPost, "/gymstats/u/u1/workouts", bytes.NewReader(workout)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	// the published snapshot was dropped, so the next read recomputes
	resp := getDashboard()
	assert.Equal(t, 1, resp.Stats.Workouts)
	assert.Equal(t, 400, resp.Stats.Volume)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestServer_ConnStateMetrics(t *testing.T) {
	server := &Server{metricsManager: metrics.NewTestManager()}
	server.connStateMetrics(nil, http.StateNew)
	server.connStateMetrics(nil, http.StateNew)
	server.connStateMetrics(nil, http.StateActive)
	server.connStateMetrics(nil, http.StateClosed)

	assert.Equal(t, float64(1), testutil.ToFloat64(server.metricsManager.GaugeRequests))
}
