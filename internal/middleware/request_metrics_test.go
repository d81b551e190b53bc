package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/2beens/gymdash/internal/middleware"
	"github.com/2beens/gymdash/internal/telemetry/metrics"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestMetricsAndCleanup(t *testing.T) {
	metricsManager := metrics.NewTestManager()

	var body io.ReadCloser
	r := mux.NewRouter()
	r.HandleFunc("/gymstats/u/{user}/workouts", func(w http.ResponseWriter, req *http.Request) {
		body = req.Body
		w.WriteHeader(http.StatusCreated)
	}).Methods("POST").Name("add-workout")
	r.Use(middleware.RequestMetrics(metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.DrainAndCloseRequest())

	for _, user := range []string{"u1", "u2"} {
		req := httptest.NewRequest(http.MethodPost, "/gymstats/u/"+user+"/workouts", strings.NewReader(`{"exercise":"Squat"}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(metricsManager.CounterRequests.WithLabelValues("POST", "201")))
	// one series for both users
	assert.Equal(t, 1, testutil.CollectAndCount(metricsManager.HistogramRequestDuration))

	// drained by the cleanup middleware
	n, err := body.Read(make([]byte, 8))
	assert.Zero(t, n)
	assert.Error(t, err)
}
