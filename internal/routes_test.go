package internal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"wagerd/internal/controllers"
	"wagerd/internal/services"
	"wagerd/internal/structures"
	"wagerd/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routesConfig() *structures.Config {
	return &structures.Config{
		Tracker: structures.TrackerConfig{
			OddsPolicy:      "fine",
			EmptySlipPolicy: "reject",
			MaxReaders:      10,
		},
	}
}

func newRouteMux(t *testing.T) *http.ServeMux {
	t.Helper()
	conf := routesConfig()
	clock := testutil.NewFixedClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	svc, err := services.NewTrackerService(conf, testutil.NewMockCache(), clock, &testutil.MockMetrics{})
	require.NoError(t, err)
	ac := controllers.NewApiController(&testutil.MockLogger{}, svc)

	mux := http.NewServeMux()
	for _, r := range InitRoutes(ac, conf).GetRoutes() {
		mux.Handle(r.Url, r.Handler)
	}
	return mux
}

func TestInitRoutes_RegistersEveryEndpoint(t *testing.T) {
	conf := routesConfig()
	svc, err := services.NewTrackerService(conf, testutil.NewMockCache(), nil, nil)
	require.NoError(t, err)
	ac := controllers.NewApiController(&testutil.MockLogger{}, svc)

	routes := InitRoutes(ac, conf).GetRoutes()

	urls := make([]string, len(routes))
	for i, r := range routes {
		urls[i] = r.Url
	}
	assert.ElementsMatch(t, []string{
		"/quote", "/slip", "/slip/engagement", "/slip/remove", "/confirm",
		"/commitments", "/schedule", "/status", "/session", "/engagement/progress",
		"/advance", "/forfeit", "/book/invalidate", "/settled",
	}, urls)
}

func TestInitRoutes_SlipServesGetAndPost(t *testing.T) {
	mux := newRouteMux(t)

	req := httptest.NewRequest(http.MethodPost, "/slip",
		strings.NewReader(`{"book":{"id":"b1","title":"Dune","totalPages":300},"timeframe":"1 Week","wager":"10"}`))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/slip", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"b1"`)
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	mux := newRouteMux(t)

	req := httptest.NewRequest(http.MethodPost, "/settled", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET", rr.Header().Get("Allow"))

	req = httptest.NewRequest(http.MethodGet, "/confirm", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	req = httptest.NewRequest(http.MethodDelete, "/slip", nil)
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET, POST", rr.Header().Get("Allow"))
}
