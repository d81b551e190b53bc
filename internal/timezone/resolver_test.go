package timezone_test

import (
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/gymdash/internal/timezone"
	"github.com/2beens/gymdash/pkg"

	"github.com/go-redis/redismock/v8"
	"github.com/ipinfo/go/v2/ipinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/go-redis/redis/v8/internal/pool.(*ConnPool).reaper"))
}

const (
	testIP    = "81.2.69.160"
	ipTTL     = 7 * 24 * time.Hour
	ipInfoRes = `{
	  "ip": "81.2.69.160",
	  "city": "Palma",
	  "region": "Balearic Islands",
	  "country": "ES",
	  "loc": "39.5680,2.6835",
	  "postal": "07198",
	  "timezone": "Europe/Madrid"
	}`
)

type stubLookup struct {
	calls    int
	timezone string
	err      error
}

func (s *stubLookup) GetIPInfo(ip net.IP) (*ipinfo.Core, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &ipinfo.Core{IP: ip, Timezone: s.timezone}, nil
}

func newRequest(t *testing.T, target string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = testIP + ":51234"
	return req
}

func TestResolver_ExplicitZone(t *testing.T) {
	lookup := &stubLookup{timezone: "Asia/Tokyo"}
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	resolver := timezone.NewResolver(paris, lookup, nil)

	req := newRequest(t, "/dashboard?tz=America/New_York")
	req.Header.Set(timezone.Header, "Europe/Berlin")
	assert.Equal(t, "America/New_York", resolver.Resolve(req).String())

	req = newRequest(t, "/dashboard")
	req.Header.Set(timezone.Header, "Europe/Berlin")
	assert.Equal(t, "Europe/Berlin", resolver.Resolve(req).String())

	// unknown query zone falls through to the header
	req = newRequest(t, "/dashboard?tz=Mars/Olympus")
	req.Header.Set(timezone.Header, "Europe/Berlin")
	assert.Equal(t, "Europe/Berlin", resolver.Resolve(req).String())

	// no redis, no ip lookup
	req = newRequest(t, "/dashboard?tz=Nowhere")
	assert.Equal(t, paris, resolver.Resolve(req))
	assert.Zero(t, lookup.calls)
}

func TestResolver_ByIP(t *testing.T) {
	db, mock := redismock.NewClientMock()
	lookup := &stubLookup{timezone: "Europe/Madrid"}
	resolver := timezone.NewResolver(time.UTC, lookup, db)

	mock.ExpectGet(timezone.IpKey(testIP)).RedisNil()
	mock.ExpectSet(timezone.IpKey(testIP), "Europe/Madrid", ipTTL).SetVal("OK")
	assert.Equal(t, "Europe/Madrid", resolver.Resolve(newRequest(t, "/dashboard")).String())
	assert.Equal(t, 1, lookup.calls)

	// second time from redis
	mock.ExpectGet(timezone.IpKey(testIP)).SetVal("Europe/Madrid")
	assert.Equal(t, "Europe/Madrid", resolver.Resolve(newRequest(t, "/dashboard")).String())
	assert.Equal(t, 1, lookup.calls)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolver_ByIP_Failures(t *testing.T) {
	db, mock := redismock.NewClientMock()
	lookup := &stubLookup{err: errors.New("429 too many requests")}
	resolver := timezone.NewResolver(time.UTC, lookup, db)

	mock.ExpectGet(timezone.IpKey(testIP)).RedisNil()
	assert.Equal(t, time.UTC, resolver.Resolve(newRequest(t, "/dashboard")))

	// redis down still asks ipinfo
	lookup.err = nil
	lookup.timezone = "Europe/Madrid"
	mock.ExpectGet(timezone.IpKey(testIP)).SetErr(errors.New("connection refused"))
	mock.ExpectSet(timezone.IpKey(testIP), "Europe/Madrid", ipTTL).SetErr(errors.New("connection refused"))
	assert.Equal(t, "Europe/Madrid", resolver.Resolve(newRequest(t, "/dashboard")).String())

	// no zone known for the ip
	lookup.timezone = ""
	mock.ExpectGet(timezone.IpKey(testIP)).RedisNil()
	assert.Equal(t, time.UTC, resolver.Resolve(newRequest(t, "/dashboard")))

	// garbage cached
	mock.ExpectGet(timezone.IpKey(testIP)).SetVal("Not/AZone")
	assert.Equal(t, time.UTC, resolver.Resolve(newRequest(t, "/dashboard")))

	assert.Equal(t, 3, lookup.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolver_LocalRequest(t *testing.T) {
	db, mock := redismock.NewClientMock()
	lookup := &stubLookup{timezone: "Europe/Madrid"}
	resolver := timezone.NewResolver(nil, lookup, db)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.RemoteAddr = "127.0.0.1:40000"
	ip, err := pkg.ReadUserIP(req)
	require.NoError(t, err)
	require.Equal(t, pkg.LocalhostIP, ip)

	assert.Equal(t, time.UTC, resolver.Resolve(req))
	assert.Zero(t, lookup.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIpInfoClient(t *testing.T) {
	apiCalls := 0
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		if r.Method == http.MethodGet && r.URL.Path == "/"+testIP {
			pkg.WriteResponse(w, pkg.ContentType.JSON, ipInfoRes, http.StatusOK)
			return
		}
		http.Error(w, "unexpected path/method", http.StatusBadRequest)
	}))
	defer testServer.Close()

	client, err := timezone.NewIpInfoClient(testServer.Client(), "dummy-token", testServer.URL)
	require.NoError(t, err)

	db, mock := redismock.NewClientMock()
	resolver := timezone.NewResolver(time.UTC, client, db)

	mock.ExpectGet(timezone.IpKey(testIP)).RedisNil()
	mock.ExpectSet(timezone.IpKey(testIP), "Europe/Madrid", ipTTL).SetVal("OK")
	loc, err := resolver.ByIP(t.Context(), testIP)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Madrid", loc.String())
	assert.Equal(t, 1, apiCalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}
