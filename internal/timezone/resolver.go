package timezone

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	// containers often ship without a zoneinfo database
	_ "time/tzdata"

	"github.com/2beens/gymdash/internal/telemetry/tracing"
	"github.com/2beens/gymdash/pkg"

	"github.com/go-redis/redis/v8"
	"github.com/ipinfo/go/v2/ipinfo"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"
)

const (
	QueryParam = "tz"
	Header     = "X-Timezone"

	ipTimezoneTTL = 7 * 24 * time.Hour
)

type ipLookup interface {
	GetIPInfo(ip net.IP) (*ipinfo.Core, error)
}

// Resolver picks the time zone a request should be computed in.
type Resolver struct {
	defaultLocation *time.Location
	ipLookup        ipLookup
	redisClient     *redis.Client
	// concurrent requests of one client share a single lookup
	lookups singleflight.Group
}

// NewIpInfoClient creates an ipinfo client. An empty baseURL means the public API.
func NewIpInfoClient(httpClient *http.Client, token, baseURL string) (*ipinfo.Client, error) {
	client := ipinfo.NewClient(httpClient, nil, token)
	if baseURL != "" {
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("parse ipinfo base url: %w", err)
		}
		client.BaseURL = u
	}
	return client, nil
}

// NewResolver creates a resolver. ipLookup and redisClient are optional,
// without them only explicit zones and the default are used.
func NewResolver(defaultLocation *time.Location, ipLookup ipLookup, redisClient *redis.Client) *Resolver {
	if defaultLocation == nil {
		defaultLocation = time.UTC
	}
	return &Resolver{
		defaultLocation: defaultLocation,
		ipLookup:        ipLookup,
		redisClient:     redisClient,
	}
}

// Resolve never fails: an unknown or unresolvable zone gives the default location.
// Order: tz query param, X-Timezone header, client IP lookup, default.
func (tz *Resolver) Resolve(r *http.Request) *time.Location {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "timezone.resolve")
	defer span.End()

	for _, candidate := range []struct{ source, name string }{
		{source: "query", name: r.URL.Query().Get(QueryParam)},
		{source: "header", name: r.Header.Get(Header)},
	} {
		if candidate.name == "" {
			continue
		}
		loc, err := time.LoadLocation(candidate.name)
		if err != nil {
			log.Debugf("ignoring time zone [%s] from %s: %s", candidate.name, candidate.source, err)
			continue
		}
		span.SetAttributes(attribute.String("timezone.source", candidate.source))
		return loc
	}

	userIp, err := pkg.ReadUserIP(r)
	if err != nil {
		log.Debugf("time zone by ip: %s", err)
		return tz.defaultLocation
	}
	if userIp == pkg.LocalhostIP {
		return tz.defaultLocation
	}
	span.SetAttributes(attribute.String("user.ip", userIp))

	loc, err := tz.ByIP(ctx, userIp)
	if err != nil {
		log.Warnf("time zone of ip [%s]: %s", userIp, err)
		return tz.defaultLocation
	}
	span.SetAttributes(attribute.String("timezone.source", "ip"))
	return loc
}

// ByIP looks up the time zone of ip, caching the result in redis.
func (tz *Resolver) ByIP(ctx context.Context, ip string) (_ *time.Location, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "timezone.byIp")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if tz.ipLookup == nil || tz.redisClient == nil {
		return nil, errors.New("ip lookup not configured")
	}

	name, err, _ := tz.lookups.Do(ip, func() (any, error) {
		return tz.ipTimezoneName(ctx, ip)
	})
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(name.(string))
	if err != nil {
		return nil, fmt.Errorf("load location: %w", err)
	}
	return loc, nil
}

func (tz *Resolver) ipTimezoneName(ctx context.Context, ip string) (string, error) {
	key := IpKey(ip)
	cached, err := tz.redisClient.Get(ctx, key).Result()
	switch {
	case err == nil && cached != "":
		log.Tracef("found time zone for [%s] in redis cache", ip)
		return cached, nil
	case err != nil && !errors.Is(err, redis.Nil):
		// continue with the lookup
		log.Errorf("failed to get time zone of [%s] from redis: %s", ip, err)
	}

	log.Debugf("will ask ipinfo for time zone of [%s]", ip)
	info, err := tz.ipLookup.GetIPInfo(net.ParseIP(ip))
	if err != nil {
		return "", fmt.Errorf("ipinfo lookup: %w", err)
	}
	if info == nil || info.Timezone == "" {
		return "", fmt.Errorf("no time zone known for [%s]", ip)
	}

	if err := tz.redisClient.Set(ctx, key, info.Timezone, ipTimezoneTTL).Err(); err != nil {
		log.Errorf("failed to cache time zone of [%s] in redis: %s", ip, err)
	}
	return info.Timezone, nil
}

func IpKey(ip string) string {
	return fmt.Sprintf("ip-tz::%s", ip)
}
