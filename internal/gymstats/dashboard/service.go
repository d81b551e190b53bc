package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/gymdash/internal/gymstats/analytics"
	"github.com/2beens/gymdash/internal/gymstats/records"
	"github.com/2beens/gymdash/internal/telemetry/metrics"
	"github.com/2beens/gymdash/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=dashboard_test

// ErrLoadFailed is returned when any input of a refresh could not be fetched.
// Nothing is computed nor published in that case.
var ErrLoadFailed = errors.New("failed to load dashboard data")

const (
	outcomePublished     = "published"
	outcomeStale         = "stale"
	outcomeLoadFailed    = "load_failed"
	outcomePublishFailed = "publish_failed"
)

// MaxSnapshotBytes bounds one encoded published snapshot. A snapshot of a
// fully scheduled week stays well below it.
const MaxSnapshotBytes = 64 * 1024

// NewSnapshotCache allocates the cache published snapshots are kept in.
// freecache refuses entries larger than 1/1024 of its size, so the cache
// must hold at least 1024 snapshots of MaxSnapshotBytes.
func NewSnapshotCache(sizeMB int) (*freecache.Cache, error) {
	size := sizeMB * 1024 * 1024
	if size/1024 < MaxSnapshotBytes {
		return nil, fmt.Errorf("snapshot cache of %d MB is too small, need at least %d MB",
			sizeMB, MaxSnapshotBytes*1024/(1024*1024))
	}
	return freecache.NewCache(size), nil
}

type recordsStore interface {
	WorkoutRecords(ctx context.Context, userID string) ([]records.WorkoutRecord, error)
	RoutineSessions(ctx context.Context, userID string) ([]records.RoutineSession, error)
	RoutineSchedules(ctx context.Context, userID string) ([]records.RoutineSchedule, error)
	Routines(ctx context.Context, userID string) ([]records.Routine, error)
	UserProfile(ctx context.Context, userID string) (*records.UserProfile, error)
}

type NewServiceParams struct {
	Store          recordsStore
	Cache          *freecache.Cache
	SnapshotTTL    time.Duration
	MetricsManager *metrics.Manager
	// defaults to time.Now
	Now func() time.Time
}

// Service refreshes and publishes dashboard snapshots.
//
// Every refresh takes a new generation number for its user. The snapshot is
// published only if no later refresh (or write invalidation) for the same user
// happened in the meantime, so a slow refresh never overwrites a newer result.
// Generation numbers are unique across users and a user is tracked only while
// a refresh of theirs is in flight.
type Service struct {
	store          recordsStore
	cache          *freecache.Cache
	ttlSeconds     int
	metricsManager *metrics.Manager
	now            func() time.Time

	// guards generations and the publish step
	mu             sync.Mutex
	lastGeneration uint64
	generations    map[string]uint64
}

type RefreshResult struct {
	Snapshot  *analytics.Snapshot
	Location  *time.Location
	Published bool
}

// publishedSnapshot is a cached snapshot tagged with the zone and the local
// calendar date it was computed in.
type publishedSnapshot struct {
	Location string              `json:"location"`
	Date     string              `json:"date"`
	Snapshot *analytics.Snapshot `json:"snapshot"`
}

func NewService(params NewServiceParams) *Service {
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:          params.Store,
		cache:          params.Cache,
		ttlSeconds:     int(params.SnapshotTTL.Seconds()),
		metricsManager: params.MetricsManager,
		now:            now,
		generations:    make(map[string]uint64),
	}
}

// Refresh fetches every input of the user, computes a snapshot as of now in loc
// and publishes it unless a newer refresh started meanwhile.
func (s *Service) Refresh(ctx context.Context, userID string, loc *time.Location) (_ *RefreshResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.dashboard.refresh")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user", userID))
	span.SetAttributes(attribute.String("location", loc.String()))

	generation := s.nextGeneration(userID)
	span.SetAttributes(attribute.Int64("generation", int64(generation)))

	in, err := s.load(ctx, userID)
	if err != nil {
		s.release(userID, generation)
		s.metricsManager.CounterDashboardRefresh.WithLabelValues(outcomeLoadFailed).Inc()
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	now := s.now().In(loc)
	start := time.Now()
	snapshot := analytics.ComputeSnapshot(in, now)
	s.metricsManager.HistSnapshotCompute.Observe(time.Since(start).Seconds())

	published, publishErr := s.publishIfLatest(userID, generation, loc, analytics.FormatDate(now), snapshot)
	switch {
	case publishErr != nil:
		// the snapshot is still valid for this caller
		log.Errorf("publish dashboard snapshot of [%s]: %s", userID, publishErr)
		s.metricsManager.CounterDashboardRefresh.WithLabelValues(outcomePublishFailed).Inc()
	case published:
		s.metricsManager.CounterDashboardRefresh.WithLabelValues(outcomePublished).Inc()
	default:
		log.Debugf("dashboard refresh of [%s], generation [%d] superseded, not published", userID, generation)
		s.metricsManager.CounterDashboardRefresh.WithLabelValues(outcomeStale).Inc()
	}
	span.SetAttributes(attribute.Bool("published", published))

	return &RefreshResult{
		Snapshot:  snapshot,
		Location:  loc,
		Published: published,
	}, nil
}

// Latest returns the published snapshot of the user if it was computed in loc
// on the current local date of loc. A snapshot from a past day is a miss.
func (s *Service) Latest(userID string, loc *time.Location) (*analytics.Snapshot, bool) {
	cached, err := s.cache.Get([]byte(userID))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Errorf("get published snapshot of [%s]: %s", userID, err)
		}
		s.metricsManager.CounterSnapshotCache.WithLabelValues("miss").Inc()
		return nil, false
	}

	var p publishedSnapshot
	if err := json.Unmarshal(cached, &p); err != nil {
		log.Errorf("unmarshal published snapshot of [%s]: %s", userID, err)
		s.metricsManager.CounterSnapshotCache.WithLabelValues("miss").Inc()
		return nil, false
	}
	if p.Location != loc.String() || p.Date != analytics.FormatDate(s.now().In(loc)) {
		s.metricsManager.CounterSnapshotCache.WithLabelValues("miss").Inc()
		return nil, false
	}

	s.metricsManager.CounterSnapshotCache.WithLabelValues("hit").Inc()
	return p.Snapshot, true
}

// Get returns the published snapshot, refreshing it when missing or when forced.
func (s *Service) Get(ctx context.Context, userID string, loc *time.Location, forceRefresh bool) (*analytics.Snapshot, error) {
	if !forceRefresh {
		if snapshot, ok := s.Latest(userID, loc); ok {
			return snapshot, nil
		}
	}
	res, err := s.Refresh(ctx, userID, loc)
	if err != nil {
		return nil, err
	}
	return res.Snapshot, nil
}

// Invalidate drops the published snapshot of the user and supersedes any
// refresh still in flight, since it may have read data older than the write.
func (s *Service) Invalidate(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// in-flight refreshes no longer match and will not publish
	delete(s.generations, userID)
	s.cache.Del([]byte(userID))
	log.Tracef("dashboard of [%s] invalidated", userID)
}

func (s *Service) nextGeneration(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastGeneration++
	s.generations[userID] = s.lastGeneration
	return s.lastGeneration
}

// release stops tracking the user if generation is still their latest refresh.
func (s *Service) release(userID string, generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generations[userID] == generation {
		delete(s.generations, userID)
	}
}

func (s *Service) publishIfLatest(
	userID string,
	generation uint64,
	loc *time.Location,
	date string,
	snapshot *analytics.Snapshot,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generations[userID] != generation {
		return false, nil
	}
	delete(s.generations, userID)

	snapshotJson, err := json.Marshal(publishedSnapshot{
		Location: loc.String(),
		Date:     date,
		Snapshot: snapshot,
	})
	if err != nil {
		return false, fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.cache.Set([]byte(userID), snapshotJson, s.ttlSeconds); err != nil {
		return false, fmt.Errorf("cache set: %w", err)
	}
	return true, nil
}

// load fetches all inputs of one refresh concurrently. Any failure fails the whole load.
func (s *Service) load(ctx context.Context, userID string) (analytics.Inputs, error) {
	var in analytics.Inputs
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		if in.Workouts, err = s.store.WorkoutRecords(gCtx, userID); err != nil {
			return fmt.Errorf("workout records: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if in.Sessions, err = s.store.RoutineSessions(gCtx, userID); err != nil {
			return fmt.Errorf("routine sessions: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if in.Schedules, err = s.store.RoutineSchedules(gCtx, userID); err != nil {
			return fmt.Errorf("routine schedules: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if in.Routines, err = s.store.Routines(gCtx, userID); err != nil {
			return fmt.Errorf("routines: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if in.Profile, err = s.store.UserProfile(gCtx, userID); err != nil {
			return fmt.Errorf("user profile: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return analytics.Inputs{}, err
	}
	return in, nil
}
