package dashboard

import (
	"errors"
	"net/http"
	"time"

	"github.com/2beens/gymdash/internal/gymstats/analytics"
	"github.com/2beens/gymdash/internal/telemetry/tracing"
	"github.com/2beens/gymdash/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type locationResolver interface {
	Resolve(r *http.Request) *time.Location
}

type StatsResponse struct {
	Volume     int `json:"volume"`
	Workouts   int `json:"workouts"`
	Sessions   int `json:"sessions"`
	Activities int `json:"activities"`
	Streak     int `json:"streak"`
}

// Response is the dashboard as presented to clients. Volume is rounded here,
// never in the computation.
type Response struct {
	GeneratedAt     time.Time                 `json:"generatedAt"`
	Timezone        string                    `json:"timezone"`
	Week            analytics.Window          `json:"week"`
	Stats           StatsResponse             `json:"stats"`
	WeekProgress    analytics.WeekProgress    `json:"weekProgress"`
	Adherence       analytics.Adherence       `json:"adherence"`
	WeeklyChallenge analytics.WeeklyChallenge `json:"weeklyChallenge"`
	Today           analytics.TodayRoutines   `json:"today"`
	WeekRoutines    analytics.WeekRoutines    `json:"weekRoutines"`
}

func NewResponse(snapshot *analytics.Snapshot, loc *time.Location) Response {
	return Response{
		GeneratedAt: snapshot.GeneratedAt,
		Timezone:    loc.String(),
		Week:        snapshot.Week,
		Stats: StatsResponse{
			Volume:     snapshot.RoundedVolume(),
			Workouts:   snapshot.Stats.Workouts,
			Sessions:   snapshot.Stats.Sessions,
			Activities: snapshot.Stats.Activities,
			Streak:     snapshot.Stats.Streak,
		},
		WeekProgress:    snapshot.WeekProgress,
		Adherence:       snapshot.Adherence,
		WeeklyChallenge: snapshot.WeeklyChallenge,
		Today:           snapshot.Today,
		WeekRoutines:    snapshot.WeekRoutines,
	}
}

type Handler struct {
	service  *Service
	resolver locationResolver
}

func NewHandler(service *Service, resolver locationResolver) *Handler {
	return &Handler{
		service:  service,
		resolver: resolver,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/dashboard", handler.HandleGet).Methods("GET").Name("dashboard")
}

// HandleGet serves the published dashboard of the user, computing it when
// missing or when refresh=true is given.
func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.dashboard.get")
	defer span.End()

	userID := mux.Vars(r)["user"]
	if userID == "" {
		http.Error(w, "error, user empty", http.StatusBadRequest)
		return
	}
	forceRefresh := r.URL.Query().Get("refresh") == "true"
	loc := handler.resolver.Resolve(r)
	span.SetAttributes(attribute.String("user", userID))
	span.SetAttributes(attribute.Bool("refresh", forceRefresh))
	span.SetAttributes(attribute.String("location", loc.String()))

	snapshot, err := handler.service.Get(ctx, userID, loc, forceRefresh)
	if errors.Is(err, ErrLoadFailed) {
		log.Errorf("load dashboard of [%s]: %s", userID, err)
		http.Error(w, "error, failed to load dashboard data", http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		log.Errorf("get dashboard of [%s]: %s", userID, err)
		http.Error(w, "error, failed to get dashboard", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, NewResponse(snapshot, loc), http.StatusOK)
}
