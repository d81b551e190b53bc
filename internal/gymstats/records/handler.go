package records

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/gymdash/internal/telemetry/metrics"
	"github.com/2beens/gymdash/internal/telemetry/tracing"
	"github.com/2beens/gymdash/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const maxImportBodyBytes = 10 << 20

// ChangeListener is notified after any successful write of a user's collections.
type ChangeListener func(userID string)

type SaveResponse struct {
	UserID string `json:"userId"`
	Saved  int    `json:"saved"`
}

type Handler struct {
	store          Store
	metricsManager *metrics.Manager
	listeners      []ChangeListener
}

func NewHandler(store Store, metricsManager *metrics.Manager, listeners ...ChangeListener) *Handler {
	return &Handler{
		store:          store,
		metricsManager: metricsManager,
		listeners:      listeners,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/workouts", handler.HandleAddWorkout).Methods("POST", "OPTIONS").Name("add-workout")
	router.HandleFunc("/sessions", handler.HandleAddSession).Methods("POST", "OPTIONS").Name("add-session")
	router.HandleFunc("/schedules", handler.HandleSaveSchedules).Methods("PUT", "OPTIONS").Name("save-schedules")
	router.HandleFunc("/routines", handler.HandleSaveRoutines).Methods("PUT", "OPTIONS").Name("save-routines")
	router.HandleFunc("/profile", handler.HandleSaveProfile).Methods("PUT", "OPTIONS").Name("save-profile")
	router.HandleFunc("/import", handler.HandleImport).Methods("POST", "OPTIONS").Name("import")
	router.HandleFunc("/export", handler.HandleExport).Methods("GET").Name("export")
}

func (handler *Handler) notify(userID, collection string, count int) {
	handler.metricsManager.CounterRecordsWritten.WithLabelValues(collection).Add(float64(count))
	for _, l := range handler.listeners {
		l(userID)
	}
}

func (handler *Handler) HandleAddWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.add_workout")
	defer span.End()

	userID := mux.Vars(r)["user"]
	span.SetAttributes(attribute.String("user", userID))

	var record WorkoutRecord
	if !decodeJSONBody(w, r, &record) {
		return
	}
	if err := record.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, err := handler.store.AddWorkoutRecord(ctx, userID, record)
	if errors.Is(err, ErrAlreadyExists) {
		http.Error(w, "error, workout already exists", http.StatusConflict)
		return
	}
	if err != nil {
		log.Errorf("add workout for [%s]: %s", userID, err)
		http.Error(w, "error, failed to add workout", http.StatusInternalServerError)
		return
	}

	log.Debugf("workout [%s] added for [%s]", added.ID, userID)
	handler.notify(userID, collectionWorkouts, 1)
	pkg.WriteJSON(w, added, http.StatusCreated)
}

func (handler *Handler) HandleAddSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.add_session")
	defer span.End()

	userID := mux.Vars(r)["user"]
	span.SetAttributes(attribute.String("user", userID))

	var session RoutineSession
	if !decodeJSONBody(w, r, &session) {
		return
	}
	if err := session.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	added, err := handler.store.AddRoutineSession(ctx, userID, session)
	if errors.Is(err, ErrAlreadyExists) {
		http.Error(w, "error, session already exists", http.StatusConflict)
		return
	}
	if err != nil {
		log.Errorf("add session for [%s]: %s", userID, err)
		http.Error(w, "error, failed to add session", http.StatusInternalServerError)
		return
	}

	log.Debugf("session [%s] of routine [%s] added for [%s]", added.ID, added.RoutineID, userID)
	handler.notify(userID, collectionSessions, 1)
	pkg.WriteJSON(w, added, http.StatusCreated)
}

func (handler *Handler) HandleSaveSchedules(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.save_schedules")
	defer span.End()

	userID := mux.Vars(r)["user"]
	span.SetAttributes(attribute.String("user", userID))

	var schedules []RoutineSchedule
	if !decodeJSONBody(w, r, &schedules) {
		return
	}
	for _, rs := range schedules {
		if err := rs.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := handler.store.SaveRoutineSchedules(ctx, userID, schedules); err != nil {
		log.Errorf("save schedules for [%s]: %s", userID, err)
		http.Error(w, "error, failed to save schedules", http.StatusInternalServerError)
		return
	}

	handler.notify(userID, collectionSchedules, len(schedules))
	pkg.WriteJSON(w, SaveResponse{UserID: userID, Saved: len(schedules)}, http.StatusOK)
}

func (handler *Handler) HandleSaveRoutines(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.save_routines")
	defer span.End()

	userID := mux.Vars(r)["user"]
	span.SetAttributes(attribute.String("user", userID))

	var routines []Routine
	if !decodeJSONBody(w, r, &routines) {
		return
	}
	for _, routine := range routines {
		if err := routine.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := handler.store.SaveRoutines(ctx, userID, routines); err != nil {
		log.Errorf("save routines for [%s]: %s", userID, err)
		http.Error(w, "error, failed to save routines", http.StatusInternalServerError)
		return
	}

	handler.notify(userID, collectionRoutines, len(routines))
	pkg.WriteJSON(w, SaveResponse{UserID: userID, Saved: len(routines)}, http.StatusOK)
}

func (handler *Handler) HandleSaveProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.save_profile")
	defer span.End()

	userID := mux.Vars(r)["user"]
	span.SetAttributes(attribute.String("user", userID))

	var profile UserProfile
	if !decodeJSONBody(w, r, &profile) {
		return
	}
	if err := profile.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := handler.store.SaveUserProfile(ctx, userID, profile); err != nil {
		log.Errorf("save profile for [%s]: %s", userID, err)
		http.Error(w, "error, failed to save profile", http.StatusInternalServerError)
		return
	}

	handler.notify(userID, collectionProfile, 1)
	pkg.WriteJSON(w, profile, http.StatusOK)
}

// HandleImport replaces all collections of the user with the posted export.
func (handler *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.import")
	defer span.End()

	userID := mux.Vars(r)["user"]
	span.SetAttributes(attribute.String("user", userID))

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBodyBytes)
	var export Export
	if !decodeJSONBody(w, r, &export) {
		return
	}
	export.UserID = userID
	if err := export.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := handler.store.Import(ctx, export); err != nil {
		log.Errorf("import for [%s]: %s", userID, err)
		http.Error(w, "error, failed to import", http.StatusInternalServerError)
		return
	}

	count := len(export.Workouts) + len(export.Sessions) + len(export.Schedules) + len(export.Routines)
	log.Debugf("imported [%d] records for [%s]", count, userID)
	handler.notify(userID, "import", count)
	pkg.WriteJSON(w, SaveResponse{UserID: userID, Saved: count}, http.StatusOK)
}

func (handler *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.records.export")
	defer span.End()

	userID := mux.Vars(r)["user"]
	span.SetAttributes(attribute.String("user", userID))

	export, err := ExportUser(ctx, handler.store, userID)
	if err != nil {
		log.Errorf("export for [%s]: %s", userID, err)
		http.Error(w, "error, failed to export", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, export, http.StatusOK)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if !pkg.IsJSON(r.Header.Get("Content-Type")) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		log.Tracef("unmarshal json body: %s", err)
		http.Error(w, "error, invalid json body", http.StatusBadRequest)
		return false
	}
	return true
}
