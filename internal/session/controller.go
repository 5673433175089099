package session

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"sync"

	"backend-mapfit/internal/mapview"
	"backend-mapfit/internal/shared/geo"
	"backend-mapfit/internal/store"
	"backend-mapfit/internal/stream"
	"backend-mapfit/internal/workout"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const geolocationAlert = "Could not get your position"
const invalidInputAlert = "Inputs have to be positive numbers!"

var (
	ErrNotFound     = errors.New("session not found")
	ErrForbidden    = errors.New("session belongs to another user")
	ErrMapNotReady  = errors.New("map not initialized")
	ErrFormHidden   = errors.New("no pending map click")
	ErrInvalidInput = errors.New(invalidInputAlert)
)

// Service creates sessions and drives their state machine:
// awaiting_location -> map_ready, with the form toggling between hidden and
// visible inside map_ready. Each handler call runs to completion under the
// session lock, so appends are atomic with respect to one another.
type Service struct {
	rdb  *redis.Client
	hub  *stream.Hub
	zoom int

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewService(rdb *redis.Client, hub *stream.Hub, defaultZoom int) *Service {
	if defaultZoom <= 0 {
		defaultZoom = 13
	}
	return &Service{
		rdb:      rdb,
		hub:      hub,
		zoom:     defaultZoom,
		sessions: map[string]*Session{},
	}
}

// Start opens a session for userID. The persisted workout collection is
// loaded up front, so the list is renderable before the map ever appears.
func (s *Service) Start(ctx context.Context, userID string) *Session {
	id := uuid.NewString()
	sess := &Session{
		ID:     id,
		UserID: userID,
		state:  AwaitingLocation,
		store:  store.Open(ctx, s.rdb, userID),
		view:   mapview.NewView(s.hub, id),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return sess
}

func (s *Service) Get(id, userID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if sess.UserID != userID {
		return nil, ErrForbidden
	}
	return sess, nil
}

// ReportLocation consumes the browser's geolocation result. Success
// initializes the map at the reported coordinates and replays a marker for
// every restored record; denial records an alert and leaves the map
// unusable while the workout list keeps working.
func (s *Service) ReportLocation(sess *Session, report LocationReport) Snapshot {
	sess.mu.Lock()
	if report.Denied || report.Latitude == nil || report.Longitude == nil {
		sess.alert = geolocationAlert
		sess.mu.Unlock()
		return sess.Snapshot()
	}

	center := workout.Coords{*report.Latitude, *report.Longitude}
	sess.state = MapReady
	sess.alert = ""
	view := sess.view
	records := sess.store.All()
	sess.mu.Unlock()

	view.Init(center, s.zoom)
	for _, r := range records {
		view.AddMarker(r)
	}
	return sess.Snapshot()
}

// Click stores the clicked coordinates and reveals the form.
func (s *Service) Click(sess *Session, coords workout.Coords) (Snapshot, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state != MapReady {
		return Snapshot{}, ErrMapNotReady
	}
	sess.pending = &coords
	sess.formVisible = true
	sess.alert = ""
	return sess.snapshotLocked(), nil
}

// Submit validates the form, builds the record, appends it to the store
// (which persists), places the marker, and hides the form. On invalid input
// nothing is mutated and the form stays visible.
func (s *Service) Submit(ctx context.Context, sess *Session, in FormInput) (workout.Record, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.state != MapReady {
		return workout.Record{}, ErrMapNotReady
	}
	if !sess.formVisible || sess.pending == nil {
		return workout.Record{}, ErrFormHidden
	}

	kind, distance, duration, kindValue, err := parseSubmission(in)
	if err != nil {
		sess.alert = invalidInputAlert
		return workout.Record{}, err
	}

	rec := workout.New(*sess.pending, distance, duration, kindValue, kind)
	if err := sess.store.Append(ctx, rec); err != nil {
		return workout.Record{}, err
	}

	sess.view.AddMarker(rec)
	sess.formVisible = false
	sess.pending = nil
	sess.alert = ""
	return rec, nil
}

// Workouts returns the ordered list regardless of map state.
func (s *Service) Workouts(sess *Session) []workout.Record {
	return sess.store.All()
}

// Nearby filters the stored workouts to those within radiusKm of the given
// point.
func (s *Service) Nearby(sess *Session, lat, lng, radiusKm float64) []workout.Record {
	var out []workout.Record
	for _, r := range sess.store.All() {
		if geo.HaversineKm(lat, lng, r.Coords.Lat(), r.Coords.Lng()) <= radiusKm {
			out = append(out, r)
		}
	}
	return out
}

// Focus handles a list-item click: look the record up and recenter the map
// on it. An unknown id is a silent no-op.
func (s *Service) Focus(sess *Session, workoutID string) (workout.Record, bool) {
	rec, ok := sess.store.FindByID(workoutID)
	if !ok {
		return workout.Record{}, false
	}
	sess.view.Recenter(rec.Coords, s.zoom, true)
	return rec, true
}

// Reset clears the in-memory collection and deletes the persisted key. The
// browser is expected to reload afterwards.
func (s *Service) Reset(ctx context.Context, sess *Session) error {
	return sess.store.Clear(ctx)
}

func (sess *Session) snapshotLocked() Snapshot {
	center, zoom := sess.view.Center()
	snap := Snapshot{
		ID:           sess.ID,
		State:        sess.state,
		FormVisible:  sess.formVisible,
		Alert:        sess.alert,
		Map:          MapSnapshot{Ready: sess.view.Ready(), Center: center, Zoom: zoom},
		WorkoutCount: sess.store.Len(),
	}
	if sess.pending != nil {
		coords := *sess.pending
		snap.PendingCoords = &coords
	}
	return snap
}

// parseSubmission coerces the raw field values and applies the validation
// rule: every field for the chosen kind must be finite, distance and
// duration strictly positive. Cadence must be non-negative; elevation gain
// may be negative (descents).
func parseSubmission(in FormInput) (workout.Kind, float64, float64, float64, error) {
	kind, ok := workout.ParseKind(in.Type)
	if !ok {
		return "", 0, 0, 0, ErrInvalidInput
	}

	distance := parseNum(in.Distance)
	duration := parseNum(in.Duration)

	var kindValue float64
	switch kind {
	case workout.Running:
		kindValue = parseNum(in.Cadence)
		if !workout.AllFinite(distance, duration, kindValue) ||
			!workout.AllPositive(distance, duration) || kindValue < 0 {
			return "", 0, 0, 0, ErrInvalidInput
		}
	case workout.Cycling:
		kindValue = parseNum(in.Elevation)
		if !workout.AllFinite(distance, duration, kindValue) ||
			!workout.AllPositive(distance, duration) {
			return "", 0, 0, 0, ErrInvalidInput
		}
	}
	return kind, distance, duration, kindValue, nil
}

func parseNum(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
