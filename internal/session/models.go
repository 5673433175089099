package session

import (
	"sync"

	"backend-mapfit/internal/mapview"
	"backend-mapfit/internal/store"
	"backend-mapfit/internal/workout"
)

type State string

const (
	AwaitingLocation State = "awaiting_location"
	MapReady         State = "map_ready"
)

// Session holds the controller state of one browser tab: the map view, the
// form lifecycle, and the user's workout store. It lives in memory for the
// duration of the session; the store alone survives across sessions.
type Session struct {
	ID     string
	UserID string

	mu          sync.Mutex
	state       State
	formVisible bool
	pending     *workout.Coords
	alert       string

	store *store.Store
	view  *mapview.View
}

// FormInput carries the raw form field values. Everything arrives as text
// and is coerced to numbers server-side, mirroring how the form surface
// reads its inputs.
type FormInput struct {
	Type      string `json:"type"`
	Distance  string `json:"distance"`
	Duration  string `json:"duration"`
	Cadence   string `json:"cadence"`
	Elevation string `json:"elevation"`
}

type LocationReport struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Denied    bool     `json:"denied"`
}

type MapSnapshot struct {
	Ready  bool           `json:"ready"`
	Center workout.Coords `json:"center"`
	Zoom   int            `json:"zoom"`
}

type Snapshot struct {
	ID            string          `json:"id"`
	State         State           `json:"state"`
	FormVisible   bool            `json:"form_visible"`
	PendingCoords *workout.Coords `json:"pending_coords,omitempty"`
	Alert         string          `json:"alert,omitempty"`
	Map           MapSnapshot     `json:"map"`
	WorkoutCount  int             `json:"workout_count"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}
