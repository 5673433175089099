package mapview

import (
	"sync"

	"backend-mapfit/internal/stream"
	"backend-mapfit/internal/workout"
)

// Marker is the descriptor the browser needs to place a pin with its popup.
// Popups stay open and are tagged with a per-kind class for styling.
type Marker struct {
	WorkoutID    string         `json:"workout_id"`
	Coords       workout.Coords `json:"coords"`
	Popup        string         `json:"popup"`
	Class        string         `json:"class"`
	AutoClose    bool           `json:"autoClose"`
	CloseOnClick bool           `json:"closeOnClick"`
}

type Event struct {
	Type    string          `json:"type"` // "map_init", "marker", "recenter"
	Center  *workout.Coords `json:"center,omitempty"`
	Zoom    int             `json:"zoom,omitempty"`
	Animate bool            `json:"animate,omitempty"`
	Marker  *Marker         `json:"marker,omitempty"`
}

// View tracks the map state of one session and pushes every change to the
// session's stream. Until Init is called (geolocation success) the view is
// not ready and no markers can be placed.
type View struct {
	hub       *stream.Hub
	sessionID string

	mu      sync.Mutex
	ready   bool
	center  workout.Coords
	zoom    int
	markers []Marker
}

func NewView(hub *stream.Hub, sessionID string) *View {
	return &View{hub: hub, sessionID: sessionID}
}

func (v *View) Init(center workout.Coords, zoom int) {
	v.mu.Lock()
	v.ready = true
	v.center = center
	v.zoom = zoom
	v.mu.Unlock()

	v.emit(Event{Type: "map_init", Center: &center, Zoom: zoom})
}

func (v *View) Ready() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ready
}

func (v *View) Center() (workout.Coords, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.center, v.zoom
}

// AddMarker places a workout pin. Calls before Init are dropped; restored
// records are replayed once the map is ready.
func (v *View) AddMarker(r workout.Record) (Marker, bool) {
	v.mu.Lock()
	if !v.ready {
		v.mu.Unlock()
		return Marker{}, false
	}
	m := Marker{
		WorkoutID:    r.ID,
		Coords:       r.Coords,
		Popup:        popupIcon(r.Type) + " " + r.Description,
		Class:        string(r.Type) + "-popup",
		AutoClose:    false,
		CloseOnClick: false,
	}
	v.markers = append(v.markers, m)
	v.mu.Unlock()

	marker := m
	v.emit(Event{Type: "marker", Marker: &marker})
	return m, true
}

func (v *View) Markers() []Marker {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Marker, len(v.markers))
	copy(out, v.markers)
	return out
}

// Recenter pans the view to coords. No-op while the map is not ready.
func (v *View) Recenter(coords workout.Coords, zoom int, animate bool) bool {
	v.mu.Lock()
	if !v.ready {
		v.mu.Unlock()
		return false
	}
	v.center = coords
	v.zoom = zoom
	v.mu.Unlock()

	v.emit(Event{Type: "recenter", Center: &coords, Zoom: zoom, Animate: animate})
	return true
}

func (v *View) emit(evt Event) {
	if v.hub == nil {
		return
	}
	v.hub.BroadcastEvent(v.sessionID, evt)
}

func popupIcon(kind workout.Kind) string {
	if kind == workout.Cycling {
		return "🚴‍♀️"
	}
	return "🏃‍♂️"
}
