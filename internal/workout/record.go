package workout

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

type Kind string

const (
	Running Kind = "running"
	Cycling Kind = "cycling"
)

// ParseKind maps a raw form value to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case Running:
		return Running, true
	case Cycling:
		return Cycling, true
	}
	return "", false
}

// Coords is a [lat, lng] pair.
type Coords [2]float64

func (c Coords) Lat() float64 { return c[0] }
func (c Coords) Lng() float64 { return c[1] }

// Record is one logged activity. All derived fields (ID, Pace/Speed,
// Description) are computed once at construction and persisted as-is, so a
// record restored from storage never needs its constructor again.
type Record struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	Coords        Coords    `json:"coords"`
	Distance      float64   `json:"distance"` // km
	Duration      float64   `json:"duration"` // min
	Type          Kind      `json:"type"`
	Cadence       float64   `json:"cadence,omitempty"`       // steps/min, running only
	ElevationGain float64   `json:"elevationGain,omitempty"` // m, cycling only
	Pace          float64   `json:"pace,omitempty"`          // min/km, running only
	Speed         float64   `json:"speed,omitempty"`         // km/h, cycling only
	Description   string    `json:"description"`
}

// New builds a Record from already-validated inputs. Callers must ensure
// distance and duration are positive; New has no failure path.
func New(coords Coords, distance, duration, kindValue float64, kind Kind) Record {
	now := time.Now()
	r := Record{
		ID:       newID(now),
		Date:     now,
		Coords:   coords,
		Distance: distance,
		Duration: duration,
		Type:     kind,
	}

	switch kind {
	case Cycling:
		r.ElevationGain = kindValue
		r.Speed = SpeedKmh(distance, duration)
	default:
		r.Type = Running
		r.Cadence = kindValue
		r.Pace = PaceMinKm(distance, duration)
	}

	r.Description = describe(r.Type, now)
	return r
}

// PaceMinKm returns minutes per kilometer.
func PaceMinKm(distanceKm, durationMin float64) float64 {
	return durationMin / distanceKm
}

// SpeedKmh returns kilometers per hour.
func SpeedKmh(distanceKm, durationMin float64) float64 {
	return distanceKm / (durationMin / 60)
}

// AllFinite reports whether every value is a finite number.
func AllFinite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// AllPositive reports whether every value is strictly positive.
func AllPositive(vals ...float64) bool {
	for _, v := range vals {
		if v <= 0 {
			return false
		}
	}
	return true
}

// newID derives a session-local identifier from the creation timestamp (the
// last ten digits of unix milliseconds). Two records created within the same
// millisecond collide; accepted limitation for single-user entry rates.
func newID(t time.Time) string {
	ms := strconv.FormatInt(t.UnixMilli(), 10)
	if len(ms) > 10 {
		ms = ms[len(ms)-10:]
	}
	return ms
}

func describe(kind Kind, t time.Time) string {
	label := string(kind)
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	return fmt.Sprintf("%s on %s %d", label, t.Month().String(), t.Day())
}
