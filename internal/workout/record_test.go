package workout

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"
)

func TestPaceAndSpeed(t *testing.T) {
	if p := PaceMinKm(5, 25); p != 5.0 {
		t.Fatalf("unexpected pace: %v", p)
	}
	if s := SpeedKmh(20, 60); s != 20.0 {
		t.Fatalf("unexpected speed: %v", s)
	}

	for _, c := range []struct{ d, dur float64 }{{0.1, 0.1}, {1, 1}, {42.2, 180}, {500, 1}} {
		if v := PaceMinKm(c.d, c.dur); math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("pace not finite for %v", c)
		}
		if v := SpeedKmh(c.d, c.dur); math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("speed not finite for %v", c)
		}
	}
}

func TestNewRunning(t *testing.T) {
	r := New(Coords{10, 10}, 5, 25, 150, Running)

	if r.Type != Running {
		t.Fatalf("unexpected kind: %v", r.Type)
	}
	if r.Pace != 5.0 {
		t.Fatalf("unexpected pace: %v", r.Pace)
	}
	if r.Cadence != 150 {
		t.Fatalf("unexpected cadence: %v", r.Cadence)
	}
	if r.Speed != 0 {
		t.Fatalf("running record should not carry speed")
	}
	want := fmt.Sprintf("Running on %s %d", time.Now().Month(), time.Now().Day())
	if r.Description != want {
		t.Fatalf("unexpected description: %q", r.Description)
	}
	if r.ID == "" || len(r.ID) != 10 {
		t.Fatalf("unexpected id: %q", r.ID)
	}
}

func TestNewCycling(t *testing.T) {
	r := New(Coords{-6.2, 106.8}, 20, 60, 300, Cycling)

	if r.Type != Cycling {
		t.Fatalf("unexpected kind: %v", r.Type)
	}
	if r.Speed != 20.0 {
		t.Fatalf("unexpected speed: %v", r.Speed)
	}
	if r.ElevationGain != 300 {
		t.Fatalf("unexpected elevation gain: %v", r.ElevationGain)
	}
	if !strings.HasPrefix(r.Description, "Cycling on ") {
		t.Fatalf("unexpected description: %q", r.Description)
	}
	if r.Coords.Lat() != -6.2 || r.Coords.Lng() != 106.8 {
		t.Fatalf("unexpected coords: %v", r.Coords)
	}
}

func TestRecordJSONShape(t *testing.T) {
	r := New(Coords{10, 10}, 5, 25, 150, Running)
	raw, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "date", "coords", "distance", "duration", "type", "cadence", "pace", "description"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("missing key %q", key)
		}
	}
	if _, ok := m["speed"]; ok {
		t.Fatalf("running record must not serialize speed")
	}
}

func TestParseKind(t *testing.T) {
	if k, ok := ParseKind("running"); !ok || k != Running {
		t.Fatalf("expected running kind")
	}
	if k, ok := ParseKind("cycling"); !ok || k != Cycling {
		t.Fatalf("expected cycling kind")
	}
	if _, ok := ParseKind("swimming"); ok {
		t.Fatalf("expected unknown kind to fail")
	}
}

func TestValidationHelpers(t *testing.T) {
	if !AllFinite(1, 2.5, 0, -3) {
		t.Fatalf("expected finite")
	}
	if AllFinite(1, math.NaN()) {
		t.Fatalf("NaN should not be finite")
	}
	if AllFinite(math.Inf(1)) {
		t.Fatalf("Inf should not be finite")
	}
	if !AllPositive(0.1, 5) {
		t.Fatalf("expected positive")
	}
	if AllPositive(5, 0) || AllPositive(-1) {
		t.Fatalf("zero and negatives are not positive")
	}
}
