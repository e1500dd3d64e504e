package model

import "testing"

func TestNewLocation(t *testing.T) {
	got := NewLocation(100, 200, "overworld", FacingEast)
	want := Location{X: 100, Y: 200, MapID: "overworld", Facing: FacingEast}
	if got != want {
		t.Errorf("NewLocation() = %+v, want %+v", got, want)
	}
}

func TestLocation_WithFacing(t *testing.T) {
	original := NewLocation(100, 200, "overworld", FacingNorth)
	got := original.WithFacing(FacingSouth)

	if got.Facing != FacingSouth {
		t.Errorf("WithFacing() facing = %v, want %v", got.Facing, FacingSouth)
	}
	if got.X != 100 || got.Y != 200 || got.MapID != "overworld" {
		t.Errorf("WithFacing() changed unrelated fields: %+v", got)
	}
	if original.Facing != FacingNorth {
		t.Errorf("WithFacing() mutated original: %+v", original)
	}
}

func TestLocation_WithCoordinates(t *testing.T) {
	original := NewLocation(100, 200, "overworld", FacingNorth)
	got := original.WithCoordinates(400, 500)

	want := Location{X: 400, Y: 500, MapID: "overworld", Facing: FacingNorth}
	if got != want {
		t.Errorf("WithCoordinates() = %+v, want %+v", got, want)
	}
	if original.X != 100 || original.Y != 200 {
		t.Errorf("WithCoordinates() mutated original: %+v", original)
	}
}

func TestLocation_ManhattanDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Location
		want int32
	}{
		{"same tile", NewLocation(0, 0, "m", FacingNorth), NewLocation(0, 0, "m", FacingNorth), 0},
		{"x axis", NewLocation(0, 0, "m", FacingNorth), NewLocation(10, 0, "m", FacingNorth), 10},
		{"y axis", NewLocation(0, 0, "m", FacingNorth), NewLocation(0, 10, "m", FacingNorth), 10},
		{"both axes", NewLocation(0, 0, "m", FacingNorth), NewLocation(3, 4, "m", FacingNorth), 7},
		{"negative", NewLocation(-5, -5, "m", FacingNorth), NewLocation(5, 5, "m", FacingNorth), 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.ManhattanDistance(tt.b); got != tt.want {
				t.Errorf("ManhattanDistance() = %d, want %d", got, tt.want)
			}
			if got := tt.b.ManhattanDistance(tt.a); got != tt.want {
				t.Errorf("ManhattanDistance() reverse = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLocation_WithinChebyshev(t *testing.T) {
	center := NewLocation(10, 10, "m", FacingNorth)

	if !center.WithinChebyshev(NewLocation(15, 15, "m", FacingNorth), 5) {
		t.Error("expected (15,15) within range 5 of (10,10)")
	}
	if center.WithinChebyshev(NewLocation(16, 10, "m", FacingNorth), 5) {
		t.Error("expected (16,10) outside range 5 of (10,10)")
	}
}

func TestFacing_StringRoundTrip(t *testing.T) {
	for _, f := range []Facing{FacingNorth, FacingSouth, FacingEast, FacingWest} {
		s := f.String()
		got, ok := ParseFacing(s)
		if !ok || got != f {
			t.Errorf("round trip failed for %v: string %q, parsed %v (ok=%v)", f, s, got, ok)
		}
	}
	if _, ok := ParseFacing("X"); ok {
		t.Error("ParseFacing(X) ok = true, want false")
	}
}

func TestLocation_ZeroValue(t *testing.T) {
	var loc Location
	if loc.X != 0 || loc.Y != 0 || loc.MapID != "" || loc.Facing != FacingNorth {
		t.Errorf("zero value Location not as expected: %+v", loc)
	}
}
