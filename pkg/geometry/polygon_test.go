package geometry

import "testing"

func TestNormalizePolygonFourScalars(t *testing.T) {
	poly, ok := NormalizePolygon([]float64{10, 20, 30, 40})
	if !ok {
		t.Fatal("expected ok")
	}
	want := Polygon4{
		{X: 10, Y: 20}, {X: 30, Y: 20}, {X: 30, Y: 40}, {X: 10, Y: 40},
	}
	if poly != want {
		t.Errorf("got %v, want %v", poly, want)
	}
}

func TestNormalizePolygonEightScalars(t *testing.T) {
	// Already-clockwise quad starting top-left, fed in a scrambled order.
	poly, ok := NormalizePolygon([]float64{
		10, 40, // bottom-left
		10, 20, // top-left
		30, 40, // bottom-right
		30, 20, // top-right
	})
	if !ok {
		t.Fatal("expected ok")
	}
	want := Polygon4{
		{X: 10, Y: 20}, {X: 30, Y: 20}, {X: 30, Y: 40}, {X: 10, Y: 40},
	}
	if poly != want {
		t.Errorf("got %v, want %v", poly, want)
	}
}

func TestNormalizePolygonRejectsWrongLength(t *testing.T) {
	if _, ok := NormalizePolygon([]float64{1, 2, 3}); ok {
		t.Error("expected ok=false for length 3")
	}
	if _, ok := NormalizePolygon(nil); ok {
		t.Error("expected ok=false for nil")
	}
}

func TestNormalizePolygonPoints(t *testing.T) {
	poly, ok := NormalizePolygonPoints([][2]float64{
		{30, 20}, {10, 20}, {10, 40}, {30, 40},
	})
	if !ok {
		t.Fatal("expected ok")
	}
	want := Polygon4{
		{X: 10, Y: 20}, {X: 30, Y: 20}, {X: 30, Y: 40}, {X: 10, Y: 40},
	}
	if poly != want {
		t.Errorf("got %v, want %v", poly, want)
	}
}

func TestPolygon4Mids(t *testing.T) {
	p := Polygon4{{X: 10, Y: 20}, {X: 30, Y: 20}, {X: 30, Y: 40}, {X: 10, Y: 40}}
	if got := p.VerticalMid(); got != 30 {
		t.Errorf("VerticalMid() = %v, want 30", got)
	}
	if got := p.HorizontalMid(); got != 20 {
		t.Errorf("HorizontalMid() = %v, want 20", got)
	}
}
