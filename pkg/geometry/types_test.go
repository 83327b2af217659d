package geometry

import "testing"

func TestPoint2DDistance(t *testing.T) {
	a := Point2D{X: 0, Y: 0}
	b := Point2D{X: 3, Y: 4}
	if got := a.Distance(b); got != 5 {
		t.Errorf("Distance() = %v, want 5", got)
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 20, Height: 20}
	cases := []struct {
		p    Point2D
		want bool
	}{
		{Point2D{X: 15, Y: 15}, true},
		{Point2D{X: 10, Y: 10}, true},
		{Point2D{X: 30, Y: 30}, true},
		{Point2D{X: 5, Y: 15}, false},
		{Point2D{X: 35, Y: 15}, false},
	}
	for _, c := range cases {
		if got := r.Contains(c.p); got != c.want {
			t.Errorf("Contains(%v) = %v, want %v", c.p, got, c.want)
		}
	}
}

func TestRectIntClip(t *testing.T) {
	cases := []struct {
		name string
		r    RectInt
		maxW int
		maxH int
		want RectInt
	}{
		{"fully inside", RectInt{X: 10, Y: 10, Width: 20, Height: 20}, 100, 100, RectInt{X: 10, Y: 10, Width: 20, Height: 20}},
		{"negative origin clipped to zero", RectInt{X: -5, Y: -5, Width: 20, Height: 20}, 100, 100, RectInt{X: 0, Y: 0, Width: 15, Height: 15}},
		{"overflow clipped to bounds", RectInt{X: 90, Y: 90, Width: 20, Height: 20}, 100, 100, RectInt{X: 90, Y: 90, Width: 10, Height: 10}},
		{"entirely outside", RectInt{X: 200, Y: 200, Width: 10, Height: 10}, 100, 100, RectInt{X: 100, Y: 100, Width: 0, Height: 0}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.r.Clip(c.maxW, c.maxH); got != c.want {
				t.Errorf("Clip(%d,%d) = %+v, want %+v", c.maxW, c.maxH, got, c.want)
			}
		})
	}
}

func TestRectIntEmpty(t *testing.T) {
	if !(RectInt{Width: 0, Height: 10}).Empty() {
		t.Error("zero-width rect should be empty")
	}
	if (RectInt{Width: 10, Height: 10}).Empty() {
		t.Error("10x10 rect should not be empty")
	}
}

func TestRectIntInset(t *testing.T) {
	r := RectInt{X: 10, Y: 10, Width: 10, Height: 10}
	got := r.Inset(2, 3)
	want := RectInt{X: 8, Y: 7, Width: 14, Height: 16}
	if got != want {
		t.Errorf("Inset(2,3) = %+v, want %+v", got, want)
	}
}

func TestCentroid(t *testing.T) {
	pts := []Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	got := Centroid(pts)
	want := Point2D{X: 5, Y: 5}
	if got != want {
		t.Errorf("Centroid() = %v, want %v", got, want)
	}
}

func TestBoundingBox(t *testing.T) {
	pts := []Point2D{{X: 3, Y: 7}, {X: -1, Y: 2}, {X: 5, Y: -4}}
	got := BoundingBox(pts)
	want := Rect{X: -1, Y: -4, Width: 6, Height: 11}
	if got != want {
		t.Errorf("BoundingBox() = %v, want %v", got, want)
	}
}
