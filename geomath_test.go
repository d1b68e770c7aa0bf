package roadgrade

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestMiddlePoint(t *testing.T) {
	p1 := orb.Point{10, 20}
	p2 := orb.Point{30, -10}
	res := orb.Point{20, 5}
	mpt := middlePoint(p1, p2)
	if mpt != res {
		t.Errorf("Middle point must be %v, but got %v", res, mpt)
	}
}

func TestFindDistance(t *testing.T) {
	p1 := orb.Point{0, 0}
	p2 := orb.Point{3, 4}
	res := 5.0
	dist := findDistance(p1, p2)
	if math.Abs(dist-res) > elevationEps {
		t.Errorf("Distance must be %f, but got %f", res, dist)
	}
	distSquared := findDistanceSquared(p1, p2)
	if math.Abs(distSquared-res*res) > elevationEps {
		t.Errorf("Squared distance must be %f, but got %f", res*res, distSquared)
	}
}

func TestAngleBetweenDirections(t *testing.T) {
	cases := []struct {
		d1, d2 orb.Point
		res    float64
	}{
		{orb.Point{1, 0}, orb.Point{1, 0}, 0.0},
		{orb.Point{1, 0}, orb.Point{0, 1}, 90.0},
		{orb.Point{1, 0}, orb.Point{-1, 0}, 180.0},
		{orb.Point{1, 0}, orb.Point{0, -1}, 90.0},
		{orb.Point{1, 1}, orb.Point{-1, 1}, 90.0},
		{orb.Point{-1, -1}, orb.Point{1, 1}, 180.0},
	}
	for _, c := range cases {
		angle := angleBetweenDirections(c.d1, c.d2)
		if math.Abs(angle-c.res) > 1e-9 {
			t.Errorf("Angle between %v and %v must be %f, but got %f", c.d1, c.d2, c.res, angle)
		}
	}
}

func TestNormalizeDirection(t *testing.T) {
	dir := normalizeDirection(orb.Point{10, 10}, orb.Point{10, 50})
	res := orb.Point{0, 1}
	if dir != res {
		t.Errorf("Direction must be %v, but got %v", res, dir)
	}
	// coincident points fall back to the X axis
	fallback := normalizeDirection(orb.Point{5, 5}, orb.Point{5, 5})
	if fallback != (orb.Point{1, 0}) {
		t.Errorf("Fallback direction must be {1 0}, but got %v", fallback)
	}
}

func TestGetLength(t *testing.T) {
	line := orb.LineString{{0, 0}, {10, 0}, {10, 10}}
	res := 20.0
	length := getLength(line)
	if math.Abs(length-res) > elevationEps {
		t.Errorf("Length must be %f, but got %f", res, length)
	}
	if getLength(orb.LineString{{3, 3}}) != 0.0 {
		t.Errorf("Single point line must have zero length")
	}
}

func TestFindCentroid(t *testing.T) {
	pts := []orb.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	res := orb.Point{5, 5}
	centroid := findCentroid(pts)
	if centroid != res {
		t.Errorf("Centroid must be %v, but got %v", res, centroid)
	}
}

func TestBlendFunctionBounds(t *testing.T) {
	functions := []BlendFunction{BLEND_LINEAR, BLEND_COSINE, BLEND_SMOOTHSTEP, BLEND_SMOOTHERSTEP}
	for _, fn := range functions {
		if got := fn.Evaluate(0.0); got != 0.0 {
			t.Errorf("%s at 0 must be 0, but got %f", fn, got)
		}
		if got := fn.Evaluate(1.0); got != 1.0 {
			t.Errorf("%s at 1 must be 1, but got %f", fn, got)
		}
		if got := fn.Evaluate(-0.5); got != 0.0 {
			t.Errorf("%s below 0 must clamp to 0, but got %f", fn, got)
		}
		if got := fn.Evaluate(1.5); got != 1.0 {
			t.Errorf("%s above 1 must clamp to 1, but got %f", fn, got)
		}
		// monotonic non-decreasing over the unit interval
		prev := 0.0
		for i := 1; i <= 100; i++ {
			val := fn.Evaluate(float64(i) / 100.0)
			if val < prev {
				t.Errorf("%s must be monotonic, but drops from %f to %f at t=%f", fn, prev, val, float64(i)/100.0)
			}
			prev = val
		}
	}
}

func TestBlendFunctionFromString(t *testing.T) {
	for _, fn := range []BlendFunction{BLEND_LINEAR, BLEND_COSINE, BLEND_SMOOTHSTEP, BLEND_SMOOTHERSTEP} {
		if got := BlendFunctionFromString(fn.String()); got != fn {
			t.Errorf("Blend function for name '%s' must be %d, but got %d", fn, fn, got)
		}
	}
	if got := BlendFunctionFromString("no-such-function"); got != BLEND_LINEAR {
		t.Errorf("Unknown name must fall back to linear, but got %d", got)
	}
}

func TestSmootherstepFlatEnds(t *testing.T) {
	// quintic blend has zero first and second derivative at both ends
	eps := 1e-4
	nearStart := smootherstep(eps) / eps
	if nearStart > 1e-3 {
		t.Errorf("Smootherstep slope at 0 must vanish, but got %f", nearStart)
	}
	nearEnd := (1.0 - smootherstep(1.0-eps)) / eps
	if nearEnd > 1e-3 {
		t.Errorf("Smootherstep slope at 1 must vanish, but got %f", nearEnd)
	}
}
