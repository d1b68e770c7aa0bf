package roadgrade

import (
	"math"

	"github.com/paulmach/orb"
)

// All geometry in this package lives in tile-local Euclidean space:
// orb.Point{X, Y} in meters, elevations in meters.

// findDistance returns distance between two points
func findDistance(p, q orb.Point) float64 {
	xdistance := p.X() - q.X()
	ydistance := p.Y() - q.Y()
	return math.Sqrt(xdistance*xdistance + ydistance*ydistance)
}

// findDistanceSquared returns squared distance between two points (cheap form for comparisons)
func findDistanceSquared(p, q orb.Point) float64 {
	xdistance := p.X() - q.X()
	ydistance := p.Y() - q.Y()
	return xdistance*xdistance + ydistance*ydistance
}

// middlePoint returns middle point of given segment
func middlePoint(p, q orb.Point) orb.Point {
	return orb.Point{(p.X() + q.X()) / 2.0, (p.Y() + q.Y()) / 2.0}
}

// angleBetweenDirections returns unsigned angle (degrees, [0;180]) between two direction vectors
func angleBetweenDirections(d1, d2 orb.Point) float64 {
	angle1 := math.Atan2(d1.Y(), d1.X())
	angle2 := math.Atan2(d2.Y(), d2.X())
	angle := angle2 - angle1
	if angle < -1*math.Pi {
		angle += 2 * math.Pi
	}
	if angle > math.Pi {
		angle -= 2 * math.Pi
	}
	return math.Abs(angle) * pi180Rev
}

const (
	pi180    = math.Pi / 180.0
	pi180Rev = 180.0 / math.Pi
)

// normalizeDirection returns unit vector pointing from p towards q.
// Falls back to {1, 0} for coincident points.
func normalizeDirection(p, q orb.Point) orb.Point {
	dx := q.X() - p.X()
	dy := q.Y() - p.Y()
	length := math.Sqrt(dx*dx + dy*dy)
	if length == 0 {
		return orb.Point{1, 0}
	}
	return orb.Point{dx / length, dy / length}
}

// getLength returns length of given line
func getLength(line orb.LineString) float64 {
	totalLength := 0.0
	if len(line) < 2 {
		return totalLength
	}
	for i := 1; i < len(line); i++ {
		totalLength += findDistance(line[i-1], line[i])
	}
	return totalLength
}

// findCentroid returns center of mass of given points
func findCentroid(pts []orb.Point) orb.Point {
	centroid := orb.Point{}
	if len(pts) == 0 {
		return centroid
	}
	for _, pt := range pts {
		centroid[0] += pt.X()
		centroid[1] += pt.Y()
	}
	centroid[0] /= float64(len(pts))
	centroid[1] /= float64(len(pts))
	return centroid
}

// BlendFunction Shape of the falloff used when fading a junction constraint out along a spline
type BlendFunction uint16

const (
	BLEND_LINEAR = BlendFunction(iota + 1)
	BLEND_COSINE
	BLEND_SMOOTHSTEP
	BLEND_SMOOTHERSTEP
)

func (iotaIdx BlendFunction) String() string {
	return [...]string{"linear", "cosine", "smoothstep", "smootherstep"}[iotaIdx-1]
}

// BlendFunctionFromString parses blend function name as it appears in configuration files
func BlendFunctionFromString(name string) BlendFunction {
	switch name {
	case "cosine":
		return BLEND_COSINE
	case "smoothstep":
		return BLEND_SMOOTHSTEP
	case "smootherstep":
		return BLEND_SMOOTHERSTEP
	default:
		return BLEND_LINEAR
	}
}

// Evaluate returns blend factor for normalized distance t in [0;1].
// 0.0 at the junction (full constraint) and 1.0 at the blend boundary (no constraint).
func (iotaIdx BlendFunction) Evaluate(t float64) float64 {
	if t <= 0 {
		return 0.0
	}
	if t >= 1 {
		return 1.0
	}
	switch iotaIdx {
	case BLEND_COSINE:
		return 0.5 - 0.5*math.Cos(t*math.Pi)
	case BLEND_SMOOTHSTEP:
		return t * t * (3.0 - 2.0*t)
	case BLEND_SMOOTHERSTEP:
		return smootherstep(t)
	default:
		return t
	}
}

// smootherstep is the quintic smoothstep on [0;1]
func smootherstep(t float64) float64 {
	if t <= 0 {
		return 0.0
	}
	if t >= 1 {
		return 1.0
	}
	return t * t * t * (t*(t*6.0-15.0) + 10.0)
}

// lerp linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// isFiniteElevation reports whether elevation value is usable in averaging.
// NaN marks unresolved target elevations; both NaN and Inf must never leak
// into weighted sums.
func isFiniteElevation(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
