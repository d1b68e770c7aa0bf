package roadgrade

import (
	"math"

	"github.com/paulmach/orb"
)

/* Splines stuff */

// HarmonizationParams Material parameters controlling how junctions on a spline are detected and blended
type HarmonizationParams struct {
	DetectionRadius   float64       `yaml:"detection_radius"`
	BlendDistance     float64       `yaml:"blend_distance"`
	BlendFunctionName string        `yaml:"blend_function"`
	BlendFunc         BlendFunction `yaml:"-"`
	MaxSlope          float64       `yaml:"max_slope"`
	EndpointBlend     float64       `yaml:"endpoint_blend"`
	EndpointTaper     float64       `yaml:"endpoint_taper"`
	UniformRoundabout bool          `yaml:"uniform_roundabout"`
	RoundaboutBlend   float64       `yaml:"roundabout_blend"`
}

// DefaultHarmonizationParams returns parameter set used when no material configuration is supplied
func DefaultHarmonizationParams() HarmonizationParams {
	return HarmonizationParams{
		DetectionRadius:   10.0,
		BlendDistance:     40.0,
		BlendFunctionName: "smootherstep",
		BlendFunc:         BLEND_SMOOTHERSTEP,
		MaxSlope:          0.15,
		EndpointBlend:     0.75,
		EndpointTaper:     25.0,
		UniformRoundabout: false,
		RoundaboutBlend:   0.5,
	}
}

// Spline Ordered sequence of cross-sections sharing one road centerline.
//
// Cross-sections are strictly ordered by DistanceAlong; exactly one is flagged
// start and one end (until the crossroad splitter cuts the spline). The slice
// itself is immutable after creation, the cross-sections are not.
type Spline struct {
	ID            SplineID
	RoadClass     RoadClass
	Priority      int
	Width         float64
	LengthMeters  float64
	Params        HarmonizationParams
	CrossSections []*CrossSection
	IsRoundabout  bool
}

// NewSpline prepares spline over given cross-sections, fixing flags, distances and length
func NewSpline(id SplineID, roadClass RoadClass, crossSections []*CrossSection) *Spline {
	spline := &Spline{
		ID:            id,
		RoadClass:     roadClass,
		Priority:      roadClass.DefaultPriority(),
		Width:         roadClass.DefaultWidth(),
		Params:        DefaultHarmonizationParams(),
		CrossSections: crossSections,
		IsRoundabout:  roadClass == ROAD_CLASS_ROUNDABOUT_RING,
	}
	spline.Rebuild()
	return spline
}

// Rebuild recomputes indices, running distances, endpoint flags, tangents,
// normals and total length from positions. Needed after construction and
// after a split produced new spline halves.
func (spline *Spline) Rebuild() {
	n := len(spline.CrossSections)
	if n == 0 {
		spline.LengthMeters = 0.0
		return
	}
	dist := 0.0
	for i, cs := range spline.CrossSections {
		cs.SplineID = spline.ID
		cs.Index = i
		if i > 0 {
			dist += findDistance(spline.CrossSections[i-1].Position, cs.Position)
		}
		cs.DistanceAlong = dist
		cs.IsStart = i == 0
		cs.IsEnd = i == n-1
	}
	spline.LengthMeters = dist
	spline.rebuildFrames()
}

// rebuildFrames recomputes tangent and left normal per cross-section via central differences
func (spline *Spline) rebuildFrames() {
	n := len(spline.CrossSections)
	for i, cs := range spline.CrossSections {
		prev := spline.CrossSections[maxInt(i-1, 0)]
		next := spline.CrossSections[minInt(i+1, n-1)]
		tangent := normalizeDirection(prev.Position, next.Position)
		cs.Tangent = tangent
		cs.Normal = orb.Point{-tangent.Y(), tangent.X()}
	}
}

// Geometry returns centerline of spline as line string
func (spline *Spline) Geometry() orb.LineString {
	line := make(orb.LineString, len(spline.CrossSections))
	for i, cs := range spline.CrossSections {
		line[i] = cs.Position
	}
	return line
}

// First returns first cross-section of spline (nil for empty spline)
func (spline *Spline) First() *CrossSection {
	if len(spline.CrossSections) == 0 {
		return nil
	}
	return spline.CrossSections[0]
}

// Last returns last cross-section of spline (nil for empty spline)
func (spline *Spline) Last() *CrossSection {
	if len(spline.CrossSections) == 0 {
		return nil
	}
	return spline.CrossSections[len(spline.CrossSections)-1]
}

// NearestCrossSection returns cross-section of spline closest to given position (nil for empty spline)
func (spline *Spline) NearestCrossSection(pt orb.Point) *CrossSection {
	var nearest *CrossSection
	best := math.Inf(1)
	for _, cs := range spline.CrossSections {
		d := findDistanceSquared(cs.Position, pt)
		if d < best {
			best = d
			nearest = cs
		}
	}
	return nearest
}

// LocalSlope estimates longitudinal slope (meters of elevation per meter of
// distance) around cross-section index using a window of +-3 cross-sections.
// Cross-sections with unresolved elevation shrink the window.
func (spline *Spline) LocalSlope(index int) float64 {
	const window = 3
	lo := maxInt(index-window, 0)
	hi := minInt(index+window, len(spline.CrossSections)-1)
	for lo < index && !spline.CrossSections[lo].HasResolvedElevation() {
		lo++
	}
	for hi > index && !spline.CrossSections[hi].HasResolvedElevation() {
		hi--
	}
	if lo >= hi {
		return 0.0
	}
	csLo := spline.CrossSections[lo]
	csHi := spline.CrossSections[hi]
	run := csHi.DistanceAlong - csLo.DistanceAlong
	if run <= 0 {
		return 0.0
	}
	return (csHi.TargetElevation - csLo.TargetElevation) / run
}

// SurfaceElevationAt projects point onto road surface around cross-section at
// given index: centerline elevation plus banking term (lateral offset) plus
// longitudinal slope term (offset along the tangent).
func (spline *Spline) SurfaceElevationAt(index int, pt orb.Point) float64 {
	cs := spline.CrossSections[index]
	base := cs.TargetElevation
	if !isFiniteElevation(base) {
		return base
	}
	dx := pt.X() - cs.Position.X()
	dy := pt.Y() - cs.Position.Y()
	lateral := dx*cs.Normal.X() + dy*cs.Normal.Y()
	longitudinal := dx*cs.Tangent.X() + dy*cs.Tangent.Y()
	elevation := base
	if cs.BankAngle != 0 {
		elevation += lateral * math.Sin(cs.BankAngle)
	}
	elevation += longitudinal * spline.LocalSlope(index)
	return elevation
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
