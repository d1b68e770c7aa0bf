package roadgrade

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

/* Cross-sections stuff */

type CrossSectionID int
type SplineID int

// CrossSection Sampled frame on a road spline.
//
// Position, tangent and normal live in tile-local Euclidean space (meters).
// TargetElevation is mutated in place by every harmonization step; NaN means
// the elevation has not been resolved yet. Edge elevations are set only near
// T-junctions by the edge projection pass.
type CrossSection struct {
	ID              CrossSectionID
	SplineID        SplineID
	Index           int
	Position        orb.Point
	Tangent         orb.Point
	Normal          orb.Point
	DistanceAlong   float64
	TargetElevation float64
	BankAngle       float64 // radians, positive banks towards the left edge
	IsStart         bool
	IsEnd           bool

	LeftEdgeElevation  float64
	RightEdgeElevation float64
	HasEdgeConstraints bool
}

// NewCrossSection prepares cross-section with unresolved elevation and no edge constraints
func NewCrossSection(id CrossSectionID, splineID SplineID, index int, position orb.Point) *CrossSection {
	return &CrossSection{
		ID:                 id,
		SplineID:           splineID,
		Index:              index,
		Position:           position,
		Tangent:            orb.Point{1, 0},
		Normal:             orb.Point{0, 1},
		TargetElevation:    math.NaN(),
		LeftEdgeElevation:  math.NaN(),
		RightEdgeElevation: math.NaN(),
	}
}

// IsEndpoint reports whether cross-section terminates its spline on either side
func (cs *CrossSection) IsEndpoint() bool {
	return cs.IsStart || cs.IsEnd
}

// HasResolvedElevation reports whether target elevation carries a usable value
func (cs *CrossSection) HasResolvedElevation() bool {
	return isFiniteElevation(cs.TargetElevation)
}

// LeftEdgePosition returns position of the left road edge for given half width
func (cs *CrossSection) LeftEdgePosition(halfWidth float64) orb.Point {
	return orb.Point{
		cs.Position.X() + cs.Normal.X()*halfWidth,
		cs.Position.Y() + cs.Normal.Y()*halfWidth,
	}
}

// RightEdgePosition returns position of the right road edge for given half width
func (cs *CrossSection) RightEdgePosition(halfWidth float64) orb.Point {
	return orb.Point{
		cs.Position.X() - cs.Normal.X()*halfWidth,
		cs.Position.Y() - cs.Normal.Y()*halfWidth,
	}
}

// SetEdgeConstraints stores projected edge elevations computed at a T-junction
func (cs *CrossSection) SetEdgeConstraints(left, right float64) {
	cs.LeftEdgeElevation = left
	cs.RightEdgeElevation = right
	cs.HasEdgeConstraints = true
}

// String returns pretty printed value for cross-section
func (cs *CrossSection) String() string {
	return fmt.Sprintf("CrossSection{id: %d, spline: %d, idx: %d, pos: (%f, %f), dist: %f, elev: %f}",
		cs.ID, cs.SplineID, cs.Index, cs.Position.X(), cs.Position.Y(), cs.DistanceAlong, cs.TargetElevation)
}
