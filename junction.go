package roadgrade

import (
	"fmt"

	"github.com/paulmach/orb"
)

/* Junctions stuff */

type JunctionID int

type JunctionType uint16

const (
	JUNCTION_ENDPOINT = JunctionType(iota + 1)
	JUNCTION_T
	JUNCTION_Y
	JUNCTION_CROSSROADS
	JUNCTION_COMPLEX
	JUNCTION_MID_SPLINE_CROSSING
	JUNCTION_ROUNDABOUT
)

func (iotaIdx JunctionType) String() string {
	return [...]string{"endpoint", "t_junction", "y_junction", "crossroads", "complex", "mid_spline_crossing", "roundabout"}[iotaIdx-1]
}

// Contributor One (spline, cross-section) pair participating in a junction.
// A contributor is continuous when the road passes through the junction
// without terminating there.
type Contributor struct {
	Spline       *Spline
	CrossSection *CrossSection
	IsStart      bool
	IsEnd        bool
}

// IsContinuous reports whether the road passes through the junction (neither terminating side)
func (c *Contributor) IsContinuous() bool {
	return !c.IsStart && !c.IsEnd
}

// Junction Detected meeting point of two or more roads (or a dead end).
//
// Produced fresh by the detector on every run, possibly re-typed by hint
// reconciliation, consumed and replaced by the crossroad splitter, finally
// consumed by the harmonizers. Discardable afterwards; only the mutated
// cross-sections persist.
type Junction struct {
	ID                  JunctionID
	Type                JunctionType
	Position            orb.Point
	Contributors        []*Contributor
	HarmonizedElevation float64
	Excluded            bool // already handled by a specialized pass (roundabout connections)
	CrossMaterial       bool
	HintName            string
}

// DistinctSplineCount returns number of distinct splines among contributors
func (junction *Junction) DistinctSplineCount() int {
	seen := make(map[SplineID]struct{})
	for _, c := range junction.Contributors {
		seen[c.Spline.ID] = struct{}{}
	}
	return len(seen)
}

// ContinuousContributors returns contributors whose road passes through the junction
func (junction *Junction) ContinuousContributors() []*Contributor {
	out := []*Contributor{}
	for _, c := range junction.Contributors {
		if c.IsContinuous() {
			out = append(out, c)
		}
	}
	return out
}

// TerminatingContributors returns contributors whose road ends at the junction
func (junction *Junction) TerminatingContributors() []*Contributor {
	out := []*Contributor{}
	for _, c := range junction.Contributors {
		if !c.IsContinuous() {
			out = append(out, c)
		}
	}
	return out
}

// HasSpline reports whether given spline participates in the junction
func (junction *Junction) HasSpline(id SplineID) bool {
	for _, c := range junction.Contributors {
		if c.Spline.ID == id {
			return true
		}
	}
	return false
}

// RecomputeCentroid places the junction at the center of mass of its contributors
func (junction *Junction) RecomputeCentroid() {
	pts := make([]orb.Point, len(junction.Contributors))
	for i, c := range junction.Contributors {
		pts[i] = c.CrossSection.Position
	}
	junction.Position = findCentroid(pts)
}

// Classify assigns junction type from contributor topology:
// single contributor is a dead end, any continuous contributor makes a
// T-junction, otherwise distinct spline count decides Y / crossroads / complex.
// Special types assigned earlier (roundabout, mid-spline crossing) are kept.
func (junction *Junction) Classify() {
	if junction.Type == JUNCTION_ROUNDABOUT || junction.Type == JUNCTION_MID_SPLINE_CROSSING {
		return
	}
	if len(junction.Contributors) == 1 {
		junction.Type = JUNCTION_ENDPOINT
		return
	}
	if len(junction.ContinuousContributors()) > 0 {
		junction.Type = JUNCTION_T
		return
	}
	switch splines := junction.DistinctSplineCount(); {
	case splines <= 2:
		junction.Type = JUNCTION_Y
	case splines <= 4:
		junction.Type = JUNCTION_CROSSROADS
	default:
		junction.Type = JUNCTION_COMPLEX
	}
}

// HasMixedMaterials reports whether contributors come from different road classes
func (junction *Junction) HasMixedMaterials() bool {
	if len(junction.Contributors) == 0 {
		return false
	}
	first := junction.Contributors[0].Spline.RoadClass
	for _, c := range junction.Contributors[1:] {
		if c.Spline.RoadClass != first {
			return true
		}
	}
	return false
}

// DetectionRadius returns the largest detection radius among contributing splines
func (junction *Junction) DetectionRadius() float64 {
	radius := 0.0
	for _, c := range junction.Contributors {
		if c.Spline.Params.DetectionRadius > radius {
			radius = c.Spline.Params.DetectionRadius
		}
	}
	return radius
}

// String returns pretty printed value for junction
func (junction *Junction) String() string {
	return fmt.Sprintf("Junction{id: %d, type: %s, pos: (%f, %f), contributors: %d}",
		junction.ID, junction.Type, junction.Position.X(), junction.Position.Y(), len(junction.Contributors))
}
