package roadgrade

import (
	"sort"
)

// RoadNetwork All splines and cross-sections of one terrain tile.
//
// Iteration over splines is always id-ordered: harmonization tie-breaks
// depend on stable iteration order, so the map is never ranged directly.
type RoadNetwork struct {
	splines            map[SplineID]*Spline
	nextSplineID       SplineID
	nextCrossSectionID CrossSectionID
}

// NewRoadNetwork returns empty road network
func NewRoadNetwork() *RoadNetwork {
	return &RoadNetwork{
		splines: make(map[SplineID]*Spline),
	}
}

// AddSpline registers spline in the network. Assigns spline id when it carries none (-1).
func (net *RoadNetwork) AddSpline(spline *Spline) *Spline {
	if spline.ID < 0 {
		spline.ID = net.nextSplineID
	}
	if spline.ID >= net.nextSplineID {
		net.nextSplineID = spline.ID + 1
	}
	for _, cs := range spline.CrossSections {
		cs.SplineID = spline.ID
		if cs.ID < 0 {
			cs.ID = net.nextCrossSectionID
		}
		if cs.ID >= net.nextCrossSectionID {
			net.nextCrossSectionID = cs.ID + 1
		}
	}
	net.splines[spline.ID] = spline
	return spline
}

// RemoveSpline drops spline from the network (used when the splitter replaces a crossing spline with halves)
func (net *RoadNetwork) RemoveSpline(id SplineID) {
	delete(net.splines, id)
}

// SplineByID returns spline for given id (nil if not found)
func (net *RoadNetwork) SplineByID(id SplineID) *Spline {
	return net.splines[id]
}

// Splines returns all splines ordered by id
func (net *RoadNetwork) Splines() []*Spline {
	out := make([]*Spline, 0, len(net.splines))
	for _, spline := range net.splines {
		out = append(out, spline)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// SplinesCount returns number of splines in the network
func (net *RoadNetwork) SplinesCount() int {
	return len(net.splines)
}

// CrossSections returns all cross-sections ordered by (spline id, index)
func (net *RoadNetwork) CrossSections() []*CrossSection {
	out := []*CrossSection{}
	for _, spline := range net.Splines() {
		out = append(out, spline.CrossSections...)
	}
	return out
}

// NextSplineID hands out fresh unique spline id
func (net *RoadNetwork) NextSplineID() SplineID {
	id := net.nextSplineID
	net.nextSplineID++
	return id
}

// NextCrossSectionID hands out fresh unique cross-section id
func (net *RoadNetwork) NextCrossSectionID() CrossSectionID {
	id := net.nextCrossSectionID
	net.nextCrossSectionID++
	return id
}

// MaxDetectionRadius returns the largest configured per-spline detection radius
func (net *RoadNetwork) MaxDetectionRadius() float64 {
	radius := 0.0
	for _, spline := range net.Splines() {
		if spline.Params.DetectionRadius > radius {
			radius = spline.Params.DetectionRadius
		}
	}
	return radius
}

// snapshotElevations captures pre-harmonization target elevations keyed by
// cross-section id. Plateau smoothing and change reporting read original
// values after the propagation passes already blended them.
func (net *RoadNetwork) snapshotElevations() map[CrossSectionID]float64 {
	snapshot := make(map[CrossSectionID]float64)
	for _, spline := range net.Splines() {
		for _, cs := range spline.CrossSections {
			snapshot[cs.ID] = cs.TargetElevation
		}
	}
	return snapshot
}
