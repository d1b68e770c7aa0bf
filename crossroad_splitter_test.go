package roadgrade

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestSplitCrossing(t *testing.T) {
	net := NewRoadNetwork()
	primary := buildSpline(net, ROAD_CLASS_PRIMARY, orb.Point{0, 0}, orb.Point{1, 0}, 10, 21, 100)
	secondary := buildSpline(net, ROAD_CLASS_RESIDENTIAL, orb.Point{100, -50}, orb.Point{0, 1}, 10, 11, 97)

	junctions := NewJunctionDetector(net).Detect()
	junctions = NewCrossroadSplitter(net).Split(junctions)

	if len(junctionsOfType(junctions, JUNCTION_MID_SPLINE_CROSSING)) != 0 {
		t.Errorf("No crossings must remain after splitting")
	}
	tJunctions := junctionsOfType(junctions, JUNCTION_T)
	if len(tJunctions) != 2 {
		t.Fatalf("Crossing must become 2 T-junctions, but got %d", len(tJunctions))
	}

	if net.SplineByID(secondary.ID) != nil {
		t.Errorf("Secondary spline %d must be replaced by its halves", secondary.ID)
	}
	if net.SplineByID(primary.ID) == nil {
		t.Errorf("Primary spline %d must survive the split", primary.ID)
	}

	var segmentA, segmentB *Spline
	for _, junction := range tJunctions {
		for _, c := range junction.TerminatingContributors() {
			if c.IsEnd {
				segmentA = c.Spline
			}
			if c.IsStart {
				segmentB = c.Spline
			}
		}
	}
	if segmentA == nil || segmentB == nil {
		t.Fatalf("Both halves must terminate at a T-junction")
	}
	if len(segmentA.CrossSections) < 2 || len(segmentB.CrossSections) < 2 {
		t.Errorf("Halves must have at least 2 cross-sections, got %d and %d",
			len(segmentA.CrossSections), len(segmentB.CrossSections))
	}
	endA := segmentA.Last()
	startB := segmentB.First()
	if !endA.IsEnd {
		t.Errorf("First half must end at the crossing")
	}
	if !startB.IsStart {
		t.Errorf("Second half must start at the crossing")
	}
	if endA.Position != startB.Position {
		t.Errorf("Halves must share the crossing position: %v vs %v", endA.Position, startB.Position)
	}
}

func TestSplitRejectsDegenerate(t *testing.T) {
	net := NewRoadNetwork()
	primary := buildSpline(net, ROAD_CLASS_PRIMARY, orb.Point{0, 0}, orb.Point{1, 0}, 10, 21, 100)
	secondary := buildSpline(net, ROAD_CLASS_RESIDENTIAL, orb.Point{100, 0}, orb.Point{0, 1}, 10, 5, 97)

	// crossing forced onto the secondary's very first cross-section:
	// splitting would leave a one-point half
	crossing := &Junction{
		Type:     JUNCTION_MID_SPLINE_CROSSING,
		Position: orb.Point{100, 0},
		Contributors: []*Contributor{
			{Spline: primary, CrossSection: primary.CrossSections[10]},
			{Spline: secondary, CrossSection: secondary.CrossSections[0]},
		},
	}
	junctions := NewCrossroadSplitter(net).Split([]*Junction{crossing})

	if len(junctionsOfType(junctions, JUNCTION_MID_SPLINE_CROSSING)) != 1 {
		t.Errorf("Degenerate split must leave the crossing untouched")
	}
	if net.SplineByID(secondary.ID) == nil {
		t.Errorf("Secondary spline must survive a rejected split")
	}
}

func TestSplitReassignsSequentialIDs(t *testing.T) {
	net := NewRoadNetwork()
	buildSpline(net, ROAD_CLASS_PRIMARY, orb.Point{0, 0}, orb.Point{1, 0}, 10, 21, 100)
	buildSpline(net, ROAD_CLASS_RESIDENTIAL, orb.Point{100, -50}, orb.Point{0, 1}, 10, 11, 97)

	junctions := NewJunctionDetector(net).Detect()
	junctions = NewCrossroadSplitter(net).Split(junctions)
	for i, junction := range junctions {
		if junction.ID != JunctionID(i) {
			t.Errorf("Junction at position %d must have id %d, but got %d", i, i, junction.ID)
		}
	}
}

func TestSplitRejectionMutatesNothing(t *testing.T) {
	net := NewRoadNetwork()
	primary := buildSpline(net, ROAD_CLASS_PRIMARY, orb.Point{0, 0}, orb.Point{1, 0}, 10, 21, 100)
	splittable := buildSpline(net, ROAD_CLASS_RESIDENTIAL, orb.Point{100, -50}, orb.Point{0, 1}, 10, 11, 97)
	degenerate := buildSpline(net, ROAD_CLASS_RESIDENTIAL, orb.Point{100, 0}, orb.Point{0, -1}, 10, 5, 96)

	// one valid secondary followed by one whose split would be degenerate:
	// the whole crossing must be left untouched, including the valid spline
	crossing := &Junction{
		Type:     JUNCTION_MID_SPLINE_CROSSING,
		Position: orb.Point{100, 0},
		Contributors: []*Contributor{
			{Spline: primary, CrossSection: primary.CrossSections[10]},
			{Spline: splittable, CrossSection: splittable.CrossSections[5]},
			{Spline: degenerate, CrossSection: degenerate.CrossSections[0]},
		},
	}
	junctions := NewCrossroadSplitter(net).Split([]*Junction{crossing})

	if len(junctionsOfType(junctions, JUNCTION_MID_SPLINE_CROSSING)) != 1 {
		t.Errorf("Rejected crossing must survive as-is")
	}
	if net.SplineByID(splittable.ID) == nil {
		t.Errorf("Splittable secondary must not be cut when a later split is rejected")
	}
	if net.SplinesCount() != 3 {
		t.Errorf("Network must keep 3 splines, but got %d", net.SplinesCount())
	}
}
