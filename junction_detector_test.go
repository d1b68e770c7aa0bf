package roadgrade

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

// buildSpline returns spline with cross-sections placed from start towards
// direction every step meters, all at the given elevation
func buildSpline(net *RoadNetwork, roadClass RoadClass, start, direction orb.Point, step float64, count int, elevation float64) *Spline {
	crossSections := make([]*CrossSection, count)
	for i := 0; i < count; i++ {
		pos := orb.Point{
			start.X() + direction.X()*step*float64(i),
			start.Y() + direction.Y()*step*float64(i),
		}
		cs := NewCrossSection(-1, -1, i, pos)
		cs.TargetElevation = elevation
		crossSections[i] = cs
	}
	spline := NewSpline(-1, roadClass, crossSections)
	return net.AddSpline(spline)
}

// buildRing returns closed circular ring spline around center
func buildRing(net *RoadNetwork, center orb.Point, radius float64, count int, elevationAt func(angle float64) float64) *Spline {
	crossSections := make([]*CrossSection, count)
	for i := 0; i < count; i++ {
		angle := 2.0 * math.Pi * float64(i) / float64(count)
		pos := orb.Point{
			center.X() + radius*math.Cos(angle),
			center.Y() + radius*math.Sin(angle),
		}
		cs := NewCrossSection(-1, -1, i, pos)
		cs.TargetElevation = elevationAt(angle)
		crossSections[i] = cs
	}
	spline := NewSpline(-1, ROAD_CLASS_ROUNDABOUT_RING, crossSections)
	return net.AddSpline(spline)
}

func flatGrid(t *testing.T, size int, elevation float64) *ElevationGrid {
	t.Helper()
	grid, err := NewElevationGrid(size, size, 1.0)
	if err != nil {
		t.Fatalf("Can't build grid: %v", err)
	}
	grid.Fill(elevation)
	return grid
}

func junctionsOfType(junctions []*Junction, jt JunctionType) []*Junction {
	out := []*Junction{}
	for _, junction := range junctions {
		if junction.Type == jt {
			out = append(out, junction)
		}
	}
	return out
}

func TestDetectTJunction(t *testing.T) {
	net := NewRoadNetwork()
	// main road along X, side road attaching mid-way from the north
	buildSpline(net, ROAD_CLASS_PRIMARY, orb.Point{0, 0}, orb.Point{1, 0}, 10, 21, 100)
	buildSpline(net, ROAD_CLASS_SERVICE, orb.Point{100, 0}, orb.Point{0, 1}, 10, 11, 98)

	junctions := NewJunctionDetector(net).Detect()

	tJunctions := junctionsOfType(junctions, JUNCTION_T)
	if len(tJunctions) != 1 {
		t.Fatalf("T-junctions must be 1, but got %d", len(tJunctions))
	}
	junction := tJunctions[0]
	if len(junction.ContinuousContributors()) != 1 {
		t.Errorf("Continuous contributors must be 1, but got %d", len(junction.ContinuousContributors()))
	}
	if len(junction.TerminatingContributors()) != 1 {
		t.Errorf("Terminating contributors must be 1, but got %d", len(junction.TerminatingContributors()))
	}
	// remaining spline ends are dead ends
	endpoints := junctionsOfType(junctions, JUNCTION_ENDPOINT)
	if len(endpoints) != 3 {
		t.Errorf("Endpoint junctions must be 3, but got %d", len(endpoints))
	}
}

func TestDetectYJunction(t *testing.T) {
	net := NewRoadNetwork()
	buildSpline(net, ROAD_CLASS_RESIDENTIAL, orb.Point{0, 0}, orb.Point{1, 0}, 10, 51, 100)
	buildSpline(net, ROAD_CLASS_RESIDENTIAL, orb.Point{0, 0}, orb.Point{0, 1}, 10, 13, 95)

	junctions := NewJunctionDetector(net).Detect()

	yJunctions := junctionsOfType(junctions, JUNCTION_Y)
	if len(yJunctions) != 1 {
		t.Fatalf("Y-junctions must be 1, but got %d", len(yJunctions))
	}
	if got := yJunctions[0].DistinctSplineCount(); got != 2 {
		t.Errorf("Distinct splines must be 2, but got %d", got)
	}
}

func TestDetectMidSplineCrossing(t *testing.T) {
	net := NewRoadNetwork()
	buildSpline(net, ROAD_CLASS_PRIMARY, orb.Point{0, 0}, orb.Point{1, 0}, 10, 21, 100)
	buildSpline(net, ROAD_CLASS_RESIDENTIAL, orb.Point{100, -50}, orb.Point{0, 1}, 10, 11, 97)

	junctions := NewJunctionDetector(net).Detect()

	crossings := junctionsOfType(junctions, JUNCTION_MID_SPLINE_CROSSING)
	if len(crossings) != 1 {
		t.Fatalf("Crossings must be 1, but got %d", len(crossings))
	}
	crossing := crossings[0]
	if len(crossing.ContinuousContributors()) != 2 {
		t.Errorf("Crossing continuous contributors must be 2, but got %d", len(crossing.ContinuousContributors()))
	}
	if d := findDistance(crossing.Position, orb.Point{100, 0}); d > 1.0 {
		t.Errorf("Crossing must sit near (100, 0), but is %f meters away", d)
	}
}

func TestClassificationInvariant(t *testing.T) {
	net := NewRoadNetwork()
	buildSpline(net, ROAD_CLASS_PRIMARY, orb.Point{0, 0}, orb.Point{1, 0}, 10, 21, 100)
	buildSpline(net, ROAD_CLASS_SERVICE, orb.Point{100, 0}, orb.Point{0, 1}, 10, 11, 98)
	buildSpline(net, ROAD_CLASS_RESIDENTIAL, orb.Point{300, 300}, orb.Point{1, 0}, 10, 8, 50)

	junctions := NewJunctionDetector(net).Detect()
	for _, junction := range junctions {
		single := len(junction.Contributors) == 1
		if single != (junction.Type == JUNCTION_ENDPOINT) {
			t.Errorf("Junction %d: single contributor is %t but type is %s", junction.ID, single, junction.Type)
		}
		if junction.Type == JUNCTION_T && len(junction.ContinuousContributors()) == 0 {
			t.Errorf("Junction %d: T-junction without continuous contributor", junction.ID)
		}
	}
}

func TestDetectSequentialIDs(t *testing.T) {
	net := NewRoadNetwork()
	buildSpline(net, ROAD_CLASS_PRIMARY, orb.Point{0, 0}, orb.Point{1, 0}, 10, 21, 100)
	buildSpline(net, ROAD_CLASS_SERVICE, orb.Point{100, 0}, orb.Point{0, 1}, 10, 11, 98)

	junctions := NewJunctionDetector(net).Detect()
	for i, junction := range junctions {
		if junction.ID != JunctionID(i) {
			t.Errorf("Junction at position %d must have id %d, but got %d", i, i, junction.ID)
		}
	}
}

func TestRoundaboutExcluded(t *testing.T) {
	net := NewRoadNetwork()
	buildRing(net, orb.Point{100, 100}, 20, 24, func(angle float64) float64 { return 50 })
	buildSpline(net, ROAD_CLASS_RESIDENTIAL, orb.Point{120, 100}, orb.Point{1, 0}, 10, 11, 52)

	junctions := NewJunctionDetector(net).Detect()

	roundabouts := junctionsOfType(junctions, JUNCTION_ROUNDABOUT)
	if len(roundabouts) == 0 {
		t.Fatalf("Roundabout junctions must be detected")
	}
	for _, junction := range roundabouts {
		if !junction.Excluded {
			t.Errorf("Roundabout junction %d must be excluded from the generic harmonizer", junction.ID)
		}
	}
}

func TestReconcileRoundaboutHint(t *testing.T) {
	net := NewRoadNetwork()
	buildSpline(net, ROAD_CLASS_RESIDENTIAL, orb.Point{0, 0}, orb.Point{1, 0}, 10, 11, 100)
	buildSpline(net, ROAD_CLASS_RESIDENTIAL, orb.Point{0, 0}, orb.Point{0, 1}, 10, 11, 100)

	hints := []JunctionHint{
		{Position: orb.Point{2, 2}, Type: HINT_ROUNDABOUT, Explicit: true, Name: "Place Test"},
	}
	junctions := NewJunctionDetector(net, WithJunctionHints(hints)).Detect()

	roundabouts := junctionsOfType(junctions, JUNCTION_ROUNDABOUT)
	if len(roundabouts) != 1 {
		t.Fatalf("Roundabout hint must re-type the junction, got %d roundabouts", len(roundabouts))
	}
	if roundabouts[0].HintName != "Place Test" {
		t.Errorf("Hint name must be kept, but got '%s'", roundabouts[0].HintName)
	}
}

func TestUnionFindClustering(t *testing.T) {
	uf := newUnionFind(5)
	uf.union(0, 1)
	uf.union(1, 2)
	uf.union(3, 4)
	if uf.find(0) != uf.find(2) {
		t.Errorf("0 and 2 must share a root")
	}
	if uf.find(0) == uf.find(3) {
		t.Errorf("0 and 3 must not share a root")
	}
}

func TestSynthesizeJunctionFromHint(t *testing.T) {
	net := NewRoadNetwork()
	// two parallel roads too far apart for geometric detection, close enough
	// for a hint between them to reach both interiors
	buildSpline(net, ROAD_CLASS_RESIDENTIAL, orb.Point{0, 0}, orb.Point{1, 0}, 10, 21, 100)
	buildSpline(net, ROAD_CLASS_RESIDENTIAL, orb.Point{0, 15}, orb.Point{1, 0}, 10, 21, 100)

	hints := []JunctionHint{
		{Position: orb.Point{100, 7.5}, Type: HINT_CROSSING, Explicit: true, Name: "Mill Lane"},
		// close to an endpoint junction but outside the match radius:
		// position disagreement, must not synthesize a duplicate
		{Position: orb.Point{12, 0}, Type: HINT_CROSSING, Explicit: true, Name: "Ghost"},
	}
	junctions := NewJunctionDetector(net, WithJunctionHints(hints)).Detect()

	var synthesized *Junction
	for _, junction := range junctions {
		if junction.HintName == "Mill Lane" {
			synthesized = junction
		}
		if junction.HintName == "Ghost" {
			t.Errorf("Hint near an existing junction must not synthesize a new one")
		}
	}
	if synthesized == nil {
		t.Fatalf("Explicit hint near two road interiors must synthesize a junction")
	}
	if synthesized.Type != JUNCTION_MID_SPLINE_CROSSING {
		t.Errorf("Synthesized crossing type must be %s, but got %s",
			JUNCTION_MID_SPLINE_CROSSING, synthesized.Type)
	}
	if synthesized.DistinctSplineCount() != 2 {
		t.Errorf("Synthesized junction must span 2 splines, but got %d", synthesized.DistinctSplineCount())
	}
	if findDistance(synthesized.Position, orb.Point{100, 7.5}) > 1.0 {
		t.Errorf("Synthesized junction must sit between the roads, but got %v", synthesized.Position)
	}
}
