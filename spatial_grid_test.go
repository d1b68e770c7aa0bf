package roadgrade

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func gridFixture(positions []orb.Point, cellSize float64) *spatialGrid {
	crossSections := make([]*CrossSection, len(positions))
	for i, pos := range positions {
		crossSections[i] = NewCrossSection(CrossSectionID(i+1), 1, i, pos)
	}
	return newSpatialGrid(crossSections, cellSize)
}

func TestQueryRadius(t *testing.T) {
	grid := gridFixture([]orb.Point{
		{0, 0},
		{5, 0},
		{0, 5},
		{20, 20},
		{-3, -4},
	}, 10.0)

	found := grid.queryRadius(orb.Point{0, 0}, 6.0)
	if len(found) != 4 {
		t.Fatalf("Found cross-sections must be 4, but got %d", len(found))
	}
	for _, cs := range found {
		if findDistance(cs.Position, orb.Point{0, 0}) > 6.0 {
			t.Errorf("Cross-section %d at %v is outside query radius", cs.ID, cs.Position)
		}
	}
	if found[0].ID != 1 {
		t.Errorf("Closest cross-section must be 1, but got %d", found[0].ID)
	}
}

func TestQueryRadiusOrdering(t *testing.T) {
	// two points at the same distance must come back in id order
	grid := gridFixture([]orb.Point{
		{7, 0},
		{-7, 0},
		{3, 0},
	}, 10.0)

	found := grid.queryRadius(orb.Point{0, 0}, 10.0)
	if len(found) != 3 {
		t.Fatalf("Found cross-sections must be 3, but got %d", len(found))
	}
	expected := []CrossSectionID{3, 1, 2}
	for i, cs := range found {
		if cs.ID != expected[i] {
			t.Errorf("Cross-section at position %d must be %d, but got %d", i, expected[i], cs.ID)
		}
	}
}

func TestQueryRadiusCrossesCells(t *testing.T) {
	// small cells force the query to visit multiple buckets
	grid := gridFixture([]orb.Point{
		{0.5, 0.5},
		{1.5, 0.5},
		{2.5, 2.5},
		{-1.5, -1.5},
	}, 1.0)

	found := grid.queryRadius(orb.Point{0, 0}, 3.0)
	if len(found) != 3 {
		t.Fatalf("Found cross-sections must be 3, but got %d", len(found))
	}
}

func TestNearest(t *testing.T) {
	grid := gridFixture([]orb.Point{
		{10, 0},
		{4, 3},
		{0, 100},
	}, 10.0)

	nearest := grid.nearest(orb.Point{0, 0}, 50.0)
	if nearest == nil {
		t.Fatalf("Nearest cross-section must be found")
	}
	if nearest.ID != 2 {
		t.Errorf("Nearest cross-section must be 2, but got %d", nearest.ID)
	}
	if got := grid.nearest(orb.Point{1000, 1000}, 5.0); got != nil {
		t.Errorf("Nearest outside any point must be nil, but got %d", got.ID)
	}
}

func TestGridExcludesUnresolvedPositions(t *testing.T) {
	crossSections := []*CrossSection{
		NewCrossSection(1, 1, 0, orb.Point{0, 0}),
		NewCrossSection(2, 1, 1, orb.Point{math.NaN(), math.NaN()}),
	}
	grid := newSpatialGrid(crossSections, 10.0)
	found := grid.queryRadius(orb.Point{0, 0}, 100.0)
	if len(found) != 1 || found[0].ID != 1 {
		t.Errorf("Query must only see the finite cross-section, but got %d results", len(found))
	}
}
