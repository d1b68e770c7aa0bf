package roadgrade

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// gridCell Key of one uniform grid bucket
type gridCell struct {
	ix int
	iy int
}

// spatialGrid Uniform grid index over cross-sections. Cell size is chosen at
// build time (max of a default and the largest per-spline detection radius)
// so radius queries never need to visit more than the 3x3 cell neighborhood
// around the query point plus the extra ring the radius demands.
type spatialGrid struct {
	cellSize float64
	cells    map[gridCell][]*CrossSection
}

// newSpatialGrid builds grid over given cross-sections. Cross-sections with
// non-finite positions are excluded so they can not surface in queries.
func newSpatialGrid(crossSections []*CrossSection, cellSize float64) *spatialGrid {
	if cellSize <= 0 {
		cellSize = 1.0
	}
	grid := &spatialGrid{
		cellSize: cellSize,
		cells:    make(map[gridCell][]*CrossSection),
	}
	for _, cs := range crossSections {
		if math.IsNaN(cs.Position.X()) || math.IsNaN(cs.Position.Y()) {
			continue
		}
		cell := grid.cellOf(cs.Position)
		grid.cells[cell] = append(grid.cells[cell], cs)
	}
	return grid
}

func (grid *spatialGrid) cellOf(pt orb.Point) gridCell {
	return gridCell{
		ix: int(math.Floor(pt.X() / grid.cellSize)),
		iy: int(math.Floor(pt.Y() / grid.cellSize)),
	}
}

// queryRadius returns all indexed cross-sections within radius of pt,
// ordered by (distance, cross-section id) so downstream consumers iterate
// deterministically.
func (grid *spatialGrid) queryRadius(pt orb.Point, radius float64) []*CrossSection {
	if radius <= 0 {
		return nil
	}
	reach := int(math.Ceil(radius / grid.cellSize))
	center := grid.cellOf(pt)
	radiusSquared := radius * radius

	found := []*CrossSection{}
	for ix := center.ix - reach; ix <= center.ix+reach; ix++ {
		for iy := center.iy - reach; iy <= center.iy+reach; iy++ {
			for _, cs := range grid.cells[gridCell{ix: ix, iy: iy}] {
				if findDistanceSquared(cs.Position, pt) <= radiusSquared {
					found = append(found, cs)
				}
			}
		}
	}
	sort.Slice(found, func(i, j int) bool {
		di := findDistanceSquared(found[i].Position, pt)
		dj := findDistanceSquared(found[j].Position, pt)
		if di == dj {
			return found[i].ID < found[j].ID
		}
		return di < dj
	})
	return found
}

// nearest returns the closest indexed cross-section within radius of pt (nil when none found)
func (grid *spatialGrid) nearest(pt orb.Point, radius float64) *CrossSection {
	found := grid.queryRadius(pt, radius)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}
