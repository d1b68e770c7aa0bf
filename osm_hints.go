package roadgrade

import (
	"context"
	"math"
	"os"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/pkg/errors"
)

type HintType uint16

const (
	HINT_CROSSING = HintType(iota + 1)
	HINT_ROUNDABOUT
	HINT_MOTORWAY_JUNCTION
	HINT_PRIORITY_CONTROL
)

func (iotaIdx HintType) String() string {
	return [...]string{"crossing", "roundabout", "motorway_junction", "priority_control"}[iotaIdx-1]
}

// JunctionHint Externally-sourced knowledge about a junction: where map data
// claims one exists and what kind it is. Explicit hints are mapped features,
// inferred ones are derived from control tags (stop / give way).
type JunctionHint struct {
	Position orb.Point
	Type     HintType
	Explicit bool
	Name     string
}

const (
	// HINT_DUPLICATE_RADIUS_FACTOR Unmatched hints this close (in detection radii) to an
	// existing junction are treated as position disagreement between data sources, not
	// as a missed junction
	HINT_DUPLICATE_RADIUS_FACTOR = 1.5
)

// LoadJunctionHintsFromOSM scans PBF file for junction-bearing nodes and
// projects them into tile-local space.
func LoadJunctionHintsFromOSM(fileName string, proj TileProjection) ([]JunctionHint, error) {
	f, err := os.Open(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "File open")
	}
	defer f.Close()

	scannerNodes := osmpbf.New(context.Background(), f, 4)
	defer scannerNodes.Close()

	st := time.Now()
	hints := []JunctionHint{}
	for scannerNodes.Scan() {
		obj := scannerNodes.Object()
		if obj.ObjectID().Type() != "node" {
			continue
		}
		node := obj.(*osm.Node)
		tagMap := node.TagMap()
		hint, ok := hintFromTags(tagMap)
		if !ok {
			continue
		}
		hint.Position = proj.ToTile(node.Lon, node.Lat)
		hint.Name = tagMap["name"]
		hints = append(hints, hint)
	}
	if err := scannerNodes.Err(); err != nil {
		return nil, errors.Wrap(err, "Can't scan nodes")
	}

	log.Infow("Junction hints loaded", "hints", len(hints), "elapsed", time.Since(st))
	return hints, nil
}

func hintFromTags(tagMap map[string]string) (JunctionHint, bool) {
	if tagMap["junction"] == "roundabout" || tagMap["highway"] == "mini_roundabout" {
		return JunctionHint{Type: HINT_ROUNDABOUT, Explicit: true}, true
	}
	switch tagMap["highway"] {
	case "crossing":
		return JunctionHint{Type: HINT_CROSSING, Explicit: true}, true
	case "motorway_junction":
		return JunctionHint{Type: HINT_MOTORWAY_JUNCTION, Explicit: true}, true
	case "stop", "give_way":
		return JunctionHint{Type: HINT_PRIORITY_CONTROL, Explicit: false}, true
	}
	return JunctionHint{}, false
}

// reconcileHints matches every hint to the nearest unclaimed geometric
// junction within the detection radius (one hint per junction) and re-types
// matched junctions from hint semantics. Unmatched hints may synthesize a new
// junction from nearby cross-sections, unless another junction already sits
// within 1.5 detection radii (position disagreement between data sources).
func (detector *JunctionDetector) reconcileHints(junctions []*Junction, allGrid *spatialGrid) []*Junction {
	radius := detector.maxRadius()
	index := newJunctionGrid(junctions, radius)
	claimed := make(map[*Junction]struct{})

	for _, hint := range detector.hints {
		junction := index.nearestUnclaimed(hint.Position, radius, claimed)
		if junction != nil {
			claimed[junction] = struct{}{}
			applyHint(junction, hint)
			continue
		}
		if index.nearestUnclaimed(hint.Position, radius*HINT_DUPLICATE_RADIUS_FACTOR, nil) != nil {
			continue
		}
		synthesized := detector.synthesizeFromHint(hint, allGrid, radius)
		if synthesized == nil {
			if hint.Explicit {
				log.Warnw("Explicit junction hint has no nearby road geometry",
					"type", hint.Type.String(),
					"name", hint.Name,
					"x", hint.Position.X(),
					"y", hint.Position.Y(),
				)
			}
			continue
		}
		claimed[synthesized] = struct{}{}
		junctions = append(junctions, synthesized)
		index.add(synthesized)
	}
	return junctions
}

// synthesizeFromHint builds a junction around a hint position from the
// closest cross-section of every spline within the radius. Returns nil when
// fewer than two splines are reachable.
func (detector *JunctionDetector) synthesizeFromHint(hint JunctionHint, allGrid *spatialGrid, radius float64) *Junction {
	closestBySpline := make(map[SplineID]*CrossSection)
	order := []SplineID{}
	for _, cs := range allGrid.queryRadius(hint.Position, radius) {
		if _, seen := closestBySpline[cs.SplineID]; seen {
			continue
		}
		closestBySpline[cs.SplineID] = cs
		order = append(order, cs.SplineID)
	}
	if len(order) < 2 {
		return nil
	}
	junction := &Junction{HintName: hint.Name}
	for _, splineID := range order {
		cs := closestBySpline[splineID]
		junction.Contributors = append(junction.Contributors, &Contributor{
			Spline:       detector.net.SplineByID(splineID),
			CrossSection: cs,
			IsStart:      cs.IsStart,
			IsEnd:        cs.IsEnd,
		})
	}
	junction.RecomputeCentroid()
	junction.Classify()
	junction.CrossMaterial = junction.HasMixedMaterials()
	applyHint(junction, hint)
	return junction
}

// applyHint re-types a junction from hint semantics
func applyHint(junction *Junction, hint JunctionHint) {
	if hint.Name != "" {
		junction.HintName = hint.Name
	}
	switch hint.Type {
	case HINT_ROUNDABOUT:
		junction.Type = JUNCTION_ROUNDABOUT
		junction.Excluded = true
	case HINT_CROSSING:
		if junction.DistinctSplineCount() == 2 && len(junction.ContinuousContributors()) >= 2 {
			junction.Type = JUNCTION_MID_SPLINE_CROSSING
		}
	}
}

// junctionGrid Uniform grid nearest-neighbor index over junction centroids
type junctionGrid struct {
	cellSize float64
	cells    map[gridCell][]*Junction
}

func newJunctionGrid(junctions []*Junction, cellSize float64) *junctionGrid {
	if cellSize <= 0 {
		cellSize = 1.0
	}
	index := &junctionGrid{
		cellSize: cellSize,
		cells:    make(map[gridCell][]*Junction),
	}
	for _, junction := range junctions {
		index.add(junction)
	}
	return index
}

func (index *junctionGrid) add(junction *Junction) {
	cell := index.cellOf(junction.Position)
	index.cells[cell] = append(index.cells[cell], junction)
}

func (index *junctionGrid) cellOf(pt orb.Point) gridCell {
	return gridCell{
		ix: int(math.Floor(pt.X() / index.cellSize)),
		iy: int(math.Floor(pt.Y() / index.cellSize)),
	}
}

// nearestUnclaimed returns the closest junction within radius not present in
// claimed (claimed may be nil to consider all junctions).
func (index *junctionGrid) nearestUnclaimed(pt orb.Point, radius float64, claimed map[*Junction]struct{}) *Junction {
	reach := int(math.Ceil(radius / index.cellSize))
	center := index.cellOf(pt)
	radiusSquared := radius * radius

	var nearest *Junction
	best := math.Inf(1)
	for ix := center.ix - reach; ix <= center.ix+reach; ix++ {
		for iy := center.iy - reach; iy <= center.iy+reach; iy++ {
			for _, junction := range index.cells[gridCell{ix: ix, iy: iy}] {
				if claimed != nil {
					if _, taken := claimed[junction]; taken {
						continue
					}
				}
				d := findDistanceSquared(junction.Position, pt)
				if d > radiusSquared {
					continue
				}
				if d < best || (d == best && nearest != nil && junction.ID < nearest.ID) {
					best = d
					nearest = junction
				}
			}
		}
	}
	return nearest
}
