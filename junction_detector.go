package roadgrade

import (
	"sort"
	"time"
)

const (
	// DEFAULT_DETECTION_RADIUS Fallback clustering radius (meters) when no spline configures one
	DEFAULT_DETECTION_RADIUS = 10.0
	// MAX_CROSSING_SAMPLES_PER_SPLINE Interior sampling cap for mid-spline crossing detection
	MAX_CROSSING_SAMPLES_PER_SPLINE = 100
)

// JunctionDetector finds meeting points of splines: endpoint clusters,
// T-junctions (an endpoint against the interior of another spline) and
// mid-spline crossings (two interiors, neither terminating).
type JunctionDetector struct {
	net           *RoadNetwork
	defaultRadius float64
	hints         []JunctionHint
}

// NewJunctionDetector prepares detector over given network
func NewJunctionDetector(net *RoadNetwork, options ...func(*JunctionDetector)) *JunctionDetector {
	detector := &JunctionDetector{
		net:           net,
		defaultRadius: DEFAULT_DETECTION_RADIUS,
	}
	for _, option := range options {
		option(detector)
	}
	return detector
}

// WithDefaultDetectionRadius overrides the fallback clustering radius (meters)
func WithDefaultDetectionRadius(radius float64) func(*JunctionDetector) {
	return func(detector *JunctionDetector) {
		detector.defaultRadius = radius
	}
}

// WithJunctionHints supplies externally-sourced junction hints for reconciliation
func WithJunctionHints(hints []JunctionHint) func(*JunctionDetector) {
	return func(detector *JunctionDetector) {
		detector.hints = hints
	}
}

// Detect runs the full detection pass and returns junctions with sequential ids
func (detector *JunctionDetector) Detect() []*Junction {
	st := time.Now()

	endpoints := detector.collectEndpoints()
	junctions := detector.clusterEndpoints(endpoints)

	allGrid := detector.buildCrossSectionGrid()
	for _, junction := range junctions {
		detector.attachContinuousContributors(junction, allGrid)
	}
	junctions = append(junctions, detector.detectMidSplineCrossings(junctions, allGrid)...)

	for _, junction := range junctions {
		detector.markRoundabout(junction)
		junction.Classify()
		junction.CrossMaterial = junction.HasMixedMaterials()
	}

	if len(detector.hints) > 0 {
		junctions = detector.reconcileHints(junctions, allGrid)
	}

	for i, junction := range junctions {
		junction.ID = JunctionID(i)
	}

	log.Infow("Junction detection done",
		"junctions", len(junctions),
		"endpoints", len(endpoints),
		"elapsed", time.Since(st),
	)
	return junctions
}

// collectEndpoints gathers every spline's first and, if distinct, last cross-section
func (detector *JunctionDetector) collectEndpoints() []*CrossSection {
	endpoints := []*CrossSection{}
	for _, spline := range detector.net.Splines() {
		first := spline.First()
		if first == nil {
			continue
		}
		endpoints = append(endpoints, first)
		last := spline.Last()
		if last != nil && last != first {
			endpoints = append(endpoints, last)
		}
	}
	return endpoints
}

// clusterEndpoints groups endpoints with union-find over a uniform spatial
// grid. Two endpoints union when their distance is within the larger of
// their splines' detection radii; visiting only nearby grid cells keeps this
// near-linear instead of the naive all-pairs transitive closure.
func (detector *JunctionDetector) clusterEndpoints(endpoints []*CrossSection) []*Junction {
	if len(endpoints) == 0 {
		return nil
	}
	maxRadius := detector.maxRadius()
	grid := newSpatialGrid(endpoints, maxRadius)

	indexOf := make(map[CrossSectionID]int, len(endpoints))
	for i, cs := range endpoints {
		indexOf[cs.ID] = i
	}

	uf := newUnionFind(len(endpoints))
	for i, cs := range endpoints {
		radius := detector.splineRadius(cs.SplineID)
		for _, candidate := range grid.queryRadius(cs.Position, maxRadius) {
			j, ok := indexOf[candidate.ID]
			if !ok || j <= i {
				continue
			}
			pairRadius := radius
			if candidateRadius := detector.splineRadius(candidate.SplineID); candidateRadius > pairRadius {
				pairRadius = candidateRadius
			}
			if findDistance(cs.Position, candidate.Position) <= pairRadius {
				uf.union(i, j)
			}
		}
	}

	groups := make(map[int][]*CrossSection)
	roots := []int{}
	for i, cs := range endpoints {
		root := uf.find(i)
		if _, seen := groups[root]; !seen {
			roots = append(roots, root)
		}
		groups[root] = append(groups[root], cs)
	}
	sort.Ints(roots)

	junctions := make([]*Junction, 0, len(roots))
	for _, root := range roots {
		junction := &Junction{}
		for _, cs := range groups[root] {
			junction.Contributors = append(junction.Contributors, &Contributor{
				Spline:       detector.net.SplineByID(cs.SplineID),
				CrossSection: cs,
				IsStart:      cs.IsStart,
				IsEnd:        cs.IsEnd,
			})
		}
		junction.RecomputeCentroid()
		junctions = append(junctions, junction)
	}
	return junctions
}

// attachContinuousContributors discovers T-junctions: the endpoint cluster
// gains a passing-through road when an interior cross-section of a spline
// not yet represented lies within the junction's detection radius. Only the
// closest interior cross-section per spline is attached.
func (detector *JunctionDetector) attachContinuousContributors(junction *Junction, allGrid *spatialGrid) {
	radius := junction.DetectionRadius()
	if radius <= 0 {
		radius = detector.defaultRadius
	}
	closestBySpline := make(map[SplineID]*CrossSection)
	order := []SplineID{}
	for _, cs := range allGrid.queryRadius(junction.Position, radius) {
		if cs.IsEndpoint() {
			continue
		}
		if junction.HasSpline(cs.SplineID) {
			continue
		}
		if _, seen := closestBySpline[cs.SplineID]; seen {
			continue // query is distance ordered, first hit per spline is the closest
		}
		closestBySpline[cs.SplineID] = cs
		order = append(order, cs.SplineID)
	}
	for _, splineID := range order {
		cs := closestBySpline[splineID]
		junction.Contributors = append(junction.Contributors, &Contributor{
			Spline:       detector.net.SplineByID(splineID),
			CrossSection: cs,
		})
	}
}

// detectMidSplineCrossings finds places where interiors of two splines meet
// with neither terminating. Interior cross-sections are sampled (capped per
// spline) and candidate pairs are deduplicated two ways: spline pairs already
// connected by any junction are skipped, and a new crossing is dropped when
// another crossing of the same pair sits within half the detection radius.
func (detector *JunctionDetector) detectMidSplineCrossings(existing []*Junction, allGrid *spatialGrid) []*Junction {
	connectedPairs := make(map[[2]SplineID]struct{})
	markPair := func(a, b SplineID) {
		if b < a {
			a, b = b, a
		}
		connectedPairs[[2]SplineID{a, b}] = struct{}{}
	}
	pairConnected := func(a, b SplineID) bool {
		if b < a {
			a, b = b, a
		}
		_, ok := connectedPairs[[2]SplineID{a, b}]
		return ok
	}
	for _, junction := range existing {
		for i, c1 := range junction.Contributors {
			for _, c2 := range junction.Contributors[i+1:] {
				markPair(c1.Spline.ID, c2.Spline.ID)
			}
		}
	}

	type closestPair struct {
		own      *CrossSection
		other    *CrossSection
		distance float64
	}

	crossings := []*Junction{}
	for _, spline := range detector.net.Splines() {
		interior := spline.CrossSections
		if len(interior) <= 2 {
			continue
		}
		interior = interior[1 : len(interior)-1]
		step := 1
		if len(interior) > MAX_CROSSING_SAMPLES_PER_SPLINE {
			step = len(interior) / MAX_CROSSING_SAMPLES_PER_SPLINE
		}
		radius := spline.Params.DetectionRadius
		if radius <= 0 {
			radius = detector.defaultRadius
		}

		// per other spline, keep the two closest points; their midpoint is
		// where the crossing junction is placed
		bestPairs := make(map[SplineID]closestPair)
		order := []SplineID{}
		for i := 0; i < len(interior); i += step {
			cs := interior[i]
			for _, candidate := range allGrid.queryRadius(cs.Position, radius) {
				if candidate.SplineID == spline.ID || candidate.IsEndpoint() {
					continue
				}
				// only handle each unordered pair once, from the lower spline id
				if candidate.SplineID < spline.ID {
					continue
				}
				if pairConnected(spline.ID, candidate.SplineID) {
					continue
				}
				distance := findDistance(cs.Position, candidate.Position)
				best, seen := bestPairs[candidate.SplineID]
				if !seen {
					order = append(order, candidate.SplineID)
				}
				if !seen || distance < best.distance {
					bestPairs[candidate.SplineID] = closestPair{own: cs, other: candidate, distance: distance}
				}
			}
		}
		sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

		for _, otherID := range order {
			best := bestPairs[otherID]
			crossingPos := middlePoint(best.own.Position, best.other.Position)
			tooClose := false
			for _, crossing := range crossings {
				if crossing.HasSpline(spline.ID) && crossing.HasSpline(otherID) &&
					findDistance(crossing.Position, crossingPos) < radius/2.0 {
					tooClose = true
					break
				}
			}
			if tooClose {
				continue
			}
			crossing := &Junction{
				Type:     JUNCTION_MID_SPLINE_CROSSING,
				Position: crossingPos,
				Contributors: []*Contributor{
					{Spline: spline, CrossSection: best.own},
					{Spline: detector.net.SplineByID(otherID), CrossSection: best.other},
				},
			}
			crossings = append(crossings, crossing)
			markPair(spline.ID, otherID)
		}
	}
	return crossings
}

// markRoundabout types junctions touching a traffic circle ring so the
// generic harmonizer leaves them to the roundabout pass.
func (detector *JunctionDetector) markRoundabout(junction *Junction) {
	for _, c := range junction.Contributors {
		if c.Spline.IsRoundabout {
			junction.Type = JUNCTION_ROUNDABOUT
			junction.Excluded = true
			return
		}
	}
}

func (detector *JunctionDetector) buildCrossSectionGrid() *spatialGrid {
	return newSpatialGrid(detector.net.CrossSections(), detector.maxRadius())
}

func (detector *JunctionDetector) maxRadius() float64 {
	radius := detector.defaultRadius
	if configured := detector.net.MaxDetectionRadius(); configured > radius {
		radius = configured
	}
	return radius
}

func (detector *JunctionDetector) splineRadius(id SplineID) float64 {
	spline := detector.net.SplineByID(id)
	if spline == nil || spline.Params.DetectionRadius <= 0 {
		return detector.defaultRadius
	}
	return spline.Params.DetectionRadius
}
