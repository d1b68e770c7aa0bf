package roadgrade

import (
	"math"
)

const (
	// PLATEAU_SPREAD_THRESHOLD Elevation spread (meters) among approach samples above
	// which the plateau target is biased toward the higher roads
	PLATEAU_SPREAD_THRESHOLD = 1.0
	// PLATEAU_HIGH_BIAS Weight of the higher approach group when the spread bias kicks in
	PLATEAU_HIGH_BIAS = 0.7
	// PLATEAU_BASE_RADIUS_FACTOR Plateau radius in widths of the widest contributing road
	PLATEAU_BASE_RADIUS_FACTOR = 1.5
	// PLATEAU_RADIUS_PER_CONTRIBUTOR Extra plateau radius fraction per additional contributor
	PLATEAU_RADIUS_PER_CONTRIBUTOR = 0.25
)

// influence One junction's claim on a cross-section: the elevation it wants
// and how strongly (1.0 at the junction, 0.0 at the blend boundary).
type influence struct {
	elevation float64
	weight    float64
}

// influenceAccumulator Two-pass propagation state. Every junction first
// records its influence for every cross-section it reaches; the final
// elevation of a cross-section is then resolved from all influences at once.
// Sequential independent propagation would leave a seam where two blend
// zones meet.
type influenceAccumulator struct {
	byCrossSection map[CrossSectionID][]influence
}

func newInfluenceAccumulator() *influenceAccumulator {
	return &influenceAccumulator{
		byCrossSection: make(map[CrossSectionID][]influence),
	}
}

func (accum *influenceAccumulator) add(id CrossSectionID, elevation, weight float64) {
	if weight <= 0 || !isFiniteElevation(elevation) {
		return
	}
	accum.byCrossSection[id] = append(accum.byCrossSection[id], influence{elevation: elevation, weight: weight})
}

// collectInfluences records the junction's elevation constraint along every
// affected spline: T-junctions only along terminating roads, crossings
// bidirectionally from the crossing point, multi-way junctions along all
// contributing roads.
func (harmonizer *JunctionHarmonizer) collectInfluences(junction *Junction, accum *influenceAccumulator) {
	for _, c := range junction.Contributors {
		blendDistance := c.Spline.Params.BlendDistance
		if blendDistance <= 0 {
			continue
		}
		blendFunc := c.Spline.Params.BlendFunc
		record := func(cs *CrossSection, dist float64) {
			weight := 1.0 - blendFunc.Evaluate(dist/blendDistance)
			accum.add(cs.ID, junction.HarmonizedElevation, weight)
		}
		switch {
		case junction.Type == JUNCTION_T && c.IsContinuous():
			// the primary road of a T-junction is authoritative, never pulled
		case c.IsContinuous():
			walkBlendZone(c.Spline, c.CrossSection.Index, -1, blendDistance, record)
			walkBlendZone(c.Spline, c.CrossSection.Index, +1, blendDistance, record)
		case c.IsStart:
			walkBlendZone(c.Spline, c.CrossSection.Index, +1, blendDistance, record)
		default:
			walkBlendZone(c.Spline, c.CrossSection.Index, -1, blendDistance, record)
		}
	}
}

// walkBlendZone visits cross-sections from fromIndex in the given direction
// until the running distance exceeds blendDistance. The starting
// cross-section is visited at distance 0.
func walkBlendZone(spline *Spline, fromIndex, direction int, blendDistance float64, visit func(cs *CrossSection, dist float64)) {
	if fromIndex < 0 || fromIndex >= len(spline.CrossSections) {
		return
	}
	origin := spline.CrossSections[fromIndex].DistanceAlong
	for i := fromIndex; i >= 0 && i < len(spline.CrossSections); i += direction {
		cs := spline.CrossSections[i]
		dist := math.Abs(cs.DistanceAlong - origin)
		if dist > blendDistance {
			return
		}
		visit(cs, dist)
	}
}

// resolveInfluences computes every influenced cross-section's final elevation:
// the influence-weighted average of all junctions touching it, blended against
// the pre-harmonization original by the combined weight (capped at 1.0). The
// result always stays inside the convex hull of the junction elevations and
// the original value.
func (harmonizer *JunctionHarmonizer) resolveInfluences(accum *influenceAccumulator) int {
	resolved := 0
	for _, spline := range harmonizer.net.Splines() {
		for _, cs := range spline.CrossSections {
			influences, ok := accum.byCrossSection[cs.ID]
			if !ok {
				continue
			}
			sum, weight := 0.0, 0.0
			for _, inf := range influences {
				sum += inf.elevation * inf.weight
				weight += inf.weight
			}
			if weight <= 0 {
				continue
			}
			average := sum / weight
			total := math.Min(weight, 1.0)
			if isFiniteElevation(cs.TargetElevation) {
				cs.TargetElevation = lerp(cs.TargetElevation, average, total)
			} else {
				cs.TargetElevation = average
			}
			resolved++
		}
	}
	return resolved
}

// reprojectTJunctionEdges runs the third pass for T-junctions: edge
// elevations of every cross-section inside the terminating road's blend zone
// are projected onto the nearest point of the primary surface, with the local
// slope recomputed at that nearest point. Curved or sloped primary roads are
// thereby matched continuously instead of via one fixed reference.
func (harmonizer *JunctionHarmonizer) reprojectTJunctionEdges(junction *Junction) int {
	primary := highestPriorityContinuous(junction)
	if primary == nil {
		return 0
	}
	projected := 0
	for _, c := range junction.TerminatingContributors() {
		blendDistance := c.Spline.Params.BlendDistance
		blendFunc := c.Spline.Params.BlendFunc
		halfWidth := c.Spline.Width / 2.0
		direction := -1
		if c.IsStart {
			direction = +1
		}
		walkBlendZone(c.Spline, c.CrossSection.Index, direction, blendDistance, func(cs *CrossSection, dist float64) {
			weight := 1.0 - blendFunc.Evaluate(dist/blendDistance)
			if weight <= 0 || !isFiniteElevation(cs.TargetElevation) {
				return
			}
			left := harmonizer.projectOntoPrimary(primary, cs.LeftEdgePosition(halfWidth), cs.TargetElevation)
			right := harmonizer.projectOntoPrimary(primary, cs.RightEdgePosition(halfWidth), cs.TargetElevation)
			cs.SetEdgeConstraints(
				lerp(cs.TargetElevation, left, weight),
				lerp(cs.TargetElevation, right, weight),
			)
			projected++
		})
	}
	return projected
}

// smoothPlateau runs the fourth pass at one multi-way junction: original
// elevations are sampled one full blend distance back along each contributing
// road (past any propagation influence), averaged by priority with a bias
// toward the higher roads when the spread exceeds the threshold, and blended
// into every cross-section within a radius scaled to the widest road and the
// contributor count.
func (harmonizer *JunctionHarmonizer) smoothPlateau(junction *Junction, original map[CrossSectionID]float64, allGrid *spatialGrid) int {
	type sample struct {
		elevation float64
		priority  float64
	}
	samples := []sample{}
	widest := 0.0
	for _, c := range junction.Contributors {
		if c.Spline.Width > widest {
			widest = c.Spline.Width
		}
		cs := sampleBeyondBlendZone(c, original)
		if cs == nil {
			continue
		}
		elevation, ok := original[cs.ID]
		if !ok || !isFiniteElevation(elevation) {
			continue
		}
		samples = append(samples, sample{elevation: elevation, priority: float64(c.Spline.Priority)})
	}
	if len(samples) == 0 || widest <= 0 {
		return 0
	}

	low, high := math.Inf(1), math.Inf(-1)
	sum, weight := 0.0, 0.0
	for _, s := range samples {
		sum += s.elevation * s.priority
		weight += s.priority
		low = math.Min(low, s.elevation)
		high = math.Max(high, s.elevation)
	}
	target := sum / weight
	if high-low > PLATEAU_SPREAD_THRESHOLD {
		mid := (low + high) / 2.0
		highSum, highWeight := 0.0, 0.0
		for _, s := range samples {
			if s.elevation >= mid {
				highSum += s.elevation * s.priority
				highWeight += s.priority
			}
		}
		if highWeight > 0 {
			target = PLATEAU_HIGH_BIAS*(highSum/highWeight) + (1.0-PLATEAU_HIGH_BIAS)*target
		}
	}

	radius := widest * PLATEAU_BASE_RADIUS_FACTOR * (1.0 + PLATEAU_RADIUS_PER_CONTRIBUTOR*float64(len(junction.Contributors)-1))
	smoothed := 0
	for _, cs := range allGrid.queryRadius(junction.Position, radius) {
		if !isFiniteElevation(cs.TargetElevation) {
			continue
		}
		t := findDistance(cs.Position, junction.Position) / radius
		weight := 1.0 - smootherstep(t)
		cs.TargetElevation = lerp(cs.TargetElevation, target, weight)
		smoothed++
	}
	return smoothed
}

// sampleBeyondBlendZone returns the contributor's cross-section one full
// blend distance back from the junction, where propagation has not touched
// the elevation
func sampleBeyondBlendZone(c *Contributor, original map[CrossSectionID]float64) *CrossSection {
	spline := c.Spline
	blendDistance := spline.Params.BlendDistance
	origin := c.CrossSection.DistanceAlong
	direction := +1
	if c.IsEnd {
		direction = -1
	}
	var found *CrossSection
	for i := c.CrossSection.Index; i >= 0 && i < len(spline.CrossSections); i += direction {
		cs := spline.CrossSections[i]
		found = cs
		if math.Abs(cs.DistanceAlong-origin) >= blendDistance {
			break
		}
	}
	return found
}

// taperEndpoint fades a dead end's road elevation toward the harmonized
// endpoint target (itself pulled toward the local terrain) over the
// configured taper distance using the quintic smoothstep
func (harmonizer *JunctionHarmonizer) taperEndpoint(junction *Junction) int {
	c := junction.Contributors[0]
	taper := c.Spline.Params.EndpointTaper
	if taper <= 0 {
		return 0
	}
	direction := -1
	if c.IsStart {
		direction = +1
	}
	tapered := 0
	walkBlendZone(c.Spline, c.CrossSection.Index, direction, taper, func(cs *CrossSection, dist float64) {
		if !isFiniteElevation(cs.TargetElevation) {
			return
		}
		weight := 1.0 - smootherstep(dist/taper)
		cs.TargetElevation = lerp(cs.TargetElevation, junction.HarmonizedElevation, weight)
		tapered++
	})
	return tapered
}
