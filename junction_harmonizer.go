package roadgrade

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

const (
	// T_SURFACE_DOMINANCE_THRESHOLD When the primary road surface and the terminating
	// roads disagree by more than this (meters), the primary surface wins outright
	T_SURFACE_DOMINANCE_THRESHOLD = 0.5
	// LENGTH_RATIO_AVERAGE_THRESHOLD Equal-priority pair: elevations are averaged when
	// the shorter road is at least this fraction of the longer one, otherwise the
	// longer road dominates
	LENGTH_RATIO_AVERAGE_THRESHOLD = 0.8
	// CROSSING_LENGTH_RATIO_THRESHOLD Same tie-break at mid-spline crossings; slightly
	// stricter so the crossing road gives way earlier
	CROSSING_LENGTH_RATIO_THRESHOLD = 0.7
	// THROUGH_ROUTE_MIN_ANGLE_DEG Pair of approach directions at least this close to
	// opposite (degrees) forms the through route of a multi-way junction
	THROUGH_ROUTE_MIN_ANGLE_DEG = 140.0
)

// JunctionHarmonizer computes one harmonized elevation per junction and
// propagates it along the affected splines.
type JunctionHarmonizer struct {
	net     *RoadNetwork
	terrain *ElevationGrid
}

// NewJunctionHarmonizer prepares harmonizer over given network and terrain
func NewJunctionHarmonizer(net *RoadNetwork, terrain *ElevationGrid) *JunctionHarmonizer {
	return &JunctionHarmonizer{net: net, terrain: terrain}
}

// computeElevation resolves the target elevation of one junction by its
// type-specific rule. Returns false when no contributor carries a usable
// elevation.
func (harmonizer *JunctionHarmonizer) computeElevation(junction *Junction) bool {
	var elevation float64
	switch junction.Type {
	case JUNCTION_ENDPOINT:
		elevation = harmonizer.endpointElevation(junction)
	case JUNCTION_T:
		elevation = harmonizer.tJunctionElevation(junction)
	case JUNCTION_MID_SPLINE_CROSSING:
		elevation = harmonizer.sharedElevation(junction, true)
	default:
		elevation = harmonizer.sharedElevation(junction, false)
	}
	if !isFiniteElevation(elevation) {
		log.Warnw("Junction elevation could not be resolved, skipped",
			"junction", junction.ID,
			"type", junction.Type.String(),
		)
		return false
	}
	junction.HarmonizedElevation = elevation
	return true
}

// endpointElevation blends a dead end's road elevation toward the terrain
// directly beneath it. Blend strength 0 keeps the road, 1 drops it onto the
// terrain.
func (harmonizer *JunctionHarmonizer) endpointElevation(junction *Junction) float64 {
	c := junction.Contributors[0]
	road := c.CrossSection.TargetElevation
	terrain := harmonizer.terrain.ElevationAt(c.CrossSection.Position)
	if !isFiniteElevation(road) {
		return terrain
	}
	if !isFiniteElevation(terrain) {
		return road
	}
	return lerp(road, terrain, c.Spline.Params.EndpointBlend)
}

// tJunctionElevation makes the highest-priority continuous road authoritative.
// Its surface elevation at the attachment point (centerline plus banking plus
// longitudinal slope) wins outright when the terminating roads disagree by
// more than the dominance threshold; otherwise continuous and terminating
// elevations are blended by priority. Per-edge constraints for the
// terminating cross-section are projected onto the same surface.
func (harmonizer *JunctionHarmonizer) tJunctionElevation(junction *Junction) float64 {
	primary := highestPriorityContinuous(junction)
	if primary == nil {
		return harmonizer.sharedElevation(junction, false)
	}

	terminating := junction.TerminatingContributors()
	attachPoint := junction.Position
	if len(terminating) > 0 {
		attachPoint = terminating[0].CrossSection.Position
	}
	nearest := primary.Spline.NearestCrossSection(attachPoint)
	if nearest == nil {
		return math.NaN()
	}
	surface := primary.Spline.SurfaceElevationAt(nearest.Index, attachPoint)
	if !isFiniteElevation(surface) {
		surface = harmonizer.terrain.ElevationAt(attachPoint)
	}

	termSum, termWeight := 0.0, 0.0
	for _, c := range terminating {
		elevation := c.CrossSection.TargetElevation
		if !isFiniteElevation(elevation) {
			continue
		}
		w := float64(c.Spline.Priority)
		termSum += elevation * w
		termWeight += w
	}

	var result float64
	if termWeight == 0 || math.Abs(surface-termSum/termWeight) > T_SURFACE_DOMINANCE_THRESHOLD {
		result = surface
	} else {
		w := float64(primary.Spline.Priority)
		result = (surface*w + termSum) / (w + termWeight)
	}

	harmonizer.projectEdgeConstraints(primary, terminating, result)
	return result
}

// projectEdgeConstraints computes left/right edge elevations for every
// terminating cross-section by projecting its edges onto the primary surface
func (harmonizer *JunctionHarmonizer) projectEdgeConstraints(primary *Contributor, terminating []*Contributor, centerline float64) {
	for _, c := range terminating {
		cs := c.CrossSection
		halfWidth := c.Spline.Width / 2.0
		left := harmonizer.projectOntoPrimary(primary, cs.LeftEdgePosition(halfWidth), centerline)
		right := harmonizer.projectOntoPrimary(primary, cs.RightEdgePosition(halfWidth), centerline)
		cs.SetEdgeConstraints(left, right)
	}
}

// projectOntoPrimary returns the primary road's surface elevation under pt,
// falling back to the junction centerline elevation off the surface
func (harmonizer *JunctionHarmonizer) projectOntoPrimary(primary *Contributor, pt orb.Point, fallback float64) float64 {
	nearest := primary.Spline.NearestCrossSection(pt)
	if nearest == nil {
		return fallback
	}
	elevation := primary.Spline.SurfaceElevationAt(nearest.Index, pt)
	if !isFiniteElevation(elevation) {
		return fallback
	}
	return elevation
}

// sharedElevation resolves crossings and multi-way junctions. Differing
// priorities decide directly (squared weighting at crossings so the dominant
// road wins harder); equal priorities fall back to geometric tie-breaks.
func (harmonizer *JunctionHarmonizer) sharedElevation(junction *Junction, crossing bool) float64 {
	contributors := usableContributors(junction)
	if len(contributors) == 0 {
		return math.NaN()
	}
	if len(contributors) == 1 {
		return contributors[0].CrossSection.TargetElevation
	}

	if !equalPriorities(contributors) {
		sum, weight := 0.0, 0.0
		for _, c := range contributors {
			w := float64(c.Spline.Priority)
			if crossing {
				w *= w
			}
			sum += c.CrossSection.TargetElevation * w
			weight += w
		}
		return sum / weight
	}

	if len(contributors) == 2 {
		threshold := LENGTH_RATIO_AVERAGE_THRESHOLD
		if crossing {
			threshold = CROSSING_LENGTH_RATIO_THRESHOLD
		}
		return dominantPairElevation(contributors[0], contributors[1], threshold)
	}
	return harmonizer.throughRouteElevation(junction, contributors)
}

// dominantPairElevation lets the longer of two equal-priority roads win
// unless their lengths are comparable, then averages
func dominantPairElevation(a, b *Contributor, ratioThreshold float64) float64 {
	longer, shorter := a, b
	if shorter.Spline.LengthMeters > longer.Spline.LengthMeters {
		longer, shorter = shorter, longer
	}
	if longer.Spline.LengthMeters <= 0 {
		return (a.CrossSection.TargetElevation + b.CrossSection.TargetElevation) / 2.0
	}
	ratio := shorter.Spline.LengthMeters / longer.Spline.LengthMeters
	if ratio >= ratioThreshold {
		return (a.CrossSection.TargetElevation + b.CrossSection.TargetElevation) / 2.0
	}
	return longer.CrossSection.TargetElevation
}

// throughRouteElevation finds the pair of contributors whose approach
// directions are most nearly opposite; when they form a proper through route
// only that pair is averaged, otherwise all contributors are averaged
// weighted by length.
func (harmonizer *JunctionHarmonizer) throughRouteElevation(junction *Junction, contributors []*Contributor) float64 {
	bestAngle := 0.0
	var bestA, bestB *Contributor
	for i, a := range contributors {
		for _, b := range contributors[i+1:] {
			angle := angleBetweenDirections(approachDirection(junction, a), approachDirection(junction, b))
			if angle > bestAngle {
				bestAngle = angle
				bestA, bestB = a, b
			}
		}
	}
	if bestA != nil && bestAngle >= THROUGH_ROUTE_MIN_ANGLE_DEG {
		return (bestA.CrossSection.TargetElevation + bestB.CrossSection.TargetElevation) / 2.0
	}

	sum, weight := 0.0, 0.0
	for _, c := range contributors {
		w := c.Spline.LengthMeters
		if w <= 0 {
			w = 1.0
		}
		sum += c.CrossSection.TargetElevation * w
		weight += w
	}
	return sum / weight
}

// approachDirection returns unit vector pointing from the junction into the
// contributor's road, estimated a few cross-sections inward
func approachDirection(junction *Junction, c *Contributor) orb.Point {
	const inward = 3
	cs := c.CrossSection
	spline := c.Spline
	index := cs.Index
	target := index
	if c.IsEnd || (!c.IsStart && index > len(spline.CrossSections)/2) {
		target = maxInt(index-inward, 0)
	} else {
		target = minInt(index+inward, len(spline.CrossSections)-1)
	}
	if target == index {
		return cs.Tangent
	}
	return normalizeDirection(junction.Position, spline.CrossSections[target].Position)
}

// highestPriorityContinuous returns the authoritative continuous contributor
// of a T-junction: highest priority, longest, lowest spline id
func highestPriorityContinuous(junction *Junction) *Contributor {
	continuous := junction.ContinuousContributors()
	if len(continuous) == 0 {
		return nil
	}
	sort.Slice(continuous, func(i, j int) bool {
		a, b := continuous[i].Spline, continuous[j].Spline
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.LengthMeters != b.LengthMeters {
			return a.LengthMeters > b.LengthMeters
		}
		return a.ID < b.ID
	})
	return continuous[0]
}

// usableContributors filters out contributors with unresolved elevations so
// NaN can not poison any weighted sum
func usableContributors(junction *Junction) []*Contributor {
	out := []*Contributor{}
	for _, c := range junction.Contributors {
		if isFiniteElevation(c.CrossSection.TargetElevation) {
			out = append(out, c)
		}
	}
	return out
}

func equalPriorities(contributors []*Contributor) bool {
	first := contributors[0].Spline.Priority
	for _, c := range contributors[1:] {
		if c.Spline.Priority != first {
			return false
		}
	}
	return true
}
