package roadgrade

import (
	"math"
	"time"
)

// RoundaboutHarmonizer Specialized pass for traffic circles: the ring either
// sits at one forced elevation or follows the terrain, and every connecting
// road blends into the ring at its own attachment point.
type RoundaboutHarmonizer struct {
	net     *RoadNetwork
	terrain *ElevationGrid
}

// NewRoundaboutHarmonizer prepares harmonizer over given network and terrain
func NewRoundaboutHarmonizer(net *RoadNetwork, terrain *ElevationGrid) *RoundaboutHarmonizer {
	return &RoundaboutHarmonizer{net: net, terrain: terrain}
}

// ringConnection One road attached to a roundabout ring
type ringConnection struct {
	contributor *Contributor
	// ring elevation nearest the attachment point, captured before the ring
	// is possibly forced uniform
	localRingElevation float64
}

// Harmonize processes every ring spline of the network
func (harmonizer *RoundaboutHarmonizer) Harmonize(junctions []*Junction, report *HarmonizeReport) {
	st := time.Now()
	rings := 0
	for _, ring := range harmonizer.net.Splines() {
		if !ring.IsRoundabout {
			continue
		}
		harmonizer.harmonizeRing(ring, junctions, report)
		rings++
	}
	if rings > 0 {
		log.Infow("Roundabout harmonization done", "rings", rings, "elapsed", time.Since(st))
	}
	report.RoundaboutRings = rings
}

// harmonizeRing resolves one ring's target elevation and blends all
// connecting roads into it
func (harmonizer *RoundaboutHarmonizer) harmonizeRing(ring *Spline, junctions []*Junction, report *HarmonizeReport) {
	connections := harmonizer.collectConnections(ring, junctions)

	terrainAverage := harmonizer.terrain.AverageElevationAlong(ring.Geometry())

	// priority-weighted average of connecting roads at their attachment
	// points; the overall connection weight uses the square root of the
	// average priority so one heavy road can not dominate the ring
	connSum, connWeight := 0.0, 0.0
	counted := 0
	for _, conn := range connections {
		elevation := conn.contributor.CrossSection.TargetElevation
		if !isFiniteElevation(elevation) {
			continue
		}
		w := float64(conn.contributor.Spline.Priority)
		connSum += elevation * w
		connWeight += w
		counted++
	}

	ringTarget := terrainAverage
	if connWeight > 0 {
		connAverage := connSum / connWeight
		averagePriority := connWeight / float64(counted)
		w := math.Sqrt(averagePriority)
		if isFiniteElevation(terrainAverage) {
			ringTarget = (terrainAverage + connAverage*w) / (1.0 + w)
		} else {
			ringTarget = connAverage
		}
	}
	if !isFiniteElevation(ringTarget) {
		log.Warnw("Roundabout ring elevation could not be resolved, skipped", "spline", ring.ID)
		return
	}

	uniform := false
	for _, conn := range connections {
		if conn.contributor.Spline.Params.UniformRoundabout {
			uniform = true
			break
		}
	}
	if uniform {
		for _, cs := range ring.CrossSections {
			cs.TargetElevation = ringTarget
		}
	}

	for _, conn := range connections {
		target := conn.localRingElevation
		if uniform && conn.contributor.Spline.Params.UniformRoundabout {
			target = ringTarget
		}
		if !isFiniteElevation(target) {
			target = ringTarget
		}
		report.CrossSectionsPropagated += harmonizer.blendConnection(conn.contributor, target)
		report.RoundaboutConnections++
	}
}

// collectConnections finds every non-ring road attached to the ring via a
// roundabout junction, capturing the local ring elevation before any forcing
func (harmonizer *RoundaboutHarmonizer) collectConnections(ring *Spline, junctions []*Junction) []*ringConnection {
	connections := []*ringConnection{}
	seen := make(map[SplineID]struct{})
	for _, junction := range junctions {
		if junction.Type != JUNCTION_ROUNDABOUT || !junction.HasSpline(ring.ID) {
			continue
		}
		for _, c := range junction.Contributors {
			if c.Spline.ID == ring.ID || c.Spline.IsRoundabout {
				continue
			}
			if _, dup := seen[c.Spline.ID]; dup {
				continue
			}
			seen[c.Spline.ID] = struct{}{}
			local := math.NaN()
			if nearest := ring.NearestCrossSection(c.CrossSection.Position); nearest != nil {
				local = nearest.TargetElevation
			}
			connections = append(connections, &ringConnection{
				contributor:        c,
				localRingElevation: local,
			})
		}
	}
	return connections
}

// blendConnection fades the connecting road from the ring target at the
// attachment point back to its own elevation. The blend distance is capped
// at half the road's length so a short road's far end, which may carry its
// own junction, is never touched.
func (harmonizer *RoundaboutHarmonizer) blendConnection(c *Contributor, target float64) int {
	spline := c.Spline
	blendDistance := spline.Params.BlendDistance
	if half := spline.LengthMeters / 2.0; blendDistance > half {
		blendDistance = half
	}
	if blendDistance <= 0 {
		return 0
	}
	blendFunc := spline.Params.BlendFunc
	blended := 0
	visit := func(cs *CrossSection, dist float64) {
		weight := 1.0 - blendFunc.Evaluate(dist/blendDistance)
		if !isFiniteElevation(cs.TargetElevation) {
			cs.TargetElevation = target
		} else {
			cs.TargetElevation = lerp(cs.TargetElevation, target, weight)
		}
		blended++
	}
	if c.IsContinuous() {
		walkBlendZone(spline, c.CrossSection.Index, -1, blendDistance, visit)
		walkBlendZone(spline, c.CrossSection.Index, +1, blendDistance, visit)
		return blended
	}
	direction := -1
	if c.IsStart {
		direction = +1
	}
	walkBlendZone(spline, c.CrossSection.Index, direction, blendDistance, visit)
	return blended
}
