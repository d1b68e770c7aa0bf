package roadgrade

import (
	"time"

	"github.com/pkg/errors"
)

// Harmonize runs the full junction pipeline over one tile:
// detection, crossroad splitting, junction harmonization, roundabout
// harmonization. Phases are strictly ordered and single-threaded; the
// cross-sections of the network are mutated in place.
func Harmonize(net *RoadNetwork, terrain *ElevationGrid, options ...func(*JunctionDetector)) (*HarmonizeReport, error) {
	if net == nil || terrain == nil {
		return nil, errors.New("Can't harmonize without network and terrain")
	}
	st := time.Now()
	original := net.snapshotElevations()

	detector := NewJunctionDetector(net, options...)
	junctions := detector.Detect()

	splitter := NewCrossroadSplitter(net)
	junctions = splitter.Split(junctions)

	harmonizer := NewJunctionHarmonizer(net, terrain)
	report := harmonizer.Harmonize(junctions)

	roundabouts := NewRoundaboutHarmonizer(net, terrain)
	roundabouts.Harmonize(junctions, report)

	report.finish(net, original)
	log.Infow("Harmonization pipeline done",
		"junctions", report.JunctionsProcessed,
		"modified", report.CrossSectionsModified,
		"max_delta", report.MaxElevationDelta,
		"fingerprint", report.ElevationFingerprint,
		"elapsed", time.Since(st),
	)
	return report, nil
}

// Harmonize computes one harmonized elevation per junction and runs all
// propagation passes. Roundabout junctions are excluded here; the roundabout
// harmonizer owns them.
func (harmonizer *JunctionHarmonizer) Harmonize(junctions []*Junction) *HarmonizeReport {
	st := time.Now()
	report := newHarmonizeReport()
	original := harmonizer.net.snapshotElevations()
	accum := newInfluenceAccumulator()

	resolved := []*Junction{}
	for _, junction := range junctions {
		report.countJunction(junction)
		if junction.Excluded {
			continue
		}
		if !harmonizer.computeElevation(junction) {
			report.JunctionsSkipped++
			continue
		}
		resolved = append(resolved, junction)
		if junction.Type != JUNCTION_ENDPOINT {
			harmonizer.collectInfluences(junction, accum)
		}
	}

	report.CrossSectionsPropagated = harmonizer.resolveInfluences(accum)

	allGrid := newSpatialGrid(harmonizer.net.CrossSections(), harmonizer.net.MaxDetectionRadius())
	for _, junction := range resolved {
		switch junction.Type {
		case JUNCTION_T:
			report.CrossSectionsEdgeProjected += harmonizer.reprojectTJunctionEdges(junction)
		case JUNCTION_Y, JUNCTION_CROSSROADS, JUNCTION_COMPLEX:
			report.CrossSectionsPlateauSmoothed += harmonizer.smoothPlateau(junction, original, allGrid)
		case JUNCTION_ENDPOINT:
			report.CrossSectionsTapered += harmonizer.taperEndpoint(junction)
		}
		report.JunctionsProcessed++
	}

	log.Infow("Junction harmonization done",
		"junctions", report.JunctionsProcessed,
		"propagated", report.CrossSectionsPropagated,
		"elapsed", time.Since(st),
	)
	return report
}
