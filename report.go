package roadgrade

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash"
)

// HarmonizeReport Counts and telemetry of one harmonization pass, for the
// caller to log or assert on. The elevation fingerprint is a deterministic
// hash of all target elevations in (spline id, index) order, so two runs on
// identical input must produce identical fingerprints.
type HarmonizeReport struct {
	JunctionsByType    map[JunctionType]int
	JunctionsProcessed int
	JunctionsSkipped   int

	CrossSectionsPropagated      int
	CrossSectionsEdgeProjected   int
	CrossSectionsPlateauSmoothed int
	CrossSectionsTapered         int
	CrossSectionsModified        int

	RoundaboutRings       int
	RoundaboutConnections int

	MaxElevationDelta    float64
	ElevationFingerprint uint64
}

func newHarmonizeReport() *HarmonizeReport {
	return &HarmonizeReport{
		JunctionsByType: make(map[JunctionType]int),
	}
}

func (report *HarmonizeReport) countJunction(junction *Junction) {
	report.JunctionsByType[junction.Type]++
}

// finish computes the modification summary against the pre-harmonization
// snapshot and the elevation fingerprint
func (report *HarmonizeReport) finish(net *RoadNetwork, original map[CrossSectionID]float64) {
	hasher := xxhash.New()
	buf := make([]byte, 8)
	for _, spline := range net.Splines() {
		for _, cs := range spline.CrossSections {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(cs.TargetElevation))
			hasher.Write(buf)

			before, ok := original[cs.ID]
			if !ok || !isFiniteElevation(before) || !isFiniteElevation(cs.TargetElevation) {
				continue
			}
			delta := math.Abs(cs.TargetElevation - before)
			if delta == 0 {
				continue
			}
			report.CrossSectionsModified++
			if delta > report.MaxElevationDelta {
				report.MaxElevationDelta = delta
			}
		}
	}
	report.ElevationFingerprint = hasher.Sum64()
}
