package roadgrade

import (
	"sort"
	"time"
)

// CrossroadSplitter rewrites the network so every mid-spline crossing becomes
// two ordinary T-junctions: the lower-priority spline is physically cut at
// the crossing point and both resulting halves terminate against the primary
// road.
type CrossroadSplitter struct {
	net *RoadNetwork
}

// NewCrossroadSplitter prepares splitter over given network
func NewCrossroadSplitter(net *RoadNetwork) *CrossroadSplitter {
	return &CrossroadSplitter{net: net}
}

// Split processes all mid-spline crossings and returns the updated junction
// list with sequential ids. Crossings that can not be split safely are kept
// as-is (degrade gracefully, never fatal).
func (splitter *CrossroadSplitter) Split(junctions []*Junction) []*Junction {
	st := time.Now()

	out := []*Junction{}
	splits := 0
	for _, junction := range junctions {
		if junction.Type != JUNCTION_MID_SPLINE_CROSSING {
			out = append(out, junction)
			continue
		}
		replacements, ok := splitter.splitCrossing(junction)
		if !ok {
			out = append(out, junction)
			continue
		}
		out = append(out, replacements...)
		splits++
	}

	splitter.refreshContributors(out)
	out = dropDegenerate(out)
	for i, junction := range out {
		junction.ID = JunctionID(i)
	}

	log.Infow("Crossroad splitting done",
		"crossings_split", splits,
		"junctions", len(out),
		"elapsed", time.Since(st),
	)
	return out
}

// splitCrossing cuts every secondary spline of the crossing and pairs each
// resulting half with the primary road in a new T-junction. All splits are
// validated before any of them mutates the network, so a rejected split
// leaves the whole crossing untouched.
func (splitter *CrossroadSplitter) splitCrossing(junction *Junction) ([]*Junction, bool) {
	primary := pickPrimary(junction.Contributors)
	if primary == nil {
		log.Warnw("Crossing with no contributors skipped", "junction", junction.ID)
		return nil, false
	}

	type plannedSplit struct {
		spline *Spline
		index  int
	}
	planned := []plannedSplit{}
	for _, secondary := range junction.Contributors {
		if secondary == primary {
			continue
		}
		// the spline may already have been replaced by an earlier split;
		// the cross-section always knows its current owner
		spline := splitter.net.SplineByID(secondary.CrossSection.SplineID)
		if spline == nil {
			log.Warnw("Crossing references vanished spline, left unsplit",
				"junction", junction.ID,
				"spline", secondary.CrossSection.SplineID,
			)
			return nil, false
		}
		index := splitter.crossingIndex(spline, secondary.CrossSection)
		if index < 0 {
			log.Warnw("Crossing point not found on secondary spline, left unsplit",
				"junction", junction.ID,
				"spline", spline.ID,
			)
			return nil, false
		}
		if index < 1 || index > len(spline.CrossSections)-2 {
			log.Warnw("Split would produce degenerate segment, crossing left unsplit",
				"junction", junction.ID,
				"spline", spline.ID,
				"index", index,
			)
			return nil, false
		}
		planned = append(planned, plannedSplit{spline: spline, index: index})
	}

	replacements := []*Junction{}
	for _, plan := range planned {
		replacements = append(replacements, splitter.splitSecondary(junction, primary, plan.spline, plan.index)...)
	}
	return replacements, true
}

// splitSecondary cuts one validated secondary spline at its crossing
// cross-section. The crossing point belongs to both halves: the original
// cross-section ends the first half, a copy of it starts the second.
func (splitter *CrossroadSplitter) splitSecondary(junction *Junction, primary *Contributor, spline *Spline, index int) []*Junction {
	crossing := spline.CrossSections[index]
	crossingCopy := *crossing
	crossingCopy.ID = splitter.net.NextCrossSectionID()

	firstHalf := append([]*CrossSection{}, spline.CrossSections[:index+1]...)
	secondHalf := append([]*CrossSection{&crossingCopy}, spline.CrossSections[index+1:]...)

	splitter.net.RemoveSpline(spline.ID)
	segmentA := splitter.newHalf(spline, firstHalf)
	segmentB := splitter.newHalf(spline, secondHalf)

	tJunctionA := &Junction{
		Type:     JUNCTION_T,
		Position: junction.Position,
		Contributors: []*Contributor{
			{Spline: primary.Spline, CrossSection: primary.CrossSection},
			{Spline: segmentA, CrossSection: segmentA.Last(), IsEnd: true},
		},
		CrossMaterial: junction.CrossMaterial,
	}
	tJunctionB := &Junction{
		Type:     JUNCTION_T,
		Position: junction.Position,
		Contributors: []*Contributor{
			{Spline: primary.Spline, CrossSection: primary.CrossSection},
			{Spline: segmentB, CrossSection: segmentB.First(), IsStart: true},
		},
		CrossMaterial: junction.CrossMaterial,
	}
	return []*Junction{tJunctionA, tJunctionB}
}

// newHalf registers one half of a split spline, inheriting material parameters
func (splitter *CrossroadSplitter) newHalf(original *Spline, crossSections []*CrossSection) *Spline {
	half := &Spline{
		ID:            splitter.net.NextSplineID(),
		RoadClass:     original.RoadClass,
		Priority:      original.Priority,
		Width:         original.Width,
		Params:        original.Params,
		CrossSections: crossSections,
		IsRoundabout:  original.IsRoundabout,
	}
	half.Rebuild()
	splitter.net.AddSpline(half)
	return half
}

// crossingIndex locates the crossing cross-section on the spline: exact match
// by identity first, nearest by position as fallback.
func (splitter *CrossroadSplitter) crossingIndex(spline *Spline, crossing *CrossSection) int {
	if crossing.Index >= 0 && crossing.Index < len(spline.CrossSections) &&
		spline.CrossSections[crossing.Index] == crossing {
		return crossing.Index
	}
	nearest := spline.NearestCrossSection(crossing.Position)
	if nearest == nil {
		return -1
	}
	return nearest.Index
}

// pickPrimary returns the dominant contributor of a crossing by
// (priority desc, length desc, spline id asc), a deterministic total order.
func pickPrimary(contributors []*Contributor) *Contributor {
	if len(contributors) == 0 {
		return nil
	}
	sorted := append([]*Contributor{}, contributors...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i].Spline, sorted[j].Spline
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.LengthMeters != b.LengthMeters {
			return a.LengthMeters > b.LengthMeters
		}
		return a.ID < b.ID
	})
	return sorted[0]
}

// refreshContributors re-resolves every contributor's spline from its
// cross-section after splits moved cross-sections to new splines. Junctions
// must never dangle.
func (splitter *CrossroadSplitter) refreshContributors(junctions []*Junction) {
	for _, junction := range junctions {
		kept := junction.Contributors[:0]
		for _, c := range junction.Contributors {
			spline := splitter.net.SplineByID(c.CrossSection.SplineID)
			if spline == nil {
				continue
			}
			c.Spline = spline
			c.IsStart = c.CrossSection.IsStart
			c.IsEnd = c.CrossSection.IsEnd
			kept = append(kept, c)
		}
		junction.Contributors = kept
	}
}

// dropDegenerate removes junctions that lost all contributors during splitting
func dropDegenerate(junctions []*Junction) []*Junction {
	out := junctions[:0]
	for _, junction := range junctions {
		if len(junction.Contributors) == 0 {
			log.Warnw("Junction lost all contributors, dropped", "junction", junction.ID)
			continue
		}
		out = append(out, junction)
	}
	return out
}
