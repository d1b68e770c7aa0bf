package roadgrade

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/pkg/errors"
)

// ExportToCSV writes the network as two CSV files: '<name>_splines.csv' with
// WKT centerlines and '<name>_cross_sections.csv' with per-frame elevations.
func ExportToCSV(net *RoadNetwork, fname string) error {
	fnameParts := strings.Split(fname, ".csv")
	fnameSplines := fnameParts[0] + "_splines.csv"
	fnameCrossSections := fnameParts[0] + "_cross_sections.csv"

	err := exportSplinesToCSV(net, fnameSplines)
	if err != nil {
		return errors.Wrap(err, "Can't export splines")
	}
	err = exportCrossSectionsToCSV(net, fnameCrossSections)
	if err != nil {
		return errors.Wrap(err, "Can't export cross-sections")
	}
	return nil
}

func exportSplinesToCSV(net *RoadNetwork, fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "road_class", "priority", "width", "length_meters", "is_roundabout", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, spline := range net.Splines() {
		err = writer.Write([]string{
			fmt.Sprintf("%d", spline.ID),
			spline.RoadClass.String(),
			fmt.Sprintf("%d", spline.Priority),
			fmt.Sprintf("%f", spline.Width),
			fmt.Sprintf("%f", spline.LengthMeters),
			fmt.Sprintf("%t", spline.IsRoundabout),
			wkt.MarshalString(spline.Geometry()),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write spline")
		}
	}
	return nil
}

func exportCrossSectionsToCSV(net *RoadNetwork, fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"spline_id", "road_class", "index", "x", "y", "elevation", "bank_angle", "left_edge", "right_edge"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, spline := range net.Splines() {
		for _, cs := range spline.CrossSections {
			err = writer.Write([]string{
				fmt.Sprintf("%d", cs.SplineID),
				spline.RoadClass.String(),
				fmt.Sprintf("%d", cs.Index),
				fmt.Sprintf("%f", cs.Position.X()),
				fmt.Sprintf("%f", cs.Position.Y()),
				fmt.Sprintf("%f", cs.TargetElevation),
				fmt.Sprintf("%f", cs.BankAngle),
				fmt.Sprintf("%f", cs.LeftEdgeElevation),
				fmt.Sprintf("%f", cs.RightEdgeElevation),
			})
			if err != nil {
				return errors.Wrap(err, "Can't write cross-section")
			}
		}
	}
	return nil
}

// ImportFromCSV reads a network from a '<name>_cross_sections.csv' style file
// (header as written by ExportToCSV). Rows are grouped by spline id and
// ordered by index; spline priority and width come from the road class.
func ImportFromCSV(fname string) (*RoadNetwork, error) {
	file, err := os.Open(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't open file")
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "Can't read CSV")
	}
	if len(rows) < 2 {
		return nil, errors.New("CSV contains no cross-sections")
	}

	type row struct {
		splineID  int
		roadClass RoadClass
		index     int
		x, y      float64
		elevation float64
		bankAngle float64
	}
	parsed := []row{}
	for i, record := range rows[1:] {
		if len(record) < 7 {
			return nil, errors.Errorf("Bad record on line %d: %d fields", i+2, len(record))
		}
		splineID, err := strconv.Atoi(record[0])
		if err != nil {
			return nil, errors.Wrapf(err, "Bad spline id on line %d", i+2)
		}
		roadClass := getRoadClass(record[1])
		if roadClass == 0 {
			return nil, errors.Errorf("Unknown road class '%s' on line %d", record[1], i+2)
		}
		index, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, errors.Wrapf(err, "Bad index on line %d", i+2)
		}
		x, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad x on line %d", i+2)
		}
		y, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad y on line %d", i+2)
		}
		elevation, err := strconv.ParseFloat(record[5], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad elevation on line %d", i+2)
		}
		bankAngle, err := strconv.ParseFloat(record[6], 64)
		if err != nil {
			return nil, errors.Wrapf(err, "Bad bank angle on line %d", i+2)
		}
		parsed = append(parsed, row{
			splineID:  splineID,
			roadClass: roadClass,
			index:     index,
			x:         x,
			y:         y,
			elevation: elevation,
			bankAngle: bankAngle,
		})
	}

	bySpline := make(map[int][]row)
	splineIDs := []int{}
	for _, r := range parsed {
		if _, seen := bySpline[r.splineID]; !seen {
			splineIDs = append(splineIDs, r.splineID)
		}
		bySpline[r.splineID] = append(bySpline[r.splineID], r)
	}
	sort.Ints(splineIDs)

	net := NewRoadNetwork()
	for _, splineID := range splineIDs {
		group := bySpline[splineID]
		sort.Slice(group, func(i, j int) bool {
			return group[i].index < group[j].index
		})
		crossSections := make([]*CrossSection, len(group))
		for i, r := range group {
			cs := NewCrossSection(-1, SplineID(r.splineID), i, orb.Point{r.x, r.y})
			cs.TargetElevation = r.elevation
			cs.BankAngle = r.bankAngle
			crossSections[i] = cs
		}
		spline := NewSpline(SplineID(splineID), group[0].roadClass, crossSections)
		net.AddSpline(spline)
	}
	return net, nil
}

// ExportJunctionsToCSV writes detected junctions with WKT point geometry
func ExportJunctionsToCSV(junctions []*Junction, fname string) error {
	file, err := os.Create(fname)
	if err != nil {
		return errors.Wrap(err, "Can't create file")
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()
	writer.Comma = ';'

	err = writer.Write([]string{"id", "type", "contributors", "elevation", "excluded", "cross_material", "name", "geom"})
	if err != nil {
		return errors.Wrap(err, "Can't write header")
	}

	for _, junction := range junctions {
		err = writer.Write([]string{
			fmt.Sprintf("%d", junction.ID),
			junction.Type.String(),
			fmt.Sprintf("%d", len(junction.Contributors)),
			fmt.Sprintf("%f", junction.HarmonizedElevation),
			fmt.Sprintf("%t", junction.Excluded),
			fmt.Sprintf("%t", junction.CrossMaterial),
			junction.HintName,
			wkt.MarshalString(junction.Position),
		})
		if err != nil {
			return errors.Wrap(err, "Can't write junction")
		}
	}
	return nil
}
