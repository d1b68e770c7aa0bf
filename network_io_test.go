package roadgrade

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

func TestCSVRoundTrip(t *testing.T) {
	net := NewRoadNetwork()
	buildSpline(net, ROAD_CLASS_PRIMARY, orb.Point{0, 0}, orb.Point{1, 0}, 10, 5, 42)
	buildSpline(net, ROAD_CLASS_SERVICE, orb.Point{0, 50}, orb.Point{0, 1}, 10, 3, 17)

	fname := filepath.Join(t.TempDir(), "network.csv")
	if err := ExportToCSV(net, fname); err != nil {
		t.Fatalf("Can't export network: %v", err)
	}

	imported, err := ImportFromCSV(strings.Replace(fname, ".csv", "_cross_sections.csv", 1))
	if err != nil {
		t.Fatalf("Can't import network: %v", err)
	}
	if imported.SplinesCount() != net.SplinesCount() {
		t.Fatalf("Splines count must be %d, but got %d", net.SplinesCount(), imported.SplinesCount())
	}
	for _, original := range net.Splines() {
		spline := imported.SplineByID(original.ID)
		if spline == nil {
			t.Fatalf("Spline %d must survive the round trip", original.ID)
		}
		if spline.RoadClass != original.RoadClass {
			t.Errorf("Spline %d road class must be %s, but got %s", original.ID, original.RoadClass, spline.RoadClass)
		}
		if len(spline.CrossSections) != len(original.CrossSections) {
			t.Fatalf("Spline %d must have %d cross-sections, but got %d",
				original.ID, len(original.CrossSections), len(spline.CrossSections))
		}
		for i, cs := range spline.CrossSections {
			if math.Abs(cs.TargetElevation-original.CrossSections[i].TargetElevation) > 1e-5 {
				t.Errorf("Spline %d cross-section %d elevation must be %f, but got %f",
					original.ID, i, original.CrossSections[i].TargetElevation, cs.TargetElevation)
			}
			if findDistance(cs.Position, original.CrossSections[i].Position) > 1e-5 {
				t.Errorf("Spline %d cross-section %d position must be %v, but got %v",
					original.ID, i, original.CrossSections[i].Position, cs.Position)
			}
		}
	}
}

func TestExportJunctionsToCSV(t *testing.T) {
	net := NewRoadNetwork()
	buildSpline(net, ROAD_CLASS_PRIMARY, orb.Point{0, 0}, orb.Point{1, 0}, 10, 21, 100)
	buildSpline(net, ROAD_CLASS_SERVICE, orb.Point{100, 0}, orb.Point{0, 1}, 10, 11, 98)
	junctions := NewJunctionDetector(net).Detect()

	fname := filepath.Join(t.TempDir(), "junctions.csv")
	if err := ExportJunctionsToCSV(junctions, fname); err != nil {
		t.Fatalf("Can't export junctions: %v", err)
	}
	data, err := os.ReadFile(fname)
	if err != nil {
		t.Fatalf("Can't read exported file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != len(junctions)+1 {
		t.Errorf("Exported lines must be %d, but got %d", len(junctions)+1, len(lines))
	}
	if !strings.Contains(lines[0], "geom") {
		t.Errorf("Header must contain geometry column, but got '%s'", lines[0])
	}
}
