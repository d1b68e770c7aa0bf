package roadgrade

import (
	geojson "github.com/paulmach/go.geojson"
	"github.com/pkg/errors"
)

// JunctionsToGeoJSON returns feature collection of junctions for inspection
// in GIS tooling. Coordinates stay in tile-local meters.
func JunctionsToGeoJSON(junctions []*Junction) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, junction := range junctions {
		feature := geojson.NewPointFeature([]float64{junction.Position.X(), junction.Position.Y()})
		feature.SetProperty("id", int(junction.ID))
		feature.SetProperty("type", junction.Type.String())
		feature.SetProperty("contributors", len(junction.Contributors))
		feature.SetProperty("elevation", junction.HarmonizedElevation)
		feature.SetProperty("excluded", junction.Excluded)
		feature.SetProperty("cross_material", junction.CrossMaterial)
		if junction.HintName != "" {
			feature.SetProperty("name", junction.HintName)
		}
		fc.AddFeature(feature)
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "Can't marshal junctions")
	}
	return b, nil
}

// NetworkToGeoJSON returns feature collection of spline centerlines
func NetworkToGeoJSON(net *RoadNetwork) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, spline := range net.Splines() {
		line := spline.Geometry()
		pts2d := make([][]float64, len(line))
		for i := range line {
			pts2d[i] = []float64{line[i].X(), line[i].Y()}
		}
		feature := geojson.NewLineStringFeature(pts2d)
		feature.SetProperty("id", int(spline.ID))
		feature.SetProperty("road_class", spline.RoadClass.String())
		feature.SetProperty("priority", spline.Priority)
		feature.SetProperty("length_meters", spline.LengthMeters)
		fc.AddFeature(feature)
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		return nil, errors.Wrap(err, "Can't marshal network")
	}
	return b, nil
}
