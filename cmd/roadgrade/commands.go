package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/terramesh/roadgrade"
)

var (
	version = "dev"
)

type versionCmd struct{}

func (cmd *versionCmd) Execute(args []string) error {
	fmt.Printf("roadgrade %s\n", version)
	return nil
}

// networkOptions Shared input flags of detect and harmonize
type networkOptions struct {
	Input           string  `short:"i" long:"input" required:"true" description:"Cross-sections CSV file"`
	Config          string  `short:"c" long:"config" description:"Materials YAML configuration"`
	HintsFile       string  `long:"osm-hints" description:"OSM PBF file providing junction hints"`
	OriginX         float64 `long:"origin-x" description:"Tile origin X (EPSG:3857 meters) for hint projection"`
	OriginY         float64 `long:"origin-y" description:"Tile origin Y (EPSG:3857 meters) for hint projection"`
	DetectionRadius float64 `long:"detection-radius" default:"10" description:"Fallback junction detection radius (meters)"`
}

func (opts *networkOptions) loadNetwork() (*roadgrade.RoadNetwork, error) {
	net, err := roadgrade.ImportFromCSV(opts.Input)
	if err != nil {
		return nil, errors.Wrap(err, "Can't import network")
	}
	if opts.Config != "" {
		cfg, err := roadgrade.LoadMaterialsConfig(opts.Config)
		if err != nil {
			return nil, errors.Wrap(err, "Can't load materials config")
		}
		cfg.Apply(net)
	}
	return net, nil
}

func (opts *networkOptions) detectorOptions() ([]func(*roadgrade.JunctionDetector), error) {
	detectorOptions := []func(*roadgrade.JunctionDetector){
		roadgrade.WithDefaultDetectionRadius(opts.DetectionRadius),
	}
	if opts.HintsFile != "" {
		proj := roadgrade.TileProjection{OriginX: opts.OriginX, OriginY: opts.OriginY}
		hints, err := roadgrade.LoadJunctionHintsFromOSM(opts.HintsFile, proj)
		if err != nil {
			return nil, errors.Wrap(err, "Can't load junction hints")
		}
		detectorOptions = append(detectorOptions, roadgrade.WithJunctionHints(hints))
	}
	return detectorOptions, nil
}

type detectCmd struct {
	loggingOptions
	networkOptions
	Out     string `short:"o" long:"out" default:"junctions.csv" description:"Junctions CSV output"`
	GeoJSON string `long:"geojson" description:"Optional junctions GeoJSON output"`
}

func (cmd *detectCmd) Execute(args []string) error {
	logger := setupLogging(cmd.loggingOptions)
	defer logger.Sync()

	net, err := cmd.loadNetwork()
	if err != nil {
		return err
	}
	detectorOptions, err := cmd.detectorOptions()
	if err != nil {
		return err
	}

	junctions := roadgrade.NewJunctionDetector(net, detectorOptions...).Detect()
	if err := roadgrade.ExportJunctionsToCSV(junctions, cmd.Out); err != nil {
		return errors.Wrap(err, "Can't export junctions")
	}
	if cmd.GeoJSON != "" {
		b, err := roadgrade.JunctionsToGeoJSON(junctions)
		if err != nil {
			return errors.Wrap(err, "Can't convert junctions")
		}
		if err := os.WriteFile(cmd.GeoJSON, b, 0644); err != nil {
			return errors.Wrap(err, "Can't write GeoJSON")
		}
	}
	return nil
}

type harmonizeCmd struct {
	loggingOptions
	networkOptions
	Heightmap      string  `short:"t" long:"heightmap" description:"Raw float32 heightmap file"`
	Width          int     `long:"width" description:"Heightmap width in pixels"`
	Height         int     `long:"height" description:"Heightmap height in pixels"`
	MetersPerPixel float64 `long:"meters-per-pixel" default:"1" description:"Heightmap resolution"`
	FlatElevation  float64 `long:"flat-elevation" description:"Use a flat terrain at this elevation instead of a heightmap"`
	Out            string  `short:"o" long:"out" default:"harmonized.csv" description:"Output CSV basename"`
}

func (cmd *harmonizeCmd) Execute(args []string) error {
	logger := setupLogging(cmd.loggingOptions)
	defer logger.Sync()

	net, err := cmd.loadNetwork()
	if err != nil {
		return err
	}

	var terrain *roadgrade.ElevationGrid
	if cmd.Heightmap != "" {
		terrain, err = roadgrade.LoadElevationGridRaw(cmd.Heightmap, cmd.Width, cmd.Height, cmd.MetersPerPixel)
		if err != nil {
			return errors.Wrap(err, "Can't load heightmap")
		}
	} else {
		terrain, err = flatTerrain(net, cmd.FlatElevation)
		if err != nil {
			return err
		}
	}

	detectorOptions, err := cmd.detectorOptions()
	if err != nil {
		return err
	}

	report, err := roadgrade.Harmonize(net, terrain, detectorOptions...)
	if err != nil {
		return errors.Wrap(err, "Harmonization failed")
	}
	logger.Sugar().Infow("Report",
		"junctions_processed", report.JunctionsProcessed,
		"junctions_skipped", report.JunctionsSkipped,
		"propagated", report.CrossSectionsPropagated,
		"edge_projected", report.CrossSectionsEdgeProjected,
		"plateau_smoothed", report.CrossSectionsPlateauSmoothed,
		"tapered", report.CrossSectionsTapered,
		"modified", report.CrossSectionsModified,
		"max_delta", report.MaxElevationDelta,
		"fingerprint", fmt.Sprintf("%016x", report.ElevationFingerprint),
	)

	if err := roadgrade.ExportToCSV(net, cmd.Out); err != nil {
		return errors.Wrap(err, "Can't export network")
	}
	return nil
}

// flatTerrain builds a constant-elevation grid sized to cover the network
func flatTerrain(net *roadgrade.RoadNetwork, elevation float64) (*roadgrade.ElevationGrid, error) {
	maxX, maxY := 1.0, 1.0
	for _, cs := range net.CrossSections() {
		if cs.Position.X() > maxX {
			maxX = cs.Position.X()
		}
		if cs.Position.Y() > maxY {
			maxY = cs.Position.Y()
		}
	}
	grid, err := roadgrade.NewElevationGrid(int(maxX)+2, int(maxY)+2, 1.0)
	if err != nil {
		return nil, errors.Wrap(err, "Can't build flat terrain")
	}
	grid.Fill(elevation)
	return grid, nil
}
