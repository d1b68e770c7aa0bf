// Command roadgrade harmonizes road network elevations over one terrain tile:
// it detects junctions, splits ambiguous crossings and blends every meeting
// point to a single consistent elevation.
package main

import (
	"os"

	"github.com/jessevdk/go-flags"
)

type rootCmd struct {
	Version   versionCmd   `command:"version" description:"Show version information"`
	Detect    detectCmd    `command:"detect" description:"Detect junctions and export them for inspection"`
	Harmonize harmonizeCmd `command:"harmonize" description:"Run the full harmonization pipeline"`
}

func main() {
	var root rootCmd
	parser := flags.NewParser(&root, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if fe, ok := err.(*flags.Error); ok && fe.Type == flags.ErrHelp {
			return
		}
		os.Exit(1)
	}
}
