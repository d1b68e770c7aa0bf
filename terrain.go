package roadgrade

import (
	"encoding/binary"
	"math"
	"os"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// ElevationGrid 2D terrain heightmap of one tile. Row-major, origin at (0, 0)
// of tile-local space, one sample per MetersPerPixel meters.
type ElevationGrid struct {
	Width          int
	Height         int
	MetersPerPixel float64
	data           []float64
}

// NewElevationGrid returns zeroed grid of given dimensions
func NewElevationGrid(width, height int, metersPerPixel float64) (*ElevationGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("Bad grid dimensions: %d x %d", width, height)
	}
	if metersPerPixel <= 0 {
		return nil, errors.Errorf("Bad meters per pixel: %f", metersPerPixel)
	}
	return &ElevationGrid{
		Width:          width,
		Height:         height,
		MetersPerPixel: metersPerPixel,
		data:           make([]float64, width*height),
	}, nil
}

// Set writes elevation sample at given pixel
func (grid *ElevationGrid) Set(x, y int, elevation float64) {
	if x < 0 || x >= grid.Width || y < 0 || y >= grid.Height {
		return
	}
	grid.data[y*grid.Width+x] = elevation
}

// At returns elevation sample at given pixel, clamping out-of-bounds lookups to the border
func (grid *ElevationGrid) At(x, y int) float64 {
	x = minInt(maxInt(x, 0), grid.Width-1)
	y = minInt(maxInt(y, 0), grid.Height-1)
	return grid.data[y*grid.Width+x]
}

// Fill sets every sample to given elevation
func (grid *ElevationGrid) Fill(elevation float64) {
	for i := range grid.data {
		grid.data[i] = elevation
	}
}

// LoadElevationGridRaw reads a raw little-endian float32 heightmap of known
// dimensions (the exchange format of the terrain pipeline collaborators)
func LoadElevationGridRaw(fname string, width, height int, metersPerPixel float64) (*ElevationGrid, error) {
	grid, err := NewElevationGrid(width, height, metersPerPixel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, errors.Wrap(err, "Can't read heightmap file")
	}
	expected := width * height * 4
	if len(data) != expected {
		return nil, errors.Errorf("Heightmap size mismatch: got %d bytes, expected %d", len(data), expected)
	}
	for i := 0; i < width*height; i++ {
		bits := binary.LittleEndian.Uint32(data[i*4:])
		grid.data[i] = float64(math.Float32frombits(bits))
	}
	return grid, nil
}

// ElevationAt returns bilinearly interpolated terrain elevation at tile-local position (meters)
func (grid *ElevationGrid) ElevationAt(pt orb.Point) float64 {
	fx := pt.X() / grid.MetersPerPixel
	fy := pt.Y() / grid.MetersPerPixel
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)
	e00 := grid.At(x0, y0)
	e10 := grid.At(x0+1, y0)
	e01 := grid.At(x0, y0+1)
	e11 := grid.At(x0+1, y0+1)
	top := lerp(e00, e10, tx)
	bottom := lerp(e01, e11, tx)
	return lerp(top, bottom, ty)
}

// AverageElevationAlong returns mean terrain elevation sampled under given points.
// Non-finite samples are skipped so a hole in the heightmap can not poison the average.
func (grid *ElevationGrid) AverageElevationAlong(pts []orb.Point) float64 {
	sum := 0.0
	count := 0
	for _, pt := range pts {
		elevation := grid.ElevationAt(pt)
		if !isFiniteElevation(elevation) {
			continue
		}
		sum += elevation
		count++
	}
	if count == 0 {
		return math.NaN()
	}
	return sum / float64(count)
}
