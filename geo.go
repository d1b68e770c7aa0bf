package roadgrade

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	earthR = 20037508.34
)

// TileProjection maps WGS84 coordinates of externally-sourced data into
// tile-local Euclidean meters: web mercator projection shifted by the tile
// origin (itself in EPSG:3857 meters).
type TileProjection struct {
	OriginX float64
	OriginY float64
}

func epsg4326To3857(lon, lat float64) (float64, float64) {
	x := lon * earthR / 180
	y := math.Log(math.Tan((90+lat)*math.Pi/360)) / (math.Pi / 180)
	y = y * earthR / 180
	return x, y
}

// ToTile projects lon/lat into tile-local meters
func (proj TileProjection) ToTile(lon, lat float64) orb.Point {
	x, y := epsg4326To3857(lon, lat)
	return orb.Point{x - proj.OriginX, y - proj.OriginY}
}
