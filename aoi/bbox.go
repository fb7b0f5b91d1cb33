// Package aoi holds the area of interest: the bounding box, its encoding for the
// mission search service and the footprint intersection test used to filter tiles.
package aoi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// BoundingBox is an axis-aligned lon/lat rectangle. Min <= Max on both axes is
// expected but not checked here.
type BoundingBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

func New(minLon, minLat, maxLon, maxLat float64) BoundingBox {
	return BoundingBox{MinLon: minLon, MinLat: minLat, MaxLon: maxLon, MaxLat: maxLat}
}

func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

// Ring returns the closed five point ring (min,min) (min,max) (max,max) (max,min) (min,min)
// in lon/lat order.
func (b BoundingBox) Ring() orb.Ring {
	return orb.Ring{
		{b.MinLon, b.MinLat},
		{b.MaxLon, b.MinLat},
		{b.MaxLon, b.MaxLat},
		{b.MinLon, b.MaxLat},
		{b.MinLon, b.MinLat},
	}
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Polygon encodes the box as the ring expected inside a CQL POLYGON((...)):
// "lat+lon" pairs joined by commas, latitude first.
func (b BoundingBox) Polygon() string {
	pairs := [][2]float64{
		{b.MinLat, b.MinLon},
		{b.MinLat, b.MaxLon},
		{b.MaxLat, b.MaxLon},
		{b.MaxLat, b.MinLon},
		{b.MinLat, b.MinLon},
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, formatCoord(p[0])+"+"+formatCoord(p[1]))
	}
	return strings.Join(parts, ",")
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("[%s %s, %s %s]",
		formatCoord(b.MinLon), formatCoord(b.MinLat), formatCoord(b.MaxLon), formatCoord(b.MaxLat))
}
