// Package footprint writes what a walk selected as side files next to the tiles:
// a GeoJSON of the footprints and a PNG preview.
package footprint

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"pva-downloader/aoi"
	"pva-downloader/kml"
	"pva-downloader/util"
)

// FeatureCollection holds the bounding box, one feature per tile and the convex
// hull of all tiles. Features carry a "kind" property: bbox, tile or coverage.
func FeatureCollection(missionID string, bbox aoi.BoundingBox, tiles []kml.Tile) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	b := geojson.NewFeature(orb.Polygon{bbox.Ring()})
	b.Properties["kind"] = "bbox"
	fc.Append(b)

	for _, t := range tiles {
		f := geojson.NewFeature(polygonOf(t.Footprint))
		f.Properties["kind"] = "tile"
		f.Properties["mission"] = missionID
		f.Properties["tile"] = t.ID
		fc.Append(f)
	}

	if hull := util.CoverageHull(kml.Footprints(tiles)); hull != nil {
		h := geojson.NewFeature(orb.Polygon{hull})
		h.Properties["kind"] = "coverage"
		h.Properties["mission"] = missionID
		h.Properties["tiles"] = len(tiles)
		fc.Append(h)
	}
	return fc
}

// Single point footprints are written as points.
func polygonOf(r orb.Ring) orb.Geometry {
	if len(r) == 1 {
		return r[0]
	}
	return orb.Polygon{r}
}

func WriteGeoJSON(path, missionID string, bbox aoi.BoundingBox, tiles []kml.Tile) error {
	b, err := FeatureCollection(missionID, bbox, tiles).MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
