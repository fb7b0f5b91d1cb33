package kml

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/paulmach/orb"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"pva-downloader/aoi"
	"pva-downloader/metrics"
)

// Fetcher returns the body of a KML document given its reference relative to the KML base.
type Fetcher interface {
	FetchKML(ctx context.Context, ref string) (io.ReadCloser, error)
}

// Tile is an aerial shot kept by the walk.
type Tile struct {
	ID        string
	Footprint orb.Ring
}

func IDs(tiles []Tile) []string {
	ids := make([]string, 0, len(tiles))
	for _, t := range tiles {
		ids = append(ids, t.ID)
	}
	return ids
}

func Footprints(tiles []Tile) []orb.Ring {
	rings := make([]orb.Ring, 0, len(tiles))
	for _, t := range tiles {
		rings = append(rings, t.Footprint)
	}
	return rings
}

// Resolve resolves href against the directory of parent: "A/root.kml" + "B/child.kml"
// gives "A/B/child.kml". A parent without "/" adds no prefix.
func Resolve(parent, href string) string {
	i := strings.LastIndex(parent, "/")
	if i < 0 {
		return href
	}
	return parent[:i+1] + href
}

type Walker struct {
	Fetcher Fetcher
	// Filter, when set, drops tiles whose footprint does not intersect it.
	Filter *aoi.BoundingBox
	// Workers bounds concurrent fetches within one level. Values below 2 fetch sequentially.
	Workers int
	Metrics *metrics.Recorder
}

// Walk visits the KML tree of a mission breadth first, level by level, starting at
// "<missionID>.kml", and returns the tiles in discovery order. References already
// visited are not fetched again. Any fetch or parse failure aborts the walk.
func (w *Walker) Walk(ctx context.Context, missionID string) ([]Tile, error) {
	root := missionID + ".kml"
	frontier := []string{root}
	seen := map[string]bool{root: true}

	var tiles []Tile
	for level := 0; len(frontier) > 0; level++ {
		log.Debugf("KML level %d: %d documents", level, len(frontier))

		docs, err := w.fetchLevel(ctx, frontier)
		if err != nil {
			return nil, err
		}

		var next []string
		for i, doc := range docs {
			ref := frontier[i]
			for _, href := range doc.Links {
				child := Resolve(ref, href)
				if seen[child] {
					log.Debugf("Skipping already visited %q (linked from %q)", child, ref)
					continue
				}
				seen[child] = true
				next = append(next, child)
			}

			kept, err := w.tiles(ref, doc)
			if err != nil {
				return nil, err
			}
			tiles = append(tiles, kept...)
		}
		frontier = next
	}
	return tiles, nil
}

func (w *Walker) tiles(ref string, doc *Document) ([]Tile, error) {
	var kept []Tile
	for _, p := range doc.Placemarks {
		ring, err := aoi.ParseFootprint(p.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("%s: tile %s: %w", ref, p.JP2, err)
		}
		if w.Filter != nil && !w.Filter.Intersects(ring) {
			log.Debugf("Tile %s does not intersect %s", p.JP2, w.Filter)
			continue
		}
		kept = append(kept, Tile{ID: p.JP2, Footprint: ring})
	}
	w.Metrics.TilesDiscovered(len(kept))
	return kept, nil
}

// fetchLevel fetches and parses every document of a level. Results are indexed
// like refs whatever the fetch order.
func (w *Walker) fetchLevel(ctx context.Context, refs []string) ([]*Document, error) {
	docs := make([]*Document, len(refs))

	if w.Workers < 2 {
		for i, ref := range refs {
			doc, err := w.fetch(ctx, ref)
			if err != nil {
				return nil, err
			}
			docs[i] = doc
		}
		return docs, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.Workers)
	for i, ref := range refs {
		g.Go(func() error {
			doc, err := w.fetch(gctx, ref)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (w *Walker) fetch(ctx context.Context, ref string) (*Document, error) {
	body, err := w.Fetcher.FetchKML(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer body.Close()

	doc, err := Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", ref, err)
	}
	w.Metrics.KMLDocumentFetched()
	return doc, nil
}
