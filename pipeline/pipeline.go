// Package pipeline runs one session: search the missions over the area of interest,
// let the user pick one, walk its KML index and download the tiles.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	log "github.com/sirupsen/logrus"

	"pva-downloader/config"
	"pva-downloader/download"
	"pva-downloader/footprint"
	"pva-downloader/ign"
	"pva-downloader/kml"
	"pva-downloader/menu"
	"pva-downloader/metrics"
	"pva-downloader/util"
)

const menuTitle = "Choose an aerial survey to download its aerial shots:"

// MissionSource is the search side of the IGN client.
type MissionSource interface {
	CountMissions(ctx context.Context, polygon string) (int, error)
	ListMissions(ctx context.Context, polygon string) ([]ign.Mission, error)
}

// Service is everything the pipeline needs from the remote side.
type Service interface {
	MissionSource
	kml.Fetcher
	download.TileFetcher
}

type Options struct {
	// DryRun lists the tiles instead of downloading them.
	DryRun bool
	// GeoJSON and Preview write footprints.geojson / preview.png in the mission directory.
	GeoJSON bool
	Preview bool
}

type Pipeline struct {
	Config   *config.Config
	Service  Service
	Selector menu.Selector
	Options  Options
	// Out receives the user facing messages and the progress bar.
	Out     io.Writer
	Metrics *metrics.Recorder
}

// Result describes what a run did. Stopped is set when the run ended early
// without error (too many or no missions).
type Result struct {
	Count   int
	Stopped bool
	Mission ign.Mission
	Tiles   []kml.Tile
}

func New(cfg *config.Config, svc Service, sel menu.Selector, out io.Writer, m *metrics.Recorder) *Pipeline {
	return &Pipeline{
		Config:   cfg,
		Service:  svc,
		Selector: sel,
		Out:      out,
		Metrics:  m,
	}
}

func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if log.GetLevel() >= log.DebugLevel {
		log.Debugf("Configuration: %s", spew.Sdump(p.Config))
	}

	bbox := p.Config.Area.BoundingBox()
	polygon := bbox.Polygon()
	res := &Result{}

	count, err := p.Service.CountMissions(ctx, polygon)
	if err != nil {
		return nil, err
	}
	res.Count = count
	log.Infof("%d missions intersect %s", count, bbox)

	limit := p.Config.Service.MaxMissions
	if count > limit {
		util.Say(p.Out, "More than %d survey found. Please reduce bounding box.", limit)
		res.Stopped = true
		return res, nil
	}

	missions, err := p.Service.ListMissions(ctx, polygon)
	if err != nil {
		return nil, err
	}
	if len(missions) == 0 {
		util.Say(p.Out, "No survey with downloadable aerial shots found in %s.", bbox)
		res.Stopped = true
		return res, nil
	}

	i, err := p.Selector.SelectOne(menuTitle, ign.Labels(missions))
	if err != nil {
		return nil, err
	}
	res.Mission = missions[i]
	log.Infof("Selected mission %s (%s)", res.Mission.ID, res.Mission.Date)

	util.Say(p.Out, "Parsing KML files to get aerial shots download URLs. This could take some time.")

	walker := &kml.Walker{
		Fetcher: p.Service,
		Workers: p.Config.Download.KMLWorkers,
		Metrics: p.Metrics,
	}
	if p.Config.Area.OnlyIntersecting {
		walker.Filter = &bbox
	}
	res.Tiles, err = walker.Walk(ctx, res.Mission.ID)
	if err != nil {
		return nil, fmt.Errorf("walk KML tree of %s: %w", res.Mission.ID, err)
	}
	ids := kml.IDs(res.Tiles)

	if p.Options.DryRun {
		util.Say(p.Out, "%d aerial shots found for IGNF survey %s.", len(ids), res.Mission.ID)
		for _, id := range ids {
			fmt.Fprintln(p.Out, id)
		}
		return res, nil
	}

	util.Say(p.Out, "%d aerial shots will be downloaded for IGNF survey %s", len(ids), res.Mission.ID)

	dl := &download.Downloader{
		Fetcher:  p.Service,
		Root:     p.Config.Download.Directory,
		Delay:    p.Config.Download.Delay,
		Progress: p.Out,
		Metrics:  p.Metrics,
	}
	if err := p.writeSideFiles(dl, res); err != nil {
		return nil, err
	}
	if err := dl.Download(ctx, ids, res.Mission.ID); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Pipeline) writeSideFiles(dl *download.Downloader, res *Result) error {
	if !p.Options.GeoJSON && !p.Options.Preview {
		return nil
	}
	dir, err := dl.Dir(res.Mission.ID)
	if err != nil {
		return err
	}
	bbox := p.Config.Area.BoundingBox()
	if p.Options.GeoJSON {
		path := filepath.Join(dir, "footprints.geojson")
		if err := footprint.WriteGeoJSON(path, res.Mission.ID, bbox, res.Tiles); err != nil {
			return err
		}
		log.Infof("Wrote %s", path)
	}
	if p.Options.Preview {
		path := filepath.Join(dir, "preview.png")
		title := fmt.Sprintf("%s - %d shots", res.Mission.Label(), len(res.Tiles))
		if err := footprint.WritePNG(path, title, bbox, res.Tiles); err != nil {
			return err
		}
		log.Infof("Wrote %s", path)
	}
	return nil
}
