package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"pva-downloader/config"
	"pva-downloader/ign"
	"pva-downloader/menu"
	"pva-downloader/metrics"
	"pva-downloader/pipeline"
	"pva-downloader/util"
)

var (
	configPath  = flag.String("config", util.EnvOrDefault("PVA_CONFIG", "properties.ini"), "Path to the ini configuration file")
	debug       = flag.Bool("debug", false, "Verbose logging, including every HTTP request")
	missionID   = flag.String("mission", "", "Pick this mission instead of showing the menu")
	dryRun      = flag.Bool("dry-run", false, "List the tiles of the selected mission without downloading them")
	geoJSON     = flag.Bool("geojson", false, "Write footprints.geojson in the mission directory")
	preview     = flag.Bool("preview", false, "Write preview.png in the mission directory")
	kmlWorkers  = flag.Int("kml-workers", 0, "Concurrent KML fetches per tree level (overrides download.kml_workers)")
	metricsFile = flag.String("metrics-file", "", "Write run counters to this file in Prometheus text format")
)

func topLevelContext() context.Context {
	ctx, cancelf := context.WithCancel(context.Background())
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigs
		log.Warnf("Caught signal %q, shutting down.", sig)
		cancelf()
	}()
	return ctx
}

func main() {
	flag.Parse()
	log.SetLevel(util.LogLevel(*debug))

	ctx := topLevelContext()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *kmlWorkers > 0 {
		cfg.Download.KMLWorkers = *kmlWorkers
	}

	m := metrics.New()
	client, err := ign.New(ign.OptionsFromConfig(cfg.Service, m))
	if err != nil {
		log.Fatalf("Failed to create IGN client: %v", err)
	}

	var sel menu.Selector = menu.Prompt{}
	if *missionID != "" {
		sel = menu.Named(*missionID)
	}

	p := pipeline.New(cfg, client, sel, os.Stdout, m)
	p.Options = pipeline.Options{
		DryRun:  *dryRun,
		GeoJSON: *geoJSON,
		Preview: *preview,
	}

	res, err := p.Run(ctx)
	if *metricsFile != "" {
		if merr := m.WriteTextfile(*metricsFile); merr != nil {
			log.Errorf("Failed to write metrics: %v", merr)
		}
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
	if res.Stopped {
		return
	}
	log.Infof("Done: %d aerial shots for %s", len(res.Tiles), res.Mission.ID)
}
