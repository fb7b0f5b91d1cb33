package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const properties = `[AREA OF INTEREST]
minimum_longitude = 3.2559
minimum_latitude = 47.3625
maximum_longitude = 3.3014
maximum_latitude = 47.3716
only_intersecting_aerial_shots = true
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "properties.ini")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write %s, %v", path, err)
	}
	return path
}

func TestLoad(t *testing.T) {

	cfg, err := Load(writeConfig(t, properties))

	if err != nil {
		t.Fatalf("Failed to load config, %v", err)
	}

	b := cfg.Area.BoundingBox()

	if b.MinLon != 3.2559 || b.MinLat != 47.3625 || b.MaxLon != 3.3014 || b.MaxLat != 47.3716 {
		t.Fatalf("Unexpected bounding box %s", b)
	}

	if !cfg.Area.OnlyIntersecting {
		t.Fatalf("Expected only_intersecting_aerial_shots to be true")
	}

	if cfg.Service.MaxMissions != 100 {
		t.Fatalf("Expected default max_missions 100, got %d", cfg.Service.MaxMissions)
	}

	if cfg.Service.MaxAttempts != 5 {
		t.Fatalf("Expected default max_attempts 5, got %d", cfg.Service.MaxAttempts)
	}

	if cfg.Download.Delay != time.Second {
		t.Fatalf("Expected default delay 1s, got %v", cfg.Download.Delay)
	}

	if cfg.Download.Directory != "downloads" {
		t.Fatalf("Unexpected download directory '%s'", cfg.Download.Directory)
	}

	if cfg.Service.TileURLTemplate != DefaultTileURLTemplate {
		t.Fatalf("Unexpected tile URL template '%s'", cfg.Service.TileURLTemplate)
	}
}

func TestLoadServiceSection(t *testing.T) {

	body := properties + `
[SERVICE]
search_url = http://localhost:8080/search/layers
referer = example.org
max_missions = 10
retry_wait_min = 10ms
retry_wait_max = 50ms

[DOWNLOAD]
directory = /tmp/pva
delay = 0s
kml_workers = 4
`

	cfg, err := Load(writeConfig(t, body))

	if err != nil {
		t.Fatalf("Failed to load config, %v", err)
	}

	if cfg.Service.SearchURL != "http://localhost:8080/search/layers" {
		t.Fatalf("Unexpected search URL '%s'", cfg.Service.SearchURL)
	}

	if cfg.Service.MaxMissions != 10 {
		t.Fatalf("Unexpected max_missions %d", cfg.Service.MaxMissions)
	}

	if cfg.Service.RetryWaitMin != 10*time.Millisecond {
		t.Fatalf("Unexpected retry_wait_min %v", cfg.Service.RetryWaitMin)
	}

	if cfg.Download.Delay != 0 || cfg.Download.KMLWorkers != 4 || cfg.Download.Directory != "/tmp/pva" {
		t.Fatalf("Unexpected download section %+v", cfg.Download)
	}
}

func TestLoadEnvOverride(t *testing.T) {

	t.Setenv("PVA_AREA_OF_INTEREST_MAXIMUM_LONGITUDE", "3.5")

	cfg, err := Load(writeConfig(t, properties))

	if err != nil {
		t.Fatalf("Failed to load config, %v", err)
	}

	if cfg.Area.MaximumLongitude != 3.5 {
		t.Fatalf("Expected env override 3.5, got %v", cfg.Area.MaximumLongitude)
	}
}

func TestLoadMissingArea(t *testing.T) {

	_, err := Load(writeConfig(t, "[AREA OF INTEREST]\nminimum_longitude = 1\n"))

	if err == nil {
		t.Fatalf("Expected error for missing coordinates")
	}

	if !strings.Contains(err.Error(), "maximum_latitude") {
		t.Fatalf("Expected missing keys to be listed, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {

	if _, err := Load(filepath.Join(t.TempDir(), "nope.ini")); err == nil {
		t.Fatalf("Expected error for missing file")
	}
}

func TestValidate(t *testing.T) {

	cfg, err := Load(writeConfig(t, properties))

	if err != nil {
		t.Fatalf("Failed to load config, %v", err)
	}

	cfg.Area.MinimumLongitude = 4
	cfg.Service.MaxMissions = 0
	cfg.Download.KMLWorkers = 0

	err = cfg.Validate()

	if err == nil {
		t.Fatalf("Expected validation error")
	}

	for _, s := range []string{"minimum_longitude", "max_missions", "kml_workers"} {
		if !strings.Contains(err.Error(), s) {
			t.Fatalf("Expected '%s' in validation error, got %v", s, err)
		}
	}
}
