// Package config loads the run configuration from an ini file and the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"pva-downloader/aoi"
)

const (
	areaSection = "area of interest"

	DefaultSearchURL       = "https://wxs.ign.fr/search/layers"
	DefaultKMLURLTemplate  = "https://wxs.ign.fr/2ne3yvigrf4y78kmd5o2gp9v/dematkml/DEMAT.PVA/{+path}"
	DefaultTileURLTemplate = "https://wxs.ign.fr/2ne3yvigrf4y78kmd5o2gp9v/jp2/DEMAT.PVA/{mission}/{tile}.jp2"
	DefaultReferer         = "ignfab.ign.fr"
	DefaultLayerID         = "DEMAT.PVA$GEOPORTAIL:DEMAT;PHOTOS"
	DefaultTypeName        = "ign:missions"
)

// Config holds everything a run needs. It is built once and handed to each component.
type Config struct {
	Area     AreaConfig     `mapstructure:"area of interest"`
	Service  ServiceConfig  `mapstructure:"service"`
	Download DownloadConfig `mapstructure:"download"`
}

type AreaConfig struct {
	MinimumLongitude float64 `mapstructure:"minimum_longitude"`
	MinimumLatitude  float64 `mapstructure:"minimum_latitude"`
	MaximumLongitude float64 `mapstructure:"maximum_longitude"`
	MaximumLatitude  float64 `mapstructure:"maximum_latitude"`
	OnlyIntersecting bool    `mapstructure:"only_intersecting_aerial_shots"`
}

func (a AreaConfig) BoundingBox() aoi.BoundingBox {
	return aoi.New(a.MinimumLongitude, a.MinimumLatitude, a.MaximumLongitude, a.MaximumLatitude)
}

type ServiceConfig struct {
	SearchURL       string        `mapstructure:"search_url"`
	KMLURLTemplate  string        `mapstructure:"kml_url_template"`
	TileURLTemplate string        `mapstructure:"tile_url_template"`
	Referer         string        `mapstructure:"referer"`
	LayerID         string        `mapstructure:"layer_id"`
	TypeName        string        `mapstructure:"type_name"`
	MaxMissions     int           `mapstructure:"max_missions"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
	RetryWaitMin    time.Duration `mapstructure:"retry_wait_min"`
	RetryWaitMax    time.Duration `mapstructure:"retry_wait_max"`
}

type DownloadConfig struct {
	Directory  string        `mapstructure:"directory"`
	Delay      time.Duration `mapstructure:"delay"`
	KMLWorkers int           `mapstructure:"kml_workers"`
}

var requiredAreaKeys = []string{
	"minimum_longitude",
	"minimum_latitude",
	"maximum_longitude",
	"maximum_latitude",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(areaSection+".only_intersecting_aerial_shots", false)
	v.SetDefault("service.search_url", DefaultSearchURL)
	v.SetDefault("service.kml_url_template", DefaultKMLURLTemplate)
	v.SetDefault("service.tile_url_template", DefaultTileURLTemplate)
	v.SetDefault("service.referer", DefaultReferer)
	v.SetDefault("service.layer_id", DefaultLayerID)
	v.SetDefault("service.type_name", DefaultTypeName)
	v.SetDefault("service.max_missions", 100)
	v.SetDefault("service.max_attempts", 5)
	v.SetDefault("service.retry_wait_min", time.Second)
	v.SetDefault("service.retry_wait_max", 30*time.Second)
	v.SetDefault("download.directory", "downloads")
	v.SetDefault("download.delay", time.Second)
	v.SetDefault("download.kml_workers", 1)
}

// Load reads the ini file at path. Any key can be overridden from the environment:
// PVA_AREA_OF_INTEREST_MINIMUM_LONGITUDE → [AREA OF INTEREST] minimum_longitude.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	v.SetEnvPrefix("PVA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", " ", "_"))
	v.AutomaticEnv()

	var missing []string
	for _, k := range requiredAreaKeys {
		key := areaSection + "." + k
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
		if !v.IsSet(key) {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("config %s: [AREA OF INTEREST] is missing %s", path, strings.Join(missing, ", "))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	a := c.Area
	if a.MinimumLongitude > a.MaximumLongitude {
		errs = append(errs, fmt.Sprintf("minimum_longitude %v is greater than maximum_longitude %v", a.MinimumLongitude, a.MaximumLongitude))
	}
	if a.MinimumLatitude > a.MaximumLatitude {
		errs = append(errs, fmt.Sprintf("minimum_latitude %v is greater than maximum_latitude %v", a.MinimumLatitude, a.MaximumLatitude))
	}
	if a.MinimumLongitude < -180 || a.MaximumLongitude > 180 {
		errs = append(errs, "longitudes must be within -180..180")
	}
	if a.MinimumLatitude < -90 || a.MaximumLatitude > 90 {
		errs = append(errs, "latitudes must be within -90..90")
	}

	s := c.Service
	if s.SearchURL == "" {
		errs = append(errs, "service.search_url is required")
	}
	if s.KMLURLTemplate == "" {
		errs = append(errs, "service.kml_url_template is required")
	}
	if s.TileURLTemplate == "" {
		errs = append(errs, "service.tile_url_template is required")
	}
	if s.MaxMissions <= 0 {
		errs = append(errs, "service.max_missions must be positive")
	}
	if s.MaxAttempts <= 0 {
		errs = append(errs, "service.max_attempts must be positive")
	}
	if s.RetryWaitMin < 0 || s.RetryWaitMax < s.RetryWaitMin {
		errs = append(errs, "service.retry_wait_min must be >= 0 and <= service.retry_wait_max")
	}

	d := c.Download
	if d.Directory == "" {
		errs = append(errs, "download.directory is required")
	}
	if d.Delay < 0 {
		errs = append(errs, "download.delay must not be negative")
	}
	if d.KMLWorkers <= 0 {
		errs = append(errs, "download.kml_workers must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
