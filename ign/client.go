// Package ign talks to the IGN geoservices: the mission search (WFS) endpoint, the
// DEMAT.PVA KML tile index and the JP2 tile store.
package ign

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/jtacoma/uritemplates"
	log "github.com/sirupsen/logrus"

	"pva-downloader/config"
	"pva-downloader/metrics"
)

// Status codes worth retrying; anything else is returned as is.
var retryStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

type Options struct {
	SearchURL       string
	KMLURLTemplate  string
	TileURLTemplate string
	Referer         string
	LayerID         string
	TypeName        string

	// MaxAttempts counts the first request, so 5 means up to 4 retries.
	MaxAttempts  int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	Metrics *metrics.Recorder
}

// OptionsFromConfig maps the [SERVICE] section onto client options.
func OptionsFromConfig(c config.ServiceConfig, m *metrics.Recorder) Options {
	return Options{
		SearchURL:       c.SearchURL,
		KMLURLTemplate:  c.KMLURLTemplate,
		TileURLTemplate: c.TileURLTemplate,
		Referer:         c.Referer,
		LayerID:         c.LayerID,
		TypeName:        c.TypeName,
		MaxAttempts:     c.MaxAttempts,
		RetryWaitMin:    c.RetryWaitMin,
		RetryWaitMax:    c.RetryWaitMax,
		Metrics:         m,
	}
}

type Client struct {
	opts Options
	http *retryablehttp.Client

	kmlURL  *uritemplates.UriTemplate
	tileURL *uritemplates.UriTemplate
}

func New(opts Options) (*Client, error) {
	kmlURL, err := uritemplates.Parse(opts.KMLURLTemplate)
	if err != nil {
		return nil, fmt.Errorf("bad KML URL template %q: %w", opts.KMLURLTemplate, err)
	}
	tileURL, err := uritemplates.Parse(opts.TileURLTemplate)
	if err != nil {
		return nil, fmt.Errorf("bad tile URL template %q: %w", opts.TileURLTemplate, err)
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Client{
		opts:    opts,
		http:    newHTTPClient(opts),
		kmlURL:  kmlURL,
		tileURL: tileURL,
	}, nil
}

func newHTTPClient(opts Options) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = nil
	if log.GetLevel() >= log.DebugLevel {
		client.Logger = log.StandardLogger()
	}
	client.RetryMax = opts.MaxAttempts - 1
	client.RetryWaitMin = opts.RetryWaitMin
	client.RetryWaitMax = opts.RetryWaitMax
	client.Backoff = retryablehttp.DefaultBackoff
	client.CheckRetry = checkRetry
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt == 0 {
			return
		}
		log.Warnf("Retrying %s %s (attempt %d of %d)", req.Method, req.URL.Redacted(), attempt+1, opts.MaxAttempts)
		opts.Metrics.HTTPRetry()
	}
	return client
}

// checkRetry retries transport errors and transient statuses, for reads only.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	if resp.Request != nil && resp.Request.Method != http.MethodGet {
		return false, nil
	}
	return retryStatuses[resp.StatusCode], nil
}
