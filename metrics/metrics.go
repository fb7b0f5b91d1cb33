// Package metrics counts what a run fetched and downloaded. Counters live in a
// per-run registry so they can be dumped in the Prometheus text format when the
// run ends.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder is safe to use as a nil pointer; every method is then a no-op.
type Recorder struct {
	Registry *prometheus.Registry

	kmlDocuments    prometheus.Counter
	tilesDiscovered prometheus.Counter
	tilesDownloaded prometheus.Counter
	bytesDownloaded prometheus.Counter
	httpRetries     prometheus.Counter
}

func New() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		kmlDocuments: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pva_kml_documents_fetched_total",
			Help: "KML documents fetched while walking a mission tree.",
		}),
		tilesDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pva_tiles_discovered_total",
			Help: "Tiles kept by the KML walk.",
		}),
		tilesDownloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pva_tiles_downloaded_total",
			Help: "JP2 tiles written to disk.",
		}),
		bytesDownloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pva_bytes_downloaded_total",
			Help: "Bytes of JP2 data written to disk.",
		}),
		httpRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pva_http_retries_total",
			Help: "HTTP requests retried by the client retry policy.",
		}),
	}
	r.Registry.MustRegister(r.kmlDocuments, r.tilesDiscovered, r.tilesDownloaded, r.bytesDownloaded, r.httpRetries)
	return r
}

func (r *Recorder) KMLDocumentFetched() {
	if r == nil {
		return
	}
	r.kmlDocuments.Inc()
}

func (r *Recorder) TilesDiscovered(n int) {
	if r == nil {
		return
	}
	r.tilesDiscovered.Add(float64(n))
}

func (r *Recorder) TileDownloaded(bytes int64) {
	if r == nil {
		return
	}
	r.tilesDownloaded.Inc()
	r.bytesDownloaded.Add(float64(bytes))
}

func (r *Recorder) HTTPRetry() {
	if r == nil {
		return
	}
	r.httpRetries.Inc()
}

// WriteTextfile writes the registry for the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.Registry)
}
