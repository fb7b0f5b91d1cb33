// Package ignstub serves canned responses for the three IGN endpoints the tool
// talks to (mission search, KML index, JP2 tiles). Tests point a client at it
// through config.ServiceConfig.
package ignstub

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"pva-downloader/config"
)

type MissionRow struct {
	ID    string
	Date  string
	Title string
	JP2   bool
}

// Request is what the stub saw of one incoming request.
type Request struct {
	Path    string
	Query   string
	Referer string
}

type Server struct {
	// Count is reported as numberOfFeatures; -1 omits the attribute.
	Count    int
	// Hits, when set, replaces the whole resultType=hits body.
	Hits     string
	Missions []MissionRow
	// Documents maps a KML reference ("A/root.kml") to its body.
	Documents map[string]string
	// Tiles maps "mission/tile" to the JP2 payload.
	Tiles map[string][]byte
	// FailFirst makes the given URL path answer 503 that many times before succeeding.
	FailFirst map[string]int

	mu       sync.Mutex
	requests []Request
	failures map[string]int
}

func New() *Server {
	return &Server{
		Documents: make(map[string]string),
		Tiles:     make(map[string][]byte),
		FailFirst: make(map[string]int),
		failures:  make(map[string]int),
	}
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.record)
	router.HandleFunc("/search/layers", s.serveSearch).Methods("GET")
	router.HandleFunc("/kml/{path:.*}", s.serveKML).Methods("GET")
	router.HandleFunc("/jp2/{mission}/{tile}.jp2", s.serveTile).Methods("GET")
	return router
}

// Start runs the stub on a loopback port. Close the returned server when done.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s.Router())
}

// Service returns a [SERVICE] section pointing at the stub, with short retry waits.
func Service(baseURL string) config.ServiceConfig {
	return config.ServiceConfig{
		SearchURL:       baseURL + "/search/layers",
		KMLURLTemplate:  baseURL + "/kml/{+path}",
		TileURLTemplate: baseURL + "/jp2/{mission}/{tile}.jp2",
		Referer:         config.DefaultReferer,
		LayerID:         config.DefaultLayerID,
		TypeName:        config.DefaultTypeName,
		MaxMissions:     100,
		MaxAttempts:     3,
	}
}

func (s *Server) Requests(prefix string) []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Request
	for _, r := range s.requests {
		if strings.HasPrefix(r.Path, prefix) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Path:    r.URL.Path,
			Query:   r.URL.RawQuery,
			Referer: r.Header.Get("Referer"),
		})
		fail := s.failures[r.URL.Path] < s.FailFirst[r.URL.Path]
		if fail {
			s.failures[r.URL.Path]++
		}
		s.mu.Unlock()

		if fail {
			log.Debugf("stub: failing %s", r.URL.Path)
			http.Error(w, "try again later", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) serveSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !strings.Contains(q.Get("cql_filter"), "INTERSECTS(the_geom,POLYGON((") {
		http.Error(w, "missing spatial filter", http.StatusBadRequest)
		return
	}

	if q.Get("resultType") == "hits" {
		w.Header().Set("Content-Type", "text/xml")
		if s.Hits != "" {
			fmt.Fprint(w, s.Hits)
			return
		}
		attr := ""
		if s.Count >= 0 {
			attr = fmt.Sprintf(` numberOfFeatures="%d"`, s.Count)
		}
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<wfs:FeatureCollection xmlns:wfs="http://www.opengis.net/wfs"%s timeStamp="2026-01-01T00:00:00Z"/>`, attr)
		return
	}

	type properties struct {
		JP2        bool   `json:"jp2"`
		KMLLayerID string `json:"kml_layer_id"`
		PvDate     string `json:"pv_date"`
		Title      string `json:"title"`
	}
	type feature struct {
		Type       string      `json:"type"`
		Properties *properties `json:"properties"`
	}
	resp := struct {
		Type     string     `json:"type"`
		Features []*feature `json:"features"`
	}{Type: "FeatureCollection", Features: []*feature{}}

	for _, m := range s.Missions {
		resp.Features = append(resp.Features, &feature{
			Type: "Feature",
			Properties: &properties{
				JP2:        m.JP2,
				KMLLayerID: m.ID,
				PvDate:     m.Date,
				Title:      m.Title,
			},
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Errorf("stub encode: %v", err)
	}
}

func (s *Server) serveKML(w http.ResponseWriter, r *http.Request) {
	ref := mux.Vars(r)["path"]
	doc, ok := s.Documents[ref]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.google-earth.kml+xml")
	fmt.Fprint(w, doc)
}

func (s *Server) serveTile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	data, ok := s.Tiles[vars["mission"]+"/"+vars["tile"]]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/jp2")
	w.Write(data)
}
