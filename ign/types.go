package ign

import (
	"strings"
)

// Mission is one aerial survey returned by the search service.
type Mission struct {
	ID    string // kml_layer_id, also the root of the KML tile index
	Date  string // pv_date, YYYY-MM-DD
	Title string
	JP2   bool
}

func (m Mission) Year() string {
	y, _, _ := strings.Cut(m.Date, "-")
	return y
}

// Label renders the mission the way the selection menu lists it: ID(year).
func (m Mission) Label() string {
	return m.ID + "(" + m.Year() + ")"
}

func Labels(missions []Mission) []string {
	labels := make([]string, 0, len(missions))
	for _, m := range missions {
		labels = append(labels, m.Label())
	}
	return labels
}

// hitsResponse is the WFS 1.1.0 resultType=hits envelope. The service answers
// hits requests in XML whatever outputFormat says.
type hitsResponse struct {
	NumberOfFeatures string `xml:"numberOfFeatures,attr"`
}
