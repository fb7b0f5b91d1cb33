// Package kml reads the DEMAT.PVA KML tile index: a tree of KML 2.2 documents
// whose inner nodes link to child documents and whose leaves hold one Placemark
// per aerial shot.
package kml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

const Namespace = "http://www.opengis.net/kml/2.2"

// Placemark is a tile entry: its footprint coordinates and the JP2 tile identifier.
type Placemark struct {
	Coordinates string
	JP2         string
}

type Document struct {
	// Links holds every href in document order, unresolved.
	Links      []string
	Placemarks []Placemark
}

// Element paths below Placemark.
var (
	footprintPath   = []string{"Polygon", "outerBoundaryIs", "LinearRing", "coordinates"}
	dataPath        = []string{"ExtendedData", "Data"}
	displayNamePath = []string{"ExtendedData", "Data", "displayName"}
	valuePath       = []string{"ExtendedData", "Data", "value"}
)

type placemarkState struct {
	depth int // index of the Placemark element in the stack

	coordinates    string
	hasCoordinates bool
	jp2            string
	hasJP2         bool

	// current ExtendedData/Data entry
	inData          bool
	dataDisplayName string
	dataValue       string
	hasDataValue    bool
}

func (p *placemarkState) rel(stack []string) []string {
	return stack[p.depth+1:]
}

func pathIs(rel []string, path ...string) bool {
	if len(rel) != len(path) {
		return false
	}
	for i := range rel {
		if rel[i] != path[i] {
			return false
		}
	}
	return true
}

func attr(se xml.StartElement, local string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// Parse reads one KML document. Only elements in the KML 2.2 namespace are
// considered. A Placemark without footprint coordinates or without a JP2 data
// value is an error.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	doc := &Document{}

	var stack []string
	var text strings.Builder
	var pm *placemarkState
	count := 0
	root := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("kml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			if t.Name.Space != Namespace {
				name = "{" + t.Name.Space + "}" + name
			}
			stack = append(stack, name)
			root = true
			text.Reset()

			switch {
			case name == "Placemark" && pm == nil:
				pm = &placemarkState{depth: len(stack) - 1}
			case pm != nil && pathIs(pm.rel(stack), dataPath...):
				pm.inData = true
				pm.dataDisplayName, _ = attr(t, "displayName")
				pm.dataValue, pm.hasDataValue = "", false
			}

		case xml.CharData:
			text.Write(t)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("kml: unbalanced end element %s", t.Name.Local)
			}
			name := stack[len(stack)-1]
			value := strings.TrimSpace(text.String())

			if name == "href" {
				doc.Links = append(doc.Links, value)
			}

			if pm != nil {
				rel := pm.rel(stack)
				switch {
				case len(stack)-1 == pm.depth:
					count++
					if !pm.hasCoordinates {
						return nil, fmt.Errorf("kml: placemark %d has no Polygon/outerBoundaryIs/LinearRing/coordinates", count)
					}
					if !pm.hasJP2 {
						return nil, fmt.Errorf("kml: placemark %d has no JP2 data value", count)
					}
					doc.Placemarks = append(doc.Placemarks, Placemark{Coordinates: pm.coordinates, JP2: pm.jp2})
					pm = nil
				case pathIs(rel, footprintPath...) && !pm.hasCoordinates:
					pm.coordinates, pm.hasCoordinates = value, true
				case pm.inData && pathIs(rel, displayNamePath...):
					pm.dataDisplayName = value
				case pm.inData && pathIs(rel, valuePath...):
					pm.dataValue, pm.hasDataValue = value, true
				case pm.inData && pathIs(rel, dataPath...):
					if pm.dataDisplayName == "JP2" && pm.hasDataValue && !pm.hasJP2 {
						pm.jp2, pm.hasJP2 = pm.dataValue, true
					}
					pm.inData = false
				}
			}

			stack = stack[:len(stack)-1]
			text.Reset()
		}
	}
	if !root {
		return nil, fmt.Errorf("kml: empty document")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("kml: unexpected end of document inside %s", stack[len(stack)-1])
	}
	return doc, nil
}
