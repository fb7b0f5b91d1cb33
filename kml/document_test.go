package kml

import (
	"strings"
	"testing"

	"pva-downloader/ignstub"
)

func TestParseIndex(t *testing.T) {

	doc, err := Parse(strings.NewReader(ignstub.Index("B/child1.kml", "B/child2.kml")))

	if err != nil {
		t.Fatalf("Failed to parse index, %v", err)
	}

	if len(doc.Links) != 2 || doc.Links[0] != "B/child1.kml" || doc.Links[1] != "B/child2.kml" {
		t.Fatalf("Unexpected links %v", doc.Links)
	}

	if len(doc.Placemarks) != 0 {
		t.Fatalf("Expected no placemarks, got %d", len(doc.Placemarks))
	}
}

func TestParseLeaf(t *testing.T) {

	body := ignstub.Leaf(
		ignstub.Placemark{Tile: "0001", Coordinates: "3.26,47.36 3.27,47.36 3.27,47.37 3.26,47.37 3.26,47.36"},
		ignstub.Placemark{Tile: "0002", Coordinates: "3.28,47.36 3.29,47.36 3.29,47.37 3.28,47.37 3.28,47.36"},
	)

	doc, err := Parse(strings.NewReader(body))

	if err != nil {
		t.Fatalf("Failed to parse leaf, %v", err)
	}

	if len(doc.Placemarks) != 2 {
		t.Fatalf("Expected 2 placemarks, got %d", len(doc.Placemarks))
	}

	p := doc.Placemarks[1]

	if p.JP2 != "0002" {
		t.Fatalf("Unexpected JP2 '%s'", p.JP2)
	}

	if !strings.HasPrefix(p.Coordinates, "3.28,47.36 ") {
		t.Fatalf("Unexpected coordinates '%s'", p.Coordinates)
	}
}

func TestParseDisplayNameAttribute(t *testing.T) {

	body := `<kml xmlns="http://www.opengis.net/kml/2.2"><Placemark>
<Polygon><outerBoundaryIs><LinearRing><coordinates>1,1 2,2 3,1 1,1</coordinates></LinearRing></outerBoundaryIs></Polygon>
<ExtendedData><Data displayName="JP2"><value>IGNF_PVA_0042</value></Data></ExtendedData>
</Placemark></kml>`

	doc, err := Parse(strings.NewReader(body))

	if err != nil {
		t.Fatalf("Failed to parse, %v", err)
	}

	if len(doc.Placemarks) != 1 || doc.Placemarks[0].JP2 != "IGNF_PVA_0042" {
		t.Fatalf("Unexpected placemarks %+v", doc.Placemarks)
	}
}

func TestParseIgnoresOtherNamespaces(t *testing.T) {

	body := `<kml xmlns="http://www.opengis.net/kml/2.2" xmlns:atom="http://www.w3.org/2005/Atom">
<atom:link><atom:href>http://example.org</atom:href></atom:link>
<NetworkLink><Link><href>next.kml</href></Link></NetworkLink>
</kml>`

	doc, err := Parse(strings.NewReader(body))

	if err != nil {
		t.Fatalf("Failed to parse, %v", err)
	}

	if len(doc.Links) != 1 || doc.Links[0] != "next.kml" {
		t.Fatalf("Unexpected links %v", doc.Links)
	}
}

func TestParseLatin1(t *testing.T) {

	body := "<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		`<kml xmlns="http://www.opengis.net/kml/2.2"><Document><name>Pr` + "\xe9" + `fecture</name>
<NetworkLink><Link><href>child.kml</href></Link></NetworkLink></Document></kml>`

	doc, err := Parse(strings.NewReader(body))

	if err != nil {
		t.Fatalf("Failed to parse, %v", err)
	}

	if len(doc.Links) != 1 || doc.Links[0] != "child.kml" {
		t.Fatalf("Unexpected links %v", doc.Links)
	}
}

func TestParseErrors(t *testing.T) {

	tests := map[string]string{
		"empty":     ``,
		"malformed": `<kml xmlns="http://www.opengis.net/kml/2.2"><Document>`,
		"no polygon": `<kml xmlns="http://www.opengis.net/kml/2.2"><Placemark>
<ExtendedData><Data name="JP2"><displayName>JP2</displayName><value>1</value></Data></ExtendedData>
</Placemark></kml>`,
		"no jp2": `<kml xmlns="http://www.opengis.net/kml/2.2"><Placemark>
<Polygon><outerBoundaryIs><LinearRing><coordinates>1,1 2,2 3,1 1,1</coordinates></LinearRing></outerBoundaryIs></Polygon>
<ExtendedData><Data name="NUM"><displayName>NUM</displayName><value>1</value></Data></ExtendedData>
</Placemark></kml>`,
	}

	for name, body := range tests {
		if _, err := Parse(strings.NewReader(body)); err == nil {
			t.Fatalf("Expected error for %s document", name)
		}
	}
}
