package ignstub

import (
	"fmt"
	"strings"
)

const kmlHeader = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
<Document>
`

const kmlFooter = `</Document>
</kml>
`

// Placemark is one leaf tile of a fixture document.
type Placemark struct {
	Tile        string
	Coordinates string
}

// Index renders a document that only links to child documents.
func Index(hrefs ...string) string {
	var b strings.Builder
	b.WriteString(kmlHeader)
	for i, h := range hrefs {
		fmt.Fprintf(&b, `<NetworkLink>
  <name>%d</name>
  <Region><LatLonAltBox><north>90</north><south>-90</south><east>180</east><west>-180</west></LatLonAltBox></Region>
  <Link><href>%s</href><viewRefreshMode>onRegion</viewRefreshMode></Link>
</NetworkLink>
`, i, h)
	}
	b.WriteString(kmlFooter)
	return b.String()
}

// Leaf renders a document holding tile placemarks.
func Leaf(placemarks ...Placemark) string {
	var b strings.Builder
	b.WriteString(kmlHeader)
	for _, p := range placemarks {
		fmt.Fprintf(&b, `<Placemark>
  <name>%s</name>
  <ExtendedData>
    <Data name="NUM"><displayName>NUM</displayName><value>1</value></Data>
    <Data name="JP2"><displayName>JP2</displayName><value>%s</value></Data>
  </ExtendedData>
  <Polygon><outerBoundaryIs><LinearRing><coordinates>%s</coordinates></LinearRing></outerBoundaryIs></Polygon>
</Placemark>
`, p.Tile, p.Tile, p.Coordinates)
	}
	b.WriteString(kmlFooter)
	return b.String()
}
