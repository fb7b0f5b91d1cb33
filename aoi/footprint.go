package aoi

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ParseFootprint parses KML coordinate text ("lon,lat[,alt] lon,lat[,alt] ...") into a closed ring.
func ParseFootprint(text string) (orb.Ring, error) {
	tuples := strings.Fields(text)
	if len(tuples) == 0 {
		return nil, fmt.Errorf("empty coordinates")
	}
	ring := make(orb.Ring, 0, len(tuples)+1)
	for _, tuple := range tuples {
		vals := strings.Split(tuple, ",")
		if len(vals) != 2 && len(vals) != 3 {
			return nil, fmt.Errorf("bad coordinate tuple %q: want lon,lat[,alt]", tuple)
		}
		lon, err := strconv.ParseFloat(vals[0], 64)
		if err != nil {
			return nil, fmt.Errorf("bad longitude in %q: %w", tuple, err)
		}
		lat, err := strconv.ParseFloat(vals[1], 64)
		if err != nil {
			return nil, fmt.Errorf("bad latitude in %q: %w", tuple, err)
		}
		if len(vals) == 3 {
			if _, err := strconv.ParseFloat(vals[2], 64); err != nil {
				return nil, fmt.Errorf("bad altitude in %q: %w", tuple, err)
			}
		}
		ring = append(ring, orb.Point{lon, lat})
	}
	if len(ring) > 1 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring, nil
}

// IntersectsText parses the footprint and tests it against the box.
func (b BoundingBox) IntersectsText(text string) (bool, error) {
	ring, err := ParseFootprint(text)
	if err != nil {
		return false, err
	}
	return b.Intersects(ring), nil
}

// Intersects reports whether the footprint and the box share at least one point,
// boundary contact included.
func (b BoundingBox) Intersects(ring orb.Ring) bool {
	if len(ring) == 0 {
		return false
	}
	bound := b.Bound()
	if !ring.Bound().Intersects(bound) {
		return false
	}
	for _, p := range ring {
		if bound.Contains(p) {
			return true
		}
	}
	corners := b.Ring()
	if len(ring) >= 4 {
		for _, c := range corners[:4] {
			if planar.RingContains(ring, c) {
				return true
			}
		}
	}
	for i := 0; i+1 < len(ring); i++ {
		for j := 0; j+1 < len(corners); j++ {
			if segmentsIntersect(ring[i], ring[i+1], corners[j], corners[j+1]) {
				return true
			}
		}
	}
	return false
}

func orientation(a, b, c orb.Point) int {
	v := (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// onSegment assumes p is collinear with a-b.
func onSegment(a, b, p orb.Point) bool {
	return p[0] >= min(a[0], b[0]) && p[0] <= max(a[0], b[0]) &&
		p[1] >= min(a[1], b[1]) && p[1] <= max(a[1], b[1])
}

func segmentsIntersect(p1, p2, q1, q2 orb.Point) bool {
	o1 := orientation(p1, p2, q1)
	o2 := orientation(p1, p2, q2)
	o3 := orientation(q1, q2, p1)
	o4 := orientation(q1, q2, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}
	switch {
	case o1 == 0 && onSegment(p1, p2, q1):
		return true
	case o2 == 0 && onSegment(p1, p2, q2):
		return true
	case o3 == 0 && onSegment(q1, q2, p1):
		return true
	case o4 == 0 && onSegment(q1, q2, p2):
		return true
	}
	return false
}
