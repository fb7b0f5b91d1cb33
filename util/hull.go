package util

import (
	"github.com/paulmach/orb"

	hull "github.com/furstenheim/go-convex-hull-2d"
)

type coordinates []orb.Point

func (c coordinates) Take(i int) (x, y float64) {
	return c[i][0], c[i][1]
}

func (c coordinates) Len() int {
	return len(c)
}

func (c coordinates) Swap(i, j int) {
	c[i], c[j] = c[j], c[i]
}

func (c coordinates) Slice(i, j int) hull.Interface {
	return c[i:j]
}

// CoverageHull returns the convex hull of every ring, as a closed ring. Nil when
// fewer than three distinct points are given.
func CoverageHull(rings []orb.Ring) orb.Ring {
	var c coordinates
	for _, r := range rings {
		c = append(c, r...)
	}
	if len(c) < 3 {
		return nil
	}
	h := hull.New(c)

	var ring orb.Ring
	for i := 0; i < h.Len(); i++ {
		x, y := h.Take(i)
		ring = append(ring, orb.Point{x, y})
	}
	if len(ring) < 3 {
		return nil
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}
