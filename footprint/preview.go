package footprint

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/paulmach/orb"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"pva-downloader/aoi"
	"pva-downloader/kml"
	"pva-downloader/util"
)

const (
	PreviewSize = 512
	margin      = 24
)

var (
	bboxColor     = color.RGBA{220, 0, 0, 255}
	tileColor     = color.RGBA{0, 70, 200, 255}
	tileFill      = color.RGBA{0, 70, 200, 40}
	coverageColor = color.RGBA{120, 120, 120, 255}
)

// projection maps lon/lat linearly into the image, north up.
type projection struct {
	bound orb.Bound
	scale float64
}

func newProjection(bound orb.Bound) projection {
	w := bound.Max[0] - bound.Min[0]
	h := bound.Max[1] - bound.Min[1]
	span := w
	if h > span {
		span = h
	}
	if span == 0 {
		span = 1
	}
	return projection{bound: bound, scale: float64(PreviewSize-2*margin) / span}
}

func (p projection) xy(pt orb.Point) (float64, float64) {
	x := margin + (pt[0]-p.bound.Min[0])*p.scale
	y := PreviewSize - margin - (pt[1]-p.bound.Min[1])*p.scale
	return x, y
}

func (p projection) path(gc *draw2dimg.GraphicContext, r orb.Ring) {
	gc.BeginPath()
	for i, pt := range r {
		x, y := p.xy(pt)
		if i == 0 {
			gc.MoveTo(x, y)
			continue
		}
		gc.LineTo(x, y)
	}
	gc.Close()
}

// Render draws the bounding box, the tile footprints and their coverage hull.
func Render(title string, bbox aoi.BoundingBox, tiles []kml.Tile) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, PreviewSize, PreviewSize))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	bound := bbox.Bound()
	for _, t := range tiles {
		bound = bound.Union(t.Footprint.Bound())
	}
	proj := newProjection(bound)

	gc := draw2dimg.NewGraphicContext(img)

	if hull := util.CoverageHull(kml.Footprints(tiles)); hull != nil {
		gc.SetStrokeColor(coverageColor)
		gc.SetLineWidth(1)
		proj.path(gc, hull)
		gc.Stroke()
	}

	gc.SetStrokeColor(tileColor)
	gc.SetFillColor(tileFill)
	gc.SetLineWidth(1)
	for _, t := range tiles {
		if len(t.Footprint) < 3 {
			continue
		}
		proj.path(gc, t.Footprint)
		gc.FillStroke()
	}

	gc.SetStrokeColor(bboxColor)
	gc.SetLineWidth(2)
	proj.path(gc, bbox.Ring())
	gc.Stroke()

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(4), Y: fixed.I(14)},
	}
	d.DrawString(title)
	return img
}

func WritePNG(path, title string, bbox aoi.BoundingBox, tiles []kml.Tile) error {
	if err := draw2dimg.SaveToPngFile(path, Render(title, bbox, tiles)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
