package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/layout"
	ioutils "github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/io"
)

// DefaultDPI is the raster resolution used when none is configured.
const DefaultDPI = 150

// RasterTarget renders pages to PNG. The pages of one artifact are stacked
// top to bottom in a single image.
type RasterTarget struct {
	dpi    float64
	images *ioutils.ImageService
}

// NewRasterTarget creates a PNG target. A non-positive dpi uses DefaultDPI.
func NewRasterTarget(dpi float64) *RasterTarget {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &RasterTarget{dpi: dpi, images: ioutils.NewImageService()}
}

// NewCanvas implements Target.
func (t *RasterTarget) NewCanvas() Canvas {
	return &rasterCanvas{scale: t.dpi / 72, images: t.images}
}

// Extension implements Target.
func (t *RasterTarget) Extension() string { return ".png" }

type rasterCanvas struct {
	scale  float64
	images *ioutils.ImageService

	page   *image.RGBA
	height float64
	pages  []*image.RGBA

	raster *vector.Rasterizer
}

func (c *rasterCanvas) BeginPage(size layout.Size) {
	w := int(math.Ceil(size.Width * c.scale))
	h := int(math.Ceil(size.Height * c.scale))
	c.page = image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(c.page, c.page.Bounds(), image.White, image.Point{}, draw.Src)
	c.height = size.Height
}

// px converts a page point to pixel coordinates.
func (c *rasterCanvas) px(x, y float64) (float32, float32) {
	return float32(x * c.scale), float32((c.height - y) * c.scale)
}

// DrawLine fills the stroke's quad. Only the quad's bounding box is
// rasterised, so long thin grid lines stay cheap.
func (c *rasterCanvas) DrawLine(l layout.Line, s Stroke) {
	if c.page == nil {
		return
	}
	x1, y1 := c.px(l.X1, l.Y1)
	x2, y2 := c.px(l.X2, l.Y2)

	dx, dy := x2-x1, y2-y1
	length := float32(math.Hypot(float64(dx), float64(dy)))
	if length == 0 {
		return
	}
	half := float32(math.Max(s.Width*c.scale, 1)) / 2
	nx, ny := -dy/length*half, dx/length*half

	quad := [4][2]float32{
		{x1 + nx, y1 + ny},
		{x2 + nx, y2 + ny},
		{x2 - nx, y2 - ny},
		{x1 - nx, y1 - ny},
	}
	minX, minY := quad[0][0], quad[0][1]
	maxX, maxY := minX, minY
	for _, p := range quad[1:] {
		minX, maxX = min(minX, p[0]), max(maxX, p[0])
		minY, maxY = min(minY, p[1]), max(maxY, p[1])
	}
	box := image.Rect(
		int(math.Floor(float64(minX))), int(math.Floor(float64(minY))),
		int(math.Ceil(float64(maxX))), int(math.Ceil(float64(maxY))),
	).Intersect(c.page.Bounds())
	if box.Empty() {
		return
	}

	if c.raster == nil {
		c.raster = vector.NewRasterizer(box.Dx(), box.Dy())
	} else {
		c.raster.Reset(box.Dx(), box.Dy())
	}
	ox, oy := float32(box.Min.X), float32(box.Min.Y)
	c.raster.MoveTo(quad[0][0]-ox, quad[0][1]-oy)
	for _, p := range quad[1:] {
		c.raster.LineTo(p[0]-ox, p[1]-oy)
	}
	c.raster.ClosePath()
	c.raster.Draw(c.page, box, image.NewUniform(s.Color), image.Point{})
}

func (c *rasterCanvas) DrawImage(path string, r layout.Rect) error {
	if c.page == nil {
		return errors.New("draw image outside a page")
	}
	src, err := c.images.LoadImage(path)
	if err != nil {
		return err
	}
	x0, y0 := c.px(r.X, r.Y+r.Height)
	x1, y1 := c.px(r.X+r.Width, r.Y)
	dst := image.Rect(round(x0), round(y0), round(x1), round(y1))
	c.images.DrawScaled(c.page, dst, src)
	return nil
}

func (c *rasterCanvas) DrawLabel(x, y float64, text string) {
	if c.page == nil {
		return
	}
	d := &font.Drawer{
		Dst:  c.page,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	px, py := c.px(x, y)
	w := d.MeasureString(text)
	d.Dot = fixed.Point26_6{
		X: fixed.I(round(px)) - w/2,
		Y: fixed.I(round(py)),
	}
	d.DrawString(text)
}

func (c *rasterCanvas) EndPage() {
	if c.page != nil {
		c.pages = append(c.pages, c.page)
		c.page = nil
	}
}

func (c *rasterCanvas) Save(path string) error {
	if len(c.pages) == 0 {
		return errors.New("no pages to save")
	}

	width, height := 0, 0
	for _, p := range c.pages {
		width = max(width, p.Bounds().Dx())
		height += p.Bounds().Dy()
	}

	sheet := image.NewRGBA(image.Rect(0, 0, width, height))
	offset := 0
	for _, p := range c.pages {
		r := image.Rect(0, offset, p.Bounds().Dx(), offset+p.Bounds().Dy())
		draw.Draw(sheet, r, p, image.Point{}, draw.Src)
		offset += p.Bounds().Dy()
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, sheet); err != nil {
		return err
	}
	return ioutils.WriteFileAtomic(context.Background(), path, buf.Bytes())
}

func round(v float32) int {
	return int(math.Round(float64(v)))
}
