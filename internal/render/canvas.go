package render

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/layout"
)

// ErrUnknownFormat is returned by NewTarget for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// Stroke is the pen used for a line.
type Stroke struct {
	Color color.RGBA
	Width float64
}

// Pens used on every page.
var (
	GridStroke = Stroke{Color: color.RGBA{A: 255}, Width: 1}
	CutStroke  = Stroke{Color: color.RGBA{R: 255, G: 255, A: 255}, Width: 1}
)

// Canvas receives the drawing calls for one output artifact. Coordinates
// are points with the origin at the bottom-left of the page.
//
// A Canvas is used by one goroutine at a time.
type Canvas interface {
	// BeginPage starts a new page of the given size.
	BeginPage(size layout.Size)

	// DrawLine strokes a line on the current page.
	DrawLine(l layout.Line, s Stroke)

	// DrawImage places the image file at path so that it fills r.
	DrawImage(path string, r layout.Rect) error

	// EndPage finishes the current page.
	EndPage()

	// Save writes every finished page to path.
	Save(path string) error
}

// Labeler is implemented by canvases that can draw text.
type Labeler interface {
	// DrawLabel draws text horizontally centred on x with its baseline at y.
	DrawLabel(x, y float64, text string)
}

// Target creates canvases of one output format.
type Target interface {
	NewCanvas() Canvas

	// Extension is the artifact file extension, including the dot.
	Extension() string
}

// NewTarget returns the target for format, "pdf" or "png". dpi only
// applies to png.
func NewTarget(format string, dpi float64) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "pdf":
		return NewPDFTarget(), nil
	case "png":
		return NewRasterTarget(dpi), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
