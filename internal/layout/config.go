package layout

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is returned by NewGrid for geometry that cannot be laid out.
var ErrInvalidConfig = errors.New("invalid layout config")

// MMToPt converts millimetres to PDF points.
const MMToPt = 2.8346

// Size is a page size in points.
type Size struct {
	Width  float64
	Height float64
}

// Standard page sizes in points.
var (
	A4     = Size{Width: 595.28, Height: 841.89}
	Letter = Size{Width: 612, Height: 792}
)

// PageSize looks up a page size by name ("a4" or "letter").
func PageSize(name string) (Size, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "a4":
		return A4, true
	case "letter":
		return Letter, true
	default:
		return Size{}, false
	}
}

// Config describes the page grid. Card sizes, bleed and spacing are in
// millimetres; margins, page size and cut marks are in points.
type Config struct {
	CardWidthMM  float64
	CardHeightMM float64
	BleedMM      float64

	MarginX    float64
	MarginY    float64
	SpacingXMM float64
	SpacingYMM float64

	MMToPt float64
	Page   Size

	Columns int
	Rows    int

	CutMarkSize float64
}

// DefaultConfig returns the standard 63x88 mm card layout on A4.
func DefaultConfig() Config {
	return Config{
		CardWidthMM:  63,
		CardHeightMM: 88,
		BleedMM:      1,
		MarginX:      13,
		MarginY:      30,
		SpacingXMM:   3,
		SpacingYMM:   3,
		MMToPt:       MMToPt,
		Page:         A4,
		Columns:      3,
		Rows:         3,
		CutMarkSize:  5,
	}
}

// Validate reports the first unusable field.
func (c Config) Validate() error {
	switch {
	case c.CardWidthMM <= 0 || c.CardHeightMM <= 0:
		return fmt.Errorf("%w: card size %gx%g mm", ErrInvalidConfig, c.CardWidthMM, c.CardHeightMM)
	case c.BleedMM < 0:
		return fmt.Errorf("%w: negative bleed", ErrInvalidConfig)
	case c.SpacingXMM < 0 || c.SpacingYMM < 0:
		return fmt.Errorf("%w: negative spacing", ErrInvalidConfig)
	case c.MarginX < 0 || c.MarginY < 0:
		return fmt.Errorf("%w: negative margin", ErrInvalidConfig)
	case c.MMToPt <= 0:
		return fmt.Errorf("%w: mm to pt factor %g", ErrInvalidConfig, c.MMToPt)
	case c.Page.Width <= 0 || c.Page.Height <= 0:
		return fmt.Errorf("%w: page size %gx%g pt", ErrInvalidConfig, c.Page.Width, c.Page.Height)
	case c.Columns <= 0 || c.Rows <= 0:
		return fmt.Errorf("%w: grid %dx%d", ErrInvalidConfig, c.Columns, c.Rows)
	case c.CutMarkSize < 0:
		return fmt.Errorf("%w: negative cut mark size", ErrInvalidConfig)
	}
	return nil
}
