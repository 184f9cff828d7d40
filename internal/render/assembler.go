package render

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/layout"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/logger"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/model"
	ioutils "github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/io"
)

// Report summarises one rendered order.
type Report struct {
	Order     string
	Pages     int
	Artifacts []string

	// Placed counts images drawn; Skipped counts slots left blank because
	// the image was missing, not downloaded, or failed to draw.
	Placed  int
	Skipped int
}

// Completeness returns the share of placements that succeeded, in [0, 1].
// An order without placements is complete.
func (r *Report) Completeness() float64 {
	total := r.Placed + r.Skipped
	if total == 0 {
		return 1
	}
	return float64(r.Placed) / float64(total)
}

// Assembler draws validated orders onto canvases.
//
// For every page group it opens one canvas and draws the front page and
// then the back page. Each page gets the grid lines, a caption when the
// canvas supports text, and for every slot the image followed by its cut
// marks. Slots whose image is unavailable are left empty and counted.
//
// Example usage:
//
//	grid, _ := layout.NewGrid(layout.DefaultConfig())
//	asm := NewAssembler(grid, NewPDFTarget(), WithLogger(log))
//
//	report, err := asm.RenderOrder(ctx, set, "out")
//	// out/deck_page_1.pdf, out/deck_page_2.pdf, ...
type Assembler struct {
	grid   *layout.Grid
	target Target
	logger *zap.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Assembler) {
		a.logger = l
	}
}

// NewAssembler creates an Assembler drawing on grid into target.
func NewAssembler(grid *layout.Grid, target Target, opts ...Option) *Assembler {
	a := &Assembler{grid: grid, target: target}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logger.OrNop(a.logger).Named("render")
	return a
}

// Target returns the output target.
func (a *Assembler) Target() Target { return a.target }

// Grid returns the page grid.
func (a *Assembler) Grid() *layout.Grid { return a.grid }

// ArtifactPath returns the file written for page group index of the order.
func (a *Assembler) ArtifactPath(outDir, order string, index int) string {
	return filepath.Join(outDir, fmt.Sprintf("%s_page_%d%s", order, index+1, a.target.Extension()))
}

// RenderOrder writes one artifact per page group of set into outDir.
//
// The set is validated first and an invalid set is rejected without
// writing anything. A failure to save an artifact stops rendering and
// returns the partial report.
func (a *Assembler) RenderOrder(ctx context.Context, set *model.CardSet, outDir string) (*Report, error) {
	if set == nil {
		return nil, errors.New("render: nil card set")
	}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("render %s: %w", set.Name, err)
	}
	if err := ioutils.EnsureDir(outDir); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	groups := layout.PageGroups(set.Quantity, a.grid.Capacity())
	report := &Report{Order: set.Name}

	a.logger.Info("rendering order",
		zap.String("order", set.Name),
		zap.Int("quantity", set.Quantity),
		zap.Int("pages", len(groups)),
	)

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		canvas := a.target.NewCanvas()
		for _, kind := range model.FaceKinds {
			a.drawFace(canvas, set, group, kind, report)
		}

		path := a.ArtifactPath(outDir, set.Name, group.Index)
		if err := canvas.Save(path); err != nil {
			return report, fmt.Errorf("save %s: %w", path, err)
		}
		report.Pages++
		report.Artifacts = append(report.Artifacts, path)

		a.logger.Info("page saved", zap.String("order", set.Name), zap.String("path", path))
	}

	return report, nil
}

func (a *Assembler) drawFace(canvas Canvas, set *model.CardSet, group layout.PageGroup, kind model.FaceKind, report *Report) {
	canvas.BeginPage(a.grid.Page())
	defer canvas.EndPage()

	a.drawGrid(canvas)
	a.drawCaption(canvas, fmt.Sprintf("%s - %s", set.Name, faceTitle(kind)))

	for i, slot := range group.Slots {
		rect, ok := a.grid.Slot(i)
		if !ok {
			report.Skipped++
			continue
		}

		img := set.FindImageForSlot(slot, kind)
		if img == nil || !img.Available() {
			report.Skipped++
			a.logger.Debug("slot skipped, image unavailable",
				zap.String("order", set.Name),
				zap.Stringer("face", kind),
				zap.Int("slot", slot),
			)
			continue
		}

		if err := canvas.DrawImage(img.Path, rect); err != nil {
			report.Skipped++
			a.logger.Warn("failed to place image",
				zap.String("order", set.Name),
				zap.Stringer("face", kind),
				zap.Int("slot", slot),
				zap.String("path", img.Path),
				zap.Error(err),
			)
			continue
		}

		for _, l := range a.grid.CutMarks(rect) {
			canvas.DrawLine(l, CutStroke)
		}
		report.Placed++
	}
}

func (a *Assembler) drawGrid(canvas Canvas) {
	for _, l := range a.grid.GridLines() {
		canvas.DrawLine(l, GridStroke)
	}
}

func (a *Assembler) drawCaption(canvas Canvas, text string) {
	if lb, ok := canvas.(Labeler); ok {
		x, y := a.grid.TitleAnchor()
		lb.DrawLabel(x, y, text)
	}
}

// RenderCalibration writes a single test sheet to path: the grid, an
// outline where every card goes, and the cut marks. Print it to check the
// margins and spacing against a cutting mat before printing an order.
func (a *Assembler) RenderCalibration(path string) error {
	if err := ioutils.EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	canvas := a.target.NewCanvas()
	canvas.BeginPage(a.grid.Page())

	a.drawGrid(canvas)
	a.drawCaption(canvas, "calibration")

	for _, r := range a.grid.Slots() {
		for _, l := range outline(r) {
			canvas.DrawLine(l, GridStroke)
		}
		for _, l := range a.grid.CutMarks(r) {
			canvas.DrawLine(l, CutStroke)
		}
	}

	canvas.EndPage()
	return canvas.Save(path)
}

func outline(r layout.Rect) []layout.Line {
	x1, y1 := r.X+r.Width, r.Y+r.Height
	return []layout.Line{
		{X1: r.X, Y1: r.Y, X2: x1, Y2: r.Y},
		{X1: x1, Y1: r.Y, X2: x1, Y2: y1},
		{X1: x1, Y1: y1, X2: r.X, Y2: y1},
		{X1: r.X, Y1: y1, X2: r.X, Y2: r.Y},
	}
}

func faceTitle(kind model.FaceKind) string {
	if kind == model.Back {
		return "Back"
	}
	return "Front"
}
