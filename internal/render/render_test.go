package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/layout"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/model"
)

type drawCall struct {
	kind  string
	path  string
	rect  layout.Rect
	line  layout.Line
	style Stroke
	text  string
}

type recordingCanvas struct {
	calls   []drawCall
	failFor string
	saved   string
}

func (c *recordingCanvas) BeginPage(layout.Size) { c.calls = append(c.calls, drawCall{kind: "begin"}) }
func (c *recordingCanvas) EndPage()              { c.calls = append(c.calls, drawCall{kind: "end"}) }

func (c *recordingCanvas) DrawLine(l layout.Line, s Stroke) {
	c.calls = append(c.calls, drawCall{kind: "line", line: l, style: s})
}

func (c *recordingCanvas) DrawImage(path string, r layout.Rect) error {
	if path == c.failFor {
		return errors.New("boom")
	}
	c.calls = append(c.calls, drawCall{kind: "image", path: path, rect: r})
	return nil
}

func (c *recordingCanvas) DrawLabel(x, y float64, text string) {
	c.calls = append(c.calls, drawCall{kind: "label", text: text})
}

func (c *recordingCanvas) Save(path string) error {
	c.saved = path
	return os.WriteFile(path, []byte("ok"), 0644)
}

func (c *recordingCanvas) count(kind string) int {
	n := 0
	for _, call := range c.calls {
		if call.kind == kind {
			n++
		}
	}
	return n
}

type recordingTarget struct {
	canvases []*recordingCanvas
	failFor  string
}

func (t *recordingTarget) NewCanvas() Canvas {
	c := &recordingCanvas{failFor: t.failFor}
	t.canvases = append(t.canvases, c)
	return c
}

func (t *recordingTarget) Extension() string { return ".rec" }

func writePNG(t *testing.T, path string, c color.Color) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 11))
	for x := 0; x < 8; x++ {
		for y := 0; y < 11; y++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

// newCardSet builds a valid set of quantity slots with one front and one
// back image, both written to dir.
func newCardSet(t *testing.T, dir string, quantity int) *model.CardSet {
	t.Helper()
	all := "0-" + strconv.Itoa(quantity-1)

	fronts, err := model.BuildFace([]model.ImageRecord{{ID: "front", Slots: all}}, quantity, model.Front, "")
	require.NoError(t, err)
	backs, err := model.BuildFace(nil, quantity, model.Back, "back")
	require.NoError(t, err)

	set := &model.CardSet{Name: "deck", Quantity: quantity, Fronts: fronts, Backs: backs}
	for _, img := range set.Images() {
		writePNG(t, img.GenerateFilePath(dir), color.RGBA{R: 10, G: 120, B: 200, A: 255})
	}
	return set
}

func newGrid(t *testing.T) *layout.Grid {
	t.Helper()
	g, err := layout.NewGrid(layout.DefaultConfig())
	require.NoError(t, err)
	return g
}

func TestAssembler_RenderOrder_DrawCalls(t *testing.T) {
	dir := t.TempDir()
	set := newCardSet(t, dir, 10)
	target := &recordingTarget{}
	grid := newGrid(t)

	report, err := NewAssembler(grid, target).RenderOrder(context.Background(), set, filepath.Join(dir, "out"))
	require.NoError(t, err)

	require.Len(t, target.canvases, 2)
	assert.Equal(t, 2, report.Pages)
	assert.Equal(t, []string{
		filepath.Join(dir, "out", "deck_page_1.rec"),
		filepath.Join(dir, "out", "deck_page_2.rec"),
	}, report.Artifacts)
	assert.Equal(t, 20, report.Placed)
	assert.Zero(t, report.Skipped)
	assert.InDelta(t, 1.0, report.Completeness(), 1e-9)

	first := target.canvases[0]
	assert.Equal(t, 2, first.count("begin"))
	assert.Equal(t, 2, first.count("end"))
	assert.Equal(t, 18, first.count("image"))
	assert.Equal(t, 2*8+18*8, first.count("line"))

	var labels []string
	for _, c := range first.calls {
		if c.kind == "label" {
			labels = append(labels, c.text)
		}
	}
	assert.Equal(t, []string{"deck - Front", "deck - Back"}, labels)

	second := target.canvases[1]
	assert.Equal(t, 2, second.count("image"))

	slot0, _ := grid.Slot(0)
	for _, c := range second.calls {
		if c.kind == "image" {
			assert.Equal(t, slot0, c.rect, "slot 9 is drawn at grid position 0")
		}
	}
}

func TestAssembler_RenderOrder_CutMarksFollowImage(t *testing.T) {
	dir := t.TempDir()
	set := newCardSet(t, dir, 1)
	target := &recordingTarget{}
	grid := newGrid(t)

	_, err := NewAssembler(grid, target).RenderOrder(context.Background(), set, dir)
	require.NoError(t, err)

	calls := target.canvases[0].calls
	for i, c := range calls {
		if c.kind != "image" {
			continue
		}
		marks := grid.CutMarks(c.rect)
		require.GreaterOrEqual(t, len(calls), i+1+len(marks))
		for j, m := range marks {
			assert.Equal(t, m, calls[i+1+j].line)
			assert.Equal(t, CutStroke, calls[i+1+j].style)
		}
	}
}

func TestAssembler_RenderOrder_SkipsUnavailableImages(t *testing.T) {
	dir := t.TempDir()
	set := newCardSet(t, dir, 3)

	back, _ := set.Backs.Get("back")
	require.NoError(t, os.Remove(back.Path))

	target := &recordingTarget{}
	report, err := NewAssembler(newGrid(t), target).RenderOrder(context.Background(), set, dir)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Placed)
	assert.Equal(t, 3, report.Skipped)
	assert.InDelta(t, 0.5, report.Completeness(), 1e-9)
	assert.Len(t, report.Artifacts, 1)
}

func TestAssembler_RenderOrder_DrawFailureIsSkipped(t *testing.T) {
	dir := t.TempDir()
	set := newCardSet(t, dir, 2)
	front, _ := set.Fronts.Get("front")

	target := &recordingTarget{failFor: front.Path}
	report, err := NewAssembler(newGrid(t), target).RenderOrder(context.Background(), set, dir)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Placed)
	assert.Equal(t, 2, report.Skipped)
}

func TestAssembler_RenderOrder_RejectsInvalidSet(t *testing.T) {
	fronts, _ := model.BuildFace([]model.ImageRecord{{ID: "a", Slots: "0"}}, 2, model.Front, "")
	backs, _ := model.BuildFace(nil, 2, model.Back, "cb")
	set := &model.CardSet{Name: "bad", Quantity: 2, Fronts: fronts, Backs: backs}

	target := &recordingTarget{}
	out := filepath.Join(t.TempDir(), "out")
	_, err := NewAssembler(newGrid(t), target).RenderOrder(context.Background(), set, out)

	assert.ErrorIs(t, err, model.ErrFaceValidation)
	assert.Empty(t, target.canvases)
	assert.NoDirExists(t, out)
}

func TestAssembler_RenderOrder_ZeroQuantity(t *testing.T) {
	set := &model.CardSet{Name: "empty", Fronts: model.NewCardSetFace(0, model.Front), Backs: model.NewCardSetFace(0, model.Back)}

	report, err := NewAssembler(newGrid(t), &recordingTarget{}).RenderOrder(context.Background(), set, t.TempDir())
	require.NoError(t, err)
	assert.Zero(t, report.Pages)
	assert.Empty(t, report.Artifacts)
}

func TestAssembler_RenderOrder_Cancelled(t *testing.T) {
	dir := t.TempDir()
	set := newCardSet(t, dir, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAssembler(newGrid(t), &recordingTarget{}).RenderOrder(ctx, set, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAssembler_RenderOrder_PDF(t *testing.T) {
	dir := t.TempDir()
	set := newCardSet(t, dir, 10)

	report, err := NewAssembler(newGrid(t), NewPDFTarget()).RenderOrder(context.Background(), set, filepath.Join(dir, "out"))
	require.NoError(t, err)
	require.Len(t, report.Artifacts, 2)
	assert.Equal(t, 20, report.Placed)

	for _, path := range report.Artifacts {
		assert.Equal(t, ".pdf", filepath.Ext(path))
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	}
}

func TestAssembler_RenderOrder_PNG(t *testing.T) {
	dir := t.TempDir()
	set := newCardSet(t, dir, 4)

	report, err := NewAssembler(newGrid(t), NewRasterTarget(36)).RenderOrder(context.Background(), set, dir)
	require.NoError(t, err)
	require.Len(t, report.Artifacts, 1)

	f, err := os.Open(report.Artifacts[0])
	require.NoError(t, err)
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 298, cfg.Width)
	assert.Equal(t, 2*421, cfg.Height, "front and back are stacked")
}

func TestPDFTarget_ConvertsUnsupportedFormats(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "card.gif")

	// 1x1 GIF
	gif := []byte{
		0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
		0xff, 0xff, 0xff, 0x00, 0x00, 0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00,
		0x01, 0x00, 0x00, 0x02, 0x02, 0x44, 0x01, 0x00, 0x3b,
	}
	require.NoError(t, os.WriteFile(path, gif, 0644))

	canvas := NewPDFTarget().NewCanvas()
	canvas.BeginPage(layout.A4)
	require.NoError(t, canvas.DrawImage(path, layout.Rect{X: 10, Y: 10, Width: 50, Height: 70}))
	require.NoError(t, canvas.DrawImage(path, layout.Rect{X: 80, Y: 10, Width: 50, Height: 70}))
	assert.Error(t, canvas.DrawImage(filepath.Join(dir, "missing.png"), layout.Rect{Width: 1, Height: 1}))
	canvas.EndPage()

	out := filepath.Join(dir, "out.pdf")
	require.NoError(t, canvas.Save(out))
	assert.FileExists(t, out)
}

func TestRasterTarget_DrawLine(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	isRed := func(c color.RGBA) bool { return c.R >= 250 && c.G <= 5 && c.B <= 5 }
	isWhite := func(c color.RGBA) bool { return c.R >= 250 && c.G >= 250 && c.B >= 250 }

	canvas := NewRasterTarget(72).NewCanvas().(*rasterCanvas)
	canvas.BeginPage(layout.Size{Width: 100, Height: 100})

	canvas.DrawLine(layout.Line{X1: 10, Y1: 50, X2: 90, Y2: 50}, Stroke{Color: red, Width: 2})
	canvas.DrawLine(layout.Line{X1: 0, Y1: 0, X2: 100, Y2: 100}, Stroke{Color: red, Width: 6})
	// off the page and zero length
	canvas.DrawLine(layout.Line{X1: 200, Y1: 200, X2: 300, Y2: 200}, Stroke{Color: red, Width: 2})
	canvas.DrawLine(layout.Line{X1: 5, Y1: 5, X2: 5, Y2: 5}, Stroke{Color: red, Width: 2})

	page := canvas.page
	assert.True(t, isRed(page.RGBAAt(50, 50)), "on both lines")
	assert.True(t, isRed(page.RGBAAt(20, 50)), "horizontal line")
	assert.True(t, isRed(page.RGBAAt(75, 24)), "diagonal line")
	assert.True(t, isWhite(page.RGBAAt(5, 50)), "left of the horizontal line")
	assert.True(t, isWhite(page.RGBAAt(50, 10)), "away from both lines")
	assert.True(t, isWhite(page.RGBAAt(90, 30)), "beside the diagonal")
	assert.True(t, isWhite(page.RGBAAt(95, 95)), "corner")
}

func TestPDFTarget_LabelsUseCoreFontEncoding(t *testing.T) {
	canvas := NewPDFTarget().NewCanvas().(*pdfCanvas)
	canvas.pdf.SetCompression(false)

	canvas.BeginPage(layout.A4)
	canvas.DrawLabel(100, 20, "Ærø €")
	canvas.EndPage()

	out := filepath.Join(t.TempDir(), "label.pdf")
	require.NoError(t, canvas.Save(out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(data, []byte("(\xc6r\xf8 \x80)")), "cp1252 bytes in the content stream")
	assert.False(t, bytes.Contains(data, []byte("\xc3\x86r")), "no raw UTF-8")
}

func TestAssembler_RenderCalibration(t *testing.T) {
	target := &recordingTarget{}
	path := filepath.Join(t.TempDir(), "sheets", "calibration.rec")

	require.NoError(t, NewAssembler(newGrid(t), target).RenderCalibration(path))
	require.Len(t, target.canvases, 1)

	c := target.canvases[0]
	assert.Equal(t, path, c.saved)
	assert.Zero(t, c.count("image"))
	assert.Equal(t, 8+9*4+9*8, c.count("line"))
}

func TestNewTarget(t *testing.T) {
	pdf, err := NewTarget("PDF", 0)
	require.NoError(t, err)
	assert.Equal(t, ".pdf", pdf.Extension())

	raster, err := NewTarget("png", 0)
	require.NoError(t, err)
	assert.Equal(t, ".png", raster.Extension())

	_, err = NewTarget("svg", 0)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
