package layout

// Rect is an axis-aligned rectangle. X and Y are the bottom-left corner in
// points, with the origin at the bottom-left of the page.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// Line is a straight segment between two points.
type Line struct {
	X1, Y1 float64
	X2, Y2 float64
}

// Grid computes card placement for one page.
//
// A Grid is immutable and safe for concurrent use. Every method is a pure
// function of the Config it was built from.
type Grid struct {
	cfg Config

	cardW, cardH float64
	spX, spY     float64
	bleed        float64
}

// NewGrid validates cfg and returns its grid.
func NewGrid(cfg Config) (*Grid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Grid{
		cfg:   cfg,
		cardW: (cfg.CardWidthMM + cfg.BleedMM) * cfg.MMToPt,
		cardH: (cfg.CardHeightMM + cfg.BleedMM) * cfg.MMToPt,
		spX:   cfg.SpacingXMM * cfg.MMToPt,
		spY:   cfg.SpacingYMM * cfg.MMToPt,
		bleed: cfg.BleedMM * cfg.MMToPt,
	}, nil
}

// Config returns the configuration the grid was built from.
func (g *Grid) Config() Config { return g.cfg }

// Page returns the page size.
func (g *Grid) Page() Size { return g.cfg.Page }

// Capacity returns the number of slots per page.
func (g *Grid) Capacity() int { return g.cfg.Columns * g.cfg.Rows }

// CardSize returns the printed card size including bleed.
func (g *Grid) CardSize() (w, h float64) { return g.cardW, g.cardH }

// Slot returns the rectangle of the card at page index i, filling rows
// left to right from the top. ok is false outside [0, Capacity).
func (g *Grid) Slot(i int) (r Rect, ok bool) {
	if i < 0 || i >= g.Capacity() {
		return Rect{}, false
	}
	col := i % g.cfg.Columns
	row := i / g.cfg.Columns

	x := g.cfg.MarginX + float64(col)*(g.cardW+g.spX) + g.spX/2
	y := g.cfg.Page.Height - g.cfg.MarginY - float64(row+1)*(g.cardH+g.spY) + g.spY/2

	return Rect{X: x, Y: y, Width: g.cardW, Height: g.cardH}, true
}

// Slots returns the rectangles of every slot in index order.
func (g *Grid) Slots() []Rect {
	out := make([]Rect, g.Capacity())
	for i := range out {
		out[i], _ = g.Slot(i)
	}
	return out
}

// GridLines returns the guide lines drawn under the cards: Columns+1
// vertical lines followed by Rows+1 horizontal lines.
func (g *Grid) GridLines() []Line {
	w, h := g.cfg.Page.Width, g.cfg.Page.Height
	mx, my := g.cfg.MarginX, g.cfg.MarginY

	lines := make([]Line, 0, g.cfg.Columns+g.cfg.Rows+2)
	for i := 0; i <= g.cfg.Columns; i++ {
		x := mx + float64(i)*(g.cardW+g.spX)
		lines = append(lines, Line{X1: x, Y1: my, X2: x, Y2: h - my})
	}
	for i := 0; i <= g.cfg.Rows; i++ {
		y := h - my - float64(i)*(g.cardH+g.spY)
		lines = append(lines, Line{X1: mx, Y1: y, X2: w - mx, Y2: y})
	}
	return lines
}

// TrimBox returns the cut rectangle for a card placed at r: r inset by two
// bleed widths on every side.
func (g *Grid) TrimBox(r Rect) Rect {
	inset := 2 * g.bleed
	return Rect{
		X:      r.X + inset,
		Y:      r.Y + inset,
		Width:  r.Width - 2*inset,
		Height: r.Height - 2*inset,
	}
}

// CutMarks returns the crosses marking where a card placed at r is cut.
// There is one cross per trim box corner, in the order top-left, top-right,
// bottom-left, bottom-right, each as a vertical then a horizontal line.
func (g *Grid) CutMarks(r Rect) []Line {
	t := g.TrimBox(r)
	left, right := t.X, t.X+t.Width
	bottom, top := t.Y, t.Y+t.Height

	corners := [4][2]float64{
		{left, top},
		{right, top},
		{left, bottom},
		{right, bottom},
	}

	s := g.cfg.CutMarkSize
	marks := make([]Line, 0, 8)
	for _, c := range corners {
		x, y := c[0], c[1]
		marks = append(marks,
			Line{X1: x, Y1: y - s, X2: x, Y2: y + s},
			Line{X1: x - s, Y1: y, X2: x + s, Y2: y},
		)
	}
	return marks
}

// TitleAnchor returns the centre point of the page caption.
func (g *Grid) TitleAnchor() (x, y float64) {
	return g.cfg.Page.Width / 2, g.cfg.Page.Height - g.cfg.MarginX
}
