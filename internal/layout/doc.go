// Package layout computes where cards go on a printed sheet.
//
// A page holds a Columns x Rows grid of cards (3x3 by default). Slots of an
// order are split into pages with PageGroups, and a Grid maps the position
// of a slot within its page to a rectangle in points.
//
// All coordinates use PDF conventions: points, with the origin at the
// bottom-left corner of the page.
//
//	grid, err := layout.NewGrid(layout.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	for _, group := range layout.PageGroups(quantity, grid.Capacity()) {
//	    for i, slot := range group.Slots {
//	        r, _ := grid.Slot(i)
//	        // draw slot's image in r, then grid.CutMarks(r)
//	    }
//	}
package layout
