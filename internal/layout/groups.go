package layout

// PageGroup is the run of slots printed on one sheet.
type PageGroup struct {
	// Index is the 0-based page number.
	Index int

	// Slots are the order slots on this page, ascending. Slots[i] is drawn
	// at grid position i.
	Slots []int
}

// PageGroups splits slots 0..quantity-1 into pages of capacity.
//
// Group k holds [k*capacity, min((k+1)*capacity, quantity)). Only the last
// group may be short. A non-positive quantity or capacity gives nil.
func PageGroups(quantity, capacity int) []PageGroup {
	if quantity <= 0 || capacity <= 0 {
		return nil
	}

	groups := make([]PageGroup, 0, (quantity+capacity-1)/capacity)
	for start := 0; start < quantity; start += capacity {
		end := min(start+capacity, quantity)
		slots := make([]int, 0, end-start)
		for s := start; s < end; s++ {
			slots = append(slots, s)
		}
		groups = append(groups, PageGroup{Index: len(groups), Slots: slots})
	}
	return groups
}
