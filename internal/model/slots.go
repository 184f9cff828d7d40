package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MaxSlots bounds slot numbers and order quantities. A slot expression
// naming a slot at or above it is malformed.
const MaxSlots = 1 << 16

// SlotSet is a set of 0-based physical card slots.
type SlotSet map[int]struct{}

// NewSlotSet returns a set holding the given slots.
func NewSlotSet(slots ...int) SlotSet {
	s := make(SlotSet, len(slots))
	for _, slot := range slots {
		s[slot] = struct{}{}
	}
	return s
}

// SlotRange returns the set {0 .. n-1}. It is empty for n <= 0.
func SlotRange(n int) SlotSet {
	s := make(SlotSet, max(n, 0))
	for i := 0; i < n; i++ {
		s[i] = struct{}{}
	}
	return s
}

// Add inserts slot into the set.
func (s SlotSet) Add(slot int) {
	s[slot] = struct{}{}
}

// Has reports whether slot is in the set.
func (s SlotSet) Has(slot int) bool {
	_, ok := s[slot]
	return ok
}

// Len returns the number of slots.
func (s SlotSet) Len() int {
	return len(s)
}

// Union adds every slot of other to s.
func (s SlotSet) Union(other SlotSet) {
	for slot := range other {
		s[slot] = struct{}{}
	}
}

// Difference returns the slots of s that are not in other.
func (s SlotSet) Difference(other SlotSet) SlotSet {
	out := make(SlotSet)
	for slot := range s {
		if !other.Has(slot) {
			out[slot] = struct{}{}
		}
	}
	return out
}

// Sorted returns the slots in ascending order.
func (s SlotSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for slot := range s {
		out = append(out, slot)
	}
	sort.Ints(out)
	return out
}

// Clone returns an independent copy of s.
func (s SlotSet) Clone() SlotSet {
	out := make(SlotSet, len(s))
	out.Union(s)
	return out
}

// ParseSlots converts a slot expression like "1,2,3-5" into a SlotSet.
//
// Tokens are separated by commas and are either a single non-negative
// integer or an inclusive range "a-b" with a <= b. Slots must be below
// MaxSlots. Whitespace around tokens is ignored and duplicates collapse. An empty expression yields an empty
// set.
//
// Example:
//
//	slots, err := ParseSlots("1,3-5,7")
//	// slots.Sorted() == []int{1, 3, 4, 5, 7}
func ParseSlots(expr string) (SlotSet, error) {
	slots := make(SlotSet)
	if strings.TrimSpace(expr) == "" {
		return slots, nil
	}

	for _, token := range strings.Split(expr, ",") {
		token = strings.TrimSpace(token)

		lo, hi, isRange := strings.Cut(token, "-")
		if !isRange {
			n, err := parseSlot(token)
			if err != nil {
				return nil, err
			}
			slots.Add(n)
			continue
		}

		start, err := parseSlot(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("%w: range %q", ErrMalformedSlotExpression, token)
		}
		end, err := parseSlot(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("%w: range %q", ErrMalformedSlotExpression, token)
		}
		if start > end {
			return nil, fmt.Errorf("%w: descending range %q", ErrMalformedSlotExpression, token)
		}
		for n := start; n <= end; n++ {
			slots.Add(n)
		}
	}

	return slots, nil
}

func parseSlot(token string) (int, error) {
	if token == "" || strings.TrimLeft(token, "0123456789") != "" {
		return 0, fmt.Errorf("%w: token %q", ErrMalformedSlotExpression, token)
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("%w: token %q", ErrMalformedSlotExpression, token)
	}
	if n >= MaxSlots {
		return 0, fmt.Errorf("%w: slot %d beyond limit %d", ErrMalformedSlotExpression, n, MaxSlots-1)
	}
	return n, nil
}
