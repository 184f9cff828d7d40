package model

import "errors"

// CardSet is a complete print order: front and back images for Quantity
// physical card slots.
//
// A CardSet must pass Validate before it is laid out. Both faces share the
// same slot count.
type CardSet struct {
	// Name identifies the order. It is taken from the order's file name.
	Name string

	// Quantity is the number of physical cards (slots).
	Quantity int

	// Fronts holds the front images.
	Fronts *CardSetFace

	// Backs holds the back images, including any default cardback.
	Backs *CardSetFace
}

// Face returns the face of the given kind.
func (s *CardSet) Face(kind FaceKind) *CardSetFace {
	if kind == Back {
		return s.Backs
	}
	return s.Fronts
}

// Validate reports every face that leaves slots uncovered. The returned
// error joins one *FaceValidationError per failing face.
func (s *CardSet) Validate() error {
	var errs []error
	for _, kind := range FaceKinds {
		face := s.Face(kind)
		if face == nil {
			errs = append(errs, &FaceValidationError{Kind: kind, Missing: SlotRange(s.Quantity).Sorted()})
			continue
		}
		if err := face.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// FindImageForSlot returns the image placed at slot on the given face, or
// nil when no image covers it.
func (s *CardSet) FindImageForSlot(slot int, kind FaceKind) *CardImage {
	face := s.Face(kind)
	if face == nil {
		return nil
	}
	return face.FindImage(slot)
}

// Images returns every image of both faces, fronts first.
func (s *CardSet) Images() []*CardImage {
	var out []*CardImage
	for _, kind := range FaceKinds {
		if face := s.Face(kind); face != nil {
			out = append(out, face.Images()...)
		}
	}
	return out
}

// SourceIDs returns the distinct source ids used by the order, fronts
// first, in first-seen order.
func (s *CardSet) SourceIDs() []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, img := range s.Images() {
		if _, ok := seen[img.SourceID]; ok {
			continue
		}
		seen[img.SourceID] = struct{}{}
		ids = append(ids, img.SourceID)
	}
	return ids
}

// SlotAssignments maps every slot of a face to the source id placed there.
// Uncovered slots are absent.
func (s *CardSet) SlotAssignments(kind FaceKind) map[int]string {
	out := make(map[int]string, s.Quantity)
	for slot := 0; slot < s.Quantity; slot++ {
		if img := s.FindImageForSlot(slot, kind); img != nil {
			out[slot] = img.SourceID
		}
	}
	return out
}
