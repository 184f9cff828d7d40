// Package model defines the print-order data structures used throughout
// proxyprint.
//
// # Card Set
//
// CardSet is one print order: a deck name, the number of physical card
// slots, and one CardSetFace for each side of the cards:
//
//	set := &model.CardSet{Name: "deck", Quantity: 10, Fronts: fronts, Backs: backs}
//	if err := set.Validate(); err != nil {
//	    // reject the order before layout
//	}
//	img := set.FindImageForSlot(3, model.Front) // nil when nothing covers slot 3
//
// # Faces
//
// BuildFace resolves the card records of one side into a registry keyed by
// source id. Records sharing a source id collapse into one CardImage whose
// slots are the union of both, so every distinct asset is fetched once:
//
//	records := []model.ImageRecord{{ID: "abc", Slots: "0-3"}, {ID: "abc", Slots: "4"}}
//	face, err := model.BuildFace(records, 6, model.Back, "cardback-id")
//	// face.Images() has "abc" covering {0..4}
//	// face.Default is the synthetic "cardback-id" image covering {5}
//
// # Slot Expressions
//
// ParseSlots reads the compact slot syntax used by order files:
//
//	slots, _ := model.ParseSlots("1,3-5,7") // {1, 3, 4, 5, 7}
package model
