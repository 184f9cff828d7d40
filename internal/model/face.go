package model

// FaceKind identifies one side of the cards in an order.
type FaceKind int

const (
	// Front is the printed face of the cards.
	Front FaceKind = iota

	// Back is the reverse side, usually one shared cardback.
	Back
)

// FaceKinds lists the faces in the order they are rendered.
var FaceKinds = []FaceKind{Front, Back}

// String returns "front" or "back".
func (k FaceKind) String() string {
	switch k {
	case Front:
		return "front"
	case Back:
		return "back"
	default:
		return "unknown"
	}
}

// CardSetFace holds every image for one side of an order.
//
// Images are keyed by source id. Adding an image whose source id is
// already present unions the slot sets instead of adding a second entry,
// which keeps the registry at one entry (and one fetch) per asset.
// First-seen order is retained so lookups are deterministic.
type CardSetFace struct {
	// NumSlots is the number of physical slots in the order.
	NumSlots int

	// Kind is the side this face describes.
	Kind FaceKind

	// Default is the synthetic fallback image added for uncovered slots,
	// or nil when no fallback was applied.
	Default *CardImage

	images map[string]*CardImage
	order  []string
}

// NewCardSetFace returns an empty face.
func NewCardSetFace(numSlots int, kind FaceKind) *CardSetFace {
	return &CardSetFace{
		NumSlots: numSlots,
		Kind:     kind,
		images:   make(map[string]*CardImage),
	}
}

// BuildFace resolves the records of one side into a face.
//
// Records with an empty source id are skipped. Records sharing a source id
// merge into one image. When slots remain uncovered and defaultSourceID is
// non-empty after quote stripping, ApplyDefault adds one image covering
// exactly the missing slots. A malformed slot expression fails the build.
//
// BuildFace does not validate; call Validate on the result.
func BuildFace(records []ImageRecord, numSlots int, kind FaceKind, defaultSourceID string) (*CardSetFace, error) {
	face := NewCardSetFace(numSlots, kind)

	for _, rec := range records {
		img, err := NewCardImageFromRecord(rec)
		if err != nil {
			return nil, err
		}
		if img.SourceID == "" {
			continue
		}
		face.Add(img)
	}

	face.ApplyDefault(defaultSourceID)

	return face, nil
}

// Add inserts img into the registry, merging slots on a source id
// collision. Images with an empty source id are ignored.
func (f *CardSetFace) Add(img *CardImage) {
	if img == nil || img.SourceID == "" {
		return
	}
	if existing, ok := f.images[img.SourceID]; ok {
		existing.Slots.Union(img.Slots)
		return
	}
	f.images[img.SourceID] = img
	f.order = append(f.order, img.SourceID)
}

// ApplyDefault fills every missing slot with the image defaultSourceID.
//
// It returns the synthetic image, or nil when nothing is missing, the id is
// empty, or a default was already applied. If the default id matches an
// existing entry the missing slots are merged into it.
func (f *CardSetFace) ApplyDefault(defaultSourceID string) *CardImage {
	if f.Default != nil {
		return nil
	}
	id := StripSourceID(defaultSourceID)
	if id == "" {
		return nil
	}
	missing := f.Missing()
	if missing.Len() == 0 {
		return nil
	}

	f.Default = NewCardImage(id, missing)
	if existing, ok := f.images[id]; ok {
		existing.Slots.Union(missing)
		return f.Default
	}
	f.Add(f.Default)

	return f.Default
}

// Get returns the image for sourceID, if present.
func (f *CardSetFace) Get(sourceID string) (*CardImage, bool) {
	img, ok := f.images[sourceID]
	return img, ok
}

// Images returns the registry in first-seen order.
func (f *CardSetFace) Images() []*CardImage {
	out := make([]*CardImage, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.images[id])
	}
	return out
}

// Len returns the number of distinct images.
func (f *CardSetFace) Len() int {
	return len(f.images)
}

// Coverage returns the union of all image slots.
func (f *CardSetFace) Coverage() SlotSet {
	covered := make(SlotSet)
	for _, img := range f.images {
		covered.Union(img.Slots)
	}
	return covered
}

// Missing returns the slots in [0, NumSlots) that no image covers.
func (f *CardSetFace) Missing() SlotSet {
	return SlotRange(f.NumSlots).Difference(f.Coverage())
}

// Validate returns a *FaceValidationError listing the uncovered slots, or
// nil when every slot has an image.
func (f *CardSetFace) Validate() error {
	missing := f.Missing()
	if missing.Len() == 0 {
		return nil
	}
	return &FaceValidationError{Kind: f.Kind, Missing: missing.Sorted()}
}

// FindImage returns the first image, in first-seen order, covering slot.
func (f *CardSetFace) FindImage(slot int) *CardImage {
	for _, id := range f.order {
		if img := f.images[id]; img.Slots.Has(slot) {
			return img
		}
	}
	return nil
}
