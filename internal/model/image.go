package model

import (
	"path/filepath"
	"strings"

	ioutils "github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/io"
)

// CardImage represents one image asset referenced by an order.
//
// A CardImage contains:
//   - SourceID identifying the asset in the blob store
//   - Slots listing every physical position the image fills
//   - Name, the local file name, resolved lazily from remote metadata
//   - Path, the local file location once bound
//
// Images are created while parsing an order and are owned by the face that
// holds them. During materialisation exactly one goroutine writes Name,
// Path and the downloaded flag. The render phase only reads them after the
// writer has finished.
//
// Example:
//
//	img := NewCardImage("1a2b3c", NewSlotSet(0, 1, 2))
//	img.ResolveName("Island.png")    // img.Name = "Island1a2b3c.png"
//	img.GenerateFilePath("/cache")   // img.Path = "/cache/Island1a2b3c.png"
type CardImage struct {
	// SourceID is the opaque identifier of the remote asset.
	// Empty means the image is unassigned and cannot be fetched.
	SourceID string

	// Slots are the 0-based physical positions this image fills.
	Slots SlotSet

	// Name is the local file name. Empty until resolved.
	Name string

	// Path is the local file location. Empty until bound.
	Path string

	downloaded bool
}

// ImageRecord is the raw card entry read from an order document.
// Empty fields mean the element was absent.
type ImageRecord struct {
	ID    string
	Slots string
}

// NewCardImage creates an unnamed image for sourceID covering slots.
func NewCardImage(sourceID string, slots SlotSet) *CardImage {
	if slots == nil {
		slots = make(SlotSet)
	}
	return &CardImage{
		SourceID: sourceID,
		Slots:    slots,
	}
}

// NewCardImageFromRecord builds a CardImage from an order record.
//
// The id text has surrounding spaces and quote characters stripped. The
// slots text is parsed with ParseSlots; absent slots give an empty set.
// An image with an empty SourceID is returned as-is and callers are
// expected to drop it.
func NewCardImageFromRecord(rec ImageRecord) (*CardImage, error) {
	slots, err := ParseSlots(rec.Slots)
	if err != nil {
		return nil, err
	}
	return NewCardImage(StripSourceID(rec.ID), slots), nil
}

// StripSourceID removes surrounding spaces and double quotes from an id.
func StripSourceID(id string) string {
	return strings.Trim(id, ` "`)
}

// ResolveName sets Name from the remote file name if it is not set yet.
//
// The source id is inserted before the extension so that two assets with
// the same display name never share a file: "Island.png" for id "abc"
// becomes "Islandabc.png". An empty remote name falls back to
// "<SourceID>.png".
func (c *CardImage) ResolveName(remoteName string) {
	if c.Name != "" {
		return
	}

	remoteName = ioutils.SanitizeFileName(remoteName)
	if remoteName == "" {
		c.Name = ioutils.SanitizeFileName(c.SourceID) + ".png"
		return
	}

	ext := filepath.Ext(remoteName)
	stem := strings.TrimSuffix(remoteName, ext)
	c.Name = stem + ioutils.SanitizeFileName(c.SourceID) + ext
}

// GenerateFilePath binds Path inside baseDir if it is not bound yet and
// returns it. A missing Name falls back to "<SourceID>.png".
func (c *CardImage) GenerateFilePath(baseDir string) string {
	if c.Path == "" {
		if c.Name == "" {
			c.ResolveName("")
		}
		c.Path = filepath.Join(baseDir, c.Name)
	}
	return c.Path
}

// FileExists reports whether Path is bound and present on disk.
func (c *CardImage) FileExists() bool {
	return ioutils.FileExists(c.Path)
}

// MarkDownloaded records that the blob store reported a completed fetch.
func (c *CardImage) MarkDownloaded() {
	c.downloaded = true
}

// Available reports whether the image bytes can be read at render time.
func (c *CardImage) Available() bool {
	return c.FileExists()
}

// Downloaded reports whether MarkDownloaded was called.
func (c *CardImage) Downloaded() bool {
	return c.downloaded
}
