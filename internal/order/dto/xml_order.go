// Package dto holds the XML shapes of an order document.
package dto

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/model"
)

// XMLOrder is the root element of an order document. The root element name
// is not checked.
type XMLOrder struct {
	XMLName  xml.Name
	Details  *XMLDetails `xml:"details"`
	Fronts   *XMLFace    `xml:"fronts"`
	Backs    *XMLFace    `xml:"backs"`
	Cardback string      `xml:"cardback"`
}

// XMLDetails contains order metadata. Only Quantity drives layout; the
// other fields are reported by the validate command.
type XMLDetails struct {
	Quantity string `xml:"quantity"`
	Bracket  string `xml:"bracket"`
	Stock    string `xml:"stock"`
	Foil     string `xml:"foil"`
}

// XMLFace lists the cards of one side. Cards may use any element name.
type XMLFace struct {
	Cards []XMLCard `xml:",any"`
}

// XMLCard is a single card entry.
type XMLCard struct {
	XMLName xml.Name
	ID      string `xml:"id"`
	Slots   string `xml:"slots"`
	Name    string `xml:"name"`
	Query   string `xml:"query"`
}

// Quantity returns the number of slots in the order. A missing, unparsable
// or negative quantity is 0.
func (o *XMLOrder) Quantity() int {
	if o.Details == nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(o.Details.Quantity))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Records converts the cards of a face into image records. A nil face has
// no records.
func (f *XMLFace) Records() []model.ImageRecord {
	if f == nil {
		return nil
	}
	records := make([]model.ImageRecord, 0, len(f.Cards))
	for _, c := range f.Cards {
		records = append(records, c.ToRecord())
	}
	return records
}

// ToRecord converts the card into an image record.
func (c XMLCard) ToRecord() model.ImageRecord {
	return model.ImageRecord{ID: c.ID, Slots: c.Slots}
}

// ToCardSet resolves the document into a CardSet called name.
//
// Fronts have no fallback image; backs fall back to the cardback element.
// The returned set is not validated.
func (o *XMLOrder) ToCardSet(name string) (*model.CardSet, error) {
	quantity := o.Quantity()
	if quantity > model.MaxSlots {
		return nil, fmt.Errorf("quantity %d exceeds the limit of %d cards", quantity, model.MaxSlots)
	}

	fronts, err := model.BuildFace(o.Fronts.Records(), quantity, model.Front, "")
	if err != nil {
		return nil, err
	}
	backs, err := model.BuildFace(o.Backs.Records(), quantity, model.Back, o.Cardback)
	if err != nil {
		return nil, err
	}

	return &model.CardSet{
		Name:     name,
		Quantity: quantity,
		Fronts:   fronts,
		Backs:    backs,
	}, nil
}
