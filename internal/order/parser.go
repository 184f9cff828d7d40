package order

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/logger"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/model"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/order/dto"
)

// Parser turns order documents into CardSets.
//
// The order name always comes from the file name, never from the document.
// Every failure is returned as a *model.OrderParseError.
//
// Example usage:
//
//	parser := NewParser(log)
//
//	set, err := parser.ParseFile("orders/deck.xml")
//	if err != nil {
//	    return err
//	}
//	if err := set.Validate(); err != nil {
//	    return err
//	}
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a Parser. A nil logger disables logging.
func NewParser(log *zap.Logger) *Parser {
	return &Parser{logger: logger.OrNop(log).Named("order")}
}

// ParseFile reads and parses the order at path. The order is named after
// the file stem: "orders/deck.xml" becomes "deck".
func (p *Parser) ParseFile(path string) (*model.CardSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.OrderParseError{Source: path, Err: err}
	}
	defer f.Close()

	return p.parse(path, Name(path), f)
}

// Parse reads an order document from r. name is used as the order name and
// as the error source.
func (p *Parser) Parse(name string, r io.Reader) (*model.CardSet, error) {
	return p.parse(name, name, r)
}

func (p *Parser) parse(source, name string, r io.Reader) (*model.CardSet, error) {
	var doc dto.XMLOrder
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &model.OrderParseError{Source: source, Err: fmt.Errorf("decode xml: %w", err)}
	}

	set, err := doc.ToCardSet(name)
	if err != nil {
		return nil, &model.OrderParseError{Source: source, Err: err}
	}

	p.logger.Debug("order parsed",
		zap.String("order", set.Name),
		zap.Int("quantity", set.Quantity),
		zap.Int("fronts", set.Fronts.Len()),
		zap.Int("backs", set.Backs.Len()),
	)

	return set, nil
}

// Name returns the order name for path: its base name without extension.
func Name(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
