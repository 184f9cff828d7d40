package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformedSlotExpression is returned when a slot token is neither an
	// integer nor an ascending "a-b" range.
	ErrMalformedSlotExpression = errors.New("malformed slot expression")

	// ErrOrderParse matches every *OrderParseError.
	ErrOrderParse = errors.New("order parse error")

	// ErrFaceValidation matches every *FaceValidationError.
	ErrFaceValidation = errors.New("face validation failed")
)

// OrderParseError reports an order document that could not be turned into
// a CardSet. Source is the file path or name the document was read from.
type OrderParseError struct {
	Source string
	Err    error
}

func (e *OrderParseError) Error() string {
	return fmt.Sprintf("parse order %s: %v", e.Source, e.Err)
}

// Unwrap allows errors.Is to reach both the cause and ErrOrderParse.
func (e *OrderParseError) Unwrap() []error {
	return []error{ErrOrderParse, e.Err}
}

// FaceValidationError lists the slots of a face that no image covers.
type FaceValidationError struct {
	Kind    FaceKind
	Missing []int
}

func (e *FaceValidationError) Error() string {
	parts := make([]string, len(e.Missing))
	for i, slot := range e.Missing {
		parts[i] = strconv.Itoa(slot)
	}
	return fmt.Sprintf("%s face: missing slots [%s]", e.Kind, strings.Join(parts, ","))
}

func (e *FaceValidationError) Unwrap() error {
	return ErrFaceValidation
}
