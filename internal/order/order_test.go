package order

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/model"
)

const sampleOrder = `<?xml version="1.0" encoding="UTF-8"?>
<order>
  <details>
    <quantity>10</quantity>
    <bracket>18</bracket>
    <stock>(S30) Standard Smooth</stock>
    <foil>false</foil>
  </details>
  <fronts>
    <card><id>f1</id><slots>0,1,2</slots><name>Island.png</name><query>island</query></card>
    <card><id>"f2"</id><slots>3-9</slots><name>Forest.png</name></card>
    <card><id>f1</id><slots>9</slots></card>
  </fronts>
  <backs>
    <card><id>b1</id><slots>0</slots></card>
  </backs>
  <cardback> "cb" </cardback>
</order>`

func TestParser_Parse(t *testing.T) {
	set, err := NewParser(nil).Parse("deck", strings.NewReader(sampleOrder))
	require.NoError(t, err)

	assert.Equal(t, "deck", set.Name)
	assert.Equal(t, 10, set.Quantity)
	require.NoError(t, set.Validate())

	assert.Equal(t, 2, set.Fronts.Len())
	f1, ok := set.Fronts.Get("f1")
	require.True(t, ok)
	assert.Equal(t, []int{0, 1, 2, 9}, f1.Slots.Sorted())

	require.NotNil(t, set.Backs.Default)
	assert.Equal(t, "cb", set.Backs.Default.SourceID)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, set.Backs.Default.Slots.Sorted())
	assert.Nil(t, set.Fronts.Default)

	assert.Equal(t, "b1", set.FindImageForSlot(0, model.Back).SourceID)
	assert.Equal(t, "cb", set.FindImageForSlot(5, model.Back).SourceID)
	assert.Equal(t, "f1", set.FindImageForSlot(9, model.Front).SourceID)
}

func TestParser_Parse_Quantity(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want int
	}{
		{name: "missing details", doc: `<order/>`, want: 0},
		{name: "missing quantity", doc: `<order><details/></order>`, want: 0},
		{name: "unparsable", doc: `<order><details><quantity>ten</quantity></details></order>`, want: 0},
		{name: "negative", doc: `<order><details><quantity>-3</quantity></details></order>`, want: 0},
		{name: "padded", doc: `<order><details><quantity> 4 </quantity></details></order>`, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := NewParser(nil).Parse("q", strings.NewReader(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, set.Quantity)
		})
	}
}

func TestParser_Parse_OversizedOrders(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "quantity", doc: `<order><details><quantity>2000000000</quantity></details></order>`},
		{name: "slot range", doc: `<order><details><quantity>3</quantity></details>
		<fronts><card><id>a</id><slots>0-2000000000</slots></card></fronts></order>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(nil).Parse("big", strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrOrderParse)
		})
	}
}

func TestParser_Parse_AnyCardElementName(t *testing.T) {
	doc := `<order><details><quantity>2</quantity></details>
	<fronts><front><id>a</id><slots>0-1</slots></front></fronts>
	<backs><back><id>b</id><slots>0-1</slots></back></backs></order>`

	set, err := NewParser(nil).Parse("x", strings.NewReader(doc))
	require.NoError(t, err)
	assert.NoError(t, set.Validate())
}

func TestParser_Parse_MissingBacksFailsValidation(t *testing.T) {
	doc := `<order><details><quantity>2</quantity></details>
	<fronts><card><id>a</id><slots>0-1</slots></card></fronts></order>`

	set, err := NewParser(nil).Parse("x", strings.NewReader(doc))
	require.NoError(t, err)

	err = set.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrFaceValidation)

	var fve *model.FaceValidationError
	require.True(t, errors.As(err, &fve))
	assert.Equal(t, model.Back, fve.Kind)
	assert.Equal(t, []int{0, 1}, fve.Missing)
}

func TestParser_Parse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{name: "malformed xml", doc: `<order><details>`, wantErr: model.ErrOrderParse},
		{name: "not xml", doc: `hello`, wantErr: model.ErrOrderParse},
		{name: "malformed slots", doc: `<order><fronts><card><id>a</id><slots>3-1</slots></card></fronts></order>`, wantErr: model.ErrMalformedSlotExpression},
		{name: "undefined entity", doc: `<order><cardback>&xxe;</cardback></order>`, wantErr: model.ErrOrderParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(nil).Parse("bad", strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, model.ErrOrderParse)

			var ope *model.OrderParseError
			require.True(t, errors.As(err, &ope))
			assert.Equal(t, "bad", ope.Source)
		})
	}
}

func TestParser_ParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "my deck.xml")
	require.NoError(t, os.WriteFile(path, []byte(sampleOrder), 0644))

	set, err := NewParser(nil).ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "my deck", set.Name)

	_, err = NewParser(nil).ParseFile(filepath.Join(dir, "missing.xml"))
	assert.ErrorIs(t, err, model.ErrOrderParse)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParser_ParseIsDeterministic(t *testing.T) {
	p := NewParser(nil)
	a, err := p.Parse("d", strings.NewReader(sampleOrder))
	require.NoError(t, err)
	b, err := p.Parse("d", strings.NewReader(sampleOrder))
	require.NoError(t, err)

	for _, kind := range model.FaceKinds {
		assert.Equal(t, a.SlotAssignments(kind), b.SlotAssignments(kind))
	}
	assert.Equal(t, a.SourceIDs(), b.SourceIDs())
}

func TestName(t *testing.T) {
	assert.Equal(t, "deck", Name("/a/b/deck.xml"))
	assert.Equal(t, "deck.v2", Name("deck.v2.xml"))
	assert.Equal(t, "noext", Name("noext"))
}

func TestFindOrderFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xml", "a.XML", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("<order/>"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xml"), 0755))

	files, err := FindOrderFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.XML"), filepath.Join(dir, "b.xml")}, files)
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.xml")
	require.NoError(t, os.WriteFile(a, []byte("<order/>"), 0644))
	other := filepath.Join(t.TempDir(), "order.txt")
	require.NoError(t, os.WriteFile(other, []byte("<order/>"), 0644))

	files, err := ExpandInputs([]string{other, dir, a})
	require.NoError(t, err)
	assert.Equal(t, []string{other, a}, files)

	_, err = ExpandInputs([]string{t.TempDir()})
	assert.ErrorIs(t, err, ErrNoOrderFound)

	_, err = ExpandInputs([]string{filepath.Join(dir, "nope")})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
