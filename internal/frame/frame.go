package frame

import (
	"fmt"
	"strconv"
)

// Kind identifies the storage type of a column.
type Kind int

const (
	// Text columns hold string values (period identifiers, labels).
	Text Kind = iota
	// Number columns hold float64 values.
	Number
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "string"
	case Number:
		return "float64"
	default:
		return "unknown"
	}
}

// Column is a single named column. Exactly one of the backing slices is
// populated depending on Kind. Valid marks non-missing cells; a false entry
// is the missing marker regardless of what the backing slice holds.
type Column struct {
	Name  string
	Kind  Kind
	Text  []string
	Nums  []float64
	Valid []bool
}

// NewTextColumn creates a text column with all cells present.
func NewTextColumn(name string, values []string) Column {
	valid := make([]bool, len(values))
	for i := range valid {
		valid[i] = true
	}
	return Column{Name: name, Kind: Text, Text: values, Valid: valid}
}

// NewNumberColumn creates a numeric column. A nil valid mask means all
// cells are present.
func NewNumberColumn(name string, values []float64, valid []bool) Column {
	if valid == nil {
		valid = make([]bool, len(values))
		for i := range valid {
			valid[i] = true
		}
	}
	return Column{Name: name, Kind: Number, Nums: values, Valid: valid}
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	return len(c.Valid)
}

// IsMissing reports whether the cell at row i holds the missing marker.
func (c *Column) IsMissing(i int) bool {
	return !c.Valid[i]
}

// StringAt returns the text value at row i. ok is false for missing cells
// and for numeric columns.
func (c *Column) StringAt(i int) (string, bool) {
	if c.Kind != Text || !c.Valid[i] {
		return "", false
	}
	return c.Text[i], true
}

// FloatAt returns the numeric value at row i. ok is false for missing cells
// and for text columns.
func (c *Column) FloatAt(i int) (float64, bool) {
	if c.Kind != Number || !c.Valid[i] {
		return 0, false
	}
	return c.Nums[i], true
}

// SetMissing marks the cell at row i as missing.
func (c *Column) SetMissing(i int) {
	c.Valid[i] = false
	switch c.Kind {
	case Text:
		c.Text[i] = ""
	case Number:
		c.Nums[i] = 0
	}
}

// CellString renders the cell at row i for delimited-text output. Missing
// cells render as the empty string; numbers use the shortest round-trip
// representation.
func (c *Column) CellString(i int) string {
	if !c.Valid[i] {
		return ""
	}
	if c.Kind == Number {
		return strconv.FormatFloat(c.Nums[i], 'g', -1, 64)
	}
	return c.Text[i]
}

// clone returns a deep copy of the column.
func (c *Column) clone() Column {
	out := Column{Name: c.Name, Kind: c.Kind}
	out.Valid = append([]bool(nil), c.Valid...)
	if c.Text != nil {
		out.Text = append([]string(nil), c.Text...)
	}
	if c.Nums != nil {
		out.Nums = append([]float64(nil), c.Nums...)
	}
	return out
}

// Frame is an ordered collection of equal-length columns.
type Frame struct {
	cols []Column
}

// New builds a frame from columns. All columns must have the same length.
func New(cols ...Column) (*Frame, error) {
	f := &Frame{}
	for _, c := range cols {
		if err := f.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// NumRows returns the row count. An empty frame has zero rows.
func (f *Frame) NumRows() int {
	if len(f.cols) == 0 {
		return 0
	}
	return f.cols[0].Len()
}

// NumCols returns the column count.
func (f *Frame) NumCols() int {
	return len(f.cols)
}

// Names returns the column names in order.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i := range f.cols {
		names[i] = f.cols[i].Name
	}
	return names
}

// Column returns a pointer to the named column, or nil if absent.
func (f *Frame) Column(name string) *Column {
	for i := range f.cols {
		if f.cols[i].Name == name {
			return &f.cols[i]
		}
	}
	return nil
}

// ColumnAt returns a pointer to the column at index i.
func (f *Frame) ColumnAt(i int) *Column {
	return &f.cols[i]
}

// HasColumn reports whether a column with the given name exists.
func (f *Frame) HasColumn(name string) bool {
	return f.Column(name) != nil
}

// AddColumn appends a column. Its length must match the existing rows.
func (f *Frame) AddColumn(c Column) error {
	if len(f.cols) > 0 && c.Len() != f.NumRows() {
		return fmt.Errorf("frame: column %q has %d rows, frame has %d", c.Name, c.Len(), f.NumRows())
	}
	f.cols = append(f.cols, c)
	return nil
}

// ReplaceColumn swaps the column at index i.
func (f *Frame) ReplaceColumn(i int, c Column) error {
	if c.Len() != f.NumRows() {
		return fmt.Errorf("frame: column %q has %d rows, frame has %d", c.Name, c.Len(), f.NumRows())
	}
	f.cols[i] = c
	return nil
}

// Rename changes a column name in place. Returns false if the source
// column does not exist.
func (f *Frame) Rename(oldName, newName string) bool {
	c := f.Column(oldName)
	if c == nil {
		return false
	}
	c.Name = newName
	return true
}

// FilterRows returns a new frame holding only rows for which keep returns
// true. Column order and kinds are preserved.
func (f *Frame) FilterRows(keep func(row int) bool) *Frame {
	var rows []int
	for i := 0; i < f.NumRows(); i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	out := &Frame{cols: make([]Column, len(f.cols))}
	for ci := range f.cols {
		src := &f.cols[ci]
		dst := Column{Name: src.Name, Kind: src.Kind, Valid: make([]bool, len(rows))}
		if src.Kind == Text {
			dst.Text = make([]string, len(rows))
		} else {
			dst.Nums = make([]float64, len(rows))
		}
		for ri, r := range rows {
			dst.Valid[ri] = src.Valid[r]
			if src.Kind == Text {
				dst.Text[ri] = src.Text[r]
			} else {
				dst.Nums[ri] = src.Nums[r]
			}
		}
		out.cols[ci] = dst
	}
	return out
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := &Frame{cols: make([]Column, len(f.cols))}
	for i := range f.cols {
		out.cols[i] = f.cols[i].clone()
	}
	return out
}

// Equal reports whether two frames have identical column names, kinds,
// missing masks and cell values.
func (f *Frame) Equal(other *Frame) bool {
	if f.NumCols() != other.NumCols() || f.NumRows() != other.NumRows() {
		return false
	}
	for i := range f.cols {
		a, b := &f.cols[i], &other.cols[i]
		if a.Name != b.Name || a.Kind != b.Kind {
			return false
		}
		for r := 0; r < a.Len(); r++ {
			if a.Valid[r] != b.Valid[r] {
				return false
			}
			if !a.Valid[r] {
				continue
			}
			if a.Kind == Text && a.Text[r] != b.Text[r] {
				return false
			}
			if a.Kind == Number && a.Nums[r] != b.Nums[r] {
				return false
			}
		}
	}
	return true
}

// Row renders row i as strings for delimited-text output.
func (f *Frame) Row(i int) []string {
	rec := make([]string, len(f.cols))
	for ci := range f.cols {
		rec[ci] = f.cols[ci].CellString(i)
	}
	return rec
}
