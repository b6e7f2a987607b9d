package filter

import "fmt"

type locatorKind int

const (
	locateNone locatorKind = iota
	locateIndex
	locateFromEnd
	locateField
)

// Locator designates the column of a row that is examined for filtering.
// The zero value designates nothing: no row matches a category under it.
type Locator struct {
	kind  locatorKind
	index int
	field string
}

// Index designates a fixed zero-based column.
func Index(i int) Locator {
	return Locator{kind: locateIndex, index: i}
}

// FromEnd designates the n-th column counted from the end of each row:
// FromEnd(1) is the last column, FromEnd(2) the second-to-last.
func FromEnd(n int) Locator {
	return Locator{kind: locateFromEnd, index: n}
}

// Field designates a column by header name.
func Field(name string) Locator {
	return Locator{kind: locateField, field: name}
}

// IsZero reports whether the locator designates no column.
func (l Locator) IsZero() bool {
	return l.kind == locateNone
}

// Bind resolves a field locator against header so that subsequent lookups are
// positional. Other locators are returned unchanged. A field absent from
// header binds to the zero locator.
func (l Locator) Bind(header []string) Locator {
	if l.kind != locateField {
		return l
	}
	for i, name := range header {
		if name == l.field {
			return Index(i)
		}
	}
	return Locator{}
}

// Lookup returns the designated value of row. ok is false when the row has no
// such column.
func (l Locator) Lookup(header []string, row Row) (value string, ok bool) {
	switch l.kind {
	case locateIndex:
		return at(row, l.index)
	case locateFromEnd:
		return at(row, len(row)-l.index)
	case locateField:
		return l.Bind(header).Lookup(header, row)
	}
	return "", false
}

func (l Locator) String() string {
	switch l.kind {
	case locateIndex:
		return fmt.Sprintf("index %d", l.index)
	case locateFromEnd:
		return fmt.Sprintf("%d from end", l.index)
	case locateField:
		return fmt.Sprintf("field %q", l.field)
	}
	return "none"
}

func at(row Row, i int) (string, bool) {
	if i < 0 || i >= len(row) {
		return "", false
	}
	return row[i], true
}
