// Package filter decides which rows of a listing are visible under a category
// filter and keeps the category buttons of a listing consistent with it.
//
// A listing is a [Dataset]: a header plus rows of string values. One column of
// each row is designated by a [Locator]; a row is visible when the value found
// there equals the active category token, or when the token is the [All]
// sentinel.
//
//	data := filter.Dataset{
//	    Header: []string{"Name", "Type"},
//	    Rows:   []filter.Row{{"users", "Table"}, {"active_users", "View"}},
//	}
//	visible := filter.ComputeVisibleRows(data, "View", filter.Index(1), filter.CaseSensitive)
//	// visible == []int{1}
//
// [Controller] wraps the pure functions with the button state of an
// interactive listing.
package filter

import "strings"

// All is the sentinel token meaning "no filtering".
const All = "All"

// IsAll reports whether token is the "show all" sentinel. Both spellings used
// by the listings are accepted.
func IsAll(token string) bool {
	return token == All || token == "ALL"
}

// CaseMode selects how values and tokens are compared.
type CaseMode int

const (
	// CaseSensitive compares values exactly.
	CaseSensitive CaseMode = iota
	// CaseInsensitive upper-cases both sides before comparing.
	CaseInsensitive
)

func (m CaseMode) String() string {
	if m == CaseInsensitive {
		return "insensitive"
	}
	return "sensitive"
}

// Normalize returns value as it takes part in comparisons under mode.
func Normalize(value string, mode CaseMode) string {
	if mode == CaseInsensitive {
		return strings.ToUpper(value)
	}
	return value
}

// Row is one record of a listing.
type Row []string

// Dataset is an immutable listing.
type Dataset struct {
	Header []string
	Rows   []Row
}

// Len returns the number of rows.
func (d Dataset) Len() int {
	return len(d.Rows)
}

// Matches reports whether row is visible under token.
func Matches(header []string, row Row, token string, loc Locator, mode CaseMode) bool {
	if IsAll(token) {
		return true
	}
	value, ok := loc.Lookup(header, row)
	if !ok {
		return false
	}
	return Normalize(value, mode) == Normalize(token, mode)
}

// ComputeVisibleRows returns the positions of the rows of data visible under
// token, in dataset order. The result is never nil.
func ComputeVisibleRows(data Dataset, token string, loc Locator, mode CaseMode) []int {
	visible := make([]int, 0, len(data.Rows))
	if IsAll(token) {
		for i := range data.Rows {
			visible = append(visible, i)
		}
		return visible
	}

	bound := loc.Bind(data.Header)
	for i, row := range data.Rows {
		if Matches(data.Header, row, token, bound, mode) {
			visible = append(visible, i)
		}
	}
	return visible
}

// DeriveCategories scans the designated column of every row and returns the
// distinct normalized values in first-seen order, prefixed with [All]. Empty
// values and values spelling All are skipped.
func DeriveCategories(data Dataset, loc Locator, mode CaseMode) []string {
	categories := []string{All}
	seen := make(map[string]struct{})

	bound := loc.Bind(data.Header)
	for _, row := range data.Rows {
		value, ok := bound.Lookup(data.Header, row)
		if !ok || value == "" {
			continue
		}
		value = Normalize(value, mode)
		// A value spelling the sentinel would be a second All button.
		if IsAll(value) {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		categories = append(categories, value)
	}

	return categories
}
