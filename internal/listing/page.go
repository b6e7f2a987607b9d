// Package listing turns an extracted schema into the documentation listings
// (columns, objects, routines, types, constraints, triggers) and knows how
// each of them is filtered.
package listing

import (
	"dbdocs/internal/filter"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPage is returned for page names that are not listings.
var ErrUnknownPage = errors.New("unknown page")

type PageType string

const (
	Columns     PageType = "columns"
	Objects     PageType = "objects"
	Routines    PageType = "routines"
	Types       PageType = "types"
	Constraints PageType = "constraints"
	Indexes     PageType = "indexes"
	Triggers    PageType = "triggers"
)

// PageTypes lists every page in display order.
var PageTypes = []PageType{Columns, Objects, Routines, Types, Constraints, Indexes, Triggers}

var titles = map[PageType]string{
	Columns:     "Columns",
	Objects:     "Tables and views",
	Routines:    "Routines",
	Types:       "Types",
	Constraints: "Constraints",
	Indexes:     "Indexes",
	Triggers:    "Triggers",
}

func (p PageType) Title() string {
	return titles[p]
}

// ParsePageType resolves a page name, ignoring case.
func ParsePageType(name string) (PageType, error) {
	for _, p := range PageTypes {
		if strings.EqualFold(string(p), name) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w %q (valid pages: %s)", ErrUnknownPage, name, strings.Join(PageNames(), ", "))
}

func PageNames() []string {
	names := make([]string, len(PageTypes))
	for i, p := range PageTypes {
		names[i] = string(p)
	}
	return names
}

// Layout of the objects page. The legacy layout has no Schema column.
type Layout string

const (
	LayoutCurrent Layout = "current"
	LayoutLegacy  Layout = "legacy"
)

var tableViewCategories = []filter.Category{
	{Label: "Tables", Token: typeTable},
	{Label: "Views", Token: typeView},
}

// Policies maps each page to the way it is filtered. The objects entry is
// for the current layout; see PolicyFor.
var Policies = map[PageType]filter.Policy{
	Columns: {
		Locator:    filter.Index(1),
		Case:       filter.CaseSensitive,
		Categories: tableViewCategories,
	},
	Objects: {
		Locator:    filter.FromEnd(2),
		Case:       filter.CaseSensitive,
		Categories: tableViewCategories,
	},
	Routines: {
		Locator: filter.Index(1),
		Case:    filter.CaseInsensitive,
		Categories: []filter.Category{
			{Label: "Functions", Token: "FUNCTION"},
			{Label: "Procedures", Token: "PROCEDURE"},
		},
	},
	Types: {
		Locator: filter.Index(0),
		Case:    filter.CaseInsensitive,
		Dynamic: true,
	},
	Constraints: {},
	Indexes: {
		Locator: filter.Index(1),
		Case:    filter.CaseSensitive,
		Categories: []filter.Category{
			{Label: "Primary keys", Token: indexPrimary},
			{Label: "Unique", Token: indexUnique},
			{Label: "Performance", Token: indexPerformance},
		},
	},
	Triggers: {},
}

// Options tune how pages are built.
type Options struct {
	ObjectLayout Layout
	// Fields replaces the filter column of a page with the named header field.
	Fields map[PageType]string
}

// PolicyFor returns the filter policy of page under opts.
func PolicyFor(page PageType, opts Options) filter.Policy {
	policy := Policies[page]

	if page == Objects && opts.ObjectLayout == LayoutLegacy {
		policy.Locator = filter.Index(5)
	}
	if field, ok := opts.Fields[page]; ok && field != "" && policy.Filterable() {
		policy.Locator = filter.Field(field)
	}

	return policy
}

// Page is a built listing ready to be filtered.
type Page struct {
	Type   PageType
	Title  string
	Data   filter.Dataset
	Policy filter.Policy
}

// Controller returns a fresh filter controller over the page.
func (p *Page) Controller(widget filter.Widget) *filter.Controller {
	return filter.NewController(p.Data, p.Policy, widget)
}
