package listing

import (
	"dbdocs/internal/filter"
	"dbdocs/internal/schema"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	typeTable = "Table"
	typeView  = "View"
	checkMark = "√"

	indexPrimary     = "Primary key"
	indexUnique      = "Must be unique"
	indexPerformance = "Performance"
)

var headers = map[PageType][]string{
	Columns:     {"Table", "Table Type", "Column", "Type", "Size", "Nulls", "Auto", "Default", "Comments"},
	Routines:    {"Name", "Type", "Returns", "Language", "Data Access", "Security", "Deterministic", "Comment"},
	Types:       {"Type", "Name", "Schema", "Definition", "Description"},
	Constraints: {"Constraint", "Kind", "Table", "Columns", "Definition"},
	Indexes:     {"Index", "Kind", "Table", "Columns", "Method"},
	Triggers:    {"Trigger", "Table", "Timing", "Event", "Statement"},
}

// Header returns the column names of page under layout.
func Header(page PageType, layout Layout) []string {
	if page == Objects {
		if layout == LayoutLegacy {
			return []string{"Table", "Children", "Parents", "Columns", "Rows", "Type", "Comments"}
		}
		return []string{"Table", "Schema", "Children", "Parents", "Columns", "Rows", "Type", "Comments"}
	}
	return headers[page]
}

// Build builds the listing of page from s.
func Build(page PageType, s *schema.Schema, opts Options) (*Page, error) {
	var rows []filter.Row
	switch page {
	case Columns:
		rows = columnRows(s)
	case Objects:
		rows = objectRows(s, opts.ObjectLayout)
	case Routines:
		rows = routineRows(s)
	case Types:
		rows = typeRows(s)
	case Constraints:
		rows = constraintRows(s)
	case Indexes:
		rows = indexRows(s)
	case Triggers:
		rows = triggerRows(s)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownPage, page)
	}

	return &Page{
		Type:  page,
		Title: page.Title(),
		Data: filter.Dataset{
			Header: Header(page, opts.ObjectLayout),
			Rows:   rows,
		},
		Policy: PolicyFor(page, opts),
	}, nil
}

// BuildAll builds every page.
func BuildAll(s *schema.Schema, opts Options) (map[PageType]*Page, error) {
	pages := make(map[PageType]*Page, len(PageTypes))
	for _, p := range PageTypes {
		page, err := Build(p, s, opts)
		if err != nil {
			return nil, err
		}
		pages[p] = page
	}
	return pages, nil
}

// Digits groups the digits of n in threes separated by spaces, as record
// counts are shown: 1234567 is "1 234 567".
func Digits(n int64) string {
	return humanize.FormatInteger("# ###.", int(n))
}

// qualified names a table unambiguously across schemas.
func qualified(schemaName, table string) string {
	return schemaName + "." + table
}

// objectType maps the table types reported by the databases onto the two
// literals the listings filter on.
func objectType(reported string) string {
	if strings.Contains(strings.ToUpper(reported), "VIEW") {
		return typeView
	}
	return typeTable
}

func columnRows(s *schema.Schema) []filter.Row {
	var rows []filter.Row
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			rows = append(rows, columnRow(t.Name, objectType(t.Type), c))
		}
	}
	for _, v := range s.Views {
		for _, c := range v.Columns {
			rows = append(rows, columnRow(v.Name, typeView, c))
		}
	}
	return rows
}

func columnRow(table, tableType string, c schema.Column) filter.Row {
	def := ""
	if c.DefaultValue != nil {
		def = *c.DefaultValue
	}
	return filter.Row{
		table,
		tableType,
		c.Name,
		c.Type,
		columnSize(c),
		mark(c.IsNullable),
		mark(c.IsAutoUpdated),
		def,
		c.Comment,
	}
}

func columnSize(c schema.Column) string {
	switch {
	case c.Length != nil:
		return strconv.Itoa(*c.Length)
	case c.Precision != nil && c.Scale != nil && *c.Scale > 0:
		return fmt.Sprintf("%d,%d", *c.Precision, *c.Scale)
	case c.Precision != nil:
		return strconv.Itoa(*c.Precision)
	}
	return ""
}

func mark(b bool) string {
	if b {
		return checkMark
	}
	return ""
}

func objectRows(s *schema.Schema, layout Layout) []filter.Row {
	children := make(map[string]int)
	parents := make(map[string]int)
	for _, fk := range s.ForeignKeys {
		children[qualified(fk.ReferencedSchema, fk.ReferencedTable)]++
		parents[qualified(fk.Schema, fk.Table)]++
	}

	row := func(name, schemaName string, columns int, rowCount, typ, comment string) filter.Row {
		r := filter.Row{name}
		if layout != LayoutLegacy {
			r = append(r, schemaName)
		}
		return append(r,
			strconv.Itoa(children[qualified(schemaName, name)]),
			strconv.Itoa(parents[qualified(schemaName, name)]),
			strconv.Itoa(columns),
			rowCount,
			typ,
			comment,
		)
	}

	var rows []filter.Row
	for _, t := range s.Tables {
		rows = append(rows, row(t.Name, t.Schema, len(t.Columns), Digits(t.RowCount), objectType(t.Type), t.Comment))
	}
	for _, v := range s.Views {
		rows = append(rows, row(v.Name, v.Schema, len(v.Columns), "", typeView, v.Comment))
	}
	return rows
}

func routineRows(s *schema.Schema) []filter.Row {
	var rows []filter.Row
	for _, r := range s.Routines {
		rows = append(rows, filter.Row{
			r.Name,
			r.Type,
			r.ReturnType,
			r.Language,
			r.DataAccess,
			r.SecurityType,
			mark(r.Deterministic),
			r.Comment,
		})
	}
	return rows
}

func typeRows(s *schema.Schema) []filter.Row {
	var rows []filter.Row
	for _, t := range s.Types {
		rows = append(rows, filter.Row{t.Kind, t.Name, t.Schema, t.Definition, t.Description})
	}
	return rows
}

func constraintRows(s *schema.Schema) []filter.Row {
	var rows []filter.Row
	for _, fk := range s.ForeignKeys {
		def := fmt.Sprintf("%s(%s)", fk.ReferencedTable, fk.ReferencedColumn)
		if fk.OnUpdate != "" {
			def += " ON UPDATE " + fk.OnUpdate
		}
		if fk.OnDelete != "" {
			def += " ON DELETE " + fk.OnDelete
		}
		rows = append(rows, filter.Row{fk.Name, "FOREIGN KEY", fk.Table, fk.Column, def})
	}
	for _, c := range s.CheckConstraints {
		rows = append(rows, filter.Row{c.Name, "CHECK", c.Table, "", c.Clause})
	}
	return rows
}

func indexRows(s *schema.Schema) []filter.Row {
	var rows []filter.Row
	for _, idx := range s.Indexes {
		kind := indexPerformance
		switch {
		case idx.IsPrimary:
			kind = indexPrimary
		case idx.IsUnique:
			kind = indexUnique
		}
		rows = append(rows, filter.Row{idx.Name, kind, idx.Table, strings.Join(idx.Columns, ", "), idx.Type})
	}
	return rows
}

func triggerRows(s *schema.Schema) []filter.Row {
	var rows []filter.Row
	for _, t := range s.Triggers {
		rows = append(rows, filter.Row{t.Name, t.Table, t.Timing, t.Event, t.Statement})
	}
	return rows
}
