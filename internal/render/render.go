// Package render prints listings to a terminal.
package render

import (
	"dbdocs/internal/filter"
	"dbdocs/internal/listing"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Listing writes the rows of page visible under c, followed by a count line.
func Listing(w io.Writer, page *listing.Page, c *filter.Controller) error {
	visible := c.Visible()

	if len(visible) == 0 {
		if _, err := fmt.Fprintln(w, "(0 rows)"); err != nil {
			return err
		}
	} else {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.SetTitle(title(page, c))

		header := make(table.Row, len(page.Data.Header))
		for i, h := range page.Data.Header {
			header[i] = h
		}
		t.AppendHeader(header)

		for _, idx := range visible {
			src := page.Data.Rows[idx]
			row := make(table.Row, len(src))
			for i, v := range src {
				row[i] = v
			}
			t.AppendRow(row)
		}
		t.Render()
	}

	_, err := fmt.Fprintln(w, Count(len(visible), page.Data.Len()))
	return err
}

func title(page *listing.Page, c *filter.Controller) string {
	if b, ok := c.ActiveButton(); ok {
		return fmt.Sprintf("%s: %s", page.Title, b.Label)
	}
	if tok := c.ActiveToken(); !filter.IsAll(tok) {
		return fmt.Sprintf("%s: %s", page.Title, tok)
	}
	return page.Title
}

// Count formats the visible/total line shown under a listing.
func Count(visible, total int) string {
	if visible == total {
		return fmt.Sprintf("%s rows", listing.Digits(int64(total)))
	}
	return fmt.Sprintf("%s of %s rows", listing.Digits(int64(visible)), listing.Digits(int64(total)))
}

// Buttons writes the category buttons of c, one per line, marking the active
// one.
func Buttons(w io.Writer, c *filter.Controller) error {
	for _, b := range c.Buttons() {
		marker := " "
		if b.Active {
			marker = "*"
		}
		line := b.Label
		if b.Token != b.Label {
			line = fmt.Sprintf("%s (%s)", b.Label, b.Token)
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", marker, strings.TrimSpace(line)); err != nil {
			return err
		}
	}
	return nil
}
