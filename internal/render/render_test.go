package render

import (
	"bytes"
	"dbdocs/internal/filter"
	"dbdocs/internal/listing"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func objectsPage() *listing.Page {
	return &listing.Page{
		Type:  listing.Objects,
		Title: "Tables and views",
		Data: filter.Dataset{
			Header: []string{"Table", "Type", "Comments"},
			Rows: []filter.Row{
				{"users", "Table", ""},
				{"active_users", "View", ""},
				{"orders", "Table", "placed orders"},
			},
		},
		Policy: filter.Policy{
			Locator:    filter.FromEnd(2),
			Categories: []filter.Category{{Label: "Tables", Token: "Table"}, {Label: "Views", Token: "View"}},
		},
	}
}

func TestListingFiltered(t *testing.T) {
	page := objectsPage()
	c := page.Controller(nil)
	require.NoError(t, c.Click("Table"))

	var buf bytes.Buffer
	require.NoError(t, Listing(&buf, page, c))

	out := buf.String()
	assert.Contains(t, out, "Tables and views: Tables")
	assert.Contains(t, out, "users")
	assert.Contains(t, out, "placed orders")
	assert.NotContains(t, out, "active_users")
	assert.Contains(t, out, "2 of 3 rows")
}

func TestListingEmpty(t *testing.T) {
	page := objectsPage()
	c := page.Controller(nil)
	c.SetFilter("Sequence")

	var buf bytes.Buffer
	require.NoError(t, Listing(&buf, page, c))
	assert.Equal(t, "(0 rows)\n0 of 3 rows\n", buf.String())
}

func TestCount(t *testing.T) {
	assert.Equal(t, "3 rows", Count(3, 3))
	assert.Equal(t, "1 500 of 12 000 rows", Count(1500, 12000))
}

func TestButtons(t *testing.T) {
	c := objectsPage().Controller(nil)
	require.NoError(t, c.Click("View"))

	var buf bytes.Buffer
	require.NoError(t, Buttons(&buf, c))
	assert.Equal(t, "  All\n  Tables (Table)\n* Views (View)\n", buf.String())
}
