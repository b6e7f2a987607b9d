package listing

import (
	"dbdocs/internal/filter"
	"dbdocs/internal/schema"
	"dbdocs/pkg/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(i int) *int       { return &i }
func strp(s string) *string { return &s }

func fixtureSchema() *schema.Schema {
	return &schema.Schema{
		Database: "postgresql",
		Tables: []schema.Table{
			{
				Name:     "users",
				Schema:   "public",
				Type:     "BASE TABLE",
				RowCount: 1234567,
				Comment:  "people",
				Columns: []schema.Column{
					{Name: "id", Type: "integer", Precision: intp(32), Scale: intp(0), IsAutoUpdated: true, IsPrimaryKey: true},
					{Name: "email", Type: "character varying", Length: intp(255), IsNullable: true, Comment: "login"},
				},
			},
			{
				Name:   "orders",
				Schema: "public",
				Type:   "BASE TABLE",
				Columns: []schema.Column{
					{Name: "total", Type: "numeric", Precision: intp(10), Scale: intp(2), DefaultValue: strp("0")},
				},
			},
		},
		Views: []schema.View{
			{
				Name:    "active_users",
				Schema:  "public",
				Columns: []schema.Column{{Name: "id", Type: "integer", IsNullable: true}},
			},
		},
		ForeignKeys: []schema.ForeignKey{
			{Name: "orders_user_fk", Schema: "public", Table: "orders", Column: "user_id", ReferencedSchema: "public", ReferencedTable: "users", ReferencedColumn: "id", OnUpdate: "NO ACTION", OnDelete: "CASCADE"},
		},
		CheckConstraints: []schema.CheckConstraint{
			{Name: "positive_total", Table: "orders", Clause: "(total > 0)"},
		},
		Routines: []schema.Routine{
			{Name: "full_name", Type: "function", ReturnType: "text", Language: "SQL", Deterministic: true},
			{Name: "add_user", Type: "PROCEDURE", Language: "PLPGSQL"},
		},
		Types: []schema.UserType{
			{Kind: "enum", Name: "mood", Schema: "public", Definition: "sad, happy"},
			{Kind: "domain", Name: "email", Schema: "public", Definition: "text"},
			{Kind: "ENUM", Name: "status", Schema: "public"},
		},
		Indexes: []schema.Index{
			{Name: "users_pkey", Schema: "public", Table: "users", Columns: []string{"id"}, IsUnique: true, IsPrimary: true, Type: "btree"},
			{Name: "users_email_key", Schema: "public", Table: "users", Columns: []string{"email"}, IsUnique: true, Type: "btree"},
			{Name: "orders_user_total", Schema: "public", Table: "orders", Columns: []string{"user_id", "total"}, Type: "btree"},
		},
		Triggers: []schema.Trigger{
			{Name: "users_touch", Table: "users", Timing: "BEFORE", Event: "UPDATE", Statement: "EXECUTE FUNCTION touch()"},
		},
	}
}

func mustBuild(t *testing.T, page PageType, opts Options) *Page {
	t.Helper()
	p, err := Build(page, fixtureSchema(), opts)
	require.NoError(t, err)
	return p
}

func TestParsePageType(t *testing.T) {
	p, err := ParsePageType("Routines")
	require.NoError(t, err)
	assert.Equal(t, Routines, p)

	_, err = ParsePageType("anomalies")
	assert.ErrorIs(t, err, ErrUnknownPage)
	assert.Contains(t, err.Error(), "columns, objects, routines, types, constraints, indexes, triggers")
}

func TestBuildUnknownPage(t *testing.T) {
	_, err := Build(PageType("orphans"), fixtureSchema(), Options{})
	assert.ErrorIs(t, err, ErrUnknownPage)
}

func TestColumnsPage(t *testing.T) {
	p := mustBuild(t, Columns, Options{})

	assert.Equal(t, "Columns", p.Title)
	require.Len(t, p.Data.Rows, 4)
	assert.Equal(t, filter.Row{"users", "Table", "id", "integer", "32", "", "√", "", ""}, p.Data.Rows[0])
	assert.Equal(t, filter.Row{"users", "Table", "email", "character varying", "255", "√", "", "", "login"}, p.Data.Rows[1])
	assert.Equal(t, filter.Row{"orders", "Table", "total", "numeric", "10,2", "", "", "0", ""}, p.Data.Rows[2])
	assert.Equal(t, filter.Row{"active_users", "View", "id", "integer", "", "√", "", "", ""}, p.Data.Rows[3])

	c := p.Controller(nil)
	c.SetFilter("View")
	assert.Equal(t, []int{3}, c.Visible())
	c.SetFilter("Table")
	assert.Equal(t, []int{0, 1, 2}, c.Visible())
	c.SetFilter("table")
	assert.Empty(t, c.Visible())
}

func TestObjectsPageLayouts(t *testing.T) {
	for _, layout := range []Layout{LayoutCurrent, LayoutLegacy} {
		t.Run(string(layout), func(t *testing.T) {
			p := mustBuild(t, Objects, Options{ObjectLayout: layout})

			require.Len(t, p.Data.Rows, 3)
			c := p.Controller(nil)
			require.NoError(t, c.Click("View"))
			assert.Equal(t, []int{2}, c.Visible())
			require.NoError(t, c.Click("Table"))
			assert.Equal(t, []int{0, 1}, c.Visible())
		})
	}

	current := mustBuild(t, Objects, Options{ObjectLayout: LayoutCurrent})
	assert.Equal(t, filter.Row{"users", "public", "1", "0", "2", "1 234 567", "Table", "people"}, current.Data.Rows[0])
	assert.Equal(t, filter.FromEnd(2), current.Policy.Locator)

	legacy := mustBuild(t, Objects, Options{ObjectLayout: LayoutLegacy})
	assert.Equal(t, filter.Row{"orders", "0", "1", "1", "0", "Table", ""}, legacy.Data.Rows[1])
	assert.Equal(t, filter.Index(5), legacy.Policy.Locator)
	assert.Equal(t, "Type", legacy.Data.Header[5])
}

func TestRoutinesPageIgnoresCase(t *testing.T) {
	p := mustBuild(t, Routines, Options{})
	c := p.Controller(nil)

	require.NoError(t, c.Click("FUNCTION"))
	assert.Equal(t, []int{0}, c.Visible())
	require.NoError(t, c.Click("PROCEDURE"))
	assert.Equal(t, []int{1}, c.Visible())
	assert.Equal(t, "√", p.Data.Rows[0][6])
}

func TestTypesPageDerivesButtons(t *testing.T) {
	p := mustBuild(t, Types, Options{})
	c := p.Controller(nil)

	var labels []string
	for _, b := range c.Buttons() {
		labels = append(labels, b.Label)
	}
	assert.Equal(t, []string{"All", "ENUM", "DOMAIN"}, labels)

	require.NoError(t, c.Click("ENUM"))
	assert.Equal(t, []int{0, 2}, c.Visible())
}

func TestTypesPageWithoutTypes(t *testing.T) {
	p, err := Build(Types, &schema.Schema{}, Options{})
	require.NoError(t, err)

	c := p.Controller(nil)
	require.Len(t, c.Buttons(), 1)
	assert.Empty(t, c.Visible())
}

func TestConstraintsAndTriggersAreUnfiltered(t *testing.T) {
	p := mustBuild(t, Constraints, Options{})
	require.Len(t, p.Data.Rows, 2)
	assert.Equal(t, filter.Row{"orders_user_fk", "FOREIGN KEY", "orders", "user_id", "users(id) ON UPDATE NO ACTION ON DELETE CASCADE"}, p.Data.Rows[0])
	assert.Equal(t, filter.Row{"positive_total", "CHECK", "orders", "", "(total > 0)"}, p.Data.Rows[1])
	assert.False(t, p.Policy.Filterable())
	assert.Len(t, p.Controller(nil).Buttons(), 1)

	p = mustBuild(t, Triggers, Options{})
	require.Len(t, p.Data.Rows, 1)
	assert.False(t, p.Policy.Filterable())
}

func TestFieldOverride(t *testing.T) {
	opts := Options{Fields: map[PageType]string{Columns: "Table"}}
	p := mustBuild(t, Columns, opts)

	c := p.Controller(nil)
	c.SetFilter("orders")
	assert.Equal(t, []int{2}, c.Visible())
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := OptionsFromConfig(config.ListingConfig{})
	require.NoError(t, err)
	assert.Equal(t, LayoutCurrent, opts.ObjectLayout)

	opts, err = OptionsFromConfig(config.ListingConfig{
		ObjectLayout: "legacy",
		Fields:       map[string]string{"routines": "Language"},
	})
	require.NoError(t, err)
	assert.Equal(t, LayoutLegacy, opts.ObjectLayout)
	assert.Equal(t, "Language", opts.Fields[Routines])

	_, err = OptionsFromConfig(config.ListingConfig{ObjectLayout: "fancy"})
	assert.Error(t, err)

	_, err = OptionsFromConfig(config.ListingConfig{Fields: map[string]string{"nope": "Type"}})
	assert.ErrorIs(t, err, ErrUnknownPage)

	_, err = OptionsFromConfig(config.ListingConfig{Fields: map[string]string{"triggers": "Event"}})
	assert.Error(t, err)

	_, err = OptionsFromConfig(config.ListingConfig{ObjectLayout: "legacy", Fields: map[string]string{"objects": "Schema"}})
	assert.Error(t, err)
}

func TestIndexesPage(t *testing.T) {
	p := mustBuild(t, Indexes, Options{})

	require.Len(t, p.Data.Rows, 3)
	assert.Equal(t, filter.Row{"users_pkey", "Primary key", "users", "id", "btree"}, p.Data.Rows[0])
	assert.Equal(t, filter.Row{"orders_user_total", "Performance", "orders", "user_id, total", "btree"}, p.Data.Rows[2])

	c := p.Controller(nil)
	var labels []string
	for _, b := range c.Buttons() {
		labels = append(labels, b.Label)
	}
	assert.Equal(t, []string{"All", "Primary keys", "Unique", "Performance"}, labels)

	require.NoError(t, c.Click("Must be unique"))
	assert.Equal(t, []int{1}, c.Visible())
	require.NoError(t, c.ClickIndex(3))
	assert.Equal(t, []int{2}, c.Visible())
}

func TestObjectsPageCountsRelationsPerSchema(t *testing.T) {
	s := &schema.Schema{
		Tables: []schema.Table{
			{Name: "users", Schema: "public", Type: "BASE TABLE"},
			{Name: "users", Schema: "archive", Type: "BASE TABLE"},
			{Name: "orders", Schema: "public", Type: "BASE TABLE"},
		},
		ForeignKeys: []schema.ForeignKey{
			{Name: "orders_user_fk", Schema: "public", Table: "orders", ReferencedSchema: "public", ReferencedTable: "users"},
		},
	}

	p, err := Build(Objects, s, Options{ObjectLayout: LayoutCurrent})
	require.NoError(t, err)

	assert.Equal(t, filter.Row{"users", "public", "1", "0", "0", "0", "Table", ""}, p.Data.Rows[0])
	assert.Equal(t, filter.Row{"users", "archive", "0", "0", "0", "0", "Table", ""}, p.Data.Rows[1])
	assert.Equal(t, filter.Row{"orders", "public", "0", "1", "0", "0", "Table", ""}, p.Data.Rows[2])
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "0", Digits(0))
	assert.Equal(t, "999", Digits(999))
	assert.Equal(t, "1 000", Digits(1000))
	assert.Equal(t, "1 234 567", Digits(1234567))
}

func TestBuildAll(t *testing.T) {
	pages, err := BuildAll(fixtureSchema(), Options{})
	require.NoError(t, err)
	assert.Len(t, pages, len(PageTypes))
	for _, p := range PageTypes {
		require.NotNil(t, pages[p])
		assert.Equal(t, len(pages[p].Data.Header), len(Header(p, LayoutCurrent)))
	}
}
