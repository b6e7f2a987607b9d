package cmd

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteURL(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shop.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT NOT NULL);
CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER REFERENCES customers(id));
CREATE VIEW customer_orders AS SELECT c.name, o.id FROM customers c JOIN orders o ON o.customer_id = c.id;
`)
	require.NoError(t, err)
	return "sqlite://" + path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		listCmd.Flags().Set("filter", "All")
		listCmd.Flags().Set("categories", "false")
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestListObjects(t *testing.T) {
	url := sqliteURL(t)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			name: "all",
			args: []string{"list", "objects", "-d", url},
			want: []string{"customers", "orders", "customer_orders", "3 rows"},
		},
		{
			name:    "views",
			args:    []string{"list", "objects", "-d", url, "--filter", "View"},
			want:    []string{"customer_orders", "1 of 3 rows"},
			notWant: []string{"customers "},
		},
		{
			name: "categories",
			args: []string{"list", "objects", "-d", url, "--filter", "Table", "--categories"},
			want: []string{"  All", "* Tables (Table)", "  Views (View)"},
		},
		{
			name: "wrong case matches nothing",
			args: []string{"list", "objects", "-d", url, "--filter", "view"},
			want: []string{"(0 rows)", "0 of 3 rows"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, out, w)
			}
		})
	}
}

func TestListUnknownPage(t *testing.T) {
	_, err := runCLI(t, "list", "anomalies", "-d", "sqlite:///tmp/unused.db")
	assert.ErrorContains(t, err, "unknown page")
}
