package database

import (
	"database/sql"
	"dbdocs/internal/schema"
	"dbdocs/pkg/config"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

type Connector struct {
	db     *sql.DB
	driver string
}

type SchemaExtractor interface {
	ExtractSchema(cfg config.SchemaConfig) (*schema.Schema, error)
}

func NewConnector(databaseURL string) (*Connector, error) {
	driver, dsn, err := ParseDatabaseURL(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Debug().Str("driver", driver).Msg("connected to database")

	return &Connector{
		db:     db,
		driver: driver,
	}, nil
}

func (c *Connector) Close() error {
	return c.db.Close()
}

func (c *Connector) Driver() string {
	return c.driver
}

func (c *Connector) ExtractSchema(cfg config.SchemaConfig) (*schema.Schema, error) {
	extractor, err := newExtractor(c.driver, c.db)
	if err != nil {
		return nil, err
	}
	return extractor.ExtractSchema(cfg)
}

func newExtractor(driver string, db *sql.DB) (SchemaExtractor, error) {
	switch driver {
	case "postgres":
		return &PostgreSQLExtractor{db: db}, nil
	case "sqlite3":
		return &SQLiteExtractor{db: db}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

func ParseDatabaseURL(databaseURL string) (driver, dsn string, err error) {
	if databaseURL == "" {
		return "", "", fmt.Errorf("database URL is empty")
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", "", err
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		return "postgres", databaseURL, nil
	case "sqlite", "sqlite3":
		dsn = strings.TrimPrefix(databaseURL, u.Scheme+"://")
		if dsn == "" {
			return "", "", fmt.Errorf("sqlite URL has no file path")
		}
		return "sqlite3", dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported database scheme: %s", u.Scheme)
	}
}

// included applies the include/exclude table lists of cfg to name.
func included(cfg config.SchemaConfig, name string) bool {
	if len(cfg.IncludeTables) > 0 && !contains(cfg.IncludeTables, name) {
		return false
	}
	return !contains(cfg.ExcludeTables, name)
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, item) {
			return true
		}
	}
	return false
}

// optional runs the extraction of a catalog section whose absence should not
// abort the whole extraction.
func optional[T any](section string, extract func() ([]T, error)) []T {
	items, err := extract()
	if err != nil {
		log.Warn().Err(err).Str("section", section).Msg("failed to extract, continuing without it")
		return nil
	}
	return items
}

// markUnique flags the columns covered on their own by a unique index.
func markUnique(tables []schema.Table, indexes []schema.Index) {
	unique := make(map[string]bool)
	for _, idx := range indexes {
		if idx.IsUnique && len(idx.Columns) == 1 {
			unique[idx.Table+"."+idx.Columns[0]] = true
		}
	}
	for i := range tables {
		for j := range tables[i].Columns {
			tables[i].Columns[j].IsUnique = unique[tables[i].Name+"."+tables[i].Columns[j].Name]
		}
	}
}
