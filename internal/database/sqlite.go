package database

import (
	"database/sql"
	"dbdocs/internal/schema"
	"dbdocs/pkg/config"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

type SQLiteExtractor struct {
	db *sql.DB
}

var triggerHeadRe = regexp.MustCompile(`(?is)\bTRIGGER\s+(?:IF\s+NOT\s+EXISTS\s+)?(?:"[^"]+"|\S+)\s+(BEFORE\s+|AFTER\s+|INSTEAD\s+OF\s+)?(INSERT|UPDATE|DELETE)\b`)

func (s *SQLiteExtractor) ExtractSchema(cfg config.SchemaConfig) (*schema.Schema, error) {
	sch := &schema.Schema{
		Database:    "sqlite",
		GeneratedAt: time.Now(),
	}

	tables, err := s.extractTables(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to extract tables: %w", err)
	}
	sch.Tables = tables

	if cfg.IncludeViews {
		views, err := s.extractViews(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to extract views: %w", err)
		}
		sch.Views = views
	}

	foreignKeys, err := s.extractForeignKeys(cfg, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}
	sch.ForeignKeys = foreignKeys

	sch.Indexes = optional("indexes", func() ([]schema.Index, error) {
		return s.extractIndexes(tables)
	})
	markUnique(sch.Tables, sch.Indexes)

	// SQLite has no stored routines and no user-defined types.
	sch.Triggers = optional("triggers", func() ([]schema.Trigger, error) {
		return s.extractTriggers(cfg)
	})

	return sch, nil
}

func (s *SQLiteExtractor) extractTables(cfg config.SchemaConfig) ([]schema.Table, error) {
	query := `
        SELECT name
        FROM sqlite_master
        WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
        ORDER BY name
    `

	names, err := s.names(query)
	if err != nil {
		return nil, err
	}

	var tables []schema.Table
	for _, name := range names {
		if !included(cfg, name) {
			continue
		}

		table := schema.Table{
			Name:   name,
			Schema: "main",
			Type:   "BASE TABLE",
		}

		columns, err := s.extractColumns(name)
		if err != nil {
			return nil, err
		}

		for _, col := range columns {
			if col.IsPrimaryKey {
				table.PrimaryKeys = append(table.PrimaryKeys, col.Name)
			}
		}
		// A lone INTEGER PRIMARY KEY aliases the rowid and is assigned automatically.
		if len(table.PrimaryKeys) == 1 {
			for i := range columns {
				if columns[i].IsPrimaryKey && strings.EqualFold(columns[i].Type, "INTEGER") {
					columns[i].IsAutoUpdated = true
				}
			}
		}
		table.Columns = columns

		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + quoteIdent(name)).Scan(&table.RowCount); err != nil {
			return nil, err
		}

		tables = append(tables, table)
	}

	return tables, nil
}

func (s *SQLiteExtractor) names(query string) ([]string, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}

	return names, rows.Err()
}

func (s *SQLiteExtractor) extractColumns(tableName string) ([]schema.Column, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(tableName)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var cid int
		var defaultValue sql.NullString
		var notNull int
		var pk int

		if err := rows.Scan(
			&cid,
			&col.Name,
			&col.Type,
			&notNull,
			&defaultValue,
			&pk,
		); err != nil {
			return nil, err
		}

		col.IsNullable = notNull == 0
		col.IsPrimaryKey = pk > 0
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (s *SQLiteExtractor) extractViews(cfg config.SchemaConfig) ([]schema.View, error) {
	query := `
        SELECT name, sql
        FROM sqlite_master
        WHERE type = 'view'
        ORDER BY name
    `

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}

	var views []schema.View
	for rows.Next() {
		var view schema.View
		var definition sql.NullString
		if err := rows.Scan(&view.Name, &definition); err != nil {
			rows.Close()
			return nil, err
		}

		if !included(cfg, view.Name) {
			continue
		}

		view.Schema = "main"
		view.Definition = definition.String
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range views {
		columns, err := s.extractColumns(views[i].Name)
		if err != nil {
			return nil, err
		}
		views[i].Columns = columns
	}

	return views, nil
}

func (s *SQLiteExtractor) extractForeignKeys(cfg config.SchemaConfig, tables []schema.Table) ([]schema.ForeignKey, error) {
	var foreignKeys []schema.ForeignKey
	for _, table := range tables {
		rows, err := s.db.Query(fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(table.Name)))
		if err != nil {
			return nil, err
		}

		for rows.Next() {
			var fk schema.ForeignKey
			var id, seq int
			var referencedColumn sql.NullString
			var onUpdate, onDelete, match string

			if err := rows.Scan(
				&id,
				&seq,
				&fk.ReferencedTable,
				&fk.Column,
				&referencedColumn,
				&onUpdate,
				&onDelete,
				&match,
			); err != nil {
				rows.Close()
				return nil, err
			}

			fk.Name = fmt.Sprintf("fk_%s_%s", table.Name, fk.Column)
			fk.Schema = "main"
			fk.Table = table.Name
			fk.ReferencedSchema = "main"
			fk.ReferencedColumn = referencedColumn.String
			fk.OnUpdate = onUpdate
			fk.OnDelete = onDelete

			if contains(cfg.ExcludeTables, fk.ReferencedTable) {
				continue
			}

			foreignKeys = append(foreignKeys, fk)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return foreignKeys, nil
}

type sqliteIndex struct {
	name    string
	unique  bool
	primary bool
}

func (s *SQLiteExtractor) extractIndexes(tables []schema.Table) ([]schema.Index, error) {
	var indexes []schema.Index
	for _, table := range tables {
		list, err := s.indexList(table.Name)
		if err != nil {
			return nil, err
		}

		for _, il := range list {
			columns, err := s.indexColumns(il.name)
			if err != nil {
				return nil, err
			}
			indexes = append(indexes, schema.Index{
				Name:      il.name,
				Schema:    "main",
				Table:     table.Name,
				Columns:   columns,
				IsUnique:  il.unique,
				IsPrimary: il.primary,
				Type:      "btree",
			})
		}
	}

	return indexes, nil
}

func (s *SQLiteExtractor) indexList(tableName string) ([]sqliteIndex, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA index_list(%s)", quoteIdent(tableName)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []sqliteIndex
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, err
		}
		list = append(list, sqliteIndex{name: name, unique: unique == 1, primary: origin == "pk"})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(list, func(i, j int) bool { return list[i].name < list[j].name })
	return list, nil
}

func (s *SQLiteExtractor) indexColumns(indexName string) ([]string, error) {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA index_info(%s)", quoteIdent(indexName)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		// Expression columns have no name.
		if name.Valid {
			columns = append(columns, name.String)
		}
	}

	return columns, rows.Err()
}

func (s *SQLiteExtractor) extractTriggers(cfg config.SchemaConfig) ([]schema.Trigger, error) {
	query := `
        SELECT name, tbl_name, sql
        FROM sqlite_master
        WHERE type = 'trigger'
        ORDER BY name
    `

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var triggers []schema.Trigger
	for rows.Next() {
		tr := schema.Trigger{Schema: "main"}
		var statement sql.NullString
		if err := rows.Scan(&tr.Name, &tr.Table, &statement); err != nil {
			return nil, err
		}
		if !included(cfg, tr.Table) {
			continue
		}

		tr.Statement = statement.String
		tr.Timing, tr.Event = parseTriggerHead(tr.Statement)
		triggers = append(triggers, tr)
	}

	return triggers, rows.Err()
}

// parseTriggerHead returns the timing and event of a CREATE TRIGGER
// statement. SQLite defaults the timing to BEFORE when it is omitted.
func parseTriggerHead(statement string) (timing, event string) {
	m := triggerHeadRe.FindStringSubmatch(statement)
	if m == nil {
		return "", ""
	}

	timing = strings.Join(strings.Fields(strings.ToUpper(m[1])), " ")
	if timing == "" {
		timing = "BEFORE"
	}
	return timing, strings.ToUpper(m[2])
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
