package database

import (
	"database/sql"
	"dbdocs/internal/schema"
	"dbdocs/pkg/config"
	"fmt"
	"strings"
	"time"
)

type PostgreSQLExtractor struct {
	db *sql.DB
}

func (p *PostgreSQLExtractor) ExtractSchema(cfg config.SchemaConfig) (*schema.Schema, error) {
	s := &schema.Schema{
		Database:    "postgresql",
		GeneratedAt: time.Now(),
	}

	tables, err := p.extractTables(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to extract tables: %w", err)
	}
	s.Tables = tables

	if cfg.IncludeViews {
		views, err := p.extractViews(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to extract views: %w", err)
		}
		s.Views = views
	}

	foreignKeys, err := p.extractForeignKeys(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to extract foreign keys: %w", err)
	}
	s.ForeignKeys = foreignKeys

	s.Indexes = optional("indexes", func() ([]schema.Index, error) {
		return p.extractIndexes(cfg)
	})
	markUnique(s.Tables, s.Indexes)

	s.CheckConstraints = optional("check constraints", func() ([]schema.CheckConstraint, error) {
		return p.extractCheckConstraints(cfg)
	})
	s.Routines = optional("routines", p.extractRoutines)
	s.Types = optional("types", p.extractTypes)
	s.Triggers = optional("triggers", func() ([]schema.Trigger, error) {
		return p.extractTriggers(cfg)
	})

	return s, nil
}

func (p *PostgreSQLExtractor) extractTables(cfg config.SchemaConfig) ([]schema.Table, error) {
	query := `
        SELECT t.table_name, t.table_type,
            COALESCE(obj_description(c.oid), '') as comment,
            GREATEST(COALESCE(c.reltuples, 0), 0)::bigint as row_count
        FROM information_schema.tables t
        LEFT JOIN pg_class c
            ON c.relname = t.table_name
            AND c.relnamespace = 'public'::regnamespace
        WHERE t.table_schema = 'public' AND t.table_type = 'BASE TABLE'
        ORDER BY t.table_name
    `

	rows, err := p.db.Query(query)
	if err != nil {
		return nil, err
	}

	var tables []schema.Table
	for rows.Next() {
		var table schema.Table
		if err := rows.Scan(&table.Name, &table.Type, &table.Comment, &table.RowCount); err != nil {
			rows.Close()
			return nil, err
		}

		if !included(cfg, table.Name) {
			continue
		}

		table.Schema = "public"
		tables = append(tables, table)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range tables {
		columns, err := p.extractColumns(tables[i].Name)
		if err != nil {
			return nil, err
		}

		primaryKeys, err := p.extractPrimaryKeys(tables[i].Name)
		if err != nil {
			return nil, err
		}

		for j := range columns {
			columns[j].IsPrimaryKey = contains(primaryKeys, columns[j].Name)
		}
		tables[i].Columns = columns
		tables[i].PrimaryKeys = primaryKeys
	}

	return tables, nil
}

func (p *PostgreSQLExtractor) extractColumns(tableName string) ([]schema.Column, error) {
	query := `
        SELECT
            c.column_name,
            c.data_type,
            c.character_maximum_length,
            c.numeric_precision,
            c.numeric_scale,
            c.is_nullable = 'YES' as is_nullable,
            c.column_default,
            (c.is_identity = 'YES' OR COALESCE(c.column_default, '') LIKE 'nextval(%') as is_auto_updated,
            COALESCE(col_description(pgc.oid, c.ordinal_position), '') as comment
        FROM information_schema.columns c
        LEFT JOIN pg_class pgc
            ON pgc.relname = c.table_name
            AND pgc.relnamespace = 'public'::regnamespace
        WHERE c.table_schema = 'public' AND c.table_name = $1
        ORDER BY c.ordinal_position
    `

	rows, err := p.db.Query(query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var col schema.Column
		var length, precision, scale sql.NullInt64
		var defaultValue sql.NullString

		if err := rows.Scan(
			&col.Name,
			&col.Type,
			&length,
			&precision,
			&scale,
			&col.IsNullable,
			&defaultValue,
			&col.IsAutoUpdated,
			&col.Comment,
		); err != nil {
			return nil, err
		}

		if length.Valid {
			l := int(length.Int64)
			col.Length = &l
		}
		if precision.Valid {
			p := int(precision.Int64)
			col.Precision = &p
		}
		if scale.Valid {
			s := int(scale.Int64)
			col.Scale = &s
		}
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}

		columns = append(columns, col)
	}

	return columns, rows.Err()
}

func (p *PostgreSQLExtractor) extractPrimaryKeys(tableName string) ([]string, error) {
	query := `
        SELECT kcu.column_name
        FROM information_schema.table_constraints tc
        JOIN information_schema.key_column_usage kcu
            ON tc.constraint_name = kcu.constraint_name
        WHERE tc.table_schema = 'public'
            AND tc.table_name = $1
            AND tc.constraint_type = 'PRIMARY KEY'
        ORDER BY kcu.ordinal_position
    `

	rows, err := p.db.Query(query, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var primaryKeys []string
	for rows.Next() {
		var columnName string
		if err := rows.Scan(&columnName); err != nil {
			return nil, err
		}
		primaryKeys = append(primaryKeys, columnName)
	}

	return primaryKeys, rows.Err()
}

func (p *PostgreSQLExtractor) extractViews(cfg config.SchemaConfig) ([]schema.View, error) {
	query := `
        SELECT table_name, COALESCE(view_definition, '')
        FROM information_schema.views
        WHERE table_schema = 'public'
        ORDER BY table_name
    `

	rows, err := p.db.Query(query)
	if err != nil {
		return nil, err
	}

	var views []schema.View
	for rows.Next() {
		var view schema.View
		if err := rows.Scan(&view.Name, &view.Definition); err != nil {
			rows.Close()
			return nil, err
		}

		if !included(cfg, view.Name) {
			continue
		}

		view.Schema = "public"
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range views {
		columns, err := p.extractColumns(views[i].Name)
		if err != nil {
			return nil, err
		}
		views[i].Columns = columns
	}

	return views, nil
}

func (p *PostgreSQLExtractor) extractForeignKeys(cfg config.SchemaConfig) ([]schema.ForeignKey, error) {
	query := `
        SELECT
            tc.constraint_name,
            tc.table_name,
            kcu.column_name,
            ccu.table_schema AS foreign_table_schema,
            ccu.table_name AS foreign_table_name,
            ccu.column_name AS foreign_column_name,
            rc.update_rule,
            rc.delete_rule
        FROM information_schema.table_constraints AS tc
        JOIN information_schema.key_column_usage AS kcu
            ON tc.constraint_name = kcu.constraint_name
        JOIN information_schema.constraint_column_usage AS ccu
            ON ccu.constraint_name = tc.constraint_name
        JOIN information_schema.referential_constraints AS rc
            ON rc.constraint_name = tc.constraint_name
        WHERE tc.constraint_type = 'FOREIGN KEY'
            AND tc.table_schema = 'public'
    `

	rows, err := p.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var foreignKeys []schema.ForeignKey
	for rows.Next() {
		var fk schema.ForeignKey
		if err := rows.Scan(
			&fk.Name,
			&fk.Table,
			&fk.Column,
			&fk.ReferencedSchema,
			&fk.ReferencedTable,
			&fk.ReferencedColumn,
			&fk.OnUpdate,
			&fk.OnDelete,
		); err != nil {
			return nil, err
		}
		fk.Schema = "public"

		if len(cfg.IncludeTables) > 0 && !contains(cfg.IncludeTables, fk.Table) && !contains(cfg.IncludeTables, fk.ReferencedTable) {
			continue
		}
		if contains(cfg.ExcludeTables, fk.Table) || contains(cfg.ExcludeTables, fk.ReferencedTable) {
			continue
		}

		foreignKeys = append(foreignKeys, fk)
	}

	return foreignKeys, rows.Err()
}

func (p *PostgreSQLExtractor) extractIndexes(cfg config.SchemaConfig) ([]schema.Index, error) {
	query := `
        SELECT
            i.relname AS index_name,
            t.relname AS table_name,
            array_to_string(ARRAY(
                SELECT a.attname
                FROM unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord)
                JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
                ORDER BY k.ord
            ), ',') AS columns,
            ix.indisunique,
            ix.indisprimary,
            am.amname
        FROM pg_index ix
        JOIN pg_class t ON t.oid = ix.indrelid
        JOIN pg_class i ON i.oid = ix.indexrelid
        JOIN pg_am am ON am.oid = i.relam
        WHERE t.relnamespace = 'public'::regnamespace
            AND t.relkind = 'r'
        ORDER BY t.relname, i.relname
    `

	rows, err := p.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		idx := schema.Index{Schema: "public"}
		var columns string
		if err := rows.Scan(&idx.Name, &idx.Table, &columns, &idx.IsUnique, &idx.IsPrimary, &idx.Type); err != nil {
			return nil, err
		}
		if !included(cfg, idx.Table) {
			continue
		}

		// Expression-only indexes have no attribute columns.
		for _, c := range strings.Split(columns, ",") {
			if c != "" {
				idx.Columns = append(idx.Columns, c)
			}
		}
		indexes = append(indexes, idx)
	}

	return indexes, rows.Err()
}

func (p *PostgreSQLExtractor) extractCheckConstraints(cfg config.SchemaConfig) ([]schema.CheckConstraint, error) {
	// NOT NULL columns show up as CHECK constraints in information_schema.
	query := `
        SELECT tc.table_name, tc.constraint_name, cc.check_clause
        FROM information_schema.table_constraints tc
        JOIN information_schema.check_constraints cc
            ON cc.constraint_name = tc.constraint_name
            AND cc.constraint_schema = tc.constraint_schema
        WHERE tc.table_schema = 'public'
            AND tc.constraint_type = 'CHECK'
            AND cc.check_clause NOT LIKE '%IS NOT NULL'
        ORDER BY tc.table_name, tc.constraint_name
    `

	rows, err := p.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []schema.CheckConstraint
	for rows.Next() {
		var check schema.CheckConstraint
		if err := rows.Scan(&check.Table, &check.Name, &check.Clause); err != nil {
			return nil, err
		}
		if !included(cfg, check.Table) {
			continue
		}
		checks = append(checks, check)
	}

	return checks, rows.Err()
}

func (p *PostgreSQLExtractor) extractRoutines() ([]schema.Routine, error) {
	query := `
        SELECT
            r.routine_name,
            COALESCE(r.routine_type, ''),
            COALESCE(r.data_type, ''),
            COALESCE(r.external_language, ''),
            COALESCE(r.routine_definition, ''),
            r.is_deterministic = 'YES',
            COALESCE(r.sql_data_access, ''),
            COALESCE(r.security_type, ''),
            COALESCE(obj_description(p.oid, 'pg_proc'), '')
        FROM information_schema.routines r
        LEFT JOIN pg_proc p ON r.specific_name = p.proname || '_' || p.oid
        WHERE r.routine_schema = 'public'
        ORDER BY r.routine_name
    `

	rows, err := p.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routines []schema.Routine
	for rows.Next() {
		r := schema.Routine{Schema: "public"}
		if err := rows.Scan(
			&r.Name,
			&r.Type,
			&r.ReturnType,
			&r.Language,
			&r.Definition,
			&r.Deterministic,
			&r.DataAccess,
			&r.SecurityType,
			&r.Comment,
		); err != nil {
			return nil, err
		}
		routines = append(routines, r)
	}

	return routines, rows.Err()
}

func (p *PostgreSQLExtractor) extractTypes() ([]schema.UserType, error) {
	// Composite types backing tables and views are left out (relkind 'c' only).
	query := `
        SELECT
            CASE t.typtype
                WHEN 'e' THEN 'enum'
                WHEN 'd' THEN 'domain'
                WHEN 'c' THEN 'composite'
                WHEN 'r' THEN 'range'
                ELSE t.typtype::text
            END,
            n.nspname,
            t.typname,
            CASE t.typtype
                WHEN 'e' THEN (SELECT string_agg(e.enumlabel, ', ' ORDER BY e.enumsortorder) FROM pg_enum e WHERE e.enumtypid = t.oid)
                WHEN 'd' THEN format_type(t.typbasetype, t.typtypmod)
                ELSE ''
            END,
            COALESCE(obj_description(t.oid, 'pg_type'), '')
        FROM pg_type t
        JOIN pg_namespace n ON n.oid = t.typnamespace
        LEFT JOIN pg_class c ON c.oid = t.typrelid
        WHERE n.nspname = 'public'
            AND t.typtype IN ('e', 'd', 'c', 'r')
            AND (t.typrelid = 0 OR c.relkind = 'c')
        ORDER BY t.typname
    `

	rows, err := p.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []schema.UserType
	for rows.Next() {
		var typ schema.UserType
		var definition sql.NullString
		if err := rows.Scan(&typ.Kind, &typ.Schema, &typ.Name, &definition, &typ.Description); err != nil {
			return nil, err
		}
		typ.Definition = definition.String
		types = append(types, typ)
	}

	return types, rows.Err()
}

func (p *PostgreSQLExtractor) extractTriggers(cfg config.SchemaConfig) ([]schema.Trigger, error) {
	// information_schema.triggers has one row per event.
	query := `
        SELECT
            trigger_schema,
            trigger_name,
            event_object_table,
            action_timing,
            string_agg(event_manipulation, ' OR ' ORDER BY event_manipulation),
            action_statement
        FROM information_schema.triggers
        WHERE trigger_schema = 'public'
        GROUP BY trigger_schema, trigger_name, event_object_table, action_timing, action_statement
        ORDER BY trigger_name
    `

	rows, err := p.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var triggers []schema.Trigger
	for rows.Next() {
		var tr schema.Trigger
		if err := rows.Scan(&tr.Schema, &tr.Name, &tr.Table, &tr.Timing, &tr.Event, &tr.Statement); err != nil {
			return nil, err
		}
		if !included(cfg, tr.Table) {
			continue
		}
		triggers = append(triggers, tr)
	}

	return triggers, rows.Err()
}
