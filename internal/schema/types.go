package schema

import "time"

type Schema struct {
	Database         string            `json:"database"`
	Tables           []Table           `json:"tables"`
	Views            []View            `json:"views"`
	ForeignKeys      []ForeignKey      `json:"foreign_keys"`
	Indexes          []Index           `json:"indexes"`
	CheckConstraints []CheckConstraint `json:"check_constraints"`
	Routines         []Routine         `json:"routines"`
	Types            []UserType        `json:"types"`
	Triggers         []Trigger         `json:"triggers"`
	GeneratedAt      time.Time         `json:"generated_at"`
}

type Table struct {
	Name        string   `json:"name"`
	Schema      string   `json:"schema"`
	Type        string   `json:"type"`
	Columns     []Column `json:"columns"`
	PrimaryKeys []string `json:"primary_keys"`
	RowCount    int64    `json:"row_count"`
	Comment     string   `json:"comment"`
}

type View struct {
	Name       string   `json:"name"`
	Schema     string   `json:"schema"`
	Definition string   `json:"definition"`
	Columns    []Column `json:"columns"`
	Comment    string   `json:"comment"`
}

type Column struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Length        *int    `json:"length,omitempty"`
	Precision     *int    `json:"precision,omitempty"`
	Scale         *int    `json:"scale,omitempty"`
	IsNullable    bool    `json:"is_nullable"`
	DefaultValue  *string `json:"default_value,omitempty"`
	IsPrimaryKey  bool    `json:"is_primary_key"`
	IsUnique      bool    `json:"is_unique"`
	IsAutoUpdated bool    `json:"is_auto_updated"`
	Comment       string  `json:"comment"`
}

type ForeignKey struct {
	Name             string `json:"name"`
	Schema           string `json:"schema"`
	Table            string `json:"table"`
	Column           string `json:"column"`
	ReferencedSchema string `json:"referenced_schema"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
	OnUpdate         string `json:"on_update"`
	OnDelete         string `json:"on_delete"`
}

// Index is a table index. Type is the access method, e.g. btree.
type Index struct {
	Name      string   `json:"name"`
	Schema    string   `json:"schema"`
	Table     string   `json:"table"`
	Columns   []string `json:"columns"`
	IsUnique  bool     `json:"is_unique"`
	IsPrimary bool     `json:"is_primary"`
	Type      string   `json:"type"`
}

type CheckConstraint struct {
	Name   string `json:"name"`
	Table  string `json:"table"`
	Clause string `json:"clause"`
}

// Routine is a stored function or procedure. Type is reported as the
// database spells it, so "function" and "FUNCTION" both occur.
type Routine struct {
	Name          string `json:"name"`
	Schema        string `json:"schema"`
	Type          string `json:"type"`
	ReturnType    string `json:"return_type"`
	Language      string `json:"language"`
	Definition    string `json:"definition"`
	Deterministic bool   `json:"deterministic"`
	DataAccess    string `json:"data_access"`
	SecurityType  string `json:"security_type"`
	Comment       string `json:"comment"`
}

// UserType is a user-defined type. Kind is the type of type: enum, domain,
// composite or range.
type UserType struct {
	Kind        string `json:"kind"`
	Schema      string `json:"schema"`
	Name        string `json:"name"`
	Definition  string `json:"definition"`
	Description string `json:"description"`
}

type Trigger struct {
	Name      string `json:"name"`
	Schema    string `json:"schema"`
	Table     string `json:"table"`
	Timing    string `json:"timing"`
	Event     string `json:"event"`
	Statement string `json:"statement"`
}
