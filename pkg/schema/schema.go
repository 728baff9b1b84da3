// pkg/schema/schema.go
package schema

import (
	"errors"
	"fmt"

	"shelfdb/pkg/types"
)

var (
	ErrTableExists    = errors.New("table already exists")
	ErrTableNotFound  = errors.New("table not found")
	ErrColumnNotFound = errors.New("column not found")

	ErrNotNullViolation    = errors.New("NOT NULL constraint violation")
	ErrUniqueViolation     = errors.New("UNIQUE constraint violation")
	ErrPrimaryKeyViolation = errors.New("PRIMARY KEY constraint violation")
	ErrForeignKeyViolation = errors.New("FOREIGN KEY constraint violation")
)

// ForeignKeyRef names the table and column a FOREIGN KEY points at
// (spec.md §3: "an optional foreign-key reference (target table + target
// column)").
type ForeignKeyRef struct {
	Table  string
	Column string
}

// Column describes one column of a table schema (spec.md §3): its name,
// declared type, and flags.
type Column struct {
	Name       string
	Type       types.ColumnType
	PrimaryKey bool
	NotNull    bool
	Unique     bool
	References *ForeignKeyRef // nil when the column has no REFERENCES clause
}

// EffectiveNotNull reports whether the column must never hold NULL — either
// declared NOT NULL directly, or implied by PRIMARY KEY (spec.md §4.3.1: "a
// PRIMARY KEY column implicitly becomes NOT NULL and UNIQUE").
func (c *Column) EffectiveNotNull() bool {
	return c.NotNull || c.PrimaryKey
}

// EffectiveUnique reports whether duplicate non-null values in this column
// are rejected — either declared UNIQUE, the PRIMARY KEY, or implied by it.
func (c *Column) EffectiveUnique() bool {
	return c.Unique || c.PrimaryKey
}

// Table is the schema of one table: its ordered column list and the
// derived primary-key/foreign-key sets (spec.md §3).
type Table struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the schema's column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column looks up a column by case-insensitive name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if equalFold(t.Columns[i].Name, name) {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// PrimaryKey returns the table's single primary-key column, if any. Composite
// primary keys are out of scope (spec.md §3).
func (t *Table) PrimaryKey() (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].PrimaryKey {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// ForeignKeys returns every column in the table that declares a REFERENCES
// target.
func (t *Table) ForeignKeys() []*Column {
	var fks []*Column
	for i := range t.Columns {
		if t.Columns[i].References != nil {
			fks = append(fks, &t.Columns[i])
		}
	}
	return fks
}

// Validate checks the schema-level invariants of spec.md §4.3.1: at most one
// PRIMARY KEY column, and every column name unique. FOREIGN KEY target
// validation requires the catalog and is done by the caller (executor).
func (t *Table) Validate() error {
	seen := make(map[string]bool, len(t.Columns))
	pkCount := 0
	for _, c := range t.Columns {
		lower := lowerFold(c.Name)
		if seen[lower] {
			return fmt.Errorf("duplicate column %q", c.Name)
		}
		seen[lower] = true
		if c.PrimaryKey {
			pkCount++
		}
	}
	if pkCount > 1 {
		return fmt.Errorf("at most one PRIMARY KEY column is allowed, got %d", pkCount)
	}
	return nil
}

func equalFold(a, b string) bool { return lowerFold(a) == lowerFold(b) }

func lowerFold(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
