// Package ddl renders CREATE TABLE statements from a small column model.
//
// Identifiers are emitted as given; defaults are raw SQL expressions. The
// output targets PostgreSQL, which is what the generated INSERT scripts run
// against.
package ddl

import (
	"fmt"
	"strings"
)

// ColumnDef describes one column.
type ColumnDef struct {
	Name       string
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Unique     bool
	// Default is a raw SQL expression, e.g. 'g' or TRUE.
	Default string
}

// TableDef is a table name and its columns in order.
type TableDef struct {
	Name        string
	Columns     []ColumnDef
	IfNotExists bool
}

// CreateTable renders t as
//
//	CREATE TABLE [IF NOT EXISTS] <name> (
//	  <col> <type> [NOT NULL] [DEFAULT <expr>],
//	  ...,
//	  [PRIMARY KEY (<cols>),]
//	  [UNIQUE (<col>), ...]
//	);
//
// Primary key columns are always NOT NULL.
func CreateTable(t TableDef) (string, error) {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}

	lines := make([]string, 0, len(t.Columns)+2)
	var pks, uniques []string
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		col := strings.TrimSpace(c.Name)
		if col == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", name)
		}
		if _, dup := seen[col]; dup {
			return "", fmt.Errorf("ddl: duplicate column %s in table %s", col, name)
		}
		seen[col] = struct{}{}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", col)
		}

		var sb strings.Builder
		sb.WriteString(col)
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		lines = append(lines, sb.String())

		if c.PrimaryKey {
			pks = append(pks, col)
		}
		if c.Unique {
			uniques = append(uniques, col)
		}
	}
	if len(pks) > 0 {
		lines = append(lines, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}
	for _, u := range uniques {
		lines = append(lines, fmt.Sprintf("UNIQUE (%s)", u))
	}

	head := "CREATE TABLE "
	if t.IfNotExists {
		head += "IF NOT EXISTS "
	}
	return fmt.Sprintf("%s%s (\n  %s\n);", head, name, strings.Join(lines, ",\n  ")), nil
}
