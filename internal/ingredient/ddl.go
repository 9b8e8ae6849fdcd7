package ingredient

import (
	"fmt"

	"nutrition/internal/ddl"
)

// IDColumn is the surrogate key the table generates for itself.
const IDColumn = "id"

// TableDef describes table with the Columns layout. The conflict column is
// unique so the generated ON CONFLICT clauses have an index to target.
func TableDef(table string) ddl.TableDef {
	if table == "" {
		table = Table
	}
	def := ddl.TableDef{
		Name:        table,
		IfNotExists: true,
		Columns:     make([]ddl.ColumnDef, 0, len(Columns)+1),
	}
	def.Columns = append(def.Columns, ddl.ColumnDef{Name: IDColumn, SQLType: "BIGSERIAL", PrimaryKey: true})
	for _, c := range Columns {
		def.Columns = append(def.Columns, columnDef(c))
	}
	return def
}

func columnDef(c Column) ddl.ColumnDef {
	d := ddl.ColumnDef{Name: c.Name, Nullable: true, Unique: c.Name == ConflictColumn}
	switch c.Kind {
	case KindString:
		d.SQLType = "TEXT"
		if c.MaxLen > 0 {
			d.SQLType = fmt.Sprintf("VARCHAR(%d)", c.MaxLen)
		}
		d.Nullable = !c.Required
		d.Default = c.Default
	case KindDecimal:
		d.SQLType = "NUMERIC"
		if c.NotNull {
			d.Nullable = false
			d.Default = c.Default
		}
	case KindBool:
		d.SQLType = "BOOLEAN"
		d.Default = "TRUE"
	case KindTextArray:
		d.SQLType = "TEXT[]"
		d.Default = "'{}'"
	}
	return d
}

// CreateTableSQL renders the CREATE TABLE IF NOT EXISTS statement for table.
func CreateTableSQL(table string) (string, error) {
	return ddl.CreateTable(TableDef(table))
}
