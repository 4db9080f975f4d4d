package catalog

// DataType enumerates the column types the engine stores.
type DataType string

const (
	TypeInteger DataType = "INTEGER"
	TypeBigint  DataType = "BIGINT"
	TypeVarchar DataType = "VARCHAR"
	TypeText    DataType = "TEXT"
	TypeFloat   DataType = "FLOAT"
	TypeDouble  DataType = "DOUBLE"
	TypeBoolean DataType = "BOOLEAN"
)

// ColumnSchema describes one column of a table.
type ColumnSchema struct {
	Name       string   `json:"name"`
	Type       DataType `json:"type"`
	Length     int      `json:"length,omitempty"` // VARCHAR only
	NotNull    bool     `json:"not_null,omitempty"`
	PrimaryKey bool     `json:"primary_key,omitempty"`
	Unique     bool     `json:"unique,omitempty"`
}

// TableSchema describes a table: its ordered columns and the column names
// forming the primary key, in declaration order.
type TableSchema struct {
	Name       string         `json:"name"`
	ID         uint32         `json:"id"`
	Columns    []ColumnSchema `json:"columns"`
	PrimaryKey []string       `json:"primary_key,omitempty"`
}

// ColumnIndex returns the position of the named column, or -1.
func (t *TableSchema) ColumnIndex(name string) int {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return i
		}
	}
	return -1
}

// Column returns the named column's schema, or nil.
func (t *TableSchema) Column(name string) *ColumnSchema {
	if i := t.ColumnIndex(name); i >= 0 {
		return &t.Columns[i]
	}
	return nil
}

// ColumnNames lists the column names in declaration order.
func (t *TableSchema) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i := range t.Columns {
		out[i] = t.Columns[i].Name
	}
	return out
}

// IndexSchema describes a secondary or primary-key index.
type IndexSchema struct {
	Name    string   `json:"name"`
	ID      uint32   `json:"id"`
	Table   string   `json:"table"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique,omitempty"`
}
