// Package catalog stores table, column and index metadata. It is pure
// bookkeeping: the storage layer and the B+Tree never depend on it, while
// the executor consults it to resolve schemas and decide which columns to
// index.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"pmdb/dberr"
)

type Catalog struct {
	tables   map[string]*TableSchema
	indexes  map[string]*IndexSchema
	tableSeq uint32
	indexSeq uint32
}

func New() *Catalog {
	return &Catalog{
		tables:   make(map[string]*TableSchema),
		indexes:  make(map[string]*IndexSchema),
		tableSeq: 1, // table id 0 means "unassigned" in page headers
		indexSeq: 1,
	}
}

// CreateTable validates and registers a table schema. Columns flagged as
// primary key become the table's PrimaryKey set, and a pk_<table> index
// schema is registered for them automatically.
func (c *Catalog) CreateTable(name string, columns []ColumnSchema) (*TableSchema, error) {
	if _, ok := c.tables[name]; ok {
		return nil, fmt.Errorf("table %q: %w", name, dberr.ErrAlreadyExists)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %q has no columns", name)
	}

	seen := make(map[string]bool, len(columns))
	var pk []string
	for _, col := range columns {
		if col.Name == "" {
			return nil, fmt.Errorf("table %q: empty column name", name)
		}
		if seen[col.Name] {
			return nil, fmt.Errorf("table %q: duplicate column %q", name, col.Name)
		}
		seen[col.Name] = true
		if col.PrimaryKey {
			pk = append(pk, col.Name)
		}
	}

	schema := &TableSchema{
		Name:       name,
		ID:         c.tableSeq,
		Columns:    columns,
		PrimaryKey: pk,
	}
	c.tableSeq++
	c.tables[name] = schema

	if len(pk) > 0 {
		if _, err := c.CreateIndex(IndexSchema{
			Name:    "pk_" + name,
			Table:   name,
			Columns: pk,
			Unique:  true,
		}); err != nil {
			delete(c.tables, name)
			return nil, err
		}
	}
	return schema, nil
}

// DropTable removes a table and every index defined on it.
func (c *Catalog) DropTable(name string) error {
	if _, ok := c.tables[name]; !ok {
		return fmt.Errorf("table %q: %w", name, dberr.ErrNotFound)
	}
	for _, idx := range c.TableIndexes(name) {
		delete(c.indexes, idx.Name)
	}
	delete(c.tables, name)
	return nil
}

// CreateIndex validates the target table and columns, assigns an id, and
// registers the index schema.
func (c *Catalog) CreateIndex(idx IndexSchema) (*IndexSchema, error) {
	if _, ok := c.indexes[idx.Name]; ok {
		return nil, fmt.Errorf("index %q: %w", idx.Name, dberr.ErrAlreadyExists)
	}
	table, ok := c.tables[idx.Table]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", idx.Table, dberr.ErrNotFound)
	}
	if len(idx.Columns) == 0 {
		return nil, fmt.Errorf("index %q has no columns", idx.Name)
	}
	for _, col := range idx.Columns {
		if table.ColumnIndex(col) < 0 {
			return nil, fmt.Errorf("column %q in table %q: %w", col, idx.Table, dberr.ErrNotFound)
		}
	}
	idx.ID = c.indexSeq
	c.indexSeq++
	stored := idx
	c.indexes[idx.Name] = &stored
	return &stored, nil
}

func (c *Catalog) DropIndex(name string) error {
	if _, ok := c.indexes[name]; !ok {
		return fmt.Errorf("index %q: %w", name, dberr.ErrNotFound)
	}
	delete(c.indexes, name)
	return nil
}

func (c *Catalog) Table(name string) (*TableSchema, error) {
	t, ok := c.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %q: %w", name, dberr.ErrNotFound)
	}
	return t, nil
}

func (c *Catalog) Index(name string) (*IndexSchema, error) {
	idx, ok := c.indexes[name]
	if !ok {
		return nil, fmt.Errorf("index %q: %w", name, dberr.ErrNotFound)
	}
	return idx, nil
}

// TableIndexes lists every index defined on the named table.
func (c *Catalog) TableIndexes(table string) []*IndexSchema {
	var out []*IndexSchema
	for _, idx := range c.indexes {
		if idx.Table == table {
			out = append(out, idx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) TableNames() []string {
	out := make([]string, 0, len(c.tables))
	for name := range c.tables {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// snapshot is the JSON shape the catalog persists as.
type snapshot struct {
	Tables   []*TableSchema `json:"tables"`
	Indexes  []*IndexSchema `json:"indexes"`
	TableSeq uint32         `json:"table_seq"`
	IndexSeq uint32         `json:"index_seq"`
}

// Save writes the whole catalog to path as JSON.
func (c *Catalog) Save(path string) error {
	snap := snapshot{TableSeq: c.tableSeq, IndexSeq: c.indexSeq}
	for _, name := range c.TableNames() {
		snap.Tables = append(snap.Tables, c.tables[name])
	}
	for _, t := range snap.Tables {
		snap.Indexes = append(snap.Indexes, c.TableIndexes(t.Name)...)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	return nil
}

// Load replaces the catalog contents with the snapshot at path.
func (c *Catalog) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse catalog: %w", dberr.ErrFormat)
	}
	c.tables = make(map[string]*TableSchema, len(snap.Tables))
	c.indexes = make(map[string]*IndexSchema, len(snap.Indexes))
	for _, t := range snap.Tables {
		c.tables[t.Name] = t
	}
	for _, idx := range snap.Indexes {
		c.indexes[idx.Name] = idx
	}
	c.tableSeq = snap.TableSeq
	c.indexSeq = snap.IndexSeq
	return nil
}
