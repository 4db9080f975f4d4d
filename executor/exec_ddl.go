package executor

import (
	"time"

	"pmdb/catalog"
)

// CreateTable registers the schema and, when a primary key is declared,
// opens its pk_<table> B+Tree.
func (e *Executor) CreateTable(name string, columns []catalog.ColumnSchema) Result {
	start := time.Now()

	for _, col := range columns {
		if col.PrimaryKey && !indexableType(col.Type) {
			return failf(start, "primary key column %q has non-indexable type %s", col.Name, col.Type)
		}
	}

	schema, err := e.catalog.CreateTable(name, columns)
	if err != nil {
		return failf(start, "create table %q: %v", name, err)
	}
	e.tables[name] = &tableStorage{}

	if len(schema.PrimaryKey) > 0 {
		if err := e.indexes.Create("pk_" + name); err != nil {
			_ = e.catalog.DropTable(name)
			delete(e.tables, name)
			return failf(start, "create table %q: %v", name, err)
		}
	}
	return okf(start, 0, "table %q created", name)
}

// DropTable removes the table's schema, its indexes and its trees. The Data
// pages stay allocated in the file; with no free list they are simply
// abandoned.
func (e *Executor) DropTable(name string) Result {
	start := time.Now()

	for _, idx := range e.catalog.TableIndexes(name) {
		_ = e.indexes.Drop(idx.Name)
	}
	if err := e.catalog.DropTable(name); err != nil {
		return failf(start, "drop table %q: %v", name, err)
	}
	delete(e.tables, name)
	return okf(start, 0, "table %q dropped", name)
}

// CreateIndex registers and builds a secondary index, backfilling it from
// the rows already stored.
func (e *Executor) CreateIndex(name, table string, columns []string, unique bool) Result {
	start := time.Now()

	schema, err := e.catalog.Table(table)
	if err != nil {
		return failf(start, "create index %q: %v", name, err)
	}
	for _, col := range columns {
		c := schema.Column(col)
		if c == nil {
			return failf(start, "create index %q: unknown column %q", name, col)
		}
		if !indexableType(c.Type) {
			return failf(start, "create index %q: column %q has non-indexable type %s", name, col, c.Type)
		}
	}

	idx, err := e.catalog.CreateIndex(catalog.IndexSchema{
		Name:    name,
		Table:   table,
		Columns: columns,
		Unique:  unique,
	})
	if err != nil {
		return failf(start, "create index %q: %v", name, err)
	}
	if err := e.indexes.Create(name); err != nil {
		_ = e.catalog.DropIndex(name)
		return failf(start, "create index %q: %v", name, err)
	}

	rows, err := e.scanRows(schema)
	if err != nil {
		return failf(start, "create index %q: backfill scan: %v", name, err)
	}
	for _, row := range rows {
		key, err := indexKey(idx, schema, row.values)
		if err != nil {
			return failf(start, "create index %q: %v", name, err)
		}
		if err := e.indexes.Insert(name, key, row.loc.encode()); err != nil {
			return failf(start, "create index %q: %v", name, err)
		}
	}
	return okf(start, 0, "index %q created on %q", name, table)
}

func (e *Executor) DropIndex(name string) Result {
	start := time.Now()

	if err := e.catalog.DropIndex(name); err != nil {
		return failf(start, "drop index %q: %v", name, err)
	}
	_ = e.indexes.Drop(name)
	return okf(start, 0, "index %q dropped", name)
}
