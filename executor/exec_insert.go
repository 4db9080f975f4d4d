package executor

import (
	"time"
)

// Insert validates the values against the schema, stores the row in a Data
// page and adds one entry per index defined on the table.
func (e *Executor) Insert(table string, values []any) Result {
	start := time.Now()

	schema, err := e.catalog.Table(table)
	if err != nil {
		return failf(start, "insert into %q: %v", table, err)
	}
	row, err := coerceRow(schema.Columns, values)
	if err != nil {
		return failf(start, "insert into %q: %v", table, err)
	}

	// Unique indexes are checked before anything is written so a rejected
	// insert leaves no partial state behind.
	for _, idx := range e.catalog.TableIndexes(table) {
		if !idx.Unique {
			continue
		}
		key, err := indexKey(idx, schema, row)
		if err != nil {
			return failf(start, "insert into %q: %v", table, err)
		}
		if _, found, err := e.indexes.Search(idx.Name, key); err != nil {
			return failf(start, "insert into %q: %v", table, err)
		} else if found {
			return failf(start, "insert into %q: duplicate key for unique index %q", table, idx.Name)
		}
	}

	payload, err := serializeRow(schema.Columns, row)
	if err != nil {
		return failf(start, "insert into %q: %v", table, err)
	}
	loc, err := e.appendRow(schema, payload)
	if err != nil {
		return failf(start, "insert into %q: %v", table, err)
	}

	for _, idx := range e.catalog.TableIndexes(table) {
		key, err := indexKey(idx, schema, row)
		if err != nil {
			return failf(start, "insert into %q: %v", table, err)
		}
		if err := e.indexes.Insert(idx.Name, key, loc.encode()); err != nil {
			return failf(start, "insert into %q: %v", table, err)
		}
	}
	return okf(start, 1, "1 row inserted into %q", table)
}
