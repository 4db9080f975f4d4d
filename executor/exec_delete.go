package executor

import (
	"time"
)

// Delete tombstones every matching row version and drops its index entries.
func (e *Executor) Delete(table string, where *Where) Result {
	start := time.Now()

	schema, err := e.catalog.Table(table)
	if err != nil {
		return failf(start, "delete from %q: %v", table, err)
	}
	refs, err := e.matchingRows(schema, where)
	if err != nil {
		return failf(start, "delete from %q: %v", table, err)
	}

	indexes := e.catalog.TableIndexes(table)
	deleted := 0
	for _, ref := range refs {
		if err := e.tombstone(ref.loc); err != nil {
			return failf(start, "delete from %q: %v", table, err)
		}
		for _, idx := range indexes {
			key, err := indexKey(idx, schema, ref.values)
			if err != nil {
				return failf(start, "delete from %q: %v", table, err)
			}
			if err := e.removeIndexEntry(idx.Name, key, ref.loc); err != nil {
				return failf(start, "delete from %q: %v", table, err)
			}
		}
		deleted++
	}
	return okf(start, deleted, "%d row(s) deleted from %q", deleted, table)
}
