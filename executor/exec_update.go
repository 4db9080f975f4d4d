package executor

import (
	"bytes"
	"fmt"
	"time"

	"pmdb/catalog"
)

// pendingUpdate pairs a matched row with its rewritten values.
type pendingUpdate struct {
	ref       rowRef
	newValues []any
}

// Update rewrites every matching row: the old version is tombstoned, the
// new version appended, and each index entry is repointed at the new
// locator. Unique indexes are probed before any write, same as Insert, so
// a rejected update leaves every row version untouched.
func (e *Executor) Update(table string, set map[string]any, where *Where) Result {
	start := time.Now()

	schema, err := e.catalog.Table(table)
	if err != nil {
		return failf(start, "update %q: %v", table, err)
	}
	if len(set) == 0 {
		return failf(start, "update %q: no columns to set", table)
	}
	for col := range set {
		if schema.ColumnIndex(col) < 0 {
			return failf(start, "update %q: unknown column %q", table, col)
		}
	}

	refs, err := e.matchingRows(schema, where)
	if err != nil {
		return failf(start, "update %q: %v", table, err)
	}

	pending := make([]pendingUpdate, 0, len(refs))
	for _, ref := range refs {
		newValues := make([]any, len(ref.values))
		copy(newValues, ref.values)
		for col, v := range set {
			ci := schema.ColumnIndex(col)
			cv, err := coerceValue(v, schema.Columns[ci])
			if err != nil {
				return failf(start, "update %q: column %s: %v", table, col, err)
			}
			newValues[ci] = cv
		}
		pending = append(pending, pendingUpdate{ref: ref, newValues: newValues})
	}

	indexes := e.catalog.TableIndexes(table)
	if err := e.uniqueUpdateConflict(schema, indexes, pending); err != nil {
		return failf(start, "update %q: %v", table, err)
	}

	updated := 0
	for _, p := range pending {
		payload, err := serializeRow(schema.Columns, p.newValues)
		if err != nil {
			return failf(start, "update %q: %v", table, err)
		}
		if err := e.tombstone(p.ref.loc); err != nil {
			return failf(start, "update %q: %v", table, err)
		}
		loc, err := e.appendRow(schema, payload)
		if err != nil {
			return failf(start, "update %q: %v", table, err)
		}

		for _, idx := range indexes {
			oldKey, err := indexKey(idx, schema, p.ref.values)
			if err != nil {
				return failf(start, "update %q: %v", table, err)
			}
			if err := e.removeIndexEntry(idx.Name, oldKey, p.ref.loc); err != nil {
				return failf(start, "update %q: %v", table, err)
			}
			newKey, err := indexKey(idx, schema, p.newValues)
			if err != nil {
				return failf(start, "update %q: %v", table, err)
			}
			if err := e.indexes.Insert(idx.Name, newKey, loc.encode()); err != nil {
				return failf(start, "update %q: %v", table, err)
			}
		}
		updated++
	}
	return okf(start, updated, "%d row(s) updated in %q", updated, table)
}

// uniqueUpdateConflict checks the post-update keys of every unique index.
// A key that stays on its own row is fine; a key moving onto an existing
// entry, or two rows of the same statement landing on one key, is a
// conflict. An entry another pending row is about to vacate still counts
// as occupied.
func (e *Executor) uniqueUpdateConflict(schema *catalog.TableSchema, indexes []*catalog.IndexSchema, pending []pendingUpdate) error {
	seen := make(map[string]bool)
	for _, p := range pending {
		for _, idx := range indexes {
			if !idx.Unique {
				continue
			}
			oldKey, err := indexKey(idx, schema, p.ref.values)
			if err != nil {
				return err
			}
			newKey, err := indexKey(idx, schema, p.newValues)
			if err != nil {
				return err
			}
			oldEnc, err := oldKey.Encode()
			if err != nil {
				return err
			}
			newEnc, err := newKey.Encode()
			if err != nil {
				return err
			}
			if bytes.Equal(oldEnc, newEnc) {
				continue
			}
			if _, found, err := e.indexes.Search(idx.Name, newKey); err != nil {
				return err
			} else if found {
				return fmt.Errorf("duplicate key for unique index %q", idx.Name)
			}
			sig := idx.Name + "\x00" + string(newEnc)
			if seen[sig] {
				return fmt.Errorf("duplicate key for unique index %q", idx.Name)
			}
			seen[sig] = true
		}
	}
	return nil
}
