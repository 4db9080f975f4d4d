package executor

import (
	"errors"
	"fmt"
	"time"

	bplus "pmdb/bplustree"
	"pmdb/catalog"
	"pmdb/dberr"
)

// Select returns the matching rows, projected onto the requested columns.
// A nil or ["*"] column list selects every column; limit <= 0 means no limit.
func (e *Executor) Select(table string, columns []string, where *Where, limit int) Result {
	start := time.Now()

	schema, err := e.catalog.Table(table)
	if err != nil {
		return failf(start, "select from %q: %v", table, err)
	}

	proj, err := resolveProjection(schema, columns)
	if err != nil {
		return failf(start, "select from %q: %v", table, err)
	}

	refs, err := e.matchingRows(schema, where)
	if err != nil {
		return failf(start, "select from %q: %v", table, err)
	}

	names := make([]string, len(proj))
	for i, ci := range proj {
		names[i] = schema.Columns[ci].Name
	}
	var rows [][]any
	for _, ref := range refs {
		if limit > 0 && len(rows) >= limit {
			break
		}
		row := make([]any, len(proj))
		for i, ci := range proj {
			row[i] = ref.values[ci]
		}
		rows = append(rows, row)
	}

	return Result{
		Success: true,
		Message: "ok",
		Columns: names,
		Rows:    rows,
		Elapsed: time.Since(start),
	}
}

func resolveProjection(schema *catalog.TableSchema, columns []string) ([]int, error) {
	if len(columns) == 0 || (len(columns) == 1 && columns[0] == "*") {
		out := make([]int, len(schema.Columns))
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	out := make([]int, len(columns))
	for i, name := range columns {
		ci := schema.ColumnIndex(name)
		if ci < 0 {
			return nil, fmt.Errorf("unknown column %q: %w", name, dberr.ErrNotFound)
		}
		out[i] = ci
	}
	return out, nil
}

// matchingRows resolves the predicate to row references. Equality and
// range predicates on a single-column index go through the B+Tree; OpNe
// and unindexed columns fall back to a full page scan with per-row
// evaluation.
func (e *Executor) matchingRows(schema *catalog.TableSchema, where *Where) ([]rowRef, error) {
	if where == nil {
		return e.scanRows(schema)
	}

	if idx := e.singleColumnIndex(schema, where.Column); idx != nil {
		switch where.Op {
		case OpEq:
			return e.rowsByIndex(schema, idx, where.Value)
		case OpLt, OpLe, OpGt, OpGe:
			return e.rowsByIndexRange(schema, idx, where.Op, where.Value)
		}
	}

	all, err := e.scanRows(schema)
	if err != nil {
		return nil, err
	}
	var out []rowRef
	for _, ref := range all {
		ok, err := where.match(schema, ref.values)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, ref)
		}
	}
	return out, nil
}

func (e *Executor) singleColumnIndex(schema *catalog.TableSchema, column string) *catalog.IndexSchema {
	for _, idx := range e.catalog.TableIndexes(schema.Name) {
		if len(idx.Columns) == 1 && idx.Columns[0] == column {
			return idx
		}
	}
	return nil
}

// rowsByIndex resolves an equality lookup through the index: every locator
// stored under the key is followed, skipping tombstoned row versions.
func (e *Executor) rowsByIndex(schema *catalog.TableSchema, idx *catalog.IndexSchema, value any) ([]rowRef, error) {
	ci := schema.ColumnIndex(idx.Columns[0])
	want, err := coerceValue(value, schema.Columns[ci])
	if err != nil {
		return nil, err
	}
	key, err := keyFromValue(want)
	if err != nil {
		return nil, err
	}
	tree, err := e.indexes.Tree(idx.Name)
	if err != nil {
		return nil, err
	}
	vals, err := equalRange(tree, key)
	if err != nil {
		return nil, err
	}
	return e.refsFromLocators(schema, vals)
}

// rowsByIndexRange resolves a range predicate through the index's leaf
// chain, in key order. Bounds are half-open over the encoded key space;
// inclusive ends extend the bound to the key's successor, and a nil bound
// leaves that side unbounded.
func (e *Executor) rowsByIndexRange(schema *catalog.TableSchema, idx *catalog.IndexSchema, op CompareOp, value any) ([]rowRef, error) {
	ci := schema.ColumnIndex(idx.Columns[0])
	want, err := coerceValue(value, schema.Columns[ci])
	if err != nil {
		return nil, err
	}
	key, err := keyFromValue(want)
	if err != nil {
		return nil, err
	}
	enc, err := key.Encode()
	if err != nil {
		return nil, err
	}

	var start, end []byte
	switch op {
	case OpLt:
		end = enc
	case OpLe:
		end = succ(enc)
	case OpGt:
		start = succ(enc)
	case OpGe:
		start = enc
	default:
		return nil, fmt.Errorf("operator %d cannot use an index range", op)
	}

	tree, err := e.indexes.Tree(idx.Name)
	if err != nil {
		return nil, err
	}
	it, err := tree.RangeSearch(bplus.BytesKey(start), bplus.BytesKey(end))
	if err != nil {
		return nil, err
	}
	return e.refsFromLocators(schema, it.Values())
}

// refsFromLocators follows index values to live row versions, skipping
// entries that point at tombstones.
func (e *Executor) refsFromLocators(schema *catalog.TableSchema, vals [][]byte) ([]rowRef, error) {
	var out []rowRef
	for _, v := range vals {
		loc, err := decodeLocator(v)
		if err != nil {
			return nil, err
		}
		values, err := e.readRow(schema, loc)
		if err != nil {
			if errors.Is(err, dberr.ErrNotFound) {
				continue // stale entry pointing at a tombstone
			}
			return nil, err
		}
		out = append(out, rowRef{loc: loc, values: values})
	}
	return out, nil
}
