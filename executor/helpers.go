package executor

import (
	"fmt"
	"strings"

	bplus "pmdb/bplustree"
	"pmdb/catalog"
	"pmdb/dberr"
)

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n == float64(int64(n)) {
			return int64(n), nil
		}
		return 0, fmt.Errorf("%v is not an integer", n)
	default:
		return 0, fmt.Errorf("cannot use %T as integer", v)
	}
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case float64:
		return n, nil
	default:
		return 0, fmt.Errorf("cannot use %T as float", v)
	}
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		switch strings.ToLower(b) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
	}
	return false, fmt.Errorf("cannot use %T as boolean", v)
}

func toString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", fmt.Errorf("cannot use %T as string", v)
	}
}

// coerceRow converts raw statement values into the column's canonical Go
// representation (int64, float64, bool, string), validating counts and types.
func coerceRow(cols []catalog.ColumnSchema, values []any) ([]any, error) {
	if len(values) != len(cols) {
		return nil, fmt.Errorf("expected %d values, got %d", len(cols), len(values))
	}
	out := make([]any, len(values))
	for i, col := range cols {
		v, err := coerceValue(values[i], col)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		out[i] = v
	}
	return out, nil
}

func coerceValue(v any, col catalog.ColumnSchema) (any, error) {
	switch col.Type {
	case catalog.TypeInteger, catalog.TypeBigint:
		return toInt64(v)
	case catalog.TypeFloat, catalog.TypeDouble:
		return toFloat64(v)
	case catalog.TypeBoolean:
		return toBool(v)
	case catalog.TypeVarchar, catalog.TypeText:
		return toString(v)
	}
	return nil, fmt.Errorf("unknown column type %s", col.Type)
}

// indexableType reports whether a column can serve as an index key under the
// key serialization contract (integers and text only).
func indexableType(t catalog.DataType) bool {
	switch t {
	case catalog.TypeInteger, catalog.TypeBigint, catalog.TypeVarchar, catalog.TypeText:
		return true
	}
	return false
}

// signedKey maps an int64 onto the unsigned key space preserving order:
// flipping the sign bit turns two's complement into offset binary, so
// negative values sort below zero in the encoded form.
func signedKey(v int64) bplus.Key {
	return bplus.IntKey(uint64(v) ^ (1 << 63))
}

// keyFromValue maps a canonical column value onto the closed key variant.
func keyFromValue(v any) (bplus.Key, error) {
	switch k := v.(type) {
	case int64:
		return signedKey(k), nil
	case string:
		return bplus.TextKey(k), nil
	case []byte:
		return bplus.BytesKey(k), nil
	default:
		return bplus.Key{}, fmt.Errorf("key value %T: %w", v, dberr.ErrUnsupportedKeyType)
	}
}

// indexKey builds the key for one row under an index schema. Multi-column
// indexes concatenate the per-column encodings; integer components keep
// their fixed 8-byte big-endian width, so composite ordering groups by the
// leading column.
func indexKey(idx *catalog.IndexSchema, schema *catalog.TableSchema, values []any) (bplus.Key, error) {
	if len(idx.Columns) == 1 {
		return keyFromValue(values[schema.ColumnIndex(idx.Columns[0])])
	}
	var joined []byte
	for _, col := range idx.Columns {
		k, err := keyFromValue(values[schema.ColumnIndex(col)])
		if err != nil {
			return bplus.Key{}, err
		}
		enc, err := k.Encode()
		if err != nil {
			return bplus.Key{}, err
		}
		joined = append(joined, enc...)
	}
	return bplus.BytesKey(joined), nil
}

// compareValues orders two canonical values of the same column. Numeric
// kinds compare across int64/float64.
func compareValues(a, b any) (int, error) {
	switch av := a.(type) {
	case int64:
		switch bv := b.(type) {
		case int64:
			return cmpInt(av, bv), nil
		case float64:
			return cmpFloat(float64(av), bv), nil
		}
	case float64:
		bf, err := toFloat64(b)
		if err == nil {
			return cmpFloat(av, bf), nil
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv), nil
		}
	case bool:
		if bv, ok := b.(bool); ok {
			if av == bv {
				return 0, nil
			}
			if !av {
				return -1, nil
			}
			return 1, nil
		}
	}
	return 0, fmt.Errorf("cannot compare %T with %T", a, b)
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// match evaluates the predicate against one row.
func (w *Where) match(schema *catalog.TableSchema, values []any) (bool, error) {
	ci := schema.ColumnIndex(w.Column)
	if ci < 0 {
		return false, fmt.Errorf("column %q: %w", w.Column, dberr.ErrNotFound)
	}
	want, err := coerceValue(w.Value, schema.Columns[ci])
	if err != nil {
		return false, err
	}
	c, err := compareValues(values[ci], want)
	if err != nil {
		return false, err
	}
	switch w.Op {
	case OpEq:
		return c == 0, nil
	case OpNe:
		return c != 0, nil
	case OpLt:
		return c < 0, nil
	case OpLe:
		return c <= 0, nil
	case OpGt:
		return c > 0, nil
	case OpGe:
		return c >= 0, nil
	}
	return false, fmt.Errorf("unknown comparison operator %d", w.Op)
}
