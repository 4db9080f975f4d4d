package executor

import (
	"encoding/binary"
	"fmt"
	"math"

	"pmdb/catalog"
	"pmdb/dberr"
)

// Row values are serialized column by column, little-endian, in schema
// order: INTEGER/BIGINT as int64 (8B), FLOAT/DOUBLE as float64 bits (8B),
// BOOLEAN as one byte, VARCHAR/TEXT as a uint16 length prefix plus UTF-8.

func serializeRow(cols []catalog.ColumnSchema, values []any) ([]byte, error) {
	if len(values) != len(cols) {
		return nil, fmt.Errorf("expected %d values, got %d", len(cols), len(values))
	}
	var out []byte
	for i, col := range cols {
		b, err := valueToBytes(values[i], col)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		out = append(out, b...)
	}
	return out, nil
}

func valueToBytes(v any, col catalog.ColumnSchema) ([]byte, error) {
	switch col.Type {
	case catalog.TypeInteger, catalog.TypeBigint:
		n, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, uint64(n))
		return buf, nil

	case catalog.TypeFloat, catalog.TypeDouble:
		f, err := toFloat64(v)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(f))
		return buf, nil

	case catalog.TypeBoolean:
		b, err := toBool(v)
		if err != nil {
			return nil, err
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil

	case catalog.TypeVarchar, catalog.TypeText:
		s, err := toString(v)
		if err != nil {
			return nil, err
		}
		if col.Type == catalog.TypeVarchar && col.Length > 0 && len(s) > col.Length {
			return nil, fmt.Errorf("value exceeds VARCHAR(%d)", col.Length)
		}
		if len(s) > math.MaxUint16 {
			return nil, fmt.Errorf("string too long: %d bytes", len(s))
		}
		buf := make([]byte, 2+len(s))
		binary.LittleEndian.PutUint16(buf, uint16(len(s)))
		copy(buf[2:], s)
		return buf, nil
	}
	return nil, fmt.Errorf("column type %s: %w", col.Type, dberr.ErrUnsupportedKeyType)
}

func deserializeRow(cols []catalog.ColumnSchema, b []byte) ([]any, error) {
	out := make([]any, len(cols))
	off := 0
	for i, col := range cols {
		v, n, err := bytesToValue(b[off:], col)
		if err != nil {
			return nil, fmt.Errorf("column %s at offset %d: %w", col.Name, off, err)
		}
		out[i] = v
		off += n
	}
	if off != len(b) {
		return nil, fmt.Errorf("row has %d trailing bytes: %w", len(b)-off, dberr.ErrFormat)
	}
	return out, nil
}

func bytesToValue(b []byte, col catalog.ColumnSchema) (any, int, error) {
	switch col.Type {
	case catalog.TypeInteger, catalog.TypeBigint:
		if len(b) < 8 {
			return nil, 0, fmt.Errorf("short integer field: %w", dberr.ErrFormat)
		}
		return int64(binary.LittleEndian.Uint64(b)), 8, nil

	case catalog.TypeFloat, catalog.TypeDouble:
		if len(b) < 8 {
			return nil, 0, fmt.Errorf("short float field: %w", dberr.ErrFormat)
		}
		return math.Float64frombits(binary.LittleEndian.Uint64(b)), 8, nil

	case catalog.TypeBoolean:
		if len(b) < 1 {
			return nil, 0, fmt.Errorf("short boolean field: %w", dberr.ErrFormat)
		}
		return b[0] != 0, 1, nil

	case catalog.TypeVarchar, catalog.TypeText:
		if len(b) < 2 {
			return nil, 0, fmt.Errorf("short string length: %w", dberr.ErrFormat)
		}
		n := int(binary.LittleEndian.Uint16(b))
		if len(b) < 2+n {
			return nil, 0, fmt.Errorf("string length %d exceeds row: %w", n, dberr.ErrFormat)
		}
		return string(b[2 : 2+n]), 2 + n, nil
	}
	return nil, 0, fmt.Errorf("column type %s: %w", col.Type, dberr.ErrFormat)
}

// A locator names where a row version lives: page id plus the record's
// page-relative offset. It is the opaque value stored in index leaves.
type locator struct {
	pageID uint64
	offset uint16
}

const locatorSize = 10

func (l locator) encode() []byte {
	buf := make([]byte, locatorSize)
	binary.LittleEndian.PutUint64(buf[0:8], l.pageID)
	binary.LittleEndian.PutUint16(buf[8:10], l.offset)
	return buf
}

func decodeLocator(b []byte) (locator, error) {
	if len(b) < locatorSize {
		return locator{}, fmt.Errorf("locator buffer too short: %d bytes: %w", len(b), dberr.ErrFormat)
	}
	return locator{
		pageID: binary.LittleEndian.Uint64(b[0:8]),
		offset: binary.LittleEndian.Uint16(b[8:10]),
	}, nil
}
