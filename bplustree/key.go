package bplus

import (
	"encoding/binary"
	"fmt"

	"pmdb/dberr"
)

// KeyKind tags the closed set of key types an index accepts.
type KeyKind int

const (
	KeyInvalid KeyKind = iota
	KeyInt
	KeyText
	KeyBytes
)

// Key is a tagged key variant. Encoding is a pure function of the variant:
// integers become 8-byte big-endian (so unsigned byte comparison matches
// numeric comparison), text becomes raw UTF-8, bytes pass through unchanged.
// Anything else is rejected at the boundary with ErrUnsupportedKeyType.
type Key struct {
	kind  KeyKind
	num   uint64
	text  string
	bytes []byte
}

func IntKey(v uint64) Key   { return Key{kind: KeyInt, num: v} }
func TextKey(s string) Key  { return Key{kind: KeyText, text: s} }
func BytesKey(b []byte) Key { return Key{kind: KeyBytes, bytes: b} }

// NewKey converts a dynamically typed value into a Key.
func NewKey(v any) (Key, error) {
	switch k := v.(type) {
	case int:
		return IntKey(uint64(k)), nil
	case int32:
		return IntKey(uint64(k)), nil
	case int64:
		return IntKey(uint64(k)), nil
	case uint64:
		return IntKey(k), nil
	case string:
		return TextKey(k), nil
	case []byte:
		return BytesKey(k), nil
	default:
		return Key{}, fmt.Errorf("key type %T: %w", v, dberr.ErrUnsupportedKeyType)
	}
}

// Encode serializes the key for byte-lexicographic ordering.
func (k Key) Encode() ([]byte, error) {
	switch k.kind {
	case KeyInt:
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, k.num)
		return buf, nil
	case KeyText:
		return []byte(k.text), nil
	case KeyBytes:
		return k.bytes, nil
	default:
		return nil, fmt.Errorf("zero-value key: %w", dberr.ErrUnsupportedKeyType)
	}
}
