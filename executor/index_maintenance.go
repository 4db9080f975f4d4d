package executor

import (
	"bytes"

	bplus "pmdb/bplustree"
)

// succ returns the smallest byte string greater than enc, used to turn an
// equality lookup into the half-open range [enc, enc+0x00).
func succ(enc []byte) []byte {
	out := make([]byte, len(enc)+1)
	copy(out, enc)
	return out
}

// equalRange collects every value stored under exactly key.
func equalRange(tree *bplus.Tree, key bplus.Key) ([][]byte, error) {
	enc, err := key.Encode()
	if err != nil {
		return nil, err
	}
	it, err := tree.RangeSearch(bplus.BytesKey(enc), bplus.BytesKey(succ(enc)))
	if err != nil {
		return nil, err
	}
	return it.Values(), nil
}

// removeIndexEntry drops the entry for (key, loc) from the named index.
// Tree deletion removes the first match for a key, so with duplicate keys
// the equal range is drained and every entry except the target reinserted.
func (e *Executor) removeIndexEntry(name string, key bplus.Key, loc locator) error {
	tree, err := e.indexes.Tree(name)
	if err != nil {
		return err
	}
	vals, err := equalRange(tree, key)
	if err != nil {
		return err
	}
	for range vals {
		if _, err := tree.Delete(key); err != nil {
			return err
		}
	}
	target := loc.encode()
	removed := false
	for _, v := range vals {
		if !removed && bytes.Equal(v, target) {
			removed = true
			continue
		}
		if err := tree.Insert(key, v); err != nil {
			return err
		}
	}
	return nil
}
