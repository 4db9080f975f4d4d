package bplus

import "bytes"

// Delete removes the first exact-match entry for key and reports whether a
// removal happened. Ancestors are not rebalanced and siblings are not
// merged: a non-root leaf is allowed to underflow, and the root leaf is
// allowed to become empty. Separator keys left in internal nodes keep
// routing correctly because they only bound ranges.
func (t *Tree) Delete(key Key) (bool, error) {
	kb, err := key.Encode()
	if err != nil {
		return false, err
	}
	return t.deleteBytes(kb), nil
}

func (t *Tree) deleteBytes(key []byte) bool {
	leaf := t.findLeaf(key)
	i := lowerBound(leaf.keys, key)
	if i >= len(leaf.keys) || !bytes.Equal(leaf.keys[i], key) {
		return false
	}
	leaf.keys = removeAt(leaf.keys, i)
	leaf.vals = removeAt(leaf.vals, i)
	return true
}
