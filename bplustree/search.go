package bplus

import "bytes"

// Search returns the first value stored under key, or found=false when the
// key is absent. The tree is never mutated.
func (t *Tree) Search(key Key) (value []byte, found bool, err error) {
	kb, err := key.Encode()
	if err != nil {
		return nil, false, err
	}
	value, found = t.searchBytes(kb)
	return value, found, nil
}

func (t *Tree) searchBytes(key []byte) ([]byte, bool) {
	leaf := t.findLeaf(key)
	i := lowerBound(leaf.keys, key)
	if i < len(leaf.keys) && bytes.Equal(leaf.keys[i], key) {
		return leaf.vals[i], true
	}
	return nil, false
}

// findLeaf descends from the root to the unique leaf whose range contains
// key. On an empty tree this is the empty root leaf.
func (t *Tree) findLeaf(key []byte) *node {
	n := t.node(t.root)
	for n.typ == nodeInternal {
		n = t.node(n.children[upperBound(n.keys, key)])
	}
	return n
}
