package bplus

import "bytes"

// Iterator is a forward-only scan over the leaf chain. It is pull-based and
// lazy; it must be drained or abandoned before the tree is mutated again.
type Iterator struct {
	t     *Tree
	end   []byte // exclusive upper bound, nil = unbounded
	leaf  *node
	idx   int
	valid bool
}

// RangeSearch returns an iterator over the half-open key interval
// [start, end), yielding entries in ascending key order. Each call
// re-descends from the root, so the iterator is restartable by calling
// RangeSearch again.
func (t *Tree) RangeSearch(start, end Key) (*Iterator, error) {
	sb, err := start.Encode()
	if err != nil {
		return nil, err
	}
	eb, err := end.Encode()
	if err != nil {
		return nil, err
	}
	return t.rangeBytes(sb, eb), nil
}

// Scan iterates the whole tree from the minimum key onward.
func (t *Tree) Scan() *Iterator {
	return t.rangeBytes(nil, nil)
}

func (t *Tree) rangeBytes(start, end []byte) *Iterator {
	it := &Iterator{t: t, end: end}
	leaf := t.findLeaf(start)
	it.leaf = leaf
	it.idx = lowerBound(leaf.keys, start)
	it.settle()
	return it
}

// settle skips empty tails: it advances across leaves until the cursor sits
// on an entry, then applies the end bound.
func (it *Iterator) settle() {
	for it.idx >= len(it.leaf.keys) {
		if it.leaf.next == 0 {
			it.valid = false
			return
		}
		it.leaf = it.t.node(it.leaf.next)
		it.idx = 0
	}
	if it.end != nil && bytes.Compare(it.leaf.keys[it.idx], it.end) >= 0 {
		it.valid = false
		return
	}
	it.valid = true
}

// Valid reports whether the iterator currently sits on an entry.
func (it *Iterator) Valid() bool { return it.valid }

// Next advances to the following entry and reports whether one exists.
func (it *Iterator) Next() bool {
	if !it.valid {
		return false
	}
	it.idx++
	it.settle()
	return it.valid
}

// Key returns the current entry's serialized key.
func (it *Iterator) Key() []byte {
	if !it.valid {
		return nil
	}
	return it.leaf.keys[it.idx]
}

// Value returns the current entry's value.
func (it *Iterator) Value() []byte {
	if !it.valid {
		return nil
	}
	return it.leaf.vals[it.idx]
}

// Values drains the iterator into a slice.
func (it *Iterator) Values() [][]byte {
	var out [][]byte
	for ; it.valid; it.Next() {
		out = append(out, it.Value())
	}
	return out
}
