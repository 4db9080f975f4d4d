package bplus

// Insert adds a key/value entry. Duplicate keys are allowed and accumulate;
// an insert never rejects or overwrites a pre-existing equal key.
func (t *Tree) Insert(key Key, value []byte) error {
	kb, err := key.Encode()
	if err != nil {
		return err
	}
	t.insertBytes(kb, value)
	return nil
}

func (t *Tree) insertBytes(key, value []byte) {
	promoted, right := t.insertInto(t.root, key, value)
	if right == 0 {
		return
	}
	// The root itself split: grow the tree by exactly one level, with the
	// promoted key as the new root's only separator.
	newRoot := newNode(nodeInternal)
	newRoot.keys = append(newRoot.keys, promoted)
	newRoot.children = append(newRoot.children, t.root, right)
	t.root = t.alloc(newRoot)
}

// insertInto descends to the owning leaf and inserts there. When the node it
// worked on overflowed and split, it returns the separator key and the id of
// the new right sibling for the caller to absorb; (nil, 0) otherwise.
func (t *Tree) insertInto(id int64, key, value []byte) ([]byte, int64) {
	n := t.node(id)
	if n.typ == nodeLeaf {
		i := lowerBound(n.keys, key)
		n.keys = insertAt(n.keys, i, key)
		n.vals = insertAt(n.vals, i, value)
		if len(n.keys) > t.maxKeys() {
			return t.splitLeaf(n)
		}
		return nil, 0
	}

	ci := upperBound(n.keys, key)
	promoted, right := t.insertInto(n.children[ci], key, value)
	if right == 0 {
		return nil, 0
	}
	i := lowerBound(n.keys, promoted)
	n.keys = insertAt(n.keys, i, promoted)
	n.children = insertAt(n.children, i+1, right)
	if len(n.keys) > t.maxKeys() {
		return t.splitInternal(n)
	}
	return nil, 0
}

// splitLeaf moves the upper half of an overfull leaf into a new right
// sibling and splices it into the leaf chain. The promoted separator is a
// copy of the right sibling's first key; it stays present at the leaf level.
func (t *Tree) splitLeaf(n *node) ([]byte, int64) {
	mid := len(n.keys) / 2

	right := newNode(nodeLeaf)
	right.keys = append(right.keys, n.keys[mid:]...)
	right.vals = append(right.vals, n.vals[mid:]...)
	right.next = n.next
	rid := t.alloc(right)

	n.keys = n.keys[:mid]
	n.vals = n.vals[:mid]
	n.next = rid

	return right.keys[0], rid
}

// splitInternal promotes the middle key of an overfull internal node and
// removes it from both halves; internal separators are never duplicated.
func (t *Tree) splitInternal(n *node) ([]byte, int64) {
	mid := len(n.keys) / 2
	promoted := n.keys[mid]

	right := newNode(nodeInternal)
	right.keys = append(right.keys, n.keys[mid+1:]...)
	right.children = append(right.children, n.children[mid+1:]...)
	rid := t.alloc(right)

	n.keys = n.keys[:mid]
	n.children = n.children[:mid+1]

	return promoted, rid
}
