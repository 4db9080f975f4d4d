package bplus

// Height is the number of levels from the root down to the leaves. An empty
// tree (root leaf only) has height 1.
func (t *Tree) Height() int {
	h := 1
	n := t.node(t.root)
	for n.typ == nodeInternal {
		n = t.node(n.children[0])
		h++
	}
	return h
}

// Len counts entries by walking the leaf chain.
func (t *Tree) Len() int {
	total := 0
	for n := t.leftmostLeaf(); n != nil; {
		total += len(n.keys)
		if n.next == 0 {
			break
		}
		n = t.node(n.next)
	}
	return total
}

// RootKeyCount reports how many separator keys the root holds.
func (t *Tree) RootKeyCount() int {
	return len(t.node(t.root).keys)
}

func (t *Tree) leftmostLeaf() *node {
	n := t.node(t.root)
	for n.typ == nodeInternal {
		n = t.node(n.children[0])
	}
	return n
}
