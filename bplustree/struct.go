// Package bplus implements an ordered map from byte keys to opaque values,
// organized as a B+Tree. All values live in leaf nodes; internal nodes only
// route. Leaves form a forward-linked chain in global key order so range
// scans never re-descend per step.
package bplus

import "fmt"

// DefaultOrder is the branching factor used when the caller has no opinion.
const DefaultOrder = 4

type nodeType int

const (
	nodeInternal nodeType = iota
	nodeLeaf
)

// node holds at most order-1 keys, kept strictly ascending in byte order.
// Leaves carry one value per key and a next-leaf link; internal nodes carry
// len(keys)+1 child ids where children[i] covers keys < keys[i].
type node struct {
	typ      nodeType
	keys     [][]byte
	vals     [][]byte // leaves only, parallel to keys
	children []int64  // internal only
	next     int64    // leaf chain, 0 ends the chain
}

// Tree owns its nodes through an arena addressed by int64 ids. Slot 0 is
// reserved so a zero next-link terminates the leaf chain and so a node id
// can later map one-to-one onto a page id. There are no parent pointers:
// insertion is a single top-down recursion that hands promotions back up.
//
// Not safe for concurrent use; a range scan must be drained or abandoned
// before the tree is mutated again.
type Tree struct {
	order int
	root  int64
	nodes []*node
}

// NewTree builds an empty tree whose nodes hold at most order-1 keys.
// The root starts as an empty leaf.
func NewTree(order int) (*Tree, error) {
	if order < 3 {
		return nil, fmt.Errorf("order %d too small, need at least 3", order)
	}
	t := &Tree{order: order, nodes: []*node{nil}}
	t.root = t.alloc(newNode(nodeLeaf))
	return t, nil
}

// Order reports the configured branching factor bound.
func (t *Tree) Order() int { return t.order }

func (t *Tree) maxKeys() int { return t.order - 1 }

func (t *Tree) node(id int64) *node { return t.nodes[id] }

func (t *Tree) alloc(n *node) int64 {
	t.nodes = append(t.nodes, n)
	return int64(len(t.nodes) - 1)
}

func newNode(typ nodeType) *node {
	n := &node{typ: typ, keys: make([][]byte, 0, 4)}
	if typ == nodeInternal {
		n.children = make([]int64, 0, 4)
	} else {
		n.vals = make([][]byte, 0, 4)
	}
	return n
}
