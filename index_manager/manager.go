// Package indexmanager keeps a named registry of independent B+Tree
// instances. It owns no algorithmic behavior of its own: every operation
// resolves the named tree and delegates.
package indexmanager

import (
	"fmt"

	bplus "pmdb/bplustree"
	"pmdb/dberr"
)

type Manager struct {
	order   int
	indexes map[string]*bplus.Tree
	names   []string // registry insertion order, reported by ListNames
}

func NewManager() *Manager {
	return &Manager{
		order:   bplus.DefaultOrder,
		indexes: make(map[string]*bplus.Tree),
	}
}

// Create registers a new empty tree under name.
func (m *Manager) Create(name string) error {
	if _, ok := m.indexes[name]; ok {
		return fmt.Errorf("index %q: %w", name, dberr.ErrAlreadyExists)
	}
	tree, err := bplus.NewTree(m.order)
	if err != nil {
		return err
	}
	m.indexes[name] = tree
	m.names = append(m.names, name)
	return nil
}

// Drop removes the named tree and, by ownership, all its nodes.
func (m *Manager) Drop(name string) error {
	if _, ok := m.indexes[name]; !ok {
		return fmt.Errorf("index %q: %w", name, dberr.ErrNotFound)
	}
	delete(m.indexes, name)
	for i, n := range m.names {
		if n == name {
			m.names = append(m.names[:i], m.names[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Manager) Insert(name string, key bplus.Key, value []byte) error {
	tree, err := m.tree(name)
	if err != nil {
		return err
	}
	return tree.Insert(key, value)
}

func (m *Manager) Search(name string, key bplus.Key) ([]byte, bool, error) {
	tree, err := m.tree(name)
	if err != nil {
		return nil, false, err
	}
	return tree.Search(key)
}

func (m *Manager) Delete(name string, key bplus.Key) (bool, error) {
	tree, err := m.tree(name)
	if err != nil {
		return false, err
	}
	return tree.Delete(key)
}

// RangeSearch drains the named tree's iterator over [start, end) into a
// value slice, in ascending key order.
func (m *Manager) RangeSearch(name string, start, end bplus.Key) ([][]byte, error) {
	tree, err := m.tree(name)
	if err != nil {
		return nil, err
	}
	it, err := tree.RangeSearch(start, end)
	if err != nil {
		return nil, err
	}
	return it.Values(), nil
}

// Tree exposes the named tree itself, for callers that need lazy iteration.
func (m *Manager) Tree(name string) (*bplus.Tree, error) {
	return m.tree(name)
}

// ListNames returns all registered index names in registration order.
func (m *Manager) ListNames() []string {
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}

func (m *Manager) tree(name string) (*bplus.Tree, error) {
	tree, ok := m.indexes[name]
	if !ok {
		return nil, fmt.Errorf("index %q: %w", name, dberr.ErrNotFound)
	}
	return tree, nil
}
