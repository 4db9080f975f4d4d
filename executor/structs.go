// Package executor translates parsed statements into storage and index
// operations. Rows live in Data pages owned by the storage manager; every
// indexed lookup goes through the index manager's key-value contract. The
// package never prints or logs: failures are folded into the Result.
package executor

import (
	"time"

	"pmdb/catalog"
	indexmanager "pmdb/index_manager"
	"pmdb/storage"
)

// CompareOp is a WHERE-clause comparison operator.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

// Where is a single-column predicate: column <op> literal.
type Where struct {
	Column string
	Op     CompareOp
	Value  any
}

// Result is the outcome of one statement. Errors from the core layers are
// wrapped into a failure Result with a message rather than propagated.
type Result struct {
	Success      bool
	Message      string
	Columns      []string
	Rows         [][]any
	RowsAffected int
	Elapsed      time.Duration
}

// tableStorage tracks the chain of Data pages holding a table's rows.
type tableStorage struct {
	pageIDs []uint64
}

// Executor wires the catalog, the paged storage manager and the index
// registry together.
type Executor struct {
	catalog *catalog.Catalog
	store   *storage.Manager
	indexes *indexmanager.Manager
	tables  map[string]*tableStorage
}

func New(cat *catalog.Catalog, store *storage.Manager, indexes *indexmanager.Manager) *Executor {
	return &Executor{
		catalog: cat,
		store:   store,
		indexes: indexes,
		tables:  make(map[string]*tableStorage),
	}
}

// Catalog exposes the schema store, mainly for front ends.
func (e *Executor) Catalog() *catalog.Catalog { return e.catalog }

// Indexes exposes the index registry.
func (e *Executor) Indexes() *indexmanager.Manager { return e.indexes }
