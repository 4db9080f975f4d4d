package indexmanager

import (
	"errors"
	"fmt"
	"testing"

	bplus "pmdb/bplustree"
	"pmdb/dberr"
)

func TestCreateAndDrop(t *testing.T) {
	m := NewManager()

	if err := m.Create("idx_a"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := m.Create("idx_a"); !errors.Is(err, dberr.ErrAlreadyExists) {
		t.Errorf("duplicate create: got %v, want ErrAlreadyExists", err)
	}
	if err := m.Create("idx_b"); err != nil {
		t.Fatalf("create: %v", err)
	}

	names := m.ListNames()
	if len(names) != 2 || names[0] != "idx_a" || names[1] != "idx_b" {
		t.Errorf("names = %v, want [idx_a idx_b]", names)
	}

	if err := m.Drop("idx_a"); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if err := m.Drop("idx_a"); !errors.Is(err, dberr.ErrNotFound) {
		t.Errorf("drop missing: got %v, want ErrNotFound", err)
	}
	names = m.ListNames()
	if len(names) != 1 || names[0] != "idx_b" {
		t.Errorf("names after drop = %v, want [idx_b]", names)
	}
}

func TestOperationsOnMissingIndex(t *testing.T) {
	m := NewManager()

	if err := m.Insert("nope", bplus.IntKey(1), []byte("x")); !errors.Is(err, dberr.ErrNotFound) {
		t.Errorf("insert: got %v, want ErrNotFound", err)
	}
	if _, _, err := m.Search("nope", bplus.IntKey(1)); !errors.Is(err, dberr.ErrNotFound) {
		t.Errorf("search: got %v, want ErrNotFound", err)
	}
	if _, err := m.Delete("nope", bplus.IntKey(1)); !errors.Is(err, dberr.ErrNotFound) {
		t.Errorf("delete: got %v, want ErrNotFound", err)
	}
	if _, err := m.RangeSearch("nope", bplus.IntKey(1), bplus.IntKey(2)); !errors.Is(err, dberr.ErrNotFound) {
		t.Errorf("range search: got %v, want ErrNotFound", err)
	}
	if _, err := m.Tree("nope"); !errors.Is(err, dberr.ErrNotFound) {
		t.Errorf("tree: got %v, want ErrNotFound", err)
	}
}

func TestDelegation(t *testing.T) {
	m := NewManager()
	if err := m.Create("ages"); err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 20; i++ {
		if err := m.Insert("ages", bplus.IntKey(uint64(i)), []byte(fmt.Sprintf("row%d", i))); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	v, found, err := m.Search("ages", bplus.IntKey(7))
	if err != nil || !found {
		t.Fatalf("search: found=%v err=%v", found, err)
	}
	if string(v) != "row7" {
		t.Errorf("search 7 = %q, want row7", v)
	}

	vals, err := m.RangeSearch("ages", bplus.IntKey(5), bplus.IntKey(9))
	if err != nil {
		t.Fatalf("range search: %v", err)
	}
	if len(vals) != 4 || string(vals[0]) != "row5" || string(vals[3]) != "row8" {
		t.Errorf("range [5,9) = %q", vals)
	}

	ok, err := m.Delete("ages", bplus.IntKey(7))
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	if _, found, _ := m.Search("ages", bplus.IntKey(7)); found {
		t.Errorf("7 still found after delete")
	}
}

func TestIndexesAreIndependent(t *testing.T) {
	m := NewManager()
	if err := m.Create("a"); err != nil {
		t.Fatalf("create a: %v", err)
	}
	if err := m.Create("b"); err != nil {
		t.Fatalf("create b: %v", err)
	}

	if err := m.Insert("a", bplus.IntKey(1), []byte("only-in-a")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, found, _ := m.Search("b", bplus.IntKey(1)); found {
		t.Errorf("key leaked across indexes")
	}

	// Dropping one registry entry leaves the other usable.
	if err := m.Drop("a"); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if err := m.Insert("b", bplus.IntKey(2), []byte("x")); err != nil {
		t.Errorf("insert into surviving index: %v", err)
	}
}
