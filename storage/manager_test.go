package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pmdb/dberr"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	m := NewManager(path)
	if err := m.Create(false); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := m.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestCreateAndOpen(t *testing.T) {
	m := newTestManager(t)

	if m.DBSize() != initialPages {
		t.Errorf("db size = %d, want %d", m.DBSize(), initialPages)
	}
	p, err := m.ReadPage(1)
	if err != nil {
		t.Fatalf("read page 1: %v", err)
	}
	if p.Type != PageFree {
		t.Errorf("page 1 type = %d, want PageFree", p.Type)
	}
}

func TestCreateExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	m := NewManager(path)
	if err := m.Create(false); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := m.Create(false); !errors.Is(err, dberr.ErrAlreadyExists) {
		t.Errorf("second create: got %v, want ErrAlreadyExists", err)
	}
	if err := m.Create(true); err != nil {
		t.Errorf("create with overwrite: %v", err)
	}
}

func TestOpenMissing(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "nope.db"))
	if err := m.Open(); !errors.Is(err, dberr.ErrNotFound) {
		t.Errorf("open missing file: got %v, want ErrNotFound", err)
	}
}

func TestOpenBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	m := NewManager(path)
	if err := m.Create(false); err != nil {
		t.Fatalf("create: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	raw[0] ^= 0xFF
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := m.Open(); !errors.Is(err, dberr.ErrFormat) {
		t.Errorf("open with bad magic: got %v, want ErrFormat", err)
	}
}

func TestWriteReadPage(t *testing.T) {
	m := newTestManager(t)

	p := NewPage(4, PageData, 9)
	off, _ := p.Allocate(5)
	if err := p.Write(int(off), []byte("rows!")); err != nil {
		t.Fatalf("page write: %v", err)
	}
	if err := m.WritePage(p); err != nil {
		t.Fatalf("write page: %v", err)
	}
	if p.Dirty {
		t.Errorf("dirty flag not cleared after write")
	}

	got, err := m.ReadPage(4)
	if err != nil {
		t.Fatalf("read page: %v", err)
	}
	data, err := got.Read(int(off), 5)
	if err != nil {
		t.Fatalf("page read: %v", err)
	}
	if !bytes.Equal(data, []byte("rows!")) {
		t.Errorf("read back %q, want %q", data, "rows!")
	}
	if got.TableID != 9 {
		t.Errorf("table id = %d, want 9", got.TableID)
	}
}

func TestWritePageExtends(t *testing.T) {
	m := newTestManager(t)

	p := NewPage(initialPages+5, PageData, 1)
	if err := m.WritePage(p); err != nil {
		t.Fatalf("write past end: %v", err)
	}
	if m.DBSize() != initialPages+6 {
		t.Errorf("db size = %d, want %d", m.DBSize(), initialPages+6)
	}
	// The gap pages created by the extension must be readable.
	gap, err := m.ReadPage(initialPages + 2)
	if err != nil {
		t.Fatalf("read gap page: %v", err)
	}
	if gap.Type != PageFree {
		t.Errorf("gap page type = %d, want PageFree", gap.Type)
	}
}

func TestReadPageOutOfBounds(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.ReadPage(initialPages); !errors.Is(err, dberr.ErrOutOfBounds) {
		t.Errorf("read past end: got %v, want ErrOutOfBounds", err)
	}
}

func TestAllocatePage(t *testing.T) {
	m := newTestManager(t)

	a, err := m.AllocatePage(PageData, 1)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	b, err := m.AllocatePage(PageIndex, 1)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if a.ID != initialPages || b.ID != initialPages+1 {
		t.Errorf("allocated ids %d, %d; want %d, %d", a.ID, b.ID, initialPages, initialPages+1)
	}

	got, err := m.ReadPage(b.ID)
	if err != nil {
		t.Fatalf("read allocated page: %v", err)
	}
	if got.Type != PageIndex {
		t.Errorf("allocated page type = %d, want PageIndex", got.Type)
	}
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	m := NewManager(path)
	if err := m.Create(false); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := m.Open(); err != nil {
		t.Fatalf("open: %v", err)
	}
	p, err := m.AllocatePage(PageData, 2)
	if err != nil {
		t.Fatalf("allocate: %v", err)
	}
	off, _ := p.Allocate(7)
	if err := p.Write(int(off), []byte("durable")); err != nil {
		t.Fatalf("page write: %v", err)
	}
	if err := m.WritePage(p); err != nil {
		t.Fatalf("write page: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	m2 := NewManager(path)
	if err := m2.Open(); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer m2.Close()
	if m2.DBSize() != initialPages+1 {
		t.Errorf("db size after reopen = %d, want %d", m2.DBSize(), initialPages+1)
	}
	got, err := m2.ReadPage(p.ID)
	if err != nil {
		t.Fatalf("read after reopen: %v", err)
	}
	data, err := got.Read(int(off), 7)
	if err != nil {
		t.Fatalf("page read: %v", err)
	}
	if !bytes.Equal(data, []byte("durable")) {
		t.Errorf("read back %q, want %q", data, "durable")
	}
}

func TestCloseIdempotent(t *testing.T) {
	m := newTestManager(t)
	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}
