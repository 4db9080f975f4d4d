package storage

import (
	"fmt"
	"os"

	"pmdb/dberr"
)

// initialPages is how many page slots a fresh database file starts with:
// the header slot plus nine Free pages.
const initialPages = 10

// Manager owns the single database file: it translates page ids to file
// offsets, reads and writes whole pages, and grows the file on demand.
// Every write is flushed before the call returns; a failed extend leaves the
// file in a state the caller must treat as unrecoverable (no rollback).
type Manager struct {
	path   string
	file   *os.File
	header *DatabaseHeader
	cache  *pageCache
}

func NewManager(path string) *Manager {
	return &Manager{path: path, header: NewDatabaseHeader()}
}

// Create writes a fresh database file: a header page with DBSize pages
// followed by Free pages for every remaining slot. The file is left closed;
// call Open before doing page I/O.
func (m *Manager) Create(overwrite bool) error {
	if _, err := os.Stat(m.path); err == nil {
		if !overwrite {
			return fmt.Errorf("database %s: %w", m.path, dberr.ErrAlreadyExists)
		}
		if err := os.Remove(m.path); err != nil {
			return fmt.Errorf("remove %s: %w", m.path, err)
		}
	}

	f, err := os.OpenFile(m.path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("create %s: %w", m.path, err)
	}
	defer f.Close()

	m.header = NewDatabaseHeader()
	m.header.DBSize = initialPages
	if _, err := f.Write(m.header.Serialize()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for id := uint64(1); id < initialPages; id++ {
		if _, err := f.Write(NewPage(id, PageFree, 0).Serialize()); err != nil {
			return fmt.Errorf("write page %d: %w", id, err)
		}
	}
	return f.Sync()
}

// Open reads and validates the header, then keeps the file open for page I/O.
func (m *Manager) Open() error {
	if _, err := os.Stat(m.path); err != nil {
		return fmt.Errorf("database %s: %w", m.path, dberr.ErrNotFound)
	}

	f, err := os.OpenFile(m.path, os.O_RDWR, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", m.path, err)
	}

	raw := make([]byte, HeaderSize)
	if _, err := f.ReadAt(raw, 0); err != nil {
		f.Close()
		return fmt.Errorf("read header: %w", dberr.ErrFormat)
	}
	header, err := DeserializeHeader(raw)
	if err != nil {
		f.Close()
		return err
	}
	if header.PageSize != PageSize {
		f.Close()
		return fmt.Errorf("page size mismatch: file has %d, want %d: %w", header.PageSize, PageSize, dberr.ErrFormat)
	}

	cache, err := newPageCache()
	if err != nil {
		f.Close()
		return fmt.Errorf("page cache: %w", err)
	}

	m.file = f
	m.header = header
	m.cache = cache
	return nil
}

// Close flushes and releases the file handle. Safe to call more than once.
func (m *Manager) Close() error {
	if m.file == nil {
		return nil
	}
	err := m.file.Sync()
	if cerr := m.file.Close(); err == nil {
		err = cerr
	}
	m.file = nil
	m.cache.close()
	m.cache = nil
	return err
}

// DBSize is the current file length in pages, header slot included.
func (m *Manager) DBSize() uint64 {
	return m.header.DBSize
}

// ReadPage fetches one page from the cache or disk.
func (m *Manager) ReadPage(id uint64) (*Page, error) {
	if m.file == nil {
		return nil, fmt.Errorf("database not open")
	}
	if id >= m.header.DBSize {
		return nil, fmt.Errorf("page %d beyond db size %d: %w", id, m.header.DBSize, dberr.ErrOutOfBounds)
	}

	if raw, ok := m.cache.get(id); ok {
		return DeserializePage(raw)
	}

	raw := make([]byte, PageSize)
	if _, err := m.file.ReadAt(raw, int64(id)*PageSize); err != nil {
		return nil, fmt.Errorf("page %d truncated: %w", id, dberr.ErrFormat)
	}
	m.cache.put(id, raw)
	return DeserializePage(raw)
}

// WritePage serializes the page at its offset, extending the file first when
// the id lies beyond the current end. The write is flushed before returning.
func (m *Manager) WritePage(p *Page) error {
	if m.file == nil {
		return fmt.Errorf("database not open")
	}
	if p.ID >= m.header.DBSize {
		if err := m.extend(p.ID + 1); err != nil {
			return err
		}
	}

	raw := p.Serialize()
	if _, err := m.file.WriteAt(raw, int64(p.ID)*PageSize); err != nil {
		return fmt.Errorf("write page %d: %w", p.ID, err)
	}
	if err := m.file.Sync(); err != nil {
		return fmt.Errorf("sync page %d: %w", p.ID, err)
	}
	m.cache.put(p.ID, raw)
	p.Dirty = false
	return nil
}

// AllocatePage appends exactly one page to the file and writes it
// immediately. There is no free-list reuse: allocation always grows the file.
func (m *Manager) AllocatePage(pageType PageType, tableID uint32) (*Page, error) {
	if m.file == nil {
		return nil, fmt.Errorf("database not open")
	}
	id := m.header.DBSize
	if err := m.extend(id + 1); err != nil {
		return nil, err
	}
	p := NewPage(id, pageType, tableID)
	if err := m.WritePage(p); err != nil {
		return nil, err
	}
	return p, nil
}

// extend appends Free pages for every slot up to newSize and rewrites the
// header with the new page count. A no-op when the file is already that big.
func (m *Manager) extend(newSize uint64) error {
	if newSize <= m.header.DBSize {
		return nil
	}
	for id := m.header.DBSize; id < newSize; id++ {
		if _, err := m.file.WriteAt(NewPage(id, PageFree, 0).Serialize(), int64(id)*PageSize); err != nil {
			return fmt.Errorf("extend: write page %d: %w", id, err)
		}
		m.cache.drop(id)
	}
	m.header.DBSize = newSize
	if _, err := m.file.WriteAt(m.header.Serialize(), 0); err != nil {
		return fmt.Errorf("extend: rewrite header: %w", err)
	}
	if err := m.file.Sync(); err != nil {
		return fmt.Errorf("extend: sync: %w", err)
	}
	return nil
}
