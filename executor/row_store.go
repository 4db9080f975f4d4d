package executor

import (
	"fmt"

	"pmdb/catalog"
	"pmdb/dberr"
	"pmdb/storage"
)

// Records are packed into Data pages front to back: a 1-byte live flag, a
// uint16 payload length, then the serialized row. Deleting flips the flag in
// place (a tombstone); updates tombstone the old version and append the new
// one. A page is scanned by walking records from the first data byte up to
// the page's free-space start.

const recordHeaderSize = 3

// rowRef is one live row found by a scan.
type rowRef struct {
	loc    locator
	values []any
}

func (e *Executor) tableStore(name string) *tableStorage {
	ts, ok := e.tables[name]
	if !ok {
		ts = &tableStorage{}
		e.tables[name] = ts
	}
	return ts
}

// appendRow stores one serialized row, allocating a fresh Data page when the
// current tail page is full, and returns the row's locator.
func (e *Executor) appendRow(schema *catalog.TableSchema, payload []byte) (locator, error) {
	ts := e.tableStore(schema.Name)
	need := recordHeaderSize + len(payload)
	if need > storage.PageDataSize {
		return locator{}, fmt.Errorf("row of %d bytes exceeds page capacity", len(payload))
	}

	var page *storage.Page
	if n := len(ts.pageIDs); n > 0 {
		p, err := e.store.ReadPage(ts.pageIDs[n-1])
		if err != nil {
			return locator{}, err
		}
		page = p
	}
	var offset uint16
	for {
		if page != nil {
			if off, ok := page.Allocate(need); ok {
				offset = off
				break
			}
		}
		p, err := e.store.AllocatePage(storage.PageData, schema.ID)
		if err != nil {
			return locator{}, err
		}
		ts.pageIDs = append(ts.pageIDs, p.ID)
		page = p
	}

	record := make([]byte, need)
	record[0] = 1
	record[1] = byte(len(payload))
	record[2] = byte(len(payload) >> 8)
	copy(record[recordHeaderSize:], payload)
	if err := page.Write(int(offset), record); err != nil {
		return locator{}, err
	}
	if err := e.store.WritePage(page); err != nil {
		return locator{}, err
	}
	return locator{pageID: page.ID, offset: offset}, nil
}

// scanRows walks every Data page of the table and decodes the live records.
func (e *Executor) scanRows(schema *catalog.TableSchema) ([]rowRef, error) {
	ts := e.tableStore(schema.Name)
	var out []rowRef
	for _, id := range ts.pageIDs {
		page, err := e.store.ReadPage(id)
		if err != nil {
			return nil, err
		}
		off := storage.PageHeaderSize
		for off < int(page.FreeSpaceStart) {
			header, err := page.Read(off, recordHeaderSize)
			if err != nil {
				return nil, err
			}
			plen := int(header[1]) | int(header[2])<<8
			if header[0] == 1 {
				payload, err := page.Read(off+recordHeaderSize, plen)
				if err != nil {
					return nil, err
				}
				values, err := deserializeRow(schema.Columns, payload)
				if err != nil {
					return nil, err
				}
				out = append(out, rowRef{
					loc:    locator{pageID: id, offset: uint16(off)},
					values: values,
				})
			}
			off += recordHeaderSize + plen
		}
	}
	return out, nil
}

// readRow fetches a single row version by locator. Tombstoned records
// report ErrNotFound so index hits on stale entries can be skipped.
func (e *Executor) readRow(schema *catalog.TableSchema, loc locator) ([]any, error) {
	page, err := e.store.ReadPage(loc.pageID)
	if err != nil {
		return nil, err
	}
	header, err := page.Read(int(loc.offset), recordHeaderSize)
	if err != nil {
		return nil, err
	}
	if header[0] != 1 {
		return nil, fmt.Errorf("row at page %d offset %d: %w", loc.pageID, loc.offset, dberr.ErrNotFound)
	}
	plen := int(header[1]) | int(header[2])<<8
	payload, err := page.Read(int(loc.offset)+recordHeaderSize, plen)
	if err != nil {
		return nil, err
	}
	return deserializeRow(schema.Columns, payload)
}

// tombstone marks the record at loc dead in place.
func (e *Executor) tombstone(loc locator) error {
	page, err := e.store.ReadPage(loc.pageID)
	if err != nil {
		return err
	}
	if err := page.Write(int(loc.offset), []byte{0}); err != nil {
		return err
	}
	return e.store.WritePage(page)
}
