package storage

import (
	"encoding/binary"
	"fmt"

	"pmdb/dberr"
)

// PageType tags what a page holds.
type PageType uint8

const (
	PageFree PageType = iota
	PageData
	PageIndex
	PageCatalog
	PageFreeSpaceMap
)

const (
	PageSize = 4096

	// PageHeaderSize covers page_id(8) + page_type(1) + table_id(4) +
	// free_space_start(2) + free_space_end(2) + lsn(8) + checksum(4).
	PageHeaderSize = 29

	PageDataSize = PageSize - PageHeaderSize
)

// Page is one fixed 4KB unit of the database file. The header occupies the
// first PageHeaderSize bytes of the on-disk form; Data holds the remaining
// PageDataSize bytes. Offsets passed to Allocate/Read/Write are page-relative:
// the first usable byte is at offset PageHeaderSize.
type Page struct {
	ID             uint64
	Type           PageType
	TableID        uint32
	FreeSpaceStart uint16
	FreeSpaceEnd   uint16
	LSN            uint64
	Checksum       uint32
	Data           []byte
	Dirty          bool
}

func NewPage(id uint64, pageType PageType, tableID uint32) *Page {
	return &Page{
		ID:             id,
		Type:           pageType,
		TableID:        tableID,
		FreeSpaceStart: PageHeaderSize,
		FreeSpaceEnd:   PageSize,
		Data:           make([]byte, PageDataSize),
	}
}

// Allocate bump-allocates size bytes from the free region and returns the
// page-relative offset. ok is false when the page cannot fit the request;
// the caller should treat that as "page full" and ask for a new page.
func (p *Page) Allocate(size int) (offset uint16, ok bool) {
	if int(p.FreeSpaceStart)+size > int(p.FreeSpaceEnd) {
		return 0, false
	}
	offset = p.FreeSpaceStart
	p.FreeSpaceStart += uint16(size)
	p.Dirty = true
	return offset, true
}

// Write copies b into the data region at the given page-relative offset.
func (p *Page) Write(offset int, b []byte) error {
	if offset < PageHeaderSize || offset+len(b) > PageSize {
		return fmt.Errorf("page %d: write offset %d size %d: %w", p.ID, offset, len(b), dberr.ErrOutOfBounds)
	}
	copy(p.Data[offset-PageHeaderSize:], b)
	p.Dirty = true
	return nil
}

// Read returns a copy of size bytes at the given page-relative offset.
func (p *Page) Read(offset, size int) ([]byte, error) {
	if offset < PageHeaderSize || offset+size > PageSize {
		return nil, fmt.Errorf("page %d: read offset %d size %d: %w", p.ID, offset, size, dberr.ErrOutOfBounds)
	}
	out := make([]byte, size)
	copy(out, p.Data[offset-PageHeaderSize:])
	return out, nil
}

// Serialize packs the page into its canonical PageSize-byte on-disk form.
// The checksum is recomputed on every call, folded over the header with a
// zeroed checksum field followed by the data region.
func (p *Page) Serialize() []byte {
	buf := make([]byte, PageSize)
	p.packHeader(buf, 0)
	copy(buf[PageHeaderSize:], p.Data)
	p.Checksum = xorFold(buf)
	binary.LittleEndian.PutUint32(buf[25:29], p.Checksum)
	return buf
}

// DeserializePage unpacks a page from its on-disk form. The carried checksum
// is stored but not re-verified against the content; it is a format
// placeholder, not an integrity gate yet.
func DeserializePage(raw []byte) (*Page, error) {
	if len(raw) != PageSize {
		return nil, fmt.Errorf("page buffer is %d bytes, want %d: %w", len(raw), PageSize, dberr.ErrFormat)
	}
	p := &Page{
		ID:             binary.LittleEndian.Uint64(raw[0:8]),
		Type:           PageType(raw[8]),
		TableID:        binary.LittleEndian.Uint32(raw[9:13]),
		FreeSpaceStart: binary.LittleEndian.Uint16(raw[13:15]),
		FreeSpaceEnd:   binary.LittleEndian.Uint16(raw[15:17]),
		LSN:            binary.LittleEndian.Uint64(raw[17:25]),
		Checksum:       binary.LittleEndian.Uint32(raw[25:29]),
		Data:           make([]byte, PageDataSize),
	}
	copy(p.Data, raw[PageHeaderSize:])
	return p, nil
}

func (p *Page) packHeader(buf []byte, checksum uint32) {
	binary.LittleEndian.PutUint64(buf[0:8], p.ID)
	buf[8] = byte(p.Type)
	binary.LittleEndian.PutUint32(buf[9:13], p.TableID)
	binary.LittleEndian.PutUint16(buf[13:15], p.FreeSpaceStart)
	binary.LittleEndian.PutUint16(buf[15:17], p.FreeSpaceEnd)
	binary.LittleEndian.PutUint64(buf[17:25], p.LSN)
	binary.LittleEndian.PutUint32(buf[25:29], checksum)
}

// xorFold XORs the buffer as little-endian 4-byte words, zero-padding the
// final word when the length is not a multiple of four.
func xorFold(b []byte) uint32 {
	var sum uint32
	for i := 0; i < len(b); i += 4 {
		if len(b)-i >= 4 {
			sum ^= binary.LittleEndian.Uint32(b[i:])
			continue
		}
		var pad [4]byte
		copy(pad[:], b[i:])
		sum ^= binary.LittleEndian.Uint32(pad[:])
	}
	return sum
}
