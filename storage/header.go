package storage

import (
	"encoding/binary"
	"fmt"

	"pmdb/dberr"
)

const (
	// Magic is the four ASCII bytes "PMDB" read as a little-endian uint32.
	Magic uint32 = 0x42444D50

	// HeaderSize is the on-disk size of the database header: it occupies a
	// full page slot at the front of the file.
	HeaderSize = PageSize

	// headerPackedSize is the number of meaningful header bytes; the rest of
	// the slot is zero padding.
	headerPackedSize = 44
)

// DatabaseHeader is the first 4096 bytes of every database file.
// CatalogRoot, FreeListHead, LastTransactionID and Checksum are reserved
// fields carried in the format but not acted on yet.
type DatabaseHeader struct {
	Magic             uint32
	PageSize          uint32
	DBSize            uint64 // file length in pages, header slot included
	CatalogRoot       uint64
	FreeListHead      uint64
	LastTransactionID uint64
	Checksum          uint32
}

func NewDatabaseHeader() *DatabaseHeader {
	return &DatabaseHeader{Magic: Magic, PageSize: PageSize}
}

// Serialize packs the header fields little-endian and zero-pads to a full
// page slot.
func (h *DatabaseHeader) Serialize() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.PageSize)
	binary.LittleEndian.PutUint64(buf[8:16], h.DBSize)
	binary.LittleEndian.PutUint64(buf[16:24], h.CatalogRoot)
	binary.LittleEndian.PutUint64(buf[24:32], h.FreeListHead)
	binary.LittleEndian.PutUint64(buf[32:40], h.LastTransactionID)
	binary.LittleEndian.PutUint32(buf[40:44], h.Checksum)
	return buf
}

// DeserializeHeader unpacks and validates a database header. A short buffer
// or a magic mismatch rejects the file.
func DeserializeHeader(raw []byte) (*DatabaseHeader, error) {
	if len(raw) < headerPackedSize {
		return nil, fmt.Errorf("database header is %d bytes, want at least %d: %w", len(raw), headerPackedSize, dberr.ErrFormat)
	}
	h := &DatabaseHeader{
		Magic:             binary.LittleEndian.Uint32(raw[0:4]),
		PageSize:          binary.LittleEndian.Uint32(raw[4:8]),
		DBSize:            binary.LittleEndian.Uint64(raw[8:16]),
		CatalogRoot:       binary.LittleEndian.Uint64(raw[16:24]),
		FreeListHead:      binary.LittleEndian.Uint64(raw[24:32]),
		LastTransactionID: binary.LittleEndian.Uint64(raw[32:40]),
		Checksum:          binary.LittleEndian.Uint32(raw[40:44]),
	}
	if h.Magic != Magic {
		return nil, fmt.Errorf("bad magic number %#x, want %#x: %w", h.Magic, Magic, dberr.ErrFormat)
	}
	return h, nil
}
