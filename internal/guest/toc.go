package guest

import (
	"encoding/binary"
	"io"

	"github.com/meigma/shadercache/internal/cacheerr"
)

const (
	// tocMagic is "TOCG" read as a little-endian u32.
	tocMagic = uint32('T') | uint32('O')<<8 | uint32('C')<<16 | uint32('G')<<24

	// tocVersion is bumped whenever the guest file layout changes.
	tocVersion = 1

	tocHeaderSize = 32
	tocEntrySize  = 16
)

type tocHeader struct {
	Magic              uint32
	Version            uint32
	Padding            uint32
	ModificationsCount uint32
	Reserved           uint64
	Reserved2          uint64
}

func newTocHeader() tocHeader {
	return tocHeader{Magic: tocMagic, Version: tocVersion}
}

func (h *tocHeader) marshal() []byte {
	b := make([]byte, tocHeaderSize)
	binary.LittleEndian.PutUint32(b[0:], h.Magic)
	binary.LittleEndian.PutUint32(b[4:], h.Version)
	binary.LittleEndian.PutUint32(b[8:], h.Padding)
	binary.LittleEndian.PutUint32(b[12:], h.ModificationsCount)
	binary.LittleEndian.PutUint64(b[16:], h.Reserved)
	binary.LittleEndian.PutUint64(b[24:], h.Reserved2)
	return b
}

func (h *tocHeader) validate() error {
	if h.Magic != tocMagic {
		return cacheerr.Newf(cacheerr.FileCorrupted, "guest toc: bad magic %#x", h.Magic)
	}
	if h.Version != tocVersion {
		return cacheerr.Newf(cacheerr.IncompatibleVersion, "guest toc: version %d, want %d", h.Version, tocVersion)
	}
	return nil
}

// readTocHeader reads and validates the header at the start of r.
func readTocHeader(r io.ReaderAt) (tocHeader, error) {
	var b [tocHeaderSize]byte
	if _, err := r.ReadAt(b[:], 0); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return tocHeader{}, cacheerr.Newf(cacheerr.FileCorrupted, "guest toc: truncated header")
		}
		return tocHeader{}, err
	}
	h := tocHeader{
		Magic:              binary.LittleEndian.Uint32(b[0:]),
		Version:            binary.LittleEndian.Uint32(b[4:]),
		Padding:            binary.LittleEndian.Uint32(b[8:]),
		ModificationsCount: binary.LittleEndian.Uint32(b[12:]),
		Reserved:           binary.LittleEndian.Uint64(b[16:]),
		Reserved2:          binary.LittleEndian.Uint64(b[24:]),
	}
	return h, h.validate()
}

type tocEntry struct {
	Offset   uint32
	CodeSize uint32
	Cb1Size  uint32
	Hash     uint32
}

func (e *tocEntry) marshal() []byte {
	b := make([]byte, tocEntrySize)
	binary.LittleEndian.PutUint32(b[0:], e.Offset)
	binary.LittleEndian.PutUint32(b[4:], e.CodeSize)
	binary.LittleEndian.PutUint32(b[8:], e.Cb1Size)
	binary.LittleEndian.PutUint32(b[12:], e.Hash)
	return b
}

func parseTocEntry(b []byte) tocEntry {
	return tocEntry{
		Offset:   binary.LittleEndian.Uint32(b[0:]),
		CodeSize: binary.LittleEndian.Uint32(b[4:]),
		Cb1Size:  binary.LittleEndian.Uint32(b[8:]),
		Hash:     binary.LittleEndian.Uint32(b[12:]),
	}
}

// stubbed reports whether the entry was logically removed.
func (e *tocEntry) stubbed() bool { return e.CodeSize == 0 }

// tocMemoryEntry is a TOC entry together with its index, kept in the
// in-memory hash buckets.
type tocMemoryEntry struct {
	tocEntry
	Index int
}

func entryOffset(index int) int64 {
	return tocHeaderSize + int64(index)*tocEntrySize
}

// entryCount returns the number of complete entries in a TOC of tocSize
// bytes. A trailing partial entry is ignored.
func entryCount(tocSize int64) int {
	if tocSize <= tocHeaderSize {
		return 0
	}
	return int((tocSize - tocHeaderSize) / tocEntrySize)
}
