package host

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/meigma/shadercache/internal/cacheerr"
)

const (
	// sharedMagic is "TOCS" and hostMagic is "TOCH", read as little-endian u32.
	sharedMagic = uint32('T') | uint32('O')<<8 | uint32('C')<<16 | uint32('S')<<24
	hostMagic   = uint32('T') | uint32('O')<<8 | uint32('C')<<16 | uint32('H')<<24

	// FormatVersion is bumped whenever the shared or host file layout changes.
	FormatVersion = 1

	tocHeaderSize      = 32
	sharedTocEntrySize = 8
	hostTocEntrySize   = 16
	maxSharedEntrySize = 16 << 20
	defaultFilePerm    = 0o600
	defaultDirPerm     = 0o700
)

type tocHeader struct {
	Magic          uint32
	FormatVersion  uint32
	CodegenVersion uint32
	Padding        uint32
	Timestamp      uint64
	Reserved       uint64
}

func (h *tocHeader) marshal() []byte {
	b := make([]byte, tocHeaderSize)
	binary.LittleEndian.PutUint32(b[0:], h.Magic)
	binary.LittleEndian.PutUint32(b[4:], h.FormatVersion)
	binary.LittleEndian.PutUint32(b[8:], h.CodegenVersion)
	binary.LittleEndian.PutUint32(b[12:], h.Padding)
	binary.LittleEndian.PutUint64(b[16:], h.Timestamp)
	binary.LittleEndian.PutUint64(b[24:], h.Reserved)
	return b
}

func readTocHeader(r io.ReaderAt, magic uint32) (tocHeader, error) {
	var b [tocHeaderSize]byte
	if _, err := r.ReadAt(b[:], 0); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return tocHeader{}, cacheerr.Newf(cacheerr.FileCorrupted, "truncated toc header")
		}
		return tocHeader{}, err
	}
	h := tocHeader{
		Magic:          binary.LittleEndian.Uint32(b[0:]),
		FormatVersion:  binary.LittleEndian.Uint32(b[4:]),
		CodegenVersion: binary.LittleEndian.Uint32(b[8:]),
		Padding:        binary.LittleEndian.Uint32(b[12:]),
		Timestamp:      binary.LittleEndian.Uint64(b[16:]),
		Reserved:       binary.LittleEndian.Uint64(b[24:]),
	}
	if h.Magic != magic {
		return tocHeader{}, cacheerr.Newf(cacheerr.FileCorrupted, "bad toc magic %#x", h.Magic)
	}
	if h.FormatVersion != FormatVersion {
		return tocHeader{}, cacheerr.Newf(cacheerr.IncompatibleVersion, "toc format version %d, want %d", h.FormatVersion, FormatVersion)
	}
	return h, nil
}

// hostTocEntry locates a host binary and its stage info in the host data file.
// A zero BinarySize marks a program without a host binary.
type hostTocEntry struct {
	Offset     uint64
	BinarySize uint32
	InfoSize   uint32
}

func (e *hostTocEntry) marshal() []byte {
	b := make([]byte, hostTocEntrySize)
	binary.LittleEndian.PutUint64(b[0:], e.Offset)
	binary.LittleEndian.PutUint32(b[8:], e.BinarySize)
	binary.LittleEndian.PutUint32(b[12:], e.InfoSize)
	return b
}

func readHostTocEntry(r io.ReaderAt, index int) (hostTocEntry, error) {
	var b [hostTocEntrySize]byte
	if _, err := r.ReadAt(b[:], tocHeaderSize+int64(index)*hostTocEntrySize); err != nil {
		return hostTocEntry{}, fmt.Errorf("read host toc entry %d: %w", index, err)
	}
	return hostTocEntry{
		Offset:     binary.LittleEndian.Uint64(b[0:]),
		BinarySize: binary.LittleEndian.Uint32(b[8:]),
		InfoSize:   binary.LittleEndian.Uint32(b[12:]),
	}, nil
}

func readSharedTocEntry(r io.ReaderAt, index int) (uint64, error) {
	var b [sharedTocEntrySize]byte
	if _, err := r.ReadAt(b[:], tocHeaderSize+int64(index)*sharedTocEntrySize); err != nil {
		return 0, fmt.Errorf("read shared toc entry %d: %w", index, err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func entryCount(size int64, entrySize int64) int {
	if size <= tocHeaderSize {
		return 0
	}
	return int((size - tocHeaderSize) / entrySize)
}

func fileSize(f *os.File) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
