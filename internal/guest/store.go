// Package guest implements the guest code store: an append-only pair of
// files holding the raw guest shader code and constant buffer 1 snapshot of
// every stage ever cached.
//
// The TOC file starts with a 32-byte header followed by 16-byte entries
// {offset, codeSize, cb1Size, hash}. The data file holds, per entry, the raw
// cb1 bytes followed by a length-prefixed zstd block of the code. Entries are
// addressed by their TOC index, which is stable until the cache is cleared.
package guest

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"github.com/coocood/freecache"

	"github.com/meigma/shadercache/gpu"
	"github.com/meigma/shadercache/internal/cacheerr"
	"github.com/meigma/shadercache/internal/compress"
	"github.com/meigma/shadercache/internal/sizing"
)

const (
	// TocFileName is the name of the guest TOC file.
	TocFileName = "guest.toc"
	// DataFileName is the name of the guest data file.
	DataFileName = "guest.data"

	// DefaultMemoryCacheSize is the default size of the LoadShader memo.
	DefaultMemoryCacheSize = 32 << 20

	defaultDirPerm  = 0o700
	defaultFilePerm = 0o600
)

// ErrTooLarge is returned when an entry does not fit the 32-bit fields of
// the TOC.
var ErrTooLarge = errors.New("shadercache: guest entry too large")

// ErrEmptyCode is returned when AddShader is called without code.
var ErrEmptyCode = errors.New("shadercache: empty guest code")

// HashFunc computes the bucketing hash of a guest shader.
type HashFunc func(code, cb1 []byte) uint32

// DefaultHash hashes cb1 then code with xxhash and folds the result to 32
// bits.
func DefaultHash(code, cb1 []byte) uint32 {
	d := xxhash.New()
	_, _ = d.Write(cb1)  //nolint:errcheck // never fails
	_, _ = d.Write(code) //nolint:errcheck // never fails
	sum := d.Sum64()
	return uint32(sum) ^ uint32(sum>>32)
}

// Store is the guest code store.
//
// A Store is not safe for concurrent use. At runtime it has a single
// logical writer.
type Store struct {
	dir    string
	logger *slog.Logger
	hash   HashFunc
	codec  *compress.Pool

	memoSize int
	memo     *freecache.Cache

	// buckets maps a hash to the entries carrying it. It mirrors the TOC
	// as of modifications.
	buckets       map[uint32][]tocMemoryEntry
	modifications uint32
	loaded        bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithHashFunc replaces the bucketing hash.
func WithHashFunc(fn HashFunc) Option {
	return func(s *Store) {
		if fn != nil {
			s.hash = fn
		}
	}
}

// WithMemoryCacheSize sets the size in bytes of the LoadShader memo.
// Zero or negative disables the memo.
func WithMemoryCacheSize(n int) Option {
	return func(s *Store) {
		s.memoSize = n
	}
}

// New creates a store rooted at dir. Files are created on first write.
func New(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, errors.New("guest store dir is empty")
	}
	s := &Store{
		dir:      dir,
		hash:     DefaultHash,
		codec:    compress.NewPool(compress.DefaultMaxDecoderMemory),
		memoSize: DefaultMemoryCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.memoSize > 0 {
		s.memo = freecache.NewCache(s.memoSize)
	}
	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return nil, err
	}
	return s, nil
}

// TocPath returns the path of the TOC file.
func (s *Store) TocPath() string { return filepath.Join(s.dir, TocFileName) }

// DataPath returns the path of the data file.
func (s *Store) DataPath() string { return filepath.Join(s.dir, DataFileName) }

// TocFileExists reports whether the TOC file exists.
func (s *Store) TocFileExists() bool { return fileExists(s.TocPath()) }

// DataFileExists reports whether the data file exists.
func (s *Store) DataFileExists() bool { return fileExists(s.DataPath()) }

// OpenTocFile opens the TOC file for reading.
func (s *Store) OpenTocFile() (*File, error) { return openReadOnly(s.TocPath()) }

// OpenDataFile opens the data file for reading.
func (s *Store) OpenDataFile() (*File, error) { return openReadOnly(s.DataPath()) }

// Count returns the number of entries in the TOC, stubbed ones included.
func (s *Store) Count() (int, error) {
	info, err := os.Stat(s.TocPath())
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return entryCount(info.Size()), nil
}

// ModificationsCount returns the modification counter stored in the TOC
// header. A missing or empty TOC reports 0.
func (s *Store) ModificationsCount() (uint32, error) {
	f, err := os.Open(s.TocPath())
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	if info.Size() == 0 {
		return 0, nil
	}
	h, err := readTocHeader(f)
	if err != nil {
		return 0, err
	}
	return h.ModificationsCount, nil
}

// AddShader stores a guest shader and returns its index. If identical code
// and cb1 bytes are already stored, the existing index is returned and the
// files are left untouched. A TOC with a bad magic or version is recreated
// empty before the add.
func (s *Store) AddShader(code, cb1 []byte) (int, error) {
	if len(code) == 0 {
		return 0, ErrEmptyCode
	}
	codeSize, err := sizing.LenUint32(code, ErrTooLarge)
	if err != nil {
		return 0, err
	}
	cb1Size, err := sizing.LenUint32(cb1, ErrTooLarge)
	if err != nil {
		return 0, err
	}

	toc, err := os.OpenFile(s.TocPath(), os.O_RDWR|os.O_CREATE, defaultFilePerm)
	if err != nil {
		return 0, fmt.Errorf("open guest toc: %w", err)
	}
	defer toc.Close()
	data, err := os.OpenFile(s.DataPath(), os.O_RDWR|os.O_CREATE, defaultFilePerm)
	if err != nil {
		return 0, fmt.Errorf("open guest data: %w", err)
	}
	defer data.Close()

	header, count, err := s.syncToc(toc)
	if err != nil {
		return 0, err
	}

	hash := s.hash(code, cb1)
	for _, candidate := range s.buckets[hash] {
		if candidate.stubbed() || candidate.CodeSize != codeSize || candidate.Cb1Size != cb1Size {
			continue
		}
		stored, err := s.readEntry(&File{f: data}, candidate.tocEntry)
		if err != nil {
			s.logger.Warn("unreadable guest entry skipped during dedup",
				"index", candidate.Index, "error", err)
			continue
		}
		if bytes.Equal(stored.Code, code) && bytes.Equal(stored.Cb1Data, cb1) {
			return candidate.Index, nil
		}
	}

	dataInfo, err := data.Stat()
	if err != nil {
		return 0, err
	}
	offset, err := sizing.ToUint32(dataInfo.Size(), ErrTooLarge)
	if err != nil {
		return 0, err
	}

	var blob bytes.Buffer
	blob.Grow(len(cb1) + compress.BlockHeaderSize + len(code)/2)
	blob.Write(cb1)
	if _, err := s.codec.WriteBlock(&blob, code); err != nil {
		return 0, fmt.Errorf("compress guest code: %w", err)
	}
	if _, err := data.WriteAt(blob.Bytes(), int64(offset)); err != nil {
		return 0, fmt.Errorf("write guest data: %w", err)
	}

	entry := tocEntry{Offset: offset, CodeSize: codeSize, Cb1Size: cb1Size, Hash: hash}
	if _, err := toc.WriteAt(entry.marshal(), entryOffset(count)); err != nil {
		return 0, fmt.Errorf("write guest toc entry: %w", err)
	}
	if err := toc.Truncate(entryOffset(count + 1)); err != nil {
		return 0, fmt.Errorf("write guest toc entry: %w", err)
	}

	header.ModificationsCount++
	if _, err := toc.WriteAt(header.marshal(), 0); err != nil {
		return 0, fmt.Errorf("write guest toc header: %w", err)
	}
	s.modifications = header.ModificationsCount
	s.buckets[hash] = append(s.buckets[hash], tocMemoryEntry{tocEntry: entry, Index: count})

	return count, nil
}

// LoadShader returns the guest code stored at index.
//
// Format violations return a *cacheerr.LoadError of kind FileCorrupted, or
// IncompatibleVersion for a TOC written by another format version; other
// errors are I/O failures.
func (s *Store) LoadShader(toc, data ByteSource, index int) (*gpu.GuestCode, error) {
	if gc, ok := s.memoGet(index); ok {
		return gc, nil
	}
	if _, err := readTocHeader(toc); err != nil {
		return nil, err
	}
	if index < 0 || entryOffset(index)+tocEntrySize > toc.Size() {
		return nil, cacheerr.Newf(cacheerr.FileCorrupted, "guest entry %d out of range", index)
	}
	var raw [tocEntrySize]byte
	if _, err := toc.ReadAt(raw[:], entryOffset(index)); err != nil {
		return nil, fmt.Errorf("read guest toc entry %d: %w", index, err)
	}
	entry := parseTocEntry(raw[:])
	if entry.stubbed() {
		return nil, cacheerr.Newf(cacheerr.FileCorrupted, "guest entry %d was removed", index)
	}

	gc, err := s.readEntry(data, entry)
	if err != nil {
		return nil, fmt.Errorf("guest entry %d: %w", index, err)
	}
	s.memoSet(index, gc)
	return gc, nil
}

// StubShader logically removes the entry at index. The slot stays in the
// TOC so later indices are unchanged; a stubbed entry never deduplicates.
func (s *Store) StubShader(index int) error {
	toc, err := os.OpenFile(s.TocPath(), os.O_RDWR, defaultFilePerm)
	if err != nil {
		return fmt.Errorf("open guest toc: %w", err)
	}
	defer toc.Close()

	header, count, err := s.syncToc(toc)
	if err != nil {
		return err
	}
	if index < 0 || index >= count {
		return fmt.Errorf("stub guest entry %d: out of range", index)
	}

	var zero [4]byte
	if _, err := toc.WriteAt(zero[:], entryOffset(index)+4); err != nil {
		return fmt.Errorf("stub guest entry %d: %w", index, err)
	}
	header.ModificationsCount++
	if _, err := toc.WriteAt(header.marshal(), 0); err != nil {
		return fmt.Errorf("write guest toc header: %w", err)
	}
	s.loaded = false
	if s.memo != nil {
		s.memo.Del(memoKey(index))
	}
	return nil
}

// ClearCache truncates both files and drops all in-memory state. Indices
// restart at 0. Clearing an already empty store is a no-op.
func (s *Store) ClearCache() error {
	for _, path := range []string{s.TocPath(), s.DataPath()} {
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, defaultFilePerm)
		if err != nil {
			return fmt.Errorf("clear guest cache: %w", err)
		}
		err = f.Truncate(0)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("clear guest cache: %w", err)
		}
	}
	s.buckets = nil
	s.modifications = 0
	s.loaded = false
	s.ClearMemoryCache()
	return nil
}

// ClearMemoryCache drops the LoadShader memo. The files are untouched.
func (s *Store) ClearMemoryCache() {
	if s.memo != nil {
		s.memo.Clear()
	}
}

// syncToc makes sure the TOC has a valid header and that the in-memory
// buckets match it, reloading them if another writer changed the file. A
// missing or unusable header resets both files. It returns the header and
// the number of complete entries.
func (s *Store) syncToc(toc *os.File) (tocHeader, int, error) {
	info, err := toc.Stat()
	if err != nil {
		return tocHeader{}, 0, err
	}
	if info.Size() < tocHeaderSize {
		return s.resetToc(toc)
	}

	header, err := readTocHeader(toc)
	var lerr *cacheerr.LoadError
	if errors.As(err, &lerr) {
		s.logger.Warn("guest cache unusable, recreating", "error", err)
		return s.resetToc(toc)
	}
	if err != nil {
		return tocHeader{}, 0, err
	}
	count := entryCount(info.Size())
	if !s.loaded || header.ModificationsCount != s.modifications {
		if err := s.loadToc(toc, count); err != nil {
			return tocHeader{}, 0, err
		}
		s.modifications = header.ModificationsCount
		s.loaded = true
	}
	return header, count, nil
}

// resetToc empties both files and writes a fresh TOC header. Entries
// appended after a reset start at index 0.
func (s *Store) resetToc(toc *os.File) (tocHeader, int, error) {
	header := newTocHeader()
	if err := toc.Truncate(0); err != nil {
		return tocHeader{}, 0, err
	}
	if err := os.Truncate(s.DataPath(), 0); err != nil && !errors.Is(err, os.ErrNotExist) {
		return tocHeader{}, 0, fmt.Errorf("reset guest data: %w", err)
	}
	if _, err := toc.WriteAt(header.marshal(), 0); err != nil {
		return tocHeader{}, 0, fmt.Errorf("write guest toc header: %w", err)
	}
	s.buckets = make(map[uint32][]tocMemoryEntry)
	s.modifications = 0
	s.loaded = true
	s.ClearMemoryCache()
	return header, 0, nil
}

func (s *Store) loadToc(toc io.ReaderAt, count int) error {
	buf := make([]byte, count*tocEntrySize)
	if _, err := toc.ReadAt(buf, tocHeaderSize); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read guest toc: %w", err)
	}
	s.buckets = make(map[uint32][]tocMemoryEntry)
	for i := range count {
		e := parseTocEntry(buf[i*tocEntrySize:])
		s.buckets[e.Hash] = append(s.buckets[e.Hash], tocMemoryEntry{tocEntry: e, Index: i})
	}
	s.logger.Debug("guest toc loaded", "entries", count)
	return nil
}

func (s *Store) readEntry(data ByteSource, e tocEntry) (*gpu.GuestCode, error) {
	end := int64(e.Offset) + int64(e.Cb1Size) + compress.BlockHeaderSize
	if int64(e.Offset) >= data.Size() || end > data.Size() {
		return nil, cacheerr.Newf(cacheerr.FileCorrupted, "data offset %d beyond data file", e.Offset)
	}
	r := io.NewSectionReader(data, int64(e.Offset), data.Size()-int64(e.Offset))

	cb1 := make([]byte, e.Cb1Size)
	if _, err := io.ReadFull(r, cb1); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, cacheerr.New(cacheerr.FileCorrupted, err)
		}
		return nil, fmt.Errorf("read cb1: %w", err)
	}
	code, err := s.codec.ReadBlock(r, int(e.CodeSize))
	if err != nil {
		if errors.Is(err, compress.ErrDecompression) || errors.Is(err, compress.ErrSizeMismatch) {
			return nil, cacheerr.New(cacheerr.FileCorrupted, err)
		}
		return nil, err
	}
	return &gpu.GuestCode{Code: code, Cb1Data: cb1}, nil
}

func memoKey(index int) []byte {
	var k [8]byte
	binary.LittleEndian.PutUint64(k[:], uint64(index))
	return k[:]
}

// memoGet returns a private copy of a memoized entry.
func (s *Store) memoGet(index int) (*gpu.GuestCode, bool) {
	if s.memo == nil {
		return nil, false
	}
	v, err := s.memo.Get(memoKey(index))
	if err != nil || len(v) < 4 {
		return nil, false
	}
	cb1Len := int(binary.LittleEndian.Uint32(v))
	if 4+cb1Len > len(v) {
		return nil, false
	}
	return &gpu.GuestCode{
		Cb1Data: bytes.Clone(v[4 : 4+cb1Len]),
		Code:    bytes.Clone(v[4+cb1Len:]),
	}, true
}

func (s *Store) memoSet(index int, gc *gpu.GuestCode) {
	if s.memo == nil {
		return
	}
	v := make([]byte, 4+len(gc.Cb1Data)+len(gc.Code))
	binary.LittleEndian.PutUint32(v, uint32(len(gc.Cb1Data)))
	copy(v[4:], gc.Cb1Data)
	copy(v[4+len(gc.Cb1Data):], gc.Code)
	if err := s.memo.Set(memoKey(index), v, 0); err != nil {
		// Entries larger than the memo's per-entry limit are not memoized.
		s.logger.Debug("guest entry not memoized", "index", index, "error", err)
	}
}

func openReadOnly(path string) (*File, error) {
	f, err := os.Open(path) //nolint:gosec // path is derived from the cache dir
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, cacheerr.New(cacheerr.NoAccess, err)
	}
	return &File{f: f}, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
