// Package host implements the host program store.
//
// Programs are described by two pairs of files. The shared files hold, per
// program, the guest code indices of its stages and the specialization
// state it was compiled with; they are valid on any host. The host files,
// named after the graphics API and GPU vendor, hold the compiled host binary
// and per-stage translation info of each program at the same index.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "crypto/sha256" // digest.Canonical

	"github.com/opencontainers/go-digest"

	"github.com/meigma/shadercache/gpu"
	"github.com/meigma/shadercache/internal/cacheerr"
	"github.com/meigma/shadercache/internal/compress"
	"github.com/meigma/shadercache/internal/guest"
)

const (
	// SharedTocFileName is the name of the shared TOC file.
	SharedTocFileName = "shared.toc"
	// SharedDataFileName is the name of the shared data file.
	SharedDataFileName = "shared.data"

	// DefaultCodegenVersion identifies the translator output format. Host
	// binaries written with another version are not trusted.
	DefaultCodegenVersion = 1
)

// ErrDigestMismatch is returned when a host binary does not match its
// recorded digest.
var ErrDigestMismatch = errors.New("shadercache: host binary digest mismatch")

// Pipeline receives the programs read by LoadShaders.
type Pipeline interface {
	// QueueHostProgram queues a program whose host binary was read from the
	// host files. stages holds the guest code and host stage info per slot.
	QueueHostProgram(index int, stages []*gpu.CachedStage, binary []byte, spec *gpu.SpecializationState)

	// QueueGuestProgram queues a program that must be translated again
	// from guest code.
	QueueGuestProgram(index int, shaders []*gpu.GuestCode, spec *gpu.SpecializationState)

	// CheckCompilation processes compilations that finished so far.
	CheckCompilation()
}

// Storage is the host program store.
//
// Storage is not safe for concurrent use. LoadShaders runs on the loading
// goroutine and AddShader on a single writer.
type Storage struct {
	dir            string
	hostName       string
	guest          *guest.Store
	codec          *compress.Pool
	logger         *slog.Logger
	codegenVersion uint32
	now            func() time.Time
}

// Option configures a Storage.
type Option func(*Storage)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Storage) {
		s.logger = logger
	}
}

// WithCodegenVersion sets the codegen version written to and expected in
// the TOC headers.
func WithCodegenVersion(v uint32) Option {
	return func(s *Storage) {
		s.codegenVersion = v
	}
}

// WithClock sets the clock used for TOC header timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Storage) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a store rooted at dir. Guest code is kept in g; host files
// are named after the API and vendor reported in caps.
func New(dir string, g *guest.Store, caps gpu.Capabilities, opts ...Option) (*Storage, error) {
	if dir == "" {
		return nil, errors.New("host store dir is empty")
	}
	if g == nil {
		return nil, errors.New("host store requires a guest store")
	}
	s := &Storage{
		dir:            dir,
		hostName:       HostFileName(caps.API, caps.VendorName),
		guest:          g,
		codec:          compress.NewPool(compress.DefaultMaxDecoderMemory),
		codegenVersion: DefaultCodegenVersion,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
		return nil, err
	}
	return s, nil
}

// HostFileName returns the base name of the host files for a backend:
// "<api>_<vendor>", where vendor is cut at its first space and stripped of
// characters that are not letters, digits, '-' or '_'.
func HostFileName(api, vendor string) string {
	if i := strings.IndexByte(vendor, ' '); i >= 0 {
		vendor = vendor[:i]
	}
	clean := func(s string) string {
		return strings.Map(func(r rune) rune {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
				return r
			default:
				return -1
			}
		}, s)
	}
	api, vendor = strings.ToLower(clean(api)), strings.ToLower(clean(vendor))
	if api == "" {
		api = "unknown"
	}
	if vendor == "" {
		vendor = "unknown"
	}
	return api + "_" + vendor
}

// Guest returns the guest code store.
func (s *Storage) Guest() *guest.Store { return s.guest }

// SharedTocPath returns the path of the shared TOC file.
func (s *Storage) SharedTocPath() string { return filepath.Join(s.dir, SharedTocFileName) }

// SharedDataPath returns the path of the shared data file.
func (s *Storage) SharedDataPath() string { return filepath.Join(s.dir, SharedDataFileName) }

// HostTocPath returns the path of the host TOC file.
func (s *Storage) HostTocPath() string { return filepath.Join(s.dir, s.hostName+".toc") }

// HostDataPath returns the path of the host data file.
func (s *Storage) HostDataPath() string { return filepath.Join(s.dir, s.hostName+".data") }

// CacheExists reports whether the guest and shared files all exist.
func (s *Storage) CacheExists() bool {
	return s.guest.TocFileExists() && s.guest.DataFileExists() &&
		exists(s.SharedTocPath()) && exists(s.SharedDataPath())
}

// GetProgramCount returns the number of programs in the shared TOC.
func (s *Storage) GetProgramCount() (int, error) {
	info, err := os.Stat(s.SharedTocPath())
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return entryCount(info.Size(), sharedTocEntrySize), nil
}

// ClearSharedCache truncates the shared files.
func (s *Storage) ClearSharedCache() error {
	return truncate(s.SharedTocPath(), s.SharedDataPath())
}

// ClearHostCache truncates the host files of the current backend.
func (s *Storage) ClearHostCache() error {
	return truncate(s.HostTocPath(), s.HostDataPath())
}

// ClearGuestCache truncates the guest files.
func (s *Storage) ClearGuestCache() error {
	return s.guest.ClearCache()
}

// LoadShaders reads every stored program in index order and hands it to p,
// calling p.CheckCompilation after each one. Programs with a trusted host
// binary are queued as host programs, others as guest programs.
//
// Format violations in the guest or shared files return a
// *cacheerr.LoadError; problems in the host files only demote programs to
// guest programs. A missing cache is not an error.
func (s *Storage) LoadShaders(ctx context.Context, p Pipeline) error {
	if !s.CacheExists() {
		return nil
	}

	guestToc, err := s.guest.OpenTocFile()
	if err != nil {
		return err
	}
	defer guestToc.Close()
	guestData, err := s.guest.OpenDataFile()
	if err != nil {
		return err
	}
	defer guestData.Close()

	sharedToc, err := openRead(s.SharedTocPath())
	if err != nil {
		return err
	}
	defer sharedToc.Close()
	sharedData, err := openRead(s.SharedDataPath())
	if err != nil {
		return err
	}
	defer sharedData.Close()

	tocSize, err := fileSize(sharedToc)
	if err != nil {
		return err
	}
	if tocSize == 0 {
		return nil
	}
	sharedHeader, err := readTocHeader(sharedToc, sharedMagic)
	if err != nil {
		return fmt.Errorf("shared toc: %w", err)
	}
	count := entryCount(tocSize, sharedTocEntrySize)

	hr := s.openHostReader(sharedHeader)
	if hr != nil {
		defer hr.close()
	}

	for index := range count {
		if err := ctx.Err(); err != nil {
			return nil
		}

		rec, err := s.readProgram(sharedToc, sharedData, index)
		if err != nil {
			return fmt.Errorf("program %d: %w", index, err)
		}

		slotIndices := rec.slotIndices()
		guestCode := make([]*gpu.GuestCode, len(slotIndices))
		for slot, gi := range slotIndices {
			if gi < 0 {
				continue
			}
			gc, err := s.guest.LoadShader(guestToc, guestData, gi)
			if err != nil {
				return fmt.Errorf("program %d slot %d: %w", index, slot, err)
			}
			guestCode[slot] = gc
		}

		if hr != nil {
			binary, infos, err := hr.read(s, index, len(slotIndices))
			switch {
			case err != nil:
				s.logger.Warn("host binary unusable, retranslating", "program", index, "error", err)
			case binary != nil:
				stages := make([]*gpu.CachedStage, len(guestCode))
				for slot, gc := range guestCode {
					if gc == nil {
						continue
					}
					stages[slot] = &gpu.CachedStage{Info: infos[slot], Code: gc.Code, Cb1Data: gc.Cb1Data}
				}
				p.QueueHostProgram(index, stages, binary, rec.spec)
				p.CheckCompilation()
				continue
			}
		}

		p.QueueGuestProgram(index, guestCode, rec.spec)
		p.CheckCompilation()
	}
	return nil
}

// AddShader stores a linked program together with its host binary. If
// streams is nil the files are opened for this call only.
func (s *Storage) AddShader(program *gpu.CachedProgram, binary []byte, streams *OutputStreams) (err error) {
	if program == nil || program.SpecializationState == nil {
		return errors.New("add shader: program without specialization state")
	}
	if streams == nil {
		streams, err = s.GetOutputStreams()
		if err != nil {
			return err
		}
		defer func() {
			if cerr := streams.Close(); err == nil {
				err = cerr
			}
		}()
	}

	indices := make([]int, len(program.Shaders))
	for slot, st := range program.Shaders {
		indices[slot] = -1
		if st == nil {
			continue
		}
		idx, err := s.guest.AddShader(st.Code, st.Cb1Data)
		if err != nil {
			return fmt.Errorf("add guest shader for slot %d: %w", slot, err)
		}
		indices[slot] = idx
	}

	entry, err := s.codec.Compress(encodeProgramEntry(program.SpecializationState, indices))
	if err != nil {
		return fmt.Errorf("compress program entry: %w", err)
	}
	index, err := streams.appendShared(entry)
	if err != nil {
		return err
	}

	info := encodeHostInfo(digest.FromBytes(binary).String(), program.Shaders)
	if err := streams.appendHost(s.codec, index, binary, info); err != nil {
		return err
	}
	s.logger.Debug("program stored", "index", index, "compute", program.IsCompute(), "binary_size", len(binary))
	return nil
}

func (s *Storage) readProgram(toc, data *os.File, index int) (*programRecord, error) {
	offset, err := readSharedTocEntry(toc, index)
	if err != nil {
		return nil, err
	}
	size, err := fileSize(data)
	if err != nil {
		return nil, err
	}
	if offset >= uint64(size) { //nolint:gosec // size is non-negative
		return nil, cacheerr.Newf(cacheerr.FileCorrupted, "shared data offset %d beyond file", offset)
	}
	r := io.NewSectionReader(data, int64(offset), size-int64(offset)) //nolint:gosec // bounded above
	raw, err := s.codec.ReadBlockAll(r, maxSharedEntrySize)
	if err != nil {
		return nil, corruptIfCodec(err)
	}
	return decodeProgramEntry(raw)
}

// hostReader reads host binaries of the current backend.
type hostReader struct {
	toc, data *os.File
	count     int
}

// openHostReader opens the host files if they can be trusted for the given
// shared header. It returns nil when host binaries must not be used.
func (s *Storage) openHostReader(shared tocHeader) *hostReader {
	if shared.CodegenVersion != s.codegenVersion {
		s.logger.Info("codegen version changed, host binaries ignored",
			"stored", shared.CodegenVersion, "current", s.codegenVersion)
		return nil
	}
	toc, err := os.Open(s.HostTocPath())
	if err != nil {
		return nil
	}
	data, err := os.Open(s.HostDataPath())
	if err != nil {
		toc.Close()
		return nil
	}
	hr := &hostReader{toc: toc, data: data}

	size, err := fileSize(toc)
	if err != nil || size == 0 {
		hr.close()
		return nil
	}
	header, err := readTocHeader(toc, hostMagic)
	switch {
	case err != nil:
		s.logger.Warn("host toc unusable", "error", err)
	case header.CodegenVersion != s.codegenVersion:
		s.logger.Info("host binaries built by another codegen version", "stored", header.CodegenVersion)
	case header.Timestamp < shared.Timestamp:
		s.logger.Info("host binaries older than the shared cache")
	default:
		hr.count = entryCount(size, hostTocEntrySize)
		return hr
	}
	hr.close()
	return nil
}

// read returns the host binary and per-slot stage info of a program, or a
// nil binary if none was stored.
func (hr *hostReader) read(s *Storage, index, slots int) ([]byte, []*gpu.ShaderProgramInfo, error) {
	if index >= hr.count {
		return nil, nil, nil
	}
	e, err := readHostTocEntry(hr.toc, index)
	if err != nil {
		return nil, nil, err
	}
	if e.BinarySize == 0 {
		return nil, nil, nil
	}
	size, err := fileSize(hr.data)
	if err != nil {
		return nil, nil, err
	}
	if e.Offset >= uint64(size) { //nolint:gosec // size is non-negative
		return nil, nil, cacheerr.Newf(cacheerr.FileCorrupted, "host data offset %d beyond file", e.Offset)
	}
	r := io.NewSectionReader(hr.data, int64(e.Offset), size-int64(e.Offset)) //nolint:gosec // bounded above
	binary, err := s.codec.ReadBlock(r, int(e.BinarySize))
	if err != nil {
		return nil, nil, corruptIfCodec(err)
	}
	rawInfo, err := s.codec.ReadBlock(r, int(e.InfoSize))
	if err != nil {
		return nil, nil, corruptIfCodec(err)
	}
	stored, infos, err := decodeHostInfo(rawInfo, slots)
	if err != nil {
		return nil, nil, err
	}
	d, err := digest.Parse(stored)
	if err != nil {
		return nil, nil, cacheerr.New(cacheerr.FileCorrupted, err)
	}
	if actual := d.Algorithm().FromBytes(binary); actual != d {
		return nil, nil, fmt.Errorf("%w: want %s, got %s", ErrDigestMismatch, d, actual)
	}
	return binary, infos, nil
}

func (hr *hostReader) close() {
	hr.toc.Close()
	hr.data.Close()
}

func corruptIfCodec(err error) error {
	if errors.Is(err, compress.ErrDecompression) || errors.Is(err, compress.ErrSizeMismatch) {
		return cacheerr.New(cacheerr.FileCorrupted, err)
	}
	return err
}

func openRead(path string) (*os.File, error) {
	f, err := os.Open(path) //nolint:gosec // path is derived from the cache dir
	if err != nil {
		return nil, cacheerr.New(cacheerr.NoAccess, err)
	}
	return f, nil
}

func truncate(paths ...string) error {
	for _, path := range paths {
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, defaultFilePerm) //nolint:gosec // path is derived from the cache dir
		if err != nil {
			return err
		}
		err = f.Truncate(0)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
