package host

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/meigma/shadercache/internal/compress"
	"github.com/meigma/shadercache/internal/sizing"
)

var errEntryTooLarge = errors.New("shadercache: host store entry too large")

// OutputStreams holds the shared and host files open for a batch of
// AddShader calls. Close releases them.
type OutputStreams struct {
	sharedToc  *os.File
	sharedData *os.File
	hostToc    *os.File
	hostData   *os.File
}

// GetOutputStreams opens the shared and host files for writing, creating
// them with a fresh header when missing or empty.
func (s *Storage) GetOutputStreams() (*OutputStreams, error) {
	header := tocHeader{
		FormatVersion:  FormatVersion,
		CodegenVersion: s.codegenVersion,
		Timestamp:      uint64(s.now().UnixNano()), //nolint:gosec // wall clock is after 1970
	}
	o := &OutputStreams{}
	var err error
	if o.sharedToc, err = openToc(s.SharedTocPath(), sharedMagic, header); err != nil {
		return nil, err
	}
	if o.sharedData, err = openAppend(s.SharedDataPath()); err != nil {
		o.Close()
		return nil, err
	}
	if o.hostToc, err = openToc(s.HostTocPath(), hostMagic, header); err != nil {
		o.Close()
		return nil, err
	}
	if o.hostData, err = openAppend(s.HostDataPath()); err != nil {
		o.Close()
		return nil, err
	}
	return o, nil
}

// Close closes all files.
func (o *OutputStreams) Close() error {
	var errs []error
	for _, f := range []*os.File{o.sharedToc, o.sharedData, o.hostToc, o.hostData} {
		if f != nil {
			errs = append(errs, f.Close())
		}
	}
	return errors.Join(errs...)
}

// appendShared appends a compressed program entry and returns its index.
func (o *OutputStreams) appendShared(compressed []byte) (int, error) {
	offset, err := fileSize(o.sharedData)
	if err != nil {
		return 0, err
	}
	if err := writeBlockAt(o.sharedData, compressed, offset); err != nil {
		return 0, fmt.Errorf("write shared data: %w", err)
	}

	tocSize, err := fileSize(o.sharedToc)
	if err != nil {
		return 0, err
	}
	index := entryCount(tocSize, sharedTocEntrySize)
	var entry [sharedTocEntrySize]byte
	binary.LittleEndian.PutUint64(entry[:], uint64(offset)) //nolint:gosec // file offsets are non-negative
	if err := writeEntry(o.sharedToc, entry[:], index, sharedTocEntrySize); err != nil {
		return 0, fmt.Errorf("write shared toc: %w", err)
	}
	return index, nil
}

// appendHost writes the host binary and info of the program at index. Host
// entries are positional; missing earlier entries read as "no binary".
func (o *OutputStreams) appendHost(codec *compress.Pool, index int, bin, info []byte) error {
	binarySize, err := sizing.LenUint32(bin, errEntryTooLarge)
	if err != nil {
		return err
	}
	infoSize, err := sizing.LenUint32(info, errEntryTooLarge)
	if err != nil {
		return err
	}
	offset, err := fileSize(o.hostData)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := codec.WriteBlock(&buf, bin); err != nil {
		return fmt.Errorf("compress host binary: %w", err)
	}
	if _, err := codec.WriteBlock(&buf, info); err != nil {
		return fmt.Errorf("compress host info: %w", err)
	}
	if _, err := o.hostData.WriteAt(buf.Bytes(), offset); err != nil {
		return fmt.Errorf("write host data: %w", err)
	}

	e := hostTocEntry{Offset: uint64(offset), BinarySize: binarySize, InfoSize: infoSize} //nolint:gosec // file offsets are non-negative
	if err := writeEntry(o.hostToc, e.marshal(), index, hostTocEntrySize); err != nil {
		return fmt.Errorf("write host toc: %w", err)
	}
	return nil
}

// writeEntry writes a TOC entry at index and drops anything after it.
func writeEntry(f *os.File, entry []byte, index int, entrySize int64) error {
	off := tocHeaderSize + int64(index)*entrySize
	if _, err := f.WriteAt(entry, off); err != nil {
		return err
	}
	return f.Truncate(off + entrySize)
}

func writeBlockAt(f *os.File, compressed []byte, offset int64) error {
	n, err := sizing.LenUint32(compressed, errEntryTooLarge)
	if err != nil {
		return err
	}
	buf := make([]byte, compress.BlockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(buf, n)
	copy(buf[compress.BlockHeaderSize:], compressed)
	_, err = f.WriteAt(buf, offset)
	return err
}

// openToc opens a TOC for writing. A missing or header-less file gets a
// header with the given magic; an existing header must be valid.
func openToc(path string, magic uint32, header tocHeader) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, defaultFilePerm) //nolint:gosec // path is derived from the cache dir
	if err != nil {
		return nil, err
	}
	size, err := fileSize(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if size < tocHeaderSize {
		header.Magic = magic
		err = f.Truncate(0)
		if err == nil {
			_, err = f.WriteAt(header.marshal(), 0)
		}
		if err != nil {
			f.Close()
			return nil, err
		}
		return f, nil
	}
	if _, err := readTocHeader(f, magic); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func openAppend(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDWR|os.O_CREATE, defaultFilePerm) //nolint:gosec // path is derived from the cache dir
}
