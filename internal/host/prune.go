package host

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/meigma/shadercache/internal/guest"
)

// HostFiles describes the host file pair of one backend.
type HostFiles struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// ListHostFiles returns the host file pairs in dir, sorted by name.
func ListHostFiles(dir string) ([]HostFiles, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []HostFiles
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".toc")
		if !ok || !e.Type().IsRegular() || e.Name() == SharedTocFileName || e.Name() == guest.TocFileName {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		hf := HostFiles{Name: name, Size: info.Size(), ModTime: info.ModTime()}
		if data, err := os.Stat(filepath.Join(dir, name+".data")); err == nil {
			hf.Size += data.Size()
			if data.ModTime().After(hf.ModTime) {
				hf.ModTime = data.ModTime()
			}
		}
		out = append(out, hf)
	}
	return out, nil
}

// PruneHostFiles removes the host file pairs of other backends, least
// recently written first, until the host files in dir take at most
// targetBytes. The pair named keep is never removed.
func PruneHostFiles(dir, keep string, targetBytes int64) (freed, remaining int64, err error) {
	if targetBytes < 0 {
		targetBytes = 0
	}
	files, err := ListHostFiles(dir)
	if err != nil {
		return 0, 0, err
	}
	for _, f := range files {
		remaining += f.Size
	}
	if remaining <= targetBytes {
		return 0, remaining, nil
	}

	sort.Slice(files, func(i, j int) bool {
		if files[i].ModTime.Equal(files[j].ModTime) {
			return files[i].Name < files[j].Name
		}
		return files[i].ModTime.Before(files[j].ModTime)
	})

	for _, f := range files {
		if remaining <= targetBytes {
			break
		}
		if f.Name == keep {
			continue
		}
		for _, ext := range []string{".toc", ".data"} {
			if err := os.Remove(filepath.Join(dir, f.Name+ext)); err != nil && !errors.Is(err, os.ErrNotExist) {
				return freed, remaining, fmt.Errorf("remove host files %s: %w", f.Name, err)
			}
		}
		remaining -= f.Size
		freed += f.Size
	}
	return freed, remaining, nil
}
