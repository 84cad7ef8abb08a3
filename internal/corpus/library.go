// Package corpus serves the bundled example CSV files that users can
// load instead of uploading their own.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"example.com/candlestick-detector/internal/ohlcv"
)

// FileInfo describes one browsable example file.
type FileInfo struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	Rows    int       `json:"rows"` // 0 when the file does not parse
	ModTime time.Time `json:"mod_time"`
}

// Library caches the example directory listing. Rescan refreshes it;
// reads serve from the cache.
type Library struct {
	dir    string
	mu     sync.RWMutex
	files  []FileInfo
	logger zerolog.Logger
}

// NewLibrary creates a library over dir. Call Rescan before serving.
func NewLibrary(dir string, logger zerolog.Logger) *Library {
	return &Library{
		dir:    dir,
		logger: logger.With().Str("component", "corpus").Logger(),
	}
}

// Dir returns the directory the library reads from.
func (l *Library) Dir() string {
	return l.dir
}

// Rescan rebuilds the cached listing from disk. Files that fail to parse
// stay listed with a zero row count; selecting them surfaces the load
// error to the user.
func (l *Library) Rescan() error {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("read example dir: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		fi := FileInfo{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		}
		if series, err := ohlcv.LoadFile(filepath.Join(l.dir, entry.Name())); err != nil {
			l.logger.Warn().Str("file", entry.Name()).Err(err).
				Msg("example file does not parse")
		} else {
			fi.Rows = series.Len()
		}
		files = append(files, fi)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	l.mu.Lock()
	l.files = files
	l.mu.Unlock()

	l.logger.Info().Int("files", len(files)).Str("dir", l.dir).Msg("example corpus scanned")
	return nil
}

// List returns a copy of the cached listing.
func (l *Library) List() []FileInfo {
	l.mu.RLock()
	defer l.mu.RUnlock()

	files := make([]FileInfo, len(l.files))
	copy(files, l.files)
	return files
}

// Load parses one example file by name. Names must be bare file names;
// path separators are rejected.
func (l *Library) Load(name string) (*ohlcv.Series, error) {
	if name == "" || name != filepath.Base(name) || !strings.HasSuffix(name, ".csv") {
		return nil, fmt.Errorf("invalid example name %q", name)
	}
	return ohlcv.LoadFile(filepath.Join(l.dir, name))
}
