package input

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// DefaultMaxSize caps how large a configuration file may be before it is
// rejected outright.
const DefaultMaxSize = 10 * 1024 * 1024

var supportedExtensions = map[string]bool{
	".conf":       true,
	".cfg":        true,
	".config":     true,
	".txt":        true,
	".ini":        true,
	".junos":      true,
	".rules":      true,
	".htaccess":   true,
	".xml":        true,
	".yaml":       true,
	".yml":        true,
	".properties": true,
}

// Document is an immutable loaded configuration file. The pipeline treats
// Size and SHA256 as opaque metadata and never recomputes them.
type Document struct {
	Path      string    `json:"path"`
	Filename  string    `json:"filename"`
	Content   string    `json:"-"`
	Size      int64     `json:"size"`
	SHA256    string    `json:"sha256"`
	Timestamp time.Time `json:"timestamp"`
}

// Loader reads and validates configuration files from disk.
type Loader struct {
	// MaxSize is the file size cap in bytes. Zero means DefaultMaxSize.
	MaxSize int64
}

func (l *Loader) maxSize() int64 {
	if l == nil || l.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return l.MaxSize
}

// Load reads one configuration file and returns its Document.
func (l *Loader) Load(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a configuration file", path)
	}
	if info.Size() > l.maxSize() {
		return nil, fmt.Errorf("%s exceeds the %d byte size limit (%d bytes)", path, l.maxSize(), info.Size())
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, fmt.Errorf("%s is empty", path)
	}

	sum := sha256.Sum256(raw)
	return &Document{
		Path:      path,
		Filename:  filepath.Base(path),
		Content:   string(raw),
		Size:      info.Size(),
		SHA256:    hex.EncodeToString(sum[:]),
		Timestamp: time.Now().UTC(),
	}, nil
}

// CollectDir returns the supported configuration files directly under dir,
// sorted by name for deterministic scan order.
func CollectDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !Supported(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Supported reports whether the filename carries a recognized configuration
// file extension. A bare ".htaccess" counts: its whole name is the extension.
func Supported(filename string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(filepath.Base(filename)))]
}
