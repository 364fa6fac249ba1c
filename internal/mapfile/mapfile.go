// Package mapfile reads and writes incident maps on disk.
package mapfile

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"lukechampine.com/blake3"

	"incimap/internal/incident"
)

// ErrCancelled means the user dismissed a file prompt. It is not a failure.
var ErrCancelled = errors.New("cancelled")

// DefaultBaseName is used for suggested file names when a map has no title.
const DefaultBaseName = "incident-map"

// Digest identifies file content.
type Digest [32]byte

// Sum hashes data.
func Sum(data []byte) Digest {
	return Digest(blake3.Sum256(data))
}

// DocumentDigest hashes the canonical JSON form of d. A document that does
// not serialize hashes to the zero Digest.
func DocumentDigest(d incident.Document) Digest {
	data, err := incident.Serialize(d)
	if err != nil {
		return Digest{}
	}
	return Sum(data)
}

func (d Digest) IsZero() bool { return d == Digest{} }

// String returns a short hex prefix.
func (d Digest) String() string {
	return hex.EncodeToString(d[:6])
}

// Load reads and validates the map at path. The format follows the file
// extension. Validation failures unwrap to *incident.SchemaError. The
// returned Digest covers the raw file bytes.
func Load(path string) (incident.Document, Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return incident.Document{}, Digest{}, fmt.Errorf("read map: %w", err)
	}
	doc, err := incident.FormatForPath(path).Decode(data)
	if err != nil {
		return incident.Document{}, Digest{}, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return doc, Sum(data), nil
}

// Save writes d to path in the format matching its extension. The file is
// replaced atomically. The Digest of the written bytes is returned.
func Save(path string, d incident.Document) (Digest, error) {
	data, err := incident.FormatForPath(path).Encode(d)
	if err != nil {
		return Digest{}, fmt.Errorf("save %s: %w", filepath.Base(path), err)
	}
	if err := WriteFile(path, data); err != nil {
		return Digest{}, err
	}
	return Sum(data), nil
}

// WriteFile writes data to a temporary file next to path and renames it
// into place.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// SuggestedName derives a file name from a map title.
func SuggestedName(title string, f incident.Format) string {
	base := strings.TrimSpace(title)
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return -1
		}
		return r
	}, base)
	base = strings.Trim(base, ". ")
	if base == "" {
		base = DefaultBaseName
	}
	return base + f.Ext()
}

// Resolve turns prompt input into a path under dir. Empty input means the
// prompt was dismissed. A missing extension gets the one for f.
func Resolve(dir, input string, f incident.Format) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrCancelled
	}
	if strings.HasPrefix(input, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			input = filepath.Join(home, strings.TrimPrefix(input, "~"))
		}
	}
	if filepath.Ext(input) == "" {
		input += f.Ext()
	}
	if !filepath.IsAbs(input) && dir != "" {
		input = filepath.Join(dir, input)
	}
	return filepath.Clean(input), nil
}

// Pattern matches every map file format.
const Pattern = "**/*.{json,yaml,yml}"

// List returns the map files below dir, relative to it and sorted. Hidden
// directories are skipped.
func List(dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	matches, err := doublestar.Glob(os.DirFS(dir), Pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	out := matches[:0]
	for _, m := range matches {
		if hidden(m) {
			continue
		}
		out = append(out, filepath.FromSlash(m))
	}
	sort.Strings(out)
	return out, nil
}

func hidden(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
