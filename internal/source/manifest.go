// Package source turns an input file into a manifest of named entries and
// locates the animation document among them.
package source

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/ivlev/lottiethumb/internal/system"
)

// Entry is one file of the manifest.
type Entry struct {
	// Name is the logical, slash-separated name (as stored in the archive).
	Name string
	// Path is the file on disk.
	Path string
	// Data holds the bytes when they were read during extraction; nil means
	// they are read from Path on demand.
	Data []byte
}

// Base returns the bare file name of the entry.
func (e Entry) Base() string {
	return path.Base(e.Name)
}

// Ext returns the lower-cased extension including the dot.
func (e Entry) Ext() string {
	return strings.ToLower(path.Ext(e.Name))
}

// Manifest is the result of extracting one input file.
type Manifest struct {
	// Source is the input file the manifest was built from.
	Source string
	// Archive reports whether the input carried the zip signature.
	Archive bool
	Entries []Entry

	dir      *system.ScratchDir
	maxBytes int64
	index    map[string]int
}

func newManifest(src string, dir *system.ScratchDir, maxBytes int64) *Manifest {
	return &Manifest{
		Source:   src,
		dir:      dir,
		maxBytes: maxBytes,
		index:    make(map[string]int),
	}
}

// Dir returns the scratch directory the entries were extracted into.
func (m *Manifest) Dir() string {
	if m.dir == nil {
		return ""
	}
	return m.dir.Path()
}

// Release removes the scratch directory. Safe to call more than once.
func (m *Manifest) Release() error {
	if m == nil {
		return nil
	}
	return m.dir.Release()
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	return len(m.Entries)
}

// Lookup returns the entry stored under name.
func (m *Manifest) Lookup(name string) (Entry, bool) {
	i, ok := m.index[name]
	if !ok {
		return Entry{}, false
	}
	return m.Entries[i], true
}

// Read returns the bytes of e, loading them from disk if needed.
func (m *Manifest) Read(e Entry) ([]byte, error) {
	if e.Data != nil {
		return e.Data, nil
	}
	f, err := os.Open(e.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLimited(f, m.maxBytes)
}

func (m *Manifest) add(e Entry) {
	if _, dup := m.index[e.Name]; dup {
		return
	}
	m.index[e.Name] = len(m.Entries)
	m.Entries = append(m.Entries, e)
}

var errEntryTooLarge = fmt.Errorf("entry too large")

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errEntryTooLarge
	}
	return data, nil
}
