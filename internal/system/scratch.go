package system

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ScratchSpace hands out uniquely named scratch directories under a root.
// Names are the prefix followed by a ULID built from the configured clock and
// entropy source, so two acquisitions never share a directory.
type ScratchSpace struct {
	root    string
	prefix  string
	now     func() time.Time
	mu      sync.Mutex
	entropy io.Reader
}

// ScratchOption customises a ScratchSpace.
type ScratchOption func(*ScratchSpace)

// WithClock replaces the wall clock used for the timestamp half of the name.
func WithClock(now func() time.Time) ScratchOption {
	return func(s *ScratchSpace) {
		s.now = now
	}
}

// WithEntropy replaces the random source used for the random half of the name.
func WithEntropy(r io.Reader) ScratchOption {
	return func(s *ScratchSpace) {
		s.entropy = r
	}
}

// NewScratchSpace creates a ScratchSpace. An empty root selects os.TempDir().
func NewScratchSpace(root, prefix string, opts ...ScratchOption) *ScratchSpace {
	if root == "" {
		root = os.TempDir()
	}
	s := &ScratchSpace{
		root:    root,
		prefix:  prefix,
		now:     time.Now,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the directory scratch directories are created in.
func (s *ScratchSpace) Root() string {
	return s.root
}

// Acquire creates a fresh scratch directory. The caller owns it and must call
// Release on every exit path.
func (s *ScratchSpace) Acquire() (*ScratchDir, error) {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return nil, fmt.Errorf("ensure scratch root: %w", err)
	}

	s.mu.Lock()
	id, err := ulid.New(ulid.Timestamp(s.now()), s.entropy)
	s.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("scratch name: %w", err)
	}

	path := filepath.Join(s.root, s.prefix+strings.ToLower(id.String()))
	// Mkdir rather than MkdirAll: an existing directory is a collision, not a reuse.
	if err := os.Mkdir(path, 0o700); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &ScratchDir{path: path}, nil
}

// Leftovers lists directories under the root that carry the scratch prefix.
func (s *ScratchSpace) Leftovers() ([]string, error) {
	return filepath.Glob(filepath.Join(s.root, s.prefix+"*"))
}

// ScratchDir is a directory owned by one pipeline invocation.
type ScratchDir struct {
	path string
	once sync.Once
	err  error
}

// Path returns the absolute directory path.
func (d *ScratchDir) Path() string {
	return d.path
}

// Release removes the directory tree. Only the first call does any work;
// later calls return the first result.
func (d *ScratchDir) Release() error {
	if d == nil {
		return nil
	}
	d.once.Do(func() {
		d.err = os.RemoveAll(d.path)
	})
	return d.err
}
