package source

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ivlev/lottiethumb/internal/apperr"
	"github.com/ivlev/lottiethumb/internal/logging"
	"github.com/ivlev/lottiethumb/internal/system"
)

// zipMagic is the local file header signature.
var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

// imageExtensions lists the asset image formats the resolver can inline.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".svg":  true,
	".webp": true,
}

// IsImageName reports whether name carries a supported image extension.
func IsImageName(name string) bool {
	return imageExtensions[strings.ToLower(path.Ext(name))]
}

// ExtractionError reports an unreadable or corrupt input.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

// Unwrap exposes both the sentinel and the cause to errors.Is/As.
func (e *ExtractionError) Unwrap() []error {
	return []error{apperr.ErrExtraction, e.Err}
}

// Extractor unpacks input files into scratch directories.
type Extractor struct {
	Scratch       *system.ScratchSpace
	MaxEntryBytes int64
	MaxEntries    int
	Logger        *slog.Logger
}

// NewExtractor creates an Extractor. A nil logger discards output.
func NewExtractor(scratch *system.ScratchSpace, maxEntryBytes int64, maxEntries int, logger *slog.Logger) *Extractor {
	return &Extractor{
		Scratch:       scratch,
		MaxEntryBytes: maxEntryBytes,
		MaxEntries:    maxEntries,
		Logger:        logging.OrDiscard(logger),
	}
}

// IsArchive reports whether the file at path starts with the zip signature.
func IsArchive(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	head := make([]byte, len(zipMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(head, zipMagic), nil
}

// Extract builds a manifest for the file at src inside a fresh scratch
// directory. Zip archives are unpacked entry by entry; anything else is copied
// in as the single entry. Ownership of the scratch directory passes to the
// caller through Manifest.Release. On error nothing is left behind.
func (e *Extractor) Extract(src string) (*Manifest, error) {
	archive, err := IsArchive(src)
	if err != nil {
		return nil, &ExtractionError{Path: src, Err: err}
	}

	dir, err := e.Scratch.Acquire()
	if err != nil {
		return nil, &ExtractionError{Path: src, Err: err}
	}

	m := newManifest(src, dir, e.MaxEntryBytes)
	m.Archive = archive

	if archive {
		err = e.extractZip(src, m)
	} else {
		err = e.copyBare(src, m)
	}
	if err != nil {
		if relErr := dir.Release(); relErr != nil {
			e.Logger.Warn("scratch release failed", slog.String("dir", dir.Path()), slog.String("error", relErr.Error()))
		}
		return nil, &ExtractionError{Path: src, Err: err}
	}

	e.Logger.Debug("extracted input",
		slog.String("source", src),
		slog.Bool("archive", archive),
		slog.Int("entries", m.Len()),
		slog.String("dir", dir.Path()))
	return m, nil
}

func (e *Extractor) copyBare(src string, m *Manifest) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	data, err := readLimited(in, e.MaxEntryBytes)
	if err != nil {
		return err
	}

	name := filepath.Base(src)
	dst := filepath.Join(m.Dir(), name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return err
	}
	m.add(Entry{Name: name, Path: dst, Data: data})
	return nil
}

func (e *Extractor) extractZip(src string, m *Manifest) error {
	reader, err := zip.OpenReader(src)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return fmt.Errorf("open zip: %w", err)
	}
	defer reader.Close()

	if e.MaxEntries > 0 && len(reader.File) > e.MaxEntries {
		return fmt.Errorf("zip has %d entries, limit is %d", len(reader.File), e.MaxEntries)
	}

	for _, file := range reader.File {
		name := strings.ReplaceAll(file.Name, "\\", "/")
		local := filepath.FromSlash(strings.TrimSuffix(name, "/"))
		if local == "" || !filepath.IsLocal(local) {
			e.Logger.Warn("skipping unsafe zip entry", slog.String("entry", file.Name))
			continue
		}
		target := filepath.Join(m.Dir(), local)

		if file.FileInfo().IsDir() || strings.HasSuffix(name, "/") {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}

		data, err := readZipFile(file, e.MaxEntryBytes)
		if errors.Is(err, errEntryTooLarge) {
			e.Logger.Warn("skipping oversized zip entry", slog.String("entry", name), slog.Int64("limit", e.MaxEntryBytes))
			continue
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return err
		}
		m.add(Entry{Name: path.Clean(name), Path: target, Data: data})
	}
	return nil
}

func readZipFile(file *zip.File, limit int64) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()
	return readLimited(rc, limit)
}

// AddSiblingImages indexes image files next to the manifest's source file and
// under its images/ directory, so that a loose document can resolve assets
// the same way an archive does. Files are read from their own location on
// demand and are not copied into the scratch directory.
func (e *Extractor) AddSiblingImages(m *Manifest) {
	root := filepath.Dir(m.Source)
	e.addImagesIn(m, root, "", false)
	e.addImagesIn(m, filepath.Join(root, "images"), "images", true)
}

func (e *Extractor) addImagesIn(m *Manifest, dir, prefix string, recursive bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			e.Logger.Debug("sibling scan failed", slog.String("dir", dir), slog.String("error", err.Error()))
		}
		return
	}
	for _, entry := range entries {
		if e.MaxEntries > 0 && m.Len() >= e.MaxEntries {
			return
		}
		name := entry.Name()
		logical := name
		if prefix != "" {
			logical = prefix + "/" + name
		}
		if entry.IsDir() {
			if recursive {
				e.addImagesIn(m, filepath.Join(dir, name), logical, true)
			}
			continue
		}
		if !IsImageName(name) {
			continue
		}
		m.add(Entry{Name: logical, Path: filepath.Join(dir, name)})
	}
}
