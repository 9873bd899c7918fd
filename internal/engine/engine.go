// Package engine runs the thumbnail pipeline: extract the input, locate and
// validate the animation document, inline its assets and render the preview.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/lottiethumb/internal/analyzer"
	"github.com/ivlev/lottiethumb/internal/apperr"
	"github.com/ivlev/lottiethumb/internal/assets"
	"github.com/ivlev/lottiethumb/internal/config"
	"github.com/ivlev/lottiethumb/internal/logging"
	"github.com/ivlev/lottiethumb/internal/lottie"
	"github.com/ivlev/lottiethumb/internal/renderer"
	"github.com/ivlev/lottiethumb/internal/source"
	"github.com/ivlev/lottiethumb/internal/system"
)

// Request names the input file and where the thumbnail goes. InlinePath,
// when set, receives the document with its assets inlined.
type Request struct {
	Source      string
	Destination string
	InlinePath  string
}

// Renderer produces preview PNG bytes. It must not fail.
type Renderer interface {
	Render(req renderer.Request) renderer.Result
}

// Thumbnailer owns the pipeline components.
type Thumbnailer struct {
	cfg       *config.Config
	extractor *source.Extractor
	resolver  *assets.Resolver
	renderer  Renderer
	logger    *slog.Logger
}

// New wires a Thumbnailer from cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Thumbnailer, error) {
	logger = logging.OrDiscard(logger)
	scratch := system.NewScratchSpace(cfg.Scratch.Root, cfg.Scratch.Prefix)
	chain, err := renderer.NewDefaultChain(cfg.Preview, logger)
	if err != nil {
		return nil, fmt.Errorf("preview: %w", err)
	}
	return NewWithComponents(cfg,
		source.NewExtractor(scratch, cfg.Limits.MaxEntryBytes, cfg.Limits.MaxEntries, logger),
		assets.NewResolver(logger),
		chain,
		logger,
	), nil
}

// NewWithComponents assembles a Thumbnailer from explicit parts.
func NewWithComponents(cfg *config.Config, ex *source.Extractor, res *assets.Resolver, r Renderer, logger *slog.Logger) *Thumbnailer {
	return &Thumbnailer{
		cfg:       cfg,
		extractor: ex,
		resolver:  res,
		renderer:  r,
		logger:    logging.OrDiscard(logger),
	}
}

// GenerateDocument renders a thumbnail for a bare document. Inputs carrying
// the zip signature are still unpacked.
func (t *Thumbnailer) GenerateDocument(ctx context.Context, req Request, item *Item) error {
	return t.generate(ctx, req, item, false)
}

// GenerateArchive renders a thumbnail for a zip archive. Inputs without the
// zip signature are rejected as extraction failures.
func (t *Thumbnailer) GenerateArchive(ctx context.Context, req Request, item *Item) error {
	return t.generate(ctx, req, item, true)
}

// Generate picks the entry point from the input's signature.
func (t *Thumbnailer) Generate(ctx context.Context, req Request, item *Item) error {
	archive, err := source.IsArchive(req.Source)
	if err != nil {
		return &source.ExtractionError{Path: req.Source, Err: err}
	}
	if archive {
		return t.GenerateArchive(ctx, req, item)
	}
	return t.GenerateDocument(ctx, req, item)
}

func (t *Thumbnailer) generate(ctx context.Context, req Request, item *Item, requireArchive bool) (err error) {
	start := time.Now()
	if req.Destination == "" {
		return fmt.Errorf("%w: empty destination", apperr.ErrOutputWrite)
	}
	defer func() {
		if err != nil {
			removeStale(req.Destination, req.InlinePath)
			t.logger.Error("thumbnail failed",
				slog.String("source", req.Source),
				slog.String("error", err.Error()))
		}
	}()

	p, err := t.prepare(ctx, req.Source, requireArchive)
	if err != nil {
		return err
	}
	defer p.release(t.logger)

	if err := ctx.Err(); err != nil {
		return err
	}

	result := t.renderer.Render(renderer.Request{Metadata: p.meta, Analysis: p.analysis})
	if err := writeFile(req.Destination, result.PNG); err != nil {
		return err
	}
	if req.InlinePath != "" {
		data, err := p.doc.MarshalJSON()
		if err != nil {
			return fmt.Errorf("%w: encode inline document: %v", apperr.ErrOutputWrite, err)
		}
		if err := writeFile(req.InlinePath, data); err != nil {
			return err
		}
	}

	if item != nil {
		item.Fill(p.meta, result.Tier, p.report)
	}
	t.logger.Info("thumbnail written",
		slog.String("source", req.Source),
		slog.String("destination", req.Destination),
		slog.String("tier", result.Tier),
		slog.Int("width", p.meta.ThumbnailWidth),
		slog.Int("height", p.meta.ThumbnailHeight),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// prepared is everything derived from one input before rendering.
type prepared struct {
	manifest *source.Manifest
	match    source.Match
	doc      *lottie.Document
	meta     lottie.Metadata
	analysis analyzer.ColorAnalysis
	report   assets.Report
}

func (p *prepared) release(logger *slog.Logger) {
	if err := p.manifest.Release(); err != nil {
		logger.Warn("scratch release failed",
			slog.String("dir", p.manifest.Dir()),
			slog.String("error", err.Error()))
	}
}

// prepare runs every stage up to rendering. On success the caller owns the
// manifest's scratch directory; on error it has been released.
func (t *Thumbnailer) prepare(ctx context.Context, src string, requireArchive bool) (_ *prepared, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := t.extractor.Extract(src)
	if err != nil {
		return nil, err
	}
	p := &prepared{manifest: m}
	defer func() {
		if err != nil {
			p.release(t.logger)
		}
	}()

	if requireArchive && !m.Archive {
		return nil, &source.ExtractionError{Path: src, Err: errors.New("not a zip archive")}
	}

	if m.Archive {
		if p.match, err = source.Locate(m); err != nil {
			return nil, err
		}
	} else {
		if m.Len() == 0 {
			return nil, fmt.Errorf("%w: %s is empty", apperr.ErrDocumentNotFound, src)
		}
		p.match = source.Match{Entry: m.Entries[0], Tier: source.TierNamed}
		t.extractor.AddSiblingImages(m)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := m.Read(p.match.Entry)
	if err != nil {
		return nil, &source.ExtractionError{Path: src, Err: err}
	}
	doc, err := lottie.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", apperr.ErrInvalidDocument, p.match.Name, err)
	}
	if !doc.Valid() {
		return nil, fmt.Errorf("%w: %s lacks required fields", apperr.ErrInvalidDocument, p.match.Name)
	}
	p.doc = doc

	p.meta = lottie.ExtractMetadata(doc, lottie.MetadataOptions{
		Name:           baseName(src),
		DefaultSize:    t.cfg.Preview.DefaultSize,
		SmallThreshold: t.cfg.Preview.SmallThreshold,
		SmallScale:     t.cfg.Preview.SmallScale,
		ArchiveSource:  m.Archive,
	})
	_, p.report = t.resolver.Resolve(doc, m)
	p.analysis = analyzer.Analyze(doc)

	t.logger.Debug("document prepared",
		slog.String("source", src),
		slog.String("document", p.match.Name),
		slog.String("locator", string(p.match.Tier)),
		slog.Int("resolved", len(p.report.Resolved)),
		slog.Int("unresolved", len(p.report.Unresolved)))
	return p, nil
}

func baseName(src string) string {
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// writeFile writes data next to dest and renames it into place, so a failed
// write never leaves a partial file at dest.
func writeFile(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrOutputWrite, err)
	}
	tmp, err := os.CreateTemp(dir, ".lottiethumb-*")
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrOutputWrite, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", apperr.ErrOutputWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrOutputWrite, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrOutputWrite, err)
	}
	info, err := os.Stat(dest)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrOutputWrite, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", apperr.ErrOutputWrite, dest)
	}
	return nil
}

// removeStale deletes outputs of a failed run.
func removeStale(paths ...string) {
	for _, p := range paths {
		if p != "" {
			os.Remove(p)
		}
	}
}
