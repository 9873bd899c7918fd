package engine

import (
	"context"

	"github.com/ivlev/lottiethumb/internal/analyzer"
	"github.com/ivlev/lottiethumb/internal/assets"
	"github.com/ivlev/lottiethumb/internal/lottie"
)

// Inspection describes an input without rendering it.
type Inspection struct {
	Source   string                 `yaml:"source" json:"source"`
	Archive  bool                   `yaml:"archive" json:"archive"`
	Entries  int                    `yaml:"entries" json:"entries"`
	Document string                 `yaml:"document" json:"document"`
	Locator  string                 `yaml:"locator" json:"locator"`
	Metadata lottie.Metadata        `yaml:"metadata" json:"metadata"`
	Colors   analyzer.ColorAnalysis `yaml:"colors" json:"colors"`
	Assets   assets.Report          `yaml:"assets" json:"assets"`
}

// Inspect runs the pipeline up to rendering and reports what it found.
func (t *Thumbnailer) Inspect(ctx context.Context, src string) (*Inspection, error) {
	p, err := t.prepare(ctx, src, false)
	if err != nil {
		return nil, err
	}
	defer p.release(t.logger)

	return &Inspection{
		Source:   src,
		Archive:  p.manifest.Archive,
		Entries:  p.manifest.Len(),
		Document: p.match.Name,
		Locator:  string(p.match.Tier),
		Metadata: p.meta,
		Colors:   p.analysis,
		Assets:   p.report,
	}, nil
}
