package assets

import (
	"encoding/base64"
	"log/slog"
	"strings"

	"github.com/ivlev/lottiethumb/internal/logging"
	"github.com/ivlev/lottiethumb/internal/lottie"
	"github.com/ivlev/lottiethumb/internal/source"
)

var mimeTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".webp": "image/webp",
}

// MimeType maps an entry's extension to its MIME type, defaulting to image/png.
func MimeType(e source.Entry) string {
	if mt, ok := mimeTypes[e.Ext()]; ok {
		return mt
	}
	return "image/png"
}

// DataURI encodes data as a base64 data URI.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Resolution records one inlined asset.
type Resolution struct {
	AssetID   string `yaml:"assetId" json:"assetId"`
	Declared  string `yaml:"declared" json:"declared"`
	Entry     string `yaml:"entry" json:"entry"`
	Candidate string `yaml:"candidate" json:"candidate"`
	MimeType  string `yaml:"mimeType" json:"mimeType"`
}

// Report summarises a Resolve call.
type Report struct {
	Resolved   []Resolution `yaml:"resolved" json:"resolved"`
	Unresolved []string     `yaml:"unresolved" json:"unresolved"`
	Skipped    int          `yaml:"skipped" json:"skipped"`
}

// Resolver inlines external assets.
type Resolver struct {
	Logger *slog.Logger
}

// NewResolver creates a Resolver. A nil logger discards output.
func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{Logger: logging.OrDiscard(logger)}
}

// Resolve inlines every external asset of doc that can be matched against an
// image entry of m and returns the same document. Embedded assets and assets
// without a path are skipped; unmatched ones are left untouched.
func (r *Resolver) Resolve(doc *lottie.Document, m *source.Manifest) (*lottie.Document, Report) {
	var report Report

	images := make([]source.Entry, 0, m.Len())
	for _, e := range m.Entries {
		if source.IsImageName(e.Name) {
			images = append(images, e)
		}
	}

	for _, asset := range doc.Assets() {
		declared := asset.Path()
		if asset.Embedded() || declared == "" || asset.IsDataURI() {
			report.Skipped++
			continue
		}

		entry, key, ok := match(images, declared, asset.RootHint())
		if !ok {
			r.Logger.Warn("asset not found in manifest",
				slog.String("asset", asset.ID()),
				slog.String("path", declared),
				slog.String("hint", asset.RootHint()))
			report.Unresolved = append(report.Unresolved, declared)
			continue
		}

		data, err := m.Read(entry)
		if err != nil {
			r.Logger.Warn("asset read failed",
				slog.String("asset", asset.ID()),
				slog.String("entry", entry.Name),
				slog.String("error", err.Error()))
			report.Unresolved = append(report.Unresolved, declared)
			continue
		}

		mime := MimeType(entry)
		asset.Inline(DataURI(mime, data))
		report.Resolved = append(report.Resolved, Resolution{
			AssetID:   asset.ID(),
			Declared:  declared,
			Entry:     entry.Name,
			Candidate: key.Candidate,
			MimeType:  mime,
		})
		r.Logger.Debug("asset inlined",
			slog.String("asset", asset.ID()),
			slog.String("entry", entry.Name),
			slog.String("candidate", key.Candidate))
	}
	return doc, report
}

// match walks the candidate keys in order and returns the first manifest hit.
func match(entries []source.Entry, path, hint string) (source.Entry, Key, bool) {
	for _, key := range CandidateKeys(path, hint) {
		if e, ok := findEntry(entries, key.Value); ok {
			return e, key, true
		}
	}
	return source.Entry{}, Key{}, false
}

// findEntry prefers an exact name, then a "/"-suffix match, then a bare
// file name match.
func findEntry(entries []source.Entry, key string) (source.Entry, bool) {
	for _, e := range entries {
		if e.Name == key {
			return e, true
		}
	}
	suffix := "/" + key
	for _, e := range entries {
		if strings.HasSuffix(e.Name, suffix) {
			return e, true
		}
	}
	base := bareName(key)
	if base == "" {
		return source.Entry{}, false
	}
	for _, e := range entries {
		if bareName(e.Name) == base {
			return e, true
		}
	}
	return source.Entry{}, false
}
