package lottie

import (
	"math"
	"strconv"
)

const (
	defaultFrameRate = 30
	defaultSize      = 512
	smallThreshold   = 250
	smallScale       = 2
)

// MetadataOptions tunes the defaults applied by ExtractMetadata.
// Zero fields fall back to the stock values.
type MetadataOptions struct {
	// Name is used when the document has no nm field.
	Name           string
	DefaultSize    int
	SmallThreshold int
	SmallScale     int
	ArchiveSource  bool
}

// Metadata is the derived summary of a document.
type Metadata struct {
	Width             int     `yaml:"width" json:"width"`
	Height            int     `yaml:"height" json:"height"`
	FrameRate         float64 `yaml:"frameRate" json:"frameRate"`
	InPoint           float64 `yaml:"inPoint" json:"inPoint"`
	OutPoint          float64 `yaml:"outPoint" json:"outPoint"`
	DurationSeconds   float64 `yaml:"durationSeconds" json:"durationSeconds"`
	TotalFrames       float64 `yaml:"totalFrames" json:"totalFrames"`
	Name              string  `yaml:"name" json:"name"`
	Version           string  `yaml:"version" json:"version"`
	BackgroundColor   string  `yaml:"backgroundColor" json:"backgroundColor"`
	LayerCount        int     `yaml:"layerCount" json:"layerCount"`
	MarkerCount       int     `yaml:"markerCount" json:"markerCount"`
	HasExternalAssets bool    `yaml:"hasExternalAssets" json:"hasExternalAssets"`
	IsArchiveSource   bool    `yaml:"isArchiveSource" json:"isArchiveSource"`
	// ThumbnailScale is at least 1; ThumbnailWidth/Height are the render size.
	ThumbnailScale  int `yaml:"thumbnailScale" json:"thumbnailScale"`
	ThumbnailWidth  int `yaml:"thumbnailWidth" json:"thumbnailWidth"`
	ThumbnailHeight int `yaml:"thumbnailHeight" json:"thumbnailHeight"`
}

// ExtractMetadata derives Metadata from doc. Missing or non-positive sizes and
// frame rates take defaults so that minimal documents still produce a preview.
func ExtractMetadata(doc *Document, opts MetadataOptions) Metadata {
	size := opts.DefaultSize
	if size <= 0 {
		size = defaultSize
	}
	threshold := opts.SmallThreshold
	if threshold <= 0 {
		threshold = smallThreshold
	}
	scale := opts.SmallScale
	if scale <= 0 {
		scale = smallScale
	}

	fr := positive(doc, defaultFrameRate, KeyFrameRate)
	ip, _ := doc.Number(KeyInPoint)
	op, _ := doc.Number(KeyOutPoint)

	m := Metadata{
		Width:           int(math.Round(positive(doc, float64(size), KeyWidth, KeyWidthAlt))),
		Height:          int(math.Round(positive(doc, float64(size), KeyHeight, KeyHeightAlt))),
		FrameRate:       fr,
		InPoint:         ip,
		OutPoint:        op,
		TotalFrames:     op - ip,
		DurationSeconds: (op - ip) / fr,
		Name:            doc.String(KeyName),
		Version:         doc.Version(),
		BackgroundColor: doc.String(KeyBackground),
		LayerCount:      len(doc.Layers()),
		MarkerCount:     doc.Markers(),
		IsArchiveSource: opts.ArchiveSource,
		ThumbnailScale:  1,
	}
	if m.Name == "" {
		m.Name = opts.Name
	}

	for _, a := range doc.Assets() {
		if a.Path() != "" && !a.Embedded() {
			m.HasExternalAssets = true
			break
		}
	}

	if m.Width < threshold && m.Height < threshold {
		m.ThumbnailScale = scale
	}
	m.ThumbnailWidth = m.Width * m.ThumbnailScale
	m.ThumbnailHeight = m.Height * m.ThumbnailScale
	return m
}

// positive returns the first key holding a number > 0, or fallback.
func positive(doc *Document, fallback float64, keys ...string) float64 {
	for _, k := range keys {
		if n, ok := doc.Number(k); ok && n > 0 {
			return n
		}
	}
	return fallback
}

// FormatDuration renders seconds rounded to two decimals, e.g. "3 seconds".
func FormatDuration(seconds float64) string {
	return formatNumber(seconds) + " seconds"
}

// FormatFrameRate renders a frame rate as e.g. "24fps".
func FormatFrameRate(fr float64) string {
	return formatNumber(fr) + "fps"
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
