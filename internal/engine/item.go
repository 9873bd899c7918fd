package engine

import (
	"github.com/ivlev/lottiethumb/internal/assets"
	"github.com/ivlev/lottiethumb/internal/lottie"
)

// Item is the result record handed back to the host after a successful run.
type Item struct {
	Width  int        `yaml:"width" json:"width"`
	Height int        `yaml:"height" json:"height"`
	Lottie LottieInfo `yaml:"lottie" json:"lottie"`
}

// LottieInfo is the animation-specific block of an Item.
type LottieInfo struct {
	Duration          string  `yaml:"duration" json:"duration"`
	FrameRate         string  `yaml:"frameRate" json:"frameRate"`
	TotalFrames       float64 `yaml:"totalFrames" json:"totalFrames"`
	IsArchiveSource   bool    `yaml:"isArchiveSource" json:"isArchiveSource"`
	ThumbnailType     string  `yaml:"thumbnailType" json:"thumbnailType"`
	Name              string  `yaml:"name,omitempty" json:"name,omitempty"`
	HasExternalAssets bool    `yaml:"hasExternalAssets" json:"hasExternalAssets"`
	ResolvedAssets    int     `yaml:"resolvedAssets" json:"resolvedAssets"`
	UnresolvedAssets  int     `yaml:"unresolvedAssets" json:"unresolvedAssets"`
	ThumbnailWidth    int     `yaml:"thumbnailWidth" json:"thumbnailWidth"`
	ThumbnailHeight   int     `yaml:"thumbnailHeight" json:"thumbnailHeight"`
}

// Fill populates the record. Width and Height are the document's own size;
// the thumbnail size is reported separately.
func (it *Item) Fill(md lottie.Metadata, tier string, report assets.Report) {
	it.Width = md.Width
	it.Height = md.Height
	it.Lottie = LottieInfo{
		Duration:          lottie.FormatDuration(md.DurationSeconds),
		FrameRate:         lottie.FormatFrameRate(md.FrameRate),
		TotalFrames:       md.TotalFrames,
		IsArchiveSource:   md.IsArchiveSource,
		ThumbnailType:     tier,
		Name:              md.Name,
		HasExternalAssets: md.HasExternalAssets,
		ResolvedAssets:    len(report.Resolved),
		UnresolvedAssets:  len(report.Unresolved),
		ThumbnailWidth:    md.ThumbnailWidth,
		ThumbnailHeight:   md.ThumbnailHeight,
	}
}
