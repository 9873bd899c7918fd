// Package analyzer derives colour accents and content hints from an
// animation document.
package analyzer

import (
	"fmt"
	"math"
	"strings"

	"github.com/ivlev/lottiethumb/internal/lottie"
)

// MaxDominantColors caps ColorAnalysis.DominantColors.
const MaxDominantColors = 3

// Layer and shape type tags.
const (
	layerSolid = 1
	layerImage = 2
	layerShape = 4

	shapeFill   = "fl"
	shapeStroke = "st"
	shapeGroup  = "gr"
)

// ColorAnalysis summarises the colours and layer kinds found in a document.
type ColorAnalysis struct {
	DominantColors []string `yaml:"dominantColors" json:"dominantColors"`
	LayerCount     int      `yaml:"layerCount" json:"layerCount"`
	HasShapes      bool     `yaml:"hasShapes" json:"hasShapes"`
	HasImages      bool     `yaml:"hasImages" json:"hasImages"`
}

// Primary returns the first dominant colour, or "" when none was found.
func (a ColorAnalysis) Primary() string {
	if len(a.DominantColors) == 0 {
		return ""
	}
	return a.DominantColors[0]
}

// Analyze walks the layers depth first and collects fill and stroke colours,
// deduplicated in discovery order.
func Analyze(doc *lottie.Document) ColorAnalysis {
	c := &collector{seen: make(map[string]struct{})}
	layers := doc.Layers()
	analysis := ColorAnalysis{LayerCount: len(layers)}

	for _, layer := range layers {
		ty, _ := number(layer["ty"])
		switch ty {
		case layerShape:
			shapes, ok := layer["shapes"].([]any)
			if !ok {
				continue
			}
			analysis.HasShapes = true
			c.walk(shapes)
		case layerImage:
			analysis.HasImages = true
		case layerSolid:
			if sc, ok := layer["sc"].(string); ok && sc != "" {
				c.add(strings.ToLower(strings.TrimSpace(sc)))
			}
		}
	}

	for _, a := range doc.Assets() {
		if a.Path() != "" && !a.Embedded() {
			analysis.HasImages = true
		}
	}

	analysis.DominantColors = c.colors
	return analysis
}

type collector struct {
	colors []string
	seen   map[string]struct{}
}

func (c *collector) add(hex string) {
	if len(c.colors) >= MaxDominantColors {
		return
	}
	if _, dup := c.seen[hex]; dup {
		return
	}
	c.seen[hex] = struct{}{}
	c.colors = append(c.colors, hex)
}

func (c *collector) walk(shapes []any) {
	for _, item := range shapes {
		shape, ok := item.(map[string]any)
		if !ok {
			continue
		}
		switch shape["ty"] {
		case shapeFill, shapeStroke:
			if hex, ok := shapeColor(shape); ok {
				c.add(hex)
			}
		case shapeGroup:
			if nested, ok := shape["it"].([]any); ok {
				c.walk(nested)
			}
		}
	}
}

// shapeColor reads the static colour of a fill or stroke. Animated colours
// use the start value of their first keyframe.
func shapeColor(shape map[string]any) (string, bool) {
	prop, ok := shape["c"].(map[string]any)
	if !ok {
		return "", false
	}
	k, ok := prop["k"].([]any)
	if !ok || len(k) == 0 {
		return "", false
	}
	if frame, ok := k[0].(map[string]any); ok {
		s, ok := frame["s"].([]any)
		if !ok {
			return "", false
		}
		k = s
	}
	return ToHex(k)
}

// ToHex converts a primitive colour array with channels in [0,1] to #rrggbb.
// Arrays shorter than three elements or with non-numeric channels are rejected.
func ToHex(channels []any) (string, bool) {
	if len(channels) < 3 {
		return "", false
	}
	var rgb [3]uint8
	for i := range rgb {
		v, ok := number(channels[i])
		if !ok {
			return "", false
		}
		rgb[i] = channel(v)
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2]), true
}

func channel(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

func number(v any) (float64, bool) {
	n, ok := v.(float64)
	return n, ok
}
