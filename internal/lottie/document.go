// Package lottie models the parts of a Lottie animation document the
// thumbnailer reads: top-level scalars, layers and the asset list.
package lottie

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Top-level document keys.
const (
	KeyVersion    = "v"
	KeyInPoint    = "ip"
	KeyOutPoint   = "op"
	KeyFrameRate  = "fr"
	KeyWidth      = "w"
	KeyWidthAlt   = "width"
	KeyHeight     = "h"
	KeyHeightAlt  = "height"
	KeyLayers     = "layers"
	KeyName       = "nm"
	KeyBackground = "bg"
	KeyAssets     = "assets"
	KeyMarkers    = "markers"
)

// Asset keys.
const (
	AssetKeyID       = "id"
	AssetKeyPath     = "p"
	AssetKeyRootHint = "u"
	AssetKeyEmbedded = "e"
)

// Document is a parsed animation document. It keeps the raw JSON object so
// that unknown fields survive a round trip after assets are inlined.
type Document struct {
	raw map[string]any
}

// Parse decodes data into a Document. The root must be a JSON object.
func Parse(data []byte) (*Document, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("decode document: root is not an object")
	}
	return &Document{raw: raw}, nil
}

// NewDocument wraps an already decoded JSON object.
func NewDocument(raw map[string]any) *Document {
	return &Document{raw: raw}
}

// Raw exposes the underlying JSON object.
func (d *Document) Raw() map[string]any {
	return d.raw
}

// Has reports whether key is present, whatever its value.
func (d *Document) Has(key string) bool {
	_, ok := d.raw[key]
	return ok
}

// Number returns key as a float64 when it holds a number or a numeric string.
func (d *Document) Number(key string) (float64, bool) {
	return toNumber(d.raw[key])
}

// String returns key as a string when it holds a string.
func (d *Document) String(key string) string {
	s, _ := d.raw[key].(string)
	return s
}

// Version returns the declared format version as text.
func (d *Document) Version() string {
	switch v := d.raw[KeyVersion].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Layers returns the top-level layers that are JSON objects.
func (d *Document) Layers() []map[string]any {
	return objects(d.raw[KeyLayers])
}

// Markers returns the number of markers.
func (d *Document) Markers() int {
	m, _ := d.raw[KeyMarkers].([]any)
	return len(m)
}

// Assets returns views over the asset entries. Mutating an Asset mutates the document.
func (d *Document) Assets() []Asset {
	objs := objects(d.raw[KeyAssets])
	assets := make([]Asset, 0, len(objs))
	for _, o := range objs {
		assets = append(assets, Asset(o))
	}
	return assets
}

// MarshalJSON encodes the document, including any inlined assets.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.raw)
}

// Asset is one entry of the document's asset list.
type Asset map[string]any

// ID returns the asset identifier.
func (a Asset) ID() string {
	switch v := a[AssetKeyID].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Path returns the declared path or inline payload.
func (a Asset) Path() string {
	s, _ := a[AssetKeyPath].(string)
	return s
}

// RootHint returns the directory hint, possibly empty.
func (a Asset) RootHint() string {
	s, _ := a[AssetKeyRootHint].(string)
	return s
}

// Embedded reports whether the asset is marked as carrying inline data.
// Both 1 and true count as embedded.
func (a Asset) Embedded() bool {
	switch v := a[AssetKeyEmbedded].(type) {
	case bool:
		return v
	default:
		n, ok := toNumber(v)
		return ok && n == 1
	}
}

// Inline replaces the path with payload, clears the root hint and marks the
// asset embedded.
func (a Asset) Inline(payload string) {
	a[AssetKeyPath] = payload
	if _, ok := a[AssetKeyRootHint]; ok {
		a[AssetKeyRootHint] = ""
	}
	a[AssetKeyEmbedded] = float64(1)
}

// IsDataURI reports whether the path already holds a data: URI.
func (a Asset) IsDataURI() bool {
	return strings.HasPrefix(a.Path(), "data:")
}

func objects(v any) []map[string]any {
	list, _ := v.([]any)
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// toNumber accepts finite numbers and numeric strings. NaN and the
// infinities count as absent.
func toNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		var err error
		if f, err = n.Float64(); err != nil {
			return 0, false
		}
	case string:
		var err error
		if f, err = strconv.ParseFloat(strings.TrimSpace(n), 64); err != nil {
			return 0, false
		}
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
