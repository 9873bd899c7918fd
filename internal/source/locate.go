package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ivlev/lottiethumb/internal/apperr"
)

// Tier names which heuristic matched a document.
type Tier string

const (
	TierNamed     Tier = "named"
	TierShape     Tier = "shape"
	TierSubstring Tier = "substring"
)

// Match is the document picked by Locate.
type Match struct {
	Entry
	Tier Tier
}

var preferredNames = map[string]bool{
	"data.json":      true,
	"animation.json": true,
	"data":           true,
	"animation":      true,
}

// Locate finds the animation document in m. JSON candidates are tried first,
// well-known names ahead of other .json files, and accepted when they carry a
// layers field or both a version and an assets field. Failing that, every
// entry is scanned for the "layers" key next to a "v" or "fr" key.
func Locate(m *Manifest) (Match, error) {
	var named, other []Entry
	for _, e := range m.Entries {
		if skipEntry(e) {
			continue
		}
		base := strings.ToLower(e.Base())
		switch {
		case preferredNames[base]:
			named = append(named, e)
		case e.Ext() == ".json":
			other = append(other, e)
		}
	}

	for _, group := range [][]Entry{named, other} {
		for _, e := range group {
			data, err := m.Read(e)
			if err != nil {
				continue
			}
			if looksLikeDocument(data) {
				e.Data = data
				tier := TierShape
				if preferredNames[strings.ToLower(e.Base())] {
					tier = TierNamed
				}
				return Match{Entry: e, Tier: tier}, nil
			}
		}
	}

	for _, e := range m.Entries {
		if skipEntry(e) || IsImageName(e.Name) {
			continue
		}
		data, err := m.Read(e)
		if err != nil {
			continue
		}
		if containsDocumentKeys(data) {
			e.Data = data
			return Match{Entry: e, Tier: TierSubstring}, nil
		}
	}

	return Match{}, fmt.Errorf("%w in %s (%d entries)", apperr.ErrDocumentNotFound, m.Source, m.Len())
}

func skipEntry(e Entry) bool {
	return strings.HasPrefix(e.Name, "__MACOSX/") || strings.HasPrefix(e.Base(), "._")
}

func looksLikeDocument(data []byte) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	if _, ok := probe["layers"]; ok {
		return true
	}
	_, hasVersion := probe["v"]
	_, hasAssets := probe["assets"]
	return hasVersion && hasAssets
}

func containsDocumentKeys(data []byte) bool {
	return bytes.Contains(data, []byte(`"layers"`)) &&
		(bytes.Contains(data, []byte(`"v"`)) || bytes.Contains(data, []byte(`"fr"`)))
}
