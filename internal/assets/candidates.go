// Package assets inlines externally referenced image assets of an animation
// document using the files of an extraction manifest.
package assets

import "strings"

// Candidate derives one manifest lookup key from an asset's declared path and
// root hint. An empty key means the candidate does not apply.
type Candidate struct {
	Name string
	Key  func(path, hint string) string
}

// Candidates is the lookup order. The first candidate with a manifest hit wins,
// so the literal declared path is tried before looser conventions and the
// bare file name comes last.
var Candidates = []Candidate{
	{Name: "declared", Key: func(p, _ string) string { return p }},
	{Name: "hinted", Key: func(p, u string) string {
		if u == "" {
			return ""
		}
		return u + p
	}},
	{Name: "hinted-joined", Key: func(p, u string) string {
		if u == "" {
			return ""
		}
		return strings.TrimSuffix(u, "/") + "/" + p
	}},
	{Name: "images-dir", Key: func(p, _ string) string { return "images/" + p }},
	{Name: "dot-images-dir", Key: func(p, _ string) string { return "./images/" + p }},
	{Name: "basename", Key: func(p, _ string) string { return bareName(p) }},
}

// Key is a generated lookup key together with the candidate that produced it.
type Key struct {
	Candidate string
	Value     string
}

// CandidateKeys returns the lookup keys for an asset in tie-break order.
func CandidateKeys(path, hint string) []Key {
	keys := make([]Key, 0, len(Candidates))
	for _, c := range Candidates {
		if v := c.Key(path, hint); v != "" {
			keys = append(keys, Key{Candidate: c.Name, Value: v})
		}
	}
	return keys
}

// bareName strips everything up to the last slash.
func bareName(p string) string {
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}
