package lottie

// Valid reports whether raw satisfies the minimal structural contract of an
// animation document: version, in/out points, frame rate, a width, a height
// and a layers field. Presence is what counts; layers may be empty.
func Valid(raw map[string]any) bool {
	if raw == nil {
		return false
	}
	has := func(keys ...string) bool {
		for _, k := range keys {
			if _, ok := raw[k]; ok {
				return true
			}
		}
		return false
	}
	return has(KeyVersion) &&
		has(KeyInPoint) &&
		has(KeyOutPoint) &&
		has(KeyFrameRate) &&
		has(KeyWidth, KeyWidthAlt) &&
		has(KeyHeight, KeyHeightAlt) &&
		has(KeyLayers)
}

// IsValidDocument parses data and applies Valid. Malformed JSON is simply not valid.
func IsValidDocument(data []byte) bool {
	doc, err := Parse(data)
	if err != nil {
		return false
	}
	return Valid(doc.raw)
}

// Valid applies the package-level predicate to the document.
func (d *Document) Valid() bool {
	return Valid(d.raw)
}
