package renderer

var pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// 1x1 RGBA PNG holding the background colour #1D003D.
var minimalPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49,
	0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x08, 0x06,
	0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44,
	0x41, 0x54, 0x78, 0xda, 0x63, 0x90, 0x65, 0xb0, 0xfd, 0x0f, 0x00, 0x01, 0xf2,
	0x01, 0x5a, 0xb4, 0xb2, 0xf6, 0xbe, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e,
	0x44, 0xae, 0x42, 0x60, 0x82,
}

// MinimalPNG returns a copy of the pre-baked placeholder.
func MinimalPNG() []byte {
	return append([]byte(nil), minimalPNG...)
}

// Minimal is the capability-free last tier.
type Minimal struct{}

func (Minimal) Name() string { return TierMinimal }

func (Minimal) Render(Request) ([]byte, error) {
	return MinimalPNG(), nil
}
