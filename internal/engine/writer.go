package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/lottiethumb/internal/apperr"
)

// Output formats for EncodeItem.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// EncodeItem writes v (an Item or Inspection) to w as YAML or JSON.
func EncodeItem(w io.Writer, v any, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// itemFormat picks the record format from a file extension.
func itemFormat(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// WriteItem persists a result record next to its thumbnail. Paths ending in
// .json get JSON, everything else YAML. The file is replaced atomically.
func WriteItem(path string, item *Item) error {
	var buf bytes.Buffer
	if err := EncodeItem(&buf, item, itemFormat(path)); err != nil {
		return fmt.Errorf("%w: encode item: %v", apperr.ErrOutputWrite, err)
	}
	return writeFile(path, buf.Bytes())
}

// ReadItem loads a record written by WriteItem.
func ReadItem(path string) (*Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var item Item
	if itemFormat(path) == FormatJSON {
		err = json.Unmarshal(data, &item)
	} else {
		err = yaml.Unmarshal(data, &item)
	}
	if err != nil {
		return nil, fmt.Errorf("decode item %s: %w", path, err)
	}
	return &item, nil
}
