// Package docs defines the source document model and loaders that turn
// files (JSON, JSON Lines, plain text) into document sequences ready
// for ingestion.
package docs

import (
	"fmt"
)

// Document is a raw ingestion input: a text body, optional metadata,
// and an optional caller-supplied identifier. Documents with no ID get
// one assigned at ingestion time.
type Document struct {
	ID       string         `json:"id,omitempty" yaml:"id,omitempty"`
	Text     string         `json:"text" yaml:"text"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// ValidateMetadata checks that every metadata value is one of the
// permitted kinds: string, bool, integer, float, or a flat array of
// those. Nested objects and nil values are rejected, so arbitrary
// document shapes are narrowed at the ingestion boundary instead of
// leaking into the database.
func ValidateMetadata(md map[string]any) error {
	for k, v := range md {
		if k == "" {
			return fmt.Errorf("docs: metadata has empty field name")
		}
		if err := validateValue(v, false); err != nil {
			return fmt.Errorf("docs: metadata field %q: %w", k, err)
		}
	}
	return nil
}

func validateValue(v any, inArray bool) error {
	switch x := v.(type) {
	case nil:
		return fmt.Errorf("null values not allowed")
	case string, bool,
		int, int32, int64, uint, uint32, uint64,
		float32, float64:
		return nil
	case []any:
		if inArray {
			return fmt.Errorf("nested arrays not allowed")
		}
		for i, item := range x {
			if err := validateValue(item, true); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	case []string, []int, []int64, []float64, []bool:
		return nil
	case map[string]any:
		return fmt.Errorf("nested objects not allowed")
	default:
		return fmt.Errorf("unsupported value type %T", v)
	}
}
