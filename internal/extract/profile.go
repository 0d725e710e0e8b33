package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nkmathur/partsrecon/internal/tokenize"
)

// LayoutProfile carries the layout-specific extraction parameters. One
// profile replaces the per-format code paths the heuristics would otherwise
// fork into: different document layouts differ only in these values.
type LayoutProfile struct {
	// Stoplist entries are matched case-insensitively anywhere in a line;
	// a hit marks the line as summary/boilerplate, never a line item.
	Stoplist []string `json:"stoplist"`

	// MinKeyLength is the minimum length of a part key token.
	MinKeyLength int `json:"min_key_length"`

	// KeyScanWindow is how many leading tokens are scanned for the key.
	KeyScanWindow int `json:"key_scan_window"`

	// FractionDigits is the fixed number of fractional digits an amount
	// token carries in this layout (2 or 3).
	FractionDigits int `json:"fraction_digits"`

	// AmountPick selects among multiple amount candidates: "last" or "first".
	AmountPick string `json:"amount_pick"`

	// RateQuantity enables the rate × quantity variant: the line carries a
	// unit rate followed by a quantity instead of a single total column.
	RateQuantity bool `json:"rate_quantity"`

	// QuantityFractionDigits is the fixed fraction width of the quantity
	// token in rate × quantity layouts (commonly 3).
	QuantityFractionDigits int `json:"quantity_fraction_digits"`

	// YTolerance is the vertical clustering band for positioned words.
	YTolerance float64 `json:"y_tolerance"`
}

// DefaultProfile matches the common single-total estimate/bill layout.
func DefaultProfile() LayoutProfile {
	return LayoutProfile{
		Stoplist: []string{
			"total", "subtotal", "sub-total", "tax", "gst",
			"signatory", "policy", "page", "round off", "grand",
		},
		MinKeyLength:           5,
		KeyScanWindow:          3,
		FractionDigits:         2,
		AmountPick:             "last",
		RateQuantity:           false,
		QuantityFractionDigits: 3,
		YTolerance:             tokenize.DefaultYTolerance,
	}
}

// profileSchema returns the JSON-Schema for a layout profile file as a
// generic map, validated with the same machinery as other config inputs.
func profileSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"stoplist": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "minLength": 1},
			},
			"min_key_length":           map[string]any{"type": "integer", "minimum": 1},
			"key_scan_window":          map[string]any{"type": "integer", "minimum": 1},
			"fraction_digits":          map[string]any{"type": "integer", "minimum": 2, "maximum": 3},
			"amount_pick":              map[string]any{"type": "string", "enum": []any{"last", "first"}},
			"rate_quantity":            map[string]any{"type": "boolean"},
			"quantity_fraction_digits": map[string]any{"type": "integer", "minimum": 1, "maximum": 4},
			"y_tolerance":              map[string]any{"type": "number", "minimum": 0},
		},
	}
}

// LoadProfile reads a profile JSON file, validates it against the schema,
// and overlays it on the defaults. Missing fields keep their defaults.
func LoadProfile(path string) (LayoutProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return LayoutProfile{}, fmt.Errorf("read profile: %w", err)
	}
	if err := validateProfileJSON(data); err != nil {
		return LayoutProfile{}, err
	}
	p := DefaultProfile()
	if err := json.Unmarshal(data, &p); err != nil {
		return LayoutProfile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	return p, nil
}

func validateProfileJSON(data []byte) error {
	b, err := json.Marshal(profileSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("profile.schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("profile.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal profile: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("profile does not match schema: %w", err)
	}
	return nil
}
