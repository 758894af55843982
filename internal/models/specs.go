package models

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Specs are the keys a record is constructed from.
type Specs struct {
	Project    string `mapstructure:"project" yaml:"project,omitempty"`
	Separator  string `mapstructure:"separator" yaml:"separator,omitempty"`
	Algorithms string `mapstructure:"algorithms" yaml:"algorithms,omitempty"`
	Regression bool   `mapstructure:"regression" yaml:"regression,omitempty"`
	NumFolds   int    `mapstructure:"n_folds" yaml:"n_folds,omitempty"`

	BaseDir        string `mapstructure:"base_dir" yaml:"base_dir,omitempty"`
	Extension      string `mapstructure:"extension" yaml:"extension,omitempty"`
	FieldSeparator string `mapstructure:"field_separator" yaml:"field_separator,omitempty"`
}

// DecodeSpecs builds Specs from a loosely typed key/value map, such as one
// read from a generic config source. Scalars are coerced ("true" → true,
// "3" → 3).
func DecodeSpecs(raw map[string]any) (Specs, error) {
	return Specs{}.With(raw)
}

// With returns a copy of s with the keys present in raw overlaid. Keys absent
// from raw keep their current value; unknown keys are an error.
func (s Specs) With(raw map[string]any) (Specs, error) {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &s,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return Specs{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return Specs{}, fmt.Errorf("decoding model specs: %w", err)
	}
	return s, nil
}

// Validate checks that the required keys are present.
func (s Specs) Validate() error {
	if strings.TrimSpace(s.Project) == "" {
		return &ConfigError{Key: "project"}
	}
	if s.Separator == "" {
		return &ConfigError{Key: "separator"}
	}
	if strings.TrimSpace(s.Algorithms) == "" {
		return &ConfigError{Key: "algorithms"}
	}
	if s.NumFolds < 0 {
		return &ConfigError{Key: "n_folds", Reason: fmt.Sprintf("must not be negative, got %d", s.NumFolds)}
	}
	return nil
}

// AlgorithmList splits Algorithms on Separator, upper-casing each id.
// Empty ids, duplicates and the reserved aliases are rejected.
func (s Specs) AlgorithmList() ([]string, error) {
	if s.Separator == "" {
		return nil, &ConfigError{Key: "separator"}
	}
	parts := strings.Split(strings.ToUpper(s.Algorithms), s.Separator)
	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		id := strings.TrimSpace(p)
		switch {
		case id == "":
			return nil, &ConfigError{Key: "algorithms", Reason: fmt.Sprintf("empty algorithm name in %q", s.Algorithms)}
		case IsAlias(id):
			return nil, &ConfigError{Key: "algorithms", Reason: fmt.Sprintf("%s is a reserved algorithm name", id)}
		case seen[id]:
			return nil, &ConfigError{Key: "algorithms", Reason: fmt.Sprintf("duplicate algorithm %s", id)}
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}
