// Package config defines the configuration types for ragged.
// These types are plain data structures; loading and merging live in the
// configloader package and conversion into library options in the CLI.
package config

// OutputFormat selects how commands print schemas and results.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// ColorMode controls terminal styling: "auto", "always" or "never".
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// CodecConfig holds the text codec settings.
type CodecConfig struct {
	// NaNString, InfinityString and NegInfinityString are the tokens used for
	// non-finite floats. Empty disables the substitution.
	NaNString         string `json:"nan_string,omitempty" mapstructure:"nan_string" yaml:"nan_string,omitempty"`
	InfinityString    string `json:"infinity_string,omitempty" mapstructure:"infinity_string" yaml:"infinity_string,omitempty"`
	NegInfinityString string `json:"neg_infinity_string,omitempty" mapstructure:"neg_infinity_string" yaml:"neg_infinity_string,omitempty"`

	// QuotedSentinels writes and matches the tokens as quoted strings.
	QuotedSentinels bool `json:"quoted_sentinels" mapstructure:"quoted_sentinels" yaml:"quoted_sentinels"`

	// Separator joins values in line-delimited output.
	Separator string `json:"separator" mapstructure:"separator" yaml:"separator"`

	// LineDelimited writes one value per element instead of one list.
	LineDelimited bool `json:"line_delimited" mapstructure:"line_delimited" yaml:"line_delimited"`

	// SkipInvalid drops malformed top-level values instead of failing.
	SkipInvalid bool `json:"skip_invalid" mapstructure:"skip_invalid" yaml:"skip_invalid"`
}

// ReduceConfig holds the defaults for the reduce command.
type ReduceConfig struct {
	// Axis is the reduced axis; nil reduces every value to a scalar.
	Axis *int `json:"axis,omitempty" mapstructure:"axis" yaml:"axis,omitempty"`

	KeepDims       bool `json:"keepdims" mapstructure:"keepdims" yaml:"keepdims"`
	MaskIdentity   bool `json:"mask_identity" mapstructure:"mask_identity" yaml:"mask_identity"`
	FlattenRecords bool `json:"flatten_records" mapstructure:"flatten_records" yaml:"flatten_records"`
}

// BuilderConfig sizes the growable buffers of the builder.
type BuilderConfig struct {
	Initial int     `json:"initial" mapstructure:"initial" yaml:"initial"`
	Resize  float64 `json:"resize" mapstructure:"resize" yaml:"resize"`
}

// Config is the root configuration structure for ragged.
type Config struct {
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `json:"log_level,omitempty" mapstructure:"log_level" yaml:"log_level,omitempty"`

	Codec   CodecConfig   `json:"codec" mapstructure:"codec" yaml:"codec"`
	Reduce  ReduceConfig  `json:"reduce" mapstructure:"reduce" yaml:"reduce"`
	Builder BuilderConfig `json:"builder" mapstructure:"builder" yaml:"builder"`

	// CLI-level options (not persisted to config files).

	// Format selects the output format of form and reduce.
	Format OutputFormat `json:"-" mapstructure:"-" yaml:"-"`

	// Color controls styled output.
	Color ColorMode `json:"-" mapstructure:"-" yaml:"-"`

	// Output is the destination file; empty writes to stdout.
	Output string `json:"-" mapstructure:"-" yaml:"-"`
}

const (
	defaultInitial = 1024
	defaultResize  = 8
)

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		LogLevel: "info",
		Codec: CodecConfig{
			Separator: "\n",
		},
		Builder: BuilderConfig{
			Initial: defaultInitial,
			Resize:  defaultResize,
		},
		Format: FormatText,
		Color:  ColorAuto,
	}
}
