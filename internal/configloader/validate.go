package configloader

import (
	"fmt"
	"strings"

	"github.com/yaklabco/ragged/pkg/config"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "codec.separator").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues.
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

func (r *ValidationResult) fail(field string, value any, format string, args ...any) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

func (r *ValidationResult) warn(field string, value any, format string, args ...any) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: fmt.Sprintf(format, args...)})
}

// knownLogLevels lists valid log_level values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// knownFormats lists valid output format values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownFormats = map[config.OutputFormat]bool{
	config.FormatText: true,
	config.FormatJSON: true,
	config.FormatYAML: true,
}

// knownColorModes lists valid color values.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownColorModes = map[config.ColorMode]bool{
	config.ColorAuto:   true,
	config.ColorAlways: true,
	config.ColorNever:  true,
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		return result
	}

	if cfg.LogLevel != "" && !knownLogLevels[strings.ToLower(cfg.LogLevel)] {
		result.fail("log_level", cfg.LogLevel, "invalid log level %q; must be one of: debug, info, warn, error", cfg.LogLevel)
	}
	if cfg.Format != "" && !knownFormats[cfg.Format] {
		result.fail("format", cfg.Format, "invalid format %q; must be one of: text, json, yaml", cfg.Format)
	}
	if cfg.Color != "" && !knownColorModes[cfg.Color] {
		result.fail("color", cfg.Color, "invalid color mode %q; must be one of: auto, always, never", cfg.Color)
	}

	validateCodec(cfg.Codec, result)
	validateReduce(cfg.Reduce, result)

	if cfg.Builder.Initial < 1 {
		result.fail("builder.initial", cfg.Builder.Initial, "initial capacity must be >= 1")
	}
	if cfg.Builder.Resize <= 1 {
		result.fail("builder.resize", cfg.Builder.Resize, "resize factor must be > 1")
	}

	return result
}

// validateCodec checks the sentinel tokens and the separator.
func validateCodec(codec config.CodecConfig, result *ValidationResult) {
	seen := make(map[string]string, 3)
	for _, token := range []struct{ field, value string }{
		{"codec.nan_string", codec.NaNString},
		{"codec.infinity_string", codec.InfinityString},
		{"codec.neg_infinity_string", codec.NegInfinityString},
	} {
		if token.value == "" {
			continue
		}
		if other, ok := seen[token.value]; ok {
			result.fail(token.field, token.value, "token %q is already used by %s", token.value, other)
			continue
		}
		seen[token.value] = token.field
	}

	if codec.LineDelimited && codec.Separator == "" {
		result.fail("codec.separator", codec.Separator, "line-delimited output needs a separator")
	}
	if !codec.LineDelimited && codec.Separator != "" && codec.Separator != "\n" {
		result.warn("codec.separator", codec.Separator, "separator only applies to line-delimited output")
	}
}

// validateReduce flags settings that have no effect.
func validateReduce(reduce config.ReduceConfig, result *ValidationResult) {
	if reduce.Axis == nil && reduce.KeepDims {
		result.warn("reduce.keepdims", true, "keepdims has no effect without an axis")
	}
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}

// IsValidFormat returns true if the format is valid.
func IsValidFormat(f config.OutputFormat) bool {
	return knownFormats[f]
}
