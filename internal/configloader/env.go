package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yaklabco/ragged/pkg/config"
)

// envVarPrefix is the prefix for all ragged environment variables.
const envVarPrefix = "RAGGED_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
	envTypeFloat
	envTypeAxis
)

// envMapping binds one environment variable to one config field.
type envMapping struct {
	field       string
	typ         envFieldType
	description string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"LOG_LEVEL":           {"log_level", envTypeString, "Log level: debug, info, warn or error"},
	"FORMAT":              {"format", envTypeString, "Output format: text, json or yaml"},
	"NAN_STRING":          {"codec.nan_string", envTypeString, "Token for not-a-number"},
	"INFINITY_STRING":     {"codec.infinity_string", envTypeString, "Token for positive infinity"},
	"NEG_INFINITY_STRING": {"codec.neg_infinity_string", envTypeString, "Token for negative infinity"},
	"SEPARATOR":           {"codec.separator", envTypeString, "Separator for line-delimited output"},
	"QUOTED_SENTINELS":    {"codec.quoted_sentinels", envTypeBool, "Quote non-finite tokens: true or false"},
	"LINE_DELIMITED":      {"codec.line_delimited", envTypeBool, "One value per line: true or false"},
	"SKIP_INVALID":        {"codec.skip_invalid", envTypeBool, "Skip malformed values: true or false"},
	"AXIS":                {"reduce.axis", envTypeAxis, "Reduced axis, or none for a scalar"},
	"KEEPDIMS":            {"reduce.keepdims", envTypeBool, "Keep the reduced axis: true or false"},
	"MASK_IDENTITY":       {"reduce.mask_identity", envTypeBool, "Empty groups give null: true or false"},
	"FLATTEN_RECORDS":     {"reduce.flatten_records", envTypeBool, "Reduce across record fields: true or false"},
	"BUILDER_INITIAL":     {"builder.initial", envTypeInt, "Initial builder buffer capacity"},
	"BUILDER_RESIZE":      {"builder.resize", envTypeFloat, "Builder buffer growth factor"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with RAGGED_ (e.g., RAGGED_LOG_LEVEL).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value, ok := os.LookupEnv(envVar)
		if !ok || value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		cfg.Builder.Initial = i
		return nil
	case envTypeFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number for %s: %q", envVar, value)
		}
		cfg.Builder.Resize = f
		return nil
	case envTypeAxis:
		if strings.EqualFold(value, "none") {
			cfg.Reduce.Axis = nil
			return nil
		}
		axis, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid axis for %s: %q (expected an integer or none)", envVar, value)
		}
		cfg.Reduce.Axis = &axis
		return nil
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// setStringField sets a string field on the config by field path.
func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "log_level":
		cfg.LogLevel = value
	case "format":
		cfg.Format = config.OutputFormat(value)
	case "codec.nan_string":
		cfg.Codec.NaNString = value
	case "codec.infinity_string":
		cfg.Codec.InfinityString = value
	case "codec.neg_infinity_string":
		cfg.Codec.NegInfinityString = value
	case "codec.separator":
		cfg.Codec.Separator = unescapeSeparator(value)
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

// setBoolField sets a boolean field on the config by field path.
func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "codec.quoted_sentinels":
		cfg.Codec.QuotedSentinels = value
	case "codec.line_delimited":
		cfg.Codec.LineDelimited = value
	case "codec.skip_invalid":
		cfg.Codec.SkipInvalid = value
	case "reduce.keepdims":
		cfg.Reduce.KeepDims = value
	case "reduce.mask_identity":
		cfg.Reduce.MaskIdentity = value
	case "reduce.flatten_records":
		cfg.Reduce.FlattenRecords = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// unescapeSeparator turns the escapes a shell cannot easily carry into the
// characters they name.
func unescapeSeparator(value string) string {
	return strings.NewReplacer(`\n`, "\n", `\r`, "\r", `\t`, "\t").Replace(value)
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// ListEnvVars returns all supported environment variables with their descriptions.
func ListEnvVars() map[string]string {
	vars := make(map[string]string, len(envMappings))
	for suffix, mapping := range envMappings {
		vars[envVarPrefix+suffix] = mapping.description
	}
	return vars
}
