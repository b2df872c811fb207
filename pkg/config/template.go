package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full writes every setting with its default value. If false, the
	// template lists the settings commented out.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON(NewConfig())
	}
	if opts.Full {
		return generateFullTemplate()
	}
	return []byte(minimalTemplate), nil
}

const minimalTemplate = `# ragged configuration
# See: https://github.com/yaklabco/ragged

# Log level: debug, info, warn or error
# log_level: info

codec:
  # Tokens for non-finite floats; empty disables the substitution
  # nan_string: nan
  # infinity_string: inf
  # neg_infinity_string: -inf

  # Write and match the tokens as quoted strings
  # quoted_sentinels: false

  # Write one value per line instead of a single list
  # line_delimited: false
  # separator: "\n"

  # Drop malformed values instead of failing
  # skip_invalid: false

# reduce:
#   axis: -1
#   keepdims: false
#   mask_identity: false
#   flatten_records: false

# builder:
#   initial: 1024
#   resize: 8
`

// sectionComments annotates the top-level keys of a full template.
//
//nolint:gochecknoglobals // Read-only lookup table.
var sectionComments = map[string]string{
	"log_level": "# Log level: debug, info, warn or error",
	"codec:":    "# Text codec: sentinel tokens, output layout and error recovery",
	"reduce:":   "# Defaults for the reduce command; omit axis to reduce to a scalar",
	"builder:":  "# Initial capacity and growth factor of the builder buffers",
}

// generateFullTemplate writes the default configuration with one comment
// above each section.
func generateFullTemplate() ([]byte, error) {
	body, err := NewConfig().ToYAMLWithHeader(strings.Join([]string{
		DefaultTemplateHeader(),
		"#",
		"# Every setting is listed with its default value.",
	}, "\n"))
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for _, line := range strings.SplitAfter(string(body), "\n") {
		for prefix, comment := range sectionComments {
			if strings.HasPrefix(line, prefix) {
				sb.WriteString(comment)
				sb.WriteByte('\n')
			}
		}
		sb.WriteString(line)
	}
	return []byte(sb.String()), nil
}

// templateToJSON writes cfg as indented JSON.
func templateToJSON(cfg *Config) ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}
	return append(jsonBytes, '\n'), nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# ragged configuration
# See: https://github.com/yaklabco/ragged`
}
