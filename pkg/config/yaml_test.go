package config_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/ragged/pkg/config"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "\n", cfg.Codec.Separator)
	assert.Equal(t, 1024, cfg.Builder.Initial)
	assert.InDelta(t, 8.0, cfg.Builder.Resize, 0)
	assert.Nil(t, cfg.Reduce.Axis)
	assert.Equal(t, config.FormatText, cfg.Format)
	assert.Equal(t, config.ColorAuto, cfg.Color)
}

func TestConfigClone(t *testing.T) {
	t.Parallel()

	t.Run("nil config returns nil", func(t *testing.T) {
		t.Parallel()

		var c *config.Config
		assert.Nil(t, c.Clone())
	})

	t.Run("empty config", func(t *testing.T) {
		t.Parallel()

		c := &config.Config{}
		clone := c.Clone()
		require.NotNil(t, clone)
		assert.NotSame(t, c, clone)
	})

	t.Run("deep copies the axis", func(t *testing.T) {
		t.Parallel()

		axis := -1
		original := config.NewConfig()
		original.Reduce.Axis = &axis

		clone := original.Clone()
		require.NotNil(t, clone.Reduce.Axis)
		assert.Equal(t, -1, *clone.Reduce.Axis)

		*clone.Reduce.Axis = 0
		assert.Equal(t, -1, *original.Reduce.Axis)
	})

	t.Run("preserves CLI fields", func(t *testing.T) {
		t.Parallel()

		original := config.NewConfig()
		original.Format = config.FormatYAML
		original.Color = config.ColorNever
		original.Output = "out.json"
		original.Codec.InfinityString = "inf"

		clone := original.Clone()
		assert.Equal(t, config.FormatYAML, clone.Format)
		assert.Equal(t, config.ColorNever, clone.Color)
		assert.Equal(t, "out.json", clone.Output)
		assert.Equal(t, "inf", clone.Codec.InfinityString)
	})
}

func TestYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	axis := 1
	original := config.NewConfig()
	original.LogLevel = "debug"
	original.Codec.NaNString = "nan"
	original.Codec.QuotedSentinels = true
	original.Reduce.Axis = &axis
	original.Reduce.KeepDims = true

	data, err := original.ToYAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "nan_string: nan")
	assert.Contains(t, string(data), "keepdims: true")
	assert.NotContains(t, string(data), "format")

	parsed, err := config.FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, original.Codec, parsed.Codec)
	assert.Equal(t, original.Reduce, parsed.Reduce)
	assert.Equal(t, original.Builder, parsed.Builder)
	assert.Equal(t, "debug", parsed.LogLevel)
}

func TestFromYAMLLeavesUnsetFieldsZero(t *testing.T) {
	t.Parallel()

	cfg, err := config.FromYAML([]byte("codec:\n  infinity_string: inf\n"))
	require.NoError(t, err)
	assert.Equal(t, "inf", cfg.Codec.InfinityString)
	assert.Empty(t, cfg.Codec.Separator)
	assert.Zero(t, cfg.Builder.Initial)

	_, err = config.FromYAML([]byte("codec: [unclosed"))
	require.Error(t, err)
}

func TestToYAMLWithHeader(t *testing.T) {
	t.Parallel()

	data, err := config.NewConfig().ToYAMLWithHeader("# header")
	require.NoError(t, err)
	assert.Regexp(t, "^# header\n\nlog_level: info\n", string(data))
}

func TestGenerateTemplate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     config.TemplateOptions
		contains []string
	}{
		{"minimal", config.TemplateOptions{}, []string{"# ragged configuration", "# infinity_string: inf", "codec:"}},
		{"full", config.TemplateOptions{Full: true}, []string{"# Text codec", "separator:", "resize: 8"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data, err := config.GenerateTemplate(tt.opts)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, string(data), want)
			}

			cfg, err := config.FromYAML(data)
			require.NoError(t, err)
			require.NotNil(t, cfg)
		})
	}

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		data, err := config.GenerateTemplate(config.TemplateOptions{Format: "json"})
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Contains(t, decoded, "codec")
		assert.Contains(t, decoded, "builder")
	})
}
