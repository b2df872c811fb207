package configloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaklabco/ragged/pkg/config"
)

func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolated(t.TempDir()))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config == nil {
		t.Fatal("Load() returned nil config")
	}
	if result.Config.Builder.Initial != 1024 {
		t.Errorf("expected default initial 1024, got %d", result.Config.Builder.Initial)
	}
	if len(result.LoadedFrom) != 0 {
		t.Errorf("expected no loaded files, got %v", result.LoadedFrom)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".ragged.yml"), `
codec:
  infinity_string: inf
  neg_infinity_string: -inf
reduce:
  axis: -1
`)

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Codec.InfinityString != "inf" || cfg.Codec.NegInfinityString != "-inf" {
		t.Errorf("expected infinity tokens, got %+v", cfg.Codec)
	}
	if cfg.Reduce.Axis == nil || *cfg.Reduce.Axis != -1 {
		t.Errorf("expected axis -1, got %v", cfg.Reduce.Axis)
	}
	if cfg.Codec.Separator != "\n" {
		t.Errorf("expected default separator to survive merge, got %q", cfg.Codec.Separator)
	}
	if len(result.LoadedFrom) != 1 {
		t.Errorf("expected 1 loaded file, got %d", len(result.LoadedFrom))
	}
}

func TestLoad_ProjectConfigFoundUpward(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(root, ".ragged.yml"), "log_level: debug\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	result, err := Load(context.Background(), isolated(nested))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.LogLevel != "debug" {
		t.Errorf("expected log level from parent config, got %q", result.Config.LogLevel)
	}
}

func TestFindProjectConfig_StopsAtVCSRoot(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".ragged.yml"), "log_level: debug\n")
	repo := filepath.Join(root, "repo")
	if err := os.MkdirAll(filepath.Join(repo, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	path, err := FindProjectConfig(context.Background(), repo)
	if err != nil {
		t.Fatalf("FindProjectConfig() error = %v", err)
	}
	if path != "" {
		t.Errorf("expected search to stop at VCS root, found %q", path)
	}
}

func TestLoad_ExplicitOverridesProject(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".ragged.yml"), "codec:\n  nan_string: nan\n")
	custom := filepath.Join(tmpDir, "custom.yml")
	writeFile(t, custom, "codec:\n  nan_string: NaN\nbuilder:\n  initial: 16\n")

	opts := isolated(tmpDir)
	opts.ExplicitPath = custom
	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Codec.NaNString != "NaN" {
		t.Errorf("expected explicit token NaN, got %q", result.Config.Codec.NaNString)
	}
	if result.Config.Builder.Initial != 16 {
		t.Errorf("expected initial 16, got %d", result.Config.Builder.Initial)
	}
	if len(result.LoadedFrom) != 2 || result.LoadedFrom[1] != custom {
		t.Errorf("expected project then explicit, got %v", result.LoadedFrom)
	}
}

func TestLoad_CLIOverrides(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".ragged.yml"), "reduce:\n  axis: 1\n")

	axis := 0
	cli := &config.Config{Format: config.FormatJSON, Reduce: config.ReduceConfig{Axis: &axis, KeepDims: true}}
	opts := isolated(tmpDir)
	opts.CLIConfig = cli

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *result.Config.Reduce.Axis != 0 {
		t.Errorf("expected CLI axis 0, got %d", *result.Config.Reduce.Axis)
	}
	if !result.Config.Reduce.KeepDims {
		t.Error("expected keepdims from CLI")
	}
	if result.Config.Format != config.FormatJSON {
		t.Errorf("expected json format, got %q", result.Config.Format)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{"bad log level", "log_level: loud\n", "log_level"},
		{"shared token", "codec:\n  nan_string: x\n  infinity_string: x\n", "codec.infinity_string"},
		{"resize too small", "builder:\n  resize: 1\n", "builder.resize"},
		{"negative initial", "builder:\n  initial: -4\n", "builder.initial"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			path := filepath.Join(tmpDir, ".ragged.yml")
			writeFile(t, path, tt.content)

			_, err := Load(context.Background(), isolated(tmpDir))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, verr.Field)
			}
			if verr.FilePath != path {
				t.Errorf("expected file path %q, got %q", path, verr.FilePath)
			}
		})
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".ragged.yml"), "codec: [unclosed\n")

	_, err := Load(context.Background(), isolated(tmpDir))
	if err == nil || !strings.Contains(err.Error(), "load project config") {
		t.Fatalf("expected project config error, got %v", err)
	}
}

func TestLoad_Warnings(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".ragged.yml"), "reduce:\n  keepdims: true\n")

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "keepdims") {
		t.Errorf("expected keepdims warning, got %v", result.Warnings)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RAGGED_INFINITY_STRING", "Infinity")
	t.Setenv("RAGGED_LINE_DELIMITED", "true")
	t.Setenv("RAGGED_SEPARATOR", `\r\n`)
	t.Setenv("RAGGED_AXIS", "2")
	t.Setenv("RAGGED_BUILDER_RESIZE", "1.5")

	cfg := config.NewConfig()
	if err := LoadFromEnv(cfg); err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Codec.InfinityString != "Infinity" {
		t.Errorf("expected Infinity, got %q", cfg.Codec.InfinityString)
	}
	if !cfg.Codec.LineDelimited {
		t.Error("expected line_delimited")
	}
	if cfg.Codec.Separator != "\r\n" {
		t.Errorf("expected CRLF separator, got %q", cfg.Codec.Separator)
	}
	if cfg.Reduce.Axis == nil || *cfg.Reduce.Axis != 2 {
		t.Errorf("expected axis 2, got %v", cfg.Reduce.Axis)
	}
	if cfg.Builder.Resize != 1.5 {
		t.Errorf("expected resize 1.5, got %v", cfg.Builder.Resize)
	}

	t.Setenv("RAGGED_AXIS", "none")
	if err := LoadFromEnv(cfg); err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Reduce.Axis != nil {
		t.Errorf("expected axis cleared, got %v", *cfg.Reduce.Axis)
	}
}

func TestLoadFromEnv_InvalidValues(t *testing.T) {
	t.Setenv("RAGGED_SKIP_INVALID", "maybe")

	if err := LoadFromEnv(config.NewConfig()); err == nil {
		t.Fatal("expected error for invalid boolean")
	}
}

func TestGetEnvVarName(t *testing.T) {
	t.Parallel()

	if got := GetEnvVarName("codec.nan_string"); got != "RAGGED_NAN_STRING" {
		t.Errorf("expected RAGGED_NAN_STRING, got %q", got)
	}
	if got := GetEnvVarName("nope"); got != "" {
		t.Errorf("expected empty name, got %q", got)
	}
	if len(ListEnvVars()) != len(envMappings) {
		t.Error("ListEnvVars should describe every mapping")
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	axis := 1
	base := config.NewConfig()
	base.Codec.SkipInvalid = true
	base.Reduce.Axis = &axis

	override := &config.Config{Codec: config.CodecConfig{NaNString: "nan"}}
	merged := MergeAll(base, override)

	if merged.Codec.NaNString != "nan" {
		t.Errorf("expected nan token, got %q", merged.Codec.NaNString)
	}
	if !merged.Codec.SkipInvalid {
		t.Error("false in override must not unset skip_invalid")
	}
	if merged.Reduce.Axis == nil || *merged.Reduce.Axis != 1 {
		t.Error("nil axis in override must keep the base axis")
	}
	if merged.Builder.Initial != 1024 {
		t.Errorf("expected base initial, got %d", merged.Builder.Initial)
	}
	if MergeAll() != nil {
		t.Error("MergeAll() with no configs should be nil")
	}
}
