package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/yaklabco/ragged/internal/cli"
	"github.com/yaklabco/ragged/internal/configloader"
	"github.com/yaklabco/ragged/internal/logging"
	"github.com/yaklabco/ragged/pkg/errs"
	"github.com/yaklabco/ragged/pkg/layout"
)

const records = "{\"x\":1.1,\"y\":[1,2]}\n{\"x\":2,\"y\":[]}\n{\"x\":3.5,\"y\":[3]}\n"

type result struct {
	stdout string
	logs   string
	err    error
}

// isolate runs the test in an empty directory with no user configuration.
func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	for name := range configloader.ListEnvVars() {
		t.Setenv(name, "")
	}
	return dir
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	var stdout, logs bytes.Buffer
	ctx := logging.WithLogger(context.Background(), logging.NewWithWriter(&logs, "info"))

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "1.2.3", Commit: "abc123", Date: "2026-01-02"})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return result{stdout: stdout.String(), logs: logs.String(), err: err}
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConvert(t *testing.T) {
	isolate(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"records", records, nil, `[{"x":1.1,"y":[1,2]},{"x":2.0,"y":[]},{"x":3.5,"y":[3]}]` + "\n"},
		{"lines", "1 2\n3", []string{"--lines"}, "1\n2\n3\n"},
		{"custom separator", "1 2 3", []string{"--lines", "--separator", ";"}, "1;2;3\n"},
		{"sentinels", "[inf, 1.5, -inf]", []string{"--inf", "inf", "--neg-inf=-inf"}, "[inf,1.5,-inf]\n"},
		{"skip invalid", "1\n{bad}\n3", []string{"--skip-invalid"}, "[1,3]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, tt.stdin, append([]string{"convert"}, tt.args...)...)
			require.NoError(t, res.err)
			assert.Equal(t, tt.want, res.stdout)
		})
	}
}

func TestConvertToFile(t *testing.T) {
	dir := isolate(t)
	input := writeFile(t, filepath.Join(dir, "in.json"), records)

	res := execute(t, "", "convert", input, "--lines", "-o", "out.ndjson")
	require.NoError(t, res.err)
	assert.Empty(t, res.stdout)
	assert.Contains(t, res.logs, "wrote values")

	data, err := os.ReadFile(filepath.Join(dir, "out.ndjson"))
	require.NoError(t, err)
	assert.Equal(t, "{\"x\":1.1,\"y\":[1,2]}\n{\"x\":2.0,\"y\":[]}\n{\"x\":3.5,\"y\":[3]}\n", string(data))
}

func TestConvertErrors(t *testing.T) {
	isolate(t)

	res := execute(t, `[1, 2,`, "convert")
	require.ErrorIs(t, res.err, errs.ErrIncompleteFragment)
	assert.Equal(t, cli.ExitDataError, cli.ExitCode(res.err))

	res = execute(t, `[1.5]`, "convert", "--nan", "x", "--inf", "x")
	require.Error(t, res.err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(res.err))

	res = execute(t, "", "convert", "missing.json")
	require.Error(t, res.err)
	assert.Equal(t, cli.ExitIOError, cli.ExitCode(res.err))
}

func TestForm(t *testing.T) {
	isolate(t)

	res := execute(t, records, "form")
	require.NoError(t, res.err)
	assert.Equal(t, "3 * {x: float64, y: var * int64}\n", res.stdout)

	res = execute(t, records, "form", "--format", "json")
	require.NoError(t, res.err)
	var form layout.Form
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &form))
	assert.Equal(t, layout.KindRecord.String(), form.Class)
	assert.Equal(t, []string{"x", "y"}, form.Fields)

	res = execute(t, records, "form", "--format", "yaml")
	require.NoError(t, res.err)
	var fromYAML layout.Form
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &fromYAML))
	assert.Equal(t, form, fromYAML)

	res = execute(t, records, "form", "--format", "xml")
	require.Error(t, res.err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(res.err))
}

func TestReduce(t *testing.T) {
	isolate(t)

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"innermost", "[[1, 2], [], [3]]", []string{"--axis=-1"}, "[3,0,3]\n"},
		{"mask identity", "[[1, 2], [], [3]]", []string{"--axis=-1", "--mask-identity"}, "[3,null,3]\n"},
		{"keepdims", "[[1, 2], [3]]", []string{"--axis", "1", "--keepdims"}, "[[3],[3]]\n"},
		{"columns", "[[1, 2, 3], [], [4, 5]]", []string{"--axis", "0"}, "[5,7,3]\n"},
		{"scalar", "[[1, 2], [], [3]]", nil, "6\n"},
		{"scalar real", "[0.5, 1]", []string{"--op", "max"}, "1.0\n"},
		{"scalar yaml", "[true, false]", []string{"--op", "any", "--format", "yaml"}, "true\n"},
		{"count", "[[1, null], [2]]", []string{"--op", "count", "--axis", "none"}, "2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, tt.stdin, append([]string{"reduce"}, tt.args...)...)
			require.NoError(t, res.err)
			assert.Equal(t, tt.want, res.stdout)
		})
	}
}

func TestReduceAxisFromConfig(t *testing.T) {
	dir := isolate(t)
	writeFile(t, filepath.Join(dir, ".ragged.yml"), "reduce:\n  axis: -1\n")

	res := execute(t, "[[1, 2], [3]]", "reduce")
	require.NoError(t, res.err)
	assert.Equal(t, "[3,3]\n", res.stdout)

	res = execute(t, "[[1, 2], [3]]", "reduce", "--axis", "none")
	require.NoError(t, res.err)
	assert.Equal(t, "6\n", res.stdout)
}

func TestReduceErrors(t *testing.T) {
	isolate(t)

	res := execute(t, "[1]", "reduce", "--op", "median")
	require.ErrorIs(t, res.err, errs.ErrInvalidArgument)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCode(res.err))

	res = execute(t, "[1]", "reduce", "--axis", "first")
	require.ErrorIs(t, res.err, errs.ErrInvalidArgument)

	res = execute(t, "[[1]]", "reduce", "--axis", "2")
	require.Error(t, res.err)
	assert.Equal(t, cli.ExitDataError, cli.ExitCode(res.err))

	res = execute(t, `{"a": 1}`, "reduce")
	require.ErrorIs(t, res.err, errs.ErrRecordReduction)
	assert.Contains(t, res.err.Error(), "sum")
}

func TestApply(t *testing.T) {
	dir := isolate(t)
	a := writeFile(t, filepath.Join(dir, "a.json"), "[[1, 2], [], [3]]")
	b := writeFile(t, filepath.Join(dir, "b.json"), "[10, 20, 30]")

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"scalar", "[1, 2, 3]", []string{"add", "-", "1"}, "[2,3,4]\n"},
		{"real scalar", "[1, 2]", []string{"multiply", "-", "0.5"}, "[0.5,1.0]\n"},
		{"nested", "", []string{"add", a, b}, "[[11,12],[],[33]]\n"},
		{"missing values", "[1, null, 3]", []string{"negative", "-"}, "[-1,null,-3]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, tt.stdin, append([]string{"apply"}, tt.args...)...)
			require.NoError(t, res.err)
			assert.Equal(t, tt.want, res.stdout)
		})
	}
}

func TestApplyErrors(t *testing.T) {
	dir := isolate(t)
	a := writeFile(t, filepath.Join(dir, "a.json"), "[1, 2, 3]")
	b := writeFile(t, filepath.Join(dir, "b.json"), "[1, 2]")

	res := execute(t, "", "apply", "frobnicate", a)
	require.ErrorIs(t, res.err, errs.ErrInvalidArgument)

	res = execute(t, "", "apply", "add", "1", "2")
	require.ErrorIs(t, res.err, errs.ErrInvalidArgument)

	res = execute(t, "", "apply", "add", a, b, "-o", "out.json")
	require.ErrorIs(t, res.err, errs.ErrIncompatibleShape)
	_, err := os.Stat(filepath.Join(dir, "out.json"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestShow(t *testing.T) {
	isolate(t)

	res := execute(t, "1 2 3 4 5", "show", "--limit", "2", "--color", "never")
	require.NoError(t, res.err)
	assert.Equal(t, "5 * int64\n[0] 1\n[1] 2\n... 3 more\n", res.stdout)

	res = execute(t, records, "show", "--color", "never")
	require.NoError(t, res.err)
	assert.Equal(t, fmt.Sprintf("3 * {x: float64, y: var * int64}\n[0] %s\n[1] %s\n[2] %s\n",
		`{"x":1.1,"y":[1,2]}`, `{"x":2.0,"y":[]}`, `{"x":3.5,"y":[3]}`), res.stdout)
}

func TestInit(t *testing.T) {
	dir := isolate(t)

	res := execute(t, "", "init")
	require.NoError(t, res.err)
	data, err := os.ReadFile(filepath.Join(dir, ".ragged.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "# log_level")

	res = execute(t, "", "init")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "already exists")

	res = execute(t, "", "init", "--force", "--full")
	require.NoError(t, res.err)

	res = execute(t, "", "init", "--format", "json")
	require.NoError(t, res.err)
	data, err = os.ReadFile(filepath.Join(dir, ".ragged.json"))
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	res = execute(t, "", "init", "--format", "toml")
	require.Error(t, res.err)
}

func TestVersion(t *testing.T) {
	res := execute(t, "", "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "version=1.2.3")
	assert.Contains(t, res.stdout, "commit=abc123")
	assert.Contains(t, res.stdout, "built=2026-01-02")
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, cli.ExitSuccess},
		{"plain", errors.New("boom"), cli.ExitFailure},
		{"invalid argument", errs.Invalid("op", "bad"), cli.ExitInvalidUsage},
		{"syntax", fmt.Errorf("decode: %w", errs.New(errs.KindSyntax, "decode", "bad")), cli.ExitDataError},
		{"structural", errs.Structural("node", "bad offsets"), cli.ExitInternalError},
		{"path", &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}, cli.ExitIOError},
		{"config", &configloader.ValidationError{Field: "log_level"}, cli.ExitConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cli.ExitCode(tt.err))
		})
	}
}
