package codec_test

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/builder"
	"github.com/yaklabco/ragged/pkg/codec"
	"github.com/yaklabco/ragged/pkg/errs"
	"github.com/yaklabco/ragged/pkg/layout"
)

func TestRoundTripRecords(t *testing.T) {
	t.Parallel()

	const text = `[{"x":1.1,"y":[]},{"x":2.2,"y":[1]}]`

	node, err := codec.DecodeString(text, codec.DefaultOptions())
	require.NoError(t, err)

	rec, ok := node.(*layout.Record)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, rec.Fields())
	assert.Equal(t, layout.KindNumeric, rec.Field("x").Kind())
	assert.Equal(t, layout.KindListOffset, rec.Field("y").Kind())

	out, err := codec.EncodeToString(node, codec.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, text, out)
}

func TestIncompleteFragments(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`{"one": 1, "two": 2.2,`,
		"{\"one\": 1,\n    \"two\": 2.2,\n    ",
		"{\"one\": 1, \"two\": 2.2, \"three\": \"THREE\"}\n{\"one\": 10, \"two\": 22,",
		`["one", "two",`,
		`{"one": 1, "two"`,
		`"unterminated`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			t.Parallel()

			_, err := codec.DecodeString(input, codec.DefaultOptions())
			require.ErrorIs(t, err, errs.ErrIncompleteFragment)
		})
	}
}

func TestGluedValuesAreTrailingData(t *testing.T) {
	t.Parallel()

	for _, input := range []string{`{"a":1}{"a":2}`, `[1][2]`, `1}`, `"a""b"`} {
		_, err := codec.DecodeString(input, codec.DefaultOptions())
		require.ErrorIs(t, err, errs.ErrTrailingData, input)
	}
}

func TestSeparatedValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []any
	}{
		{"newline", "{\"a\":1}\n{\"a\":2}", []any{map[string]any{"a": int64(1)}, map[string]any{"a": int64(2)}}},
		{"newline and carriage return", "{\"a\":1}\n\r{\"a\":2}\n\r", []any{map[string]any{"a": int64(1)}, map[string]any{"a": int64(2)}}},
		{"same line", `{"a":1}   {"a":2}`, []any{map[string]any{"a": int64(1)}, map[string]any{"a": int64(2)}}},
		{"blank lines", " 1\n    2\n\n    3   ", []any{int64(1), int64(2), int64(3)}},
		{"lists", "[\"one\", \"two\"]\n[\"uno\", \"dos\"]", []any{[]any{"one", "two"}, []any{"uno", "dos"}}},
		{"single list is unwrapped", `[1, 2, 3]`, []any{int64(1), int64(2), int64(3)}},
		{"mixed kinds", `1 2 "three"`, []any{int64(1), int64(2), "three"}},
		{"integers join reals", "{\"one\": 1, \"two\": 2.2}\n{\"one\": 10, \"two\": 22}",
			[]any{map[string]any{"one": int64(1), "two": 2.2}, map[string]any{"one": int64(10), "two": 22.0}}},
		{"literals", `[true, null, false]`, []any{true, nil, false}},
		{"empty input", "  \n ", []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			node, err := codec.DecodeString(tt.input, codec.DefaultOptions())
			require.NoError(t, err)
			assert.Equal(t, tt.want, layout.ToList(node))
		})
	}
}

func TestSyntaxErrors(t *testing.T) {
	t.Parallel()

	for _, input := range []string{`[1,,2]`, `{"a" 1}`, `[1 2]`, `nope`, `{"a":1,}`, `{"a":1,"a":2}`, `01`, `"\q"`} {
		_, err := codec.DecodeString(input, codec.DefaultOptions())
		require.ErrorIs(t, err, errs.ErrSyntax, input)
	}
}

func TestSentinelSymmetry(t *testing.T) {
	t.Parallel()

	node := layout.MustNumeric(buffer.FromFloat64s([]float64{math.Inf(1), 1.5, math.Inf(-1)}))

	opts := codec.DefaultOptions()
	opts.Infinity = "inf"
	opts.NegInfinity = "-inf"

	text, err := codec.EncodeToString(node, opts)
	require.NoError(t, err)
	assert.Equal(t, `[inf,1.5,-inf]`, text)

	back, err := codec.DecodeString(text, opts)
	require.NoError(t, err)
	assert.Equal(t, []any{math.Inf(1), 1.5, math.Inf(-1)}, layout.ToList(back))

	_, err = codec.DecodeString(text, codec.DefaultOptions())
	require.ErrorIs(t, err, errs.ErrSyntax)
}

func TestQuotedSentinels(t *testing.T) {
	t.Parallel()

	opts := codec.DefaultOptions()
	opts.NaN = "NaN"
	opts.Infinity = "inf"
	opts.QuotedSentinels = true

	node := layout.MustNumeric(buffer.FromFloat64s([]float64{math.NaN(), 1.1, math.Inf(1)}))
	text, err := codec.EncodeToString(node, opts)
	require.NoError(t, err)
	assert.Equal(t, `["NaN",1.1,"inf"]`, text)

	back, err := codec.DecodeString(text, opts)
	require.NoError(t, err)
	values := layout.ToList(back)
	require.Len(t, values, 3)
	assert.True(t, math.IsNaN(values[0].(float64)))
	assert.Equal(t, math.Inf(1), values[2])

	plain, err := codec.DecodeString(text, codec.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []any{"NaN", 1.1, "inf"}, layout.ToList(plain))
}

func TestNonFiniteWithoutToken(t *testing.T) {
	t.Parallel()

	node := layout.MustNumeric(buffer.FromFloat64s([]float64{math.NaN()}))
	_, err := codec.EncodeToString(node, codec.DefaultOptions())
	require.ErrorIs(t, err, errs.ErrUnrepresentable)
}

func TestEncodeFloatsKeepTheirType(t *testing.T) {
	t.Parallel()

	node := layout.MustNumeric(buffer.FromFloat64s([]float64{2, 1e-7, -0.5, 1e22}))
	text, err := codec.EncodeToString(node, codec.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, `[2.0,1e-7,-0.5,1e+22]`, text)

	back, err := codec.DecodeString(text, codec.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []any{2.0, 1e-7, -0.5, 1e22}, layout.ToList(back))
}

func TestStringsAndEscapes(t *testing.T) {
	t.Parallel()

	node, err := codec.DecodeString(`"a\"bé😀\n"`, codec.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []any{"a\"bé😀\n"}, layout.ToList(node))

	text, err := codec.EncodeToString(node, codec.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, `["a\"bé😀\n"]`, text)
}

func TestEncodeOptionsAndTuples(t *testing.T) {
	t.Parallel()

	b := builder.New(builder.DefaultOptions())
	require.NoError(t, b.Extend([]builder.Event{
		builder.BeginTuple(), builder.Index(0), builder.Int(1), builder.Index(1), builder.Null(), builder.EndTuple(),
		builder.BeginTuple(), builder.Index(0), builder.Int(2), builder.Index(1), builder.Str("b"), builder.EndTuple(),
	}))
	node, err := b.Finish()
	require.NoError(t, err)

	text, err := codec.EncodeToString(node, codec.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, `[{"0":1,"1":null},{"0":2,"1":"b"}]`, text)
}

func TestLineDelimitedOutput(t *testing.T) {
	t.Parallel()

	node, err := codec.DecodeString("{\"x\":1.1,\"y\":[]}\n{\"x\":2.2,\"y\":[1]}", codec.DefaultOptions())
	require.NoError(t, err)

	opts := codec.DefaultOptions()
	opts.LineDelimited = true
	var out bytes.Buffer
	require.NoError(t, codec.NewEncoder(&out, opts).Encode(node))
	assert.Equal(t, "{\"x\":1.1,\"y\":[]}\n{\"x\":2.2,\"y\":[1]}", out.String())

	var lines []string
	for line, err := range codec.Lines(node, opts) {
		require.NoError(t, err)
		lines = append(lines, line)
	}
	assert.Equal(t, []string{`{"x":1.1,"y":[]}`, `{"x":2.2,"y":[1]}`}, lines)
}

func TestLineDelimitedRoundTripKeepsSingleList(t *testing.T) {
	t.Parallel()

	opts := codec.DefaultOptions()
	opts.LineDelimited = true

	for _, text := range []string{"[1,2]", "[[1],[]]", "[1,2]\n[3]", "{\"a\":[1]}"} {
		node, err := codec.DecodeString(text, opts)
		require.NoError(t, err, text)

		out, err := codec.EncodeToString(node, opts)
		require.NoError(t, err, text)
		assert.Equal(t, text, out)
	}

	node, err := codec.DecodeString("[1,2]", opts)
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{int64(1), int64(2)}}, layout.ToList(node))

	node, err = codec.DecodeString("[1,2]", codec.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(2)}, layout.ToList(node))
}

func TestSkipInvalidValues(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	opts := codec.DefaultOptions()
	opts.SkipInvalid = true
	opts.Logger = log.New(&logs)

	node, err := codec.DecodeString("1\n{bad}\n3\n[4][5]\n6", opts)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), int64(3), int64(6)}, layout.ToList(node))
	assert.Contains(t, logs.String(), "skipping invalid value")

	_, err = codec.DecodeString("1\n[2,", opts)
	require.ErrorIs(t, err, errs.ErrIncompleteFragment)
}

func TestDecoderIsLazy(t *testing.T) {
	t.Parallel()

	dec := codec.NewDecoder(strings.NewReader(`1 [2] {"a": true}`), codec.DefaultOptions())

	events, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, []builder.Event{builder.Int(1)}, events)
	assert.Equal(t, 2, dec.Offset())

	events, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, []builder.Event{builder.BeginList(), builder.Int(2), builder.EndList()}, events)

	events, err = dec.Next()
	require.NoError(t, err)
	assert.Equal(t, []builder.Event{builder.BeginRecord(), builder.Field("a"), builder.Bool(true), builder.EndRecord()}, events)

	_, err = dec.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	opts := codec.DefaultOptions()
	require.NoError(t, opts.Validate())

	opts.NaN, opts.Infinity = "x", "x"
	require.ErrorIs(t, opts.Validate(), errs.ErrInvalidArgument)

	opts = codec.DefaultOptions()
	opts.Infinity = "1e5"
	require.ErrorIs(t, opts.Validate(), errs.ErrInvalidArgument)

	opts.QuotedSentinels = true
	require.NoError(t, opts.Validate())

	opts = codec.DefaultOptions()
	opts.LineDelimited, opts.Separator = true, ""
	require.ErrorIs(t, opts.Validate(), errs.ErrInvalidArgument)
}
