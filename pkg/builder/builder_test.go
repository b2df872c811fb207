package builder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/ragged/pkg/builder"
	"github.com/yaklabco/ragged/pkg/errs"
	"github.com/yaklabco/ragged/pkg/layout"
)

func build(t *testing.T, events ...builder.Event) layout.Node {
	t.Helper()

	b := builder.New(builder.DefaultOptions())
	require.NoError(t, b.Extend(events))
	node, err := b.Finish()
	require.NoError(t, err)

	return node
}

func TestStringAfterIntegersPromotesToUnion(t *testing.T) {
	t.Parallel()

	b := builder.New(builder.DefaultOptions())
	require.NoError(t, b.Integer(1))
	require.NoError(t, b.Integer(2))
	require.NoError(t, b.Str("three"))

	node, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, layout.KindUnion, node.Kind())
	assert.Equal(t, []any{int64(1), int64(2), "three"}, layout.ToList(node))

	form, err := b.Form()
	require.NoError(t, err)
	assert.Equal(t, "union[int64, string]", form.Type())
}

func TestPromotions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		events []builder.Event
		kind   layout.Kind
		want   []any
	}{
		{
			name:   "integers widen to reals",
			events: []builder.Event{builder.Int(1), builder.Real(2.5), builder.Int(3)},
			kind:   layout.KindNumeric,
			want:   []any{1.0, 2.5, 3.0},
		},
		{
			name:   "leading nulls stay missing",
			events: []builder.Event{builder.Null(), builder.Null(), builder.Int(3)},
			kind:   layout.KindIndexedOption,
			want:   []any{nil, nil, int64(3)},
		},
		{
			name:   "null after a value wraps in an option",
			events: []builder.Event{builder.Bool(true), builder.Null(), builder.Bool(false)},
			kind:   layout.KindIndexedOption,
			want:   []any{true, nil, false},
		},
		{
			name:   "null after a union",
			events: []builder.Event{builder.Int(1), builder.Str("a"), builder.Null(), builder.Int(2)},
			kind:   layout.KindIndexedOption,
			want:   []any{int64(1), "a", nil, int64(2)},
		},
		{
			name: "list after a number",
			events: []builder.Event{
				builder.Real(0.5),
				builder.BeginList(), builder.Int(1), builder.EndList(),
			},
			kind: layout.KindUnion,
			want: []any{0.5, []any{int64(1)}},
		},
		{
			name: "real joins an integer alternative",
			events: []builder.Event{
				builder.Int(1), builder.Str("x"), builder.Real(1.5),
			},
			kind: layout.KindUnion,
			want: []any{1.0, "x", 1.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			node := build(t, tt.events...)
			assert.Equal(t, tt.kind, node.Kind())
			assert.Equal(t, tt.want, layout.ToList(node))
			require.NoError(t, layout.Validate(node))
		})
	}
}

func TestNestedUnionInsideLists(t *testing.T) {
	t.Parallel()

	// [[1, "a"], [2]]
	node := build(t,
		builder.BeginList(), builder.Int(1), builder.Str("a"), builder.EndList(),
		builder.BeginList(), builder.Int(2), builder.EndList(),
	)

	list, ok := node.(*layout.ListOffset)
	require.True(t, ok)
	assert.Equal(t, layout.KindUnion, list.Content().Kind())
	assert.Equal(t, []any{[]any{int64(1), "a"}, []any{int64(2)}}, layout.ToList(node))
}

func record(fields ...any) []builder.Event {
	events := []builder.Event{builder.BeginRecord()}
	for i := 0; i < len(fields); i += 2 {
		events = append(events, builder.Field(fields[i].(string)))
		switch v := fields[i+1].(type) {
		case int:
			events = append(events, builder.Int(int64(v)))
		case float64:
			events = append(events, builder.Real(v))
		case string:
			events = append(events, builder.Str(v))
		case []builder.Event:
			events = append(events, v...)
		}
	}
	return append(events, builder.EndRecord())
}

func TestRecords(t *testing.T) {
	t.Parallel()

	events := append(record("x", 1.1, "y", []builder.Event{builder.BeginList(), builder.EndList()}),
		record("x", 2.2, "y", []builder.Event{builder.BeginList(), builder.Int(1), builder.EndList()})...)
	node := build(t, events...)

	rec, ok := node.(*layout.Record)
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, rec.Fields())
	assert.Equal(t, layout.KindNumeric, rec.Field("x").Kind())
	assert.Equal(t, layout.KindListOffset, rec.Field("y").Kind())
	assert.Equal(t, []any{
		map[string]any{"x": 1.1, "y": []any{}},
		map[string]any{"x": 2.2, "y": []any{int64(1)}},
	}, layout.ToList(node))
}

func TestRecordWithMissingFieldGetsNull(t *testing.T) {
	t.Parallel()

	events := append(record("x", 1, "y", 2), record("x", 3)...)
	node := build(t, events...)

	assert.Equal(t, layout.KindRecord, node.Kind())
	assert.Equal(t, []any{
		map[string]any{"x": int64(1), "y": int64(2)},
		map[string]any{"x": int64(3), "y": nil},
	}, layout.ToList(node))
}

func TestRecordWithNewFieldPromotesToUnion(t *testing.T) {
	t.Parallel()

	events := append(record("x", 1), record("z", "two")...)
	events = append(events, record("x", 3)...)
	node := build(t, events...)

	union, ok := node.(*layout.Union)
	require.True(t, ok)
	assert.Equal(t, 2, union.NumContents())
	assert.Equal(t, []any{
		map[string]any{"x": int64(1)},
		map[string]any{"z": "two"},
		map[string]any{"x": int64(3)},
	}, layout.ToList(node))
}

func TestRecordAfterNumbers(t *testing.T) {
	t.Parallel()

	events := append([]builder.Event{builder.Int(5)}, record("a", 1)...)
	node := build(t, events...)

	assert.Equal(t, layout.KindUnion, node.Kind())
	assert.Equal(t, []any{int64(5), map[string]any{"a": int64(1)}}, layout.ToList(node))
}

func TestNestedRecords(t *testing.T) {
	t.Parallel()

	inner := record("b", 1)
	events := record("a", append(append([]builder.Event{builder.BeginList()}, inner...), builder.EndList()))
	node := build(t, events...)

	assert.Equal(t, []any{
		map[string]any{"a": []any{map[string]any{"b": int64(1)}}},
	}, layout.ToList(node))
}

func TestTuples(t *testing.T) {
	t.Parallel()

	node := build(t,
		builder.BeginTuple(),
		builder.Index(1), builder.Str("b"),
		builder.Index(0), builder.Int(1),
		builder.EndTuple(),
	)

	rec, ok := node.(*layout.Record)
	require.True(t, ok)
	assert.True(t, rec.IsTuple())
	assert.Equal(t, []any{[]any{int64(1), "b"}}, layout.ToList(node))
}

func TestUnbalancedEvents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		events []builder.Event
		want   error
	}{
		{"end list at top level", []builder.Event{builder.EndList()}, errs.ErrUnbalancedContainer},
		{"mismatched closer", []builder.Event{builder.BeginList(), builder.EndRecord()}, errs.ErrUnbalancedContainer},
		{"value without field", []builder.Event{builder.BeginRecord(), builder.Int(1)}, errs.ErrUnbalancedContainer},
		{"field outside record", []builder.Event{builder.Field("a")}, errs.ErrUnbalancedContainer},
		{"field without value", []builder.Event{builder.BeginRecord(), builder.Field("a"), builder.EndRecord()}, errs.ErrUnbalancedContainer},
		{"index in record", []builder.Event{builder.BeginRecord(), builder.Index(0)}, errs.ErrUnbalancedContainer},
		{
			"duplicate field",
			[]builder.Event{builder.BeginRecord(), builder.Field("a"), builder.Int(1), builder.Field("a")},
			errs.ErrInvalidArgument,
		},
		{"negative tuple index", []builder.Event{builder.BeginTuple(), builder.Index(-1)}, errs.ErrInvalidArgument},
		{"tuple index past limit", []builder.Event{builder.BeginTuple(), builder.Index(200000)}, errs.ErrInvalidArgument},
		{
			"tuple index at limit",
			[]builder.Event{builder.BeginTuple(), builder.Index(builder.MaxTupleFields)},
			errs.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := builder.New(builder.DefaultOptions())
			err := b.Extend(tt.events)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRejectedEventLeavesBuilderUnchanged(t *testing.T) {
	t.Parallel()

	b := builder.New(builder.DefaultOptions())
	require.NoError(t, b.Integer(1))
	require.NoError(t, b.BeginList())

	require.ErrorIs(t, b.EndRecord(), errs.ErrUnbalancedContainer)
	assert.Equal(t, 1, b.Depth())
	assert.Equal(t, 1, b.Length())

	require.NoError(t, b.EndList())
	node, err := b.Finish()
	require.NoError(t, err)
	assert.Equal(t, []any{int64(1), []any{}}, layout.ToList(node))
}

func TestFinishFailsWithOpenContainers(t *testing.T) {
	t.Parallel()

	b := builder.New(builder.DefaultOptions())
	require.NoError(t, b.BeginList())
	require.NoError(t, b.BeginRecord())

	_, err := b.Finish()
	require.ErrorIs(t, err, errs.ErrUnbalancedContainer)
	assert.Equal(t, 2, b.Depth())
}

func TestSnapshotsAreIndependent(t *testing.T) {
	t.Parallel()

	b := builder.New(builder.DefaultOptions())
	require.NoError(t, b.BeginList())
	require.NoError(t, b.Integer(1))

	first, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{int64(1)}}, layout.ToList(first))
	assert.Equal(t, 0, b.Length())
	assert.Equal(t, 1, b.Depth())

	require.NoError(t, b.Integer(2))
	require.NoError(t, b.EndList())

	second, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{int64(1), int64(2)}}, layout.ToList(second))
	assert.Equal(t, []any{[]any{int64(1)}}, layout.ToList(first))
	assert.Equal(t, 1, b.Length())
}

func TestSnapshotClosesOpenRecord(t *testing.T) {
	t.Parallel()

	b := builder.New(builder.DefaultOptions())
	require.NoError(t, b.BeginRecord())
	require.NoError(t, b.Field("a"))

	node, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"a": nil}}, layout.ToList(node))

	require.NoError(t, b.Integer(4))
	require.NoError(t, b.EndRecord())

	node, err = b.Finish()
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"a": int64(4)}}, layout.ToList(node))
}

func TestEmptyBuilder(t *testing.T) {
	t.Parallel()

	b := builder.New(builder.Options{})
	node, err := b.Finish()
	require.NoError(t, err)
	assert.Equal(t, 0, node.Length())
	assert.Equal(t, 0, b.Depth())
}

func TestEventString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "integer(3)", builder.Int(3).String())
	assert.Equal(t, `field("x")`, builder.Field("x").String())
	assert.Equal(t, "end_list", builder.EndList().String())
}
