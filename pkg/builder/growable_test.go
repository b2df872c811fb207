package builder_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/ragged/pkg/builder"
	"github.com/yaklabco/ragged/pkg/errs"
)

func TestGrowableBufferSpansPanels(t *testing.T) {
	t.Parallel()

	g := builder.NewGrowableBuffer[int](builder.Options{Initial: 2, Resize: 2})
	want := make([]int, 100)
	for i := range want {
		want[i] = i
		g.Append(i)
	}

	assert.Equal(t, 100, g.Len())
	assert.Equal(t, 57, g.Get(57))
	assert.Equal(t, 99, g.Last())
	assert.Equal(t, want, g.Snapshot())
}

func TestGrowableBufferCloneIsIndependent(t *testing.T) {
	t.Parallel()

	g := builder.NewGrowableBuffer[string](builder.Options{Initial: 1, Resize: 3})
	g.Append("a")
	c := g.Clone()
	c.Append("b")
	g.Append("z")

	assert.Equal(t, []string{"a", "z"}, g.Snapshot())
	assert.Equal(t, []string{"a", "b"}, c.Snapshot())
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, builder.DefaultOptions().Validate())
	require.ErrorIs(t, builder.Options{Initial: 0, Resize: 8}.Validate(), errs.ErrInvalidArgument)
	require.ErrorIs(t, builder.Options{Initial: 16, Resize: 1}.Validate(), errs.ErrInvalidArgument)
}
