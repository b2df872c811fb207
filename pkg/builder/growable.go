package builder

import (
	"fmt"

	"github.com/yaklabco/ragged/pkg/errs"
)

// Options configures the growable buffers behind an ArrayBuilder.
type Options struct {
	// Initial is the capacity of the first panel of every buffer.
	Initial int

	// Resize is the growth factor applied to each new panel.
	Resize float64
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Initial: 1024,
		Resize:  8,
	}
}

// Validate reports options outside their domain.
func (o Options) Validate() error {
	if o.Initial < 1 {
		return errs.Invalid("builder", fmt.Sprintf("initial must be at least 1, got %d", o.Initial))
	}
	if o.Resize <= 1 {
		return errs.Invalid("builder", fmt.Sprintf("resize must be greater than 1, got %g", o.Resize))
	}
	return nil
}

// GrowableBuffer is an append-only sequence stored in panels. Appending
// never moves existing elements: a full panel stays in place and a new,
// larger one is started.
type GrowableBuffer[T any] struct {
	panels [][]T
	length int
	resize float64
}

// NewGrowableBuffer returns an empty buffer whose first panel holds
// opts.Initial elements.
func NewGrowableBuffer[T any](opts Options) *GrowableBuffer[T] {
	return &GrowableBuffer[T]{
		panels: [][]T{make([]T, 0, max(opts.Initial, 1))},
		resize: max(opts.Resize, 1.5),
	}
}

// Len returns the number of elements.
func (g *GrowableBuffer[T]) Len() int { return g.length }

// Append adds v at the end.
func (g *GrowableBuffer[T]) Append(v T) {
	last := &g.panels[len(g.panels)-1]
	if len(*last) == cap(*last) {
		next := int(float64(cap(*last))*g.resize) + 1
		g.panels = append(g.panels, make([]T, 0, next))
		last = &g.panels[len(g.panels)-1]
	}
	*last = append(*last, v)
	g.length++
}

// Get returns element i.
func (g *GrowableBuffer[T]) Get(i int) T {
	for _, p := range g.panels {
		if i < len(p) {
			return p[i]
		}
		i -= len(p)
	}
	panic(fmt.Sprintf("builder: index %d out of range", i))
}

// Last returns the final element; the buffer must not be empty.
func (g *GrowableBuffer[T]) Last() T {
	p := g.panels[len(g.panels)-1]
	if len(p) == 0 {
		return g.Get(g.length - 1)
	}
	return p[len(p)-1]
}

// Snapshot concatenates the panels into a new slice.
func (g *GrowableBuffer[T]) Snapshot() []T {
	out := make([]T, 0, g.length)
	for _, p := range g.panels {
		out = append(out, p...)
	}
	return out
}

// Clone returns an independent copy.
func (g *GrowableBuffer[T]) Clone() *GrowableBuffer[T] {
	panels := make([][]T, len(g.panels))
	for i, p := range g.panels {
		panels[i] = append(make([]T, 0, cap(p)), p...)
	}
	return &GrowableBuffer[T]{panels: panels, length: g.length, resize: g.resize}
}

// filled returns a buffer holding n copies of v.
func filled[T any](opts Options, v T, n int) *GrowableBuffer[T] {
	g := NewGrowableBuffer[T](opts)
	for range n {
		g.Append(v)
	}
	return g
}

// counting returns a buffer holding 0, 1, ..., n-1.
func counting(opts Options, n int) *GrowableBuffer[int64] {
	g := NewGrowableBuffer[int64](opts)
	for i := range n {
		g.Append(int64(i))
	}
	return g
}
