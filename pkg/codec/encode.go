package codec

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/yaklabco/ragged/pkg/buffer"
	"github.com/yaklabco/ragged/pkg/errs"
	"github.com/yaklabco/ragged/pkg/layout"
)

// Encoder writes layout trees as text.
type Encoder struct {
	w    io.Writer
	opts Options
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer, opts Options) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes every element of n, either inside one enclosing list or,
// with LineDelimited, as separate values joined by the separator.
func (e *Encoder) Encode(n layout.Node) error {
	if err := e.opts.Validate(); err != nil {
		return err
	}
	bw := bufio.NewWriterSize(e.w, bufWriterSize)

	open, sep, closing := "[", ",", "]"
	if e.opts.LineDelimited {
		open, sep, closing = "", e.opts.Separator, ""
	}

	_, _ = bw.WriteString(open)
	var buf []byte
	for i := range n.Length() {
		if i > 0 {
			_, _ = bw.WriteString(sep)
		}
		var err error
		if buf, err = AppendValue(buf[:0], n, i, e.opts); err != nil {
			return fmt.Errorf("encode element %d: %w", i, err)
		}
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	_, _ = bw.WriteString(closing)

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// EncodeToString is Encode into a string.
func EncodeToString(n layout.Node, opts Options) (string, error) {
	var sb strings.Builder
	if err := NewEncoder(&sb, opts).Encode(n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Lines yields the text of each element of n in order. Iteration stops
// after the first error.
func Lines(n layout.Node, opts Options) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if err := opts.Validate(); err != nil {
			yield("", err)
			return
		}
		var buf []byte
		for i := range n.Length() {
			var err error
			buf, err = AppendValue(buf[:0], n, i, opts)
			if err != nil {
				yield("", fmt.Errorf("encode element %d: %w", i, err))
				return
			}
			if !yield(string(buf), nil) {
				return
			}
		}
	}
}

// AppendValue appends the text of element i of n to dst.
func AppendValue(dst []byte, n layout.Node, i int, opts Options) ([]byte, error) {
	switch v := n.(type) {
	case *layout.Numeric:
		if v.Data().NDim() > 1 {
			return AppendValue(dst, v.ToRegular(), i, opts)
		}
		return appendScalar(dst, v.Data(), i, opts)
	case *layout.Regular, *layout.ListOffset, *layout.List:
		start, stop, content := bounds(n, i)
		if layout.IsString(n) || n.Parameters().Get(layout.ParamArray) == layout.ArrayBytestring {
			return appendChars(dst, content, start, stop)
		}
		dst = append(dst, '[')
		for j := start; j < stop; j++ {
			if j > start {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = AppendValue(dst, content, int(j), opts); err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	case *layout.Indexed:
		return AppendValue(dst, v.Content(), int(v.Index().Int(i)), opts)
	case *layout.Record:
		return appendRecord(dst, v, i, opts)
	case *layout.Union:
		tag := int(v.Tags().Int(i))
		return AppendValue(dst, v.Alternative(tag), int(v.Index().Int(i)), opts)
	case *layout.IndexedOption:
		j := v.Index().Int(i)
		if j < 0 {
			return append(dst, "null"...), nil
		}
		return AppendValue(dst, v.Content(), int(j), opts)
	case *layout.ByteMasked:
		if !v.IsValid(i) {
			return append(dst, "null"...), nil
		}
		return AppendValue(dst, v.Content(), i, opts)
	case *layout.BitMasked:
		if !v.IsValid(i) {
			return append(dst, "null"...), nil
		}
		return AppendValue(dst, v.Content(), i, opts)
	case *layout.Unmasked:
		return AppendValue(dst, v.Content(), i, opts)
	}
	return nil, errs.New(errs.KindUnrepresentable, "encode", "no text form for "+n.Kind().String())
}

// bounds locates sublist i of a list node in its content.
func bounds(n layout.Node, i int) (start, stop int64, content layout.Node) {
	switch v := n.(type) {
	case *layout.ListOffset:
		return v.Offsets().Int(i), v.Offsets().Int(i + 1), v.Content()
	case *layout.List:
		return v.Starts().Int(i), v.Stops().Int(i), v.Content()
	case *layout.Regular:
		size := int64(v.Size())
		return int64(i) * size, int64(i+1) * size, v.Content()
	default:
		return 0, 0, n
	}
}

func appendRecord(dst []byte, r *layout.Record, i int, opts Options) ([]byte, error) {
	dst = append(dst, '{')
	fields := r.Fields()
	for f, c := range r.Contents() {
		if f > 0 {
			dst = append(dst, ',')
		}
		dst = appendString(dst, fields[f])
		dst = append(dst, ':')
		var err error
		if dst, err = AppendValue(dst, c, i, opts); err != nil {
			return nil, fmt.Errorf("field %s: %w", fields[f], err)
		}
	}
	return append(dst, '}'), nil
}

func appendChars(dst []byte, content layout.Node, start, stop int64) ([]byte, error) {
	chars, ok := content.(*layout.Numeric)
	if !ok {
		return nil, errs.New(errs.KindUnrepresentable, "encode", "string content is not a flat buffer")
	}
	raw := make([]byte, 0, stop-start)
	for j := start; j < stop; j++ {
		raw = append(raw, byte(chars.Data().Int(int(j))))
	}
	return appendString(dst, string(raw)), nil
}

func appendScalar(dst []byte, b *buffer.Buffer, i int, opts Options) ([]byte, error) {
	switch b.DType() {
	case buffer.Bool:
		return strconv.AppendBool(dst, b.IsTrue(i)), nil
	case buffer.Float64:
		return appendFloat(dst, b.Float(i), opts)
	default:
		return strconv.AppendInt(dst, b.Int(i), 10), nil
	}
}

// appendFloat writes x so that it reads back as a real: integral values
// keep a ".0" suffix. Non-finite values use the configured tokens.
func appendFloat(dst []byte, x float64, opts Options) ([]byte, error) {
	var tok string
	switch {
	case math.IsNaN(x):
		tok = opts.NaN
	case math.IsInf(x, 1):
		tok = opts.Infinity
	case math.IsInf(x, -1):
		tok = opts.NegInfinity
	default:
		return appendFinite(dst, x), nil
	}
	if tok == "" {
		return nil, errs.New(errs.KindUnrepresentable, "encode",
			fmt.Sprintf("%v has no token; configure one for non-finite values", x))
	}
	if opts.QuotedSentinels {
		return appendString(dst, tok), nil
	}
	return append(dst, tok...), nil
}

func appendFinite(dst []byte, x float64) []byte {
	format := byte('f')
	if abs := math.Abs(x); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	start := len(dst)
	dst = strconv.AppendFloat(dst, x, format, -1, 64)
	if format == 'e' {
		// clean up e-09 to e-9
		n := len(dst)
		if n-start >= 4 && dst[n-4] == 'e' && dst[n-3] == '-' && dst[n-2] == '0' {
			dst[n-2] = dst[n-1]
			dst = dst[:n-1]
		}
		return dst
	}
	if !strings.ContainsRune(string(dst[start:]), '.') {
		dst = append(dst, ".0"...)
	}
	return dst
}

const hexDigits = "0123456789abcdef"

func appendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	for i := range len(s) {
		c := s[i]
		switch {
		case c == '"' || c == '\\':
			dst = append(dst, '\\', c)
		case c == '\n':
			dst = append(dst, '\\', 'n')
		case c == '\r':
			dst = append(dst, '\\', 'r')
		case c == '\t':
			dst = append(dst, '\\', 't')
		case c < 0x20:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xf])
		default:
			dst = append(dst, c)
		}
	}
	return append(dst, '"')
}
