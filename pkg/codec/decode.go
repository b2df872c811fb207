// Package codec reads and writes layout trees as a stream of JSON-like
// text values.
//
// Input is a sequence of top-level values separated by whitespace or
// newlines; each one becomes an element of the decoded tree. A stream that
// holds a single list is read as that list. Output is either one enclosing
// list or one line per element.
package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/yaklabco/ragged/pkg/builder"
	"github.com/yaklabco/ragged/pkg/errs"
	"github.com/yaklabco/ragged/pkg/layout"
)

var (
	nan    = math.NaN()
	posInf = math.Inf(1)
	negInf = math.Inf(-1)

	numberPattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

	literals = map[string]builder.Event{
		"true":  builder.Bool(true),
		"false": builder.Bool(false),
		"null":  builder.Null(),
	}
)

// Decode reads every top-level value from r into one tree.
func Decode(r io.Reader, opts Options) (layout.Node, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	dec := NewDecoder(r, opts)
	b := builder.New(opts.Builder)

	// The first value is held back: when it turns out to be the only one
	// and it is a list, its elements become the top-level values. A
	// line-delimited stream keeps it as a single value.
	var first []builder.Event
	count := 0
	for events, err := range dec.Values() {
		if err != nil {
			return nil, err
		}
		count++
		if count == 1 {
			first = events
			continue
		}
		if count == 2 {
			if err := b.Extend(first); err != nil {
				return nil, fmt.Errorf("decode value 1: %w", err)
			}
		}
		if err := b.Extend(events); err != nil {
			return nil, fmt.Errorf("decode value %d: %w", count, err)
		}
	}
	if count == 1 {
		if !opts.LineDelimited && first[0].Kind == builder.EventBeginList {
			first = first[1 : len(first)-1]
		}
		if err := b.Extend(first); err != nil {
			return nil, fmt.Errorf("decode value 1: %w", err)
		}
	}
	return b.Finish()
}

// DecodeString is Decode over a string.
func DecodeString(s string, opts Options) (layout.Node, error) {
	return Decode(strings.NewReader(s), opts)
}

// Decoder splits a text stream into the builder events of its top-level
// values. Reading is lazy: nothing past the current value is consumed.
type Decoder struct {
	r      *bufio.Reader
	opts   Options
	offset int
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader, opts Options) *Decoder {
	return &Decoder{r: bufio.NewReader(r), opts: opts}
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int { return d.offset }

// Next returns the events of the next top-level value, or io.EOF when the
// stream holds no more values.
func (d *Decoder) Next() ([]builder.Event, error) {
	for {
		if _, err := d.skipSpace(); err != nil {
			return nil, err
		}
		d.unread()
		start := d.offset

		events, err := d.value(nil)
		if err == nil {
			err = d.separated()
		}
		if err == nil {
			return events, nil
		}
		if !d.opts.SkipInvalid || errs.KindOf(err) == "" || errors.Is(err, errs.ErrIncompleteFragment) {
			return nil, err
		}
		if d.opts.Logger != nil {
			d.opts.Logger.Warn("skipping invalid value", "offset", start, "err", err)
		}
		if err := d.skipLine(); err != nil {
			return nil, err
		}
	}
}

// Values yields the events of each top-level value. Iteration stops after
// the first error.
func (d *Decoder) Values() iter.Seq2[[]builder.Event, error] {
	return func(yield func([]builder.Event, error) bool) {
		for {
			events, err := d.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(events, err) || err != nil {
				return
			}
		}
	}
}

func (d *Decoder) read() (byte, error) {
	c, err := d.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		return 0, fmt.Errorf("read input: %w", err)
	}
	d.offset++
	return c, nil
}

func (d *Decoder) unread() {
	if d.r.UnreadByte() == nil {
		d.offset--
	}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDelimiter(c byte) bool {
	return isSpace(c) || strings.IndexByte(`{}[]:,"`, c) >= 0
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for i := range len(s) {
		if isDelimiter(s[i]) {
			return false
		}
	}
	return true
}

// skipSpace returns the next non-space byte.
func (d *Decoder) skipSpace() (byte, error) {
	for {
		c, err := d.read()
		if err != nil {
			return 0, err
		}
		if !isSpace(c) {
			return c, nil
		}
	}
}

// next is skipSpace inside a value, where the end of input is an error.
func (d *Decoder) next() (byte, error) {
	c, err := d.skipSpace()
	if errors.Is(err, io.EOF) {
		return 0, d.fail(errs.KindIncompleteFragment, "input ends inside a value")
	}
	return c, err
}

// separated checks what follows a complete top-level value.
func (d *Decoder) separated() error {
	c, err := d.read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	if isSpace(c) {
		return nil
	}
	d.unread()
	return d.fail(errs.KindTrailingData, fmt.Sprintf("%q follows a complete value without a separator", c))
}

func (d *Decoder) skipLine() error {
	for {
		c, err := d.read()
		if err != nil {
			return err
		}
		if c == '\n' {
			return nil
		}
	}
}

func (d *Decoder) fail(kind errs.Kind, detail string) error {
	return errs.New(kind, "decode", detail).WithOffset(d.offset)
}

func (d *Decoder) value(events []builder.Event) ([]builder.Event, error) {
	c, err := d.next()
	if err != nil {
		return nil, err
	}
	switch c {
	case '{':
		return d.object(append(events, builder.BeginRecord()))
	case '[':
		return d.array(append(events, builder.BeginList()))
	case '"':
		s, err := d.str()
		if err != nil {
			return nil, err
		}
		if d.opts.QuotedSentinels {
			if x, ok := d.opts.sentinel(s); ok {
				return append(events, builder.Real(x)), nil
			}
		}
		return append(events, builder.Str(s)), nil
	case '}', ']', ',', ':':
		return nil, d.fail(errs.KindSyntax, fmt.Sprintf("unexpected %q", c))
	default:
		d.unread()
		ev, err := d.word()
		if err != nil {
			return nil, err
		}
		return append(events, ev), nil
	}
}

func (d *Decoder) object(events []builder.Event) ([]builder.Event, error) {
	c, err := d.next()
	if err != nil {
		return nil, err
	}
	if c == '}' {
		return append(events, builder.EndRecord()), nil
	}
	seen := map[string]struct{}{}
	for {
		if c != '"' {
			return nil, d.fail(errs.KindSyntax, fmt.Sprintf("expected a field name, found %q", c))
		}
		key, err := d.str()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[key]; dup {
			return nil, d.fail(errs.KindSyntax, fmt.Sprintf("duplicate field %q", key))
		}
		seen[key] = struct{}{}
		if c, err = d.next(); err != nil {
			return nil, err
		}
		if c != ':' {
			return nil, d.fail(errs.KindSyntax, fmt.Sprintf("expected ':' after field %q, found %q", key, c))
		}
		if events, err = d.value(append(events, builder.Field(key))); err != nil {
			return nil, err
		}
		if c, err = d.next(); err != nil {
			return nil, err
		}
		switch c {
		case '}':
			return append(events, builder.EndRecord()), nil
		case ',':
			if c, err = d.next(); err != nil {
				return nil, err
			}
		default:
			return nil, d.fail(errs.KindSyntax, fmt.Sprintf("expected ',' or '}', found %q", c))
		}
	}
}

func (d *Decoder) array(events []builder.Event) ([]builder.Event, error) {
	c, err := d.next()
	if err != nil {
		return nil, err
	}
	if c == ']' {
		return append(events, builder.EndList()), nil
	}
	d.unread()
	for {
		if events, err = d.value(events); err != nil {
			return nil, err
		}
		if c, err = d.next(); err != nil {
			return nil, err
		}
		switch c {
		case ']':
			return append(events, builder.EndList()), nil
		case ',':
		default:
			return nil, d.fail(errs.KindSyntax, fmt.Sprintf("expected ',' or ']', found %q", c))
		}
	}
}

// word reads a bare token: a literal, a number or a sentinel.
func (d *Decoder) word() (builder.Event, error) {
	var sb strings.Builder
	for {
		c, err := d.read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return builder.Event{}, err
		}
		if isDelimiter(c) {
			d.unread()
			break
		}
		sb.WriteByte(c)
	}
	tok := sb.String()

	if ev, ok := literals[tok]; ok {
		return ev, nil
	}
	if !d.opts.QuotedSentinels {
		if x, ok := d.opts.sentinel(tok); ok {
			return builder.Real(x), nil
		}
	}
	if !numberPattern.MatchString(tok) {
		return builder.Event{}, d.fail(errs.KindSyntax, fmt.Sprintf("unexpected token %q", tok))
	}
	if !strings.ContainsAny(tok, ".eE") {
		if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
			return builder.Int(i), nil
		}
	}
	x, err := strconv.ParseFloat(tok, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return builder.Event{}, d.fail(errs.KindSyntax, fmt.Sprintf("malformed number %q", tok))
	}
	return builder.Real(x), nil
}

// str reads a quoted string; the opening quote is already consumed.
func (d *Decoder) str() (string, error) {
	var sb strings.Builder
	for {
		c, err := d.read()
		if errors.Is(err, io.EOF) {
			return "", d.fail(errs.KindIncompleteFragment, "input ends inside a string")
		}
		if err != nil {
			return "", err
		}
		switch {
		case c == '"':
			return sb.String(), nil
		case c == '\\':
			if err := d.escape(&sb); err != nil {
				return "", err
			}
		case c < 0x20:
			return "", d.fail(errs.KindSyntax, fmt.Sprintf("control character %#x in string", c))
		default:
			sb.WriteByte(c)
		}
	}
}

func (d *Decoder) escape(sb *strings.Builder) error {
	c, err := d.read()
	if errors.Is(err, io.EOF) {
		return d.fail(errs.KindIncompleteFragment, "input ends inside a string")
	}
	if err != nil {
		return err
	}
	switch c {
	case '"', '\\', '/':
		sb.WriteByte(c)
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'u':
		r, err := d.hex4()
		if err != nil {
			return err
		}
		if utf16.IsSurrogate(r) {
			r, err = d.lowSurrogate(r)
			if err != nil {
				return err
			}
		}
		sb.WriteRune(r)
	default:
		return d.fail(errs.KindSyntax, fmt.Sprintf("invalid escape \\%c", c))
	}
	return nil
}

// lowSurrogate completes a surrogate pair. A lone high surrogate decodes
// to the replacement character.
func (d *Decoder) lowSurrogate(high rune) (rune, error) {
	if peek, err := d.r.Peek(2); err != nil || string(peek) != `\u` {
		return utf8.RuneError, nil
	}
	d.offset += 2
	_, _ = d.r.Discard(2)
	low, err := d.hex4()
	if err != nil {
		return 0, err
	}
	return utf16.DecodeRune(high, low), nil
}

func (d *Decoder) hex4() (rune, error) {
	var digits [4]byte
	for i := range digits {
		c, err := d.read()
		if errors.Is(err, io.EOF) {
			return 0, d.fail(errs.KindIncompleteFragment, "input ends inside a string")
		}
		if err != nil {
			return 0, err
		}
		digits[i] = c
	}
	v, err := strconv.ParseUint(string(digits[:]), 16, 32)
	if err != nil {
		return 0, d.fail(errs.KindSyntax, fmt.Sprintf("invalid unicode escape \\u%s", digits[:]))
	}
	return rune(v), nil
}
