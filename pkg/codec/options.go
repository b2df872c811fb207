package codec

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/ragged/pkg/builder"
	"github.com/yaklabco/ragged/pkg/errs"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures decoding and encoding.
type Options struct {
	// NaN, Infinity and NegInfinity are the tokens that stand for the
	// non-finite floats. An empty token disables that substitution: the
	// decoder then rejects the bare word and the encoder fails on the value.
	NaN         string
	Infinity    string
	NegInfinity string

	// QuotedSentinels writes the tokens as quoted strings and matches them
	// against quoted strings on input. When false they are bare words and a
	// quoted string equal to a token stays a string.
	QuotedSentinels bool

	// LineDelimited makes the encoder write one value per outer element
	// joined by Separator instead of a single enclosing list. The decoder
	// then reads every top-level value as one element, so a lone list is
	// not unwrapped.
	LineDelimited bool

	// Separator joins values in line-delimited output.
	Separator string

	// SkipInvalid drops a malformed top-level value and resumes at the next
	// line instead of failing. Text that ends inside a value still fails.
	SkipInvalid bool

	// Logger receives a warning for every skipped value. Nil discards them.
	Logger *log.Logger

	// Builder sizes the buffers of the decoder's builder.
	Builder builder.Options
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Separator: "\n",
		Builder:   builder.DefaultOptions(),
	}
}

// Validate reports tokens that would make the output ambiguous.
func (o Options) Validate() error {
	tokens := map[string]string{}
	for name, tok := range map[string]string{"nan": o.NaN, "infinity": o.Infinity, "neg_infinity": o.NegInfinity} {
		if tok == "" {
			continue
		}
		if other, ok := tokens[tok]; ok {
			return errs.Invalid("codec", fmt.Sprintf("%s and %s share the token %q", other, name, tok))
		}
		tokens[tok] = name
		if !o.QuotedSentinels {
			if _, reserved := literals[tok]; reserved || !isWord(tok) || numberPattern.MatchString(tok) {
				return errs.Invalid("codec", fmt.Sprintf("%s token %q is not a distinct bare word", name, tok))
			}
		}
	}
	if o.LineDelimited && o.Separator == "" {
		return errs.Invalid("codec", "line-delimited output needs a separator")
	}
	return nil
}

// sentinel returns the float a token stands for.
func (o Options) sentinel(tok string) (float64, bool) {
	switch {
	case tok == "":
		return 0, false
	case tok == o.NaN:
		return nan, true
	case tok == o.Infinity:
		return posInf, true
	case tok == o.NegInfinity:
		return negInf, true
	default:
		return 0, false
	}
}
