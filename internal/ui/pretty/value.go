package pretty

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ellipsis marks truncated output.
const ellipsis = "..."

// Printer renders the lines of the show command.
type Printer struct {
	styles *Styles
	width  int
}

// NewPrinter returns a printer that keeps lines within width columns.
// A width below one disables truncation.
func NewPrinter(styles *Styles, width int) *Printer {
	return &Printer{styles: styles, width: width}
}

// Header renders the type line: the outer length and element type.
func (p *Printer) Header(length int, elementType string) string {
	return p.styles.Count.Render(strconv.Itoa(length)) + p.styles.Dim.Render(" * ") +
		p.styles.Type.Render(elementType)
}

// Line renders element i from its encoded text.
func (p *Printer) Line(i int, text string) string {
	prefix := fmt.Sprintf("[%d] ", i)
	if p.width > 0 {
		text = truncateString(text, p.width-utf8.RuneCountInString(prefix))
	}
	return p.styles.Dim.Render(prefix) + p.styles.Highlight(text)
}

// More renders the marker for elements left out.
func (p *Printer) More(n int) string {
	return p.styles.Dim.Render(fmt.Sprintf("%s %d more", ellipsis, n))
}

// Highlight styles encoded value text token by token. Text cut short by
// truncation is styled as far as it goes.
func (s *Styles) Highlight(text string) string {
	var sb strings.Builder
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '"':
			end := stringEnd(text, i)
			style := s.String
			if isKey(text, end) {
				style = s.Field
			}
			sb.WriteString(style.Render(text[i:end]))
			i = end
		case strings.IndexByte("[]{},:", c) >= 0:
			sb.WriteString(s.Punct.Render(text[i : i+1]))
			i++
		case c == ' ' || c == '\t':
			sb.WriteByte(c)
			i++
		default:
			end := i
			for end < len(text) && strings.IndexByte("[]{},: \t\"", text[end]) < 0 {
				end++
			}
			sb.WriteString(s.word(text[i:end]))
			i = end
		}
	}
	return sb.String()
}

func (s *Styles) word(w string) string {
	switch w {
	case "true", "false":
		return s.Bool.Render(w)
	case "null":
		return s.Null.Render(w)
	case ellipsis:
		return s.Dim.Render(w)
	default:
		return s.Number.Render(w)
	}
}

// stringEnd returns the index just past the string literal starting at i.
func stringEnd(text string, i int) int {
	for j := i + 1; j < len(text); j++ {
		switch text[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(text)
}

// isKey reports whether a colon follows position i.
func isKey(text string, i int) bool {
	rest := strings.TrimLeft(text[i:], " \t")
	return strings.HasPrefix(rest, ":")
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(str string, maxLen int) string {
	if utf8.RuneCountInString(str) <= maxLen {
		return str
	}
	runes := []rune(str)
	if maxLen <= len(ellipsis) {
		return string(runes[:max(maxLen, 0)])
	}
	return string(runes[:maxLen-len(ellipsis)]) + ellipsis
}
