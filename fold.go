package ical

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

const (
	crlf = "\r\n"

	// foldWidth is the maximum octet length of an emitted physical line,
	// excluding the line terminator.
	foldWidth = 75
)

// A contentLine is one logical line together with the physical line
// number it started on.
type contentLine struct {
	text string
	line int
}

// unfold converts the physical-line representation into logical lines. A
// physical line starting with a space or horizontal tab continues the
// previous logical line with its first character stripped. Both CRLF and
// bare LF terminators are accepted. Blank physical lines are skipped.
func unfold(text string) ([]contentLine, error) {
	var out []contentLine
	physical := strings.Split(text, "\n")

	for i, raw := range physical {
		line := strings.TrimSuffix(raw, "\r")
		if line == "" {
			continue
		}

		if line[0] == ' ' || line[0] == '\t' {
			if len(out) == 0 {
				return nil, &SyntaxError{
					Kind: UnterminatedLine,
					Line: i + 1,
					Msg:  "continuation line without a preceding line",
				}
			}
			out[len(out)-1].text += line[1:]
			continue
		}

		out = append(out, contentLine{text: line, line: i + 1})
	}

	return out, nil
}

// fold splits a logical line into physical lines of at most foldWidth
// octets each, the continuation lines prefixed with a single space. The
// split point is the last whole rune that fits; a multi-byte character is
// never cut.
func fold(line string) []string {
	if len(line) <= foldWidth {
		return []string{line}
	}

	var out []string
	limit := foldWidth

	for len(line) > limit {
		i := limit
		for i > 0 && !utf8.RuneStart(line[i]) {
			i--
		}
		out = append(out, line[:i])
		line = " " + line[i:]
		// the continuation space counts against the width
	}
	out = append(out, line)

	return out
}

// writeFolded appends the folded physical form of a logical line,
// CRLF-terminated, to b.
func writeFolded(b *bytes.Buffer, line string) {
	for _, physical := range fold(line) {
		b.WriteString(physical)
		b.WriteString(crlf)
	}
}
