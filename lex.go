package ical

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// item represents a token or text string returned from the scanner.
type item struct {
	typ itemType        // The type of this item.
	pos int             // The starting position, in bytes, of this item in the input string.
	val string          // The value of this item.
	err SyntaxErrorKind // The error kind when typ is itemError.
}

func (i item) String() string {
	switch {
	case i.typ == itemEOF:
		return "EOF"
	case i.typ == itemError:
		return i.val
	case len(i.val) > 10:
		return fmt.Sprintf("%.10q...", i.val)
	}
	return fmt.Sprintf("%q", i.val)
}

// itemType identifies the type of lex items.
type itemType int

const (
	// Special tokens
	itemError itemType = iota
	itemEOF
	itemLineEnd

	// Literals
	itemName
	itemParamName
	itemParamValue
	itemValue

	// Misc
	itemColon     // :
	itemSemiColon // ;
	itemEqual     // =
	itemComma     // ,
)

const eof = -1

// stateFn represents the state of the scanner as a function that returns the next state.
type stateFn func(*lexer) stateFn

// lexer holds the state of the scanner. The input is the unfolded
// document, logical lines joined by CRLF.
type lexer struct {
	input   string    // the string being scanned
	state   stateFn   // the next lexing function to enter
	start   int       // start position of this item
	pos     int       // current position in the input
	width   int       // width of last rune read from input
	lastPos int       // position of most recent item returned by nextItem
	items   chan item // channel of scanned items
}

// lex creates a new scanner for the input string.
func lex(input string) *lexer {
	l := &lexer{
		input: input,
		items: make(chan item),
	}
	go l.run() // Concurrently run state machine.
	return l
}

// run runs the state machine for the lexer.
func (l *lexer) run() {
	for l.state = lexName; l.state != nil; {
		l.state = l.state(l)
	}
	close(l.items) // No more tokens will be delivered.
}

// emit passes an item back to the client.
func (l *lexer) emit(t itemType) {
	l.items <- item{typ: t, pos: l.start, val: l.input[l.start:l.pos]}
	l.start = l.pos
}

// ignore skips over the pending input before this point.
func (l *lexer) ignore() {
	l.start = l.pos
}

// next returns the next rune in the input.
func (l *lexer) next() rune {
	if int(l.pos) >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += l.width
	return r
}

// peek returns but does not consume the next rune in the input.
func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// backup steps back one rune. Can only be called once per call of next.
func (l *lexer) backup() {
	l.pos -= l.width
}

// errorf returns an error token and terminates the scan by passing
// back a nil pointer that will be the next state, terminating l.nextItem.
func (l *lexer) errorf(kind SyntaxErrorKind, format string, args ...interface{}) stateFn {
	l.items <- item{typ: itemError, pos: l.start, val: fmt.Sprintf(format, args...), err: kind}
	return nil
}

// nextItem returns the next item from the input.
// Called by the parser, not in the lexing goroutine.
func (l *lexer) nextItem() item {
	item := <-l.items
	l.lastPos = item.pos
	return item
}

// drain empties the item channel so the lexing goroutine can exit.
// Called by the parser when it aborts before reaching EOF.
func (l *lexer) drain() {
	for range l.items {
	}
}

// State functions

// lexContentLine dispatches after a name or a parameter has been scanned.
func lexContentLine(l *lexer) stateFn {
	switch r := l.next(); {
	case r == ';':
		l.emit(itemSemiColon)
		return lexParamName
	case r == ':':
		l.emit(itemColon)
		return lexValue
	case r == ',':
		l.emit(itemComma)
		return lexParamValue
	case r == '\r' || r == eof:
		l.backup()
		return l.errorf(MissingColon, "reached end of line before \":\"")
	default:
		return l.errorf(BadParameterSyntax, "unrecognized character in content line: %#U", r)
	}
}

// lexNewLine scans CRLF
func lexNewLine(l *lexer) stateFn {
	if l.peek() == eof {
		l.emit(itemEOF)
		return nil
	}

	if !strings.HasPrefix(l.input[l.pos:], crlf) {
		return l.errorf(UnterminatedLine, "unable to find end of line \"CRLF\"")
	}

	l.pos += len(crlf)
	l.emit(itemLineEnd)

	if l.next() == eof {
		l.emit(itemEOF)
		return nil
	}

	l.backup()

	return lexName
}

// lexName scans the name in the content line
//
// name       = iana-token / x-name
// iana-token = 1*(ALPHA / DIGIT / "-") ; iCalendar identifier registered with IANA
// x-name     = "X-" [vendorid "-"] 1*(ALPHA / DIGIT / "-") ; Reserved for experimental use.
// vendorid   = 3*(ALPHA / DIGIT) ; Vendor identification
func lexName(l *lexer) stateFn {
Loop:
	for {
		switch r := l.next(); {
		case isName(r):
			// absorb
		default:
			l.backup()
			if l.pos == l.start {
				return l.errorf(EmptyName, "content line starts without a name")
			}
			l.emit(itemName)
			break Loop
		}
	}
	return lexContentLine
}

// lexParamName scans the param-name in the content line
//
// param-name = iana-token / x-name
func lexParamName(l *lexer) stateFn {
Loop:
	for {
		switch r := l.next(); {
		case isName(r):
			// absorb
		default:
			l.backup()
			if l.pos == l.start {
				return l.errorf(BadParameterSyntax, "parameter without a name")
			}
			l.emit(itemParamName)
			break Loop
		}
	}

	r := l.next()

	if r == '=' {
		l.emit(itemEqual)
		return lexParamValue
	}
	return l.errorf(BadParameterSyntax, "missing \"=\" sign after param name, got %#U", r)
}

// lexParamValue scans the param-value in the content line
//
// param-value   = paramtext / quoted-string
// paramtext     = *SAFE-CHAR
// quoted-string = DQUOTE *QSAFE-CHAR DQUOTE
// QSAFE-CHAR    = WSP / %x21 / %x23-7E / NON-US-ASCII ; Any character except CONTROL and DQUOTE
// SAFE-CHAR     = WSP / %x21 / %x23-2B / %x2D-39 / %x3C-7E / NON-US-ASCII ; Any character except CONTROL, DQUOTE, ";", ":", ","
func lexParamValue(l *lexer) stateFn {
	r := l.next()

	if r == '"' {
		l.ignore()
	QLoop:
		for {
			switch r := l.next(); {
			case r == eof || r == '\r':
				l.backup()
				return l.errorf(UnterminatedQuote, "missing \" for closing value")
			case isQSafeChar(r):
				// absorb
			default:
				l.backup()
				l.emit(itemParamValue)
				break QLoop
			}
		}

		r := l.next()

		if r != '"' {
			return l.errorf(UnterminatedQuote, "missing \" for closing value")
		}
		l.ignore()
	} else {
		l.backup()
	Loop:
		for {
			switch r := l.next(); {
			case isSafeChar(r):
				// absorb
			default:
				l.backup()
				l.emit(itemParamValue)
				break Loop
			}
		}
	}

	return lexContentLine
}

// lexValue scans the value in the content line
//
// value      = *VALUE-CHAR
// VALUE-CHAR = WSP / %x21-7E / NON-US-ASCII ; Any textual character
func lexValue(l *lexer) stateFn {
Loop:
	for {
		switch r := l.next(); {
		case r == '\t' || unicode.IsGraphic(r):
			// absorb
		default:
			l.backup()
			l.emit(itemValue)
			break Loop
		}
	}

	return lexNewLine
}

// rune helpers

func isName(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-'
}

func isQSafeChar(r rune) bool {
	return !unicode.IsControl(r) && r != '"'
}

func isSafeChar(r rune) bool {
	return !unicode.IsControl(r) && r != '"' && r != ';' && r != ':' && r != ','
}
