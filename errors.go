package ical

import "fmt"

// SyntaxErrorKind classifies tokenizer and unfolder failures.
type SyntaxErrorKind int

const (
	UnterminatedLine SyntaxErrorKind = iota
	UnterminatedQuote
	MissingColon
	BadParameterSyntax
	EmptyName
)

func (k SyntaxErrorKind) String() string {
	switch k {
	case UnterminatedLine:
		return "unterminated line"
	case UnterminatedQuote:
		return "unterminated quote"
	case MissingColon:
		return "missing colon"
	case BadParameterSyntax:
		return "bad parameter syntax"
	case EmptyName:
		return "empty name"
	}
	return "syntax error"
}

// A SyntaxError reports a malformed physical or content line. Line is the
// 1-based physical line number, Offset the byte offset inside the logical
// line.
type SyntaxError struct {
	Kind   SyntaxErrorKind
	Line   int
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("ical: line %d: %s", e.Line, e.Kind)
	}
	return fmt.Sprintf("ical: line %d: %s: %s", e.Line, e.Kind, e.Msg)
}

// StructuralErrorKind classifies assembler failures.
type StructuralErrorKind int

const (
	UnmatchedEnd StructuralErrorKind = iota
	MisplacedAlarm
	MisplacedComponent
	UnterminatedComponent
	DuplicateRequiredProperty
	MissingBegin
)

func (k StructuralErrorKind) String() string {
	switch k {
	case UnmatchedEnd:
		return "unmatched END"
	case MisplacedAlarm:
		return "VALARM outside VEVENT or VTODO"
	case MisplacedComponent:
		return "component not allowed here"
	case UnterminatedComponent:
		return "unterminated component"
	case DuplicateRequiredProperty:
		return "duplicate unique property"
	case MissingBegin:
		return "content outside BEGIN:VCALENDAR"
	}
	return "structural error"
}

// A StructuralError reports an illegal component structure: mismatched
// BEGIN/END pairs, misplaced nesting or an input that ends with a
// component still open.
type StructuralError struct {
	Kind StructuralErrorKind
	Line int
	Name string
}

func (e *StructuralError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("ical: line %d: %s", e.Line, e.Kind)
	}
	return fmt.Sprintf("ical: line %d: %s: %q", e.Line, e.Kind, e.Name)
}

// A ValueError reports a property value that does not conform to its
// expected type.
type ValueError struct {
	Expected ValueKind
	Raw      string
	Line     int
	Reason   string
}

func (e *ValueError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("ical: line %d: bad %s value %q", e.Line, e.Expected, e.Raw)
	}
	return fmt.Sprintf("ical: line %d: bad %s value %q: %s", e.Line, e.Expected, e.Raw, e.Reason)
}

// Severity grades validation findings.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// ValidationKind classifies validator findings.
type ValidationKind int

const (
	Missing ValidationKind = iota
	Duplicate
	Conflict
	UnknownExtension
)

func (k ValidationKind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Duplicate:
		return "duplicate"
	case Conflict:
		return "conflict"
	case UnknownExtension:
		return "unknown extension"
	}
	return "invalid"
}

// A ValidationError is one finding of the non-fatal validation pass.
// Warnings flag unrecognized extensions and vocabulary deviations and do
// not make a calendar structurally unsound.
type ValidationError struct {
	Severity  Severity
	Kind      ValidationKind
	Component string
	Property  string
	Message   string
}

func (e *ValidationError) Error() string {
	s := fmt.Sprintf("ical: %s: %s", e.Severity, e.Kind)
	if e.Component != "" {
		s += ": " + e.Component
	}
	if e.Property != "" {
		s += ": " + e.Property
	}
	if e.Message != "" {
		s += ": " + e.Message
	}
	return s
}
