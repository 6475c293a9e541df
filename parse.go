package ical

import (
	"io"
	"sort"
	"strings"
)

// document is the unfolded input: the logical lines joined by CRLF plus
// the mapping from byte positions back to physical line numbers.
type document struct {
	input  string
	starts []int // byte offset of each logical line in input
	lines  []int // physical line number of each logical line
}

func newDocument(lines []contentLine) *document {
	doc := &document{}
	var b strings.Builder
	for _, cl := range lines {
		doc.starts = append(doc.starts, b.Len())
		doc.lines = append(doc.lines, cl.line)
		b.WriteString(cl.text)
		b.WriteString(crlf)
	}
	doc.input = b.String()
	return doc
}

// lineAt returns the physical line number of the logical line containing
// the byte position, along with the offset inside that logical line.
func (d *document) lineAt(pos int) (line, offset int) {
	if len(d.starts) == 0 {
		return 1, 0
	}
	i := sort.Search(len(d.starts), func(i int) bool { return d.starts[i] > pos }) - 1
	if i < 0 {
		i = 0
	}
	return d.lines[i], pos - d.starts[i]
}

type parser struct {
	lex       *lexer
	token     [2]item
	peekCount int
	doc       *document
	cal       *Calendar
	stack     []*Component
	inCal     bool
	done      bool
}

// Parse transforms raw iCalendar text into a Calendar tree. It accepts
// CRLF and bare LF terminators and stops at the first syntax, value or
// structural error. It's up to the caller to close the io.Reader.
func Parse(r io.Reader) (*Calendar, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseText(string(raw))
}

// ParseText is Parse for callers that already hold the text in memory.
func ParseText(text string) (*Calendar, error) {
	lines, err := unfold(text)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, &StructuralError{Kind: MissingBegin, Line: 1}
	}

	p := &parser{
		doc: newDocument(lines),
		cal: &Calendar{},
	}
	p.lex = lex(p.doc.input)
	defer p.lex.drain()

	if err := p.parse(); err != nil {
		return nil, err
	}

	p.promoteCalendarProps()
	return p.cal, nil
}

// next returns the next token.
func (p *parser) next() item {
	if p.peekCount > 0 {
		p.peekCount--
	} else {
		p.token[0] = p.lex.nextItem()
	}
	return p.token[p.peekCount]
}

// backup backs the input stream up one token.
func (p *parser) backup() {
	p.peekCount++
}

// errorAt converts a lexer error item into a SyntaxError with the
// physical position attached.
func (p *parser) errorAt(it item) error {
	line, offset := p.doc.lineAt(it.pos)
	return &SyntaxError{Kind: it.err, Line: line, Offset: offset, Msg: it.val}
}

// lineOf returns the physical line number of a token.
func (p *parser) lineOf(it item) int {
	line, _ := p.doc.lineAt(it.pos)
	return line
}

// syntaxError reports an unexpected token in the content-line grammar,
// passing lexer errors through with their own kind.
func (p *parser) syntaxError(kind SyntaxErrorKind, it item, msg string) error {
	if it.typ == itemError {
		return p.errorAt(it)
	}
	line, offset := p.doc.lineAt(it.pos)
	return &SyntaxError{Kind: kind, Line: line, Offset: offset, Msg: msg}
}

func (p *parser) parse() error {
	for {
		if err := p.scanContentLine(); err != nil {
			return err
		}

		if p.done {
			return nil
		}
	}
}

// current returns the innermost open component, or nil at calendar
// level.
func (p *parser) current() *Component {
	if len(p.stack) == 0 {
		return nil
	}
	return p.stack[len(p.stack)-1]
}

// scanContentLine parses one content line and feeds it to the component
// stack.
func (p *parser) scanContentLine() error {
	name := p.next()

	switch name.typ {
	case itemEOF:
		return p.atEOF(name)
	case itemName:
	default:
		return p.syntaxError(EmptyName, name, "expected a \"name\" token")
	}

	prop := &Property{Name: strings.ToUpper(name.val)}

	if err := p.scanParams(prop); err != nil {
		return err
	}

	if it := p.next(); it.typ != itemColon {
		return p.syntaxError(MissingColon, it, "expected \":\"")
	}

	value := p.next()

	if value.typ != itemValue {
		return p.syntaxError(MissingColon, value, "expected a value")
	}

	if it := p.next(); it.typ != itemLineEnd {
		return p.syntaxError(BadParameterSyntax, it, "expected CRLF")
	}

	switch prop.Name {
	case "BEGIN":
		return p.beginComponent(value)
	case "END":
		return p.endComponent(value)
	}
	return p.appendProperty(prop, value)
}

// atEOF decides whether end of input is legal in the current state.
func (p *parser) atEOF(it item) error {
	if len(p.stack) > 0 {
		return &StructuralError{
			Kind: UnterminatedComponent,
			Line: p.lineOf(it),
			Name: p.current().Name,
		}
	}
	if p.inCal {
		return &StructuralError{Kind: UnterminatedComponent, Line: p.lineOf(it), Name: "VCALENDAR"}
	}
	return &StructuralError{Kind: MissingBegin, Line: p.lineOf(it)}
}

// beginComponent pushes a new frame after checking the nesting rules.
func (p *parser) beginComponent(value item) error {
	name := strings.ToUpper(value.val)
	kind := componentKind(name)
	line := p.lineOf(value)

	if !p.inCal {
		if kind != KindCalendar {
			return &StructuralError{Kind: MissingBegin, Line: line, Name: name}
		}
		p.inCal = true
		return nil
	}

	parent := p.current()

	switch kind {
	case KindCalendar:
		return &StructuralError{Kind: MisplacedComponent, Line: line, Name: name}
	case KindAlarm:
		if parent == nil || (parent.Kind != KindEvent && parent.Kind != KindTodo) {
			return &StructuralError{Kind: MisplacedAlarm, Line: line, Name: name}
		}
	case KindStandard, KindDaylight:
		if parent == nil || parent.Kind != KindTimezone {
			return &StructuralError{Kind: MisplacedComponent, Line: line, Name: name}
		}
	case KindUnknown:
		// extension components nest anywhere
	default:
		if parent != nil {
			return &StructuralError{Kind: MisplacedComponent, Line: line, Name: name}
		}
	}

	p.stack = append(p.stack, &Component{Kind: kind, Name: name})
	return nil
}

// endComponent pops the current frame into its parent.
func (p *parser) endComponent(value item) error {
	name := strings.ToUpper(value.val)
	line := p.lineOf(value)

	if name == "VCALENDAR" {
		if len(p.stack) > 0 {
			return &StructuralError{Kind: UnmatchedEnd, Line: line, Name: name}
		}
		if !p.inCal {
			return &StructuralError{Kind: MissingBegin, Line: line, Name: name}
		}
		p.inCal = false
		p.done = true
		return nil
	}

	frame := p.current()
	if frame == nil || frame.Name != name {
		return &StructuralError{Kind: UnmatchedEnd, Line: line, Name: name}
	}

	p.stack = p.stack[:len(p.stack)-1]
	if parent := p.current(); parent != nil {
		parent.Children = append(parent.Children, frame)
	} else {
		p.cal.Components = append(p.cal.Components, frame)
	}
	return nil
}

// appendProperty resolves the schema rule for the property, parses its
// value and stores it on the open frame.
func (p *parser) appendProperty(prop *Property, value item) error {
	if !p.inCal {
		return &StructuralError{Kind: MissingBegin, Line: p.lineOf(value), Name: prop.Name}
	}

	frame := p.current()
	kind := KindCalendar
	if frame != nil {
		kind = frame.Kind
	}

	rule, _ := lookupRule(kind, prop.Name)
	parsed, err := parseValue(resolveValueKind(rule, prop), value.val, prop, p.lineOf(value))
	if err != nil {
		return err
	}
	prop.Value = parsed

	// The full cardinality sweep belongs to Validate. A repeated VERSION
	// or PRODID is caught here already: a reader cannot continue past a
	// second claim about the document's format.
	if frame == nil && (prop.Name == "VERSION" || prop.Name == "PRODID") {
		for _, existing := range p.cal.Properties {
			if existing.Name == prop.Name {
				return &StructuralError{
					Kind: DuplicateRequiredProperty,
					Line: p.lineOf(value),
					Name: prop.Name,
				}
			}
		}
	}

	if frame != nil {
		frame.Properties = append(frame.Properties, prop)
	} else {
		p.cal.Properties = append(p.cal.Properties, prop)
	}
	return nil
}

// scanParams parses a list of param inside a content-line
func (p *parser) scanParams(prop *Property) error {
	for {
		it := p.next()

		if it.typ != itemSemiColon {
			p.backup()
			return nil
		}

		paramName := p.next()

		if paramName.typ != itemParamName {
			return p.syntaxError(BadParameterSyntax, paramName, "expected a param-name")
		}

		param := &Param{Name: strings.ToUpper(paramName.val)}

		if it := p.next(); it.typ != itemEqual {
			return p.syntaxError(BadParameterSyntax, it, "expected =")
		}

		if err := p.scanValues(param); err != nil {
			return err
		}

		prop.Params = append(prop.Params, param)
	}
}

// scanValues parses a list of at least one value for a param
func (p *parser) scanValues(param *Param) error {
	paramValue := p.next()

	if paramValue.typ != itemParamValue {
		return p.syntaxError(BadParameterSyntax, paramValue, "expected a param-value")
	}

	param.Values = append(param.Values, paramValue.val)

	for {
		it := p.next()

		if it.typ != itemComma {
			p.backup()
			return nil
		}

		paramValue := p.next()

		if paramValue.typ != itemParamValue {
			return p.syntaxError(BadParameterSyntax, paramValue, "expected a param-value")
		}

		param.Values = append(param.Values, paramValue.val)
	}
}

// promoteCalendarProps mirrors the calendar-level properties into the
// Calendar struct fields. Missing required properties are left for
// Validate to report.
func (p *parser) promoteCalendarProps() {
	for _, prop := range p.cal.Properties {
		text, ok := prop.Value.(Text)
		if !ok {
			continue
		}

		switch prop.Name {
		case "PRODID":
			p.cal.ProdID = string(text)
		case "VERSION":
			p.cal.Version = string(text)
		case "CALSCALE":
			p.cal.Calscale = string(text)
		case "METHOD":
			p.cal.Method = string(text)
		}
	}
}
