package ical

import "strings"

// statusVocab lists the legal STATUS values per component kind. A value
// outside the vocabulary is flagged as a warning, not an error, since
// servers in the wild extend it.
var statusVocab = map[ComponentKind][]string{
	KindEvent:   {"TENTATIVE", "CONFIRMED", "CANCELLED"},
	KindTodo:    {"NEEDS-ACTION", "COMPLETED", "IN-PROCESS", "CANCELLED"},
	KindJournal: {"DRAFT", "FINAL", "CANCELLED"},
}

// exclusiveProps lists the property pairs that must not both appear on
// one component.
var exclusiveProps = map[ComponentKind][][2]string{
	KindEvent: {{"DTEND", "DURATION"}},
	KindTodo:  {{"DUE", "DURATION"}},
}

// Validate walks the calendar tree and applies the schema-driven
// structural rules: required properties present, cardinality respected,
// mutually exclusive pairs absent. Every applicable check runs; the
// full list of findings comes back rather than the first one. An empty
// list means the calendar is structurally sound. Extension properties
// and components only ever produce warnings.
func (c *Calendar) Validate() []*ValidationError {
	v := &validator{}

	v.checkProperties("VCALENDAR", KindCalendar, c.Properties)
	for _, comp := range c.Components {
		v.checkComponent(comp)
	}

	return v.found
}

type validator struct {
	found []*ValidationError
}

func (v *validator) report(e *ValidationError) {
	v.found = append(v.found, e)
}

func (v *validator) checkComponent(c *Component) {
	if c.Kind == KindUnknown {
		// one warning for the whole component, its verbatim properties
		// are not individually flagged
		v.report(&ValidationError{
			Severity:  SeverityWarning,
			Kind:      UnknownExtension,
			Component: c.Name,
			Message:   "unrecognized component kind",
		})
	} else {
		v.checkProperties(c.Name, c.Kind, c.Properties)
	}
	v.checkStatus(c)
	v.checkExclusive(c)

	if c.Kind == KindAlarm {
		v.checkAlarmRepeat(c)
	}

	for _, child := range c.Children {
		v.checkComponent(child)
	}
}

func (v *validator) checkProperties(name string, kind ComponentKind, props []*Property) {
	counts := make(map[string]int)
	for _, prop := range props {
		counts[prop.Name]++
	}

	rules := schema[kind]

	for propName, rule := range rules {
		if rule.Card == Required && counts[propName] == 0 {
			v.report(&ValidationError{
				Kind:      Missing,
				Component: name,
				Property:  propName,
			})
		}
	}

	for _, prop := range props {
		rule, known := lookupRule(kind, prop.Name)

		if !known {
			v.report(&ValidationError{
				Severity:  SeverityWarning,
				Kind:      UnknownExtension,
				Component: name,
				Property:  prop.Name,
				Message:   "unrecognized property",
			})
			continue
		}

		if counts[prop.Name] > 1 && rule.Card != OptionalMultiple {
			v.report(&ValidationError{
				Kind:      Duplicate,
				Component: name,
				Property:  prop.Name,
			})
			counts[prop.Name] = 1 // one finding per property name
		}

		v.checkParams(name, prop, rule)
	}
}

// checkParams flags parameters outside the schema's permitted list.
// X- parameters are always admitted.
func (v *validator) checkParams(name string, prop *Property, rule propRule) {
	if rule.Params == nil {
		return
	}

	for _, param := range prop.Params {
		if strings.HasPrefix(param.Name, "X-") || containsName(rule.Params, param.Name) {
			continue
		}
		v.report(&ValidationError{
			Severity:  SeverityWarning,
			Kind:      UnknownExtension,
			Component: name,
			Property:  prop.Name,
			Message:   "unexpected parameter " + param.Name,
		})
	}
}

func (v *validator) checkStatus(c *Component) {
	vocab, ok := statusVocab[c.Kind]
	if !ok {
		return
	}
	prop := c.Prop("STATUS")
	if prop == nil {
		return
	}
	text, ok := prop.Value.(Text)
	if !ok {
		return
	}
	if !containsName(vocab, strings.ToUpper(string(text))) {
		v.report(&ValidationError{
			Severity:  SeverityWarning,
			Kind:      UnknownExtension,
			Component: c.Name,
			Property:  "STATUS",
			Message:   "value " + string(text) + " is outside the " + c.Name + " vocabulary",
		})
	}
}

func (v *validator) checkExclusive(c *Component) {
	for _, pair := range exclusiveProps[c.Kind] {
		if c.Prop(pair[0]) != nil && c.Prop(pair[1]) != nil {
			v.report(&ValidationError{
				Kind:      Conflict,
				Component: c.Name,
				Property:  pair[0],
				Message:   pair[0] + " and " + pair[1] + " must not both appear",
			})
		}
	}
}

// checkAlarmRepeat enforces the RFC 5545 rule that DURATION and REPEAT
// on a VALARM occur either together or not at all.
func (v *validator) checkAlarmRepeat(c *Component) {
	hasDuration := c.Prop("DURATION") != nil
	hasRepeat := c.Prop("REPEAT") != nil
	if hasDuration != hasRepeat {
		v.report(&ValidationError{
			Kind:      Conflict,
			Component: c.Name,
			Property:  "DURATION",
			Message:   "DURATION and REPEAT must appear together",
		})
	}
}

func containsName(list []string, name string) bool {
	for _, s := range list {
		if s == name {
			return true
		}
	}
	return false
}
