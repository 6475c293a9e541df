// Package ical implements an iCalendar parser, validator and formatter.
//
// iCalendar is defined in RFC 5545. The package converts between the
// on-wire text form and an in-memory tree of components and typed
// properties, and back. It does not resolve time zone identifiers, expand
// recurrence rules or perform any I/O beyond the reader/writer handed to
// it by the caller.
package ical

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// A ComponentKind identifies one of the component types defined by RFC
// 5545. Components whose name is not in the fixed set are KindUnknown and
// carried verbatim.
type ComponentKind int

const (
	KindUnknown ComponentKind = iota
	KindCalendar
	KindEvent
	KindTodo
	KindJournal
	KindFreeBusy
	KindTimezone
	KindAlarm
	KindStandard
	KindDaylight
)

var kindNames = map[ComponentKind]string{
	KindCalendar: "VCALENDAR",
	KindEvent:    "VEVENT",
	KindTodo:     "VTODO",
	KindJournal:  "VJOURNAL",
	KindFreeBusy: "VFREEBUSY",
	KindTimezone: "VTIMEZONE",
	KindAlarm:    "VALARM",
	KindStandard: "STANDARD",
	KindDaylight: "DAYLIGHT",
}

func (k ComponentKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "X-UNKNOWN"
}

// componentKind resolves a BEGIN/END token into a kind. Unrecognized
// names resolve to KindUnknown, they are not an error.
func componentKind(name string) ComponentKind {
	switch strings.ToUpper(name) {
	case "VCALENDAR":
		return KindCalendar
	case "VEVENT":
		return KindEvent
	case "VTODO":
		return KindTodo
	case "VJOURNAL":
		return KindJournal
	case "VFREEBUSY":
		return KindFreeBusy
	case "VTIMEZONE":
		return KindTimezone
	case "VALARM":
		return KindAlarm
	case "STANDARD":
		return KindStandard
	case "DAYLIGHT":
		return KindDaylight
	}
	return KindUnknown
}

// A Calendar represents the whole iCalendar
type Calendar struct {
	Properties []*Property
	Components []*Component
	ProdID     string
	Version    string
	Calscale   string
	Method     string
}

// A Component represents a single BEGIN/END block: an event, a to-do, a
// journal entry, a free/busy block, a time zone definition, an alarm or
// an unrecognized extension component.
type Component struct {
	Kind       ComponentKind
	Name       string // upper-cased BEGIN token, kept for unknown kinds
	Properties []*Property
	Children   []*Component
}

// A Property represents one content line inside a component. The name is
// canonicalized to upper case, parameters keep their insertion order.
type Property struct {
	Name   string
	Params []*Param
	Value  Value
}

// A Param represents one property parameter and its one-or-more values.
type Param struct {
	Name   string
	Values []string
}

// NewCalendar creates an empty Calendar
func NewCalendar() *Calendar {
	return &Calendar{
		Version:  "2.0",
		Calscale: "GREGORIAN",
	}
}

// NewComponent creates an empty component of the given kind.
func NewComponent(kind ComponentKind) *Component {
	return &Component{Kind: kind, Name: kind.String()}
}

// NewEvent creates a VEVENT with a fresh UID and a DTSTAMP of now, the
// two properties every event must carry.
func NewEvent() *Component {
	c := NewComponent(KindEvent)
	c.Properties = append(c.Properties,
		&Property{Name: "UID", Value: Text(uuid.New().String())},
		&Property{Name: "DTSTAMP", Value: DateTime{Time: time.Now().UTC().Truncate(time.Second), UTC: true}},
	)
	return c
}

// NewTodo creates a VTODO with a fresh UID and a DTSTAMP of now.
func NewTodo() *Component {
	c := NewComponent(KindTodo)
	c.Properties = append(c.Properties,
		&Property{Name: "UID", Value: Text(uuid.New().String())},
		&Property{Name: "DTSTAMP", Value: DateTime{Time: time.Now().UTC().Truncate(time.Second), UTC: true}},
	)
	return c
}

// NewProperty creates a property carrying the given value.
func NewProperty(name string, value Value) *Property {
	return &Property{Name: strings.ToUpper(name), Value: value}
}

// Events returns the top-level VEVENT components.
func (c *Calendar) Events() []*Component {
	return componentsOfKind(c.Components, KindEvent)
}

// Todos returns the top-level VTODO components.
func (c *Calendar) Todos() []*Component {
	return componentsOfKind(c.Components, KindTodo)
}

func componentsOfKind(list []*Component, kind ComponentKind) []*Component {
	var out []*Component
	for _, child := range list {
		if child.Kind == kind {
			out = append(out, child)
		}
	}
	return out
}

// Alarms returns the nested VALARM components.
func (c *Component) Alarms() []*Component {
	return componentsOfKind(c.Children, KindAlarm)
}

// Prop returns the first property with the given name, or nil.
func (c *Component) Prop(name string) *Property {
	name = strings.ToUpper(name)
	for _, prop := range c.Properties {
		if prop.Name == name {
			return prop
		}
	}
	return nil
}

// Props returns every property with the given name in stored order.
func (c *Component) Props(name string) []*Property {
	name = strings.ToUpper(name)
	var out []*Property
	for _, prop := range c.Properties {
		if prop.Name == name {
			out = append(out, prop)
		}
	}
	return out
}

// SetProp replaces the first property with the given name, appending it
// when absent.
func (c *Component) SetProp(name string, value Value) {
	name = strings.ToUpper(name)
	for _, prop := range c.Properties {
		if prop.Name == name {
			prop.Value = value
			return
		}
	}
	c.Properties = append(c.Properties, &Property{Name: name, Value: value})
}

// Param returns the parameter with the given name, or nil.
func (p *Property) Param(name string) *Param {
	name = strings.ToUpper(name)
	for _, param := range p.Params {
		if param.Name == name {
			return param
		}
	}
	return nil
}

// ParamValue returns the first value of the named parameter, or "".
func (p *Property) ParamValue(name string) string {
	param := p.Param(name)
	if param == nil || len(param.Values) == 0 {
		return ""
	}
	return param.Values[0]
}

// SetParam replaces the parameter with the given name, appending it when
// absent.
func (p *Property) SetParam(name string, values ...string) {
	name = strings.ToUpper(name)
	for _, param := range p.Params {
		if param.Name == name {
			param.Values = values
			return
		}
	}
	p.Params = append(p.Params, &Param{Name: name, Values: values})
}
