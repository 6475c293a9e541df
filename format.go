package ical

import (
	"bytes"
	"io"
	"strings"
)

// Format writes the calendar to the provided io.Writer: BEGIN and END
// markers in upper case, properties in stored order, every logical line
// folded at the wire width and terminated by CRLF.
func Format(w io.Writer, cal *Calendar) error {
	var props []*Property
	if cal.Version != "" {
		props = append(props, &Property{Name: "VERSION", Value: Text(cal.Version)})
	}
	if cal.ProdID != "" {
		props = append(props, &Property{Name: "PRODID", Value: Text(cal.ProdID)})
	}
	if cal.Calscale != "" {
		props = append(props, &Property{Name: "CALSCALE", Value: Text(cal.Calscale)})
	}
	if cal.Method != "" {
		props = append(props, &Property{Name: "METHOD", Value: Text(cal.Method)})
	}
	cal.Properties = setProperties(cal.Properties, props)

	var buf bytes.Buffer
	writeFolded(&buf, "BEGIN:VCALENDAR")

	for _, prop := range cal.Properties {
		formatProperty(&buf, prop)
	}

	for _, comp := range cal.Components {
		formatComponent(&buf, comp)
	}

	writeFolded(&buf, "END:VCALENDAR")

	_, err := buf.WriteTo(w)
	return err
}

// Serialize returns the calendar in its text form.
func (c *Calendar) Serialize() (string, error) {
	var buf bytes.Buffer
	if err := Format(&buf, c); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatComponent(buf *bytes.Buffer, comp *Component) {
	writeFolded(buf, "BEGIN:"+comp.Name)

	for _, prop := range comp.Properties {
		formatProperty(buf, prop)
	}

	for _, child := range comp.Children {
		formatComponent(buf, child)
	}

	writeFolded(buf, "END:"+comp.Name)
}

func formatProperty(buf *bytes.Buffer, prop *Property) {
	var b strings.Builder
	b.WriteString(prop.Name)

	for _, param := range prop.Params {
		b.WriteString(";")
		b.WriteString(param.Name)
		b.WriteString("=")
		for i, v := range param.Values {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(formatParamValue(v))
		}
	}

	b.WriteString(":")
	if prop.Value != nil {
		b.WriteString(prop.Value.encode())
	}

	writeFolded(buf, b.String())
}

// formatParamValue quotes a parameter value only when it contains a
// character that would terminate a bare token.
func formatParamValue(v string) string {
	if strings.ContainsAny(v, ":;,") {
		return "\"" + v + "\""
	}
	return v
}

// setProperties overwrites the properties named in newProps in place,
// appending the ones not present yet.
func setProperties(l []*Property, newProps []*Property) []*Property {
	m := make(map[string]*Property, len(newProps))
	for _, newProp := range newProps {
		m[newProp.Name] = newProp
	}

	for i, prop := range l {
		newProp, ok := m[prop.Name]
		if ok {
			l[i] = newProp
			delete(m, prop.Name)
		}
	}

	for _, newProp := range newProps {
		if _, ok := m[newProp.Name]; ok {
			l = append(l, newProp)
		}
	}

	return l
}
