package ical

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	event := NewComponent(KindEvent)
	event.SetProp("UID", Text("123@example.org"))
	event.SetProp("DTSTAMP", DateTime{Time: time.Date(2020, 2, 11, 0, 0, 0, 0, time.UTC), UTC: true})
	event.SetProp("SUMMARY", Text("Test event"))

	cal := NewCalendar()
	cal.ProdID = "-//ABC Corporation//NONSGML My Product//EN"
	cal.Components = append(cal.Components, event)

	var buf bytes.Buffer
	require.NoError(t, Format(&buf, cal))

	expected := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//ABC Corporation//NONSGML My Product//EN",
		"CALSCALE:GREGORIAN",
		"BEGIN:VEVENT",
		"UID:123@example.org",
		"DTSTAMP:20200211T000000Z",
		"SUMMARY:Test event",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	assert.Equal(t, expected, buf.String())
}

func TestFormatEscapesText(t *testing.T) {
	event := NewComponent(KindEvent)
	event.SetProp("UID", Text("1"))
	event.SetProp("SUMMARY", Text("One; two, three\nfour \\ five"))

	cal := NewCalendar()
	cal.ProdID = "-//icskit//ical//EN"
	cal.Components = append(cal.Components, event)

	out, err := cal.Serialize()
	require.NoError(t, err)
	assert.Contains(t, out, "SUMMARY:One\\; two\\, three\\nfour \\\\ five\r\n")

	back, err := ParseText(out)
	require.NoError(t, err)
	assert.Equal(t, Text("One; two, three\nfour \\ five"), back.Events()[0].Prop("SUMMARY").Value)
}

func TestFormatQuotesParamValues(t *testing.T) {
	prop := NewProperty("ATTENDEE", CalAddress("mailto:jane@example.com"))
	prop.SetParam("CN", "Doe, Jane")
	prop.SetParam("ROLE", "CHAIR")

	event := NewComponent(KindEvent)
	event.Properties = append(event.Properties, prop)

	cal := NewCalendar()
	cal.Components = append(cal.Components, event)

	out, err := cal.Serialize()
	require.NoError(t, err)
	assert.Contains(t, out, `ATTENDEE;CN="Doe, Jane";ROLE=CHAIR:mailto:jane@example.com`+"\r\n")
}

func TestFormatFoldsLongLines(t *testing.T) {
	event := NewComponent(KindEvent)
	event.SetProp("UID", Text("1"))
	event.SetProp("DESCRIPTION", Text(strings.Repeat("all work and no play ", 10)))

	cal := NewCalendar()
	cal.ProdID = "-//icskit//ical//EN"
	cal.Components = append(cal.Components, event)

	out, err := cal.Serialize()
	require.NoError(t, err)

	for _, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 75)
	}

	back, err := ParseText(out)
	require.NoError(t, err)
	assert.Equal(t,
		Text(strings.Repeat("all work and no play ", 10)),
		back.Events()[0].Prop("DESCRIPTION").Value)
}

func TestFormatInjectsPromotedFields(t *testing.T) {
	cal, err := ParseText(strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//icskit//ical//EN",
		"END:VCALENDAR",
		"",
	}, "\r\n"))
	require.NoError(t, err)

	// field edits win over the parsed property list
	cal.Method = "PUBLISH"
	cal.ProdID = "-//icskit//rewritten//EN"

	out, err := cal.Serialize()
	require.NoError(t, err)
	assert.Contains(t, out, "PRODID:-//icskit//rewritten//EN\r\n")
	assert.Contains(t, out, "METHOD:PUBLISH\r\n")
	assert.NotContains(t, out, "-//icskit//ical//EN")
}

func TestFormatNilValue(t *testing.T) {
	event := NewComponent(KindEvent)
	event.Properties = append(event.Properties, &Property{Name: "X-EMPTY"})

	cal := NewCalendar()
	cal.Components = append(cal.Components, event)

	out, err := cal.Serialize()
	require.NoError(t, err)
	assert.Contains(t, out, "X-EMPTY:\r\n")
}

func TestSerializeFixtureRoundTrip(t *testing.T) {
	for _, filename := range calendarList {
		cal := parseFixture(t, filename)

		out, err := cal.Serialize()
		require.NoError(t, err, filename)

		back, err := ParseText(out)
		require.NoError(t, err, filename)
		assert.Equal(t, cal, back, filename)
	}
}

func parseFixture(t *testing.T, filename string) *Calendar {
	t.Helper()
	raw, err := os.ReadFile(filename)
	require.NoError(t, err)
	cal, err := ParseText(string(raw))
	require.NoError(t, err)
	return cal
}
