package ical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() string {
	return lines(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//icskit//ical//EN",
		"BEGIN:VEVENT",
		"UID:1",
		"DTSTAMP:20240101T000000Z",
		"DTSTART:20240101T090000Z",
		"END:VEVENT",
		"END:VCALENDAR",
	)
}

func TestValidateClean(t *testing.T) {
	cal, err := ParseText(validEvent())
	require.NoError(t, err)
	assert.Empty(t, cal.Validate())

	for _, filename := range calendarList {
		cal := parseFixture(t, filename)
		assert.Empty(t, cal.Validate(), filename)
	}
}

func TestValidateMissingRequired(t *testing.T) {
	cal, err := ParseText(lines(
		"BEGIN:VCALENDAR",
		"PRODID:-//icskit//ical//EN",
		"BEGIN:VEVENT",
		"DTSTAMP:20240101T000000Z",
		"END:VEVENT",
		"END:VCALENDAR",
	))
	require.NoError(t, err)

	found := cal.Validate()
	require.Len(t, found, 2)

	byProp := map[string]*ValidationError{}
	for _, f := range found {
		byProp[f.Property] = f
		assert.Equal(t, Missing, f.Kind)
		assert.Equal(t, SeverityError, f.Severity)
	}

	require.Contains(t, byProp, "VERSION")
	assert.Equal(t, "VCALENDAR", byProp["VERSION"].Component)
	require.Contains(t, byProp, "UID")
	assert.Equal(t, "VEVENT", byProp["UID"].Component)
}

func TestValidateExclusivePairs(t *testing.T) {
	cal, err := ParseText(lines(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//icskit//ical//EN",
		"BEGIN:VEVENT",
		"UID:1",
		"DTSTAMP:20240101T000000Z",
		"DTEND:20240101T100000Z",
		"DURATION:PT1H",
		"END:VEVENT",
		"BEGIN:VTODO",
		"UID:2",
		"DTSTAMP:20240101T000000Z",
		"DUE:20240201T000000Z",
		"DURATION:PT1H",
		"END:VTODO",
		"END:VCALENDAR",
	))
	require.NoError(t, err)

	found := cal.Validate()
	require.Len(t, found, 2)
	for _, f := range found {
		assert.Equal(t, Conflict, f.Kind)
		assert.Equal(t, SeverityError, f.Severity)
	}
	assert.Equal(t, "DTEND", found[0].Property)
	assert.Equal(t, "DUE", found[1].Property)
}

func TestValidateAlarmRepeat(t *testing.T) {
	cal, err := ParseText(lines(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//icskit//ical//EN",
		"BEGIN:VEVENT",
		"UID:1",
		"DTSTAMP:20240101T000000Z",
		"BEGIN:VALARM",
		"ACTION:DISPLAY",
		"TRIGGER:-PT15M",
		"DURATION:PT5M",
		"END:VALARM",
		"END:VEVENT",
		"END:VCALENDAR",
	))
	require.NoError(t, err)

	found := cal.Validate()
	require.Len(t, found, 1)
	assert.Equal(t, Conflict, found[0].Kind)
	assert.Equal(t, "VALARM", found[0].Component)
	assert.Equal(t, "DURATION", found[0].Property)

	// adding REPEAT restores the pair
	alarm := cal.Events()[0].Alarms()[0]
	alarm.SetProp("REPEAT", Integer(2))
	assert.Empty(t, cal.Validate())
}

func TestValidateStatusVocabulary(t *testing.T) {
	cal, err := ParseText(lines(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//icskit//ical//EN",
		"BEGIN:VEVENT",
		"UID:1",
		"DTSTAMP:20240101T000000Z",
		"STATUS:NEEDS-ACTION",
		"END:VEVENT",
		"END:VCALENDAR",
	))
	require.NoError(t, err)

	// NEEDS-ACTION belongs to the VTODO vocabulary, not VEVENT
	found := cal.Validate()
	require.Len(t, found, 1)
	assert.Equal(t, SeverityWarning, found[0].Severity)
	assert.Equal(t, UnknownExtension, found[0].Kind)
	assert.Equal(t, "STATUS", found[0].Property)

	cal.Events()[0].SetProp("STATUS", Text("CONFIRMED"))
	assert.Empty(t, cal.Validate())
}

func TestValidateExtensionProperty(t *testing.T) {
	cal, err := ParseText(lines(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//icskit//ical//EN",
		"BEGIN:VEVENT",
		"UID:1",
		"DTSTAMP:20240101T000000Z",
		"X-APPLE-TRAVEL-ADVISORY-BEHAVIOR:AUTOMATIC",
		"END:VEVENT",
		"END:VCALENDAR",
	))
	require.NoError(t, err)

	found := cal.Validate()
	require.Len(t, found, 1)
	assert.Equal(t, SeverityWarning, found[0].Severity)
	assert.Equal(t, UnknownExtension, found[0].Kind)
	assert.Equal(t, "X-APPLE-TRAVEL-ADVISORY-BEHAVIOR", found[0].Property)
}

func TestValidateUnexpectedParameter(t *testing.T) {
	cal, err := ParseText(lines(
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//icskit//ical//EN",
		"BEGIN:VEVENT",
		"UID:1",
		"DTSTAMP:20240101T000000Z",
		"SUMMARY;ROLE=CHAIR;X-CUSTOM=1;LANGUAGE=en:Standup",
		"END:VEVENT",
		"END:VCALENDAR",
	))
	require.NoError(t, err)

	// ROLE is not a SUMMARY parameter, X- parameters always pass
	found := cal.Validate()
	require.Len(t, found, 1)
	assert.Equal(t, SeverityWarning, found[0].Severity)
	assert.Equal(t, "SUMMARY", found[0].Property)
	assert.Contains(t, found[0].Message, "ROLE")
}

func TestValidateSeverityString(t *testing.T) {
	errFinding := &ValidationError{Kind: Missing, Component: "VEVENT", Property: "UID"}
	assert.Contains(t, errFinding.Error(), "VEVENT")
	assert.Contains(t, errFinding.Error(), "UID")

	warn := &ValidationError{Severity: SeverityWarning, Kind: UnknownExtension}
	assert.NotEqual(t, errFinding.Severity.String(), warn.Severity.String())
}
