package ical

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := parseDate("19980119")
	require.NoError(t, err)
	assert.Equal(t, time.Date(1998, 1, 19, 0, 0, 0, 0, time.UTC), d.Time)
	assert.Equal(t, "19980119", d.encode())
}

func TestParseDateRejectsImpossibleDates(t *testing.T) {
	for _, raw := range []string{"20240230", "20231301", "2024011", "19980119T020000"} {
		_, err := parseDate(raw)
		assert.Error(t, err, raw)
	}

	// leap years are real dates
	_, err := parseDate("20240229")
	assert.NoError(t, err)
	_, err = parseDate("19000229")
	assert.Error(t, err)
}

func TestParseDateTime(t *testing.T) {
	utc, err := parseDateTime("19980119T070000Z", "")
	require.NoError(t, err)
	assert.True(t, utc.UTC)
	assert.False(t, utc.Floating())
	assert.Equal(t, time.Date(1998, 1, 19, 7, 0, 0, 0, time.UTC), utc.Time)
	assert.Equal(t, "19980119T070000Z", utc.encode())

	zoned, err := parseDateTime("19980119T020000", "America/New_York")
	require.NoError(t, err)
	assert.False(t, zoned.UTC)
	assert.False(t, zoned.Floating())
	assert.Equal(t, "America/New_York", zoned.TZID)
	assert.Equal(t, "19980119T020000", zoned.encode())

	floating, err := parseDateTime("19980119T020000", "")
	require.NoError(t, err)
	assert.True(t, floating.Floating())
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		raw  string
		want Duration
	}{
		{"P1W", Duration{Weeks: 1}},
		{"P15DT5H0M20S", Duration{Days: 15, Hours: 5, Seconds: 20}},
		{"PT15M", Duration{Minutes: 15}},
		{"-PT15M", Duration{Negative: true, Minutes: 15}},
		{"+P7D", Duration{Days: 7}},
		{"PT0S", Duration{}},
	}

	for _, test := range tests {
		got, err := parseDuration(test.raw)
		require.NoError(t, err, test.raw)
		assert.Equal(t, test.want, got, test.raw)

		// the formatter is a left inverse of the parser
		back, err := parseDuration(got.encode())
		require.NoError(t, err, got.encode())
		assert.Equal(t, got, back)
	}

	assert.Equal(t, -15*time.Minute, Duration{Negative: true, Minutes: 15}.Duration())
	assert.Equal(t, 7*24*time.Hour, Duration{Weeks: 1}.Duration())
}

func TestParseDurationErrors(t *testing.T) {
	for _, raw := range []string{"", "P", "PT", "15M", "PT15", "P1X", "PTM", "P-1D"} {
		_, err := parseDuration(raw)
		assert.Error(t, err, raw)
	}
}

func TestParsePeriod(t *testing.T) {
	explicit, err := parsePeriod("19970101T180000Z/19970102T070000Z", "")
	require.NoError(t, err)
	require.NotNil(t, explicit.End)
	assert.Nil(t, explicit.Duration)
	assert.Equal(t, "19970101T180000Z/19970102T070000Z", explicit.encode())

	durational, err := parsePeriod("19970101T180000Z/PT5H30M", "")
	require.NoError(t, err)
	require.NotNil(t, durational.Duration)
	assert.Equal(t, Duration{Hours: 5, Minutes: 30}, *durational.Duration)

	_, err = parsePeriod("19970101T180000Z", "")
	assert.Error(t, err)
}

func TestParseUTCOffset(t *testing.T) {
	tests := []struct {
		raw  string
		want UTCOffset
	}{
		{"+0200", 2 * 3600},
		{"-0500", -5 * 3600},
		{"+1400", 14 * 3600},
		{"-050030", -(5*3600 + 30)},
		{"+000000", 0},
	}

	for _, test := range tests {
		got, err := parseUTCOffset(test.raw)
		require.NoError(t, err, test.raw)
		assert.Equal(t, test.want, got, test.raw)
	}

	for _, raw := range []string{"0200", "+02", "+0260", "-0000", "+02004", "+02a0"} {
		_, err := parseUTCOffset(raw)
		assert.Error(t, err, raw)
	}

	assert.Equal(t, "+0200", UTCOffset(2*3600).encode())
	assert.Equal(t, "-050030", UTCOffset(-(5*3600+30)).encode())
}

func TestParseValueScalars(t *testing.T) {
	prop := &Property{Name: "X-TEST"}

	b, err := parseValue(ValueBoolean, "true", prop, 1)
	require.NoError(t, err)
	assert.Equal(t, Boolean(true), b)

	_, err = parseValue(ValueBoolean, "yes", prop, 1)
	assert.Error(t, err)

	n, err := parseValue(ValueInteger, "-12", prop, 1)
	require.NoError(t, err)
	assert.Equal(t, Integer(-12), n)

	f, err := parseValue(ValueFloat, "3.14", prop, 1)
	require.NoError(t, err)
	assert.Equal(t, Float(3.14), f)

	u, err := parseValue(ValueURI, "https://example.com/cal", prop, 1)
	require.NoError(t, err)
	assert.Equal(t, URI("https://example.com/cal"), u)

	_, err = parseValue(ValueURI, "not a uri", prop, 1)
	assert.Error(t, err)

	addr, err := parseValue(ValueCalAddress, "mailto:jane@example.com", prop, 1)
	require.NoError(t, err)
	assert.Equal(t, CalAddress("mailto:jane@example.com"), addr)

	bin, err := parseValue(ValueBinary, "SGVsbG8=", prop, 1)
	require.NoError(t, err)
	assert.Equal(t, Binary("Hello"), bin)

	g, err := parseValue(ValueGeo, "37.386013;-122.082932", prop, 1)
	require.NoError(t, err)
	assert.Equal(t, Geo{Lat: 37.386013, Lon: -122.082932}, g)

	_, err = parseValue(ValueGeo, "91.0;0.0", prop, 1)
	assert.Error(t, err)
}

func TestParseValueLists(t *testing.T) {
	prop := &Property{Name: "CATEGORIES"}

	list, err := parseValue(ValueTextList, "FAMILY,FINANCE", prop, 1)
	require.NoError(t, err)
	assert.Equal(t, TextList{"FAMILY", "FINANCE"}, list)

	// an escaped comma does not split
	list, err = parseValue(ValueTextList, "a\\,b,c", prop, 1)
	require.NoError(t, err)
	assert.Equal(t, TextList{"a,b", "c"}, list)

	dates, err := parseValue(ValueDateList, "20240101,20240102", prop, 1)
	require.NoError(t, err)
	assert.Len(t, dates, 2)

	times, err := parseValue(ValueDateTimeList, "20240101T000000Z,20240102T000000Z", prop, 1)
	require.NoError(t, err)
	assert.Len(t, times, 2)
}

func TestParseValueReportsValueError(t *testing.T) {
	prop := &Property{Name: "DTSTART"}

	_, err := parseValue(ValueDateTime, "not-a-date", prop, 42)

	var valueErr *ValueError
	require.ErrorAs(t, err, &valueErr)
	assert.Equal(t, ValueDateTime, valueErr.Expected)
	assert.Equal(t, "not-a-date", valueErr.Raw)
	assert.Equal(t, 42, valueErr.Line)
}

func TestValueOverride(t *testing.T) {
	rule := propRule{Value: ValueDateTime, Card: OptionalSingle}

	prop := &Property{Name: "DUE"}
	prop.SetParam("VALUE", "DATE")
	assert.Equal(t, ValueDate, resolveValueKind(rule, prop))

	listRule := propRule{Value: ValueDateTimeList, Card: OptionalMultiple}
	assert.Equal(t, ValueDateList, resolveValueKind(listRule, prop))

	prop.SetParam("VALUE", "PERIOD")
	assert.Equal(t, ValuePeriodList, resolveValueKind(listRule, prop))

	plain := &Property{Name: "DTSTART"}
	assert.Equal(t, ValueDateTime, resolveValueKind(rule, plain))
}
