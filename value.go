package ical

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// A ValueKind names one of the value types defined by RFC 5545, plus the
// raw fallback used for extension properties without a schema entry.
type ValueKind int

const (
	ValueRaw ValueKind = iota
	ValueText
	ValueTextList
	ValueDate
	ValueDateList
	ValueDateTime
	ValueDateTimeList
	ValueDuration
	ValuePeriod
	ValuePeriodList
	ValueRecur
	ValueInteger
	ValueFloat
	ValueBoolean
	ValueURI
	ValueCalAddress
	ValueUTCOffset
	ValueBinary
	ValueGeo
)

var valueKindNames = map[ValueKind]string{
	ValueRaw:          "RAW",
	ValueText:         "TEXT",
	ValueTextList:     "TEXT",
	ValueDate:         "DATE",
	ValueDateList:     "DATE",
	ValueDateTime:     "DATE-TIME",
	ValueDateTimeList: "DATE-TIME",
	ValueDuration:     "DURATION",
	ValuePeriod:       "PERIOD",
	ValuePeriodList:   "PERIOD",
	ValueRecur:        "RECUR",
	ValueInteger:      "INTEGER",
	ValueFloat:        "FLOAT",
	ValueBoolean:      "BOOLEAN",
	ValueURI:          "URI",
	ValueCalAddress:   "CAL-ADDRESS",
	ValueUTCOffset:    "UTC-OFFSET",
	ValueBinary:       "BINARY",
	ValueGeo:          "FLOAT",
}

func (k ValueKind) String() string {
	if name, ok := valueKindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// A Value is the typed payload of a property. The concrete types form a
// closed set; each one formats back to the text form its parser accepts.
type Value interface {
	ValueKind() ValueKind
	encode() string
}

// Raw is the fallback for extension value types: the text between the
// colon and the line end, kept byte for byte.
type Raw string

func (v Raw) ValueKind() ValueKind { return ValueRaw }
func (v Raw) encode() string       { return string(v) }

// Text is a single TEXT value, stored unescaped.
type Text string

func (v Text) ValueKind() ValueKind { return ValueText }
func (v Text) encode() string       { return escapeText(string(v)) }

// TextList is a comma-separated TEXT value list, e.g. CATEGORIES.
type TextList []string

func (v TextList) ValueKind() ValueKind { return ValueTextList }

func (v TextList) encode() string {
	parts := make([]string, len(v))
	for i, s := range v {
		parts[i] = escapeText(s)
	}
	return strings.Join(parts, ",")
}

// Date is a civil DATE value with no time and no zone.
type Date struct {
	Time time.Time
}

func (v Date) ValueKind() ValueKind { return ValueDate }
func (v Date) encode() string       { return v.Time.Format(dateLayout) }

// DateList is a comma-separated DATE value list.
type DateList []Date

func (v DateList) ValueKind() ValueKind { return ValueDateList }

func (v DateList) encode() string {
	parts := make([]string, len(v))
	for i, d := range v {
		parts[i] = d.encode()
	}
	return strings.Join(parts, ",")
}

// DateTime is a DATE-TIME value. UTC is set when the text carried a Z
// suffix; TZID carries an unresolved time zone reference taken from the
// property's TZID parameter. When neither is set the value is floating
// and no zone may be assumed. The civil fields are stored in a time.Time
// whose location is UTC purely as a container.
type DateTime struct {
	Time time.Time
	UTC  bool
	TZID string
}

// Floating reports whether the value carries neither a UTC marker nor a
// time zone reference.
func (v DateTime) Floating() bool { return !v.UTC && v.TZID == "" }

func (v DateTime) ValueKind() ValueKind { return ValueDateTime }

func (v DateTime) encode() string {
	if v.UTC {
		return v.Time.Format(dateTimeLayoutUTC)
	}
	return v.Time.Format(dateTimeLayoutLocalized)
}

// DateTimeList is a comma-separated DATE-TIME value list, e.g. EXDATE.
type DateTimeList []DateTime

func (v DateTimeList) ValueKind() ValueKind { return ValueDateTimeList }

func (v DateTimeList) encode() string {
	parts := make([]string, len(v))
	for i, dt := range v {
		parts[i] = dt.encode()
	}
	return strings.Join(parts, ",")
}

// Duration is a DURATION value. The unit fields are kept separate so a
// week-based duration round-trips as weeks instead of days.
type Duration struct {
	Negative bool
	Weeks    int
	Days     int
	Hours    int
	Minutes  int
	Seconds  int
}

func (v Duration) ValueKind() ValueKind { return ValueDuration }

func (v Duration) encode() string {
	var b strings.Builder
	if v.Negative {
		b.WriteByte('-')
	}
	b.WriteByte('P')
	if v.Weeks != 0 {
		fmt.Fprintf(&b, "%dW", v.Weeks)
		return b.String()
	}
	if v.Days != 0 {
		fmt.Fprintf(&b, "%dD", v.Days)
	}
	if v.Hours != 0 || v.Minutes != 0 || v.Seconds != 0 {
		b.WriteByte('T')
		if v.Hours != 0 {
			fmt.Fprintf(&b, "%dH", v.Hours)
		}
		if v.Minutes != 0 {
			fmt.Fprintf(&b, "%dM", v.Minutes)
		}
		if v.Seconds != 0 {
			fmt.Fprintf(&b, "%dS", v.Seconds)
		}
	} else if v.Days == 0 {
		b.WriteString("T0S")
	}
	return b.String()
}

// Duration converts the value to a time.Duration.
func (v Duration) Duration() time.Duration {
	d := time.Duration(v.Weeks)*7*24*time.Hour +
		time.Duration(v.Days)*24*time.Hour +
		time.Duration(v.Hours)*time.Hour +
		time.Duration(v.Minutes)*time.Minute +
		time.Duration(v.Seconds)*time.Second
	if v.Negative {
		return -d
	}
	return d
}

// Period is a PERIOD value: a start plus either an explicit end or a
// duration.
type Period struct {
	Start    DateTime
	End      *DateTime
	Duration *Duration
}

func (v Period) ValueKind() ValueKind { return ValuePeriod }

func (v Period) encode() string {
	if v.End != nil {
		return v.Start.encode() + "/" + v.End.encode()
	}
	if v.Duration != nil {
		return v.Start.encode() + "/" + v.Duration.encode()
	}
	return v.Start.encode() + "/PT0S"
}

// PeriodList is a comma-separated PERIOD value list, e.g. FREEBUSY.
type PeriodList []Period

func (v PeriodList) ValueKind() ValueKind { return ValuePeriodList }

func (v PeriodList) encode() string {
	parts := make([]string, len(v))
	for i, p := range v {
		parts[i] = p.encode()
	}
	return strings.Join(parts, ",")
}

// Integer is an INTEGER value.
type Integer int64

func (v Integer) ValueKind() ValueKind { return ValueInteger }
func (v Integer) encode() string       { return strconv.FormatInt(int64(v), 10) }

// Float is a FLOAT value.
type Float float64

func (v Float) ValueKind() ValueKind { return ValueFloat }
func (v Float) encode() string       { return strconv.FormatFloat(float64(v), 'f', -1, 64) }

// Boolean is a BOOLEAN value.
type Boolean bool

func (v Boolean) ValueKind() ValueKind { return ValueBoolean }

func (v Boolean) encode() string {
	if v {
		return "TRUE"
	}
	return "FALSE"
}

// URI is a URI value, syntactically validated on parse.
type URI string

func (v URI) ValueKind() ValueKind { return ValueURI }
func (v URI) encode() string       { return string(v) }

// CalAddress is a CAL-ADDRESS value, a URI identifying a calendar user.
type CalAddress string

func (v CalAddress) ValueKind() ValueKind { return ValueCalAddress }
func (v CalAddress) encode() string       { return string(v) }

// UTCOffset is a UTC-OFFSET value in seconds east of UTC.
type UTCOffset int

func (v UTCOffset) ValueKind() ValueKind { return ValueUTCOffset }

func (v UTCOffset) encode() string {
	sec := int(v)
	sign := "+"
	if sec < 0 {
		sign = "-"
		sec = -sec
	}
	h, m, s := sec/3600, sec/60%60, sec%60
	if s != 0 {
		return fmt.Sprintf("%s%02d%02d%02d", sign, h, m, s)
	}
	return fmt.Sprintf("%s%02d%02d", sign, h, m)
}

// Binary is a BINARY value, decoded from base64.
type Binary []byte

func (v Binary) ValueKind() ValueKind { return ValueBinary }
func (v Binary) encode() string       { return base64.StdEncoding.EncodeToString(v) }

// Geo is the latitude;longitude float pair of the GEO property.
type Geo struct {
	Lat float64
	Lon float64
}

func (v Geo) ValueKind() ValueKind { return ValueGeo }

func (v Geo) encode() string {
	return strconv.FormatFloat(v.Lat, 'f', -1, 64) + ";" + strconv.FormatFloat(v.Lon, 'f', -1, 64)
}

const (
	dateLayout              = "20060102"
	dateTimeLayoutUTC       = "20060102T150405Z"
	dateTimeLayoutLocalized = "20060102T150405"
)

// escapeText escapes backslash, semicolon, comma and newline for the
// TEXT value type.
var textEscaper = strings.NewReplacer(
	"\\", "\\\\",
	";", "\\;",
	",", "\\,",
	"\n", "\\n",
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// unescapeText reverses escapeText. A dangling backslash or an escape
// outside the defined set is an error.
func unescapeText(raw string) (string, error) {
	if !strings.ContainsRune(raw, '\\') {
		return raw, nil
	}

	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' {
			b.WriteByte(raw[i])
			continue
		}
		i++
		if i >= len(raw) {
			return "", fmt.Errorf("dangling backslash")
		}
		switch raw[i] {
		case '\\', ';', ',':
			b.WriteByte(raw[i])
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			return "", fmt.Errorf("unknown escape \\%c", raw[i])
		}
	}
	return b.String(), nil
}

// splitList splits a multi-valued raw value on commas, honoring
// backslash escapes.
func splitList(raw string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '\\':
			i++
		case ',':
			parts = append(parts, raw[start:i])
			start = i + 1
		}
	}
	return append(parts, raw[start:])
}

// parseValue parses a raw value string according to the given kind. The
// property is consulted for the TZID parameter of date-time values. line
// is the physical line number used in errors.
func parseValue(kind ValueKind, raw string, prop *Property, line int) (Value, error) {
	valueErr := func(reason string) error {
		return &ValueError{Expected: kind, Raw: raw, Line: line, Reason: reason}
	}

	switch kind {
	case ValueRaw:
		return Raw(raw), nil

	case ValueText:
		s, err := unescapeText(raw)
		if err != nil {
			return nil, valueErr(err.Error())
		}
		return Text(s), nil

	case ValueTextList:
		parts := splitList(raw)
		list := make(TextList, len(parts))
		for i, part := range parts {
			s, err := unescapeText(part)
			if err != nil {
				return nil, valueErr(err.Error())
			}
			list[i] = s
		}
		return list, nil

	case ValueDate:
		d, err := parseDate(raw)
		if err != nil {
			return nil, valueErr(err.Error())
		}
		return d, nil

	case ValueDateList:
		parts := splitList(raw)
		list := make(DateList, len(parts))
		for i, part := range parts {
			d, err := parseDate(part)
			if err != nil {
				return nil, valueErr(err.Error())
			}
			list[i] = d
		}
		return list, nil

	case ValueDateTime:
		dt, err := parseDateTime(raw, prop.ParamValue("TZID"))
		if err != nil {
			return nil, valueErr(err.Error())
		}
		return dt, nil

	case ValueDateTimeList:
		tzid := prop.ParamValue("TZID")
		parts := splitList(raw)
		list := make(DateTimeList, len(parts))
		for i, part := range parts {
			dt, err := parseDateTime(part, tzid)
			if err != nil {
				return nil, valueErr(err.Error())
			}
			list[i] = dt
		}
		return list, nil

	case ValueDuration:
		d, err := parseDuration(raw)
		if err != nil {
			return nil, valueErr(err.Error())
		}
		return d, nil

	case ValuePeriod:
		p, err := parsePeriod(raw, prop.ParamValue("TZID"))
		if err != nil {
			return nil, valueErr(err.Error())
		}
		return p, nil

	case ValuePeriodList:
		tzid := prop.ParamValue("TZID")
		parts := splitList(raw)
		list := make(PeriodList, len(parts))
		for i, part := range parts {
			p, err := parsePeriod(part, tzid)
			if err != nil {
				return nil, valueErr(err.Error())
			}
			list[i] = p
		}
		return list, nil

	case ValueRecur:
		r, err := parseRecur(raw)
		if err != nil {
			return nil, valueErr(err.Error())
		}
		return r, nil

	case ValueInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, valueErr("not an integer")
		}
		return Integer(n), nil

	case ValueFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, valueErr("not a float")
		}
		return Float(f), nil

	case ValueBoolean:
		switch strings.ToUpper(raw) {
		case "TRUE":
			return Boolean(true), nil
		case "FALSE":
			return Boolean(false), nil
		}
		return nil, valueErr("expected TRUE or FALSE")

	case ValueURI, ValueCalAddress:
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" {
			return nil, valueErr("not a scheme:rest URI")
		}
		if kind == ValueCalAddress {
			return CalAddress(raw), nil
		}
		return URI(raw), nil

	case ValueUTCOffset:
		off, err := parseUTCOffset(raw)
		if err != nil {
			return nil, valueErr(err.Error())
		}
		return off, nil

	case ValueBinary:
		data, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, valueErr("invalid base64")
		}
		return Binary(data), nil

	case ValueGeo:
		g, err := parseGeo(raw)
		if err != nil {
			return nil, valueErr(err.Error())
		}
		return g, nil
	}

	return Raw(raw), nil
}

// parseDate parses a DATE value, rejecting dates that do not exist on
// the calendar.
func parseDate(raw string) (Date, error) {
	if len(raw) != len(dateLayout) {
		return Date{}, fmt.Errorf("expected YYYYMMDD")
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("expected YYYYMMDD")
	}
	return Date{Time: t}, nil
}

// parseDateTime parses a DATE-TIME value. A Z suffix marks UTC, a TZID
// parameter is carried through unresolved, and a value with neither is
// floating.
func parseDateTime(raw, tzid string) (DateTime, error) {
	if strings.HasSuffix(raw, "Z") || strings.HasSuffix(raw, "z") {
		t, err := time.Parse(dateTimeLayoutUTC, strings.ToUpper(raw))
		if err != nil {
			return DateTime{}, fmt.Errorf("expected YYYYMMDDTHHMMSSZ")
		}
		return DateTime{Time: t, UTC: true}, nil
	}

	t, err := time.Parse(dateTimeLayoutLocalized, raw)
	if err != nil {
		return DateTime{}, fmt.Errorf("expected YYYYMMDDTHHMMSS")
	}
	return DateTime{Time: t, TZID: tzid}, nil
}

// parseDuration parses a DURATION value:
//
//	dur-value = (["+"] / "-") "P" (dur-date / dur-time / dur-week)
func parseDuration(raw string) (Duration, error) {
	var d Duration
	s := raw

	switch {
	case strings.HasPrefix(s, "-"):
		d.Negative = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	if !strings.HasPrefix(s, "P") {
		return Duration{}, fmt.Errorf("expected P designator")
	}
	s = s[1:]

	inTime := false
	seen := false
	for len(s) > 0 {
		if s[0] == 'T' {
			inTime = true
			s = s[1:]
			continue
		}

		i := 0
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		if i == 0 || i == len(s) {
			return Duration{}, fmt.Errorf("expected a digit sequence with a unit")
		}
		n, err := strconv.Atoi(s[:i])
		if err != nil {
			return Duration{}, fmt.Errorf("number overflows")
		}

		unit := s[i]
		s = s[i+1:]
		seen = true

		switch {
		case unit == 'W' && !inTime:
			d.Weeks = n
		case unit == 'D' && !inTime:
			d.Days = n
		case unit == 'H' && inTime:
			d.Hours = n
		case unit == 'M' && inTime:
			d.Minutes = n
		case unit == 'S' && inTime:
			d.Seconds = n
		default:
			return Duration{}, fmt.Errorf("unexpected unit %q", unit)
		}
	}

	if !seen {
		return Duration{}, fmt.Errorf("empty duration")
	}
	return d, nil
}

// parsePeriod parses a PERIOD value: start "/" (end / duration).
func parsePeriod(raw, tzid string) (Period, error) {
	first, second, found := strings.Cut(raw, "/")
	if !found {
		return Period{}, fmt.Errorf("expected start/end or start/duration")
	}

	start, err := parseDateTime(first, tzid)
	if err != nil {
		return Period{}, err
	}

	if strings.HasPrefix(second, "P") || strings.HasPrefix(second, "+P") || strings.HasPrefix(second, "-P") {
		dur, err := parseDuration(second)
		if err != nil {
			return Period{}, err
		}
		return Period{Start: start, Duration: &dur}, nil
	}

	end, err := parseDateTime(second, tzid)
	if err != nil {
		return Period{}, err
	}
	return Period{Start: start, End: &end}, nil
}

// parseUTCOffset parses a UTC-OFFSET value: (+/-)HHMM[SS].
func parseUTCOffset(raw string) (UTCOffset, error) {
	if len(raw) != 5 && len(raw) != 7 {
		return 0, fmt.Errorf("expected +HHMM or +HHMMSS")
	}

	neg := false
	switch raw[0] {
	case '+':
	case '-':
		neg = true
	default:
		return 0, fmt.Errorf("expected a leading sign")
	}

	digits := raw[1:]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, fmt.Errorf("expected digits after the sign")
		}
	}

	h, _ := strconv.Atoi(digits[:2])
	m, _ := strconv.Atoi(digits[2:4])
	s := 0
	if len(digits) == 6 {
		s, _ = strconv.Atoi(digits[4:6])
	}

	if m > 59 || s > 59 {
		return 0, fmt.Errorf("minute or second out of range")
	}

	sec := h*3600 + m*60 + s
	if neg {
		if sec == 0 {
			return 0, fmt.Errorf("-0000 is not a valid offset")
		}
		sec = -sec
	}
	return UTCOffset(sec), nil
}

// parseGeo parses the latitude;longitude pair of the GEO property.
func parseGeo(raw string) (Geo, error) {
	latRaw, lonRaw, found := strings.Cut(raw, ";")
	if !found {
		return Geo{}, fmt.Errorf("expected lat;lon")
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return Geo{}, fmt.Errorf("latitude is not a float")
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return Geo{}, fmt.Errorf("longitude is not a float")
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return Geo{}, fmt.Errorf("coordinates out of range")
	}
	return Geo{Lat: lat, Lon: lon}, nil
}
