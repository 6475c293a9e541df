package ical

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/teambition/rrule-go"
)

// Frequency is the FREQ part of a recurrence rule.
type Frequency int

const (
	Secondly Frequency = iota
	Minutely
	Hourly
	Daily
	Weekly
	Monthly
	Yearly
)

var frequencyNames = map[Frequency]string{
	Secondly: "SECONDLY",
	Minutely: "MINUTELY",
	Hourly:   "HOURLY",
	Daily:    "DAILY",
	Weekly:   "WEEKLY",
	Monthly:  "MONTHLY",
	Yearly:   "YEARLY",
}

func (f Frequency) String() string {
	if name, ok := frequencyNames[f]; ok {
		return name
	}
	return "UNKNOWN"
}

func parseFrequency(raw string) (Frequency, error) {
	for f, name := range frequencyNames {
		if strings.EqualFold(raw, name) {
			return f, nil
		}
	}
	return 0, fmt.Errorf("unknown frequency %q", raw)
}

// Weekday is a two-letter weekday code used by BYDAY and WKST.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayCodes = [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

func (d Weekday) String() string {
	if d >= Sunday && d <= Saturday {
		return weekdayCodes[d]
	}
	return "??"
}

func parseWeekday(raw string) (Weekday, error) {
	for i, code := range weekdayCodes {
		if strings.EqualFold(raw, code) {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", raw)
}

// A WeekdayNum is one BYDAY entry: a weekday with an optional signed
// ordinal, e.g. 2MO (second Monday) or -1SU (last Sunday). An ordinal of
// zero means no ordinal was given.
type WeekdayNum struct {
	Ord int
	Day Weekday
}

func (w WeekdayNum) String() string {
	if w.Ord != 0 {
		return strconv.Itoa(w.Ord) + w.Day.String()
	}
	return w.Day.String()
}

func parseWeekdayNum(raw string) (WeekdayNum, error) {
	i := 0
	if i < len(raw) && (raw[i] == '+' || raw[i] == '-') {
		i++
	}
	for i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
		i++
	}

	var w WeekdayNum
	if i > 0 {
		ord, err := strconv.Atoi(raw[:i])
		if err != nil {
			return WeekdayNum{}, fmt.Errorf("bad ordinal in %q", raw)
		}
		if ord == 0 || ord < -53 || ord > 53 {
			return WeekdayNum{}, fmt.Errorf("ordinal out of range in %q", raw)
		}
		w.Ord = ord
	}

	day, err := parseWeekday(raw[i:])
	if err != nil {
		return WeekdayNum{}, err
	}
	w.Day = day
	return w, nil
}

// A RecurPart preserves a rule part the parser does not recognize.
type RecurPart struct {
	Name  string
	Value string
}

// Recur is a parsed RECUR value. Rule parts outside the RFC 5545 set are
// kept in Extra in their original order instead of being rejected.
type Recur struct {
	Freq       Frequency
	Until      *DateTime
	UntilDate  *Date
	Count      int
	Interval   int
	BySecond   []int
	ByMinute   []int
	ByHour     []int
	ByDay      []WeekdayNum
	ByMonthDay []int
	ByYearDay  []int
	ByWeekNo   []int
	ByMonth    []int
	BySetPos   []int
	WeekStart  *Weekday
	Extra      []RecurPart
}

func (v *Recur) ValueKind() ValueKind { return ValueRecur }

func (v *Recur) encode() string {
	var b strings.Builder
	fmt.Fprintf(&b, "FREQ=%s", v.Freq)

	if v.Until != nil {
		fmt.Fprintf(&b, ";UNTIL=%s", v.Until.encode())
	}
	if v.UntilDate != nil {
		fmt.Fprintf(&b, ";UNTIL=%s", v.UntilDate.encode())
	}
	if v.Count > 0 {
		fmt.Fprintf(&b, ";COUNT=%d", v.Count)
	}
	if v.Interval > 0 {
		fmt.Fprintf(&b, ";INTERVAL=%d", v.Interval)
	}

	encodeIntList(&b, "BYSECOND", v.BySecond)
	encodeIntList(&b, "BYMINUTE", v.ByMinute)
	encodeIntList(&b, "BYHOUR", v.ByHour)

	if len(v.ByDay) > 0 {
		parts := make([]string, len(v.ByDay))
		for i, wd := range v.ByDay {
			parts[i] = wd.String()
		}
		fmt.Fprintf(&b, ";BYDAY=%s", strings.Join(parts, ","))
	}

	encodeIntList(&b, "BYMONTHDAY", v.ByMonthDay)
	encodeIntList(&b, "BYYEARDAY", v.ByYearDay)
	encodeIntList(&b, "BYWEEKNO", v.ByWeekNo)
	encodeIntList(&b, "BYMONTH", v.ByMonth)
	encodeIntList(&b, "BYSETPOS", v.BySetPos)

	if v.WeekStart != nil {
		fmt.Fprintf(&b, ";WKST=%s", *v.WeekStart)
	}
	for _, part := range v.Extra {
		fmt.Fprintf(&b, ";%s=%s", part.Name, part.Value)
	}

	return b.String()
}

func encodeIntList(b *strings.Builder, name string, list []int) {
	if len(list) == 0 {
		return
	}
	parts := make([]string, len(list))
	for i, n := range list {
		parts[i] = strconv.Itoa(n)
	}
	fmt.Fprintf(b, ";%s=%s", name, strings.Join(parts, ","))
}

// parseRecur parses a RECUR value: semicolon-separated key=value rule
// parts with a mandatory FREQ.
func parseRecur(raw string) (*Recur, error) {
	r := &Recur{}
	hasFreq := false

	for _, part := range strings.Split(raw, ";") {
		name, value, found := strings.Cut(part, "=")
		if !found || name == "" {
			return nil, fmt.Errorf("rule part %q is not key=value", part)
		}
		name = strings.ToUpper(name)

		var err error
		switch name {
		case "FREQ":
			r.Freq, err = parseFrequency(value)
			hasFreq = err == nil
		case "UNTIL":
			if len(value) == len(dateLayout) {
				var d Date
				d, err = parseDate(value)
				r.UntilDate = &d
			} else {
				var dt DateTime
				dt, err = parseDateTime(value, "")
				r.Until = &dt
			}
		case "COUNT":
			r.Count, err = parsePositive(value)
		case "INTERVAL":
			r.Interval, err = parsePositive(value)
		case "BYSECOND":
			r.BySecond, err = parseIntList(value, 0, 60)
		case "BYMINUTE":
			r.ByMinute, err = parseIntList(value, 0, 59)
		case "BYHOUR":
			r.ByHour, err = parseIntList(value, 0, 23)
		case "BYDAY":
			for _, entry := range strings.Split(value, ",") {
				var wd WeekdayNum
				wd, err = parseWeekdayNum(entry)
				if err != nil {
					break
				}
				r.ByDay = append(r.ByDay, wd)
			}
		case "BYMONTHDAY":
			r.ByMonthDay, err = parseSignedIntList(value, 31)
		case "BYYEARDAY":
			r.ByYearDay, err = parseSignedIntList(value, 366)
		case "BYWEEKNO":
			r.ByWeekNo, err = parseSignedIntList(value, 53)
		case "BYMONTH":
			r.ByMonth, err = parseIntList(value, 1, 12)
		case "BYSETPOS":
			r.BySetPos, err = parseSignedIntList(value, 366)
		case "WKST":
			var day Weekday
			day, err = parseWeekday(value)
			r.WeekStart = &day
		default:
			r.Extra = append(r.Extra, RecurPart{Name: name, Value: value})
		}

		if err != nil {
			return nil, err
		}
	}

	if !hasFreq {
		return nil, fmt.Errorf("missing FREQ rule part")
	}
	if r.Count > 0 && (r.Until != nil || r.UntilDate != nil) {
		return nil, fmt.Errorf("COUNT and UNTIL are mutually exclusive")
	}
	return r, nil
}

func parsePositive(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%q is not a positive integer", raw)
	}
	return n, nil
}

func parseIntList(raw string, min, max int) ([]int, error) {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(part)
		if err != nil || n < min || n > max {
			return nil, fmt.Errorf("%q is out of range [%d, %d]", part, min, max)
		}
		out = append(out, n)
	}
	return out, nil
}

// parseSignedIntList parses a list of non-zero integers in [-limit,
// limit], the form shared by BYMONTHDAY, BYYEARDAY, BYWEEKNO and
// BYSETPOS.
func parseSignedIntList(raw string, limit int) ([]int, error) {
	var out []int
	for _, part := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(part)
		if err != nil || n == 0 || n < -limit || n > limit {
			return nil, fmt.Errorf("%q is out of range [-%d, %d] \\ {0}", part, limit, limit)
		}
		out = append(out, n)
	}
	return out, nil
}

var rruleFrequencies = map[Frequency]rrule.Frequency{
	Secondly: rrule.SECONDLY,
	Minutely: rrule.MINUTELY,
	Hourly:   rrule.HOURLY,
	Daily:    rrule.DAILY,
	Weekly:   rrule.WEEKLY,
	Monthly:  rrule.MONTHLY,
	Yearly:   rrule.YEARLY,
}

var rruleWeekdays = map[Weekday]rrule.Weekday{
	Sunday:    rrule.SU,
	Monday:    rrule.MO,
	Tuesday:   rrule.TU,
	Wednesday: rrule.WE,
	Thursday:  rrule.TH,
	Friday:    rrule.FR,
	Saturday:  rrule.SA,
}

// ROption converts the rule into a github.com/teambition/rrule-go option
// so a caller can expand it into concrete dates. Expansion itself is out
// of scope here; unknown Extra parts are not representable and are
// dropped from the conversion.
func (v *Recur) ROption() (rrule.ROption, error) {
	opt := rrule.ROption{
		Freq:       rruleFrequencies[v.Freq],
		Count:      v.Count,
		Interval:   v.Interval,
		Bysecond:   v.BySecond,
		Byminute:   v.ByMinute,
		Byhour:     v.ByHour,
		Bymonthday: v.ByMonthDay,
		Byyearday:  v.ByYearDay,
		Byweekno:   v.ByWeekNo,
		Bymonth:    v.ByMonth,
		Bysetpos:   v.BySetPos,
	}

	if v.Until != nil {
		if v.Until.Floating() || v.Until.TZID != "" {
			return rrule.ROption{}, fmt.Errorf("ical: UNTIL must be in UTC to expand")
		}
		opt.Until = v.Until.Time
	}
	if v.UntilDate != nil {
		opt.Until = v.UntilDate.Time
	}

	for _, wd := range v.ByDay {
		day, ok := rruleWeekdays[wd.Day]
		if !ok {
			return rrule.ROption{}, fmt.Errorf("ical: unmapped weekday %v", wd.Day)
		}
		if wd.Ord != 0 {
			day = day.Nth(wd.Ord)
		}
		opt.Byweekday = append(opt.Byweekday, day)
	}

	if v.WeekStart != nil {
		opt.Wkst = rruleWeekdays[*v.WeekStart]
	} else {
		opt.Wkst = rrule.MO
	}

	return opt, nil
}
