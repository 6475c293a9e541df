package ical

import "strings"

// Cardinality restricts how often a property may appear on one
// component.
type Cardinality int

const (
	Required Cardinality = iota // exactly once
	OptionalSingle              // at most once
	OptionalMultiple            // any number of times
)

// A propRule describes one (component kind, property name) pair: the
// value type the property carries, the cardinality and the parameter
// names the property admits. A nil Params list admits any parameter.
type propRule struct {
	Value  ValueKind
	Card   Cardinality
	Params []string
}

var (
	dtParams       = []string{"VALUE", "TZID"}
	textParams     = []string{"ALTREP", "LANGUAGE"}
	attendeeParams = []string{
		"CUTYPE", "MEMBER", "ROLE", "PARTSTAT", "RSVP",
		"DELEGATED-TO", "DELEGATED-FROM", "SENT-BY", "CN", "DIR", "LANGUAGE",
	}
	organizerParams = []string{"CN", "DIR", "SENT-BY", "LANGUAGE"}
	attachParams    = []string{"FMTTYPE", "VALUE", "ENCODING"}
)

// schema is the static property table, keyed by component kind then by
// canonical property name. Names absent from the table fall back to a
// raw-text extension rule.
var schema = map[ComponentKind]map[string]propRule{
	KindCalendar: {
		"VERSION":  {ValueText, Required, nil},
		"PRODID":   {ValueText, Required, nil},
		"CALSCALE": {ValueText, OptionalSingle, nil},
		"METHOD":   {ValueText, OptionalSingle, nil},
	},

	KindEvent: {
		"UID":            {ValueText, Required, nil},
		"DTSTAMP":        {ValueDateTime, Required, dtParams},
		"DTSTART":        {ValueDateTime, OptionalSingle, dtParams},
		"DTEND":          {ValueDateTime, OptionalSingle, dtParams},
		"DURATION":       {ValueDuration, OptionalSingle, nil},
		"SUMMARY":        {ValueText, OptionalSingle, textParams},
		"DESCRIPTION":    {ValueText, OptionalSingle, textParams},
		"LOCATION":       {ValueText, OptionalSingle, textParams},
		"CLASS":          {ValueText, OptionalSingle, nil},
		"STATUS":         {ValueText, OptionalSingle, nil},
		"TRANSP":         {ValueText, OptionalSingle, nil},
		"CREATED":        {ValueDateTime, OptionalSingle, dtParams},
		"LAST-MODIFIED":  {ValueDateTime, OptionalSingle, dtParams},
		"RECURRENCE-ID":  {ValueDateTime, OptionalSingle, append([]string{"RANGE"}, dtParams...)},
		"GEO":            {ValueGeo, OptionalSingle, nil},
		"ORGANIZER":      {ValueCalAddress, OptionalSingle, organizerParams},
		"PRIORITY":       {ValueInteger, OptionalSingle, nil},
		"SEQUENCE":       {ValueInteger, OptionalSingle, nil},
		"URL":            {ValueURI, OptionalSingle, nil},
		"RRULE":          {ValueRecur, OptionalSingle, nil},
		"ATTACH":         {ValueURI, OptionalMultiple, attachParams},
		"ATTENDEE":       {ValueCalAddress, OptionalMultiple, attendeeParams},
		"CATEGORIES":     {ValueTextList, OptionalMultiple, textParams},
		"COMMENT":        {ValueText, OptionalMultiple, textParams},
		"CONTACT":        {ValueText, OptionalMultiple, textParams},
		"EXDATE":         {ValueDateTimeList, OptionalMultiple, dtParams},
		"RDATE":          {ValueDateTimeList, OptionalMultiple, dtParams},
		"RELATED-TO":     {ValueText, OptionalMultiple, []string{"RELTYPE"}},
		"RESOURCES":      {ValueTextList, OptionalMultiple, textParams},
		"REQUEST-STATUS": {ValueText, OptionalMultiple, []string{"LANGUAGE"}},
	},

	KindTodo: {
		"UID":              {ValueText, Required, nil},
		"DTSTAMP":          {ValueDateTime, Required, dtParams},
		"DTSTART":          {ValueDateTime, OptionalSingle, dtParams},
		"DUE":              {ValueDateTime, OptionalSingle, dtParams},
		"DURATION":         {ValueDuration, OptionalSingle, nil},
		"COMPLETED":        {ValueDateTime, OptionalSingle, dtParams},
		"PERCENT-COMPLETE": {ValueInteger, OptionalSingle, nil},
		"SUMMARY":          {ValueText, OptionalSingle, textParams},
		"DESCRIPTION":      {ValueText, OptionalSingle, textParams},
		"LOCATION":         {ValueText, OptionalSingle, textParams},
		"CLASS":            {ValueText, OptionalSingle, nil},
		"STATUS":           {ValueText, OptionalSingle, nil},
		"CREATED":          {ValueDateTime, OptionalSingle, dtParams},
		"LAST-MODIFIED":    {ValueDateTime, OptionalSingle, dtParams},
		"RECURRENCE-ID":    {ValueDateTime, OptionalSingle, append([]string{"RANGE"}, dtParams...)},
		"GEO":              {ValueGeo, OptionalSingle, nil},
		"ORGANIZER":        {ValueCalAddress, OptionalSingle, organizerParams},
		"PRIORITY":         {ValueInteger, OptionalSingle, nil},
		"SEQUENCE":         {ValueInteger, OptionalSingle, nil},
		"URL":              {ValueURI, OptionalSingle, nil},
		"RRULE":            {ValueRecur, OptionalSingle, nil},
		"ATTACH":           {ValueURI, OptionalMultiple, attachParams},
		"ATTENDEE":         {ValueCalAddress, OptionalMultiple, attendeeParams},
		"CATEGORIES":       {ValueTextList, OptionalMultiple, textParams},
		"COMMENT":          {ValueText, OptionalMultiple, textParams},
		"CONTACT":          {ValueText, OptionalMultiple, textParams},
		"EXDATE":           {ValueDateTimeList, OptionalMultiple, dtParams},
		"RDATE":            {ValueDateTimeList, OptionalMultiple, dtParams},
		"RELATED-TO":       {ValueText, OptionalMultiple, []string{"RELTYPE"}},
		"RESOURCES":        {ValueTextList, OptionalMultiple, textParams},
		"REQUEST-STATUS":   {ValueText, OptionalMultiple, []string{"LANGUAGE"}},
	},

	KindJournal: {
		"UID":           {ValueText, Required, nil},
		"DTSTAMP":       {ValueDateTime, Required, dtParams},
		"DTSTART":       {ValueDateTime, OptionalSingle, dtParams},
		"SUMMARY":       {ValueText, OptionalSingle, textParams},
		"CLASS":         {ValueText, OptionalSingle, nil},
		"STATUS":        {ValueText, OptionalSingle, nil},
		"CREATED":       {ValueDateTime, OptionalSingle, dtParams},
		"LAST-MODIFIED": {ValueDateTime, OptionalSingle, dtParams},
		"RECURRENCE-ID": {ValueDateTime, OptionalSingle, append([]string{"RANGE"}, dtParams...)},
		"ORGANIZER":     {ValueCalAddress, OptionalSingle, organizerParams},
		"SEQUENCE":      {ValueInteger, OptionalSingle, nil},
		"URL":           {ValueURI, OptionalSingle, nil},
		"RRULE":         {ValueRecur, OptionalSingle, nil},
		"DESCRIPTION":   {ValueText, OptionalMultiple, textParams},
		"ATTACH":        {ValueURI, OptionalMultiple, attachParams},
		"ATTENDEE":      {ValueCalAddress, OptionalMultiple, attendeeParams},
		"CATEGORIES":    {ValueTextList, OptionalMultiple, textParams},
		"COMMENT":       {ValueText, OptionalMultiple, textParams},
		"CONTACT":       {ValueText, OptionalMultiple, textParams},
		"EXDATE":        {ValueDateTimeList, OptionalMultiple, dtParams},
		"RDATE":         {ValueDateTimeList, OptionalMultiple, dtParams},
		"RELATED-TO":    {ValueText, OptionalMultiple, []string{"RELTYPE"}},
	},

	KindFreeBusy: {
		"UID":       {ValueText, Required, nil},
		"DTSTAMP":   {ValueDateTime, Required, dtParams},
		"DTSTART":   {ValueDateTime, OptionalSingle, dtParams},
		"DTEND":     {ValueDateTime, OptionalSingle, dtParams},
		"CONTACT":   {ValueText, OptionalSingle, textParams},
		"ORGANIZER": {ValueCalAddress, OptionalSingle, organizerParams},
		"URL":       {ValueURI, OptionalSingle, nil},
		"ATTENDEE":  {ValueCalAddress, OptionalMultiple, attendeeParams},
		"COMMENT":   {ValueText, OptionalMultiple, textParams},
		"FREEBUSY":  {ValuePeriodList, OptionalMultiple, []string{"FBTYPE"}},
	},

	KindTimezone: {
		"TZID":          {ValueText, Required, nil},
		"LAST-MODIFIED": {ValueDateTime, OptionalSingle, dtParams},
		"TZURL":         {ValueURI, OptionalSingle, nil},
	},

	KindStandard: {
		"DTSTART":      {ValueDateTime, Required, dtParams},
		"TZOFFSETFROM": {ValueUTCOffset, Required, nil},
		"TZOFFSETTO":   {ValueUTCOffset, Required, nil},
		"RRULE":        {ValueRecur, OptionalSingle, nil},
		"COMMENT":      {ValueText, OptionalMultiple, textParams},
		"RDATE":        {ValueDateTimeList, OptionalMultiple, dtParams},
		"TZNAME":       {ValueText, OptionalMultiple, []string{"LANGUAGE"}},
	},

	KindAlarm: {
		"ACTION":      {ValueText, Required, nil},
		"TRIGGER":     {ValueDuration, Required, []string{"VALUE", "RELATED"}},
		"DURATION":    {ValueDuration, OptionalSingle, nil},
		"REPEAT":      {ValueInteger, OptionalSingle, nil},
		"DESCRIPTION": {ValueText, OptionalSingle, textParams},
		"SUMMARY":     {ValueText, OptionalSingle, textParams},
		"ATTACH":      {ValueURI, OptionalMultiple, attachParams},
		"ATTENDEE":    {ValueCalAddress, OptionalMultiple, attendeeParams},
	},
}

func init() {
	// STANDARD and DAYLIGHT observances share one rule set.
	schema[KindDaylight] = schema[KindStandard]
}

// extensionRule is the fallback for X- names and IANA names without a
// table entry: raw text, any number of times, any parameters.
var extensionRule = propRule{Value: ValueRaw, Card: OptionalMultiple}

// lookupRule resolves the rule for a property on a component of the
// given kind. The second return value reports whether the property is
// part of the schema; extension properties return the fallback rule.
func lookupRule(kind ComponentKind, name string) (propRule, bool) {
	if rules, ok := schema[kind]; ok {
		if rule, ok := rules[name]; ok {
			return rule, true
		}
	}
	return extensionRule, false
}

// valueOverrides maps the VALUE parameter to the kind it selects.
var valueOverrides = map[string]ValueKind{
	"TEXT":        ValueText,
	"DATE":        ValueDate,
	"DATE-TIME":   ValueDateTime,
	"DURATION":    ValueDuration,
	"PERIOD":      ValuePeriod,
	"RECUR":       ValueRecur,
	"INTEGER":     ValueInteger,
	"FLOAT":       ValueFloat,
	"BOOLEAN":     ValueBoolean,
	"URI":         ValueURI,
	"CAL-ADDRESS": ValueCalAddress,
	"UTC-OFFSET":  ValueUTCOffset,
	"BINARY":      ValueBinary,
}

// resolveValueKind applies the property's VALUE parameter on top of the
// schema default. List-valued defaults keep their list shape when the
// override switches the element type, e.g. EXDATE;VALUE=DATE.
func resolveValueKind(rule propRule, prop *Property) ValueKind {
	override, ok := valueOverrides[strings.ToUpper(prop.ParamValue("VALUE"))]
	if !ok {
		return rule.Value
	}

	switch rule.Value {
	case ValueDateTimeList, ValueDateList, ValuePeriodList:
		switch override {
		case ValueDate:
			return ValueDateList
		case ValueDateTime:
			return ValueDateTimeList
		case ValuePeriod:
			return ValuePeriodList
		}
	}

	return override
}
