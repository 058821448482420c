package dashboard

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateOrder decides how an ambiguous numeric date like 03/05/2024 is read.
// The other ordering is still tried when the preferred one is impossible.
type DateOrder int

const (
	MonthFirst DateOrder = iota
	DayFirst
)

// ParseDateOrder maps config values ("day_first", "dmy", ...) to a DateOrder.
// Anything unrecognized is MonthFirst.
func ParseDateOrder(raw string) DateOrder {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "day_first", "day-first", "dayfirst", "dmy":
		return DayFirst
	default:
		return MonthFirst
	}
}

func (o DateOrder) String() string {
	if o == DayFirst {
		return "day_first"
	}
	return "month_first"
}

var (
	isoDatePattern   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	monthNamePattern = regexp.MustCompile(`([A-Za-z]+)\s+(\d{1,2}),\s*(\d{4})`)
	ordinalPattern   = regexp.MustCompile(`(\d+)(st|nd|rd|th)`)
	digitsPattern    = regexp.MustCompile(`^\d+$`)
)

// Layouts tried for free-form dates. Purely numeric day/month forms are left
// to the ordered numeric pass so the DateOrder hint applies to them.
var freeformLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01",
	"2006/01/02",
	"2006.01.02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	"Mon Jan 2 2006",
	"Mon, Jan 2, 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"Jan 2006",
	"January 2006",
}

// DateParser is a best-effort parser for the inconsistent invoice date
// formats found in billing exports.
type DateParser struct {
	Order    DateOrder
	Location *time.Location
}

var defaultDateParser = DateParser{Order: MonthFirst}

// ParseInvoiceDate parses value with the default month-first parser in local
// time. The boolean is false when the value is not a recognizable date.
func ParseInvoiceDate(value string) (time.Time, bool) {
	return defaultDateParser.Parse(value)
}

// Parse tries, in order: strict YYYY-MM-DD, free-form layouts, numeric
// day/month triples, and month names with ordinal suffixes.
func (p DateParser) Parse(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	loc := p.location()

	if m := isoDatePattern.FindStringSubmatch(trimmed); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
	}

	if t, ok := parseFreeform(trimmed, loc); ok {
		return t, true
	}

	if t, ok := p.parseNumeric(trimmed, loc); ok {
		return t, true
	}

	stripped := ordinalPattern.ReplaceAllString(trimmed, "$1")
	if monthNamePattern.MatchString(stripped) {
		if t, ok := parseFreeform(stripped, loc); ok {
			return t, true
		}
		if m := monthNamePattern.FindString(stripped); m != "" {
			if t, ok := parseFreeform(m, loc); ok {
				return t, true
			}
		}
	}

	return time.Time{}, false
}

func (p DateParser) location() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return time.Local
}

func parseFreeform(value string, loc *time.Location) (time.Time, bool) {
	for _, layout := range freeformLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (p DateParser) parseNumeric(value string, loc *time.Location) (time.Time, bool) {
	normalized := strings.NewReplacer(".", "/", "-", "/").Replace(value)
	parts := strings.Split(normalized, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	nums := make([]int, 3)
	for i, part := range parts {
		if !digitsPattern.MatchString(part) {
			return time.Time{}, false
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return time.Time{}, false
		}
		nums[i] = n
	}
	first, second, year := nums[0], nums[1], nums[2]
	if year < 100 {
		year += 2000
	}

	candidates := [2][2]int{{first, second}, {second, first}}
	if p.Order == DayFirst {
		candidates = [2][2]int{{second, first}, {first, second}}
	}
	for _, c := range candidates {
		month, day := c[0], c[1]
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			// Days past the end of the month roll over, e.g. 02/31 is 2 March.
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
		}
	}
	return time.Time{}, false
}
