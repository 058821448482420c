package dashboard

import (
	"fmt"
	"math"
	"time"
)

const (
	minTrendMonths = 6
	maxTrendMonths = 18
)

// Deriver holds the knobs used when deriving dashboard structures.
type Deriver struct {
	Parser DateParser
	Rules  []ClassificationRule
	Now    func() time.Time

	// Currency is used when the analysis names none.
	Currency string
}

// NewDeriver returns a Deriver using order for ambiguous dates.
func NewDeriver(order DateOrder) *Deriver {
	return &Deriver{
		Parser:   DateParser{Order: order},
		Rules:    ClassificationRules,
		Now:      time.Now,
		Currency: DefaultCurrency,
	}
}

var defaultDeriver = NewDeriver(MonthFirst)

// BuildTrend buckets discrepancy amounts by month and category for the
// window ending at now, using the default parser and rules.
func BuildTrend(ds []Discrepancy, now time.Time) []MonthBucket {
	return defaultDeriver.buildTrend(ds, now)
}

// BuildTrend buckets ds for the window ending at d's current time.
func (d *Deriver) BuildTrend(ds []Discrepancy) []MonthBucket {
	return d.buildTrend(ds, d.now())
}

func (d *Deriver) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// DiscrepancyDate is the invoice date of a discrepancy, falling back to the
// first evidence entry carrying a parseable invoice date.
func (d *Deriver) DiscrepancyDate(disc Discrepancy) (time.Time, bool) {
	if t, ok := d.Parser.Parse(disc.InvoiceDate); ok {
		return t, true
	}
	for _, ev := range disc.Evidence {
		if ev.InvoiceDate == "" {
			continue
		}
		if t, ok := d.Parser.Parse(ev.InvoiceDate); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

func (d *Deriver) buildTrend(ds []Discrepancy, now time.Time) []MonthBucket {
	type dated struct {
		at time.Time
		ok bool
	}
	dates := make([]dated, len(ds))
	earliest := now
	for i, disc := range ds {
		at, ok := d.DiscrepancyDate(disc)
		dates[i] = dated{at: at, ok: ok}
		if ok && at.Before(earliest) {
			earliest = at
		}
	}

	monthsDiff := (now.Year()-earliest.Year())*12 + int(now.Month()) - int(earliest.Month())
	count := monthsDiff + 1
	if count < minTrendMonths {
		count = minTrendMonths
	}
	if count > maxTrendMonths {
		count = maxTrendMonths
	}

	start := time.Date(now.Year(), now.Month()-time.Month(count-1), 1, 0, 0, 0, 0, now.Location())
	buckets := make([]MonthBucket, count)
	index := make(map[string]int, count)
	for i := range buckets {
		month := start.AddDate(0, i, 0)
		key := monthKey(month)
		buckets[i] = MonthBucket{Key: key, Month: month.Format("Jan 06")}
		index[key] = i
	}

	rules := d.Rules
	if rules == nil {
		rules = ClassificationRules
	}
	last := len(buckets) - 1
	for i, disc := range ds {
		target := last
		if dates[i].ok {
			if pos, found := index[monthKey(dates[i].at)]; found {
				target = pos
			}
		}
		buckets[target].add(classifyWith(rules, disc.Issue), roundedValue(disc.Value))
	}
	return buckets
}

func monthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

func roundedValue(v *float64) int64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return int64(math.Round(*v))
}
