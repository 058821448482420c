package dashboard

import "strings"

// Category is the leakage series a discrepancy is charted under.
type Category int

const (
	Escalators Category = iota
	Discounts
	Renewals
)

func (c Category) String() string {
	switch c {
	case Discounts:
		return "discounts"
	case Renewals:
		return "renewals"
	default:
		return "escalators"
	}
}

// ClassificationRule maps an issue containing Keyword to Category.
type ClassificationRule struct {
	Keyword  string
	Category Category
}

// ClassificationRules are evaluated in order; the first match wins and
// unmatched issues fall back to Escalators.
var ClassificationRules = []ClassificationRule{
	{Keyword: "discount", Category: Discounts},
	{Keyword: "renewal", Category: Renewals},
}

// Classify returns the category for an issue description.
func Classify(issue string) Category {
	return classifyWith(ClassificationRules, issue)
}

func classifyWith(rules []ClassificationRule, issue string) Category {
	text := strings.ToLower(issue)
	for _, rule := range rules {
		if strings.Contains(text, strings.ToLower(rule.Keyword)) {
			return rule.Category
		}
	}
	return Escalators
}

func (b *MonthBucket) add(c Category, amount int64) {
	switch c {
	case Discounts:
		b.Discounts += amount
	case Renewals:
		b.Renewals += amount
	default:
		b.Escalators += amount
	}
}
