package dashboard

// Sample data shown before any job has been loaded.
var (
	DemoHighlights = []HighlightCard{
		{Label: "Recoverable revenue", Value: "$63,400", Delta: "+18% vs last audit", Trend: "↑ Increased"},
		{Label: "Active escalations", Value: "12 contracts", Delta: "5 due this week", Trend: "Action required"},
		{Label: "Automated audits", Value: "312", Delta: "90% coverage", Trend: "Coverage 100%"},
		{Label: "AI extractions", Value: "85% accuracy", Delta: "Low confidence: 6 items", Trend: "Review pending"},
		{Label: "Recovery in progress", Value: "$41,200", Delta: "Rebilling 8 customers", Trend: "On track"},
	}

	DemoTrend = []MonthBucket{
		{Key: "demo-01", Month: "Jan", Escalators: 18, Discounts: 12, Renewals: 9},
		{Key: "demo-02", Month: "Feb", Escalators: 21, Discounts: 14, Renewals: 10},
		{Key: "demo-03", Month: "Mar", Escalators: 26, Discounts: 13, Renewals: 12},
		{Key: "demo-04", Month: "Apr", Escalators: 22, Discounts: 11, Renewals: 8},
		{Key: "demo-05", Month: "May", Escalators: 31, Discounts: 15, Renewals: 14},
		{Key: "demo-06", Month: "Jun", Escalators: 33, Discounts: 18, Renewals: 16},
	}

	DemoAlerts = []Alert{
		{ID: "sample-acme", Customer: "Acme Cloud", Issue: "CPI uplift never posted", Value: "$18,400", Due: "Renewal in 5 days", Priority: "high"},
		{ID: "sample-brightops", Customer: "BrightOps", Issue: "Volume tier drift (SOW-11)", Value: "$9,800", Due: "Invoice pending", Priority: "medium"},
		{ID: "sample-northwind", Customer: "Northwind MSP", Issue: "Unbilled add-ons", Value: "$6,200", Due: "Flagged yesterday", Priority: "high"},
		{ID: "sample-ledgerstack", Customer: "LedgerStack", Issue: "Expired discount still applied", Value: "$3,450", Due: "Needs review", Priority: "low"},
	}

	DemoTeamStats = []Stat{
		{Label: "Discrepancies resolved", Value: "23"},
		{Label: "Recovered", Value: "$127K"},
		{Label: "Avg resolution time", Value: "2.3 days"},
	}
)

// Copies keep callers from mutating the shared samples.
func demoHighlights() []HighlightCard { return append([]HighlightCard(nil), DemoHighlights...) }
func demoTrend() []MonthBucket        { return append([]MonthBucket(nil), DemoTrend...) }
func demoAlerts() []Alert             { return append([]Alert(nil), DemoAlerts...) }
func demoTeamStats() []Stat           { return append([]Stat(nil), DemoTeamStats...) }
