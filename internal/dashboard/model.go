package dashboard

import "contractguard-web/internal/auditapi"

// Wire types consumed from the audit service.
type (
	AnalysisSummary   = auditapi.AnalysisSummary
	Discrepancy       = auditapi.Discrepancy
	Evidence          = auditapi.Evidence
	JobMetrics        = auditapi.JobMetrics
	BillingSummary    = auditapi.BillingSummary
	ExtractedDocument = auditapi.ExtractedDocument
	Bounds            = auditapi.Bounds
	BillingFile       = auditapi.BillingFile
)

// MonthBucket is one month of the leakage trend chart.
type MonthBucket struct {
	Key        string `json:"key"`
	Month      string `json:"month"`
	Escalators int64  `json:"escalators"`
	Discounts  int64  `json:"discounts"`
	Renewals   int64  `json:"renewals"`
}

// Total is the leakage accumulated in the bucket across categories.
func (b MonthBucket) Total() int64 {
	return b.Escalators + b.Discounts + b.Renewals
}

// Risk levels.
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// VendorRisk is the bounded risk score for a loaded analysis.
type VendorRisk struct {
	Score            int     `json:"score"`
	Level            string  `json:"level"`
	Summary          string  `json:"summary"`
	DiscrepancyCount int     `json:"discrepancyCount"`
	Leakage          float64 `json:"leakage"`
	HighSeverity     int     `json:"highSeverity"`
}

// HighlightCard is one metric tile at the top of the dashboard.
type HighlightCard struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Delta string `json:"delta"`
	Trend string `json:"trend"`
}

// Alert is a render-ready discrepancy row.
type Alert struct {
	ID       string       `json:"id"`
	Customer string       `json:"customer"`
	Issue    string       `json:"issue"`
	Value    string       `json:"value"`
	Due      string       `json:"due"`
	Priority string       `json:"priority"`
	Evidence []Evidence   `json:"evidence,omitempty"`
	Raw      *Discrepancy `json:"raw,omitempty"`
}

// Stat is a labelled team statistic.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
