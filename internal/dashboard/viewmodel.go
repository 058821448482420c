package dashboard

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	patternSummaryFallback = "LLM insights will appear here once a job completes."
	sampleDataNotice       = "Upload a contract + billing run to see live metrics here. Showing sample data until a job is provided."
)

// Input is everything the view-model is derived from. A nil Analysis means
// nothing has loaded yet.
type Input struct {
	JobID    string
	Analysis *AnalysisSummary
	Error    string
}

// ViewModel is the render-ready dashboard.
type ViewModel struct {
	JobID      string `json:"jobId,omitempty"`
	Status     string `json:"status,omitempty"`
	VendorName string `json:"vendorName,omitempty"`
	Demo       bool   `json:"demo"`
	Notice     string `json:"notice,omitempty"`
	Error      string `json:"error,omitempty"`
	Currency   string `json:"currency"`

	Highlights     []HighlightCard `json:"highlights"`
	Trend          []MonthBucket   `json:"trend"`
	Alerts         []Alert         `json:"alerts"`
	TeamStats      []Stat          `json:"teamStats"`
	VendorRisk     *VendorRisk     `json:"vendorRisk"`
	PatternSummary string          `json:"patternSummary"`
	EscalatorHits  float64         `json:"escalatorHits"`

	PrimaryDiscrepancy *Discrepancy        `json:"primaryDiscrepancy,omitempty"`
	BillingSummary     BillingSummary      `json:"billingSummary"`
	ClauseDistribution map[string]float64  `json:"clauseDistribution,omitempty"`
	Insights           []map[string]any    `json:"insights,omitempty"`
	Documents          []ExtractedDocument `json:"documents,omitempty"`
	BillingFiles       []BillingFile       `json:"billingFiles,omitempty"`
	BillingSources     []string            `json:"billingSources,omitempty"`
	ClauseHits         int                 `json:"clauseHits"`
	RecoverableAmount  float64             `json:"recoverableAmount"`
}

// Assemble derives the view-model with the default deriver.
func Assemble(in Input) ViewModel {
	return defaultDeriver.Assemble(in)
}

// Assemble recomputes every derived structure from in.
func (d *Deriver) Assemble(in Input) ViewModel {
	if in.Analysis == nil {
		vm := ViewModel{
			JobID:          in.JobID,
			Demo:           true,
			Error:          in.Error,
			Currency:       d.fallbackCurrency(),
			Highlights:     demoHighlights(),
			Trend:          demoTrend(),
			Alerts:         demoAlerts(),
			TeamStats:      demoTeamStats(),
			PatternSummary: patternSummaryFallback,
		}
		if in.JobID == "" {
			vm.Notice = sampleDataNotice
		}
		return vm
	}

	analysis := in.Analysis
	metrics := analysis.Job.Metrics
	currency := d.ContractCurrency(metrics)
	billing := BillingSummary{}
	if metrics.BillingSummary != nil {
		billing = *metrics.BillingSummary
	}
	ds := analysis.Discrepancies
	recoverable := metrics.RecoverableAmount

	vm := ViewModel{
		JobID:              firstNonEmpty(analysis.Job.Identifier(), in.JobID),
		Status:             analysis.Job.Status,
		VendorName:         analysis.Job.VendorName,
		Error:              in.Error,
		Currency:           currency,
		Highlights:         highlightCards(ds, billing, metrics, currency),
		Trend:              d.BuildTrend(ds),
		Alerts:             buildAlerts(ds, currency),
		TeamStats:          teamStats(billing, metrics.TotalClauses),
		VendorRisk:         ComputeRisk(true, ds, recoverable),
		PatternSummary:     firstNonEmpty(strings.TrimSpace(metrics.LLMSummary), patternSummaryFallback),
		EscalatorHits:      EscalatorHits(metrics.ClauseDistribution),
		BillingSummary:     billing,
		ClauseDistribution: metrics.ClauseDistribution,
		Insights:           metrics.LLMInsights,
		Documents:          metrics.Documents,
		BillingFiles:       metrics.BillingFiles,
		BillingSources:     billing.Sources,
		ClauseHits:         metrics.TotalClauses,
		RecoverableAmount:  recoverable,
	}
	if len(ds) > 0 {
		primary := ds[0]
		vm.PrimaryDiscrepancy = &primary
	}
	return vm
}

// ContractCurrency is the currency extracted from the contract rules, then
// the job's own currency, then the deriver default.
func (d *Deriver) ContractCurrency(m JobMetrics) string {
	if m.GPT4oRules != nil && strings.TrimSpace(m.GPT4oRules.Currency) != "" {
		return strings.TrimSpace(m.GPT4oRules.Currency)
	}
	if strings.TrimSpace(m.Currency) != "" {
		return strings.TrimSpace(m.Currency)
	}
	return d.fallbackCurrency()
}

func (d *Deriver) fallbackCurrency() string {
	if d.Currency != "" {
		return d.Currency
	}
	return DefaultCurrency
}

// EscalatorHits counts CPI uplift clauses, falling back to generic escalators.
func EscalatorHits(dist map[string]float64) float64 {
	if v, ok := dist["cpi_uplift"]; ok {
		return v
	}
	return dist["escalators"]
}

func highlightCards(ds []Discrepancy, billing BillingSummary, m JobMetrics, currency string) []HighlightCard {
	recoverable := FormatCurrency(m.RecoverableAmount, currency)
	customers := len(billing.Customers)

	issueNoun := "issues"
	if len(ds) == 1 {
		issueNoun = "issue"
	}
	escalationDelta := "All contracts compliant"
	if m.RecoverableAmount > 0 {
		escalationDelta = recoverable + " total leakage"
	}
	escalationTrend := "All clear"
	if len(ds) > 0 {
		escalationTrend = "Action required"
	}
	extractionDelta, extractionTrend := "LLM insights ready", "All reviewed"
	if n := len(m.LLMInsights); n > 0 {
		extractionDelta, extractionTrend = fmt.Sprintf("%d insights generated", n), "Review pending"
	}

	return []HighlightCard{
		{
			Label: "Recoverable revenue",
			Value: recoverable,
			Delta: fmt.Sprintf("%d invoices audited", billing.InvoiceCount),
			Trend: "+12% vs last audit",
		},
		{
			Label: "Active escalations",
			Value: fmt.Sprintf("%d %s", len(ds), issueNoun),
			Delta: escalationDelta,
			Trend: escalationTrend,
		},
		{
			Label: "Automated audits",
			Value: fmt.Sprintf("%d", billing.InvoiceCount),
			Delta: fmt.Sprintf("%d customers reconciled", customers),
			Trend: "Coverage 100%",
		},
		{
			Label: "AI extractions",
			Value: fmt.Sprintf("%d clauses", m.TotalClauses),
			Delta: extractionDelta,
			Trend: extractionTrend,
		},
		{
			Label: "Recovery in progress",
			Value: recoverable,
			Delta: fmt.Sprintf("%d customers rebilled", customers),
			Trend: "On track",
		},
	}
}

func buildAlerts(ds []Discrepancy, currency string) []Alert {
	if len(ds) == 0 {
		return []Alert{{
			ID:       "all-clear",
			Customer: "All clear",
			Issue:    "No discrepancies detected in this run.",
			Value:    "$0",
			Due:      "You're in great shape",
			Priority: "low",
		}}
	}
	alerts := make([]Alert, 0, len(ds))
	for idx := range ds {
		d := ds[idx]
		alerts = append(alerts, Alert{
			ID:       fmt.Sprintf("%s-%s-%d", firstNonEmpty(d.Customer, "unknown"), firstNonEmpty(d.InvoiceDate, strconv.Itoa(idx)), idx),
			Customer: firstNonEmpty(d.Customer, "Unknown customer"),
			Issue:    firstNonEmpty(d.Issue, "Issue pending triage"),
			Value:    FormatAmount(d.Value, currency),
			Due:      firstNonEmpty(d.Due, "Needs review"),
			Priority: strings.ToLower(firstNonEmpty(d.Priority, "medium")),
			Evidence: d.Evidence,
			Raw:      &d,
		})
	}
	return alerts
}

func teamStats(billing BillingSummary, clauseHits int) []Stat {
	return []Stat{
		{Label: "Invoices reconciled", Value: fmt.Sprintf("%d", billing.InvoiceCount)},
		{Label: "Customers audited", Value: fmt.Sprintf("%d", len(billing.Customers))},
		{Label: "Clause hits", Value: fmt.Sprintf("%d", clauseHits)},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
