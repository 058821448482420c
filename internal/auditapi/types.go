package auditapi

import "time"

// Job status values reported by the audit service.
const (
	StatusQueued     = "queued"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Stage status values.
const (
	StagePending    = "pending"
	StageInProgress = "in_progress"
	StageCompleted  = "completed"
	StageFailed     = "failed"
)

// Bounds is a highlight rectangle on a contract page.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Region locates a clause on a page.
type Region struct {
	Page   *int    `json:"page,omitempty"`
	Bounds *Bounds `json:"bounds,omitempty"`
}

// Evidence cites a contract clause or an invoice line behind a discrepancy.
type Evidence struct {
	Type        string   `json:"type,omitempty"`
	Reference   string   `json:"reference,omitempty"`
	Label       string   `json:"label,omitempty"`
	Text        string   `json:"text,omitempty"`
	Page        *int     `json:"page,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Period      string   `json:"period,omitempty"`
	File        string   `json:"file,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	Bounds      *Bounds  `json:"bounds,omitempty"`
	Regions     []Region `json:"regions,omitempty"`
	InvoiceDate string   `json:"invoice_date,omitempty"`
}

// Discrepancy is one detected mismatch between contracted and billed amounts.
type Discrepancy struct {
	Customer    string     `json:"customer,omitempty"`
	Issue       string     `json:"issue,omitempty"`
	Value       *float64   `json:"value,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	Due         string     `json:"due,omitempty"`
	InvoiceDate string     `json:"invoice_date,omitempty"`
	Evidence    []Evidence `json:"evidence,omitempty"`
}

// CustomerSummary aggregates billing per customer.
type CustomerSummary struct {
	Customer     string  `json:"customer"`
	Total        float64 `json:"total"`
	InvoiceCount int     `json:"invoice_count"`
	AvgInvoice   float64 `json:"avg_invoice"`
}

// BillingSummary aggregates the reconciled billing export.
type BillingSummary struct {
	TotalBilled    float64           `json:"total_billed"`
	InvoiceCount   int               `json:"invoice_count"`
	AvgInvoice     float64           `json:"avg_invoice"`
	LargestInvoice float64           `json:"largest_invoice"`
	Customers      []CustomerSummary `json:"customers,omitempty"`
	Sources        []string          `json:"sources,omitempty"`
}

// Clause is an extracted contract clause.
type Clause struct {
	Type       string   `json:"type,omitempty"`
	Label      string   `json:"label,omitempty"`
	Text       string   `json:"text,omitempty"`
	Page       *int     `json:"page,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	File       string   `json:"file,omitempty"`
	Regions    []Region `json:"regions,omitempty"`
}

// ExtractedDocument is a contract document processed by the audit.
type ExtractedDocument struct {
	Filename    string             `json:"filename,omitempty"`
	StoragePath string             `json:"storage_path,omitempty"`
	Storage     string             `json:"storage,omitempty"`
	Clauses     []Clause           `json:"clauses,omitempty"`
	Totals      map[string]float64 `json:"totals,omitempty"`
}

// BillingFile is an uploaded billing export.
type BillingFile struct {
	Filename    string `json:"filename,omitempty"`
	Storage     string `json:"storage,omitempty"`
	StoragePath string `json:"storage_path,omitempty"`
	LocalPath   string `json:"local_path,omitempty"`
}

// Rules carries the LLM-extracted contract rules the dashboard reads.
type Rules struct {
	Currency string `json:"currency,omitempty"`
}

// Progress reports reconciliation progress while an audit runs.
type Progress struct {
	Percent float64 `json:"percent"`
	Message string  `json:"message,omitempty"`
}

// JobMetrics is the open-ended metrics bag attached to a job. Only the keys
// read by this service are modelled.
type JobMetrics struct {
	BillingSummary         *BillingSummary     `json:"billing_summary,omitempty"`
	ClauseDistribution     map[string]float64  `json:"clause_distribution,omitempty"`
	LLMSummary             string              `json:"llm_summary,omitempty"`
	LLMInsights            []map[string]any    `json:"llm_insights,omitempty"`
	TotalClauses           int                 `json:"total_clauses,omitempty"`
	RecoverableAmount      float64             `json:"recoverable_amount,omitempty"`
	Documents              []ExtractedDocument `json:"documents,omitempty"`
	BillingFiles           []BillingFile       `json:"billing_files,omitempty"`
	Currency               string              `json:"currency,omitempty"`
	GPT4oRules             *Rules              `json:"gpt4o_rules,omitempty"`
	ReconciliationProgress *Progress           `json:"reconciliation_progress,omitempty"`
}

// JobStage is one step of the processing pipeline.
type JobStage struct {
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	Detail      string     `json:"detail,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// JobStatus is returned by the status endpoint and embedded in summaries.
type JobStatus struct {
	JobID      string     `json:"job_id,omitempty"`
	ID         string     `json:"id,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	Status     string     `json:"status"`
	VendorName string     `json:"vendor_name,omitempty"`
	Message    string     `json:"message,omitempty"`
	Stages     []JobStage `json:"stages,omitempty"`
	Metrics    JobMetrics `json:"metrics"`
}

// Identifier returns the job id regardless of which key the service used.
func (j JobStatus) Identifier() string {
	if j.JobID != "" {
		return j.JobID
	}
	return j.ID
}

// Terminal reports whether the job has stopped progressing.
func (j JobStatus) Terminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}

// AnalysisSummary is the payload behind the dashboard.
type AnalysisSummary struct {
	Job           JobStatus     `json:"job"`
	Discrepancies []Discrepancy `json:"discrepancies"`
}

// UploadResponse acknowledges an upload or submit call.
type UploadResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message,omitempty"`
}

// ChatRequest asks the assistant a question about a job.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatSource is a citation returned with an answer.
type ChatSource struct {
	Text       string `json:"text,omitempty"`
	SourceType string `json:"source_type,omitempty"`
	Reference  string `json:"reference,omitempty"`
}

// ChatResponse is the assistant's answer. Answer is nil when the service
// omitted it.
type ChatResponse struct {
	Answer         *string      `json:"answer,omitempty"`
	ContextSummary string       `json:"context_summary,omitempty"`
	Sources        []ChatSource `json:"sources,omitempty"`
}
