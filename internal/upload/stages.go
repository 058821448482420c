package upload

import (
	"math"

	"contractguard-web/internal/auditapi"
)

// Stage is one step of the processing pipeline as reported by the audit
// service.
type Stage string

const (
	StageUpload             Stage = "upload"
	StageDocumentExtraction Stage = "document_extraction"
	StageLLMExtraction      Stage = "llm_extraction"
	StageReconciliation     Stage = "reconciliation"
)

// StageOrder is the order stages run in.
var StageOrder = []Stage{StageUpload, StageDocumentExtraction, StageLLMExtraction, StageReconciliation}

// StageInfo is the display copy for a stage.
type StageInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

var stageInfo = map[Stage]StageInfo{
	StageUpload:             {Title: "Secure Upload", Description: "Files encrypted and stored in a private workspace"},
	StageDocumentExtraction: {Title: "Document Parsing", Description: "Contracts split into clauses and rate cards"},
	StageLLMExtraction:      {Title: "AI Clause Extraction", Description: "LLM captures pricing logic, escalators, and obligations"},
	StageReconciliation:     {Title: "Billing Reconciliation", Description: "Invoices matched, leakage quantified"},
}

// Info returns the display copy for s. Unknown stages use their raw name.
func (s Stage) Info() StageInfo {
	if info, ok := stageInfo[s]; ok {
		return info
	}
	return StageInfo{Title: string(s)}
}

func (s Stage) index() int {
	for i, candidate := range StageOrder {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Stage board labels.
const (
	LabelInProgress = "In progress"
	LabelComplete   = "Complete"
	LabelQueued     = "Queued"
)

// StageRow is one rendered line of the stage board. Progress and Note are
// set only on the active reconciliation row.
type StageRow struct {
	Stage       Stage  `json:"stage"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Label       string `json:"label"`
	Active      bool   `json:"active"`
	Progress    *int   `json:"progress,omitempty"`
	Note        string `json:"note,omitempty"`
}

// ActiveStage is the first stage in progress, else the first pending one.
func ActiveStage(stages []auditapi.JobStage) (Stage, bool) {
	for _, s := range stages {
		if s.Status == auditapi.StageInProgress {
			return Stage(s.Name), true
		}
	}
	for _, s := range stages {
		if s.Status == auditapi.StagePending {
			return Stage(s.Name), true
		}
	}
	return "", false
}

// ProgressPercent converts a reconciliation fraction to a whole percentage
// clamped to 0..100.
func ProgressPercent(p *auditapi.Progress) int {
	if p == nil || math.IsNaN(p.Percent) {
		return 0
	}
	return int(math.Min(100, math.Max(0, math.Round(p.Percent*100))))
}

// Board renders every stage relative to current. Stages before current are
// complete, current is in progress and the rest are queued. An empty current
// renders everything queued.
func Board(current Stage, progress *auditapi.Progress) []StageRow {
	currentIdx := current.index()
	rows := make([]StageRow, 0, len(StageOrder))
	for idx, stage := range StageOrder {
		info := stage.Info()
		row := StageRow{Stage: stage, Title: info.Title, Description: info.Description}
		switch {
		case stage == current:
			row.Label = LabelInProgress
			row.Active = true
		case currentIdx != -1 && idx < currentIdx:
			row.Label = LabelComplete
		default:
			row.Label = LabelQueued
		}
		if row.Active && stage == StageReconciliation && progress != nil {
			pct := ProgressPercent(progress)
			row.Progress = &pct
			row.Note = progress.Message
		}
		rows = append(rows, row)
	}
	return rows
}
