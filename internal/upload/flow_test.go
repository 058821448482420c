package upload

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"contractguard-web/internal/auditapi"
)

func newFastFlow(api *fakeAPI) *Flow {
	f := NewFlow(api)
	f.Poller.Interval = time.Millisecond
	f.RedirectDelay = time.Millisecond
	return f
}

func contract(name string) []auditapi.File {
	return []auditapi.File{{Name: name, Reader: strings.NewReader("pdf")}}
}

func TestFlowRequiresVendor(t *testing.T) {
	api := &fakeAPI{}
	f := newFastFlow(api)

	_, err := f.UploadContracts(context.Background(), "  ", contract("msa.pdf"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "Please enter the vendor name before continuing.", f.State().Message)
	assert.Equal(t, StepContracts, f.State().Step)
	assert.Empty(t, api.uploads)
}

func TestFlowUploadFailureUsesServerDetail(t *testing.T) {
	api := &fakeAPI{uploadErr: &auditapi.APIError{Status: 400, Detail: "Unsupported file type"}}
	f := newFastFlow(api)

	_, err := f.UploadContracts(context.Background(), "Acme", contract("msa.exe"))
	require.Error(t, err)
	assert.Equal(t, "Unsupported file type", f.State().Message)

	api.uploadErr = errors.New("connection reset")
	_, err = f.UploadContracts(context.Background(), "Acme", contract("msa.pdf"))
	require.Error(t, err)
	assert.Equal(t, "Failed to upload contracts.", f.State().Message)
}

func TestFlowRejectsNonBillingFiles(t *testing.T) {
	api := &fakeAPI{}
	f := newFastFlow(api)
	_, err := f.UploadContracts(context.Background(), "Acme", contract("msa.pdf"))
	require.NoError(t, err)

	err = f.UploadBilling(context.Background(), contract("invoice.pdf"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, api.billing)
}

func TestFlowRunsToCompletion(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{statuses: []statusReply{
		{err: &auditapi.APIError{Status: 500}},
		running(auditapi.JobStage{Name: "reconciliation", Status: auditapi.StageInProgress}),
		finished(auditapi.StatusCompleted, ""),
	}}
	api.statuses[1].status.Metrics.ReconciliationProgress = &auditapi.Progress{Percent: 0.5}

	f := newFastFlow(api)
	var redirected string
	var sawReconciliation bool
	f.OnComplete = func(url string) { redirected = url }
	f.OnChange = func(s State) {
		if s.Stage == StageReconciliation && s.Progress != nil {
			sawReconciliation = true
		}
	}

	jobID, err := f.UploadContracts(context.Background(), " Acme ", contract("msa.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, StepBilling, f.State().Step)
	assert.Equal(t, "Acme", f.State().Vendor)

	require.NoError(t, f.UploadBilling(context.Background(), []auditapi.File{{Name: "billing.csv", Reader: strings.NewReader("a,b")}}))

	state, err := f.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StepProcessing, state.Step)
	assert.False(t, state.Uploading)
	assert.Equal(t, Stage(""), state.Stage)
	assert.Nil(t, state.Progress)
	assert.Equal(t, "Audit complete. Redirecting to dashboard...", state.Message)
	assert.Equal(t, "/dashboard?job=job-1", redirected)
	assert.True(t, sawReconciliation)
	assert.Equal(t, []string{"job-1"}, api.submitted)
	assert.Equal(t, []string{"job-1:billing.csv"}, api.billing)
}

func TestFlowReportsFailure(t *testing.T) {
	api := &fakeAPI{statuses: []statusReply{finished(auditapi.StatusFailed, "")}}
	f := newFastFlow(api)
	redirected := false
	f.OnComplete = func(string) { redirected = true }
	_, err := f.UploadContracts(context.Background(), "Acme", contract("msa.pdf"))
	require.NoError(t, err)

	state, err := f.Start(context.Background())
	assert.ErrorIs(t, err, ErrAuditFailed)
	assert.Equal(t, "Audit failed. Please retry.", state.Message)
	assert.False(t, state.Uploading)
	assert.False(t, redirected)

	api.statuses = []statusReply{finished(auditapi.StatusFailed, "Billing file unreadable")}
	api.polls = 0
	state, _ = f.Start(context.Background())
	assert.Equal(t, "Billing file unreadable", state.Message)
}

func TestFlowSubmitFailure(t *testing.T) {
	api := &fakeAPI{submitErr: &auditapi.APIError{Status: 409}}
	f := newFastFlow(api)
	_, err := f.UploadContracts(context.Background(), "Acme", contract("msa.pdf"))
	require.NoError(t, err)

	state, err := f.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to start audit.", state.Message)
	assert.False(t, state.Uploading)
}

func TestFlowCancelDuringRedirectSkipsCallback(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeAPI{statuses: []statusReply{finished(auditapi.StatusCompleted, "")}}
	f := newFastFlow(api)
	f.RedirectDelay = time.Hour
	called := false
	f.OnComplete = func(string) { called = true }
	_, err := f.UploadContracts(context.Background(), "Acme", contract("msa.pdf"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	f.OnChange = func(s State) {
		if s.Message == msgAuditComplete {
			cancel()
		}
	}
	_, err = f.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStateBoard(t *testing.T) {
	rows := State{Stage: StageDocumentExtraction}.Board()
	assert.Equal(t, LabelComplete, rows[0].Label)
	assert.Equal(t, LabelInProgress, rows[1].Label)
}
