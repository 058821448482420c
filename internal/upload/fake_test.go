package upload

import (
	"context"
	"io"
	"sync"

	"contractguard-web/internal/auditapi"
)

// fakeAPI replays scripted status responses. Once the script runs out the
// last entry repeats.
type fakeAPI struct {
	mu       sync.Mutex
	statuses []statusReply
	polls    int

	uploadErr error
	submitErr error
	uploads   []string
	billing   []string
	submitted []string
}

type statusReply struct {
	status *auditapi.JobStatus
	err    error
}

func (f *fakeAPI) Status(ctx context.Context, jobID string) (*auditapi.JobStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx := f.polls
	if idx >= len(f.statuses) {
		idx = len(f.statuses) - 1
	}
	f.polls++
	reply := f.statuses[idx]
	return reply.status, reply.err
}

func (f *fakeAPI) UploadContracts(ctx context.Context, vendorName string, files []auditapi.File) (*auditapi.UploadResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	for _, file := range files {
		body, _ := io.ReadAll(file.Reader)
		f.uploads = append(f.uploads, vendorName+":"+file.Name+":"+string(body))
	}
	return &auditapi.UploadResponse{JobID: "job-1"}, nil
}

func (f *fakeAPI) UploadBilling(ctx context.Context, jobID string, files []auditapi.File) (*auditapi.UploadResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	for _, file := range files {
		f.billing = append(f.billing, jobID+":"+file.Name)
	}
	return &auditapi.UploadResponse{JobID: jobID}, nil
}

func (f *fakeAPI) Submit(ctx context.Context, jobID string) (*auditapi.UploadResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, jobID)
	return &auditapi.UploadResponse{JobID: jobID, Message: "submitted"}, nil
}

func (f *fakeAPI) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func running(stages ...auditapi.JobStage) statusReply {
	return statusReply{status: &auditapi.JobStatus{JobID: "job-1", Status: auditapi.StatusInProgress, Stages: stages}}
}

func finished(status, message string) statusReply {
	return statusReply{status: &auditapi.JobStatus{JobID: "job-1", Status: status, Message: message}}
}
