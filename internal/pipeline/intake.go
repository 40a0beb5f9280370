package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/avasant/casepipe/internal/job"
	"github.com/avasant/casepipe/internal/storage"
)

// Intake accepts a case: allocates a job ID, marks both roles in progress,
// and triggers OCR for each role. Returns the job ID for polling.
func (p *Pipeline) Intake(ctx context.Context, link string) (string, error) {
	source := storage.SourceRoot(link)
	if source == "" {
		return "", fmt.Errorf("%q: %w", link, ErrBadLink)
	}

	jobID := uuid.NewString()
	for _, role := range job.Roles() {
		if err := p.states.Set(ctx, jobID, role, job.StateInProgress); err != nil {
			return "", fmt.Errorf("set %s state: %w", role, err)
		}
	}
	for _, role := range job.Roles() {
		payload := Payload{JobID: jobID, Role: role, Source: source}
		if err := p.trigger.Invoke(ctx, StageOCR, payload); err != nil {
			return "", fmt.Errorf("trigger ocr for %s: %w", role, err)
		}
	}

	p.log.Info("case accepted", "job_id", jobID, "source", source)
	return jobID, nil
}
