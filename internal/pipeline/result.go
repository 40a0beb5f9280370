package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avasant/casepipe/internal/fieldgroup"
	"github.com/avasant/casepipe/internal/job"
	"github.com/avasant/casepipe/internal/storage"
)

// Result returns the finished records as [primary, secondary]. It reports
// job.ErrNotFound for an unknown job and ErrNotReady while either role is
// still in flight.
func (p *Pipeline) Result(ctx context.Context, jobID string) ([]fieldgroup.Record, error) {
	records := make([]fieldgroup.Record, 0, 2)
	for _, role := range job.Roles() {
		state, err := p.states.Get(ctx, jobID, role)
		if err != nil {
			return nil, fmt.Errorf("get %s state: %w", role, err)
		}
		if state != job.StateExtractionComplete {
			return nil, fmt.Errorf("role %s is %s: %w", role, state, ErrNotReady)
		}

		data, err := p.objects.Get(ctx, storage.ResponseKey(jobID, role))
		if err != nil {
			return nil, fmt.Errorf("get %s record: %w", role, err)
		}
		var rec fieldgroup.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("parse %s record: %w", role, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
