package job

import (
	"context"
	"errors"
)

// Role is the applicant category a sub-pipeline instance processes.
type Role string

const (
	RolePrimary   Role = "primary"
	RoleSecondary Role = "secondary"
)

// Roles returns both applicant roles in their fixed processing order.
func Roles() []Role {
	return []Role{RolePrimary, RoleSecondary}
}

// State is the forward-progress signal a stage writes after its output is
// durably persisted. Transitions run forward only; a job stuck at a
// non-terminal state is the caller's signal that a stage failed.
type State string

const (
	StateInProgress         State = "in_progress"
	StateVectorGenerated    State = "vector_generated"
	StateExtractionComplete State = "extraction_complete"
)

// ErrNotFound is returned when no state has been recorded for a job/role.
var ErrNotFound = errors.New("job state not found")

// StateStore persists per-role job state. Each role owns its own slot so
// one role's progress can never overwrite the other's.
type StateStore interface {
	Set(ctx context.Context, jobID string, role Role, s State) error
	Get(ctx context.Context, jobID string, role Role) (State, error)
}
