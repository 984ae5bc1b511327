package domain

import (
	"time"

	"github.com/google/uuid"
)

// DependencyEdge is one blocking relationship: BlockedTaskID cannot proceed
// until BlockingTaskID completes. The edge set as a whole must stay acyclic;
// that invariant is enforced before insertion by the dependency manager.
type DependencyEdge struct {
	BlockedTaskID  uuid.UUID `json:"blocked_task_id"`
	BlockingTaskID uuid.UUID `json:"blocking_task_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewDependencyEdge creates an edge record. Self-edges are rejected.
func NewDependencyEdge(blockedID, blockingID uuid.UUID, now time.Time) (*DependencyEdge, error) {
	if blockedID == blockingID {
		return nil, ErrSelfDependency
	}

	return &DependencyEdge{
		BlockedTaskID:  blockedID,
		BlockingTaskID: blockingID,
		CreatedAt:      now,
	}, nil
}
