package generation

import (
	"context"

	"github.com/phrazzld/focal-api/internal/domain"
)

// Generator defines the interface for suggesting subtask breakdowns of a
// task. Implementations call out to an external language model; the
// application core only depends on this interface.
type Generator interface {
	// SuggestSubtasks proposes a list of subtask titles for the given task.
	// The suggestions are advisory only; nothing is persisted until the user
	// accepts a breakdown through the postpone workflow.
	SuggestSubtasks(ctx context.Context, task *domain.Task) ([]string, error)
}
