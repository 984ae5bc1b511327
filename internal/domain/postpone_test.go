package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/phrazzld/focal-api/internal/domain"
)

func TestPostponeReasonValidate(t *testing.T) {
	t.Parallel()

	existing := uuid.New()
	until := time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		reason  domain.PostponeReason
		wantErr error
	}{
		{
			name:   "later reason with a date",
			reason: domain.LaterReason{Until: &until},
		},
		{
			name:    "later reason without a date",
			reason:  domain.LaterReason{},
			wantErr: domain.ErrNoDeferralDate,
		},
		{
			name:   "blocker with existing task",
			reason: domain.BlockerReason{ExistingTaskID: &existing},
		},
		{
			name:   "blocker with new title",
			reason: domain.BlockerReason{NewTaskTitle: "Get approval"},
		},
		{
			name:    "blocker with neither",
			reason:  domain.BlockerReason{},
			wantErr: domain.ErrBlockerUnderspecified,
		},
		{
			name: "blocker with both",
			reason: domain.BlockerReason{
				ExistingTaskID: &existing,
				NewTaskTitle:   "Get approval",
			},
			wantErr: domain.ErrBlockerOverspecified,
		},
		{
			name:   "dependency with blockers",
			reason: domain.DependencyReason{BlockingTaskIDs: []uuid.UUID{existing}},
		},
		{
			name:    "dependency without blockers",
			reason:  domain.DependencyReason{},
			wantErr: domain.ErrNoBlockingTasks,
		},
		{
			name:   "subtasks with titles",
			reason: domain.SubtasksReason{Titles: []string{"Draft outline", "Write intro"}},
		},
		{
			name:    "subtasks without titles",
			reason:  domain.SubtasksReason{},
			wantErr: domain.ErrNoSubtaskTitles,
		},
		{
			name:    "subtasks with an empty title",
			reason:  domain.SubtasksReason{Titles: []string{"Draft outline", ""}},
			wantErr: domain.ErrEmptySubtaskName,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.reason.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPostponeReasonKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, domain.ReasonLater, domain.LaterReason{}.Kind())
	assert.Equal(t, domain.ReasonBlocker, domain.BlockerReason{}.Kind())
	assert.Equal(t, domain.ReasonDependency, domain.DependencyReason{}.Kind())
	assert.Equal(t, domain.ReasonSubtasks, domain.SubtasksReason{}.Kind())

	assert.True(t, domain.ReasonLater.IsValid())
	assert.False(t, domain.PostponeReasonKind("whim").IsValid())
}
