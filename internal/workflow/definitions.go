package workflow

import (
	"github.com/deptworks/go-editorial/internal/domain"
	"github.com/deptworks/go-editorial/pkg/interfaces"
)

// Transition names shared by callers of the engine.
const (
	TransitionSchedule       = "schedule"
	TransitionPublish        = "publish"
	TransitionCancelSchedule = "cancel_schedule"
	TransitionActivate       = "activate"
	TransitionComplete       = "complete"
	TransitionArchive        = "archive"
)

// NewsDefinition describes the publication lifecycle for news articles.
func NewsDefinition() interfaces.WorkflowDefinition {
	return interfaces.WorkflowDefinition{
		EntityType:   string(domain.KindNews),
		InitialState: state(domain.StatusDraft),
		States: []interfaces.WorkflowStateDefinition{
			{Name: state(domain.StatusDraft), Description: "Unpublished working copy"},
			{Name: state(domain.StatusScheduled), Description: "Queued for timed publication"},
			{Name: state(domain.StatusPublished), Description: "Publicly visible", Terminal: true},
		},
		Transitions: []interfaces.WorkflowTransition{
			{Name: TransitionSchedule, From: state(domain.StatusDraft), To: state(domain.StatusScheduled), Description: "Queue the article for a future publish date"},
			{Name: TransitionPublish, From: state(domain.StatusDraft), To: state(domain.StatusPublished), Description: "Publish immediately"},
			{Name: TransitionPublish, From: state(domain.StatusScheduled), To: state(domain.StatusPublished), Description: "Publish a scheduled article"},
			{Name: TransitionCancelSchedule, From: state(domain.StatusScheduled), To: state(domain.StatusDraft), Description: "Withdraw a scheduled article back to draft"},
		},
	}
}

// ResearchDefinition describes the lifecycle for research projects.
func ResearchDefinition() interfaces.WorkflowDefinition {
	return interfaces.WorkflowDefinition{
		EntityType:   string(domain.KindResearch),
		InitialState: state(domain.StatusDraft),
		States: []interfaces.WorkflowStateDefinition{
			{Name: state(domain.StatusDraft), Description: "Unpublished working copy"},
			{Name: state(domain.StatusActive), Description: "Ongoing project"},
			{Name: state(domain.StatusCompleted), Description: "Finished project"},
			{Name: state(domain.StatusArchived), Description: "Removed from the active catalog", Terminal: true},
		},
		Transitions: []interfaces.WorkflowTransition{
			{Name: TransitionActivate, From: state(domain.StatusDraft), To: state(domain.StatusActive), Description: "Make the project publicly visible"},
			{Name: TransitionComplete, From: state(domain.StatusActive), To: state(domain.StatusCompleted), Description: "Mark the project finished"},
			{Name: TransitionArchive, From: state(domain.StatusActive), To: state(domain.StatusArchived), Description: "Archive an active project"},
			{Name: TransitionArchive, From: state(domain.StatusCompleted), To: state(domain.StatusArchived), Description: "Archive a completed project"},
		},
	}
}

func state(status domain.Status) interfaces.WorkflowState {
	return interfaces.WorkflowState(status)
}
