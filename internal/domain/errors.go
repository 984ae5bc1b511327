package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity or workflow input fails
	// validation. This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrSelfDependency is returned when a task is linked as its own blocker.
	ErrSelfDependency = errors.New("task cannot depend on itself")

	// ErrCircularDependency is returned when adding a dependency edge would
	// close a cycle in the blocking graph.
	ErrCircularDependency = errors.New("dependency would create a cycle")

	// ErrInterventionRequired is returned when a task has been postponed past
	// the configured threshold and needs an explicit disposition before it
	// may be deferred again.
	ErrInterventionRequired = errors.New("postponement intervention required")

	// ErrInvalidTransition is returned when a state change is not permitted
	// from the task's current state.
	ErrInvalidTransition = errors.New("invalid state transition")
)
