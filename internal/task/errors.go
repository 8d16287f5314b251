package task

import "errors"

var (
	// ErrEmptyTitle rejects add/edit submissions with a blank title.
	ErrEmptyTitle = errors.New("task title is empty")

	// ErrDuplicateTitle rejects adds that collide with an incomplete task.
	ErrDuplicateTitle = errors.New("task with this title already exists")

	// ErrNotFound reports an operation against an unknown task id.
	ErrNotFound = errors.New("task not found")
)
