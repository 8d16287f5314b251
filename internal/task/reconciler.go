// Package task owns the authoritative in-memory task list and keeps the
// persistent store consistent with it. Every mutation goes through a fixed
// set of transitions; the store is written first and memory updated only
// after the write succeeds, so a storage failure never leaves memory ahead
// of the store.
package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Jyothi2828/TaskManagementApp/internal/models"
)

// Store is the persistence surface the reconciler mirrors to.
type Store interface {
	GetAllTasks() ([]models.Task, error)
	GetTask(id string) (*models.Task, error)
	AddTask(t models.Task) error
	PutTask(t models.Task) error
	DeleteTask(id string) error
	UpdatePositions(ids []string) error
}

// Draft is the caller-supplied part of a new task.
type Draft struct {
	Title       string
	Description string
	Completed   bool
}

// PendingDelete records a delete awaiting confirmation.
type PendingDelete struct {
	Pending   bool
	TaskID    string
	TaskTitle string
}

// Reconciler holds the ordered task list, the current search term, the
// transient notification and the pending-delete record.
type Reconciler struct {
	store Store
	tasks []models.Task

	searchTerm string
	note       string
	pending    PendingDelete

	now   func() time.Time
	newID func() string
}

// New creates a reconciler backed by store. Call Load before use.
func New(store Store) *Reconciler {
	return &Reconciler{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Load replaces the in-memory list wholesale with the store contents.
func (r *Reconciler) Load() error {
	tasks, err := r.store.GetAllTasks()
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	r.tasks = tasks
	return nil
}

// Tasks returns the current in-memory sequence in display order.
func (r *Reconciler) Tasks() []models.Task {
	return r.tasks
}

// Add creates a new task from d, or revives a completed task that has the
// same title. Adding over an incomplete task with the same title fails with
// ErrDuplicateTitle; title matching is case-insensitive.
func (r *Reconciler) Add(d Draft) (models.Task, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return models.Task{}, ErrEmptyTitle
	}

	if idx := r.indexByTitle(title); idx >= 0 {
		existing := r.tasks[idx]
		if !existing.Completed {
			return models.Task{}, fmt.Errorf("%w: %q", ErrDuplicateTitle, existing.Title)
		}
		return r.revive(idx, title, d.Description)
	}

	now := r.now()
	t := models.Task{
		ID:          r.newID(),
		Title:       title,
		Description: d.Description,
		Completed:   d.Completed,
		CreatedAt:   now,
	}
	if d.Completed {
		t.CompletedAt = &now
	}

	if err := r.store.AddTask(t); err != nil {
		r.note = "Could not save the task"
		return models.Task{}, fmt.Errorf("add task: %w", err)
	}
	r.tasks = append(r.tasks, t)

	if t.Completed {
		r.note = "Task added as completed! You can redo it from the completed list"
	} else {
		r.note = "New task added! All set"
	}
	return t, nil
}

// revive reuses the completed task's id and creation time, reopening it
// with a fresh readded timestamp.
func (r *Reconciler) revive(idx int, title, description string) (models.Task, error) {
	now := r.now()
	revived := r.tasks[idx]
	revived.Title = title
	revived.Description = description
	revived.Completed = false
	revived.CompletedAt = nil
	revived.ModifiedAt = &now
	revived.ReaddedAt = &now

	if err := r.store.PutTask(revived); err != nil {
		r.note = "Could not save the task"
		return models.Task{}, fmt.Errorf("revive task: %w", err)
	}
	r.tasks[idx] = revived

	r.note = "Task re-added! Time for a fresh start"
	return revived, nil
}

// Edit updates a task's title and description, merging onto the stored
// record so fields the edit does not own are preserved.
func (r *Reconciler) Edit(id, newTitle, newDescription string) (models.Task, error) {
	title := strings.TrimSpace(newTitle)
	if title == "" {
		return models.Task{}, ErrEmptyTitle
	}

	idx := r.indexByID(id)
	if idx < 0 {
		r.note = "Task not found"
		return models.Task{}, fmt.Errorf("edit: %w: %s", ErrNotFound, id)
	}

	stored, err := r.store.GetTask(id)
	if err != nil {
		r.note = "Could not save the task"
		return models.Task{}, fmt.Errorf("edit task: %w", err)
	}
	if stored == nil {
		r.note = "Task not found"
		return models.Task{}, fmt.Errorf("edit: %w: %s", ErrNotFound, id)
	}

	now := r.now()
	updated := *stored
	updated.Title = title
	updated.Description = newDescription
	updated.ModifiedAt = &now

	if err := r.store.PutTask(updated); err != nil {
		r.note = "Could not save the task"
		return models.Task{}, fmt.Errorf("edit task: %w", err)
	}

	r.tasks[idx].Title = title
	r.tasks[idx].Description = newDescription
	r.tasks[idx].ModifiedAt = &now

	r.note = "Task revised and ready"
	return r.tasks[idx], nil
}

// Toggle flips a task's completion state, stamping or clearing its
// completion time.
func (r *Reconciler) Toggle(id string) (models.Task, error) {
	idx := r.indexByID(id)
	if idx < 0 {
		r.note = "Task not found"
		return models.Task{}, fmt.Errorf("toggle: %w: %s", ErrNotFound, id)
	}

	now := r.now()
	toggled := r.tasks[idx]
	toggled.Completed = !toggled.Completed
	toggled.ModifiedAt = &now
	if toggled.Completed {
		toggled.CompletedAt = &now
	} else {
		toggled.CompletedAt = nil
	}

	if err := r.store.PutTask(toggled); err != nil {
		r.note = "Could not save the task"
		return models.Task{}, fmt.Errorf("toggle task: %w", err)
	}
	r.tasks[idx] = toggled

	if toggled.Completed {
		r.note = "Task accomplished! Well done"
	} else {
		r.note = "Task reopened. Let's tackle it again"
	}
	return toggled, nil
}

// RequestDelete records a pending delete for id without mutating the list.
func (r *Reconciler) RequestDelete(id string) error {
	idx := r.indexByID(id)
	if idx < 0 {
		r.note = "Task not found"
		return fmt.Errorf("delete: %w: %s", ErrNotFound, id)
	}
	r.pending = PendingDelete{Pending: true, TaskID: id, TaskTitle: r.tasks[idx].Title}
	return nil
}

// ConfirmDelete removes the pending task from the store and memory.
// It is a no-op when no delete is pending.
func (r *Reconciler) ConfirmDelete() error {
	if !r.pending.Pending {
		return nil
	}
	pending := r.pending
	r.pending = PendingDelete{}

	if err := r.store.DeleteTask(pending.TaskID); err != nil {
		r.note = "Could not delete the task"
		return fmt.Errorf("delete task: %w", err)
	}
	if idx := r.indexByID(pending.TaskID); idx >= 0 {
		r.tasks = append(r.tasks[:idx], r.tasks[idx+1:]...)
	}

	r.note = fmt.Sprintf("Task %q is gone", pending.TaskTitle)
	return nil
}

// CancelDelete clears the pending delete without touching the list.
func (r *Reconciler) CancelDelete() {
	if !r.pending.Pending {
		return
	}
	r.pending = PendingDelete{}
	r.note = "Deletion canceled. Task is safe"
}

// Pending returns the current pending-delete record.
func (r *Reconciler) Pending() PendingDelete {
	return r.pending
}

// Reorder moves the dragged task to the target task's index. Unknown ids
// make it a no-op. The new order is written through to the store.
func (r *Reconciler) Reorder(draggedID, targetID string) error {
	from := r.indexByID(draggedID)
	to := r.indexByID(targetID)
	if from < 0 || to < 0 || from == to {
		return nil
	}

	reordered := make([]models.Task, 0, len(r.tasks))
	reordered = append(reordered, r.tasks[:from]...)
	reordered = append(reordered, r.tasks[from+1:]...)
	reordered = append(reordered[:to], append([]models.Task{r.tasks[from]}, reordered[to:]...)...)

	ids := make([]string, len(reordered))
	for i, t := range reordered {
		ids[i] = t.ID
	}
	if err := r.store.UpdatePositions(ids); err != nil {
		r.note = "Could not save the new order"
		return fmt.Errorf("reorder tasks: %w", err)
	}

	r.tasks = reordered
	return nil
}

// SetSearch sets the current search term used by Filtered.
func (r *Reconciler) SetSearch(term string) {
	r.searchTerm = term
}

// Search returns the current search term.
func (r *Reconciler) Search() string {
	return r.searchTerm
}

// Filtered returns the tasks matching the current search term,
// case-insensitively against title or description, in display order.
func (r *Reconciler) Filtered() []models.Task {
	return Filter(r.tasks, r.searchTerm)
}

// Summary returns the counts over the full, unfiltered list.
func (r *Reconciler) Summary() models.Summary {
	s := models.Summary{Total: len(r.tasks)}
	for _, t := range r.tasks {
		if t.Completed {
			s.Completed++
		}
	}
	s.Remaining = s.Total - s.Completed
	return s
}

// Notification returns the transient status message of the last operation.
func (r *Reconciler) Notification() string {
	return r.note
}

// ClearNotification resets the transient status message.
func (r *Reconciler) ClearNotification() {
	r.note = ""
}

func (r *Reconciler) indexByID(id string) int {
	for i, t := range r.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (r *Reconciler) indexByTitle(title string) int {
	for i, t := range r.tasks {
		if strings.EqualFold(t.Title, title) {
			return i
		}
	}
	return -1
}

// Filter returns the subsequence of tasks whose title or description
// contains term case-insensitively, preserving relative order.
func Filter(tasks []models.Task, term string) []models.Task {
	if term == "" {
		return tasks
	}
	needle := strings.ToLower(term)
	var matched []models.Task
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle) {
			matched = append(matched, t)
		}
	}
	return matched
}

// Partition splits tasks into incomplete and completed subsets,
// preserving order within each.
func Partition(tasks []models.Task) (remaining, completed []models.Task) {
	for _, t := range tasks {
		if t.Completed {
			completed = append(completed, t)
		} else {
			remaining = append(remaining, t)
		}
	}
	return remaining, completed
}
