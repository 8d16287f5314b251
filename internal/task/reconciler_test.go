package task

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/Jyothi2828/TaskManagementApp/internal/models"
)

// fakeStore is an in-memory Store with failure injection for the next write.
type fakeStore struct {
	tasks    map[string]models.Task
	order    []string
	failNext error
}

func newFakeStore() *fakeStore {
	return &fakeStore{tasks: make(map[string]models.Task)}
}

func (s *fakeStore) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

func (s *fakeStore) GetAllTasks() ([]models.Task, error) {
	var tasks []models.Task
	for _, id := range s.order {
		tasks = append(tasks, s.tasks[id])
	}
	return tasks, nil
}

func (s *fakeStore) GetTask(id string) (*models.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *fakeStore) AddTask(t models.Task) error {
	if err := s.takeFailure(); err != nil {
		return err
	}
	if _, ok := s.tasks[t.ID]; ok {
		return fmt.Errorf("task %s already exists", t.ID)
	}
	s.tasks[t.ID] = t
	s.order = append(s.order, t.ID)
	return nil
}

func (s *fakeStore) PutTask(t models.Task) error {
	if err := s.takeFailure(); err != nil {
		return err
	}
	if _, ok := s.tasks[t.ID]; !ok {
		s.order = append(s.order, t.ID)
	}
	s.tasks[t.ID] = t
	return nil
}

func (s *fakeStore) DeleteTask(id string) error {
	if err := s.takeFailure(); err != nil {
		return err
	}
	delete(s.tasks, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeStore) UpdatePositions(ids []string) error {
	if err := s.takeFailure(); err != nil {
		return err
	}
	s.order = append([]string(nil), ids...)
	return nil
}

// fakeClock hands out strictly increasing timestamps one second apart.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	c.current = c.current.Add(time.Second)
	return c.current
}

func newTestReconciler(t *testing.T) (*Reconciler, *fakeStore) {
	t.Helper()

	store := newFakeStore()
	rec := New(store)
	clock := &fakeClock{current: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	rec.now = clock.Now

	nextID := 0
	rec.newID = func() string {
		nextID++
		return fmt.Sprintf("task-%d", nextID)
	}
	return rec, store
}

func mustAdd(t *testing.T, rec *Reconciler, title string) models.Task {
	t.Helper()
	added, err := rec.Add(Draft{Title: title})
	if err != nil {
		t.Fatalf("Add(%q) failed: %v", title, err)
	}
	return added
}

func titles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestAddNewTask(t *testing.T) {
	rec, store := newTestReconciler(t)

	added := mustAdd(t, rec, "Buy milk")

	if added.ID == "" {
		t.Error("expected a generated id")
	}
	if added.Completed {
		t.Error("new task should not be completed")
	}
	if added.CompletedAt != nil {
		t.Error("new task should have no completion time")
	}
	if added.CreatedAt.IsZero() {
		t.Error("new task should have a creation time")
	}
	if added.ModifiedAt != nil {
		t.Error("new task should have no modification time")
	}

	stored, err := store.GetTask(added.ID)
	if err != nil || stored == nil {
		t.Fatalf("task not written to store: %v", err)
	}
	if stored.Title != "Buy milk" {
		t.Errorf("stored title = %q, want %q", stored.Title, "Buy milk")
	}
	if rec.Notification() == "" {
		t.Error("expected a notification after add")
	}
}

func TestAddTrimsTitle(t *testing.T) {
	rec, _ := newTestReconciler(t)

	added := mustAdd(t, rec, "  Buy milk  ")
	if added.Title != "Buy milk" {
		t.Errorf("title = %q, want trimmed %q", added.Title, "Buy milk")
	}
}

func TestAddEmptyTitle(t *testing.T) {
	rec, store := newTestReconciler(t)

	_, err := rec.Add(Draft{Title: "   "})
	if !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("err = %v, want ErrEmptyTitle", err)
	}
	if len(rec.Tasks()) != 0 || len(store.order) != 0 {
		t.Error("failed add must not mutate state")
	}
}

func TestAddDuplicateIncompleteRejected(t *testing.T) {
	rec, _ := newTestReconciler(t)
	mustAdd(t, rec, "X")

	// Case-insensitive collision against an incomplete task is rejected.
	_, err := rec.Add(Draft{Title: "x"})
	if !errors.Is(err, ErrDuplicateTitle) {
		t.Fatalf("err = %v, want ErrDuplicateTitle", err)
	}
	if len(rec.Tasks()) != 1 {
		t.Errorf("got %d tasks, want 1", len(rec.Tasks()))
	}
}

func TestAddRevivesCompletedTask(t *testing.T) {
	rec, store := newTestReconciler(t)

	original := mustAdd(t, rec, "Water plants")
	if _, err := rec.Toggle(original.ID); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	revived, err := rec.Add(Draft{Title: "water PLANTS", Description: "again"})
	if err != nil {
		t.Fatalf("reviving add failed: %v", err)
	}

	if revived.ID != original.ID {
		t.Errorf("revival must reuse the id: got %s, want %s", revived.ID, original.ID)
	}
	if !revived.CreatedAt.Equal(original.CreatedAt) {
		t.Error("revival must preserve the original creation time")
	}
	if revived.Completed || revived.CompletedAt != nil {
		t.Error("revived task must be reopened")
	}
	if revived.ReaddedAt == nil {
		t.Error("revival must stamp the re-added time")
	}
	if revived.Title != "water PLANTS" {
		t.Errorf("revival keeps the submitted casing, got %q", revived.Title)
	}
	if revived.Description != "again" {
		t.Errorf("revival description = %q, want %q", revived.Description, "again")
	}
	if len(rec.Tasks()) != 1 {
		t.Fatalf("got %d tasks, want 1", len(rec.Tasks()))
	}

	stored, _ := store.GetTask(original.ID)
	if stored == nil || stored.ReaddedAt == nil {
		t.Error("revival must be written through to the store")
	}
}

func TestAddCompletedDraft(t *testing.T) {
	rec, _ := newTestReconciler(t)

	added, err := rec.Add(Draft{Title: "Imported done", Completed: true})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if !added.Completed || added.CompletedAt == nil {
		t.Error("completed draft must keep completion state with a timestamp")
	}
}

func TestToggleTwiceRestoresState(t *testing.T) {
	rec, _ := newTestReconciler(t)
	added := mustAdd(t, rec, "Buy milk")

	first, err := rec.Toggle(added.ID)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	if !first.Completed {
		t.Error("first toggle should complete the task")
	}
	if first.CompletedAt == nil {
		t.Fatal("completion must be stamped")
	}
	if first.CompletedAt.Before(first.CreatedAt) {
		t.Error("completedAt must not precede createdAt")
	}
	if first.ModifiedAt == nil {
		t.Error("toggle must stamp modifiedAt")
	}

	second, err := rec.Toggle(added.ID)
	if err != nil {
		t.Fatalf("second Toggle failed: %v", err)
	}
	if second.Completed {
		t.Error("second toggle should reopen the task")
	}
	if second.CompletedAt != nil {
		t.Error("reopening must clear completedAt")
	}
	if second.ModifiedAt == nil || !second.ModifiedAt.After(*first.ModifiedAt) {
		t.Error("second toggle must advance modifiedAt")
	}
}

func TestToggleScenario(t *testing.T) {
	rec, _ := newTestReconciler(t)
	added := mustAdd(t, rec, "Buy milk")

	remaining, completed := Partition(rec.Tasks())
	if len(remaining) != 1 || len(completed) != 0 {
		t.Fatalf("after add: %d/%d, want 1 incomplete, 0 completed", len(remaining), len(completed))
	}

	if _, err := rec.Toggle(added.ID); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	remaining, completed = Partition(rec.Tasks())
	if len(remaining) != 0 || len(completed) != 1 {
		t.Fatalf("after toggle: %d/%d, want 0 incomplete, 1 completed", len(remaining), len(completed))
	}

	if _, err := rec.Toggle(added.ID); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}
	remaining, completed = Partition(rec.Tasks())
	if len(remaining) != 1 || len(completed) != 0 {
		t.Fatalf("after second toggle: %d/%d, want 1 incomplete, 0 completed", len(remaining), len(completed))
	}
}

func TestEditUpdatesContentOnly(t *testing.T) {
	rec, store := newTestReconciler(t)
	added := mustAdd(t, rec, "Buy milk")
	completedTask, err := rec.Toggle(added.ID)
	if err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	edited, err := rec.Edit(added.ID, "Buy oat milk", "from the market")
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}

	if edited.ID != added.ID {
		t.Error("edit must not change the id")
	}
	if !edited.CreatedAt.Equal(added.CreatedAt) {
		t.Error("edit must not change createdAt")
	}
	if !edited.Completed {
		t.Error("edit must not change completion state")
	}
	if edited.CompletedAt == nil || !edited.CompletedAt.Equal(*completedTask.CompletedAt) {
		t.Error("edit must not change completedAt")
	}
	if edited.Title != "Buy oat milk" || edited.Description != "from the market" {
		t.Errorf("edit content not applied: %q / %q", edited.Title, edited.Description)
	}
	if edited.ModifiedAt == nil {
		t.Error("edit must stamp modifiedAt")
	}

	stored, _ := store.GetTask(added.ID)
	if stored == nil || !stored.Completed {
		t.Error("edit must merge onto the stored record, preserving completion")
	}
}

func TestEditEmptyTitle(t *testing.T) {
	rec, _ := newTestReconciler(t)
	added := mustAdd(t, rec, "Buy milk")

	if _, err := rec.Edit(added.ID, "  ", "desc"); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("err = %v, want ErrEmptyTitle", err)
	}
	if rec.Tasks()[0].Title != "Buy milk" {
		t.Error("failed edit must not mutate the task")
	}
}

func TestOperationsOnUnknownID(t *testing.T) {
	rec, _ := newTestReconciler(t)
	mustAdd(t, rec, "Buy milk")
	before := append([]models.Task(nil), rec.Tasks()...)

	if _, err := rec.Edit("nope", "t", "d"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Edit err = %v, want ErrNotFound", err)
	}
	if _, err := rec.Toggle("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Toggle err = %v, want ErrNotFound", err)
	}
	if err := rec.RequestDelete("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RequestDelete err = %v, want ErrNotFound", err)
	}
	if rec.Pending().Pending {
		t.Error("unknown id must not set a pending delete")
	}
	if !reflect.DeepEqual(before, rec.Tasks()) {
		t.Error("unknown-id operations must not mutate the list")
	}
}

func TestDeleteConfirmFlow(t *testing.T) {
	rec, store := newTestReconciler(t)
	added := mustAdd(t, rec, "Buy milk")

	if err := rec.RequestDelete(added.ID); err != nil {
		t.Fatalf("RequestDelete failed: %v", err)
	}
	pending := rec.Pending()
	if !pending.Pending || pending.TaskID != added.ID || pending.TaskTitle != "Buy milk" {
		t.Fatalf("pending = %+v", pending)
	}
	if len(rec.Tasks()) != 1 {
		t.Error("requesting a delete must not mutate the list")
	}

	if err := rec.ConfirmDelete(); err != nil {
		t.Fatalf("ConfirmDelete failed: %v", err)
	}
	if rec.Pending().Pending {
		t.Error("pending state must be cleared after confirm")
	}
	if len(rec.Tasks()) != 0 {
		t.Error("confirmed delete must remove the task from memory")
	}
	if stored, _ := store.GetTask(added.ID); stored != nil {
		t.Error("confirmed delete must remove the task from the store")
	}
}

func TestCancelDeleteLeavesListUnchanged(t *testing.T) {
	rec, _ := newTestReconciler(t)
	added := mustAdd(t, rec, "Buy milk")
	before := append([]models.Task(nil), rec.Tasks()...)

	if err := rec.RequestDelete(added.ID); err != nil {
		t.Fatalf("RequestDelete failed: %v", err)
	}
	rec.CancelDelete()

	if rec.Pending().Pending {
		t.Error("cancel must clear pending state")
	}
	if !reflect.DeepEqual(before, rec.Tasks()) {
		t.Error("request+cancel must leave the list unchanged")
	}
}

func TestConfirmDeleteWithoutPending(t *testing.T) {
	rec, _ := newTestReconciler(t)
	mustAdd(t, rec, "Buy milk")

	if err := rec.ConfirmDelete(); err != nil {
		t.Fatalf("ConfirmDelete with no pending should be a no-op, got %v", err)
	}
	if len(rec.Tasks()) != 1 {
		t.Error("no-op confirm must not delete anything")
	}
}

func TestReorder(t *testing.T) {
	rec, store := newTestReconciler(t)
	a := mustAdd(t, rec, "A")
	b := mustAdd(t, rec, "B")

	if err := rec.Reorder(b.ID, a.ID); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}

	got := titles(rec.Tasks())
	if !reflect.DeepEqual(got, []string{"B", "A"}) {
		t.Errorf("order = %v, want [B A]", got)
	}
	if !reflect.DeepEqual(store.order, []string{b.ID, a.ID}) {
		t.Errorf("store order = %v, want [%s %s]", store.order, b.ID, a.ID)
	}
}

func TestReorderUnknownIDIsNoop(t *testing.T) {
	rec, _ := newTestReconciler(t)
	a := mustAdd(t, rec, "A")
	mustAdd(t, rec, "B")

	if err := rec.Reorder(a.ID, "nope"); err != nil {
		t.Fatalf("Reorder with unknown target should be a no-op, got %v", err)
	}
	if got := titles(rec.Tasks()); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Errorf("order = %v, want unchanged [A B]", got)
	}
}

func TestReorderMiddle(t *testing.T) {
	rec, _ := newTestReconciler(t)
	a := mustAdd(t, rec, "A")
	mustAdd(t, rec, "B")
	c := mustAdd(t, rec, "C")

	if err := rec.Reorder(a.ID, c.ID); err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	if got := titles(rec.Tasks()); !reflect.DeepEqual(got, []string{"B", "C", "A"}) {
		t.Errorf("order = %v, want [B C A]", got)
	}
}

func TestFilter(t *testing.T) {
	rec, _ := newTestReconciler(t)
	mustAdd(t, rec, "Buy milk")
	if _, err := rec.Add(Draft{Title: "Call dentist", Description: "about the MILK tooth"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	mustAdd(t, rec, "Write report")

	rec.SetSearch("")
	if got := titles(rec.Filtered()); !reflect.DeepEqual(got, []string{"Buy milk", "Call dentist", "Write report"}) {
		t.Errorf("empty search = %v, want all tasks in order", got)
	}

	rec.SetSearch("milk")
	got := titles(rec.Filtered())
	if !reflect.DeepEqual(got, []string{"Buy milk", "Call dentist"}) {
		t.Errorf("search 'milk' = %v, want title and description matches in order", got)
	}

	rec.SetSearch("nothing here")
	if got := rec.Filtered(); len(got) != 0 {
		t.Errorf("search with no matches = %v, want empty", got)
	}
}

func TestSummary(t *testing.T) {
	rec, _ := newTestReconciler(t)
	mustAdd(t, rec, "A")
	b := mustAdd(t, rec, "B")
	mustAdd(t, rec, "C")
	if _, err := rec.Toggle(b.ID); err != nil {
		t.Fatalf("Toggle failed: %v", err)
	}

	got := rec.Summary()
	want := models.Summary{Total: 3, Completed: 1, Remaining: 2}
	if got != want {
		t.Errorf("Summary() = %+v, want %+v", got, want)
	}
}

func TestStoreFailureLeavesMemoryUntouched(t *testing.T) {
	rec, store := newTestReconciler(t)
	added := mustAdd(t, rec, "Buy milk")
	before := append([]models.Task(nil), rec.Tasks()...)

	store.failNext = errors.New("disk full")
	if _, err := rec.Toggle(added.ID); err == nil {
		t.Fatal("expected the storage error to surface")
	}
	if !reflect.DeepEqual(before, rec.Tasks()) {
		t.Error("failed store write must leave memory unchanged")
	}
	if rec.Notification() == "" {
		t.Error("storage failure must set a notification")
	}

	store.failNext = errors.New("disk full")
	if _, err := rec.Add(Draft{Title: "Another"}); err == nil {
		t.Fatal("expected the storage error to surface")
	}
	if len(rec.Tasks()) != 1 {
		t.Error("failed add must not append to memory")
	}

	store.failNext = errors.New("disk full")
	if err := rec.Reorder(added.ID, added.ID); err != nil {
		t.Fatalf("same-id reorder should short-circuit, got %v", err)
	}
}

func TestLoadReplacesWholesale(t *testing.T) {
	rec, store := newTestReconciler(t)
	mustAdd(t, rec, "Old")

	seeded := models.Task{ID: "seed-1", Title: "Seeded", CreatedAt: time.Now()}
	store.tasks = map[string]models.Task{"seed-1": seeded}
	store.order = []string{"seed-1"}

	if err := rec.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := titles(rec.Tasks()); !reflect.DeepEqual(got, []string{"Seeded"}) {
		t.Errorf("tasks after Load = %v, want [Seeded]", got)
	}
}
