package views

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Jyothi2828/TaskManagementApp/internal/models"
	"github.com/Jyothi2828/TaskManagementApp/internal/task"
	"github.com/Jyothi2828/TaskManagementApp/internal/ui/keys"
	"github.com/Jyothi2828/TaskManagementApp/internal/ui/styles"
)

// notificationTimeout is how long a status message stays visible
const notificationTimeout = 3 * time.Second

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// FocusArea represents which part of the UI has focus
type FocusArea int

const (
	FocusSearchInput FocusArea = iota
	FocusTaskList
)

// ToggleTheme asks the app shell to flip the color theme
type ToggleTheme struct{}

// ThemeChanged tells the view to rebuild its styles
type ThemeChanged struct{}

type clearNotificationMsg struct {
	seq int
}

// TaskListView shows the task list with search, add/edit forms, the
// delete confirmation and the move (reorder) mode
type TaskListView struct {
	rec    *task.Reconciler
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	// UI state
	focus       FocusArea
	cursor      int
	scrollY     int
	searchInput textinput.Model
	moving      bool

	// Task creation/editing
	editing      bool
	editingNew   bool
	editTaskID   string
	editTitle    textinput.Model
	editDesc     textarea.Model
	editFocusIdx int // 0=title, 1=desc, 2=save
	editErr      string

	// Transient status message
	notification string
	notifySeq    int

	// Help popup
	showHelpPopup bool
}

// NewTaskListView creates the task list view on top of the reconciler
func NewTaskListView(rec *task.Reconciler) *TaskListView {
	s := styles.NewStyles()

	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 100

	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 200

	editDesc := textarea.New()
	editDesc.Placeholder = "Description (optional)"
	editDesc.CharLimit = 1000
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	return &TaskListView{
		rec:         rec,
		styles:      s,
		keys:        keys.DefaultKeyMap(),
		focus:       FocusTaskList,
		searchInput: search,
		editTitle:   editTitle,
		editDesc:    editDesc,
	}
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	return nil
}

// visible returns the tasks currently shown: the filtered list with the
// incomplete subset first, then the completed one
func (v *TaskListView) visible() []models.Task {
	remaining, completed := task.Partition(v.rec.Filtered())
	return append(remaining, completed...)
}

// notify picks up the reconciler's status message and schedules its expiry
func (v *TaskListView) notify() tea.Cmd {
	return v.notifyText(v.rec.Notification())
}

func (v *TaskListView) notifyText(text string) tea.Cmd {
	if text == "" {
		return nil
	}
	v.notification = text
	v.notifySeq++
	seq := v.notifySeq
	return tea.Tick(notificationTimeout, func(time.Time) tea.Msg {
		return clearNotificationMsg{seq: seq}
	})
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.editDesc.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case ThemeChanged:
		v.styles = styles.NewStyles()
		return v, nil

	case clearNotificationMsg:
		if msg.seq == v.notifySeq {
			v.notification = ""
			v.rec.ClearNotification()
		}
		return v, nil

	case tea.KeyMsg:
		// Help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.rec.Pending().Pending {
			return v.updateConfirmDelete(msg)
		}

		if v.editing {
			return v.updateEditing(msg)
		}

		if v.moving {
			return v.updateMoving(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Search input typing first - don't process hotkeys while typing
	if v.focus == FocusSearchInput {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			v.searchInput.Blur()
			v.focus = FocusTaskList
			return v, nil
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			v.rec.SetSearch(strings.TrimSpace(v.searchInput.Value()))
			v.clampCursor()
			return v, cmd
		}
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.visible())-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle), key.Matches(msg, v.keys.Enter):
		if t, ok := v.selected(); ok {
			if _, err := v.rec.Toggle(t.ID); err == nil {
				v.clampCursor()
			}
			return v, v.notify()
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if t, ok := v.selected(); ok {
			v.startEditTask(t)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if t, ok := v.selected(); ok {
			if err := v.rec.RequestDelete(t.ID); err != nil {
				return v, v.notify()
			}
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.focus = FocusSearchInput
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Move):
		if _, ok := v.selected(); ok {
			v.moving = true
		}
		return v, nil

	case key.Matches(msg, v.keys.Yank):
		if t, ok := v.selected(); ok {
			if err := clipboard.WriteAll(t.Title); err != nil {
				return v, v.notifyText("Could not copy to clipboard")
			}
			return v, v.notifyText(fmt.Sprintf("Copied %q", t.Title))
		}
		return v, nil

	case key.Matches(msg, v.keys.Theme):
		return v, func() tea.Msg { return ToggleTheme{} }

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if err := v.rec.ConfirmDelete(); err != nil {
			return v, v.notify()
		}
		v.clampCursor()
		return v, v.notify()
	case "n", "N", "esc":
		v.rec.CancelDelete()
		return v, v.notify()
	}
	return v, nil
}

func (v *TaskListView) updateMoving(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Move), key.Matches(msg, v.keys.Enter):
		v.moving = false
		return v, nil

	case key.Matches(msg, v.keys.Up):
		visible := v.visible()
		if v.cursor > 0 && v.cursor < len(visible) {
			if err := v.rec.Reorder(visible[v.cursor].ID, visible[v.cursor-1].ID); err != nil {
				return v, v.notify()
			}
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		visible := v.visible()
		if v.cursor >= 0 && v.cursor < len(visible)-1 {
			if err := v.rec.Reorder(visible[v.cursor].ID, visible[v.cursor+1].ID); err != nil {
				return v, v.notify()
			}
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	}
	return v, nil
}

func (v *TaskListView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		v.editErr = ""
		return v, nil

	case msg.String() == "ctrl+s":
		return v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.editFocusIdx = (v.editFocusIdx + 1) % 3 // 0-2: title, desc, save
		v.updateEditFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.editFocusIdx = (v.editFocusIdx + 2) % 3
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		// Enter on title moves to the description
		if v.editFocusIdx == 0 {
			v.editFocusIdx = 1
			v.updateEditFocus()
			return v, nil
		}
		// Enter on save button saves
		if v.editFocusIdx == 2 {
			return v.saveTask()
		}
		// For the textarea, let enter pass through for newlines
	}

	var cmd tea.Cmd
	switch v.editFocusIdx {
	case 0:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case 1:
		v.editDesc, cmd = v.editDesc.Update(msg)
	}
	return v, cmd
}

func (v *TaskListView) selected() (models.Task, bool) {
	visible := v.visible()
	if len(visible) == 0 || v.cursor < 0 || v.cursor >= len(visible) {
		return models.Task{}, false
	}
	return visible[v.cursor], true
}

func (v *TaskListView) clampCursor() {
	if n := len(v.visible()); v.cursor >= n {
		v.cursor = max(0, n-1)
	}
}

func (v *TaskListView) ensureVisible() {
	// Each task item is 2 lines + 1 margin = 3 lines
	availableHeight := v.height - 12
	if availableHeight < 3 {
		availableHeight = 3
	}
	visibleItems := availableHeight / 3
	if visibleItems < 1 {
		visibleItems = 1
	}

	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+visibleItems {
		v.scrollY = v.cursor - visibleItems + 1
	}
}

func (v *TaskListView) startNewTask() {
	v.editing = true
	v.editingNew = true
	v.editFocusIdx = 0
	v.editErr = ""
	v.editTaskID = ""
	v.editTitle.Reset()
	v.editDesc.Reset()
	v.updateEditFocus()
}

func (v *TaskListView) startEditTask(t models.Task) {
	v.editing = true
	v.editingNew = false
	v.editFocusIdx = 0
	v.editErr = ""
	v.editTaskID = t.ID
	v.editTitle.SetValue(t.Title)
	v.editDesc.SetValue(t.Description)
	v.updateEditFocus()
}

func (v *TaskListView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()

	switch v.editFocusIdx {
	case 0:
		v.editTitle.Focus()
	case 1:
		v.editDesc.Focus()
	}
}

func (v *TaskListView) saveTask() (tea.Model, tea.Cmd) {
	title := v.editTitle.Value()
	desc := strings.TrimSpace(v.editDesc.Value())

	var err error
	if v.editingNew {
		_, err = v.rec.Add(task.Draft{Title: title, Description: desc})
	} else {
		_, err = v.rec.Edit(v.editTaskID, title, desc)
	}

	if err != nil {
		v.editErr = editErrorMessage(err)
		return v, nil
	}

	v.editing = false
	v.editErr = ""
	v.clampCursor()
	return v, v.notify()
}

// editErrorMessage maps an operation error to the inline form message
func editErrorMessage(err error) string {
	switch {
	case errors.Is(err, task.ErrEmptyTitle):
		return "Title is required"
	case errors.Is(err, task.ErrDuplicateTitle):
		return "Task exists! Rename it or finish the existing one"
	case errors.Is(err, task.ErrNotFound):
		return "Task no longer exists"
	default:
		return "Could not save the task"
	}
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.rec.Pending().Pending {
		return v.renderDeleteConfirm()
	}

	if v.editing {
		return v.renderEditForm()
	}

	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n")
	b.WriteString(v.renderTaskList())
	b.WriteString("\n")
	b.WriteString(v.renderStatusBar())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	title := s.Title.Render("Task Manager")

	summary := v.rec.Summary()
	counts := s.TitleMuted.Render(fmt.Sprintf("Total %d • Completed %d • Remaining %d",
		summary.Total, summary.Completed, summary.Remaining))

	searchStyle := s.Input
	if v.focus == FocusSearchInput {
		searchStyle = s.InputFocused
	}
	searchWidth := clamp(contentWidth-8, 10, 40)
	searchBox := searchStyle.Width(searchWidth).Render(v.searchInput.View())

	return lipgloss.JoinVertical(lipgloss.Left, title, counts, searchBox)
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles
	visible := v.visible()

	if len(visible) == 0 {
		if v.rec.Search() != "" {
			return s.TitleMuted.Render("No tasks match your search.")
		}
		return s.TitleMuted.Render("No tasks. Press 'n' to create one.")
	}

	remaining, completed := task.Partition(v.rec.Filtered())

	availableHeight := v.height - 12
	if availableHeight < 3 {
		availableHeight = 3
	}
	visibleItems := availableHeight / 3
	if visibleItems < 1 {
		visibleItems = 1
	}
	endIdx := min(v.scrollY+visibleItems, len(visible))

	var rows []string
	appendSection := func(header string, tasks []models.Task, offset int) {
		rows = append(rows, s.SectionHeader.Render(header))
		for i, t := range tasks {
			idx := offset + i
			if idx < v.scrollY || idx >= endIdx {
				continue
			}
			rows = append(rows, v.renderTaskItem(t, idx == v.cursor))
		}
	}

	appendSection(fmt.Sprintf("In Progress (%d)", len(remaining)), remaining, 0)
	appendSection(fmt.Sprintf("Completed (%d)", len(completed)), completed, len(remaining))

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *TaskListView) renderTaskItem(t models.Task, selected bool) string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	width := max(contentWidth-4, 20)

	checkbox := "[ ] "
	if t.Completed {
		checkbox = "[x] "
	}
	titleLine := checkbox + t.Title

	meta := models.Elapsed(t.CreatedAt, time.Now())
	if t.Completed {
		meta = "done in " + t.TimeTaken()
	}
	if t.ReaddedAt != nil {
		meta += " • re-added"
	}
	if t.Description != "" {
		meta += " • " + firstLine(t.Description)
	}

	titleStyle := s.ListItem
	metaStyle := s.ListItem.Foreground(styles.Current.ForegroundDim)
	switch {
	case selected && v.moving:
		titleStyle = s.ListMoving
		metaStyle = s.ListMoving
	case selected:
		titleStyle = s.ListSelected
		metaStyle = s.ListSelected
	case t.Completed:
		titleStyle = s.ListDone
		metaStyle = s.ListDone
	}

	title := titleStyle.Width(width).Render(titleLine)
	metaRow := metaStyle.Width(width).Render(meta)

	return lipgloss.JoinVertical(lipgloss.Left, title, metaRow) + "\n"
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func (v *TaskListView) renderStatusBar() string {
	if v.notification != "" {
		return v.styles.Notification.Render(v.notification)
	}

	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 50 {
		return v.styles.Help.Render(v.styles.HelpKey.Render("?") + " help")
	}

	if v.moving {
		return v.styles.Help.Render(
			fmt.Sprintf("%s move task • %s done",
				v.styles.HelpKey.Render("↑↓"),
				v.styles.HelpKey.Render("esc"),
			),
		)
	}

	return v.styles.Help.Render(
		fmt.Sprintf("%s toggle • %s new • %s edit • %s del • %s move • %s search • %s theme • %s quit",
			v.styles.HelpKey.Render("space"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("m"),
			v.styles.HelpKey.Render("/"),
			v.styles.HelpKey.Render("t"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *TaskListView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Task"
	if !v.editingNew {
		formTitle = "Edit Task"
	}

	titleStyle := s.Input
	descStyle := s.Input
	btnStyle := s.Button

	switch v.editFocusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		btnStyle = s.ButtonFocused
	}

	inputWidth := clamp(contentWidth-6, 20, 50)

	errLine := ""
	if v.editErr != "" {
		errLine = s.InputError.Render(v.editErr)
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(formTitle),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.editTitle.View()),
		errLine,
		"Description:",
		descStyle.Render(v.editDesc.View()),
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	pending := v.rec.Pending()

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("Are you sure you want to delete %q?", pending.TaskTitle)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("space") + "  toggle completion",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("e") + "      edit task",
		s.HelpKey.Render("d") + "      delete task",
		s.HelpKey.Render("m") + "      move task",
		s.HelpKey.Render("/") + "      search",
		s.HelpKey.Render("y") + "      copy title",
		s.HelpKey.Render("t") + "      toggle theme",
		s.HelpKey.Render("q") + "      quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
