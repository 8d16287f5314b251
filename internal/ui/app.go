package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Jyothi2828/TaskManagementApp/internal/db"
	"github.com/Jyothi2828/TaskManagementApp/internal/task"
	"github.com/Jyothi2828/TaskManagementApp/internal/ui/styles"
	"github.com/Jyothi2828/TaskManagementApp/internal/ui/views"
)

type App struct {
	db       *db.DB
	taskList *views.TaskListView
	dark     bool
	width    int
	height   int
}

// NewApp creates the application shell. dark selects the initial theme,
// normally the persisted preference.
func NewApp(database *db.DB, rec *task.Reconciler, dark bool) *App {
	styles.SetDark(dark)
	return &App{
		db:       database,
		taskList: views.NewTaskListView(rec),
		dark:     dark,
	}
}

func (a *App) Init() tea.Cmd {
	return a.taskList.Init()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case views.ToggleTheme:
		a.dark = !a.dark
		styles.SetDark(a.dark)
		a.db.SetTheme(a.dark)
		_, cmd := a.taskList.Update(views.ThemeChanged{})
		return a, cmd
	}

	_, cmd := a.taskList.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	return a.taskList.View()
}
