package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Jyothi2828/TaskManagementApp/internal/db"
	"github.com/Jyothi2828/TaskManagementApp/internal/importer"
	"github.com/Jyothi2828/TaskManagementApp/internal/task"
	"github.com/Jyothi2828/TaskManagementApp/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var dbPath string

func main() {
	rootCmd := &cobra.Command{
		Use:     "taskman",
		Short:   "Taskman - terminal task tracker",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		RunE:    runTUI,
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the database file (defaults to the user data directory)")

	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// open initializes the database and loads the task list into memory
func open() (*db.DB, *task.Reconciler, error) {
	database, err := db.New(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize database: %w", err)
	}

	rec := task.New(database)
	if err := rec.Load(); err != nil {
		database.Close()
		return nil, nil, err
	}
	return database, rec, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	database, rec, err := open()
	if err != nil {
		return err
	}
	defer database.Close()

	dark, found, err := database.GetTheme()
	if err != nil {
		log.Printf("load theme preference: %v", err)
	}
	if !found {
		dark = false
	}

	app := ui.NewApp(database, rec, dark)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run application: %w", err)
	}
	return nil
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Import tasks from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			database, rec, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			res, err := importer.Import(rec, data)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d tasks (%d revived, %d duplicates skipped)\n",
				res.Added, res.Revived, res.Skipped)
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export tasks to YAML (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, rec, err := open()
			if err != nil {
				return err
			}
			defer database.Close()

			data, err := importer.Export(rec.Tasks())
			if err != nil {
				return err
			}

			if len(args) == 0 {
				_, err = os.Stdout.Write(data)
				return err
			}
			return os.WriteFile(args[0], data, 0644)
		},
	}
}
