// Package importer bulk-loads and dumps tasks as YAML. Imports go through
// the reconciler so the duplicate/revival policy applies to seeded tasks
// the same way it does to ones typed into the UI.
package importer

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Jyothi2828/TaskManagementApp/internal/models"
	"github.com/Jyothi2828/TaskManagementApp/internal/task"
)

// YAMLTask represents a single task in the YAML input.
type YAMLTask struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	Completed   bool   `yaml:"completed,omitempty"`
}

// YAMLInput represents the root structure of the YAML input.
type YAMLInput struct {
	Tasks []YAMLTask `yaml:"tasks"`
}

// Result summarizes what an import did.
type Result struct {
	Added   int
	Revived int
	Skipped int
}

// Import parses a YAML document and adds its tasks through the reconciler.
// Tasks colliding with an existing incomplete task are skipped; collisions
// with completed tasks follow the revival path.
func Import(rec *task.Reconciler, data []byte) (Result, error) {
	var input YAMLInput
	if err := yaml.Unmarshal(data, &input); err != nil {
		return Result{}, fmt.Errorf("YAML parse error: %w", err)
	}

	if len(input.Tasks) == 0 {
		return Result{}, fmt.Errorf("no tasks found in YAML")
	}

	var res Result
	for _, yt := range input.Tasks {
		added, err := rec.Add(task.Draft{
			Title:       yt.Title,
			Description: yt.Description,
			Completed:   yt.Completed,
		})
		switch {
		case errors.Is(err, task.ErrDuplicateTitle):
			res.Skipped++
		case errors.Is(err, task.ErrEmptyTitle):
			return res, fmt.Errorf("task title is required")
		case err != nil:
			return res, fmt.Errorf("add task %q: %w", yt.Title, err)
		case added.ReaddedAt != nil:
			res.Revived++
		default:
			res.Added++
		}
	}
	return res, nil
}

// Export renders tasks as a YAML document in display order.
func Export(tasks []models.Task) ([]byte, error) {
	out := YAMLInput{Tasks: make([]YAMLTask, len(tasks))}
	for i, t := range tasks {
		out.Tasks[i] = YAMLTask{
			Title:       t.Title,
			Description: t.Description,
			Completed:   t.Completed,
		}
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return data, nil
}
