package models

import (
	"fmt"
	"time"
)

// Task represents a single unit of trackable work.
type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	CreatedAt   time.Time
	ModifiedAt  *time.Time // set on any edit or completion toggle
	CompletedAt *time.Time // non-nil exactly while Completed is true
	ReaddedAt   *time.Time // set when a completed task is revived by re-adding
}

// Summary holds the task counts shown in the summary panel.
type Summary struct {
	Total     int
	Completed int
	Remaining int
}

// Elapsed returns a short human-readable duration since t, e.g. "3d 4h ago".
func Elapsed(t, now time.Time) string {
	minutes, hours, days := splitDuration(now.Sub(t))

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh ago", days, hours%24)
	case hours > 0:
		return fmt.Sprintf("%dh %dm ago", hours, minutes%60)
	default:
		return fmt.Sprintf("%dm ago", minutes)
	}
}

// TimeTaken returns how long the task took to complete, or "" if it is not
// completed.
func (t Task) TimeTaken() string {
	if t.CompletedAt == nil {
		return ""
	}
	minutes, hours, days := splitDuration(t.CompletedAt.Sub(t.CreatedAt))

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours%24)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

func splitDuration(d time.Duration) (minutes, hours, days int) {
	if d < 0 {
		d = 0
	}
	minutes = int(d.Minutes())
	hours = minutes / 60
	days = hours / 24
	return minutes, hours, days
}
