package formatting

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/practice_scheduler/internal/model"
)

// FormatDate renders a date with its weekday, e.g. "Mon 04.03.2024".
func FormatDate(d model.Date) string {
	return d.In(time.UTC).Format("Mon 02.01.2006")
}

func FormatTimeRange(start, end time.Time) string {
	return fmt.Sprintf("%s-%s", start.Format("15:04"), end.Format("15:04"))
}

// FormatDuration renders minutes as "45 min", "2 h" or "1 h 30 min".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%d h", hours)
	}
	return fmt.Sprintf("%d h %d min", hours, mins)
}

// FormatRange renders the dates of a view.
func FormatRange(from, to model.Date) string {
	if from == to {
		return FormatDate(from)
	}
	return FormatDate(from) + " to " + FormatDate(to)
}
