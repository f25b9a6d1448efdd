package watcher

import (
	"fmt"
	"time"
)

// FailureEscalation is the number of consecutive failed polls after which a
// sync failure becomes critical.
const FailureEscalation = 3

// Compare turns one poll into alerts. prev is the last successful poll, or
// nil for the first; failures counts consecutive failed polls including curr.
func Compare(prev, curr *WatchState, failures int) []Alert {
	now := time.Now()
	if curr.Err != nil {
		level := "warning"
		if failures >= FailureEscalation {
			level = "critical"
		}
		return []Alert{{
			Level:   level,
			Title:   "Sync failed",
			Message: curr.Err.Error(),
			Time:    now,
		}}
	}

	var alerts []Alert
	if curr.Added > 0 {
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   fmt.Sprintf("%d new %s", curr.Added, plural(curr.Added, "change", "changes")),
			Message: versionMessage(prev, curr),
			Time:    now,
		})
	}
	if prev != nil && curr.MaxVersion < prev.MaxVersion {
		alerts = append(alerts, Alert{
			Level:   "warning",
			Title:   "Cache version went backwards",
			Message: fmt.Sprintf("was %d, now %d", prev.MaxVersion, curr.MaxVersion),
			Time:    now,
		})
	}
	return alerts
}

func versionMessage(prev, curr *WatchState) string {
	if prev == nil || prev.MaxVersion == 0 {
		return fmt.Sprintf("Cache now at version %d", curr.MaxVersion)
	}
	return fmt.Sprintf("Cache moved from version %d to %d", prev.MaxVersion, curr.MaxVersion)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
