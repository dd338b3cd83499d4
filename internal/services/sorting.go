package services

import (
	"cmp"
	"slices"
	"strings"
	"time"

	model "equipcare-hub.com/equipcare-hub/pkg/models"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// ParseDate interprets s as a calendar date in any of the accepted layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CompareDates orders two date fields ascending. When either side does not
// parse, the raw strings are compared instead, so mixed lists may not end up
// in strict date order.
func CompareDates(a, b string) int {
	ta, okA := ParseDate(a)
	tb, okB := ParseDate(b)
	if okA && okB {
		return ta.Compare(tb)
	}
	return cmp.Compare(a, b)
}

func SortLogEntries(entries []model.LogEntry) {
	slices.SortStableFunc(entries, func(x, y model.LogEntry) int {
		return CompareDates(x.DueDate, y.DueDate)
	})
}

func SortScheduleTasks(tasks []model.ScheduleTask) {
	slices.SortStableFunc(tasks, func(x, y model.ScheduleTask) int {
		return CompareDates(x.ScheduledDate, y.ScheduledDate)
	})
}
