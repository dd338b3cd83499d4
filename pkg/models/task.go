package model

import (
	"equipcare-hub.com/equipcare-hub/pkg/constants"
)

// Task is one maintenance task on a daily, weekly or monthly board.
type Task struct {
	ID          string               `json:"id"`
	TaskName    string               `json:"taskName"`
	MachineID   string               `json:"machineId"`
	DueDate     string               `json:"dueDate"`
	Status      constants.TaskStatus `json:"status"`
	AssignedTo  string               `json:"assignedTo,omitempty"`
	Priority    constants.Priority   `json:"priority,omitempty"`
	Description string               `json:"description,omitempty"`
	ImageURL    string               `json:"imageUrl,omitempty"`
}

func (t Task) RecordID() string { return t.ID }

// LogEntry is a task mirrored into the aggregate maintenance log, tagged with
// the cadence collection it was copied from at write time.
type LogEntry struct {
	Task
	Cadence constants.Cadence `json:"cadence"`
}

func (e LogEntry) RecordID() string { return e.ID }

// NewLogEntry tags a copy of t with its source cadence.
func NewLogEntry(t Task, cadence constants.Cadence) LogEntry {
	return LogEntry{Task: t, Cadence: cadence}
}
