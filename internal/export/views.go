package export

import (
	"io"

	model "equipcare-hub.com/equipcare-hub/pkg/models"
)

var LogColumns = []Column{
	{Header: "Task Name", Width: 60},
	{Header: "Machine ID", Width: 35},
	{Header: "Cadence", Width: 25},
	{Header: "Due Date", Width: 35},
	{Header: "Status", Width: 30},
	{Header: "Priority", Width: 25},
	{Header: "Assigned To", Width: 57},
}

var ScheduleColumns = []Column{
	{Header: "Task Name", Width: 65},
	{Header: "Machine ID", Width: 35},
	{Header: "Scheduled Date", Width: 40},
	{Header: "Frequency", Width: 35},
	{Header: "Assigned To", Width: 55},
	{Header: "Status", Width: 37},
}

func LogRows(entries []model.LogEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			orPlaceholder(e.TaskName),
			orPlaceholder(e.MachineID),
			orPlaceholder(string(e.Cadence)),
			orPlaceholder(e.DueDate),
			orPlaceholder(string(e.Status)),
			orPlaceholder(string(e.Priority)),
			orPlaceholder(e.AssignedTo),
		})
	}
	return rows
}

func ScheduleRows(tasks []model.ScheduleTask) [][]string {
	rows := make([][]string, 0, len(tasks))
	for _, s := range tasks {
		rows = append(rows, []string{
			orPlaceholder(s.TaskName),
			orPlaceholder(s.MachineID),
			orPlaceholder(s.ScheduledDate),
			orPlaceholder(s.Frequency),
			orPlaceholder(s.AssignedTo),
			orPlaceholder(string(s.Status)),
		})
	}
	return rows
}

// WriteLogPDF exports entries in the order given.
func WriteLogPDF(w io.Writer, entries []model.LogEntry) error {
	return WriteTable(w, "Maintenance Task Log", LogColumns, LogRows(entries))
}

func WriteSchedulePDF(w io.Writer, tasks []model.ScheduleTask) error {
	return WriteTable(w, "Machine Maintenance Schedule", ScheduleColumns, ScheduleRows(tasks))
}
