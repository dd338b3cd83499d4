package services

import (
	"equipcare-hub.com/equipcare-hub/pkg/constants"
	model "equipcare-hub.com/equipcare-hub/pkg/models"
)

// Default boards written the first time a collection is opened.

func seedTasks(cadence constants.Cadence) []model.Task {
	switch cadence {
	case constants.CadenceDaily:
		return []model.Task{
			{ID: "dt001", TaskName: "Check hydraulic fluid level", MachineID: "CNC-001", DueDate: "2024-08-15", Status: constants.StatusPending, AssignedTo: "J. Alvarez", Priority: constants.PriorityMedium, Description: "Top up to the MAX mark with ISO VG 46."},
			{ID: "dt002", TaskName: "Clean coolant filter", MachineID: "LATHE-02", DueDate: "2024-08-15", Status: constants.StatusInProgress, AssignedTo: "M. Chen", Priority: constants.PriorityHigh},
			{ID: "dt003", TaskName: "Inspect safety guards", MachineID: "PRESS-03", DueDate: "2024-08-16", Status: constants.StatusCompleted, Priority: constants.PriorityLow},
		}
	case constants.CadenceWeekly:
		return []model.Task{
			{ID: "wt001", TaskName: "Lubricate conveyor bearings", MachineID: "CONV-01", DueDate: "2024-08-19", Status: constants.StatusPending, AssignedTo: "S. Patel", Priority: constants.PriorityMedium},
			{ID: "wt002", TaskName: "Calibrate torque sensors", MachineID: "ROBOT-04", DueDate: "2024-08-21", Status: constants.StatusOverdue, Priority: constants.PriorityHigh},
		}
	case constants.CadenceMonthly:
		return []model.Task{
			{ID: "mt001", TaskName: "Replace air compressor filter", MachineID: "COMP-01", DueDate: "2024-08-31", Status: constants.StatusPending, Priority: constants.PriorityMedium},
			{ID: "mt002", TaskName: "Full electrical inspection", MachineID: "CNC-001", DueDate: "Mid Month", Status: constants.StatusPending, AssignedTo: "Electrical team", Priority: constants.PriorityHigh},
		}
	default:
		return nil
	}
}

func seedLog() []model.LogEntry {
	var entries []model.LogEntry
	for _, cadence := range constants.Cadences {
		for _, task := range seedTasks(cadence) {
			entries = append(entries, model.NewLogEntry(task, cadence))
		}
	}
	return entries
}

func seedSchedule() []model.ScheduleTask {
	return []model.ScheduleTask{
		{ID: "st001", TaskName: "Spindle bearing replacement", MachineID: "CNC-001", ScheduledDate: "2024-09-10", Frequency: "Annually", AssignedTo: "J. Alvarez", Status: constants.StatusPending},
		{ID: "st002", TaskName: "Hydraulic hose inspection", MachineID: "PRESS-03", ScheduledDate: "2024-08-28", Frequency: "Quarterly", Status: constants.StatusPending},
		{ID: "st003", TaskName: "Gearbox oil change", MachineID: "CONV-01", ScheduledDate: "2024-09-02", Frequency: "Semi-annually", AssignedTo: "S. Patel", Status: constants.StatusInProgress, Notes: "Order 20L of ISO VG 220 beforehand."},
	}
}
