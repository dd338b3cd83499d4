package dto

import "equipcare-hub.com/equipcare-hub/pkg/constants"

// TaskForm is what a cadence editor submits.
type TaskForm struct {
	TaskName    string               `json:"taskName" validate:"required,min=3"`
	MachineID   string               `json:"machineId" validate:"required"`
	DueDate     string               `json:"dueDate" validate:"required"`
	Status      constants.TaskStatus `json:"status" validate:"omitempty,oneof=Pending 'In Progress' Completed Overdue"`
	AssignedTo  string               `json:"assignedTo"`
	Priority    constants.Priority   `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	Description string               `json:"description"`
	ImageURL    string               `json:"imageUrl"`
}

// ScheduleForm is what the schedule editor submits.
type ScheduleForm struct {
	TaskName      string               `json:"taskName" validate:"required,min=3"`
	MachineID     string               `json:"machineId" validate:"required"`
	ScheduledDate string               `json:"scheduledDate" validate:"required"`
	Frequency     string               `json:"frequency"`
	AssignedTo    string               `json:"assignedTo"`
	Status        constants.TaskStatus `json:"status" validate:"omitempty,oneof=Pending 'In Progress' Completed Overdue"`
	Notes         string               `json:"notes"`
}
