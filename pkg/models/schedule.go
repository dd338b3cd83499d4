package model

import "equipcare-hub.com/equipcare-hub/pkg/constants"

type ScheduleTask struct {
	ID            string               `json:"id"`
	TaskName      string               `json:"taskName"`
	MachineID     string               `json:"machineId"`
	ScheduledDate string               `json:"scheduledDate"`
	Frequency     string               `json:"frequency,omitempty"`
	AssignedTo    string               `json:"assignedTo,omitempty"`
	Status        constants.TaskStatus `json:"status"`
	Notes         string               `json:"notes,omitempty"`
}

func (s ScheduleTask) RecordID() string { return s.ID }
