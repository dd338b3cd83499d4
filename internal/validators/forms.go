package validators

import (
	"strings"

	dto "equipcare-hub.com/equipcare-hub/internal/data_models"
)

// ValidateTaskForm trims the text fields in place before checking them, so a
// name of three spaces does not pass as three characters.
func ValidateTaskForm(f *dto.TaskForm) error {
	f.TaskName = strings.TrimSpace(f.TaskName)
	f.MachineID = strings.TrimSpace(f.MachineID)
	f.DueDate = strings.TrimSpace(f.DueDate)
	return Struct(f)
}

func ValidateScheduleForm(f *dto.ScheduleForm) error {
	f.TaskName = strings.TrimSpace(f.TaskName)
	f.MachineID = strings.TrimSpace(f.MachineID)
	f.ScheduledDate = strings.TrimSpace(f.ScheduledDate)
	return Struct(f)
}

func ValidatePreferences(r *dto.PreferencesRequest) error {
	return Struct(r)
}
