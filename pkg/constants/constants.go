package constants

type Cadence string

const (
	CadenceDaily   Cadence = "Daily"
	CadenceWeekly  Cadence = "Weekly"
	CadenceMonthly Cadence = "Monthly"
)

// Cadences lists every cadence in board order.
var Cadences = []Cadence{CadenceDaily, CadenceWeekly, CadenceMonthly}

type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
	StatusOverdue    TaskStatus = "Overdue"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Collection keys as they appear in the record store.
const (
	KeyDailyTasks     = "dailyTasks"
	KeyWeeklyTasks    = "weeklyTasks"
	KeyMonthlyTasks   = "monthlyTasks"
	KeyMaintenanceLog = "allMaintenanceTasksLog"
	KeyScheduledTasks = "scheduledMachineTasks"
	KeyUserProfile    = "userProfile"
	KeyTheme          = "theme"
	KeyNotifications  = "notificationsEnabled"
	KeyUserLanguage   = "userLanguage"
	KeyUserRole       = "userRole"
)

// CollectionKey returns the store key of a cadence collection.
func (c Cadence) CollectionKey() string {
	switch c {
	case CadenceDaily:
		return KeyDailyTasks
	case CadenceWeekly:
		return KeyWeeklyTasks
	case CadenceMonthly:
		return KeyMonthlyTasks
	default:
		return ""
	}
}

// Slug is the lower-case path segment used by the listing views.
func (c Cadence) Slug() string {
	switch c {
	case CadenceDaily:
		return "daily"
	case CadenceWeekly:
		return "weekly"
	case CadenceMonthly:
		return "monthly"
	default:
		return ""
	}
}

// ParseCadence accepts a slug ("daily") or the display name ("Daily").
func ParseCadence(s string) (Cadence, bool) {
	for _, c := range Cadences {
		if s == c.Slug() || s == string(c) {
			return c, true
		}
	}
	return "", false
}
