package services

import (
	"context"
	"io"

	"go.uber.org/zap"

	"equipcare-hub.com/equipcare-hub/internal/export"
	"equipcare-hub.com/equipcare-hub/internal/records"
	"equipcare-hub.com/equipcare-hub/pkg/constants"
	model "equipcare-hub.com/equipcare-hub/pkg/models"
)

// LogService reads the maintenance log. The stored log is maintained by
// dual writes from the task editors; Derived and Reconcile rebuild it from
// the cadence boards instead.
type LogService struct {
	log       *records.Collection[model.LogEntry]
	cadences  map[constants.Cadence]*records.Collection[model.Task]
	retention LogRetention
	logger    *zap.Logger
}

func NewLogService(store *records.Store, retention LogRetention, logger *zap.Logger) *LogService {
	cadences := make(map[constants.Cadence]*records.Collection[model.Task], len(constants.Cadences))
	for _, cadence := range constants.Cadences {
		cadences[cadence] = NewTaskCollection(store, cadence)
	}

	return &LogService{
		log:       NewLogCollection(store),
		cadences:  cadences,
		retention: retention,
		logger:    logger,
	}
}

func (s *LogService) Collection() *records.Collection[model.LogEntry] { return s.log }

// List returns the stored log ordered by due date.
func (s *LogService) List(ctx context.Context) []model.LogEntry {
	entries := s.log.Load(ctx)
	SortLogEntries(entries)
	return entries
}

// Derived computes the log from the three boards on read, ordered by due date.
func (s *LogService) Derived(ctx context.Context) []model.LogEntry {
	entries := s.derive(ctx)
	SortLogEntries(entries)
	return entries
}

func (s *LogService) derive(ctx context.Context) []model.LogEntry {
	var entries []model.LogEntry
	seen := make(map[string]bool)
	for _, cadence := range constants.Cadences {
		for _, task := range s.cadences[cadence].Load(ctx) {
			if seen[task.ID] {
				continue
			}
			seen[task.ID] = true
			entries = append(entries, model.NewLogEntry(task, cadence))
		}
	}
	return entries
}

type ReconcileReport struct {
	Updated int `json:"updated"`
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

func (r ReconcileReport) Changed() bool {
	return r.Updated+r.Added+r.Removed > 0
}

// Reconcile rewrites the stored log so that every board task has an entry
// equal to the board's copy. Entries of deleted tasks are kept under
// RetainDeleted and dropped under CascadeDelete. Nothing is written when the
// log is already consistent.
func (s *LogService) Reconcile(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	err := s.log.Mutate(ctx, func(current []model.LogEntry) ([]model.LogEntry, bool, error) {
		var next []model.LogEntry
		next, report = s.repair(current, s.derive(ctx))
		return next, report.Changed(), nil
	})
	if err != nil {
		return report, err
	}

	if report.Changed() {
		s.logger.Info("maintenance log reconciled",
			zap.Int("updated", report.Updated),
			zap.Int("added", report.Added),
			zap.Int("removed", report.Removed),
		)
	}
	return report, nil
}

func (s *LogService) repair(current, derived []model.LogEntry) ([]model.LogEntry, ReconcileReport) {
	var report ReconcileReport

	byID := make(map[string]model.LogEntry, len(derived))
	for _, entry := range derived {
		byID[entry.ID] = entry
	}

	next := make([]model.LogEntry, 0, len(current)+len(derived))
	placed := make(map[string]bool, len(current))
	for _, entry := range current {
		if placed[entry.ID] {
			report.Removed++
			continue
		}

		fresh, onBoard := byID[entry.ID]
		switch {
		case onBoard:
			if fresh != entry {
				report.Updated++
			}
			next = append(next, fresh)
		case s.retention == RetainDeleted:
			next = append(next, entry)
		default:
			report.Removed++
			continue
		}
		placed[entry.ID] = true
	}

	for _, entry := range derived {
		if !placed[entry.ID] {
			next = append(next, entry)
			placed[entry.ID] = true
			report.Added++
		}
	}

	return next, report
}

// Export writes the sorted stored log as a PDF table.
func (s *LogService) Export(ctx context.Context, w io.Writer) error {
	return export.WriteLogPDF(w, s.List(ctx))
}

func (s *LogService) NewViewer(opts ...ViewerOption[model.LogEntry]) *Viewer[model.LogEntry] {
	opts = append([]ViewerOption[model.LogEntry]{
		WithSort(func(a, b model.LogEntry) int { return CompareDates(a.DueDate, b.DueDate) }),
	}, opts...)
	return NewViewer(s.log, s.logger, opts...)
}
