package audit

import (
	"context"
	"encoding/json"

	"github.com/ekamauln/livo-next/internal/report"
	"github.com/ekamauln/livo-next/internal/upstream"
)

// Recorder stores report runs through the repository.
type Recorder struct {
	repo *Repository
}

func NewRecorder(repo *Repository) *Recorder {
	return &Recorder{repo: repo}
}

func (r *Recorder) RecordRun(ctx context.Context, run *report.Run) error {
	f := ExportFilters{
		Search: run.Filter.Search,
		Filter: run.Filter.Entity,
	}
	if !run.Filter.DateFrom.IsZero() {
		f.StartDate = upstream.FormatDate(run.Filter.DateFrom)
	}
	if !run.Filter.DateTo.IsZero() {
		f.EndDate = upstream.FormatDate(run.Filter.DateTo)
	}
	filters, err := json.Marshal(f)
	if err != nil {
		return err
	}

	return r.repo.Create(ctx, &ExportRun{
		ID:          run.ID,
		Report:      run.Report,
		Format:      string(run.Format),
		UserID:      run.UserID,
		Filters:     string(filters),
		RecordCount: run.RecordCount,
		Filename:    run.Filename,
		ObjectKey:   run.ObjectKey,
		Status:      run.Status,
		Error:       run.Error,
		DurationMS:  run.Duration.Milliseconds(),
		CreatedAt:   run.StartedAt,
	})
}
