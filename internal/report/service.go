package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNoRecords     = errors.New("no records")
	ErrUnknownReport = errors.New("unknown report")
	ErrNoLinkSink    = errors.New("link delivery is not configured")
)

// NoRecordsError is the empty-result condition: not a failure, the caller shows a
// warning naming the filters.
type NoRecordsError struct {
	Subject string
	Filters string
}

func (e *NoRecordsError) Error() string {
	return fmt.Sprintf("no %s found for %s", e.Subject, e.Filters)
}

func (e *NoRecordsError) Unwrap() error { return ErrNoRecords }

// Run statuses recorded for every export attempt.
const (
	RunSucceeded = "succeeded"
	RunEmpty     = "empty"
	RunFailed    = "failed"
)

// Run is one export attempt, passed to the Recorder.
type Run struct {
	ID          string
	Report      string
	Format      Format
	UserID      string
	Filter      Filter
	RecordCount int
	Filename    string
	ObjectKey   string
	Status      string
	Error       string
	StartedAt   time.Time
	Duration    time.Duration
}

// Recorder persists export history.
type Recorder interface {
	RecordRun(ctx context.Context, run *Run) error
}

// ExportRequest one user-initiated export.
type ExportRequest struct {
	Report string
	Format Format
	Filter Filter
	UserID string
	// Link asks for a short-lived download link instead of the bytes.
	Link bool
}

type ExportResult struct {
	Delivery    *Delivery
	RecordCount int
	Filename    string
}

type Options struct {
	PageSize int
	MaxPages int
	Location *time.Location
}

// Service runs exports: capture filters, accumulate pages, render, deliver.
type Service struct {
	reports  map[string]Report
	slot     Slot
	stream   Sink
	link     Sink
	recorder Recorder
	opts     Options
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

func NewService(reports []Report, slot Slot, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	m := make(map[string]Report, len(reports))
	for _, r := range reports {
		m[r.Key()] = r
	}
	return &Service{
		reports: m,
		slot:    slot,
		stream:  StreamSink{},
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}
}

// SetLinkSink enables link delivery.
func (s *Service) SetLinkSink(sink Sink) {
	s.link = sink
}

// SetRecorder enables export history.
func (s *Service) SetRecorder(r Recorder, newID func() string) {
	s.recorder = r
	s.newID = newID
}

// Reports lists the registered report keys.
func (s *Service) Reports() []string {
	keys := make([]string, 0, len(s.reports))
	for k := range s.reports {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the registered report for key.
func (s *Service) Lookup(key string) (Report, bool) {
	r, ok := s.reports[key]
	return r, ok
}

// Export runs one export. req is taken by value so later changes to the caller's
// filter state cannot reach a running aggregation.
func (s *Service) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	rep, ok := s.reports[req.Report]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, req.Report)
	}
	if req.Format != FormatPDF && req.Format != FormatXLSX {
		return nil, fmt.Errorf("unsupported format %q", req.Format)
	}
	sink := s.stream
	if req.Link {
		if s.link == nil {
			return nil, ErrNoLinkSink
		}
		sink = s.link
	}

	filter := req.Filter
	release, err := s.slot.Acquire(ctx, req.UserID+":"+req.Report)
	if err != nil {
		return nil, err
	}
	defer release()

	run := &Run{
		Report:    req.Report,
		Format:    req.Format,
		UserID:    req.UserID,
		Filter:    filter,
		StartedAt: s.now(),
	}

	result, err := s.export(ctx, rep, req.Format, filter, sink, run)
	run.Duration = s.now().Sub(run.StartedAt)
	switch {
	case err == nil:
		run.Status = RunSucceeded
	case errors.Is(err, ErrNoRecords):
		run.Status = RunEmpty
	default:
		run.Status = RunFailed
		run.Error = err.Error()
	}
	s.record(ctx, run)

	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) export(ctx context.Context, rep Report, format Format, filter Filter, sink Sink, run *Run) (*ExportResult, error) {
	now := s.now().In(s.opts.Location)

	doc, err := rep.Collect(ctx, filter, s.opts.PageSize, s.opts.MaxPages, now)
	if err != nil {
		s.logger.Warn("report aggregation failed",
			zap.String("report", rep.Key()), zap.Error(err))
		return nil, err
	}
	if doc.RecordCount == 0 {
		return nil, &NoRecordsError{Subject: rep.Subject(), Filters: filter.Describe(rep.EntityLabel())}
	}
	run.RecordCount = doc.RecordCount

	artifact, err := render(doc, format)
	if err != nil {
		return nil, err
	}
	run.Filename = artifact.Filename

	delivery, err := sink.Deliver(ctx, artifact)
	if err != nil {
		return nil, err
	}
	run.ObjectKey = delivery.ObjectKey

	s.logger.Info("report exported",
		zap.String("report", rep.Key()),
		zap.String("format", string(format)),
		zap.Int("records", doc.RecordCount),
		zap.String("filename", artifact.Filename),
	)
	return &ExportResult{
		Delivery:    delivery,
		RecordCount: doc.RecordCount,
		Filename:    artifact.Filename,
	}, nil
}

func (s *Service) record(ctx context.Context, run *Run) {
	if s.recorder == nil {
		return
	}
	if s.newID != nil {
		run.ID = s.newID()
	}
	// recorded even when the request context is already cancelled
	ctx = context.WithoutCancel(ctx)
	if err := s.recorder.RecordRun(ctx, run); err != nil {
		s.logger.Warn("record export run failed", zap.String("report", run.Report), zap.Error(err))
	}
}
