package digest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/teemow/libfinder/internal/finder"
	"github.com/teemow/libfinder/internal/instrumentation"
	"github.com/teemow/libfinder/internal/library"
	"github.com/teemow/libfinder/internal/logging"
)

// ErrNoSchedule is returned by Start when the scheduler has no cron schedule.
var ErrNoSchedule = errors.New("digest schedule is empty")

// Runner produces a digest report. *finder.Finder implements it.
type Runner interface {
	Digest(ctx context.Context, date string, ids []int) (*finder.Report, error)
}

// Options configures a Scheduler.
type Options struct {
	// Schedule is a standard five-field cron spec, e.g. "0 7 * * *"
	Schedule string

	// Libraries restricts the digest. Empty selects every library.
	Libraries []int

	// MaxLength bounds event descriptions; zero selects the default.
	MaxLength int

	// Location is the time zone "today" is computed in. Defaults to time.Local.
	Location *time.Location

	Logger  *slog.Logger
	Metrics *instrumentation.Metrics

	// now is replaced in tests
	now func() time.Time
}

// Scheduler runs digests and writes the rendered reports to a sink.
type Scheduler struct {
	runner  Runner
	dir     *library.Directory
	sink    io.Writer
	opts    Options
	logger  *slog.Logger
	metrics *instrumentation.Metrics

	// mu serializes runs and sink writes
	mu sync.Mutex
}

// New creates a scheduler writing to sink.
func New(runner Runner, dir *library.Directory, sink io.Writer, opts Options) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.now == nil {
		opts.now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		runner:  runner,
		dir:     dir,
		sink:    sink,
		opts:    opts,
		logger:  logging.WithOperation(logger, "digest"),
		metrics: opts.Metrics,
	}
}

// Today returns the current date in the scheduler's time zone.
func (s *Scheduler) Today() string {
	return s.opts.now().In(s.opts.Location).Format(finder.DateLayout)
}

// RunOnce runs a digest for today and writes it to the sink.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	return s.RunFor(ctx, s.Today())
}

// RunFor runs a digest for date and writes it to the sink. The report is rendered
// completely before anything is written.
func (s *Scheduler) RunFor(ctx context.Context, date string) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := instrumentation.StartSpan(ctx, "digest.run",
		instrumentation.NewSpanAttributeBuilder().WithDate(date).Build()...)
	defer span.End()

	start := time.Now()
	defer func() {
		status := instrumentation.StatusSuccess
		if err != nil {
			status = instrumentation.StatusError
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		s.metrics.RecordDigestRun(ctx, status, time.Since(start))
	}()

	report, err := s.runner.Digest(ctx, date, s.opts.Libraries)
	if err != nil {
		return fmt.Errorf("digest for %s failed: %w", date, err)
	}

	var buf bytes.Buffer
	if err := WriteReport(&buf, report, s.dir, s.opts.MaxLength); err != nil {
		return fmt.Errorf("failed to render digest: %w", err)
	}
	if _, err := s.sink.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write digest: %w", err)
	}

	s.logger.Info("digest written",
		logging.Date(date),
		slog.Int("events", len(report.Events)),
		slog.Int("libraries_with_rooms", len(report.Rooms)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// Start runs a digest on every tick of the schedule until ctx is cancelled, then
// waits for a running digest to finish. A failed run is logged and does not stop the
// schedule.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.opts.Schedule == "" {
		return ErrNoSchedule
	}

	c := cron.New(
		cron.WithLocation(s.opts.Location),
		cron.WithLogger(logging.NewCronAdapter(s.logger)),
		cron.WithChain(cron.SkipIfStillRunning(logging.NewCronAdapter(s.logger))),
	)

	if _, err := c.AddFunc(s.opts.Schedule, func() { s.runScheduled(ctx) }); err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", s.opts.Schedule, err)
	}

	s.logger.Info("digest scheduler started", slog.String("schedule", s.opts.Schedule))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()

	s.logger.Info("digest scheduler stopped")
	return nil
}

// runScheduled is the cron job. Its error has no caller to return to, so it is logged.
func (s *Scheduler) runScheduled(ctx context.Context) {
	if err := s.RunOnce(ctx); err != nil {
		s.logger.Error("scheduled digest failed", logging.Err(err))
	}
}

// ValidateSchedule checks a cron spec without starting anything.
func ValidateSchedule(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", spec, err)
	}
	return nil
}
