// Package export drives the audit-trail export flow: submit the job, poll
// the download location until the artifact exists, then hand the bytes to a
// saver.
package export

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"sync/atomic"
	"time"

	"github.com/Diogovx/offboarding-console/internal/backendapi"
	"github.com/Diogovx/offboarding-console/internal/metrics"
)

const (
	// DefaultPollInterval is the pause between download attempts.
	DefaultPollInterval = 1500 * time.Millisecond
	// DefaultPollAttempts bounds the poll loop; with the default interval the
	// operator waits about thirty seconds before the job is declared stuck.
	DefaultPollAttempts = 21
	// SuccessMessageTTL is how long a success notice stays on screen before
	// the UI clears it.
	SuccessMessageTTL = 4 * time.Second
)

var (
	// ErrInFlight rejects a second export while one is still running.
	ErrInFlight = errors.New("an export is already in progress")
	// ErrTimedOut reports that the artifact never appeared within the attempt
	// budget. The job may still finish on the backend side; retrying submits
	// a fresh one.
	ErrTimedOut = errors.New("export timed out waiting for the artifact")
	// ErrUnsupportedFormat rejects formats outside the allow-list.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// Formats is the allow-list of export formats the backend can produce.
func Formats() []string {
	return []string{"csv", "jsonl", "xlsx"}
}

func formatAllowed(format string) bool {
	for _, f := range Formats() {
		if f == format {
			return true
		}
	}
	return false
}

// Backend is the slice of the backend client the pipeline needs.
// *backendapi.Bound satisfies it.
type Backend interface {
	SubmitExport(ctx context.Context, format string, filter backendapi.LogFilter) (backendapi.ExportJob, error)
	FetchArtifact(ctx context.Context, downloadURL string) ([]byte, error)
}

// Saver persists a finished artifact and returns where it landed.
type Saver interface {
	Save(name string, data []byte) (string, error)
}

// Progress receives human-readable stage updates while a run is underway.
type Progress func(message string)

// Result describes a completed export.
type Result struct {
	Format string
	Name   string
	Path   string
	Data   []byte
}

// Pipeline runs one export at a time. Poll timing is injectable so tests do
// not wait on real clocks.
type Pipeline struct {
	interval time.Duration
	attempts int
	sleep    func(ctx context.Context, d time.Duration) error
	inFlight atomic.Bool
}

// Option adjusts pipeline construction.
type Option func(*Pipeline)

// WithPollInterval overrides the pause between download attempts.
func WithPollInterval(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithPollAttempts overrides the attempt budget.
func WithPollAttempts(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.attempts = n
		}
	}
}

// WithSleep overrides the waiting primitive.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Pipeline) {
		if fn != nil {
			p.sleep = fn
		}
	}
}

func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		interval: DefaultPollInterval,
		attempts: DefaultPollAttempts,
		sleep:    sleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run submits an export for the given filter snapshot and polls until the
// artifact can be downloaded. A 404 from the download location means the job
// is still being produced and counts against the attempt budget; any other
// failure is terminal. At most one run is active at a time.
//
// When saver is non-nil the artifact is persisted and Result.Path is set;
// either way Result.Data carries the bytes.
func (p *Pipeline) Run(ctx context.Context, backend Backend, format string, filter backendapi.LogFilter, saver Saver, progress Progress) (Result, error) {
	if !formatAllowed(format) {
		return Result{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		return Result{}, ErrInFlight
	}
	defer p.inFlight.Store(false)

	report := func(message string) {
		if progress != nil {
			progress(message)
		}
	}

	report("Preparing export...")
	job, err := backend.SubmitExport(ctx, format, filter)
	if err != nil {
		metrics.ExportJobsTotal.WithLabelValues("submit_error").Inc()
		return Result{}, fmt.Errorf("submit export: %w", err)
	}

	report("Generating file...")
	var data []byte
	for attempt := 1; ; attempt++ {
		metrics.ExportPollAttemptsTotal.Inc()
		data, err = backend.FetchArtifact(ctx, job.DownloadURL)
		if err == nil {
			break
		}
		if !errors.Is(err, backendapi.ErrArtifactNotReady) {
			metrics.ExportJobsTotal.WithLabelValues("error").Inc()
			return Result{}, fmt.Errorf("download artifact: %w", err)
		}
		if attempt >= p.attempts {
			metrics.ExportJobsTotal.WithLabelValues("timeout").Inc()
			return Result{}, ErrTimedOut
		}
		if err := p.sleep(ctx, p.interval); err != nil {
			metrics.ExportJobsTotal.WithLabelValues("canceled").Inc()
			return Result{}, err
		}
	}

	result := Result{
		Format: format,
		Name:   artifactName(job.DownloadURL, format),
		Data:   data,
	}
	if saver != nil {
		result.Path, err = saver.Save(result.Name, data)
		if err != nil {
			metrics.ExportJobsTotal.WithLabelValues("error").Inc()
			return Result{}, fmt.Errorf("save artifact: %w", err)
		}
	}

	metrics.ExportJobsTotal.WithLabelValues("success").Inc()
	report(fmt.Sprintf("Export complete: %s", result.Name))
	return result, nil
}

// artifactName derives a file name from the download location, falling back
// to a fixed name when the URL carries none.
func artifactName(downloadURL, format string) string {
	if u, err := url.Parse(downloadURL); err == nil {
		if name := path.Base(u.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return "audit-logs." + format
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
