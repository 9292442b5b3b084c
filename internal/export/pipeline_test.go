package export

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Diogovx/offboarding-console/internal/backendapi"
)

type fakeBackend struct {
	submitErr  error
	job        backendapi.ExportJob
	readyAfter int
	artifact   []byte
	fetchErr   error
	fetches    atomic.Int64
	release    chan struct{}
}

func (f *fakeBackend) SubmitExport(_ context.Context, format string, _ backendapi.LogFilter) (backendapi.ExportJob, error) {
	if f.submitErr != nil {
		return backendapi.ExportJob{}, f.submitErr
	}
	job := f.job
	if job.DownloadURL == "" {
		job.DownloadURL = "/download/audit-logs-20260901." + format
	}
	return job, nil
}

func (f *fakeBackend) FetchArtifact(_ context.Context, _ string) ([]byte, error) {
	n := f.fetches.Add(1)
	if f.release != nil {
		<-f.release
	}
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if int(n) <= f.readyAfter {
		return nil, backendapi.ErrArtifactNotReady
	}
	return f.artifact, nil
}

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func testPipeline(opts ...Option) *Pipeline {
	return NewPipeline(append([]Option{WithSleep(noSleep)}, opts...)...)
}

func TestRunRejectsUnknownFormat(t *testing.T) {
	p := testPipeline()
	_, err := p.Run(context.Background(), &fakeBackend{}, "pdf", backendapi.LogFilter{}, nil, nil)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestRunRetriesUntilArtifactReady(t *testing.T) {
	backend := &fakeBackend{readyAfter: 5, artifact: []byte("id,action\n1,system_login\n")}
	var messages []string
	p := testPipeline()

	result, err := p.Run(context.Background(), backend, "csv", backendapi.LogFilter{}, nil, func(m string) {
		messages = append(messages, m)
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := backend.fetches.Load(); got != 6 {
		t.Fatalf("fetched %d times, want 6", got)
	}
	if result.Name != "audit-logs-20260901.csv" {
		t.Fatalf("name = %q", result.Name)
	}
	if string(result.Data) != "id,action\n1,system_login\n" {
		t.Fatalf("data = %q", result.Data)
	}
	if len(messages) < 3 || messages[0] != "Preparing export..." || messages[1] != "Generating file..." {
		t.Fatalf("progress = %q", messages)
	}
}

func TestRunGivesUpAfterAttemptBudget(t *testing.T) {
	backend := &fakeBackend{readyAfter: 1000}
	p := testPipeline(WithPollAttempts(21))

	_, err := p.Run(context.Background(), backend, "jsonl", backendapi.LogFilter{}, nil, nil)
	if !errors.Is(err, ErrTimedOut) {
		t.Fatalf("expected ErrTimedOut, got %v", err)
	}
	if got := backend.fetches.Load(); got != 21 {
		t.Fatalf("fetched %d times, want exactly 21", got)
	}
}

func TestRunStopsOnTerminalDownloadError(t *testing.T) {
	backend := &fakeBackend{fetchErr: &backendapi.APIError{StatusCode: 500, Detail: "exporter crashed"}}
	p := testPipeline()

	_, err := p.Run(context.Background(), backend, "csv", backendapi.LogFilter{}, nil, nil)
	if err == nil || errors.Is(err, ErrTimedOut) {
		t.Fatalf("expected terminal error, got %v", err)
	}
	if got := backend.fetches.Load(); got != 1 {
		t.Fatalf("fetched %d times, want 1", got)
	}
}

func TestRunPropagatesSubmitFailure(t *testing.T) {
	backend := &fakeBackend{submitErr: &backendapi.APIError{
		StatusCode: 400,
		Detail:     "Date range cannot exceed 90 days",
	}}
	p := testPipeline()

	_, err := p.Run(context.Background(), backend, "csv", backendapi.LogFilter{}, nil, nil)
	if got := backendapi.Detail(err); got != "Date range cannot exceed 90 days" {
		t.Fatalf("detail = %q, err = %v", got, err)
	}
	if got := backend.fetches.Load(); got != 0 {
		t.Fatalf("fetched %d times, want 0", got)
	}
}

func TestRunCancelsBetweenAttempts(t *testing.T) {
	backend := &fakeBackend{readyAfter: 1000}
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPipeline(WithSleep(func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	_, err := p.Run(ctx, backend, "csv", backendapi.LogFilter{}, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunRejectsConcurrentExport(t *testing.T) {
	backend := &fakeBackend{
		artifact: []byte("x"),
		release:  make(chan struct{}),
	}
	p := testPipeline()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := p.Run(context.Background(), backend, "csv", backendapi.LogFilter{}, nil, nil); err != nil {
			t.Errorf("first run: %v", err)
		}
	}()

	// Wait for the first run to reach the download phase.
	for backend.fetches.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	if _, err := p.Run(context.Background(), backend, "csv", backendapi.LogFilter{}, nil, nil); !errors.Is(err, ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	close(backend.release)
	wg.Wait()

	// The slot frees up once the first run settles.
	backend.release = nil
	if _, err := p.Run(context.Background(), backend, "csv", backendapi.LogFilter{}, nil, nil); err != nil {
		t.Fatalf("run after completion: %v", err)
	}
}

func TestFileSaverWritesArtifact(t *testing.T) {
	dir := t.TempDir()
	saver := FileSaver{Dir: filepath.Join(dir, "exports")}

	path, err := saver.Save("../escape.csv", []byte("a,b\n"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(dir, "exports") {
		t.Fatalf("artifact landed at %q, outside the export dir", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "a,b\n" {
		t.Fatalf("content = %q", data)
	}
}

func TestArtifactNameFallsBackToFormat(t *testing.T) {
	if got := artifactName("http://backend/", "xlsx"); got != "audit-logs.xlsx" {
		t.Fatalf("name = %q", got)
	}
	if got := artifactName("/download/report.xlsx", "xlsx"); got != "report.xlsx" {
		t.Fatalf("name = %q", got)
	}
}
