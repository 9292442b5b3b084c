package backendapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ExportSnapshotLimit is the page size used when snapshotting a filter for a
// full export, wide enough to cover the whole filtered set in one page.
const ExportSnapshotLimit = 10000

// LogFilter is the audit listing filter. Zero-valued fields are unconstrained
// and are not transmitted; Page and Limit are always sent.
type LogFilter struct {
	Action   string `json:"action,omitempty"`
	Username string `json:"username,omitempty"`
	Status   string `json:"status,omitempty"`
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
}

const filterDateLayout = "2006-01-02"

// Validate fails fast on a filter the backend would reject anyway, before
// any request is spent on it.
func (f LogFilter) Validate() error {
	from, fromErr := time.Parse(filterDateLayout, strings.TrimSpace(f.DateFrom))
	to, toErr := time.Parse(filterDateLayout, strings.TrimSpace(f.DateTo))
	if fromErr != nil || toErr != nil {
		return nil
	}
	if to.Before(from) {
		return &APIError{StatusCode: http.StatusBadRequest, Detail: "Start date cannot be after end date"}
	}
	return nil
}

// Values encodes the filter as query parameters, omitting empty fields.
func (f LogFilter) Values() url.Values {
	values := url.Values{}
	if v := strings.TrimSpace(f.Action); v != "" {
		values.Set("action", v)
	}
	if v := strings.TrimSpace(f.Username); v != "" {
		values.Set("username", v)
	}
	if v := strings.TrimSpace(f.Status); v != "" {
		values.Set("status", v)
	}
	if v := strings.TrimSpace(f.DateFrom); v != "" {
		values.Set("date_from", v)
	}
	if v := strings.TrimSpace(f.DateTo); v != "" {
		values.Set("date_to", v)
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 20
	}
	values.Set("page", strconv.Itoa(page))
	values.Set("limit", strconv.Itoa(limit))
	return values
}

// AuditLogEntry is one privileged-action record from the backend audit trail.
type AuditLogEntry struct {
	ID        int64  `json:"id"`
	Action    string `json:"action"`
	Status    string `json:"status"`
	Username  string `json:"username"`
	Resource  string `json:"resource"`
	Message   string `json:"message"`
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	CreatedAt string `json:"created_at"`
}

// LogPage is one page of audit records.
type LogPage struct {
	Items []AuditLogEntry `json:"items"`
	Total int             `json:"total"`
}

// ExportJob identifies a submitted export and where its artifact will appear.
type ExportJob struct {
	JobID       string `json:"job_id"`
	DownloadURL string `json:"download_url"`
	Format      string `json:"format"`
	Message     string `json:"message"`
}

// ListAuditLogs fetches GET /logs with the given filter.
func (b *Bound) ListAuditLogs(ctx context.Context, filter LogFilter) (LogPage, error) {
	if err := filter.Validate(); err != nil {
		return LogPage{}, err
	}
	endpoint, err := b.c.endpoint("/logs", filter.Values())
	if err != nil {
		return LogPage{}, err
	}

	var page LogPage
	if err := b.getJSON(ctx, endpoint, &page); err != nil {
		return LogPage{}, err
	}
	if page.Items == nil {
		page.Items = []AuditLogEntry{}
	}
	return page, nil
}

// SubmitExport posts the chosen format plus the filter snapshot to
// POST /logs/export and returns the job handle.
func (b *Bound) SubmitExport(ctx context.Context, format string, filter LogFilter) (ExportJob, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		return ExportJob{}, errors.New("export format is required")
	}
	if err := filter.Validate(); err != nil {
		return ExportJob{}, err
	}

	endpoint, err := b.c.endpoint("/logs/export", nil)
	if err != nil {
		return ExportJob{}, err
	}

	body := struct {
		Format  string    `json:"format"`
		Filters LogFilter `json:"filters"`
	}{Format: format, Filters: filter}

	var job ExportJob
	if err := b.postJSON(ctx, endpoint, body, &job); err != nil {
		return ExportJob{}, err
	}
	if strings.TrimSpace(job.DownloadURL) == "" {
		return ExportJob{}, errors.New("backend returned no download url")
	}
	return job, nil
}

// FetchArtifact attempts to download the export artifact. While the job is
// still being produced the backend answers 404, surfaced as ErrArtifactNotReady
// so the poll loop can tell "pending" from real failure.
func (b *Bound) FetchArtifact(ctx context.Context, downloadURL string) ([]byte, error) {
	if err := b.c.ensureClient(); err != nil {
		return nil, err
	}
	endpoint, err := b.c.resolve(downloadURL)
	if err != nil {
		return nil, fmt.Errorf("download url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if b.token != "" {
		req.Header.Set("Authorization", "Bearer "+b.token)
	}

	resp, err := b.c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, ErrArtifactNotReady
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, newAPIError(resp.StatusCode, body)
	}
	return io.ReadAll(resp.Body)
}
