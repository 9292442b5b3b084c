// Package auditlog manages the browsing state of the audit trail: the active
// filter set, pagination, and the catalogs the filter dropdowns offer.
package auditlog

import (
	"context"
	"sync"

	"github.com/Diogovx/offboarding-console/internal/backendapi"
)

// DefaultPageSize matches the backend's default listing page.
const DefaultPageSize = 20

// Actions is the catalog of recorded action names, in display order.
func Actions() []string {
	return []string{
		"system_login",
		"disable_ad_user",
		"disable_intouch_user",
		"disable_turnstile_user",
		"export_audit_logs",
	}
}

// Statuses is the catalog of recorded entry statuses.
func Statuses() []string {
	return []string{"SUCCESS", "FAILED", "DENIED", "PARTIAL"}
}

// Criteria is the operator-editable part of the filter set.
type Criteria struct {
	Action   string
	Username string
	Status   string
	DateFrom string
	DateTo   string
}

// Lister fetches one page of the audit trail. *backendapi.Bound satisfies it.
type Lister interface {
	ListAuditLogs(ctx context.Context, filter backendapi.LogFilter) (backendapi.LogPage, error)
}

// Browser is the stateful audit-trail view. Changing any criterion returns
// the view to the first page; pagination keeps the criteria as they are.
type Browser struct {
	mu       sync.Mutex
	criteria Criteria
	page     int
	limit    int
}

func NewBrowser() *Browser {
	return &Browser{page: 1, limit: DefaultPageSize}
}

// Apply replaces the criteria. If anything changed the view jumps back to
// page 1; re-applying identical criteria stays on the current page.
func (b *Browser) Apply(c Criteria) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if c != b.criteria {
		b.page = 1
	}
	b.criteria = c
}

// Clear resets every criterion and returns to the first page.
func (b *Browser) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.criteria = Criteria{}
	b.page = 1
}

// PrevPage steps back one page, never below the first.
func (b *Browser) PrevPage() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page > 1 {
		b.page--
	}
}

// NextPage steps forward one page. The backend answers an out-of-range page
// with an empty item list, so no upper bound is enforced here.
func (b *Browser) NextPage() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page++
}

// Page returns the current page number, counted from 1.
func (b *Browser) Page() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page
}

// Criteria returns a copy of the active criteria.
func (b *Browser) Criteria() Criteria {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.criteria
}

// Filter snapshots the current criteria and pagination as a request filter.
func (b *Browser) Filter() backendapi.LogFilter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return backendapi.LogFilter{
		Action:   b.criteria.Action,
		Username: b.criteria.Username,
		Status:   b.criteria.Status,
		DateFrom: b.criteria.DateFrom,
		DateTo:   b.criteria.DateTo,
		Page:     b.page,
		Limit:    b.limit,
	}
}

// ExportFilter snapshots the criteria for a full export: the first page with
// a limit wide enough to cover the whole filtered set.
func (b *Browser) ExportFilter() backendapi.LogFilter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return backendapi.LogFilter{
		Action:   b.criteria.Action,
		Username: b.criteria.Username,
		Status:   b.criteria.Status,
		DateFrom: b.criteria.DateFrom,
		DateTo:   b.criteria.DateTo,
		Page:     1,
		Limit:    backendapi.ExportSnapshotLimit,
	}
}

// List fetches the page the browser currently points at.
func (b *Browser) List(ctx context.Context, lister Lister) (backendapi.LogPage, error) {
	return lister.ListAuditLogs(ctx, b.Filter())
}
