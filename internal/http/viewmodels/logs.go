package viewmodels

import "github.com/Diogovx/offboarding-console/internal/backendapi"

// LogsPage is one page of the audit trail plus the figures the pager needs.
type LogsPage struct {
	Items       []backendapi.AuditLogEntry `json:"items"`
	Total       int                        `json:"total"`
	Page        int                        `json:"page"`
	TotalPages  int                        `json:"total_pages"`
	ShowingFrom int                        `json:"showing_from"`
	ShowingTo   int                        `json:"showing_to"`
}

// LogCatalogs feeds the filter dropdowns.
type LogCatalogs struct {
	Actions  []string `json:"actions"`
	Statuses []string `json:"statuses"`
	Formats  []string `json:"formats"`
}

// ExportStarted acknowledges a finished export delivered inline. ClearAfterMS
// tells the UI when to drop the success notice.
type ExportStarted struct {
	Message      string `json:"message"`
	FileName     string `json:"file_name"`
	ClearAfterMS int64  `json:"clear_after_ms"`
}
