package rules

// Status is the terminal outcome of evaluating one rule.
type Status string

const (
	StatusPending     Status = "pending"
	StatusOK          Status = "ok"
	StatusPartial     Status = "partial"
	StatusBlocked     Status = "blocked"
	StatusMissing     Status = "missing"
	StatusMissingPath Status = "missing_path"
	StatusUnsupported Status = "unsupported"
	StatusSkipped     Status = "skipped"
	StatusError       Status = "error"
	StatusUnknown     Status = "unknown"
)

// Counted reports whether items with this status contribute to summaries.
func (s Status) Counted() bool {
	return s == StatusOK || s == StatusPartial
}

// ItemReport is the outcome of one rule in a clean request.
type ItemReport struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Category   string `json:"category"`
	Risk       Risk   `json:"risk"`
	TotalBytes int64  `json:"total_bytes"`
	FileCount  int64  `json:"file_count"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	Drive      string `json:"drive,omitempty"`
}

// NewItemReport returns a pending report echoing r's identity.
func NewItemReport(r Rule) ItemReport {
	return ItemReport{
		ID:       r.ID,
		Title:    r.Title,
		Category: r.Category,
		Risk:     r.Risk,
		Status:   StatusPending,
	}
}

// SummaryBucket aggregates counted items sharing a category or drive.
type SummaryBucket struct {
	Key     string  `json:"key"`
	Bytes   int64   `json:"bytes"`
	Files   int64   `json:"files"`
	Percent float64 `json:"percent"`
}

// Summary is the roll-up of a report.
type Summary struct {
	TotalBytes int64           `json:"total_bytes"`
	TotalFiles int64           `json:"total_files"`
	ByCategory []SummaryBucket `json:"by_category"`
	ByDrive    []SummaryBucket `json:"by_drive"`
}

// Report is the response to a clean request. Items are in evaluation order.
type Report struct {
	Items     []ItemReport `json:"items"`
	Summary   Summary      `json:"summary"`
	Cancelled bool         `json:"cancelled,omitempty"`
}

// RuleScan is the outcome of one rule in a scan request.
type RuleScan struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Category      string `json:"category"`
	TotalBytes    int64  `json:"total_bytes"`
	FileCount     int64  `json:"file_count"`
	Status        Status `json:"status"`
	Message       string `json:"message,omitempty"`
	Drive         string `json:"drive,omitempty"`
	Blocked       bool   `json:"blocked"`
	BlockedReason string `json:"blocked_reason,omitempty"`
}

// ScanResult is the response to a scan request. A cancelled scan holds the
// rules that completed before cancellation.
type ScanResult struct {
	Items     []RuleScan `json:"items"`
	Cancelled bool       `json:"cancelled,omitempty"`
}

// Reports converts the scan items to ItemReports so they can be summarized.
func (r ScanResult) Reports() []ItemReport {
	out := make([]ItemReport, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, ItemReport{
			ID:         it.ID,
			Title:      it.Title,
			Category:   it.Category,
			TotalBytes: it.TotalBytes,
			FileCount:  it.FileCount,
			Status:     it.Status,
			Message:    it.Message,
			Drive:      it.Drive,
		})
	}
	return out
}
