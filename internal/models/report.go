package models

// Report is the engine's output boundary. Its field names and status
// vocabulary (ok/warning/error) are consumed unmodified by the HTTP JSON API
// and the text tool formatter; do not rename without coordinating both.
type Report struct {
	Timestamp     string                `json:"timestamp"`
	Checks        map[string]CheckEntry `json:"checks"`
	OverallHealth OverallHealth         `json:"overall_health"`
}

// CheckEntry is the boundary representation of one check outcome. Status is
// the translated vocabulary: passed and info map to "ok", warning stays
// "warning", failed maps to "error".
type CheckEntry struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Details EntryDetails `json:"details"`
}

// EntryDetails carries the diagnostic block attached to a check entry.
type EntryDetails struct {
	Timestamp string   `json:"timestamp"`
	Severity  string   `json:"severity"`
	Details   []string `json:"details"`
}

// OverallHealth reduces all check outcomes to a score and letter grade.
type OverallHealth struct {
	Score   float64 `json:"score"`
	Grade   string  `json:"grade"`
	Summary Summary `json:"summary"`
}

// Summary counts boundary statuses across all checks.
type Summary struct {
	TotalChecks int `json:"total_checks"`
	OK          int `json:"ok"`
	Warnings    int `json:"warnings"`
	Errors      int `json:"errors"`
}
