package engine

import (
	"math"
	"time"

	"github.com/forceweaver/revenue-health/internal/models"
)

// statusWeight maps a check outcome to its contribution to the health score.
func statusWeight(status models.Status) float64 {
	switch status {
	case models.StatusPassed, models.StatusInfo:
		return 1.0
	case models.StatusWarning:
		return 0.5
	default:
		return 0.0
	}
}

// boundaryStatus translates internal statuses to the report vocabulary.
func boundaryStatus(status models.Status) string {
	switch status {
	case models.StatusPassed, models.StatusInfo:
		return "ok"
	case models.StatusWarning:
		return "warning"
	default:
		return "error"
	}
}

func grade(score float64) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// BuildReport scores the check results and assembles the boundary report.
// An empty result set scores zero.
func BuildReport(results []models.CheckResult, now time.Time) models.Report {
	report := models.Report{
		Timestamp: now.UTC().Format(time.RFC3339),
		Checks:    make(map[string]models.CheckEntry, len(results)),
	}

	var total float64
	for _, result := range results {
		total += statusWeight(result.Status)
		status := boundaryStatus(result.Status)
		report.Checks[string(result.Kind)] = models.CheckEntry{
			Status:  status,
			Message: result.Message,
			Details: models.EntryDetails{
				Timestamp: result.Timestamp.Format(time.RFC3339),
				Severity:  string(result.Severity),
				Details:   result.Details,
			},
		}
		switch status {
		case "ok":
			report.OverallHealth.Summary.OK++
		case "warning":
			report.OverallHealth.Summary.Warnings++
		default:
			report.OverallHealth.Summary.Errors++
		}
	}

	report.OverallHealth.Summary.TotalChecks = len(results)
	if len(results) > 0 {
		score := total / float64(len(results)) * 100
		report.OverallHealth.Score = math.Round(score*100) / 100
	}
	report.OverallHealth.Grade = grade(report.OverallHealth.Score)
	return report
}
