package api

import (
	"fmt"
	"sort"
	"strings"

	"github.com/forceweaver/revenue-health/internal/models"
)

func statusMarker(status string) string {
	switch status {
	case "ok":
		return "[OK]"
	case "warning":
		return "[WARN]"
	default:
		return "[FAIL]"
	}
}

func checkTitle(kind string) string {
	words := strings.Split(kind, "_")
	for i, word := range words {
		if word == "owd" {
			words[i] = "OWD"
			continue
		}
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// FormatReportText renders a report as a plain-text summary for terminals
// and chat surfaces that cannot consume the JSON shape.
func FormatReportText(report models.Report) string {
	var out []string

	out = append(out,
		"Revenue Cloud Health Check Report",
		strings.Repeat("=", 60),
		fmt.Sprintf("Generated: %s", report.Timestamp),
		"",
		fmt.Sprintf("Overall Health Score: %.2f%% (Grade: %s)", report.OverallHealth.Score, report.OverallHealth.Grade),
		fmt.Sprintf("Checks: %d total, %d ok, %d warnings, %d errors",
			report.OverallHealth.Summary.TotalChecks,
			report.OverallHealth.Summary.OK,
			report.OverallHealth.Summary.Warnings,
			report.OverallHealth.Summary.Errors),
		"")

	kinds := make([]string, 0, len(report.Checks))
	for kind := range report.Checks {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	for _, kind := range kinds {
		entry := report.Checks[kind]
		out = append(out,
			fmt.Sprintf("### %s", checkTitle(kind)),
			fmt.Sprintf("%s %s", statusMarker(entry.Status), entry.Message))
		for _, detail := range entry.Details.Details {
			out = append(out, "   "+detail)
		}
		out = append(out, "")
	}

	out = append(out, strings.Repeat("-", 60))
	return strings.Join(out, "\n")
}
