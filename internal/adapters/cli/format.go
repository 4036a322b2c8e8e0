package cli

import (
	"sort"
	"strings"

	"github.com/fatih/color"
)

// colorizeScore formats an analysis score with its traffic-light colour.
func colorizeScore(score string) string {
	if score == "" {
		return color.New(color.FgHiBlack).Sprint("PENDING")
	}
	upper := strings.ToUpper(score)

	switch score {
	case "green":
		return color.New(color.FgHiGreen).Sprint(upper)
	case "yellow":
		return color.New(color.FgYellow).Sprint(upper)
	case "red":
		return color.New(color.FgRed).Sprint(upper)
	default:
		return color.New(color.FgWhite).Sprint(upper)
	}
}

// unreadMarker marks unread reports.
func unreadMarker(read bool) string {
	if read {
		return ""
	}
	return color.New(color.FgHiMagenta).Sprint("●")
}

// linkOutcome formats a link outcome, highlighting contention.
func linkOutcome(outcome string) string {
	switch outcome {
	case "linked", "already_linked_self":
		return color.New(color.FgHiGreen).Sprint(outcome)
	case "multiple_matches", "already_linked_other", "race_lost":
		return color.New(color.FgRed).Sprint(outcome)
	default:
		return color.New(color.FgYellow).Sprint(outcome)
	}
}

// formatMetrics renders a metric map in stable key order.
func formatMetrics(m map[string]string) string {
	if len(m) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + m[k]
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
