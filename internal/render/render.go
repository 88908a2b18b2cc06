// Package render formats an aggregated load test report as human-readable
// text for standard output.
package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/loadcli/internal/loadtest"
)

var (
	bannerStyle = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
)

// Text renders the full report. The latency block appears only when at least
// one successful request was recorded; otherwise a degraded-but-explicit
// message takes its place.
func Text(opts *loadtest.Options, r *loadtest.Report) string {
	var b strings.Builder

	b.WriteString(bannerStyle.Render("=== loadcli results ==="))
	b.WriteString("\n")

	line := func(label, value string) {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", label+":")), value))
	}

	line("URL", opts.URL)
	line("Method", opts.NormalizedMethod())
	line("Concurrency", fmt.Sprintf("%d", opts.Concurrency))
	if opts.DurationMode() {
		line("Duration", fmt.Sprintf("%.2fs", opts.DurationSec))
	} else {
		line("Requests", fmt.Sprintf("%d", opts.Requests))
	}
	line("Elapsed", fmt.Sprintf("%.3fs", r.Elapsed.Seconds()))
	line("Completed", fmt.Sprintf("%d (ok=%d, errors=%d)",
		r.TotalDone, r.OK, r.TotalErrored))
	line("RPS", fmt.Sprintf("%.1f", r.RPS))
	line("Statuses", statusHistogram(r.Statuses))
	if len(r.Errors) > 0 {
		line("Errors", errorStyle.Render(errorHistogram(r.Errors)))
	}

	if r.HasLatencies() {
		b.WriteString("\n")
		b.WriteString(bannerStyle.Render("Latency (ms):"))
		b.WriteString("\n")
		stat := func(name string, v float64) {
			b.WriteString(fmt.Sprintf("  %-4s %.2f\n", name, v))
		}
		stat("p50", r.P50())
		stat("p90", r.P90())
		stat("p95", r.P95())
		stat("p99", r.P99())
		stat("min", r.Min())
		stat("max", r.Max())
		stat("avg", r.Avg())
	} else {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("No successful responses recorded (all timed out/errored)."))
		b.WriteString("\n")
	}

	return b.String()
}

// statusHistogram renders status counts sorted by code, e.g. "200:90 500:10".
func statusHistogram(statuses map[int]int) string {
	if len(statuses) == 0 {
		return "(none)"
	}
	codes := make([]int, 0, len(statuses))
	for code := range statuses {
		codes = append(codes, code)
	}
	sort.Ints(codes)

	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		entry := fmt.Sprintf("%d:%d", code, statuses[code])
		if code >= 200 && code < 400 {
			entry = okStyle.Render(entry)
		} else {
			entry = errorStyle.Render(entry)
		}
		parts = append(parts, entry)
	}
	return strings.Join(parts, " ")
}

// errorHistogram renders error-kind counts sorted by kind.
func errorHistogram(errors map[loadtest.ErrorKind]int) string {
	kinds := make([]string, 0, len(errors))
	for kind := range errors {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		parts = append(parts, fmt.Sprintf("%s:%d", kind, errors[loadtest.ErrorKind(kind)]))
	}
	return strings.Join(parts, " ")
}
