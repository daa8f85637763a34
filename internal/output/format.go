// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"taskwire/internal/dialog"
	"taskwire/internal/service"
)

const (
	// Separator is the separator line for sections.
	Separator = "------------"
)

// Urgency buckets derived from days until the deadline.
const (
	UrgencyOverdue = "overdue"
	UrgencySoon    = "due soon" // within 3 days
	UrgencyWeek    = "this week"
	UrgencyLater   = ""
)

// FormatTask formats one task line:
// "{N:>4}  {TITLE}  [{id}]  due {DATE} ({urgency})".
// Deadline and urgency are omitted when the task has no parseable deadline.
func FormatTask(w io.Writer, num int, t service.Task, now time.Time) {
	line := fmt.Sprintf("%4d  %s  [%s]", num, normalizeText(t.Title), t.ID)
	if due, ok := parseDate(t.Deadline); ok {
		line += "  due " + due.Format("2006-01-02")
		if u := Urgency(due, now); u != "" {
			line += " (" + u + ")"
		}
	}
	fmt.Fprintln(w, line)
}

// FormatTaskDetail formats a full task view.
func FormatTaskDetail(w io.Writer, t service.Task) {
	fmt.Fprintln(w, Separator)
	fmt.Fprintln(w, normalizeText(t.Title))
	fmt.Fprintln(w, Separator)
	if t.Description != "" {
		fmt.Fprintln(w, t.Description)
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Requested by: %s\n", t.Requester)
	fmt.Fprintf(w, "Assigned to:  %s\n", t.Assignee)
	fmt.Fprintf(w, "Status:       %s\n", t.Status)
	if t.Deadline != "" {
		fmt.Fprintf(w, "Deadline:     %s\n", t.Deadline)
	}
}

// FormatSubtask formats one subtask line with its positional index:
// "    {N}. {TITLE} [{priority}]". The index is display only; it is not
// stable across subtree replacements.
func FormatSubtask(w io.Writer, num int, st service.Subtask) {
	line := fmt.Sprintf("    %d. %s", num, normalizeText(st.Title))
	if st.Priority != "" {
		line += fmt.Sprintf(" [%s]", st.Priority)
	}
	fmt.Fprintln(w, line)
	if st.Description != "" {
		fmt.Fprintf(w, "       %s\n", normalizeText(st.Description))
	}
	if st.Assignee != "" {
		fmt.Fprintf(w, "       assigned to: %s\n", st.Assignee)
	}
	if st.BestApproach != "" {
		fmt.Fprintf(w, "       approach: %s\n", normalizeText(st.BestApproach))
	}
	for _, dep := range st.Dependencies {
		fmt.Fprintf(w, "       depends on: %s\n", normalizeText(dep))
	}
}

// FormatTurn formats one dialogue exchange.
func FormatTurn(w io.Writer, t dialog.Turn) {
	fmt.Fprintf(w, "> %s\n", normalizeText(t.Question))
	if t.Awaiting {
		fmt.Fprintln(w, "  ...")
		return
	}
	fmt.Fprintf(w, "  %s\n", t.Answer)
}

// FormatQuestions formats the needs-more-context banner.
func FormatQuestions(w io.Writer, questions []string) {
	fmt.Fprintln(w, "More information needed:")
	for _, q := range questions {
		fmt.Fprintf(w, "  - %s\n", normalizeText(q))
	}
}

// Urgency classifies a deadline relative to now.
func Urgency(due, now time.Time) string {
	days := int(due.Sub(now).Hours() / 24)
	switch {
	case days < 0:
		return UrgencyOverdue
	case days <= 3:
		return UrgencySoon
	case days <= 7:
		return UrgencyWeek
	default:
		return UrgencyLater
	}
}

// parseDate accepts the date formats the gateway has been seen to emit.
func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeText flattens newlines and replaces empty text with a
// placeholder.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	if strings.TrimSpace(s) == "" {
		return "(untitled)"
	}
	return s
}
