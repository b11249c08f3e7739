// Package email renders batch reports for operator delivery.
package email

import (
	"fmt"
	"html"
	"strings"
	"time"

	"jobextract/internal/domain"
)

// maxListed caps how many skipped documents or dropped records a report lists.
const maxListed = 50

// Subject returns the report's subject line.
func Subject(r *domain.BatchReport) string {
	return fmt.Sprintf("jobextract batch %s: %d skipped documents, %d dropped records",
		shortID(r), len(r.SkippedDocuments), len(r.DroppedRecords))
}

// TextBody renders the plain-text report.
func TextBody(r *domain.BatchReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Batch %s finished at %s (%s).\n\n", r.BatchID, r.FinishedAt.UTC().Format(time.RFC3339),
		r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	fmt.Fprintf(&b, "Documents: %d\nRecords: %d\nField warnings: %d\n", r.Documents, r.Records, r.FieldWarnings)
	writeList(&b, "Skipped documents", r.SkippedDocuments)
	writeList(&b, "Dropped records", r.DroppedRecords)
	return b.String()
}

// HTMLBody renders the HTML report.
func HTMLBody(r *domain.BatchReport) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
`)
	fmt.Fprintf(&b, "  <h2 style=\"color: #333;\">Batch %s</h2>\n", html.EscapeString(r.BatchID.String()))
	fmt.Fprintf(&b, "  <p>Documents: %d<br>Records: %d<br>Field warnings: %d</p>\n", r.Documents, r.Records, r.FieldWarnings)
	writeHTMLList(&b, "Skipped documents", r.SkippedDocuments)
	writeHTMLList(&b, "Dropped records", r.DroppedRecords)
	b.WriteString("</body>\n</html>")
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s (%d):\n", title, len(items))
	for i, item := range items {
		if i == maxListed {
			fmt.Fprintf(b, "  ... and %d more\n", len(items)-maxListed)
			break
		}
		fmt.Fprintf(b, "  - %s\n", item)
	}
}

func writeHTMLList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "  <h3>%s (%d)</h3>\n  <ul>\n", title, len(items))
	for i, item := range items {
		if i == maxListed {
			fmt.Fprintf(b, "    <li>... and %d more</li>\n", len(items)-maxListed)
			break
		}
		fmt.Fprintf(b, "    <li>%s</li>\n", html.EscapeString(item))
	}
	b.WriteString("  </ul>\n")
}

func shortID(r *domain.BatchReport) string {
	s := r.BatchID.String()
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
