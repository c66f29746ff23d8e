// Package report renders the collected job postings into the summary email.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/jobscout/internal/extract"
)

// SubjectPrefix is the fixed prefix of the summary email subject.
const SubjectPrefix = "New Job Listings Summary"

// Subject returns the timestamped subject line for a summary sent at ts.
func Subject(ts time.Time) string {
	return fmt.Sprintf("%s - %s", SubjectPrefix, ts.Format("2006-01-02 15:04"))
}

// Summary renders postings as a markdown table, one row per posting.
// Returns a short "no results" note when the slice is empty.
func Summary(postings []extract.JobPosting) string {
	if len(postings) == 0 {
		return "No new job listings were found in this run.\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d new job listing(s).\n\n", len(postings))
	b.WriteString("| Title | Company | Location | Salary | Apply |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, p := range postings {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			cell(p.Title),
			cell(p.Company),
			cell(p.Location),
			cell(p.Salary),
			cell(p.ApplicationURL),
		)
	}
	return b.String()
}

// cell makes a value safe for a markdown table row.
func cell(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	return s
}
