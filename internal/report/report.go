// Package report aggregates batch outcomes into a run summary.
package report

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dmitrymomot/certsend/internal/batch"
)

const unknown = "Unknown"

// FailedDetail describes one failed record.
type FailedDetail struct {
	Name   string
	Email  string
	Reason string
}

// Report summarizes a run. FailedDetails follow processing order.
type Report struct {
	Total         int
	SuccessCount  int
	FailedCount   int
	FailedDetails []FailedDetail
}

// Summarize counts outcomes and collects the failures.
func Summarize(outcomes []batch.Outcome) Report {
	r := Report{
		Total:         len(outcomes),
		FailedDetails: []FailedDetail{},
	}
	for _, o := range outcomes {
		if o.Succeeded() {
			r.SuccessCount++
			continue
		}
		r.FailedCount++
		r.FailedDetails = append(r.FailedDetails, FailedDetail{
			Name:   o.Name,
			Email:  o.Email,
			Reason: o.Reason,
		})
	}
	return r
}

// Failed returns the failed outcomes in processing order.
func Failed(outcomes []batch.Outcome) []batch.Outcome {
	failed := make([]batch.Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Succeeded() {
			failed = append(failed, o)
		}
	}
	return failed
}

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	failColor    = color.New(color.FgRed, color.Bold)
)

// Print writes the human-readable report to w. Colors follow fatih/color's
// terminal detection.
func (r Report) Print(w io.Writer) error {
	rule := strings.Repeat("=", 50)

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", rule)
	titleColor.Fprint(&b, "CERTIFICATE SENDING REPORT")
	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "Total Participants: %d\n", r.Total)
	successColor.Fprintf(&b, "Successfully Sent: %d", r.SuccessCount)
	b.WriteString("\n")
	if r.FailedCount > 0 {
		failColor.Fprintf(&b, "Failed: %d", r.FailedCount)
	} else {
		fmt.Fprintf(&b, "Failed: %d", r.FailedCount)
	}
	b.WriteString("\n")

	if len(r.FailedDetails) > 0 {
		b.WriteString("\nFailed Emails:\n")
		for _, d := range r.FailedDetails {
			fmt.Fprintf(&b, "- %s (%s): %s\n", cmp.Or(d.Name, unknown), cmp.Or(d.Email, unknown), d.Reason)
		}
	}
	fmt.Fprintf(&b, "%s\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteFailedCSV writes the failed outcomes with a header row.
func WriteFailedCSV(w io.Writer, outcomes []batch.Outcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"name", "identifier", "email", "reason"}); err != nil {
		return err
	}
	for _, o := range Failed(outcomes) {
		if err := cw.Write([]string{o.Name, o.Identifier, o.Email, o.Reason}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
