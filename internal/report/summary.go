package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// RenderSummary prints the counts collected by Run.
func RenderSummary(w io.Writer, r *Result) {
	s := r.Summary

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("AIPS report (%s mode)", r.Mode))
	t.AppendHeader(table.Row{"Step", "Count"})

	t.AppendRow(table.Row{"records with 5-digit identifiers", s.Total})
	t.AppendRow(table.Row{"unique identifiers", s.Unique})
	if s.SinceApplied {
		t.AppendRow(table.Row{fmt.Sprintf("records since %s", s.Since), s.SinceAfter})
		t.AppendRow(table.Row{"excluded older records", s.SinceBefore - s.SinceAfter})
	}
	if s.TodayApplied {
		t.AppendRow(table.Row{fmt.Sprintf("records from %s", s.TodayDate), s.TodayAfter})
		t.AppendRow(table.Row{"excluded other dates", s.TodayBefore - s.TodayAfter})
	}
	if s.ThresholdApplied {
		t.AppendRow(table.Row{fmt.Sprintf("unique identifiers larger than %d", s.Threshold), s.ThresholdUnique})
	}

	t.AppendSeparator()
	t.AppendRow(table.Row{"written to " + r.OutputPath, s.Written})

	t.SetStyle(table.StyleRounded)
	t.Render()
}
