/*
Package report filters extracted AIPS records and writes the CSV or
identifier-list reports.
*/
package report

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/shanehull/aipsscraper/internal/types"
	"github.com/shanehull/aipsscraper/internal/upload"
)

const recordDateLayout = "2006-01-02"

type Pipeline struct {
	OutputDir string
	// Uploader receives the today-mode list. Nil disables the upload.
	Uploader          upload.Uploader
	UploadDestination string
	// Location decides what "today" is. Nil means time.Local.
	Location *time.Location
	Now      func() time.Time
}

type Summary struct {
	Total  int
	Unique int

	SinceApplied bool
	Since        string
	SinceBefore  int
	SinceAfter   int

	TodayApplied bool
	TodayDate    string
	TodayBefore  int
	TodayAfter   int

	ThresholdApplied bool
	Threshold        uint32
	ThresholdUnique  int

	Written int
}

type Result struct {
	Mode       types.Mode
	OutputPath string
	Summary    Summary

	// Records holds the CSV rows in threshold and default mode.
	Records []types.Record
	// Identifiers holds the today-mode list.
	Identifiers []string

	Uploaded bool
	// UploadErr is a failed today-mode upload. It never fails the run.
	UploadErr error
}

func (p *Pipeline) now() time.Time {
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	if p.Location != nil {
		now = now.In(p.Location)
	}
	return now
}

// Run applies req to records and writes the report. records is not
// modified.
func (p *Pipeline) Run(ctx context.Context, records []types.Record, req types.FilterRequest, sourceName string) (*Result, error) {
	now := p.now()
	result := &Result{
		Mode:       req.Mode(),
		OutputPath: filepath.Join(p.OutputDir, OutputName(req, sourceName, now)),
	}
	summary := &result.Summary

	summary.Total = len(records)
	summary.Unique = countDistinct(records)
	slog.InfoContext(ctx, "found records with 5-digit identifiers", "records", summary.Total, "unique", summary.Unique)

	filtered := records
	if req.Since != "" {
		filtered = FilterSince(filtered, req.Since)
		summary.SinceApplied = true
		summary.Since = req.SinceDisplay
		summary.SinceBefore = len(records)
		summary.SinceAfter = len(filtered)
		slog.InfoContext(ctx, "filtered by date",
			"since", req.SinceDisplay,
			"kept", summary.SinceAfter,
			"excluded", summary.SinceBefore-summary.SinceAfter,
		)
	}

	if result.Mode == types.ModeToday {
		return p.runToday(ctx, filtered, now, result)
	}

	if result.Mode == types.ModeThreshold {
		threshold := *req.Larger
		var unique int
		filtered, unique = FilterLarger(filtered, threshold)
		summary.ThresholdApplied = true
		summary.Threshold = threshold
		summary.ThresholdUnique = unique
		slog.InfoContext(ctx, "found unique identifiers above threshold", "threshold", threshold, "unique", unique)
	} else {
		// FilterSince and FilterLarger copy; the default path must too
		// before sorting.
		filtered = append([]types.Record(nil), filtered...)
	}

	SortByDateDesc(filtered)

	slog.InfoContext(ctx, "writing report", "path", result.OutputPath)
	err := writeFile(result.OutputPath, func(w io.Writer) error {
		return WriteCSV(w, filtered)
	})
	if err != nil {
		return nil, err
	}

	result.Records = filtered
	summary.Written = len(filtered)
	slog.InfoContext(ctx, "report written", "path", result.OutputPath, "rows", summary.Written)
	return result, nil
}

func (p *Pipeline) runToday(ctx context.Context, records []types.Record, now time.Time, result *Result) (*Result, error) {
	summary := &result.Summary
	today := now.Format(recordDateLayout)

	todays := FilterDate(records, today)
	summary.TodayApplied = true
	summary.TodayDate = today
	summary.TodayBefore = len(records)
	summary.TodayAfter = len(todays)
	slog.InfoContext(ctx, "filtered to today", "date", today, "kept", len(todays), "excluded", len(records)-len(todays))

	ids := NormalizedIdentifiers(todays)
	slog.InfoContext(ctx, "writing today list", "path", result.OutputPath, "identifiers", len(ids))
	err := writeFile(result.OutputPath, func(w io.Writer) error {
		return WriteLines(w, ids)
	})
	if err != nil {
		return nil, err
	}
	result.Identifiers = ids
	summary.Written = len(ids)

	if p.Uploader == nil {
		return result, nil
	}

	slog.InfoContext(ctx, "copying to remote server", "destination", p.UploadDestination)
	if err := p.Uploader.Upload(ctx, result.OutputPath, p.UploadDestination); err != nil {
		slog.WarnContext(ctx, "upload failed", "destination", p.UploadDestination, "err", err)
		result.UploadErr = err
		return result, nil
	}
	result.Uploaded = true
	slog.InfoContext(ctx, "copied to remote server", "destination", p.UploadDestination)
	return result, nil
}
