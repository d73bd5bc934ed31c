package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shanehull/aipsscraper/internal/aips"
	"github.com/shanehull/aipsscraper/internal/archive"
	"github.com/shanehull/aipsscraper/internal/config"
	"github.com/shanehull/aipsscraper/internal/history"
	"github.com/shanehull/aipsscraper/internal/notify"
	"github.com/shanehull/aipsscraper/internal/report"
	"github.com/shanehull/aipsscraper/internal/swissmedic"
	"github.com/shanehull/aipsscraper/internal/types"
	"github.com/shanehull/aipsscraper/internal/upload"
)

var errUsage = errors.New("expected exactly one of <xml_file> or --download")

func run(ctx context.Context, args []string, opts options) error {
	if opts.download == (len(args) == 1) {
		return errUsage
	}

	// Arguments are checked before anything is downloaded or parsed.
	req, err := report.NewFilterRequest(opts.since, opts.larger, opts.today)
	if err != nil {
		return err
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.outDir != "" {
		cfg.OutputDir = opts.outDir
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", report.ErrOutput, err)
	}

	var source string
	if opts.download {
		source, err = download(ctx, cfg, time.Now().In(loc))
		if err != nil {
			return err
		}
	} else {
		source = args[0]
		if _, err := os.Stat(source); err != nil {
			return fmt.Errorf("file '%s' not found: %w", source, err)
		}
	}

	slog.InfoContext(ctx, "parsing", "path", source)
	records, err := aips.ExtractFile(source)
	if err != nil {
		return err
	}

	pipeline := &report.Pipeline{
		OutputDir:         cfg.OutputDir,
		UploadDestination: cfg.Upload.Destination,
		Location:          loc,
	}
	if req.Mode() == types.ModeToday {
		pipeline.Uploader = newUploader(cfg, opts.noUpload)
	}

	result, err := pipeline.Run(ctx, records, req, source)
	if err != nil {
		return err
	}
	report.RenderSummary(os.Stdout, result)

	if result.Mode == types.ModeToday {
		publishToday(ctx, cfg, loc, result)
	}

	slog.InfoContext(ctx, "done", "output", result.OutputPath)
	return nil
}

func download(ctx context.Context, cfg config.Config, now time.Time) (string, error) {
	client, err := swissmedic.NewClient(swissmedic.ClientOptions{
		Endpoint:   cfg.Endpoint,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.Timeout(),
		BrowserTLS: cfg.BrowserTLS,
	})
	if err != nil {
		return "", err
	}

	data, err := client.FetchDocument(ctx)
	if err != nil {
		return "", err
	}

	if _, err := archive.SaveArchive(cfg.OutputDir, data, now); err != nil {
		return "", fmt.Errorf("%w: %w", report.ErrOutput, err)
	}

	result, err := archive.Unwrap(data, cfg.OutputDir, now)
	if err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "download and extraction complete", "document", result.DocumentPath, "schemas", len(result.SchemaPaths))
	return result.DocumentPath, nil
}

func newUploader(cfg config.Config, disabled bool) upload.Uploader {
	if disabled || !cfg.Upload.IsEnabled() {
		return upload.Noop{}
	}
	return upload.SCP{
		Command: cfg.Upload.Command,
		Args:    cfg.Upload.Args,
		Timeout: cfg.Upload.Timeout(),
	}
}

// publishToday updates the today ledger and sends the e-mail. Failures are
// only logged: the report file is already written.
func publishToday(ctx context.Context, cfg config.Config, loc *time.Location, result *report.Result) {
	todayReport := notify.TodayReport{
		Date:        result.Summary.TodayDate,
		Identifiers: result.Identifiers,
		New:         result.Identifiers,
		OutputPath:  result.OutputPath,
		Uploaded:    result.Uploaded,
	}
	if result.UploadErr != nil {
		todayReport.UploadErr = result.UploadErr.Error()
	}

	ledger, err := history.NewManager("", loc)
	if err != nil {
		slog.WarnContext(ctx, "today history unavailable", "err", err)
	} else {
		todayReport.New = ledger.FilterNew(result.Identifiers)
		slog.InfoContext(ctx, "identifiers not published earlier today", "new", len(todayReport.New), "total", len(result.Identifiers))
		if err := ledger.RecordPublished(result.Identifiers, result.OutputPath, result.Uploaded); err != nil {
			slog.WarnContext(ctx, "failed to record today history", "err", err)
		}
	}

	if !cfg.Email.Complete() {
		return
	}
	notifier := notify.NewEmailNotifier(notify.SMTPConfig{
		Server: cfg.Email.SMTPServer,
		Port:   cfg.Email.SMTPPort,
		User:   cfg.Email.SMTPUser,
		Pass:   cfg.Email.SMTPPass,
		From:   cfg.Email.FromEmail,
		To:     cfg.Email.ToEmail,
	})
	if err := notifier.NotifyToday(todayReport); err != nil {
		slog.WarnContext(ctx, "failed to e-mail today report", "err", err)
	}
}
