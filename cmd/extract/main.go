package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"jobextract/internal/config"
	"jobextract/internal/converge"
	"jobextract/internal/csvexport"
	"jobextract/internal/domain"
	"jobextract/internal/logger"
	"jobextract/internal/service"
	"jobextract/internal/sink"
)

var timeNow = time.Now

type options struct {
	textFiles []string
	jsonFiles []string
	format    string
	out       string
	cues      string
	header    string
	maxMB     int
	logLevel  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract job postings from text and JSON files",
		Long: "Reads free-text job posting documents and JSON job files, converges them " +
			"into one canonical record set and writes it as a table, CSV or XLSX.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&opts.textFiles, "text", nil, "free-text document to extract (repeatable)")
	f.StringArrayVar(&opts.jsonFiles, "json", nil, "JSON job file to decode (repeatable)")
	f.StringVarP(&opts.format, "format", "f", "console", "output format: console, csv or xlsx")
	f.StringVarP(&opts.out, "out", "o", "", "output file (csv and xlsx; defaults to a timestamped name)")
	f.StringVar(&opts.cues, "cues", "", "YAML file with extra or overriding field cues")
	f.StringVar(&opts.header, "header", "", "regex matching the header line that starts each posting")
	f.IntVar(&opts.maxMB, "max-mb", 10, "largest accepted text document in MB")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	return cmd
}

func run(ctx context.Context, opts *options, stdout, stderr io.Writer) error {
	if len(opts.textFiles) == 0 && len(opts.jsonFiles) == 0 {
		return errors.New("at least one --text or --json file is required")
	}
	switch opts.format {
	case "console", "csv", "xlsx":
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}

	l := logger.New(stderr, opts.logLevel, "text")
	svc, err := service.NewExtractionServiceFromConfig(config.ExtractConfig{
		CueFile:       opts.cues,
		HeaderPattern: opts.header,
	}, opts.maxMB*1024*1024, nil, l)
	if err != nil {
		return err
	}

	var textRecords, jsonRecords []domain.Record
	for _, path := range opts.textFiles {
		records, err := extractText(ctx, svc, path, l)
		if err != nil {
			return err
		}
		textRecords = append(textRecords, records...)
	}
	for _, path := range opts.jsonFiles {
		records, err := extractJSON(ctx, svc, path, l)
		if err != nil {
			return err
		}
		jsonRecords = append(jsonRecords, records...)
	}
	records := converge.Union(textRecords, jsonRecords)

	switch opts.format {
	case "csv":
		return writeFile(opts.out, "csv", records, func(w io.Writer) error {
			return csvexport.Export(w, records, true)
		}, stderr)
	case "xlsx":
		return writeFile(opts.out, "xlsx", records, func(w io.Writer) error {
			return sink.EncodeXLSX(w, records)
		}, stderr)
	default:
		return sink.NewConsole(stdout).Write(ctx, records)
	}
}

func extractText(ctx context.Context, svc service.ExtractionService, path string, l *slog.Logger) ([]domain.Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	res, err := svc.ExtractText(ctx, domain.RawDocument{Source: filepath.Base(path), Content: string(content)})
	if err != nil {
		if domain.IsSkippable(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("extracting %s: %w", path, err)
	}
	for _, w := range res.Warnings {
		l.Warn("field not extracted", "file", path, "posting", w.Posting, "field", w.Field, "error", w.Err)
	}
	return res.Records, nil
}

func extractJSON(ctx context.Context, svc service.ExtractionService, path string, l *slog.Logger) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	res, err := svc.ExtractJSON(ctx, filepath.Base(path), f)
	if res == nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if err != nil {
		l.Warn("json file truncated", "file", path, "records", len(res.Records), "error", err)
	}
	return res.Records, nil
}

func writeFile(out, ext string, records []domain.Record, encode func(io.Writer) error, stderr io.Writer) error {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(stderr, "no records extracted")
		return nil
	}
	if out == "" {
		out = csvexport.BuildFilename("job_postings", "", ext, timeNow())
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := encode(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stderr, "wrote %d records to %s\n", len(records), out)
	return nil
}
