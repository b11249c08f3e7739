package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"jobextract/internal/converge"
	"jobextract/internal/domain"
	"jobextract/internal/logger"
	"jobextract/internal/metrics"
	"jobextract/internal/port"
)

// IngestConfig holds settings for the ingest worker.
type IngestConfig struct {
	TriggerInterval  time.Duration
	InitialScan      bool
	Concurrency      int
	MaxDocumentBytes int
}

// WorkerStats is a snapshot of the worker's counters since start.
type WorkerStats struct {
	Batches   int64 `json:"batches"`
	Documents int64 `json:"documents"`
	Records   int64 `json:"records"`
	Skipped   int64 `json:"skipped"`
	Errors    int64 `json:"errors"`
}

// IngestWorker discovers new input files and runs them through extraction
// in micro-batches. Each batch is written to the sink as a whole; files are
// checkpointed only after the sink accepted their records.
type IngestWorker struct {
	source      port.DocumentSource
	checkpoints port.CheckpointStore
	extraction  ExtractionService
	sink        port.RecordSink
	reports     port.ReportSender
	metrics     *metrics.Metrics
	logger      *slog.Logger
	cfg         IngestConfig

	batchMu sync.Mutex

	batches   atomic.Int64
	documents atomic.Int64
	records   atomic.Int64
	skipped   atomic.Int64
	failures  atomic.Int64
}

// NewIngestWorker creates a new IngestWorker. reports may be nil.
func NewIngestWorker(
	source port.DocumentSource,
	checkpoints port.CheckpointStore,
	extraction ExtractionService,
	sink port.RecordSink,
	reports port.ReportSender,
	m *metrics.Metrics,
	l *slog.Logger,
	cfg IngestConfig,
) *IngestWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.TriggerInterval <= 0 {
		cfg.TriggerInterval = 10 * time.Second
	}
	if m == nil {
		m = metrics.New(nil)
	}
	return &IngestWorker{
		source:      source,
		checkpoints: checkpoints,
		extraction:  extraction,
		sink:        sink,
		reports:     reports,
		metrics:     m,
		logger:      logger.OrDefault(l).With("component", "ingest_worker"),
		cfg:         cfg,
	}
}

// Start runs a batch on every tick and on every value received from
// triggers, until ctx is canceled. triggers may be nil. Batches never
// overlap.
func (w *IngestWorker) Start(ctx context.Context, triggers <-chan []string) {
	ticker := time.NewTicker(w.cfg.TriggerInterval)
	defer ticker.Stop()

	w.logger.Info("started",
		"trigger_interval", w.cfg.TriggerInterval,
		"concurrency", w.cfg.Concurrency,
		"initial_scan", w.cfg.InitialScan,
	)

	if w.cfg.InitialScan {
		w.runLogged(ctx, "initial")
	}

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("shutdown complete")
			return
		case <-ticker.C:
			w.runLogged(ctx, "interval")
		case paths, ok := <-triggers:
			if !ok {
				triggers = nil
				continue
			}
			w.logger.Debug("files changed", "paths", len(paths))
			w.runLogged(ctx, "watch")
		}
	}
}

func (w *IngestWorker) runLogged(ctx context.Context, trigger string) {
	report, err := w.RunOnce(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Error("batch failed", "trigger", trigger, "error", err)
		return
	}
	if report != nil {
		w.logger.Info("batch complete",
			"trigger", trigger,
			"batch_id", report.BatchID,
			"documents", report.Documents,
			"records", report.Records,
			"skipped", len(report.SkippedDocuments),
			"dropped", len(report.DroppedRecords),
		)
	}
}

// fileResult is the outcome of one input file within a batch.
type fileResult struct {
	kind     domain.SourceKind
	records  []domain.Record
	dropped  []string
	warnings int
	skipped  string
	// retry is set when the file could not be read; it stays unmarked.
	retry bool
}

// RunOnce processes every file that is new or changed since it was last
// checkpointed. It returns a nil report when there was nothing to do.
func (w *IngestWorker) RunOnce(ctx context.Context) (*domain.BatchReport, error) {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()

	files, err := w.pending(ctx)
	if err != nil {
		w.failures.Add(1)
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	report := &domain.BatchReport{BatchID: uuid.New(), StartedAt: time.Now().UTC()}
	results := make([]fileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Concurrency)
	for i := range files {
		i := i
		g.Go(func() error {
			res, err := w.processFile(gctx, files[i])
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, w.failBatch(report, fmt.Errorf("processing batch: %w", err))
	}

	var text, jsonRecs []domain.Record
	var done []domain.InputFile
	for i, res := range results {
		switch res.kind {
		case domain.SourceJSON:
			jsonRecs = append(jsonRecs, res.records...)
		default:
			text = append(text, res.records...)
		}
		report.DroppedRecords = append(report.DroppedRecords, res.dropped...)
		report.FieldWarnings += res.warnings
		if res.skipped != "" {
			report.SkippedDocuments = append(report.SkippedDocuments, res.skipped)
		}
		if !res.retry {
			report.Documents++
			done = append(done, files[i])
		}
	}

	merged := converge.Collect(converge.Merge(ctx, converge.Stream(ctx, text), converge.Stream(ctx, jsonRecs)))
	if err := ctx.Err(); err != nil {
		return nil, w.failBatch(report, err)
	}
	report.Records = len(merged)

	if err := w.sink.Write(ctx, merged); err != nil {
		return nil, w.failBatch(report, fmt.Errorf("writing batch: %w", err))
	}
	if err := w.checkpoints.Mark(ctx, done); err != nil {
		// Records are already in the sink; the files will be re-read next time.
		w.logger.Error("checkpoint failed", "batch_id", report.BatchID, "files", len(done), "error", err)
		w.failures.Add(1)
	}

	report.FinishedAt = time.Now().UTC()
	w.metrics.BatchesTotal.WithLabelValues("ok").Inc()
	w.metrics.BatchDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	w.batches.Add(1)
	w.documents.Add(int64(report.Documents))
	w.records.Add(int64(report.Records))
	w.skipped.Add(int64(len(report.SkippedDocuments)))

	if report.HasProblems() && w.reports != nil {
		if err := w.reports.SendBatchReport(ctx, report); err != nil {
			w.logger.Warn("sending batch report failed", "batch_id", report.BatchID, "error", err)
		}
	}
	return report, nil
}

// Stats returns the worker counters.
func (w *IngestWorker) Stats() WorkerStats {
	return WorkerStats{
		Batches:   w.batches.Load(),
		Documents: w.documents.Load(),
		Records:   w.records.Load(),
		Skipped:   w.skipped.Load(),
		Errors:    w.failures.Load(),
	}
}

func (w *IngestWorker) pending(ctx context.Context) ([]domain.InputFile, error) {
	files, err := w.source.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discovering input: %w", err)
	}
	var out []domain.InputFile
	for _, f := range files {
		seen, err := w.checkpoints.Seen(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("checking checkpoint for %s: %w", f.Location, err)
		}
		if !seen {
			out = append(out, f)
		}
	}
	return out, nil
}

func (w *IngestWorker) failBatch(report *domain.BatchReport, err error) error {
	w.metrics.BatchesTotal.WithLabelValues("failed").Inc()
	w.failures.Add(1)
	w.logger.Error("batch not checkpointed", "batch_id", report.BatchID, "error", err)
	return err
}

// processFile reads and extracts one file. Only cancellation is returned
// as an error; every other problem is recorded on the result.
func (w *IngestWorker) processFile(ctx context.Context, f domain.InputFile) (fileResult, error) {
	res := fileResult{kind: f.Kind}

	rc, err := w.source.Open(ctx, f)
	if err != nil {
		return w.readFailed(ctx, f, res, err)
	}
	defer rc.Close()

	switch f.Kind {
	case domain.SourceText:
		limit := int64(w.cfg.MaxDocumentBytes)
		var content []byte
		if limit > 0 {
			content, err = io.ReadAll(io.LimitReader(rc, limit+1))
		} else {
			content, err = io.ReadAll(rc)
		}
		if err != nil {
			return w.readFailed(ctx, f, res, err)
		}
		out, err := w.extraction.ExtractText(ctx, domain.RawDocument{Source: f.Location, Content: string(content)})
		if err != nil {
			if domain.IsSkippable(err) {
				res.skipped = fmt.Sprintf("%s: %v", f.Location, err)
				return res, nil
			}
			return res, err
		}
		res.records = out.Records
		res.warnings = len(out.Warnings)

	case domain.SourceJSON:
		body, err := io.ReadAll(rc)
		if err != nil {
			return w.readFailed(ctx, f, res, err)
		}
		out, err := w.extraction.ExtractJSON(ctx, f.Location, bytes.NewReader(body))
		if out != nil {
			res.records = out.Records
			for _, m := range out.Mismatches {
				res.dropped = append(res.dropped, m.Error())
			}
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			res.skipped = fmt.Sprintf("%s: %v", f.Location, err)
		}

	default:
		res.skipped = fmt.Sprintf("%s: %v", f.Location, domain.ErrUnsupportedFormat)
	}
	return res, nil
}

func (w *IngestWorker) readFailed(ctx context.Context, f domain.InputFile, res fileResult, err error) (fileResult, error) {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	w.metrics.DocumentsTotal.WithLabelValues(string(f.Kind), "failed").Inc()
	w.logger.Warn("skipping unreadable file", "location", f.Location, "error", err)
	res.retry = true
	res.skipped = fmt.Sprintf("%s: %v", f.Location, err)
	return res, nil
}
