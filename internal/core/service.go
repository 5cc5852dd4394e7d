package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/priceexport/internal/logging"
)

// ExportTimeout is the maximum duration for one export run.
var ExportTimeout = 5 * time.Minute

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Pipeline      PipelineOptions
	MaxFileSize   int64         // Upload size cap in bytes (0 = unlimited)
	MaxConcurrent int           // Concurrent export runs
	MaxWait       time.Duration // How long a run waits for a free slot
	Timeout       time.Duration // Per-run deadline (default ExportTimeout)
}

// Service provides the export operations used by the web and CLI surfaces.
type Service struct {
	pipeline    *ExportPipeline
	sink        Sink
	limiter     *ExportLimiter
	maxFileSize int64
	timeout     time.Duration
}

// ExportRequest is one uploaded pricing sheet to export.
type ExportRequest struct {
	FileName string       // Original name; the extension selects csv or xlsx
	Data     io.Reader    // Sheet content
	Report   ReportFormat // Also write the rejected rows report (ReportNone to skip)
}

// NewService creates a Service that writes exports to sink.
func NewService(sink Sink, opts ServiceOptions) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = ExportTimeout
	}
	return &Service{
		pipeline:    NewExportPipeline(opts.Pipeline),
		sink:        sink,
		limiter:     NewExportLimiter(opts.MaxConcurrent, opts.MaxWait),
		maxFileSize: opts.MaxFileSize,
		timeout:     opts.Timeout,
	}
}

// Pipeline returns the pipeline used for runs.
func (s *Service) Pipeline() *ExportPipeline {
	return s.pipeline
}

// Limiter returns the concurrency limiter, for status reporting.
func (s *Service) Limiter() *ExportLimiter {
	return s.limiter
}

// Export reads the sheet, validates every row and writes the accepted rows
// to the service sink. When req.Report is set the rejected rows report is
// written next to the export file.
//
// Returns a *PipelineError for run-level failures and ErrTooManyExports when
// no slot frees up in time. A report that cannot be written does not fail
// the run; it is recorded in ExportResult.ReportError.
func (s *Service) Export(ctx context.Context, req ExportRequest) (ExportResult, error) {
	if req.Data == nil {
		return ExportResult{}, newPipelineError(ErrSourceUnreadable, errors.New("no file provided"))
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return ExportResult{}, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	log := logging.WithFields(ctx, "file", req.FileName)
	if ip := ClientIPFromContext(ctx); ip != "" {
		log = log.With("client_ip", ip)
	}

	rows, err := ReadSourceRows(req.FileName, req.Data, s.maxFileSize)
	if err != nil {
		log.Warn("source rejected", "error", err)
		return ExportResult{}, err
	}

	result, err := s.pipeline.Run(ctx, rows, s.sink)
	if err != nil {
		return ExportResult{}, err
	}

	if req.Report != ReportNone {
		if err := s.pipeline.WriteReport(ctx, &result, req.Report, s.sink); err != nil {
			// The export file is committed, so the run still succeeded.
			log.Error("report write failed", "run_id", result.RunID.String(), "error", err)
			result.ReportError = FormatUserError(err)
		}
	}

	return result, nil
}

// Rejected reads the sheet and encodes only its rejected rows, for direct
// download. Nothing is written to the sink. Like Export it holds an export
// slot while the sheet is in memory.
func (s *Service) Rejected(ctx context.Context, fileName string, r io.Reader, format ReportFormat) ([]byte, error) {
	if format == ReportNone {
		return nil, fmt.Errorf("unknown report format %q (want csv or xlsx)", format)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	rows, err := ReadSourceRows(fileName, r, s.maxFileSize)
	if err != nil {
		return nil, err
	}

	c, err := s.pipeline.Classify(ctx, rows)
	if err != nil {
		return nil, err
	}
	return s.pipeline.RenderReport(c.Rejected, format)
}

// Drain waits for running exports to finish, for graceful shutdown.
func (s *Service) Drain(ctx context.Context) error {
	return s.limiter.Drain(ctx)
}
