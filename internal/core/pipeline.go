package core

// pipeline.go drives one export run: classify every row, then write the
// accepted rows to the sink in template layout.
//
// Run flow:
//  1. Classify: each row goes through RowValidator; outcomes are stored by
//     input index so order survives parallel validation
//  2. Partition: valid rows and rejected rows are split in input order
//  3. Write: the template file is always written, header-only when no row
//     was accepted
//
// Rows never abort a run. Only environment faults (cancelled context,
// failing sink) return a *PipelineError.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/priceexport/internal/logging"
)

// DefaultFilePrefix names export files when no prefix is configured.
const DefaultFilePrefix = "produtos_export"

// parallelChunk is the number of rows a validation worker handles at a time.
const parallelChunk = 512

// PipelineOptions configures an ExportPipeline.
type PipelineOptions struct {
	Workers    int        // Parallel validation workers (<=1 means sequential)
	CSV        CSVOptions // Output delimiter and BOM
	FilePrefix string     // Output filename prefix
	Now        func() time.Time
	NewID      func() uuid.UUID
}

// ExportPipeline validates rows and writes the accepted ones in template layout.
// A pipeline holds no per-run state and can serve any number of runs.
type ExportPipeline struct {
	validator *RowValidator
	opts      PipelineOptions
}

// NewExportPipeline creates a pipeline, filling unset options with defaults.
func NewExportPipeline(opts PipelineOptions) *ExportPipeline {
	if opts.FilePrefix == "" {
		opts.FilePrefix = DefaultFilePrefix
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.New
	}
	return &ExportPipeline{validator: NewRowValidator(), opts: opts}
}

// Classification is the outcome of a validation pass without any output.
type Classification struct {
	Valid    []ValidRow
	Rejected []RejectedRow
}

// Classify validates rows and returns accepted and rejected rows, each in
// input order. Rows without a Line get their 1-based position (index+1).
// Rows from ReadTable already carry physical sheet rows.
func (p *ExportPipeline) Classify(ctx context.Context, rows []SourceRow) (Classification, error) {
	outcomes := make([]Outcome, len(rows))

	validate := func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			if i%parallelChunk == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			row := rows[i]
			if row.Line == 0 {
				row.Line = i + 1
			}
			outcomes[i] = p.validator.Validate(row)
		}
		return nil
	}

	var err error
	if p.opts.Workers > 1 && len(rows) > parallelChunk {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.opts.Workers)
		for lo := 0; lo < len(rows); lo += parallelChunk {
			lo, hi := lo, min(lo+parallelChunk, len(rows))
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				return validate(lo, hi)
			})
		}
		err = g.Wait()
	} else {
		err = validate(0, len(rows))
	}
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return Classification{}, newPipelineError(ErrRunCancelled, err)
	}

	var c Classification
	for _, o := range outcomes {
		if o.Accepted() {
			c.Valid = append(c.Valid, *o.Valid)
		} else {
			c.Rejected = append(c.Rejected, *o.Rejected)
		}
	}
	return c, nil
}

// Run classifies rows and writes the accepted ones to sink.
//
// The output file is written even when every row is rejected. On a sink
// failure nothing is committed and the returned error is a *PipelineError
// with kind ErrOutputUnwritable.
func (p *ExportPipeline) Run(ctx context.Context, rows []SourceRow, sink Sink) (ExportResult, error) {
	if sink == nil {
		return ExportResult{}, newPipelineError(ErrOutputUnwritable, errors.New("no output sink configured"))
	}

	started := p.opts.Now()
	runID := p.opts.NewID()
	log := logging.WithFields(ctx, "run_id", runID.String())
	log.Info("export started", "rows", len(rows))

	c, err := p.Classify(ctx, rows)
	if err != nil {
		log.Warn("export cancelled", "error", err)
		return ExportResult{}, err
	}
	for _, r := range c.Rejected {
		log.Debug("row rejected", "line", r.Line, "sku", r.SKU, "reason", r.Reason)
	}

	name := p.FileName(started, runID, ".csv")
	location, err := sink.Write(ctx, name, func(w io.Writer) error {
		return WriteTemplateCSV(w, c.Valid, p.opts.CSV)
	})
	if err != nil {
		log.Error("export failed", "file", name, "error", err)
		if ctx.Err() != nil {
			return ExportResult{}, newPipelineError(ErrRunCancelled, err)
		}
		return ExportResult{}, newPipelineError(ErrOutputUnwritable, err)
	}

	result := ExportResult{
		RunID:     runID,
		TotalRows: len(rows),
		Accepted:  len(c.Valid),
		Rejected:  c.Rejected,
		Output:    location,
		StartedAt: started,
		Duration:  p.opts.Now().Sub(started),
	}
	if result.Rejected == nil {
		result.Rejected = []RejectedRow{}
	}

	log.Info("export completed",
		"accepted", result.Accepted,
		"rejected", result.RejectedCount(),
		"output", location,
		"duration", result.Duration,
	)
	return result, nil
}

// WriteReport writes the rejected rows of result to sink next to the export
// file and records the location in result.Report.
func (p *ExportPipeline) WriteReport(ctx context.Context, result *ExportResult, format ReportFormat, sink Sink) error {
	if format == ReportNone {
		return nil
	}
	if sink == nil {
		return newPipelineError(ErrOutputUnwritable, errors.New("no output sink configured"))
	}

	name := p.FileName(result.StartedAt, result.RunID, "_rejeitados"+format.Extension())
	location, err := sink.Write(ctx, name, func(w io.Writer) error {
		return WriteReport(w, result.Rejected, format, p.opts.CSV)
	})
	if err != nil {
		if ctx.Err() != nil {
			return newPipelineError(ErrRunCancelled, err)
		}
		return newPipelineError(ErrOutputUnwritable, err)
	}

	result.Report = location
	logging.FromContext(ctx).Info("rejected report written",
		"run_id", result.RunID.String(),
		"report", location,
		"rows", result.RejectedCount(),
	)
	return nil
}

// RenderReport encodes rejected rows in memory, for direct downloads.
func (p *ExportPipeline) RenderReport(rows []RejectedRow, format ReportFormat) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, rows, format, p.opts.CSV); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName builds "<prefix>_<YYYYMMDD_HHMMSS>_<id8><suffix>".
// The timestamp and run id keep repeated exports into one location apart.
func (p *ExportPipeline) FileName(t time.Time, runID uuid.UUID, suffix string) string {
	id := strings.ReplaceAll(runID.String(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%s%s", p.opts.FilePrefix, t.Format("20060102_150405"), id, suffix)
}
