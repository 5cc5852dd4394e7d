package core

import (
	"context"
	"io"
	"time"
)

// PreviewSummary contains the counts shown before an export is run.
type PreviewSummary struct {
	TotalRows int                `json:"totalRows"`
	Accepted  int                `json:"accepted"`
	Rejected  int                `json:"rejected"`
	ByReason  map[ReasonCode]int `json:"byReason"`
}

// PreviewResponse is the read-only result of validating an upload.
type PreviewResponse struct {
	FileName         string         `json:"fileName"`
	Summary          PreviewSummary `json:"summary"`
	AcceptedSamples  []ValidRow     `json:"acceptedSamples"`
	Rejected         []RejectedRow  `json:"rejected"`
	ProcessingTimeMs int64          `json:"processingTimeMs"`
}

// maxAcceptedSamples caps how many template rows a preview returns.
const maxAcceptedSamples = 10

// Preview validates an upload without writing anything.
// Every rejected row is returned; accepted rows are sampled.
// It takes an export slot like Export, since the sheet is held in memory.
func (s *Service) Preview(ctx context.Context, fileName string, r io.Reader) (*PreviewResponse, error) {
	start := time.Now()

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

	resp := &PreviewResponse{
		FileName: fileName,
		Summary: PreviewSummary{
			TotalRows: len(rows),
			Accepted:  len(c.Valid),
			Rejected:  len(c.Rejected),
			ByReason:  make(map[ReasonCode]int),
		},
		AcceptedSamples: c.Valid[:min(len(c.Valid), maxAcceptedSamples)],
		Rejected:        c.Rejected,
	}
	for _, r := range c.Rejected {
		resp.Summary.ByReason[r.Reason]++
	}
	if resp.AcceptedSamples == nil {
		resp.AcceptedSamples = []ValidRow{}
	}
	if resp.Rejected == nil {
		resp.Rejected = []RejectedRow{}
	}

	resp.ProcessingTimeMs = time.Since(start).Milliseconds()
	return resp, nil
}
