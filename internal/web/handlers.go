package web

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/priceexport/internal/core"
	"github.com/JonMunkholm/priceexport/internal/logging"
	"github.com/JonMunkholm/priceexport/internal/schema"
	"github.com/JonMunkholm/priceexport/internal/web/templates"
)

const (
	// multipartOverhead is allowed on top of the file size for form framing.
	multipartOverhead = 1 << 20

	// maxMemory is how much of a multipart form is kept in memory before
	// spilling to temp files.
	maxMemory = 32 << 20

	sourceTemplateName = "modelo_produtos.xlsx"
)

// LayoutResponse lists the column layouts used by the export.
type LayoutResponse struct {
	Source []string `json:"source"`
	Target []string `json:"target"`
	Report []string `json:"report"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status  string                   `json:"status"`
	Exports core.ExportLimiterStatus `json:"exports"`
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data := templates.PageData{
		Title:         "Exportar produtos",
		SourceColumns: schema.Columns(schema.ProductFieldSpecs),
		TargetColumns: schema.TargetColumns,
		MaxFileSizeMB: s.cfg.Upload.MaxFileSize >> 20,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Page(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render page", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, HealthResponse{Status: "ok", Exports: s.service.Limiter().Status()})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, LayoutResponse{
		Source: schema.Columns(schema.ProductFieldSpecs),
		Target: schema.TargetColumns,
		Report: schema.ReportColumns,
	})
}

// handleTemplate serves the source template workbook sellers fill in.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := core.WriteSourceTemplateXLSX(&buf); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	sendAttachment(w, sourceTemplateName, core.ReportXLSX.ContentType(), buf.Bytes())
}

// handleValidate classifies an upload without writing anything.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	file, name, err := s.readUpload(w, r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	defer file.Close()

	resp, err := s.service.Preview(r.Context(), name, file)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, r, resp)
}

// handleExport runs the pipeline into the configured output.
// ?report=csv|xlsx also writes the rejected rows report.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format := s.defaultReport
	if q := r.URL.Query().Get("report"); q != "" {
		f, err := core.ParseReportFormat(q)
		if err != nil {
			respondError(w, r, err, http.StatusBadRequest)
			return
		}
		format = f
	}

	file, name, err := s.readUpload(w, r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	defer file.Close()

	result, err := s.service.Export(r.Context(), core.ExportRequest{
		FileName: name,
		Data:     file,
		Report:   format,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, r, result)
}

// handleReport streams the rejected rows of an upload as a download.
// ?format=csv|xlsx picks the encoding (default csv).
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format := core.ReportCSV
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := core.ParseReportFormat(q)
		if err != nil || f == core.ReportNone {
			respondError(w, r, fmt.Errorf("unknown report format %q (want csv or xlsx)", q), http.StatusBadRequest)
			return
		}
		format = f
	}

	file, name, err := s.readUpload(w, r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	defer file.Close()

	data, err := s.service.Rejected(r.Context(), name, file, format)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	sendAttachment(w, base+"_rejeitados"+format.Extension(), format.ContentType(), data)
}

// readUpload returns the multipart "file" field and its original name.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (multipart.File, string, error) {
	if limit := s.cfg.Upload.MaxFileSize; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, "", fmt.Errorf("%w: %w", core.ErrFileTooLarge, err)
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, "", errNoFile
		}
		return nil, "", fmt.Errorf("parse upload: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", errNoFile
		}
		return nil, "", fmt.Errorf("read upload: %w", err)
	}
	return file, header.Filename, nil
}

func sendAttachment(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprint(len(data)))
	_, _ = w.Write(data)
}
