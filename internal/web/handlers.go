package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/filemeta/internal/core"
	"github.com/JonMunkholm/filemeta/internal/logging"
	"github.com/JonMunkholm/filemeta/internal/web/templates"
)

// multipartMemory is the part of an upload kept in memory before spilling
// to a temporary file.
const multipartMemory = 32 << 20

// handleAnalyze examines an uploaded file. Form fields other than "file"
// override the service defaults for this request only.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	if r.ContentLength > maxSize {
		s.respondError(w, r, fmt.Errorf("%w: %d bytes exceeds %d", core.ErrFileTooLarge, r.ContentLength, maxSize))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.respondError(w, r, formError(err, maxSize))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("no file provided: %w", err))
		return
	}
	defer file.Close()

	opts, err := s.formOptions(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, formError(err, maxSize))
		return
	}

	meta, err := s.service.Analyze(r.Context(), core.BytesSource{FileName: header.Filename, Data: data}, opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, meta)
}

// formError classifies a failure while reading the request body.
func formError(err error, maxSize int64) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
		return fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, maxSize)
	}
	return fmt.Errorf("no file provided: %w", err)
}

// formOptions applies the optional form fields to the service defaults.
// A field that is present but empty clears a candidate list.
func (s *Server) formOptions(r *http.Request) (core.Options, error) {
	opts := s.service.Defaults()
	form := r.MultipartForm.Value

	if v, ok := form["delimiters"]; ok {
		opts.Delimiters = splitList(v[0])
	}
	if v, ok := form["enclosures"]; ok {
		opts.Enclosures = splitList(v[0])
	}
	if v := r.FormValue("default_charset"); v != "" {
		opts.DefaultCharset = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"limit_rows", &opts.LimitRows},
		{"max_bad_headers", &opts.MaxBadHeaders},
		{"max_bad_footers", &opts.MaxBadFooters},
	}
	for _, f := range ints {
		raw := strings.TrimSpace(r.FormValue(f.name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("%s %q: %w", f.name, raw, core.ErrInvalidOption)
		}
		*f.dst = n
	}

	return opts, nil
}

// splitList splits a comma separated candidate list. Candidates are not
// trimmed so that a lone space survives.
func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// handleHistory lists recent analyses, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("limit %q: %w", raw, core.ErrInvalidOption))
			return
		}
		limit = n
	}

	analyses, err := s.service.Recent(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if analyses == nil {
		analyses = []core.FileMetadata{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"analyses": analyses})
}

// handleHistoryEntry returns one past analysis.
func (s *Server) handleHistoryEntry(w http.ResponseWriter, r *http.Request) {
	meta, err := s.service.Lookup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status   string             `json:"status"`
	History  bool               `json:"history"`
	Analyses core.LimiterStatus `json:"analyses"`
}

// handleHealth reports liveness and analysis slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		History: s.service.HistoryEnabled(),
	}
	if l := s.service.Limiter(); l != nil {
		resp.Analyses = l.Status()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleIndex renders the upload form and, when history is enabled, the
// most recent analyses.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var recent []core.FileMetadata
	if s.service.HistoryEnabled() {
		var err error
		recent, err = s.service.Recent(r.Context(), core.DefaultHistoryLimit)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
	}

	defaults := s.service.Defaults()
	params := templates.IndexParams{
		Delimiters:     strings.Join(defaults.Delimiters, ","),
		Enclosures:     strings.Join(defaults.Enclosures, ","),
		LimitRows:      defaults.LimitRows,
		DefaultCharset: defaults.DefaultCharset,
		HistoryEnabled: s.service.HistoryEnabled(),
		Recent:         make([]templates.AnalysisRow, len(recent)),
	}
	for i, m := range recent {
		params.Recent[i] = templates.AnalysisRow{
			ID:         m.ID,
			FileName:   m.FileName,
			Charset:    m.Charset,
			Delimiter:  displayRune(m.Delimiter),
			Enclosure:  m.Enclosure,
			Fields:     m.FieldCount,
			DataLines:  m.DataLines,
			HasHeader:  m.HasHeader,
			AnalyzedAt: m.AnalyzedAt.Format("2006-01-02 15:04:05"),
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index(params).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

// displayRune names whitespace delimiters that would render invisibly.
func displayRune(s string) string {
	switch s {
	case "\t":
		return "tab"
	case " ":
		return "space"
	}
	return s
}
