package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/filemeta/internal/detect/charset"
	"github.com/JonMunkholm/filemeta/internal/detect/delimiter"
	"github.com/JonMunkholm/filemeta/internal/logging"
)

// AnalysisTimeout is the maximum duration for a single analysis.
var AnalysisTimeout = 5 * time.Minute

// ServiceConfig wires optional collaborators into a Service.
type ServiceConfig struct {
	// Defaults are the options used by AnalyzeDefault and as the base for
	// per-request overrides.
	Defaults Options

	// History persists finished analyses. Nil disables history.
	History HistoryStore

	// Limiter bounds concurrent analyses. Nil means unbounded.
	Limiter *Limiter
}

// Service provides the analysis operations.
type Service struct {
	defaults Options
	history  HistoryStore
	limiter  *Limiter
	now      func() time.Time
}

// NewService creates a new Service instance.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		defaults: cfg.Defaults,
		history:  cfg.History,
		limiter:  cfg.Limiter,
		now:      time.Now,
	}
}

// Defaults returns a copy of the configured default options.
func (s *Service) Defaults() Options {
	o := s.defaults
	o.Delimiters = append([]string(nil), o.Delimiters...)
	o.Enclosures = append([]string(nil), o.Enclosures...)
	return o
}

// Limiter returns the analysis limiter, nil when unbounded.
func (s *Service) Limiter() *Limiter { return s.limiter }

// AnalyzeDefault analyzes src with the configured default options.
func (s *Service) AnalyzeDefault(ctx context.Context, src Source) (*FileMetadata, error) {
	return s.Analyze(ctx, src, s.Defaults())
}

// Analyze determines the encoding, layout and field types of src.
//
// The source is read three times: once as raw bytes for the encoding, once as
// text for the delimiter layout and once more to sample the fields of the
// data block.
func (s *Service) Analyze(ctx context.Context, src Source, opts Options) (*FileMetadata, error) {
	if s.limiter != nil {
		if err := s.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
		defer s.limiter.Release()
	}

	ctx, cancel := context.WithTimeout(ctx, AnalysisTimeout)
	defer cancel()

	id := uuid.New().String()
	ctx = logging.WithAnalysisID(ctx, id)
	log := logging.WithFields(ctx, "file", src.Name())
	start := s.now()

	exists, err := src.Exists()
	if err != nil {
		return nil, fmt.Errorf("check %s: %w", src.Name(), err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", src.Name(), ErrFileNotFound)
	}

	fallback, err := charset.Lookup(opts.DefaultCharset)
	if err != nil {
		return nil, fmt.Errorf("default charset: %w", err)
	}

	delims := ParseCandidates("delimiter", opts.Delimiters, log)
	if len(delims) == 0 {
		return nil, ErrNoCandidates
	}
	encs := ParseCandidates("enclosure", opts.Enclosures, log)

	cs, err := s.detectCharset(ctx, src, fallback, opts.sampleLimit(), log)
	if err != nil {
		return nil, err
	}

	layout, err := s.detectLayout(ctx, src, cs, delims, encs, opts, log)
	if err != nil {
		return nil, err
	}

	fields, hasHeader, err := s.sampleFields(ctx, src, cs, layout)
	if err != nil {
		return nil, err
	}

	meta := &FileMetadata{
		ID:         id,
		FileName:   src.Name(),
		Charset:    cs.Name(),
		Delimiter:  string(layout.Delimiter),
		FieldCount: layout.FieldCount(),
		BadHeaders: layout.BadHeaders,
		BadFooters: layout.BadFooters,
		DataLines:  layout.DataLines,
		HasHeader:  hasHeader,
		Fields:     fields,
		AnalyzedAt: start.UTC(),
	}
	if layout.HasEnclosure() {
		meta.Enclosure = string(layout.Enclosure)
	}

	if s.history != nil {
		if err := s.history.Save(ctx, meta); err != nil {
			log.Warn("failed to save analysis", "error", err)
		}
	}

	log.Info("analysis complete",
		"charset", meta.Charset,
		"delimiter", CandidateName(layout.Delimiter),
		"fields", meta.FieldCount,
		"has_header", hasHeader,
		"duration", time.Since(start),
	)
	return meta, nil
}

func (s *Service) detectCharset(ctx context.Context, src Source, fallback charset.Charset, limit int64, log *slog.Logger) (charset.Charset, error) {
	rc, err := src.Open()
	if err != nil {
		return charset.Charset{}, fmt.Errorf("open %s: %w", src.Name(), err)
	}
	defer rc.Close()

	cs := charset.Detect(contextReader{ctx: ctx, reader: rc}, fallback, limit)
	if err := ctx.Err(); err != nil {
		return charset.Charset{}, err
	}
	log.Debug("charset detected", "charset", cs.Name(), "sample_limit", limit)
	return cs, nil
}

func (s *Service) detectLayout(ctx context.Context, src Source, cs charset.Charset, delims, encs []rune, opts Options, log *slog.Logger) (delimiter.Result, error) {
	rc, err := src.Open()
	if err != nil {
		return delimiter.Result{}, fmt.Errorf("open %s: %w", src.Name(), err)
	}
	defer rc.Close()

	text := NewCountingReader(openText(ctx, rc, cs))

	d, err := delimiter.NewBuilder().
		WithDelimiterCandidates(delims...).
		WithEnclosureCandidates(encs...).
		WithMaxBadLines(opts.MaxBadHeaders, opts.MaxBadFooters).
		WithRowLimit(opts.LimitRows).
		WithInput(text).
		WithLogger(log).
		Build()
	if err != nil {
		return delimiter.Result{}, fmt.Errorf("configure detector: %w", err)
	}

	res, ok, err := d.Detect()
	if err != nil {
		return delimiter.Result{}, fmt.Errorf("detect layout of %s: %w", src.Name(), err)
	}
	if !ok {
		if !text.SawText() {
			return delimiter.Result{}, fmt.Errorf("%s: %w", src.Name(), ErrEmptyFile)
		}
		return delimiter.Result{}, fmt.Errorf("%w for file %s", ErrNoConsistentFormat, src.Name())
	}

	log.Debug("layout detected", "result", res.String(), "bytes_read", text.BytesRead,
		"consistent_enclosure", res.ConsistentEnclosure)
	return res, nil
}

// sampleFields re-reads the data block and infers per-column metadata. The
// first data line is evaluated last so its effect on the advised types shows
// whether it is a header.
func (s *Service) sampleFields(ctx context.Context, src Source, cs charset.Charset, layout delimiter.Result) ([]FieldMeta, bool, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", src.Name(), err)
	}
	defer rc.Close()

	lines := delimiter.NewLineScanner(openText(ctx, rc, cs))
	for skipped := 0; skipped < layout.BadHeaders && lines.Scan(); skipped++ {
	}

	width := layout.FieldCount()
	evals := make([]*FieldEvaluator, width)
	for i := range evals {
		evals[i] = NewFieldEvaluator()
	}

	var first []string
	for remaining := layout.DataLines; remaining > 0 && lines.Scan(); remaining-- {
		values := delimiter.SplitFields(lines.Text(), layout.Delimiter, layout.Enclosure)
		if first == nil {
			first = values
			continue
		}
		for i, e := range evals {
			e.Evaluate(valueAt(values, i))
		}
	}
	if err := lines.Err(); err != nil {
		return nil, false, fmt.Errorf("read fields of %s: %w", src.Name(), err)
	}
	logging.FromContext(ctx).Debug("data lines sampled", "file", src.Name(), "lines_scanned", lines.Count())

	without := make([]FieldMeta, width)
	with := make([]FieldMeta, width)
	for i, e := range evals {
		without[i] = e.Advice()
		e.Evaluate(valueAt(first, i))
		with[i] = e.Advice()
	}

	hasHeader := detectHeader(without, with)

	fields := with
	if hasHeader {
		fields = without
	}
	for i := range fields {
		name := ""
		if hasHeader {
			name = strings.TrimSpace(valueAt(first, i))
		}
		if name == "" {
			name = "field_" + strconv.Itoa(i+1)
		}
		fields[i].Name = name
	}
	return fields, hasHeader, nil
}

// detectHeader reports a header line when adding it changes any column's
// type, or when every column is a string anyway.
func detectHeader(without, with []FieldMeta) bool {
	allStrings := true
	for i := range without {
		if without[i].Type != with[i].Type {
			return true
		}
		if without[i].Type != TypeString {
			allStrings = false
		}
	}
	return allStrings
}

func valueAt(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

// openText decodes r with cs and strips a leading byte order mark.
func openText(ctx context.Context, r io.Reader, cs charset.Charset) io.Reader {
	return NewBOMSkippingReader(cs.NewReader(contextReader{ctx: ctx, reader: r}))
}
