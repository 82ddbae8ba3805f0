package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/filemeta/internal/config"
	"github.com/JonMunkholm/filemeta/internal/core"
)

// memoryStore is an in-process core.HistoryStore.
type memoryStore struct {
	mu        sync.Mutex
	items     []core.FileMetadata
	recentErr error
}

func (m *memoryStore) Save(_ context.Context, meta *core.FileMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, *meta)
	return nil
}

func (m *memoryStore) Get(_ context.Context, id string) (*core.FileMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == id {
			found := item
			return &found, nil
		}
	}
	return nil, core.ErrAnalysisNotFound
}

func (m *memoryStore) Recent(_ context.Context, limit int) ([]core.FileMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	var out []core.FileMetadata
	for i := len(m.items) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.items[i])
	}
	return out, nil
}

type serverOptions struct {
	store       core.HistoryStore
	limiter     *core.Limiter
	maxFileSize int64
}

func newTestServer(o serverOptions) *Server {
	if o.maxFileSize == 0 {
		o.maxFileSize = 1 << 20
	}
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, RequestTimeout: 10 * time.Second},
		Upload: config.UploadConfig{MaxFileSize: o.maxFileSize},
	}
	svc := core.NewService(core.ServiceConfig{
		Defaults: core.DefaultOptions(),
		History:  o.store,
		Limiter:  o.limiter,
	})
	return NewServer(svc, cfg)
}

// uploadRequest builds a multipart POST to /api/analyze. A nil data omits
// the file part.
func uploadRequest(t *testing.T, fileName string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if data != nil {
		part, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		part.Write(data)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v: %s", err, rec.Body.String())
	}
	return resp
}

const peopleCSV = "name;age\nann;31\nbob;42\ncid;7\n"

func TestHandleAnalyze(t *testing.T) {
	store := &memoryStore{}
	s := newTestServer(serverOptions{store: store})

	rec := serve(s, uploadRequest(t, "people.csv", []byte(peopleCSV), nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var meta core.FileMetadata
	if err := json.Unmarshal(rec.Body.Bytes(), &meta); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if meta.FileName != "people.csv" || meta.Delimiter != ";" || meta.FieldCount != 2 {
		t.Errorf("meta = %+v", meta)
	}
	if !meta.HasHeader || meta.Fields[0].Name != "name" || meta.Fields[1].Type != core.TypeInteger {
		t.Errorf("fields = %+v, header = %v", meta.Fields, meta.HasHeader)
	}
	if meta.DataLines != 4 {
		t.Errorf("DataLines = %d, want 4", meta.DataLines)
	}
	if len(store.items) != 1 || store.items[0].ID != meta.ID {
		t.Errorf("analysis not saved: %+v", store.items)
	}
}

func TestHandleAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name       string
		data       []byte
		fields     map[string]string
		wantStatus int
		wantCode   string
	}{
		{name: "no file", data: nil, wantStatus: http.StatusBadRequest, wantCode: "FILE004"},
		{name: "empty file", data: []byte{}, wantStatus: http.StatusUnprocessableEntity, wantCode: "FILE003"},
		{
			name:       "delimiter not among candidates",
			data:       []byte(peopleCSV),
			fields:     map[string]string{"delimiters": "|"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "FMT001",
		},
		{
			name:       "empty delimiter list",
			data:       []byte(peopleCSV),
			fields:     map[string]string{"delimiters": ""},
			wantStatus: http.StatusBadRequest,
			wantCode:   "FMT002",
		},
		{
			name:       "bad row limit",
			data:       []byte(peopleCSV),
			fields:     map[string]string{"limit_rows": "lots"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "OPT001",
		},
		{
			name:       "negative bad header count",
			data:       []byte(peopleCSV),
			fields:     map[string]string{"max_bad_headers": "-1"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "OPT001",
		},
		{
			name:       "unknown charset",
			data:       []byte(peopleCSV),
			fields:     map[string]string{"default_charset": "klingon"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "ENC001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(serverOptions{})
			rec := serve(s, uploadRequest(t, "f.csv", tt.data, tt.fields))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if got := decodeError(t, rec); got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestHandleAnalyze_Overrides(t *testing.T) {
	s := newTestServer(serverOptions{})
	data := []byte("'a'|'b'\n'1'|'2'\n'3'|'4'\n")

	rec := serve(s, uploadRequest(t, "pipes.txt", data, map[string]string{
		"delimiters": "pipe",
		"enclosures": "apostrophe",
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var meta core.FileMetadata
	json.Unmarshal(rec.Body.Bytes(), &meta)
	if meta.Delimiter != "|" || meta.Enclosure != "'" {
		t.Errorf("delimiter %q enclosure %q, want | and '", meta.Delimiter, meta.Enclosure)
	}
}

func TestHandleAnalyze_TooLarge(t *testing.T) {
	s := newTestServer(serverOptions{maxFileSize: 64})
	rec := serve(s, uploadRequest(t, "big.csv", bytes.Repeat([]byte("a,b\n"), 100), nil))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
	if got := decodeError(t, rec); got.Code != "FILE001" {
		t.Errorf("code = %q, want FILE001", got.Code)
	}
}

func TestHandleAnalyze_Busy(t *testing.T) {
	limiter := core.NewLimiter(1, 10*time.Millisecond)
	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire() on an idle limiter failed")
	}
	defer limiter.Release()

	s := newTestServer(serverOptions{limiter: limiter})
	rec := serve(s, uploadRequest(t, "people.csv", []byte(peopleCSV), nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestHandleHistory(t *testing.T) {
	store := &memoryStore{}
	for _, name := range []string{"a.csv", "b.csv", "c.csv"} {
		store.Save(context.Background(), &core.FileMetadata{ID: name + "-id", FileName: name})
	}
	s := newTestServer(serverOptions{store: store})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/history?limit=2", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Analyses []core.FileMetadata `json:"analyses"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Analyses) != 2 || body.Analyses[0].FileName != "c.csv" {
		t.Errorf("analyses = %+v, want c.csv then b.csv", body.Analyses)
	}

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/history/b.csv-id", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"file_name":"b.csv"`) {
		t.Errorf("entry: status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandleHistory_Errors(t *testing.T) {
	tests := []struct {
		name       string
		store      core.HistoryStore
		path       string
		wantStatus int
		wantCode   string
	}{
		{name: "unknown id", store: &memoryStore{}, path: "/api/history/missing", wantStatus: http.StatusNotFound, wantCode: "ANL004"},
		{name: "bad limit", store: &memoryStore{}, path: "/api/history?limit=ten", wantStatus: http.StatusBadRequest, wantCode: "OPT001"},
		{name: "history disabled", store: nil, path: "/api/history", wantStatus: http.StatusNotFound, wantCode: "ANL005"},
		{name: "entry with history disabled", store: nil, path: "/api/history/x", wantStatus: http.StatusNotFound, wantCode: "ANL005"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(serverOptions{store: tt.store})
			rec := serve(s, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := decodeError(t, rec); got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(serverOptions{limiter: core.NewLimiter(3, time.Second)})
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var body healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.History || body.Analyses.MaxConcurrent != 3 || body.Analyses.Available != 3 {
		t.Errorf("health = %+v", body)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestHandleIndex(t *testing.T) {
	store := &memoryStore{}
	store.Save(context.Background(), &core.FileMetadata{ID: "1", FileName: "<b>.csv", Delimiter: "\t", HasHeader: true})
	s := newTestServer(serverOptions{store: store})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{`action="/api/analyze"`, "&lt;b&gt;.csv", "<code>tab</code>", `value="ISO-8859-1"`} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if strings.Contains(body, "<b>.csv") {
		t.Error("file name was not escaped")
	}
}

func TestHandleIndex_NoHistory(t *testing.T) {
	s := newTestServer(serverOptions{})
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	if strings.Contains(rec.Body.String(), "Recent analyses") {
		t.Error("history section rendered without a store")
	}
}

func TestHandleIndex_ErrorAlert(t *testing.T) {
	s := newTestServer(serverOptions{store: &memoryStore{recentErr: errors.New("connection refused")}})

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `role="alert"`) || !strings.Contains(body, "<code>DB001</code>") {
		t.Errorf("body is not an error alert: %s", body)
	}
	if strings.Contains(body, "connection refused") {
		t.Error("technical error leaked into the alert")
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[string]int{
		"FILE001": http.StatusRequestEntityTooLarge,
		"FMT001":  http.StatusUnprocessableEntity,
		"ANL001":  http.StatusServiceUnavailable,
		"DB001":   http.StatusInternalServerError,
		"ERR000":  http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := statusFor(code); got != want {
			t.Errorf("statusFor(%q) = %d, want %d", code, got, want)
		}
	}
}

func TestWantsJSON(t *testing.T) {
	api := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	page := httptest.NewRequest(http.MethodGet, "/", nil)
	accept := httptest.NewRequest(http.MethodGet, "/", nil)
	accept.Header.Set("Accept", "application/json")

	if !wantsJSON(api) || wantsJSON(page) || !wantsJSON(accept) {
		t.Error("wantsJSON() misclassified a request")
	}
}
