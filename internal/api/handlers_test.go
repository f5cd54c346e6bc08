package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sandlang/sand/internal/config"
)

func testServer(cfg config.Config) *Server {
	if cfg.MaxDocumentBytes == 0 {
		cfg.MaxDocumentBytes = 4194304
	}
	if cfg.StatsWindow == 0 {
		cfg.StatsWindow = time.Hour
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(log, cfg)
}

func doJSON(t *testing.T, s *Server, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var m map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
			t.Fatalf("bad response body %q: %v", rec.Body.String(), err)
		}
	}
	return rec, m
}

func TestHandleRender_WholeDocument(t *testing.T) {
	s := testServer(config.Config{})
	rec, m := doJSON(t, s, "POST", "/api/render",
		`{"document":"#(en, ja)\n#s1[Hi][Yo]\n"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	names := m["names"].([]any)
	if len(names) != 2 || names[0] != "en" || names[1] != "ja" {
		t.Errorf("unexpected names %v", names)
	}
	outputs := m["outputs"].([]any)
	if len(outputs) != 2 || outputs[0] != "Hi" || outputs[1] != "Yo" {
		t.Errorf("unexpected outputs %v", outputs)
	}
}

func TestHandleRender_NamedSelectorMarkdown(t *testing.T) {
	s := testServer(config.Config{})
	rec, m := doJSON(t, s, "POST", "/api/render",
		`{"document":"#(en)\n#g# T\n#s[A]\n","selector":"#.g.en","markdown":true}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	outputs := m["outputs"].([]any)
	if len(outputs) != 1 || outputs[0] != "## T\nA" {
		t.Errorf("unexpected outputs %v", outputs)
	}
}

func TestHandleRender_DocumentDiagnostics(t *testing.T) {
	s := testServer(config.Config{})
	rec, m := doJSON(t, s, "POST", "/api/render",
		`{"document":"#(en)\n#(ja)\n"}`)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if m["ok"] != false {
		t.Errorf("expected ok=false, got %v", m["ok"])
	}
	diags := m["diagnostics"].([]any)
	if len(diags) != 2 {
		t.Fatalf("expected 2 diagnostics, got %v", diags)
	}
	d0 := diags[0].(map[string]any)
	if d0["source"] != "Sand Validator" || d0["message"] != "names are defined more than once" {
		t.Errorf("unexpected diagnostic %v", d0)
	}
	if d0["start"] != float64(0) || d0["end"] != float64(5) {
		t.Errorf("unexpected span %v..%v", d0["start"], d0["end"])
	}
}

func TestHandleRender_SelectorDiagnostics(t *testing.T) {
	s := testServer(config.Config{})

	rec, m := doJSON(t, s, "POST", "/api/render",
		`{"document":"#(en)\n#s[A]\n","selector":"#.zz"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	d0 := m["diagnostics"].([]any)[0].(map[string]any)
	if d0["source"] != "Sand Validator" {
		t.Errorf("unexpected source %v", d0["source"])
	}
	if !strings.HasPrefix(d0["message"].(string), "selector syntax is incorrect: ") {
		t.Errorf("unexpected message %v", d0["message"])
	}

	// A selector that does not even scan is a parser-source problem.
	rec, m = doJSON(t, s, "POST", "/api/render",
		`{"document":"#(en)\n#s[A]\n","selector":"zz"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	d0 = m["diagnostics"].([]any)[0].(map[string]any)
	if d0["source"] != "Sand Parser" {
		t.Errorf("unexpected source %v", d0["source"])
	}
}

func TestHandleCheck(t *testing.T) {
	s := testServer(config.Config{})

	rec, m := doJSON(t, s, "POST", "/api/check", `{"document":"#(en, ja)\n#s[A][B]\n"}`)
	if rec.Code != http.StatusOK || m["valid"] != true {
		t.Fatalf("expected a clean check, got %d %v", rec.Code, m)
	}
	names := m["names"].([]any)
	if len(names) != 2 {
		t.Errorf("unexpected names %v", names)
	}
	if diags := m["diagnostics"].([]any); len(diags) != 0 {
		t.Errorf("expected no diagnostics on a clean check, got %v", diags)
	}

	// An invalid document still answers 200; validity lives in the body.
	rec, m = doJSON(t, s, "POST", "/api/check", `{"document":"#s[A]\n"}`)
	if rec.Code != http.StatusOK || m["valid"] != false {
		t.Fatalf("expected a failed check with status 200, got %d %v", rec.Code, m)
	}
	diags := m["diagnostics"].([]any)
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", m)
	}
	d0 := diags[0].(map[string]any)
	if d0["message"] != "names are not defined" {
		t.Errorf("unexpected diagnostic %v", d0)
	}
	if names := m["names"].([]any); len(names) != 0 {
		t.Errorf("expected no names on a failed check, got %v", names)
	}
}

func TestHandlePreview(t *testing.T) {
	s := testServer(config.Config{})
	req := httptest.NewRequest("POST", "/api/preview", strings.NewReader(`{"document":"#(en)\n## T\n#s[A]\n"}`))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected an html response, got %q", ct)
	}
	html := rec.Body.String()
	if !strings.Contains(html, `<section data-name="en">`) {
		t.Errorf("expected a named section, got %q", html)
	}
	if !strings.Contains(html, "<h2>T</h2>") || !strings.Contains(html, "<p>A</p>") {
		t.Errorf("expected converted markdown, got %q", html)
	}
}

func TestHandleRenderStats(t *testing.T) {
	s := testServer(config.Config{})
	doJSON(t, s, "POST", "/api/render", `{"document":"#(en)\n#s[A]\n"}`)

	rec, m := doJSON(t, s, "GET", "/api/stats/render", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	stats := m["stats"].(map[string]any)
	if stats["count"].(float64) < 1 {
		t.Errorf("expected at least one sample, got %v", stats)
	}
}

func TestAuth(t *testing.T) {
	s := testServer(config.Config{APIKey: "secret"})

	// Health stays public.
	rec, _ := doJSON(t, s, "GET", "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected public health, got %d", rec.Code)
	}

	req := httptest.NewRequest("POST", "/api/check", strings.NewReader(`{"document":"#(en)\n#s[A]\n"}`))
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", rec.Code)
	}

	req = httptest.NewRequest("POST", "/api/check", strings.NewReader(`{"document":"#(en)\n#s[A]\n"}`))
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with a bad token, got %d", rec.Code)
	}

	req = httptest.NewRequest("POST", "/api/check", strings.NewReader(`{"document":"#(en)\n#s[A]\n"}`))
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with the right token, got %d", rec.Code)
	}
}

func TestDecodeRequest_Limits(t *testing.T) {
	s := testServer(config.Config{MaxDocumentBytes: 32})

	rec, m := doJSON(t, s, "POST", "/api/check",
		`{"document":"#(en)\n#s[This document is far too large for the configured limit]\n"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
	if !strings.Contains(m["error"].(string), "exceeds max size") {
		t.Errorf("unexpected error %v", m["error"])
	}

	rec, _ = doJSON(t, s, "POST", "/api/check", `{"document":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a missing document, got %d", rec.Code)
	}
}
