package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/yuin/goldmark"

	"github.com/sandlang/sand/internal/parser"
	"github.com/sandlang/sand/internal/render"
)

type renderRequest struct {
	Document string `json:"document"`
	Selector string `json:"selector"` // empty selects the whole document
	Markdown bool   `json:"markdown"`
}

type renderResponse struct {
	Names   []string `json:"names"`
	Outputs []string `json:"outputs"`
}

type checkRequest struct {
	Document string `json:"document"`
}

type checkResponse struct {
	Valid       bool         `json:"valid"`
	Names       []string     `json:"names"`
	Diagnostics []diagnostic `json:"diagnostics"`
}

// diagnostic is the wire form of one parse or validation problem. Start
// and End are byte offsets into the submitted document or selector.
type diagnostic struct {
	Source  string `json:"source"`
	Message string `json:"message"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

type diagnosticsResponse struct {
	OK          bool         `json:"ok"`
	Diagnostics []diagnostic `json:"diagnostics"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	if req.Document == "" {
		jsonError(w, "document is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	doc, err := parser.Parse(req.Document)
	if err != nil {
		s.respondDiagnostics(w, err)
		return
	}

	selText := req.Selector
	if selText == "" {
		selText = "#."
	}
	sel, err := parser.ParseSelector(doc, selText)
	if err != nil {
		s.respondDiagnostics(w, err)
		return
	}

	outputs, err := render.Render(doc, sel, req.Markdown)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.stats.Record(time.Since(start))

	writeJSON(w, renderResponse{Names: doc.Names, Outputs: outputs})
}

// handleCheck reports validity without rendering. A broken document is
// still a 200, with Valid false and the diagnostics filled in.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	if req.Document == "" {
		jsonError(w, "document is required", http.StatusBadRequest)
		return
	}

	resp := checkResponse{Names: []string{}, Diagnostics: []diagnostic{}}
	if doc, err := parser.Parse(req.Document); err != nil {
		resp.Diagnostics = toDiagnostics(err)
	} else {
		resp.Valid = true
		resp.Names = doc.Names
	}
	writeJSON(w, resp)
}

// handlePreview renders markdown per name and converts it to HTML, one
// section element per name. The response body is the HTML itself.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}
	if req.Document == "" {
		jsonError(w, "document is required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	doc, err := parser.Parse(req.Document)
	if err != nil {
		s.respondDiagnostics(w, err)
		return
	}

	selText := req.Selector
	if selText == "" {
		selText = "#."
	}
	sel, err := parser.ParseSelector(doc, selText)
	if err != nil {
		s.respondDiagnostics(w, err)
		return
	}

	outputs, err := render.Render(doc, sel, true)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	names := doc.Names
	if len(outputs) == 1 && len(names) > 1 {
		// A named selector renders a single output; find its name.
		if n := sel.Path; len(n) > 0 {
			names = []string{n[len(n)-1]}
		}
	}

	md := goldmark.New()
	var html bytes.Buffer
	for i, out := range outputs {
		name := ""
		if i < len(names) {
			name = names[i]
		}
		fmt.Fprintf(&html, "<section data-name=%q>\n", name)
		if err := md.Convert([]byte(out), &html); err != nil {
			jsonError(w, "markdown conversion failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		html.WriteString("</section>\n")
	}
	s.stats.Record(time.Since(start))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html.Bytes())
}

func (s *Server) handleRenderStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"window": s.cfg.StatsWindow.String(),
		"stats":  s.stats.Snapshot(),
	})
}

// decodeRequest reads a JSON body within the configured size limit.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxDocumentBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, fmt.Sprintf("request exceeds max size (%d bytes)", s.cfg.MaxDocumentBytes),
				http.StatusRequestEntityTooLarge)
			return false
		}
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// respondDiagnostics maps a parse failure onto the 422 diagnostics payload.
func (s *Server) respondDiagnostics(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	json.NewEncoder(w).Encode(diagnosticsResponse{Diagnostics: toDiagnostics(err)})
}

func toDiagnostics(err error) []diagnostic {
	var serr *parser.SyntaxError
	if errors.As(err, &serr) {
		return []diagnostic{{
			Source:  "Sand Parser",
			Message: serr.Error(),
			Start:   serr.Span.Start,
			End:     serr.Span.End,
		}}
	}
	var batch parser.Errors
	if errors.As(err, &batch) {
		out := make([]diagnostic, 0, len(batch))
		for _, d := range batch {
			out = append(out, diagnostic{
				Source:  "Sand Validator",
				Message: d.Message(),
				Start:   d.Span.Start,
				End:     d.Span.End,
			})
		}
		return out
	}
	return []diagnostic{{Source: "Sand Validator", Message: err.Error()}}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
