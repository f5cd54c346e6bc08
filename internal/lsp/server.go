// Package lsp implements the language server spoken over stdio. It keeps
// the open documents in memory, reparses on every edit, publishes
// diagnostics, and answers hover requests. Documents sync in full: the
// whole text travels with each change notification.
package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/sandlang/sand/internal/ast"
	"github.com/sandlang/sand/internal/parser"
)

const (
	serverName    = "sand-lsp"
	serverVersion = "0.1.0"

	sourceParser    = "Sand Parser"
	sourceValidator = "Sand Validator"
)

// document is one open editor buffer. doc stays nil while the text does
// not parse; hover needs a valid tree and simply goes quiet until then.
type document struct {
	text  string
	lines []int
	doc   *ast.Document
}

// Server handles one editor session.
type Server struct {
	in  *bufio.Reader
	out io.Writer
	log *slog.Logger

	mu   sync.Mutex
	docs map[string]*document
}

func NewServer(in io.Reader, out io.Writer, log *slog.Logger) *Server {
	return &Server{
		in:   bufio.NewReader(in),
		out:  out,
		log:  log,
		docs: make(map[string]*document),
	}
}

// Run reads framed messages until the client exits or the stream ends.
func (s *Server) Run() error {
	s.log.Info("language server started")
	for {
		body, err := s.readMessage()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		var req request
		if err := json.Unmarshal(body, &req); err != nil {
			s.log.Warn("dropping malformed message", "error", err)
			continue
		}

		switch req.Method {
		case "initialize":
			s.respond(req.ID, initializeResult{
				Capabilities: serverCapabilities{
					TextDocumentSync: textDocumentSyncOptions{OpenClose: true, Change: 1},
					HoverProvider:    true,
				},
				ServerInfo: map[string]string{"name": serverName, "version": serverVersion},
			}, nil)
		case "initialized":
			// Notification, nothing to do.
		case "shutdown":
			s.respond(req.ID, nil, nil)
		case "exit":
			s.log.Info("language server exiting")
			return nil

		case "textDocument/didOpen":
			var p didOpenParams
			if err := json.Unmarshal(req.Params, &p); err == nil {
				s.updateDocument(p.TextDocument.URI, p.TextDocument.Text)
			}
		case "textDocument/didChange":
			var p didChangeParams
			if err := json.Unmarshal(req.Params, &p); err == nil && len(p.ContentChanges) > 0 {
				// Full sync: the first change carries the whole text.
				s.updateDocument(p.TextDocument.URI, p.ContentChanges[0].Text)
			}
		case "textDocument/didClose":
			var p didCloseParams
			if err := json.Unmarshal(req.Params, &p); err == nil {
				s.closeDocument(p.TextDocument.URI)
			}

		case "textDocument/hover":
			var p hoverParams
			if err := json.Unmarshal(req.Params, &p); err != nil {
				s.respond(req.ID, nil, nil)
				break
			}
			// A nil hover must travel as an explicit null result.
			if h := s.hover(p.TextDocument.URI, p.Position); h != nil {
				s.respond(req.ID, h, nil)
			} else {
				s.respond(req.ID, nil, nil)
			}

		default:
			if len(req.ID) > 0 {
				s.respond(req.ID, nil, &responseError{Code: codeMethodNotFound, Message: "method not found"})
			}
		}
	}
}

func (s *Server) readMessage() ([]byte, error) {
	contentLen := 0
	for {
		line, err := s.in.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if i := strings.IndexByte(line, ':'); i >= 0 {
			key := strings.ToLower(strings.TrimSpace(line[:i]))
			if key == "content-length" {
				n, err := strconv.Atoi(strings.TrimSpace(line[i+1:]))
				if err != nil {
					return nil, fmt.Errorf("bad Content-Length header: %w", err)
				}
				contentLen = n
			}
		}
	}
	if contentLen <= 0 {
		return nil, io.EOF
	}
	buf := make([]byte, contentLen)
	if _, err := io.ReadFull(s.in, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *Server) writeMessage(v any) {
	body, err := json.Marshal(v)
	if err != nil {
		s.log.Error("marshal message", "error", err)
		return
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "Content-Length: %d\r\n\r\n", len(body))
	b.Write(body)
	if _, err := s.out.Write(b.Bytes()); err != nil {
		s.log.Error("write message", "error", err)
	}
}

func (s *Server) respond(id json.RawMessage, result any, respErr *responseError) {
	if result == nil && respErr == nil {
		result = json.RawMessage("null")
	}
	s.writeMessage(response{JSONRPC: "2.0", ID: id, Result: result, Error: respErr})
}

func (s *Server) notify(method string, params any) {
	s.writeMessage(map[string]any{"jsonrpc": "2.0", "method": method, "params": params})
}

// updateDocument stores the new text, reparses it, and publishes the
// resulting diagnostics. A clean parse publishes an empty batch so stale
// squiggles disappear.
func (s *Server) updateDocument(uri, text string) {
	d := &document{text: text, lines: lineOffsets(text)}
	doc, err := parser.Parse(text)
	if err == nil {
		d.doc = doc
	} else {
		s.log.Debug("document has problems", "uri", uri, "error", err)
	}

	s.mu.Lock()
	s.docs[uri] = d
	s.mu.Unlock()

	s.notify("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toDiagnostics(d, err),
	})
}

// closeDocument drops the buffer and clears its diagnostics.
func (s *Server) closeDocument(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()

	s.notify("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []Diagnostic{},
	})
}

func (s *Server) snapshot(uri string) *document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[uri]
}
