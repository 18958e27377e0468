// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package web exposes the redaction engine over HTTP. Documents are
// uploaded per request and never written to disk; the sanitized bytes
// go straight back out in the response.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"foia-stream/internal/audit"
	"foia-stream/internal/config"
	"foia-stream/internal/observability"
	"foia-stream/internal/redaction"
	"foia-stream/internal/security"
	"foia-stream/internal/version"
)

// WebServer represents the web server instance
type WebServer struct {
	port     string
	server   *http.Server
	mux      *http.ServeMux
	cfg      *config.Config
	engine   *redaction.Engine
	journal  *audit.Journal
	observer *observability.StandardObserver
}

// ErrorResponse is the JSON envelope returned for request-level
// failures (bad uploads, malformed region JSON). Operation failures
// return the full OperationResult instead.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// AuditResponse wraps journal entries returned by the audit endpoint.
type AuditResponse struct {
	Success bool                `json:"success"`
	Count   int                 `json:"count"`
	Entries []audit.StoredEntry `json:"entries"`
}

// errDocumentTooLarge marks uploads over the configured cap so the
// handler can answer 413 instead of a generic 400.
var errDocumentTooLarge = errors.New("document too large")

// NewWebServer creates a new web server instance. The journal may be
// nil when auditing is disabled; the audit endpoint then reports the
// feature as unavailable.
func NewWebServer(port string, cfg *config.Config, engine *redaction.Engine, journal *audit.Journal, observer *observability.StandardObserver) *WebServer {
	if cfg == nil {
		cfg = config.LoadConfigOrDefault("")
	}
	if engine == nil {
		engine = redaction.NewEngine(redaction.EngineConfig{})
	}
	ws := &WebServer{
		port:     port,
		cfg:      cfg,
		engine:   engine,
		journal:  journal,
		observer: observer,
	}
	ws.setupRoutes()
	return ws
}

// Handler returns the route handler. Exposed for tests.
func (ws *WebServer) Handler() http.Handler {
	return ws.mux
}

// Start starts the web server
func (ws *WebServer) Start() error {
	// Try ports starting from the specified port
	var lastError error
	for i := 0; i < 10; i++ {
		currentPort := ws.port
		if i > 0 || ws.port == "8080" {
			currentPort = fmt.Sprintf("%d", 8080+i)
		}

		// Test if port is available first
		listener, err := net.Listen("tcp", ":"+currentPort)
		if err != nil {
			lastError = err
			if i == 0 {
				fmt.Printf("Port %s is not available, trying alternative ports...\n", currentPort)
			}
			continue // Port is busy, try next one
		}
		listener.Close()

		// Create secure server with timeout configurations
		ws.server = ws.createSecureServer(currentPort)

		fmt.Printf("FOIA Stream web API started on port %s\n", currentPort)
		fmt.Printf("Access URLs:\n")
		fmt.Printf("Local:     http://localhost:%s\n", currentPort)
		fmt.Printf("Container: Use your mapped port (e.g., -p 8082:%s -> http://localhost:8082)\n", currentPort)

		// Start the server with enhanced error handling
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lastError = err
			fmt.Printf("Server on port %s failed: %v\n", currentPort, err)
			continue // Try next port
		}
		return nil
	}

	// If we get here, no ports were available
	return fmt.Errorf("could not find an available port in range 8080-8089\n"+
		"Last error: %v\n"+
		"Troubleshooting:\n"+
		"  1. Check if other services are using these ports: netstat -an | grep :808\n"+
		"  2. Try a specific port with --port <number>\n"+
		"  3. Ensure you have permission to bind to the requested port", lastError)
}

// Stop stops the web server
func (ws *WebServer) Stop() error {
	if ws.server != nil {
		return ws.server.Close()
	}
	return nil
}

// setupRoutes configures all HTTP route handlers
func (ws *WebServer) setupRoutes() {
	ws.mux = http.NewServeMux()
	ws.mux.HandleFunc("/", ws.serveHome)
	ws.mux.HandleFunc("/health", ws.handleHealth)
	ws.mux.HandleFunc("/version", ws.handleVersion)

	// Redaction endpoints
	ws.mux.HandleFunc("/redaction/info", ws.handleInfo)
	ws.mux.HandleFunc("/redaction/inspect", ws.handleInspect)
	ws.mux.HandleFunc("/redaction/preview", ws.handlePreview)
	ws.mux.HandleFunc("/redaction/apply", ws.handleApply)
	ws.mux.HandleFunc("/redaction/audit", ws.handleAudit)
}

// createSecureServer creates an HTTP server with security timeouts
func (ws *WebServer) createSecureServer(port string) *http.Server {
	return &http.Server{
		Addr:    ":" + port,
		Handler: ws.mux,
		// Timeout for reading request headers (prevents slow header attacks)
		ReadHeaderTimeout: 15 * time.Second,
		// Timeout for reading entire request
		ReadTimeout: 30 * time.Second,
		// Timeout for writing response
		WriteTimeout: 30 * time.Second,
		// Timeout for idle connections
		IdleTimeout: 60 * time.Second,
	}
}

// serveHome serves a minimal HTML index describing the API
func (ws *WebServer) serveHome(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != "GET" {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if request.URL.Path != "/" {
		http.NotFound(responseWriter, request)
		return
	}

	responseWriter.Header().Set("Content-Type", "text/html")
	responseWriter.WriteHeader(http.StatusOK)
	responseWriter.Write([]byte(indexHTML))
}

const indexHTML = `<!DOCTYPE html>
<html><head><title>FOIA Stream</title></head>
<body>
<h1>FOIA Stream</h1>
<p>PDF redaction service. Endpoints:</p>
<ul>
<li><code>POST /redaction/info</code> - page count and dimensions (PDF body or multipart "document")</li>
<li><code>POST /redaction/inspect</code> - risk markers, image and metadata summary</li>
<li><code>POST /redaction/preview</code> - draft markup PDF with boxes drawn over the named regions</li>
<li><code>POST /redaction/apply</code> - sanitized PDF with the named regions removed</li>
<li><code>GET /redaction/audit?document=ID</code> - stored audit entries</li>
<li><code>GET /health</code>, <code>GET /version</code></li>
</ul>
<p>Apply and preview take multipart/form-data with a "document" file field,
a "regions" JSON array, and an optional "options" JSON object.</p>
</body></html>`

// handleHealth provides a health check endpoint with version information
func (ws *WebServer) handleHealth(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != "GET" {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	versionInfo := version.Full()

	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "foia-stream-web",
		"version":   versionInfo["version"],
		"audit":     ws.journal != nil,
		"build_info": map[string]interface{}{
			"version":    versionInfo["version"],
			"commit":     versionInfo["commit"],
			"build_date": versionInfo["buildDate"],
			"go_version": versionInfo["goVersion"],
			"platform":   versionInfo["platform"],
		},
	}

	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(http.StatusOK)
	json.NewEncoder(responseWriter).Encode(healthData)
}

// handleVersion returns build metadata as JSON
func (ws *WebServer) handleVersion(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != "GET" {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(http.StatusOK)
	json.NewEncoder(responseWriter).Encode(version.Full())
}

// handleInfo reports page count and dimensions for an uploaded document
func (ws *WebServer) handleInfo(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != "POST" {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	doc, _, err := ws.readDocument(request)
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, err.Error(), statusForUploadError(err))
		return
	}
	buf := security.NewSecureBuffer(doc)
	defer buf.Clear()

	info, err := ws.engine.Info(buf.Bytes())
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, err.Error(), statusForError(err))
		return
	}

	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(http.StatusOK)
	json.NewEncoder(responseWriter).Encode(info)
}

// handleInspect reports risk markers and content summary for an uploaded document
func (ws *WebServer) handleInspect(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != "POST" {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	doc, _, err := ws.readDocument(request)
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, err.Error(), statusForUploadError(err))
		return
	}
	buf := security.NewSecureBuffer(doc)
	defer buf.Clear()

	report, err := ws.engine.Inspect(buf.Bytes())
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, err.Error(), statusForError(err))
		return
	}

	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(http.StatusOK)
	json.NewEncoder(responseWriter).Encode(report)
}

// handleApply runs the full sanitization pipeline and returns the
// redacted document. Audit entries are journaled before the bytes go
// out; a journal failure fails the request rather than shipping an
// unrecorded redaction.
func (ws *WebServer) handleApply(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != "POST" {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := ws.parseOperationRequest(request)
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, err.Error(), statusForUploadError(err))
		return
	}
	buf := security.NewSecureBuffer(req.document)
	defer buf.Clear()

	finish := ws.observer.StartTiming(observability.ComponentWeb, "apply", req.options.DocumentID)

	res := ws.engine.Apply(request.Context(), buf.Bytes(), req.regions, req.options)
	if !res.Success {
		finish(false, map[string]interface{}{"error": res.Error})
		ws.sendOperationFailure(responseWriter, res)
		return
	}

	if ws.journal != nil && len(res.AuditEntries) > 0 {
		hash := audit.HashDocument(buf.Bytes())
		if err := ws.journal.RecordOperation(request.Context(), req.options.DocumentID, hash, res.AuditEntries); err != nil {
			finish(false, map[string]interface{}{"error": err.Error()})
			ws.sendErrorWithStatus(responseWriter,
				fmt.Sprintf("redaction succeeded but audit journaling failed: %v", err),
				http.StatusInternalServerError)
			return
		}
	}

	finish(true, map[string]interface{}{
		"redaction_count": res.RedactionCount,
		"warnings":        len(res.Warnings),
	})
	ws.sendDocument(responseWriter, res, "redacted-"+safeDocumentName(req.filename))
}

// handlePreview returns a draft markup PDF. Previews are never
// journaled; the covered content is still present in the output.
func (ws *WebServer) handlePreview(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != "POST" {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	req, err := ws.parseOperationRequest(request)
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, err.Error(), statusForUploadError(err))
		return
	}
	buf := security.NewSecureBuffer(req.document)
	defer buf.Clear()

	finish := ws.observer.StartTiming(observability.ComponentWeb, "preview", req.options.DocumentID)

	res := ws.engine.Preview(request.Context(), buf.Bytes(), req.regions, req.options)
	if !res.Success {
		finish(false, map[string]interface{}{"error": res.Error})
		ws.sendOperationFailure(responseWriter, res)
		return
	}

	finish(true, map[string]interface{}{"redaction_count": res.RedactionCount})
	ws.sendDocument(responseWriter, res, "preview-"+safeDocumentName(req.filename))
}

// handleAudit lists stored audit entries, newest first, or the entries
// for one document when the "document" query parameter is set.
func (ws *WebServer) handleAudit(responseWriter http.ResponseWriter, request *http.Request) {
	if request.Method != "GET" {
		http.Error(responseWriter, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if ws.journal == nil {
		ws.sendErrorWithStatus(responseWriter, "audit journal is disabled", http.StatusServiceUnavailable)
		return
	}

	var entries []audit.StoredEntry
	var err error
	if documentID := request.URL.Query().Get("document"); documentID != "" {
		entries, err = ws.journal.EntriesForDocument(request.Context(), documentID)
	} else {
		limit, _ := strconv.Atoi(request.URL.Query().Get("limit"))
		entries, err = ws.journal.RecentEntries(request.Context(), limit)
	}
	if err != nil {
		ws.sendErrorWithStatus(responseWriter, fmt.Sprintf("failed to read audit journal: %v", err), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []audit.StoredEntry{}
	}

	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(http.StatusOK)
	json.NewEncoder(responseWriter).Encode(AuditResponse{
		Success: true,
		Count:   len(entries),
		Entries: entries,
	})
}

// operationRequest carries the parsed pieces of an apply or preview call.
type operationRequest struct {
	document []byte
	filename string
	regions  []redaction.RedactionRegion
	options  redaction.RedactionOptions
}

// parseOperationRequest extracts the document, regions, and options
// from a multipart request. Request options override the configured
// defaults field by field.
func (ws *WebServer) parseOperationRequest(request *http.Request) (*operationRequest, error) {
	if err := request.ParseMultipartForm(32 << 20); err != nil { // 32MB in-memory cap, rest spools to disk
		return nil, fmt.Errorf("failed to parse form data: %v", err)
	}

	doc, filename, err := ws.readFormDocument(request)
	if err != nil {
		return nil, err
	}

	regionsJSON := request.FormValue("regions")
	if regionsJSON == "" {
		return nil, errors.New("no regions provided: supply a JSON array in the 'regions' form field")
	}
	var regions []redaction.RedactionRegion
	if err := json.Unmarshal([]byte(regionsJSON), &regions); err != nil {
		return nil, fmt.Errorf("invalid regions JSON: %v", err)
	}

	opts, err := ws.cfg.RedactionDefaults()
	if err != nil {
		return nil, fmt.Errorf("invalid redaction defaults: %v", err)
	}
	if optionsJSON := request.FormValue("options"); optionsJSON != "" {
		if err := json.Unmarshal([]byte(optionsJSON), &opts); err != nil {
			return nil, fmt.Errorf("invalid options JSON: %v", err)
		}
	}
	opts = opts.WithDefaults()
	if opts.DocumentID == "" {
		opts.DocumentID = documentIDFromFilename(filename)
	}

	return &operationRequest{
		document: doc,
		filename: filename,
		regions:  regions,
		options:  opts,
	}, nil
}

// readDocument accepts either a raw PDF body or a multipart form with
// a "document" file field.
func (ws *WebServer) readDocument(request *http.Request) ([]byte, string, error) {
	contentType := request.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := request.ParseMultipartForm(32 << 20); err != nil {
			return nil, "", fmt.Errorf("failed to parse form data: %v", err)
		}
		return ws.readFormDocument(request)
	}

	max := ws.maxUploadBytes()
	data, err := io.ReadAll(io.LimitReader(request.Body, max+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read request body: %v", err)
	}
	if int64(len(data)) > max {
		return nil, "", errDocumentTooLarge
	}
	if len(data) == 0 {
		return nil, "", errors.New("no document uploaded: send the PDF as the request body or a multipart 'document' field")
	}
	return data, "document.pdf", nil
}

// readFormDocument reads the "document" file field with size limit protection
func (ws *WebServer) readFormDocument(request *http.Request) ([]byte, string, error) {
	file, header, err := request.FormFile("document")
	if err != nil {
		return nil, "", errors.New("no document uploaded: supply a PDF in the 'document' form field")
	}
	defer file.Close()

	max := ws.maxUploadBytes()
	data, err := io.ReadAll(io.LimitReader(file, max+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read uploaded document: %v", err)
	}
	if int64(len(data)) > max {
		return nil, "", errDocumentTooLarge
	}
	if len(data) == 0 {
		return nil, "", errors.New("uploaded document is empty")
	}
	return data, header.Filename, nil
}

func (ws *WebServer) maxUploadBytes() int64 {
	if ws.cfg != nil && ws.cfg.Server.MaxUploadBytes > 0 {
		return ws.cfg.Server.MaxUploadBytes
	}
	return 100 << 20 // 100MB limit to prevent decompression bombs
}

// sendDocument writes a successful operation result as a PDF download.
func (ws *WebServer) sendDocument(responseWriter http.ResponseWriter, res *redaction.OperationResult, filename string) {
	responseWriter.Header().Set("Content-Type", "application/pdf")
	responseWriter.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	responseWriter.Header().Set("X-Redaction-Count", strconv.Itoa(res.RedactionCount))
	responseWriter.Header().Set("X-Redaction-Strategy", res.Strategy)
	if len(res.Warnings) > 0 {
		responseWriter.Header().Set("X-Redaction-Warnings", strconv.Itoa(len(res.Warnings)))
	}
	responseWriter.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	responseWriter.Header().Set("Pragma", "no-cache")
	responseWriter.Header().Set("Expires", "0")

	responseWriter.WriteHeader(http.StatusOK)
	responseWriter.Write(res.OutputBytes)
}

// sendOperationFailure returns the full operation result so callers see
// partial audit entries and warnings alongside the error.
func (ws *WebServer) sendOperationFailure(responseWriter http.ResponseWriter, res *redaction.OperationResult) {
	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(statusForError(res.Err()))
	json.NewEncoder(responseWriter).Encode(res)
}

// sendErrorWithStatus sends an error response with a specific HTTP status code
func (ws *WebServer) sendErrorWithStatus(responseWriter http.ResponseWriter, message string, statusCode int) {
	enhancedMessage := enhanceErrorMessage(message)

	responseWriter.Header().Set("Content-Type", "application/json")
	responseWriter.WriteHeader(statusCode)
	json.NewEncoder(responseWriter).Encode(ErrorResponse{
		Success: false,
		Error:   enhancedMessage,
	})
}

// enhanceErrorMessage adds troubleshooting information to error messages
func enhanceErrorMessage(message string) string {
	switch {
	case strings.Contains(message, "failed to parse form data"):
		return message + "\nTroubleshooting: Upload the PDF using multipart/form-data with a 'document' field"
	case strings.Contains(message, "no regions provided"):
		return message + "\nTroubleshooting: Pass regions as a JSON array, e.g. [{\"page\":0,\"x\":50,\"y\":700,\"width\":200,\"height\":20}]"
	case strings.Contains(message, "document too large"):
		return message + "\nTroubleshooting: Raise server.max_upload_bytes in the configuration or split the document"
	default:
		return message
	}
}

// statusForUploadError maps request parsing failures to HTTP status codes.
func statusForUploadError(err error) int {
	if errors.Is(err, errDocumentTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// statusForError maps operation failures to HTTP status codes using the
// error taxonomy.
func statusForError(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case errors.Is(err, redaction.ErrInvalidDocument), errors.Is(err, redaction.ErrInvalidRegion):
		return http.StatusBadRequest
	case errors.Is(err, redaction.ErrResourceLimit):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// documentIDFromFilename derives a journal-safe document identifier
// from a client-supplied filename.
func documentIDFromFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	for _, r := range base {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "document"
	}
	return b.String()
}

// safeDocumentName builds a download filename from a client-supplied one.
func safeDocumentName(filename string) string {
	return documentIDFromFilename(filename) + ".pdf"
}
