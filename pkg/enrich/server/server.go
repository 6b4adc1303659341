// Package server exposes the enrichment pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich"
	"github.com/largefullmoon/backend-excel-ai-modifier/pkg/enrich/classify"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxUploadBytes caps multipart uploads held in memory before spilling to disk.
const maxUploadBytes = 32 << 20

// CORSConfig controls cross-origin access for browser clients.
type CORSConfig struct {
	// Origins lists allowed origins; "*" allows any.
	Origins []string
	// Methods and Headers are advertised verbatim in preflight responses.
	Methods []string
	Headers []string
	// Credentials allows cookies and authorization headers cross-origin.
	Credentials bool
}

// DefaultCORS allows any origin, method, and header, with credentials.
func DefaultCORS() CORSConfig {
	return CORSConfig{
		Origins:     []string{"*"},
		Methods:     []string{"*"},
		Headers:     []string{"*"},
		Credentials: true,
	}
}

// Server handles the HTTP surface of the enrichment service.
type Server struct {
	svc  *enrich.Service
	cors CORSConfig
	log  *zap.Logger
}

// New creates a Server around an enrichment service.
func New(svc *enrich.Service, cors CORSConfig, log *zap.Logger) *Server {
	return &Server{svc: svc, cors: cors, log: log}
}

// Handler returns the HTTP routing for the service, wrapped in the CORS
// middleware so browser frontends on other origins can call it.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /export", s.handleExport)
	mux.HandleFunc("POST /sheets", s.handleSheets)
	mux.HandleFunc("GET /sample-data", s.handleSampleData)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/ai", s.handleHealthAI)
	return s.withCORS(mux)
}

// withCORS decorates cross-origin responses with access-control headers and
// answers preflight requests before they reach the method-matched routes.
func (s *Server) withCORS(next http.Handler) http.Handler {
	allowMethods := strings.Join(s.cors.Methods, ", ")
	allowHeaders := strings.Join(s.cors.Headers, ", ")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed := s.allowedOrigin(origin); allowed != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowed)
			h.Add("Vary", "Origin")
			if s.cors.Credentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", allowMethods)
				h.Set("Access-Control-Allow-Headers", allowHeaders)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// allowedOrigin returns the Access-Control-Allow-Origin value for a request
// origin, or "" when the origin is absent or not allowed. A wildcard origin
// echoes the caller when credentials are enabled, since browsers reject a
// literal "*" on credentialed requests.
func (s *Server) allowedOrigin(origin string) string {
	if origin == "" {
		return ""
	}
	for _, o := range s.cors.Origins {
		if o == "*" {
			if s.cors.Credentials {
				return origin
			}
			return "*"
		}
		if strings.EqualFold(o, origin) {
			return origin
		}
	}
	return ""
}

// ListenAndServe runs the HTTP server until the listener fails.
func (s *Server) ListenAndServe(port int) error {
	addr := fmt.Sprintf(":%d", port)
	s.log.Info("http server listening", zap.String("addr", addr))
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

// handleExport receives a workbook and sheet name, runs enrichment, and
// streams back the modified workbook. Input errors map to 400 with a
// descriptive message; everything else is an opaque 500 with the cause
// logged.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	content, filename, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	sheetName := r.FormValue("sheet_name")
	if sheetName == "" {
		s.writeError(w, http.StatusBadRequest, "sheet_name form field is required")
		return
	}

	outPath, err := s.svc.Export(r.Context(), content, sheetName)
	if err != nil {
		if enrich.IsInputError(err) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error("export failed",
			zap.String("file", filename),
			zap.String("sheet", sheetName),
			zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "error processing file, check server logs for details")
		return
	}
	defer os.Remove(outPath)

	out, err := os.Open(outPath)
	if err != nil {
		s.log.Error("open enriched workbook failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "error processing file, check server logs for details")
		return
	}
	defer out.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "modified_"+filename))
	if _, err := io.Copy(w, out); err != nil {
		s.log.Warn("streaming enriched workbook interrupted", zap.Error(err))
	}
}

// handleSheets lists the sheet names of an uploaded workbook.
func (s *Server) handleSheets(w http.ResponseWriter, r *http.Request) {
	content, _, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	sheets, err := s.svc.SheetNames(content)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "unable to read workbook: "+err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sheets": sheets})
}

// handleSampleData returns the active enrichment rule set, for frontends
// that display the coverage table alongside the upload form.
func (s *Server) handleSampleData(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.svc.Rules())
}

// handleHealth reports service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"ai_configured": s.svc.Provider().Remote,
	})
}

// handleHealthAI verifies connectivity to the generative backend.
func (s *Server) handleHealthAI(w http.ResponseWriter, r *http.Request) {
	gemini, ok := s.svc.Provider().Classifier.(*classify.Gemini)
	if !ok {
		s.writeJSON(w, http.StatusOK, map[string]any{
			"status":     "fallback",
			"configured": false,
			"message":    "generative classifier not configured, static fallback in use",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := gemini.Ping(ctx); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":     "error",
			"configured": true,
			"message":    err.Error(),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"configured": true,
	})
}

// readUpload extracts the uploaded spreadsheet from the multipart form and
// validates its extension. On failure the response has already been written.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return nil, "", false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "file form field is required")
		return nil, "", false
	}
	defer file.Close()

	if err := enrich.ValidateFilename(header.Filename); err != nil {
		if errors.Is(err, enrich.ErrUnsupportedFile) {
			s.writeError(w, http.StatusBadRequest, err.Error())
		} else {
			s.writeError(w, http.StatusBadRequest, "invalid file: "+err.Error())
		}
		return nil, "", false
	}

	content, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "unable to read upload: "+err.Error())
		return nil, "", false
	}
	return content, header.Filename, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warn("writing response failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	s.writeJSON(w, status, map[string]string{"detail": detail})
}
