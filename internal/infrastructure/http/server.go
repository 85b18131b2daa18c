// Package http provides the development backend.
// It serves the two endpoints the client talks to, backed by an in-memory
// passage index, so the client can be exercised without the real RAG service.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gorilla/mux"

	"github.com/0xcro3dile/polit/internal/adapters/parser"
	"github.com/0xcro3dile/polit/internal/adapters/vectordb"
	"github.com/0xcro3dile/polit/internal/domain/entities"
	"github.com/0xcro3dile/polit/internal/logging"
)

const (
	chunkSize    = 500
	chunkOverlap = 50
	topK         = 3

	// formOverhead leaves room for multipart framing around a maximum-size file.
	formOverhead = 1 << 20

	noDocumentsReply = "No documents have been uploaded yet. Upload a PDF first."
	noMatchReply     = "I could not find anything about that in the uploaded documents."
)

// Answerer turns retrieved passages into a reply.
type Answerer interface {
	Generate(ctx context.Context, question string, passages []string) (string, error)
}

// Server is the development backend.
type Server struct {
	store    *vectordb.InMemoryStore
	answerer Answerer
	addr     string
	logger   *logging.Logger
	now      func() time.Time
}

// NewServer creates a backend. answerer may be nil, in which case the best
// matching passage is returned verbatim.
func NewServer(store *vectordb.InMemoryStore, answerer Answerer, addr string, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		store:    store,
		answerer: answerer,
		addr:     addr,
		logger:   logger,
		now:      time.Now,
	}
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.Use(recoveryMiddleware(s.logger))
	r.Use(loggingMiddleware(s.logger))
	r.Use(corsMiddleware)

	r.HandleFunc("/upload-pdf", s.handleUpload).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	return r
}

// Start runs the server until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second, // Generated answers can be slow
	}

	s.logger.Info("development backend starting", "addr", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// handleUpload accepts one PDF in the "file" form field and indexes its text.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	start := s.now()
	tooLarge := fmt.Sprintf("File size exceeds %s limit", humanize.IBytes(uint64(entities.MaxUploadBytes)))

	if r.ContentLength > entities.MaxUploadBytes+formOverhead {
		respondError(w, http.StatusRequestEntityTooLarge, tooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, entities.MaxUploadBytes+formOverhead)

	if err := r.ParseMultipartForm(entities.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			respondError(w, http.StatusRequestEntityTooLarge, tooLarge)
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, entities.MaxUploadBytes+1))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}
	if int64(len(data)) > entities.MaxUploadBytes {
		respondError(w, http.StatusRequestEntityTooLarge, tooLarge)
		return
	}
	if len(data) == 0 {
		respondError(w, http.StatusBadRequest, "Uploaded file is empty")
		return
	}
	if header.Header.Get("Content-Type") != entities.PDFMimeType && !bytes.HasPrefix(data, []byte("%PDF-")) {
		respondError(w, http.StatusBadRequest, "Only PDF files are allowed")
		return
	}

	text, err := parser.ExtractText(data)
	if err != nil {
		s.logger.Warn("text extraction failed", "file", header.Filename, "error", err)
		respondError(w, http.StatusUnprocessableEntity, "Could not extract text from PDF")
		return
	}

	count, err := s.store.Store(r.Context(), header.Filename, parser.Chunk(text, chunkSize, chunkOverlap))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to index document")
		return
	}

	elapsed := math.Round(s.now().Sub(start).Seconds()*100) / 100
	s.logger.Info("document indexed",
		"file", header.Filename,
		"size", humanize.IBytes(uint64(len(data))),
		"vectors", count,
		"seconds", elapsed)

	respondJSON(w, http.StatusOK, entities.UploadReply{
		Message:        fmt.Sprintf("%s uploaded and vectorized successfully!", header.Filename),
		VectorCount:    &count,
		ProcessingTime: &elapsed,
	})
}

// handleQuery answers {query} from the indexed passages.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "Query required")
		return
	}

	answer, err := s.answer(r.Context(), req.Query)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Search failed")
		return
	}
	respondJSON(w, http.StatusOK, entities.QueryReply{Response: &answer})
}

func (s *Server) answer(ctx context.Context, query string) (string, error) {
	if len(s.store.Documents()) == 0 {
		return noDocumentsReply, nil
	}

	matches, err := s.store.Search(ctx, query, topK)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return noMatchReply, nil
	}

	if s.answerer != nil {
		passages := make([]string, len(matches))
		for i, m := range matches {
			passages[i] = fmt.Sprintf("[Source: %s]\n%s", m.Passage.Document, m.Passage.Text)
		}
		reply, err := s.answerer.Generate(ctx, query, passages)
		if err == nil && reply != "" {
			return reply, nil
		}
		s.logger.Warn("answer generation failed, returning passage", "error", err)
	}

	best := matches[0].Passage
	return fmt.Sprintf("From %s: %s", best.Document, best.Text), nil
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": len(s.store.Documents()),
	})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func loggingMiddleware(logger *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start))
		})
	}
}

func recoveryMiddleware(logger *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic", "path", r.URL.Path, "panic", rec)
					respondError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}
