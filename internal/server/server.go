package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rvenkatesh/interview-grader/internal/report"
	"github.com/rvenkatesh/interview-grader/internal/transcript"
	"go.uber.org/zap"
)

const contentType = "application/json"

// Evaluator grades a batch of question/answer pairs into a report.
type Evaluator interface {
	Evaluate(ctx context.Context, sourceID string, pairs []transcript.Pair) (*report.Report, error)
}

// Server is the HTTP glue around the evaluation pipeline. All real work
// happens in the injected collaborators; handlers only translate payloads.
type Server struct {
	normalizer *transcript.Normalizer
	segmenter  *transcript.Segmenter
	evaluator  Evaluator
	logger     *zap.Logger

	httpServer *http.Server
}

// New creates a server listening on addr.
func New(addr string, normalizer *transcript.Normalizer, segmenter *transcript.Segmenter, evaluator Evaluator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		normalizer: normalizer,
		segmenter:  segmenter,
		evaluator:  evaluator,
		logger:     logger,
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Grading a long interview takes many model calls.
		WriteTimeout: 5 * time.Minute,
	}

	return s
}

// Handler returns the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/extract", s.handleExtract)
	mux.HandleFunc("/evaluate", s.handleEvaluate)
	mux.HandleFunc("/process", s.handleProcess)
	return mux
}

// ListenAndServe blocks serving requests until the context is cancelled or
// the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.httpServer.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// evaluateRequest is the inbound contract: a transcript-bearing payload with
// pre-segmented pairs plus optional source metadata.
type evaluateRequest struct {
	AudioFile      string            `json:"audioFile,omitempty"`
	Timestamp      string            `json:"timestamp,omitempty"`
	Status         string            `json:"status,omitempty"`
	FullTranscript string            `json:"full_transcript,omitempty"`
	QAPairs        []transcript.Pair `json:"qa_pairs"`
}

type extractRequest struct {
	Text string `json:"text"`
}

type extractResponse struct {
	QAPairs []transcript.Pair `json:"qa_pairs"`
}

type processResponse struct {
	Status           string            `json:"status"`
	QAPairs          []transcript.Pair `json:"qa_pairs"`
	EvaluationReport *report.Report    `json:"evaluation_report"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("decode request: %s", err)})
		return
	}

	pairs, err := s.segmentText(r.Context(), req.Text)
	if err != nil {
		s.logger.Error("extracting pairs", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, extractResponse{QAPairs: pairs})
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("decode request: %s", err)})
		return
	}

	s.logger.Info("evaluating interview",
		zap.String("source", req.AudioFile),
		zap.Int("pairs", len(req.QAPairs)),
	)

	rep, err := s.evaluator.Evaluate(r.Context(), req.AudioFile, req.QAPairs)
	if err != nil {
		s.logger.Error("evaluation failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	var req struct {
		extractRequest
		AudioFile string `json:"audioFile,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("decode request: %s", err)})
		return
	}

	pairs, err := s.segmentText(r.Context(), req.Text)
	if err != nil {
		s.logger.Error("extracting pairs", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	rep, err := s.evaluator.Evaluate(r.Context(), req.AudioFile, pairs)
	if err != nil {
		s.logger.Error("evaluation failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, processResponse{
		Status:           "success",
		QAPairs:          pairs,
		EvaluationReport: rep,
	})
}

func (s *Server) segmentText(ctx context.Context, text string) ([]transcript.Pair, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	sentences, err := s.normalizer.Sentences(ctx, text)
	if err != nil {
		return nil, err
	}

	return s.segmenter.Segment(sentences), nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
