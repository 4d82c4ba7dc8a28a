package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"screening-datagen/internal/db"
	"screening-datagen/internal/profile"
	"screening-datagen/internal/report"
	"screening-datagen/pkg"
)

// maxSampleCount caps one dry-run sampling request.
const maxSampleCount = 20

// Records is the read side of the session repository.
type Records interface {
	ListSessions(ctx context.Context, limit int) ([]pkg.SessionPreview, error)
	GetSession(ctx context.Context, runID string) (*pkg.SessionRecord, error)
}

// Listener yields run ids of newly saved sessions.
type Listener interface {
	Listen(ctx context.Context) (<-chan string, error)
}

// Server bundles together the dependencies required by HTTP handlers. It
// implements http.Handler so it can be passed to http.ListenAndServe.
type Server struct {
	Repo     Records
	Notifier Listener
	Exporter *report.Exporter
	Log      logrus.FieldLogger

	router chi.Router
}

// NewServer constructs a Server and its routes. notifier may be nil when
// the backing store cannot stream saves.
func NewServer(repo Records, notifier Listener, exporter *report.Exporter, log logrus.FieldLogger) *Server {
	s := &Server{Repo: repo, Notifier: notifier, Exporter: exporter, Log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/stream", s.handleStream)
		r.Get("/sessions/{runID}", s.handleGetSession)
		r.Get("/sessions/{runID}/transcript.pdf", s.handleTranscriptPDF)
		r.Post("/profiles/sample", s.handleSampleProfiles)
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.Log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("http request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListSessions returns previews of the newest sessions. ?limit=
// bounds the listing.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	sessions, err := s.Repo.ListSessions(r.Context(), limit)
	if err != nil {
		s.serverError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleTranscriptPDF(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := s.Exporter.Render(rec, &buf); err != nil {
		s.serverError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "transcript_"+rec.AgentID+".pdf"))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*pkg.SessionRecord, bool) {
	rec, err := s.Repo.GetSession(r.Context(), chi.URLParam(r, "runID"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return nil, false
		}
		s.serverError(w, err)
		return nil, false
	}
	return rec, true
}

// handleStream pushes a session_saved event with the preview of every
// session saved while the client is connected.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.Notifier == nil {
		http.Error(w, "streaming requires the postgres store", http.StatusNotImplemented)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	ctx := r.Context()
	ids, err := s.Notifier.Listen(ctx)
	if err != nil {
		s.serverError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for runID := range ids {
		if err := s.sendSavedEvent(ctx, w, runID); err != nil {
			s.Log.WithError(err).WithField("run_id", runID).Warn("failed to send session event")
			continue
		}
		flusher.Flush()
	}
}

func (s *Server) sendSavedEvent(ctx context.Context, w io.Writer, runID string) error {
	rec, err := s.Repo.GetSession(ctx, runID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(rec.Preview())
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, "event: session_saved\ndata: "+string(data)+"\n\n")
	return err
}

// SampleRequest is the body of a dry-run sampling request. A nil seed uses
// the current time.
type SampleRequest struct {
	Seed      *int64            `json:"seed"`
	Count     int               `json:"count"`
	Overrides profile.Overrides `json:"overrides"`
}

// SampleResponse echoes the seed so the draw can be reproduced.
type SampleResponse struct {
	Seed     int64                 `json:"seed"`
	Profiles []*pkg.PatientProfile `json:"profiles"`
}

func (s *Server) handleSampleProfiles(w http.ResponseWriter, r *http.Request) {
	var req SampleRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Count > maxSampleCount {
		http.Error(w, fmt.Sprintf("count must be at most %d", maxSampleCount), http.StatusBadRequest)
		return
	}
	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	sampler := profile.NewSampler(rand.New(rand.NewSource(seed)))
	resp := SampleResponse{Seed: seed}
	for i := 0; i < req.Count; i++ {
		p, err := sampler.Sample(req.Overrides)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp.Profiles = append(resp.Profiles, p)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) serverError(w http.ResponseWriter, err error) {
	s.Log.WithError(err).Error("request failed")
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
