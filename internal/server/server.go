package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"ipsec-confgen/internal/artifact"
	"ipsec-confgen/internal/auth"
	"ipsec-confgen/internal/generator"
	"ipsec-confgen/internal/presets"
	"ipsec-confgen/internal/version"
)

const downloadFileName = "vpn-config.txt"

// Server exposes the generator over HTTP.
type Server struct {
	generator *generator.Service
	index     *artifact.Index
	auth      *auth.Manager
	logger    *log.Logger
}

// New creates an HTTP server. index may be nil when the artifact index is
// disabled; authManager may be nil when no token is configured.
func New(service *generator.Service, index *artifact.Index, authManager *auth.Manager, logger *log.Logger) (*Server, error) {
	if service == nil {
		return nil, errors.New("generator service is required")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Server{generator: service, index: index, auth: authManager, logger: logger}, nil
}

// Router constructs the http.Handler with all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader(version.HeaderName, version.Current().Short()))
	r.Use(s.auth.Middleware)

	r.Get("/healthz", s.handleHealth)
	r.Post("/generate", s.handleGenerate)
	r.Post("/download", s.handleDownload)
	r.Post("/save", s.handleSave)

	r.Route("/api", func(api chi.Router) {
		api.Get("/options", s.handleOptions)
		api.Get("/presets", s.handlePresets)
		api.Get("/artifacts", s.handleArtifacts)
		api.Get("/version", s.handleVersion)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
			"remote":     r.RemoteAddr,
		}).Debug("HTTP request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	result, err := s.generator.Generate(in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	result, err := s.generator.Generate(in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+downloadFileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(result.Config))
}

type saveResponse struct {
	*generator.Result
	Artifact *artifact.Artifact `json:"artifact"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	result, art, err := s.generator.Save(r.Context(), in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saveResponse{Result: result, Artifact: art})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.generator.Options())
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	catalog := s.generator.Presets()
	if catalog == nil {
		writeJSON(w, http.StatusOK, map[string]map[string]presets.Preset{})
		return
	}
	writeJSON(w, http.StatusOK, catalog.All())
}

func (s *Server) handleArtifacts(w http.ResponseWriter, r *http.Request) {
	if s.index == nil {
		writeJSON(w, http.StatusOK, map[string]any{"artifacts": []artifact.Entry{}})
		return
	}
	entries, err := s.index.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artifacts": entries})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, version.Current())
}
