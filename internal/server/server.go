package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/classifier"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/pipeline"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/policy"
)

// Server wraps the HTTP API for SentinelGuard.
type Server struct {
	mux       *http.ServeMux
	analyzer  *pipeline.Analyzer
	index     *policy.Index
	clf       classifier.Classifier
	auditPath string
}

func New(analyzer *pipeline.Analyzer, index *policy.Index, clf classifier.Classifier, auditPath string) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		analyzer:  analyzer,
		index:     index,
		clf:       clf,
		auditPath: auditPath,
	}
	if s.clf == nil {
		s.clf = classifier.NewNoop()
	}

	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/analyze", s.handleAnalyze)
	s.mux.HandleFunc("/api/complete", s.handleComplete)
	s.mux.HandleFunc("/api/compliance/ask", s.handleComplianceAsk)
	s.mux.HandleFunc("/api/admin/logs", s.handleAdminLogs)
	s.mux.HandleFunc("/api/admin/policies", s.handleAdminPolicies)
	s.mux.HandleFunc("/api/admin/policies/search", s.handleAdminPolicySearch)

	return s
}

// Handler returns the full handler chain, CORS included.
func (s *Server) Handler() http.Handler {
	return corsMiddleware(s.mux)
}

func (s *Server) Start(addr string) error {
	log.Printf("sentinelguard listening on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":             "ok",
		"policy_index_ready": s.index.Ready(),
		"classifier_ready":   s.clf.Ready(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

// maxBodyBytes bounds inbound JSON bodies.
const maxBodyBytes = 1 << 20

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

type apiError struct {
	Detail string `json:"detail"`
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, apiError{Detail: detail})
}

// corsMiddleware allows browser frontends on any origin to call the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
