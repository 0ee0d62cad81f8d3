package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/audit"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/pipeline"
	"github.com/kritika05kr/SentinelGuard-AI-Gateway/internal/policy"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req pipeline.Request
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt must not be empty")
		return
	}

	res := s.analyzer.Analyze(r.Context(), req)
	writeJSON(w, http.StatusOK, res)
}

type completeRequest struct {
	UserID          string `json:"user_id"`
	SanitizedPrompt string `json:"sanitized_prompt"`
}

type completeResponse struct {
	Answer           string `json:"answer"`
	OutboundDecision any    `json:"outbound_decision"`
}

// handleComplete is the downstream LLM stub: it assumes the inbound prompt is
// already sanitized and echoes it back.
func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req completeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	prompt := req.SanitizedPrompt
	if len(prompt) > 200 {
		prompt = prompt[:200]
	}
	writeJSON(w, http.StatusOK, completeResponse{
		Answer: fmt.Sprintf("[DUMMY LLM ANSWER] Based on your sanitized prompt: %s...", prompt),
	})
}

type complianceRequest struct {
	UserID   string `json:"user_id"`
	Question string `json:"question"`
}

type complianceResponse struct {
	Answer         string         `json:"answer"`
	AlignmentScore float64        `json:"alignment_score"`
	Policies       []policy.Match `json:"policies"`
}

// handleComplianceAsk answers questions from policy text alone. Unlike the
// analyze pipeline, a not-ready index is an explicit failure here.
func (s *Server) handleComplianceAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req complianceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(w, http.StatusBadRequest, "question must not be empty")
		return
	}

	res, err := s.index.FindPolicies(req.Question, policy.DefaultTopK, policy.DefaultMinScore)
	if err != nil {
		if errors.Is(err, policy.ErrNotReady) {
			writeError(w, http.StatusServiceUnavailable,
				"Policy index is not loaded. Please rebuild policies or restart the service.")
			return
		}
		writeError(w, http.StatusInternalServerError, "policy search failed")
		return
	}

	if len(res.Matches) == 0 {
		writeJSON(w, http.StatusOK, complianceResponse{
			Answer: "I could not find any relevant policy clauses for your question in the " +
				"current handbook index. Please contact HR / Compliance for clarification.",
			AlignmentScore: res.Alignment,
			Policies:       []policy.Match{},
		})
		return
	}

	var b strings.Builder
	b.WriteString("Based on the current handbook, the following policy sections are most relevant:\n\n")
	for _, m := range res.Matches {
		fmt.Fprintf(&b, "- Section %s (%s): %s\n", m.Section, m.Title, m.Snippet)
	}
	b.WriteString("\nPlease treat these clauses as the primary guidance. " +
		"For exceptions or special cases, contact HR / Compliance.")

	writeJSON(w, http.StatusOK, complianceResponse{
		Answer:         b.String(),
		AlignmentScore: res.Alignment,
		Policies:       res.Matches,
	})
}

func (s *Server) handleAdminLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, 500)
	}

	entries, err := audit.ReadLast(s.auditPath, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read audit log")
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleAdminPolicies(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	chunks := s.index.Chunks()
	refs := make([]policy.Reference, 0, len(chunks))
	for _, c := range chunks {
		snippet := c.Text
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		refs = append(refs, policy.Reference{
			ID:      c.ID,
			Section: c.Section,
			Title:   c.Title,
			Snippet: snippet + "...",
		})
	}
	writeJSON(w, http.StatusOK, refs)
}

type policySearchResponse struct {
	Query          string         `json:"query"`
	AlignmentScore float64        `json:"alignment_score"`
	Matches        []policy.Match `json:"matches"`
}

func (s *Server) handleAdminPolicySearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q must not be empty")
		return
	}

	res, err := s.index.FindPolicies(q, 10, policy.DefaultMinScore)
	if err != nil {
		if errors.Is(err, policy.ErrNotReady) {
			writeError(w, http.StatusServiceUnavailable,
				"Policy index is not loaded. Please rebuild policies or restart the service.")
			return
		}
		writeError(w, http.StatusInternalServerError, "policy search failed")
		return
	}

	writeJSON(w, http.StatusOK, policySearchResponse{
		Query:          q,
		AlignmentScore: res.Alignment,
		Matches:        res.Matches,
	})
}
