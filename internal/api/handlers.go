package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhisek/quizdeck/internal/assessment"
	"github.com/abhisek/quizdeck/internal/bank"
	"github.com/abhisek/quizdeck/internal/curriculum"
	"github.com/abhisek/quizdeck/internal/questiongen"
	"github.com/abhisek/quizdeck/internal/quiz"
	"github.com/abhisek/quizdeck/internal/store"
)

// Response helpers

type apiResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{Error: &apiError{Code: code, Message: message}}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Error("failed to encode error response", zap.Error(err))
	}
}

// respondErr maps domain errors to HTTP statuses.
func (s *Server) respondErr(w http.ResponseWriter, err error) {
	var (
		verr *quiz.ValidationError
		perr *quiz.InsufficientPoolError
		mr   *questiongen.MalformedResponse
		mq   *questiongen.MalformedQuestion
	)
	switch {
	case errors.As(err, &verr):
		s.respondError(w, http.StatusBadRequest, "validation_error", verr.Error())
	case errors.Is(err, curriculum.ErrUnknownTopic):
		s.respondError(w, http.StatusBadRequest, "unknown_topic", err.Error())
	case errors.Is(err, curriculum.ErrEmptySelection):
		s.respondError(w, http.StatusConflict, "empty_selection", err.Error())
	case errors.As(err, &perr):
		s.respondError(w, http.StatusUnprocessableEntity, "insufficient_pool", perr.Error())
	case errors.As(err, &mr):
		s.respondError(w, http.StatusBadGateway, "malformed_response", mr.Error())
	case errors.As(err, &mq):
		s.respondError(w, http.StatusBadGateway, "malformed_question", mq.Error())
	case errors.Is(err, context.DeadlineExceeded):
		s.respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		s.log.Error("request failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &quiz.ValidationError{Field: "body", Message: fmt.Sprintf("invalid JSON body: %v", err)}
	}
	return nil
}

// Health

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"time":      time.Now().UTC().Format(time.RFC3339),
		"generator": s.deps.Generator != nil,
	})
}

// Topics

type topicNode struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Part        string      `json:"part"`
	Leaf        bool        `json:"leaf"`
	Children    []topicNode `json:"children,omitempty"`
}

func (s *Server) topicTree(title string) topicNode {
	n, _ := s.deps.Tree.Lookup(title)
	out := topicNode{ID: n.ID, Title: n.Title, Description: n.Description, Part: n.Part, Leaf: n.Leaf}
	for _, child := range s.deps.Tree.Children(title) {
		out.Children = append(out.Children, s.topicTree(child))
	}
	return out
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	var parts []topicNode
	for _, p := range s.deps.Tree.Parts() {
		parts = append(parts, s.topicTree(p.Title))
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"name":  s.deps.Tree.Name(),
		"parts": parts,
	})
}

type toggleRequest struct {
	Selected []string `json:"selected"`
	Title    string   `json:"title"`
	Checked  bool     `json:"checked"`
}

type selectionResponse struct {
	Selected []string `json:"selected"`
	Leaves   []string `json:"leaves"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := decode(r, &req); err != nil {
		s.respondErr(w, err)
		return
	}
	if req.Title == "" {
		s.respondError(w, http.StatusBadRequest, "validation_error", "title is required")
		return
	}

	sel, err := curriculum.NewSelection(s.deps.Tree, req.Selected)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	sel, err = sel.Toggle(req.Title, req.Checked)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, selectionResponse{Selected: sel.Titles(), Leaves: sel.Leaves()})
}

// Quizzes

type createQuizRequest struct {
	quiz.Settings
	Examples []quiz.Question `json:"examples,omitempty"`
}

type quizResponse struct {
	Questions []quiz.Question `json:"questions"`
	Requested int             `json:"requested"`
	Skipped   int             `json:"skipped,omitempty"`
	Warning   string          `json:"warning,omitempty"`
}

func (s *Server) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	if s.deps.Generator == nil {
		s.respondError(w, http.StatusServiceUnavailable, "generator_unavailable", "no LLM provider is configured")
		return
	}

	var req createQuizRequest
	if err := decode(r, &req); err != nil {
		s.respondErr(w, err)
		return
	}

	batch, err := questiongen.Prepare(s.deps.Tree, s.deps.Generator, req.Settings,
		questiongen.BatchOptions{Examples: req.Examples}, s.deps.Rand())
	if err != nil {
		s.respondErr(w, err)
		return
	}

	questions, err := batch.Run(r.Context())
	if err != nil && len(questions) == 0 {
		s.respondErr(w, err)
		return
	}

	resp := quizResponse{Questions: questions, Requested: batch.Len(), Skipped: batch.Skipped()}
	if err != nil {
		resp.Warning = fmt.Sprintf("generation stopped after %d of %d questions: %v", len(questions), batch.Len(), err)
	}
	if resp.Questions == nil {
		resp.Questions = []quiz.Question{}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// Assessments

type createAssessmentRequest struct {
	Banks []bank.Document `json:"banks"`
	Count int             `json:"count"`
}

type assessmentResponse struct {
	Questions []quiz.Question `json:"questions"`
	PoolSize  int             `json:"poolSize"`
	Dropped   []bank.Dropped  `json:"dropped,omitempty"`
}

func (s *Server) handleCreateAssessment(w http.ResponseWriter, r *http.Request) {
	var req createAssessmentRequest
	if err := decode(r, &req); err != nil {
		s.respondErr(w, err)
		return
	}
	if len(req.Banks) == 0 {
		s.respondErr(w, &quiz.ValidationError{Field: "banks", Message: "select at least one question bank"})
		return
	}

	loader := bank.NewLoader(s.deps.Tree)
	var pool []quiz.Question
	var dropped []bank.Dropped
	for i, doc := range req.Banks {
		res, err := loader.LoadDocument(doc, fmt.Sprintf("bank[%d]", i))
		if res != nil {
			pool = append(pool, res.Questions...)
			dropped = append(dropped, res.Dropped...)
		}
		var perr *quiz.InsufficientPoolError
		if err != nil && !errors.As(err, &perr) {
			s.respondErr(w, err)
			return
		}
	}

	if req.Count == 0 {
		req.Count = s.deps.AssessmentCount
	}

	sel := assessment.NewSelector(s.deps.Tree, s.deps.Distribution, assessment.Options{
		Strict: s.deps.StrictAssessment,
		Rand:   s.deps.Rand(),
	})
	questions, err := sel.Select(pool, req.Count)
	if err == nil && len(questions) == 0 {
		err = &quiz.InsufficientPoolError{Have: 0, Need: req.Count}
	}
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, assessmentResponse{Questions: questions, PoolSize: len(pool), Dropped: dropped})
}

// History

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	items, err := s.deps.History.List(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	if items == nil {
		items = []store.HistoryItem{}
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleSaveHistory(w http.ResponseWriter, r *http.Request) {
	var item store.HistoryItem
	if err := decode(r, &item); err != nil {
		s.respondErr(w, err)
		return
	}
	if len(item.Results) == 0 {
		s.respondError(w, http.StatusBadRequest, "validation_error", "results are required")
		return
	}
	if item.CompletedAt.IsZero() {
		item.CompletedAt = time.Now()
	}

	// ids are always assigned by the store.
	item.ID = ""
	saved, err := s.deps.History.Save(r.Context(), item)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	item, err := s.deps.History.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, err)
		return
	}
	if item == nil {
		s.respondError(w, http.StatusNotFound, "not_found", "history item not found")
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.History.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.History.Clear(r.Context()); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
