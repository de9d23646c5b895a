package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/anthropics/wa-autoreply/internal/biz/domain"
	"github.com/anthropics/wa-autoreply/internal/biz/repo"
	"github.com/anthropics/wa-autoreply/internal/biz/usecase"
	"github.com/anthropics/wa-autoreply/internal/service"
)

// Server provides the HTTP admin API for rule management and message
// ingestion
type Server struct {
	replyUC   *usecase.ReplyUsecase
	responder *service.Responder
	logRepo   repo.ReplyLogRepo // optional
	outbox    repo.OutboxRepo   // optional

	server *http.Server
	port   int
}

// NewServer creates a new API server
func NewServer(replyUC *usecase.ReplyUsecase, responder *service.Responder, logRepo repo.ReplyLogRepo, outbox repo.OutboxRepo, port int) *Server {
	return &Server{
		replyUC:   replyUC,
		responder: responder,
		logRepo:   logRepo,
		outbox:    outbox,
		port:      port,
	}
}

// Handler returns the route mux
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Rule management
	mux.HandleFunc("/api/rules", s.handleRules)
	mux.HandleFunc("/api/rules/export", s.handleExport)
	mux.HandleFunc("/api/rules/import", s.handleImport)
	mux.HandleFunc("/api/rules/", s.handleRuleItem)

	// Message ingestion
	mux.HandleFunc("/api/messages", s.handleMessages)

	// Statistics and cooldown reset
	mux.HandleFunc("/api/stats", s.handleStats)
	mux.HandleFunc("/api/cooldowns", s.handleCooldowns)

	// Audit log and outbox
	mux.HandleFunc("/api/replies", s.handleReplies)
	mux.HandleFunc("/api/outbox", s.handleOutbox)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler: s.Handler(),
	}

	fmt.Printf("[API] Starting HTTP server on port %d\n", s.port)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Shutdown(context.Background())
	}
	return nil
}

// ruleDTO is the API representation of a rule
type ruleDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	TriggerType  string `json:"trigger_type"`
	TriggerValue string `json:"trigger_value"`
	ReplyType    string `json:"reply_type"`
	ReplyContent string `json:"reply_content"`
	IsActive     bool   `json:"is_active"`
	Priority     int    `json:"priority"`
	Cooldown     int    `json:"cooldown"`
	MatchCount   int64  `json:"match_count"`
	LastUsed     string `json:"last_used,omitempty"`
}

func toRuleDTO(rule *domain.ReplyRule) ruleDTO {
	dto := ruleDTO{
		ID:           rule.ID,
		Name:         rule.Name,
		TriggerType:  string(rule.TriggerType),
		TriggerValue: rule.TriggerValue,
		ReplyType:    string(rule.ReplyType),
		ReplyContent: rule.ReplyContent,
		IsActive:     rule.IsActive,
		Priority:     rule.Priority,
		Cooldown:     rule.Cooldown,
		MatchCount:   rule.MatchCount,
	}
	if !rule.LastUsed.IsZero() {
		dto.LastUsed = rule.LastUsed.Format(time.RFC3339)
	}
	return dto
}

// ============ Rule Handlers ============

func (s *Server) handleRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		activeOnly := r.URL.Query().Get("active") == "true"
		rules := s.replyUC.ListRules(activeOnly)
		result := make([]ruleDTO, len(rules))
		for i, rule := range rules {
			result[i] = toRuleDTO(rule)
		}
		s.writeJSON(w, map[string]interface{}{"rules": result})

	case http.MethodPost:
		var req struct {
			ID           string `json:"id"`
			Name         string `json:"name"`
			TriggerType  string `json:"trigger_type"`
			TriggerValue string `json:"trigger_value"`
			ReplyType    string `json:"reply_type"`
			ReplyContent string `json:"reply_content"`
			IsActive     *bool  `json:"is_active"`
			Priority     int    `json:"priority"`
			Cooldown     int    `json:"cooldown"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		active := true
		if req.IsActive != nil {
			active = *req.IsActive
		}
		rule := &domain.ReplyRule{
			ID:           req.ID,
			Name:         req.Name,
			TriggerType:  domain.TriggerType(req.TriggerType),
			TriggerValue: req.TriggerValue,
			ReplyType:    domain.ReplyType(req.ReplyType),
			ReplyContent: req.ReplyContent,
			IsActive:     active,
			Priority:     req.Priority,
			Cooldown:     req.Cooldown,
		}

		id, err := s.replyUC.AddRule(r.Context(), rule)
		if err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				http.Error(w, verr.Error(), http.StatusBadRequest)
				return
			}
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, map[string]interface{}{"id": id})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleRuleItem(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/rules/")
	if id == "" {
		http.Error(w, "rule id is required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		rule, ok := s.replyUC.GetRule(id)
		if !ok {
			http.Error(w, "rule not found", http.StatusNotFound)
			return
		}
		s.writeJSON(w, toRuleDTO(rule))

	case http.MethodPut:
		var update domain.RuleUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := s.replyUC.UpdateRule(r.Context(), id, &update); err != nil {
			if errors.Is(err, usecase.ErrRuleNotFound) {
				http.Error(w, "rule not found", http.StatusNotFound)
				return
			}
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				http.Error(w, verr.Error(), http.StatusBadRequest)
				return
			}
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, map[string]interface{}{"success": true})

	case http.MethodDelete:
		if err := s.replyUC.DeleteRule(r.Context(), id); err != nil {
			if errors.Is(err, usecase.ErrRuleNotFound) {
				http.Error(w, "rule not found", http.StatusNotFound)
				return
			}
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, map[string]interface{}{"success": true})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ============ Import/Export Handlers ============

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := s.replyUC.ExportRules(w); err != nil {
		fmt.Printf("[API] Export failed: %v\n", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	added, updated, err := s.replyUC.ImportRules(r.Context(), r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeJSON(w, map[string]interface{}{"added": added, "updated": updated})
}

// ============ Message Handler ============

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ID     string `json:"id"`
		Sender string `json:"sender"`
		Body   string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg := &domain.Message{
		ID:         req.ID,
		Sender:     req.Sender,
		Body:       req.Body,
		CreateTime: time.Now(),
	}

	reply := s.responder.HandleIncoming(r.Context(), msg)
	if reply == nil {
		s.writeJSON(w, map[string]interface{}{"replied": false})
		return
	}
	s.writeJSON(w, map[string]interface{}{"replied": true, "reply": reply})
}

// ============ Stats and Cooldown Handlers ============

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, s.replyUC.GetStats())
}

func (s *Server) handleCooldowns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cleared := s.replyUC.ClearCooldowns()
	s.writeJSON(w, map[string]interface{}{"cleared": cleared})
}

// ============ Audit and Outbox Handlers ============

func (s *Server) handleReplies(w http.ResponseWriter, r *http.Request) {
	if s.logRepo == nil {
		http.Error(w, "reply log not initialized", http.StatusServiceUnavailable)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	records, err := s.logRepo.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"replies": records})
}

func (s *Server) handleOutbox(w http.ResponseWriter, r *http.Request) {
	if s.outbox == nil {
		http.Error(w, "outbox not initialized", http.StatusServiceUnavailable)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	entries, err := s.outbox.GetPending(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{"pending": entries})
}

// ============ Helpers ============

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
