package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/credlens/credlens/internal/store"
	"github.com/credlens/credlens/pkg/extract"
	"github.com/credlens/credlens/pkg/factcheck"
	"github.com/credlens/credlens/pkg/topics"
	"github.com/credlens/credlens/pkg/verify"
)

// Server provides the HTTP API.
type Server struct {
	store     store.Store
	engine    *verify.Engine
	checker   factcheck.Searcher
	providers []topics.Provider
	port      int
	origins   []string
}

// New creates a new HTTP server. checker may be nil when fact checking is
// disabled.
func New(s store.Store, engine *verify.Engine, checker factcheck.Searcher, providers []topics.Provider, port int, origins []string) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		store:     s,
		engine:    engine,
		checker:   checker,
		providers: providers,
		port:      port,
		origins:   origins,
	}
}

// Handler builds the route table. Exposed separately so tests can drive it
// through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/v1/verify", s.handleVerify)
	mux.HandleFunc("GET /api/v1/recent", s.handleRecent)
	mux.HandleFunc("GET /api/v1/articles/{id}", s.handleArticle)
	mux.HandleFunc("POST /api/v1/report", s.handleReport)
	mux.HandleFunc("GET /api/v1/topics", s.handleTopics)
	mux.HandleFunc("GET /api/v1/stats", s.handleStats)
	return s.cors(mux)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	fmt.Printf("credlens server listening on %s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, o := range s.origins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	database := "ok"
	if _, err := s.store.CountVerificationsByLabel(r.Context()); err != nil {
		database = "error"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"service":  "credlens",
		"database": database,
	})
}

type verifyRequest struct {
	Input    string `json:"input"`
	Language string `json:"language"`
}

type verifyResponse struct {
	Label       string          `json:"label"`
	Score       int             `json:"score"`
	Confidence  float64         `json:"confidence"`
	Explanation []string        `json:"explanation"`
	Features    verify.Features `json:"features"`
	Insights    verify.Insights `json:"insights"`
	ArticleID   *int64          `json:"article_id,omitempty"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	input := strings.TrimSpace(req.Input)
	if input == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "input is required"})
		return
	}

	ctx := r.Context()
	var title, text, articleURL, source string
	if extract.LooksLikeURL(input) {
		article, err := extract.FromURL(input, 12*time.Second)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": fmt.Sprintf("could not extract article: %v", err)})
			return
		}
		title = article.Title
		text = article.Text
		articleURL = article.URL
		source = article.Source
	} else {
		text = input
		title = headlineOf(input)
	}

	scoreText := text
	if title != "" {
		scoreText = title + ". " + text
	}

	result := s.engine.Score(ctx, scoreText, req.Language)
	explanation := verify.Explain(result)

	// Fact-check lookup is best effort. A provider outage never fails the
	// request.
	if s.checker != nil {
		query := title
		if query == "" {
			query = headlineOf(text)
		}
		if claims, err := s.checker.Search(ctx, query, req.Language); err == nil && len(claims) > 0 {
			verdict, summary := verify.SummarizeClaims(claims)
			explanation = verify.MergeVerdict(result, explanation, verdict, summary)
		}
	}

	resp := verifyResponse{
		Label:       string(result.Label),
		Score:       result.Score,
		Confidence:  result.Confidence,
		Explanation: explanation,
		Features:    result.Features,
		Insights:    result.Insights,
	}

	// Persistence is best effort too. On failure the response carries a note
	// instead of an error status.
	article := &store.Article{Title: title, Text: text, URL: articleURL, Source: source}
	if err := s.store.SaveArticle(ctx, article); err != nil {
		resp.Explanation = append(resp.Explanation, fmt.Sprintf("(Note: DB save skipped: %v)", err))
	} else {
		resp.ArticleID = &article.ID
		if err := s.store.SaveVerification(ctx, &store.Verification{
			ArticleID:   &article.ID,
			Score:       result.Score,
			Label:       string(result.Label),
			Confidence:  result.Confidence,
			Explanation: explanation,
			Features:    result.Features,
			Insights:    result.Insights,
		}); err != nil {
			resp.Explanation = append(resp.Explanation, fmt.Sprintf("(Note: DB save skipped: %v)", err))
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	verifications, err := s.store.ListRecentVerifications(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  verifications,
		"count": len(verifications),
	})
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid article id"})
		return
	}

	article, err := s.store.GetArticle(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "article not found"})
		return
	}

	verifications, err := s.store.ListVerificationsByArticle(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"article":       article,
		"verifications": verifications,
	})
}

type reportRequest struct {
	URLOrText string `json:"url_or_text"`
	Note      string `json:"note"`
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.URLOrText) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url_or_text is required"})
		return
	}

	report := &store.Report{
		URLOrText: strings.TrimSpace(req.URLOrText),
		Note:      strings.TrimSpace(req.Note),
	}
	if err := s.store.SaveReport(r.Context(), report); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, report)
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	headlines := topics.Collect(ctx, s.providers)
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  headlines,
		"count": len(headlines),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CountVerificationsByLabel(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total":    total,
		"by_label": counts,
	})
}

// headlineOf derives a short title from raw text.
func headlineOf(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexAny(text, "\n"); idx > 0 {
		text = text[:idx]
	}
	runes := []rune(text)
	if len(runes) > 120 {
		return string(runes[:120])
	}
	return text
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
