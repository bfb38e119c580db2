package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/credlens/credlens/internal/store"
	"github.com/credlens/credlens/pkg/factcheck"
	"github.com/credlens/credlens/pkg/language"
	"github.com/credlens/credlens/pkg/verify"
)

type stubChecker struct {
	claims []factcheck.Claim
	err    error
}

func (s *stubChecker) Search(ctx context.Context, query, lang string) ([]factcheck.Claim, error) {
	return s.claims, s.err
}

func newTestServer(t *testing.T, checker factcheck.Searcher) (*Server, store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	engine := verify.NewEngine(func() language.Provider { return nil })
	return New(st, engine, checker, nil, 8080, []string{"http://localhost:3000"}), st
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want ok", body["status"])
	}
	if body["database"] != "ok" {
		t.Errorf("database = %q, want ok", body["database"])
	}
}

func TestVerifyPlainText(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	body := strings.NewReader(`{"input": "The council approved the annual budget on Tuesday."}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/verify", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp verifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Label != "uncertain" || resp.Score != 50 {
		t.Errorf("label/score = %s/%d, want uncertain/50", resp.Label, resp.Score)
	}
	if resp.Confidence != 0.3 {
		t.Errorf("confidence = %v, want 0.3", resp.Confidence)
	}
	if len(resp.Explanation) == 0 {
		t.Error("explanation should not be empty")
	}
	if resp.ArticleID == nil {
		t.Error("article should have been persisted")
	}
}

func TestVerifyEmptyInput(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/verify", strings.NewReader(`{"input": "   "}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestVerifyFactCheckOverride(t *testing.T) {
	checker := &stubChecker{claims: []factcheck.Claim{
		{
			Text: "claim under test",
			Reviews: []factcheck.ClaimReview{
				{Publisher: "Checker", Title: "Debunked", TextualRating: "Pants on Fire", URL: "https://example.com/fc"},
			},
		},
	}}

	srv, _ := newTestServer(t, checker)
	body := strings.NewReader(`{"input": "The mayor banned all bicycles from the city center."}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/verify", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp verifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Label != "fake" || resp.Score != 15 || resp.Confidence != 0.9 {
		t.Errorf("got %s/%d/%v, want fake/15/0.9", resp.Label, resp.Score, resp.Confidence)
	}
	if !strings.HasPrefix(resp.Explanation[0], "Fact Check verdict: fake") {
		t.Errorf("first line = %q, want fact check verdict", resp.Explanation[0])
	}
}

func TestVerifyFactCheckFailureIgnored(t *testing.T) {
	checker := &stubChecker{err: context.DeadlineExceeded}
	srv, _ := newTestServer(t, checker)
	body := strings.NewReader(`{"input": "An ordinary statement about the weather."}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/verify", body))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp verifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Label != "uncertain" {
		t.Errorf("label = %s, want uncertain", resp.Label)
	}
}

func TestRecentAfterVerify(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	handler := srv.Handler()

	for _, input := range []string{"first statement to score", "second statement to score"} {
		rec := httptest.NewRecorder()
		body := strings.NewReader(`{"input": "` + input + `"}`)
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/verify", body))
		if rec.Code != http.StatusOK {
			t.Fatalf("verify status = %d", rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recent?limit=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("recent status = %d", rec.Code)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}
}

func TestArticleByID(t *testing.T) {
	srv, st := newTestServer(t, nil)
	handler := srv.Handler()

	article := &store.Article{Title: "Stored headline", Text: "Stored body"}
	if err := st.SaveArticle(context.Background(), article); err != nil {
		t.Fatalf("save article: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/articles/1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/articles/999", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing article status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/articles/abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id status = %d, want 400", rec.Code)
	}
}

func TestReport(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	body := strings.NewReader(`{"url_or_text": "https://example.com/dubious", "note": "looks fabricated"}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/report", body))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var report store.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Status != "new" {
		t.Errorf("status = %q, want new", report.Status)
	}
	if report.ID == 0 {
		t.Error("report should have an id")
	}
}

func TestStats(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	handler := srv.Handler()

	rec := httptest.NewRecorder()
	body := strings.NewReader(`{"input": "A statement that will land as uncertain."}`)
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/verify", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}
	var resp struct {
		Total   int            `json:"total"`
		ByLabel map[string]int `json:"by_label"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 1 || resp.ByLabel["uncertain"] != 1 {
		t.Errorf("total = %d byLabel = %v, want 1 uncertain", resp.Total, resp.ByLabel)
	}
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	handler := srv.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/verify", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow-origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got header %q", got)
	}
}
