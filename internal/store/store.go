package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/credlens/credlens/pkg/verify"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Article is a piece of text submitted for verification.
type Article struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Text      string    `db:"text" json:"text"`
	URL       string    `db:"url" json:"url,omitempty"`
	Source    string    `db:"source" json:"source,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Verification is one scoring result for an article.
type Verification struct {
	ID         int64   `db:"id" json:"id"`
	ArticleID  *int64  `db:"article_id" json:"article_id,omitempty"`
	Score      int     `db:"score" json:"score"`
	Label      string  `db:"label" json:"label"`
	Confidence float64 `db:"confidence" json:"confidence"`

	Explanation []string        `db:"-" json:"explanation"`
	Features    verify.Features `db:"-" json:"features"`
	Insights    verify.Insights `db:"-" json:"insights"`

	ExplanationJSON string `db:"explanation" json:"-"`
	FeaturesJSON    string `db:"features" json:"-"`
	InsightsJSON    string `db:"insights" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Report is a user-submitted flag on suspicious content.
type Report struct {
	ID        int64     `db:"id" json:"id"`
	URLOrText string    `db:"url_or_text" json:"url_or_text"`
	Note      string    `db:"note" json:"note,omitempty"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Store is the persistence interface.
type Store interface {
	SaveArticle(ctx context.Context, a *Article) error
	GetArticle(ctx context.Context, id int64) (*Article, error)

	SaveVerification(ctx context.Context, v *Verification) error
	ListRecentVerifications(ctx context.Context, limit int) ([]Verification, error)
	ListVerificationsByArticle(ctx context.Context, articleID int64) ([]Verification, error)
	CountVerificationsByLabel(ctx context.Context) (map[string]int, error)

	SaveReport(ctx context.Context, r *Report) error

	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// New opens a SQLite database and runs migrations.
func New(path string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveArticle(ctx context.Context, a *Article) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO articles (title, text, url, source, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, a.Title, a.Text, a.URL, a.Source, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("save article: %w", err)
	}
	a.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) GetArticle(ctx context.Context, id int64) (*Article, error) {
	var a Article
	err := s.db.GetContext(ctx, &a, "SELECT * FROM articles WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	return &a, nil
}

func (s *SQLiteStore) SaveVerification(ctx context.Context, v *Verification) error {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	explanationJSON, _ := json.Marshal(v.Explanation)
	featuresJSON, _ := json.Marshal(v.Features)
	insightsJSON, _ := json.Marshal(v.Insights)

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO verifications (article_id, score, label, confidence, explanation, features, insights, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, v.ArticleID, v.Score, v.Label, v.Confidence,
		string(explanationJSON), string(featuresJSON), string(insightsJSON), v.CreatedAt)
	if err != nil {
		return fmt.Errorf("save verification: %w", err)
	}
	v.ID, _ = res.LastInsertId()
	return nil
}

func (s *SQLiteStore) ListRecentVerifications(ctx context.Context, limit int) ([]Verification, error) {
	if limit <= 0 {
		limit = 20
	}

	var verifications []Verification
	err := s.db.SelectContext(ctx, &verifications,
		"SELECT * FROM verifications ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("list recent verifications: %w", err)
	}

	for i := range verifications {
		unmarshalVerification(&verifications[i])
	}
	return verifications, nil
}

func (s *SQLiteStore) ListVerificationsByArticle(ctx context.Context, articleID int64) ([]Verification, error) {
	var verifications []Verification
	err := s.db.SelectContext(ctx, &verifications,
		"SELECT * FROM verifications WHERE article_id = ? ORDER BY created_at DESC", articleID)
	if err != nil {
		return nil, fmt.Errorf("list verifications for article %d: %w", articleID, err)
	}

	for i := range verifications {
		unmarshalVerification(&verifications[i])
	}
	return verifications, nil
}

func (s *SQLiteStore) CountVerificationsByLabel(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryxContext(ctx, "SELECT label, COUNT(*) as cnt FROM verifications GROUP BY label")
	if err != nil {
		return nil, fmt.Errorf("count verifications by label: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var cnt int
		if err := rows.Scan(&label, &cnt); err != nil {
			return nil, err
		}
		counts[label] = cnt
	}
	return counts, nil
}

func (s *SQLiteStore) SaveReport(ctx context.Context, r *Report) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.Status == "" {
		r.Status = "new"
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO reports (url_or_text, note, status, created_at)
		VALUES (?, ?, ?, ?)
	`, r.URLOrText, r.Note, r.Status, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	r.ID, _ = res.LastInsertId()
	return nil
}

func unmarshalVerification(v *Verification) {
	json.Unmarshal([]byte(v.ExplanationJSON), &v.Explanation)
	json.Unmarshal([]byte(v.FeaturesJSON), &v.Features)
	json.Unmarshal([]byte(v.InsightsJSON), &v.Insights)
}
