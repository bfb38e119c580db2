package store

const schema = `
CREATE TABLE IF NOT EXISTS articles (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    title      TEXT NOT NULL DEFAULT '',
    text       TEXT NOT NULL,
    url        TEXT NOT NULL DEFAULT '',
    source     TEXT NOT NULL DEFAULT '',
    created_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_articles_created_at ON articles(created_at);

CREATE TABLE IF NOT EXISTS verifications (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    article_id  INTEGER REFERENCES articles(id),
    score       INTEGER NOT NULL,
    label       TEXT NOT NULL,
    confidence  REAL NOT NULL,
    explanation TEXT NOT NULL DEFAULT '[]',
    features    TEXT NOT NULL DEFAULT '{}',
    insights    TEXT NOT NULL DEFAULT '{}',
    created_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_verifications_article ON verifications(article_id);
CREATE INDEX IF NOT EXISTS idx_verifications_created_at ON verifications(created_at);
CREATE INDEX IF NOT EXISTS idx_verifications_label ON verifications(label);

CREATE TABLE IF NOT EXISTS reports (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    url_or_text TEXT NOT NULL,
    note        TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT 'new',
    created_at  DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);
`
