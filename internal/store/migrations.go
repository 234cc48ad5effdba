package store

const schema = `
CREATE TABLE IF NOT EXISTS builds (
    id        TEXT PRIMARY KEY,
    built_at  INTEGER NOT NULL,
    trends    TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_builds_built_at ON builds(built_at);

CREATE TABLE IF NOT EXISTS alerted_trends (
    trend_id    TEXT PRIMARY KEY,
    alerted_at  INTEGER NOT NULL
);
`
