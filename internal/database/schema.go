package database

// schema contains all table definitions. Each statement is idempotent (CREATE IF NOT EXISTS).
const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
    id            TEXT    PRIMARY KEY,
    base_name     TEXT    NOT NULL UNIQUE,
    vendor        TEXT    NOT NULL,
    tunnel_name   TEXT    NOT NULL,
    file_path     TEXT    NOT NULL,
    metadata_path TEXT    NOT NULL,
    encrypted     INTEGER NOT NULL DEFAULT 0,
    created_at    INTEGER NOT NULL DEFAULT (strftime('%s','now')),
    updated_at    INTEGER NOT NULL DEFAULT (strftime('%s','now'))
);
CREATE INDEX IF NOT EXISTS idx_artifacts_vendor
    ON artifacts (vendor, tunnel_name);

CREATE TABLE IF NOT EXISTS artifact_saves (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    artifact_id TEXT    NOT NULL REFERENCES artifacts(id) ON DELETE CASCADE,
    saved_at    INTEGER NOT NULL,
    encrypted   INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_artifact_saves_artifact_ts
    ON artifact_saves (artifact_id, saved_at);
`
