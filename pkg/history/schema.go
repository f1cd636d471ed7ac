package history

// schemaVersion is the current database schema version.
const schemaVersion = 1

// schema contains the SQL statements to create the history database schema.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP NOT NULL,
    prefix TEXT NOT NULL,
    dry_run BOOLEAN NOT NULL,

    -- Summary counts
    created INTEGER NOT NULL,
    updated INTEGER NOT NULL,
    skipped INTEGER NOT NULL,
    failed INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_results (
    run_id TEXT NOT NULL REFERENCES runs(id),
    position INTEGER NOT NULL,
    sequence TEXT NOT NULL,
    template_file TEXT NOT NULL,
    display_name TEXT,
    match_name TEXT,
    action TEXT NOT NULL,
    policy_id TEXT,
    error TEXT,

    PRIMARY KEY (run_id, position)
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

const insertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

const getSchemaVersion = `SELECT MAX(version) FROM schema_version`
