package store

// schema is portable between SQLite and PostgreSQL. Each entry is executed
// separately so drivers without multi-statement support work too.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
    conversation_id      TEXT NOT NULL,
    timestamp_ms         BIGINT NOT NULL,
    message_id           TEXT NOT NULL DEFAULT '',
    student_id           BIGINT NOT NULL DEFAULT 0,
    module_id            BIGINT NOT NULL,
    question             TEXT NOT NULL DEFAULT '',
    response             TEXT NOT NULL DEFAULT '',
    model_used           TEXT NOT NULL DEFAULT '',
    provider             TEXT NOT NULL DEFAULT '',
    token_count          BIGINT,
    response_time_ms     BIGINT,
    has_file             BOOLEAN NOT NULL DEFAULT FALSE,
    file_name            TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (conversation_id, timestamp_ms, message_id)
)`,
	`CREATE INDEX IF NOT EXISTS idx_events_module_ts ON events(module_id, timestamp_ms)`,
	`CREATE INDEX IF NOT EXISTS idx_events_ts ON events(timestamp_ms)`,

	`CREATE TABLE IF NOT EXISTS courses (
    id                   BIGINT PRIMARY KEY,
    university_id        BIGINT NOT NULL,
    name                 TEXT NOT NULL DEFAULT ''
)`,
	`CREATE TABLE IF NOT EXISTS modules (
    id                   BIGINT PRIMARY KEY,
    course_id            BIGINT NOT NULL,
    name                 TEXT NOT NULL DEFAULT ''
)`,
	`CREATE TABLE IF NOT EXISTS professor_courses (
    professor_id         BIGINT NOT NULL,
    course_id            BIGINT NOT NULL,
    PRIMARY KEY (professor_id, course_id)
)`,
	`CREATE TABLE IF NOT EXISTS model_pricing (
    model_name           TEXT PRIMARY KEY,
    provider             TEXT NOT NULL DEFAULT '',
    input_cost_per_mtok  DOUBLE PRECISION NOT NULL,
    output_cost_per_mtok DOUBLE PRECISION NOT NULL,
    active               BOOLEAN NOT NULL DEFAULT TRUE
)`,
	`CREATE TABLE IF NOT EXISTS transcriptions (
    module_id            BIGINT NOT NULL,
    completed_at_ms      BIGINT NOT NULL,
    cost_usd             DOUBLE PRECISION NOT NULL,
    duration_seconds     DOUBLE PRECISION NOT NULL DEFAULT 0,
    status               TEXT NOT NULL DEFAULT 'completed',
    PRIMARY KEY (module_id, completed_at_ms)
)`,
	`CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             BIGINT NOT NULL,
    size_bytes           BIGINT NOT NULL
)`,
}
