package sqlite

const schema = `
-- Saved preference profiles, one per completed conversation
CREATE TABLE IF NOT EXISTS profiles (
    session_id TEXT PRIMARY KEY,
    started_at TEXT NOT NULL,
    completed_at TEXT NOT NULL,
    taxonomy_version TEXT NOT NULL DEFAULT '',
    field_count INTEGER NOT NULL DEFAULT 0,
    topics_explored INTEGER NOT NULL DEFAULT 0,
    topics_total INTEGER NOT NULL DEFAULT 0,
    priorities TEXT NOT NULL DEFAULT '[]',
    summary TEXT NOT NULL DEFAULT '{}',
    progress TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_profiles_completed_at ON profiles(completed_at);

-- Conversation audit events
CREATE TABLE IF NOT EXISTS conversation_events (
    id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    session_id TEXT NOT NULL,
    topic_id TEXT NOT NULL DEFAULT '',
    severity TEXT NOT NULL CHECK(severity IN ('info', 'warning', 'error')),
    message TEXT NOT NULL DEFAULT '',
    data TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_conversation_events_session ON conversation_events(session_id);
CREATE INDEX IF NOT EXISTS idx_conversation_events_timestamp ON conversation_events(timestamp);
CREATE INDEX IF NOT EXISTS idx_conversation_events_type ON conversation_events(type);
`
