package store

import "context"

// sessionSchema mirrors the session tables from the migration so a running
// deployment can repair a partially provisioned database without downtime.
// Statements are idempotent and safe to re-run.
var sessionSchema = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`CREATE TABLE IF NOT EXISTS training_sessions (
		id               UUID PRIMARY KEY,
		member_id        UUID NOT NULL REFERENCES members(id),
		trainer_id       UUID NOT NULL REFERENCES trainers(id),
		type             TEXT NOT NULL CHECK (type IN
		                 ('personal','group','class','assessment','consultation','rehabilitation')),
		title            TEXT NOT NULL,
		scheduled_at     TIMESTAMPTZ NOT NULL,
		duration_minutes INT NOT NULL CHECK (duration_minutes > 0),
		status           TEXT NOT NULL DEFAULT 'scheduled' CHECK (status IN
		                 ('scheduled','confirmed','in_progress','completed','cancelled','no_show','rescheduled')),
		room             TEXT NOT NULL DEFAULT '',
		equipment        TEXT[] NOT NULL DEFAULT '{}',
		goals            TEXT NOT NULL DEFAULT '',
		cost             NUMERIC(10,2) NOT NULL DEFAULT 0,
		member_rating    INT CHECK (member_rating BETWEEN 1 AND 5),
		trainer_rating   INT CHECK (trainer_rating BETWEEN 1 AND 5),
		actual_start     TIMESTAMPTZ,
		actual_end       TIMESTAMPTZ,
		notes            TEXT NOT NULL DEFAULT '',
		recurrence       TEXT NOT NULL DEFAULT '',
		span             TSTZRANGE GENERATED ALWAYS AS
		                 (tstzrange(scheduled_at, scheduled_at + make_interval(mins => duration_minutes), '[)')) STORED,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT training_sessions_no_overlap EXCLUDE USING gist
		    (trainer_id WITH =, span WITH &&) WHERE (status <> 'cancelled')
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_scheduled_at ON training_sessions (scheduled_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_trainer ON training_sessions (trainer_id, scheduled_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_member ON training_sessions (member_id, scheduled_at)`,
	`CREATE TABLE IF NOT EXISTS session_comments (
		id                UUID PRIMARY KEY,
		session_id        UUID NOT NULL REFERENCES training_sessions(id) ON DELETE CASCADE,
		author_id         UUID NOT NULL REFERENCES users(id),
		type              TEXT NOT NULL DEFAULT 'note' CHECK (type IN
		                  ('note','progress','issue','goal','equipment','feedback','reminder')),
		visible_to_member BOOLEAN NOT NULL DEFAULT FALSE,
		body              TEXT NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_session ON session_comments (session_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS session_conflicts (
		id           UUID PRIMARY KEY,
		trainer_id   UUID NOT NULL,
		scheduled_at TIMESTAMPTZ NOT NULL,
		duration_minutes INT NOT NULL,
		kind         TEXT NOT NULL,
		details      TEXT NOT NULL DEFAULT '',
		resolved     BOOLEAN NOT NULL DEFAULT FALSE,
		resolved_by  UUID,
		resolved_at  TIMESTAMPTZ,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSessionSchema creates the session tables if they are missing.
func (s *Store) EnsureSessionSchema(ctx context.Context) error {
	for _, stmt := range sessionSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
