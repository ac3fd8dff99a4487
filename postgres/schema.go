package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS cpm_projects (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS cpm_activities (
    project_id       TEXT NOT NULL REFERENCES cpm_projects(id) ON DELETE CASCADE,
    name             TEXT NOT NULL,
    position         INT  NOT NULL,
    duration_days    INT  NOT NULL CHECK (duration_days > 0),
    predecessor_text TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (project_id, name),
    UNIQUE (project_id, position)
);

CREATE INDEX IF NOT EXISTS idx_cpm_activities_project ON cpm_activities(project_id, position);
`

// CreateSchema creates the cpm_projects and cpm_activities tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the cpm_activities and cpm_projects tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS cpm_activities, cpm_projects CASCADE;`)
	return err
}
