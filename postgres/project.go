package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/meikuraledutech/cpm"
)

// CreateProject saves a full project (header + activities) in one transaction.
// A project without an ID gets an auto-generated UUID. An existing project
// with the same ID is replaced. Activities are validated first; a duplicate
// name or a dependency cycle aborts before anything is written.
func (s *PGStore) CreateProject(ctx context.Context, p *cpm.Project) (*cpm.Project, error) {
	if err := cpm.ValidateActivities(p.Activities); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cpm: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Replace semantics: upsert the header, then rewrite the activities.
	if err := tx.QueryRow(ctx,
		`INSERT INTO cpm_projects (id, name) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		 RETURNING created_at`,
		p.ID, p.Name,
	).Scan(&p.CreatedAt); err != nil {
		return nil, fmt.Errorf("cpm: upsert project: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cpm_activities WHERE project_id = $1`, p.ID); err != nil {
		return nil, fmt.Errorf("cpm: delete activities: %w", err)
	}

	for i := range p.Activities {
		a := &p.Activities[i]
		a.Name = strings.TrimSpace(a.Name)
		if err := insertActivity(ctx, tx, p.ID, i, a); err != nil {
			return nil, err
		}
		a.Predecessors = cpm.ParsePredecessors(a.PredecessorText)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("cpm: commit: %w", err)
	}
	return p, nil
}

// GetProject retrieves a project with its activities.
// Returns nil, nil if the project doesn't exist.
func (s *PGStore) GetProject(ctx context.Context, projectID string) (*cpm.Project, error) {
	p := &cpm.Project{ID: projectID}
	err := s.db.QueryRow(ctx,
		`SELECT name, created_at FROM cpm_projects WHERE id = $1`, projectID,
	).Scan(&p.Name, &p.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("cpm: get project: %w", err)
	}

	p.Activities, err = listActivities(ctx, s.db, projectID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns every project header, oldest first. Activities are not loaded.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListProjects(ctx context.Context) ([]cpm.Project, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, created_at FROM cpm_projects ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("cpm: list projects: %w", err)
	}
	defer rows.Close()

	projects := []cpm.Project{}
	for rows.Next() {
		var p cpm.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("cpm: scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cpm: rows projects: %w", err)
	}
	return projects, nil
}

// DeleteProject removes a project; its activities are cascade-deleted by the DB.
// No error if the project doesn't exist.
func (s *PGStore) DeleteProject(ctx context.Context, projectID string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM cpm_projects WHERE id = $1`, projectID); err != nil {
		return fmt.Errorf("cpm: delete project: %w", err)
	}
	return nil
}
