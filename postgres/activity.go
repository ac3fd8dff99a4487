package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/cpm"
)

// AddActivity appends an activity to a project at the next position.
// The project row is locked while the existing activities are re-validated
// together with the new one, so a duplicate name or a cycle is rejected.
// Returns cpm.ErrProjectNotFound if the project doesn't exist.
func (s *PGStore) AddActivity(ctx context.Context, projectID string, a *cpm.Activity) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cpm: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `SELECT id FROM cpm_projects WHERE id = $1 FOR UPDATE`, projectID).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return cpm.ErrProjectNotFound
		}
		return fmt.Errorf("cpm: find project: %w", err)
	}

	existing, err := listActivities(ctx, tx, projectID)
	if err != nil {
		return err
	}
	a.Name = strings.TrimSpace(a.Name)
	if err := cpm.ValidateActivities(append(existing, *a)); err != nil {
		return err
	}

	if err := insertActivity(ctx, tx, projectID, len(existing), a); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("cpm: commit: %w", err)
	}
	a.Predecessors = cpm.ParsePredecessors(a.PredecessorText)
	return nil
}

// ListActivities returns all activities of a project in insertion order.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListActivities(ctx context.Context, projectID string) ([]cpm.Activity, error) {
	return listActivities(ctx, s.db, projectID)
}

func listActivities(ctx context.Context, q querier, projectID string) ([]cpm.Activity, error) {
	rows, err := q.Query(ctx,
		`SELECT name, duration_days, predecessor_text FROM cpm_activities
		 WHERE project_id = $1 ORDER BY position`, projectID)
	if err != nil {
		return nil, fmt.Errorf("cpm: list activities: %w", err)
	}
	defer rows.Close()

	activities := []cpm.Activity{}
	for rows.Next() {
		var a cpm.Activity
		if err := rows.Scan(&a.Name, &a.DurationDays, &a.PredecessorText); err != nil {
			return nil, fmt.Errorf("cpm: scan activity: %w", err)
		}
		a.Predecessors = cpm.ParsePredecessors(a.PredecessorText)
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cpm: rows activities: %w", err)
	}
	return activities, nil
}

func insertActivity(ctx context.Context, tx pgx.Tx, projectID string, position int, a *cpm.Activity) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO cpm_activities (project_id, name, position, duration_days, predecessor_text)
		 VALUES ($1, $2, $3, $4, $5)`,
		projectID, a.Name, position, a.DurationDays, a.PredecessorText,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %q", cpm.ErrDuplicateActivity, a.Name)
		}
		return fmt.Errorf("cpm: insert activity %s: %w", a.Name, err)
	}
	return nil
}

