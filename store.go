package cpm

import (
	"context"
	"errors"
)

var (
	ErrValidation            = errors.New("cpm: invalid activity")
	ErrDuplicateActivity     = errors.New("cpm: duplicate activity name")
	ErrCycleDetected         = errors.New("cpm: cycle detected, graph is not acyclic")
	ErrUnresolvedPredecessor = errors.New("cpm: unresolved predecessor")
	ErrPathLimit             = errors.New("cpm: path enumeration limit exceeded")
	ErrProjectNotFound       = errors.New("cpm: project not found")
)

// Store defines the contract for persisting and retrieving projects.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// Projects (bulk operations)
	CreateProject(ctx context.Context, p *Project) (*Project, error)
	GetProject(ctx context.Context, projectID string) (*Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	DeleteProject(ctx context.Context, projectID string) error

	// Activities
	AddActivity(ctx context.Context, projectID string, a *Activity) error
	ListActivities(ctx context.Context, projectID string) ([]Activity, error)
}
