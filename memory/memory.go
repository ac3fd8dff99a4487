// Package memory provides an in-process cpm.Store. Data lives as long as the Store value.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/meikuraledutech/cpm"
)

// Store implements cpm.Store in memory. It is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	projects map[string]*cpm.Project
	order    []string
	now      func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		projects: make(map[string]*cpm.Project),
		now:      time.Now,
	}
}

// CreateSchema is a no-op.
func (s *Store) CreateSchema(ctx context.Context) error { return nil }

// DropSchema discards every project.
func (s *Store) DropSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = make(map[string]*cpm.Project)
	s.order = nil
	return nil
}

// CreateProject stores p, replacing any project with the same ID.
// A project without an ID gets an auto-generated UUID.
func (s *Store) CreateProject(ctx context.Context, p *cpm.Project) (*cpm.Project, error) {
	if err := cpm.ValidateActivities(p.Activities); err != nil {
		return nil, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	for i := range p.Activities {
		a := &p.Activities[i]
		a.Name = strings.TrimSpace(a.Name)
		a.Predecessors = cpm.ParsePredecessors(a.PredecessorText)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.projects[p.ID]; ok {
		p.CreatedAt = old.CreatedAt
	} else {
		p.CreatedAt = s.now().UTC()
		s.order = append(s.order, p.ID)
	}
	s.projects[p.ID] = clone(p)
	return p, nil
}

// GetProject returns nil, nil if the project doesn't exist.
func (s *Store) GetProject(ctx context.Context, projectID string) (*cpm.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[projectID]
	if !ok {
		return nil, nil
	}
	return clone(p), nil
}

// ListProjects returns project headers in creation order.
func (s *Store) ListProjects(ctx context.Context) ([]cpm.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]cpm.Project, 0, len(s.order))
	for _, id := range s.order {
		p := s.projects[id]
		out = append(out, cpm.Project{ID: p.ID, Name: p.Name, CreatedAt: p.CreatedAt})
	}
	return out, nil
}

// DeleteProject removes a project. No error if it doesn't exist.
func (s *Store) DeleteProject(ctx context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[projectID]; !ok {
		return nil
	}
	delete(s.projects, projectID)
	s.order = slices.DeleteFunc(s.order, func(id string) bool { return id == projectID })
	return nil
}

// AddActivity appends a to the project after re-validating the whole list.
func (s *Store) AddActivity(ctx context.Context, projectID string, a *cpm.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[projectID]
	if !ok {
		return cpm.ErrProjectNotFound
	}
	a.Name = strings.TrimSpace(a.Name)
	a.Predecessors = cpm.ParsePredecessors(a.PredecessorText)

	next := append(slices.Clone(p.Activities), *a)
	if err := cpm.ValidateActivities(next); err != nil {
		return err
	}
	p.Activities = next
	return nil
}

// ListActivities returns an empty slice (not nil) for an unknown project.
func (s *Store) ListActivities(ctx context.Context, projectID string) ([]cpm.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[projectID]
	if !ok {
		return []cpm.Activity{}, nil
	}
	return cloneActivities(p.Activities), nil
}

func clone(p *cpm.Project) *cpm.Project {
	c := *p
	c.Activities = cloneActivities(p.Activities)
	return &c
}

func cloneActivities(in []cpm.Activity) []cpm.Activity {
	out := make([]cpm.Activity, len(in))
	for i, a := range in {
		a.Predecessors = slices.Clone(a.Predecessors)
		out[i] = a
	}
	return out
}
