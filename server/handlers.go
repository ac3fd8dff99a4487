package server

import (
	"github.com/gofiber/fiber/v3"

	"github.com/meikuraledutech/cpm"
)

type createProjectRequest struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Activities []cpm.Input `json:"activities"`
}

type analyzeRequest struct {
	Activities []cpm.Input `json:"activities"`
}

type projectResponse struct {
	Project *cpm.Project `json:"project"`
	Result  *cpm.Result  `json:"result"`
}

type activityResponse struct {
	Activity cpm.Activity `json:"activity"`
	Result   *cpm.Result  `json:"result"`
}

func (s *Server) createSchema(c fiber.Ctx) error {
	if err := s.store.CreateSchema(c.Context()); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "schema created"})
}

func (s *Server) dropSchema(c fiber.Ctx) error {
	if err := s.store.DropSchema(c.Context()); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "schema dropped"})
}

func (s *Server) analyze(c fiber.Ctx) error {
	var req analyzeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	r, err := cpm.Evaluate(req.Activities, s.opts)
	s.record(s.log, r, err)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(r)
}

func (s *Server) createProject(c fiber.Ctx) error {
	var req createProjectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	activities, err := cpm.ParseInputs(req.Activities)
	if err != nil {
		return s.fail(c, err)
	}
	r, err := cpm.Compute(activities, s.opts)
	s.record(s.log, r, err)
	if err != nil {
		return s.fail(c, err)
	}

	p, err := s.store.CreateProject(c.Context(), &cpm.Project{ID: req.ID, Name: req.Name, Activities: activities})
	if err != nil {
		return s.fail(c, err)
	}

	log := s.log.WithProject(p.ID)
	log.Info("project created", "activities", len(p.Activities))
	s.publish(c.Context(), log, p.ID, r)
	return c.Status(fiber.StatusCreated).JSON(projectResponse{Project: p, Result: r})
}

func (s *Server) listProjects(c fiber.Ctx) error {
	projects, err := s.store.ListProjects(c.Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(projects)
}

func (s *Server) getProject(c fiber.Ctx) error {
	p, err := s.store.GetProject(c.Context(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
	}
	return c.JSON(p)
}

func (s *Server) deleteProject(c fiber.Ctx) error {
	if err := s.store.DeleteProject(c.Context(), c.Params("id")); err != nil {
		return s.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// addActivity replays the stored registry, applies the new activity and only
// persists it when the recomputation succeeds.
func (s *Server) addActivity(c fiber.Ctx) error {
	var in cpm.Input
	if err := c.Bind().JSON(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	id := c.Params("id")
	log := s.log.WithProject(id)

	p, err := s.store.GetProject(c.Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
	}

	w, err := cpm.LoadWorkspace(p.Activities, s.opts)
	if err != nil {
		return s.fail(c, err)
	}
	a, err := w.Add(in)
	s.record(log, w.Result(), err)
	if err != nil {
		return s.fail(c, err)
	}

	if err := s.store.AddActivity(c.Context(), id, &a); err != nil {
		return s.fail(c, err)
	}

	log.Info("activity added", "activity", a.Name, "activities", w.Len())
	s.publish(c.Context(), log, id, w.Result())
	return c.Status(fiber.StatusCreated).JSON(activityResponse{Activity: a, Result: w.Result()})
}

func (s *Server) listActivities(c fiber.Ctx) error {
	p, err := s.store.GetProject(c.Context(), c.Params("id"))
	if err != nil {
		return s.fail(c, err)
	}
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
	}
	return c.JSON(p.Activities)
}

// load computes the current result of a stored project. It returns a nil
// result after writing the error response.
func (s *Server) load(c fiber.Ctx) (*cpm.Result, error) {
	p, err := s.store.GetProject(c.Context(), c.Params("id"))
	if err != nil {
		return nil, s.fail(c, err)
	}
	if p == nil {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "project not found"})
	}
	r, err := cpm.Compute(p.Activities, s.opts)
	s.record(s.log.WithProject(p.ID), r, err)
	if err != nil {
		return nil, s.fail(c, err)
	}
	return r, nil
}

func (s *Server) schedule(c fiber.Ctx) error {
	r, err := s.load(c)
	if r == nil {
		return err
	}
	return c.JSON(fiber.Map{
		"activities": r.Activities,
		"unresolved": r.Unresolved,
		"finish_day": r.Finish,
		"max_days":   r.MaxDays,
	})
}

func (s *Server) criticalPath(c fiber.Ctx) error {
	r, err := s.load(c)
	if r == nil {
		return err
	}
	return c.JSON(fiber.Map{
		"analysis":            r.Analysis,
		"critical_activities": r.Analysis.CriticalActivities(),
	})
}
