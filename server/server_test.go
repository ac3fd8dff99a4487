package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/cpm"
	"github.com/meikuraledutech/cpm/internal/events"
	"github.com/meikuraledutech/cpm/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ProjectAnalyzed
	err    error
}

func (p *recordingPublisher) PublishProjectAnalyzed(_ context.Context, ev events.ProjectAnalyzed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newTestServer(t *testing.T, opts cpm.Options) (*Server, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	fixed := time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)
	s := New(Config{
		Store:     memory.New(),
		Options:   opts,
		Publisher: pub,
		Now:       func() time.Time { return fixed },
	})
	return s, pub
}

func do(t *testing.T, s *Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

const launchBody = `{
	"name": "launch",
	"activities": [
		{"activity": "A", "predecessor": "none", "et": "5"},
		{"activity": "B", "predecessor": "A", "et": 3},
		{"activity": "C", "predecessor": "A", "et": "2"},
		{"activity": "D", "predecessor": "B, C", "et": "4"}
	]
}`

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t, cpm.DefaultOptions())
	status, body := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, cpm.DefaultOptions())
	do(t, s, http.MethodPost, "/analyze", `{"activities":[{"activity":"A","predecessor":"","et":"1"}]}`)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "cpm_analysis_total")
}

func TestAnalyze(t *testing.T) {
	s, _ := newTestServer(t, cpm.DefaultOptions())

	status, body := do(t, s, http.MethodPost, "/analyze", launchBody)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 12, body["finish_day"])
	assert.EqualValues(t, 20, body["max_days"])

	analysis := body["analysis"].(map[string]any)
	assert.EqualValues(t, 12, analysis["max_duration"])
	critical := analysis["critical_paths"].([]any)
	require.Len(t, critical, 1)
	assert.Equal(t, []any{"A", "B", "D"}, critical[0].(map[string]any)["path"])
}

func TestAnalyzeErrors(t *testing.T) {
	s, _ := newTestServer(t, cpm.DefaultOptions())

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed", `{"activities":`, http.StatusBadRequest},
		{"bad duration", `{"activities":[{"activity":"A","predecessor":"","et":"ten"}]}`, http.StatusBadRequest},
		{"empty name", `{"activities":[{"activity":"  ","predecessor":"","et":"1"}]}`, http.StatusBadRequest},
		{"duplicate", `{"activities":[{"activity":"A","et":"1"},{"activity":"A","et":"2"}]}`, http.StatusConflict},
		{"cycle", `{"activities":[{"activity":"A","predecessor":"B","et":"1"},{"activity":"B","predecessor":"A","et":"1"}]}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, s, http.MethodPost, "/analyze", tt.body)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAnalyzeCycleWitness(t *testing.T) {
	s, _ := newTestServer(t, cpm.DefaultOptions())
	status, body := do(t, s, http.MethodPost, "/analyze",
		`{"activities":[{"activity":"A","predecessor":"B","et":"1"},{"activity":"B","predecessor":"A","et":"1"}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, []any{"A", "B", "A"}, body["path"])
}

func TestAnalyzeRejectUnresolved(t *testing.T) {
	opts := cpm.DefaultOptions()
	opts.Unresolved = cpm.UnresolvedReject
	s, _ := newTestServer(t, opts)

	status, _ := do(t, s, http.MethodPost, "/analyze", `{"activities":[{"activity":"A","predecessor":"Ghost","et":"1"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
}

func TestAnalyzePathLimit(t *testing.T) {
	opts := cpm.DefaultOptions()
	opts.MaxPaths = 1
	s, _ := newTestServer(t, opts)

	status, _ := do(t, s, http.MethodPost, "/analyze", launchBody)
	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
}

func TestProjectLifecycle(t *testing.T) {
	s, pub := newTestServer(t, cpm.DefaultOptions())

	status, body := do(t, s, http.MethodPost, "/projects", launchBody)
	require.Equal(t, http.StatusCreated, status)
	project := body["project"].(map[string]any)
	id := project["id"].(string)
	require.NotEmpty(t, id)
	require.Len(t, pub.events, 1)
	assert.Equal(t, id, pub.events[0].ProjectID)
	assert.Equal(t, 12, pub.events[0].MaxDuration)

	status, body = do(t, s, http.MethodGet, "/projects/"+id, "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "launch", body["name"])
	assert.Len(t, body["activities"], 4)

	status, body = do(t, s, http.MethodPost, "/projects/"+id+"/activities",
		`{"activity":"E","predecessor":"D","et":"6"}`)
	require.Equal(t, http.StatusCreated, status)
	assert.EqualValues(t, 18, body["result"].(map[string]any)["finish_day"])
	require.Len(t, pub.events, 2)
	assert.Equal(t, 18, pub.events[1].FinishDay)

	status, body = do(t, s, http.MethodGet, "/projects/"+id+"/schedule", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 18, body["finish_day"])
	acts := body["activities"].([]any)
	require.Len(t, acts, 5)
	e := acts[4].(map[string]any)
	assert.Equal(t, "E", e["name"])
	assert.EqualValues(t, 12, e["start_day"])
	assert.EqualValues(t, 18, e["end_day"])

	status, body = do(t, s, http.MethodGet, "/projects/"+id+"/critical-path", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"A", "B", "D", "E"}, body["critical_activities"])

	status, _ = do(t, s, http.MethodDelete, "/projects/"+id, "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, s, http.MethodGet, "/projects/"+id, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAddActivityRejectsCycleAndKeepsProject(t *testing.T) {
	s, pub := newTestServer(t, cpm.DefaultOptions())

	_, body := do(t, s, http.MethodPost, "/projects", `{"name":"p","activities":[{"activity":"A","predecessor":"C","et":"1"},{"activity":"B","predecessor":"A","et":"1"}]}`)
	id := body["project"].(map[string]any)["id"].(string)

	status, body := do(t, s, http.MethodPost, "/projects/"+id+"/activities", `{"activity":"C","predecessor":"B","et":"1"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.NotEmpty(t, body["error"])
	assert.Len(t, pub.events, 1)

	_, body = do(t, s, http.MethodGet, "/projects/"+id, "")
	assert.Len(t, body["activities"], 2)

	status, _ = do(t, s, http.MethodPost, "/projects/"+id+"/activities", `{"activity":"A","predecessor":"","et":"1"}`)
	assert.Equal(t, http.StatusConflict, status)
}

func TestAddActivityUnknownProject(t *testing.T) {
	s, _ := newTestServer(t, cpm.DefaultOptions())
	status, _ := do(t, s, http.MethodPost, "/projects/missing/activities", `{"activity":"A","et":"1"}`)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = do(t, s, http.MethodGet, "/projects/missing/schedule", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	s, pub := newTestServer(t, cpm.DefaultOptions())
	pub.err = errors.New("broker down")

	status, _ := do(t, s, http.MethodPost, "/projects", launchBody)
	assert.Equal(t, http.StatusCreated, status)
}

func TestListProjects(t *testing.T) {
	s, _ := newTestServer(t, cpm.DefaultOptions())
	do(t, s, http.MethodPost, "/projects", `{"id":"one","name":"first","activities":[]}`)
	do(t, s, http.MethodPost, "/projects", `{"id":"two","name":"second","activities":[]}`)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/projects", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var projects []cpm.Project
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&projects))
	require.Len(t, projects, 2)
	assert.Equal(t, "one", projects[0].ID)
	assert.Equal(t, "second", projects[1].Name)
}

func TestSchema(t *testing.T) {
	s, _ := newTestServer(t, cpm.DefaultOptions())
	status, _ := do(t, s, http.MethodPost, "/schema", "")
	assert.Equal(t, http.StatusOK, status)
	status, _ = do(t, s, http.MethodDelete, "/schema", "")
	assert.Equal(t, http.StatusOK, status)
}
