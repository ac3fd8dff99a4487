package projectfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/cpm"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "launch.yaml", `
activities:
  - activity: A
    predecessor: none
    et: 4
  - activity: B
    et: "3"
  - activity: C
    predecessor: A, B
    et: 2
`)
	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "launch", f.Name)
	assert.Equal(t, []cpm.Input{
		{Activity: "A", Predecessor: "none", ET: "4"},
		{Activity: "B", ET: "3"},
		{Activity: "C", Predecessor: "A, B", ET: "2"},
	}, f.Activities)

	p, err := f.Project()
	require.NoError(t, err)
	require.Len(t, p.Activities, 3)
	assert.Equal(t, []string{"A", "B"}, p.Activities[2].Predecessors)
}

func TestLoadJSONObjectAndArray(t *testing.T) {
	obj := write(t, "p.json", `{"name":"named","activities":[{"activity":"A","et":5}]}`)
	f, err := Load(obj)
	require.NoError(t, err)
	assert.Equal(t, "named", f.Name)
	assert.Equal(t, []cpm.Input{{Activity: "A", ET: "5"}}, f.Activities)

	arr := write(t, "bare.JSON", `[{"activity":"A","predecessor":"","et":"1"}]`)
	f, err = Load(arr)
	require.NoError(t, err)
	assert.Equal(t, "bare", f.Name)
	assert.Len(t, f.Activities, 1)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(write(t, "bad.json", `{"activities":`))
	assert.Error(t, err)

	_, err = Parse([]byte("x"), Format("toml"))
	assert.Error(t, err)
}

func TestProjectReportsInvalidRow(t *testing.T) {
	f := &File{Activities: []cpm.Input{{Activity: "A", ET: "1"}, {Activity: "A", ET: "2"}}}
	_, err := f.Project()
	assert.ErrorIs(t, err, cpm.ErrDuplicateActivity)
	assert.Contains(t, err.Error(), "row 2")
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatJSON, FormatFor("x.json"))
	assert.Equal(t, FormatYAML, FormatFor("x.yml"))
	assert.Equal(t, FormatYAML, FormatFor("x"))
}
