package actioncatalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/adaptiverag/internal/domain/actions"
	"github.com/0xcro3dile/adaptiverag/internal/domain/ports"
)

var _ ports.ActionCatalog = (*Catalog)(nil)

func TestDefault(t *testing.T) {
	acts := Default().Actions()
	require.Len(t, acts, 5)

	ids := make([]string, len(acts))
	for i, a := range acts {
		ids[i] = a.ID
	}
	assert.Equal(t, []string{
		"add_user_to_contract_type",
		"create_contract",
		"setup_workflow",
		"delete_contract",
		"manage_roles",
	}, ids)

	del := acts[3]
	assert.Equal(t, "Delete Contract", del.Name)
	assert.Equal(t, []string{"delete", "remove", "contract", "cancel", "terminate"}, del.Keywords)
	assert.Len(t, del.Patterns, 4)
	assert.Len(t, del.ExampleQueries, 3)
}

func TestDefault_DrivesMatcher(t *testing.T) {
	m := actions.NewMatcher(Default().Actions())

	det, ok := m.Match("delete contract")
	require.True(t, ok)
	assert.Equal(t, "delete_contract", det.ActionID)
	assert.Equal(t, actions.MethodPatternMatch, det.Method)

	_, ok = m.Match("what is the weather like")
	assert.False(t, ok)
}

func TestLoad_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
actions:
  - id: export_report
    name: Export Report
    description: Export a report as PDF
    keywords: [export, report]
    patterns: ["export.*report"]
    example_queries: ["export the monthly report"]
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	require.Len(t, c.Actions(), 1)
	assert.Equal(t, "export_report", c.Actions()[0].ID)
}

func TestLoad_EmptyPathIsBuiltin(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Len(t, c.Actions(), 5)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_Validation(t *testing.T) {
	_, err := Parse([]byte(`
actions:
  - id: a
    name: A
  - id: a
    name: Again
  - name: No id
  - id: b
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
	assert.Contains(t, err.Error(), "missing id")
	assert.Contains(t, err.Error(), "action b: missing name")

	_, err = Parse([]byte("actions: [unclosed"))
	assert.Error(t, err)
}
