package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPlan(t *testing.T) {
	t.Parallel()

	p, err := LoadPlan(writePlan(t, `
placements:
  - name: start
    at: {x: 0, y: 0}
  - name: gate1
    kind: mission_element
    geo: {lat: 27.3752, lon: -82.4520}
    offset: {x: 0.5, y: -0.5}
  - project: {lat: 27.374831, lon: -82.452441, bearing: 0, dist: 25}
`))
	require.NoError(t, err)
	require.Len(t, p.Placements, 3)

	assert.NotNil(t, p.Placements[0].At)
	assert.Equal(t, "mission_element", p.Placements[1].Kind)
	require.NotNil(t, p.Placements[1].Offset)
	assert.Equal(t, 0.5, p.Placements[1].Offset.East)
	require.NotNil(t, p.Placements[2].Project)
	assert.Equal(t, 25.0, p.Placements[2].Project.Dist)
}

func TestLoadPlan_RejectsAmbiguousPlacement(t *testing.T) {
	t.Parallel()

	_, err := LoadPlan(writePlan(t, `
placements:
  - at: {x: 0, y: 0}
    geo: {lat: 1, lon: 2}
`))
	assert.Error(t, err)

	_, err = LoadPlan(writePlan(t, "placements:\n  - name: empty\n"))
	assert.Error(t, err)
}

func TestLoadPlan_RejectsUnknownKind(t *testing.T) {
	t.Parallel()

	_, err := LoadPlan(writePlan(t, `
placements:
  - kind: buoy
    at: {x: 0, y: 0}
`))
	assert.Error(t, err)
}

func TestLoadPlan_RejectsNonFiniteNumbers(t *testing.T) {
	t.Parallel()

	_, err := LoadPlan(writePlan(t, `
placements:
  - project: {lat: .inf, lon: 0, bearing: 0, dist: 1}
`))
	assert.ErrorIs(t, err, ErrInvalidNumber)
}
