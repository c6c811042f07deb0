package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// benchTestdata is the shared catalog and fixture directory.
var benchTestdata = filepath.Join("..", "bench", "testdata")

// writeScenario writes content as a scenario file next to a catalog and
// fixture copied into a temp dir, so relative paths resolve there.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"filters.cue", "fixture.yaml"} {
		data, err := os.ReadFile(filepath.Join(benchTestdata, name))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0644))
	}
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
catalog: filters.cue
fixture: fixture.yaml
assertions:
  - type: matches
    filter: huskies
    ids: [a1]
  - type: count
    filter: nothing
    count: 0
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "filters.cue"), scenario.Catalog)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "fixture.yaml"), scenario.Fixture)
	require.Len(t, scenario.Assertions, 2)
	assert.Equal(t, []string{"a1"}, scenario.Assertions[0].IDs)
	require.NotNil(t, scenario.Assertions[1].Count)
	assert.Equal(t, 0, *scenario.Assertions[1].Count)
}

func TestLoadScenario_Generate(t *testing.T) {
	path := writeScenario(t, `
name: gen
description: "generated"
catalog: filters.cue
generate: {orders: 50, seed: 3}
assertions:
  - type: parity
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	require.NotNil(t, scenario.Generate)
	assert.Equal(t, GenerateSpec{Orders: 50, Seed: 3}, *scenario.Generate)
	assert.Empty(t, scenario.Fixture)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	_, err := LoadScenario(filepath.Join("testdata", "invalid", "typo.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
	assert.Contains(t, err.Error(), "assertion")
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
description: d
catalog: filters.cue
fixture: fixture.yaml
assertions: [{type: parity}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			content: `
name: n
catalog: filters.cue
fixture: fixture.yaml
assertions: [{type: parity}]
`,
			wantErr: "description is required",
		},
		{
			name: "missing catalog file",
			content: `
name: n
description: d
catalog: other.cue
fixture: fixture.yaml
assertions: [{type: parity}]
`,
			wantErr: "catalog not found",
		},
		{
			name: "no data source",
			content: `
name: n
description: d
catalog: filters.cue
assertions: [{type: parity}]
`,
			wantErr: "one of fixture or generate is required",
		},
		{
			name: "both data sources",
			content: `
name: n
description: d
catalog: filters.cue
fixture: fixture.yaml
generate: {orders: 5, seed: 1}
assertions: [{type: parity}]
`,
			wantErr: "mutually exclusive",
		},
		{
			name: "generate without orders",
			content: `
name: n
description: d
catalog: filters.cue
generate: {seed: 1}
assertions: [{type: parity}]
`,
			wantErr: "generate.orders must be positive",
		},
		{
			name: "no assertions",
			content: `
name: n
description: d
catalog: filters.cue
fixture: fixture.yaml
`,
			wantErr: "assertions list is required",
		},
		{
			name: "unknown assertion type",
			content: `
name: n
description: d
catalog: filters.cue
fixture: fixture.yaml
assertions: [{type: trace_contains}]
`,
			wantErr: `unknown assertion type "trace_contains"`,
		},
		{
			name: "matches without filter",
			content: `
name: n
description: d
catalog: filters.cue
fixture: fixture.yaml
assertions: [{type: matches, ids: [o1]}]
`,
			wantErr: "filter is required for matches",
		},
		{
			name: "contains without ids",
			content: `
name: n
description: d
catalog: filters.cue
fixture: fixture.yaml
assertions: [{type: contains, filter: huskies}]
`,
			wantErr: "ids list is required for contains",
		},
		{
			name: "count without count",
			content: `
name: n
description: d
catalog: filters.cue
fixture: fixture.yaml
assertions: [{type: count, filter: huskies}]
`,
			wantErr: "count is required",
		},
		{
			name: "negative count",
			content: `
name: n
description: d
catalog: filters.cue
fixture: fixture.yaml
assertions: [{type: count, filter: huskies, count: -1}]
`,
			wantErr: "count must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenarios_SortedByFile(t *testing.T) {
	scenarios, err := LoadScenarios(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	var names []string
	for _, s := range scenarios {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"animals", "generated", "orders"}, names)
}

func TestLoadScenarios_StopsOnInvalid(t *testing.T) {
	_, err := LoadScenarios(filepath.Join("testdata", "invalid"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "typo.yaml")
}
