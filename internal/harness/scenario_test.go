package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScenario = `
name: minimal
description: smallest valid scenario
fixture: {}
query:
  kind: invoices
assertions:
  - type: document_count
    count: 0
`

func TestParseScenario_Valid(t *testing.T) {
	s, err := ParseScenario([]byte(validScenario))
	require.NoError(t, err)
	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, QueryInvoices, s.Query.Kind)
	require.Len(t, s.Assertions, 1)
	require.NotNil(t, s.Assertions[0].Count)
	assert.Equal(t, 0, *s.Assertions[0].Count)
}

func TestParseScenario_RejectsUnknownFields(t *testing.T) {
	_, err := ParseScenario([]byte(validScenario + "assertion: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nquery: {kind: invoices}\nassertions: [{type: load_count, count: 1}]",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\nquery: {kind: invoices}\nassertions: [{type: load_count, count: 1}]",
			wantErr: "description is required",
		},
		{
			name:    "missing query kind",
			yaml:    "name: n\ndescription: d\nassertions: [{type: load_count, count: 1}]",
			wantErr: "query.kind is required",
		},
		{
			name:    "unknown query kind",
			yaml:    "name: n\ndescription: d\nquery: {kind: projects}\nassertions: [{type: load_count, count: 1}]",
			wantErr: `unknown kind "projects"`,
		},
		{
			name:    "activities with both filters",
			yaml:    "name: n\ndescription: d\nquery: {kind: activities, invoice: 1, month: '2024-05'}\nassertions: [{type: load_count, count: 1}]",
			wantErr: "mutually exclusive",
		},
		{
			name:    "bad fail_on",
			yaml:    "name: n\ndescription: d\nquery: {kind: times, fail_on: Explode}\nassertions: [{type: load_count, count: 1}]",
			wantErr: "not an accessor method",
		},
		{
			name:    "no assertions",
			yaml:    "name: n\ndescription: d\nquery: {kind: times}",
			wantErr: "assertions list is required",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\nquery: {kind: times}\nassertions: [{type: vibes}]",
			wantErr: `unknown assertion type "vibes"`,
		},
		{
			name:    "count missing",
			yaml:    "name: n\ndescription: d\nquery: {kind: times}\nassertions: [{type: document_count}]",
			wantErr: "count is required for document_count",
		},
		{
			name:    "duration target ambiguous",
			yaml:    "name: n\ndescription: d\nquery: {kind: invoices}\nassertions: [{type: total_duration, hours: 1, invoice: 1, activity: 1}]",
			wantErr: "exactly one of invoice or activity",
		},
		{
			name:    "error kind",
			yaml:    "name: n\ndescription: d\nquery: {kind: invoices}\nassertions: [{type: error, kind: panic}]",
			wantErr: "kind must be",
		},
		{
			name:    "load phase",
			yaml:    "name: n\ndescription: d\nquery: {kind: invoices}\nassertions: [{type: load_count, count: 1, phase: eager}]",
			wantErr: `unknown phase "eager"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenarios_NamesBadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(validScenario), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("name: [unclosed"), 0o644))

	_, err := LoadScenarios(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.yaml")
}

func TestLoadScenarios_Sorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b", "a"} {
		data := []byte("name: " + name + validScenario[len("\nname: minimal"):])
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), data, 0o644))
	}

	scenarios, err := LoadScenarios(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "a", scenarios[0].Name)
	assert.Equal(t, "b", scenarios[1].Name)
}
