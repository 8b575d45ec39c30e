package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/dashvars/internal/errors"
	"github.com/conneroisu/dashvars/internal/matcher"
	"github.com/conneroisu/dashvars/internal/variables"
)

const sampleJSONC = `{
	// exported from the staging instance
	"title": "Service overview",
	"uid": "svc-01",
	"templating": {
		"list": [
			{"name": "datasource", "type": "datasource", "query": "prometheus"},
			{
				"name": "job",
				"type": "query",
				"datasource": {"type": "prometheus", "uid": "${datasource}"},
				"query": {"query": "label_values(up, job)", "refId": "A"},
				"current": {"text": ["api", "web"], "value": ["api", "web"]},
				"multi": true,
				"refresh": 1,
			},
			{
				"name": "instance",
				"type": "query",
				"query": "label_values(up{job=~\"$job\"}, instance)",
			},
			{"name": "interval", "type": "interval"},
			{"name": "orphan", "type": "custom", "query": "a,b,c"},
		]
	},
	"panels": [
		{
			"id": 1,
			"title": "Requests for $job",
			"type": "timeseries",
			"datasource": {"type": "prometheus", "uid": "$datasource"},
			"targets": [
				{"expr": "sum(rate(http_requests_total{instance=~\"[[instance]]\"}[$__rate_interval]))", "refId": "A"}
			]
		},
		{
			"id": 2,
			"type": "row",
			"title": "Details",
			"panels": [
				{
					"id": 3,
					"title": "Latency",
					"targets": [{"expr": "histogram_quantile(0.9, ${interval}) + $missing", "refId": "B"}]
				}
			]
		},
		{"id": 4, "type": "text"},
	],
}`

const sampleYAML = `
dashboard:
  title: Legacy
  templating:
    list:
      - name: env
        type: custom
        query: dev,prod
  rows:
    - title: Overview
      panels:
        - id: 7
          title: Errors in ${env}
          targets:
            - expr: errors_total
              refId: A
`

func TestParseJSONC(t *testing.T) {
	d, err := Parse([]byte(sampleJSONC), ".json")
	require.NoError(t, err)

	assert.Equal(t, "Service overview", d.Title)
	assert.Equal(t, "svc-01", d.UID)
	assert.Equal(t, []string{"datasource", "job", "instance", "interval", "orphan"}, d.VariableNames())

	require.Len(t, d.Panels, 3)
	assert.Equal(t, "Requests for $job", d.Panels[0].Title)
	assert.Equal(t, "$datasource", d.Panels[0].Datasource)
	require.Len(t, d.Panels[0].Targets, 1)
	assert.Equal(t, "A", mustGet(t, d.Panels[0].Targets[0], "refId"))

	assert.Equal(t, "Details", d.Panels[1].Row)
	assert.Equal(t, 3, d.Panels[1].ID)
	assert.Equal(t, "Details / Latency", d.Panels[1].DisplayName())
	assert.Equal(t, "panel #4", d.Panels[2].DisplayName())
}

func TestParseYAMLWithLegacyRows(t *testing.T) {
	d, err := Parse([]byte(sampleYAML), ".yml")
	require.NoError(t, err)

	assert.Equal(t, "Legacy", d.Title)
	assert.Equal(t, []string{"env"}, d.VariableNames())
	require.Len(t, d.Panels, 1)
	assert.Equal(t, "Overview / Errors in ${env}", d.Panels[0].DisplayName())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		ext  string
	}{
		{"invalid json", `{"title": `, ".json"},
		{"not an object", `[1, 2]`, ".json"},
		{"list not a sequence", `{"templating": {"list": 3}}`, ".json"},
		{"panels not a sequence", `{"panels": "x"}`, ".json"},
		{"panel not an object", `{"panels": [1]}`, ".json"},
		{"invalid yaml", "title: [", ".yaml"},
		{"empty yaml", "", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.ext)
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "svc.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSONC), 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, d.Path)

	_, err = Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIO))

	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte("{"), 0o644))
	_, err = Load(broken)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.Contains(t, err.Error(), broken)
}

func TestVariableDefinitionInputs(t *testing.T) {
	d, err := Parse([]byte(sampleJSONC), ".json")
	require.NoError(t, err)

	job := d.Variables[1]
	inputs := job.DefinitionInputs()
	require.Len(t, inputs, 2)
	assert.True(t, matcher.ContainsVariable(inputs, "datasource"))

	assert.Empty(t, d.Variables[3].DefinitionInputs())
}

func TestAnalyze(t *testing.T) {
	d, err := Parse([]byte(sampleJSONC), ".json")
	require.NoError(t, err)

	report := NewAnalyzer(nil).Analyze(context.Background(), d)
	require.Len(t, report.Usages, 5)

	byName := make(map[string]Usage)
	for _, u := range report.Usages {
		byName[u.Variable] = u
	}

	assert.Equal(t, []string{"Requests for $job"}, byName["datasource"].Panels)
	assert.Equal(t, []string{"job"}, byName["datasource"].Variables)

	assert.Equal(t, []string{"Requests for $job"}, byName["job"].Panels)
	assert.Equal(t, []string{"instance"}, byName["job"].Variables)

	assert.Equal(t, []string{"Requests for $job"}, byName["instance"].Panels)
	assert.Equal(t, []string{"Details / Latency"}, byName["interval"].Panels)

	assert.True(t, byName["orphan"].Unused)
	assert.Equal(t, []string{"orphan"}, report.Unused())

	assert.Equal(t, []string{"missing"}, report.Undeclared)
}

func TestRegister(t *testing.T) {
	d, err := Parse([]byte(sampleJSONC), ".json")
	require.NoError(t, err)

	store := variables.NewStore()
	ids, err := Register(store, d)
	require.NoError(t, err)
	require.Len(t, ids, 5)
	assert.Equal(t, 5, store.Count())

	job, err := store.GetVariableModel(variables.ByID(ids[1]))
	require.NoError(t, err)
	assert.Equal(t, "job", job.Name)
	assert.Equal(t, variables.TypeQuery, job.Type)
	assert.Equal(t, "label_values(up, job)", job.Query)
	assert.Equal(t, "${datasource}", job.Datasource)
	assert.Equal(t, "api + web", job.Current.Text)
	assert.True(t, job.Multi)
	assert.Equal(t, variables.RefreshOnDashboardLoad, job.Refresh)
	assert.Equal(t, 1, job.Index)

	interval, ok := store.FindByName("interval")
	require.True(t, ok)
	assert.Equal(t, "1m,10m,30m,1h,6h,12h,1d,7d,14d,30d", interval.Query)

	list := store.List()
	names := make([]string, len(list))
	for i, m := range list {
		names[i] = m.Name
	}
	assert.Equal(t, d.VariableNames(), names)
}

func TestRegisterKeepsExplicitZeroValues(t *testing.T) {
	d, err := Parse([]byte(`{"templating": {"list": [
		{"name": "region", "type": "constant", "query": "eu", "hide": 0},
		{"name": "cluster", "type": "constant", "query": "a"}
	]}}`), ".json")
	require.NoError(t, err)

	store := variables.NewStore()
	_, err = Register(store, d)
	require.NoError(t, err)

	region, ok := store.FindByName("region")
	require.True(t, ok)
	assert.Equal(t, variables.HideNothing, region.Hide)
	assert.Equal(t, 0, region.Index)

	cluster, ok := store.FindByName("cluster")
	require.True(t, ok)
	assert.Equal(t, variables.HideVariable, cluster.Hide)
	assert.Equal(t, 1, cluster.Index)
}

func TestWalk(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.json":               "{}",
		"b.yaml":               "{}",
		"notes.txt":            "",
		"nested/c.JSONC":       "{}",
		"nested/skip.json":     "{}",
		"vendor/d.json":        "{}",
		"nested/deep/e.yml":    "{}",
		"nested/deep/f.backup": "",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	got, err := Walk(
		[]string{dir, filepath.Join(dir, "a.json"), filepath.Join(dir, "notes.txt")},
		[]string{".json", ".jsonc", ".yaml", ".yml"},
		[]string{"vendor", "skip.*"},
	)
	require.NoError(t, err)

	want := []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "nested", "c.JSONC"),
		filepath.Join(dir, "nested", "deep", "e.yml"),
		filepath.Join(dir, "notes.txt"),
	}
	assert.Equal(t, want, got)
}

func TestWalkErrors(t *testing.T) {
	_, err := Walk([]string{"../outside"}, []string{".json"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = Walk([]string{filepath.Join(t.TempDir(), "missing")}, []string{".json"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIO))
}

func mustGet(t *testing.T, r matcher.Record, key string) interface{} {
	t.Helper()
	v, ok := r.Get(key)
	require.True(t, ok, key)
	return v
}
