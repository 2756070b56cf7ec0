package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/asaidimu/go-sift/core/query"
	"github.com/asaidimu/go-sift/core/record"
	"github.com/asaidimu/go-sift/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peopleJSON = `[
  {"id": 1, "name": "Alice", "age": 30, "city": "Paris"},
  {"id": 2, "name": "Bob", "age": 25, "city": "London"},
  {"id": 3, "name": "Carol", "age": 35, "city": "Paris"}
]`

const pipelineJSON = `{
  "name": "cli",
  "stages": [
    {"filter": {"conditions": [{"field": "city", "operator": "equals", "value": "paris"}]}},
    {"sort": {"field": "age", "order": "desc"}}
  ]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}
	err := app.Run(append([]string{"sift", "--log-level", "error"}, args...))
	return out.String(), err
}

func decodeIDs(t *testing.T, out string) []float64 {
	t.Helper()
	var docs []record.Document
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	ids := make([]float64, len(docs))
	for i, d := range docs {
		switch v := d["id"].(type) {
		case float64:
			ids[i] = v
		}
	}
	return ids
}

func TestRunCommand_JSONInput(t *testing.T) {
	input := writeFile(t, "people.json", peopleJSON)
	config := writeFile(t, "pipeline.json", pipelineJSON)

	out, err := runApp(t, "run", "--input", input, "--config", config)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1}, decodeIDs(t, out))
}

func TestRunCommand_Issues(t *testing.T) {
	input := writeFile(t, "people.json", peopleJSON)
	config := writeFile(t, "pipeline.json", `{"stages": [{"paginate": {"page": 0}}]}`)

	out, err := runApp(t, "run", "-i", input, "-c", config, "--issues")
	require.NoError(t, err)

	var res struct {
		Documents []record.Document `json:"documents"`
		Issues    []query.Issue      `json:"issues"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Empty(t, res.Documents)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, query.IssueInvalidPage, res.Issues[0].Code)
}

func TestRunCommand_SQLiteRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "people.db")
	src, err := sqlite.Open(dbPath, nil, nil)
	require.NoError(t, err)
	_, err = src.WriteTable(context.Background(), "people", []record.Document{
		{"id": 1, "name": "Alice", "age": 30, "city": "Paris"},
		{"id": 2, "name": "Bob", "age": 25, "city": "London"},
		{"id": 3, "name": "Carol", "age": 35, "city": "Paris"},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, src.Close())

	config := writeFile(t, "pipeline.json", pipelineJSON)
	out, err := runApp(t, "run", "--sqlite", dbPath, "--table", "people", "--config", config, "--write-table", "parisians")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1}, decodeIDs(t, out))

	out, err = runApp(t, "run", "--sqlite", dbPath, "--sql", "SELECT * FROM parisians", "--config", writeFile(t, "noop.json", `{"stages": []}`))
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1}, decodeIDs(t, out))
}

func TestRunCommand_InvalidArguments(t *testing.T) {
	input := writeFile(t, "people.json", peopleJSON)
	config := writeFile(t, "pipeline.json", pipelineJSON)
	notJSON := writeFile(t, "people.csv", "id,name\n1,Alice\n")

	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"run", "--config", config}},
		{"both inputs", []string{"run", "--config", config, "--input", input, "--sqlite", "x.db"}},
		{"sqlite without table", []string{"run", "--config", config, "--sqlite", "x.db"}},
		{"unreadable format", []string{"run", "--config", config, "--input", notJSON}},
		{"write-table without sqlite", []string{"run", "--config", config, "--input", input, "--write-table", "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, tt.args...)
			assert.ErrorIs(t, err, query.ErrInvalidArgument)
		})
	}
}

func TestRunCommand_BadConfig(t *testing.T) {
	input := writeFile(t, "people.json", peopleJSON)
	config := writeFile(t, "pipeline.json", `{"stages": [{"sort": {}}]}`)

	_, err := runApp(t, "run", "--input", input, "--config", config)
	assert.ErrorIs(t, err, query.ErrInvalidConfiguration)
}

func TestScoreCommand(t *testing.T) {
	out, err := runApp(t, "score", "kitten", "sitting")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(algorithmNames()))

	out, err = runApp(t, "score", "--algorithm", "levenshtein", "kitten", "sitting")
	require.NoError(t, err)
	assert.Equal(t, "levenshtein  0.5714\n", out)

	_, err = runApp(t, "score", "--algorithm", "soundex", "a", "b")
	assert.ErrorIs(t, err, query.ErrUnsupportedStrategy)

	_, err = runApp(t, "score", "only-one")
	assert.ErrorIs(t, err, query.ErrInvalidArgument)
}

func TestPathsCommand(t *testing.T) {
	input := writeFile(t, "nested.json", `[{"name": "x", "profile": {"email": "e", "tags": ["a"]}}]`)

	out, err := runApp(t, "paths", "--input", input)
	require.NoError(t, err)
	assert.Equal(t, "name\nprofile.email\nprofile.tags[0]\n", out)
}

func TestSetupLogger_InvalidLevel(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}
	err := app.Run([]string{"sift", "--log-level", "loud", "score", "a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}
