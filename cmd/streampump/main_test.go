package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

func noEnv(string) string { return "" }

var ruleFiles = map[string]string{
	"rules/status.yml": "pipeline_id: main\nid: status\nprocessor: |\n  !EQ\n  - !ITEM EVENT status\n  - ok\n",
	"rules/label.json": `{
  "pipeline_id": "main",
  "id": "label",
  "output": "label",
  "processor": {"function": "JOIN", "char": "/", "items": [
    {"function": "ITEM", "with": {"function": "EVENT"}, "item": "host"},
    {"function": "ITEM", "with": {"function": "CONTEXT"}, "item": "missing", "default": "none"}
  ]}
}`,
	"rules/lookups/countries.yml": "pipeline_id: main\nlookup: countries\nmodule: lookup\nclass: DictionaryLookup\ndata:\n  CZ: Czechia\n",
}

func TestRun_PumpsStdin(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, ruleFiles)

	stdin := strings.NewReader(strings.Join([]string{
		`{"status": "ok", "host": "a"}`,
		`{"status": "failed", "host": "b"}`,
		``,
		`not json`,
	}, "\n"))
	var stdout, stderr bytes.Buffer

	err := run(context.Background(),
		[]string{"--segment-path", filepath.Join(dir, "rules", "**", "*"), "--log-format", "text"},
		stdin, &stdout, &stderr, noEnv)
	require.NoError(t, err, stderr.String())

	assert.JSONEq(t, `{"status": "ok", "host": "a", "label": "a/none"}`, strings.TrimSpace(stdout.String()))
	assert.Contains(t, stderr.String(), "Skipping malformed event")
	assert.Contains(t, stderr.String(), "read=3")
	assert.Contains(t, stderr.String(), "passed=1")
	assert.Contains(t, stderr.String(), "dropped=1")
	assert.Contains(t, stderr.String(), "failed=1")
}

func TestRun_ConfigFileAndFileSink(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, ruleFiles)

	outPath := filepath.Join(dir, "out.jsonl")
	configPath := filepath.Join(dir, "streampump.yml")
	writeFiles(t, dir, map[string]string{
		"streampump.yml": "segment_builder:\n  path: " + filepath.Join(dir, "rules", "*") + "\n" +
			"pipelines:\n  - id: main\n    sink: file\n    output: " + outPath + "\n",
		"events.jsonl": `{"status": "ok", "host": "x"}` + "\n" + `{"status": "ok", "host": "y"}` + "\n",
	})

	var stdout, stderr bytes.Buffer
	err := run(context.Background(),
		[]string{"--config", configPath, filepath.Join(dir, "events.jsonl")},
		strings.NewReader(""), &stdout, &stderr, noEnv)
	require.NoError(t, err, stderr.String())

	assert.Empty(t, stdout.String())
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 2)
}

func TestRun_Validate(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, ruleFiles)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(),
		[]string{"--segment-path", filepath.Join(dir, "rules", "*"), "--validate"},
		strings.NewReader(`{"status": "ok"}`), &stdout, &stderr, noEnv)
	require.NoError(t, err)

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Configuration and definitions are valid")
}

func TestRun_InvalidDefinition(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"rules/broken.yml": "pipeline_id: main\nprocessor: |\n  !NOPE [1]\n",
	})

	var stdout, stderr bytes.Buffer
	err := run(context.Background(),
		[]string{"--segment-path", filepath.Join(dir, "rules", "*"), "--validate"},
		strings.NewReader(""), &stdout, &stderr, noEnv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yml")
}

func TestRun_UnknownPipeline(t *testing.T) {
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer
	err := run(context.Background(),
		[]string{"--segment-path", filepath.Join(dir, "*"), "--pipeline", "other"},
		strings.NewReader(""), &stdout, &stderr, noEnv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "other")
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--version"}, strings.NewReader(""), &stdout, &stderr, noEnv))
	assert.Equal(t, "streampump version "+Version+"\n", stdout.String())
}

func TestParseFlags(t *testing.T) {
	env := map[string]string{
		"STREAMPUMP_LOG_LEVEL": "warn",
		"STREAMPUMP_PIPELINE":  "audit",
		"STREAMPUMP_DEBUG":     "false",
	}

	var stderr bytes.Buffer
	cfg, err := parseFlags([]string{"--log-format", "text", "a.jsonl", "-"},
		func(k string) string { return env[k] }, &stderr)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "audit", cfg.Pipeline)
	assert.Equal(t, []string{"a.jsonl", "-"}, cfg.Inputs)
	assert.NoError(t, validateFlags(cfg))

	cfg, err = parseFlags([]string{"--debug"}, noEnv, &stderr)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidateFlags(t *testing.T) {
	tests := []struct {
		name string
		cfg  CLIConfig
	}{
		{"log level", CLIConfig{LogLevel: "verbose", LogFormat: "json"}},
		{"log format", CLIConfig{LogLevel: "info", LogFormat: "xml"}},
		{"missing config", CLIConfig{LogLevel: "info", LogFormat: "json", ConfigPath: "/nonexistent/streampump.yml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, validateFlags(&tt.cfg))
		})
	}
}
