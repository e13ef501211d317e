package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"galaxy-sdk/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sortedCities = "Berlin,3755251\nHamburg,1892122\n"

// newGalaxyServer answers every call of a plain run with ready datasets
func newGalaxyServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/histories":
			fmt.Fprint(w, `[{"id":"h1","name":"myHistory"}]`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/tools":
			fmt.Fprint(w, `[{"id":"text","name":"Text Manipulation","elems":[{"id":"sort1","name":"Sort"}]}]`)
		case r.Method == http.MethodPost && r.URL.Path == "/api/tools":
			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
				fmt.Fprint(w, `{"outputs":[{"id":"D1","hid":1}]}`)
				return
			}
			fmt.Fprint(w, `{"outputs":[{"id":"D2","hid":2}]}`)
		case strings.HasPrefix(r.URL.Path, "/api/histories/h1/contents/"):
			id := strings.TrimPrefix(r.URL.Path, "/api/histories/h1/contents/")
			fmt.Fprintf(w, `{"id":%q,"hid":1,"state":"ok"}`, id)
		case r.URL.Path == "/api/datasets/D2/display":
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))
			fmt.Fprint(w, sortedCities)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL)
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func clearGalaxyEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvGalaxyURL, config.EnvAPIKey, config.EnvAPIKeyFile,
		config.EnvHistory, config.EnvTool, config.EnvLogLevel} {
		t.Setenv(key, "")
	}
}

func TestRunPlain(t *testing.T) {
	clearGalaxyEnv(t)
	server := newGalaxyServer(t)
	dir := t.TempDir()

	input := filepath.Join(dir, "cities.csv")
	require.NoError(t, os.WriteFile(input, []byte("Hamburg,1892122\nBerlin,3755251\n"), 0644))

	cfg := config.Defaults()
	cfg.GalaxyURL = server.URL
	cfg.APIKey = "test-key"
	cfg.InputFile = input
	cfg.OutputFile = filepath.Join(dir, "response.csv")
	cfg.PollInterval = time.Millisecond
	cfg.LogFile = filepath.Join(dir, "logs", "debug.log")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, &rootFlags{plain: true}, &out))

	text := out.String()
	assert.Contains(t, text, "Galaxy API Demo")
	assert.Contains(t, text, server.URL)
	assert.Contains(t, text, "[resolve history] Looking up history \"myHistory\"")
	assert.Contains(t, text, "[upload] Uploading "+input)
	assert.Contains(t, text, "  D1: ok (attempt 1)")
	assert.Contains(t, text, "[run tool] Running Sort (sort1)")
	assert.Contains(t, text, "  D2: ok (attempt 1)")
	assert.Contains(t, text, fmt.Sprintf("✓ Wrote %d bytes to %s", len(sortedCities), cfg.OutputFile))

	data, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.Equal(t, sortedCities, string(data))

	logData, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(logData), "run finished")
	assert.NotContains(t, string(logData), "key=test-key")
}

func TestRootCommandFlagsOverrideConfigFile(t *testing.T) {
	clearGalaxyEnv(t)
	server := newGalaxyServer(t)
	dir := t.TempDir()
	t.Setenv(config.EnvAPIKey, "test-key")

	input := filepath.Join(dir, "cities.csv")
	require.NoError(t, os.WriteFile(input, []byte("Hamburg,1892122\n"), 0644))
	output := filepath.Join(dir, "sorted.csv")

	configPath := filepath.Join(dir, "galaxy-config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf(
		"galaxy_url: %s\ninput_file: \"\"\npoll_interval: 1ms\nlog_file: %s\n",
		server.URL, filepath.Join(dir, "debug.log"))), 0644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", configPath, "--plain", "--input", input, "--output", output})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, sortedCities, string(data))
	assert.Contains(t, out.String(), "✓ Wrote")
}

func TestRootCommandRejectsIncompleteConfig(t *testing.T) {
	clearGalaxyEnv(t)
	dir := t.TempDir()

	configPath := filepath.Join(dir, "galaxy-config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("input_file: \"\"\n"), 0644))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", configPath, "--plain"})
	assert.ErrorContains(t, cmd.Execute(), "input_file must be set")
}
