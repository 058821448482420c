package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with fresh flag state.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("THEME_FILE", filepath.Join(dir, "theme.json"))
	return executeIn(t, dir, args...)
}

func executeIn(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	verbose, apiBase, token, jsonOutput = false, "", "", false
	auditVendor, auditContracts, auditBilling = "", nil, nil
	statusWatch = false
	dashboardParallel = 4

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--profile", filepath.Join(dir, "missing.toml")}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestThemeCommandsPersist(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("THEME_FILE", filepath.Join(dir, "theme.json"))

	out, err := executeIn(t, dir, "theme", "get")
	require.NoError(t, err)
	assert.Equal(t, "light", strings.TrimSpace(out))

	out, err = executeIn(t, dir, "theme", "toggle")
	require.NoError(t, err)
	assert.Equal(t, "dark", strings.TrimSpace(out))

	out, err = executeIn(t, dir, "theme", "get")
	require.NoError(t, err)
	assert.Equal(t, "dark", strings.TrimSpace(out))
}

func TestThemeSetRejectsUnknown(t *testing.T) {
	_, err := execute(t, "theme", "set", "sepia")
	assert.Error(t, err)
}

func TestDashboardWithoutJobPrintsSample(t *testing.T) {
	out, err := execute(t, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Sample dashboard")
}

func TestDashboardFetchesJobsConcurrently(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/analysis/job-ok/summary":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"job":{"job_id":"job-ok","status":"completed","vendor_name":"Acme"},"discrepancies":[]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	out, err := execute(t, "--api", srv.URL, "--json", "dashboard", "job-ok", "job-bad")
	require.Error(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	var first, second map[string]any
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))
	assert.Equal(t, "job-ok", first["jobId"])
	assert.Equal(t, "Acme", first["vendorName"])
	assert.Equal(t, "job-bad", second["jobId"])
	assert.Equal(t, "Request failed (500)", second["error"])
}

func TestChatPrintsAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analysis/job-1/chat", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"Escalator applied twice in March."}`))
	}))
	defer srv.Close()

	out, err := execute(t, "--api", srv.URL, "chat", "job-1", "what", "happened?")
	require.NoError(t, err)
	assert.Contains(t, out, "Escalator applied twice in March.")
}
