package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blueprint/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	out, err := runCmd(t, "", "analyze", "A dashboard for payments")
	require.NoError(t, err)

	var got blueprintReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, []string{"dashboard", "payment system", "user management"}, got.Features)
	assert.Len(t, got.Backlog, 7)
	assert.GreaterOrEqual(t, got.Scores.MarketNeed, 3)
	assert.Equal(t, []string{"User Registration/Login", "Dashboard Overview", "User Settings/Profile"}, got.Flow.Steps)
	assert.Len(t, got.Flow.Pages, 7)
	assert.Equal(t, "User Registration/Login → Dashboard Overview → User Settings/Profile", got.Flow.Description)
}

func TestAnalyzeInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idea.txt")
	require.NoError(t, os.WriteFile(path, []byte("  send email reminders \n"), 0o600))

	out, err := runCmd(t, "", "analyze", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "- notifications")

	out, err = runCmd(t, "a payment tool", "analyze")
	require.NoError(t, err)
	assert.Contains(t, out, "- payment system")

	_, err = runCmd(t, "   ", "analyze")
	require.EqualError(t, err, "description is required")
}

func TestVersionCommand(t *testing.T) {
	out, err := runCmd(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "blueprint dev\n", out)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)

	buf.Reset()
	newLogger(config.LogConfig{Level: "bogus"}, &buf).Info("text")
	assert.Contains(t, buf.String(), "level=INFO msg=text")
}
