package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mantis/internal/config"
	"mantis/internal/harness"
	"mantis/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeFor(t *testing.T) {
	failErr := errors.New("test failed")

	assert.Equal(t, store.OutcomeError, outcomeFor(nil, harness.ErrNoResult))
	assert.Equal(t, store.OutcomeError,
		outcomeFor(&harness.Result{Err: harness.ErrDecisionTimeout}, failErr))
	assert.Equal(t, store.OutcomeFail,
		outcomeFor(&harness.Result{FailureDescription: "r"}, failErr))
	assert.Equal(t, store.OutcomePass,
		outcomeFor(&harness.Result{Passed: true}, nil))
}

func TestStylesFor(t *testing.T) {
	cfg := config.DefaultConfig()

	cfg.Theme = "dark"
	assert.True(t, stylesFor(cfg).Theme.IsDark)

	cfg.Theme = "light"
	assert.False(t, stylesFor(cfg).Theme.IsDark)
}

func TestLoadSuitesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path,
		[]byte("tests:\n  - name: t1\n    instructions: x\n"), 0644))

	suites, err := loadSuites(path)
	require.NoError(t, err)
	require.Len(t, suites, 1)
	assert.Equal(t, "s", suites[0].Name)
}

func TestLoadSuitesEmptyDir(t *testing.T) {
	_, err := loadSuites(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no suite files")
}

func TestLoadSuitesMissingPath(t *testing.T) {
	_, err := loadSuites(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
