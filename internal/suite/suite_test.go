package suite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSuite(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeSuite(t, "a11y.yaml", `
name: accessibility-smoke
tests:
  - name: focus-traversal
    header: "A screen reader must be running."
    instructions: |
      1. Tab through every control.
      2. Verify each control is announced.
  - name: magnifier-page
    instructions: "Zoom to 200% and check the layout."
    target: https://example.com/form
`)

	got, err := Load(path)
	require.NoError(t, err)

	want := &Suite{
		Name: "accessibility-smoke",
		Tests: []Test{
			{
				Name:         "focus-traversal",
				Header:       "A screen reader must be running.",
				Instructions: "1. Tab through every control.\n2. Verify each control is announced.\n",
			},
			{
				Name:         "magnifier-page",
				Instructions: "Zoom to 200% and check the layout.",
				Target:       "https://example.com/form",
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("suite mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadDefaultsNameFromFile(t *testing.T) {
	path := writeSuite(t, "keyboard.yaml", `
tests:
  - name: t1
    instructions: press every key
`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "keyboard", s.Name)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		suite   Suite
		wantErr string
	}{
		{
			name:    "empty suite",
			suite:   Suite{Name: "s"},
			wantErr: "no tests",
		},
		{
			name: "missing test name",
			suite: Suite{Tests: []Test{
				{Instructions: "x"},
			}},
			wantErr: "missing name",
		},
		{
			name: "unsafe name",
			suite: Suite{Tests: []Test{
				{Name: "a/b", Instructions: "x"},
			}},
			wantErr: "filesystem-safe",
		},
		{
			name: "dotfile name",
			suite: Suite{Tests: []Test{
				{Name: ".hidden", Instructions: "x"},
			}},
			wantErr: "filesystem-safe",
		},
		{
			name: "duplicate names",
			suite: Suite{Tests: []Test{
				{Name: "t", Instructions: "x"},
				{Name: "t", Instructions: "y"},
			}},
			wantErr: "duplicate",
		},
		{
			name: "missing instructions",
			suite: Suite{Tests: []Test{
				{Name: "t"},
			}},
			wantErr: "missing instructions",
		},
		{
			name: "bad target scheme",
			suite: Suite{Tests: []Test{
				{Name: "t", Instructions: "x", Target: "ftp://example.com"},
			}},
			wantErr: "http(s)",
		},
		{
			name: "valid",
			suite: Suite{Tests: []Test{
				{Name: "t-1.a", Instructions: "x", Target: "http://localhost:8080"},
			}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.suite.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"),
		[]byte("tests:\n  - name: t2\n    instructions: x\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"),
		[]byte("tests:\n  - name: t1\n    instructions: x\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"),
		[]byte("ignore me"), 0644))

	suites, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, suites, 2)
	assert.Equal(t, "a", suites[0].Name)
	assert.Equal(t, "b", suites[1].Name)
}

func TestLoadDirPropagatesInvalidSuite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"),
		[]byte("tests:\n  - name: t1\n"), 0644))

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing instructions")
}
