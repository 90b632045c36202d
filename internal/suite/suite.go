// Package suite loads manual test definitions from YAML files.
// Each test carries the instructions shown to the operator and an
// optional browser target to capture evidence from.
package suite

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// Test is a single manual test an operator can judge.
type Test struct {
	// Name identifies the test; it doubles as the capture file stem,
	// so it must be filesystem-safe.
	Name string `yaml:"name"`

	// Header is an optional warning banner shown above the
	// instructions, e.g. preconditions the operator must arrange.
	Header string `yaml:"header,omitempty"`

	// Instructions is the markdown test description.
	Instructions string `yaml:"instructions"`

	// Target optionally names a URL; when set, the harness opens it in
	// a browser and captures that page on failure instead of the
	// desktop.
	Target string `yaml:"target,omitempty"`
}

// Suite is an ordered collection of manual tests.
type Suite struct {
	Name  string `yaml:"name"`
	Tests []Test `yaml:"tests"`
}

// safeName limits test names to what every filesystem accepts as a
// file stem.
var safeName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Load reads and validates a suite file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read suite: %w", err)
	}

	var s Suite
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse suite %s: %w", path, err)
	}

	if s.Name == "" {
		s.Name = stem(path)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("suite %s: %w", path, err)
	}
	return &s, nil
}

// LoadDir loads every .yaml/.yml suite in dir, in name order.
func LoadDir(dir string) ([]*Suite, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read suite dir: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch filepath.Ext(entry.Name()) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	suites := make([]*Suite, 0, len(paths))
	for _, path := range paths {
		s, err := Load(path)
		if err != nil {
			return nil, err
		}
		suites = append(suites, s)
	}
	return suites, nil
}

// Validate checks the suite is runnable: at least one test, unique
// filesystem-safe names, non-empty instructions, well-formed targets.
func (s *Suite) Validate() error {
	if len(s.Tests) == 0 {
		return fmt.Errorf("no tests defined")
	}

	seen := make(map[string]bool, len(s.Tests))
	for i, test := range s.Tests {
		if test.Name == "" {
			return fmt.Errorf("test %d: missing name", i)
		}
		if !safeName.MatchString(test.Name) {
			return fmt.Errorf("test %q: name must be filesystem-safe", test.Name)
		}
		if seen[test.Name] {
			return fmt.Errorf("test %q: duplicate name", test.Name)
		}
		seen[test.Name] = true

		if test.Instructions == "" {
			return fmt.Errorf("test %q: missing instructions", test.Name)
		}

		if test.Target != "" {
			u, err := url.Parse(test.Target)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				return fmt.Errorf("test %q: target must be an http(s) URL", test.Name)
			}
		}
	}
	return nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
