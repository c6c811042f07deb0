package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario over one filter catalog.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Catalog is the CUE file or package directory holding the filters.
	// Relative paths are resolved against the scenario file location.
	Catalog string `yaml:"catalog"`

	// Fixture is a YAML fixture to seed the store with.
	// Exactly one of Fixture and Generate must be set.
	Fixture string `yaml:"fixture,omitempty"`

	// Generate seeds the store with a generated fixture instead.
	Generate *GenerateSpec `yaml:"generate,omitempty"`

	// Assertions validate the rows each filter selected.
	Assertions []Assertion `yaml:"assertions"`
}

// GenerateSpec parameterizes a generated fixture.
type GenerateSpec struct {
	Orders int    `yaml:"orders"`
	Seed   uint64 `yaml:"seed"`
}

// Assertion validates what one filter (or every filter) selected.
type Assertion struct {
	// Type specifies the assertion type:
	// - "matches": filter selects exactly IDs
	// - "contains": filter selects at least IDs
	// - "excludes": filter selects none of IDs
	// - "count": filter selects exactly Count rows
	// - "parity": in-memory and SQL paths agree
	Type string `yaml:"type"`

	// Filter names the catalog filter. Optional for parity only.
	Filter string `yaml:"filter,omitempty"`

	// IDs are entity keys (used by matches, contains, excludes).
	IDs []string `yaml:"ids,omitempty"`

	// Count is the expected number of rows (used by count).
	// A pointer so that "count: 0" is distinguishable from a missing count.
	Count *int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertMatches  = "matches"
	AssertContains = "contains"
	AssertExcludes = "excludes"
	AssertCount    = "count"
	AssertParity   = "parity"
)

// LoadScenario reads and parses a scenario YAML file, resolving its catalog
// and fixture paths relative to the file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving catalog and fixture paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve paths relative to base path BEFORE validation
	scenario.Catalog = resolvePath(basePath, scenario.Catalog)
	scenario.Fixture = resolvePath(basePath, scenario.Fixture)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml and *.yml scenario in dir, sorted by
// file name. Loading stops at the first invalid file.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		files = append(files, matches...)
	}
	slices.Sort(files)

	scenarios := make([]*Scenario, 0, len(files))
	for _, f := range files {
		s, err := LoadScenario(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(f), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) || base == "" {
		return p
	}
	return filepath.Join(base, p)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Catalog == "" {
		return fmt.Errorf("catalog is required")
	}
	if _, err := os.Stat(s.Catalog); os.IsNotExist(err) {
		return fmt.Errorf("catalog not found: %s", s.Catalog)
	}

	switch {
	case s.Fixture != "" && s.Generate != nil:
		return fmt.Errorf("fixture and generate are mutually exclusive")
	case s.Fixture != "":
		if _, err := os.Stat(s.Fixture); os.IsNotExist(err) {
			return fmt.Errorf("fixture not found: %s", s.Fixture)
		}
	case s.Generate != nil:
		if s.Generate.Orders < 1 {
			return fmt.Errorf("generate.orders must be positive")
		}
	default:
		return fmt.Errorf("one of fixture or generate is required")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	// Validate assertions
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertMatches, AssertContains, AssertExcludes:
		if a.Filter == "" {
			return fmt.Errorf("assertions[%d]: filter is required for %s", index, a.Type)
		}
		// matches with no ids is a valid "selects nothing" check
		if a.Type != AssertMatches && len(a.IDs) == 0 {
			return fmt.Errorf("assertions[%d]: ids list is required for %s", index, a.Type)
		}
	case AssertCount:
		if a.Filter == "" {
			return fmt.Errorf("assertions[%d]: filter is required for count", index)
		}
		if a.Count == nil {
			return fmt.Errorf("assertions[%d]: count is required for count", index)
		}
		if *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertParity:
		// filter optional
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
