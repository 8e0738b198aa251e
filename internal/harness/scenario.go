package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Scenario is a set of fixture tables and the filter steps run against them.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Tables maps table names (any case) to their rows.
	Tables map[string][]map[string]any `yaml:"tables"`

	// FetchErrors makes every fetch of a table fail with the given message.
	FetchErrors map[string]string `yaml:"fetch_errors,omitempty"`

	// Steps are executed in order against the same tables.
	Steps []Step `yaml:"steps"`
}

// Step runs one filter query.
type Step struct {
	Table    string            `yaml:"table"`
	Criteria []string          `yaml:"criteria"`
	Types    map[string]string `yaml:"types,omitempty"`
	Expect   Expect            `yaml:"expect"`
}

// Expect holds the checks for one step. Unset fields are not checked.
type Expect struct {
	Error   string            `yaml:"error,omitempty"`
	Count   *int              `yaml:"count,omitempty"`
	Match   []map[string]any  `yaml:"match,omitempty"`
	Types   map[string]string `yaml:"types,omitempty"`
	Fetches *int              `yaml:"fetches,omitempty"`
}

// Error kinds reported in traces and accepted by Expect.Error.
const (
	ErrorParse      = "parse"
	ErrorSchema     = "schema"
	ErrorEmptyTable = "empty_table"
	ErrorCoercion   = "coercion"
	ErrorFetch      = "fetch"
	ErrorUsage      = "usage"
)

var errorKinds = []string{ErrorParse, ErrorSchema, ErrorEmptyTable, ErrorCoercion, ErrorFetch, ErrorUsage}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "step:" vs "steps:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Tables) == 0 && len(s.FetchErrors) == 0 {
		return fmt.Errorf("tables map is required and must be non-empty")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Table == "" {
			return fmt.Errorf("steps[%d]: table is required", i)
		}
		if len(step.Criteria) == 0 {
			return fmt.Errorf("steps[%d]: criteria list is required and must be non-empty", i)
		}
		if e := step.Expect.Error; e != "" && !slices.Contains(errorKinds, e) {
			return fmt.Errorf("steps[%d]: unknown error kind %q (want one of %v)", i, e, errorKinds)
		}
		if step.Expect.Error != "" && (step.Expect.Count != nil || len(step.Expect.Match) > 0) {
			return fmt.Errorf("steps[%d]: error cannot be combined with count or match", i)
		}
	}

	return nil
}
