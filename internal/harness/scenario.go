package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted bookstore session.
// Steps run in order against a fresh data directory.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps are the command lines to run.
	Steps []Step `yaml:"steps"`

	// Assertions check the catalog and ledger after the last step.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one command line, or a restart of the whole process.
type Step struct {
	// Input is the raw command line.
	Input string `yaml:"input,omitempty"`

	// Expect is the exact output of the step. A rejected command prints
	// "Invalid\n". Nil means the output is not checked.
	Expect *string `yaml:"expect,omitempty"`

	// Restart closes the store and ledger and opens them again with an empty
	// session stack.
	Restart bool `yaml:"restart,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "book": the record at ISBN has the Expect field values
	// - "book_absent": no record exists at ISBN
	// - "trade_count": the trade ledger holds Count records
	// - "command_count": the command ledger holds Count records
	// - "totals": the whole trade ledger sums to Income and Expense
	Type string `yaml:"type"`

	// ISBN selects the record (book, book_absent).
	ISBN string `yaml:"isbn,omitempty"`

	// Expect holds field values keyed by JSON field name (book).
	// Subset match - only specified fields are validated.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Count is the expected number of records (trade_count, command_count).
	Count int64 `yaml:"count,omitempty"`

	// Income and Expense are decimal amounts such as "12.50" (totals).
	Income  string `yaml:"income,omitempty"`
	Expense string `yaml:"expense,omitempty"`
}

// Assertion type constants.
const (
	AssertBook         = "book"
	AssertBookAbsent   = "book_absent"
	AssertTradeCount   = "trade_count"
	AssertCommandCount = "command_count"
	AssertTotals       = "totals"
)

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

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
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
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		switch {
		case step.Restart && step.Input != "":
			return fmt.Errorf("steps[%d]: input and restart are mutually exclusive", i)
		case step.Restart && step.Expect != nil:
			return fmt.Errorf("steps[%d]: restart takes no expect", i)
		case !step.Restart && step.Input == "":
			return fmt.Errorf("steps[%d]: input is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertBook:
		if a.ISBN == "" {
			return fmt.Errorf("assertions[%d]: isbn is required for book", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for book", index)
		}
	case AssertBookAbsent:
		if a.ISBN == "" {
			return fmt.Errorf("assertions[%d]: isbn is required for book_absent", index)
		}
	case AssertTradeCount, AssertCommandCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertTotals:
		if a.Income == "" || a.Expense == "" {
			return fmt.Errorf("assertions[%d]: income and expense are required for totals", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
