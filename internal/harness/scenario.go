package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pend/internal/ident"
)

// Scenario defines a sequence of store and chain operations with the
// outcomes they must produce.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Backend selects the store: "memory" (default) or "file".
	Backend string `yaml:"backend,omitempty"`

	// Pointer is the pointer name the chain moves. Defaults to the head pointer.
	Pointer string `yaml:"pointer,omitempty"`

	// Steps run in order against one store.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and store.
	// Supported types: head, blob_count, trace_order, trace_count
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one operation.
type Step struct {
	// Op is one of load, save, undo, put, get.
	Op string `yaml:"op"`

	// ID is the explicit snapshot for load and the blob for get.
	ID string `yaml:"id,omitempty"`

	// Data is the payload for save and put.
	Data string `yaml:"data,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, the step is only required to succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the outcome of a step. Unset fields are not checked.
type Expect struct {
	// ID is the expected snapshot or blob id.
	ID string `yaml:"id,omitempty"`

	// Previous is the expected predecessor of the returned snapshot.
	Previous string `yaml:"previous,omitempty"`

	// Payload is the expected snapshot payload or blob bytes.
	Payload *string `yaml:"payload,omitempty"`

	// Error names the expected failure: exhausted, not_found,
	// invalid_id, broken_chain or corrupt.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "head": pointer designates ID ("" means unset)
	// - "blob_count": store holds exactly Count blobs
	// - "trace_order": recorded ops equal Ops
	// - "trace_count": Op recorded exactly Count times
	Type string `yaml:"type"`

	ID    string   `yaml:"id,omitempty"`
	Op    string   `yaml:"op,omitempty"`
	Ops   []string `yaml:"ops,omitempty"`
	Count int      `yaml:"count,omitempty"`
}

// Step operations.
const (
	OpLoad = "load"
	OpSave = "save"
	OpUndo = "undo"
	OpPut  = "put"
	OpGet  = "get"
)

// Assertion type constants.
const (
	AssertHead       = "head"
	AssertBlobCount  = "blob_count"
	AssertTraceOrder = "trace_order"
	AssertTraceCount = "trace_count"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
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

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
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

	switch s.Backend {
	case "", BackendMemory, BackendFile:
	default:
		return fmt.Errorf("unknown backend %q", s.Backend)
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateStep validates a single step based on its op.
func validateStep(index int, s *Step) error {
	switch s.Op {
	case OpLoad, OpSave, OpUndo, OpPut:
	case OpGet:
		if s.ID == "" {
			return fmt.Errorf("steps[%d]: id is required for get", index)
		}
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}

	if s.Expect != nil && s.Expect.Error != "" {
		if _, ok := expectedErrors[s.Expect.Error]; !ok {
			return fmt.Errorf("steps[%d].expect: unknown error %q", index, s.Expect.Error)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case AssertHead:
		if a.ID != "" && !ident.Validate(a.ID) {
			return fmt.Errorf("assertions[%d]: id %q is not a content id", index, a.ID)
		}
	case AssertBlobCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for blob_count", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
