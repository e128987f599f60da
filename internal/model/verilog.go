package model

import (
	"context"
	"time"
)

// CodingStyle selects how the generated module should be modeled.
type CodingStyle string

const (
	StyleBehavioral CodingStyle = "behavioral"
	StyleStructural CodingStyle = "structural"
	StyleMixed      CodingStyle = "mixed"
)

// Valid reports whether s is one of the known coding styles.
func (s CodingStyle) Valid() bool {
	switch s {
	case StyleBehavioral, StyleStructural, StyleMixed:
		return true
	}
	return false
}

// TestbenchType selects how thorough the generated testbench should be.
type TestbenchType string

const (
	TestbenchBasic         TestbenchType = "basic"
	TestbenchComprehensive TestbenchType = "comprehensive"
	TestbenchSelfChecking  TestbenchType = "self_checking"
)

// Valid reports whether t is one of the known testbench types.
func (t TestbenchType) Valid() bool {
	switch t {
	case TestbenchBasic, TestbenchComprehensive, TestbenchSelfChecking:
		return true
	}
	return false
}

// GenerationRequest is everything the user chose for one generation attempt.
// Feature slices keep the caller's order; ids outside the catalog are allowed.
type GenerationRequest struct {
	CircuitDescription     string        `json:"circuit_description" yaml:"circuit_description"`
	CodingStyle            CodingStyle   `json:"coding_style" yaml:"coding_style"`
	TestbenchType          TestbenchType `json:"testbench_type" yaml:"testbench_type"`
	ModuleFeatures         []string      `json:"module_features" yaml:"module_features"`
	TestbenchFeatures      []string      `json:"testbench_features" yaml:"testbench_features"`
	AdditionalRequirements string        `json:"additional_requirements" yaml:"additional_requirements"`
}

// Target identifies the provider and model a prompt is sent to.
type Target struct {
	Provider    string `json:"provider" yaml:"provider"`
	Model       string `json:"model" yaml:"model"`
	CustomModel string `json:"custom_model,omitempty" yaml:"custom_model"`
}

// ModelName returns the model identifier to send to the provider,
// substituting the custom name when Model is "custom".
func (t Target) ModelName() string {
	if t.Model == CustomModelID {
		return t.CustomModel
	}
	return t.Model
}

// CustomModelID is the pseudo-model that means "use Target.CustomModel".
const CustomModelID = "custom"

// Source records how a Result's code was produced.
type Source string

const (
	SourceGenerated Source = "generated" // parsed from a provider response
	SourceOffline   Source = "offline"   // provider answered with no content
	SourceError     Source = "error"     // generation failed; placeholder code
)

// Result is the module/testbench pair shown to the user after a generation.
type Result struct {
	ID            string    `json:"id"`
	ModuleCode    string    `json:"module_code"`
	TestbenchCode string    `json:"testbench_code"`
	Description   string    `json:"description"`
	Provider      string    `json:"provider,omitempty"`
	Model         string    `json:"model,omitempty"`
	Strategy      string    `json:"strategy,omitempty"` // extraction tier that produced the code
	Source        Source    `json:"source"`
	CreatedAt     time.Time `json:"created_at"`
}

// KeyValueStore is a string key/value store used for API keys, drafts and
// small pointers. Get reports ok=false for a missing key rather than an error.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// ResultStore keeps generation history.
type ResultStore interface {
	SaveResult(ctx context.Context, r Result) error
	GetResult(ctx context.Context, id string) (Result, error)
	LatestResult(ctx context.Context) (Result, error)
	ListResults(ctx context.Context, limit int) ([]Result, error)
	PruneResults(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Store is the combined persistence surface the CLI and server open once.
type Store interface {
	KeyValueStore
	ResultStore
	Close() error
}
