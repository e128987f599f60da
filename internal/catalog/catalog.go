// Package catalog holds the static tables the prompt builder and the UI
// layers render from: feature labels, style sentences, providers and models.
package catalog

import "github.com/amishk599/verigen/internal/model"

// Feature is one selectable generation option.
type Feature struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// ModuleFeatures lists the module options in display order.
var ModuleFeatures = []Feature{
	{ID: "comments", Label: "Detailed Comments", Description: "Add comprehensive comments explaining the logic"},
	{ID: "parameters", Label: "Parameterized Design", Description: "Use parameters for configurable widths and values"},
	{ID: "reset", Label: "Reset Logic", Description: "Include reset functionality where appropriate"},
	{ID: "clock_enable", Label: "Clock Enable", Description: "Add clock enable signals for sequential circuits"},
	{ID: "error_handling", Label: "Error Handling", Description: "Include basic error detection and handling"},
	{ID: "synthesis_directives", Label: "Synthesis Directives", Description: "Add synthesis-friendly coding practices"},
}

// TestbenchFeatures lists the testbench options in display order.
var TestbenchFeatures = []Feature{
	{ID: "clock_generation", Label: "Clock Generation", Description: "Generate clock signals for sequential circuits"},
	{ID: "reset_sequence", Label: "Reset Sequence", Description: "Include proper reset initialization"},
	{ID: "test_vectors", Label: "Comprehensive Test Vectors", Description: "Test all possible input combinations"},
	{ID: "edge_cases", Label: "Edge Case Testing", Description: "Test boundary conditions and edge cases"},
	{ID: "timing_checks", Label: "Timing Verification", Description: "Verify setup and hold times"},
	{ID: "coverage_analysis", Label: "Coverage Analysis", Description: "Include coverage collection statements"},
	{ID: "waveform_dump", Label: "Waveform Dump", Description: "Generate VCD files for waveform viewing"},
	{ID: "assertions", Label: "SystemVerilog Assertions", Description: "Add SVA assertions for verification"},
}

var (
	moduleLabels    = labelIndex(ModuleFeatures)
	testbenchLabels = labelIndex(TestbenchFeatures)
)

func labelIndex(features []Feature) map[string]string {
	m := make(map[string]string, len(features))
	for _, f := range features {
		m[f.ID] = f.Label
	}
	return m
}

// ModuleFeatureLabel returns the label for a module feature id, or the id
// itself when it is not in the catalog.
func ModuleFeatureLabel(id string) string {
	if label, ok := moduleLabels[id]; ok {
		return label
	}
	return id
}

// TestbenchFeatureLabel returns the label for a testbench feature id, or the
// id itself when it is not in the catalog.
func TestbenchFeatureLabel(id string) string {
	if label, ok := testbenchLabels[id]; ok {
		return label
	}
	return id
}

// IsModuleFeature reports whether id is a known module feature.
func IsModuleFeature(id string) bool {
	_, ok := moduleLabels[id]
	return ok
}

// IsTestbenchFeature reports whether id is a known testbench feature.
func IsTestbenchFeature(id string) bool {
	_, ok := testbenchLabels[id]
	return ok
}

// CodingStyleText is the prompt sentence for each coding style.
var CodingStyleText = map[model.CodingStyle]string{
	model.StyleBehavioral: "Use behavioral modeling with always blocks, if-else statements, and case statements",
	model.StyleStructural: "Use structural modeling with gate-level instantiation and module connections",
	model.StyleMixed:      "Use a combination of behavioral and structural modeling as appropriate",
}

// TestbenchTypeText is the prompt sentence for each testbench type.
var TestbenchTypeText = map[model.TestbenchType]string{
	model.TestbenchBasic:         "Create a basic testbench with simple stimulus patterns",
	model.TestbenchComprehensive: "Create a comprehensive testbench that tests all possible input combinations",
	model.TestbenchSelfChecking:  "Create a self-checking testbench with automated verification and assertions",
}

// Option is a selectable enum value with its menu label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CodingStyles lists the coding styles in menu order.
var CodingStyles = []Option{
	{Value: string(model.StyleBehavioral), Label: "Behavioral (always blocks, if-else)"},
	{Value: string(model.StyleStructural), Label: "Structural (gate-level instantiation)"},
	{Value: string(model.StyleMixed), Label: "Mixed (behavioral + structural)"},
}

// TestbenchTypes lists the testbench types in menu order.
var TestbenchTypes = []Option{
	{Value: string(model.TestbenchBasic), Label: "Basic (simple stimulus)"},
	{Value: string(model.TestbenchComprehensive), Label: "Comprehensive (all test cases)"},
	{Value: string(model.TestbenchSelfChecking), Label: "Self-Checking (automated verification)"},
}

// DefaultRequest returns the preferences a fresh form starts with.
func DefaultRequest() model.GenerationRequest {
	return model.GenerationRequest{
		CodingStyle:       model.StyleBehavioral,
		TestbenchType:     model.TestbenchComprehensive,
		ModuleFeatures:    []string{"comments", "parameters"},
		TestbenchFeatures: []string{"clock_generation", "test_vectors", "waveform_dump"},
	}
}

// ExampleCircuits are sample descriptions offered to new users.
var ExampleCircuits = []string{
	"4-to-1 multiplexer using case statement",
	"8-bit ripple carry adder",
	"D flip-flop with asynchronous reset",
	"3-to-8 decoder with enable",
	"4-bit counter with load and reset",
	"Simple ALU with 4 operations",
	"Shift register (SISO, SIPO, PISO, PIPO)",
	"Traffic light controller FSM",
}
