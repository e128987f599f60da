package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/amishk599/verigen/internal/catalog"
	"github.com/amishk599/verigen/internal/model"
)

//go:embed prompts/verilog_generation.md
var verilogPromptRaw string

// VerilogTemplate is the parsed prompt template for module/testbench generation.
// Parsed once at package init; reused on every Build call.
var VerilogTemplate = template.Must(template.New("verilog_generation").Parse(verilogPromptRaw))

const (
	// NoDescription replaces a blank circuit description.
	NoDescription = "No circuit description provided."
	// StandardPractices replaces an empty module feature list.
	StandardPractices = "- Use standard Verilog coding practices"
)

// promptData is what the template renders; every field is already resolved text.
type promptData struct {
	Description            string
	CodingStyle            string
	ModuleLines            []string
	TestbenchType          string
	TestbenchLines         []string
	AdditionalRequirements string
}

// Build renders the generation prompt for req. It is deterministic and never
// modifies req. Unknown feature ids are rendered as-is; style and testbench
// type must already be valid enum members.
func Build(req model.GenerationRequest) string {
	var buf bytes.Buffer
	if err := VerilogTemplate.Execute(&buf, newPromptData(req)); err != nil {
		// Only a broken embedded template can fail here.
		panic(fmt.Sprintf("render verilog prompt: %v", err))
	}
	return strings.TrimSpace(buf.String())
}

func newPromptData(req model.GenerationRequest) promptData {
	d := promptData{
		Description:   req.CircuitDescription,
		CodingStyle:   catalog.CodingStyleText[req.CodingStyle],
		TestbenchType: catalog.TestbenchTypeText[req.TestbenchType],
	}
	if strings.TrimSpace(d.Description) == "" {
		d.Description = NoDescription
	}

	for _, id := range req.ModuleFeatures {
		d.ModuleLines = append(d.ModuleLines, "- "+catalog.ModuleFeatureLabel(id))
	}
	if len(d.ModuleLines) == 0 {
		d.ModuleLines = []string{StandardPractices}
	}

	for _, id := range req.TestbenchFeatures {
		d.TestbenchLines = append(d.TestbenchLines, "- "+catalog.TestbenchFeatureLabel(id))
	}

	if strings.TrimSpace(req.AdditionalRequirements) != "" {
		d.AdditionalRequirements = req.AdditionalRequirements
	}
	return d
}

// Summary is the at-a-glance view of a request shown next to the prompt preview.
type Summary struct {
	CircuitSpecified      bool                `json:"circuit_specified"`
	CodingStyle           model.CodingStyle   `json:"coding_style"`
	TestbenchType         model.TestbenchType `json:"testbench_type"`
	ModuleFeatureCount    int                 `json:"module_feature_count"`
	TestbenchFeatureCount int                 `json:"testbench_feature_count"`
}

// Summarize returns the preview badges for req.
func Summarize(req model.GenerationRequest) Summary {
	return Summary{
		CircuitSpecified:      strings.TrimSpace(req.CircuitDescription) != "",
		CodingStyle:           req.CodingStyle,
		TestbenchType:         req.TestbenchType,
		ModuleFeatureCount:    len(req.ModuleFeatures),
		TestbenchFeatureCount: len(req.TestbenchFeatures),
	}
}

// Badges renders the summary as short labels, one per badge.
func (s Summary) Badges() []string {
	circuit := "Not specified"
	if s.CircuitSpecified {
		circuit = "Specified"
	}
	badges := []string{
		"Circuit: " + circuit,
		"Style: " + string(s.CodingStyle),
		"Testbench: " + string(s.TestbenchType),
	}
	if s.ModuleFeatureCount > 0 {
		badges = append(badges, fmt.Sprintf("%d Module Features", s.ModuleFeatureCount))
	}
	if s.TestbenchFeatureCount > 0 {
		badges = append(badges, fmt.Sprintf("%d Testbench Features", s.TestbenchFeatureCount))
	}
	return badges
}
