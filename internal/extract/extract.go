// Package extract splits a raw model response into module and testbench code.
package extract

import (
	"regexp"
	"strings"
)

// Placeholder comments substituted when real code is unavailable.
const (
	NoModuleCode         = "// No module code generated"
	NoTestbenchCode      = "// No testbench code generated"
	TestbenchParseFailed = "// Testbench parsing failed - please check the module code above"
)

// Strategy names the extraction tier that produced a Code.
type Strategy string

const (
	StrategyMarkers  Strategy = "markers"  // MODULE_CODE_START/TESTBENCH_CODE_START markers
	StrategyFenced   Strategy = "fenced"   // second and fourth segment of a fence split
	StrategyUnparsed Strategy = "unparsed" // whole response treated as module code
)

var (
	moduleMarkerRegex    = regexp.MustCompile(`(?s)MODULE_CODE_START\s*(.*?)\s*MODULE_CODE_END`)
	testbenchMarkerRegex = regexp.MustCompile(`(?s)TESTBENCH_CODE_START\s*(.*?)\s*TESTBENCH_CODE_END`)
	codeFenceRegex       = regexp.MustCompile("```(?:verilog|systemverilog)?")
)

// Code is the module/testbench pair recovered from a response.
type Code struct {
	Module    string
	Testbench string
	Strategy  Strategy
}

// Artifacts extracts module and testbench code from response. It tries the
// marker pair first, then fenced code blocks, then falls back to treating the
// whole response as module code. It never fails; missing pieces are replaced
// by placeholder comments.
//
// The fenced tier only looks at the first two blocks. A response with a single
// fenced block is not split and ends up in the unparsed tier.
func Artifacts(response string) Code {
	code := extract(response)
	if code.Module == "" {
		code.Module = NoModuleCode
	}
	if code.Testbench == "" {
		code.Testbench = NoTestbenchCode
	}
	return code
}

func extract(response string) Code {
	moduleMatch := moduleMarkerRegex.FindStringSubmatch(response)
	testbenchMatch := testbenchMarkerRegex.FindStringSubmatch(response)
	if moduleMatch != nil && testbenchMatch != nil {
		return Code{
			Module:    strings.TrimSpace(moduleMatch[1]),
			Testbench: strings.TrimSpace(testbenchMatch[1]),
			Strategy:  StrategyMarkers,
		}
	}

	segments := codeFenceRegex.Split(response, -1)
	if len(segments) >= 4 {
		return Code{
			Module:    strings.TrimSpace(segments[1]),
			Testbench: strings.TrimSpace(segments[3]),
			Strategy:  StrategyFenced,
		}
	}

	return Code{
		Module:    response,
		Testbench: TestbenchParseFailed,
		Strategy:  StrategyUnparsed,
	}
}
