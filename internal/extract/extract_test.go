package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestArtifacts(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     Code
	}{
		{
			name:     "markers",
			response: "MODULE_CODE_START\nA\nMODULE_CODE_END\nTESTBENCH_CODE_START\nB\nTESTBENCH_CODE_END",
			want:     Code{Module: "A", Testbench: "B", Strategy: StrategyMarkers},
		},
		{
			name: "markers with surrounding prose and fences inside",
			response: "Here is your design.\n\nMODULE_CODE_START\n```verilog\nmodule m; endmodule\n```\nMODULE_CODE_END\n\n" +
				"TESTBENCH_CODE_START\nmodule tb; endmodule\nTESTBENCH_CODE_END\nGood luck!",
			want: Code{
				Module:    "```verilog\nmodule m; endmodule\n```",
				Testbench: "module tb; endmodule",
				Strategy:  StrategyMarkers,
			},
		},
		{
			name:     "markers take the first pair",
			response: "MODULE_CODE_START a MODULE_CODE_END MODULE_CODE_START b MODULE_CODE_END TESTBENCH_CODE_START t TESTBENCH_CODE_END",
			want:     Code{Module: "a", Testbench: "t", Strategy: StrategyMarkers},
		},
		{
			name:     "fenced verilog blocks",
			response: "```verilog\nM\n```\nand the testbench:\n```verilog\nT\n```",
			want:     Code{Module: "M", Testbench: "T", Strategy: StrategyFenced},
		},
		{
			name:     "fenced systemverilog and untagged blocks",
			response: "```systemverilog\nmodule m; endmodule\n```\n```\nmodule tb; endmodule\n```",
			want:     Code{Module: "module m; endmodule", Testbench: "module tb; endmodule", Strategy: StrategyFenced},
		},
		{
			name:     "only module marker falls back to fences",
			response: "MODULE_CODE_START\nX\nMODULE_CODE_END\n```verilog\nM\n```\n```verilog\nT\n```",
			want:     Code{Module: "M", Testbench: "T", Strategy: StrategyFenced},
		},
		{
			name:     "unterminated marker falls back to unparsed",
			response: "MODULE_CODE_START\nmodule m;\nTESTBENCH_CODE_START\nmodule tb;",
			want: Code{
				Module:    "MODULE_CODE_START\nmodule m;\nTESTBENCH_CODE_START\nmodule tb;",
				Testbench: TestbenchParseFailed,
				Strategy:  StrategyUnparsed,
			},
		},
		{
			name:     "single fenced block is not split",
			response: "```verilog\nmodule m; endmodule\n```",
			want: Code{
				Module:    "```verilog\nmodule m; endmodule\n```",
				Testbench: TestbenchParseFailed,
				Strategy:  StrategyUnparsed,
			},
		},
		{
			name:     "unstructured text",
			response: "hello",
			want:     Code{Module: "hello", Testbench: TestbenchParseFailed, Strategy: StrategyUnparsed},
		},
		{
			name:     "empty response",
			response: "",
			want:     Code{Module: NoModuleCode, Testbench: TestbenchParseFailed, Strategy: StrategyUnparsed},
		},
		{
			name:     "whitespace response is kept verbatim",
			response: " \n\t ",
			want:     Code{Module: " \n\t ", Testbench: TestbenchParseFailed, Strategy: StrategyUnparsed},
		},
		{
			name:     "empty marker bodies get placeholders",
			response: "MODULE_CODE_START\n\nMODULE_CODE_END TESTBENCH_CODE_START TESTBENCH_CODE_END",
			want:     Code{Module: NoModuleCode, Testbench: NoTestbenchCode, Strategy: StrategyMarkers},
		},
		{
			name:     "empty fenced blocks get placeholders",
			response: "```verilog\n```\n```verilog\n```",
			want:     Code{Module: NoModuleCode, Testbench: NoTestbenchCode, Strategy: StrategyFenced},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Artifacts(tt.response)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Artifacts() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestArtifacts_Deterministic(t *testing.T) {
	in := "```verilog\nM\n```\n```verilog\nT\n```"
	if diff := cmp.Diff(Artifacts(in), Artifacts(in)); diff != "" {
		t.Errorf("repeated calls differ:\n%s", diff)
	}
}
