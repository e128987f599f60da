package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/amishk599/verigen/internal/model"
)

func sampleResult() model.Result {
	return model.Result{
		ID:            "r1",
		ModuleCode:    "module adder; endmodule",
		TestbenchCode: "module adder_tb; endmodule",
		Description:   "Generated Verilog code for: adder",
		Provider:      "groq",
		Model:         "llama3-70b-8192",
		Source:        model.SourceGenerated,
	}
}

func TestCombinedFile(t *testing.T) {
	want := `// ============================================
// MODULE FILE (module.v)
// ============================================

module adder; endmodule

// ============================================
// TESTBENCH FILE (testbench.v)
// ============================================

module adder_tb; endmodule`

	if diff := cmp.Diff(want, CombinedFile(sampleResult())); diff != "" {
		t.Errorf("CombinedFile mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleResult())
	for _, want := range []string{
		"Generated Verilog code for: adder",
		"## module.v\n\n```verilog\nmodule adder; endmodule\n```",
		"## testbench.v\n\n```verilog\nmodule adder_tb; endmodule\n```",
		"_Provider: groq, model: llama3-70b-8192_",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("Markdown missing %q:\n%s", want, md)
		}
	}
}

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown(sampleResult(), 60)
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if !strings.Contains(out, "adder_tb") {
		t.Errorf("rendered output missing testbench code:\n%s", out)
	}
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	r := sampleResult()

	paths, err := WriteFiles(dir, r, Sources|Combined)
	if err != nil {
		t.Fatalf("WriteFiles: %v", err)
	}
	want := []string{
		filepath.Join(dir, ModuleFileName),
		filepath.Join(dir, TestbenchFileName),
		filepath.Join(dir, CombinedFileName),
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}

	got, err := os.ReadFile(filepath.Join(dir, ModuleFileName))
	if err != nil || string(got) != r.ModuleCode {
		t.Errorf("module.v = %q, %v", got, err)
	}
	got, _ = os.ReadFile(filepath.Join(dir, CombinedFileName))
	if string(got) != CombinedFile(r) {
		t.Error("combined file content differs from CombinedFile")
	}
	if _, err := os.Stat(filepath.Join(dir, ReportFileName)); !os.IsNotExist(err) {
		t.Error("report written although not selected")
	}
}

func TestWriteFiles_NothingSelected(t *testing.T) {
	if _, err := WriteFiles(t.TempDir(), sampleResult(), 0); err == nil {
		t.Fatal("expected error when no outputs are selected")
	}
}

func TestParseFiles(t *testing.T) {
	tests := []struct {
		in      []string
		want    Files
		wantErr bool
	}{
		{in: []string{"module"}, want: Module},
		{in: []string{"sources"}, want: Module | Testbench},
		{in: []string{"Combined", " report "}, want: Combined | Report},
		{in: []string{"all"}, want: Module | Testbench | Combined | Report},
		{in: nil, want: 0},
		{in: []string{"pdf"}, wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseFiles(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFiles(%v) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFiles(%v) = %b, want %b", tt.in, got, tt.want)
		}
	}
}
