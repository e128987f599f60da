// Package export turns a generation result into files and reports.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/amishk599/verigen/internal/model"
)

// File names written by WriteFiles.
const (
	ModuleFileName    = "module.v"
	TestbenchFileName = "testbench.v"
	CombinedFileName  = "verilog_files.v"
	ReportFileName    = "verilog_report.md"
)

// Files selects which outputs WriteFiles produces.
type Files uint8

const (
	Module Files = 1 << iota
	Testbench
	Combined
	Report

	// Sources is the module and testbench as separate files.
	Sources = Module | Testbench
)

const banner = "// ============================================"

// CombinedFile returns module and testbench in one file, each under a banner
// naming the file it would otherwise be saved as.
func CombinedFile(r model.Result) string {
	var b strings.Builder
	b.WriteString(banner + "\n// MODULE FILE (" + ModuleFileName + ")\n" + banner + "\n\n")
	b.WriteString(r.ModuleCode)
	b.WriteString("\n\n" + banner + "\n// TESTBENCH FILE (" + TestbenchFileName + ")\n" + banner + "\n\n")
	b.WriteString(r.TestbenchCode)
	return b.String()
}

// Markdown returns a report with the description followed by both files as
// fenced verilog blocks.
func Markdown(r model.Result) string {
	var b strings.Builder
	b.WriteString("# Generated Verilog Code\n\n")
	b.WriteString(r.Description + "\n\n")
	if r.Provider != "" {
		fmt.Fprintf(&b, "_Provider: %s, model: %s_\n\n", r.Provider, r.Model)
	}
	b.WriteString("## " + ModuleFileName + "\n\n```verilog\n" + r.ModuleCode + "\n```\n\n")
	b.WriteString("## " + TestbenchFileName + "\n\n```verilog\n" + r.TestbenchCode + "\n```\n")
	return b.String()
}

// RenderMarkdown renders Markdown(r) for a terminal of the given width.
func RenderMarkdown(r model.Result, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := renderer.Render(Markdown(r))
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}

// WriteFiles writes the selected outputs into dir, creating it if needed, and
// returns the paths written in a stable order.
func WriteFiles(dir string, r model.Result, which Files) ([]string, error) {
	if which == 0 {
		return nil, fmt.Errorf("write files: nothing selected")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	outputs := []struct {
		flag    Files
		name    string
		content func() string
	}{
		{Module, ModuleFileName, func() string { return r.ModuleCode }},
		{Testbench, TestbenchFileName, func() string { return r.TestbenchCode }},
		{Combined, CombinedFileName, func() string { return CombinedFile(r) }},
		{Report, ReportFileName, func() string { return Markdown(r) }},
	}

	var written []string
	for _, o := range outputs {
		if which&o.flag == 0 {
			continue
		}
		path := filepath.Join(dir, o.name)
		if err := os.WriteFile(path, []byte(o.content()), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", o.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// ParseFiles maps names such as "module", "testbench", "combined", "report",
// "sources" and "all" to a Files set.
func ParseFiles(names []string) (Files, error) {
	var f Files
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "module":
			f |= Module
		case "testbench":
			f |= Testbench
		case "combined":
			f |= Combined
		case "report":
			f |= Report
		case "sources":
			f |= Sources
		case "all":
			f |= Module | Testbench | Combined | Report
		default:
			return 0, fmt.Errorf("unknown output %q (want module, testbench, combined, report, sources or all)", n)
		}
	}
	return f, nil
}
