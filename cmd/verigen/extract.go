package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/verigen/internal/export"
	"github.com/amishk599/verigen/internal/extract"
	"github.com/amishk599/verigen/internal/model"
)

var (
	extractOutput outputFlags
	extractJSON   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Split a saved model response into module and testbench code",
	Long:  "Reads a raw model response from a file (or stdin when omitted or -) and extracts the module and testbench.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExtract,
}

func init() {
	extractOutput.register(extractCmd)
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "print the extracted code as JSON")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := "-"
	if len(args) == 1 {
		path = args[0]
	}
	data, err := readInput(path)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	code := extract.Artifacts(string(data))

	if extractJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]string{
			"module_code":    code.Module,
			"testbench_code": code.Testbench,
			"strategy":       string(code.Strategy),
		})
	}

	fmt.Fprintf(os.Stderr, "extraction strategy: %s\n", code.Strategy)
	r := model.Result{ModuleCode: code.Module, TestbenchCode: code.Testbench, Strategy: string(code.Strategy)}
	wrote, err := extractOutput.write(os.Stderr, r)
	if err != nil {
		return err
	}
	if !wrote {
		fmt.Println(export.CombinedFile(r))
	}
	return nil
}
