package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/verigen/internal/catalog"
	"github.com/amishk599/verigen/internal/export"
	"github.com/amishk599/verigen/internal/model"
)

// requestFlags are the generation form fields shared by generate and prompt.
type requestFlags struct {
	description       string
	descriptionFile   string
	style             string
	testbench         string
	moduleFeatures    []string
	testbenchFeatures []string
	additional        string
	fromDraft         bool
}

func (f *requestFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.description, "description", "d", "", "circuit description (or pass it as arguments)")
	fl.StringVar(&f.descriptionFile, "description-file", "", "read the circuit description from a file (- for stdin)")
	fl.StringVar(&f.style, "style", "", "coding style: behavioral, structural or mixed")
	fl.StringVar(&f.testbench, "testbench", "", "testbench type: basic, comprehensive or self_checking")
	fl.StringSliceVar(&f.moduleFeatures, "module-features", nil, "module feature ids, comma separated (see verigen features)")
	fl.StringSliceVar(&f.testbenchFeatures, "testbench-features", nil, "testbench feature ids, comma separated")
	fl.StringVar(&f.additional, "requirements", "", "additional requirements appended to the prompt")
	fl.BoolVar(&f.fromDraft, "from-draft", false, "start from the saved draft instead of the configured defaults")
}

// request overlays the flags that were set onto base. Positional args, when
// present, are joined into the description.
func (f *requestFlags) request(cmd *cobra.Command, base model.GenerationRequest, args []string) (model.GenerationRequest, error) {
	req := base
	req.ModuleFeatures = append([]string(nil), base.ModuleFeatures...)
	req.TestbenchFeatures = append([]string(nil), base.TestbenchFeatures...)

	fl := cmd.Flags()
	switch {
	case f.descriptionFile != "":
		data, err := readInput(f.descriptionFile)
		if err != nil {
			return req, fmt.Errorf("read description: %w", err)
		}
		req.CircuitDescription = strings.TrimSpace(string(data))
	case fl.Changed("description"):
		req.CircuitDescription = f.description
	case len(args) > 0:
		req.CircuitDescription = strings.Join(args, " ")
	}

	if fl.Changed("style") {
		req.CodingStyle = model.CodingStyle(f.style)
	}
	if fl.Changed("testbench") {
		req.TestbenchType = model.TestbenchType(f.testbench)
	}
	if fl.Changed("module-features") {
		req.ModuleFeatures = f.moduleFeatures
	}
	if fl.Changed("testbench-features") {
		req.TestbenchFeatures = f.testbenchFeatures
	}
	if fl.Changed("requirements") {
		req.AdditionalRequirements = f.additional
	}
	return req, nil
}

// targetFlags select the provider and model for one run.
type targetFlags struct {
	provider    string
	model       string
	customModel string
}

func (f *targetFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.provider, "provider", "p", "", "provider: openai, google, groq or openrouter")
	fl.StringVarP(&f.model, "model", "m", "", "model id (default: the provider's first model)")
	fl.StringVar(&f.customModel, "custom-model", "", "model name to send when --model is custom")
}

func (f *targetFlags) target(base model.Target) model.Target {
	t := base
	if f.provider != "" && f.provider != base.Provider {
		t = model.Target{Provider: f.provider}
		if p, ok := catalog.LookupProvider(f.provider); ok {
			t.Model = p.DefaultModel()
		}
	}
	if f.model != "" {
		t.Model = f.model
	}
	if f.customModel != "" {
		t.CustomModel = f.customModel
		if f.model == "" {
			t.Model = model.CustomModelID
		}
	}
	return t
}

// outputFlags control writing a result to disk.
type outputFlags struct {
	dir   string
	files []string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.dir, "out", "o", "", "write files into this directory instead of printing")
	cmd.Flags().StringSliceVar(&f.files, "files", []string{"sources"}, "outputs to write: module, testbench, combined, report, sources, all")
}

// write saves r when --out was given. It reports false when nothing was
// written and the caller should print instead.
func (f *outputFlags) write(w io.Writer, r model.Result) (bool, error) {
	if f.dir == "" {
		return false, nil
	}
	which, err := export.ParseFiles(f.files)
	if err != nil {
		return false, err
	}
	paths, err := export.WriteFiles(f.dir, r, which)
	if err != nil {
		return false, err
	}
	for _, p := range paths {
		fmt.Fprintln(w, "wrote", p)
	}
	return true, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
