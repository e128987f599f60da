package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/verigen/internal/ai"
	"github.com/amishk599/verigen/internal/catalog"
	"github.com/amishk599/verigen/internal/export"
	"github.com/amishk599/verigen/internal/model"
	"github.com/amishk599/verigen/internal/session"
	"github.com/amishk599/verigen/internal/tui"
)

var (
	genRequest requestFlags
	genTarget  targetFlags
	genOutput  outputFlags
	genReplay  string
	genView    bool
	genPick    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [description...]",
	Short: "Generate a Verilog module and testbench",
	Long: "Builds the prompt from the description and options, sends it to the selected provider " +
		"and prints the module and testbench. The result is saved to the history.",
	Example: `  verigen generate "8-bit ripple carry adder"
  verigen generate -p openai -m gpt-4o --testbench self_checking "traffic light FSM"
  verigen generate --view --from-draft
  verigen generate --replay response.txt "4-bit counter"`,
	RunE: runGenerate,
}

func init() {
	genRequest.register(generateCmd)
	genTarget.register(generateCmd)
	genOutput.register(generateCmd)
	generateCmd.Flags().StringVar(&genReplay, "replay", "", "use a saved model response from this file instead of calling a provider")
	generateCmd.Flags().BoolVar(&genView, "view", false, "show a spinner while generating, then open the result viewer")
	generateCmd.Flags().BoolVarP(&genPick, "interactive", "i", false, "pick the provider and model interactively")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := setupLogger(debug)
	if genView || genPick {
		logger = silentLogger()
	}

	a, err := newApp(ctx, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	base, target := a.cfg.Defaults, a.cfg.LLM.Target()
	if genRequest.fromDraft {
		draft, ok, err := a.sess.LoadDraft(ctx)
		if err != nil {
			return err
		}
		if ok {
			base, target = draft.Request, draft.Target()
		}
	}

	req, err := genRequest.request(cmd, base, args)
	if err != nil {
		return err
	}
	target = genTarget.target(target)

	if genPick {
		picked, ok, err := pickTarget(ctx, a.sess)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		target = picked
	}

	var replay ai.LLMProvider
	if genReplay != "" {
		data, err := readInput(genReplay)
		if err != nil {
			return fmt.Errorf("read replay response: %w", err)
		}
		replay = ai.NewReplayProvider(string(data))
	}

	run := func(ctx context.Context) (model.Result, error) {
		if replay != nil {
			return a.gen.GenerateWith(ctx, replay, req, target)
		}
		return a.gen.Generate(ctx, req, target)
	}

	var result model.Result
	if genView {
		label := fmt.Sprintf("Generating with %s (%s)...", target.Provider, catalog.ModelDisplayName(target.ModelName()))
		result, err = tui.RunLoader(ctx, label, run)
	} else {
		result, err = run(ctx)
	}
	if errors.Is(err, tui.ErrCancelled) {
		fmt.Fprintln(os.Stderr, "Generation cancelled.")
		return nil
	}
	if result.ID == "" {
		return err
	}

	if genView {
		if viewErr := tui.RunResultViewer(result, outputDir(a)); viewErr != nil {
			return viewErr
		}
		return err
	}

	wrote, writeErr := genOutput.write(os.Stderr, result)
	if writeErr != nil {
		return writeErr
	}
	if !wrote {
		fmt.Println(export.CombinedFile(result))
	}
	return err
}

// outputDir is where the viewer saves files: --out when given, otherwise the
// configured output directory.
func outputDir(a *app) string {
	if genOutput.dir != "" {
		return genOutput.dir
	}
	return a.cfg.Output.Dir
}

func pickTarget(ctx context.Context, sess *session.Session) (model.Target, bool, error) {
	hasKey := make(map[string]bool, len(catalog.Providers))
	for _, p := range catalog.Providers {
		_, ok, err := sess.APIKey(ctx, p.Name)
		if err != nil {
			return model.Target{}, false, err
		}
		hasKey[p.Name] = ok
	}
	return tui.RunModelPicker(catalog.Providers, hasKey)
}
