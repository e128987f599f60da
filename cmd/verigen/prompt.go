package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/verigen/internal/prompt"
)

var (
	promptRequest requestFlags
	promptSummary bool
)

var promptCmd = &cobra.Command{
	Use:   "prompt [description...]",
	Short: "Print the prompt that would be sent, without calling a provider",
	RunE:  runPrompt,
}

func init() {
	promptRequest.register(promptCmd)
	promptCmd.Flags().BoolVar(&promptSummary, "summary", false, "print the request summary badges to stderr")
	rootCmd.AddCommand(promptCmd)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	base := cfg.Defaults
	if promptRequest.fromDraft {
		a, err := newApp(ctx, setupLogger(debug))
		if err != nil {
			return err
		}
		defer a.Close()
		draft, ok, err := a.sess.LoadDraft(ctx)
		if err != nil {
			return err
		}
		if ok {
			base = draft.Request
		}
	}

	req, err := promptRequest.request(cmd, base, args)
	if err != nil {
		return err
	}

	if promptSummary {
		fmt.Fprintln(os.Stderr, strings.Join(prompt.Summarize(req).Badges(), " | "))
	}
	fmt.Println(prompt.Build(req))
	return nil
}
