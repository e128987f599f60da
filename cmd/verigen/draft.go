package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Inspect or clear the saved generation form",
}

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved draft as YAML",
	RunE:  runDraftShow,
}

var draftClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the saved draft",
	RunE:  runDraftClear,
}

func init() {
	draftCmd.AddCommand(draftShowCmd, draftClearCmd)
	rootCmd.AddCommand(draftCmd)
}

func runDraftShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, setupLogger(debug))
	if err != nil {
		return err
	}
	defer a.Close()

	draft, ok, err := a.sess.LoadDraft(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("No saved draft.")
		return nil
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(draft)
}

func runDraftClear(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, setupLogger(debug))
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.sess.ClearDraft(ctx); err != nil {
		return err
	}
	fmt.Println("Draft cleared.")
	return nil
}
