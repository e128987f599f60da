package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/verigen/internal/export"
	"github.com/amishk599/verigen/internal/model"
	"github.com/amishk599/verigen/internal/tui"
)

var (
	resultsLimit     int
	resultsOlderThan time.Duration
	resultsExport    outputFlags
)

var resultsCmd = &cobra.Command{
	Use:     "results",
	Aliases: []string{"history"},
	Short:   "Browse saved generation results",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent results, newest first",
	RunE:  runResultsList,
}

var resultsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Render a result as markdown (default: latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runResultsShow,
}

var resultsViewCmd = &cobra.Command{
	Use:   "view [id]",
	Short: "Open a result in the split-pane viewer (default: latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runResultsView,
}

var resultsExportCmd = &cobra.Command{
	Use:   "export [id]",
	Short: "Write a result's files to disk (default: latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runResultsExport,
}

var resultsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete results older than --older-than",
	RunE:  runResultsPrune,
}

func init() {
	resultsListCmd.Flags().IntVarP(&resultsLimit, "limit", "n", 20, "maximum number of results (0 for all)")
	resultsExport.register(resultsExportCmd)
	resultsPruneCmd.Flags().DurationVar(&resultsOlderThan, "older-than", 30*24*time.Hour, "age of the oldest result to keep")

	resultsCmd.AddCommand(resultsListCmd, resultsShowCmd, resultsViewCmd, resultsExportCmd, resultsPruneCmd)
	rootCmd.AddCommand(resultsCmd)
}

// resolveResult loads the result named by args, or the latest one.
func resolveResult(ctx context.Context, a *app, args []string) (model.Result, error) {
	if len(args) == 1 && args[0] != "latest" {
		return a.store.GetResult(ctx, args[0])
	}

	id, ok, err := a.sess.LatestResultID(ctx)
	if err != nil {
		return model.Result{}, err
	}
	if ok {
		r, err := a.store.GetResult(ctx, id)
		if !errors.Is(err, model.ErrNotFound) {
			return r, err
		}
	}
	return a.store.LatestResult(ctx)
}

func runResultsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, setupLogger(debug))
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.store.ListResults(ctx, resultsLimit)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No results yet.")
		return nil
	}

	fmt.Printf("%-36s  %-16s  %-10s  %-10s  %s\n", "ID", "Created", "Source", "Provider", "Description")
	fmt.Println(strings.Repeat("─", 110))
	for _, r := range results {
		fmt.Printf("%-36s  %-16s  %-10s  %-10s  %s\n",
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Source,
			r.Provider,
			truncate(r.Description, 40),
		)
	}
	fmt.Printf("\nShowing %d result(s)\n", len(results))
	return nil
}

func runResultsShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, setupLogger(debug))
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := resolveResult(ctx, a, args)
	if err != nil {
		return err
	}
	out, err := export.RenderMarkdown(r, 100)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

func runResultsView(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, silentLogger())
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := resolveResult(ctx, a, args)
	if err != nil {
		return err
	}
	return tui.RunResultViewer(r, a.cfg.Output.Dir)
}

func runResultsExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, setupLogger(debug))
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := resolveResult(ctx, a, args)
	if err != nil {
		return err
	}
	if resultsExport.dir == "" {
		resultsExport.dir = a.cfg.Output.Dir
	}
	_, err = resultsExport.write(os.Stdout, r)
	return err
}

func runResultsPrune(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, setupLogger(debug))
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.store.PruneResults(ctx, resultsOlderThan)
	if err != nil {
		return err
	}
	fmt.Printf("Pruned %d result(s) older than %s.\n", n, resultsOlderThan)
	return nil
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
