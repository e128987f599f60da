package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/verigen/internal/catalog"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage provider API keys",
}

var keysSetCmd = &cobra.Command{
	Use:   "set <provider> [key]",
	Short: "Store an API key (read from stdin when omitted)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runKeysSet,
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show which providers have a key",
	RunE:  runKeysList,
}

var keysDeleteCmd = &cobra.Command{
	Use:   "delete <provider>",
	Short: "Remove a stored API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeysDelete,
}

func init() {
	keysCmd.AddCommand(keysSetCmd, keysListCmd, keysDeleteCmd)
	rootCmd.AddCommand(keysCmd)
}

func runKeysSet(cmd *cobra.Command, args []string) error {
	provider := args[0]
	p, ok := catalog.LookupProvider(provider)
	if !ok {
		return fmt.Errorf("unknown provider %q", provider)
	}

	var key string
	if len(args) == 2 {
		key = args[1]
	} else {
		fmt.Fprintf(os.Stderr, "Enter your %s API key (get one at %s): ", p.DisplayName, p.KeyURL)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read key: %w", err)
		}
		key = line
	}

	ctx := context.Background()
	a, err := newApp(ctx, setupLogger(debug))
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.sess.SetAPIKey(ctx, provider, key); err != nil {
		return err
	}
	fmt.Printf("Saved %s API key.\n", p.DisplayName)
	return nil
}

func runKeysList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, setupLogger(debug))
	if err != nil {
		return err
	}
	defer a.Close()

	stored, err := a.sess.Providers(ctx)
	if err != nil {
		return err
	}
	isStored := make(map[string]bool, len(stored))
	for _, name := range stored {
		isStored[name] = true
	}

	fmt.Printf("%-12s %s\n", "Provider", "Key")
	fmt.Println(strings.Repeat("─", 30))
	for _, p := range catalog.Providers {
		status := "missing"
		if isStored[p.Name] {
			status = "stored"
		} else if _, ok, err := a.sess.APIKey(ctx, p.Name); err != nil {
			return err
		} else if ok {
			status = "environment"
		}
		fmt.Printf("%-12s %s\n", p.Name, status)
	}
	return nil
}

func runKeysDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, setupLogger(debug))
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.sess.DeleteAPIKey(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted stored key for %s.\n", args[0])
	return nil
}
