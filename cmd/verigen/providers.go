package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/verigen/internal/catalog"
	"github.com/amishk599/verigen/internal/model"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List supported providers and models",
	RunE:  runProviders,
}

func init() {
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	current := cfg.LLM.Target()

	fmt.Printf("%-12s %-38s %s\n", "Provider", "Model", "Name")
	fmt.Println(strings.Repeat("─", 80))

	models := 0
	for _, p := range catalog.Providers {
		for i, m := range p.Models {
			name := m.DisplayName
			if i == 0 {
				name += " (default)"
			}
			marker := " "
			if p.Name == current.Provider && m.ID == current.Model {
				marker = "*"
			}
			fmt.Printf("%-12s %-38s %s %s\n", p.Name, m.ID, name, marker)
			models++
		}
		fmt.Printf("%-12s %-38s %s\n", "", model.CustomModelID, "any model name via --custom-model")
	}

	fmt.Printf("\nTotal: %d providers, %d models (* = configured)\n", len(catalog.Providers), models)
	return nil
}
