package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amishk599/verigen/internal/catalog"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "List coding styles, testbench types, feature ids and example circuits",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Coding styles (--style):")
		for _, o := range catalog.CodingStyles {
			fmt.Printf("  %-22s %s\n", o.Value, o.Label)
		}

		fmt.Println("\nTestbench types (--testbench):")
		for _, o := range catalog.TestbenchTypes {
			fmt.Printf("  %-22s %s\n", o.Value, o.Label)
		}

		fmt.Println("\nModule features (--module-features):")
		for _, f := range catalog.ModuleFeatures {
			fmt.Printf("  %-22s %-28s %s\n", f.ID, f.Label, f.Description)
		}

		fmt.Println("\nTestbench features (--testbench-features):")
		for _, f := range catalog.TestbenchFeatures {
			fmt.Printf("  %-22s %-28s %s\n", f.ID, f.Label, f.Description)
		}

		fmt.Println("\nExample circuits:")
		for _, e := range catalog.ExampleCircuits {
			fmt.Printf("  %s\n", e)
		}
	},
}

func init() {
	rootCmd.AddCommand(featuresCmd)
}
