package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/extsort/internal/config"
)

func newCategoriesCommand(f *rootFlags, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show the effective extension-to-category table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return exitWith(exitFailed, "Failed to read current directory: %v", err)
			}
			eff, err := config.LoadEffective(cwd, config.CLIArgs{ConfigFile: f.configFile})
			if err != nil {
				return exitWith(exitFailed, "Configuration error: %v", err)
			}
			fmt.Fprintln(stdout, renderCategories(eff.Categories, eff.Others))
			return nil
		},
	}
}
