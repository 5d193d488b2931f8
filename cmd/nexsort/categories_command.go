package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"nexsort/internal/category"
	"nexsort/internal/config"
)

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	var categoriesPath string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Show the active extension-to-category rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mapping, warn, err := ctx.loadMapping(categoriesPath)
			if err != nil {
				return err
			}
			if warn != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v (using built-in defaults)\n", warn)
			}

			if jsonOut {
				table := make(map[string][]string)
				for _, name := range mapping.Categories() {
					if name == category.Other {
						continue
					}
					table[name] = mapping.Extensions(name)
				}
				return writeJSON(cmd, table)
			}

			rows := make([][]string, 0)
			for _, name := range mapping.Categories() {
				if name == category.Other {
					rows = append(rows, []string{name, "(everything unmatched)"})
					continue
				}
				rows = append(rows, []string{name, strings.Join(mapping.Extensions(name), ", ")})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{
				{title: "Category"},
				{title: "Extensions"},
			}, rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&categoriesPath, "categories", "", "Path to a category mapping JSON file")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the mapping as JSON")

	cmd.AddCommand(newCategoriesInitCommand(ctx))
	return cmd
}

func newCategoriesInitCommand(ctx *commandContext) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default category mapping to a JSON file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				expanded, err := config.ExpandPath(args[0])
				if err != nil {
					return err
				}
				path = expanded
			} else {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				path = cfg.Paths.CategoryFile
			}
			if !overwrite {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --overwrite to replace it)", path)
				}
			}
			if err := category.Defaults().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default category mapping to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}
