package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tuanknguyen/dynagen/internal/cli/ui"
	"github.com/tuanknguyen/dynagen/internal/schema"
	"github.com/tuanknguyen/dynagen/internal/validate"
)

var validateNoColor bool

func init() {
	validateCmd.Flags().BoolVar(&validateNoColor, "no-color", false, "Disable colored output")
}

var validateCmd = &cobra.Command{
	Use:   "validate [schema file]",
	Short: "Validate a schema document without generating code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read schema: %w", err)
		}

		doc, err := schema.Load(data)
		if err != nil {
			result := validate.FromDecodeError(err)
			if result == nil {
				return err
			}
			if werr := ui.WriteResult(os.Stdout, result, ui.ReportOptions{NoColor: validateNoColor}); werr != nil {
				return werr
			}
			os.Exit(1)
		}

		result := validate.Schema(doc)
		if err := ui.WriteResult(os.Stdout, result, ui.ReportOptions{NoColor: validateNoColor}); err != nil {
			return err
		}
		if !result.IsValid {
			os.Exit(1)
		}
		return nil
	},
}
