package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lvillar/formlayout/mcp"
)

var validateCmd = &cobra.Command{
	Use:   "validate [template...]",
	Short: "Check that templates lay out under both themes",
	Long: `Validate parses each template and lays it out with the basic and the
styled theme. Overlapping fields, sections running off the page and invalid
variants are reported. Without arguments the configured template is checked.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{cfg.Render.Template}
	}
	var failed []error
	for _, ref := range args {
		doc, err := loadDocument(ref)
		if err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", ref, err))
			continue
		}
		ok := true
		for _, theme := range []string{"basic", "styled"} {
			d := *doc
			d.Theme = theme
			if _, err := mcp.Manifest(cmd.Context(), &d, nil); err != nil {
				failed = append(failed, fmt.Errorf("%s (%s): %w", ref, theme, err))
				ok = false
			}
		}
		if ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", ref)
		}
	}
	return errors.Join(failed...)
}
