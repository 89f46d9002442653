package main

import (
	"github.com/spf13/cobra"

	"github.com/lvillar/formlayout/manifest"
	"github.com/lvillar/formlayout/mcp"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "Write the field manifest of a template",
	Long: `Fields lays out the template and lists every field with its page
rectangle. The manifest goes to stdout unless --output names a file; the
format defaults to the file extension, or JSON.`,
	RunE: runFields,
}

func init() {
	fieldsCmd.Flags().StringP("format", "f", "", "json or xlsx")
	fieldsCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(fieldsCmd)
}

func runFields(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	f := manifest.FormatJSON
	switch {
	case format != "":
		var err error
		if f, err = manifest.FormatOf(format); err != nil {
			return err
		}
	case output != "":
		if g, err := manifest.FormatOf(output); err == nil {
			f = g
		}
	}

	doc, err := loadDocument(cfg.Render.Template)
	if err != nil {
		return err
	}
	assets, err := assetSource()
	if err != nil {
		return err
	}
	m, err := mcp.Manifest(cmd.Context(), doc, assets)
	if err != nil {
		return err
	}
	if output == "" {
		return m.Write(cmd.OutOrStdout(), f)
	}
	return writeManifest(m, output, f)
}
