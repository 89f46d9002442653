// Command formlayout renders fillable PDF forms from declarative form
// descriptions.
//
// Subcommands:
//
//	render    write one PDF per variant
//	fields    write the field manifest as JSON or XLSX
//	validate  check that descriptions lay out under both themes
//	serve     serve forms over HTTP
//	version   print the version
//
// Settings come from --config, FORMLAYOUT_* environment variables and the
// flags below, in increasing precedence.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	fl "github.com/lvillar/formlayout"
	"github.com/lvillar/formlayout/asset"
	"github.com/lvillar/formlayout/doctpl"
	"github.com/lvillar/formlayout/internal/config"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "formlayout",
	Short: "Generate fillable PDF forms from form descriptions",
	Long: `formlayout lays out sections of labeled fields on a page, adds a header,
footer and variant badge, and writes fillable PDF forms. A template is either
the name of a built-in description (e.g. bewirtung) or the path of a JSON,
YAML or TOML description file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		if t, _ := cmd.Flags().GetString("template"); t != "" {
			c.Render.Template = t
		}
		if th, _ := cmd.Flags().GetString("theme"); th != "" {
			if _, err := fl.ParseFidelity(th); err != nil {
				return fmt.Errorf("--theme: %w", err)
			}
			c.Render.Theme = th
		}
		l, err := c.Logger()
		if err != nil {
			return err
		}
		cfg, logger = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (YAML, JSON or TOML)")
	rootCmd.PersistentFlags().StringP("template", "t", "", "built-in template name or description file")
	rootCmd.PersistentFlags().String("theme", "", "basic or styled; overrides the description")
}

// loadDocument loads the configured template and applies the theme override.
func loadDocument(ref string) (*doctpl.Document, error) {
	doc, err := doctpl.LoadAny(ref)
	if err != nil {
		return nil, err
	}
	if cfg.Render.Theme != "" {
		doc.Theme = cfg.Render.Theme
	}
	return doc, nil
}

func assetSource() (asset.Source, error) {
	return cfg.AssetSource(logger)
}

func renderOptions(assets asset.Source) []doctpl.RenderOption {
	return []doctpl.RenderOption{
		doctpl.WithAssets(assets),
		doctpl.WithLogger(logger),
		doctpl.WithWriterOptions(cfg.WriterOptions(logger)...),
		doctpl.WithCreator(cfg.Render.Creator),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
