package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lvillar/formlayout/doctpl"
	"github.com/lvillar/formlayout/manifest"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the variants of a template to PDF files",
	Long: `Render lays out the template once and writes one PDF per variant to
<output-dir>/<template>-<variant>.pdf. Without --variant every declared
variant is written. A failing variant does not stop the others, but the
command exits non-zero.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringSliceP("variant", "v", nil, "variant to render (repeatable; default: all)")
	renderCmd.Flags().StringP("output-dir", "o", "", "output directory (default: render.output_dir)")
	renderCmd.Flags().String("manifest", "", "also write the field manifest: json or xlsx")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	names, _ := cmd.Flags().GetStringSlice("variant")
	dir, _ := cmd.Flags().GetString("output-dir")
	if dir == "" {
		dir = cfg.Render.OutputDir
	}
	manifestFormat, _ := cmd.Flags().GetString("manifest")
	var mf manifest.Format
	if manifestFormat != "" {
		var err error
		if mf, err = manifest.FormatOf(manifestFormat); err != nil {
			return err
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
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	results, err := doctpl.Produce(cmd.Context(), doc, names, renderOptions(assets)...)
	if err != nil {
		return err
	}

	var failed []error
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, fmt.Errorf("variant %q: %w", res.Variant.Name, res.Err))
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("%s-%s.pdf", doc.Name, res.Variant.Name))
		if err := res.Document.Finalize(path); err != nil {
			failed = append(failed, fmt.Errorf("variant %q: %w", res.Variant.Name, err))
			continue
		}
		logger.Info("form written", zap.String("path", path), zap.Int("fields", len(res.Fields)))
		fmt.Fprintln(cmd.OutOrStdout(), path)

		if mf != "" {
			m := manifest.New(doc.Name, res.Variant.Name, doc.Geometry(), res.Fields)
			mpath := filepath.Join(dir, fmt.Sprintf("%s-%s.fields.%s", doc.Name, res.Variant.Name, mf))
			if err := writeManifest(m, mpath, mf); err != nil {
				failed = append(failed, err)
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), mpath)
		}
	}
	return errors.Join(failed...)
}

func writeManifest(m *manifest.Manifest, path string, f manifest.Format) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.Write(out, f); err != nil {
		out.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return out.Close()
}
