package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/llegregam/isoplot/internal/isodata"
	"github.com/llegregam/isoplot/internal/utils"
)

var (
	templateOut   string
	templateForce bool
)

var templateCmd = &cobra.Command{
	Use:   "template <data.tsv>",
	Short: "Generate the sample metadata template for a measurement file",
	Long: `Reads the measurement file and writes a workbook with one row per sample.
Fill in condition, condition_order, time, number_rep and normalization, then
pass the workbook to "isoplot compute --template".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		p := isodata.NewPipeline(newLogger())
		if err := p.LoadData(args[0]); err != nil {
			return err
		}
		rows, err := p.GenerateTemplate()
		if err != nil {
			return err
		}
		out := templateOut
		if out == "" {
			out = filepath.Join(c.OutputDir, c.TemplateName)
		}
		if _, err := os.Stat(out); err == nil && !templateForce {
			return fmt.Errorf("%s already exists; use --force to overwrite", out)
		}
		if err := utils.EnsureDir(filepath.Dir(out)); err != nil {
			return fmt.Errorf("ensure dir: %w", err)
		}
		if err := isodata.WriteTemplate(out, rows); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Template with %d samples written to %s\n", len(rows), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)
	templateCmd.Flags().StringVar(&templateOut, "out", "", "template path (default <output_dir>/<template_name>)")
	templateCmd.Flags().BoolVar(&templateForce, "force", false, "overwrite an existing template")
}
