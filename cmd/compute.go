package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llegregam/isoplot/internal/export"
	"github.com/llegregam/isoplot/internal/isodata"
	"github.com/llegregam/isoplot/internal/logger"
	"github.com/llegregam/isoplot/internal/metrics"
	"github.com/llegregam/isoplot/internal/plotdata"
	"github.com/llegregam/isoplot/internal/report"
	"github.com/llegregam/isoplot/internal/run"
	"github.com/llegregam/isoplot/internal/utils"
)

var (
	computeTemplate    string
	computeFormats     []string
	computeMetabolites string
	computeConditions  string
	computeTimes       string
	computeValues      []string
	computePlotData    bool
	computeMetricsFile string
)

var computeCmd = &cobra.Command{
	Use:   "compute <data.tsv> <run_name>",
	Short: "Merge, aggregate and export a labelling experiment",
	Long: `Runs the full pipeline on a measurement file and its filled-in template:
merge on sample, normalize corrected areas when factors differ from 1,
aggregate replicates, build IDs and assemble the final table.

Outputs go to <output_dir>/<run_name>/ together with a run.json manifest.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		dataPath, name := args[0], args[1]
		if err := run.ValidateName(name); err != nil {
			return err
		}
		tmpl := computeTemplate
		if tmpl == "" {
			tmpl = filepath.Join(c.OutputDir, c.TemplateName)
		}
		formats, err := export.ParseFormats(pick(cmd, "formats", computeFormats, c.ExportFormats))
		if err != nil {
			return err
		}
		values := pick(cmd, "values", computeValues, c.ValueColumns)
		if err := checkValues(values); err != nil {
			return err
		}
		plots := c.PlotData
		if cmd.Flags().Changed("plot-data") {
			plots = computePlotData
		}
		metricsFile := c.MetricsFile
		if computeMetricsFile != "" {
			metricsFile = computeMetricsFile
		}

		log := newLogger()
		var rec metrics.Recorder = metrics.Nop{}
		var prom *metrics.PrometheusRecorder
		if metricsFile != "" {
			prom = metrics.NewPrometheusRecorder()
			rec = prom
		}

		ds, err := computeDataset(cmd.Context(), log, rec, dataPath, tmpl)
		if err != nil {
			return err
		}
		sel, err := ds.Select(
			isodata.ParseSelector(computeMetabolites),
			isodata.ParseSelector(computeConditions),
			isodata.ParseSelector(computeTimes),
		)
		if err != nil {
			return err
		}
		ds = ds.Filter(sel)

		r, err := run.New(c.OutputDir, name, dataPath, tmpl)
		if err != nil {
			return err
		}
		if prev, err := run.Load(r.RootDir()); err == nil {
			// Keep the run id so database exports replace the previous rows.
			r.ID = prev.ID
			r.CreatedAt = prev.CreatedAt
		}
		paths, err := export.Write(export.Request{
			Dir:     r.RootDir(),
			Name:    name,
			RunID:   r.ID,
			Formats: formats,
			Rows:    ds.Final,
		})
		if err != nil {
			return err
		}
		for i, p := range paths {
			r.AddArtifact(string(formats[i]), p)
		}

		summaryPath := r.Path("summary.md")
		md := report.Markdown(ds, report.Options{Value: firstOr(values, isodata.ColIsotopologueFraction)})
		if err := utils.SafeWriteFile(summaryPath, []byte(md)); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		r.AddArtifact("summary", summaryPath)

		if plots {
			// Filtering by condition or time can leave selected metabolites without rows.
			bundles, err := plotdata.BuildAll(cmd.Context(), ds, ds.Metabolites(), values, c.PlotWorkers)
			if err != nil {
				return fmt.Errorf("plot data: %w", err)
			}
			written, err := plotdata.WriteAll(r.Path("plots"), bundles, plotdata.BuildHeatmap(ds.Groups))
			if err != nil {
				return fmt.Errorf("plot data: %w", err)
			}
			for _, p := range written {
				r.AddArtifact("plot", p)
			}
			log.Infof("Wrote %d plot data files", len(written))
		}

		if err := r.Save(); err != nil {
			return err
		}
		if prom != nil {
			if err := prom.WriteTextfile(metricsFile); err != nil {
				return err
			}
			log.Debugf("Metrics written to %s", metricsFile)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✓ Run %s (%s): %d rows, %d groups\n", name, r.ID, len(ds.Final), len(ds.Groups))
		for _, a := range r.Artifacts {
			fmt.Fprintf(out, "  %-8s %s\n", a.Kind, r.Path(a.Path))
		}
		return nil
	},
}

// computeDataset loads both inputs and runs every pipeline stage.
func computeDataset(ctx context.Context, log logger.ILogger, rec metrics.Recorder, dataPath, tmplPath string) (*isodata.Dataset, error) {
	p := isodata.NewPipeline(log,
		isodata.WithMetrics(rec),
		isodata.WithSheetIndex(currentConfig().SheetIndex),
	)
	if err := p.LoadData(dataPath); err != nil {
		return nil, err
	}
	if err := p.LoadTemplate(tmplPath); err != nil {
		return nil, err
	}
	if err := p.Compute(ctx); err != nil {
		return nil, err
	}
	return p.Dataset()
}

// pick returns the flag value when it was set on the command line.
func pick(cmd *cobra.Command, flag string, fromFlag, fromConfig []string) []string {
	if cmd.Flags().Changed(flag) {
		return fromFlag
	}
	return fromConfig
}

func checkValues(values []string) error {
	for _, v := range values {
		if !slices.Contains(isodata.ValueColumns, v) {
			return fmt.Errorf("unknown value column %q (choose from %s)", v, strings.Join(isodata.ValueColumns, ", "))
		}
	}
	return nil
}

func firstOr(vs []string, def string) string {
	if len(vs) > 0 {
		return vs[0]
	}
	return def
}

func addSelectionFlags(cmd *cobra.Command, metabolites, conditions, times *string) {
	cmd.Flags().StringVar(metabolites, "metabolites", isodata.All, "comma separated metabolites or 'all'")
	cmd.Flags().StringVar(conditions, "conditions", isodata.All, "comma separated conditions or 'all'")
	cmd.Flags().StringVar(times, "times", isodata.All, "comma separated times or 'all'")
}

func init() {
	rootCmd.AddCommand(computeCmd)
	computeCmd.Flags().StringVarP(&computeTemplate, "template", "t", "", "filled-in template (default <output_dir>/<template_name>)")
	computeCmd.Flags().StringSliceVarP(&computeFormats, "formats", "f", nil, "export formats: tsv, json, xlsx, sqlite (overrides config)")
	computeCmd.Flags().StringSliceVar(&computeValues, "values", nil, "value columns for plot data and summary (overrides config)")
	computeCmd.Flags().BoolVar(&computePlotData, "plot-data", false, "write chart-ready JSON under plots/")
	computeCmd.Flags().StringVar(&computeMetricsFile, "metrics-file", "", "write stage metrics in Prometheus text format")
	addSelectionFlags(computeCmd, &computeMetabolites, &computeConditions, &computeTimes)
}
