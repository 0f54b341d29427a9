package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llegregam/isoplot/internal/run"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect compute runs under the output directory",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		runs, err := run.List(currentConfig().OutputDir)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "(no runs)")
			return nil
		}
		for _, r := range runs {
			fmt.Fprintf(out, "- %s\t%s\t%s\t%d artifacts\n", r.Name, r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), len(r.Artifacts))
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run_name|path>",
	Short: "Show a run manifest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := run.Find(currentConfig().OutputDir, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Run: %s\n", r.Name)
		fmt.Fprintf(out, "ID: %s\n", r.ID)
		fmt.Fprintf(out, "Directory: %s\n", r.RootDir())
		fmt.Fprintf(out, "Data: %s\n", r.DataPath)
		fmt.Fprintf(out, "Template: %s\n", r.TemplatePath)
		fmt.Fprintf(out, "Created: %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintln(out, "Artifacts:")
		for _, a := range r.Artifacts {
			fmt.Fprintf(out, "  - [%s] %s\n", a.Kind, a.Path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}
