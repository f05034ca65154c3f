package cli

import (
	"fmt"

	"ui_automation/presentation/terminal"

	"github.com/spf13/cobra"
)

func newReportCommand(app *App) *cobra.Command {
	var last int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print stored run reports, newest last",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if last < 1 {
				return Error.New("--last must be at least 1")
			}
			store, err := app.reportStore()
			if err != nil {
				return err
			}
			runs, err := store.LoadRuns()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			if len(runs) > last {
				runs = runs[len(runs)-last:]
			}
			for i, run := range runs {
				if i > 0 {
					fmt.Fprintln(out)
				}
				terminal.PrintReport(out, run)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&last, "last", "n", 1, "number of runs to print")
	return cmd
}
