package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

const defaultHistoryLimit = 20

func newHistoryCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently applied changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.settings.History.Enabled {
				fmt.Fprintln(a.env.out, "History is disabled. Enable it with history.enabled or --history.")
				return nil
			}

			entries, err := a.history.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Fprintln(a.env.out, "No changes recorded.")
				return nil
			}

			w := tabwriter.NewWriter(a.env.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tACTION\tPROFILE\tCPU POWER\tCHARGE LIMIT")
			for _, e := range entries {
				mechanism := e.Mechanism
				if mechanism == "" {
					mechanism = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d%%\n",
					humanize.Time(e.Timestamp),
					e.Action,
					e.Profile,
					mechanism,
					e.ChargeLimit,
				)
			}

			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "number of entries to show")

	return cmd
}
