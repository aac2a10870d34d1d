package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newChargeLimitCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charge-limit",
		Short: "Show or change the battery charge limit",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.printChargeLimit()
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the stored charge limit",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.printChargeLimit()
			},
		},
		&cobra.Command{
			Use:   "set PERCENT",
			Short: "Store and apply a charge limit",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				limit, err := strconv.ParseUint(args[0], 10, 8)
				if err != nil {
					return fmt.Errorf("invalid charge limit %q: %w", args[0], err)
				}

				return a.applier.SetChargeLimit(uint8(limit), a.store)
			},
		},
		&cobra.Command{
			Use:   "reload",
			Short: "Re-apply the stored charge limit",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.applier.ReloadChargeLimit(a.store)
			},
		},
	)

	return cmd
}

func (a *app) printChargeLimit() error {
	_, err := fmt.Fprintf(a.env.out, "%d%%\n", a.store.BatChargeLimit)
	return err
}
