package cli

import (
	"fmt"

	"codeberg.org/mutker/rogctl/internal/profile"
	"github.com/spf13/cobra"
)

func newProfileCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change the operating profile",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.printProfile()
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the stored profile",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.printProfile()
			},
		},
		&cobra.Command{
			Use:       "set NAME",
			Short:     "Store and apply a profile (normal, boost or silent)",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{"normal", "boost", "silent"},
			RunE: func(_ *cobra.Command, args []string) error {
				p, err := profile.Parse(args[0])
				if err != nil {
					return err
				}

				return a.applier.SetProfile(p.Encode(), a.store)
			},
		},
		&cobra.Command{
			Use:   "next",
			Short: "Switch to the next profile",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				if err := a.applier.StepProfile(a.store); err != nil {
					return err
				}

				return a.printProfile()
			},
		},
		&cobra.Command{
			Use:   "apply",
			Short: "Re-apply the stored profile",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return a.applier.ApplyCurrentProfile(a.store)
			},
		},
	)

	return cmd
}

func (a *app) printProfile() error {
	_, err := fmt.Fprintln(a.env.out, a.store.Profile())
	return err
}
