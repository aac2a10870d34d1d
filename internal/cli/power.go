package cli

import "github.com/spf13/cobra"

func newSuspendCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "suspend",
		Short: "Suspend the machine",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			a.actions.Suspend()
		},
	}
}

func newAirplaneCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "airplane",
		Short: "Toggle all wireless radios",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			a.actions.ToggleAirplaneMode()
		},
	}
}
