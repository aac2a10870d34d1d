package cli

import (
	"fmt"
	"text/tabwriter"

	"codeberg.org/mutker/rogctl/internal/platform"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

const unavailable = "unavailable"

func newStatusCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show detected controls and stored state",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.printStatus(platform.DetectCPU())
		},
	}
}

func (a *app) printStatus(cpu platform.CPUInfo) error {
	fanPath, err := a.prober.FanPath()
	if err != nil {
		fanPath = unavailable
	}

	mechanism := unavailable
	if a.prober.HasNativePState() {
		mechanism = string(platform.MechanismPState)
	} else if a.prober.HasBoost() {
		mechanism = string(platform.MechanismBoost)
	}

	charge := unavailable
	if a.prober.HasChargeControl() {
		charge = platform.ChargeLimitPath
	}

	clock := "unknown"
	if cpu.MaxClock > 0 {
		clock = humanize.SIWithDigits(float64(cpu.MaxClock), 2, "Hz")
	}

	perf := a.store.Performance(a.store.Profile())

	w := tabwriter.NewWriter(a.env.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CPU\t%s (%s, %d cores, %s)\n", cpu.Brand, cpu.Vendor, cpu.Cores, clock)
	fmt.Fprintf(w, "Fan control\t%s\n", fanPath)
	fmt.Fprintf(w, "CPU power\t%s\n", mechanism)
	fmt.Fprintf(w, "Charge control\t%s\n", charge)
	fmt.Fprintf(w, "Profile\t%s\n", a.store.Profile())
	fmt.Fprintf(w, "Performance\tmin %d%%, max %d%%, no_turbo %t\n", perf.MinPercentage, perf.MaxPercentage, perf.NoTurbo)
	fmt.Fprintf(w, "Charge limit\t%d%%\n", a.store.BatChargeLimit)
	fmt.Fprintf(w, "State file\t%s\n", a.store.Path())

	return w.Flush()
}
