package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lazypower/decay/internal/config"
	"github.com/lazypower/decay/internal/decay"
)

func newHistoryCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded calculations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			calcs, err := db.RecentCalculations(limit)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(calcs) == 0 {
				fmt.Fprintln(out, "No calculations recorded. Run decay --record first.")
				return nil
			}
			for i, c := range calcs {
				ts := time.UnixMilli(c.CreatedAt).Format("2006-01-02 15:04:05")
				fmt.Fprintf(out, "%d. [%s] %s\n", i+1, ts, c.Result)
				fmt.Fprintf(out, "   initial=%s rate=%s time=%s run=%s\n",
					decay.FormatNumber(c.Result.InitialAmount),
					decay.FormatNumber(c.Result.DecayRate),
					decay.FormatNumber(c.Result.ElapsedTime),
					c.RunID)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of calculations")
	return cmd
}

func newHalfLifeCmd(configPath *string) *cobra.Command {
	var (
		rate   float64
		places int
	)
	cmd := &cobra.Command{
		Use:   "halflife",
		Short: "Print the time for an amount to halve at a given rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("rate") {
				rate = cfg.Decay.DecayRate
			}
			if !cmd.Flags().Changed("places") {
				places = cfg.Output.Places
			}
			printLabeled(cmd.OutOrStdout(), "halfLife", decay.HalfLife(rate), places)
			return nil
		},
	}
	cmd.Flags().Float64Var(&rate, "rate", 0, "Fraction lost per second (default from config)")
	cmd.Flags().IntVar(&places, "places", -1, "Round to this many decimal places")
	return cmd
}
