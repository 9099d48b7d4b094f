package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/lazypower/decay/internal/config"
	"github.com/lazypower/decay/internal/decay"
	"github.com/lazypower/decay/internal/store"
)

type rootOptions struct {
	configPath string
	initial    float64
	rate       float64
	elapsed    float64
	strict     bool
	places     int
	record     bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "decay",
		Short: "Compute continuous exponential decay",
		Long: "Decay computes how much of a quantity remains after continuous exponential decay\n" +
			"at a fixed per-second rate. With no flags it evaluates 1000 units at 1% per second for 10 seconds.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecay(cmd, opts)
		},
	}

	def := config.Default()
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file (default $DECAY_CONFIG)")
	cmd.Flags().Float64Var(&opts.initial, "initial", def.Decay.InitialAmount, "Initial amount")
	cmd.Flags().Float64Var(&opts.rate, "rate", def.Decay.DecayRate, "Fraction lost per second")
	cmd.Flags().Float64VarP(&opts.elapsed, "time", "t", def.Decay.ElapsedTime, "Elapsed time in seconds")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail on rate >= 1 or non-finite input instead of printing 0/NaN")
	cmd.Flags().IntVar(&opts.places, "places", def.Output.Places, "Round the printed amount to this many decimal places (-1 for full precision)")
	cmd.Flags().BoolVar(&opts.record, "record", false, "Save the calculation to history")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd(&opts.configPath))
	cmd.AddCommand(newHistoryCmd(&opts.configPath))
	cmd.AddCommand(newHalfLifeCmd(&opts.configPath))
	return cmd
}

func Execute() error {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "decay: %v\n", err)
	}
	return err
}

func runDecay(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	p := cfg.Decay
	if flags.Changed("initial") {
		p.InitialAmount = opts.initial
	}
	if flags.Changed("rate") {
		p.DecayRate = opts.rate
	}
	if flags.Changed("time") {
		p.ElapsedTime = opts.elapsed
	}
	strict := cfg.Output.Strict || opts.strict
	places := cfg.Output.Places
	if flags.Changed("places") {
		places = opts.places
	}
	if places < -1 {
		return fmt.Errorf("--places %d must be -1 or more", places)
	}

	var res decay.Result
	if strict {
		if res, err = p.EvaluateStrict(); err != nil {
			return err
		}
	} else {
		res = p.Evaluate()
	}

	if opts.record {
		db, err := openDB(cfg)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer db.Close()
		calc, err := db.RecordCalculation(res, strict)
		if err != nil {
			return fmt.Errorf("record: %w", err)
		}
		fmt.Fprintf(os.Stderr, "recorded %s\n", calc.RunID)
	}

	printLabeled(cmd.OutOrStdout(), "decayedAmount", res.DecayedAmount, places)
	return nil
}

// printLabeled writes one labeled value, rounded half away from zero when
// places >= 0. Non-finite values are never rounded.
func printLabeled(w io.Writer, key string, v float64, places int) {
	fmt.Fprintln(w, decay.Labeled(key, formatAmount(v, places)))
}

func formatAmount(v float64, places int) string {
	s := decay.FormatNumber(v)
	if places < 0 || s == "NaN" || s == "Infinity" || s == "-Infinity" {
		return s
	}
	return decimal.NewFromFloat(v).Round(int32(places)).String()
}

// openDB opens the history database for CLI commands.
func openDB(cfg config.Config) (*store.DB, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	return store.Open(dbPath)
}
