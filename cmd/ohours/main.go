// Command ohours is a demo CLI over the ohours engine: parse and
// normalize expressions, evaluate them at an instant, or watch an
// expression for state transitions.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"ohours"
	"ohours/internal/config"
	"ohours/internal/holidayprovider"
	appLog "ohours/internal/log"
)

var cfgFile string

func main() {
	root := &cobra.Command{
		Use:   "ohours",
		Short: "Parse, normalize, and evaluate OpenStreetMap opening_hours expressions",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "ohours.yaml", "config file path")

	root.AddCommand(parseCmd(), normalizeCmd(), evalCmd(), watchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <expression>",
		Short: "Parse an expression and print its canonical form, capabilities, and error",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			expr := ohours.Parse(args[0])
			out := struct {
				Canonical    string   `json:"canonical"`
				Capabilities []string `json:"capabilities,omitempty"`
				Error        string   `json:"error,omitempty"`
				Corrected    bool     `json:"corrected"`
			}{
				Canonical: expr.Normalized(),
				Corrected: expr.Corrected(),
			}
			if err := expr.Error(); err != nil {
				out.Error = err.Error()
			} else {
				out.Capabilities = capabilityStrings(expr.RequiredCapabilities())
			}
			return json.NewEncoder(os.Stdout).Encode(out)
		},
	}
}

func normalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <expression>",
		Short: "Print the canonical textual form of an expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			expr := ohours.Parse(args[0])
			if err := expr.Error(); err != nil {
				return err
			}
			fmt.Println(expr.Normalized())
			return nil
		},
	}
}

func evalCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an expression at an instant and print its state",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			instant := time.Now()
			if at != "" {
				parsed, err := time.Parse(time.RFC3339, at)
				if err != nil {
					return fmt.Errorf("parsing --at: %w", err)
				}
				instant = parsed
			}

			expr := ohours.Parse(args[0])
			if err := expr.Error(); err != nil {
				return err
			}

			cfg, ev, err := buildEvaluator(expr)
			if err != nil {
				return err
			}
			_ = cfg

			iv, everr := ev.IntervalAt(instant)
			if everr != nil {
				return everr
			}
			fmt.Printf("%s [%s, %s) %q\n", iv.State, iv.Begin.Format(time.RFC3339), iv.End.Format(time.RFC3339), iv.Comment)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "instant to evaluate at (RFC3339); defaults to now")
	return cmd
}

// watchCmd re-checks an expression's current state on a cron schedule
// and logs each change of state, rather than blocking until it occurs -- the
// transition itself may be months away for a sparse expression, and a
// cron tick is a cheap way to re-check without holding a goroutine asleep
// across a process restart.
func watchCmd() *cobra.Command {
	var schedule string
	cmd := &cobra.Command{
		Use:   "watch <expression>",
		Short: "Poll an expression on a schedule and log state transitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			expr := ohours.Parse(args[0])
			if err := expr.Error(); err != nil {
				return err
			}

			_, ev, err := buildEvaluator(expr)
			if err != nil {
				return err
			}

			lastState := ""
			tick := func() {
				now := time.Now()
				iv, everr := ev.IntervalAt(now)
				if everr != nil {
					appLog.Error("watch tick failed", everr, "expr", args[0])
					return
				}
				if iv.State.String() == lastState {
					return
				}
				lastState = iv.State.String()
				appLog.Info("state transition", "expr", args[0], "state", iv.State.String(),
					"begin", iv.Begin.Format(time.RFC3339), "end", iv.End.Format(time.RFC3339), "comment", iv.Comment)
			}

			c := cron.New()
			if _, err := c.AddFunc(schedule, tick); err != nil {
				return fmt.Errorf("invalid --schedule: %w", err)
			}
			tick()
			c.Start()
			defer c.Stop()

			select {}
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "@every 1m", "cron schedule to re-check the expression on")
	return cmd
}

func buildEvaluator(expr *ohours.Expression) (*config.Config, *ohours.Evaluator, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	var opts []ohours.EvalOption
	if cfg.Region != "" {
		provider, perr := buildHolidayProvider(cfg)
		if perr != nil {
			appLog.Error("holiday provider unavailable", perr, "region", cfg.Region)
		} else {
			opts = append(opts, ohours.WithHolidayProvider(provider), ohours.WithRegion(cfg.Region))
		}
	}
	if cfg.Location != nil {
		opts = append(opts, ohours.WithLocation(cfg.Location.Lat, cfg.Location.Lon))
	}

	ev, verr := expr.Evaluator(opts...)
	if verr != nil {
		return cfg, nil, verr
	}
	return cfg, ev, nil
}

func buildHolidayProvider(cfg *config.Config) (ohours.HolidayProvider, error) {
	switch cfg.HolidaySource {
	case "remote":
		return holidayprovider.NewRemote(cfg.HolidaySourcePath, cfg.CacheDir), nil
	default:
		return holidayprovider.LoadStatic(cfg.HolidaySourcePath)
	}
}

func capabilityStrings(caps ohours.Capability) []string {
	var out []string
	if caps.Has(ohours.CapPublicHoliday) {
		out = append(out, "public_holiday")
	}
	if caps.Has(ohours.CapSchoolHoliday) {
		out = append(out, "school_holiday")
	}
	if caps.Has(ohours.CapLocation) {
		out = append(out, "location")
	}
	if caps.Has(ohours.CapNotImplemented) {
		out = append(out, "not_implemented")
	}
	return out
}
