package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"phaseshift/app"
	"phaseshift/domain/lfsr"
	"phaseshift/internal/config"
	"phaseshift/internal/container"
)

type globalFlags struct {
	logLevel       string
	polynomialsDir string
	workers        int
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Ignoring .env: %v", err)
	}

	var g globalFlags
	rootCmd := &cobra.Command{
		Use:           "phaseshift",
		Short:         "LFSR phase-shifter integer generator and uniformity analyzer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "ERROR, WARN, INFO, DEBUG or TRACE (default from LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&g.polynomialsDir, "polynomials", "", "Directory holding <degree>.txt polynomial files")
	rootCmd.PersistentFlags().IntVar(&g.workers, "workers", -1, "Experiments run in parallel (0 = GOMAXPROCS)")

	rootCmd.AddCommand(
		newRunCmd(&g),
		newPeriodCmd(&g),
		newServeCmd(&g),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the global flags
func loadConfig(g *globalFlags) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if g.polynomialsDir != "" {
		cfg.Paths.PolynomialsDir = g.polynomialsDir
	}
	if g.workers >= 0 {
		cfg.Server.Workers = g.workers
	}
	return cfg, cfg.Validate()
}

func newRunCmd(g *globalFlags) *cobra.Command {
	var outDir string
	var renderers []string
	var seed int64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run [degree] [entry] [cs] [nc] [method] [num_integers] [bit_width] [cycles] [experiments]",
		Short: "Simulate the phase shifter and report how evenly it covers its values",
		Long: `Simulate a maximal-length LFSR with a phase shifter and analyze the integers it emits.

Positional arguments override PHASESHIFT_* environment variables. cs and nc
default to 2*degree; pass 0 to keep the default while setting later arguments.

Example: phaseshift run 16 1 32 32 separated 8 4 1000 20 --render png,xlsx`,
		Args: cobra.MaximumNArgs(len(positionalNames)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if err := applyPositional(&cfg.Run, args); err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg.Run.Seed = seed
			}
			if cmd.Flags().Changed("render") {
				cfg.Output.Renderers = renderers
			}
			if cmd.Flags().Changed("out") {
				cfg.Paths.OutputDir = outDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.Run.Validate(); err != nil {
				return err
			}
			settings, err := cfg.Run.Settings()
			if err != nil {
				return err
			}

			c, err := container.New(cfg)
			if err != nil {
				return err
			}

			dir := cfg.Paths.OutputDir
			if len(c.Renderers) == 0 {
				dir = ""
			}
			result, err := c.Experiments.Run(cmd.Context(), settings, dir)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Polynomial: %s (degree %d, entry %d)\n", result.Expression, settings.Degree, settings.Entry)
			fmt.Fprintf(out, "Run %s, seed %d, %v\n\n", result.RunID, result.Settings.Seed, result.Duration().Round(time.Millisecond))
			fmt.Fprint(out, app.FormatSummary(result.Summary))
			for _, a := range result.Artifacts {
				fmt.Fprintf(out, "Wrote %s\n", a.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", ".", "Directory for histograms and reports")
	cmd.Flags().StringSliceVar(&renderers, "render", nil, "Outputs to write: png, html, xlsx, md (empty for none)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Base seed for initial states (0 = from the clock)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")

	return cmd
}

func newPeriodCmd(g *globalFlags) *cobra.Command {
	var limit uint64

	cmd := &cobra.Command{
		Use:   "period <degree> [entry]",
		Short: "Walk the register state sequence and report its period",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			rc := cfg.Run
			if err := applyPositional(&rc, args); err != nil {
				return err
			}

			c, err := container.New(cfg)
			if err != nil {
				return err
			}

			maximal := lfsr.MaximalPeriod(rc.Degree)
			if limit == 0 {
				limit = maximal
			}
			p, period, err := c.Experiments.Period(cmd.Context(), rc.Degree, rc.Entry, limit)
			if err != nil {
				return err
			}

			status := "maximal"
			if period != maximal {
				status = fmt.Sprintf("not maximal, expected %d", maximal)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: period %d (%s)\n", p, period, status)
			return nil
		},
	}

	cmd.Flags().Uint64Var(&limit, "limit", 0, "Give up after this many clocks (0 = 2^degree - 1)")
	return cmd
}

func newServeCmd(g *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve experiment runs over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}

			c, err := container.New(cfg)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           c.APIServer(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				c.Logger.Info("Listening on %s", cfg.Server.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != http.ErrServerClosed {
					return err
				}
				return nil
			case <-cmd.Context().Done():
			}

			c.Logger.Info("Shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	return cmd
}
