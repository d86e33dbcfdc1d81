package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/mediumcache/datarecording"
	"github.com/sarchlab/mediumcache/idgen"
	"github.com/sarchlab/mediumcache/medium"
	"github.com/sarchlab/mediumcache/monitoring"
	"github.com/sarchlab/mediumcache/tracing"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replay a synthetic workload against a cache.",
	Long: `run seeds a medium with keys, puts a cache in front of it, and ` +
		`replays a zipf-distributed mix of gets and puts. The report is ` +
		`printed as JSON when the workload finishes.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := LoadConfig(envFile)
		if err != nil {
			return err
		}

		applyFlags(cmd, &cfg)

		err = cfg.Validate()
		if err != nil {
			return err
		}

		monitor, _ := cmd.Flags().GetBool("monitor")
		openBrowser, _ := cmd.Flags().GetBool("open-browser")

		return run(cmd.Context(), cfg, runOptions{
			monitor:     monitor,
			openBrowser: openBrowser,
			out:         cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.String("engine", "", "Cache engine, lru or setassoc")
	f.Int("capacity", 0, "Number of entries (lru) or sets (setassoc)")
	f.Int("ways", 0, "Entries per set (setassoc)")
	f.String("medium", "", "Medium, memory or sqlite")
	f.String("db", "", "SQLite file of the sqlite medium")
	f.String("trace-db", "", "Record cache events into this SQLite file")
	f.Int("keys", 0, "Number of keys to seed")
	f.Int("ops", 0, "Number of operations to replay")
	f.Float64("write-ratio", 0, "Fraction of operations that are puts")
	f.Float64("pin-ratio", 0, "Fraction of gets that pin the record")
	f.Float64("skew", 0, "Zipf skew of the key distribution, above 1")
	f.Int64("seed", 0, "Random seed")
	f.BoolP("verbose", "v", false, "Log every cache event")
	f.Bool("monitor", false, "Serve the monitor and wait for an interrupt")
	f.Int("monitor-port", 0, "Port of the monitor, random if 0")
	f.Bool("open-browser", false, "Open the monitor in a browser")
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cmd *cobra.Command, cfg *Config) {
	f := cmd.Flags()

	if f.Changed("engine") {
		cfg.Engine, _ = f.GetString("engine")
	}

	if f.Changed("capacity") {
		cfg.Capacity, _ = f.GetInt("capacity")
	}

	if f.Changed("ways") {
		cfg.Ways, _ = f.GetInt("ways")
	}

	if f.Changed("medium") {
		cfg.Medium, _ = f.GetString("medium")
	}

	if f.Changed("db") {
		cfg.DB, _ = f.GetString("db")
	}

	if f.Changed("trace-db") {
		cfg.TraceDB, _ = f.GetString("trace-db")
	}

	if f.Changed("keys") {
		cfg.Keys, _ = f.GetInt("keys")
	}

	if f.Changed("ops") {
		cfg.Ops, _ = f.GetInt("ops")
	}

	if f.Changed("write-ratio") {
		cfg.WriteRatio, _ = f.GetFloat64("write-ratio")
	}

	if f.Changed("pin-ratio") {
		cfg.PinRatio, _ = f.GetFloat64("pin-ratio")
	}

	if f.Changed("skew") {
		cfg.Skew, _ = f.GetFloat64("skew")
	}

	if f.Changed("seed") {
		cfg.Seed, _ = f.GetInt64("seed")
	}

	if f.Changed("verbose") {
		cfg.Verbose, _ = f.GetBool("verbose")
	}

	if f.Changed("monitor-port") {
		cfg.MonitorPort, _ = f.GetInt("monitor-port")
	}
}

type runOptions struct {
	monitor     bool
	openBrowser bool
	out         io.Writer
}

func openStore(cfg Config) (medium.Store, func() error, error) {
	switch cfg.Medium {
	case "memory":
		return medium.NewMemoryStore(), func() error { return nil }, nil
	case "sqlite":
		s, err := medium.OpenSQLiteStore(cfg.DB)
		if err != nil {
			return nil, nil, err
		}

		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown medium %q", cfg.Medium)
	}
}

// closeInto closes a resource and joins its error into *errp.
func closeInto(errp *error, closer func() error) {
	*errp = errors.Join(*errp, closer())
}

func run(ctx context.Context, cfg Config, opts runOptions) (err error) {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeInto(&err, closeStore)

	err = medium.Seed(store, cfg.Keys)
	if err != nil {
		return err
	}

	c := buildCache(cfg, store)

	var (
		stats    *tracing.StatsTracer
		m        *monitoring.Monitor
		progress *monitoring.ProgressBar
	)

	if opts.monitor {
		m = monitoring.NewMonitor().WithPortNumber(cfg.MonitorPort)
		stats = m.RegisterCache(c)
		progress = m.CreateProgressBar("Workload", uint64(cfg.Ops))
	} else {
		stats = tracing.NewStatsTracer()
		c.AcceptHook(stats)
	}

	if cfg.Verbose {
		c.AcceptHook(tracing.NewLogTracer(log.New(os.Stderr, "", log.LstdFlags)))
	}

	var dbTracer *tracing.DBTracer

	if cfg.TraceDB != "" {
		recorder := datarecording.New(cfg.TraceDB)
		defer closeInto(&err, recorder.Close)

		dbTracer = tracing.NewDBTracer(
			tracing.NewWallClock(), recorder, idgen.NewParallel())
		c.AcceptHook(dbTracer)
		dbTracer.StartTracing()

		if m != nil {
			m.RegisterEventReader(
				datarecording.NewReader(cfg.TraceDB + ".sqlite3"))
		}
	}

	if m != nil {
		url := m.StartServer()
		if opts.openBrowser {
			err = browser.OpenURL(url)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Cannot open browser: %v\n", err)
			}
		}
	}

	report, err := newWorkload(cfg, c, progress).run()
	if err != nil {
		return err
	}

	if m != nil {
		m.CompleteProgressBar(progress)
	}

	err = c.Flush()
	if err != nil {
		return err
	}

	if dbTracer != nil {
		dbTracer.StopTracing()
	}

	report.Stats = stats.Stats()
	report.Counters = store.Counters()

	err = printReport(opts.out, report)
	if err != nil {
		return err
	}

	if m != nil {
		waitForInterrupt(ctx)
	}

	return nil
}

func printReport(w io.Writer, report Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(report)
}

func waitForInterrupt(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Fprintln(os.Stderr, "Workload finished. Press Ctrl+C to exit.")
	<-ctx.Done()
}
