package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/studiowebux/loadcli/internal/config"
	"github.com/studiowebux/loadcli/internal/history"
	"github.com/studiowebux/loadcli/internal/loadtest"
	"github.com/studiowebux/loadcli/internal/render"
	"github.com/studiowebux/loadcli/internal/scenario"
	"github.com/studiowebux/loadcli/internal/tui"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "loadcli",
	Short: "Concurrent HTTP load generation tool",
	Long: `loadcli hammers an HTTP target with many simultaneously in-flight requests
and reports latency/throughput statistics with interpolated percentiles.

Choose exactly one dispatch mode:
  --duration N   run for N seconds (workers poll a shared deadline)
  --requests N   send exactly N requests (workers drain a shared queue)

Examples:
  loadcli --url http://127.0.0.1:8000/api/ping --duration 10
  loadcli --url http://127.0.0.1:8000/api/items --requests 1000 --concurrency 100
  loadcli --url http://127.0.0.1:8000/api/items --requests 500 --method POST --json '{"name":"x"}'
  loadcli --scenario ./smoke.yaml --progress
  loadcli history list`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoadTest()
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect persisted load test runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistoryList()
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}
		return runHistoryShow(id)
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all persisted runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistoryClear()
	},
}

// Flags for the root command
var (
	flagURL         string
	flagMethod      string
	flagConcurrency int
	flagDuration    float64
	flagRequests    int
	flagTimeout     float64
	flagHeaders     []string
	flagJSON        string
	flagData        string
	flagNoKeepAlive bool
	flagScenario    string
	flagProgress    bool
	flagVerbose     bool
	flagNoSave      bool
)

// Flags for history list
var (
	flagHistoryLimit int
)

func init() {
	rootCmd.Flags().StringVar(&flagURL, "url", "", "Target URL (required unless given in a scenario file)")
	rootCmd.Flags().StringVar(&flagMethod, "method", "", "HTTP method (default GET, case-normalized upper)")
	rootCmd.Flags().IntVar(&flagConcurrency, "concurrency", 0, "Number of concurrent workers (default 50)")
	rootCmd.Flags().Float64Var(&flagDuration, "duration", 0, "Test duration in seconds (use this OR --requests)")
	rootCmd.Flags().IntVar(&flagRequests, "requests", 0, "Total requests (use this OR --duration)")
	rootCmd.Flags().Float64Var(&flagTimeout, "timeout", 0, "Per-request timeout in seconds (default 10)")
	rootCmd.Flags().StringArrayVar(&flagHeaders, "header", nil, `Extra header, e.g. --header "Authorization: Bearer X" (repeatable)`)
	rootCmd.Flags().StringVar(&flagJSON, "json", "", `JSON body string, e.g. '{"x":1}' (sets Content-Type if absent)`)
	rootCmd.Flags().StringVar(&flagData, "data", "", "Raw body string (sent as-is, mutually exclusive with --json)")
	rootCmd.Flags().BoolVar(&flagNoKeepAlive, "no-keepalive", false, "Disable keep-alive connection reuse")
	rootCmd.Flags().StringVar(&flagScenario, "scenario", "", "YAML scenario file with run defaults")
	rootCmd.Flags().BoolVar(&flagProgress, "progress", false, "Show a live progress display on stderr")
	rootCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Log run lifecycle diagnostics")
	rootCmd.Flags().BoolVar(&flagNoSave, "no-save", false, "Do not persist this run to history")

	historyListCmd.Flags().IntVar(&flagHistoryLimit, "limit", 20, "Maximum runs to list")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runLoadTest() error {
	opts := loadtest.Options{
		URL:         flagURL,
		Method:      flagMethod,
		Concurrency: flagConcurrency,
		DurationSec: flagDuration,
		Requests:    flagRequests,
		TimeoutSec:  flagTimeout,
		Headers:     flagHeaders,
		JSONBody:    flagJSON,
		RawBody:     flagData,
		NoKeepAlive: flagNoKeepAlive,
	}

	if flagScenario != "" {
		s, err := scenario.Load(flagScenario)
		if err != nil {
			return err
		}
		if err := s.Apply(&opts); err != nil {
			return err
		}
	}

	if opts.Concurrency == 0 {
		opts.Concurrency = loadtest.DefaultConcurrency
	}
	if opts.TimeoutSec == 0 {
		opts.TimeoutSec = loadtest.DefaultTimeoutSec
	}

	logger := zap.NewNop()
	if flagVerbose {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()
	}

	exec, err := loadtest.NewExecutor(&opts, logger)
	if err != nil {
		return err
	}

	startedAt := time.Now()
	done := make(chan struct{})
	var report *loadtest.Report
	go func() {
		report = exec.Run(context.Background())
		close(done)
	}()

	if flagProgress {
		if err := tui.Show(exec, done); err != nil {
			// Progress display failures must not kill the run.
			fmt.Fprintf(os.Stderr, "progress display error: %v\n", err)
		}
	}
	<-done

	fmt.Print(render.Text(&opts, report))

	if !flagNoSave {
		if err := saveRun(&opts, report, startedAt); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to save run to history: %v\n", err)
		}
	}
	return nil
}

func saveRun(opts *loadtest.Options, report *loadtest.Report, startedAt time.Time) error {
	if err := config.Initialize(); err != nil {
		return err
	}
	mgr, err := history.NewManager(config.DatabasePath)
	if err != nil {
		return err
	}
	defer mgr.Close()

	return mgr.SaveRun(history.FromReport(opts, report, startedAt))
}

func openHistory() (*history.Manager, error) {
	if err := config.Initialize(); err != nil {
		return nil, err
	}
	return history.NewManager(config.DatabasePath)
}

func runHistoryList() error {
	mgr, err := openHistory()
	if err != nil {
		return err
	}
	defer mgr.Close()

	runs, err := mgr.ListRuns(flagHistoryLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-5s %-19s %-6s %-40s %8s %6s %8s %9s\n",
		"ID", "STARTED", "METHOD", "URL", "DONE", "ERR", "RPS", "P95(ms)")
	for _, run := range runs {
		p95 := "-"
		if run.P95Ms != nil {
			p95 = fmt.Sprintf("%.2f", *run.P95Ms)
		}
		url := run.URL
		if len(url) > 40 {
			url = url[:37] + "..."
		}
		fmt.Printf("%-5d %-19s %-6s %-40s %8d %6d %8.1f %9s\n",
			run.ID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Method,
			url,
			run.Completed+run.Errored,
			run.Errored,
			run.RPS,
			p95,
		)
	}
	return nil
}

func runHistoryShow(id int64) error {
	mgr, err := openHistory()
	if err != nil {
		return err
	}
	defer mgr.Close()

	run, err := mgr.GetRun(id)
	if err != nil {
		return fmt.Errorf("run %d not found: %w", id, err)
	}

	fmt.Printf("Run #%d\n", run.ID)
	fmt.Printf("Started:     %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("URL:         %s\n", run.URL)
	fmt.Printf("Method:      %s\n", run.Method)
	fmt.Printf("Concurrency: %d\n", run.Concurrency)
	if run.DurationSec > 0 {
		fmt.Printf("Duration:    %.2fs\n", run.DurationSec)
	} else {
		fmt.Printf("Requests:    %d\n", run.TotalRequests)
	}
	fmt.Printf("Elapsed:     %.3fs\n", run.ElapsedSec)
	fmt.Printf("Completed:   %d (ok=%d, errors=%d)\n", run.Completed+run.Errored, run.OK, run.Errored)
	fmt.Printf("RPS:         %.1f\n", run.RPS)
	fmt.Printf("Statuses:    %v\n", run.Statuses)
	if len(run.Errors) > 0 {
		fmt.Printf("Errors:      %v\n", run.Errors)
	}
	if run.P50Ms != nil {
		fmt.Println("\nLatency (ms):")
		fmt.Printf("  p50  %.2f\n", *run.P50Ms)
		fmt.Printf("  p90  %.2f\n", *run.P90Ms)
		fmt.Printf("  p95  %.2f\n", *run.P95Ms)
		fmt.Printf("  p99  %.2f\n", *run.P99Ms)
		fmt.Printf("  min  %.2f\n", *run.MinMs)
		fmt.Printf("  max  %.2f\n", *run.MaxMs)
		fmt.Printf("  avg  %.2f\n", *run.AvgMs)
	} else {
		fmt.Println("\nNo successful responses recorded.")
	}
	return nil
}

func runHistoryClear() error {
	mgr, err := openHistory()
	if err != nil {
		return err
	}
	defer mgr.Close()

	if err := mgr.ClearRuns(); err != nil {
		return err
	}
	fmt.Println("History cleared.")
	return nil
}
