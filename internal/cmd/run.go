package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/codelintio/codelint/internal/config"
	"github.com/codelintio/codelint/internal/render"
	"github.com/codelintio/codelint/pkg/executor"
	"github.com/codelintio/codelint/pkg/findingcache"
	"github.com/codelintio/codelint/pkg/issue"
	"github.com/codelintio/codelint/pkg/jobspec"
	"github.com/codelintio/codelint/pkg/registry"
)

const pollInterval = 150 * time.Millisecond

func newRunCommand(cfg **config.Config, log **zap.Logger) *cobra.Command {
	var (
		root        string
		fileList    []string
		excludes    []string
		analyzers   []string
		categories  []string
		concurrency int
		format      string
		spawnRate   float64
	)

	c := &cobra.Command{
		Use:   "run",
		Short: "analyze a project and print the resulting issues",
		RunE: func(c *cobra.Command, args []string) error {
			return runAnalysis(c, *cfg, *log, root, fileList, excludes, analyzers, categories, concurrency, format, spawnRate)
		},
	}

	c.Flags().StringVar(&root, "root", "", "absolute project root to analyze (required)")
	c.Flags().StringSliceVar(&fileList, "files", nil, "explicit project-relative file list; discovers the tree if omitted")
	c.Flags().StringSliceVar(&excludes, "exclude", []string{"node_modules/**", "vendor/**", "dist/**"}, "glob patterns skipped during file discovery")
	c.Flags().StringSliceVar(&analyzers, "analyzers", nil, "analyzer names to run; defaults to config's analyzers.enabled")
	c.Flags().StringSliceVar(&categories, "categories", []string{"security", "performance", "quality"}, "issue categories to include")
	c.Flags().IntVar(&concurrency, "concurrency", 0, "max concurrent analyzer subprocesses; 0 uses config default")
	c.Flags().StringVar(&format, "format", "table", "result output format: table or yaml")
	c.Flags().Float64Var(&spawnRate, "spawn-rate", 0, "max analyzer subprocess spawns per second; 0 uses config default")
	_ = c.MarkFlagRequired("root")

	return c
}

func runAnalysis(c *cobra.Command, cfg *config.Config, log *zap.Logger, root string, files, excludes, analyzerNames, categoryNames []string, concurrency int, format string, spawnRate float64) error {
	if len(analyzerNames) == 0 {
		analyzerNames = cfg.Analyzers.Enabled
	}

	var cache *findingcache.Cache
	if cfg.Cache.Enabled && cfg.Cache.Path != "" {
		opened, err := findingcache.Open(cfg.Cache.Path)
		if err != nil {
			return fmt.Errorf("opening finding cache: %w", err)
		}
		cache = opened
		defer cache.Close()
	}

	drivers := buildDriverSet(cfg, cache)

	if len(files) == 0 {
		discovered, err := discoverFiles(root, excludes)
		if err != nil {
			return fmt.Errorf("discovering files: %w", err)
		}
		files = discovered
	}

	categories := make([]issue.Category, 0, len(categoryNames))
	for _, name := range categoryNames {
		categories = append(categories, issue.Category(strings.ToLower(name)))
	}

	execCfg := executor.Config{
		Concurrency:     concurrency,
		BatchSize:       cfg.BatchSize,
		PerBatchTimeout: cfg.BatchTimeout,
	}
	if execCfg.Concurrency <= 0 {
		execCfg.Concurrency = cfg.Concurrency
	}
	if spawnRate <= 0 {
		spawnRate = cfg.SpawnRate
	}
	if spawnRate > 0 {
		execCfg.SpawnRate = rate.NewLimiter(rate.Limit(spawnRate), 1)
	}

	reg := registry.New(drivers, execCfg, registry.DefaultMaxRetainedTerminalJobs)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobID, err := reg.Create(ctx, jobspec.Input{
		ProjectRoot: root,
		Files:       files,
		Analyzers:   analyzerNames,
		Categories:  categories,
	})
	if err != nil {
		return err
	}
	log.Info("job created", zap.String("job_id", jobID), zap.Int("files", len(files)))

	// SIGUSR1 toggles pause/resume on the running job: since the registry
	// keeps no state across process invocations (spec Non-goals exclude
	// cross-restart persistence), pause/resume have no separate subcommand
	// to act on a job created by a different invocation — instead they're
	// reachable as a signal to this same process while run is in flight.
	stopPauseToggle := watchPauseToggle(reg, jobID, log)
	defer stopPauseToggle()

	interactive := render.IsInteractive(c.OutOrStdout())
	view := watchUntilTerminal(c, reg, jobID, ctx, interactive)

	if len(view.Warnings) > 0 {
		fmt.Fprintf(c.ErrOrStderr(), "\n%d warning(s):\n", len(view.Warnings))
		for _, w := range view.Warnings {
			fmt.Fprintf(c.ErrOrStderr(), "  [%s] %s: %s\n", w.Analyzer, w.File, w.Message)
		}
	}

	result, err := reg.Result(jobID)
	if err == nil {
		if format == "yaml" {
			_ = render.WriteYAML(c.OutOrStdout(), result)
		} else {
			fmt.Fprintf(c.OutOrStdout(), "\n%d issues (critical=%d high=%d medium=%d low=%d) across %d files in %.1fs\n\n",
				result.Summary.Total, result.Summary.Critical, result.Summary.High, result.Summary.Medium, result.Summary.Low,
				result.Summary.AffectedFiles, result.ElapsedSeconds)
			_ = render.IssueTable(c.OutOrStdout(), result.Issues, interactive)
		}
	}

	if view.State == jobspec.StateFailed {
		return fmt.Errorf("job failed: %s", view.Error)
	}
	return nil
}

// watchPauseToggle listens for SIGUSR1 and alternately pauses/resumes
// jobID on each delivery. It returns a stop function that releases the
// signal handler; illegal-state errors (job already terminal, or a
// stale toggle racing job completion) are ignored since the job's own
// terminal state is reported elsewhere.
func watchPauseToggle(reg *registry.Registry, jobID string, log *zap.Logger) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGUSR1)

	done := make(chan struct{})
	go func() {
		paused := false
		for {
			select {
			case <-sigCh:
				var err error
				if paused {
					err = reg.Resume(jobID)
				} else {
					err = reg.Pause(jobID)
				}
				if err == nil {
					paused = !paused
					log.Info("pause toggled", zap.String("job_id", jobID), zap.Bool("paused", paused))
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		close(done)
	}
}

// watchUntilTerminal polls status until the job reaches a terminal
// state, printing a progress line, and cancels the job if ctx is
// canceled (e.g. by an interrupt signal).
func watchUntilTerminal(c *cobra.Command, reg *registry.Registry, jobID string, ctx context.Context, interactive bool) registry.StatusView {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	canceled := false
	for {
		select {
		case <-ctx.Done():
			if !canceled {
				_ = reg.Cancel(jobID)
				canceled = true
			}
			<-ticker.C
		case <-ticker.C:
		}

		view, err := reg.Status(jobID)
		if err != nil {
			return registry.StatusView{}
		}

		line := render.ProgressLine(view.State, view.Progress, interactive)
		if interactive {
			fmt.Fprintf(c.OutOrStdout(), "\r%s", line)
		} else {
			fmt.Fprintln(c.OutOrStdout(), line)
		}

		if view.State.Terminal() {
			if interactive {
				fmt.Fprintln(c.OutOrStdout())
			}
			return view
		}
	}
}
