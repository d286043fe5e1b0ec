package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hochfrequenz/docsmith/internal/config"
	"github.com/hochfrequenz/docsmith/internal/domain"
	"github.com/hochfrequenz/docsmith/internal/gitrepo"
	"github.com/hochfrequenz/docsmith/internal/jobstore"
	"github.com/hochfrequenz/docsmith/internal/llm"
	"github.com/hochfrequenz/docsmith/internal/logging"
	"github.com/hochfrequenz/docsmith/internal/observer"
	"github.com/hochfrequenz/docsmith/internal/pipeline"
	"github.com/hochfrequenz/docsmith/internal/scheduler"
	"github.com/hochfrequenz/docsmith/tui"
	"github.com/hochfrequenz/docsmith/web/api"
)

var (
	submitPriority string
	historyLimit   int
)

func init() {
	// run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the documentation daemon",
		Long: `Run the full daemon: submits a job for every configured repository,
watches the config manifest for changes, and serves the status API.`,
		RunE: runDaemon,
	}
	rootCmd.AddCommand(runCmd)

	// serve command
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon without seeding jobs",
		Long: `Run the scheduler, workers, and status API without submitting any
jobs up front. Jobs arrive through the API (docsmith submit).`,
		RunE: runServe,
	}
	rootCmd.AddCommand(serveCmd)

	// submit command
	submitCmd := &cobra.Command{
		Use:   "submit REPO",
		Short: "Submit a documentation job",
		Args:  cobra.ExactArgs(1),
		RunE:  runSubmit,
	}
	submitCmd.Flags().StringVar(&submitPriority, "priority", "", "job priority (high, low; default normal)")
	rootCmd.AddCommand(submitCmd)

	// status command
	statusCmd := &cobra.Command{
		Use:   "status [JOB]",
		Short: "Show scheduler stats or a single job's status",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runStatus,
	}
	rootCmd.AddCommand(statusCmd)

	// cancel command
	cancelCmd := &cobra.Command{
		Use:   "cancel JOB",
		Short: "Cancel a queued or running job",
		Args:  cobra.ExactArgs(1),
		RunE:  runCancel,
	}
	rootCmd.AddCommand(cancelCmd)

	// history command
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List archived jobs",
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "max records to show")
	rootCmd.AddCommand(historyCmd)

	// tui command
	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Launch TUI dashboard",
		RunE:  runTUI,
	}
	rootCmd.AddCommand(tuiCmd)
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return config.Load(path)
}

func runDaemon(cmd *cobra.Command, args []string) error {
	return daemon(true)
}

func runServe(cmd *cobra.Command, args []string) error {
	return daemon(false)
}

// daemon wires the scheduler, pipeline, status API, and (when seeding) the
// manifest watcher, and blocks until interrupted.
func daemon(seed bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.New(cfg.Logging.Level)

	for _, dir := range []string{cfg.General.WorkDir, cfg.General.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	store, err := jobstore.New(cfg.General.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening job store: %w", err)
	}
	defer store.Close()

	sched := scheduler.New(scheduler.Config{
		MaxConcurrentJobs:   cfg.Scheduler.MaxConcurrentJobs,
		MaxQueueSize:        cfg.Scheduler.MaxQueueSize,
		MaxCompletedHistory: cfg.Scheduler.MaxCompletedHistory,
		DefaultJobTimeout:   cfg.Scheduler.DefaultJobTimeout.Std(),
	}, log)

	client := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.Model, llm.Options{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	}, cfg.LLM.Timeout.Std())

	cloner := gitrepo.NewCloner(cfg.General.WorkDir)
	generator := pipeline.NewGenerator(cloner, client, cfg.Repos, cfg.General.OutputDir)

	runner := pipeline.NewRunner(sched, generator, store, pipeline.RunnerConfig{
		Workers:         cfg.Scheduler.MaxConcurrentJobs,
		JobTimeout:      cfg.Scheduler.DefaultJobTimeout.Std(),
		CleanupInterval: cfg.Scheduler.CleanupInterval.Std(),
		HistoryMaxAge:   cfg.Scheduler.HistoryMaxAge.Std(),
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if seed {
		// Seed one job per configured repo.
		submitRepos(sched, cfg.Repos, log)

		// Resubmit everything when the config manifest changes.
		manifest := configPath
		if manifest == "" {
			manifest = config.DefaultConfigPath()
		}
		watcher, err := observer.NewManifestWatcher(manifest, func(path string) {
			fresh, err := config.Load(path)
			if err != nil {
				log.Warn().Str("path", path).Err(err).Msg("reloading manifest failed")
				return
			}
			log.Info().Int("repos", len(fresh.Repos)).Msg("manifest changed, resubmitting")
			submitRepos(sched, fresh.Repos, log)
		}, log)
		if err != nil {
			log.Warn().Err(err).Msg("manifest watcher unavailable")
		} else {
			if err := watcher.Start(); err != nil {
				log.Warn().Err(err).Msg("manifest watcher failed to start")
			}
			defer watcher.Stop()
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	server := api.NewServer(sched, addr, log)
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("status server stopped")
		}
	}()

	log.Info().Str("addr", addr).Int("repos", len(cfg.Repos)).Msg("docsmith running")

	err = runner.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Stop(shutdownCtx)
	sched.Shutdown()

	return err
}

func submitRepos(sched *scheduler.Scheduler, repos []domain.Repository, log zerolog.Logger) {
	for _, repo := range repos {
		job := domain.NewJob(repo.ID, domain.PriorityNormal)
		if err := sched.Submit(job); err != nil {
			log.Warn().Str("repo", repo.ID).Err(err).Msg("submit failed")
		}
	}
}

func runSubmit(cmd *cobra.Command, args []string) error {
	body, err := json.Marshal(api.SubmitRequest{
		RepoID:   args[0],
		Priority: submitPriority,
	})
	if err != nil {
		return err
	}

	resp, err := http.Post(serverURL+"/api/jobs", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("submitting job: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("queue is full, try again later")
	}
	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	var sub api.SubmitResponse
	if err := json.NewDecoder(resp.Body).Decode(&sub); err != nil {
		return err
	}
	fmt.Printf("Submitted job %s for %s\n", sub.JobID, args[0])
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		resp, err := http.Get(serverURL + "/api/jobs/" + args[0])
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("job %s not found", args[0])
		}
		var job api.JobResponse
		if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
			return err
		}
		fmt.Printf("Job %s: %s", job.ID, job.Status)
		if job.Reason != "" {
			fmt.Printf(" (%s)", job.Reason)
		}
		fmt.Println()
		return nil
	}

	resp, err := http.Get(serverURL + "/api/stats")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var stats scheduler.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return err
	}

	fmt.Printf("Jobs: %d submitted | %d queued | %d running\n",
		stats.TotalSubmitted, stats.Queued, stats.Running)
	fmt.Printf("Done: %d completed | %d failed | %d cancelled\n",
		stats.Completed, stats.Failed, stats.Cancelled)
	fmt.Printf("Avg execution: %s | success rate: %.1f%% | throughput: %.1f/h\n",
		stats.AvgExecutionTime.Round(time.Millisecond), stats.SuccessRate, stats.ThroughputPerHour)
	return nil
}

func runCancel(cmd *cobra.Command, args []string) error {
	req, err := http.NewRequest(http.MethodDelete, serverURL+"/api/jobs/"+args[0], nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("job %s not found", args[0])
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("server returned status %d", resp.StatusCode)
	}
	fmt.Printf("Cancelled job %s\n", args[0])
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := jobstore.New(cfg.General.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening job store: %w", err)
	}
	defer store.Close()

	records, err := store.ListRecent(historyLimit)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No archived jobs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tREPO\tSTATUS\tDURATION\tCOMPLETED")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(rec.Job.ID.String()), rec.Job.RepoID, rec.Job.Status,
			rec.ExecutionTime.Round(time.Millisecond),
			humanize.Time(rec.CompletedAt))
	}
	w.Flush()
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	model := tui.NewModel(tui.NewHTTPProvider(serverURL))
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
