package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"subreel/internal/config"
	"subreel/internal/deps"
	"subreel/internal/history"
	"subreel/internal/ingest"
	"subreel/internal/logging"
	"subreel/internal/preflight"
	"subreel/internal/progress"
	"subreel/internal/services"
	"subreel/internal/services/mkvtoolnix"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Extract subtitles for every source video and rewrite the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, ctx)
		},
	}
}

func runIngest(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.logger(cmd)
	if err != nil {
		return err
	}
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	if missing := deps.Missing(preflight.CheckSystemDeps(cfg)); len(missing) > 0 {
		return fmt.Errorf("preflight: missing required tools: %s", deps.Describe(missing))
	}

	lock, err := ingest.AcquireLock(cfg.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logging.WarnWithContext(logger, "release ingest lock failed", "lock_release_failed",
				logging.String("lock", lock.Path()),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the lock file if no ingest is running"),
			)
		}
	}()

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runID := uuid.NewString()
	runCtx = services.WithRunID(runCtx, runID)

	ledger := openLedger(runCtx, cfg, runID, logger)
	defer ledger.close()

	client := mkvtoolnix.New(
		mkvtoolnix.WithBinaries(cfg.MKVToolNix.MkvmergeBinary, cfg.MKVToolNix.MkvextractBinary),
		mkvtoolnix.WithStrictWarnings(cfg.MKVToolNix.StrictWarnings),
		mkvtoolnix.WithTimeout(cfg.ToolTimeout()),
	)
	coordinator := ingest.NewCoordinator(client, ingest.CoordinatorOptions{
		SourceDir:         cfg.Paths.SourceDir,
		WorkDir:           cfg.Paths.WorkDir,
		ScratchDir:        cfg.Paths.ScratchDir,
		SubtitleExtension: cfg.MKVToolNix.SubtitleExtension,
		Logger:            logger,
	})
	pipeline := ingest.NewPipeline(ingest.PipelineOptions{
		SourceDir:   cfg.Paths.SourceDir,
		WorkDir:     cfg.Paths.WorkDir,
		CatalogFile: cfg.Paths.CatalogFile,
		Processor:   coordinator,
		Progress:    progress.NewFactory(stderr),
		Logger:      logger,
	})

	summary, runErr := pipeline.Run(runCtx)
	ledger.finish(context.WithoutCancel(runCtx), summary, runErr)

	if runErr != nil {
		printFailure(stderr, runErr)
		return runErr
	}
	fmt.Fprintln(stdout, "Successfully Loaded Videos")
	fmt.Fprintf(stdout, "%d videos written to %s\n", len(summary.Records), summary.CatalogPath)
	return nil
}

func printFailure(w io.Writer, err error) {
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, "Ingest canceled; catalog left unchanged")
		return
	}
	if output := strings.TrimSpace(ingest.ToolOutput(err)); output != "" {
		fmt.Fprintln(w, output)
	}
	fmt.Fprintf(w, "Hint: %s\n", ingest.Hint(err))
}

// runLedger records the run in the history store. Every failure is logged and
// swallowed so an unavailable ledger never fails an ingest.
type runLedger struct {
	store  *history.Store
	runID  string
	logger *slog.Logger
}

func openLedger(ctx context.Context, cfg *config.Config, runID string, logger *slog.Logger) *runLedger {
	ledger := &runLedger{runID: runID, logger: logger}
	if !cfg.History.Enabled {
		return ledger
	}
	store, err := history.Open(cfg)
	if err != nil {
		ledger.warn("history_open_failed", err)
		return ledger
	}
	workDir := cfg.Paths.WorkDir
	if abs, err := filepath.Abs(workDir); err == nil {
		workDir = abs
	}
	if n, err := store.MarkInterrupted(ctx, workDir); err != nil {
		ledger.warn("history_mark_interrupted_failed", err)
	} else if n > 0 {
		logger.Info("marked interrupted runs as aborted", logging.Int("runs", int(n)))
	}
	if _, err := store.Begin(ctx, history.Run{
		ID:          runID,
		SourceDir:   cfg.Paths.SourceDir,
		WorkDir:     workDir,
		CatalogPath: cfg.Paths.CatalogFile,
	}); err != nil {
		ledger.warn("history_begin_failed", err)
		_ = store.Close()
		return ledger
	}
	ledger.store = store
	return ledger
}

func (l *runLedger) finish(ctx context.Context, summary ingest.Summary, runErr error) {
	if l.store == nil {
		return
	}
	outcome := history.Outcome{
		Succeeded:  runErr == nil,
		Total:      summary.Total,
		Processed:  summary.Processed,
		Removed:    summary.Removed,
		FailedFile: summary.FailedFile,
		ErrorKind:  ingest.KindName(runErr),
	}
	if runErr != nil {
		outcome.ErrorMessage = runErr.Error()
	}
	if err := l.store.Finish(ctx, l.runID, outcome); err != nil {
		l.warn("history_finish_failed", err)
	}
}

func (l *runLedger) close() {
	if l.store == nil {
		return
	}
	if err := l.store.Close(); err != nil {
		l.warn("history_close_failed", err)
	}
}

func (l *runLedger) warn(event string, err error) {
	logging.WarnWithContext(l.logger, "run history unavailable", event,
		logging.Error(err),
		logging.String(logging.FieldRunID, l.runID),
		logging.String(logging.FieldErrorHint, "check paths.state_dir or set history.enabled = false"),
	)
}
