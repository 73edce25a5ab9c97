package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"subreel/internal/catalog"
	"subreel/internal/logging"
	"subreel/internal/progress"
	"subreel/internal/services"
)

// Processor turns one source entry into a catalog record.
type Processor interface {
	Process(ctx context.Context, name string) (catalog.Record, error)
}

// PipelineOptions wires a Pipeline.
type PipelineOptions struct {
	SourceDir   string
	WorkDir     string
	CatalogFile string
	Processor   Processor
	Progress    progress.Factory
	Logger      *slog.Logger
}

// Pipeline runs one batch: scan the source directory, prepare the work
// directory, process every entry in order and persist the catalog. The first
// failure aborts the batch and nothing is persisted.
type Pipeline struct {
	sourceDir   string
	workDir     string
	catalogFile string
	processor   Processor
	progress    progress.Factory
	logger      *slog.Logger
}

// Summary describes a finished or aborted run.
type Summary struct {
	State       State
	Total       int
	Processed   int
	Removed     int
	Records     []catalog.Record
	CatalogPath string
	FailedFile  string
	Duration    time.Duration
}

// NewPipeline constructs a pipeline.
func NewPipeline(opts PipelineOptions) *Pipeline {
	factory := opts.Progress
	if factory == nil {
		factory = progress.NopFactory()
	}
	return &Pipeline{
		sourceDir:   opts.SourceDir,
		workDir:     opts.WorkDir,
		catalogFile: opts.CatalogFile,
		processor:   opts.Processor,
		progress:    factory,
		logger:      logging.NewComponentLogger(opts.Logger, "ingest"),
	}
}

// Run executes the batch. The returned summary is populated on both success
// and failure.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	machine := NewMachine()
	summary := Summary{CatalogPath: p.catalogFile}
	logger := p.logger.With(logging.Args(services.LogAttrs(ctx)...)...)

	finish := func(err error) (Summary, error) {
		summary.State = machine.State()
		summary.Total = machine.Total()
		summary.Processed = machine.Completed()
		summary.Duration = time.Since(started)
		return summary, err
	}
	abort := func(err error) (Summary, error) {
		if abortErr := machine.Abort(); abortErr != nil {
			err = fmt.Errorf("%w (%v)", err, abortErr)
		}
		summary.FailedFile = FailedFile(err)
		attrs := []logging.Attr{
			logging.Error(err),
			logging.String(logging.FieldErrorHint, Hint(err)),
			logging.Int("processed", machine.Completed()),
			logging.Int("total", machine.Total()),
		}
		if summary.FailedFile != "" {
			attrs = append(attrs, logging.String(logging.FieldFile, summary.FailedFile))
		}
		if stage := services.StageOf(err); stage != "" {
			attrs = append(attrs, logging.String("stage", stage))
		}
		logging.ErrorWithContext(logger, "ingest aborted; catalog left unchanged", "ingest_"+KindName(err), attrs...)
		return finish(err)
	}

	if p.processor == nil {
		return finish(fmt.Errorf("ingest pipeline: processor not configured"))
	}
	if err := machine.Scan(); err != nil {
		return finish(err)
	}
	names, err := ScanSource(p.sourceDir)
	if err != nil {
		return abort(err)
	}
	logger.Info("source directory scanned",
		logging.String("source_dir", p.sourceDir),
		logging.Int("entries", len(names)),
	)

	if err := machine.Prepare(len(names)); err != nil {
		return abort(err)
	}
	removed, err := PrepareWorkDir(p.workDir, p.progress)
	summary.Removed = removed
	if err != nil {
		return abort(err)
	}
	if removed > 0 {
		logger.Info("work directory cleared",
			logging.String("work_dir", p.workDir),
			logging.Int("removed", removed),
		)
	}

	if err := machine.Begin(); err != nil {
		return abort(err)
	}
	builder := catalog.NewBuilder()
	if err := p.processAll(ctx, machine, builder, names); err != nil {
		summary.Records = builder.Records()
		return abort(err)
	}
	summary.Records = builder.Records()

	if err := machine.Persist(); err != nil {
		return abort(err)
	}
	if err := builder.Persist(p.catalogFile); err != nil {
		return abort(services.Wrap(ErrPersist, "persist", "write catalog", p.catalogFile, err))
	}
	if err := machine.Finish(); err != nil {
		return finish(err)
	}

	result, _ := finish(nil)
	logger.Info("catalog written",
		logging.String("catalog_file", p.catalogFile),
		logging.Int("records", len(result.Records)),
		logging.Duration("duration", result.Duration),
	)
	return result, nil
}

func (p *Pipeline) processAll(ctx context.Context, machine *Machine, builder *catalog.Builder, names []string) error {
	if len(names) == 0 {
		return nil
	}
	reporter := p.progress("Loading Videos")
	reporter.Start(len(names))
	defer reporter.Stop()

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("ingest interrupted before %s: %w", name, err)
		}
		record, err := p.processor.Process(ctx, name)
		if err != nil {
			return err
		}
		stored := builder.Append(record)
		if err := machine.Complete(); err != nil {
			return err
		}
		reporter.Increment()
		p.logger.Debug("video loaded",
			logging.String(logging.FieldFile, name),
			logging.String("slug", stored.Slug),
		)
	}
	return nil
}
