package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"vidmeta/internal/config"
	"vidmeta/internal/history"
	"vidmeta/internal/logging"
	"vidmeta/internal/media/ffprobe"
	"vidmeta/internal/metadata"
	"vidmeta/internal/services"
	"vidmeta/internal/source"
)

// Prober runs the three ffprobe queries.
type Prober interface {
	Inspect(ctx context.Context, path string) (ffprobe.Report, error)
	Duration(ctx context.Context, path string) (string, error)
	Resolution(ctx context.Context, path string) (string, error)
}

// Resolver materializes an item's input as a local file.
type Resolver interface {
	Resolve(ctx context.Context, in source.Input) (*source.Scratch, error)
}

// Recorder persists item outcomes.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) (*history.Entry, error)
}

// Options controls a run.
type Options struct {
	Operation      metadata.Operation
	OutputField    string
	IncludeRaw     bool
	ContinueOnFail bool
	// ScratchDir, when set, is claimed for the duration of the run so a
	// concurrent sweep leaves in-flight files alone.
	ScratchDir string
}

// OptionsFromConfig maps the [pipeline] section onto Options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	op, err := metadata.ParseOperation(cfg.Pipeline.Operation)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Operation:      op,
		OutputField:    cfg.Pipeline.OutputField,
		IncludeRaw:     cfg.Pipeline.IncludeRaw,
		ContinueOnFail: cfg.Pipeline.ContinueOnFail,
		ScratchDir:     cfg.Paths.ScratchDir,
	}, nil
}

// Outcome is the result for one input item.
type Outcome struct {
	RunID string
	Index int
	Item  Item
	// Result is the encoded derived record; nil when the item failed.
	Result json.RawMessage
	Err    error
}

// Runner processes items sequentially.
type Runner struct {
	resolver Resolver
	prober   Prober
	recorder Recorder
	opts     Options
	logger   *slog.Logger
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithRecorder attaches a history recorder.
func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) {
		r.recorder = rec
	}
}

// NewRunner builds a runner. Empty Operation and OutputField fall back to
// extractMetadata and "metadata".
func NewRunner(resolver Resolver, prober Prober, opts Options, logger *slog.Logger, options ...RunnerOption) *Runner {
	if opts.Operation == "" {
		opts.Operation = metadata.OperationExtract
	}
	if strings.TrimSpace(opts.OutputField) == "" {
		opts.OutputField = "metadata"
	}
	r := &Runner{
		resolver: resolver,
		prober:   prober,
		opts:     opts,
		logger:   logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Run processes items in order. Without ContinueOnFail the first failure stops
// the run; the outcomes gathered so far are returned with an error naming the
// failing item.
func (r *Runner) Run(ctx context.Context, items []Item) ([]Outcome, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithOperation(ctx, r.opts.Operation.String())
	logger := logging.WithContext(ctx, r.logger)

	if dir := strings.TrimSpace(r.opts.ScratchDir); dir != "" {
		claim, err := source.ClaimDir(dir)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "claim scratch", dir, err)
		}
		defer func() { _ = claim.Release() }()
	}

	started := time.Now()
	outcomes := make([]Outcome, 0, len(items))
	failed := 0
	for idx, item := range items {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		itemCtx := services.WithItemIndex(ctx, idx)
		itemLogger := logging.WithContext(itemCtx, r.logger)

		itemStarted := time.Now()
		result, err := r.processItem(itemCtx, item, itemLogger)
		elapsed := time.Since(itemStarted)

		outcome := Outcome{RunID: runID, Index: idx}
		if err != nil {
			failed++
			outcome.Err = err
			outcome.Item = item.withField("error", err.Error())
			r.record(itemCtx, outcome, item, elapsed, itemLogger)
			if !r.opts.ContinueOnFail {
				logging.ErrorWithContext(itemLogger, "item failed; aborting run", "item_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "enable continue_on_fail to keep going past bad inputs"),
				)
				return outcomes, fmt.Errorf("item %d: %w", idx, err)
			}
			logging.WarnWithContext(itemLogger, "item failed; continuing", "item_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "item output carries an error field"),
			)
			outcomes = append(outcomes, outcome)
			continue
		}

		outcome.Result = result
		outcome.Item = item.withField(r.opts.OutputField, result)
		r.record(itemCtx, outcome, item, elapsed, itemLogger)
		itemLogger.Debug("item processed", logging.Duration("elapsed", elapsed))
		outcomes = append(outcomes, outcome)
	}

	logger.Info("run complete",
		logging.Int("items", len(items)),
		logging.Int("failed", failed),
		logging.Duration("elapsed", time.Since(started)),
		logging.String(logging.FieldEventType, "run_complete"),
	)
	return outcomes, nil
}

func (r *Runner) processItem(ctx context.Context, item Item, logger *slog.Logger) (json.RawMessage, error) {
	scratch, err := r.resolver.Resolve(ctx, item.Input())
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := scratch.Release(); releaseErr != nil {
			logging.WarnWithContext(logger, "failed to remove scratch file", "scratch_release_failed",
				logging.String("path", scratch.Path),
				logging.Error(releaseErr),
				logging.String(logging.FieldImpact, "file left for the next sweep"),
			)
		}
	}()

	derived, err := r.derive(ctx, scratch.Path)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(derived)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "encode", "derived record", err)
	}
	return encoded, nil
}

func (r *Runner) derive(ctx context.Context, path string) (any, error) {
	switch r.opts.Operation {
	case metadata.OperationExtract:
		report, err := r.prober.Inspect(ctx, path)
		if err != nil {
			return nil, err
		}
		return metadata.Extract(report, metadata.Options{IncludeRaw: r.opts.IncludeRaw}), nil
	case metadata.OperationDuration:
		text, err := r.prober.Duration(ctx, path)
		if err != nil {
			return nil, err
		}
		return metadata.Duration(text), nil
	case metadata.OperationResolution:
		text, err := r.prober.Resolution(ctx, path)
		if err != nil {
			return nil, err
		}
		return metadata.Resolution(text), nil
	default:
		return nil, services.Wrap(services.ErrValidation, "pipeline", "derive", fmt.Sprintf("unsupported operation %q", r.opts.Operation), nil)
	}
}

func (r *Runner) record(ctx context.Context, outcome Outcome, item Item, elapsed time.Duration, logger *slog.Logger) {
	if r.recorder == nil {
		return
	}
	entry := history.Entry{
		RunID:     outcome.RunID,
		ItemIndex: outcome.Index,
		Source:    item.Input().Describe(),
		Operation: r.opts.Operation.String(),
		Status:    history.StatusOK,
		Result:    outcome.Result,
		Duration:  elapsed,
	}
	if outcome.Err != nil {
		entry.Status = history.StatusFailed
		entry.ErrorKind = services.FailureKind(outcome.Err)
		entry.Error = outcome.Err.Error()
	}
	// Cancellation of the run must not drop the final record.
	recordCtx := context.WithoutCancel(ctx)
	if _, err := r.recorder.Record(recordCtx, entry); err != nil && !errors.Is(err, context.Canceled) {
		logging.WarnWithContext(logger, "failed to record history", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.history_path permissions"),
			logging.String(logging.FieldImpact, "item missing from history"),
		)
	}
}
