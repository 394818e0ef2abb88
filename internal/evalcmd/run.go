package evalcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/cropscan/internal/acquisition"
	"github.com/lehigh-university-libraries/cropscan/internal/eval/dataset"
	"github.com/lehigh-university-libraries/cropscan/internal/eval/metrics"
	"github.com/lehigh-university-libraries/cropscan/internal/eval/results"
	"github.com/lehigh-university-libraries/cropscan/internal/locale"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
	"github.com/lehigh-university-libraries/cropscan/internal/workflow"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// RunOptions describes one evaluation run.
type RunOptions struct {
	Dataset     string
	Offset      int
	Limit       int
	Concurrency int
	// Rate caps predictions per second. Zero means unlimited.
	Rate      float64
	OutputDir string
	Language  string
	Options   models.ProcessingOptions

	Backend  string
	Model    string
	Endpoint string
}

func executeRun(ctx context.Context, predictor workflow.Predictor, opts RunOptions, out io.Writer) (*metrics.AggregateResults, string, error) {
	slog.Info("Starting evaluation run", "dataset", opts.Dataset, "backend", opts.Backend, "model", opts.Model)

	loader := dataset.NewLoader(opts.Dataset)
	loader.Offset, loader.Limit = opts.Offset, opts.Limit
	samples, err := loader.Load()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load dataset: %w", err)
	}
	if len(samples) == 0 {
		return nil, "", fmt.Errorf("no samples in %s", opts.Dataset)
	}

	slog.Info("Dataset loaded", "samples", len(samples))

	var limiter *rate.Limiter
	if opts.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.Rate), 1)
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	// Per-sample failures are recorded, not returned, so the group only
	// stops early on cancellation.
	evalResults := make([]metrics.EvaluationResult, len(samples))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, sample := range samples {
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
			}
			slog.Debug("Processing sample", "id", sample.ID(), "progress", fmt.Sprintf("%d/%d", i+1, len(samples)))
			evalResults[i] = evaluateSample(gctx, predictor, sample, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, "", fmt.Errorf("evaluation interrupted: %w", err)
	}

	agg := metrics.AggregateEvaluationResults(evalResults, opts.Backend, opts.Model)

	saved, err := results.Save(opts.OutputDir, results.EvalConfig{
		Backend:     opts.Backend,
		Model:       opts.Model,
		Endpoint:    opts.Endpoint,
		Language:    opts.Language,
		DatasetPath: opts.Dataset,
	}, evalResults)
	if err != nil {
		return nil, "", fmt.Errorf("failed to save results: %w", err)
	}

	agg.PrintSummary(out)
	absPath, _ := filepath.Abs(saved)
	fmt.Fprintf(out, "\nResults saved to: %s\n", absPath)
	fmt.Fprintf(out, "\nGenerate a report with:\n  cropscan eval report --results %s\n", saved)

	return agg, saved, nil
}

// evaluateSample drives a fresh workflow through acquire and submit, the
// same path an interactive upload takes.
func evaluateSample(ctx context.Context, predictor workflow.Predictor, sample dataset.Sample, opts RunOptions) (result metrics.EvaluationResult) {
	result = metrics.EvaluationResult{
		ID:    sample.ID(),
		Label: sample.Label,
	}
	start := time.Now()
	defer func() { result.ProcessingTime = time.Since(start) }()

	data, err := os.ReadFile(sample.Path)
	if err != nil {
		result.Error = fmt.Sprintf("failed to read image: %v", err)
		return result
	}

	session, err := acquisition.FromUpload(filepath.Base(sample.Path), sample.ContentType(), data, opts.Options)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	wf := workflow.New(workflow.Config{
		Predictor: predictor,
		Locale:    locale.NewStore(opts.Language),
	})
	defer wf.Close()

	if err := wf.Acquire(session); err != nil {
		session.Release()
		result.Error = err.Error()
		return result
	}

	rs, err := wf.Submit(ctx)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Predictions = rs.Predictions
	result.LowConfidence = rs.LowConfidence
	return result
}
