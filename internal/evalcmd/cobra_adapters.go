package evalcmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/cropscan/internal/workflow"
	"github.com/spf13/cobra"
)

// Backend is the prediction collaborator under evaluation. Name, Model
// and Endpoint label the saved results.
type Backend struct {
	Predictor workflow.Predictor
	Name      string
	Model     string
	Endpoint  string
	Language  string
}

// BackendFunc resolves the configured backend when a command runs.
type BackendFunc func(cmd *cobra.Command) (Backend, error)

// NewRunCmd creates the run command
func NewRunCmd(backendFor BackendFunc) *cobra.Command {
	var opts RunOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Classify a labeled dataset and score the results",
		Long: `Runs every labeled leaf image through the configured prediction backend,
using the same acquire and submit path as an interactive session, and reports
top-1/top-3 accuracy, per-class precision/recall/F1 and a confusion matrix.

The dataset may be an ImageFolder directory (<root>/<label>/<image>), as
produced by the train/val/test split, or a JSONL or parquet manifest with
path and label columns.`,
		Example: `  # Evaluate the remote classifier on the test split
  cropscan eval run --dataset ./test

  # Evaluate 50 images with a local vision model, two at a time
  cropscan eval run --dataset ./test --backend ollama --limit 50 --concurrency 2

  # Stay under a hosted API's rate limit
  cropscan eval run --dataset manifest.parquet --backend openai --rate 0.5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Dataset == "" {
				return fmt.Errorf("--dataset is required")
			}
			backend, err := backendFor(cmd)
			if err != nil {
				return err
			}
			opts.Backend, opts.Model, opts.Endpoint, opts.Language = backend.Name, backend.Model, backend.Endpoint, backend.Language

			_, _, err = executeRun(cmd.Context(), backend.Predictor, opts, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVar(&opts.Dataset, "dataset", "", "ImageFolder directory, .jsonl or .parquet manifest (required)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Skip this many samples")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Evaluate at most this many samples (0 for all)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 4, "Number of concurrent predictions")
	cmd.Flags().Float64Var(&opts.Rate, "rate", 0, "Maximum predictions per second (0 for unlimited)")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "evals", "Directory for saved results")
	cmd.Flags().BoolVar(&opts.Options.EnhanceContrast, "enhance-contrast", false, "Ask the server to enhance contrast")
	cmd.Flags().BoolVar(&opts.Options.AutoCrop, "auto-crop", false, "Ask the server to crop to the leaf")

	return cmd
}

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Re-render a saved evaluation run",
		Example: `  # Report on the newest run in ./evals
  cropscan eval report

  # Export per-sample results
  cropscan eval report --results evals/llava_13b-2026-10-19_10-00-00.yaml --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(resultsPath, format, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "Saved .yaml or .json run (default: newest in ./evals)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json, csv)")

	return cmd
}
