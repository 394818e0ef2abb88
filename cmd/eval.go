package cmd

import (
	"fmt"

	"github.com/lehigh-university-libraries/cropscan/internal/app"
	"github.com/lehigh-university-libraries/cropscan/internal/config"
	"github.com/lehigh-university-libraries/cropscan/internal/evalcmd"
	"github.com/spf13/cobra"
)

func newEvalCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Diagnosis accuracy evaluation tools",
		Long: `Evaluation tools for measuring how well a prediction backend classifies
labeled leaf images.

Runs a labeled dataset through the same workflow an interactive session
uses, then reports top-1/top-3 accuracy, per-class precision, recall and F1,
the low-confidence rate and a confusion matrix.`,
	}

	backendFor := func(cmd *cobra.Command) (evalcmd.Backend, error) {
		s := c.settings
		p, model, err := app.NewPredictor(s)
		if err != nil {
			return evalcmd.Backend{}, fmt.Errorf("failed to create predictor: %w", err)
		}
		b := evalcmd.Backend{Predictor: p, Name: s.Backend, Model: model, Language: s.Language}
		if s.Backend == config.BackendRemote {
			b.Endpoint = s.PredictionURL
		}
		return b, nil
	}

	// Add eval subcommands
	cmd.AddCommand(evalcmd.NewRunCmd(backendFor))
	cmd.AddCommand(evalcmd.NewReportCmd())

	return cmd
}
