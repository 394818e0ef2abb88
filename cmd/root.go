package cmd

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/lehigh-university-libraries/cropscan/internal/config"
	"github.com/spf13/cobra"
)

type cli struct {
	configFile string
	settings   *config.Settings
}

func NewRootCmd() *cobra.Command {
	c := &cli{}

	cmd := &cobra.Command{
		Use:   "cropscan",
		Short: "Crop leaf disease diagnosis client",
		Long: `Cropscan diagnoses crop leaf diseases from a photo.

It sends a leaf image, uploaded or captured from a local camera, to a
classification service (or a vision-capable LLM), renders the ranked
diagnosis with prevention steps in English, Spanish or Hindi, and collects
feedback that is shared back with the community.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			v, err := config.New(c.configFile)
			if err != nil {
				return err
			}
			if err := config.BindFlags(v, cmd.Flags(), config.FlagKeys); err != nil {
				return err
			}
			s, err := config.Load(v)
			if err != nil {
				return err
			}
			level, err := config.LogLevel(s.LogLevel)
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			c.settings = s
			slog.Debug("Settings loaded", "backend", s.Backend, "prediction_url", s.PredictionURL, "language", s.Language)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "Config file (default: ./cropscan.yaml or ~/.config/cropscan/cropscan.yaml)")
	flags.String("prediction-url", "", "Base URL of the prediction service")
	flags.String("feedback-url", "", "Base URL of the feedback service (default: prediction URL)")
	flags.String("language", "", "Display language (en, es, hi)")
	flags.Duration("timeout", 0, "Request timeout")
	flags.String("backend", "", "Prediction backend (remote, openai, ollama, gemini)")
	flags.String("model", "", "LLM model name (defaults to the backend's default)")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(newDiagnoseCmd(c))
	cmd.AddCommand(newCaptureCmd(c))
	cmd.AddCommand(newServeCmd(c))
	cmd.AddCommand(newEvalCmd(c))

	return cmd
}
