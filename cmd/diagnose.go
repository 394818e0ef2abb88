package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/cropscan/internal/acquisition"
	"github.com/lehigh-university-libraries/cropscan/internal/app"
	"github.com/lehigh-university-libraries/cropscan/internal/config"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
	"github.com/lehigh-university-libraries/cropscan/internal/present"
	"github.com/spf13/cobra"
)

// outputOptions are shared by the commands that submit an image.
type outputOptions struct {
	processing       models.ProcessingOptions
	format           string
	judgment         string
	correctedDisease string
	contribute       bool
	speak            bool
}

func (o *outputOptions) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.processing.EnhanceContrast, "enhance-contrast", false, "Ask the server to enhance contrast")
	cmd.Flags().BoolVar(&o.processing.AutoCrop, "auto-crop", false, "Ask the server to crop to the leaf")
	cmd.Flags().StringVarP(&o.format, "format", "f", "text", "Output format (text, json, yaml)")
	cmd.Flags().StringVar(&o.judgment, "feedback", "", "Send feedback on the result (correct, incorrect)")
	cmd.Flags().StringVar(&o.correctedDisease, "corrected-disease", "", "Correct class label when --feedback=incorrect")
	cmd.Flags().BoolVar(&o.contribute, "contribute", false, "Contribute the image to the training dataset with the feedback")
	cmd.Flags().BoolVar(&o.speak, "speak", false, "Print the spoken summary of the result")
	cmd.Flags().Bool("geo", true, "Attach location context when a position is configured")
}

func (o *outputOptions) validate() error {
	switch o.judgment {
	case "", string(models.Correct), string(models.Incorrect):
	default:
		return fmt.Errorf("invalid --feedback %q: must be correct or incorrect", o.judgment)
	}
	if o.correctedDisease != "" && o.judgment != string(models.Incorrect) {
		return fmt.Errorf("--corrected-disease requires --feedback=incorrect")
	}
	return nil
}

// newClient builds a client for a one-shot command. Without a configured
// position nothing would ever report one, so geo is left off.
func newClient(ctx context.Context, s *config.Settings, opts app.Options) *app.Client {
	opts.Geo = opts.Geo && s.Geo.HasPosition()
	return app.New(ctx, opts)
}

func newDiagnoseCmd(c *cli) *cobra.Command {
	var o outputOptions

	cmd := &cobra.Command{
		Use:   "diagnose <image file or URL>",
		Short: "Diagnose a leaf image",
		Long: `Uploads a leaf image to the prediction service and prints the ranked
diagnosis with prevention steps in the configured language.`,
		Example: `  # Diagnose a photo
  cropscan diagnose leaf.jpg

  # Diagnose in Spanish and print YAML
  cropscan diagnose leaf.jpg --language es --format yaml

  # Use a local vision model instead of the prediction server
  cropscan diagnose leaf.jpg --backend ollama

  # Tell the server the diagnosis was wrong
  cropscan diagnose leaf.jpg --feedback incorrect --corrected-disease Tomato__leaf_mold`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.validate(); err != nil {
				return err
			}
			ctx := cmd.Context()
			opts, err := app.OptionsFromSettings(c.settings)
			if err != nil {
				return err
			}
			client := newClient(ctx, c.settings, opts)
			defer client.Close()

			if err := acquireSource(ctx, client, args[0], o.processing, c.settings); err != nil {
				return userError(cmd, client, err)
			}
			return submitAndReport(cmd, client, &o)
		},
	}
	o.register(cmd)

	return cmd
}

func acquireSource(ctx context.Context, client *app.Client, source string, opts models.ProcessingOptions, s *config.Settings) error {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		session, err := acquisition.FromURL(ctx, &http.Client{Timeout: s.Timeout}, source, opts)
		if err != nil {
			return err
		}
		return acquireLogged(client, session)
	}

	f, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	session, err := acquisition.ReadUpload(f, filepath.Base(source), "", opts)
	if err != nil {
		return err
	}
	return acquireLogged(client, session)
}

func acquireLogged(client *app.Client, session *acquisition.Session) error {
	if blob, err := session.Blob(); err == nil {
		if info, err := acquisition.Inspect(blob); err == nil {
			slog.Debug("Image acquired", "name", session.Filename, "format", info.Format, "width", info.Width, "height", info.Height)
		}
	}
	return client.Acquire(session)
}

// submitAndReport submits the active image, prints the result and sends
// any requested feedback.
func submitAndReport(cmd *cobra.Command, client *app.Client, o *outputOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if _, err := client.Submit(ctx); err != nil {
		return userError(cmd, client, err)
	}

	if o.judgment == "" {
		if err := writeView(out, client.View().View, o.format); err != nil {
			return err
		}
		return speak(out, client, o)
	}

	if err := client.OpenFeedback(ctx, models.Judgment(o.judgment)); err != nil {
		return userError(cmd, client, err)
	}
	if o.judgment == string(models.Incorrect) {
		record := models.FeedbackRecord{
			Judgment:        models.Incorrect,
			CorrectedLabel:  o.correctedDisease,
			ContributeImage: o.contribute,
		}
		if err := client.ResolveFeedback(ctx, record); err != nil {
			return userError(cmd, client, err)
		}
	}

	snap := client.View()
	if err := writeView(out, snap.View, o.format); err != nil {
		return err
	}
	if msg := snap.Status.FeedbackMessage; msg != "" && o.format == "text" {
		fmt.Fprintf(out, "\n%s\n", msg)
	}
	return speak(out, client, o)
}

func speak(out io.Writer, client *app.Client, o *outputOptions) error {
	if !o.speak || o.format != "text" {
		return nil
	}
	if u := client.View().View.Speech; u != nil {
		fmt.Fprintf(out, "\n[%s] %s\n", u.Lang, u.Text)
	}
	return nil
}

// userError prints the localized message and returns err for the exit code.
func userError(cmd *cobra.Command, client *app.Client, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), present.ErrorMessage(err, client.View().View.Language))
	return err
}
