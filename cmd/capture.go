package cmd

import (
	"bufio"
	"fmt"
	"image/jpeg"
	"os"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/cropscan/internal/app"
	"github.com/lehigh-university-libraries/cropscan/internal/camera"
	"github.com/spf13/cobra"
)

func newCaptureCmd(c *cli) *cobra.Command {
	var o outputOptions
	var facing string
	var switchFirst bool
	var warmup time.Duration
	var previewPath string
	var interactive bool

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture a leaf photo from a local camera and diagnose it",
		Long: `Opens a local camera, captures a frame and submits it for diagnosis.

Camera capture needs a binary built with -tags gocv. With --interactive the
captured frame is written to --preview and you can keep it or retake it
before it is submitted.`,
		Example: `  # Capture from the rear camera
  cropscan capture

  # Capture from the front camera, review the frame first
  cropscan capture --facing user --interactive --preview frame.jpg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.validate(); err != nil {
				return err
			}
			f, err := camera.ParseFacing(facing)
			if err != nil {
				return err
			}
			if interactive && previewPath == "" {
				return fmt.Errorf("--interactive requires --preview")
			}

			ctx := cmd.Context()
			s := c.settings
			opts, err := app.OptionsFromSettings(s)
			if err != nil {
				return err
			}
			opts.Camera = camera.NewSystemDevice(s.Camera.EnvironmentIndex, s.Camera.UserIndex)
			client := newClient(ctx, s, opts)
			defer client.Close()

			if err := client.OpenCamera(ctx, f); err != nil {
				return userError(cmd, client, err)
			}
			if switchFirst {
				if err := client.SwitchCamera(ctx); err != nil {
					return userError(cmd, client, err)
				}
			}

			in := bufio.NewReader(cmd.InOrStdin())
			for {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(warmup):
				}
				if err := client.CaptureFrame(); err != nil {
					return userError(cmd, client, err)
				}
				if previewPath != "" {
					if err := writePreview(client, previewPath); err != nil {
						return err
					}
				}
				if !interactive {
					break
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Frame saved to %s. Use it? [y]es / [r]etake / [q]uit: ", previewPath)
				answer, err := in.ReadString('\n')
				if err != nil && answer == "" {
					return fmt.Errorf("failed to read answer: %w", err)
				}
				switch strings.ToLower(strings.TrimSpace(answer)) {
				case "y", "yes", "":
				case "q", "quit":
					return client.CloseCamera()
				default:
					if err := client.RetakeFrame(); err != nil {
						return userError(cmd, client, err)
					}
					continue
				}
				break
			}

			if _, err := client.ConfirmFrame(o.processing); err != nil {
				return userError(cmd, client, err)
			}
			return submitAndReport(cmd, client, &o)
		},
	}
	o.register(cmd)
	cmd.Flags().StringVar(&facing, "facing", "environment", "Camera to open (environment, user)")
	cmd.Flags().BoolVar(&switchFirst, "switch", false, "Switch to the other camera before capturing")
	cmd.Flags().DurationVar(&warmup, "warmup", 500*time.Millisecond, "Time to let exposure settle before capturing")
	cmd.Flags().StringVar(&previewPath, "preview", "", "Write the captured frame to this JPEG file")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "Confirm or retake the frame before submitting")
	cmd.Flags().Int("max-dimension", 0, "Longest side of confirmed frames in pixels (0 keeps full resolution)")

	return cmd
}

func writePreview(client *app.Client, path string) error {
	frame := client.Preview()
	if frame == nil {
		return fmt.Errorf("no frame to preview")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create preview: %w", err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, frame, &jpeg.Options{Quality: 90}); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	return nil
}
