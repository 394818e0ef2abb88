package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/lehigh-university-libraries/cropscan/internal/locale"
	"github.com/lehigh-university-libraries/cropscan/internal/present"
	"gopkg.in/yaml.v3"
)

func writeView(out io.Writer, view locale.View, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(view); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		writeResultText(out, view.Result)
		writeInsightsText(out, view.Insights)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json, yaml)", format)
	}
}

func writeResultText(out io.Writer, r *present.ResultView) {
	if r == nil {
		return
	}
	fmt.Fprintf(out, "%s\n", r.Labels.PredictionResult)
	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintf(out, "%s %s\n", r.Icon, r.DiseaseName)
	fmt.Fprintf(out, "%s: %d%% (%s)\n", r.Labels.Confidence, r.Confidence, r.Tier)
	fmt.Fprintf(out, "%s\n", r.SeverityLabel)
	if r.Warning != "" {
		fmt.Fprintf(out, "\n⚠ %s\n", r.Warning)
		for _, alt := range r.Alternatives {
			marker := " "
			if alt.Active {
				marker = "*"
			}
			fmt.Fprintf(out, "  %s %s %s %d%%\n", marker, alt.Icon, alt.Name, alt.Confidence)
		}
	}

	fmt.Fprintf(out, "\n%s\n", r.Labels.PreventionSteps)
	fmt.Fprintln(out, strings.Repeat("-", 50))
	if len(r.Prevention) == 0 {
		fmt.Fprintln(out, r.NoPrevention)
	}
	for i, step := range r.Prevention {
		fmt.Fprintf(out, "%d. %s %s\n", i+1, step.Icon, step.Title)
		if step.Text != step.Title {
			fmt.Fprintf(out, "   %s\n", step.Text)
		}
	}
}

func writeInsightsText(out io.Writer, ins *present.InsightsView) {
	if ins == nil {
		return
	}
	fmt.Fprintf(out, "\n%s\n", ins.Title)
	fmt.Fprintln(out, strings.Repeat("=", 50))
	if ins.Empty() {
		fmt.Fprintln(out, ins.EmptyMessage)
		return
	}
	writeBars(out, ins.RegionTitle, ins.RegionDiseases)
	writeBars(out, ins.SeasonalTitle, ins.SeasonalTrends)
	if len(ins.RecentSubmissions) > 0 {
		fmt.Fprintf(out, "\n%s\n", ins.RecentTitle)
		for _, s := range ins.RecentSubmissions {
			location := ""
			if s.Location != "" {
				location = " (" + s.Location + ")"
			}
			fmt.Fprintf(out, "  %s%s %s\n", s.Disease, location, s.Submitted)
		}
	}
	if ins.Note != "" {
		fmt.Fprintf(out, "\n%s\n", ins.Note)
	}
}

func writeBars(out io.Writer, title string, bars []present.ChartBar) {
	if len(bars) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s\n", title)
	for _, b := range bars {
		fmt.Fprintf(out, "  %-25s %s %d%%\n", b.Label, strings.Repeat("█", b.Width/5), b.Percentage)
	}
}
