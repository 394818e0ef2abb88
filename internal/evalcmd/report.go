package evalcmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/lehigh-university-libraries/cropscan/internal/eval/metrics"
	"github.com/lehigh-university-libraries/cropscan/internal/eval/results"
)

func executeReport(resultsPath, format string, out io.Writer) error {
	if resultsPath == "" {
		latest, err := results.Latest("evals")
		if err != nil {
			return err
		}
		resultsPath = latest
	}

	spec, err := results.Load(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}
	agg := spec.Aggregate()

	switch format {
	case "text":
		return printTextReport(agg, out)
	case "json":
		return agg.WriteJSON(out)
	case "csv":
		return printCSVReport(agg, out)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextReport(agg *metrics.AggregateResults, out io.Writer) error {
	agg.PrintSummary(out)

	fmt.Fprintln(out, "\nMisclassified and failed samples:")
	fmt.Fprintln(out, "========================================")
	for _, r := range agg.Results {
		switch {
		case r.Error != "":
			fmt.Fprintf(out, "  ❌ %s: %s\n", r.ID, r.Error)
		case r.Top() != r.Label:
			fmt.Fprintf(out, "  %s: predicted %s (%.1f%%)\n", r.ID, r.Top(), r.Predictions[0].Probability)
		}
	}
	return nil
}

func printCSVReport(agg *metrics.AggregateResults, out io.Writer) error {
	writer := csv.NewWriter(out)

	header := []string{"ID", "Label", "Predicted", "Probability", "Correct", "Top3", "Low Confidence", "Processing Ms", "Error"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range agg.Results {
		row := []string{r.ID, r.Label, r.Top(), "", "", "", strconv.FormatBool(r.LowConfidence), strconv.FormatInt(r.ProcessingTime.Milliseconds(), 10), r.Error}
		if len(r.Predictions) > 0 {
			row[3] = strconv.FormatFloat(r.Predictions[0].Probability, 'f', 2, 64)
			row[4] = strconv.FormatBool(r.Top() == r.Label)
			row[5] = strconv.FormatBool(r.InTopK(3))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
