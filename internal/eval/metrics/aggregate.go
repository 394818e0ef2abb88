package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/cropscan/internal/models"
	"gonum.org/v1/gonum/stat"
)

// EvaluationResult is the outcome of one labeled sample
type EvaluationResult struct {
	ID             string              `json:"id" yaml:"id"`
	Label          string              `json:"label" yaml:"label"`
	Predictions    []models.Prediction `json:"predictions,omitempty" yaml:"predictions,omitempty"`
	LowConfidence  bool                `json:"low_confidence" yaml:"low_confidence"`
	ProcessingTime time.Duration       `json:"processing_time" yaml:"processing_time"`
	Error          string              `json:"error,omitempty" yaml:"error,omitempty"` // If prediction failed
}

// Top returns the highest ranked class, or "".
func (r EvaluationResult) Top() string {
	if len(r.Predictions) == 0 {
		return ""
	}
	return r.Predictions[0].Class
}

// InTopK reports whether the label is among the first k predictions.
func (r EvaluationResult) InTopK(k int) bool {
	for i, p := range r.Predictions {
		if i >= k {
			break
		}
		if p.Class == r.Label {
			return true
		}
	}
	return false
}

// ClassStats holds one-vs-rest counts for a label
type ClassStats struct {
	Label          string  `json:"label"`
	Support        int     `json:"support"`
	TruePositives  int     `json:"true_positives"`
	FalsePositives int     `json:"false_positives"`
	FalseNegatives int     `json:"false_negatives"`
	Precision      float64 `json:"precision"`
	Recall         float64 `json:"recall"`
	F1             float64 `json:"f1"`
}

// ConfidenceStats summarizes top-1 probabilities
type ConfidenceStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
}

// AggregateResults represents aggregated evaluation metrics
type AggregateResults struct {
	TotalRecords int `json:"total_records"`
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`

	Top1Accuracy      float64 `json:"top1_accuracy"`
	Top3Accuracy      float64 `json:"top3_accuracy"`
	LowConfidenceRate float64 `json:"low_confidence_rate"`

	Classes []ClassStats `json:"classes"`
	// Confusion counts true label -> top-1 prediction.
	Confusion map[string]map[string]int `json:"confusion"`

	CorrectConfidence   ConfidenceStats `json:"correct_confidence"`
	IncorrectConfidence ConfidenceStats `json:"incorrect_confidence"`

	AverageProcessingTime time.Duration `json:"average_processing_time"`
	TotalProcessingTime   time.Duration `json:"total_processing_time"`

	Results []EvaluationResult `json:"results"`

	EvaluationDate time.Time `json:"evaluation_date"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	SampleSize     int       `json:"sample_size"`
}

// AggregateEvaluationResults aggregates multiple evaluation results
func AggregateEvaluationResults(results []EvaluationResult, provider, model string) *AggregateResults {
	agg := &AggregateResults{
		TotalRecords:   len(results),
		Results:        results,
		Confusion:      make(map[string]map[string]int),
		EvaluationDate: time.Now(),
		Provider:       provider,
		Model:          model,
		SampleSize:     len(results),
	}

	var top1, top3, low int
	var correct, incorrect []float64
	var successDuration time.Duration
	classes := make(map[string]*ClassStats)
	class := func(label string) *ClassStats {
		cs, ok := classes[label]
		if !ok {
			cs = &ClassStats{Label: label}
			classes[label] = cs
		}
		return cs
	}

	for _, result := range results {
		agg.TotalProcessingTime += result.ProcessingTime

		if result.Error != "" || len(result.Predictions) == 0 {
			agg.FailureCount++
			continue
		}

		agg.SuccessCount++
		successDuration += result.ProcessingTime

		predicted := result.Top()
		if agg.Confusion[result.Label] == nil {
			agg.Confusion[result.Label] = make(map[string]int)
		}
		agg.Confusion[result.Label][predicted]++

		class(result.Label).Support++
		confidence := result.Predictions[0].Probability
		if predicted == result.Label {
			top1++
			class(result.Label).TruePositives++
			correct = append(correct, confidence)
		} else {
			class(result.Label).FalseNegatives++
			class(predicted).FalsePositives++
			incorrect = append(incorrect, confidence)
		}
		if result.InTopK(3) {
			top3++
		}
		if result.LowConfidence {
			low++
		}
	}

	if agg.SuccessCount > 0 {
		n := float64(agg.SuccessCount)
		agg.Top1Accuracy = float64(top1) / n
		agg.Top3Accuracy = float64(top3) / n
		agg.LowConfidenceRate = float64(low) / n
		agg.AverageProcessingTime = successDuration / time.Duration(agg.SuccessCount)
	}

	for _, cs := range classes {
		cs.Precision = ratio(cs.TruePositives, cs.TruePositives+cs.FalsePositives)
		cs.Recall = ratio(cs.TruePositives, cs.TruePositives+cs.FalseNegatives)
		if cs.Precision+cs.Recall > 0 {
			cs.F1 = 2 * cs.Precision * cs.Recall / (cs.Precision + cs.Recall)
		}
		agg.Classes = append(agg.Classes, *cs)
	}
	sort.Slice(agg.Classes, func(i, j int) bool {
		return agg.Classes[i].Label < agg.Classes[j].Label
	})

	agg.CorrectConfidence = confidenceStats(correct)
	agg.IncorrectConfidence = confidenceStats(incorrect)

	return agg
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

// confidenceStats uses the sample standard deviation, which is undefined
// below two values.
func confidenceStats(values []float64) ConfidenceStats {
	cs := ConfidenceStats{Count: len(values)}
	switch len(values) {
	case 0:
		return cs
	case 1:
		cs.Mean = values[0]
		return cs
	}
	cs.Mean, cs.StdDev = stat.MeanStdDev(values, nil)
	if math.IsNaN(cs.StdDev) {
		cs.StdDev = 0
	}
	return cs
}

// Labels returns every label in the confusion matrix, true or predicted.
func (a *AggregateResults) Labels() []string {
	seen := make(map[string]bool)
	for actual, row := range a.Confusion {
		seen[actual] = true
		for predicted := range row {
			seen[predicted] = true
		}
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// PrintSummary writes a human-readable summary of the evaluation
func (a *AggregateResults) PrintSummary(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	fmt.Fprintln(w, "CROPSCAN EVALUATION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Evaluation Date: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Provider: %s\n", a.Provider)
	fmt.Fprintf(w, "Model: %s\n", a.Model)
	fmt.Fprintf(w, "Sample Size: %d images\n", a.SampleSize)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PROCESSING STATISTICS")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Total Images: %d\n", a.TotalRecords)
	fmt.Fprintf(w, "Successful: %d (%.1f%%)\n", a.SuccessCount, percent(a.SuccessCount, a.TotalRecords))
	fmt.Fprintf(w, "Failed: %d (%.1f%%)\n", a.FailureCount, percent(a.FailureCount, a.TotalRecords))
	fmt.Fprintf(w, "Average Processing Time: %s\n", a.AverageProcessingTime)
	fmt.Fprintf(w, "Total Processing Time: %s\n", a.TotalProcessingTime)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "ACCURACY")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Top-1: %.2f%%\n", a.Top1Accuracy*100)
	fmt.Fprintf(w, "Top-3: %.2f%%\n", a.Top3Accuracy*100)
	fmt.Fprintf(w, "Low confidence: %.2f%%\n", a.LowConfidenceRate*100)
	fmt.Fprintf(w, "Confidence when correct:   %.1f ± %.1f (n=%d)\n", a.CorrectConfidence.Mean, a.CorrectConfidence.StdDev, a.CorrectConfidence.Count)
	fmt.Fprintf(w, "Confidence when incorrect: %.1f ± %.1f (n=%d)\n", a.IncorrectConfidence.Mean, a.IncorrectConfidence.StdDev, a.IncorrectConfidence.Count)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PER-CLASS")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "%-36s %9s %9s %9s %7s\n", "Label", "Precision", "Recall", "F1", "Support")
	for _, cs := range a.Classes {
		fmt.Fprintf(w, "%-36s %9.3f %9.3f %9.3f %7d\n", cs.Label, cs.Precision, cs.Recall, cs.F1, cs.Support)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "CONFUSION (actual -> predicted)")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, actual := range a.Labels() {
		row := a.Confusion[actual]
		if len(row) == 0 {
			continue
		}
		predicted := make([]string, 0, len(row))
		for p := range row {
			predicted = append(predicted, p)
		}
		sort.Strings(predicted)
		cells := make([]string, 0, len(predicted))
		for _, p := range predicted {
			cells = append(cells, fmt.Sprintf("%s=%d", p, row[p]))
		}
		fmt.Fprintf(w, "%s: %s\n", actual, strings.Join(cells, ", "))
	}
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

// SaveToJSON saves the aggregate results to a JSON file
func (a *AggregateResults) SaveToJSON(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	return a.WriteJSON(file)
}

// WriteJSON encodes the aggregate results as indented JSON
func (a *AggregateResults) WriteJSON(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(a); err != nil {
		return fmt.Errorf("failed to encode results to JSON: %w", err)
	}

	return nil
}
