package results

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/cropscan/internal/eval/metrics"
	"github.com/lehigh-university-libraries/cropscan/internal/models"
)

func runResults() []metrics.EvaluationResult {
	return []metrics.EvaluationResult{
		{
			ID:             "Tomato__healthy/1.jpg",
			Label:          "Tomato__healthy",
			Predictions:    []models.Prediction{{Class: "Tomato__healthy", Probability: 91.5, Prevention: []string{}}},
			ProcessingTime: 1500 * time.Millisecond,
		},
		{
			ID:    "Potato__healthy/2.jpg",
			Label: "Potato__healthy",
			Error: "prediction failed",
		},
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	cfg := EvalConfig{Backend: "ollama", Model: "llava:13b", Language: "en", DatasetPath: "test/", Timestamp: "2026-10-19_10-00-00"}

	path, err := Save(dir, cfg, runResults())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if filepath.Base(path) != "llava_13b-2026-10-19_10-00-00.yaml" {
		t.Errorf("Unexpected file name: %s", path)
	}

	for _, p := range []string{path, strings.TrimSuffix(path, ".yaml") + ".json"} {
		spec, err := Load(p)
		if err != nil {
			t.Fatalf("Load(%s) failed: %v", p, err)
		}
		if spec.Config.SampleSize != 2 || spec.Config.Model != "llava:13b" {
			t.Errorf("Unexpected config from %s: %+v", p, spec.Config)
		}
		if len(spec.Results) != 2 || spec.Results[0].Predictions[0].Probability != 91.5 {
			t.Errorf("Unexpected results from %s: %+v", p, spec.Results)
		}
		if spec.Results[0].ProcessingTime != 1500*time.Millisecond {
			t.Errorf("Processing time lost in %s: %s", p, spec.Results[0].ProcessingTime)
		}

		agg := spec.Aggregate()
		if agg.Top1Accuracy != 1 || agg.FailureCount != 1 {
			t.Errorf("Unexpected aggregate: %+v", agg)
		}
		if agg.EvaluationDate.Year() != 2026 {
			t.Errorf("Evaluation date not restored: %s", agg.EvaluationDate)
		}
	}
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()
	if _, err := Latest(dir); err == nil {
		t.Error("Expected error for empty directory")
	}

	older, err := Save(dir, EvalConfig{Backend: "remote", Timestamp: "2026-01-01_00-00-00"}, runResults())
	if err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(older, past, past); err != nil {
		t.Fatal(err)
	}
	newer, err := Save(dir, EvalConfig{Backend: "remote", Timestamp: "2026-02-01_00-00-00"}, runResults())
	if err != nil {
		t.Fatal(err)
	}

	got, err := Latest(dir)
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if got != newer {
		t.Errorf("Expected %s, got %s", newer, got)
	}
}

func TestLoadUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.txt")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected error for unsupported extension")
	}
}
