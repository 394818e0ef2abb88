package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/cropscan/internal/eval/metrics"
	"gopkg.in/yaml.v3"
)

// EvalConfig represents the configuration section of a saved run
type EvalConfig struct {
	Backend     string `yaml:"backend" json:"backend"`
	Model       string `yaml:"model,omitempty" json:"model,omitempty"`
	Endpoint    string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	Language    string `yaml:"language" json:"language"`
	DatasetPath string `yaml:"datasetpath" json:"dataset_path"`
	SampleSize  int    `yaml:"samplesize" json:"sample_size"`
	Timestamp   string `yaml:"timestamp" json:"timestamp"`
}

// EvalSpec is a saved run: its configuration and every per-sample result
type EvalSpec struct {
	Config  EvalConfig                 `yaml:"config" json:"config"`
	Results []metrics.EvaluationResult `yaml:"results" json:"results"`
}

// Aggregate recomputes the metrics for a saved run.
func (s *EvalSpec) Aggregate() *metrics.AggregateResults {
	agg := metrics.AggregateEvaluationResults(s.Results, s.Config.Backend, s.Config.Model)
	if t, err := time.Parse(timestampLayout, s.Config.Timestamp); err == nil {
		agg.EvaluationDate = t
	}
	return agg
}

const timestampLayout = "2006-01-02_15-04-05"

// Save writes the run as <name>-<timestamp>.yaml and .json under dir and
// returns the YAML path.
func Save(dir string, cfg EvalConfig, results []metrics.EvaluationResult) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	if cfg.Timestamp == "" {
		cfg.Timestamp = time.Now().Format(timestampLayout)
	}
	cfg.SampleSize = len(results)
	spec := EvalSpec{Config: cfg, Results: results}

	name := cfg.Model
	if name == "" {
		name = cfg.Backend
	}
	base := filepath.Join(dir, fmt.Sprintf("%s-%s", sanitize(name), cfg.Timestamp))

	data, err := yaml.Marshal(&spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(base+".yaml", data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	data, err = json.MarshalIndent(&spec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	if err := os.WriteFile(base+".json", data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return base + ".yaml", nil
}

// Load reads a run saved by Save, in either format.
func Load(path string) (*EvalSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	var spec EvalSpec
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &spec)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &spec)
	default:
		return nil, fmt.Errorf("unsupported results format: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &spec, nil
}

// Latest returns the newest YAML run in dir.
func Latest(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return "", err
	}
	var newest string
	var newestMod time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest, newestMod = m, info.ModTime()
		}
	}
	if newest == "" {
		return "", fmt.Errorf("no evaluation results in %s", dir)
	}
	return newest, nil
}

func sanitize(name string) string {
	return strings.NewReplacer("/", "_", ":", "_", " ", "_").Replace(name)
}
