package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Loader reads labeled samples from an ImageFolder directory
// (<root>/<label>/<image>), a JSONL manifest or a parquet manifest.
type Loader struct {
	datasetPath string

	// Offset skips that many samples before Limit applies. A Limit of zero
	// loads everything.
	Offset int
	Limit  int
}

// NewLoader creates a new dataset loader
func NewLoader(datasetPath string) *Loader {
	return &Loader{
		datasetPath: datasetPath,
	}
}

// Load detects the dataset layout and returns its samples in a stable order
func (l *Loader) Load() ([]Sample, error) {
	info, err := os.Stat(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat dataset: %w", err)
	}

	var samples []Sample
	if info.IsDir() {
		samples, err = l.loadImageFolder()
	} else {
		switch ext := strings.ToLower(filepath.Ext(l.datasetPath)); ext {
		case ".parquet":
			samples, err = l.loadParquet()
		case ".jsonl", ".json":
			samples, err = l.loadJSONL()
		default:
			return nil, fmt.Errorf("unsupported file format: %s (supported: directory, .parquet, .jsonl)", ext)
		}
	}
	if err != nil {
		return nil, err
	}

	samples = l.window(samples)
	slog.Debug("Loaded dataset", "path", l.datasetPath, "samples", len(samples), "offset", l.Offset, "limit", l.Limit)
	return samples, nil
}

func (l *Loader) window(samples []Sample) []Sample {
	if l.Offset > 0 {
		if l.Offset >= len(samples) {
			return nil
		}
		samples = samples[l.Offset:]
	}
	if l.Limit > 0 && len(samples) > l.Limit {
		samples = samples[:l.Limit]
	}
	return samples
}

// loadImageFolder walks one directory per label, in sorted order
func (l *Loader) loadImageFolder() ([]Sample, error) {
	entries, err := os.ReadDir(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset directory: %w", err)
	}

	var samples []Sample
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		label := entry.Name()
		classDir := filepath.Join(l.datasetPath, label)
		images, err := os.ReadDir(classDir)
		if err != nil {
			return nil, fmt.Errorf("failed to read class directory %s: %w", label, err)
		}
		count := 0
		for _, img := range images {
			if img.IsDir() || !isImage(img.Name()) {
				continue
			}
			samples = append(samples, Sample{Path: filepath.Join(classDir, img.Name()), Label: label})
			count++
		}
		slog.Debug("Read class directory", "label", label, "images", count)
	}

	sort.SliceStable(samples, func(i, j int) bool {
		if samples[i].Label != samples[j].Label {
			return samples[i].Label < samples[j].Label
		}
		return samples[i].Path < samples[j].Path
	})
	return samples, nil
}

// loadJSONL reads one {"path","label"} object per line
func (l *Loader) loadJSONL() ([]Sample, error) {
	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer file.Close()

	var samples []Sample
	scanner := bufio.NewScanner(file)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var sample Sample
		if err := json.Unmarshal(line, &sample); err != nil {
			return nil, fmt.Errorf("failed to parse JSON at line %d: %w", lineNum, err)
		}
		if sample.Path == "" || sample.Label == "" {
			return nil, fmt.Errorf("line %d: path and label are required", lineNum)
		}
		samples = append(samples, l.resolve(sample))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	return samples, nil
}

// loadParquet reads a manifest with path and label columns
func (l *Loader) loadParquet() ([]Sample, error) {
	file, err := os.Open(l.datasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened successfully", "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[Sample](pf)
	defer reader.Close()

	var samples []Sample
	rows := make([]Sample, 128)
	for {
		n, err := reader.Read(rows)
		for _, row := range rows[:n] {
			samples = append(samples, l.resolve(row))
		}
		if err != nil {
			break
		}
	}

	return samples, nil
}

func (l *Loader) resolve(s Sample) Sample {
	if !filepath.IsAbs(s.Path) {
		s.Path = filepath.Join(filepath.Dir(l.datasetPath), s.Path)
	}
	return s
}

// WriteParquet writes samples as a parquet manifest
func WriteParquet(path string, samples []Sample) error {
	if err := parquet.WriteFile(path, samples); err != nil {
		return fmt.Errorf("failed to write parquet manifest: %w", err)
	}
	return nil
}
