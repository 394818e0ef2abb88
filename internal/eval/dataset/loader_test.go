package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func imageFolder(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Tomato__healthy", "b.jpg"), "x")
	writeFile(t, filepath.Join(root, "Tomato__healthy", "a.png"), "x")
	writeFile(t, filepath.Join(root, "Tomato__healthy", "notes.txt"), "skip me")
	writeFile(t, filepath.Join(root, "Potato__late_blight", "c.JPEG"), "x")
	writeFile(t, filepath.Join(root, "README.md"), "skip me")
	return root
}

func TestLoadImageFolder(t *testing.T) {
	root := imageFolder(t)

	samples, err := NewLoader(root).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []Sample{
		{Path: filepath.Join(root, "Potato__late_blight", "c.JPEG"), Label: "Potato__late_blight"},
		{Path: filepath.Join(root, "Tomato__healthy", "a.png"), Label: "Tomato__healthy"},
		{Path: filepath.Join(root, "Tomato__healthy", "b.jpg"), Label: "Tomato__healthy"},
	}
	if len(samples) != len(want) {
		t.Fatalf("Expected %d samples, got %d: %+v", len(want), len(samples), samples)
	}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("Sample %d: expected %+v, got %+v", i, want[i], samples[i])
		}
	}
}

func TestLoadOffsetAndLimit(t *testing.T) {
	root := imageFolder(t)

	tests := []struct {
		name   string
		offset int
		limit  int
		want   []string
	}{
		{name: "everything", want: []string{"c.JPEG", "a.png", "b.jpg"}},
		{name: "limit", limit: 2, want: []string{"c.JPEG", "a.png"}},
		{name: "offset", offset: 1, want: []string{"a.png", "b.jpg"}},
		{name: "offset and limit", offset: 1, limit: 1, want: []string{"a.png"}},
		{name: "offset past end", offset: 5, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader(root)
			l.Offset, l.Limit = tt.offset, tt.limit
			samples, err := l.Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if len(samples) != len(tt.want) {
				t.Fatalf("Expected %v, got %+v", tt.want, samples)
			}
			for i, name := range tt.want {
				if filepath.Base(samples[i].Path) != name {
					t.Errorf("Sample %d: expected %s, got %s", i, name, samples[i].Path)
				}
			}
		})
	}
}

func TestLoadJSONL(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "test.jsonl")
	writeFile(t, manifest, `{"path":"images/1.jpg","label":"Tomato__leaf_mold"}

{"path":"/abs/2.jpg","label":"Potato__healthy"}
`)

	samples, err := NewLoader(manifest).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("Expected 2 samples, got %d", len(samples))
	}
	if samples[0].Path != filepath.Join(dir, "images", "1.jpg") {
		t.Errorf("Relative path not resolved: %s", samples[0].Path)
	}
	if samples[1].Path != "/abs/2.jpg" {
		t.Errorf("Absolute path changed: %s", samples[1].Path)
	}
}

func TestLoadJSONLErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.jsonl")
	writeFile(t, bad, "{not json}\n")
	if _, err := NewLoader(bad).Load(); err == nil {
		t.Error("Expected error for malformed line")
	}

	missing := filepath.Join(dir, "missing.jsonl")
	writeFile(t, missing, `{"path":"1.jpg"}`+"\n")
	if _, err := NewLoader(missing).Load(); err == nil {
		t.Error("Expected error for missing label")
	}

	csv := filepath.Join(dir, "samples.csv")
	writeFile(t, csv, "path,label\n")
	if _, err := NewLoader(csv).Load(); err == nil {
		t.Error("Expected error for unsupported format")
	}

	if _, err := NewLoader(filepath.Join(dir, "nope")).Load(); err == nil {
		t.Error("Expected error for missing dataset")
	}
}

func TestParquetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "test.parquet")
	in := []Sample{
		{Path: "a.jpg", Label: "Tomato__healthy"},
		{Path: "b.jpg", Label: "Tomato__target_spot"},
	}
	if err := WriteParquet(manifest, in); err != nil {
		t.Fatalf("WriteParquet failed: %v", err)
	}

	samples, err := NewLoader(manifest).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("Expected 2 samples, got %d", len(samples))
	}
	if samples[1].Label != "Tomato__target_spot" || samples[1].Path != filepath.Join(dir, "b.jpg") {
		t.Errorf("Unexpected sample: %+v", samples[1])
	}
}

func TestSampleHelpers(t *testing.T) {
	s := Sample{Path: "/data/test/Tomato__healthy/leaf.PNG", Label: "Tomato__healthy"}
	if s.ID() != "Tomato__healthy/leaf.PNG" {
		t.Errorf("Unexpected ID: %s", s.ID())
	}
	if s.ContentType() != "image/png" {
		t.Errorf("Unexpected content type: %s", s.ContentType())
	}
	if (Sample{Path: "x.jpg"}).ContentType() != "image/jpeg" {
		t.Error("Expected jpeg default")
	}
}
