package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mpr.toml")
	body := `
[writer]
batch_size = 250

[stats]
top_k = 50
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Writer.BatchSize != 250 {
		t.Errorf("BatchSize = %d, want 250", c.Writer.BatchSize)
	}
	if c.Stats.TopK != 50 {
		t.Errorf("TopK = %d, want 50", c.Stats.TopK)
	}
	if c.Intuit.HeadSample != 40 {
		t.Errorf("HeadSample = %d, want default 40", c.Intuit.HeadSample)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/path/mpr.toml"); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}
