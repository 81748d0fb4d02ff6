// Package config loads MPR's tunable constants (batch sizes, histogram
// geometry, cardinality width, sampling threshold, SQL adapter module name)
// from a TOML file.
//
// Grounded on holocm-holo-build's src/holo-build/parser.go
// (toml.Decode into an exported struct, string-typed parse errors) using
// github.com/BurntSushi/toml, the same decoder the teacher's author of the
// retrieved pack reaches for.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/ambrydata/mpr/errs"
	"github.com/ambrydata/mpr/rowstore"
	"github.com/ambrydata/mpr/stats"
)

// Config only needs exported field names for the TOML parser to produce
// meaningful error messages on malformed input data.
type Config struct {
	Writer WriterSection
	Intuit IntuitSection
	Stats  StatsSection
	SQL    SQLSection
}

// WriterSection configures rowstore.Writer.
type WriterSection struct {
	BatchSize int `toml:"batch_size"`
}

// IntuitSection configures the row/type intuiters.
type IntuitSection struct {
	HeadSample int `toml:"head_sample"`
	TailSample int `toml:"tail_sample"`
	SampleFrom int `toml:"sample_from"`
}

// StatsSection configures the stats engine (C6).
type StatsSection struct {
	TopK       int `toml:"top_k"`
	PrimerSize int `toml:"primer_size"`
	NumBins    int `toml:"num_bins"`
}

// SQLSection configures the SQL foreign-table adapter (C7).
type SQLSection struct {
	ModuleName string `toml:"module_name"`
	SchemaName string `toml:"schema_name"`
}

// Default returns the configuration spec.md's defaults describe.
func Default() Config {
	return Config{
		Writer: WriterSection{BatchSize: rowstore.DefaultBatchSize},
		Intuit: IntuitSection{HeadSample: 40, TailSample: 40, SampleFrom: 0},
		Stats: StatsSection{
			TopK:       stats.DefaultTopK,
			PrimerSize: stats.DefaultPrimerSize,
			NumBins:    stats.DefaultNumBins,
		},
		SQL: SQLSection{ModuleName: "mpr", SchemaName: "mpr_foreign"},
	}
}

// Load reads and decodes a TOML config file at path, applying spec defaults
// to any field the file leaves zero-valued.
func Load(path string) (Config, error) {
	c := Default()
	blob, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, errs.ConfigurationError)
	}
	if _, err := toml.Decode(string(blob), &c); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, errs.ConfigurationError)
	}
	return c, nil
}

// StatsOptions projects the Stats section into stats.Options.
func (c Config) StatsOptions() stats.Options {
	return stats.Options{
		TopK:       c.Stats.TopK,
		PrimerSize: c.Stats.PrimerSize,
		NumBins:    c.Stats.NumBins,
		SampleFrom: c.Intuit.SampleFrom,
	}
}
