package main

import (
	"encoding/csv"
	"fmt"
	"os"
)

// readCSV reads path as a comma-separated file, treating the first line as
// headers. Every cell is returned as interface{} holding a string; the
// orchestrator's type intuiter sorts out numeric/date/time columns later.
func readCSV(path string) (rows [][]interface{}, headers []string, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("mprctl: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("mprctl: parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	headers = records[0]
	for _, rec := range records[1:] {
		row := make([]interface{}, len(rec))
		for i, cell := range rec {
			row[i] = cell
		}
		rows = append(rows, row)
	}
	return rows, headers, nil
}
