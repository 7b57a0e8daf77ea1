package benchmark

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Result is one structure/dataset-size cell of a benchmark run.
type Result struct {
	Structure        string  `json:"structure"`
	DatasetSize      int     `json:"dataset_size"`
	InsertionSeconds float64 `json:"insertion_seconds"`
	SearchSeconds    float64 `json:"search_seconds"`
	DeletionSeconds  float64 `json:"deletion_seconds"`
}

// Report collects the results of one benchmark invocation under a unique
// run ID, ready for JSON or CSV serialization. External plotting tooling
// consumes these files.
type Report struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Results   []Result  `json:"results"`
}

// NewReport creates an empty report stamped with a fresh run ID.
func NewReport() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// Add records one phase result.
func (r *Report) Add(structure string, datasetSize int, phases PhaseResult) {
	r.Results = append(r.Results, Result{
		Structure:        structure,
		DatasetSize:      datasetSize,
		InsertionSeconds: phases.Insertion.Seconds(),
		SearchSeconds:    phases.Search.Seconds(),
		DeletionSeconds:  phases.Deletion.Seconds(),
	})
}

// WriteJSON writes the report to path as indented JSON.
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}

// WriteCSV writes the result rows to path with a header row.
func (r *Report) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"structure", "dataset_size", "insertion_seconds", "search_seconds", "deletion_seconds"}); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, res := range r.Results {
		row := []string{
			res.Structure,
			strconv.Itoa(res.DatasetSize),
			strconv.FormatFloat(res.InsertionSeconds, 'f', -1, 64),
			strconv.FormatFloat(res.SearchSeconds, 'f', -1, 64),
			strconv.FormatFloat(res.DeletionSeconds, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush report %s: %w", path, err)
	}
	return nil
}
