package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
)

// Table is a CSV file held in memory.
type Table struct {
	Header []string
	Rows   [][]string
}

// LoadTable reads a CSV file with a header row. Rows may have differing widths.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("dataset is empty")
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	t := &Table{Header: header}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// DatasetSummary describes the local dataset for the API.
type DatasetSummary struct {
	Enabled bool     `json:"enabled"`
	Path    string   `json:"path,omitempty"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Dataset is the optional collaborator: download if needed, then load.
// Every failure is kept as a warning and never propagates to callers.
type Dataset struct {
	fetcher *DatasetFetcher
	logger  *zap.Logger

	mu      sync.RWMutex
	table   *Table
	lastErr error
}

// NewDataset wraps a fetcher. A nil fetcher yields a disabled dataset.
func NewDataset(fetcher *DatasetFetcher, logger *zap.Logger) *Dataset {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dataset{fetcher: fetcher, logger: logger}
}

// Prepare downloads and loads the dataset, logging failures as warnings.
func (d *Dataset) Prepare(ctx context.Context) {
	if d.fetcher == nil {
		return
	}
	if _, err := d.fetcher.Ensure(ctx); err != nil {
		d.logger.Warn("Error downloading dataset", zap.Error(err))
		d.record(nil, err)
		return
	}
	t, err := LoadTable(d.fetcher.Path)
	if err != nil {
		d.logger.Warn("Error loading dataset", zap.Error(err))
		d.record(nil, err)
		return
	}
	d.logger.Info("dataset loaded", zap.String("path", d.fetcher.Path), zap.Int("rows", len(t.Rows)))
	d.record(t, nil)
}

func (d *Dataset) record(t *Table, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.table = t
	d.lastErr = err
}

// Summary reports what was loaded, or why not.
func (d *Dataset) Summary() DatasetSummary {
	if d.fetcher == nil {
		return DatasetSummary{Enabled: false}
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := DatasetSummary{Enabled: true, Path: d.fetcher.Path}
	if d.table != nil {
		s.Rows = len(d.table.Rows)
		s.Columns = d.table.Header
	}
	if d.lastErr != nil {
		s.Error = d.lastErr.Error()
	}
	return s
}
