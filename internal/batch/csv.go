// Package batch scores CSV files of feature rows.
package batch

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"fare-predict/internal/collector"
	"fare-predict/internal/model"
	"fare-predict/internal/predict"
)

// FareColumn is appended to every output row.
const FareColumn = "predicted_fare"

// Record is one input row: its raw cells and the vector assembled from them.
type Record struct {
	Line   int
	Cells  []string
	Vector model.FeatureVector
}

// RowError locates a rejected cell.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ReadRows reads a header plus data rows. Columns named after features fill
// the vector; missing features take their defaults and other columns are
// carried through untouched.
func ReadRows(r io.Reader) ([]string, []Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, errors.New("empty input: expected a header row")
		}
		return nil, nil, err
	}

	type column struct {
		pos  int
		name string
	}
	var columns []column
	for i, name := range header {
		if _, ok := model.FieldIndex(name); ok {
			columns = append(columns, column{pos: i, name: name})
		}
	}
	if len(columns) == 0 {
		return nil, nil, fmt.Errorf("header has no feature columns: %v", header)
	}

	var recs []Record
	for line := 2; ; line++ {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		col := collector.New()
		for _, c := range columns {
			if err := col.SetString(c.name, cells[c.pos]); err != nil {
				return nil, nil, &RowError{Line: line, Err: err}
			}
		}
		recs = append(recs, Record{Line: line, Cells: cells, Vector: col.Snapshot()})
	}
	return header, recs, nil
}

// WriteRows writes the input columns plus FareColumn.
func WriteRows(w io.Writer, header []string, recs []Record, results []model.PredictionResult) error {
	if len(recs) != len(results) {
		return fmt.Errorf("%d rows but %d results", len(recs), len(results))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(append(append([]string{}, header...), FareColumn)); err != nil {
		return err
	}
	for i, r := range recs {
		row := append(append([]string{}, r.Cells...), fmtFare(results[i].Fare))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ScoreFile reads inPath, scores every row in one model call and writes
// outPath. It returns the number of rows written.
func ScoreFile(ctx context.Context, adapter *predict.Adapter, inPath, outPath string) (int, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	header, recs, err := ReadRows(in)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", inPath, err)
	}

	vs := make([]model.FeatureVector, len(recs))
	for i, r := range recs {
		vs[i] = r.Vector
	}
	results, err := adapter.PredictBatch(ctx, vs)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return 0, err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	if err := WriteRows(out, header, recs, results); err != nil {
		return 0, err
	}
	return len(recs), out.Close()
}

func fmtFare(f model.Fare) string {
	return strconv.FormatFloat(float64(f), 'f', 2, 64)
}
