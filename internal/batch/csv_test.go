package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"fare-predict/internal/model"
	"fare-predict/internal/predict"
)

type sumModel struct {
	calls int
}

// Predict returns fare_lg + fare_low for each row.
func (m *sumModel) Predict(_ context.Context, rows [][]float64) ([]float64, error) {
	m.calls++
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r[2] + r[4]
	}
	return out, nil
}

func TestReadRowsDefaultsAndPassthrough(t *testing.T) {
	in := "route,fare_lg,quarter,fare_low\nBOS-SFO,250,2,62.456\nJFK-LAX,100,,50\n"
	header, recs, err := ReadRows(strings.NewReader(in))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if diff := cmp.Diff([]string{"route", "fare_lg", "quarter", "fare_low"}, header); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	want := model.DefaultVector()
	want[2], want[3], want[4] = 100, 1, 50
	if recs[1].Vector != want {
		t.Fatalf("vector = %v, want %v", recs[1].Vector, want)
	}
	if recs[1].Line != 3 {
		t.Fatalf("line = %d", recs[1].Line)
	}
}

func TestReadRowsRejectsBadCell(t *testing.T) {
	in := "quarter,year\n2,2010\n5,2010\n"
	_, _, err := ReadRows(strings.NewReader(in))
	var rowErr *RowError
	if !errors.As(err, &rowErr) || rowErr.Line != 3 {
		t.Fatalf("expected RowError on line 3, got %v", err)
	}
	var re *model.RangeError
	if !errors.As(err, &re) || re.Field != "quarter" {
		t.Fatalf("expected quarter RangeError, got %v", err)
	}
}

func TestReadRowsNeedsFeatureHeader(t *testing.T) {
	if _, _, err := ReadRows(strings.NewReader("")); err == nil {
		t.Fatalf("expected error for empty input")
	}
	if _, _, err := ReadRows(strings.NewReader("a,b\n1,2\n")); err == nil {
		t.Fatalf("expected error for header without features")
	}
}

func TestScoreFile(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "rows.csv")
	outPath := filepath.Join(dir, "out", "predictions.csv")
	in := "route,fare_lg,quarter,fare_low\nBOS-SFO,250,2,62.456\nJFK-LAX,100,,50\n"
	if err := os.WriteFile(inPath, []byte(in), 0o644); err != nil {
		t.Fatal(err)
	}

	m := &sumModel{}
	n, err := ScoreFile(context.Background(), predict.NewAdapter(m, nil), inPath, outPath)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if n != 2 || m.calls != 1 {
		t.Fatalf("rows=%d calls=%d", n, m.calls)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	want := "route,fare_lg,quarter,fare_low,predicted_fare\n" +
		"BOS-SFO,250,2,62.456,312.46\n" +
		"JFK-LAX,100,,50,150.00\n"
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreFileWithoutModel(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "rows.csv")
	if err := os.WriteFile(inPath, []byte("quarter\n1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	adapter := predict.Unavailable(errors.New("no model"), nil)
	if _, err := ScoreFile(context.Background(), adapter, inPath, filepath.Join(dir, "out.csv")); err == nil {
		t.Fatalf("expected error without a model")
	}
	if _, err := os.Stat(filepath.Join(dir, "out.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("output written without a model")
	}
}
