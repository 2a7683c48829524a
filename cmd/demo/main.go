package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"fare-predict/internal/batch"
	"fare-predict/internal/collector"
	"fare-predict/internal/inference"
	"fare-predict/internal/model"
	"fare-predict/internal/predict"
)

// Demo:
// - Load a model artifact (examples/fare_prediction_model.json by default)
// - Collect a few sample routes through the Input Collector
// - Score each one through the adapter to show how the pieces fit together
func main() {
	modelType := flag.String("model-type", inference.KindLinear, "Model type: linear, tree_ensemble or remote")
	modelPath := flag.String("model", "examples/fare_prediction_model.json", "Model artifact path or remote base URL")
	outCSV := flag.String("out", "", "Optional path to write the scored samples as CSV (e.g. results/demo.csv)")
	flag.Parse()

	ctx := context.Background()
	adapter := predict.Open(ctx, *modelType, *modelPath, nil)
	if !adapter.Available() {
		fmt.Fprintln(os.Stderr, adapter.Diagnostic())
		os.Exit(1)
	}

	samples := []map[string]float64{
		{"lf_ms": 0.8, "large_ms": 0.5, "fare_lg": 250, "quarter": 2, "fare_low": 150, "year": 2010},
		{"lf_ms": 0.65, "large_ms": 0.9, "fare_lg": 180, "quarter": 4, "fare_low": 120, "year": 2019},
		{"lf_ms": 0.3, "large_ms": 0.2, "fare_lg": 410, "quarter": 1, "fare_low": 390, "year": 2023},
	}

	header := make([]string, 0, model.VectorLen)
	for _, f := range model.Fields {
		header = append(header, f.Name)
	}

	var (
		recs    []batch.Record
		results []model.PredictionResult
	)
	for i, s := range samples {
		col := collector.New()
		if err := col.Apply(s); err != nil {
			panic(err)
		}
		v := col.Snapshot()

		res, err := adapter.Predict(ctx, v)
		fmt.Printf("sample %d: %s\n", i+1, v)
		fmt.Printf("  %s\n", res.Message())
		if err != nil {
			continue
		}

		display := col.Display()
		cells := make([]string, 0, len(header))
		for _, name := range header {
			cells = append(cells, display[name])
		}
		recs = append(recs, batch.Record{Line: i + 2, Cells: cells, Vector: v})
		results = append(results, res)
	}

	if *outCSV == "" {
		return
	}
	f, err := os.Create(*outCSV)
	if err != nil {
		panic(err)
	}
	defer f.Close()
	if err := batch.WriteRows(f, header, recs, results); err != nil {
		panic(err)
	}
	fmt.Printf("Wrote %d rows to %s\n", len(recs), *outCSV)
}
