package predict

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"fare-predict/internal/inference"
	"fare-predict/internal/model"
)

type stubModel struct {
	mu    sync.Mutex
	out   []float64
	err   error
	calls [][][]float64
}

func (s *stubModel) Predict(_ context.Context, rows [][]float64) ([]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, rows)
	return s.out, s.err
}

type panicModel struct{}

func (panicModel) Predict(context.Context, [][]float64) ([]float64, error) {
	var rows [][]float64
	return []float64{rows[0][0]}, nil
}

type blockingModel struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingModel) Predict(context.Context, [][]float64) ([]float64, error) {
	close(b.entered)
	<-b.release
	return []float64{1}, nil
}

func sampleVector() model.FeatureVector {
	return model.FeatureVector{0.8, 0.5, 250.0, 2, 150.0, 2010, 0, 0, 0, 0, 0, 0}
}

func TestPredictSendsOneRowAndFormats(t *testing.T) {
	stub := &stubModel{out: []float64{312.456}}
	a := NewAdapter(stub, nil)

	res, err := a.Predict(context.Background(), sampleVector())
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	want := [][][]float64{{{0.8, 0.5, 250.0, 2, 150.0, 2010, 0, 0, 0, 0, 0, 0}}}
	if diff := cmp.Diff(want, stub.calls); diff != "" {
		t.Fatalf("model input mismatch (-want +got):\n%s", diff)
	}
	if res.Formatted != "$312.46" {
		t.Fatalf("formatted = %q", res.Formatted)
	}
	if res.Message() != "Predicted Fare: $312.46" {
		t.Fatalf("message = %q", res.Message())
	}
	if a.State() != StateResultShown {
		t.Fatalf("state after success = %q", a.State())
	}
	if a.Last().Formatted != "$312.46" {
		t.Fatalf("last = %+v", a.Last())
	}
}

func TestPredictIsIdempotent(t *testing.T) {
	a := NewAdapter(&stubModel{out: []float64{99.999}}, nil)
	first, err := a.Predict(context.Background(), sampleVector())
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.Predict(context.Background(), sampleVector())
	if err != nil {
		t.Fatal(err)
	}
	if first.Formatted != second.Formatted || first.Formatted != "$100.00" {
		t.Fatalf("outputs differ: %q vs %q", first.Formatted, second.Formatted)
	}
}

func TestPredictModelErrorIsRecoverable(t *testing.T) {
	stub := &stubModel{err: errors.New("X has 11 features, but model is expecting 12")}
	a := NewAdapter(stub, nil)
	v := sampleVector()

	res, err := a.Predict(context.Background(), v)
	var ie *InferenceError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InferenceError, got %v", err)
	}
	if res.Error != "X has 11 features, but model is expecting 12" {
		t.Fatalf("result error = %q", res.Error)
	}
	if res.Vector != v {
		t.Fatalf("input vector not preserved")
	}
	if a.State() != StateErrorShown {
		t.Fatalf("state after failure = %q", a.State())
	}

	stub.err = nil
	stub.out = []float64{10}
	if _, err := a.Predict(context.Background(), v); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if a.State() != StateResultShown {
		t.Fatalf("state after retry = %q", a.State())
	}
}

func TestPredictRejectsBadOutputs(t *testing.T) {
	cases := map[string][]float64{
		"empty":      {},
		"two values": {1, 2},
		"nan":        {math.NaN()},
		"inf":        {math.Inf(-1)},
	}
	for name, out := range cases {
		t.Run(name, func(t *testing.T) {
			a := NewAdapter(&stubModel{out: out}, nil)
			_, err := a.Predict(context.Background(), sampleVector())
			var ie *InferenceError
			if !errors.As(err, &ie) {
				t.Fatalf("expected InferenceError, got %v", err)
			}
		})
	}
}

func TestPredictRecoversModelPanic(t *testing.T) {
	a := NewAdapter(panicModel{}, nil)
	_, err := a.Predict(context.Background(), sampleVector())
	var ie *InferenceError
	if !errors.As(err, &ie) {
		t.Fatalf("expected InferenceError, got %v", err)
	}
}

func TestPredictRejectsInvalidVectorWithoutCallingModel(t *testing.T) {
	stub := &stubModel{out: []float64{1}}
	a := NewAdapter(stub, nil)
	v := sampleVector()
	v[3] = 7

	_, err := a.Predict(context.Background(), v)
	var re *model.RangeError
	if !errors.As(err, &re) {
		t.Fatalf("expected RangeError, got %v", err)
	}
	if len(stub.calls) != 0 {
		t.Fatalf("model called with invalid vector")
	}
}

func TestUnavailableNeverCallsModel(t *testing.T) {
	a := Unavailable(errors.New("trained model file not found"), nil)
	if a.Available() {
		t.Fatalf("unavailable adapter reports available")
	}
	_, err := a.Predict(context.Background(), sampleVector())
	var mu *ModelUnavailableError
	if !errors.As(err, &mu) {
		t.Fatalf("expected ModelUnavailableError, got %v", err)
	}
	if !errors.Is(err, inference.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable in chain")
	}
	if a.Diagnostic() != "trained model file not found" {
		t.Fatalf("diagnostic = %q", a.Diagnostic())
	}
}

func TestConcurrentTriggerIsRefused(t *testing.T) {
	bm := &blockingModel{entered: make(chan struct{}), release: make(chan struct{})}
	a := NewAdapter(bm, nil)

	done := make(chan error, 1)
	go func() {
		_, err := a.Predict(context.Background(), sampleVector())
		done <- err
	}()
	<-bm.entered

	if a.State() != StatePredicting {
		t.Fatalf("state while running = %q", a.State())
	}
	if _, err := a.Predict(context.Background(), sampleVector()); !errors.Is(err, ErrPredictionInProgress) {
		t.Fatalf("expected ErrPredictionInProgress, got %v", err)
	}

	close(bm.release)
	if err := <-done; err != nil {
		t.Fatalf("first prediction: %v", err)
	}
	if a.State() != StateResultShown {
		t.Fatalf("state after release = %q", a.State())
	}
}

func TestOpenMissingArtifactIsUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fare_prediction_model.json")
	a := Open(context.Background(), inference.KindLinear, path, nil)
	if a.Available() {
		t.Fatalf("adapter available without a model file")
	}
	if !strings.Contains(a.Diagnostic(), "not found") {
		t.Fatalf("diagnostic = %q", a.Diagnostic())
	}
}

func TestOpenLinearArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	artifact := `{"intercept": 100, "coefficients": [0,0,1,0,0,0,0,0,0,0,0,0]}`
	if err := os.WriteFile(path, []byte(artifact), 0o644); err != nil {
		t.Fatal(err)
	}
	a := Open(context.Background(), inference.KindLinear, path, nil)
	if !a.Available() {
		t.Fatalf("unavailable: %s", a.Diagnostic())
	}
	v := model.DefaultVector()
	v[2] = 212.456
	res, err := a.Predict(context.Background(), v)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if res.Formatted != "$312.46" {
		t.Fatalf("formatted = %q", res.Formatted)
	}
}

func TestPredictBatchUsesOneCall(t *testing.T) {
	stub := &stubModel{out: []float64{312.456, 99.999}}
	a := NewAdapter(stub, nil)
	second := sampleVector()
	second[3] = 4

	results, err := a.PredictBatch(context.Background(), []model.FeatureVector{sampleVector(), second})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(stub.calls) != 1 || len(stub.calls[0]) != 2 {
		t.Fatalf("expected one call with two rows, got %v", stub.calls)
	}
	got := []string{results[0].Formatted, results[1].Formatted}
	if diff := cmp.Diff([]string{"$312.46", "$100.00"}, got); diff != "" {
		t.Fatalf("formatted mismatch (-want +got):\n%s", diff)
	}
	if a.State() != StateResultShown {
		t.Fatalf("state = %q", a.State())
	}
}

func TestPredictBatchValidatesEveryRowFirst(t *testing.T) {
	stub := &stubModel{out: []float64{1, 2}}
	a := NewAdapter(stub, nil)
	bad := sampleVector()
	bad[5] = 2030

	_, err := a.PredictBatch(context.Background(), []model.FeatureVector{sampleVector(), bad})
	var re *model.RangeError
	if !errors.As(err, &re) || re.Field != "year" {
		t.Fatalf("expected year RangeError, got %v", err)
	}
	if len(stub.calls) != 0 {
		t.Fatalf("model called with an invalid row")
	}
}

func TestPredictBatchShapeMismatch(t *testing.T) {
	a := NewAdapter(&stubModel{out: []float64{1}}, nil)
	_, err := a.PredictBatch(context.Background(), []model.FeatureVector{sampleVector(), sampleVector()})
	if !errors.Is(err, inference.ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch, got %v", err)
	}
}

func TestStateCycle(t *testing.T) {
	stub := &stubModel{out: []float64{42}}
	a := NewAdapter(stub, nil)
	if a.State() != StateIdle {
		t.Fatalf("initial state = %q", a.State())
	}

	steps := []struct {
		err  error
		want State
	}{
		{nil, StateResultShown},
		{errors.New("boom"), StateErrorShown},
		{errors.New("boom again"), StateErrorShown},
		{nil, StateResultShown},
	}
	for i, step := range steps {
		stub.err = step.err
		_, _ = a.Predict(context.Background(), sampleVector())
		if a.State() != step.want {
			t.Fatalf("step %d: state = %q, want %q", i, a.State(), step.want)
		}
	}
	if len(stub.calls) != len(steps) {
		t.Fatalf("shown state refused a trigger: %d calls", len(stub.calls))
	}
}
