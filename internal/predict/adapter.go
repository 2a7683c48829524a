// Package predict turns a feature vector into a formatted fare by calling
// an injected model exactly once per trigger.
package predict

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"fare-predict/internal/inference"
	"fare-predict/internal/model"
)

// State is where the adapter is in its trigger cycle. ResultShown and
// ErrorShown last until the next trigger and accept it like Idle.
type State string

const (
	StateIdle        State = "idle"
	StatePredicting  State = "predicting"
	StateResultShown State = "result_shown"
	StateErrorShown  State = "error_shown"
)

// ErrPredictionInProgress is returned when a trigger arrives while another
// prediction is still running. The model is not called.
var ErrPredictionInProgress = errors.New("a prediction is already in progress")

// InferenceError wraps any failure raised while scoring a vector.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("prediction failed: %v", e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// ModelUnavailableError is returned by an adapter built without a model.
type ModelUnavailableError struct {
	Diagnostic string
}

func (e *ModelUnavailableError) Error() string {
	return e.Diagnostic
}

func (e *ModelUnavailableError) Unwrap() error { return inference.ErrModelUnavailable }

// Adapter owns the loaded model for the life of the process.
type Adapter struct {
	model      inference.Model
	diagnostic string
	logger     *zap.Logger

	mu    sync.Mutex // held for the duration of one prediction
	smu   sync.Mutex
	state State
	last  model.PredictionResult
}

// NewAdapter builds an adapter around a loaded model.
func NewAdapter(m inference.Model, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{model: m, logger: logger, state: StateIdle}
}

// Unavailable builds an adapter that refuses every trigger with the given
// diagnostic. It is what callers hold when the model failed to load.
func Unavailable(cause error, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	diag := "model unavailable"
	if cause != nil {
		diag = cause.Error()
	}
	return &Adapter{diagnostic: diag, logger: logger, state: StateIdle}
}

// Open loads the model artifact once. A load failure is not returned: the
// adapter comes back unavailable and carries the diagnostic instead.
func Open(ctx context.Context, kind, path string, logger *zap.Logger, opts ...inference.Option) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	m, err := inference.Load(ctx, kind, path, opts...)
	if err != nil {
		logger.Error("model unavailable", zap.String("kind", kind), zap.String("path", path), zap.Error(err))
		return Unavailable(err, logger)
	}
	logger.Info("model loaded", zap.String("kind", kind), zap.String("path", path))
	return NewAdapter(m, logger)
}

// Available reports whether a model is loaded and triggers are accepted.
func (a *Adapter) Available() bool {
	return a.model != nil
}

// Diagnostic is the startup message for an unavailable adapter.
func (a *Adapter) Diagnostic() string {
	return a.diagnostic
}

// State returns the current cycle state.
func (a *Adapter) State() State {
	a.smu.Lock()
	defer a.smu.Unlock()
	return a.state
}

// Last returns the outcome of the most recent completed trigger.
func (a *Adapter) Last() model.PredictionResult {
	a.smu.Lock()
	defer a.smu.Unlock()
	return a.last
}

func (a *Adapter) setState(s State) {
	a.smu.Lock()
	a.state = s
	a.smu.Unlock()
}

// Predict scores one vector. The returned result always carries the vector;
// on failure its Error field holds the message shown to the user.
func (a *Adapter) Predict(ctx context.Context, v model.FeatureVector) (model.PredictionResult, error) {
	res := model.PredictionResult{Vector: v}
	if !a.Available() {
		err := &ModelUnavailableError{Diagnostic: a.diagnostic}
		res.Error = err.Error()
		return res, err
	}
	if err := v.Validate(); err != nil {
		res.Error = err.Error()
		return res, err
	}
	if !a.mu.TryLock() {
		return res, ErrPredictionInProgress
	}
	defer a.mu.Unlock()

	a.setState(StatePredicting)
	start := time.Now()

	fare, err := a.score(ctx, v)
	if err != nil {
		ierr := &InferenceError{Err: err}
		res.Error = err.Error()
		a.finish(res, StateErrorShown)
		a.logger.Warn("prediction failed",
			zap.Error(err),
			zap.Stringer("vector", v),
			zap.Duration("duration", time.Since(start)))
		return res, ierr
	}

	res.Fare = fare
	res.Formatted = fare.String()
	a.finish(res, StateResultShown)
	a.logger.Info("prediction",
		zap.String("fare", res.Formatted),
		zap.Stringer("vector", v),
		zap.Duration("duration", time.Since(start)))
	return res, nil
}

// finish records the outcome and the state it leaves on screen.
func (a *Adapter) finish(res model.PredictionResult, shown State) {
	a.smu.Lock()
	a.state = shown
	a.last = res
	a.smu.Unlock()
	a.logger.Debug("prediction state", zap.String("state", string(shown)))
}

func (a *Adapter) score(ctx context.Context, v model.FeatureVector) (model.Fare, error) {
	out, err := a.scoreRows(ctx, [][]float64{v.Row()})
	if err != nil {
		return 0, err
	}
	return model.Fare(out[0]), nil
}

// PredictBatch scores many vectors with a single model call. Every vector is
// validated before the model runs; the first invalid one fails the batch.
// It shares the trigger lock with Predict.
func (a *Adapter) PredictBatch(ctx context.Context, vs []model.FeatureVector) ([]model.PredictionResult, error) {
	if !a.Available() {
		return nil, &ModelUnavailableError{Diagnostic: a.diagnostic}
	}
	rows := make([][]float64, len(vs))
	for i, v := range vs {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		rows[i] = v.Row()
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if !a.mu.TryLock() {
		return nil, ErrPredictionInProgress
	}
	defer a.mu.Unlock()

	a.setState(StatePredicting)
	start := time.Now()

	out, err := a.scoreRows(ctx, rows)
	if err != nil {
		a.setState(StateErrorShown)
		a.logger.Warn("batch prediction failed", zap.Int("rows", len(rows)), zap.Error(err))
		return nil, &InferenceError{Err: err}
	}

	results := make([]model.PredictionResult, len(vs))
	for i, v := range vs {
		fare := model.Fare(out[i])
		results[i] = model.PredictionResult{Fare: fare, Formatted: fare.String(), Vector: v}
	}
	a.setState(StateResultShown)
	a.logger.Info("batch prediction",
		zap.Int("rows", len(rows)),
		zap.Duration("duration", time.Since(start)))
	return results, nil
}

func (a *Adapter) scoreRows(ctx context.Context, rows [][]float64) (out []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("model panicked: %v", r)
		}
	}()

	out, err = a.model.Predict(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(out) != len(rows) {
		return nil, fmt.Errorf("%w: model returned %d outputs for %d input rows", inference.ErrShapeMismatch, len(out), len(rows))
	}
	for i, y := range out {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, fmt.Errorf("model returned a non-finite fare (%v) for row %d", y, i+1)
		}
	}
	return out, nil
}
