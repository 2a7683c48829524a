// Package inference loads fare models and exposes them behind a batch
// predict contract: one output per input row, in order.
package inference

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// Model scores a batch of row-major feature rows.
type Model interface {
	Predict(ctx context.Context, rows [][]float64) ([]float64, error)
}

// ErrModelUnavailable wraps every failure to locate or decode a model artifact.
var ErrModelUnavailable = errors.New("model unavailable")

// ErrShapeMismatch is returned when a row does not fit the model's inputs.
var ErrShapeMismatch = errors.New("shape mismatch")

// Model kinds accepted by Load.
const (
	KindLinear       = "linear"
	KindTreeEnsemble = "tree_ensemble"
	KindRemote       = "remote"
)

// LoadError describes why a model could not be loaded.
type LoadError struct {
	Kind string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if errors.Is(e.Err, fs.ErrNotExist) {
		return fmt.Sprintf("trained model file not found: ensure %q exists", e.Path)
	}
	return fmt.Sprintf("error loading %s model from %q: %v", e.Kind, e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error { return []error{ErrModelUnavailable, e.Err} }

// Load opens the model artifact at path. For remote models path is the
// base URL of the model server.
func Load(ctx context.Context, kind, path string, opts ...Option) (Model, error) {
	o := newOptions(opts...)
	var (
		m   Model
		err error
	)
	switch kind {
	case KindLinear:
		m, err = LoadLinear(path)
	case KindTreeEnsemble:
		m, err = LoadTreeEnsemble(path)
	case KindRemote:
		m, err = DialRemote(ctx, path, o.client)
	default:
		err = fmt.Errorf("unsupported model type %q", kind)
	}
	if err != nil {
		return nil, &LoadError{Kind: kind, Path: path, Err: err}
	}
	return m, nil
}

func checkRow(i int, row []float64, width int) error {
	if len(row) != width {
		return fmt.Errorf("%w: row %d has %d features, model expects %d", ErrShapeMismatch, i, len(row), width)
	}
	return nil
}
