package prompt

import (
	"context"
	"errors"
	"fmt"

	"fare-predict/internal/collector"
	"fare-predict/internal/model"
	"fare-predict/internal/predict"
)

// Session drives one interactive run against an adapter. Values entered in
// one round become the defaults of the next, so a failed prediction can be
// retried without retyping.
type Session struct {
	driver  Driver
	adapter *predict.Adapter
	col     *collector.Collector
}

// NewSession creates a session with every field at its default.
func NewSession(driver Driver, adapter *predict.Adapter) *Session {
	return &Session{driver: driver, adapter: adapter, col: collector.New()}
}

// Values returns the currently collected vector.
func (s *Session) Values() model.FeatureVector {
	return s.col.Snapshot()
}

// Collect asks for every field in vector order. An answer the field rejects
// is reported and asked again.
func (s *Session) Collect(ctx context.Context) error {
	for _, f := range model.Fields {
		if err := s.collectField(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) collectField(ctx context.Context, f model.Field) error {
	for {
		current, _ := s.col.Snapshot().Get(f.Name)
		raw, err := s.driver.Input(ctx, InputConfig{
			Message:   f.Label,
			Default:   f.FormatValue(current),
			Help:      fieldHelp(f),
			Validator: validator(f),
		})
		if err != nil {
			return err
		}
		if err := s.col.SetString(f.Name, raw); err != nil {
			if err := s.driver.Info(ctx, err.Error()); err != nil {
				return err
			}
			continue
		}
		return nil
	}
}

// Run collects inputs and predicts until the user declines another round.
// It returns the last result shown. With no model loaded it prints the
// diagnostic and returns without prompting.
func (s *Session) Run(ctx context.Context) (model.PredictionResult, error) {
	if !s.adapter.Available() {
		err := &predict.ModelUnavailableError{Diagnostic: s.adapter.Diagnostic()}
		if ierr := s.driver.Info(ctx, err.Diagnostic); ierr != nil {
			return model.PredictionResult{}, ierr
		}
		return model.PredictionResult{}, err
	}

	var last model.PredictionResult
	for {
		if err := s.Collect(ctx); err != nil {
			return last, err
		}
		v := s.col.Snapshot()
		if err := s.driver.Info(ctx, fmt.Sprintf("Number of input features: %d\nFeature values: %s", len(v), v)); err != nil {
			return last, err
		}

		ok, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Predict Fare?", Default: true})
		if err != nil {
			return last, err
		}
		if !ok {
			return last, nil
		}

		res, err := s.adapter.Predict(ctx, v)
		if err != nil && !isRecoverable(err) {
			return res, err
		}
		last = res
		if err := s.driver.Info(ctx, res.Message()); err != nil {
			return last, err
		}

		msg := "Predict another fare?"
		if !res.OK() {
			msg = "Try again?"
		}
		again, err := s.driver.Confirm(ctx, ConfirmConfig{Message: msg, Default: !res.OK()})
		if err != nil {
			return last, err
		}
		if !again {
			return last, nil
		}
	}
}

func isRecoverable(err error) bool {
	var ierr *predict.InferenceError
	return errors.As(err, &ierr) || errors.Is(err, predict.ErrPredictionInProgress)
}

func validator(f model.Field) func(string) error {
	return func(raw string) error {
		v, err := collector.Parse(f, raw)
		if err != nil {
			return err
		}
		return f.Check(v)
	}
}

func fieldHelp(f model.Field) string {
	if f.Bounded {
		return fmt.Sprintf("whole number from %s to %s", f.FormatValue(f.Min), f.FormatValue(f.Max))
	}
	if f.Kind == model.KindInt {
		return "whole number"
	}
	return "number"
}
