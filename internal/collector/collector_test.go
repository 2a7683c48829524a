package collector

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"fare-predict/internal/model"
)

func TestNewUsesDefaults(t *testing.T) {
	c := New()
	if got := c.Snapshot(); got != model.DefaultVector() {
		t.Fatalf("snapshot = %v", got)
	}
}

func TestSetRejectsOutOfRange(t *testing.T) {
	c := New()
	if err := c.Set("quarter", 3); err != nil {
		t.Fatalf("set quarter: %v", err)
	}
	for _, v := range []float64{0, 5, -1, 2.5} {
		err := c.Set("quarter", v)
		var re *model.RangeError
		if !errors.As(err, &re) {
			t.Fatalf("quarter=%v: expected RangeError, got %v", v, err)
		}
	}
	if got, _ := c.Snapshot().Get("quarter"); got != 3 {
		t.Fatalf("rejected value changed quarter to %v", got)
	}

	for _, v := range []float64{1992, 2025} {
		if err := c.Set("year", v); err == nil {
			t.Fatalf("year=%v accepted", v)
		}
	}
	if got, _ := c.Snapshot().Get("year"); got != 1993 {
		t.Fatalf("year = %v", got)
	}
}

func TestSetAllowsNegativeUnboundedValues(t *testing.T) {
	c := New()
	if err := c.Set("fare_low", -25.5); err != nil {
		t.Fatalf("negative fare rejected: %v", err)
	}
}

func TestSetUnknownField(t *testing.T) {
	var ue *model.UnknownFieldError
	if err := New().Set("distance", 1); !errors.As(err, &ue) {
		t.Fatalf("expected UnknownFieldError, got %v", err)
	}
}

func TestSetString(t *testing.T) {
	c := New()
	inputs := map[string]string{
		"lf_ms":    "0.8",
		"large_ms": " 0.5 ",
		"fare_lg":  "250",
		"quarter":  "2",
		"fare_low": "150.0",
		"year":     "2010",
	}
	for name, raw := range inputs {
		if err := c.SetString(name, raw); err != nil {
			t.Fatalf("%s=%q: %v", name, raw, err)
		}
	}
	want := model.FeatureVector{0.8, 0.5, 250, 2, 150, 2010, 0, 0, 0, 0, 0, 0}
	if got := c.Snapshot(); got != want {
		t.Fatalf("snapshot = %v, want %v", got, want)
	}

	var pe *model.ParseError
	if err := c.SetString("quarter", "2.5"); !errors.As(err, &pe) {
		t.Fatalf("expected ParseError for fractional quarter, got %v", err)
	}
	if err := c.SetString("lf_ms", "abc"); !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if err := c.SetString("year", "1800"); err == nil {
		t.Fatalf("expected range error")
	}

	if err := c.SetString("year", ""); err != nil {
		t.Fatalf("empty year: %v", err)
	}
	if got, _ := c.Snapshot().Get("year"); got != 1993 {
		t.Fatalf("empty input should restore default, got %v", got)
	}
}

func TestApplyIsAllOrNothing(t *testing.T) {
	c := New()
	err := c.Apply(map[string]float64{"lf_ms": 0.9, "quarter": 7})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := c.Snapshot(); got != model.DefaultVector() {
		t.Fatalf("partial apply leaked: %v", got)
	}

	if err := c.Apply(map[string]float64{"lf_ms": 0.9, "quarter": 4}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	want := map[string]float64{
		"lf_ms": 0.9, "large_ms": 0, "fare_lg": 0, "quarter": 4, "fare_low": 0, "year": 1993,
		"feature_7": 0, "feature_8": 0, "feature_9": 0, "feature_10": 0, "feature_11": 0, "feature_12": 0,
	}
	if diff := cmp.Diff(want, c.Values()); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestResetAndDisplay(t *testing.T) {
	c := New()
	_ = c.Set("lf_ms", 0.8)
	_ = c.Set("year", 2010)
	display := c.Display()
	if display["lf_ms"] != "0.80" || display["year"] != "2010" || display["quarter"] != "1" {
		t.Fatalf("display = %v", display)
	}
	c.Reset()
	if got := c.Snapshot(); got != model.DefaultVector() {
		t.Fatalf("reset snapshot = %v", got)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	c := New()
	snap := c.Snapshot()
	_ = c.Set("lf_ms", 1)
	if snap[0] != 0 {
		t.Fatalf("snapshot aliased collector state")
	}
}
