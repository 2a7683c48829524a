package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// Remote delegates scoring to an HTTP model server exposing
// GET /health and POST /predict.
type Remote struct {
	baseURL string
	client  *http.Client
}

type remoteRequest struct {
	Instances [][]float64 `json:"instances"`
}

type remoteResponse struct {
	Predictions []float64 `json:"predictions"`
	Error       string    `json:"error,omitempty"`
}

// RemoteError is a non-200 answer from the model server.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("model server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("model server returned status %d: %s", e.StatusCode, e.Message)
}

var (
	stripPolicy     *bluemonday.Policy
	stripPolicyOnce sync.Once
)

// stripMarkup removes any HTML an upstream error page carries so the
// message is safe to show as plain text.
func stripMarkup(s string) string {
	stripPolicyOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	return strings.Join(strings.Fields(stripPolicy.Sanitize(s)), " ")
}

// DialRemote checks that the model server answers its health endpoint.
func DialRemote(ctx context.Context, baseURL string, client *http.Client) (*Remote, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid model server URL %q", baseURL)
	}
	if client == nil {
		client = http.DefaultClient
	}
	r := &Remote{baseURL: strings.TrimRight(baseURL, "/"), client: client}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("model server unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, r.statusError(resp)
	}
	return r, nil
}

func (r *Remote) Predict(ctx context.Context, rows [][]float64) ([]float64, error) {
	body, err := json.Marshal(remoteRequest{Instances: rows})
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, r.statusError(resp)
	}

	var out remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	if out.Error != "" {
		return nil, &RemoteError{StatusCode: resp.StatusCode, Message: stripMarkup(out.Error)}
	}
	if len(out.Predictions) != len(rows) {
		return nil, fmt.Errorf("%w: model server returned %d predictions for %d rows", ErrShapeMismatch, len(out.Predictions), len(rows))
	}
	return out.Predictions, nil
}

func (r *Remote) statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	msg := string(raw)
	var body remoteResponse
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &RemoteError{StatusCode: resp.StatusCode, Message: stripMarkup(msg)}
}
