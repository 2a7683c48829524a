package inference

import (
	"net/http"
	"time"
)

type options struct {
	client *http.Client
}

// Option adjusts how Load builds a model.
type Option func(*options)

// WithHTTPClient sets the client used by remote models.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.client = c
		}
	}
}

func newOptions(opts ...Option) options {
	o := options{client: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
