package data

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"fare-predict/internal/config"
)

// DriveDownloadURL builds the direct download link for a shared Google Drive file.
func DriveDownloadURL(fileID string) string {
	return "https://drive.google.com/uc?id=" + url.QueryEscape(fileID)
}

// DatasetFetcher downloads the airline dataset into a local cache path.
// The dataset is informational only; nothing in the scoring path reads it.
type DatasetFetcher struct {
	URL    string
	Path   string
	Client *http.Client
	Logger *zap.Logger
}

// NewDatasetFetcher creates a fetcher. If client is nil a 60s-timeout client is used.
func NewDatasetFetcher(rawURL, path string, client *http.Client, logger *zap.Logger) *DatasetFetcher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetFetcher{URL: rawURL, Path: path, Client: client, Logger: logger}
}

// FetcherFromConfig builds a fetcher for the configured source. An explicit
// URL wins over the Drive file id.
func FetcherFromConfig(cfg config.DatasetConfig, logger *zap.Logger) *DatasetFetcher {
	rawURL := cfg.URL
	if rawURL == "" {
		rawURL = DriveDownloadURL(cfg.FileID)
	}
	return NewDatasetFetcher(rawURL, cfg.Path, nil, logger)
}

// DownloadError represents a failed dataset download.
type DownloadError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *DownloadError) Error() string {
	return e.Message
}

// Ensure downloads the dataset unless it is already cached at Path.
// It reports whether a download happened.
func (f *DatasetFetcher) Ensure(ctx context.Context) (bool, error) {
	if _, err := os.Stat(f.Path); err == nil {
		f.Logger.Debug("dataset cached", zap.String("path", f.Path))
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat dataset: %w", err)
	}
	if f.URL == "" {
		return false, errors.New("dataset url is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	start := time.Now()
	resp, err := f.Client.Do(req)
	if err != nil {
		f.Logger.Warn("dataset request failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return false, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, &DownloadError{
			StatusCode: resp.StatusCode,
			URL:        f.URL,
			Message:    fmt.Sprintf("dataset download returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("failed to create directory: %w", err)
		}
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.Path), ".dataset-*")
	if err != nil {
		return false, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return false, fmt.Errorf("failed to write dataset: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return false, fmt.Errorf("failed to move dataset into place: %w", err)
	}

	f.Logger.Info("dataset downloaded",
		zap.String("path", f.Path),
		zap.Int64("bytes", n),
		zap.Duration("duration", time.Since(start)))
	return true, nil
}
