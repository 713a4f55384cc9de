package openapi

import (
	"context"
	"io/fs"
	"net/http"
	"time"
)

const (
	// DefaultFetchTimeout caps remote document fetches.
	DefaultFetchTimeout = 30 * time.Second
	// DefaultMaxDocumentBytes bounds how much of a document is read.
	DefaultMaxDocumentBytes int64 = 4 << 20
)

// Loader fetches agent OpenAPI documents. Implementations live under
// internal/openapi.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions configures how a Loader resolves sources.
type LoaderOptions struct {
	// FileSystem backs SourceKindFS lookups.
	FileSystem fs.FS
	// HTTPClient replaces the default transport for URL sources.
	HTTPClient *http.Client
	// Timeout caps each remote fetch.
	Timeout time.Duration
	// Headers are sent with every remote fetch, e.g. an agent API key.
	Headers map[string]string
	// MaxBytes rejects larger documents.
	MaxBytes int64
	// DisableHTTP rejects URL sources.
	DisableHTTP bool
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem serves SourceFromFS lookups from files.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects a custom HTTP client for remote documents.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithTimeout overrides DefaultFetchTimeout.
func WithTimeout(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		if timeout > 0 {
			opts.Timeout = timeout
		}
	}
}

// WithHeader adds a header to remote fetches.
func WithHeader(key, value string) LoaderOption {
	return func(opts *LoaderOptions) {
		if key == "" {
			return
		}
		if opts.Headers == nil {
			opts.Headers = map[string]string{}
		}
		opts.Headers[key] = value
	}
}

// WithMaxBytes overrides DefaultMaxDocumentBytes.
func WithMaxBytes(n int64) LoaderOption {
	return func(opts *LoaderOptions) {
		if n > 0 {
			opts.MaxBytes = n
		}
	}
}

// WithoutHTTP restricts the loader to local sources.
func WithoutHTTP() LoaderOption {
	return func(opts *LoaderOptions) {
		opts.DisableHTTP = true
	}
}

// NewLoaderOptions applies options over the defaults.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{
		Timeout:  DefaultFetchTimeout,
		MaxBytes: DefaultMaxDocumentBytes,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
