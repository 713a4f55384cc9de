package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/go-resty/resty/v2"

	pkgopenapi "github.com/goliatone/go-agentsite/pkg/openapi"
)

// ErrTooLarge is returned when a document exceeds the configured size.
var ErrTooLarge = errors.New("openapi loader: document too large")

// Loader reads agent documents from disk, an fs.FS or HTTP.
type Loader struct {
	files    fs.FS
	rest     *resty.Client
	maxBytes int64
}

var _ pkgopenapi.Loader = (*Loader)(nil)

// New constructs a Loader from resolved options. Remote fetching is
// enabled unless DisableHTTP is set.
func New(options pkgopenapi.LoaderOptions) *Loader {
	l := &Loader{
		files:    options.FileSystem,
		maxBytes: options.MaxBytes,
	}
	if l.maxBytes <= 0 {
		l.maxBytes = pkgopenapi.DefaultMaxDocumentBytes
	}
	if !options.DisableHTTP {
		l.rest = newRestClient(options)
	}
	return l
}

// Load fetches a document from src and wraps it in a Document.
func (l *Loader) Load(ctx context.Context, src pkgopenapi.Source) (pkgopenapi.Document, error) {
	if src == nil {
		return pkgopenapi.Document{}, errors.New("openapi loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return pkgopenapi.Document{}, err
	}
	if src.Location() == "" {
		return pkgopenapi.Document{}, fmt.Errorf("openapi loader: %s location is required", src.Kind())
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case pkgopenapi.SourceKindFile:
		data, err = readFile(src.Location(), l.maxBytes)
	case pkgopenapi.SourceKindFS:
		data, err = readFS(l.files, src.Location(), l.maxBytes)
	case pkgopenapi.SourceKindURL:
		if l.rest == nil {
			return pkgopenapi.Document{}, errors.New("openapi loader: remote documents are disabled")
		}
		data, err = l.fetch(ctx, src.Location())
	default:
		err = fmt.Errorf("openapi loader: unsupported source kind %q", src.Kind())
	}
	if err != nil {
		return pkgopenapi.Document{}, err
	}
	return pkgopenapi.NewDocument(src, data)
}
