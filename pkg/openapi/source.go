package openapi

import (
	"fmt"
	"net/url"
	"path/filepath"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }
func (s fileSource) Kind() SourceKind { return SourceKindFile }

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }
func (s fsSource) Kind() SourceKind { return SourceKindFS }

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string { return s.raw }
func (s urlSource) Kind() SourceKind { return SourceKindURL }

// ParseURLSource validates raw and returns a URL Source.
func ParseURLSource(raw string) (Source, error) {
	if raw == "" {
		return nil, fmt.Errorf("openapi: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("openapi: invalid URL %q: %w", raw, err)
	}
	return urlSource{raw: raw}, nil
}

// SourceFromURL is ParseURLSource for static configuration; it panics on an
// invalid URL.
func SourceFromURL(raw string) Source {
	src, err := ParseURLSource(raw)
	if err != nil {
		panic(err)
	}
	return src
}

type inlineSource struct {
	name string
}

func (s inlineSource) Location() string { return s.name }
func (s inlineSource) Kind() SourceKind { return SourceKindInline }

// SourceInline labels a document that was received in memory. The name only
// shows up in errors and logs.
func SourceInline(name string) Source {
	if name == "" {
		name = "inline"
	}
	return inlineSource{name: name}
}
