package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-agentsite/pkg/render/template"
)

const templateExt = ".tpl"

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	name    string
	baseDir string
	files   fs.FS
	globals map[string]any
}

// WithName labels the pongo2 template set; it shows up in parse errors.
func WithName(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.name = trimmed
		}
	}
}

// WithBaseDir loads templates from a directory on disk. Files found there
// shadow the ones in the fs.FS.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.files = files
	}
}

// WithGlobalData seeds values visible to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		cfg.globals = data
	}
}

// Engine renders ".tpl" files with pongo2. Block tags swallow their own
// line so generated sources carry no stray blank lines. Parsed templates
// are cached per path behind a read-write lock; execution and globals take
// the write side.
type Engine struct {
	mu    sync.RWMutex
	set   *pongo2.TemplateSet
	cache map[string]*pongo2.Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine. Either a base dir or an fs.FS is required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{name: "agentsite"}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		local, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: template dir: %w", err)
		}
		loaders = append(loaders, local)
	}
	if cfg.files != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.files))
	}
	if len(loaders) == 0 {
		return nil, errors.New("gotemplate: a template dir or fs.FS is required")
	}

	set := pongo2.NewSet(cfg.name, loaders...)
	set.Options.TrimBlocks = true
	set.Options.LStripBlocks = true
	registerBuiltinFilters()

	e := &Engine{set: set, cache: map[string]*pongo2.Template{}}
	if err := e.GlobalContext(cfg.globals); err != nil {
		return nil, err
	}
	return e, nil
}

// Render renders inline content when name holds template markup and the
// named template otherwise.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate renders name, adding the ".tpl" suffix when missing.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	path := name
	if !strings.HasSuffix(path, templateExt) {
		path += templateExt
	}

	tmpl, err := e.template(path)
	if err != nil {
		return "", err
	}
	return e.execute(tmpl, path, data, out)
}

func (e *Engine) template(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %s: %w", path, err)
	}
	e.cache[path] = tmpl
	return tmpl, nil
}

// RenderString parses and renders inline content without caching it.
func (e *Engine) RenderString(content string, data any, out ...io.Writer) (string, error) {
	tmpl, err := e.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse inline template: %w", err)
	}
	return e.execute(tmpl, "inline", data, out)
}

func (e *Engine) execute(tmpl *pongo2.Template, label string, data any, out []io.Writer) (string, error) {
	ctx, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: %s: %w", label, err)
	}

	var buf bytes.Buffer
	// trim blocks rewrites the token stream while executing.
	e.mu.Lock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.Unlock()
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %s: %w", label, err)
	}

	for _, w := range out {
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// RegisterFilter adds a filter. pongo2 filters are process wide, so each
// name can be registered once.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges data into the values every template sees.
func (e *Engine) GlobalContext(data any) error {
	if data == nil {
		return nil
	}
	ctx, err := toContext(data)
	if err != nil {
		return fmt.Errorf("gotemplate: globals: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set.Globals == nil {
		e.set.Globals = pongo2.Context{}
	}
	e.set.Globals.Update(ctx)
	return nil
}

// toContext runs data through JSON so templates address struct fields by
// their json names.
func toContext(data any) (pongo2.Context, error) {
	if data == nil {
		return pongo2.Context{}, nil
	}
	if ctx, ok := data.(pongo2.Context); ok {
		return ctx, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var ctx pongo2.Context
	if err := json.Unmarshal(raw, &ctx); err != nil {
		return nil, fmt.Errorf("data must encode to an object: %w", err)
	}
	return ctx, nil
}
