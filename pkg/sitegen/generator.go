package sitegen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-agentsite/pkg/fields"
	rendertemplate "github.com/goliatone/go-agentsite/pkg/render/template"
	"github.com/goliatone/go-agentsite/pkg/render/template/gotemplate"
)

// placeholderTemplate renders components no one could provide.
const placeholderTemplate = "components/Placeholder"

// projectFiles lists the scaffold, in write order. Component files are
// inserted before vercel.json.
var projectFiles = []struct {
	path     string
	template string
}{
	{"package.json", "project/package.json"},
	{"tsconfig.json", "project/tsconfig.json"},
	{"vite.config.ts", "project/vite.config.ts"},
	{"tailwind.config.js", "project/tailwind.config.js"},
	{"postcss.config.js", "project/postcss.config.js"},
	{"index.html", "project/index.html"},
	{"src/main.tsx", "project/main.tsx"},
	{"src/App.tsx", "project/App.tsx"},
	{"src/index.css", "project/index.css"},
	{"src/api.ts", "project/api.ts"},
}

const vercelFile = "vercel.json"

// ComponentRequest is handed to a ComponentWriter for components the
// registry does not know.
type ComponentRequest struct {
	Name       string
	Agent      Agent
	Components []string
	Layout     string
	Plan       any
}

// ComponentWriter produces TSX source for a component, typically by asking
// an LLM.
type ComponentWriter interface {
	WriteComponent(ctx context.Context, req ComponentRequest) (string, error)
}

// Option configures a Generator.
type Option func(*Generator)

// WithRegistry replaces the default component registry.
func WithRegistry(r *Registry) Option {
	return func(g *Generator) {
		if r != nil {
			g.registry = r
		}
	}
}

// WithThemes sets the theme selector.
func WithThemes(selector theme.ThemeSelector) Option {
	return func(g *Generator) {
		if selector != nil {
			g.themes = selector
		}
	}
}

// WithComponentWriter enables generated components for names outside the
// registry.
func WithComponentWriter(w ComponentWriter) Option {
	return func(g *Generator) {
		g.writer = w
	}
}

// WithTemplateDir layers a directory of template overrides over the
// embedded templates.
func WithTemplateDir(dir string) Option {
	return func(g *Generator) {
		g.templateDir = strings.TrimSpace(dir)
	}
}

// WithRenderer injects a preconfigured template renderer.
func WithRenderer(r rendertemplate.TemplateRenderer) Option {
	return func(g *Generator) {
		g.renderer = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Generator renders projects. It is safe for concurrent use.
type Generator struct {
	renderer    rendertemplate.TemplateRenderer
	registry    *Registry
	themes      theme.ThemeSelector
	writer      ComponentWriter
	sanitizer   textSanitizer
	templateDir string
	logger      *slog.Logger
}

// New builds a Generator over the embedded templates.
func New(options ...Option) (*Generator, error) {
	g := &Generator{
		registry:  DefaultRegistry(),
		sanitizer: newTextSanitizer(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(g)
		}
	}

	if g.themes == nil {
		catalog, err := NewThemeCatalog()
		if err != nil {
			return nil, err
		}
		g.themes = catalog
	}
	if g.renderer == nil {
		engine, err := newEngine(g.templateDir, Templates())
		if err != nil {
			return nil, err
		}
		g.renderer = engine
	}
	g.logger = g.logger.With("component", "sitegen")
	return g, nil
}

func newEngine(dir string, files fs.FS) (*gotemplate.Engine, error) {
	opts := []gotemplate.Option{gotemplate.WithName("sitegen"), gotemplate.WithFS(files)}
	if dir != "" {
		opts = append(opts, gotemplate.WithBaseDir(dir))
	}
	engine, err := gotemplate.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("sitegen: template engine: %w", err)
	}
	return engine, nil
}

// Registry exposes the component registry.
func (g *Generator) Registry() *Registry {
	return g.registry
}

// Generate renders the project for in. Unknown components go to the
// ComponentWriter when one is configured; if it fails, or none is set, a
// placeholder component is rendered instead.
func (g *Generator) Generate(ctx context.Context, in Input) (Project, error) {
	sel, err := g.themes.Select(in.Theme, in.Variant)
	if err != nil {
		return Project{}, err
	}

	agent := Agent{
		Name:         g.sanitizer.text(in.Agent.Name),
		Description:  g.sanitizer.text(in.Agent.Description),
		Capabilities: g.sanitizer.list(in.Agent.Capabilities),
	}
	name := in.Name
	if name == "" {
		name = ProjectName(agent.Name)
	}

	components := normalizeComponents(in.Components)
	if len(components) == 0 {
		return Project{}, errors.New("sitegen: plan has no components")
	}

	view := map[string]any{
		"project":    name,
		"layout":     in.Layout,
		"agent":      agentView(agent),
		"components": componentViews(components),
		"fields":     g.fieldViews(in.Fields),
		"endpoint":   in.Endpoint,
		"theme": map[string]any{
			"name":    sel.Theme,
			"variant": sel.Variant,
			"colors":  SelectionTokens(sel),
		},
	}

	project := Project{Name: name, Components: components}
	for _, f := range projectFiles {
		content, err := g.renderer.RenderTemplate(f.template, view)
		if err != nil {
			return Project{}, fmt.Errorf("sitegen: render %s: %w", f.path, err)
		}
		project.Files = append(project.Files, File{Path: f.path, Content: []byte(content)})
	}

	for _, c := range components {
		if err := ctx.Err(); err != nil {
			return Project{}, err
		}
		source, err := g.componentSource(ctx, c, components, in, agent, view)
		if err != nil {
			return Project{}, err
		}
		project.Files = append(project.Files, File{Path: "src/" + c + ".tsx", Content: []byte(source)})
	}

	content, err := g.renderer.RenderTemplate("project/"+vercelFile, view)
	if err != nil {
		return Project{}, fmt.Errorf("sitegen: render %s: %w", vercelFile, err)
	}
	project.Files = append(project.Files, File{Path: vercelFile, Content: []byte(content)})

	g.logger.Debug("project rendered", "project", name, "files", len(project.Files), "components", len(components))
	return project, nil
}

func (g *Generator) componentSource(ctx context.Context, name string, all []string, in Input, agent Agent, view map[string]any) (string, error) {
	componentView := map[string]any{"name": name, "title": titleFor(name)}
	scoped := make(map[string]any, len(view)+1)
	for k, v := range view {
		scoped[k] = v
	}
	scoped["component"] = componentView

	if c, ok := g.registry.Get(name); ok {
		out, err := g.renderer.RenderTemplate(c.Template, scoped)
		if err != nil {
			return "", fmt.Errorf("sitegen: render component %s: %w", name, err)
		}
		return out, nil
	}

	if g.writer != nil {
		source, err := g.writer.WriteComponent(ctx, ComponentRequest{
			Name:       name,
			Agent:      agent,
			Components: all,
			Layout:     in.Layout,
			Plan:       in.Plan,
		})
		if err == nil && strings.TrimSpace(source) != "" {
			return source, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		g.logger.Warn("component generation failed, using placeholder", "name", name, "error", err)
	}

	out, err := g.renderer.RenderTemplate(placeholderTemplate, scoped)
	if err != nil {
		return "", fmt.Errorf("sitegen: render placeholder %s: %w", name, err)
	}
	return out, nil
}

func (g *Generator) fieldViews(in []fields.Descriptor) []fields.Descriptor {
	if len(in) == 0 {
		return []fields.Descriptor{}
	}
	return g.sanitizer.descriptors(in)
}

func agentView(a Agent) map[string]any {
	capabilities := a.Capabilities
	if capabilities == nil {
		capabilities = []string{}
	}
	return map[string]any{
		"name":            a.Name,
		"description":     a.Description,
		"capabilities":    capabilities,
		"capability_text": strings.Join(capabilities, ", "),
	}
}

func componentViews(names []string) []map[string]any {
	out := make([]map[string]any, len(names))
	for i, name := range names {
		out[i] = map[string]any{"name": name, "title": titleFor(name)}
	}
	return out
}

// normalizeComponents maps plan entries to identifiers, dropping blanks and
// duplicates while keeping order.
func normalizeComponents(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		name := ComponentName(raw)
		if name == "" || name == "App" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func titleFor(name string) string {
	return fields.DefaultLabeler(name)
}
