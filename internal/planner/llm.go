package planner

import (
	"context"
	"embed"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/goliatone/go-agentsite/pkg/fields"
	"github.com/goliatone/go-agentsite/pkg/render/template/gotemplate"
	"github.com/goliatone/go-agentsite/pkg/schema"
	"github.com/goliatone/go-agentsite/pkg/sitegen"
)

//go:embed prompts/*.tpl
var promptFS embed.FS

// Settings are the sampling parameters of one kind of call.
type Settings struct {
	Temperature float64
	MaxTokens   int
}

var (
	DefaultPlanSettings      = Settings{Temperature: 0.7, MaxTokens: 2000}
	DefaultComponentSettings = Settings{Temperature: 0.3, MaxTokens: 3000}
)

var (
	jsonBlock = regexp.MustCompile(`\{[\s\S]*\}`)
	codeFence = regexp.MustCompile("(?s)^```[A-Za-z]*\\s*\n(.*?)\n?```$")
)

// Option configures a Planner.
type Option func(*Planner)

// WithPlanSettings overrides the plan call sampling parameters.
func WithPlanSettings(s Settings) Option {
	return func(p *Planner) { p.plan = s }
}

// WithComponentSettings overrides the component call sampling parameters.
func WithComponentSettings(s Settings) Option {
	return func(p *Planner) { p.component = s }
}

// WithCatalog lists prebuilt components (name to description) the model is
// nudged towards.
func WithCatalog(catalog map[string]string) Option {
	return func(p *Planner) { p.catalog = catalog }
}

// WithFieldOptions is forwarded to the extractor for OpenAPI plans.
func WithFieldOptions(options ...fields.Option) Option {
	return func(p *Planner) { p.fieldOptions = append(p.fieldOptions, options...) }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Planner turns an agent script into a UI plan and, when asked, writes
// components the template registry does not cover. The model is optional:
// without one only OpenAPI and JSON scripts can be planned.
type Planner struct {
	model        llms.Model
	plan         Settings
	component    Settings
	catalog      map[string]string
	fieldOptions []fields.Option
	prompts      *gotemplate.Engine
	logger       *slog.Logger
}

var _ sitegen.ComponentWriter = (*Planner)(nil)

// New builds a Planner. model may be nil.
func New(model llms.Model, options ...Option) (*Planner, error) {
	engine, err := gotemplate.New(gotemplate.WithFS(promptFS), gotemplate.WithName("prompts"))
	if err != nil {
		return nil, fmt.Errorf("planner: prompt templates: %w", err)
	}
	p := &Planner{
		model:     model,
		plan:      DefaultPlanSettings,
		component: DefaultComponentSettings,
		prompts:   engine,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	p.logger = p.logger.With("component", "planner")
	return p, nil
}

// HasModel reports whether LLM calls are available.
func (p *Planner) HasModel() bool {
	return p.model != nil
}

// Build resolves a plan for script. OpenAPI documents are planned directly,
// JSON plans are taken as they are and everything else goes to the model.
func (p *Planner) Build(ctx context.Context, prompt, script string) (Plan, error) {
	script = strings.TrimSpace(script)
	var metadata any = script

	if script != "" {
		if doc, err := schema.Parse([]byte(script)); err == nil && doc.Kind() == schema.KindObject {
			metadata = doc.Interface()
			switch {
			case IsOpenAPIDocument(doc):
				plan, err := FromOpenAPI(doc, p.fieldOptions...)
				if err == nil {
					p.logger.Debug("plan derived from openapi", "fields", len(plan.Fields))
					return plan, nil
				}
				if p.model == nil {
					return Plan{}, err
				}
				p.logger.Warn("openapi plan failed, asking the model", "error", err)
			default:
				if _, ok := doc.Get("components"); ok {
					raw, _ := doc.MarshalJSON()
					return FromJSON(raw)
				}
			}
		}
	}
	return p.Generate(ctx, prompt, metadata)
}

// Generate asks the model for a plan.
func (p *Planner) Generate(ctx context.Context, prompt string, agent any) (Plan, error) {
	if p.model == nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrNoPlan, ErrNoModel)
	}
	text, err := p.prompts.RenderTemplate("prompts/plan", map[string]any{
		"prompt":  prompt,
		"agent":   agent,
		"catalog": p.catalogView(),
	})
	if err != nil {
		return Plan{}, fmt.Errorf("planner: render plan prompt: %w", err)
	}

	completion, err := llms.GenerateFromSinglePrompt(ctx, p.model, text,
		llms.WithTemperature(p.plan.Temperature),
		llms.WithMaxTokens(p.plan.MaxTokens),
	)
	if err != nil {
		return Plan{}, fmt.Errorf("planner: generate plan: %w", err)
	}
	plan, err := ParseCompletion(completion)
	if err != nil {
		return Plan{}, err
	}
	p.logger.Debug("plan generated", "components", len(plan.Components))
	return plan, nil
}

// ParseCompletion extracts the first {...} block of a completion and decodes
// it as a plan.
func ParseCompletion(completion string) (Plan, error) {
	completion = strings.TrimSpace(completion)
	if completion == "" {
		return Plan{}, ErrEmptyCompletion
	}
	block := jsonBlock.FindString(completion)
	if block == "" {
		block = completion
	}
	plan, err := FromJSON([]byte(block))
	if err != nil {
		return Plan{}, err
	}
	plan.Source = SourceLLM
	return plan, nil
}

// WriteComponent asks the model for the source of one component.
func (p *Planner) WriteComponent(ctx context.Context, req sitegen.ComponentRequest) (string, error) {
	if p.model == nil {
		return "", ErrNoModel
	}
	plan := req.Plan
	if plan == nil {
		plan = map[string]any{"components": req.Components, "layout": req.Layout}
	}
	text, err := p.prompts.RenderTemplate("prompts/component", map[string]any{
		"name":  req.Name,
		"plan":  plan,
		"agent": req.Agent,
	})
	if err != nil {
		return "", fmt.Errorf("planner: render component prompt: %w", err)
	}

	code, err := llms.GenerateFromSinglePrompt(ctx, p.model, text,
		llms.WithTemperature(p.component.Temperature),
		llms.WithMaxTokens(p.component.MaxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("planner: generate component %s: %w", req.Name, err)
	}
	code = stripFence(code)
	if code == "" {
		return "", ErrEmptyCompletion
	}
	return code + "\n", nil
}

func stripFence(code string) string {
	code = strings.TrimSpace(code)
	if m := codeFence.FindStringSubmatch(code); m != nil {
		return strings.TrimSpace(m[1])
	}
	return code
}

func (p *Planner) catalogView() []map[string]string {
	names := make([]string, 0, len(p.catalog))
	for name := range p.catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]map[string]string, 0, len(names))
	for _, name := range names {
		out = append(out, map[string]string{"name": name, "description": p.catalog[name]})
	}
	return out
}
