package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-agentsite/internal/agentapi"
	"github.com/goliatone/go-agentsite/internal/deploy"
	"github.com/goliatone/go-agentsite/internal/planner"
	"github.com/goliatone/go-agentsite/internal/projects"
	"github.com/goliatone/go-agentsite/pkg/schema"
	"github.com/goliatone/go-agentsite/pkg/sitegen"
)

const manualAgentName = "ManualAgent"

// AgentCreator creates agents from a prompt.
type AgentCreator interface {
	Create(ctx context.Context, req agentapi.CreateRequest) (agentapi.Agent, error)
}

// Planner turns an agent script into a UI plan.
type Planner interface {
	Build(ctx context.Context, prompt, script string) (planner.Plan, error)
}

// Generator renders project files.
type Generator interface {
	Generate(ctx context.Context, in sitegen.Input) (sitegen.Project, error)
}

// Deployer publishes a project directory and returns its URL.
type Deployer interface {
	Deploy(ctx context.Context, dir string) (string, error)
}

// Request is one site generation run.
type Request struct {
	Prompt string
	// AgentJSON replaces agent creation when UseNeuralSeek is false.
	AgentJSON     json.RawMessage
	UseNeuralSeek bool
	// APIKey is an LLM token for this run only.
	APIKey     string
	SkipDeploy bool
}

// Result describes a finished run.
type Result struct {
	RunID          uuid.UUID      `json:"run_id"`
	ProjectID      uuid.UUID      `json:"project_id"`
	URL            string         `json:"url"`
	Agent          agentapi.Agent `json:"agent"`
	Plan           planner.Plan   `json:"ntl"`
	ComponentCount int            `json:"component_count"`
	Dir            string         `json:"dir"`
	Duration       time.Duration  `json:"-"`
}

// Config holds run settings.
type Config struct {
	// OutDir receives one directory per run.
	OutDir string
	// InvokeURL is baked into generated sites as the agent endpoint.
	InvokeURL string
	Theme     string
	Variant   string
	// SkipDeploy replaces the deployer with a local file URL.
	SkipDeploy bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithAgentCreator enables NeuralSeek agent creation.
func WithAgentCreator(c AgentCreator) Option {
	return func(p *Pipeline) { p.agents = c }
}

// WithPlannerFactory builds a planner for runs that bring their own LLM
// token.
func WithPlannerFactory(fn func(token string) (Planner, error)) Option {
	return func(p *Pipeline) { p.plannerFor = fn }
}

// WithGeneratorFactory builds the generator for runs that got their own
// planner from the planner factory, so generated components use the same
// model and token as the plan.
func WithGeneratorFactory(fn func(pl Planner) (Generator, error)) Option {
	return func(p *Pipeline) { p.generatorFor = fn }
}

// WithMetrics instruments the pipeline.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// Pipeline runs prompt to deployed site. Steps run sequentially; separate
// runs may proceed concurrently.
type Pipeline struct {
	cfg          Config
	agents       AgentCreator
	planner      Planner
	plannerFor   func(token string) (Planner, error)
	generator    Generator
	generatorFor func(pl Planner) (Generator, error)
	deployer     Deployer
	store        projects.Store
	metrics      *Metrics
	logger       *slog.Logger
	now          func() time.Time
}

// New wires a pipeline.
func New(cfg Config, plan Planner, gen Generator, dep Deployer, store projects.Store, options ...Option) (*Pipeline, error) {
	if plan == nil || gen == nil || store == nil {
		return nil, errors.New("pipeline: planner, generator and store are required")
	}
	if dep == nil {
		dep = deploy.Local{}
	}
	if cfg.OutDir == "" {
		cfg.OutDir = filepath.Join(os.TempDir(), "agentsite")
	}
	p := &Pipeline{
		cfg:       cfg,
		planner:   plan,
		generator: gen,
		deployer:  dep,
		store:     store,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}
	p.logger = p.logger.With("component", "pipeline")
	return p, nil
}

type run struct {
	id        uuid.UUID
	agent     *agentapi.Agent
	raw       json.RawMessage
	logger    *slog.Logger
	pipeline  *Pipeline
	startedAt time.Time
}

// step times fn and wraps its failure in a StepError.
func (r *run) step(name string, fn func() error) error {
	start := r.pipeline.now()
	r.logger.Info("step started", "step", name)
	err := fn()
	duration := r.pipeline.now().Sub(start)
	r.pipeline.metrics.observeStep(name, duration, err)
	if err != nil {
		r.logger.Error("step failed", "step", name, "duration", duration, "error", err)
		return &StepError{Step: name, Err: err, Agent: r.agent, NeuralSeekResponse: r.raw}
	}
	r.logger.Debug("step finished", "step", name, "duration", duration)
	return nil
}

// Run executes every step for req.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return Result{}, errors.New("pipeline: prompt is required")
	}
	r := &run{id: uuid.New(), pipeline: p, startedAt: p.now()}
	r.logger = p.logger.With("run_id", r.id.String())

	result, err := p.run(ctx, r, req)
	p.metrics.observeRun(err, result.ComponentCount)
	return result, err
}

func (p *Pipeline) run(ctx context.Context, r *run, req Request) (Result, error) {
	var script string

	if req.UseNeuralSeek {
		err := r.step(StepNeuralSeek, func() error {
			if p.agents == nil {
				return agentapi.ErrNotConfigured
			}
			agent, err := p.agents.Create(ctx, agentapi.CreateRequest{Prompt: req.Prompt})
			if len(agent.Raw) > 0 {
				r.raw = agent.Raw
			}
			if agent.Name != "" || agent.NTL != "" || len(agent.Raw) > 0 {
				r.agent = &agent
			}
			if err != nil {
				return err
			}
			if r.agent == nil {
				return agentapi.ErrNoScript
			}
			script = agent.NTL
			return nil
		})
		if err != nil {
			return Result{}, err
		}
	} else {
		err := r.step(StepManualAgent, func() error {
			agent, err := manualAgent(req.AgentJSON)
			if err != nil {
				return err
			}
			r.agent = &agent
			script = agent.NTL
			return nil
		})
		if err != nil {
			return Result{}, err
		}
	}

	var (
		plan planner.Plan
		pl   Planner
	)
	if err := r.step(StepPlan, func() error {
		var err error
		pl, err = p.plannerForRequest(req)
		if err != nil {
			return err
		}
		plan, err = pl.Build(ctx, req.Prompt, script)
		return err
	}); err != nil {
		return Result{}, err
	}

	var project sitegen.Project
	var dir string
	if err := r.step(StepCodegen, func() error {
		gen, err := p.generatorForRequest(req, pl)
		if err != nil {
			return err
		}
		project, err = gen.Generate(ctx, sitegen.Input{
			Agent: sitegen.Agent{
				Name:         r.agent.Name,
				Description:  r.agent.Description,
				Capabilities: r.agent.Capabilities,
			},
			Components: plan.Components,
			Layout:     plan.LayoutText(),
			Fields:     plan.Fields,
			Endpoint:   sitegen.Endpoint{URL: p.cfg.InvokeURL, Agent: r.agent.Name},
			Theme:      p.cfg.Theme,
			Variant:    p.cfg.Variant,
			Plan:       plan,
		})
		if err != nil {
			return err
		}
		dir = filepath.Join(p.cfg.OutDir, project.Name+"-"+r.id.String()[:8])
		return project.WriteTo(dir)
	}); err != nil {
		return Result{}, err
	}

	var url string
	if err := r.step(StepDeploy, func() error {
		deployer := p.deployer
		if req.SkipDeploy || p.cfg.SkipDeploy {
			deployer = deploy.Local{}
		}
		var err error
		url, err = deployer.Deploy(ctx, dir)
		return err
	}); err != nil {
		return Result{}, err
	}

	ntl, err := json.Marshal(plan)
	if err != nil {
		return Result{}, &StepError{Step: StepLog, Err: err, Agent: r.agent, NeuralSeekResponse: r.raw}
	}
	record := &projects.Project{
		Prompt:             req.Prompt,
		URL:                url,
		NTL:                ntl,
		AgentName:          r.agent.Name,
		AgentCapabilities:  r.agent.Capabilities,
		NeuralSeekResponse: r.raw,
		GenerationTime:     p.now().Sub(r.startedAt).Milliseconds(),
		ComponentCount:     project.ComponentCount(),
	}
	if err := r.step(StepLog, func() error {
		return p.store.Create(ctx, record)
	}); err != nil {
		return Result{}, err
	}

	r.logger.Info("site generated", "url", url, "components", project.ComponentCount())
	return Result{
		RunID:          r.id,
		ProjectID:      record.ID,
		URL:            url,
		Agent:          *r.agent,
		Plan:           plan,
		ComponentCount: project.ComponentCount(),
		Dir:            dir,
		Duration:       p.now().Sub(r.startedAt),
	}, nil
}

func (p *Pipeline) plannerForRequest(req Request) (Planner, error) {
	if req.APIKey == "" || p.plannerFor == nil {
		return p.planner, nil
	}
	pl, err := p.plannerFor(req.APIKey)
	if err != nil {
		return nil, fmt.Errorf("pipeline: planner for request token: %w", err)
	}
	return pl, nil
}

func (p *Pipeline) generatorForRequest(req Request, pl Planner) (Generator, error) {
	if req.APIKey == "" || p.plannerFor == nil || p.generatorFor == nil {
		return p.generator, nil
	}
	gen, err := p.generatorFor(pl)
	if err != nil {
		return nil, fmt.Errorf("pipeline: generator for request token: %w", err)
	}
	return gen, nil
}

// manualAgent builds the agent from a client supplied JSON object. The
// whole object doubles as the script handed to the planner.
func manualAgent(raw json.RawMessage) (agentapi.Agent, error) {
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		return agentapi.Agent{}, errors.New("no agent_json provided and NeuralSeek is disabled")
	}
	doc, err := schema.Parse(raw)
	if err != nil {
		return agentapi.Agent{}, fmt.Errorf("agent_json: %w", err)
	}
	if doc.Kind() != schema.KindObject {
		return agentapi.Agent{}, fmt.Errorf("agent_json must be an object, got %s", doc.Kind())
	}

	agent := agentapi.Agent{
		Name:         doc.StringAt("name"),
		Description:  doc.StringAt("description"),
		NTL:          string(raw),
		Capabilities: []string{},
	}
	if agent.Name == "" {
		if title, ok := doc.Lookup("info", "title"); ok {
			agent.Name, _ = title.AsString()
		}
	}
	if agent.Name == "" {
		agent.Name = manualAgentName
	}
	if caps, ok := doc.Get("capabilities"); ok {
		items, _ := caps.AsArray()
		for _, item := range items {
			if s, ok := item.AsString(); ok {
				agent.Capabilities = append(agent.Capabilities, s)
			}
		}
	}
	return agent, nil
}
