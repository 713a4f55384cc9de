package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-agentsite/internal/agentapi"
	"github.com/goliatone/go-agentsite/internal/config"
	"github.com/goliatone/go-agentsite/internal/deploy"
	"github.com/goliatone/go-agentsite/internal/pipeline"
	"github.com/goliatone/go-agentsite/internal/planner"
	"github.com/goliatone/go-agentsite/internal/projects"
	"github.com/goliatone/go-agentsite/pkg/fields"
	"github.com/goliatone/go-agentsite/pkg/sitegen"
)

const defaultOpenAIModel = "gpt-4"

func (a *app) fieldOptions() []fields.Option {
	return []fields.Option{
		fields.WithMaxDepth(a.cfg.Fields.Depth()),
		fields.WithHeuristics(a.cfg.Fields.Heuristics),
	}
}

func (a *app) agentClient() *agentapi.Client {
	ns := a.cfg.NeuralSeek
	return agentapi.New(agentapi.Config{
		URL:        ns.URL,
		InvokeURL:  ns.InvokeURL,
		APIKey:     ns.APIKey,
		Timeout:    ns.Timeout.Duration,
		MaxRetries: ns.MaxRetries,
	}, agentapi.WithLogger(a.logger))
}

// newPlanner builds a planner on the configured model, or on OpenAI with
// token when one is supplied for a single run.
func (a *app) newPlanner(token string) (*planner.Planner, error) {
	llm := a.cfg.LLM
	mc := planner.ModelConfig{
		Provider: llm.Provider,
		Model:    llm.Model,
		Token:    llm.Token,
		BaseURL:  llm.BaseURL,
	}
	if token != "" {
		mc.Provider, mc.Token = "openai", token
		if llm.Provider != "openai" {
			mc.Model, mc.BaseURL = defaultOpenAIModel, ""
		}
	}
	model, err := planner.NewModel(mc)
	if err != nil {
		return nil, err
	}
	return planner.New(model,
		planner.WithPlanSettings(planner.Settings{Temperature: llm.PlanTemperature, MaxTokens: llm.PlanMaxTokens}),
		planner.WithComponentSettings(planner.Settings{Temperature: llm.ComponentTemperature, MaxTokens: llm.ComponentMaxTokens}),
		planner.WithCatalog(sitegen.DefaultRegistry().Describe()),
		planner.WithFieldOptions(a.fieldOptions()...),
		planner.WithLogger(a.logger),
	)
}

func (a *app) generator(writer *planner.Planner) (*sitegen.Generator, error) {
	options := []sitegen.Option{
		sitegen.WithTemplateDir(a.cfg.Sitegen.TemplateDir),
		sitegen.WithLogger(a.logger),
	}
	if a.cfg.Sitegen.ComponentMode == config.ComponentModeLLM && writer != nil && writer.HasModel() {
		options = append(options, sitegen.WithComponentWriter(writer))
	}
	return sitegen.New(options...)
}

func (a *app) deployer() pipeline.Deployer {
	if a.cfg.Deploy.Skip {
		return deploy.Local{}
	}
	d := a.cfg.Deploy
	return deploy.New(deploy.Config{
		Token:     d.Token,
		VercelBin: d.VercelBin,
		NpmBin:    d.NpmBin,
		Timeout:   d.Timeout.Duration,
	}, deploy.WithLogger(a.logger))
}

// store opens the Postgres project log, or an in-memory one when no
// database is configured.
func (a *app) store(ctx context.Context) (projects.Store, func(), error) {
	db := a.cfg.Database
	if db.URL == "" {
		a.logger.Warn("database.url is not set, project log is kept in memory")
		return projects.NewMemoryStore(), func() {}, nil
	}
	if db.MigrateOnStart {
		if err := projects.Migrate(ctx, db.URL); err != nil {
			return nil, nil, err
		}
	}
	pool, err := projects.Open(ctx, db.URL, db.MaxConns)
	if err != nil {
		return nil, nil, err
	}
	return projects.NewRepository(pool), pool.Close, nil
}

type services struct {
	pipeline *pipeline.Pipeline
	store    projects.Store
	agents   *agentapi.Client
	close    func()
}

func (a *app) services(ctx context.Context, reg prometheus.Registerer) (*services, error) {
	pl, err := a.newPlanner("")
	if err != nil {
		return nil, err
	}
	gen, err := a.generator(pl)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := a.store(ctx)
	if err != nil {
		return nil, err
	}

	var metrics *pipeline.Metrics
	if reg != nil {
		if metrics, err = pipeline.NewMetrics(reg); err != nil {
			closeStore()
			return nil, fmt.Errorf("metrics: %w", err)
		}
	}

	agents := a.agentClient()
	p, err := pipeline.New(pipeline.Config{
		OutDir:     a.cfg.Sitegen.OutDir,
		InvokeURL:  agents.InvokeURL(),
		Theme:      a.cfg.Sitegen.Theme,
		Variant:    a.cfg.Sitegen.Variant,
		SkipDeploy: a.cfg.Deploy.Skip,
	}, pl, gen, a.deployer(), store,
		pipeline.WithAgentCreator(agents),
		pipeline.WithPlannerFactory(func(token string) (pipeline.Planner, error) {
			return a.newPlanner(token)
		}),
		pipeline.WithGeneratorFactory(func(pl pipeline.Planner) (pipeline.Generator, error) {
			writer, _ := pl.(*planner.Planner)
			return a.generator(writer)
		}),
		pipeline.WithMetrics(metrics),
		pipeline.WithLogger(a.logger),
	)
	if err != nil {
		closeStore()
		return nil, err
	}
	return &services{pipeline: p, store: store, agents: agents, close: closeStore}, nil
}
