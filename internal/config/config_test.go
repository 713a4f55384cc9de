package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-agentsite/internal/logging"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvName, "")
	for _, o := range envOverrides {
		t.Setenv(o.name, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const baseTOML = `
[server]
addr = ":9000"
read_timeout = "5s"

[log]
level = "debug"
format = "json"

[neuralseek]
url = "https://ns.example.test/v1/demo/maistro"
api_key = "file-key"

[llm]
provider = "mock"

[deploy]
timeout = "2m"

[sitegen]
theme = "agentsite"
variant = "dark"

[fields]
max_depth = 0
`

func TestLoad_FileAndDefaults(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.toml", baseTOML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Addr != ":9000" || cfg.Server.ReadTimeout.Duration != 5*time.Second {
		t.Fatalf("server not decoded: %+v", cfg.Server)
	}
	if cfg.Server.WriteTimeout.Duration != 10*time.Minute {
		t.Fatalf("write timeout default not applied: %v", cfg.Server.WriteTimeout)
	}
	if cfg.Log != (logging.Config{Level: logging.LevelDebug, Format: logging.FormatJSON}) {
		t.Fatalf("log not decoded: %+v", cfg.Log)
	}
	if cfg.NeuralSeek.InvokeURL != cfg.NeuralSeek.URL || cfg.NeuralSeek.MaxRetries != 2 {
		t.Fatalf("neuralseek defaults not applied: %+v", cfg.NeuralSeek)
	}
	if !cfg.NeuralSeek.Enabled() {
		t.Fatalf("expected neuralseek enabled")
	}
	if cfg.Deploy.Timeout.Duration != 2*time.Minute || cfg.Deploy.VercelBin != "vercel" {
		t.Fatalf("deploy not decoded: %+v", cfg.Deploy)
	}
	if cfg.Fields.Depth() != 0 {
		t.Fatalf("explicit max_depth 0 lost, got %d", cfg.Fields.Depth())
	}
	if cfg.Sitegen.ComponentMode != ComponentModeTemplate {
		t.Fatalf("component mode default: %q", cfg.Sitegen.ComponentMode)
	}
	if cfg.LLM.PlanTemperature != 0.7 || cfg.LLM.ComponentMaxTokens != 3000 {
		t.Fatalf("llm defaults: %+v", cfg.LLM)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.toml", baseTOML)

	t.Setenv("NEURALSEEK_API_KEY", "env-key")
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("AGENTSITE_LOG_LEVEL", "WARN")
	t.Setenv("AGENTSITE_FIELDS_MAX_DEPTH", "-1")
	t.Setenv("AGENTSITE_DEPLOY_SKIP", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	got := []string{cfg.NeuralSeek.APIKey, cfg.Database.URL, string(cfg.Log.Level)}
	if diff := cmp.Diff([]string{"env-key", "postgres://env/db", "warn"}, got); diff != "" {
		t.Fatalf("env overrides mismatch (-want +got):\n%s", diff)
	}
	if cfg.Fields.Depth() != -1 || !cfg.Deploy.Skip {
		t.Fatalf("typed env overrides not applied: %+v %+v", cfg.Fields, cfg.Deploy)
	}
}

func TestLoad_PrefixedNameWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEURALSEEK_API_URL", "https://short.example.test")
	t.Setenv("AGENTSITE_NEURALSEEK_URL", "https://prefixed.example.test")

	path := writeFile(t, t.TempDir(), "config.toml", "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.NeuralSeek.URL != "https://prefixed.example.test" {
		t.Fatalf("got %q", cfg.NeuralSeek.URL)
	}
}

func TestLoad_Overlay(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", baseTOML)
	writeFile(t, dir, "config.prod.toml", `
[server]
addr = ":443"

[fields]
heuristics = true
`)
	t.Setenv(EnvName, "prod")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":443" || !cfg.Fields.Heuristics {
		t.Fatalf("overlay not merged: %+v %+v", cfg.Server, cfg.Fields)
	}
	if cfg.Server.ReadTimeout.Duration != 5*time.Second || cfg.Fields.Depth() != 0 {
		t.Fatalf("overlay clobbered base values: %+v %+v", cfg.Server, cfg.Fields)
	}
}

func TestLoad_OverlayTurnsFlagsOff(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "config.toml", `
[deploy]
skip = true

[database]
migrate_on_start = true

[fields]
heuristics = true
`)
	writeFile(t, dir, "config.prod.toml", `
[deploy]
skip = false

[fields]
heuristics = false
`)
	t.Setenv(EnvName, "prod")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Deploy.Skip || cfg.Fields.Heuristics {
		t.Fatalf("overlay false should win: skip=%v heuristics=%v", cfg.Deploy.Skip, cfg.Fields.Heuristics)
	}
	if !cfg.Database.MigrateOnStart {
		t.Fatalf("flag absent from the overlay should keep the base value")
	}
}

func TestLoad_MissingOverlayIgnored(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, t.TempDir(), "config.toml", baseTOML)
	t.Setenv(EnvName, "staging")
	if _, err := Load(path); err != nil {
		t.Fatalf("missing overlay should be ignored: %v", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]struct {
		content string
		env     map[string]string
		want    string
	}{
		"bad log level":      {content: "[log]\nlevel = \"loud\"\n", want: "invalid log level"},
		"bad log level env":  {env: map[string]string{"AGENTSITE_LOG_LEVEL": "trace"}, want: "invalid log level"},
		"bad provider":       {content: "[llm]\nprovider = \"cohere\"\n", want: "unknown provider"},
		"bad component mode": {content: "[sitegen]\ncomponent_mode = \"magic\"\n", want: "component_mode"},
		"bad temperature":    {content: "[llm]\nplan_temperature = 3.5\n", want: "plan_temperature"},
		"bad depth":          {content: "[fields]\nmax_depth = -4\n", want: "max_depth"},
		"bad duration":       {content: "[server]\nread_timeout = \"soon\"\n", want: "parse"},
		"bad bool env":       {env: map[string]string{"AGENTSITE_DEPLOY_SKIP": "maybe"}, want: "AGENTSITE_DEPLOY_SKIP"},
		"bad toml":           {content: "[server\n", want: "parse"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			path := writeFile(t, t.TempDir(), "config.toml", tc.content)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("expected missing explicit file to fail")
	}
}

func TestLLMProviderFollowsToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load(writeFile(t, t.TempDir(), "config.toml", ""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4" {
		t.Fatalf("expected openai provider from token, got %+v", cfg.LLM)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(baseTOML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Sitegen.Variant != "dark" || cfg.Fields.Depth() != 0 {
		t.Fatalf("unexpected config: %+v", cfg.Sitegen)
	}
	empty, err := Parse(nil)
	if err != nil {
		t.Fatalf("parse empty: %v", err)
	}
	if empty.Fields.Depth() != 1 || empty.LLM.Provider != "none" {
		t.Fatalf("unexpected defaults: %+v %+v", empty.Fields, empty.LLM)
	}
}
