// Package config loads agentsite settings from TOML files with environment
// overlays and variable overrides. A Config is built once at startup and
// passed to constructors; it is not modified afterwards.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/goliatone/go-agentsite/internal/logging"
)

const (
	// BaseConfigFile is read when Load gets an empty path.
	BaseConfigFile = "config.toml"
	// OverlayConfigPattern names environment overlays next to the base file.
	OverlayConfigPattern = "config.%s.toml"
	// EnvName selects the overlay.
	EnvName = "AGENTSITE_ENV"
)

// Component modes.
const (
	ComponentModeTemplate = "template"
	ComponentModeLLM      = "llm"
)

// Duration decodes TOML strings such as "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

type NeuralSeekConfig struct {
	URL        string   `toml:"url"`
	InvokeURL  string   `toml:"invoke_url"`
	APIKey     string   `toml:"api_key"`
	Timeout    Duration `toml:"timeout"`
	MaxRetries int      `toml:"max_retries"`
}

// Enabled reports whether agent creation can be attempted.
func (c NeuralSeekConfig) Enabled() bool {
	return c.URL != "" && c.APIKey != ""
}

type LLMConfig struct {
	Provider             string  `toml:"provider"`
	Model                string  `toml:"model"`
	Token                string  `toml:"token"`
	BaseURL              string  `toml:"base_url"`
	PlanTemperature      float64 `toml:"plan_temperature"`
	PlanMaxTokens        int     `toml:"plan_max_tokens"`
	ComponentTemperature float64 `toml:"component_temperature"`
	ComponentMaxTokens   int     `toml:"component_max_tokens"`
}

type DeployConfig struct {
	Token     string   `toml:"token"`
	VercelBin string   `toml:"vercel_bin"`
	NpmBin    string   `toml:"npm_bin"`
	Timeout   Duration `toml:"timeout"`
	Skip      bool     `toml:"skip"`
}

type DatabaseConfig struct {
	URL            string `toml:"url"`
	MaxConns       int32  `toml:"max_conns"`
	MigrateOnStart bool   `toml:"migrate_on_start"`
}

type SitegenConfig struct {
	OutDir        string `toml:"out_dir"`
	Theme         string `toml:"theme"`
	Variant       string `toml:"variant"`
	ComponentMode string `toml:"component_mode"`
	// TemplateDir overrides embedded templates file by file.
	TemplateDir string `toml:"template_dir"`
}

type FieldsConfig struct {
	// MaxDepth is nil until set so an explicit 0 survives defaults.
	MaxDepth   *int `toml:"max_depth"`
	Heuristics bool `toml:"heuristics"`
}

// Depth returns the configured nesting depth.
func (c FieldsConfig) Depth() int {
	if c.MaxDepth == nil {
		return 1
	}
	return *c.MaxDepth
}

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `toml:"server"`
	Log        logging.Config   `toml:"log"`
	NeuralSeek NeuralSeekConfig `toml:"neuralseek"`
	LLM        LLMConfig        `toml:"llm"`
	Deploy     DeployConfig     `toml:"deploy"`
	Database   DatabaseConfig   `toml:"database"`
	Sitegen    SitegenConfig    `toml:"sitegen"`
	Fields     FieldsConfig     `toml:"fields"`
}

// Load reads path (config.toml when empty), applies the AGENTSITE_ENV
// overlay, environment overrides and defaults, then validates. A missing
// default file is not an error; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = BaseConfigFile
	}

	cfg, err := readFile(path)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, fs.ErrNotExist):
		cfg = &Config{}
	default:
		return nil, err
	}

	if env := os.Getenv(EnvName); env != "" {
		overlay := filepath.Join(filepath.Dir(path), fmt.Sprintf(OverlayConfigPattern, env))
		if _, statErr := os.Stat(overlay); statErr == nil {
			o, flags, err := readOverlay(overlay)
			if err != nil {
				return nil, fmt.Errorf("config: overlay %s: %w", overlay, err)
			}
			cfg.Merge(o)
			flags.Apply(cfg)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML data and finalizes it without touching the
// environment.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// OverlayFlags holds the booleans an overlay sets explicitly. A nil field
// was absent from the file and leaves the base value alone.
type OverlayFlags struct {
	Deploy struct {
		Skip *bool `toml:"skip"`
	} `toml:"deploy"`
	Database struct {
		MigrateOnStart *bool `toml:"migrate_on_start"`
	} `toml:"database"`
	Fields struct {
		Heuristics *bool `toml:"heuristics"`
	} `toml:"fields"`
}

// Apply writes the flags that were set onto c.
func (f OverlayFlags) Apply(c *Config) {
	setBool(&c.Deploy.Skip, f.Deploy.Skip)
	setBool(&c.Database.MigrateOnStart, f.Database.MigrateOnStart)
	setBool(&c.Fields.Heuristics, f.Fields.Heuristics)
}

func readOverlay(path string) (*Config, OverlayFlags, error) {
	var flags OverlayFlags
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, flags, err
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, flags, err
	}
	if err := toml.Unmarshal(data, &flags); err != nil {
		return nil, flags, err
	}
	return &cfg, flags, nil
}

// Merge copies the non-zero values of overlay into c. Booleans cannot be
// told apart from unset here and are left to OverlayFlags.
func (c *Config) Merge(o *Config) {
	if o == nil {
		return
	}
	setString(&c.Server.Addr, o.Server.Addr)
	setDuration(&c.Server.ReadTimeout, o.Server.ReadTimeout)
	setDuration(&c.Server.WriteTimeout, o.Server.WriteTimeout)
	setDuration(&c.Server.ShutdownTimeout, o.Server.ShutdownTimeout)

	if o.Log.Level != "" {
		c.Log.Level = o.Log.Level
	}
	if o.Log.Format != "" {
		c.Log.Format = o.Log.Format
	}

	setString(&c.NeuralSeek.URL, o.NeuralSeek.URL)
	setString(&c.NeuralSeek.InvokeURL, o.NeuralSeek.InvokeURL)
	setString(&c.NeuralSeek.APIKey, o.NeuralSeek.APIKey)
	setDuration(&c.NeuralSeek.Timeout, o.NeuralSeek.Timeout)
	if o.NeuralSeek.MaxRetries != 0 {
		c.NeuralSeek.MaxRetries = o.NeuralSeek.MaxRetries
	}

	setString(&c.LLM.Provider, o.LLM.Provider)
	setString(&c.LLM.Model, o.LLM.Model)
	setString(&c.LLM.Token, o.LLM.Token)
	setString(&c.LLM.BaseURL, o.LLM.BaseURL)
	if o.LLM.PlanTemperature != 0 {
		c.LLM.PlanTemperature = o.LLM.PlanTemperature
	}
	if o.LLM.PlanMaxTokens != 0 {
		c.LLM.PlanMaxTokens = o.LLM.PlanMaxTokens
	}
	if o.LLM.ComponentTemperature != 0 {
		c.LLM.ComponentTemperature = o.LLM.ComponentTemperature
	}
	if o.LLM.ComponentMaxTokens != 0 {
		c.LLM.ComponentMaxTokens = o.LLM.ComponentMaxTokens
	}

	setString(&c.Deploy.Token, o.Deploy.Token)
	setString(&c.Deploy.VercelBin, o.Deploy.VercelBin)
	setString(&c.Deploy.NpmBin, o.Deploy.NpmBin)
	setDuration(&c.Deploy.Timeout, o.Deploy.Timeout)

	setString(&c.Database.URL, o.Database.URL)
	if o.Database.MaxConns != 0 {
		c.Database.MaxConns = o.Database.MaxConns
	}

	setString(&c.Sitegen.OutDir, o.Sitegen.OutDir)
	setString(&c.Sitegen.Theme, o.Sitegen.Theme)
	setString(&c.Sitegen.Variant, o.Sitegen.Variant)
	setString(&c.Sitegen.ComponentMode, o.Sitegen.ComponentMode)
	setString(&c.Sitegen.TemplateDir, o.Sitegen.TemplateDir)

	if o.Fields.MaxDepth != nil {
		depth := *o.Fields.MaxDepth
		c.Fields.MaxDepth = &depth
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *Duration, v Duration) {
	if v.Duration != 0 {
		*dst = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 15 * time.Second
	}
	// generation runs npm install and a deploy inside the request
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 10 * time.Minute
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = 30 * time.Second
	}

	if c.Log.Level == "" {
		c.Log.Level = logging.LevelInfo
	}
	if c.Log.Format == "" {
		c.Log.Format = logging.FormatText
	}

	if c.NeuralSeek.InvokeURL == "" {
		c.NeuralSeek.InvokeURL = c.NeuralSeek.URL
	}
	if c.NeuralSeek.Timeout.Duration == 0 {
		c.NeuralSeek.Timeout.Duration = 30 * time.Second
	}
	if c.NeuralSeek.MaxRetries == 0 {
		c.NeuralSeek.MaxRetries = 2
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = "none"
		if c.LLM.Token != "" {
			c.LLM.Provider = "openai"
		}
	}
	if c.LLM.Model == "" && c.LLM.Provider == "openai" {
		c.LLM.Model = "gpt-4"
	}
	if c.LLM.PlanTemperature == 0 {
		c.LLM.PlanTemperature = 0.7
	}
	if c.LLM.PlanMaxTokens == 0 {
		c.LLM.PlanMaxTokens = 2000
	}
	if c.LLM.ComponentTemperature == 0 {
		c.LLM.ComponentTemperature = 0.3
	}
	if c.LLM.ComponentMaxTokens == 0 {
		c.LLM.ComponentMaxTokens = 3000
	}

	if c.Deploy.VercelBin == "" {
		c.Deploy.VercelBin = "vercel"
	}
	if c.Deploy.NpmBin == "" {
		c.Deploy.NpmBin = "npm"
	}
	if c.Deploy.Timeout.Duration == 0 {
		c.Deploy.Timeout.Duration = 5 * time.Minute
	}

	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 10
	}

	if c.Sitegen.OutDir == "" {
		c.Sitegen.OutDir = filepath.Join(os.TempDir(), "agentsite")
	}
	if c.Sitegen.ComponentMode == "" {
		c.Sitegen.ComponentMode = ComponentModeTemplate
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("config: log: %w", err)
	}
	switch c.LLM.Provider {
	case "none", "openai", "mock", "fake":
	default:
		return fmt.Errorf("config: llm: unknown provider %q", c.LLM.Provider)
	}
	for name, t := range map[string]float64{
		"plan_temperature":      c.LLM.PlanTemperature,
		"component_temperature": c.LLM.ComponentTemperature,
	} {
		if t < 0 || t > 2 {
			return fmt.Errorf("config: llm: %s must be within [0, 2], got %v", name, t)
		}
	}
	if c.LLM.PlanMaxTokens < 0 || c.LLM.ComponentMaxTokens < 0 {
		return errors.New("config: llm: max tokens must not be negative")
	}
	switch c.Sitegen.ComponentMode {
	case ComponentModeTemplate, ComponentModeLLM:
	default:
		return fmt.Errorf("config: sitegen: component_mode must be %q or %q, got %q",
			ComponentModeTemplate, ComponentModeLLM, c.Sitegen.ComponentMode)
	}
	if d := c.Fields.Depth(); d < -1 {
		return fmt.Errorf("config: fields: max_depth must be -1 or more, got %d", d)
	}
	if c.Database.MaxConns < 0 {
		return errors.New("config: database: max_conns must not be negative")
	}
	for name, d := range map[string]Duration{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"neuralseek.timeout":      c.NeuralSeek.Timeout,
		"deploy.timeout":          c.Deploy.Timeout,
	} {
		if d.Duration < 0 {
			return fmt.Errorf("config: %s must not be negative", name)
		}
	}
	return nil
}

type lookupFunc func(string) (string, bool)

// envOverrides maps variables onto fields. Later entries win, so the
// AGENTSITE_ names override the short ones.
var envOverrides = []struct {
	name  string
	apply func(c *Config, v string) error
}{
	{"NEURALSEEK_API_URL", func(c *Config, v string) error { c.NeuralSeek.URL = v; return nil }},
	{"NEURALSEEK_API_KEY", func(c *Config, v string) error { c.NeuralSeek.APIKey = v; return nil }},
	{"OPENAI_API_KEY", func(c *Config, v string) error { c.LLM.Token = v; return nil }},
	{"VERCEL_TOKEN", func(c *Config, v string) error { c.Deploy.Token = v; return nil }},
	{"DATABASE_URL", func(c *Config, v string) error { c.Database.URL = v; return nil }},

	{"AGENTSITE_ADDR", func(c *Config, v string) error { c.Server.Addr = v; return nil }},
	{"AGENTSITE_LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = logging.Level(strings.ToLower(v)); return nil }},
	{"AGENTSITE_LOG_FORMAT", func(c *Config, v string) error { c.Log.Format = logging.Format(strings.ToLower(v)); return nil }},
	{"AGENTSITE_NEURALSEEK_URL", func(c *Config, v string) error { c.NeuralSeek.URL = v; return nil }},
	{"AGENTSITE_NEURALSEEK_INVOKE_URL", func(c *Config, v string) error { c.NeuralSeek.InvokeURL = v; return nil }},
	{"AGENTSITE_NEURALSEEK_API_KEY", func(c *Config, v string) error { c.NeuralSeek.APIKey = v; return nil }},
	{"AGENTSITE_LLM_PROVIDER", func(c *Config, v string) error { c.LLM.Provider = strings.ToLower(v); return nil }},
	{"AGENTSITE_LLM_MODEL", func(c *Config, v string) error { c.LLM.Model = v; return nil }},
	{"AGENTSITE_LLM_TOKEN", func(c *Config, v string) error { c.LLM.Token = v; return nil }},
	{"AGENTSITE_DEPLOY_TOKEN", func(c *Config, v string) error { c.Deploy.Token = v; return nil }},
	{"AGENTSITE_DEPLOY_SKIP", func(c *Config, v string) error { return parseBool(&c.Deploy.Skip, v) }},
	{"AGENTSITE_DATABASE_URL", func(c *Config, v string) error { c.Database.URL = v; return nil }},
	{"AGENTSITE_OUT_DIR", func(c *Config, v string) error { c.Sitegen.OutDir = v; return nil }},
	{"AGENTSITE_THEME", func(c *Config, v string) error { c.Sitegen.Theme = v; return nil }},
	{"AGENTSITE_THEME_VARIANT", func(c *Config, v string) error { c.Sitegen.Variant = v; return nil }},
	{"AGENTSITE_COMPONENT_MODE", func(c *Config, v string) error { c.Sitegen.ComponentMode = v; return nil }},
	{"AGENTSITE_FIELDS_MAX_DEPTH", func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		c.Fields.MaxDepth = &n
		return nil
	}},
	{"AGENTSITE_FIELDS_HEURISTICS", func(c *Config, v string) error { return parseBool(&c.Fields.Heuristics, v) }},
}

func (c *Config) applyEnv(lookup lookupFunc) error {
	for _, o := range envOverrides {
		v, ok := lookup(o.name)
		if !ok || v == "" {
			continue
		}
		if err := o.apply(c, v); err != nil {
			return fmt.Errorf("config: %s: %w", o.name, err)
		}
	}
	return nil
}

func parseBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}
