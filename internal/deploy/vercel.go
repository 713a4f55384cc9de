package deploy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// DefaultTimeout bounds a whole deployment.
const DefaultTimeout = 5 * time.Minute

var deploymentURL = regexp.MustCompile(`https://[^\s]+\.vercel\.app`)

// Config configures the Vercel deployer.
type Config struct {
	Token string
	// VercelBin and NpmBin are command lines; they may carry arguments
	// ("npx vercel").
	VercelBin string
	NpmBin    string
	Timeout   time.Duration
	// SkipInstall skips npm install, for projects installed elsewhere.
	SkipInstall bool
}

// Option configures a Vercel deployer.
type Option func(*Vercel)

// WithRunner swaps the command runner.
func WithRunner(r Runner) Option {
	return func(v *Vercel) {
		if r != nil {
			v.runner = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Vercel) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// Vercel deploys a project directory with the Vercel CLI.
type Vercel struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// New builds a Vercel deployer.
func New(cfg Config, options ...Option) *Vercel {
	if cfg.VercelBin == "" {
		cfg.VercelBin = "vercel"
	}
	if cfg.NpmBin == "" {
		cfg.NpmBin = "npm"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	v := &Vercel{
		cfg:    cfg,
		runner: ExecRunner{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	v.logger = v.logger.With("component", "deploy")
	return v
}

// Deploy installs dependencies in dir, deploys it to production and returns
// the deployment URL.
func (v *Vercel) Deploy(ctx context.Context, dir string) (string, error) {
	if v.cfg.Token == "" {
		return "", ErrMissingToken
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("deploy: resolve %s: %w", dir, err)
	}

	ctx, cancel := context.WithTimeout(ctx, v.cfg.Timeout)
	defer cancel()

	if !v.cfg.SkipInstall {
		v.logger.Info("installing dependencies", "dir", abs)
		if _, err := v.run(ctx, abs, v.cfg.NpmBin, "install"); err != nil {
			return "", err
		}
	}

	v.logger.Info("deploying", "dir", abs)
	stdout, err := v.run(ctx, abs, v.cfg.VercelBin, "deploy", abs, "--prod", "--token", v.cfg.Token, "--yes")
	if err != nil {
		return "", err
	}

	url, err := ExtractURL(string(stdout))
	if err != nil {
		v.logger.Error("deployment url missing", "output", v.redact(string(stdout)))
		return "", err
	}
	v.logger.Info("deployed", "url", url)
	return url, nil
}

func (v *Vercel) run(ctx context.Context, dir, command string, args ...string) ([]byte, error) {
	parts, err := splitCommand(command)
	if err != nil {
		return nil, err
	}
	argv := append(parts[1:len(parts):len(parts)], args...)
	stdout, stderr, err := v.runner.Run(ctx, dir, parts[0], argv...)
	if len(stderr) > 0 {
		v.logger.Warn("command stderr", "command", parts[0], "stderr", v.redact(strings.TrimSpace(string(stderr))))
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, parts[0], v.cfg.Timeout)
		}
		return nil, fmt.Errorf("deploy: %s %s: %s", parts[0], firstArg(args), v.redact(err.Error()))
	}
	return stdout, nil
}

func (v *Vercel) redact(s string) string {
	if v.cfg.Token == "" {
		return s
	}
	return strings.ReplaceAll(s, v.cfg.Token, "***")
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// ExtractURL returns the first https://….vercel.app URL in output.
func ExtractURL(output string) (string, error) {
	url := deploymentURL.FindString(output)
	if url == "" {
		return "", ErrNoURL
	}
	return url, nil
}

// Local is a deployer that publishes nothing and reports the project
// directory as a file URL. It backs the skip-deploy mode.
type Local struct{}

// Deploy implements the deployer contract without leaving the machine.
func (Local) Deploy(_ context.Context, dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("deploy: resolve %s: %w", dir, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}
