package deploy

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/google/shlex"
)

// Runner executes a command in dir and returns its captured output.
type Runner interface {
	Run(ctx context.Context, dir string, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Env is appended to the inherited environment.
	Env []string
}

// Run implements Runner.
func (r ExecRunner) Run(ctx context.Context, dir string, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	if len(r.Env) > 0 {
		cmd.Env = append(cmd.Environ(), r.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// splitCommand parses a configured command line such as "npx vercel" into
// the program and its leading arguments.
func splitCommand(command string) ([]string, error) {
	if strings.ContainsAny(command, "\r\n") {
		return nil, fmt.Errorf("deploy: command %q cannot contain newlines", command)
	}
	parts, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf("deploy: parse command %q: %w", command, err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("deploy: command is empty")
	}
	if strings.HasPrefix(parts[0], "-") {
		return nil, fmt.Errorf("deploy: command %q cannot start with a dash", command)
	}
	return parts, nil
}
