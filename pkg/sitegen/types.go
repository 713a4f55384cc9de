package sitegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-agentsite/pkg/fields"
)

// Agent is the public face of the agent shown in the generated site.
type Agent struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// Endpoint tells the generated api.ts where and as whom to invoke the agent.
type Endpoint struct {
	URL   string `json:"url"`
	Agent string `json:"agent"`
}

// Input is everything a generation run needs.
type Input struct {
	Agent      Agent
	Components []string
	Layout     string
	Fields     []fields.Descriptor
	Endpoint   Endpoint
	Theme      string
	Variant    string
	// Name overrides the project name derived from the agent.
	Name string
	// Plan is the UI plan the components come from. It is handed to the
	// ComponentWriter as context and never rendered directly.
	Plan any
}

// File is one generated source file. Path is slash separated and relative
// to the project root.
type File struct {
	Path    string `json:"path"`
	Content []byte `json:"-"`
}

// Project is the rendered file set.
type Project struct {
	Name       string   `json:"name"`
	Components []string `json:"components"`
	Files      []File   `json:"files"`
}

// File returns the generated file at path.
func (p Project) File(path string) (File, bool) {
	for _, f := range p.Files {
		if f.Path == path {
			return f, true
		}
	}
	return File{}, false
}

// ComponentCount reports how many plan components were generated.
func (p Project) ComponentCount() int {
	return len(p.Components)
}

// WriteTo writes every file below dir, creating directories as needed.
// Paths escaping dir are rejected.
func (p Project) WriteTo(dir string) error {
	root, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("sitegen: resolve %s: %w", dir, err)
	}
	for _, f := range p.Files {
		target := filepath.Join(root, filepath.FromSlash(f.Path))
		if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
			return fmt.Errorf("sitegen: file %q escapes project dir", f.Path)
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("sitegen: mkdir for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(target, f.Content, 0o644); err != nil {
			return fmt.Errorf("sitegen: write %s: %w", f.Path, err)
		}
	}
	return nil
}
