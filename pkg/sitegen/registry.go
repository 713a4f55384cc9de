package sitegen

import (
	"fmt"
	"sort"
	"sync"
)

// Component binds a component name to the template that renders it.
type Component struct {
	Name        string
	Description string
	// Template is the template path under the templates root, without the
	// .tpl extension.
	Template string
}

// Registry stores component templates by name.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Component
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]Component)}
}

// DefaultRegistry returns a registry with the built-in components.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, c := range []Component{
		{Name: "ChatInterface", Description: "A chat UI for conversational agents"},
		{Name: "FileUpload", Description: "A file upload component for document processing agents"},
		{Name: "DataVisualization", Description: "A data visualization component for analytics agents"},
		{Name: "FormBuilder", Description: "A form builder for data collection agents"},
		{Name: "Dashboard", Description: "A dashboard for monitoring agents"},
		{Name: "AgentInfo", Description: "Agent name, description and capabilities"},
		{Name: "AgentForm", Description: "An input form generated from the agent's request schema"},
	} {
		c.Template = "components/" + c.Name
		r.MustRegister(c)
	}
	return r
}

// Register adds a component. Duplicate names return an error.
func (r *Registry) Register(c Component) error {
	if c.Name == "" {
		return fmt.Errorf("sitegen: component name is required")
	}
	if c.Template == "" {
		return fmt.Errorf("sitegen: component %q has no template", c.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.components[c.Name]; exists {
		return fmt.Errorf("sitegen: component %q already registered", c.Name)
	}
	r.components[c.Name] = c
	return nil
}

// MustRegister panics on registration failure.
func (r *Registry) MustRegister(c Component) {
	if err := r.Register(c); err != nil {
		panic(err)
	}
}

// Get retrieves a component by name.
func (r *Registry) Get(name string) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[name]
	return c, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe returns name/description pairs, used to tell the planner which
// components exist.
func (r *Registry) Describe() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.components))
	for name, c := range r.components {
		out[name] = c.Description
	}
	return out
}
