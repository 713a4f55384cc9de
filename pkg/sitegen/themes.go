package sitegen

import (
	"fmt"
	"sort"
	"sync"

	theme "github.com/goliatone/go-theme"
)

// DefaultThemeName is the built-in theme used when none is configured.
const DefaultThemeName = "agentsite"

// DefaultThemeManifest returns the built-in manifest. Tokens become Tailwind
// colours, so templates can use bg-primary, text-muted and friends.
func DefaultThemeManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"primary": "#2563eb",
			"accent":  "#7c3aed",
			"surface": "#f9fafb",
			"ink":     "#111827",
			"muted":   "#6b7280",
		},
		Templates: map[string]string{
			"sitegen.app":         "project/App.tsx",
			"sitegen.placeholder": "components/Placeholder",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"primary": "#3b82f6",
					"surface": "#111827",
					"ink":     "#f9fafb",
					"muted":   "#9ca3af",
				},
			},
			"warm": {
				Tokens: map[string]string{
					"primary": "#ea580c",
					"accent":  "#db2777",
					"surface": "#fffbeb",
				},
			},
		},
	}
}

type manifestRegistrar interface {
	Register(*theme.Manifest) error
}

// ThemeCatalog is a theme.ThemeSelector over a fixed set of manifests.
// Manifests are validated through a go-theme registry on registration.
type ThemeCatalog struct {
	mu        sync.RWMutex
	provider  manifestRegistrar
	manifests map[string]*theme.Manifest
	fallback  string
}

var _ theme.ThemeSelector = (*ThemeCatalog)(nil)

// NewThemeCatalog registers manifests; the first one becomes the fallback
// for an empty theme name. With no manifests the built-in theme is used.
func NewThemeCatalog(manifests ...*theme.Manifest) (*ThemeCatalog, error) {
	if len(manifests) == 0 {
		manifests = []*theme.Manifest{DefaultThemeManifest()}
	}
	c := &ThemeCatalog{
		provider:  theme.NewRegistry(),
		manifests: make(map[string]*theme.Manifest, len(manifests)),
	}
	for _, m := range manifests {
		if err := c.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register adds a manifest.
func (c *ThemeCatalog) Register(m *theme.Manifest) error {
	if m == nil || m.Name == "" {
		return fmt.Errorf("sitegen: theme manifest requires a name")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.manifests[m.Name]; exists {
		return fmt.Errorf("sitegen: theme %q already registered", m.Name)
	}
	if err := c.provider.Register(m); err != nil {
		return fmt.Errorf("sitegen: register theme %q: %w", m.Name, err)
	}
	c.manifests[m.Name] = m
	if c.fallback == "" {
		c.fallback = m.Name
	}
	return nil
}

// Select resolves a theme and variant. An empty name picks the fallback
// theme; an empty variant keeps the base tokens.
func (c *ThemeCatalog) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if name == "" {
		name = c.fallback
	}
	m, ok := c.manifests[name]
	if !ok {
		return nil, fmt.Errorf("sitegen: unknown theme %q", name)
	}
	if variant != "" {
		if _, ok := m.Variants[variant]; !ok {
			return nil, fmt.Errorf("sitegen: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: m}, nil
}

// Names lists registered themes.
func (c *ThemeCatalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.manifests))
	for name := range c.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SelectionTokens merges the base manifest tokens with the selected
// variant's overrides.
func SelectionTokens(sel *theme.Selection) map[string]string {
	out := map[string]string{}
	if sel == nil || sel.Manifest == nil {
		return out
	}
	for k, v := range sel.Manifest.Tokens {
		out[k] = v
	}
	if variant, ok := sel.Manifest.Variants[sel.Variant]; ok {
		for k, v := range variant.Tokens {
			out[k] = v
		}
	}
	return out
}
