package sitegen_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-agentsite/pkg/sitegen"
)

func TestDefaultRegistry(t *testing.T) {
	r := sitegen.DefaultRegistry()
	want := []string{"AgentForm", "AgentInfo", "ChatInterface", "Dashboard", "DataVisualization", "FileUpload", "FormBuilder"}
	if diff := cmp.Diff(want, r.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	c, ok := r.Get("ChatInterface")
	if !ok || c.Template != "components/ChatInterface" {
		t.Fatalf("unexpected component: %+v", c)
	}
	if err := r.Register(sitegen.Component{Name: "ChatInterface", Template: "x"}); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := r.Register(sitegen.Component{Name: "Pricing"}); err == nil {
		t.Fatalf("expected missing template to fail")
	}
	if len(r.Describe()) != len(want) {
		t.Fatalf("expected a description per component")
	}
}

func TestComponentName(t *testing.T) {
	cases := map[string]string{
		"ChatInterface":    "ChatInterface",
		"chat interface":   "ChatInterface",
		"chat-interface":   "ChatInterface",
		"dataViz":          "DataViz",
		"  Pricing Table ": "PricingTable",
		"3d viewer":        "C3dViewer",
		"!!!":              "",
		"":                 "",
	}
	for in, want := range cases {
		if got := sitegen.ComponentName(in); got != want {
			t.Fatalf("ComponentName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestProjectName(t *testing.T) {
	if got := sitegen.ProjectName("Blog Writer 2000"); got != "blog-writer-2000" {
		t.Fatalf("unexpected project name %q", got)
	}
	if got := sitegen.ProjectName("   "); got != "ai-agent-site" {
		t.Fatalf("expected fallback name, got %q", got)
	}
}

func TestThemeCatalog(t *testing.T) {
	catalog, err := sitegen.NewThemeCatalog()
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}

	sel, err := catalog.Select("", "warm")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sel.Theme != sitegen.DefaultThemeName {
		t.Fatalf("expected fallback theme, got %q", sel.Theme)
	}
	tokens := sitegen.SelectionTokens(sel)
	if tokens["primary"] != "#ea580c" || tokens["ink"] != "#111827" {
		t.Fatalf("unexpected merged tokens: %v", tokens)
	}

	if _, err := catalog.Select("", "neon"); err == nil {
		t.Fatalf("expected unknown variant to fail")
	}
	if err := catalog.Register(sitegen.DefaultThemeManifest()); err == nil {
		t.Fatalf("expected duplicate theme to fail")
	}

	custom := &theme.Manifest{Name: "mono", Version: "0.1.0", Tokens: map[string]string{"primary": "#000"}}
	if err := catalog.Register(custom); err != nil {
		t.Fatalf("register custom: %v", err)
	}
	if diff := cmp.Diff([]string{"agentsite", "mono"}, catalog.Names()); diff != "" {
		t.Fatalf("theme names mismatch (-want +got):\n%s", diff)
	}
	if got := sitegen.SelectionTokens(nil); len(got) != 0 {
		t.Fatalf("expected empty tokens for nil selection")
	}
}
