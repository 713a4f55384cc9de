package template_test

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-agentsite/pkg/render/template/gotemplate"
	"github.com/goliatone/go-agentsite/pkg/testsupport"
)

//go:embed testdata/templates/*.tpl
var embeddedTemplates embed.FS

func TestEngine_RenderTemplateTrimsBlocksAndEscapes(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("component", map[string]any{
			"name":     "Greeting",
			"greeting": `It's "here" <now>`,
			"items":    []string{"Tom & Jerry", "plain"},
		}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "component.golden"))
	if result != want {
		t.Fatalf("render template mismatch result\nwant: %q\n got: %q", want, result)
	}
	if written != want {
		t.Fatalf("render template mismatch writer\nwant: %q\n got: %q", want, written)
	}
}

func TestEngine_ConcurrentRendersShareCache(t *testing.T) {
	engine := newEngine(t)
	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "component.golden"))
	data := map[string]any{
		"name":     "Greeting",
		"greeting": `It's "here" <now>`,
		"items":    []string{"Tom & Jerry", "plain"},
	}

	const workers = 16
	results := make([]string, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.RenderTemplate("component", data)
		}(i)
	}
	wg.Wait()

	for i := range results {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if results[i] != want {
			t.Fatalf("worker %d mismatch\nwant: %q\n got: %q", i, want, results[i])
		}
	}
}

func TestEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t)
	if err := engine.GlobalContext(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-global.golden"))
	if result != want {
		t.Fatalf("render template mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		if input == nil {
			return "", nil
		}
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter registration to fail")
	}

	result, err := engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-filter.golden"))
	if result != want {
		t.Fatalf("render template mismatch\nwant: %q\n got: %q", want, result)
	}
}

func TestEngine_RenderStringWithStructData(t *testing.T) {
	engine := newEngine(t)
	data := struct {
		Name  string         `json:"name"`
		Scope map[string]int `json:"scope"`
	}{Name: "AgentForm", Scope: map[string]int{"b": 2, "a": 1}}

	got, err := engine.Render(`{{ name|lowerfirst }} {{ scope|tojson }}`, data)
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if want := `agentForm {"a":1,"b":2}`; got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without base dir or fs")
	}
}

func newEngine(t *testing.T) *gotemplate.Engine {
	t.Helper()
	sub, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := gotemplate.New(gotemplate.WithFS(sub), gotemplate.WithName("test"))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}
