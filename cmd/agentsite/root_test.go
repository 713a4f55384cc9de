package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var blogcraft = filepath.Join("..", "..", "pkg", "openapi", "testdata", "blogcraft.yaml")

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"AGENTSITE_ENV",
		"DATABASE_URL", "AGENTSITE_DATABASE_URL",
		"OPENAI_API_KEY", "AGENTSITE_LLM_TOKEN", "AGENTSITE_LLM_PROVIDER",
		"NEURALSEEK_API_URL", "AGENTSITE_NEURALSEEK_URL",
		"AGENTSITE_OUT_DIR", "AGENTSITE_DEPLOY_SKIP",
	} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, outDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[log]
level = "error"

[llm]
provider = "none"

[deploy]
skip = true

[sitegen]
out_dir = "` + filepath.ToSlash(outDir) + `"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := RootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestFieldsCommand(t *testing.T) {
	isolateEnv(t)
	cfg := writeConfig(t, t.TempDir())

	out, err := execute(t, "--config", cfg, "fields", blogcraft, "--max-depth", "0")
	if err != nil {
		t.Fatalf("fields: %v", err)
	}

	var got struct {
		Path        string `json:"path"`
		OperationID string `json:"operation_id"`
		Fields      []struct {
			Path string `json:"path"`
		} `json:"fields"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if got.Path != "/maistro" || got.OperationID != "runBlogCraftAI" {
		t.Fatalf("unexpected operation: %+v", got)
	}
	var paths []string
	for _, f := range got.Fields {
		paths = append(paths, f.Path)
	}
	want := []string{"params.blogTopic", "params.tone", "params.wordCount", "params.audience"}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldsCommandRequiresSource(t *testing.T) {
	isolateEnv(t)
	cfg := writeConfig(t, t.TempDir())
	if _, err := execute(t, "--config", cfg, "fields"); err == nil {
		t.Fatalf("expected an argument error")
	}
}

func TestGenerateCommandWritesProject(t *testing.T) {
	isolateEnv(t)
	outDir := t.TempDir()
	cfg := writeConfig(t, outDir)

	out, err := execute(t, "--config", cfg, "generate",
		"--prompt", "A blog writing assistant",
		"--agent-json", blogcraft,
		"--no-neuralseek",
	)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var res struct {
		URL            string `json:"url"`
		Dir            string `json:"dir"`
		ComponentCount int    `json:"component_count"`
		Agent          struct {
			Name string `json:"name"`
		} `json:"agent"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if res.Agent.Name != "BlogCraftAI" {
		t.Fatalf("expected agent name from info.title, got %q", res.Agent.Name)
	}
	if !strings.HasPrefix(res.URL, "file://") {
		t.Fatalf("expected local url with deploy skipped, got %q", res.URL)
	}
	if res.ComponentCount == 0 {
		t.Fatalf("expected generated components")
	}
	if !strings.HasPrefix(res.Dir, outDir) {
		t.Fatalf("expected project under %s, got %s", outDir, res.Dir)
	}
	if _, err := os.Stat(filepath.Join(res.Dir, "package.json")); err != nil {
		t.Fatalf("expected package.json: %v", err)
	}
}

func TestGenerateCommandRequiresPrompt(t *testing.T) {
	isolateEnv(t)
	cfg := writeConfig(t, t.TempDir())
	if _, err := execute(t, "--config", cfg, "generate", "--no-neuralseek"); err == nil {
		t.Fatalf("expected missing --prompt to fail")
	}
}

func TestMigrateRequiresDatabase(t *testing.T) {
	isolateEnv(t)
	cfg := writeConfig(t, t.TempDir())
	_, err := execute(t, "--config", cfg, "migrate")
	if err == nil || !strings.Contains(err.Error(), "database.url") {
		t.Fatalf("expected database error, got %v", err)
	}
}

func TestProjectsCommandUsesMemoryStore(t *testing.T) {
	isolateEnv(t)
	cfg := writeConfig(t, t.TempDir())
	out, err := execute(t, "--config", cfg, "projects")
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Fatalf("expected empty list, got %q", out)
	}
}

func TestAgentPayloadConvertsYAML(t *testing.T) {
	raw, err := agentPayload([]byte("name: Helper\ncapabilities: [search]\n"))
	if err != nil {
		t.Fatalf("agentPayload: %v", err)
	}
	if string(raw) != `{"name":"Helper","capabilities":["search"]}` {
		t.Fatalf("unexpected payload %s", raw)
	}
}
