package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-agentsite/internal/agentapi"
	"github.com/goliatone/go-agentsite/internal/api"
	"github.com/goliatone/go-agentsite/internal/pipeline"
	"github.com/goliatone/go-agentsite/internal/planner"
	"github.com/goliatone/go-agentsite/internal/projects"
)

type fakeRunner struct {
	result pipeline.Result
	err    error
	got    pipeline.Request
}

func (f *fakeRunner) Run(_ context.Context, req pipeline.Request) (pipeline.Result, error) {
	f.got = req
	return f.result, f.err
}

type fakeInvoker struct {
	agent  string
	values map[string]any
	out    json.RawMessage
	err    error
}

func (f *fakeInvoker) Invoke(_ context.Context, agent string, values map[string]any) (json.RawMessage, error) {
	f.agent = agent
	f.values = values
	return f.out, f.err
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 && strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

func TestGenerateSite_Success(t *testing.T) {
	id := uuid.MustParse("7f1c2a52-3e0e-4b7a-9d51-0c7f0f3d5a10")
	runner := &fakeRunner{result: pipeline.Result{
		URL:            "https://blog.vercel.app",
		Agent:          agentapi.Agent{Name: "Blog", Capabilities: []string{"write"}},
		Plan:           planner.Plan{Components: planner.StringList{"AgentInfo"}},
		ComponentCount: 1,
		ProjectID:      id,
	}}
	srv := api.New(api.WithRunner(runner))

	code, body := do(t, srv, http.MethodPost, "/api/generate-site", `{"prompt":" blog writer ","api_key":"sk-1"}`)
	if code != http.StatusOK {
		t.Fatalf("status %d: %v", code, body)
	}
	if !runner.got.UseNeuralSeek || runner.got.Prompt != "blog writer" || runner.got.APIKey != "sk-1" {
		t.Fatalf("unexpected pipeline request: %+v", runner.got)
	}
	if body["success"] != true || body["url"] != "https://blog.vercel.app" || body["project_id"] != id.String() {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["component_count"] != float64(1) || body["message"] != "Site generated and deployed successfully" {
		t.Fatalf("unexpected body: %v", body)
	}
	ntl := body["ntl"].(map[string]any)
	if diff := cmp.Diff([]any{"AgentInfo"}, ntl["components"]); diff != "" {
		t.Fatalf("ntl mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateSite_ManualAgent(t *testing.T) {
	runner := &fakeRunner{}
	srv := api.New(api.WithRunner(runner))

	code, _ := do(t, srv, http.MethodPost, "/api/generate-site",
		`{"prompt":"p","use_neuralseek":false,"agent_json":{"name":"Poet"}}`)
	if code != http.StatusOK {
		t.Fatalf("status %d", code)
	}
	if runner.got.UseNeuralSeek || string(runner.got.AgentJSON) != `{"name":"Poet"}` {
		t.Fatalf("unexpected pipeline request: %+v", runner.got)
	}
}

func TestGenerateSite_BadRequests(t *testing.T) {
	srv := api.New(api.WithRunner(&fakeRunner{}))
	cases := map[string]struct {
		body string
		want string
	}{
		"missing prompt": {`{}`, "Missing required field: prompt"},
		"blank prompt":   {`{"prompt":"   "}`, "Missing required field: prompt"},
		"invalid json":   {`{"prompt":`, "Invalid JSON body"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			code, body := do(t, srv, http.MethodPost, "/api/generate-site", tc.body)
			if code != http.StatusBadRequest || body["error"] != tc.want {
				t.Fatalf("got %d %v", code, body)
			}
		})
	}
}

func TestGenerateSite_StepFailure(t *testing.T) {
	agent := &agentapi.Agent{Name: "Blog"}
	runner := &fakeRunner{err: &pipeline.StepError{
		Step:               pipeline.StepDeploy,
		Err:                errors.New("vercel exited with status 1"),
		Agent:              agent,
		NeuralSeekResponse: json.RawMessage(`{"agent_name":"Blog"}`),
	}}
	srv := api.New(api.WithRunner(runner))

	code, body := do(t, srv, http.MethodPost, "/api/generate-site", `{"prompt":"p"}`)
	if code != http.StatusInternalServerError {
		t.Fatalf("status %d", code)
	}
	want := map[string]any{
		"error":                "Internal server error",
		"step":                 "Vercel deployment",
		"message":              "vercel exited with status 1",
		"agent":                map[string]any{"name": "Blog", "ntl": "", "capabilities": nil},
		"neural_seek_response": map[string]any{"agent_name": "Blog"},
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Fatalf("failure body mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateSite_NotConfigured(t *testing.T) {
	code, _ := do(t, api.New(), http.MethodPost, "/api/generate-site", `{"prompt":"p"}`)
	if code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", code)
	}
}

func TestProjects(t *testing.T) {
	store := projects.NewMemoryStore()
	ctx := context.Background()
	first := &projects.Project{Prompt: "first", URL: "https://a.vercel.app"}
	second := &projects.Project{Prompt: "second", URL: "https://b.vercel.app"}
	for _, p := range []*projects.Project{first, second} {
		if err := store.Create(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	srv := api.New(api.WithStore(store))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects?limit=1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status %d", rec.Code)
	}
	var list []projects.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(list))
	}

	code, body := do(t, srv, http.MethodGet, "/api/projects/"+first.ID.String(), "")
	if code != http.StatusOK || body["prompt"] != "first" {
		t.Fatalf("get: %d %v", code, body)
	}

	cases := map[string]int{
		"/api/projects/" + uuid.NewString(): http.StatusNotFound,
		"/api/projects/not-a-uuid":          http.StatusBadRequest,
		"/api/projects?limit=abc":           http.StatusBadRequest,
		"/api/projects?limit=-2":            http.StatusBadRequest,
	}
	for path, want := range cases {
		if code, _ := do(t, srv, http.MethodGet, path, ""); code != want {
			t.Fatalf("%s: want %d, got %d", path, want, code)
		}
	}
}

const blogDoc = `{
  "openapi": "3.0.0",
  "paths": {
    "/maistro": {
      "post": {
        "operationId": "runBlog",
        "requestBody": {"content": {"application/json": {"schema": {
          "type": "object",
          "properties": {
            "agent": {"type": "string"},
            "params": {
              "type": "object",
              "properties": {
                "topic": {"type": "string", "maxLength": 500},
                "tone": {"type": "string", "enum": ["friendly", "formal"]}
              },
              "required": ["topic"]
            }
          }
        }}}}
      }
    }
  }
}`

func TestExtractFields(t *testing.T) {
	srv := api.New()

	code, body := do(t, srv, http.MethodPost, "/api/fields", `{"document":`+blogDoc+`}`)
	if code != http.StatusOK {
		t.Fatalf("status %d: %v", code, body)
	}
	if body["path"] != "/maistro" || body["operation_id"] != "runBlog" {
		t.Fatalf("unexpected location: %v", body)
	}
	list := body["fields"].([]any)
	if len(list) != 2 {
		t.Fatalf("expected 2 fields, got %v", list)
	}
	topic := list[0].(map[string]any)
	if topic["path"] != "params.topic" || topic["kind"] != "textarea" || topic["required"] != true {
		t.Fatalf("unexpected topic field: %v", topic)
	}

	encoded, _ := json.Marshal(blogDoc)
	code, body = do(t, srv, http.MethodPost, "/api/fields", `{"document":`+string(encoded)+`}`)
	if code != http.StatusOK || len(body["fields"].([]any)) != 2 {
		t.Fatalf("string document: %d %v", code, body)
	}
}

func TestExtractFields_Errors(t *testing.T) {
	srv := api.New()
	cases := map[string]struct {
		body string
		want int
	}{
		"missing document": {`{}`, http.StatusBadRequest},
		"array document":   {`{"document":[1]}`, http.StatusBadRequest},
		"bad depth":        {`{"document":{"paths":{}},"max_depth":-3}`, http.StatusBadRequest},
		"no post":          {`{"document":{"openapi":"3.0.0","paths":{"/x":{"get":{}}}}}`, http.StatusUnprocessableEntity},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if code, body := do(t, srv, http.MethodPost, "/api/fields", tc.body); code != tc.want {
				t.Fatalf("want %d, got %d %v", tc.want, code, body)
			}
		})
	}
}

func TestNestSubmission(t *testing.T) {
	srv := api.New()

	code, body := do(t, srv, http.MethodPost, "/api/submissions/nest",
		`{"values":{"agent":"blog","params.topic":"go","options.timeout":30}}`)
	if code != http.StatusOK {
		t.Fatalf("status %d: %v", code, body)
	}
	want := map[string]any{
		"agent":   "blog",
		"params":  map[string]any{"topic": "go"},
		"options": map[string]any{"timeout": float64(30)},
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Fatalf("nested mismatch (-want +got):\n%s", diff)
	}

	cases := map[string]int{
		`{"values":{"a":{"b":{"c":1}},"a.b":"x"}}`: http.StatusUnprocessableEntity,
		`{"values":{"a..b":1}}`:                    http.StatusUnprocessableEntity,
		`{"values":{"a":"x","a.b":1}}`:             http.StatusUnprocessableEntity,
		`{}`:                                       http.StatusBadRequest,
	}
	for payload, want := range cases {
		if code, _ := do(t, srv, http.MethodPost, "/api/submissions/nest", payload); code != want {
			t.Fatalf("%s: want %d, got %d", payload, want, code)
		}
	}
}

func TestInvokeAgent(t *testing.T) {
	inv := &fakeInvoker{out: json.RawMessage(`{"answer":"42"}`)}
	srv := api.New(api.WithInvoker(inv))

	code, body := do(t, srv, http.MethodPost, "/api/agents/blog-writer/invoke",
		`{"values":{"params.topic":"go","options.streaming":false}}`)
	if code != http.StatusOK || body["answer"] != "42" {
		t.Fatalf("got %d %v", code, body)
	}
	if inv.agent != "blog-writer" {
		t.Fatalf("agent %q", inv.agent)
	}
	want := map[string]any{
		"params":  map[string]any{"topic": "go"},
		"options": map[string]any{"streaming": false},
	}
	if diff := cmp.Diff(want, inv.values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestInvokeAgent_ErrorStatus(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"timeout":        {agentapi.ErrTimeout, http.StatusGatewayTimeout},
		"not configured": {agentapi.ErrNotConfigured, http.StatusServiceUnavailable},
		"unauthorized":   {&agentapi.StatusError{Status: 401}, http.StatusBadGateway},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := api.New(api.WithInvoker(&fakeInvoker{err: tc.err}))
			if code, _ := do(t, srv, http.MethodPost, "/api/agents/x/invoke", `{"values":{}}`); code != tc.want {
				t.Fatalf("want %d, got %d", tc.want, code)
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := pipeline.NewMetrics(reg); err != nil {
		t.Fatalf("metrics: %v", err)
	}
	srv := api.New(api.WithGatherer(reg))

	code, body := do(t, srv, http.MethodGet, "/healthz", "")
	if code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz: %d %v", code, body)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status %d", rec.Code)
	}

	if code, _ := do(t, srv, http.MethodGet, "/nope", ""); code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if code, _ := do(t, srv, http.MethodGet, "/api/generate-site", ""); code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", code)
	}
}
