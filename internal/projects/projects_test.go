package projects_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"

	"github.com/goliatone/go-agentsite/internal/projects"
)

var projectColumns = []string{
	"id", "prompt", "url", "ntl", "agent_name", "agent_capabilities",
	"neural_seek_response", "generation_time", "component_count", "created_at",
}

func TestRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock: %v", err)
	}
	defer mock.Close()

	p := &projects.Project{
		Prompt:            "blog agent",
		URL:               "https://blog.vercel.app",
		NTL:               json.RawMessage(`{"components":["AgentInfo"]}`),
		AgentName:         "BlogCraft",
		AgentCapabilities: []string{"write"},
		GenerationTime:    1200,
		ComponentCount:    1,
	}
	mock.ExpectExec(`INSERT INTO projects \(id,prompt,url,ntl,agent_name,agent_capabilities,neural_seek_response,generation_time,component_count,created_at\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6,\$7,\$8,\$9,\$10\)`).
		WithArgs(
			pgxmock.AnyArg(),
			"blog agent",
			"https://blog.vercel.app",
			`{"components":["AgentInfo"]}`,
			"BlogCraft",
			[]string{"write"},
			nil,
			int64(1200),
			1,
			pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := projects.NewRepository(mock).Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.ID == uuid.Nil || p.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and timestamp, got %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepository_ListNewestFirst(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := mock.NewRows(projectColumns).
		AddRow(id, "p", "https://x.vercel.app", []byte(`{"a":1}`), "X", []string{"a", "b"}, []byte(`{"raw":true}`), int64(5), 2, created)
	mock.ExpectQuery(`SELECT (.+) FROM projects ORDER BY created_at DESC LIMIT 10`).
		WillReturnRows(rows)

	got, err := projects.NewRepository(mock).List(context.Background(), 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []projects.Project{{
		ID:                 id,
		Prompt:             "p",
		URL:                "https://x.vercel.app",
		NTL:                json.RawMessage(`{"a":1}`),
		AgentName:          "X",
		AgentCapabilities:  []string{"a", "b"},
		NeuralSeekResponse: json.RawMessage(`{"raw":true}`),
		GenerationTime:     5,
		ComponentCount:     2,
		CreatedAt:          created,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("projects mismatch (-want +got):\n%s", diff)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRepository_ListDefaultLimit(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`LIMIT 50`).WillReturnRows(mock.NewRows(projectColumns))
	got, err := projects.NewRepository(mock).List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestRepository_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("new mock: %v", err)
	}
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery(`SELECT (.+) FROM projects WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(mock.NewRows(projectColumns))

	_, err = projects.NewRepository(mock).Get(context.Background(), id)
	if !errors.Is(err, projects.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	mock.ExpectQuery(`SELECT (.+) FROM projects WHERE id = \$1`).
		WithArgs(id).
		WillReturnError(errors.New("connection reset"))
	if _, err := projects.NewRepository(mock).Get(context.Background(), id); err == nil || errors.Is(err, projects.ErrNotFound) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	store := projects.NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"old", "mid", "new"} {
		p := &projects.Project{Prompt: name, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.Create(ctx, p); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Prompt != "new" || got[1].Prompt != "mid" {
		t.Fatalf("expected newest first, got %+v", got)
	}
	if got[0].AgentCapabilities == nil {
		t.Fatalf("expected capabilities to default to an empty list")
	}

	if _, err := store.Get(ctx, uuid.New()); !errors.Is(err, projects.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	found, err := store.Get(ctx, got[0].ID)
	if err != nil || found.Prompt != "new" {
		t.Fatalf("expected to find project, got %+v (%v)", found, err)
	}
}
