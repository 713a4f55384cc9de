// Package testsupport holds fixture and golden file helpers shared by the
// package tests. Set UPDATE_GOLDENS=1 to rewrite goldens.
package testsupport

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-agentsite/pkg/fields"
	pkgopenapi "github.com/goliatone/go-agentsite/pkg/openapi"
	"github.com/goliatone/go-agentsite/pkg/schema"
)

// LoadDocument reads an OpenAPI fixture as a file sourced Document.
func LoadDocument(t *testing.T, path string) pkgopenapi.Document {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	doc, err := pkgopenapi.NewDocument(pkgopenapi.SourceFromFile(path), data)
	if err != nil {
		t.Fatalf("new document %s: %v", path, err)
	}
	return doc
}

// MustLoadValue decodes a JSON or YAML fixture into a schema.Value.
func MustLoadValue(t *testing.T, path string) schema.Value {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	v, err := schema.Parse(data)
	if err != nil {
		t.Fatalf("parse fixture %s: %v", path, err)
	}
	return v
}

// MustLoadDescriptors loads a golden list of field descriptors.
func MustLoadDescriptors(t *testing.T, path string) []fields.Descriptor {
	t.Helper()

	var out []fields.Descriptor
	if err := json.Unmarshal(MustReadGolden(t, path), &out); err != nil {
		t.Fatalf("unmarshal golden %s: %v", path, err)
	}
	return out
}

// NormalizeDescriptors round-trips descriptors through JSON so choice
// values carry the same dynamic types as a decoded golden.
func NormalizeDescriptors(t *testing.T, in []fields.Descriptor) []fields.Descriptor {
	t.Helper()

	payload, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal descriptors: %v", err)
	}
	var out []fields.Descriptor
	if err := json.Unmarshal(payload, &out); err != nil {
		t.Fatalf("unmarshal descriptors: %v", err)
	}
	return out
}

// WriteGolden stores value as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	WriteMaybeGolden(t, path, payload)
}

// WriteMaybeGolden stores data when UPDATE_GOLDENS is set and reports
// whether it did.
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareGolden returns a diff when the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// CaptureTemplateOutput runs render with a buffer and returns both the
// returned string and what was written.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}
	return out, buf.String()
}
