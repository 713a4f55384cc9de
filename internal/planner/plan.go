package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-agentsite/pkg/fields"
	"github.com/goliatone/go-agentsite/pkg/openapi"
	"github.com/goliatone/go-agentsite/pkg/schema"
)

// Source records where a plan came from.
type Source string

const (
	SourceOpenAPI Source = "openapi"
	SourceJSON    Source = "json"
	SourceLLM     Source = "llm"
)

// StringList decodes from a JSON array of strings or from a single string.
// Models are inconsistent about which they return.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	v, err := schema.Parse(data)
	if err != nil {
		return err
	}
	out := StringList{}
	switch v.Kind() {
	case schema.KindString:
		if s, _ := v.AsString(); strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	case schema.KindArray:
		items, _ := v.AsArray()
		for _, item := range items {
			switch item.Kind() {
			case schema.KindString, schema.KindNumber, schema.KindBool:
				out = append(out, item.Text())
			case schema.KindObject:
				// {"name": "ChatInterface", ...} entries keep their name.
				if name := item.StringAt("name"); name != "" {
					out = append(out, name)
				}
			}
		}
	case schema.KindNull:
	default:
		return fmt.Errorf("planner: expected string or list, got %s", v.Kind())
	}
	*l = out
	return nil
}

// Plan is the UI plan a site is generated from.
type Plan struct {
	Components   StringList          `json:"components"`
	Layout       StringList          `json:"layout"`
	Actions      StringList          `json:"actions"`
	UserInputs   StringList          `json:"user_inputs"`
	Theme        string              `json:"theme"`
	APIEndpoints StringList          `json:"api_endpoints"`
	Fields       []fields.Descriptor `json:"fields,omitempty"`
	// Operation is the agent operation the form posts to, when known.
	Operation string `json:"operation,omitempty"`
	Source    Source `json:"source,omitempty"`
}

// normalize replaces nil lists so the plan always serialises as arrays.
func (p Plan) normalize() Plan {
	for _, list := range []*StringList{&p.Components, &p.Layout, &p.Actions, &p.UserInputs, &p.APIEndpoints} {
		if *list == nil {
			*list = StringList{}
		}
	}
	return p
}

// LayoutText joins layout instructions for templates and prompts.
func (p Plan) LayoutText() string {
	return strings.Join(p.Layout, "; ")
}

// FromJSON decodes a plan. Plans without components are rejected with
// ErrNoPlan.
func FromJSON(data []byte) (Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrNoPlan, err)
	}
	if len(p.Components) == 0 {
		return Plan{}, fmt.Errorf("%w: plan lists no components", ErrNoPlan)
	}
	if p.Source == "" {
		p.Source = SourceJSON
	}
	return p.normalize(), nil
}

// FromOpenAPI derives a plan straight from an agent's OpenAPI document: an
// info panel plus a form built from the request schema of the first POST
// operation.
func FromOpenAPI(doc schema.Value, options ...fields.Option) (Plan, error) {
	req, descriptors, err := openapi.ExtractFields(doc, options...)
	if err != nil {
		return Plan{}, err
	}

	inputs := make(StringList, 0, len(descriptors))
	for _, d := range descriptors {
		inputs = append(inputs, d.Path)
	}
	p := Plan{
		Components:   StringList{"AgentInfo", "AgentForm"},
		Layout:       StringList{"header with agent details", "single column form"},
		Actions:      StringList{"POST " + req.Path},
		UserInputs:   inputs,
		APIEndpoints: StringList{req.Path},
		Fields:       descriptors,
		Operation:    req.OperationID,
		Source:       SourceOpenAPI,
	}
	return p.normalize(), nil
}

// IsOpenAPIDocument reports whether v looks like an OpenAPI or Swagger
// document.
func IsOpenAPIDocument(v schema.Value) bool {
	if _, ok := v.Get("paths"); !ok {
		return false
	}
	_, isOpenAPI := v.Get("openapi")
	_, isSwagger := v.Get("swagger")
	return isOpenAPI || isSwagger
}
