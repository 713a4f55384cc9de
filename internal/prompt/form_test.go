package prompt

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-agentsite/pkg/fields"
	"github.com/goliatone/go-agentsite/pkg/submission"
)

type stubDriver struct {
	inputs    []string
	textAreas []string
	confirms  []bool
	selects   []int
	info      []string
	messages  []string
	selectOpt [][]string
	err       error
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	if s.err != nil {
		return "", s.err
	}
	if len(s.inputs) == 0 {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[0]
	s.inputs = s.inputs[1:]
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.messages = append(s.messages, cfg.Message)
	if len(s.confirms) == 0 {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirms[0]
	s.confirms = s.confirms[1:]
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.messages = append(s.messages, cfg.Message)
	s.selectOpt = append(s.selectOpt, cfg.Options)
	if len(s.selects) == 0 {
		return -1, errors.New("no select scripted")
	}
	val := s.selects[0]
	s.selects = s.selects[1:]
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.messages = append(s.messages, cfg.Message)
	if len(s.textAreas) == 0 {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[0]
	s.textAreas = s.textAreas[1:]
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.info = append(s.info, msg)
	return nil
}

func blogDescriptors() []fields.Descriptor {
	return []fields.Descriptor{
		{Name: "topic", Path: "params.topic", Label: "Topic", Kind: fields.KindTextarea, Required: true},
		{Name: "tone", Path: "params.tone", Label: "Tone", Kind: fields.KindDropdown, Options: []fields.Choice{
			{Value: "friendly", Label: "friendly"},
			{Value: "formal", Label: "formal"},
		}},
		{Name: "seo", Path: "params.seo", Label: "Seo", Kind: fields.KindCheckbox},
		{Name: "timeout", Path: "options.timeout", Label: "Timeout", Kind: fields.KindNumber, Depth: 1},
		{Name: "tags", Path: "options.tags", Label: "Tags", Kind: fields.KindText, Multiple: true, Depth: 1},
	}
}

func TestFill_CollectsFlatValues(t *testing.T) {
	driver := &stubDriver{
		textAreas: []string{"Go generics"},
		selects:   []int{2},
		confirms:  []bool{true},
		inputs:    []string{"30", ""},
	}
	form, err := NewForm(driver)
	if err != nil {
		t.Fatalf("new form: %v", err)
	}

	got, err := form.Fill(context.Background(), blogDescriptors())
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	want := map[string]any{
		"params.topic":    "Go generics",
		"params.tone":     "formal",
		"params.seo":      true,
		"options.timeout": "30",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"Options"}, driver.info); diff != "" {
		t.Fatalf("group headers mismatch (-want +got):\n%s", diff)
	}
	if driver.messages[0] != "Topic *" || driver.messages[3] != "  Timeout" {
		t.Fatalf("unexpected prompt messages: %q", driver.messages)
	}
	if diff := cmp.Diff([]string{noneOption, "friendly", "formal"}, driver.selectOpt[0]); diff != "" {
		t.Fatalf("select options mismatch (-want +got):\n%s", diff)
	}

	nested, err := submission.Build(got, blogDescriptors())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	wantNested := map[string]any{
		"params":  map[string]any{"topic": "Go generics", "tone": "formal", "seo": true},
		"options": map[string]any{"timeout": int64(30)},
	}
	if diff := cmp.Diff(wantNested, nested); diff != "" {
		t.Fatalf("nested mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_NoneOptionSkipsValue(t *testing.T) {
	driver := &stubDriver{selects: []int{0}}
	form, _ := NewForm(driver)

	got, err := form.Fill(context.Background(), blogDescriptors()[1:2])
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no value, got %v", got)
	}
}

func TestFill_RequiredDropdownHasNoNone(t *testing.T) {
	d := blogDescriptors()[1]
	d.Required = true
	driver := &stubDriver{selects: []int{0}}
	form, _ := NewForm(driver)

	got, err := form.Fill(context.Background(), []fields.Descriptor{d})
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if got["params.tone"] != "friendly" {
		t.Fatalf("expected first choice, got %v", got)
	}
}

func TestFill_PropagatesAbort(t *testing.T) {
	driver := &stubDriver{err: ErrAborted}
	form, _ := NewForm(driver)

	_, err := form.Fill(context.Background(), []fields.Descriptor{{Name: "x", Path: "x", Label: "X", Kind: fields.KindText}})
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestNewForm_RequiresDriver(t *testing.T) {
	if _, err := NewForm(nil); !errors.Is(err, ErrNoDriver) {
		t.Fatalf("expected ErrNoDriver, got %v", err)
	}
}

func TestInputValidator(t *testing.T) {
	number := inputValidator(fields.Descriptor{Kind: fields.KindNumber})
	if number("") != nil || number("2.5") != nil || number("abc") == nil {
		t.Fatalf("optional number validator misbehaves")
	}
	for _, s := range []string{"NaN", "inf", "-Inf", "1e999"} {
		if number(s) == nil {
			t.Fatalf("expected %q to be rejected", s)
		}
	}
	required := inputValidator(fields.Descriptor{Kind: fields.KindNumber, Required: true})
	if required("  ") == nil {
		t.Fatalf("required number should reject blanks")
	}
	if inputValidator(fields.Descriptor{Kind: fields.KindText}) != nil {
		t.Fatalf("optional text needs no validator")
	}
	if err := requiredValidator(fields.Descriptor{Required: true})(""); err == nil {
		t.Fatalf("required validator should reject empty")
	}
}

func TestTranslateSurveyErr(t *testing.T) {
	other := errors.New("eof")
	if translateSurveyErr(other) != other {
		t.Fatalf("unexpected translation")
	}
}
