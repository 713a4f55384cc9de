package prompt

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-agentsite/pkg/fields"
)

const noneOption = "(none)"

// Form walks field descriptors and asks for each value.
type Form struct {
	driver Driver
}

// NewForm binds a form to driver.
func NewForm(driver Driver) (*Form, error) {
	if driver == nil {
		return nil, ErrNoDriver
	}
	return &Form{driver: driver}, nil
}

// Fill prompts for every descriptor and returns the answers keyed by path,
// the same flat shape a browser form posts. Dropdowns answer with the choice
// label and checkboxes with a bool; empty optional answers are left out.
func (f *Form) Fill(ctx context.Context, descriptors []fields.Descriptor) (map[string]any, error) {
	values := make(map[string]any, len(descriptors))
	group := ""
	for _, d := range descriptors {
		if parent := parentPath(d); d.Nested() && parent != group {
			indent := strings.Repeat("  ", d.Depth-1)
			if err := f.driver.Info(ctx, indent+fields.DefaultLabeler(lastSegment(parent))); err != nil {
				return nil, err
			}
			group = parent
		} else if !d.Nested() {
			group = ""
		}

		value, keep, err := f.ask(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("prompt: %s: %w", pathOf(d), err)
		}
		if keep {
			values[pathOf(d)] = value
		}
	}
	return values, nil
}

func (f *Form) ask(ctx context.Context, d fields.Descriptor) (any, bool, error) {
	message := strings.Repeat("  ", d.Depth) + d.Label
	if d.Required {
		message += " *"
	}
	help := d.Hint

	switch d.Kind {
	case fields.KindCheckbox:
		ok, err := f.driver.Confirm(ctx, ConfirmConfig{Message: message, Help: help})
		return ok, err == nil, err

	case fields.KindDropdown:
		options := make([]string, 0, len(d.Options)+1)
		if !d.Required {
			options = append(options, noneOption)
		}
		for _, c := range d.Options {
			options = append(options, c.Label)
		}
		idx, err := f.driver.Select(ctx, SelectConfig{Message: message, Options: options, Help: help})
		if err != nil {
			return nil, false, err
		}
		if idx < 0 || idx >= len(options) {
			return nil, false, errors.New("selection out of range")
		}
		if options[idx] == noneOption && !d.Required {
			return nil, false, nil
		}
		return options[idx], true, nil

	case fields.KindTextarea:
		text, err := f.driver.TextArea(ctx, TextAreaConfig{
			Message:   message,
			Help:      help,
			Default:   d.Placeholder,
			Validator: requiredValidator(d),
		})
		if err != nil {
			return nil, false, err
		}
		return text, strings.TrimSpace(text) != "", nil

	default:
		if d.Kind == fields.KindFile && help == "" {
			help = "Path to a local file"
		}
		if d.Multiple && help == "" {
			help = "Comma-separated values"
		}
		text, err := f.driver.Input(ctx, InputConfig{
			Message:   message,
			Help:      help,
			Default:   d.Placeholder,
			Validator: inputValidator(d),
		})
		if err != nil {
			return nil, false, err
		}
		return text, strings.TrimSpace(text) != "", nil
	}
}

func requiredValidator(d fields.Descriptor) func(string) error {
	if !d.Required {
		return nil
	}
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New("value is required")
		}
		return nil
	}
}

func inputValidator(d fields.Descriptor) func(string) error {
	required := requiredValidator(d)
	if d.Kind != fields.KindNumber {
		return required
	}
	return func(s string) error {
		if required != nil {
			if err := required(s); err != nil {
				return err
			}
		}
		if s = strings.TrimSpace(s); s == "" {
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return fmt.Errorf("%q is not a number", s)
		}
		return nil
	}
}

func pathOf(d fields.Descriptor) string {
	if d.Path != "" {
		return d.Path
	}
	return d.Name
}

func parentPath(d fields.Descriptor) string {
	p := pathOf(d)
	if i := strings.LastIndex(p, "."); i >= 0 {
		return p[:i]
	}
	return ""
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}
