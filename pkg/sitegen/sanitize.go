package sitegen

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-agentsite/pkg/fields"
)

// textSanitizer strips markup from agent supplied text before it reaches the
// templates. Templates escape on output, so entities produced by bluemonday
// are decoded again to avoid double escaping.
type textSanitizer struct {
	policy *bluemonday.Policy
}

func newTextSanitizer() textSanitizer {
	return textSanitizer{policy: bluemonday.StrictPolicy()}
}

func (s textSanitizer) text(in string) string {
	if in == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}

func (s textSanitizer) list(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		if clean := s.text(item); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func (s textSanitizer) descriptors(in []fields.Descriptor) []fields.Descriptor {
	out := make([]fields.Descriptor, len(in))
	for i, d := range in {
		d.Label = s.text(d.Label)
		d.Hint = s.text(d.Hint)
		d.Placeholder = s.text(d.Placeholder)
		if len(d.Options) > 0 {
			options := make([]fields.Choice, len(d.Options))
			for j, o := range d.Options {
				options[j] = fields.Choice{Value: o.Value, Label: s.text(o.Label)}
			}
			d.Options = options
		}
		out[i] = d
	}
	return out
}
