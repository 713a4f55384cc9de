package fields

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-agentsite/pkg/schema"
)

// ShortDescriptionLimit is the rune count under which a description doubles as
// the label.
const ShortDescriptionLimit = 60

// DefaultLabeler splits on underscores, hyphens and camelCase boundaries and
// capitalises each word: "returnVariables" and "return_variables" both become
// "Return Variables".
func DefaultLabeler(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	for i, word := range words {
		words[i] = upperFirst(splitCamel(word))
	}
	return strings.Join(words, " ")
}

func labelFor(name string, prop schema.Value, labeler func(string) string) string {
	if title := strings.TrimSpace(prop.StringAt("title")); title != "" {
		return title
	}
	desc := strings.TrimSpace(prop.StringAt("description"))
	if desc != "" && utf8.RuneCountInString(desc) < ShortDescriptionLimit {
		return upperFirst(desc)
	}
	return labeler(name)
}

func splitCamel(input string) string {
	runes := []rune(input)
	var out strings.Builder
	for i, r := range runes {
		if i > 0 && isBoundary(runes, i) {
			out.WriteRune(' ')
		}
		out.WriteRune(r)
	}
	return out.String()
}

// isBoundary matches aB and the last capital of an acronym run (HTTPServer).
func isBoundary(runes []rune, index int) bool {
	prev, current := runes[index-1], runes[index]
	if !unicode.IsUpper(current) {
		return false
	}
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	if unicode.IsUpper(prev) && index+1 < len(runes) && unicode.IsLower(runes[index+1]) {
		return true
	}
	return false
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
