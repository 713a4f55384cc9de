package sitegen

import (
	"strings"
	"unicode"

	"github.com/gosimple/slug"
)

const defaultProjectName = "ai-agent-site"

// ComponentName turns a plan entry ("chat interface", "chat-interface",
// "ChatInterface") into a PascalCase identifier usable as a file and JSX
// element name. It returns "" when nothing usable remains.
func ComponentName(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if isIdentifier(raw) && unicode.IsUpper(rune(raw[0])) {
		return raw
	}

	var b strings.Builder
	for _, part := range strings.Split(slug.Make(splitCamel(raw)), "-") {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	name := b.String()
	if name == "" {
		return ""
	}
	if unicode.IsDigit(rune(name[0])) {
		name = "C" + name
	}
	return name
}

// ProjectName derives the npm package and directory name from the agent.
func ProjectName(agentName string) string {
	if s := slug.Make(agentName); s != "" {
		return s
	}
	return defaultProjectName
}

func isIdentifier(s string) bool {
	for i, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
		if !(unicode.IsLetter(r) || r == '_' || (i > 0 && unicode.IsDigit(r))) {
			return false
		}
	}
	return s != ""
}

// splitCamel keeps camel humps apart so slugging "dataViz" yields "data-viz".
func splitCamel(s string) string {
	var b strings.Builder
	var prev rune
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) && unicode.IsLower(prev) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}
	return b.String()
}
