package fields

import (
	"strings"

	"github.com/goliatone/go-agentsite/pkg/schema"
)

// heuristicKind matches keywords in the field name and description. These are
// conveniences; a miss only yields a plainer control.
func heuristicKind(name string, prop schema.Value) (Kind, bool) {
	lowerName := strings.ToLower(name)
	desc := strings.ToLower(prop.StringAt("description"))

	switch {
	case strings.Contains(desc, "upload") || strings.Contains(desc, "file"):
		return KindFile, true
	case strings.Contains(lowerName, "keywords"):
		return KindText, true
	case strings.Contains(lowerName, "tone"):
		return KindDropdown, true
	case strings.Contains(lowerName, "length") || strings.Contains(lowerName, "count"):
		return KindNumber, true
	case strings.Contains(lowerName, "query") || strings.Contains(desc, "question") || strings.Contains(desc, "inquiry"):
		return KindTextarea, true
	}
	return "", false
}
