package classification

import (
	"fmt"
	"strings"
)

// routeCategories maps upstream router routes onto destinations.
var routeCategories = map[string]Category{
	"triage":         Briefs,
	"new-job":        Briefs,
	"work-to-client": Round,
	"feedback":       Feedback,
	"file":           Other,
	"update":         Other,
}

// Override resolves a caller-supplied folder type or route. folderType takes
// precedence. Unknown values are ignored and ok is false.
func Override(route, folderType string) (Result, bool) {
	if c, ok := ParseCategory(folderType); ok {
		return overrideResult(c, "folder type "+strings.TrimSpace(folderType)), true
	}
	if c, ok := routeCategories[strings.ToLower(strings.TrimSpace(route))]; ok {
		return overrideResult(c, "route "+strings.TrimSpace(route)), true
	}
	return Result{}, false
}

func overrideResult(c Category, by string) Result {
	return Result{
		Category:   c,
		Confidence: High,
		Reasoning:  fmt.Sprintf("set by caller %s", by),
		Source:     SourceRules,
	}
}
