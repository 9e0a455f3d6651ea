package include

import (
	"regexp"
	"strings"
)

// includeStmtPattern matches a normalized "INCLUDE <name>." line. Dynamic and
// generic include names keep their angle-bracket or quote decoration in the
// capture; stripDecoration removes it afterwards.
var includeStmtPattern = regexp.MustCompile(`^INCLUDE\s+([A-Z0-9_<>']+)\s*\.`)

var decorationReplacer = strings.NewReplacer("<", "", ">", "", "'", "")

// ParseIncludes extracts the direct include names referenced by a unit's
// source text, in order of first appearance, deduplicated. Parsing is
// line-oriented: multi-line statements and macro-generated include names are
// deliberately not handled.
func ParseIncludes(source string) []string {
	var names []string
	seen := make(map[string]struct{})

	for _, line := range strings.Split(source, "\n") {
		clean := strings.ToUpper(strings.Join(strings.Fields(line), " "))
		if !strings.HasPrefix(clean, "INCLUDE ") || !strings.Contains(clean, ".") {
			continue
		}
		m := includeStmtPattern.FindStringSubmatch(clean)
		if m == nil {
			continue
		}
		name := decorationReplacer.Replace(m[1])
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
