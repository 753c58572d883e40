package query

import "strings"

// levelGroups maps coarse level labels to the stored labels they stand for
var levelGroups = map[string][]string{
	"Primary":        {"Primary 1", "Primary 2", "Primary 3", "Primary 4", "Primary 5", "Primary 6"},
	"Secondary":      {"Secondary 1", "Secondary 2", "Secondary 3", "Secondary 4"},
	"JC":             {"JC 1", "JC 2"},
	"Junior College": {"JC 1", "JC 2"},
}

// ExpandLevelNames replaces coarse level labels with their stored labels.
// Other names pass through unchanged, blanks are dropped and the result holds
// each name once in first-seen order.
func ExpandLevelNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	add := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if concrete, ok := levelGroups[name]; ok {
			for _, c := range concrete {
				add(c)
			}
			continue
		}
		add(name)
	}
	return out
}
