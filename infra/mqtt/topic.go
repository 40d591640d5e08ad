package mqtt

import "strings"

var topicReplacer = strings.NewReplacer("+", "_", "#", "_", "/", "_", " ", "-")

// Topic joins the prefix and the given levels. Levels are lowercased and
// stripped of wildcard and separator characters so plan names can be used
// verbatim.
func Topic(prefix string, levels ...string) string {
	parts := make([]string, 0, len(levels)+1)
	if p := strings.Trim(prefix, "/"); p != "" {
		parts = append(parts, p)
	}
	for _, l := range levels {
		l = topicReplacer.Replace(strings.ToLower(strings.TrimSpace(l)))
		if l == "" {
			l = "_"
		}
		parts = append(parts, l)
	}
	return strings.Join(parts, "/")
}
