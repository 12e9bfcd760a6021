package render

import (
	"regexp"
	"sort"
)

var (
	outputRe = regexp.MustCompile(`\{\{-?\s*([A-Za-z_][A-Za-z0-9_]*)`)
	condRe   = regexp.MustCompile(`\{%-?\s*(?:if|elif)\s+(?:not\s+)?([A-Za-z_][A-Za-z0-9_]*)`)
	forRe    = regexp.MustCompile(`\{%-?\s*for\s+([A-Za-z_][A-Za-z0-9_]*)(?:\s*,\s*([A-Za-z_][A-Za-z0-9_]*))?\s+in\s+([A-Za-z_][A-Za-z0-9_]*)`)
)

var builtins = map[string]bool{"forloop": true, "true": true, "false": true, "none": true, "None": true}

// Variables lists the top-level names a template reads, sorted.
// Loop variables bound by {% for %} are excluded. Names used only inside
// filter arguments or nested expressions are not detected.
func Variables(text string) []string {
	bound := map[string]bool{}
	found := map[string]bool{}

	for _, m := range forRe.FindAllStringSubmatch(text, -1) {
		bound[m[1]] = true
		if m[2] != "" {
			bound[m[2]] = true
		}
		found[m[3]] = true
	}
	for _, re := range []*regexp.Regexp{outputRe, condRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			found[m[1]] = true
		}
	}

	names := make([]string, 0, len(found))
	for name := range found {
		if bound[name] || builtins[name] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
