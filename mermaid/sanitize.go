package mermaid

import (
	"regexp"
	"strings"
	"unicode"
)

// Label text inside axis-label lists and pie slices breaks the diagram
// grammar when it carries punctuation, which user- and model-generated
// labels routinely do. Those two constructs get their labels stripped to
// an allow-list of letters, digits, and whitespace before layout.
var (
	xAxisLine = regexp.MustCompile(`^(\s*x-axis\s*\[)(.*)(\].*)$`)
	pieSlice  = regexp.MustCompile(`^(\s*)"(.*)"(\s*:\s*[0-9.]+\s*)$`)
)

// Sanitize applies the label transform line by line. It is purely
// textual and deterministic: Sanitize(Sanitize(s)) == Sanitize(s), which
// keeps source-keyed artifact caching correct.
func Sanitize(source string) string {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		if m := xAxisLine.FindStringSubmatch(line); m != nil {
			labels := strings.Split(m[2], ",")
			for j, l := range labels {
				labels[j] = cleanLabel(l)
			}
			lines[i] = m[1] + strings.Join(labels, ", ") + m[3]
			continue
		}
		if m := pieSlice.FindStringSubmatch(line); m != nil {
			lines[i] = m[1] + `"` + cleanLabel(m[2]) + `"` + m[3]
		}
	}
	return strings.Join(lines, "\n")
}

func cleanLabel(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
