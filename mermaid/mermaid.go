// Package mermaid materializes mermaid diagram sources into terminal
// artifacts. Layout is deterministic: the same source always yields the
// same artifact, so the content renderer can cache results keyed by
// source text and splice them back verbatim on every partial update.
package mermaid

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/zetacube/datachat"
)

// Interface compliance check.
var _ datachat.DiagramRenderer = (*Renderer)(nil)

// Renderer lays out mermaid graph, pie, and xychart sources as boxed
// terminal diagrams. Unknown diagram types fall back to a boxed listing
// of the source lines.
type Renderer struct {
	box    lipgloss.Style
	header lipgloss.Style
	muted  lipgloss.Style
	bar    lipgloss.Style
}

// New creates a Renderer styled by the given theme.
func New(theme datachat.Theme) *Renderer {
	diagram := lipgloss.Color(strconv.Itoa(theme.Diagram))
	return &Renderer{
		box:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(diagram).Padding(0, 1),
		header: lipgloss.NewStyle().Foreground(diagram).Bold(true),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color(strconv.Itoa(theme.Muted))).Faint(true),
		bar:    lipgloss.NewStyle().Foreground(diagram),
	}
}

// Sanitize implements [datachat.DiagramRenderer].
func (r *Renderer) Sanitize(source string) string {
	return Sanitize(source)
}

// Render lays out a (sanitized) diagram source.
func (r *Renderer) Render(source string) (string, error) {
	lines := splitLines(source)
	if len(lines) == 0 {
		return "", errors.New("mermaid: empty diagram source")
	}

	kind := strings.Fields(lines[0])[0]
	var body []string
	switch kind {
	case "pie":
		body = r.layoutPie(lines[1:])
	case "graph", "flowchart":
		body = r.layoutGraph(lines[1:])
	case "xychart-beta":
		body = r.layoutXY(lines[1:])
	default:
		body = lines
	}
	if len(body) == 0 {
		body = []string{r.muted.Render("(empty)")}
	}
	return r.header.Render(kind) + "\n" + r.box.Render(strings.Join(body, "\n")), nil
}

func splitLines(source string) []string {
	var lines []string
	for _, l := range strings.Split(source, "\n") {
		if t := strings.TrimSpace(l); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}

// layoutPie renders slice rows with value-proportional bars.
func (r *Renderer) layoutPie(lines []string) []string {
	type slice struct {
		label string
		value float64
	}
	var slices []slice
	var title string
	var total, max float64
	for _, line := range lines {
		if rest, ok := strings.CutPrefix(line, "title "); ok {
			title = rest
			continue
		}
		m := pieSlice.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(m[3]), ":")), 64)
		if err != nil {
			continue
		}
		slices = append(slices, slice{label: m[2], value: v})
		total += v
		if v > max {
			max = v
		}
	}

	var body []string
	if title != "" {
		body = append(body, r.header.Render(title))
	}
	labelW := 0
	for _, s := range slices {
		if w := runewidth.StringWidth(s.label); w > labelW {
			labelW = w
		}
	}
	for _, s := range slices {
		bar := ""
		if max > 0 {
			bar = strings.Repeat("█", int(s.value/max*20+0.5))
		}
		pct := 0.0
		if total > 0 {
			pct = s.value / total * 100
		}
		body = append(body, fmt.Sprintf("%s %s %s",
			runewidth.FillRight(s.label, labelW),
			r.bar.Render(bar),
			r.muted.Render(fmt.Sprintf("%.1f%%", pct))))
	}
	return body
}

// layoutGraph resolves node labels and lists edges in source order.
func (r *Renderer) layoutGraph(lines []string) []string {
	labels := map[string]string{}
	type edge struct{ from, label, to string }
	var edges []edge
	seen := map[string]bool{}

	for _, line := range lines {
		for _, stmt := range strings.Split(line, ";") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			// Node declarations like A[주문] may stand alone or appear
			// inline on either side of an edge. Record their labels, then
			// strip the decoration so the bare edge shape remains.
			for _, m := range graphNode.FindAllStringSubmatch(stmt, -1) {
				labels[m[1]] = m[2]
				seen[m[1]] = true
			}
			stmt = graphNode.ReplaceAllString(stmt, "$1")
			if m := graphEdge.FindStringSubmatch(stmt); m != nil {
				edges = append(edges, edge{from: m[1], label: m[2], to: m[3]})
				seen[m[1]], seen[m[3]] = true, true
			}
		}
	}

	name := func(id string) string {
		if l, ok := labels[id]; ok {
			return l
		}
		return id
	}

	var body []string
	for _, e := range edges {
		arrow := "→"
		if e.label != "" {
			arrow = "→ " + r.muted.Render(e.label) + " →"
		}
		body = append(body, fmt.Sprintf("%s %s %s", r.header.Render(name(e.from)), arrow, name(e.to)))
	}
	if len(edges) == 0 {
		var ids []string
		for id := range seen {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			body = append(body, name(id))
		}
	}
	return body
}

var (
	graphEdge = regexp.MustCompile(`^(\w+)\s*-{1,3}>(?:\|([^|]*)\|)?\s*(\w+)`)
	graphNode = regexp.MustCompile(`(\w+)[\[({]+"?([^\])}"]*)"?[\])}]+`)
)

// layoutXY passes the chart declaration lines through, highlighted.
func (r *Renderer) layoutXY(lines []string) []string {
	var body []string
	for _, line := range lines {
		if rest, ok := strings.CutPrefix(line, "title "); ok {
			body = append(body, r.header.Render(strings.Trim(rest, `"`)))
			continue
		}
		body = append(body, line)
	}
	return body
}
