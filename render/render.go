// Package render converts a turn's growing answer buffer into terminal
// output. It is invoked on every content delta and once more at stream
// end: each call re-derives the rich-text structure from the full buffer
// (upstream markup can retroactively change earlier structure, e.g.
// completing a fence that was previously open), while materialized
// diagram and chart artifacts are cached keyed by source text and
// spliced back verbatim, so the expensive, order-sensitive layout work
// runs once per distinct source.
package render

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/zetacube/datachat"
	"github.com/zetacube/datachat/chart"
	"github.com/zetacube/datachat/markdown"
	"github.com/zetacube/datachat/mermaid"
)

// MinDiagramSourceLen is the diagram materialization threshold, in
// characters. A shorter fence body is presumed still streaming and is
// left unrendered.
const MinDiagramSourceLen = 20

// Fence languages claimed by the structured-block renderers.
const (
	langDiagram = "mermaid"
	langChart   = "chartjs"
)

// Renderer is the per-turn incremental content renderer. It owns the
// turn's artifact caches; a new turn gets a new Renderer.
type Renderer struct {
	theme    datachat.Theme
	diagrams datachat.DiagramRenderer
	charts   datachat.ChartRenderer
	errStyle lipgloss.Style
	log      zerolog.Logger

	diagramCache map[string]string // artifact keyed by sanitized source
	chartCache   map[string]string // artifact keyed by exact source
}

// Option configures a [Renderer].
type Option func(*Renderer)

// WithLogger sets the renderer's logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(r *Renderer) { r.log = log }
}

// New creates a Renderer with the given structured-block renderers.
func New(theme datachat.Theme, diagrams datachat.DiagramRenderer, charts datachat.ChartRenderer, opts ...Option) *Renderer {
	r := &Renderer{
		theme:        theme,
		diagrams:     diagrams,
		charts:       charts,
		errStyle:     lipgloss.NewStyle().Foreground(ansiColor(theme.Error)),
		log:          zerolog.Nop(),
		diagramCache: make(map[string]string),
		chartCache:   make(map[string]string),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Default creates a Renderer wired to the mermaid and chart renderers.
func Default(theme datachat.Theme, opts ...Option) *Renderer {
	return New(theme, mermaid.New(theme), chart.New(theme), opts...)
}

// Render re-derives the terminal representation of the full answer
// buffer. final marks the stream-end pass, the only one on which chart
// blocks are materialized: constructing a chart from partial JSON is
// wasted or incorrect work, so mid-stream they stay raw text.
func (r *Renderer) Render(buffer string, width int, final bool) string {
	return markdown.RenderWith(buffer, width, r.theme, func(lang, src string) (string, bool) {
		switch lang {
		case langDiagram:
			return r.renderDiagram(src)
		case langChart:
			return r.renderChart(src, final)
		}
		return "", false
	})
}

func (r *Renderer) renderDiagram(src string) (string, bool) {
	sanitized := r.diagrams.Sanitize(src)
	if art, ok := r.diagramCache[sanitized]; ok {
		return art, true
	}
	if utf8.RuneCountInString(src) < MinDiagramSourceLen {
		// Presumed still growing.
		return "", false
	}
	art, err := r.diagrams.Render(sanitized)
	if err != nil {
		r.log.Debug().Err(err).Msg("diagram layout failed, leaving raw block")
		return "", false
	}
	r.diagramCache[sanitized] = art
	return art, true
}

func (r *Renderer) renderChart(src string, final bool) (string, bool) {
	if art, ok := r.chartCache[src]; ok {
		return art, true
	}
	if !final {
		return "", false
	}
	cfg, err := datachat.ParseChartConfig(src)
	if err != nil {
		// One bad block never fails the whole pass; the raw text stays
		// visible instead.
		r.log.Debug().Err(err).Msg("chart payload unparsable, leaving raw block")
		return "", false
	}
	art, err := r.charts.Render(cfg)
	if err != nil {
		// Replaces the block in place; sibling blocks are unaffected.
		msg := r.errStyle.Render("chart error: " + err.Error())
		r.chartCache[src] = msg
		return msg, true
	}
	body := fitToExtent(art)
	r.chartCache[src] = body
	return body, true
}

// extentPerRow converts an artifact's vertical extent, expressed in the
// chart coordinate space, to terminal rows.
const extentPerRow = 30

// fitToExtent pads the artifact body so its vertical footprint is at
// least the declared extent. Most bodies already exceed it; the floor
// matters for charts with few categories.
func fitToExtent(art datachat.ChartArtifact) string {
	rows := art.Height / extentPerRow
	body := art.Body
	if n := strings.Count(body, "\n") + 1; n < rows {
		body += strings.Repeat("\n", rows-n)
	}
	return body
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
