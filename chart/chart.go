// Package chart constructs terminal chart artifacts from validated
// chartjs payloads. Construction is deterministic and happens exactly
// once per distinct source: the content renderer defers chart blocks to
// the stream-end pass and caches the resulting artifact.
package chart

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/zetacube/datachat"
)

// Interface compliance check.
var _ datachat.ChartRenderer = (*Renderer)(nil)

const (
	// baseHeight is the minimum vertical extent of any chart.
	baseHeight = 400
	// rowHeight is the per-category extent added to bar charts, so many
	// categories get a taller axis area: max(400, 30 × labels).
	rowHeight = 30

	// barScale is the column width of the longest bar.
	barScale = 24
)

// palette is the fixed 10-entry category palette, cycled by index.
// Bar charts use a single solid color; other types color per slice.
var palette = [10]lipgloss.Color{
	"#FF6384", "#36A2EB", "#FFCE56", "#4BC0C0", "#9966FF",
	"#FF9F40", "#C9CBCF", "#7ACB77", "#E7729A", "#5366FF",
}

// Renderer implements [datachat.ChartRenderer].
type Renderer struct {
	box   lipgloss.Style
	title lipgloss.Style
	muted lipgloss.Style
}

// New creates a Renderer styled by the given theme.
func New(theme datachat.Theme) *Renderer {
	muted := lipgloss.Color(strconv.Itoa(theme.Muted))
	return &Renderer{
		box:   lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(muted).Padding(0, 1),
		title: lipgloss.NewStyle().Bold(true),
		muted: lipgloss.NewStyle().Foreground(muted).Faint(true),
	}
}

// Render constructs a chart artifact from a validated config. It rejects
// configurations whose data cannot be scaled (no positive values).
func (r *Renderer) Render(cfg datachat.ChartConfig) (datachat.ChartArtifact, error) {
	var max, total float64
	for _, v := range cfg.Data {
		if v > max {
			max = v
		}
		if v > 0 {
			total += v
		}
	}
	if max <= 0 {
		return datachat.ChartArtifact{}, fmt.Errorf("chart %q: data has no positive values", cfg.Type)
	}

	var body []string
	if cfg.Title != "" {
		body = append(body, r.title.Render(cfg.Title), "")
	}
	body = append(body, r.rows(cfg, max)...)
	if pieLike(cfg.Type) {
		body = append(body, "")
		body = append(body, r.legend(cfg, total)...)
	}

	return datachat.ChartArtifact{
		Height: heightFor(cfg),
		Body:   r.box.Render(strings.Join(body, "\n")),
	}, nil
}

// heightFor sizes the chart's vertical extent. Bar charts grow with the
// category count; other types use the fixed base extent.
func heightFor(cfg datachat.ChartConfig) int {
	if cfg.Type != "bar" {
		return baseHeight
	}
	h := rowHeight * len(cfg.Labels)
	if h < baseHeight {
		h = baseHeight
	}
	return h
}

func pieLike(chartType string) bool {
	switch chartType {
	case "pie", "doughnut", "polarArea":
		return true
	}
	return false
}

func (r *Renderer) rows(cfg datachat.ChartConfig, max float64) []string {
	labelW := 0
	for _, l := range cfg.Labels {
		if w := runewidth.StringWidth(l); w > labelW {
			labelW = w
		}
	}

	solid := cfg.Type == "bar"
	rows := make([]string, len(cfg.Labels))
	for i, label := range cfg.Labels {
		v := cfg.Data[i]
		n := 0
		if v > 0 {
			n = int(v/max*barScale + 0.5)
		}
		color := palette[0]
		if !solid {
			color = palette[i%len(palette)]
		}
		rows[i] = fmt.Sprintf("%s %s %s",
			runewidth.FillRight(label, labelW),
			lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", n)),
			r.muted.Render(formatValue(v)))
	}
	return rows
}

func (r *Renderer) legend(cfg datachat.ChartConfig, total float64) []string {
	lines := make([]string, len(cfg.Labels))
	for i, label := range cfg.Labels {
		pct := 0.0
		if total > 0 && cfg.Data[i] > 0 {
			pct = cfg.Data[i] / total * 100
		}
		swatch := lipgloss.NewStyle().Foreground(palette[i%len(palette)]).Render("■")
		lines[i] = fmt.Sprintf("%s %s %s", swatch, label, r.muted.Render(fmt.Sprintf("%.1f%%", pct)))
	}
	return lines
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
