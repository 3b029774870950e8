package render_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zetacube/datachat"
	"github.com/zetacube/datachat/render"
)

// countingDiagrams is a DiagramRenderer that counts materializations.
type countingDiagrams struct {
	renders int
	fail    bool
}

func (d *countingDiagrams) Sanitize(source string) string {
	return strings.ReplaceAll(source, "(", "")
}

func (d *countingDiagrams) Render(source string) (string, error) {
	d.renders++
	if d.fail {
		return "", errors.New("layout failed")
	}
	return "[diagram:" + source + "]", nil
}

// countingCharts is a ChartRenderer that counts constructions.
type countingCharts struct {
	renders int
	fail    bool
	height  int // artifact extent; 0 means 400
}

func (c *countingCharts) Render(cfg datachat.ChartConfig) (datachat.ChartArtifact, error) {
	c.renders++
	if c.fail {
		return datachat.ChartArtifact{}, errors.New("no positive values")
	}
	h := c.height
	if h == 0 {
		h = 400
	}
	return datachat.ChartArtifact{Height: h, Body: "[chart:" + cfg.Type + "]"}, nil
}

const diagramFence = "```mermaid\npie (with) a long enough source\n```"

func TestRenderer_Diagrams(t *testing.T) {
	t.Parallel()

	t.Run("materialized once and spliced from cache after", func(t *testing.T) {
		t.Parallel()
		diagrams := &countingDiagrams{}
		r := render.New(datachat.DefaultTheme(), diagrams, &countingCharts{})

		first := r.Render(diagramFence, 80, false)
		second := r.Render(diagramFence, 80, false)
		final := r.Render(diagramFence, 80, true)

		assert.Equal(t, 1, diagrams.renders)
		assert.Contains(t, first, "[diagram:")
		assert.Equal(t, first, second)
		assert.Equal(t, first, final)
	})

	t.Run("cache key is the sanitized source", func(t *testing.T) {
		t.Parallel()
		diagrams := &countingDiagrams{}
		r := render.New(datachat.DefaultTheme(), diagrams, &countingCharts{})

		r.Render("```mermaid\npie (with) a long enough source\n```", 80, false)
		// Same sanitized form, different raw text.
		r.Render("```mermaid\npie with) a long enough source\n```", 80, false)

		assert.Equal(t, 1, diagrams.renders)
	})

	t.Run("short sources stay raw", func(t *testing.T) {
		t.Parallel()
		diagrams := &countingDiagrams{}
		r := render.New(datachat.DefaultTheme(), diagrams, &countingCharts{})

		out := r.Render("```mermaid\npie\n```", 80, false)
		assert.Equal(t, 0, diagrams.renders)
		assert.Contains(t, out, "pie")
	})

	t.Run("layout failure leaves the block raw", func(t *testing.T) {
		t.Parallel()
		diagrams := &countingDiagrams{fail: true}
		r := render.New(datachat.DefaultTheme(), diagrams, &countingCharts{})

		out := r.Render(diagramFence, 80, false)
		assert.Contains(t, out, "pie (with) a long enough source")
		assert.NotContains(t, out, "[diagram:")
	})
}

const chartFence = "```chartjs\n{\"type\":\"bar\",\"labels\":[\"a\"],\"data\":[1]}\n```"

func TestRenderer_Charts(t *testing.T) {
	t.Parallel()

	t.Run("deferred until the final pass", func(t *testing.T) {
		t.Parallel()
		charts := &countingCharts{}
		r := render.New(datachat.DefaultTheme(), &countingDiagrams{}, charts)

		partial := r.Render(chartFence, 80, false)
		assert.Equal(t, 0, charts.renders)
		assert.NotContains(t, partial, "[chart:")

		final := r.Render(chartFence, 80, true)
		assert.Equal(t, 1, charts.renders)
		assert.Contains(t, final, "[chart:bar]")
	})

	t.Run("constructed once, cached after", func(t *testing.T) {
		t.Parallel()
		charts := &countingCharts{}
		r := render.New(datachat.DefaultTheme(), &countingDiagrams{}, charts)

		first := r.Render(chartFence, 80, true)
		second := r.Render(chartFence, 80, true)
		assert.Equal(t, 1, charts.renders)
		assert.Equal(t, first, second)
	})

	t.Run("unparsable payload stays raw even on the final pass", func(t *testing.T) {
		t.Parallel()
		charts := &countingCharts{}
		r := render.New(datachat.DefaultTheme(), &countingDiagrams{}, charts)

		out := r.Render("```chartjs\n{\"type\":\"bar\",\"labels\":[\n```", 80, true)
		assert.Equal(t, 0, charts.renders)
		assert.Contains(t, out, "labels")
	})

	t.Run("declared extent sets a minimum vertical footprint", func(t *testing.T) {
		t.Parallel()
		tall := render.New(datachat.DefaultTheme(), &countingDiagrams{}, &countingCharts{height: 390})
		flat := render.New(datachat.DefaultTheme(), &countingDiagrams{}, &countingCharts{height: 30})

		tallOut := tall.Render(chartFence, 80, true)
		flatOut := flat.Render(chartFence, 80, true)

		// 390 at 30 per row is 13 rows; the one-line body gains twelve.
		assert.Equal(t, strings.Count(flatOut, "\n")+12, strings.Count(tallOut, "\n"))
	})

	t.Run("construction failure renders an inline error", func(t *testing.T) {
		t.Parallel()
		charts := &countingCharts{fail: true}
		r := render.New(datachat.DefaultTheme(), &countingDiagrams{}, charts)

		out := r.Render("sibling text\n\n"+chartFence, 80, true)
		assert.Contains(t, out, "chart error: no positive values")
		// Sibling blocks are unaffected.
		assert.Contains(t, out, "sibling text")

		// The failure is cached like any artifact.
		r.Render(chartFence, 80, true)
		assert.Equal(t, 1, charts.renders)
	})
}
