package datachat

// DiagramRenderer materializes a diagram block's source text into a
// terminal artifact. Sanitize is a deterministic, purely textual
// transform applied before Render; the content renderer caches artifacts
// keyed by the sanitized source, so Sanitize(Sanitize(s)) must equal
// Sanitize(s).
type DiagramRenderer interface {
	Sanitize(source string) string
	Render(source string) (string, error)
}

// ChartArtifact is a materialized chart. Height is the chart's vertical
// extent in the chart coordinate space; the content renderer scales it
// to a minimum row footprint.
type ChartArtifact struct {
	Height int
	Body   string
}

// ChartRenderer constructs a chart artifact from a validated config.
// Construction failures are rendered inline by the caller and must not
// affect sibling blocks.
type ChartRenderer interface {
	Render(cfg ChartConfig) (ChartArtifact, error)
}
