package bubbletea

import (
	"strings"

	"github.com/zetacube/datachat"
	"github.com/zetacube/datachat/render"
)

var _ MessageBlock = (*AnswerBlock)(nil)

// AnswerBlock renders a streamed answer with rich-text formatting. Each
// delta triggers a full re-render of the accumulated buffer — upstream
// markup can retroactively change earlier structure — while the
// per-block content renderer caches materialized diagram and chart
// artifacts so the expensive layout work runs once per distinct source.
type AnswerBlock struct {
	content  strings.Builder
	renderer *render.Renderer
	final    bool

	// Memo of the last render; re-rendering an unchanged buffer at an
	// unchanged width is pure overhead on every scroll tick.
	lastLen   int
	lastWidth int
	lastFinal bool
	lastOut   string
}

// NewAnswerBlock creates a block for a streaming answer. Each block gets
// its own content renderer: artifact caches are per-turn state.
func NewAnswerBlock(theme datachat.Theme) *AnswerBlock {
	return &AnswerBlock{renderer: render.Default(theme)}
}

// Append adds a content delta from the stream.
func (b *AnswerBlock) Append(text string) {
	b.content.WriteString(text)
}

// Finalize marks the stream as ended. The next View is the final pass,
// on which deferred chart blocks are materialized.
func (b *AnswerBlock) Finalize() {
	b.final = true
}

// Text returns the raw accumulated answer buffer.
func (b *AnswerBlock) Text() string {
	return b.content.String()
}

func (b *AnswerBlock) View(width int) string {
	if b.content.Len() == b.lastLen && width == b.lastWidth && b.final == b.lastFinal {
		return b.lastOut
	}
	raw := b.content.String()
	if !b.final && hasUnclosedFence(raw) {
		// Close fence only for rendering so partial streams display safely.
		raw += "\n```"
	}
	out := b.renderer.Render(raw, width, b.final)
	b.lastLen, b.lastWidth, b.lastFinal, b.lastOut = b.content.Len(), width, b.final, out
	return out
}

// hasUnclosedFence detects an unclosed fenced code block by checking for
// an odd number of "```" occurrences. A plain substring count cannot
// distinguish triple backticks inside inline code spans, which streamed
// answers rarely contain.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
