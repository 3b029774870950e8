package bubbletea_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zetacube/datachat"
	bt "github.com/zetacube/datachat/bubbletea"
)

func TestUserMessageBlock_View(t *testing.T) {
	t.Parallel()
	styles := bt.NewStyles(datachat.DefaultTheme())
	b := bt.NewUserMessageBlock("지난주 매출 알려줘", styles)
	out := b.View(80)
	assert.Contains(t, out, "> ")
	assert.Contains(t, out, "지난주 매출 알려줘")
}

func TestNoticeBlock_View(t *testing.T) {
	t.Parallel()
	styles := bt.NewStyles(datachat.DefaultTheme())
	b := bt.NewNoticeBlock("no response received", styles)
	assert.Contains(t, b.View(80), "no response received")
}

func TestErrorBlock_View(t *testing.T) {
	t.Parallel()
	styles := bt.NewStyles(datachat.DefaultTheme())
	b := bt.NewErrorBlock(assert.AnError, styles)
	out := b.View(80)
	assert.Contains(t, out, "Error:")
	assert.Contains(t, out, assert.AnError.Error())
}
