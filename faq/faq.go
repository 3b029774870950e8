// Package faq provides the predefined-answer shortcut: a small fixed set
// of keyword-to-answer mappings checked before any network call. Matched
// answers are played back through the same incremental renderer as
// streamed answers, in fixed-size slices on a short delay, to preserve
// the perceived typing behavior of a real stream.
package faq

import (
	"strings"
	"time"

	"github.com/rivo/uniseg"
)

const (
	// SliceGraphemes is the number of characters per playback slice.
	// Grapheme clusters, not bytes, so multi-byte scripts split cleanly.
	SliceGraphemes = 3

	// SliceDelay is the pause between playback slices.
	SliceDelay = 30 * time.Millisecond
)

type entry struct {
	keyword string // lower-cased
	answer  string
}

// Table is an ordered keyword-to-answer lookup. Matching is
// case-insensitive substring containment; the first match wins.
type Table struct {
	entries []entry
}

// Pair is one keyword/answer mapping for New.
type Pair struct {
	Keyword string
	Answer  string
}

// New creates a Table. Pair order is match priority: when keywords
// overlap, the earliest pair wins.
func New(pairs ...Pair) *Table {
	t := &Table{}
	for _, p := range pairs {
		t.entries = append(t.entries, entry{keyword: strings.ToLower(p.Keyword), answer: p.Answer})
	}
	return t
}

// Default returns the built-in company FAQ table.
func Default() *Table {
	return New(
		Pair{
			Keyword: "제타큐브",
			Answer: "제타큐브(ZetaCube)는 데이터 분석 솔루션을 개발하는 회사입니다. " +
				"매장 및 매출 데이터를 자연어 질문으로 분석할 수 있는 SQL 챗봇을 제공합니다. " +
				"통계를 표나 차트로 시각화해 드릴 수 있으니 편하게 질문해 주세요.",
		},
		Pair{
			Keyword: "사용법",
			Answer: "궁금한 내용을 자연어로 입력하시면 데이터를 검색해 답변해 드립니다. " +
				"\"차트\"나 \"그래프\"를 요청하시면 결과를 시각화해 드립니다. " +
				"생성 중에는 Esc 키로 응답을 중단할 수 있습니다.",
		},
		Pair{
			Keyword: "help",
			Answer: "Ask a question in plain language and I will look up the data for you. " +
				"Request a chart or graph to get a visualization. " +
				"Press Esc to stop a response while it is generating.",
		},
	)
}

// Match returns the canned answer for the first keyword contained in
// input, case-insensitively.
func (t *Table) Match(input string) (string, bool) {
	lowered := strings.ToLower(input)
	for _, e := range t.entries {
		if strings.Contains(lowered, e.keyword) {
			return e.answer, true
		}
	}
	return "", false
}

// Slices splits an answer into playback slices of SliceGraphemes
// characters each. Splitting follows grapheme cluster boundaries so a
// multi-byte character is never cut in half.
func Slices(answer string) []string {
	var slices []string
	var b strings.Builder
	n := 0
	g := uniseg.NewGraphemes(answer)
	for g.Next() {
		b.WriteString(g.Str())
		n++
		if n == SliceGraphemes {
			slices = append(slices, b.String())
			b.Reset()
			n = 0
		}
	}
	if b.Len() > 0 {
		slices = append(slices, b.String())
	}
	return slices
}
