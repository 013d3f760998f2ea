package chat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tradeforge/tradeai-gateway/internal/memory"
	"github.com/tradeforge/tradeai-gateway/internal/platform/openai"
)

const (
	siblingDocLimit     = 1500
	editorContentLimit  = 2000
	historyPreviewTurns = 3
	historyPreviewChars = 100
)

var (
	htmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// stripHTML flattens markup to plain text with single spaces.
func stripHTML(s string) string {
	s = htmlTagPattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// truncateRunes clips to n runes so CJK text is not cut mid-byte.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// contextSection is one labeled block prepended to the user message.
type contextSection struct {
	label string
	body  string
}

// buildAugmentedMessage concatenates the labeled sections ahead of the
// raw user message. Empty sections are skipped; with no sections at all
// the message passes through untouched.
func buildAugmentedMessage(sections []contextSection, message string) string {
	var b strings.Builder
	for _, sec := range sections {
		body := strings.TrimSpace(sec.body)
		if body == "" {
			continue
		}
		b.WriteString("[")
		b.WriteString(sec.label)
		b.WriteString("]\n")
		b.WriteString(body)
		b.WriteString("\n\n")
	}
	b.WriteString(message)
	return b.String()
}

func memorySection(label string, items []memory.Item) contextSection {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, "- "+it.Memory)
	}
	return contextSection{label: label, body: strings.Join(lines, "\n")}
}

// historyPreviewSection clips the last few turns for quick orientation;
// the full history still rides along as structured messages.
func historyPreviewSection(history []openai.ChatMessage) contextSection {
	start := len(history) - historyPreviewTurns
	if start < 0 {
		start = 0
	}
	lines := make([]string, 0, historyPreviewTurns)
	for _, m := range history[start:] {
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, truncateRunes(m.Content, historyPreviewChars)))
	}
	return contextSection{label: "최근 대화", body: strings.Join(lines, "\n")}
}

func summarySection(summary string) contextSection {
	return contextSection{label: "대화 맥락", body: summary}
}
