package chat

import (
	"strings"
	"testing"

	"github.com/tradeforge/tradeai-gateway/internal/memory"
	"github.com/tradeforge/tradeai-gateway/internal/platform/openai"
)

func TestStripHTML(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<p>Hello <b>World</b></p>", "Hello World"},
		{"plain text", "plain text"},
		{"<div>\n  줄바꿈   정리\n</div>", "줄바꿈 정리"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := stripHTML(tc.in); got != tc.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncateRunes("abcdefgh", 5); got != "abcde..." {
		t.Errorf("got %q", got)
	}
	korean := "가나다라마바사"
	if got := truncateRunes(korean, 3); got != "가나다..." {
		t.Errorf("got %q", got)
	}
}

func TestBuildAugmentedMessage(t *testing.T) {
	sections := []contextSection{
		{label: "사용자 선호도", body: "- 간결한 문체 선호"},
		{label: "거래처 메모", body: ""},
		memorySection("이전 문서 작업 내역", []memory.Item{{Memory: "단가 12.50 확정"}}),
	}
	got := buildAugmentedMessage(sections, "다음 단계 진행해줘")
	want := "[사용자 선호도]\n- 간결한 문체 선호\n\n[이전 문서 작업 내역]\n- 단가 12.50 확정\n\n다음 단계 진행해줘"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestBuildAugmentedMessageNoSections(t *testing.T) {
	if got := buildAugmentedMessage(nil, "메시지"); got != "메시지" {
		t.Errorf("got %q", got)
	}
}

func TestHistoryPreviewSection(t *testing.T) {
	history := []openai.ChatMessage{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "second"},
		{Role: "user", Content: "third"},
		{Role: "assistant", Content: "fourth"},
	}
	sec := historyPreviewSection(history)
	if sec.label != "최근 대화" {
		t.Errorf("label = %q", sec.label)
	}
	if strings.Contains(sec.body, "first") {
		t.Errorf("preview kept a turn past the window: %q", sec.body)
	}
	for _, want := range []string{"assistant: second", "user: third", "assistant: fourth"} {
		if !strings.Contains(sec.body, want) {
			t.Errorf("preview missing %q: %q", want, sec.body)
		}
	}
}

func TestHistoryPreviewTruncatesLongTurns(t *testing.T) {
	long := strings.Repeat("가", historyPreviewChars+10)
	sec := historyPreviewSection([]openai.ChatMessage{{Role: "user", Content: long}})
	if !strings.HasSuffix(sec.body, "...") {
		t.Errorf("long turn not clipped: %q", sec.body)
	}
	if len([]rune(sec.body)) > historyPreviewChars+len("user: ")+3 {
		t.Errorf("preview too long: %d runes", len([]rune(sec.body)))
	}
}
