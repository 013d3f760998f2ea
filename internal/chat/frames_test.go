package chat

import (
	"encoding/json"
	"testing"

	"github.com/tradeforge/tradeai-gateway/internal/agent"
)

func marshalFrame(t *testing.T, frame any) map[string]any {
	t.Helper()
	data, err := json.Marshal(frame)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return m
}

func TestFrameTypes(t *testing.T) {
	cases := []struct {
		frame any
		want  string
	}{
		{newInitFrame(1, 2, 0), "init"},
		{newContextFrame("문서 이력 2건"), "context"},
		{newAgentInfoFrame("a", "gpt-4o", "write", nil), "agent_info"},
		{newTextFrame("hi"), "text"},
		{newToolFrame(displayFor(agent.ToolWebSearch)), "tool"},
		{newEditFrame("수정", nil), "edit"},
		{newDoneFrame(nil), "done"},
		{NewErrorFrame("실패"), "error"},
	}
	for _, tc := range cases {
		m := marshalFrame(t, tc.frame)
		if m["type"] != tc.want {
			t.Errorf("type = %v, want %q", m["type"], tc.want)
		}
	}
}

func TestInitFrameOmitsZeroIDs(t *testing.T) {
	m := marshalFrame(t, newInitFrame(0, 0, 11))
	if _, ok := m["doc_id"]; ok {
		t.Error("doc_id should be omitted")
	}
	if m["gen_chat_id"] != float64(11) {
		t.Errorf("gen_chat_id = %v", m["gen_chat_id"])
	}
}

func TestDoneFrameNeverNullToolsUsed(t *testing.T) {
	m := marshalFrame(t, newDoneFrame(nil))
	list, ok := m["tools_used"].([]any)
	if !ok {
		t.Fatalf("tools_used = %v", m["tools_used"])
	}
	if len(list) != 0 {
		t.Errorf("tools_used = %v", list)
	}
}

func TestDisplayFor(t *testing.T) {
	info := displayFor(agent.ToolKnowledgeSearch)
	if info.Name != "무역 지식 검색" || info.Icon != "document" {
		t.Errorf("info = %+v", info)
	}
	info = displayFor(agent.ToolUserDocSearch)
	if info.Icon != "file-search" {
		t.Errorf("info = %+v", info)
	}
	fallback := displayFor("custom_tool")
	if fallback.ID != "custom_tool" || fallback.Name != "custom_tool" || fallback.Icon != "tool" {
		t.Errorf("fallback = %+v", fallback)
	}
}
