package chat

import "github.com/tradeforge/tradeai-gateway/internal/agent"

// toolDisplay maps runner tool names to the labels the client renders.
// Unknown names fall back to the raw name with a generic icon.
var toolDisplay = map[string]ToolInfo{
	agent.ToolUserDocSearch: {
		ID:          agent.ToolUserDocSearch,
		Name:        "업로드 문서 검색",
		Icon:        "file-search",
		Description: "업로드한 문서에서 관련 내용을 찾고 있습니다",
	},
	agent.ToolKnowledgeSearch: {
		ID:          agent.ToolKnowledgeSearch,
		Name:        "무역 지식 검색",
		Icon:        "document",
		Description: "무역 지식 베이스를 검색하고 있습니다",
	},
	agent.ToolWebSearch: {
		ID:          agent.ToolWebSearch,
		Name:        "웹 검색",
		Icon:        "web",
		Description: "웹에서 최신 정보를 찾고 있습니다",
	},
}

func displayFor(toolName string) ToolInfo {
	if info, ok := toolDisplay[toolName]; ok {
		return info
	}
	return ToolInfo{ID: toolName, Name: toolName, Icon: "tool"}
}
