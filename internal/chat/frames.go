package chat

// FrameWriter delivers one SSE frame to the client. Implementations own
// flushing; Send returns an error once the client is gone.
type FrameWriter interface {
	Send(frame any) error
}

// ToolInfo is the display payload attached to tool frames and to the
// tools_used list in done frames.
type ToolInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description,omitempty"`
}

type initFrame struct {
	Type      string `json:"type"`
	DocID     int64  `json:"doc_id,omitempty"`
	TradeID   int64  `json:"trade_id,omitempty"`
	GenChatID int64  `json:"gen_chat_id,omitempty"`
}

type contextFrame struct {
	Type    string `json:"type"`
	Summary string `json:"summary"`
}

type agentInfoFrame struct {
	Type  string    `json:"type"`
	Agent agentInfo `json:"agent"`
}

type agentInfo struct {
	Name    string   `json:"name"`
	Model   string   `json:"model"`
	DocMode string   `json:"doc_mode,omitempty"`
	Tools   []string `json:"tools"`
}

type textFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type toolFrame struct {
	Type string   `json:"type"`
	Tool ToolInfo `json:"tool"`
}

type editFrame struct {
	Type    string       `json:"type"`
	Message string       `json:"message"`
	Changes []EditChange `json:"changes"`
}

type doneFrame struct {
	Type      string     `json:"type"`
	ToolsUsed []ToolInfo `json:"tools_used"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func newInitFrame(docID, tradeID, genChatID int64) initFrame {
	return initFrame{Type: "init", DocID: docID, TradeID: tradeID, GenChatID: genChatID}
}

func newContextFrame(summary string) contextFrame {
	return contextFrame{Type: "context", Summary: summary}
}

func newAgentInfoFrame(name, model, docMode string, tools []string) agentInfoFrame {
	return agentInfoFrame{Type: "agent_info", Agent: agentInfo{Name: name, Model: model, DocMode: docMode, Tools: tools}}
}

func newTextFrame(content string) textFrame {
	return textFrame{Type: "text", Content: content}
}

func newToolFrame(info ToolInfo) toolFrame {
	return toolFrame{Type: "tool", Tool: info}
}

func newEditFrame(message string, changes []EditChange) editFrame {
	return editFrame{Type: "edit", Message: message, Changes: changes}
}

func newDoneFrame(toolsUsed []ToolInfo) doneFrame {
	if toolsUsed == nil {
		toolsUsed = []ToolInfo{}
	}
	return doneFrame{Type: "done", ToolsUsed: toolsUsed}
}

// NewErrorFrame is exported so handlers can answer validation failures
// with a single frame before the pipeline starts.
func NewErrorFrame(message string) any {
	return errorFrame{Type: "error", Error: message}
}
