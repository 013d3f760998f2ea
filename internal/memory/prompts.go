package memory

// Per-scope summarization prompts. Each one ends with the NONE rule so
// a turn with nothing worth keeping produces no memory item.
const noneRule = "\n\n저장할 만한 내용이 전혀 없으면 다른 말 없이 NONE만 출력하세요."

var scopePrompts = map[string]string{
	TypeDocSession: "다음 대화에서 현재 문서 작업 세션의 내용을 요약하세요. " +
		"작업 목표, 수정한 필드와 값, 완료된 항목을 중심으로 정리합니다. " +
		"인사말과 단순 품목 숫자 나열은 제외하세요." + noneRule,

	TypeGenChatSession: "다음 대화의 내용을 요약하세요. " +
		"주제와 질문/답변의 핵심만 정리하고, 인사말과 반복된 내용은 제외하세요." + noneRule,

	TypeUserPreference: "다음 대화에서 사용자의 지속적인 선호를 추출하세요. " +
		"선호하는 Incoterms, 결제 조건, 문서 스타일, 반복적으로 다루는 품목과 지역을 중심으로 정리합니다. " +
		"이번 건에만 해당하는 일회성 수치는 제외하세요." + noneRule,

	TypeBuyerMemo: "다음 대화에서 거래처에 대한 지속적인 메모를 추출하세요. " +
		"거래처의 선호 조건, 주의사항, 커뮤니케이션 스타일을 중심으로 정리합니다. " +
		"단일 거래의 세부 내용은 제외하세요." + noneRule,
}

// longSummaryPrompt condenses a longer message window for the periodic
// long-term tier written every tenth turn.
const longSummaryPrompt = "다음은 한 세션의 최근 대화 기록입니다. " +
	"세션 전체의 진행 상황을 한 단락으로 요약하세요. " +
	"결정된 사항, 미해결 항목, 반복된 주제를 포함합니다." + noneRule
