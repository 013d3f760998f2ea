package chat

import "testing"

func TestParseEditResponseFenced(t *testing.T) {
	text := "수정했습니다.\n```json\n{\"type\":\"edit\",\"message\":\"단가를 변경했습니다\",\"changes\":[{\"fieldId\":\"unit_price\",\"value\":\"12.50\"}]}\n```"
	edit := ParseEditResponse(text)
	if edit == nil {
		t.Fatal("expected edit response")
	}
	if edit.Message != "단가를 변경했습니다" {
		t.Errorf("message = %q", edit.Message)
	}
	if len(edit.Changes) != 1 {
		t.Fatalf("changes = %d", len(edit.Changes))
	}
	if edit.Changes[0].FieldID != "unit_price" || edit.Changes[0].Value != "12.50" {
		t.Errorf("change = %+v", edit.Changes[0])
	}
}

func TestParseEditResponseWholeText(t *testing.T) {
	text := `{"type":"edit","message":"ok","changes":[{"fieldId":"buyer_name","value":"ACME"}]}`
	edit := ParseEditResponse(text)
	if edit == nil {
		t.Fatal("expected edit response")
	}
	if edit.Changes[0].FieldID != "buyer_name" {
		t.Errorf("fieldId = %q", edit.Changes[0].FieldID)
	}
}

func TestParseEditResponseLegacyShape(t *testing.T) {
	text := "```json\n{\"type\":\"edit\",\"changes\":[{\"field\":\"quantity\",\"before\":\"100\",\"after\":\"200\"}]}\n```"
	edit := ParseEditResponse(text)
	if edit == nil {
		t.Fatal("expected edit response")
	}
	if edit.Changes[0].FieldID != "quantity" || edit.Changes[0].Value != "200" {
		t.Errorf("change = %+v", edit.Changes[0])
	}
}

func TestParseEditResponseDropsShapelessEntries(t *testing.T) {
	text := "```json\n{\"type\":\"edit\",\"changes\":[{\"value\":\"orphan\"},{\"fieldId\":\"port\",\"value\":\"Busan\"}]}\n```"
	edit := ParseEditResponse(text)
	if edit == nil {
		t.Fatal("expected edit response")
	}
	if len(edit.Changes) != 1 || edit.Changes[0].FieldID != "port" {
		t.Errorf("changes = %+v", edit.Changes)
	}
}

func TestParseEditResponseNonEdit(t *testing.T) {
	for _, text := range []string{
		"그냥 대화 답변입니다.",
		`{"type":"chat","message":"hi"}`,
		"```json\n{\"type\":\"summary\"}\n```",
		"```json\nnot json at all\n```",
		"",
	} {
		if edit := ParseEditResponse(text); edit != nil {
			t.Errorf("ParseEditResponse(%q) = %+v, want nil", text, edit)
		}
	}
}

func TestParseEditResponsePrefersFencedBlock(t *testing.T) {
	// Surrounding prose that itself starts with "{" must not shadow the
	// fenced block.
	text := "{참고}\n```json\n{\"type\":\"edit\",\"changes\":[]}\n```"
	edit := ParseEditResponse(text)
	if edit == nil {
		t.Fatal("expected edit response")
	}
	if len(edit.Changes) != 0 {
		t.Errorf("changes = %+v", edit.Changes)
	}
}
