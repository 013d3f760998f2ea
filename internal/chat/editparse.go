package chat

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedJSONPattern = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")

// EditChange is one field mutation in canonical form.
type EditChange struct {
	FieldID string `json:"fieldId"`
	Value   any    `json:"value"`
}

// EditResponse is a structured edit the assistant embedded in its reply.
type EditResponse struct {
	Message string
	Changes []EditChange
}

// ParseEditResponse extracts an edit instruction from assistant text:
// the first ```json fenced block, or the whole text when there is none.
// Anything that is not a type=="edit" object returns nil and the reply
// stays plain chat. Legacy {field, before, after} entries are mapped to
// the canonical {fieldId, value}; entries carrying neither shape are
// dropped.
func ParseEditResponse(text string) *EditResponse {
	candidate := strings.TrimSpace(text)
	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil {
		candidate = strings.TrimSpace(m[1])
	}
	if candidate == "" || !strings.HasPrefix(candidate, "{") {
		return nil
	}

	var raw struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Changes []struct {
			FieldID string `json:"fieldId"`
			Value   any    `json:"value"`
			Field   string `json:"field"`
			After   any    `json:"after"`
		} `json:"changes"`
	}
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return nil
	}
	if raw.Type != "edit" {
		return nil
	}

	changes := make([]EditChange, 0, len(raw.Changes))
	for _, c := range raw.Changes {
		switch {
		case c.FieldID != "":
			changes = append(changes, EditChange{FieldID: c.FieldID, Value: c.Value})
		case c.Field != "":
			changes = append(changes, EditChange{FieldID: c.Field, Value: c.After})
		}
	}
	return &EditResponse{Message: raw.Message, Changes: changes}
}
