package messages

import "encoding/json"

type QueueMessage struct {
	Type      string          `json:"type"`
	MessageID string          `json:"message_id"`
	Payload   json.RawMessage `json:"payload"`
}

type TestCase struct {
	ID             string `json:"id"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// TaskQueueMessage carries one run request: the solution and the suite inline.
type TaskQueueMessage struct {
	Problem        string     `json:"problem"`
	LanguageType   string     `json:"language_type"`
	SourceCode     string     `json:"source_code"`
	Signature      []string   `json:"signature,omitempty"`
	TimeoutPerCase int64      `json:"timeout_per_case_ms"`
	TestCases      []TestCase `json:"test_cases"`
}

type CancelQueueMessage struct {
	TargetMessageID string `json:"target_message_id"`
}

type ResponseQueueMessage struct {
	Type      string          `json:"type"`
	MessageID string          `json:"message_id"`
	Ok        bool            `json:"ok"`
	Payload   json.RawMessage `json:"payload"`
}

type LanguageSpec struct {
	LanguageName string   `json:"name"`
	Versions     []string `json:"versions"`
	Extension    string   `json:"extension"`
	Compiled     bool     `json:"compiled"`
}

type ResponseHandshakePayload struct {
	Languages []LanguageSpec `json:"languages"`
}
