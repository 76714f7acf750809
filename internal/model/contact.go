package model

import (
	"bytes"
	"encoding/json"
)

// ContactSubmission is the name/email/message payload from the contact form.
// Fields absent from the request decode to the empty string.
type ContactSubmission struct {
	Name    string `form:"name" json:"name"`
	Email   string `form:"email" json:"email"`
	Message string `form:"message" json:"message"`
}

// LooseContactSubmission accepts any JSON value per field. Used for JSON
// bodies in lenient mode so a number or boolean is templated instead of
// rejecting the request.
type LooseContactSubmission struct {
	Name    json.RawMessage `json:"name"`
	Email   json.RawMessage `json:"email"`
	Message json.RawMessage `json:"message"`
}

func (s LooseContactSubmission) Submission() ContactSubmission {
	return ContactSubmission{Name: looseText(s.Name), Email: looseText(s.Email), Message: looseText(s.Message)}
}

// looseText renders a JSON value as text: strings unquoted, null or absent
// as "", anything else as its compact JSON.
func looseText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

// StrictContactSubmission carries the validation rules applied when strict
// validation is enabled.
type StrictContactSubmission struct {
	Name    string `form:"name" json:"name" binding:"required"`
	Email   string `form:"email" json:"email" binding:"required,email"`
	Message string `form:"message" json:"message" binding:"required"`
}

func (s StrictContactSubmission) Submission() ContactSubmission {
	return ContactSubmission{Name: s.Name, Email: s.Email, Message: s.Message}
}

// RelayResponse is the JSON body returned by the relay endpoint.
type RelayResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}
