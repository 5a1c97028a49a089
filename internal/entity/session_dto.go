package entity

import "time"

// SessionSnapshot is the read-only view of a conversation handed to the
// presentation layer
type SessionSnapshot struct {
	SessionID    string    `json:"session_id"`
	Step         string    `json:"step"`
	Messages     []Message `json:"messages"`
	InputEnabled bool      `json:"input_enabled"`
	Placeholder  string    `json:"placeholder,omitempty"`
	CanSubmit    bool      `json:"can_submit"`
	Pending      bool      `json:"pending"`
	ResultURL    string    `json:"result_url,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// StyleUpdateRequest carries a theme color and/or category selection
type StyleUpdateRequest struct {
	ThemeColor string `json:"theme_color"`
	Category   string `json:"category"`
}

// OptionRequest carries a clicked option
type OptionRequest struct {
	OptionID string `json:"option_id"`
}

// TextRequest carries a free-text submission
type TextRequest struct {
	Text string `json:"text"`
}
