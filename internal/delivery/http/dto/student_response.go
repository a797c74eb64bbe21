package dto

type StudentResponse struct {
	ID            string `json:"id"`
	ChatID        int64  `json:"chat_id"`
	Username      string `json:"username,omitempty"`
	DisplayName   string `json:"display_name"`
	Registered    bool   `json:"registered"`
	NotifyEnabled bool   `json:"notify_enabled"`
}
