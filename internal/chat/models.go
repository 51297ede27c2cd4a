package chat

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
