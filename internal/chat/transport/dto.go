package transport

import (
	"github.com/google/uuid"
)

// MessageRequest is an inbound chat message.
type MessageRequest struct {
	SiteID *uuid.UUID `json:"siteId"`
	Text   string     `json:"text" validate:"required,max=2000"`
}

// ToolRequest executes one tool action from the chat surface.
type ToolRequest struct {
	Action string            `json:"action" validate:"required"`
	Params map[string]string `json:"params"`
}
