package models

import "time"

// Message 消息模型
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`

	Sender *User `json:"sender,omitempty"`
}

// Conversation 会话模型
type Conversation struct {
	ID          string    `json:"id"`
	ListingID   string    `json:"listing_id,omitempty"`
	LastMessage string    `json:"last_message,omitempty"`
	UnreadCount int       `json:"unread_count"`
	UpdatedAt   time.Time `json:"updated_at"`

	Participants []User    `json:"participants,omitempty"`
	Messages     []Message `json:"messages,omitempty"`
}

// SendMessageInput 发送消息请求结构
type SendMessageInput struct {
	ConversationID string `json:"conversation_id" binding:"required"`
	Content        string `json:"content" binding:"required,max=1000"`
}
