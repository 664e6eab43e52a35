package models

import "time"

// Review 评价模型
type Review struct {
	ID             string    `json:"id"`
	ReviewerID     string    `json:"reviewer_id"`
	RevieweeID     string    `json:"reviewee_id"`
	ConversationID string    `json:"conversation_id"`
	Rating         int       `json:"rating"`
	Comment        string    `json:"comment,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ReviewPayload 提交评价时发给托管后端的结构
// 空评论必须以null发送，而不是空字符串。
type ReviewPayload struct {
	RevieweeID     string  `json:"reviewee_id"`
	ConversationID string  `json:"conversation_id"`
	Rating         int     `json:"rating"`
	Comment        *string `json:"comment"`
}

// SubmitReviewInput 提交评价的请求结构
type SubmitReviewInput struct {
	RevieweeID     string `json:"reviewee_id" binding:"required"`
	ConversationID string `json:"conversation_id" binding:"required"`
	Rating         int    `json:"rating" binding:"required" validate:"rating"`
	Comment        string `json:"comment" binding:"max=1000"`
}
