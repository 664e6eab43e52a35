package backend

import (
	"context"
	"fmt"
	"net/http"

	"fleamarket_go/models"
)

// messagesResponse 会话消息响应
type messagesResponse struct {
	Messages []models.Message `json:"messages"`
}

// GetMessages 获取会话消息
func (c *Client) GetMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	var result messagesResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/messages/%s", conversationID), nil, &result); err != nil {
		return nil, err
	}
	return result.Messages, nil
}

// sendMessageResponse 发送消息响应
type sendMessageResponse struct {
	Message models.Message `json:"message"`
}

// SendMessage 发送消息
func (c *Client) SendMessage(ctx context.Context, input models.SendMessageInput) (*models.Message, error) {
	var result sendMessageResponse
	if err := c.do(ctx, http.MethodPost, "/messages", input, &result); err != nil {
		return nil, err
	}
	return &result.Message, nil
}
