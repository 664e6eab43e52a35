package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"fleamarket_go/backend"
	"fleamarket_go/config"
	"fleamarket_go/models"
	"fleamarket_go/utils"
)

// PollInterval 消息轮询间隔
// 会话视图挂载期间固定间隔拉取，不做退避和自适应；
// 视图卸载（连接断开）时停止。
func PollInterval() time.Duration {
	return config.GetEnvDuration("MESSAGE_POLL_INTERVAL", 5*time.Second)
}

var ErrEmptyMessage = errors.New("message content cannot be empty")

// MessageService 消息服务
type MessageService struct {
	client *backend.Client
}

// NewMessageService 创建消息服务实例
func NewMessageService(client ...*backend.Client) *MessageService {
	c := backend.Get()
	if len(client) > 0 && client[0] != nil {
		c = client[0]
	}
	return &MessageService{client: c}
}

// GetConversation 获取会话消息列表
func (ms *MessageService) GetConversation(ctx context.Context, conversationID string) ([]models.Message, error) {
	return ms.client.GetMessages(ctx, conversationID)
}

// Send 发送消息
func (ms *MessageService) Send(ctx context.Context, input models.SendMessageInput) (*models.Message, error) {
	input.Content = strings.TrimSpace(utils.SanitizeString(input.Content))
	if input.Content == "" {
		return nil, ErrEmptyMessage
	}

	return ms.client.SendMessage(ctx, input)
}

// MessagesAfter 拉取指定时间之后的新消息（轮询器使用）
// 返回新消息和其中最新的创建时间，作为下一轮的水位。
func (ms *MessageService) MessagesAfter(ctx context.Context, conversationID string, after time.Time) ([]models.Message, time.Time, error) {
	messages, err := ms.client.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, after, err
	}

	var fresh []models.Message
	latest := after
	for _, message := range messages {
		if message.CreatedAt.After(after) {
			fresh = append(fresh, message)
		}
		if message.CreatedAt.After(latest) {
			latest = message.CreatedAt
		}
	}

	return fresh, latest, nil
}
