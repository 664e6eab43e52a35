package controllers

import (
	"errors"

	"fleamarket_go/models"
	"fleamarket_go/services"
	"fleamarket_go/utils"

	"github.com/gin-gonic/gin"
)

// MessageController 消息控制器
type MessageController struct {
	messageService *services.MessageService
}

// NewMessageController 创建消息控制器实例
func NewMessageController() *MessageController {
	return &MessageController{
		messageService: services.NewMessageService(),
	}
}

// GetConversation 获取会话消息
// @Summary 获取会话消息
// @Tags messages
// @Produce json
// @Security Bearer
// @Param id path string true "会话ID"
// @Success 200 {object} utils.Response
// @Router /api/messages/{id} [get]
func (mc *MessageController) GetConversation(c *gin.Context) {
	conversationID := c.Param("id")

	messages, err := mc.messageService.GetConversation(c, conversationID)
	if err != nil {
		handleBackendError(c, err)
		return
	}

	utils.Success(c, gin.H{"messages": messages})
}

// SendMessage 发送消息
func (mc *MessageController) SendMessage(c *gin.Context) {
	var input models.SendMessageInput
	if err := utils.BindAndValidate(c, &input); err != nil {
		utils.ValidationError(c, err.Error())
		return
	}

	message, err := mc.messageService.Send(c, input)
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			utils.ValidationError(c, err.Error())
			return
		}
		handleBackendError(c, err)
		return
	}

	utils.Success(c, gin.H{"message": message})
}
