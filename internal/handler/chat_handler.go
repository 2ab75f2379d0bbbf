package handler

import (
	"event-social/internal/service"
	"event-social/pkg/jwt"
	"event-social/pkg/response"

	"github.com/gin-gonic/gin"
)

// ChatHandler 私聊处理器
type ChatHandler struct {
	service *service.ChatService
}

// NewChatHandler 创建ChatHandler实例
func NewChatHandler(s *service.ChatService) *ChatHandler {
	return &ChatHandler{service: s}
}

// Messages 与指定用户的聊天记录
func (h *ChatHandler) Messages(c *gin.Context) {
	afterID, limit, ok := pageParams(c)
	if !ok {
		return
	}
	msgs, err := h.service.Messages(c.Request.Context(), jwt.GetUserID(c), c.Param("user_id"), afterID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterMessageList(msgs))
}

// Send 给指定用户发送私聊消息
func (h *ChatHandler) Send(c *gin.Context) {
	var r sendMessageRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	msg, ok, err := h.service.Send(c.Request.Context(), jwt.GetUserID(c), c.Param("user_id"), r.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	if !ok {
		response.Changed(c, false, nil)
		return
	}
	response.Changed(c, true, response.FilterMessageInfo(msg))
}

// Recent 最近会话
func (h *ChatHandler) Recent(c *gin.Context) {
	_, limit, ok := pageParams(c)
	if !ok {
		return
	}
	list, err := h.service.Recent(c.Request.Context(), jwt.GetUserID(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, list)
}

// Unread 各会话未读数
func (h *ChatHandler) Unread(c *gin.Context) {
	counts, total, err := h.service.Unread(c.Request.Context(), jwt.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"total": total, "conversations": counts})
}
