package handler

import (
	"event-social/internal/service"
	"event-social/pkg/jwt"
	"event-social/pkg/response"

	"github.com/gin-gonic/gin"
)

// FriendHandler 好友处理器
type FriendHandler struct {
	service *service.FriendService
}

// NewFriendHandler 创建FriendHandler实例
func NewFriendHandler(s *service.FriendService) *FriendHandler {
	return &FriendHandler{service: s}
}

// mutate 执行好友变更，目标为路径参数 user_id
func (h *FriendHandler) mutate(c *gin.Context, op func(me, other string) (bool, error)) {
	target := c.Param("user_id")
	changed, err := op(jwt.GetUserID(c), target)
	if err != nil {
		writeError(c, err)
		return
	}
	relation, err := h.service.Relation(jwt.GetUserID(c), target)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Changed(c, changed, gin.H{"relation": relation})
}

// ListFriends 我的好友
func (h *FriendHandler) ListFriends(c *gin.Context) {
	friends, err := h.service.Friends(jwt.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterUserList(friends))
}

// FriendsOf 其他用户的好友
func (h *FriendHandler) FriendsOf(c *gin.Context) {
	friends, err := h.service.Friends(c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterUserList(friends))
}

// Requests 待处理的好友请求
func (h *FriendHandler) Requests(c *gin.Context) {
	incoming, outgoing := h.service.Requests(jwt.GetUserID(c))
	response.Success(c, &response.RequestsResponse{
		Incoming: response.FilterUserList(incoming),
		Outgoing: response.FilterUserList(outgoing),
	})
}

// SendRequest 发送好友请求
func (h *FriendHandler) SendRequest(c *gin.Context) {
	h.mutate(c, h.service.SendRequest)
}

// CancelRequest 撤回好友请求
func (h *FriendHandler) CancelRequest(c *gin.Context) {
	h.mutate(c, h.service.CancelRequest)
}

// AcceptRequest 接受好友请求
func (h *FriendHandler) AcceptRequest(c *gin.Context) {
	h.mutate(c, h.service.AcceptRequest)
}

// DeclineRequest 拒绝好友请求
func (h *FriendHandler) DeclineRequest(c *gin.Context) {
	h.mutate(c, h.service.DeclineRequest)
}

// RemoveFriend 删除好友
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	h.mutate(c, h.service.RemoveFriend)
}

// Status 与指定用户的关系
func (h *FriendHandler) Status(c *gin.Context) {
	relation, err := h.service.Relation(jwt.GetUserID(c), c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{"relation": relation})
}
