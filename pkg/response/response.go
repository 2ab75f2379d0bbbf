package response

import (
	"net/http"

	"event-social/internal/social"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`            // 状态码：0表示成功，其他表示错误
	Message string      `json:"message"`         // 响应消息
	Data    interface{} `json:"data,omitempty"`  // 响应数据
	Error   string      `json:"error,omitempty"` // 错误详情（仅在开发环境显示）
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 带自定义消息的成功响应
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    data,
	})
}

// Changed 修改类操作的响应，changed=false 表示前置条件不满足、状态未变化
func Changed(c *gin.Context, changed bool, data interface{}) {
	message := "success"
	if !changed {
		message = "no change"
	}
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: message,
		Data:    ChangeResponse{Changed: changed, Result: data},
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithDetails 带错误详情的错误响应
func ErrorWithDetails(c *gin.Context, code int, message string, err error) {
	response := Response{
		Code:    code,
		Message: message,
	}

	// 在开发环境下显示错误详情
	if gin.Mode() == gin.DebugMode && err != nil {
		response.Error = err.Error()
	}

	c.JSON(http.StatusOK, response)
}

// BadRequest 400错误
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message)
}

// Unauthorized 401错误
func Unauthorized(c *gin.Context, message string) {
	Error(c, 401, message)
}

// Forbidden 403错误
func Forbidden(c *gin.Context, message string) {
	Error(c, 403, message)
}

// NotFound 404错误
func NotFound(c *gin.Context, message string) {
	Error(c, 404, message)
}

// Conflict 409错误
func Conflict(c *gin.Context, message string) {
	Error(c, 409, message)
}

// ChangeResponse 修改类操作结果
type ChangeResponse struct {
	Changed bool        `json:"changed"`
	Result  interface{} `json:"result,omitempty"`
}

// UserInfo 对外展示的用户信息
type UserInfo struct {
	ID        string   `json:"id"`
	Username  string   `json:"username"`
	Name      string   `json:"name"`
	Bio       string   `json:"bio"`
	Avatar    string   `json:"avatar"`
	Media     []string `json:"media"`
	CreatedAt string   `json:"created_at"`
}

// FilterUserInfo 转换用户资料
func FilterUserInfo(p social.Profile) *UserInfo {
	return &UserInfo{
		ID:        p.ID,
		Username:  p.Username,
		Name:      p.Name,
		Bio:       p.Bio,
		Avatar:    p.Avatar,
		Media:     p.Media,
		CreatedAt: p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// FilterUserList 批量转换用户资料
func FilterUserList(profiles []social.Profile) []*UserInfo {
	out := make([]*UserInfo, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, FilterUserInfo(p))
	}
	return out
}

// AuthResponse 注册/登录响应
type AuthResponse struct {
	User        *UserInfo `json:"user"`
	AccessToken string    `json:"access_token"`
}

// RequestsResponse 好友请求列表
type RequestsResponse struct {
	Incoming []*UserInfo `json:"incoming"`
	Outgoing []*UserInfo `json:"outgoing"`
}

// MessageResponse 消息响应
type MessageResponse struct {
	ID           uint64 `json:"id"`
	Conversation string `json:"conversation"`
	SenderID     string `json:"sender_id"`
	SenderName   string `json:"sender_name"`
	SenderAvatar string `json:"sender_avatar"`
	Text         string `json:"text"`
	CreatedAt    string `json:"created_at"`
}

// FilterMessageInfo 转换消息
func FilterMessageInfo(m social.Message) *MessageResponse {
	return &MessageResponse{
		ID:           m.ID,
		Conversation: m.Conversation,
		SenderID:     m.SenderID,
		SenderName:   m.SenderName,
		SenderAvatar: m.SenderAvatar,
		Text:         m.Text,
		CreatedAt:    m.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// FilterMessageList 批量转换消息
func FilterMessageList(msgs []social.Message) []*MessageResponse {
	out := make([]*MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, FilterMessageInfo(m))
	}
	return out
}

// EventResponse 活动响应
type EventResponse struct {
	social.Event
	AttendeeCount int  `json:"attendee_count"`
	Full          bool `json:"full"`
	Joined        bool `json:"joined"`
}

// FilterEventInfo 转换活动，viewerID 用于计算是否已加入
func FilterEventInfo(e social.Event, viewerID string) *EventResponse {
	joined := false
	for _, id := range e.Attendees {
		if id == viewerID {
			joined = true
			break
		}
	}
	return &EventResponse{
		Event:         e,
		AttendeeCount: len(e.Attendees),
		Full:          e.Full(),
		Joined:        joined,
	}
}

// FilterEventList 批量转换活动
func FilterEventList(events []social.Event, viewerID string) []*EventResponse {
	out := make([]*EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, FilterEventInfo(e, viewerID))
	}
	return out
}
