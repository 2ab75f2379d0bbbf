package handler

import (
	"strconv"

	"event-social/internal/service"
	"event-social/internal/social"
	"event-social/pkg/jwt"
	"event-social/pkg/response"

	"github.com/gin-gonic/gin"
)

// EventHandler 活动处理器
type EventHandler struct {
	service *service.EventService
}

// NewEventHandler 创建EventHandler实例
func NewEventHandler(s *service.EventService) *EventHandler {
	return &EventHandler{service: s}
}

// Feed 活动列表，新的在前
func (h *EventHandler) Feed(c *gin.Context) {
	response.Success(c, response.FilterEventList(h.service.Feed(), jwt.GetUserID(c)))
}

// Mine 我参加的活动
func (h *EventHandler) Mine(c *gin.Context) {
	me := jwt.GetUserID(c)
	response.Success(c, response.FilterEventList(h.service.Mine(me), me))
}

// Create 创建活动
func (h *EventHandler) Create(c *gin.Context) {
	type req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description" binding:"required"`
		Date        string `json:"date" binding:"required"`
		Location    string `json:"location" binding:"required"`
		Image       string `json:"image"`
		Capacity    *int   `json:"capacity"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	me := jwt.GetUserID(c)
	event, err := h.service.Create(me, social.NewEvent{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Location:    r.Location,
		Image:       r.Image,
		Capacity:    r.Capacity,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "活动已创建", response.FilterEventInfo(event, me))
}

// Get 活动详情，附带参与者资料
func (h *EventHandler) Get(c *gin.Context) {
	eventID := c.Param("event_id")
	event, err := h.service.Get(eventID)
	if err != nil {
		writeError(c, err)
		return
	}
	attendees, err := h.service.Attendees(eventID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{
		"event":     response.FilterEventInfo(event, jwt.GetUserID(c)),
		"attendees": response.FilterUserList(attendees),
	})
}

// Join 加入活动
func (h *EventHandler) Join(c *gin.Context) {
	h.membership(c, h.service.Join)
}

// Leave 退出活动
func (h *EventHandler) Leave(c *gin.Context) {
	h.membership(c, h.service.Leave)
}

func (h *EventHandler) membership(c *gin.Context, op func(eventID, userID string) (bool, error)) {
	eventID := c.Param("event_id")
	me := jwt.GetUserID(c)
	changed, err := op(eventID, me)
	if err != nil {
		writeError(c, err)
		return
	}
	event, err := h.service.Get(eventID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Changed(c, changed, response.FilterEventInfo(event, me))
}

// Messages 活动群聊历史
func (h *EventHandler) Messages(c *gin.Context) {
	afterID, limit, ok := pageParams(c)
	if !ok {
		return
	}
	msgs, err := h.service.Messages(c.Param("event_id"), jwt.GetUserID(c), afterID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterMessageList(msgs))
}

// SendMessage 发送活动群聊消息
func (h *EventHandler) SendMessage(c *gin.Context) {
	var r sendMessageRequest
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	msg, ok, err := h.service.SendMessage(c.Param("event_id"), jwt.GetUserID(c), r.Text)
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

type sendMessageRequest struct {
	Text string `json:"text"`
}

// pageParams 解析 after_id 和 limit 查询参数，失败时已写入响应
func pageParams(c *gin.Context) (uint64, int, bool) {
	var afterID uint64
	if s := c.Query("after_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			response.BadRequest(c, "invalid after_id")
			return 0, 0, false
		}
		afterID = id
	}
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			response.BadRequest(c, "invalid limit")
			return 0, 0, false
		}
		limit = n
	}
	return afterID, limit, true
}
