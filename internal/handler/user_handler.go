package handler

import (
	"event-social/internal/service"
	"event-social/internal/social"
	"event-social/pkg/jwt"
	"event-social/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service *service.UserService
	friends *service.FriendService
}

func NewUserHandler(s *service.UserService, friends *service.FriendService) *UserHandler {
	return &UserHandler{service: s, friends: friends}
}

// Register 用户注册
func (h *UserHandler) Register(c *gin.Context) {
	type req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Name     string `json:"name"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	profile, token, err := h.service.Register(c.Request.Context(), r.Username, r.Password, r.Name)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "注册成功", &response.AuthResponse{
		User:        response.FilterUserInfo(profile),
		AccessToken: token,
	})
}

// Login 用户登录
func (h *UserHandler) Login(c *gin.Context) {
	type req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	profile, token, err := h.service.Login(r.Username, r.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	response.SuccessWithMessage(c, "登录成功", &response.AuthResponse{
		User:        response.FilterUserInfo(profile),
		AccessToken: token,
	})
}

// GetProfile 当前用户资料
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.service.Profile(jwt.GetUserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, response.FilterUserInfo(profile))
}

// UpdateProfile 修改当前用户资料，未传的字段保持不变
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	type req struct {
		Name   *string  `json:"name"`
		Bio    *string  `json:"bio"`
		Avatar *string  `json:"avatar"`
		Media  []string `json:"media"`
	}
	var r req
	if err := c.ShouldBindJSON(&r); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	profile, err := h.service.UpdateProfile(c.Request.Context(), jwt.GetUserID(c), social.ProfileUpdate{
		Name:   r.Name,
		Bio:    r.Bio,
		Avatar: r.Avatar,
		Media:  r.Media,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.SuccessWithMessage(c, "资料已更新", response.FilterUserInfo(profile))
}

// ListUsers 全部用户
func (h *UserHandler) ListUsers(c *gin.Context) {
	response.Success(c, response.FilterUserList(h.service.List()))
}

// GetUser 查看其他用户资料，附带与当前用户的关系
func (h *UserHandler) GetUser(c *gin.Context) {
	profile, err := h.service.Profile(c.Param("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	relation, err := h.friends.Relation(jwt.GetUserID(c), profile.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, gin.H{
		"user":     response.FilterUserInfo(profile),
		"relation": relation,
	})
}
