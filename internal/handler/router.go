package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers 全部HTTP处理器
type Handlers struct {
	User   *UserHandler
	Friend *FriendHandler
	Event  *EventHandler
	Chat   *ChatHandler
}

// RegisterRoutes 绑定 /api/v1 下的业务路由，auth 为JWT中间件
func RegisterRoutes(v1 *gin.RouterGroup, auth gin.HandlerFunc, h Handlers) {
	users := v1.Group("/users")
	{
		// 公开接口（无需认证）
		users.POST("/register", h.User.Register)
		users.POST("/login", h.User.Login)

		// 需要认证的接口
		authUsers := users.Group("")
		authUsers.Use(auth)
		{
			authUsers.GET("", h.User.ListUsers)
			authUsers.GET("/profile", h.User.GetProfile)
			authUsers.PUT("/profile", h.User.UpdateProfile)
			authUsers.GET("/:user_id", h.User.GetUser)
		}
	}

	friends := v1.Group("/friends")
	friends.Use(auth)
	{
		friends.GET("", h.Friend.ListFriends)                               // 我的好友
		friends.GET("/of/:user_id", h.Friend.FriendsOf)                     // 他人的好友
		friends.GET("/status/:user_id", h.Friend.Status)                    // 关系状态
		friends.GET("/requests", h.Friend.Requests)                         // 待处理请求
		friends.POST("/requests/:user_id", h.Friend.SendRequest)            // 发送请求
		friends.DELETE("/requests/:user_id", h.Friend.CancelRequest)        // 撤回请求
		friends.POST("/requests/:user_id/accept", h.Friend.AcceptRequest)   // 接受请求
		friends.POST("/requests/:user_id/decline", h.Friend.DeclineRequest) // 拒绝请求
		friends.DELETE("/:user_id", h.Friend.RemoveFriend)                  // 删除好友
	}

	events := v1.Group("/events")
	events.Use(auth)
	{
		events.GET("", h.Event.Feed)
		events.POST("", h.Event.Create)
		events.GET("/mine", h.Event.Mine)
		events.GET("/:event_id", h.Event.Get)
		events.POST("/:event_id/join", h.Event.Join)
		events.POST("/:event_id/leave", h.Event.Leave)
		events.GET("/:event_id/messages", h.Event.Messages)
		events.POST("/:event_id/messages", h.Event.SendMessage)
	}

	conversations := v1.Group("/conversations")
	conversations.Use(auth)
	{
		conversations.GET("", h.Chat.Recent)                     // 最近会话
		conversations.GET("/unread", h.Chat.Unread)              // 未读数
		conversations.GET("/:user_id/messages", h.Chat.Messages) // 私聊记录
		conversations.POST("/:user_id/messages", h.Chat.Send)    // 发送私聊
	}
}
